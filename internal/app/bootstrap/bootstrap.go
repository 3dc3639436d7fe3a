package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	chaingateway "ballotcore/contexts/election-trust/chain-gateway"
	chainmemory "ballotcore/contexts/election-trust/chain-gateway/adapters/memory"
	chainpostgres "ballotcore/contexts/election-trust/chain-gateway/adapters/postgres"
	electionservice "ballotcore/contexts/election-trust/election-service"
	electionpostgres "ballotcore/contexts/election-trust/election-service/adapters/postgres"
	mirrorsync "ballotcore/contexts/election-trust/mirror-sync"
	mirrorpostgres "ballotcore/contexts/election-trust/mirror-sync/adapters/postgres"
	mirrorworkers "ballotcore/contexts/election-trust/mirror-sync/application/workers"
	voteledger "ballotcore/contexts/election-trust/vote-ledger"
	votepostgres "ballotcore/contexts/election-trust/vote-ledger/adapters/postgres"
	"ballotcore/internal/platform/config"
	"ballotcore/internal/platform/db"
	"ballotcore/internal/platform/httpserver"
	"ballotcore/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	mirror   *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	cfg      config.Config
	postgres *db.Postgres
	mirror   *db.Postgres
	bus      *messaging.Kafka
	election electionservice.Module
	votes    voteledger.Module
	sync     mirrorsync.Module
	logger   *slog.Logger
}

type wiring struct {
	cfg      config.Config
	postgres *db.Postgres
	mirror   *db.Postgres
	bus      *messaging.Kafka
	chain    chaingateway.Module
	election electionservice.Module
	votes    voteledger.Module
	sync     mirrorsync.Module
}

// buildWiring connects the primary and mirror stores and assembles all four
// modules against them. The ledger client is the in-process chain simulator
// until external node wiring is finalized.
func buildWiring(cfg config.Config, logger *slog.Logger) (wiring, error) {
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return wiring{}, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return wiring{}, err
	}

	mirrorPg, err := db.ConnectMirror(cfg.MirrorDSN, pg)
	if err != nil {
		pg.Close()
		return wiring{}, err
	}

	bus, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		pg.Close()
		return wiring{}, err
	}

	chainRepo := chainpostgres.NewRepository(pg.DB, logger)
	chainModule := chaingateway.NewModule(chaingateway.Dependencies{
		Chain:        chainmemory.NewLedgerClient(cfg.ChainContractAddress),
		Sagas:        chainRepo,
		Challenges:   chainRepo,
		Clock:        chainpostgres.SystemClock{},
		IDGen:        chainpostgres.UUIDGenerator{},
		CallTimeout:  cfg.ChainCallTimeout,
		ChallengeTTL: cfg.LoginChallengeTTL,
		Logger:       logger,
	})

	dispatcher := chainDispatcher{
		orchestrator: chainModule.Orchestrator,
		signerMode:   cfg.ChainSignerMode,
		signerKeyID:  cfg.ChainSignerKeyID,
	}

	mirrorStore := mirrorpostgres.NewStore(mirrorPg.DB, cfg.MirrorPoolSize, logger)
	syncModule := mirrorsync.NewModule(mirrorsync.Dependencies{
		Mirror: mirrorStore,
		Dedup:  mirrorStore,
		Clock:  mirrorpostgres.SystemClock{},
		IDGen:  mirrorpostgres.UUIDGenerator{},
		Logger: logger,
	})

	electionRepo := electionpostgres.NewRepository(pg.DB, logger)
	electionModule := electionservice.NewModule(electionservice.Dependencies{
		Elections:  electionRepo,
		Candidates: electionRepo,
		Votes:      electionRepo,
		Dispatcher: dispatcher,
		Outbox:     electionRepo,
		OutboxRepo: electionRepo,
		Publisher:  bus,
		Clock:      electionpostgres.SystemClock{},
		IDGen:      electionpostgres.UUIDGenerator{},
		Logger:     logger,
	})

	voteRepo := votepostgres.NewRepository(pg.DB, logger)
	voteModule := voteledger.NewModule(voteledger.Dependencies{
		Votes:      voteRepo,
		Voters:     voteRepo,
		Elections:  voteRepo,
		Candidates: voteRepo,
		Dispatcher: dispatcher,
		Mirror:     syncModule.Synchronizer,
		Outbox:     voteRepo,
		OutboxRepo: voteRepo,
		Publisher:  bus,
		Clock:      votepostgres.SystemClock{},
		IDGen:      votepostgres.UUIDGenerator{},
		Logger:     logger,
	})

	return wiring{
		cfg:      cfg,
		postgres: pg,
		mirror:   mirrorPg,
		bus:      bus,
		chain:    chainModule,
		election: electionModule,
		votes:    voteModule,
		sync:     syncModule,
	}, nil
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	w, err := buildWiring(cfg, logger)
	if err != nil {
		return nil, err
	}

	server := httpserver.New(w.election, w.votes, w.chain, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: w.postgres,
		mirror:   w.mirror,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	w, err := buildWiring(cfg, logger)
	if err != nil {
		return nil, err
	}

	return &WorkerApp{
		cfg:      cfg,
		postgres: w.postgres,
		mirror:   w.mirror,
		bus:      w.bus,
		election: w.election,
		votes:    w.votes,
		sync:     w.sync,
		logger:   logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	return closeStores(a.postgres, a.mirror)
}

func (w *WorkerApp) Run(ctx context.Context) error {
	if w.cfg.EnableMirrorRelay {
		for _, topic := range mirrorworkers.Topics() {
			if err := w.bus.Subscribe(ctx, topic, "mirror-sync-cg", w.sync.Relay.Handle); err != nil {
				return err
			}
		}
	}

	relayInterval := w.cfg.RelayInterval
	if relayInterval <= 0 {
		relayInterval = 5 * time.Second
	}
	sweepInterval := w.cfg.SweepInterval
	if sweepInterval <= 0 {
		sweepInterval = time.Minute
	}

	relayTicker := time.NewTicker(relayInterval)
	defer relayTicker.Stop()
	sweepTicker := time.NewTicker(sweepInterval)
	defer sweepTicker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"relay_interval", relayInterval.String(),
		"sweep_interval", sweepInterval.String(),
	)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-relayTicker.C:
			if !w.cfg.EnableOutboxRelay {
				continue
			}
			if err := w.election.Relay.RunOnce(ctx); err != nil {
				return err
			}
			if err := w.votes.Relay.RunOnce(ctx); err != nil {
				return err
			}
		case <-sweepTicker.C:
			if !w.cfg.EnableLifecycleSweep {
				continue
			}
			if err := w.election.Sweeper.RunOnce(ctx); err != nil {
				return err
			}
		}
	}
}

func (w *WorkerApp) Close() error {
	return closeStores(w.postgres, w.mirror)
}

func closeStores(primary *db.Postgres, mirror *db.Postgres) error {
	var firstErr error
	if mirror != nil && mirror != primary {
		firstErr = mirror.Close()
	}
	if primary != nil {
		if err := primary.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
