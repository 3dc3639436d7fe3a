package chaingateway

import (
	"log/slog"
	"time"

	"ballotcore/contexts/election-trust/chain-gateway/adapters/memory"
	"ballotcore/contexts/election-trust/chain-gateway/application"
	"ballotcore/contexts/election-trust/chain-gateway/ports"
)

type Module struct {
	Orchestrator application.Orchestrator
	Challenges   application.ChallengeService
	Store        *memory.Store
	Chain        *memory.LedgerClient
}

type Dependencies struct {
	Chain        ports.LedgerClient
	Sagas        ports.SagaStore
	Challenges   ports.ChallengeStore
	Clock        ports.Clock
	IDGen        ports.IDGenerator
	CallTimeout  time.Duration
	ChallengeTTL time.Duration
	Logger       *slog.Logger
}

func NewModule(deps Dependencies) Module {
	return Module{
		Orchestrator: application.Orchestrator{
			Chain:       deps.Chain,
			Sagas:       deps.Sagas,
			Clock:       deps.Clock,
			IDGen:       deps.IDGen,
			CallTimeout: deps.CallTimeout,
			Logger:      deps.Logger,
		},
		Challenges: application.ChallengeService{
			Challenges: deps.Challenges,
			Clock:      deps.Clock,
			IDGen:      deps.IDGen,
			TTL:        deps.ChallengeTTL,
			Logger:     deps.Logger,
		},
	}
}

func NewInMemoryModule(contractAddress string, logger *slog.Logger) Module {
	store := memory.NewStore()
	chain := memory.NewLedgerClient(contractAddress)
	module := NewModule(Dependencies{
		Chain:        chain,
		Sagas:        store,
		Challenges:   store,
		Clock:        store,
		IDGen:        store,
		CallTimeout:  10 * time.Second,
		ChallengeTTL: 5 * time.Minute,
		Logger:       logger,
	})
	module.Store = store
	module.Chain = chain
	return module
}
