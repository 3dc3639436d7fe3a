package mirrorsync

import (
	"log/slog"

	"ballotcore/contexts/election-trust/mirror-sync/adapters/memory"
	"ballotcore/contexts/election-trust/mirror-sync/application"
	"ballotcore/contexts/election-trust/mirror-sync/application/workers"
	"ballotcore/contexts/election-trust/mirror-sync/ports"
)

type Module struct {
	Synchronizer application.Synchronizer
	Relay        workers.MirrorRelay
	Store        *memory.Store
}

type Dependencies struct {
	Mirror ports.MirrorStore
	Dedup  ports.EventDedupStore
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

func NewModule(deps Dependencies) Module {
	synchronizer := application.Synchronizer{
		Mirror:    deps.Mirror,
		Matcher:   application.NewCandidateMatcher(),
		Increment: application.NewIncrementPolicy(deps.Logger),
		Clock:     deps.Clock,
		IDGen:     deps.IDGen,
		Logger:    deps.Logger,
	}
	return Module{
		Synchronizer: synchronizer,
		Relay: workers.MirrorRelay{
			Synchronizer: synchronizer,
			Dedup:        deps.Dedup,
			Clock:        deps.Clock,
			Logger:       deps.Logger,
		},
	}
}

func NewInMemoryModule(poolSize int, logger *slog.Logger) Module {
	store := memory.NewStore(poolSize)
	module := NewModule(Dependencies{
		Mirror: store,
		Dedup:  store,
		Clock:  store,
		IDGen:  store,
		Logger: logger,
	})
	module.Store = store
	return module
}
