package electionservice

import (
	"log/slog"

	httpadapter "ballotcore/contexts/election-trust/election-service/adapters/http"
	"ballotcore/contexts/election-trust/election-service/adapters/memory"
	"ballotcore/contexts/election-trust/election-service/application/commands"
	"ballotcore/contexts/election-trust/election-service/application/queries"
	"ballotcore/contexts/election-trust/election-service/application/workers"
	"ballotcore/contexts/election-trust/election-service/domain/entities"
	"ballotcore/contexts/election-trust/election-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Sweeper workers.LifecycleSweeper
	Relay   workers.OutboxRelay
	Store   *memory.Store
}

type Dependencies struct {
	Elections  ports.ElectionRepository
	Candidates ports.CandidateRepository
	Votes      ports.VoteCountReader
	Dispatcher ports.ChainDispatcher
	Outbox     ports.OutboxWriter
	OutboxRepo ports.OutboxRepository
	Publisher  ports.EventPublisher
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	resolver := commands.CandidateResolver{
		Candidates: deps.Candidates,
		Logger:     deps.Logger,
	}
	start := commands.StartElectionUseCase{
		Elections:  deps.Elections,
		Candidates: deps.Candidates,
		Resolver:   resolver,
		Dispatcher: deps.Dispatcher,
		Outbox:     deps.Outbox,
		Clock:      deps.Clock,
		IDGen:      deps.IDGen,
		Logger:     deps.Logger,
	}
	end := commands.EndElectionUseCase{
		Elections:  deps.Elections,
		Candidates: deps.Candidates,
		Votes:      deps.Votes,
		Resolver:   resolver,
		Dispatcher: deps.Dispatcher,
		Outbox:     deps.Outbox,
		Clock:      deps.Clock,
		IDGen:      deps.IDGen,
		Logger:     deps.Logger,
	}
	archive := commands.ArchiveElectionUseCase{
		Elections:  deps.Elections,
		Candidates: deps.Candidates,
		Votes:      deps.Votes,
		Dispatcher: deps.Dispatcher,
		Outbox:     deps.Outbox,
		Clock:      deps.Clock,
		IDGen:      deps.IDGen,
		Logger:     deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Create: commands.CreateElectionUseCase{
				Elections: deps.Elections,
				Clock:     deps.Clock,
				IDGen:     deps.IDGen,
				Logger:    deps.Logger,
			},
			Update: commands.UpdateElectionUseCase{
				Elections: deps.Elections,
				Clock:     deps.Clock,
				Logger:    deps.Logger,
			},
			Delete: commands.DeleteElectionUseCase{
				Elections: deps.Elections,
				Logger:    deps.Logger,
			},
			Start:   start,
			End:     end,
			Archive: archive,
			RegisterCandidate: commands.RegisterCandidateUseCase{
				Candidates: deps.Candidates,
				Clock:      deps.Clock,
				IDGen:      deps.IDGen,
				Logger:     deps.Logger,
			},
			Queries: queries.ElectionUseCase{
				Elections:  deps.Elections,
				Candidates: deps.Candidates,
				Votes:      deps.Votes,
			},
			Logger: deps.Logger,
		},
		Sweeper: workers.LifecycleSweeper{
			Elections: deps.Elections,
			End:       end,
			Archive:   archive,
			Clock:     deps.Clock,
			Logger:    deps.Logger,
		},
		Relay: workers.OutboxRelay{
			Outbox:    deps.OutboxRepo,
			Publisher: deps.Publisher,
			Clock:     deps.Clock,
			Logger:    deps.Logger,
		},
	}
}

func NewInMemoryModule(seed []entities.Election, dispatcher ports.ChainDispatcher, publisher ports.EventPublisher, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Elections:  store,
		Candidates: store,
		Votes:      store,
		Dispatcher: dispatcher,
		Outbox:     store,
		OutboxRepo: store,
		Publisher:  publisher,
		Clock:      store,
		IDGen:      store,
		Logger:     logger,
	})
	module.Store = store
	return module
}
