package voteledger

import (
	"log/slog"

	httpadapter "ballotcore/contexts/election-trust/vote-ledger/adapters/http"
	"ballotcore/contexts/election-trust/vote-ledger/adapters/memory"
	"ballotcore/contexts/election-trust/vote-ledger/application/commands"
	"ballotcore/contexts/election-trust/vote-ledger/application/queries"
	"ballotcore/contexts/election-trust/vote-ledger/application/workers"
	"ballotcore/contexts/election-trust/vote-ledger/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Relay   workers.OutboxRelay
	Store   *memory.Store
}

type Dependencies struct {
	Votes      ports.VoteRepository
	Voters     ports.VoterRepository
	Elections  ports.ElectionReader
	Candidates ports.CandidateStore
	Dispatcher ports.ChainDispatcher
	Mirror     ports.MirrorVoteReader
	Outbox     ports.OutboxWriter
	OutboxRepo ports.OutboxRepository
	Publisher  ports.EventPublisher
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	return Module{
		Handler: httpadapter.Handler{
			Cast: commands.CastVoteUseCase{
				Votes:      deps.Votes,
				Voters:     deps.Voters,
				Elections:  deps.Elections,
				Candidates: deps.Candidates,
				Dispatcher: deps.Dispatcher,
				Outbox:     deps.Outbox,
				Clock:      deps.Clock,
				IDGen:      deps.IDGen,
				Logger:     deps.Logger,
			},
			Voters: commands.VoterUseCase{
				Voters:     deps.Voters,
				Dispatcher: deps.Dispatcher,
				Clock:      deps.Clock,
				IDGen:      deps.IDGen,
				Logger:     deps.Logger,
			},
			Record: commands.RecordVoteUseCase{
				Votes:      deps.Votes,
				Dispatcher: deps.Dispatcher,
				Clock:      deps.Clock,
				Logger:     deps.Logger,
			},
			Queries: queries.LedgerUseCase{
				Votes:      deps.Votes,
				Voters:     deps.Voters,
				Elections:  deps.Elections,
				Candidates: deps.Candidates,
				Dispatcher: deps.Dispatcher,
				Mirror:     deps.Mirror,
				Logger:     deps.Logger,
			},
			Logger: deps.Logger,
		},
		Relay: workers.OutboxRelay{
			Outbox:    deps.OutboxRepo,
			Publisher: deps.Publisher,
			Clock:     deps.Clock,
			Logger:    deps.Logger,
		},
	}
}

func NewInMemoryModule(dispatcher ports.ChainDispatcher, mirror ports.MirrorVoteReader, publisher ports.EventPublisher, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Votes:      store,
		Voters:     store,
		Elections:  store,
		Candidates: store,
		Dispatcher: dispatcher,
		Mirror:     mirror,
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
