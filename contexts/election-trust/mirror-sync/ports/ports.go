package ports

import (
	"context"
	"time"

	"ballotcore/contexts/election-trust/mirror-sync/domain/entities"
	contractsv1 "ballotcore/contracts/gen/events/v1"
)

// Session is one scoped mirror connection. Callers acquire it per logical
// operation and must Release on every exit path; the pool behind Acquire is
// bounded, so a leaked session eventually starves the synchronizer.
type Session interface {
	GetElectionByOriginalID(ctx context.Context, originalElectionID string) (entities.RemoteElection, error)
	UpsertElection(ctx context.Context, election entities.RemoteElection) error

	GetCandidateByKey(ctx context.Context, mirrorKey string) (entities.RemoteCandidate, error)
	FindCandidateByOriginalID(ctx context.Context, electionKey string, originalCandidateID string) (entities.RemoteCandidate, error)
	FindCandidateByOriginalIDPrefix(ctx context.Context, electionKey string, originalCandidateIDPrefix string) (entities.RemoteCandidate, error)
	FindCandidateByName(ctx context.Context, electionKey string, firstName string, lastName string, partyName string) (entities.RemoteCandidate, error)
	CreateCandidate(ctx context.Context, candidate entities.RemoteCandidate) error
	SaveCandidate(ctx context.Context, candidate entities.RemoteCandidate) error
	ListCandidatesForElection(ctx context.Context, electionKey string) ([]entities.RemoteCandidate, error)

	// AtomicIncrementVotes and RawIncrementVotes are the fallback tiers
	// behind the load-mutate-save path: an atomic single-field update, then
	// a raw table-level statement bypassing the model layer.
	AtomicIncrementVotes(ctx context.Context, candidateKey string, delta int) error
	RawIncrementVotes(ctx context.Context, candidateKey string, delta int) error

	GetVoteByPair(ctx context.Context, voterID string, electionKey string) (entities.RemoteVote, error)
	CreateVote(ctx context.Context, vote entities.RemoteVote) error
	UpdateVote(ctx context.Context, vote entities.RemoteVote) error
	ListVotesForElection(ctx context.Context, electionKey string) ([]entities.RemoteVote, error)

	Release()
}

// MirrorStore hands out scoped sessions against the secondary ledger mirror.
type MirrorStore interface {
	Acquire(ctx context.Context) (Session, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// EventEnvelope reuses the canonical cross-runtime envelope contract.
type EventEnvelope = contractsv1.Envelope

// EventDedupStore reserves processed event ids so redelivered bus events are
// applied once. ReserveEvent returns true when the event was seen before.
type EventDedupStore interface {
	ReserveEvent(ctx context.Context, eventID string, payloadHash string, expiresAt time.Time) (bool, error)
}
