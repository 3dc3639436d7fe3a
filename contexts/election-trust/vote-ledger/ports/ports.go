package ports

import (
	"context"
	"time"

	"ballotcore/contexts/election-trust/vote-ledger/domain/entities"
	chainv1 "ballotcore/contracts/gen/chain/v1"
	contractsv1 "ballotcore/contracts/gen/events/v1"
)

// VoteRepository persists the authoritative vote rows. InsertVote must be
// backed by a uniqueness constraint on (voter_id, election_id) and return
// ErrAlreadyVoted on the duplicate-key violation, so the second of two
// concurrent inserts for the same pair fails instead of producing two rows.
type VoteRepository interface {
	InsertVote(ctx context.Context, vote entities.Vote) error
	GetVote(ctx context.Context, voterID string, electionID string) (entities.Vote, error)
	GetVoteByID(ctx context.Context, voteID string) (entities.Vote, error)
	UpdateVote(ctx context.Context, vote entities.Vote) error
	CountVotes(ctx context.Context, electionID string) (int, error)
	ListVotesForElection(ctx context.Context, electionID string) ([]entities.Vote, error)
}

type VoterRepository interface {
	SaveVoter(ctx context.Context, voter entities.Voter) error
	GetVoter(ctx context.Context, voterID string) (entities.Voter, error)
	UpdateVoter(ctx context.Context, voter entities.Voter) error
	ListVoters(ctx context.Context, status entities.VoterStatus) ([]entities.Voter, error)
}

// ElectionReader exposes the election state the cast-time preconditions
// need, plus the denormalized total counter update.
type ElectionReader interface {
	GetElectionSnapshot(ctx context.Context, electionID string) (entities.ElectionSnapshot, error)
	IncrementTotalVotes(ctx context.Context, electionID string) error
}

// CandidateStore exposes ballot candidates. ListOrdered must return a stable
// creation-time ordering; chain correlation ids are derived from positions in
// that ordering and persisted once.
type CandidateStore interface {
	GetCandidateSnapshot(ctx context.Context, candidateID string) (entities.CandidateSnapshot, error)
	ListOrdered(ctx context.Context, electionID string, category string) ([]entities.CandidateSnapshot, error)
	SetChainCandidateID(ctx context.Context, candidateID string, chainCandidateID string) error
	IncrementVoteCount(ctx context.Context, candidateID string) error
}

// MirrorVoteReader is the mirror-side already-voted guard consulted by the
// chain status check. A nil reader skips the guard.
type MirrorVoteReader interface {
	MirrorHasVoted(ctx context.Context, voterID string, electionID string) (bool, error)
}

// ChainOutcome re-exports the canonical chain result contract.
type ChainOutcome = chainv1.Outcome

// ChainDispatcher abstracts the transaction orchestrator. Chain failures are
// carried inside the outcome; a Go error means the dispatch never ran.
type ChainDispatcher interface {
	Dispatch(ctx context.Context, op chainv1.Operation, subjectID string, params map[string]string) (ChainOutcome, error)
	DispatchSecondary(ctx context.Context, op chainv1.Operation, subjectID string, params map[string]string) ChainOutcome
	Complete(ctx context.Context, op chainv1.Operation, subjectID string, txHash string) (ChainOutcome, error)
	Status(ctx context.Context, op chainv1.Operation, subjectID string) (bool, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// EventEnvelope reuses the canonical cross-runtime envelope contract.
type EventEnvelope = contractsv1.Envelope

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, event EventEnvelope) error
}

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}
