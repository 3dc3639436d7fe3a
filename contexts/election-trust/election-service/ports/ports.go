package ports

import (
	"context"
	"time"

	"ballotcore/contexts/election-trust/election-service/domain/entities"
	chainv1 "ballotcore/contracts/gen/chain/v1"
	contractsv1 "ballotcore/contracts/gen/events/v1"
)

type ElectionRepository interface {
	SaveElection(ctx context.Context, election entities.Election) error
	GetElection(ctx context.Context, electionID string) (entities.Election, error)
	UpdateElection(ctx context.Context, election entities.Election) error
	DeleteElection(ctx context.Context, electionID string) error
	ListElections(ctx context.Context) ([]entities.Election, error)
	// GetActiveElection returns the single active election when one exists.
	GetActiveElection(ctx context.Context) (entities.Election, bool, error)
	// ListActivePastEnd feeds the end sweep.
	ListActivePastEnd(ctx context.Context, now time.Time, limit int) ([]entities.Election, error)
	// ListEndedUnarchived feeds the archive sweep: inactive, not archived,
	// past their end date.
	ListEndedUnarchived(ctx context.Context, now time.Time, limit int) ([]entities.Election, error)
}

type CandidateRepository interface {
	SaveCandidate(ctx context.Context, candidate entities.Candidate) error
	GetCandidate(ctx context.Context, candidateID string) (entities.Candidate, error)
	// ListStray returns candidates matching category (and region when set)
	// whose election reference is empty.
	ListStray(ctx context.Context, category string, region string) ([]entities.Candidate, error)
	// AssignElection bulk-backfills the election reference and reports how
	// many rows changed.
	AssignElection(ctx context.Context, candidateIDs []string, electionID string) (int, error)
	// ListForElection is the union query: direct reference or same category.
	ListForElection(ctx context.Context, electionID string, category string) ([]entities.Candidate, error)
	SetInActiveElection(ctx context.Context, electionID string, active bool) error
	ArchiveForElection(ctx context.Context, electionID string) error
}

// VoteCountReader counts authoritative Vote rows; denormalized counters are
// never trusted for the archival snapshot.
type VoteCountReader interface {
	CountVotes(ctx context.Context, electionID string) (int, error)
}

// ChainOutcome re-exports the canonical chain result contract.
type ChainOutcome = chainv1.Outcome

// ChainDispatcher abstracts the transaction orchestrator. Chain failures are
// carried inside the outcome; a Go error means the dispatch never ran.
type ChainDispatcher interface {
	Dispatch(ctx context.Context, op chainv1.Operation, subjectID string, params map[string]string) (ChainOutcome, error)
	DispatchSecondary(ctx context.Context, op chainv1.Operation, subjectID string, params map[string]string) ChainOutcome
	Complete(ctx context.Context, op chainv1.Operation, subjectID string, txHash string) (ChainOutcome, error)
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

// OutboxMessage is a row ready to relay from the module outbox.
type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

// OutboxRepository models worker-side outbox polling/acknowledgement.
type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

// EventPublisher publishes canonical envelopes to a topic.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}
