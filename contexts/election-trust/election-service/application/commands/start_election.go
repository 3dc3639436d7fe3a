package commands

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	application "ballotcore/contexts/election-trust/election-service/application"
	"ballotcore/contexts/election-trust/election-service/domain/entities"
	domainerrors "ballotcore/contexts/election-trust/election-service/domain/errors"
	"ballotcore/contexts/election-trust/election-service/ports"
	chainv1 "ballotcore/contracts/gen/chain/v1"
)

type StartElectionCommand struct {
	ElectionID string
}

type CompleteStartCommand struct {
	ElectionID string
	TxHash     string
}

// StartElectionResult reports the transition outcome. Pending means the chain
// dispatch awaits an external wallet signature and no local state was
// committed; the caller must invoke CompleteStart with the obtained hash.
type StartElectionResult struct {
	Election   entities.Election
	Candidates []entities.Candidate
	Chain      ports.ChainOutcome
	Pending    bool
}

type StartElectionUseCase struct {
	Elections  ports.ElectionRepository
	Candidates ports.CandidateRepository
	Resolver   CandidateResolver
	Dispatcher ports.ChainDispatcher
	Outbox     ports.OutboxWriter
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

func (uc StartElectionUseCase) Execute(ctx context.Context, cmd StartElectionCommand) (StartElectionResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	election, candidates, err := uc.guardAndResolve(ctx, cmd.ElectionID)
	if err != nil {
		return StartElectionResult{}, err
	}

	outcome, err := uc.Dispatcher.Dispatch(ctx, chainv1.OperationStartElection, election.ElectionID, startParams(election, candidates))
	if err != nil {
		return StartElectionResult{}, err
	}
	if outcome.Pending {
		logger.Info("election start awaiting wallet signature",
			"event", "election_start_pending_signature",
			"module", "election-trust/election-service",
			"layer", "application",
			"election_id", election.ElectionID,
			"saga_id", outcome.SagaID,
		)
		return StartElectionResult{Election: election, Candidates: candidates, Chain: outcome, Pending: true}, nil
	}

	return uc.commit(ctx, election, candidates, outcome)
}

// CompleteStart finishes a wallet-signed start with the externally obtained
// transaction hash and performs the commit Execute skipped.
func (uc StartElectionUseCase) CompleteStart(ctx context.Context, cmd CompleteStartCommand) (StartElectionResult, error) {
	election, candidates, err := uc.guardAndResolve(ctx, cmd.ElectionID)
	if err != nil {
		return StartElectionResult{}, err
	}
	outcome, err := uc.Dispatcher.Complete(ctx, chainv1.OperationStartElection, election.ElectionID, cmd.TxHash)
	if err != nil {
		return StartElectionResult{}, err
	}
	return uc.commit(ctx, election, candidates, outcome)
}

func (uc StartElectionUseCase) guardAndResolve(
	ctx context.Context,
	electionID string,
) (entities.Election, []entities.Candidate, error) {
	election, err := uc.Elections.GetElection(ctx, strings.TrimSpace(electionID))
	if err != nil {
		return entities.Election{}, nil, err
	}
	if election.IsArchived {
		return entities.Election{}, nil, domainerrors.ErrElectionArchived
	}
	if election.IsActive {
		return entities.Election{}, nil, domainerrors.ErrElectionAlreadyActive
	}
	now := uc.Clock.Now().UTC()
	if election.PastEnd(now) {
		return entities.Election{}, nil, domainerrors.ErrElectionWindowClosed
	}
	if active, found, err := uc.Elections.GetActiveElection(ctx); err != nil {
		return entities.Election{}, nil, err
	} else if found && active.ElectionID != election.ElectionID {
		return entities.Election{}, nil, domainerrors.ErrActiveElectionExists
	}

	resolved, err := uc.Resolver.Resolve(ctx, election)
	if err != nil {
		return entities.Election{}, nil, err
	}
	return election, resolved.Candidates, nil
}

func (uc StartElectionUseCase) commit(
	ctx context.Context,
	election entities.Election,
	candidates []entities.Candidate,
	outcome ports.ChainOutcome,
) (StartElectionResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	now := uc.Clock.Now().UTC()

	election.IsActive = true
	if outcome.TxHash != "" {
		election.StartTxHash = outcome.TxHash
	}
	election.UpdatedAt = now
	if err := uc.Elections.UpdateElection(ctx, election); err != nil {
		return StartElectionResult{}, err
	}
	if err := uc.Candidates.SetInActiveElection(ctx, election.ElectionID, true); err != nil {
		return StartElectionResult{}, err
	}
	if err := uc.appendLifecycleEvent(ctx, "election.started", election, now, map[string]any{
		"candidate_count": len(candidates),
		"tx_hash":         outcome.TxHash,
	}); err != nil {
		return StartElectionResult{}, err
	}

	logger.Info("election started",
		"event", "election_started",
		"module", "election-trust/election-service",
		"layer", "application",
		"election_id", election.ElectionID,
		"candidate_count", len(candidates),
		"already_satisfied", outcome.AlreadySatisfied,
	)
	return StartElectionResult{Election: election, Candidates: candidates, Chain: outcome}, nil
}

func (uc StartElectionUseCase) appendLifecycleEvent(
	ctx context.Context,
	eventType string,
	election entities.Election,
	occurredAt time.Time,
	data map[string]any,
) error {
	return appendElectionEvent(ctx, uc.Outbox, uc.IDGen, eventType, election, occurredAt, data)
}

func startParams(election entities.Election, candidates []entities.Candidate) map[string]string {
	return map[string]string{
		"election_id":     election.ElectionID,
		"category":        election.Category,
		"region":          election.Region,
		"candidate_count": strconv.Itoa(len(candidates)),
		"end_date":        election.EndDate.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}
