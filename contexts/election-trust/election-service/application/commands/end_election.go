package commands

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	application "ballotcore/contexts/election-trust/election-service/application"
	"ballotcore/contexts/election-trust/election-service/domain/entities"
	domainerrors "ballotcore/contexts/election-trust/election-service/domain/errors"
	"ballotcore/contexts/election-trust/election-service/ports"
	chainv1 "ballotcore/contracts/gen/chain/v1"
)

type EndElectionCommand struct {
	ElectionID string
}

type CompleteEndCommand struct {
	ElectionID string
	TxHash     string
}

// EndElectionResult reports the transition outcome. Warning carries chain
// soft failures (the end dispatch itself, or the best-effort archive that
// follows); neither rolls back the primary commit.
type EndElectionResult struct {
	Election   entities.Election
	Candidates []entities.Candidate
	Chain      ports.ChainOutcome
	Pending    bool
	Warning    string
}

type EndElectionUseCase struct {
	Elections  ports.ElectionRepository
	Candidates ports.CandidateRepository
	Votes      ports.VoteCountReader
	Resolver   CandidateResolver
	Dispatcher ports.ChainDispatcher
	Outbox     ports.OutboxWriter
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

func (uc EndElectionUseCase) Execute(ctx context.Context, cmd EndElectionCommand) (EndElectionResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	election, candidates, totalVotes, err := uc.guardAndPrepare(ctx, cmd.ElectionID)
	if err != nil {
		return EndElectionResult{}, err
	}

	outcome, err := uc.Dispatcher.Dispatch(ctx, chainv1.OperationEndElection, election.ElectionID, endParams(election, totalVotes))
	if err != nil {
		return EndElectionResult{}, err
	}
	if outcome.Pending {
		logger.Info("election end awaiting wallet signature",
			"event", "election_end_pending_signature",
			"module", "election-trust/election-service",
			"layer", "application",
			"election_id", election.ElectionID,
			"saga_id", outcome.SagaID,
		)
		return EndElectionResult{Election: election, Candidates: candidates, Chain: outcome, Pending: true}, nil
	}

	return uc.commit(ctx, election, candidates, totalVotes, outcome)
}

// CompleteEnd finishes a wallet-signed end with the externally obtained
// transaction hash and performs the commit Execute skipped.
func (uc EndElectionUseCase) CompleteEnd(ctx context.Context, cmd CompleteEndCommand) (EndElectionResult, error) {
	election, candidates, totalVotes, err := uc.guardAndPrepare(ctx, cmd.ElectionID)
	if err != nil {
		return EndElectionResult{}, err
	}
	outcome, err := uc.Dispatcher.Complete(ctx, chainv1.OperationEndElection, election.ElectionID, cmd.TxHash)
	if err != nil {
		return EndElectionResult{}, err
	}
	return uc.commit(ctx, election, candidates, totalVotes, outcome)
}

func (uc EndElectionUseCase) guardAndPrepare(
	ctx context.Context,
	electionID string,
) (entities.Election, []entities.Candidate, int, error) {
	election, err := uc.Elections.GetElection(ctx, strings.TrimSpace(electionID))
	if err != nil {
		return entities.Election{}, nil, 0, err
	}
	if election.IsArchived {
		return entities.Election{}, nil, 0, domainerrors.ErrElectionArchived
	}

	// Re-run the resolver: candidates registered after start must be linked
	// before they are archived with the election.
	resolved, err := uc.Resolver.Resolve(ctx, election)
	if err != nil {
		return entities.Election{}, nil, 0, err
	}

	// The archival tally is always a fresh count of Vote rows, never the
	// live denormalized counter.
	totalVotes, err := uc.Votes.CountVotes(ctx, election.ElectionID)
	if err != nil {
		return entities.Election{}, nil, 0, err
	}
	return election, resolved.Candidates, totalVotes, nil
}

func (uc EndElectionUseCase) commit(
	ctx context.Context,
	election entities.Election,
	candidates []entities.Candidate,
	totalVotes int,
	outcome ports.ChainOutcome,
) (EndElectionResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	now := uc.Clock.Now().UTC()
	warning := outcome.Warning
	if !outcome.Success && !outcome.Pending && outcome.Error != "" {
		// Chain refusal on end is a soft failure: the primary store remains
		// authoritative and the transition proceeds with a warning.
		warning = outcome.Error
	}

	election.IsActive = false
	election.IsArchived = true
	election.TotalVotes = totalVotes
	if outcome.TxHash != "" {
		election.EndTxHash = outcome.TxHash
	}
	election.UpdatedAt = now
	if err := uc.Elections.UpdateElection(ctx, election); err != nil {
		return EndElectionResult{}, err
	}
	if err := uc.Candidates.SetInActiveElection(ctx, election.ElectionID, false); err != nil {
		return EndElectionResult{}, err
	}
	if err := uc.Candidates.ArchiveForElection(ctx, election.ElectionID); err != nil {
		return EndElectionResult{}, err
	}
	if err := appendElectionEvent(ctx, uc.Outbox, uc.IDGen, "election.ended", election, now, map[string]any{
		"candidate_count": len(candidates),
		"tx_hash":         outcome.TxHash,
	}); err != nil {
		return EndElectionResult{}, err
	}

	// Archive-on-chain is a secondary effect; its failure must never unwind
	// the end transition.
	secondary := uc.Dispatcher.DispatchSecondary(ctx, chainv1.OperationArchive, election.ElectionID, map[string]string{
		"election_id": election.ElectionID,
		"total_votes": strconv.Itoa(totalVotes),
	})
	if secondary.TxHash != "" {
		election.ArchiveTxHash = secondary.TxHash
		election.UpdatedAt = uc.Clock.Now().UTC()
		if err := uc.Elections.UpdateElection(ctx, election); err != nil {
			return EndElectionResult{}, err
		}
	}
	if secondary.Warning != "" {
		if warning != "" {
			warning = warning + "; " + secondary.Warning
		} else {
			warning = secondary.Warning
		}
	}

	logger.Info("election ended",
		"event", "election_ended",
		"module", "election-trust/election-service",
		"layer", "application",
		"election_id", election.ElectionID,
		"total_votes", totalVotes,
		"candidate_count", len(candidates),
		"already_satisfied", outcome.AlreadySatisfied,
		"warning", warning,
	)
	return EndElectionResult{
		Election:   election,
		Candidates: candidates,
		Chain:      outcome,
		Warning:    warning,
	}, nil
}

func endParams(election entities.Election, totalVotes int) map[string]string {
	return map[string]string{
		"election_id": election.ElectionID,
		"total_votes": strconv.Itoa(totalVotes),
	}
}
