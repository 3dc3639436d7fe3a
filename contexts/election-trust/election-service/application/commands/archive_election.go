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

type ArchiveElectionCommand struct {
	ElectionID string
}

type ArchiveElectionResult struct {
	Election entities.Election
	Warning  string
}

// ArchiveElectionUseCase is the administrative archival path. It applies the
// same candidate side effects as end but does not require the election to
// have been started; the chain archive dispatch is best-effort.
type ArchiveElectionUseCase struct {
	Elections  ports.ElectionRepository
	Candidates ports.CandidateRepository
	Votes      ports.VoteCountReader
	Dispatcher ports.ChainDispatcher
	Outbox     ports.OutboxWriter
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

func (uc ArchiveElectionUseCase) Execute(ctx context.Context, cmd ArchiveElectionCommand) (ArchiveElectionResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	election, err := uc.Elections.GetElection(ctx, strings.TrimSpace(cmd.ElectionID))
	if err != nil {
		return ArchiveElectionResult{}, err
	}
	if election.IsArchived {
		return ArchiveElectionResult{}, domainerrors.ErrElectionArchived
	}

	totalVotes, err := uc.Votes.CountVotes(ctx, election.ElectionID)
	if err != nil {
		return ArchiveElectionResult{}, err
	}

	now := uc.Clock.Now().UTC()
	election.IsActive = false
	election.IsArchived = true
	election.TotalVotes = totalVotes
	election.UpdatedAt = now
	if err := uc.Elections.UpdateElection(ctx, election); err != nil {
		return ArchiveElectionResult{}, err
	}
	if err := uc.Candidates.SetInActiveElection(ctx, election.ElectionID, false); err != nil {
		return ArchiveElectionResult{}, err
	}
	if err := uc.Candidates.ArchiveForElection(ctx, election.ElectionID); err != nil {
		return ArchiveElectionResult{}, err
	}

	outcome := uc.Dispatcher.DispatchSecondary(ctx, chainv1.OperationArchive, election.ElectionID, map[string]string{
		"election_id": election.ElectionID,
		"total_votes": strconv.Itoa(totalVotes),
	})
	if outcome.TxHash != "" {
		election.ArchiveTxHash = outcome.TxHash
		election.UpdatedAt = uc.Clock.Now().UTC()
		if err := uc.Elections.UpdateElection(ctx, election); err != nil {
			return ArchiveElectionResult{}, err
		}
	}

	if err := appendElectionEvent(ctx, uc.Outbox, uc.IDGen, "election.archived", election, now, map[string]any{
		"tx_hash": outcome.TxHash,
	}); err != nil {
		return ArchiveElectionResult{}, err
	}

	logger.Info("election archived",
		"event", "election_archived",
		"module", "election-trust/election-service",
		"layer", "application",
		"election_id", election.ElectionID,
		"total_votes", totalVotes,
		"warning", outcome.Warning,
	)
	return ArchiveElectionResult{Election: election, Warning: outcome.Warning}, nil
}
