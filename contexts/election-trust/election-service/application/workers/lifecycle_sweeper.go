package workers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	application "ballotcore/contexts/election-trust/election-service/application"
	"ballotcore/contexts/election-trust/election-service/application/commands"
	domainerrors "ballotcore/contexts/election-trust/election-service/domain/errors"
	"ballotcore/contexts/election-trust/election-service/ports"
)

// LifecycleSweeper periodically ends active elections past their end date and
// archives ended-but-unarchived ones. Both passes are idempotent: an election
// that reached its terminal state is skipped by the archived guard, and one
// election's failure never aborts the rest of the batch.
type LifecycleSweeper struct {
	Elections ports.ElectionRepository
	End       commands.EndElectionUseCase
	Archive   commands.ArchiveElectionUseCase
	Clock     ports.Clock
	BatchSize int
	Logger    *slog.Logger
}

func (j LifecycleSweeper) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(j.Logger)
	now := time.Now().UTC()
	if j.Clock != nil {
		now = j.Clock.Now().UTC()
	}
	limit := j.BatchSize
	if limit <= 0 {
		limit = 100
	}

	expired, err := j.Elections.ListActivePastEnd(ctx, now, limit)
	if err != nil {
		logger.Error("lifecycle sweep list expired failed",
			"event", "election_sweep_list_expired_failed",
			"module", "election-trust/election-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}
	ended := 0
	for _, election := range expired {
		if _, err := j.End.Execute(ctx, commands.EndElectionCommand{ElectionID: election.ElectionID}); err != nil {
			if errors.Is(err, domainerrors.ErrElectionArchived) {
				continue
			}
			logger.Error("lifecycle sweep end failed",
				"event", "election_sweep_end_failed",
				"module", "election-trust/election-service",
				"layer", "worker",
				"election_id", election.ElectionID,
				"error", err.Error(),
			)
			continue
		}
		ended++
	}

	stale, err := j.Elections.ListEndedUnarchived(ctx, now, limit)
	if err != nil {
		logger.Error("lifecycle sweep list stale failed",
			"event", "election_sweep_list_stale_failed",
			"module", "election-trust/election-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}
	archived := 0
	for _, election := range stale {
		if _, err := j.Archive.Execute(ctx, commands.ArchiveElectionCommand{ElectionID: election.ElectionID}); err != nil {
			if errors.Is(err, domainerrors.ErrElectionArchived) {
				continue
			}
			logger.Error("lifecycle sweep archive failed",
				"event", "election_sweep_archive_failed",
				"module", "election-trust/election-service",
				"layer", "worker",
				"election_id", election.ElectionID,
				"error", err.Error(),
			)
			continue
		}
		archived++
	}

	if ended > 0 || archived > 0 {
		logger.Info("lifecycle sweep completed",
			"event", "election_sweep_completed",
			"module", "election-trust/election-service",
			"layer", "worker",
			"ended_count", ended,
			"archived_count", archived,
		)
	}
	return nil
}
