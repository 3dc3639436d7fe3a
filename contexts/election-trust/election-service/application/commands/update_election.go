package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "ballotcore/contexts/election-trust/election-service/application"
	"ballotcore/contexts/election-trust/election-service/domain/entities"
	domainerrors "ballotcore/contexts/election-trust/election-service/domain/errors"
	"ballotcore/contexts/election-trust/election-service/ports"
)

type UpdateElectionCommand struct {
	ElectionID string
	Title      string
	Category   string
	Region     string
	Pincode    string
	StartDate  time.Time
	EndDate    time.Time
}

// UpdateElectionUseCase mutates draft elections only. Active and archived
// elections are immutable outside the state machine transitions.
type UpdateElectionUseCase struct {
	Elections ports.ElectionRepository
	Clock     ports.Clock
	Logger    *slog.Logger
}

func (uc UpdateElectionUseCase) Execute(ctx context.Context, cmd UpdateElectionCommand) (entities.Election, error) {
	logger := application.ResolveLogger(uc.Logger)
	election, err := uc.Elections.GetElection(ctx, strings.TrimSpace(cmd.ElectionID))
	if err != nil {
		return entities.Election{}, err
	}
	if !election.IsDraft() {
		return entities.Election{}, domainerrors.ErrElectionNotDraft
	}

	election.Title = strings.TrimSpace(cmd.Title)
	election.Category = strings.TrimSpace(cmd.Category)
	election.Region = strings.TrimSpace(cmd.Region)
	election.Pincode = strings.TrimSpace(cmd.Pincode)
	election.StartDate = cmd.StartDate.UTC()
	election.EndDate = cmd.EndDate.UTC()
	if !election.ValidateBasics() {
		return entities.Election{}, domainerrors.ErrInvalidElectionInput
	}
	election.UpdatedAt = uc.Clock.Now().UTC()
	if err := uc.Elections.UpdateElection(ctx, election); err != nil {
		return entities.Election{}, err
	}

	logger.Info("election updated",
		"event", "election_updated",
		"module", "election-trust/election-service",
		"layer", "application",
		"election_id", election.ElectionID,
	)
	return election, nil
}

type DeleteElectionCommand struct {
	ElectionID string
}

type DeleteElectionUseCase struct {
	Elections ports.ElectionRepository
	Logger    *slog.Logger
}

func (uc DeleteElectionUseCase) Execute(ctx context.Context, cmd DeleteElectionCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	election, err := uc.Elections.GetElection(ctx, strings.TrimSpace(cmd.ElectionID))
	if err != nil {
		return err
	}
	if !election.IsDraft() {
		return domainerrors.ErrElectionNotDraft
	}
	if err := uc.Elections.DeleteElection(ctx, election.ElectionID); err != nil {
		return err
	}
	logger.Info("election deleted",
		"event", "election_deleted",
		"module", "election-trust/election-service",
		"layer", "application",
		"election_id", election.ElectionID,
	)
	return nil
}
