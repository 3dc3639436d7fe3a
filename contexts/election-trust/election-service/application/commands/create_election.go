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

type CreateElectionCommand struct {
	Title     string
	Category  string
	Region    string
	Pincode   string
	StartDate time.Time
	EndDate   time.Time
}

type CreateElectionUseCase struct {
	Elections ports.ElectionRepository
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

func (uc CreateElectionUseCase) Execute(ctx context.Context, cmd CreateElectionCommand) (entities.Election, error) {
	logger := application.ResolveLogger(uc.Logger)
	now := uc.Clock.Now().UTC()

	election := entities.Election{
		Title:     strings.TrimSpace(cmd.Title),
		Category:  strings.TrimSpace(cmd.Category),
		Region:    strings.TrimSpace(cmd.Region),
		Pincode:   strings.TrimSpace(cmd.Pincode),
		StartDate: cmd.StartDate.UTC(),
		EndDate:   cmd.EndDate.UTC(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if !election.ValidateBasics() {
		logger.Warn("election create validation failed",
			"event", "election_create_validation_failed",
			"module", "election-trust/election-service",
			"layer", "application",
			"title", election.Title,
			"category", election.Category,
		)
		return entities.Election{}, domainerrors.ErrInvalidElectionInput
	}

	electionID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Election{}, err
	}
	election.ElectionID = electionID
	if err := uc.Elections.SaveElection(ctx, election); err != nil {
		return entities.Election{}, err
	}

	logger.Info("election created",
		"event", "election_created",
		"module", "election-trust/election-service",
		"layer", "application",
		"election_id", election.ElectionID,
		"category", election.Category,
		"region", election.Region,
	)
	return election, nil
}
