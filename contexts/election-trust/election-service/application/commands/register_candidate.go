package commands

import (
	"context"
	"log/slog"
	"strings"

	application "ballotcore/contexts/election-trust/election-service/application"
	"ballotcore/contexts/election-trust/election-service/domain/entities"
	domainerrors "ballotcore/contexts/election-trust/election-service/domain/errors"
	"ballotcore/contexts/election-trust/election-service/ports"
)

type RegisterCandidateCommand struct {
	FirstName    string
	LastName     string
	PartyName    string
	Category     string
	Constituency string
	// ElectionID may be empty; the association resolver links the candidate
	// on the next lifecycle transition of a matching election.
	ElectionID string
}

type RegisterCandidateUseCase struct {
	Candidates ports.CandidateRepository
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

func (uc RegisterCandidateUseCase) Execute(ctx context.Context, cmd RegisterCandidateCommand) (entities.Candidate, error) {
	logger := application.ResolveLogger(uc.Logger)
	if strings.TrimSpace(cmd.FirstName) == "" || strings.TrimSpace(cmd.Category) == "" {
		return entities.Candidate{}, domainerrors.ErrInvalidElectionInput
	}

	now := uc.Clock.Now().UTC()
	candidateID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Candidate{}, err
	}
	candidate := entities.Candidate{
		CandidateID:  candidateID,
		FirstName:    strings.TrimSpace(cmd.FirstName),
		LastName:     strings.TrimSpace(cmd.LastName),
		PartyName:    strings.TrimSpace(cmd.PartyName),
		Category:     strings.TrimSpace(cmd.Category),
		Constituency: strings.TrimSpace(cmd.Constituency),
		ElectionID:   strings.TrimSpace(cmd.ElectionID),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.Candidates.SaveCandidate(ctx, candidate); err != nil {
		return entities.Candidate{}, err
	}

	logger.Info("candidate registered",
		"event", "candidate_registered",
		"module", "election-trust/election-service",
		"layer", "application",
		"candidate_id", candidate.CandidateID,
		"category", candidate.Category,
		"election_id", candidate.ElectionID,
	)
	return candidate, nil
}
