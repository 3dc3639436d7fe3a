package queries

import (
	"context"
	"strings"

	"ballotcore/contexts/election-trust/election-service/domain/entities"
	"ballotcore/contexts/election-trust/election-service/ports"
)

type ElectionUseCase struct {
	Elections  ports.ElectionRepository
	Candidates ports.CandidateRepository
	Votes      ports.VoteCountReader
}

func (uc ElectionUseCase) GetElection(ctx context.Context, electionID string) (entities.Election, error) {
	return uc.Elections.GetElection(ctx, strings.TrimSpace(electionID))
}

func (uc ElectionUseCase) ListElections(ctx context.Context) ([]entities.Election, error) {
	return uc.Elections.ListElections(ctx)
}

// ElectionResults is the tally snapshot for one election. TotalVotes is a
// fresh count of Vote rows; candidate counters are the live denormalized
// values.
type ElectionResults struct {
	Election   entities.Election
	Candidates []entities.Candidate
	TotalVotes int
}

func (uc ElectionUseCase) Results(ctx context.Context, electionID string) (ElectionResults, error) {
	election, err := uc.Elections.GetElection(ctx, strings.TrimSpace(electionID))
	if err != nil {
		return ElectionResults{}, err
	}
	candidates, err := uc.Candidates.ListForElection(ctx, election.ElectionID, election.Category)
	if err != nil {
		return ElectionResults{}, err
	}
	totalVotes, err := uc.Votes.CountVotes(ctx, election.ElectionID)
	if err != nil {
		return ElectionResults{}, err
	}
	return ElectionResults{
		Election:   election,
		Candidates: candidates,
		TotalVotes: totalVotes,
	}, nil
}
