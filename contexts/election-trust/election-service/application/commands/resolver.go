package commands

import (
	"context"
	"log/slog"
	"strings"

	application "ballotcore/contexts/election-trust/election-service/application"
	"ballotcore/contexts/election-trust/election-service/domain/entities"
	"ballotcore/contexts/election-trust/election-service/ports"
)

// CandidateResolver backfills missing candidate-to-election references.
// Candidates may be created before their election is fully provisioned, with
// only category (and optionally region) known; this links them lazily.
type CandidateResolver struct {
	Candidates ports.CandidateRepository
	Logger     *slog.Logger
}

// ResolveResult carries the full candidate set after resolution plus the
// number of stray references backfilled by this run. A second run on the same
// election yields the same set and zero backfills.
type ResolveResult struct {
	Candidates []entities.Candidate
	Backfilled int
}

func (r CandidateResolver) Resolve(ctx context.Context, election entities.Election) (ResolveResult, error) {
	logger := application.ResolveLogger(r.Logger)

	strays, err := r.Candidates.ListStray(ctx, election.Category, election.Region)
	if err != nil {
		return ResolveResult{}, err
	}

	backfilled := 0
	if len(strays) > 0 {
		ids := make([]string, 0, len(strays))
		for _, candidate := range strays {
			if candidate.IsStrayFor(election) {
				ids = append(ids, candidate.CandidateID)
			}
		}
		if len(ids) > 0 {
			backfilled, err = r.Candidates.AssignElection(ctx, ids, election.ElectionID)
			if err != nil {
				return ResolveResult{}, err
			}
		}
	}

	full, err := r.Candidates.ListForElection(ctx, election.ElectionID, election.Category)
	if err != nil {
		return ResolveResult{}, err
	}

	if backfilled > 0 {
		logger.Info("stray candidates linked to election",
			"event", "election_candidates_resolved",
			"module", "election-trust/election-service",
			"layer", "application",
			"election_id", strings.TrimSpace(election.ElectionID),
			"backfilled", backfilled,
			"candidate_count", len(full),
		)
	}
	return ResolveResult{Candidates: full, Backfilled: backfilled}, nil
}
