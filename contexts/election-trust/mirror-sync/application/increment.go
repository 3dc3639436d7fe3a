package application

import (
	"context"
	"fmt"
	"log/slog"

	domainerrors "ballotcore/contexts/election-trust/mirror-sync/domain/errors"
	"ballotcore/contexts/election-trust/mirror-sync/ports"
)

// IncrementTier is one attempt at bumping a mirror candidate's vote counter.
type IncrementTier struct {
	Name  string
	Apply func(ctx context.Context, session ports.Session, candidateKey string, delta int) error
}

// IncrementPolicy runs its tiers in order; a tier runs only if every previous
// tier failed. Exhausting all tiers returns ErrIncrementExhausted, which the
// synchronizer logs without failing the overall propagation.
type IncrementPolicy struct {
	Tiers  []IncrementTier
	Logger *slog.Logger
}

func NewIncrementPolicy(logger *slog.Logger) IncrementPolicy {
	return IncrementPolicy{
		Tiers: []IncrementTier{
			{Name: "load_mutate_save", Apply: loadMutateSave},
			{Name: "atomic_increment", Apply: atomicIncrement},
			{Name: "raw_increment", Apply: rawIncrement},
		},
		Logger: logger,
	}
}

func (p IncrementPolicy) Increment(ctx context.Context, session ports.Session, candidateKey string, delta int) error {
	logger := ResolveLogger(p.Logger)
	var lastErr error
	for _, tier := range p.Tiers {
		err := tier.Apply(ctx, session, candidateKey, delta)
		if err == nil {
			if lastErr != nil {
				logger.Info("mirror counter increment recovered on fallback tier",
					"event", "mirror_increment_recovered",
					"module", "election-trust/mirror-sync",
					"layer", "application",
					"candidate_key", candidateKey,
					"tier", tier.Name,
				)
			}
			return nil
		}
		logger.Warn("mirror counter increment tier failed",
			"event", "mirror_increment_tier_failed",
			"module", "election-trust/mirror-sync",
			"layer", "application",
			"candidate_key", candidateKey,
			"tier", tier.Name,
			"error", err.Error(),
		)
		lastErr = err
	}
	return fmt.Errorf("%w: %s", domainerrors.ErrIncrementExhausted, lastErr)
}

func loadMutateSave(ctx context.Context, session ports.Session, candidateKey string, delta int) error {
	candidate, err := session.GetCandidateByKey(ctx, candidateKey)
	if err != nil {
		return err
	}
	candidate.VoteCount += delta
	return session.SaveCandidate(ctx, candidate)
}

func atomicIncrement(ctx context.Context, session ports.Session, candidateKey string, delta int) error {
	return session.AtomicIncrementVotes(ctx, candidateKey, delta)
}

func rawIncrement(ctx context.Context, session ports.Session, candidateKey string, delta int) error {
	return session.RawIncrementVotes(ctx, candidateKey, delta)
}
