package application

import (
	"context"
	"errors"
	"strings"

	"ballotcore/contexts/election-trust/mirror-sync/domain/entities"
	domainerrors "ballotcore/contexts/election-trust/mirror-sync/domain/errors"
	"ballotcore/contexts/election-trust/mirror-sync/ports"
)

// CandidateQuery carries everything the matcher may use to correlate a
// primary candidate with its mirror record.
type CandidateQuery struct {
	ElectionKey         string
	OriginalCandidateID string
	FirstName           string
	LastName            string
	PartyName           string
}

// MatcherStrategy is one correlation attempt. A (zero, false, nil) return
// means "no match, try the next strategy"; an error aborts the cascade.
type MatcherStrategy func(ctx context.Context, session ports.Session, q CandidateQuery) (entities.RemoteCandidate, bool, error)

// CandidateMatcher runs its strategies in order and returns the first match.
// The default cascade goes from the cheapest, most exact correlation to the
// loosest structural one; creation of a missing mirror candidate is the
// synchronizer's job, not the matcher's.
type CandidateMatcher struct {
	Strategies []MatcherStrategy
}

func NewCandidateMatcher() CandidateMatcher {
	return CandidateMatcher{
		Strategies: []MatcherStrategy{
			MatchByDirectKey,
			MatchByOriginalID,
			MatchByOriginalIDPrefix,
			MatchByStructuralName,
		},
	}
}

func (m CandidateMatcher) Match(ctx context.Context, session ports.Session, q CandidateQuery) (entities.RemoteCandidate, bool, error) {
	for _, strategy := range m.Strategies {
		candidate, ok, err := strategy(ctx, session, q)
		if err != nil {
			return entities.RemoteCandidate{}, false, err
		}
		if ok {
			return candidate, true, nil
		}
	}
	return entities.RemoteCandidate{}, false, nil
}

// MatchByDirectKey treats the primary candidate id as the mirror's own key.
// Covers mirrors seeded directly from the primary store.
func MatchByDirectKey(ctx context.Context, session ports.Session, q CandidateQuery) (entities.RemoteCandidate, bool, error) {
	if strings.TrimSpace(q.OriginalCandidateID) == "" {
		return entities.RemoteCandidate{}, false, nil
	}
	candidate, err := session.GetCandidateByKey(ctx, strings.TrimSpace(q.OriginalCandidateID))
	return matched(candidate, err)
}

// MatchByOriginalID looks for an exact correlation id match within the
// election.
func MatchByOriginalID(ctx context.Context, session ports.Session, q CandidateQuery) (entities.RemoteCandidate, bool, error) {
	if strings.TrimSpace(q.OriginalCandidateID) == "" {
		return entities.RemoteCandidate{}, false, nil
	}
	candidate, err := session.FindCandidateByOriginalID(ctx, q.ElectionKey, strings.TrimSpace(q.OriginalCandidateID))
	return matched(candidate, err)
}

// MatchByOriginalIDPrefix covers correlation ids that earlier sync runs
// suffixed for disambiguation.
func MatchByOriginalIDPrefix(ctx context.Context, session ports.Session, q CandidateQuery) (entities.RemoteCandidate, bool, error) {
	if strings.TrimSpace(q.OriginalCandidateID) == "" {
		return entities.RemoteCandidate{}, false, nil
	}
	candidate, err := session.FindCandidateByOriginalIDPrefix(ctx, q.ElectionKey, strings.TrimSpace(q.OriginalCandidateID))
	return matched(candidate, err)
}

// MatchByStructuralName is the loosest tier: same election, same first/last
// name and party.
func MatchByStructuralName(ctx context.Context, session ports.Session, q CandidateQuery) (entities.RemoteCandidate, bool, error) {
	if strings.TrimSpace(q.FirstName) == "" {
		return entities.RemoteCandidate{}, false, nil
	}
	candidate, err := session.FindCandidateByName(ctx, q.ElectionKey, q.FirstName, q.LastName, q.PartyName)
	return matched(candidate, err)
}

func matched(candidate entities.RemoteCandidate, err error) (entities.RemoteCandidate, bool, error) {
	if err == nil {
		return candidate, true, nil
	}
	if errors.Is(err, domainerrors.ErrRemoteCandidateNotFound) {
		return entities.RemoteCandidate{}, false, nil
	}
	return entities.RemoteCandidate{}, false, err
}
