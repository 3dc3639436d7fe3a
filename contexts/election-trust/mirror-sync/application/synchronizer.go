package application

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"ballotcore/contexts/election-trust/mirror-sync/domain/entities"
	domainerrors "ballotcore/contexts/election-trust/mirror-sync/domain/errors"
	"ballotcore/contexts/election-trust/mirror-sync/ports"
)

// ElectionSync is the mirror-relevant slice of an election lifecycle event.
type ElectionSync struct {
	ElectionID string
	Title      string
	IsActive   bool
	IsArchived bool
	TotalVotes int
}

// VoteSync is the mirror-relevant slice of a vote.cast event. None-option
// votes carry no candidate fields.
type VoteSync struct {
	VoteID           string
	VoterID          string
	ElectionID       string
	CandidateID      string
	ChainCandidateID string
	FirstName        string
	LastName         string
	PartyName        string
	NoneOption       bool
}

// Synchronizer applies primary-store writes to the mirror. Every operation
// acquires its own scoped session and releases it on all exit paths.
type Synchronizer struct {
	Mirror    ports.MirrorStore
	Matcher   CandidateMatcher
	Increment IncrementPolicy
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

// SyncElection upserts the mirror election record with the primary's
// lifecycle flags and total counter.
func (s Synchronizer) SyncElection(ctx context.Context, sync ElectionSync) error {
	logger := ResolveLogger(s.Logger)
	if strings.TrimSpace(sync.ElectionID) == "" {
		return domainerrors.ErrInvalidSyncInput
	}
	session, err := s.Mirror.Acquire(ctx)
	if err != nil {
		return err
	}
	defer session.Release()

	now := s.now()
	election, err := session.GetElectionByOriginalID(ctx, sync.ElectionID)
	switch {
	case err == nil:
		election.Title = sync.Title
		election.IsActive = sync.IsActive
		election.IsArchived = sync.IsArchived
		election.TotalVotes = sync.TotalVotes
		election.UpdatedAt = now
	case errors.Is(err, domainerrors.ErrRemoteElectionNotFound):
		mirrorKey, idErr := s.IDGen.NewID(ctx)
		if idErr != nil {
			return idErr
		}
		election = entities.RemoteElection{
			MirrorKey:          mirrorKey,
			OriginalElectionID: strings.TrimSpace(sync.ElectionID),
			Title:              sync.Title,
			IsActive:           sync.IsActive,
			IsArchived:         sync.IsArchived,
			TotalVotes:         sync.TotalVotes,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
	default:
		return err
	}
	if err := session.UpsertElection(ctx, election); err != nil {
		return err
	}

	logger.Info("mirror election synchronized",
		"event", "mirror_election_synced",
		"module", "election-trust/mirror-sync",
		"layer", "application",
		"election_id", sync.ElectionID,
		"is_active", sync.IsActive,
		"total_votes", sync.TotalVotes,
	)
	return nil
}

// SyncVote propagates one cast vote. The mirror-side duplicate guard runs
// before any write even though the primary already enforced uniqueness, so a
// half-applied earlier sync cannot double a vote. Counter increment failures
// are non-fatal: the vote record is what Reconcile rebuilds counters from.
func (s Synchronizer) SyncVote(ctx context.Context, sync VoteSync) error {
	logger := ResolveLogger(s.Logger)
	if strings.TrimSpace(sync.VoteID) == "" || strings.TrimSpace(sync.ElectionID) == "" {
		return domainerrors.ErrInvalidSyncInput
	}
	session, err := s.Mirror.Acquire(ctx)
	if err != nil {
		return err
	}
	defer session.Release()

	election, err := s.ensureElection(ctx, session, sync.ElectionID)
	if err != nil {
		return err
	}

	if _, err := session.GetVoteByPair(ctx, sync.VoterID, election.MirrorKey); err == nil {
		return domainerrors.ErrMirrorAlreadyVoted
	} else if !errors.Is(err, domainerrors.ErrRemoteVoteNotFound) {
		return err
	}

	now := s.now()
	vote := entities.RemoteVote{
		OriginalVoteID: strings.TrimSpace(sync.VoteID),
		VoterID:        strings.TrimSpace(sync.VoterID),
		ElectionKey:    election.MirrorKey,
		CreatedAt:      now,
	}
	voteKey, err := s.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	vote.MirrorKey = voteKey

	seeded := false
	if !sync.NoneOption {
		candidateKey, createdSeeded, err := s.resolveCandidate(ctx, session, election, sync, now)
		if err != nil {
			return err
		}
		vote.CandidateKey = candidateKey
		seeded = createdSeeded
	}

	if err := session.CreateVote(ctx, vote); err != nil {
		return err
	}

	// A freshly seeded candidate already counts this vote.
	if vote.CandidateKey != "" && !seeded {
		if err := s.Increment.Increment(ctx, session, vote.CandidateKey, 1); err != nil {
			logger.Error("mirror vote counter not incremented",
				"event", "mirror_increment_exhausted",
				"module", "election-trust/mirror-sync",
				"layer", "application",
				"vote_id", sync.VoteID,
				"candidate_key", vote.CandidateKey,
				"error", err.Error(),
			)
		}
	}

	logger.Info("mirror vote synchronized",
		"event", "mirror_vote_synced",
		"module", "election-trust/mirror-sync",
		"layer", "application",
		"vote_id", sync.VoteID,
		"election_id", sync.ElectionID,
		"none_option", sync.NoneOption,
	)
	return nil
}

// MirrorHasVoted is the read-side guard consulted by the vote ledger's chain
// status check.
func (s Synchronizer) MirrorHasVoted(ctx context.Context, voterID string, electionID string) (bool, error) {
	session, err := s.Mirror.Acquire(ctx)
	if err != nil {
		return false, err
	}
	defer session.Release()

	election, err := session.GetElectionByOriginalID(ctx, strings.TrimSpace(electionID))
	if err != nil {
		if errors.Is(err, domainerrors.ErrRemoteElectionNotFound) {
			return false, nil
		}
		return false, err
	}
	_, err = session.GetVoteByPair(ctx, strings.TrimSpace(voterID), election.MirrorKey)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, domainerrors.ErrRemoteVoteNotFound) {
		return false, nil
	}
	return false, err
}

// Reconcile re-derives mirror candidate counters and the election total from
// the mirror vote records, repairing drift left by exhausted increment tiers
// or duplicate-guard rejections.
func (s Synchronizer) Reconcile(ctx context.Context, electionID string) error {
	logger := ResolveLogger(s.Logger)
	session, err := s.Mirror.Acquire(ctx)
	if err != nil {
		return err
	}
	defer session.Release()

	election, err := session.GetElectionByOriginalID(ctx, strings.TrimSpace(electionID))
	if err != nil {
		return err
	}
	votes, err := session.ListVotesForElection(ctx, election.MirrorKey)
	if err != nil {
		return err
	}
	counts := make(map[string]int)
	for _, vote := range votes {
		if vote.CandidateKey != "" {
			counts[vote.CandidateKey]++
		}
	}

	candidates, err := session.ListCandidatesForElection(ctx, election.MirrorKey)
	if err != nil {
		return err
	}
	repaired := 0
	for _, candidate := range candidates {
		expected := counts[candidate.MirrorKey]
		if candidate.VoteCount == expected {
			continue
		}
		candidate.VoteCount = expected
		candidate.UpdatedAt = s.now()
		if err := session.SaveCandidate(ctx, candidate); err != nil {
			return err
		}
		repaired++
	}

	election.TotalVotes = len(votes)
	election.UpdatedAt = s.now()
	if err := session.UpsertElection(ctx, election); err != nil {
		return err
	}

	logger.Info("mirror election reconciled",
		"event", "mirror_reconciled",
		"module", "election-trust/mirror-sync",
		"layer", "application",
		"election_id", electionID,
		"vote_count", len(votes),
		"repaired_candidates", repaired,
	)
	return nil
}

// ensureElection loads the mirror election, creating a minimal record when
// the vote event arrives before any lifecycle event did.
func (s Synchronizer) ensureElection(ctx context.Context, session ports.Session, electionID string) (entities.RemoteElection, error) {
	election, err := session.GetElectionByOriginalID(ctx, strings.TrimSpace(electionID))
	if err == nil {
		return election, nil
	}
	if !errors.Is(err, domainerrors.ErrRemoteElectionNotFound) {
		return entities.RemoteElection{}, err
	}
	mirrorKey, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.RemoteElection{}, err
	}
	now := s.now()
	election = entities.RemoteElection{
		MirrorKey:          mirrorKey,
		OriginalElectionID: strings.TrimSpace(electionID),
		IsActive:           true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := session.UpsertElection(ctx, election); err != nil {
		return entities.RemoteElection{}, err
	}
	return election, nil
}

// resolveCandidate runs the matcher cascade and, when every strategy misses
// and the event carries candidate details, creates a new mirror candidate
// seeded with the vote being propagated. The seeded return tells the caller
// to skip the counter increment for this sync.
func (s Synchronizer) resolveCandidate(
	ctx context.Context,
	session ports.Session,
	election entities.RemoteElection,
	sync VoteSync,
	now time.Time,
) (string, bool, error) {
	query := CandidateQuery{
		ElectionKey:         election.MirrorKey,
		OriginalCandidateID: strings.TrimSpace(sync.CandidateID),
		FirstName:           strings.TrimSpace(sync.FirstName),
		LastName:            strings.TrimSpace(sync.LastName),
		PartyName:           strings.TrimSpace(sync.PartyName),
	}
	candidate, ok, err := s.Matcher.Match(ctx, session, query)
	if err != nil {
		return "", false, err
	}
	if ok {
		return candidate.MirrorKey, false, nil
	}
	if query.FirstName == "" {
		return "", false, domainerrors.ErrRemoteCandidateNotFound
	}

	mirrorKey, err := s.IDGen.NewID(ctx)
	if err != nil {
		return "", false, err
	}
	created := entities.RemoteCandidate{
		MirrorKey:           mirrorKey,
		OriginalCandidateID: query.OriginalCandidateID,
		ElectionKey:         election.MirrorKey,
		FirstName:           query.FirstName,
		LastName:            query.LastName,
		PartyName:           query.PartyName,
		VoteCount:           1,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := session.CreateCandidate(ctx, created); err != nil {
		return "", false, err
	}
	return created.MirrorKey, true, nil
}

func (s Synchronizer) now() time.Time {
	if s.Clock != nil {
		return s.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
