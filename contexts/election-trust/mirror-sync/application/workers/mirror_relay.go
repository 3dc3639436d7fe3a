package workers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"strings"
	"time"

	application "ballotcore/contexts/election-trust/mirror-sync/application"
	domainerrors "ballotcore/contexts/election-trust/mirror-sync/domain/errors"
	"ballotcore/contexts/election-trust/mirror-sync/ports"
)

const (
	TopicElectionStarted  = "election.started"
	TopicElectionEnded    = "election.ended"
	TopicElectionArchived = "election.archived"
	TopicVoteCast         = "vote.cast"
)

// Topics lists everything the relay should be subscribed to.
func Topics() []string {
	return []string{TopicElectionStarted, TopicElectionEnded, TopicElectionArchived, TopicVoteCast}
}

// MirrorRelay consumes election lifecycle and vote events from the bus and
// applies them to the mirror. Mirror failures are returned so the bus retries
// delivery; they never reach the primary-side caller.
type MirrorRelay struct {
	Synchronizer application.Synchronizer
	Dedup        ports.EventDedupStore
	Clock        ports.Clock
	DedupTTL     time.Duration
	Logger       *slog.Logger
}

type electionEventPayload struct {
	ElectionID string `json:"election_id"`
	Title      string `json:"title"`
	IsActive   bool   `json:"is_active"`
	IsArchived bool   `json:"is_archived"`
	TotalVotes int    `json:"total_votes"`
}

type voteEventPayload struct {
	VoteID           string `json:"vote_id"`
	VoterID          string `json:"voter_id"`
	ElectionID       string `json:"election_id"`
	CandidateID      string `json:"candidate_id"`
	ChainCandidateID string `json:"chain_candidate_id"`
	CandidateFirst   string `json:"candidate_first"`
	CandidateLast    string `json:"candidate_last"`
	CandidateParty   string `json:"candidate_party"`
	NoneOption       bool   `json:"none_option"`
}

func (r MirrorRelay) Handle(ctx context.Context, event ports.EventEnvelope) error {
	logger := application.ResolveLogger(r.Logger)
	now := time.Now().UTC()
	if r.Clock != nil {
		now = r.Clock.Now().UTC()
	}

	if r.Dedup != nil {
		seen, err := r.Dedup.ReserveEvent(ctx, event.EventID, hashPayload(event.Data), now.Add(r.dedupTTL()))
		if err != nil {
			return err
		}
		if seen {
			return nil
		}
	}

	switch event.EventType {
	case TopicElectionStarted, TopicElectionEnded, TopicElectionArchived:
		return r.handleElection(ctx, event, logger)
	case TopicVoteCast:
		return r.handleVote(ctx, event, logger)
	default:
		logger.Warn("mirror relay skipping unknown event type",
			"event", "mirror_relay_unknown_event",
			"module", "election-trust/mirror-sync",
			"layer", "worker",
			"event_type", event.EventType,
			"event_id", event.EventID,
		)
		return nil
	}
}

func (r MirrorRelay) handleElection(ctx context.Context, event ports.EventEnvelope, logger *slog.Logger) error {
	var payload electionEventPayload
	if err := event.DecodeData(&payload); err != nil {
		logger.Error("mirror relay election payload decode failed",
			"event", "mirror_relay_decode_failed",
			"module", "election-trust/mirror-sync",
			"layer", "worker",
			"event_id", event.EventID,
			"error", err.Error(),
		)
		return nil
	}
	if strings.TrimSpace(payload.ElectionID) == "" {
		return nil
	}
	return r.Synchronizer.SyncElection(ctx, application.ElectionSync{
		ElectionID: payload.ElectionID,
		Title:      payload.Title,
		IsActive:   payload.IsActive,
		IsArchived: payload.IsArchived,
		TotalVotes: payload.TotalVotes,
	})
}

func (r MirrorRelay) handleVote(ctx context.Context, event ports.EventEnvelope, logger *slog.Logger) error {
	var payload voteEventPayload
	if err := event.DecodeData(&payload); err != nil {
		logger.Error("mirror relay vote payload decode failed",
			"event", "mirror_relay_decode_failed",
			"module", "election-trust/mirror-sync",
			"layer", "worker",
			"event_id", event.EventID,
			"error", err.Error(),
		)
		return nil
	}
	err := r.Synchronizer.SyncVote(ctx, application.VoteSync{
		VoteID:           payload.VoteID,
		VoterID:          payload.VoterID,
		ElectionID:       payload.ElectionID,
		CandidateID:      payload.CandidateID,
		ChainCandidateID: payload.ChainCandidateID,
		FirstName:        payload.CandidateFirst,
		LastName:         payload.CandidateLast,
		PartyName:        payload.CandidateParty,
		NoneOption:       payload.NoneOption,
	})
	// The mirror already recording this pair means an earlier partial sync
	// got the vote through; redelivery must not fail the relay.
	if errors.Is(err, domainerrors.ErrMirrorAlreadyVoted) {
		logger.Info("mirror relay skipped duplicate vote",
			"event", "mirror_relay_duplicate_vote",
			"module", "election-trust/mirror-sync",
			"layer", "worker",
			"event_id", event.EventID,
			"election_id", payload.ElectionID,
		)
		return nil
	}
	return err
}

func (r MirrorRelay) dedupTTL() time.Duration {
	if r.DedupTTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return r.DedupTTL
}

func hashPayload(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
