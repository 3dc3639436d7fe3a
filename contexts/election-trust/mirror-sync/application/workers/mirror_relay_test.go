package workers_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	mirrorsync "ballotcore/contexts/election-trust/mirror-sync"
	"ballotcore/contexts/election-trust/mirror-sync/application/workers"
	"ballotcore/contexts/election-trust/mirror-sync/ports"
)

func envelope(t *testing.T, eventID string, eventType string, payload any) ports.EventEnvelope {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return ports.EventEnvelope{
		EventID:   eventID,
		EventType: eventType,
		Data:      data,
	}
}

func TestRelayAppliesElectionLifecycleEvent(t *testing.T) {
	module := mirrorsync.NewInMemoryModule(2, nil)

	event := envelope(t, "evt-1", workers.TopicElectionStarted, map[string]any{
		"election_id": "election-1",
		"title":       "General Election",
		"is_active":   true,
	})
	require.NoError(t, module.Relay.Handle(context.Background(), event))

	election, ok := module.Store.Election("election-1")
	require.True(t, ok)
	require.True(t, election.IsActive)
	require.Equal(t, "General Election", election.Title)
}

func TestRelayDeduplicatesRedelivery(t *testing.T) {
	module := mirrorsync.NewInMemoryModule(2, nil)

	event := envelope(t, "evt-vote-1", workers.TopicVoteCast, map[string]any{
		"vote_id":         "vote-1",
		"voter_id":        "voter-1",
		"election_id":     "election-1",
		"candidate_id":    "candidate-1",
		"candidate_first": "Asha",
	})
	require.NoError(t, module.Relay.Handle(context.Background(), event))
	require.NoError(t, module.Relay.Handle(context.Background(), event), "redelivery must be absorbed")
	require.Equal(t, 1, module.Store.VoteCount())
}

func TestRelaySwallowsDuplicateVoteFromDistinctEvent(t *testing.T) {
	module := mirrorsync.NewInMemoryModule(2, nil)

	first := envelope(t, "evt-vote-1", workers.TopicVoteCast, map[string]any{
		"vote_id":     "vote-1",
		"voter_id":    "voter-1",
		"election_id": "election-1",
		"none_option": true,
	})
	second := envelope(t, "evt-vote-2", workers.TopicVoteCast, map[string]any{
		"vote_id":     "vote-1",
		"voter_id":    "voter-1",
		"election_id": "election-1",
		"none_option": true,
	})
	require.NoError(t, module.Relay.Handle(context.Background(), first))
	require.NoError(t, module.Relay.Handle(context.Background(), second), "mirror duplicate guard must not trigger bus retry")
	require.Equal(t, 1, module.Store.VoteCount())
}

func TestRelayIgnoresUnknownAndMalformedEvents(t *testing.T) {
	module := mirrorsync.NewInMemoryModule(2, nil)

	unknown := envelope(t, "evt-x", "voter.registered", map[string]any{"voter_id": "voter-1"})
	require.NoError(t, module.Relay.Handle(context.Background(), unknown))

	malformed := ports.EventEnvelope{
		EventID:   "evt-bad",
		EventType: workers.TopicVoteCast,
		Data:      []byte("not-json"),
	}
	require.NoError(t, module.Relay.Handle(context.Background(), malformed))
	require.Equal(t, 0, module.Store.VoteCount())
}
