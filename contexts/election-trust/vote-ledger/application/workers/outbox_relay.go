package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	application "ballotcore/contexts/election-trust/vote-ledger/application"
	"ballotcore/contexts/election-trust/vote-ledger/ports"
)

// OutboxRelay publishes persisted vote.cast events to the event bus for the
// mirror synchronizer.
type OutboxRelay struct {
	Outbox    ports.OutboxRepository
	Publisher ports.EventPublisher
	Clock     ports.Clock
	BatchSize int
	Logger    *slog.Logger
}

// RunOnce publishes a bounded batch of pending outbox rows. A row is marked
// published only after bus publish succeeds; the cycle stops on the first
// failure so the next run reprocesses the remainder.
func (r OutboxRelay) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(r.Logger)
	limit := r.BatchSize
	if limit <= 0 {
		limit = 100
	}

	pending, err := r.Outbox.ListPendingOutbox(ctx, limit)
	if err != nil {
		logger.Error("vote outbox list failed",
			"event", "vote_outbox_list_failed",
			"module", "election-trust/vote-ledger",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}
	if len(pending) == 0 {
		return nil
	}

	now := time.Now().UTC()
	if r.Clock != nil {
		now = r.Clock.Now().UTC()
	}

	for _, row := range pending {
		var event ports.EventEnvelope
		if err := json.Unmarshal(row.Payload, &event); err != nil {
			logger.Error("vote outbox decode failed",
				"event", "vote_outbox_decode_failed",
				"module", "election-trust/vote-ledger",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"error", err.Error(),
			)
			return err
		}
		topic := event.EventType
		if topic == "" {
			topic = row.EventType
		}
		if err := r.Publisher.Publish(ctx, topic, event); err != nil {
			logger.Error("vote outbox publish failed",
				"event", "vote_outbox_publish_failed",
				"module", "election-trust/vote-ledger",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"event_id", event.EventID,
				"error", err.Error(),
			)
			return err
		}
		if err := r.Outbox.MarkOutboxPublished(ctx, row.OutboxID, now); err != nil {
			logger.Error("vote outbox mark published failed",
				"event", "vote_outbox_mark_published_failed",
				"module", "election-trust/vote-ledger",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"error", err.Error(),
			)
			return err
		}
	}

	logger.Info("vote outbox relay cycle completed",
		"event", "vote_outbox_relay_completed",
		"module", "election-trust/vote-ledger",
		"layer", "worker",
		"published_count", len(pending),
	)
	return nil
}
