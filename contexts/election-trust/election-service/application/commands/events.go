package commands

import (
	"context"
	"encoding/json"
	"time"

	"ballotcore/contexts/election-trust/election-service/domain/entities"
	"ballotcore/contexts/election-trust/election-service/ports"
)

// appendElectionEvent persists one lifecycle event to the outbox. The outbox
// is optional for pure read/test wiring, so nil is treated as no-op.
func appendElectionEvent(
	ctx context.Context,
	outbox ports.OutboxWriter,
	idGen ports.IDGenerator,
	eventType string,
	election entities.Election,
	occurredAt time.Time,
	data map[string]any,
) error {
	if outbox == nil {
		return nil
	}
	eventID, err := idGen.NewID(ctx)
	if err != nil {
		return err
	}
	payload := map[string]any{
		"election_id": election.ElectionID,
		"category":    election.Category,
		"region":      election.Region,
		"is_active":   election.IsActive,
		"is_archived": election.IsArchived,
		"total_votes": election.TotalVotes,
	}
	for key, value := range data {
		payload[key] = value
	}
	envelope, err := newElectionEnvelope(eventID, eventType, election.ElectionID, occurredAt, payload)
	if err != nil {
		return err
	}
	return outbox.AppendOutbox(ctx, envelope)
}

func newElectionEnvelope(
	eventID string,
	eventType string,
	electionID string,
	occurredAt time.Time,
	data map[string]any,
) (ports.EventEnvelope, error) {
	// Lifecycle events are partitioned by election for stable ordering on
	// election-scoped consumers (the mirror relay in particular).
	payload, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "election-service",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "election_id",
		PartitionKey:     electionID,
		Data:             payload,
	}, nil
}
