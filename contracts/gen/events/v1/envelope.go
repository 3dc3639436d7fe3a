package v1

import (
	"encoding/json"
	"time"
)

// Envelope is the versioned wrapper for every event crossing a service
// boundary (election lifecycle, vote propagation). Contract-only package;
// field changes must stay backward compatible.
type Envelope struct {
	EventID          string          `json:"event_id"`
	EventType        string          `json:"event_type"`
	OccurredAt       time.Time       `json:"occurred_at"`
	SourceService    string          `json:"source_service"`
	TraceID          string          `json:"trace_id"`
	SchemaVersion    int             `json:"schema_version"`
	PartitionKeyPath string          `json:"partition_key_path"`
	PartitionKey     string          `json:"partition_key"`
	Data             json.RawMessage `json:"data"`
}

// DecodeData unmarshals the event payload into v.
func (e Envelope) DecodeData(v any) error {
	return json.Unmarshal(e.Data, v)
}
