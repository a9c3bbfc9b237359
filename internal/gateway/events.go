package gateway

import (
	"encoding/json"
	"time"
)

// ChangeOp is the kind of store mutation an event carries.
type ChangeOp string

const (
	OpPut    ChangeOp = "put"
	OpDelete ChangeOp = "delete"
)

// ChangeEvent is the wire form of one record-store mutation as it
// travels over the event stream. Origin identifies the writing
// instance so consumers can skip changes they already applied locally.
type ChangeEvent struct {
	ID        string          `json:"event_id"`
	Origin    string          `json:"origin"`
	Op        ChangeOp        `json:"op"`
	Path      string          `json:"path"`
	Timestamp time.Time       `json:"timestamp"`
	Value     json.RawMessage `json:"value,omitempty"`
}

// Snapshot is what websocket clients receive: the entire current value
// at one observable path, never a delta. Clients fully replace their
// local view for that path on every message.
type Snapshot struct {
	Path  string `json:"path"`
	Value any    `json:"value"`
}
