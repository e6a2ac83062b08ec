// Package eventstream defines the turn event payloads and the Publisher
// contract used to announce completed conversation turns to downstream
// consumers.
package eventstream

import "time"

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeTurnCompleted is emitted after a conversation turn
	// finishes with a final answer.
	EventTypeTurnCompleted = "clerk.turn.completed"

	// EventTypeTurnSuspended is emitted when a turn parks on an
	// interrupt awaiting human input.
	EventTypeTurnSuspended = "clerk.turn.suspended"
)

// TurnEvent is a transport-neutral event payload for a finished or
// suspended turn.
type TurnEvent struct {
	SchemaVersion int       `json:"schema_version"`
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EmittedAt     time.Time `json:"emitted_at"`
	ThreadID      string    `json:"thread_id"`
	Query         string    `json:"query"`

	// Answer is set for completed turns.
	Answer string `json:"answer,omitempty"`

	// InterruptKind is set for suspended turns.
	InterruptKind string `json:"interrupt_kind,omitempty"`

	// Searched reports whether the turn ran a catalog search round.
	Searched bool `json:"searched"`

	// ResultCount is how many merged records the turn ended with.
	ResultCount int `json:"result_count"`
}
