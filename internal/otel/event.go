// Package otel records structured observability events for userdesk.
//
// Events are typed structs serialized as JSONL lines. The Logger writes them
// asynchronously through a buffered channel; an optional RingBuffer keeps the
// most recent ones in memory for the console's debug overlay.
package otel

import (
	"encoding/json"
	"time"
)

// Level defines event severity for filtering.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// EventKind identifies the category of an event.
// Dot-delimited: "<subsystem>.<action>".
type EventKind string

const (
	// Listing fetches
	KindFetchStart    EventKind = "fetch.start"
	KindFetchComplete EventKind = "fetch.complete"
	KindFetchError    EventKind = "fetch.error"
	KindFetchStale    EventKind = "fetch.stale"

	// Debounce gate
	KindDebounceArm  EventKind = "debounce.arm"
	KindDebounceFire EventKind = "debounce.fire"

	// Mutations
	KindMutationStart    EventKind = "mutation.start"
	KindMutationComplete EventKind = "mutation.complete"
	KindMutationError    EventKind = "mutation.error"
	KindPageRollback     EventKind = "page.rollback"

	// Journal
	KindJournalError EventKind = "journal.error"

	// UI
	KindKeyPress EventKind = "ui.key"

	// System
	KindStartup  EventKind = "sys.startup"
	KindShutdown EventKind = "sys.shutdown"
	KindError    EventKind = "sys.error"

	// Trace (USERDESK_TRACE)
	KindMsgReceived EventKind = "trace.msg_received"
)

// Event is the universal observability record. Every field except Kind and
// Time is optional.
type Event struct {
	Time      time.Time      `json:"t"`
	Level     Level          `json:"level,omitempty"`
	Kind      EventKind      `json:"kind"`
	Comp      string         `json:"comp,omitempty"`       // "listing", "remote", "ui", "main"
	SessionID string         `json:"session_id,omitempty"` // random hex, same for the whole run
	Epoch     uint64         `json:"epoch,omitempty"`      // fetch epoch the event belongs to
	Dur       time.Duration  `json:"-"`
	DurMs     float64        `json:"dur_ms,omitempty"`
	Page      int            `json:"page,omitempty"`
	Size      int            `json:"size,omitempty"`
	Count     int            `json:"count,omitempty"`
	Total     int64          `json:"total,omitempty"`
	UserID    string         `json:"user_id,omitempty"`
	Op        string         `json:"op,omitempty"`
	Err       string         `json:"err,omitempty"`
	Msg       string         `json:"msg,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
}

// MarshalJSON implements json.Marshaler, converting Dur to DurMs.
func (e Event) MarshalJSON() ([]byte, error) {
	type alias Event
	a := alias(e)
	if e.Dur > 0 {
		a.DurMs = float64(e.Dur) / float64(time.Millisecond)
	}
	return json.Marshal(a)
}
