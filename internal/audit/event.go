// Package audit records every admission and execution decision as an
// append-only event row plus one structured log line. Recording is strictly
// best effort: failures are logged and swallowed, never returned, so a dead
// audit store can never block a trade decision.
package audit

import "time"

// Event types emitted by the execution core.
const (
	EventSignalCreated  = "signal_created"
	EventGateBlocked    = "gate_blocked"
	EventSignalApproved = "signal_approved"
	EventSignalRejected = "signal_rejected"
	EventOrderExecuted  = "order_executed"
	EventOrderQueued    = "order_queued"
	EventAutoExecuted   = "auto_executed"
	EventExecutionFault = "execution_failed"
	EventCancelled      = "execution_cancelled"
	EventQueueRestored  = "queue_restored"
)

// Event is one signal_events row. Append-only; never updated or deleted.
type Event struct {
	SignalID  string         `json:"signal_id,omitempty"`
	EventType string         `json:"event_type"`
	Symbol    string         `json:"symbol"`
	Action    string         `json:"action,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
