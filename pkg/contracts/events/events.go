// Package events contains the event contracts broadcast over WebSocket while
// a preparation pipeline runs.
package events

import "time"

// Event types pushed to connected clients.
const (
	TypeConnection   = "connection"
	TypeRunStatus    = "run:status"
	TypeStepProgress = "run:step"
	TypeRunComplete  = "run:complete"
	TypeError        = "error"
)

// StepUpdate is the payload of a run:step event: one pipeline step changed
// status or progress.
type StepUpdate struct {
	RunID    string  `json:"run_id"`
	StepID   string  `json:"step_id"`
	StepName string  `json:"step_name"`
	Status   string  `json:"status"`
	Progress float64 `json:"progress"`
	Message  string  `json:"message,omitempty"`
	Error    string  `json:"error,omitempty"`
}

// RunUpdate is the payload of run:status and run:complete events.
type RunUpdate struct {
	RunID    string    `json:"run_id"`
	Status   string    `json:"status"`
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// Envelope wraps every broadcast payload with its type and timestamp.
type Envelope struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// NewEnvelope stamps a payload for broadcast.
func NewEnvelope(eventType string, payload interface{}) Envelope {
	return Envelope{Type: eventType, Timestamp: time.Now().UTC(), Payload: payload}
}
