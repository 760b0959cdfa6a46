package websocket

import (
	"agriprep/pkg/contracts/events"
)

// RunEventAdapter turns pipeline progress callbacks into broadcast
// envelopes. It implements pipeline.Publisher.
type RunEventAdapter struct {
	hub *Hub
}

// NewRunEventAdapter wires the hub into the pipeline.
func NewRunEventAdapter(hub *Hub) *RunEventAdapter {
	return &RunEventAdapter{hub: hub}
}

// PublishRunUpdate broadcasts a run status change. Terminal statuses go out
// as run:complete so clients can tear down their progress UI.
func (a *RunEventAdapter) PublishRunUpdate(update events.RunUpdate) {
	eventType := events.TypeRunStatus
	switch update.Status {
	case "completed", "failed", "cancelled":
		eventType = events.TypeRunComplete
	}
	a.hub.Broadcast(events.NewEnvelope(eventType, update))
}

// PublishStepUpdate broadcasts a step status or progress change.
func (a *RunEventAdapter) PublishStepUpdate(update events.StepUpdate) {
	a.hub.Broadcast(events.NewEnvelope(events.TypeStepProgress, update))
}
