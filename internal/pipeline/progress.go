package pipeline

import "agriprep/pkg/contracts/events"

// Publisher receives progress events while a run executes. The WebSocket
// hub implements it; a run without observers uses the no-op.
type Publisher interface {
	PublishRunUpdate(update events.RunUpdate)
	PublishStepUpdate(update events.StepUpdate)
}

// NopPublisher discards every update.
type NopPublisher struct{}

func (NopPublisher) PublishRunUpdate(events.RunUpdate)   {}
func (NopPublisher) PublishStepUpdate(events.StepUpdate) {}
