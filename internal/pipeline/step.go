package pipeline

import (
	"context"
	"sync"
	"time"
)

// Step is a single stage of a preparation run. Steps communicate through
// the Run: each reads the artifacts earlier steps stored and stores its own.
type Step interface {
	// ID returns the unique identifier for this step.
	ID() string

	// Name returns the human-readable name for this step.
	Name() string

	// Execute runs the step against the given run state.
	Execute(ctx context.Context, run *Run) error
}

// StepStatus represents the current status of a step.
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusActive    StepStatus = "active"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
	StepStatusSkipped   StepStatus = "skipped"
)

// StepState represents the runtime state of a step.
type StepState struct {
	mu        sync.RWMutex
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Status    StepStatus `json:"status"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Progress  float64    `json:"progress"`
	Message   string     `json:"message,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// NewStepState creates a step state in the pending status.
func NewStepState(id, name string) *StepState {
	return &StepState{
		ID:     id,
		Name:   name,
		Status: StepStatusPending,
	}
}

// Start marks the step as active and sets the start time.
func (s *StepState) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.StartTime = &now
	s.Status = StepStatusActive
	s.Progress = 0
}

// Complete marks the step as completed and sets the end time.
func (s *StepState) Complete(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.EndTime = &now
	s.Status = StepStatusCompleted
	s.Progress = 100
	s.Message = message
}

// Fail marks the step as failed with the given error.
func (s *StepState) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.EndTime = &now
	s.Status = StepStatusFailed
	if err != nil {
		s.Error = err.Error()
	}
}

// Skip marks the step as skipped with the given reason.
func (s *StepState) Skip(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.EndTime = &now
	s.Status = StepStatusSkipped
	s.Message = reason
}

// UpdateProgress updates the step progress and message.
func (s *StepState) UpdateProgress(progress float64, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Progress = progress
	s.Message = message
}

// Duration returns how long the step has run, or took to run.
func (s *StepState) Duration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.StartTime == nil {
		return 0
	}
	if s.EndTime != nil {
		return s.EndTime.Sub(*s.StartTime)
	}
	return time.Since(*s.StartTime)
}

// Snapshot returns a copy safe to serialize while the step keeps mutating.
func (s *StepState) Snapshot() StepSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := StepSnapshot{
		ID:       s.ID,
		Name:     s.Name,
		Status:   s.Status,
		Progress: s.Progress,
		Message:  s.Message,
		Error:    s.Error,
	}
	if s.StartTime != nil {
		t := *s.StartTime
		snap.StartTime = &t
	}
	if s.EndTime != nil {
		t := *s.EndTime
		snap.EndTime = &t
	}
	return snap
}

// StepSnapshot is an immutable view of a step state.
type StepSnapshot struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Status    StepStatus `json:"status"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Progress  float64    `json:"progress"`
	Message   string     `json:"message,omitempty"`
	Error     string     `json:"error,omitempty"`
}
