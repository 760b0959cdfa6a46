package pipeline

import (
	"sync"
	"time"

	"agriprep/internal/dataset"
	"agriprep/internal/summary"
	"agriprep/pkg/contracts/domain"
)

// RunStatus represents the overall status of a preparation run.
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// Run is the complete state of one preparation run. Steps store their
// artifacts here for later steps; the mutex guards the status fields, the
// artifact fields are written by exactly one step before any reader runs.
type Run struct {
	mu sync.RWMutex

	ID         string
	SourceMode string
	Status     RunStatus
	StartTime  time.Time
	EndTime    *time.Time
	Err        error

	steps   map[string]*StepState
	stepIDs []string
	order   []Step

	// Artifacts, in the order the steps produce them.
	Raw        *dataset.Table
	Source     *domain.SourceTable
	Dimensions *domain.Dimensions
	Fact       *domain.FactTable
	Summaries  *summary.Result

	CleaningRp *domain.CleaningReport
	StarRp     *domain.StarReport
	SummaryRp  *domain.SummaryReport
	Doc        *domain.ModelDoc
}

// NewRun creates a pending run with one state entry per step.
func NewRun(id, sourceMode string, steps []Step) *Run {
	run := &Run{
		ID:         id,
		SourceMode: sourceMode,
		Status:     RunStatusPending,
		StartTime:  time.Now(),
		steps:      make(map[string]*StepState, len(steps)),
	}
	for _, step := range steps {
		run.steps[step.ID()] = NewStepState(step.ID(), step.Name())
		run.stepIDs = append(run.stepIDs, step.ID())
		run.order = append(run.order, step)
	}
	return run
}

// executable returns the step implementation behind the given ID, or nil.
func (r *Run) executable(id string) Step {
	for _, step := range r.order {
		if step.ID() == id {
			return step
		}
	}
	return nil
}

// Start marks the run as running.
func (r *Run) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Status = RunStatusRunning
	r.StartTime = time.Now()
}

// Complete marks the run as completed.
func (r *Run) Complete() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	r.EndTime = &now
	r.Status = RunStatusCompleted
}

// Fail marks the run as failed.
func (r *Run) Fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	r.EndTime = &now
	r.Status = RunStatusFailed
	r.Err = err
}

// Cancel marks the run as cancelled.
func (r *Run) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	r.EndTime = &now
	r.Status = RunStatusCancelled
}

// StoreDoc publishes the model document. Snapshots may be taken while the
// run is still executing, so the write goes through the lock.
func (r *Run) StoreDoc(doc *domain.ModelDoc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Doc = doc
}

// CurrentStatus returns the run status under the lock.
func (r *Run) CurrentStatus() RunStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.Status
}

// Step returns the state of the named step, or nil.
func (r *Run) Step(id string) *StepState {
	return r.steps[id]
}

// Duration returns how long the run has been executing, or took to execute.
func (r *Run) Duration() time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.EndTime != nil {
		return r.EndTime.Sub(r.StartTime)
	}
	return time.Since(r.StartTime)
}

// Snapshot returns a serializable view of the run, steps in execution order.
func (r *Run) Snapshot() RunSnapshot {
	r.mu.RLock()
	snap := RunSnapshot{
		ID:         r.ID,
		SourceMode: r.SourceMode,
		Status:     r.Status,
		StartTime:  r.StartTime,
		Doc:        r.Doc,
	}
	if r.EndTime != nil {
		t := *r.EndTime
		snap.EndTime = &t
	}
	if r.Err != nil {
		snap.Error = r.Err.Error()
	}
	r.mu.RUnlock()

	for _, id := range r.stepIDs {
		snap.Steps = append(snap.Steps, r.steps[id].Snapshot())
	}
	return snap
}

// RunSnapshot is an immutable view of a run, suitable for API responses.
type RunSnapshot struct {
	ID         string           `json:"id"`
	SourceMode string           `json:"source_mode"`
	Status     RunStatus        `json:"status"`
	StartTime  time.Time        `json:"start_time"`
	EndTime    *time.Time       `json:"end_time,omitempty"`
	Error      string           `json:"error,omitempty"`
	Steps      []StepSnapshot   `json:"steps"`
	Doc        *domain.ModelDoc `json:"model,omitempty"`
}
