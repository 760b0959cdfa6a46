package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrRunInProgress is returned when a new run is requested while another
// run is still executing. Runs share the data and output directories, so
// only one may execute at a time.
var ErrRunInProgress = errors.New("a pipeline run is already in progress")

// Manager owns the run registry: it starts runs asynchronously and serves
// their state to the HTTP layer.
type Manager struct {
	mu      sync.RWMutex
	logger  *slog.Logger
	runner  *Runner
	timeout time.Duration
	runs    map[string]*Run
	active  string
}

// NewManager creates a run manager. timeout bounds each run; zero means
// no bound.
func NewManager(logger *slog.Logger, runner *Runner, timeout time.Duration) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		logger:  logger.With(slog.String("component", "pipeline.manager")),
		runner:  runner,
		timeout: timeout,
		runs:    make(map[string]*Run),
	}
}

// Start launches a run in the background and returns its ID immediately.
func (m *Manager) Start(sourceMode string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != "" {
		switch m.runs[m.active].CurrentStatus() {
		case RunStatusPending, RunStatusRunning:
			return "", ErrRunInProgress
		}
	}

	id := uuid.New().String()
	run := NewRun(id, sourceMode, m.runner.Steps(sourceMode))
	m.runs[id] = run
	m.active = id

	go func() {
		ctx := context.Background()
		if m.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, m.timeout)
			defer cancel()
		}
		m.runner.Execute(ctx, run)
	}()

	m.logger.Info("run accepted",
		slog.String("run_id", id),
		slog.String("source_mode", sourceMode))
	return id, nil
}

// Get returns a snapshot of the named run.
func (m *Manager) Get(id string) (RunSnapshot, bool) {
	m.mu.RLock()
	run, ok := m.runs[id]
	m.mu.RUnlock()
	if !ok {
		return RunSnapshot{}, false
	}
	return run.Snapshot(), true
}

// List returns snapshots of every known run, newest first.
func (m *Manager) List() []RunSnapshot {
	m.mu.RLock()
	snapshots := make([]RunSnapshot, 0, len(m.runs))
	for _, run := range m.runs {
		snapshots = append(snapshots, run.Snapshot())
	}
	m.mu.RUnlock()

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].StartTime.After(snapshots[j].StartTime)
	})
	return snapshots
}
