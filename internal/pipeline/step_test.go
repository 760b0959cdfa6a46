package pipeline

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepState_Lifecycle(t *testing.T) {
	tests := []struct {
		name       string
		transition func(s *StepState)
		wantStatus StepStatus
		wantEnded  bool
	}{
		{
			name:       "start marks active",
			transition: func(s *StepState) { s.Start() },
			wantStatus: StepStatusActive,
		},
		{
			name: "complete sets progress and end time",
			transition: func(s *StepState) {
				s.Start()
				s.Complete("done")
			},
			wantStatus: StepStatusCompleted,
			wantEnded:  true,
		},
		{
			name: "fail records the error",
			transition: func(s *StepState) {
				s.Start()
				s.Fail(errors.New("boom"))
			},
			wantStatus: StepStatusFailed,
			wantEnded:  true,
		},
		{
			name:       "skip records the reason",
			transition: func(s *StepState) { s.Skip("upstream failed") },
			wantStatus: StepStatusSkipped,
			wantEnded:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := NewStepState("clean", "Clean Dataset")
			require.Equal(t, StepStatusPending, state.Status)

			tt.transition(state)

			snap := state.Snapshot()
			assert.Equal(t, tt.wantStatus, snap.Status)
			if tt.wantEnded {
				assert.NotNil(t, snap.EndTime)
			} else {
				assert.Nil(t, snap.EndTime)
			}
		})
	}
}

func TestStepState_CompleteSetsFullProgress(t *testing.T) {
	state := NewStepState("fetch", "Acquire Source Data")
	state.Start()
	state.UpdateProgress(40, "downloading")
	assert.Equal(t, 40.0, state.Snapshot().Progress)

	state.Complete("")
	assert.Equal(t, 100.0, state.Snapshot().Progress)
}

func TestStepState_FailCapturesMessage(t *testing.T) {
	state := NewStepState("export", "Export Artifacts")
	state.Start()
	state.Fail(errors.New("disk full"))

	snap := state.Snapshot()
	assert.Equal(t, "disk full", snap.Error)
}

func TestStepState_Duration(t *testing.T) {
	state := NewStepState("fetch", "Acquire Source Data")
	assert.Zero(t, state.Duration())

	state.Start()
	time.Sleep(5 * time.Millisecond)
	assert.Greater(t, state.Duration(), time.Duration(0))

	state.Complete("")
	frozen := state.Duration()
	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, frozen, state.Duration(), "duration is fixed once the step ends")
}

func TestRun_SnapshotPreservesStepOrder(t *testing.T) {
	steps := []Step{
		NewFetchStep(nil, nil),
		NewCleanStep(nil, nil),
		NewSummariesStep(nil, nil),
	}
	run := NewRun("run-1", "auto", steps)

	snap := run.Snapshot()
	require.Len(t, snap.Steps, 3)
	assert.Equal(t, StepIDFetch, snap.Steps[0].ID)
	assert.Equal(t, StepIDClean, snap.Steps[1].ID)
	assert.Equal(t, StepIDSummaries, snap.Steps[2].ID)
}

func TestRun_TerminalTransitions(t *testing.T) {
	run := NewRun("run-2", "file", nil)
	assert.Equal(t, RunStatusPending, run.CurrentStatus())

	run.Start()
	assert.Equal(t, RunStatusRunning, run.CurrentStatus())

	run.Fail(errors.New("no source"))
	snap := run.Snapshot()
	assert.Equal(t, RunStatusFailed, snap.Status)
	assert.Equal(t, "no source", snap.Error)
	require.NotNil(t, snap.EndTime)
}
