package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agriprep/internal/dataset"
	apperrors "agriprep/internal/errors"
)

// gateProvider blocks Fetch until released, then fails. It lets tests hold
// a run in the running state deterministically.
type gateProvider struct {
	release chan struct{}
}

func (g *gateProvider) Name() string { return "gate" }

func (g *gateProvider) Fetch(ctx context.Context) (*dataset.Table, error) {
	select {
	case <-g.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return nil, apperrors.NewSourceUnavailableError("gate closed", nil)
}

func newGatedManager(t *testing.T) (*Manager, *gateProvider) {
	t.Helper()
	gate := &gateProvider{release: make(chan struct{})}
	runner := NewRunner(nil, Dependencies{File: gate})
	return NewManager(nil, runner, time.Minute), gate
}

func TestManager_StartRejectsConcurrentRuns(t *testing.T) {
	manager, gate := newGatedManager(t)

	id, err := manager.Start("file")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	_, err = manager.Start("file")
	assert.ErrorIs(t, err, ErrRunInProgress)

	close(gate.release)
	require.Eventually(t, func() bool {
		snap, ok := manager.Get(id)
		return ok && snap.Status == RunStatusFailed
	}, 5*time.Second, 10*time.Millisecond)

	// A finished run no longer blocks new ones.
	id2, err := manager.Start("file")
	require.NoError(t, err)
	assert.NotEqual(t, id, id2)
}

func TestManager_GetUnknownRun(t *testing.T) {
	manager, _ := newGatedManager(t)

	_, ok := manager.Get("no-such-run")
	assert.False(t, ok)
}

func TestManager_ListNewestFirst(t *testing.T) {
	manager, gate := newGatedManager(t)
	close(gate.release)

	first, err := manager.Start("file")
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		snap, ok := manager.Get(first)
		return ok && snap.Status == RunStatusFailed
	}, 5*time.Second, 10*time.Millisecond)

	second, err := manager.Start("file")
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		snap, ok := manager.Get(second)
		return ok && snap.Status == RunStatusFailed
	}, 5*time.Second, 10*time.Millisecond)

	runs := manager.List()
	require.Len(t, runs, 2)
	assert.Equal(t, second, runs[0].ID)
	assert.Equal(t, first, runs[1].ID)
}

func TestManager_RunFailureIsSourceUnavailable(t *testing.T) {
	manager, gate := newGatedManager(t)
	close(gate.release)

	id, err := manager.Start("file")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		snap, ok := manager.Get(id)
		return ok && snap.Status == RunStatusFailed
	}, 5*time.Second, 10*time.Millisecond)

	snap, _ := manager.Get(id)
	assert.Contains(t, snap.Error, "gate closed")
}
