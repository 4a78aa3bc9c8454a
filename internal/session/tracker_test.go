package session

import (
	"context"
	"errors"
	"testing"

	"go-jobmatcher/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingStore captures the status writes a tracker performs.
type recordingStore struct {
	running   int
	completed int
	failed    int
	jobsFound int
	jobsAdded int
	errMsg    string
}

func (s *recordingStore) MarkRunning(context.Context, string) error { s.running++; return nil }
func (s *recordingStore) MarkCompleted(_ context.Context, _ string, found, added int) error {
	s.completed++
	s.jobsFound = found
	s.jobsAdded = added
	return nil
}
func (s *recordingStore) MarkFailed(_ context.Context, _ string, errMsg string) error {
	s.failed++
	s.errMsg = errMsg
	return nil
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to models.SessionStatus
		want     bool
	}{
		{models.StatusPending, models.StatusRunning, true},
		{models.StatusRunning, models.StatusCompleted, true},
		{models.StatusRunning, models.StatusFailed, true},
		{models.StatusPending, models.StatusCompleted, false},
		{models.StatusCompleted, models.StatusRunning, false},
		{models.StatusFailed, models.StatusCompleted, false},
		{models.StatusCompleted, models.StatusFailed, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(models.StatusPending))
	assert.False(t, IsTerminal(models.StatusRunning))
	assert.True(t, IsTerminal(models.StatusCompleted))
	assert.True(t, IsTerminal(models.StatusFailed))
}

func TestTracker_HappyPath(t *testing.T) {
	store := &recordingStore{}
	tr := NewTracker(store, "abc")
	ctx := context.Background()

	require.NoError(t, tr.Start(ctx))
	assert.Equal(t, models.StatusRunning, tr.Status())

	require.NoError(t, tr.Complete(ctx, 5, 3))
	assert.Equal(t, models.StatusCompleted, tr.Status())
	assert.Equal(t, 5, store.jobsFound)
	assert.Equal(t, 3, store.jobsAdded)
}

func TestTracker_FailurePath(t *testing.T) {
	store := &recordingStore{}
	tr := NewTracker(store, "abc")
	ctx := context.Background()

	require.NoError(t, tr.Start(ctx))
	require.NoError(t, tr.Fail(ctx, errors.New("login marker never appeared")))
	assert.Equal(t, "login marker never appeared", store.errMsg)
}

func TestTracker_TerminalTransitionExactlyOnce(t *testing.T) {
	store := &recordingStore{}
	tr := NewTracker(store, "abc")
	ctx := context.Background()

	require.NoError(t, tr.Start(ctx))
	require.NoError(t, tr.Complete(ctx, 1, 1))

	assert.Error(t, tr.Complete(ctx, 2, 2))
	assert.Error(t, tr.Fail(ctx, errors.New("late")))
	assert.Equal(t, 1, store.completed)
	assert.Equal(t, 0, store.failed)
}

func TestTracker_CannotCompleteBeforeStart(t *testing.T) {
	tr := NewTracker(&recordingStore{}, "abc")
	assert.Error(t, tr.Complete(context.Background(), 0, 0))
}
