// Scraping-session state machine
// pending -> running -> {completed, failed}, one terminal transition only

package session

import (
	"context"
	"fmt"
	"sync"

	"go-jobmatcher/internal/models"
)

// Store is the persistence the tracker writes session status through.
type Store interface {
	MarkRunning(ctx context.Context, id string) error
	MarkCompleted(ctx context.Context, id string, jobsFound, jobsAdded int) error
	MarkFailed(ctx context.Context, id string, errMsg string) error
}

var validTransitions = map[models.SessionStatus][]models.SessionStatus{
	models.StatusPending:   {models.StatusRunning},
	models.StatusRunning:   {models.StatusCompleted, models.StatusFailed},
	models.StatusCompleted: {},
	models.StatusFailed:    {},
}

// CanTransition reports whether from -> to is a legal session transition.
func CanTransition(from, to models.SessionStatus) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a status allows no further transitions.
func IsTerminal(status models.SessionStatus) bool {
	return len(validTransitions[status]) == 0
}

// Tracker drives one session through its lifecycle. It owns the status; the
// pipeline only appends counters and flips terminal state through it.
type Tracker struct {
	store Store
	id    string

	mu     sync.Mutex
	status models.SessionStatus
}

// NewTracker wraps an already-created pending session.
func NewTracker(store Store, sessionID string) *Tracker {
	return &Tracker{
		store:  store,
		id:     sessionID,
		status: models.StatusPending,
	}
}

// Start flips pending -> running.
func (t *Tracker) Start(ctx context.Context) error {
	if err := t.transition(models.StatusRunning); err != nil {
		return err
	}
	return t.store.MarkRunning(ctx, t.id)
}

// Complete records the terminal completed state with its counters.
func (t *Tracker) Complete(ctx context.Context, jobsFound, jobsAdded int) error {
	if err := t.transition(models.StatusCompleted); err != nil {
		return err
	}
	return t.store.MarkCompleted(ctx, t.id, jobsFound, jobsAdded)
}

// Fail records the terminal failed state with the error text.
func (t *Tracker) Fail(ctx context.Context, cause error) error {
	if err := t.transition(models.StatusFailed); err != nil {
		return err
	}
	return t.store.MarkFailed(ctx, t.id, cause.Error())
}

// Status returns the tracker's current view of the session status.
func (t *Tracker) Status() models.SessionStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

func (t *Tracker) transition(to models.SessionStatus) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !CanTransition(t.status, to) {
		return fmt.Errorf("illegal session transition %s -> %s", t.status, to)
	}
	t.status = to
	return nil
}
