/*
tracker.go - Action item operations

Create always produces a new OPEN item - there is deliberately no
content-based dedup, so callers gate promotion (e.g. CRITICAL only) to
avoid duplicates. Status updates validate the transition before touching
the store; deletes are hard and non-reversible.
*/
package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fieldpulse/finance-engine/insights"
)

// Tracker is the single writer over a Store.
type Tracker struct {
	store  Store
	logger *logrus.Logger
	now    func() time.Time
}

func NewTracker(store Store, logger *logrus.Logger) *Tracker {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Tracker{store: store, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// Create promotes an insight into a new OPEN action item.
func (t *Tracker) Create(ctx context.Context, ins insights.Insight, origin, sourceFile string) (ActionItem, error) {
	item := FromInsight(ins, origin, sourceFile)
	item.ID = uuid.NewString()
	item.Timestamp = t.now()

	if err := t.store.Append(ctx, item); err != nil {
		return ActionItem{}, fmt.Errorf("create action item: %w", err)
	}
	t.logger.WithFields(logrus.Fields{
		"id":       item.ID,
		"code":     item.Code,
		"severity": item.Severity,
		"origin":   origin,
	}).Info("created action item")
	return item, nil
}

// List returns all action items, oldest first.
func (t *Tracker) List(ctx context.Context) ([]ActionItem, error) {
	return t.store.LoadAll(ctx)
}

// UpdateStatus transitions an item. Invalid target statuses are rejected
// before any store access; a missing id reports ErrNotFound without a
// write; RESOLVED is terminal.
func (t *Tracker) UpdateStatus(ctx context.Context, id string, status Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	current, found, err := t.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if current.Status == StatusResolved && status == StatusOpen {
		return fmt.Errorf("%w: %s", ErrAlreadyResolved, id)
	}

	updated, err := t.store.UpdateStatus(ctx, id, status)
	if err != nil {
		return err
	}
	if !updated {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	t.logger.WithFields(logrus.Fields{"id": id, "status": status}).Info("updated action item")
	return nil
}

// Delete removes an item permanently.
func (t *Tracker) Delete(ctx context.Context, id string) error {
	deleted, err := t.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	t.logger.WithField("id", id).Info("deleted action item")
	return nil
}
