package tasks_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/fieldpulse/finance-engine/insights"
	"github.com/fieldpulse/finance-engine/tasks"
	"github.com/fieldpulse/finance-engine/tasks/store"
)

func newTracker() *tasks.Tracker {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return tasks.NewTracker(store.NewMemory(), l)
}

func sampleInsight() insights.Insight {
	return insights.Insight{
		Code:     insights.CodeHighCommission,
		Message:  "High commission (95/100) for job greedy.",
		Severity: insights.SeverityCritical,
		Meta:     map[string]any{"job_id": "greedy"},
	}
}

// =============================================================================
// ACTION ITEM LIFECYCLE TESTS
// =============================================================================

func TestTracker_CreatePromotesInsight(t *testing.T) {
	// GIVEN: A critical insight
	// WHEN: Promoted
	// THEN: A new OPEN item with a fresh id and the insight's fields

	tracker := newTracker()
	ctx := context.Background()

	item, err := tracker.Create(ctx, sampleInsight(), "insight", "jobs_march.xlsx")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if item.ID == "" {
		t.Error("expected an assigned id")
	}
	if item.Status != tasks.StatusOpen {
		t.Errorf("status = %s, want OPEN", item.Status)
	}
	if item.Code != insights.CodeHighCommission || item.Severity != "CRITICAL" {
		t.Errorf("insight fields not carried: %+v", item)
	}
	if item.SourceFile != "jobs_march.xlsx" {
		t.Errorf("source_file = %q", item.SourceFile)
	}

	items, err := tracker.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
}

func TestTracker_CreateNeverDeduplicates(t *testing.T) {
	// GIVEN: The same insight promoted twice
	// WHEN: Listed
	// THEN: Two distinct items - dedup is deliberately the caller's job

	tracker := newTracker()
	ctx := context.Background()

	a, _ := tracker.Create(ctx, sampleInsight(), "insight", "")
	b, _ := tracker.Create(ctx, sampleInsight(), "insight", "")
	if a.ID == b.ID {
		t.Error("expected distinct ids for repeated promotion")
	}

	items, _ := tracker.List(ctx)
	if len(items) != 2 {
		t.Errorf("expected 2 items, got %d", len(items))
	}
}

func TestTracker_ResolveIsTerminal(t *testing.T) {
	// GIVEN: An item moved OPEN -> RESOLVED
	// WHEN: A reopen is attempted
	// THEN: ErrAlreadyResolved - there is no reopen transition

	tracker := newTracker()
	ctx := context.Background()
	item, _ := tracker.Create(ctx, sampleInsight(), "insight", "")

	if err := tracker.UpdateStatus(ctx, item.ID, tasks.StatusResolved); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	err := tracker.UpdateStatus(ctx, item.ID, tasks.StatusOpen)
	if !errors.Is(err, tasks.ErrAlreadyResolved) {
		t.Fatalf("expected ErrAlreadyResolved, got %v", err)
	}
}

func TestTracker_InvalidStatusRejectedBeforeStore(t *testing.T) {
	// GIVEN: A target status outside {OPEN, RESOLVED}
	// WHEN: Applied to an existing item
	// THEN: ErrInvalidStatus and the item is untouched

	tracker := newTracker()
	ctx := context.Background()
	item, _ := tracker.Create(ctx, sampleInsight(), "insight", "")

	err := tracker.UpdateStatus(ctx, item.ID, tasks.Status("DONE"))
	if !errors.Is(err, tasks.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}

	items, _ := tracker.List(ctx)
	if items[0].Status != tasks.StatusOpen {
		t.Errorf("status mutated to %s on invalid input", items[0].Status)
	}
}

func TestTracker_UnknownIDReportsNotFound(t *testing.T) {
	tracker := newTracker()
	ctx := context.Background()

	err := tracker.UpdateStatus(ctx, "no-such-id", tasks.StatusResolved)
	if !errors.Is(err, tasks.ErrNotFound) {
		t.Fatalf("update: expected ErrNotFound, got %v", err)
	}
	err = tracker.Delete(ctx, "no-such-id")
	if !errors.Is(err, tasks.ErrNotFound) {
		t.Fatalf("delete: expected ErrNotFound, got %v", err)
	}
}

func TestTracker_DeleteIsHard(t *testing.T) {
	tracker := newTracker()
	ctx := context.Background()
	item, _ := tracker.Create(ctx, sampleInsight(), "insight", "")

	if err := tracker.Delete(ctx, item.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	items, _ := tracker.List(ctx)
	if len(items) != 0 {
		t.Errorf("expected empty store after delete, got %d items", len(items))
	}
}

func TestIsClientError(t *testing.T) {
	for _, err := range []error{tasks.ErrNotFound, tasks.ErrInvalidStatus, tasks.ErrAlreadyResolved} {
		if !tasks.IsClientError(err) {
			t.Errorf("%v should be a client error", err)
		}
	}
	if tasks.IsClientError(tasks.ErrStoreCorrupted) {
		t.Error("corruption is a storage failure, not a client error")
	}
}
