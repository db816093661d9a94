/*
Package tasks promotes selected insights into persisted, trackable
action items.

PURPOSE:
  An insight is ephemeral; an action item is the follow-up record a human
  actually works. This package owns the small state machine around it:

    OPEN -> RESOLVED   (terminal; there is no reopen transition)

  Items are created only by promotion from an insight, mutated only via
  explicit status transitions, and never auto-deleted.

PERSISTENCE:
  The backing store is external (JSON file or SQLite). A missing or empty
  store reads as empty; a corrupted store is fatal and surfaces to the
  caller - silently resetting it would destroy the audit trail.

SEE ALSO:
  - tracker.go:          operations and transition validation
  - store.go:            persistence interface and errors
  - store/jsonfile:      whole-file rewrite store with atomic writes
  - store/sqlite:        SQLite-backed store
*/
package tasks

import (
	"time"

	"github.com/fieldpulse/finance-engine/insights"
)

// =============================================================================
// STATUS - The state machine
// =============================================================================

type Status string

const (
	StatusOpen     Status = "OPEN"
	StatusResolved Status = "RESOLVED"
)

// Valid reports whether the value is a known status. Anything else is
// rejected before a single byte is written.
func (s Status) Valid() bool {
	return s == StatusOpen || s == StatusResolved
}

// =============================================================================
// ACTION ITEM
// =============================================================================

type ActionItem struct {
	ID         string         `json:"id"`
	Timestamp  time.Time      `json:"timestamp"`
	Severity   string         `json:"severity"`
	Message    string         `json:"message"`
	Code       string         `json:"code"`
	Origin     string         `json:"origin"`
	SourceFile string         `json:"source_file,omitempty"`
	Status     Status         `json:"status"`
	Meta       map[string]any `json:"meta,omitempty"`
}

// FromInsight shapes the persisted fields from a finding. The id and
// timestamp are assigned by the tracker at creation time.
func FromInsight(ins insights.Insight, origin, sourceFile string) ActionItem {
	return ActionItem{
		Severity:   string(ins.Severity),
		Message:    ins.Message,
		Code:       ins.Code,
		Origin:     origin,
		SourceFile: sourceFile,
		Status:     StatusOpen,
		Meta:       ins.Meta,
	}
}
