/*
errors.go - Centralized error types for the finance package

Malformed numeric or date input is never fatal here - it degrades to
zero/missing sentinels upstream in the dataset package. The errors below
are the deliberate exceptions: data problems that must stop a run rather
than be silently absorbed.
*/
package finance

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrShareExceedsWhole is returned when a technician share normalizes
	// to more than 100%. This is a configuration/data error and is never
	// silently clamped.
	ErrShareExceedsWhole = errors.New("technician share exceeds 100%")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ShareError reports which row carried the offending share.
type ShareError struct {
	JobID string
	Share decimal.Decimal
}

func (e *ShareError) Error() string {
	return fmt.Sprintf("technician share %s exceeds 100%% on job %q", e.Share, e.JobID)
}

func (e *ShareError) Unwrap() error { return ErrShareExceedsWhole }
