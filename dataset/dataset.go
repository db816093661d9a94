/*
Package dataset provides the in-memory tabular model the finance pipeline
operates on.

PURPOSE:
  Upstream collaborators (spreadsheet conversion, OCR extraction) hand us
  loosely-typed rows: cells may be strings with currency symbols, floats,
  typed timestamps, or garbage. This package gives the rest of the engine
  one honest representation of that mess plus the two normalizers that
  turn it into exact values:
  - SafeDecimal:    messy numeric text -> fixed-point decimal
  - ParseFlexible:  heterogeneous date text -> normalized instant

KEY CONCEPTS IN THIS FILE (dataset.go):
  - Row:     One record, keyed by column name. Cells are untyped.
  - Dataset: Ordered columns plus rows. Column presence is meaningful -
             downstream steps degrade gracefully when a column is absent.
  - Totals rows: Aggregate rows (job_id "Totals:<n>") ride along in the
             data but are excluded from enrichment and detection.

DESIGN PRINCIPLES:
  1. Fault isolation: one bad cell never aborts a column or the dataset.
  2. Precision: decimal.Decimal for money, never float64.
  3. No file I/O: ingestion into this shape is a collaborator's job.

SEE ALSO:
  - decimal.go:  numeric normalization and diagnostics sampling
  - temporal.go: date/time normalization
  - record.go:   typed JobRecord convenience constructor
*/
package dataset

import (
	"strings"

	"github.com/spf13/cast"
)

// =============================================================================
// COLUMN NAMES - Upstream input contract plus derived columns
// =============================================================================

const (
	ColJobID        = "job_id"
	ColTechnician   = "technician"
	ColTechShare    = "technician_share"
	ColTotal        = "total"
	ColParts        = "parts"
	ColTaxCollected = "tax_collected"
	ColServiceType  = "service_type"
	ColDate         = "date"
	ColClosed       = "closed"
	ColClientID     = "client_id"
)

// Derived columns written by enrichment.
const (
	ColNetIncome   = "net_income"
	ColTechCut     = "tech_cut"
	ColCompanyNet  = "company_net"
	ColDurationMin = "duration_min"
	ColFlags       = "flags"
	ColFailedRules = "failed_rules"
)

// totalsPrefix marks aggregate rows appended by reporting collaborators.
const totalsPrefix = "Totals:"

// =============================================================================
// ROW - One record, loosely typed
// =============================================================================

type Row map[string]any

// Get returns the raw cell value, nil if the column is absent.
func (r Row) Get(col string) any { return r[col] }

// String returns the cell coerced to a string, "" for nil/absent.
func (r Row) String(col string) string {
	v, ok := r[col]
	if !ok || v == nil {
		return ""
	}
	return cast.ToString(v)
}

// Clone returns a shallow copy of the row (cells are not deep-copied).
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// IsTotals reports whether this is an aggregate "Totals:" row.
func (r Row) IsTotals() bool {
	return strings.HasPrefix(strings.TrimSpace(r.String(ColJobID)), totalsPrefix)
}

// =============================================================================
// DATASET - Ordered columns + rows
// =============================================================================

type Dataset struct {
	Columns []string
	Rows    []Row
}

func New(columns ...string) *Dataset {
	return &Dataset{Columns: columns}
}

func (d *Dataset) Len() int { return len(d.Rows) }

// HasColumn reports whether the column is part of the schema.
// Absent columns drive the degrade-gracefully paths in enrichment
// and detector self-skipping.
func (d *Dataset) HasColumn(col string) bool {
	for _, c := range d.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// AddColumn registers a column in the schema. No-op if already present.
func (d *Dataset) AddColumn(col string) {
	if !d.HasColumn(col) {
		d.Columns = append(d.Columns, col)
	}
}

// Append adds a row. Cells for unknown columns are kept - the schema is
// advisory, not enforced (violations become flags, not parse errors).
func (d *Dataset) Append(r Row) {
	d.Rows = append(d.Rows, r)
}

// Clone returns a copy with cloned rows so enrichment can stay pure.
func (d *Dataset) Clone() *Dataset {
	out := &Dataset{Columns: append([]string(nil), d.Columns...)}
	out.Rows = make([]Row, len(d.Rows))
	for i, r := range d.Rows {
		out.Rows[i] = r.Clone()
	}
	return out
}
