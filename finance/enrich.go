/*
enrich.go - Financial enrichment

PURPOSE:
  Turns normalized job rows into financially-correct derived data:

    net_income   = total - parts
    tech_cut     = total * technician_share   (direct-share mode)
                 | resolved commission        (rule mode)
    company_net  = round(net_income - tech_cut, 2)
    duration_min = minutes between date and closed (1 digit)
    flags        = PARTS>PRICE | NEGATIVE | HIGH | NO_END (comma-joined)

GUARANTEES:
  - Pure given input + rule configuration: the input dataset is cloned,
    never mutated, and derived fields are recomputed wholesale per run.
  - Malformed total/parts default to zero; a technician share above 100%
    after normalization is fatal for the run, never clamped.
  - Aggregate "Totals:" rows are excluded from enrichment.
  - A dataset lacking total/parts columns degrades to missing markers in
    every derived column instead of failing.
  - Rows are independent; Workers > 1 chunks them across goroutines with
    per-row fault isolation, without changing results.

SEE ALSO:
  - commission.go: rule-mode resolution order
  - sanity.go:     violating-rows report over enriched output
*/
package finance

import (
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/fieldpulse/finance-engine/dataset"
)

// =============================================================================
// FLAGS
// =============================================================================

const (
	FlagPartsExceedTotal = "PARTS>PRICE"
	FlagNegativeNet      = "NEGATIVE"
	FlagHighCommission   = "HIGH"
	FlagNoEnd            = "NO_END"
)

// DefaultHighCommissionRatio marks tech_cut/total above this as HIGH when
// no ratio is configured. Call sites may configure different thresholds.
const DefaultHighCommissionRatio = 0.8

// =============================================================================
// ENRICHER
// =============================================================================

// Mode selects how tech_cut is computed.
type Mode int

const (
	// ModeDirectShare uses the row's own technician_share.
	ModeDirectShare Mode = iota
	// ModeRules resolves commission from the configured rule document.
	ModeRules
)

// Enricher computes derived financial fields. Configuration is injected
// once at construction; Enrich itself reads no global state.
type Enricher struct {
	Rules               CommissionRules
	Mode                Mode
	HighCommissionRatio float64 // 0 means DefaultHighCommissionRatio
	Workers             int     // <=1 means sequential
	Logger              *logrus.Logger
}

var derivedColumns = []string{
	dataset.ColNetIncome,
	dataset.ColTechCut,
	dataset.ColCompanyNet,
	dataset.ColDurationMin,
	dataset.ColFlags,
}

var one = decimal.NewFromInt(1)

// Enrich returns a new dataset with derived columns filled per row.
func (e *Enricher) Enrich(ds *dataset.Dataset) (*dataset.Dataset, error) {
	out := ds.Clone()
	for _, col := range derivedColumns {
		out.AddColumn(col)
	}

	// Schema entirely lacking the monetary inputs: degrade to missing
	// markers rather than raising. The rest of the pipeline still runs.
	if !ds.HasColumn(dataset.ColTotal) || !ds.HasColumn(dataset.ColParts) {
		e.logger().WithFields(logrus.Fields{
			"has_total": ds.HasColumn(dataset.ColTotal),
			"has_parts": ds.HasColumn(dataset.ColParts),
		}).Warn("enrichment degraded: monetary columns missing")
		for _, row := range out.Rows {
			clearDerived(row)
		}
		return out, nil
	}

	if e.Workers > 1 {
		if err := e.enrichParallel(out); err != nil {
			return nil, err
		}
		return out, nil
	}

	for _, row := range out.Rows {
		if err := e.enrichRow(row); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (e *Enricher) enrichParallel(out *dataset.Dataset) error {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	chunk := (len(out.Rows) + e.Workers - 1) / e.Workers
	for start := 0; start < len(out.Rows); start += chunk {
		end := start + chunk
		if end > len(out.Rows) {
			end = len(out.Rows)
		}
		wg.Add(1)
		go func(rows []dataset.Row) {
			defer wg.Done()
			for _, row := range rows {
				if err := e.enrichRow(row); err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					return
				}
			}
		}(out.Rows[start:end])
	}
	wg.Wait()
	return firstErr
}

// enrichRow fills the derived cells for one row. A panic from a rogue
// cell value is contained to this row.
func (e *Enricher) enrichRow(row dataset.Row) (err error) {
	defer func() {
		if r := recover(); r != nil {
			e.logger().WithField("job_id", row.String(dataset.ColJobID)).
				Errorf("row enrichment panicked: %v", r)
			clearDerived(row)
		}
	}()

	if row.IsTotals() {
		clearDerived(row)
		return nil
	}

	total := dataset.SafeDecimalOrZero(row.Get(dataset.ColTotal))
	parts := dataset.SafeDecimalOrZero(row.Get(dataset.ColParts))
	netIncome := total.Sub(parts)

	var techCut decimal.Decimal
	switch e.Mode {
	case ModeRules:
		techCut = ResolveCommission(row, e.Rules)
	default:
		share := decimal.Zero
		if v, ok := row[dataset.ColTechShare]; ok {
			if parsed, parsedOK := ParseShare(v); parsedOK {
				share = parsed
			}
		}
		if share.GreaterThan(one) {
			return &ShareError{JobID: row.String(dataset.ColJobID), Share: share}
		}
		techCut = total.Mul(share).Round(2)
	}

	companyNet := netIncome.Sub(techCut).Round(2)

	row[dataset.ColNetIncome] = netIncome.Round(2)
	row[dataset.ColTechCut] = techCut
	row[dataset.ColCompanyNet] = companyNet

	duration, hasDuration := dataset.MinutesBetween(
		row.Get(dataset.ColDate), row.Get(dataset.ColClosed))
	if hasDuration {
		row[dataset.ColDurationMin] = duration
	} else {
		row[dataset.ColDurationMin] = nil
	}

	row[dataset.ColFlags] = e.evaluateFlags(total, parts, techCut, companyNet, hasDuration)
	return nil
}

// evaluateFlags checks each sanity rule independently, preserving the
// fixed flag order.
func (e *Enricher) evaluateFlags(total, parts, techCut, companyNet decimal.Decimal, hasDuration bool) string {
	ratio := e.HighCommissionRatio
	if ratio == 0 {
		ratio = DefaultHighCommissionRatio
	}

	var flags []string
	if parts.GreaterThan(total) {
		flags = append(flags, FlagPartsExceedTotal)
	}
	if companyNet.IsNegative() {
		flags = append(flags, FlagNegativeNet)
	}
	if total.IsPositive() && techCut.Div(total).GreaterThan(decimal.NewFromFloat(ratio)) {
		flags = append(flags, FlagHighCommission)
	}
	if !hasDuration {
		flags = append(flags, FlagNoEnd)
	}
	return strings.Join(flags, ",")
}

func (e *Enricher) logger() *logrus.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return logrus.StandardLogger()
}

func clearDerived(row dataset.Row) {
	for _, col := range derivedColumns {
		row[col] = nil
	}
}
