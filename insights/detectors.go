/*
detectors.go - The detector catalog

Each detector exposes a single Detect capability over the dataset, the
rules document, and the shared rollup context. Detectors self-skip
(return nothing) when a column they need is absent - a thin dataset must
never abort peer detectors.

CATALOG:
  HIGH_COMM    per-job tech_cut/total above a configured ratio  CRITICAL
  INC_DROP     rolling daily net income fell >pct vs window ago CRITICAL
  FLAGS_SPIKE  too many flagged rows on one calendar date       WARNING
  TAX_ANOMALY  tax_collected/total below a configured minimum   WARNING
*/
package insights

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fieldpulse/finance-engine/dataset"
)

// Detector is one independent anomaly check. Implementations must be
// stateless across runs; per-run state rides in the Context.
type Detector interface {
	Code() string
	Detect(ds *dataset.Dataset, rules Rules, ctx *Context) []Insight
}

// DefaultDetectors returns the fixed registry in emission order. The
// order is part of the output contract: it breaks severity ties.
func DefaultDetectors() []Detector {
	return []Detector{
		HighCommissionDetector{},
		IncomeDropDetector{},
		FlagSpikeDetector{},
		TaxAnomalyDetector{},
	}
}

// =============================================================================
// HIGH COMMISSION - per-job ratio check
// =============================================================================

type HighCommissionDetector struct{}

func (HighCommissionDetector) Code() string { return CodeHighCommission }

func (HighCommissionDetector) Detect(ds *dataset.Dataset, rules Rules, _ *Context) []Insight {
	if !ds.HasColumn(dataset.ColTechCut) || !ds.HasColumn(dataset.ColTotal) {
		return nil
	}
	threshold := decimal.NewFromFloat(rules.HighCommission.Threshold)

	var out []Insight
	for _, row := range ds.Rows {
		if row.IsTotals() {
			continue
		}
		total := dataset.SafeDecimalOrZero(row.Get(dataset.ColTotal))
		cut := dataset.SafeDecimalOrZero(row.Get(dataset.ColTechCut))
		if !total.IsPositive() || !cut.Div(total).GreaterThan(threshold) {
			continue
		}
		jobID := row.String(dataset.ColJobID)
		out = append(out, Insight{
			Code:     CodeHighCommission,
			Message:  fmt.Sprintf("High commission (%s/%s) for job %s.", cut, total, jobID),
			Severity: SeverityCritical,
			Meta:     map[string]any{"job_id": jobID},
		})
	}
	return out
}

// =============================================================================
// INCOME DROP - rolling mean trend check
// =============================================================================

type IncomeDropDetector struct{}

func (IncomeDropDetector) Code() string { return CodeIncomeDrop }

func (IncomeDropDetector) Detect(_ *dataset.Dataset, rules Rules, ctx *Context) []Insight {
	window := rules.IncomeDrop.Window
	pct := rules.IncomeDrop.Pct
	if ctx == nil || len(ctx.Daily) == 0 || window <= 0 {
		return nil
	}

	values := make([]float64, len(ctx.Daily))
	for i, stat := range ctx.Daily {
		values[i] = stat.NetIncome.InexactFloat64()
	}

	// Rolling mean is defined from index window-1 onward.
	rolling := make([]float64, len(values))
	defined := make([]bool, len(values))
	for i := window - 1; i < len(values); i++ {
		sum := 0.0
		for j := i - window + 1; j <= i; j++ {
			sum += values[j]
		}
		rolling[i] = sum / float64(window)
		defined[i] = true
	}

	var out []Insight
	for i := window; i < len(values); i++ {
		prevIdx := i - window
		if !defined[prevIdx] || !defined[i] {
			continue
		}
		prev, curr := rolling[prevIdx], rolling[i]
		if prev > 0 && curr < prev*(1-pct) {
			out = append(out, Insight{
				Code:     CodeIncomeDrop,
				Message:  fmt.Sprintf("Net income dropped by >%d%% over %d days.", int(pct*100), window),
				Severity: SeverityCritical,
				Meta:     map[string]any{"from": prev, "to": curr, "date": ctx.Daily[i].Date.Format("2006-01-02")},
			})
		}
	}
	return out
}

// =============================================================================
// FLAG SPIKE - flagged-row count per calendar date
// =============================================================================

type FlagSpikeDetector struct{}

func (FlagSpikeDetector) Code() string { return CodeFlagSpike }

func (FlagSpikeDetector) Detect(ds *dataset.Dataset, rules Rules, _ *Context) []Insight {
	if !ds.HasColumn(dataset.ColFlags) || !ds.HasColumn(dataset.ColDate) {
		return nil
	}
	threshold := rules.FlagSpike.Threshold

	counts := make(map[string]int)
	var order []string
	for _, row := range ds.Rows {
		if row.IsTotals() {
			continue
		}
		day, ok := dataset.DayOf(row.Get(dataset.ColDate))
		if !ok || row.String(dataset.ColFlags) == "" {
			continue
		}
		key := day.Format("2006-01-02")
		if _, seen := counts[key]; !seen {
			order = append(order, key)
		}
		counts[key]++
	}

	var out []Insight
	for _, key := range order {
		if counts[key] <= threshold {
			continue
		}
		out = append(out, Insight{
			Code:     CodeFlagSpike,
			Message:  fmt.Sprintf("%d red flags on %s", counts[key], key),
			Severity: SeverityWarning,
			Meta:     map[string]any{"date": key, "count": counts[key]},
		})
	}
	return out
}

// =============================================================================
// TAX ANOMALY - collected tax below the configured minimum rate
// =============================================================================

type TaxAnomalyDetector struct{}

func (TaxAnomalyDetector) Code() string { return CodeTaxAnomaly }

func (TaxAnomalyDetector) Detect(ds *dataset.Dataset, rules Rules, _ *Context) []Insight {
	if !ds.HasColumn(dataset.ColTaxCollected) || !ds.HasColumn(dataset.ColTotal) {
		return nil
	}
	minRate := decimal.NewFromFloat(rules.TaxAnomaly.MinRate)

	var out []Insight
	for _, row := range ds.Rows {
		if row.IsTotals() {
			continue
		}
		tax, ok := dataset.SafeDecimal(row.Get(dataset.ColTaxCollected))
		if !ok {
			// Missing tax cell is "unknown", not "zero tax collected".
			continue
		}
		total := dataset.SafeDecimalOrZero(row.Get(dataset.ColTotal))
		denom := total
		if denom.IsZero() {
			denom = decimal.NewFromInt(1)
		}
		if !tax.Div(denom).LessThan(minRate) {
			continue
		}
		jobID := row.String(dataset.ColJobID)
		out = append(out, Insight{
			Code:     CodeTaxAnomaly,
			Message:  fmt.Sprintf("Tax rate below %s%% for job %s.", minRate.Mul(decimal.NewFromInt(100)), jobID),
			Severity: SeverityWarning,
			Meta:     map[string]any{"job_id": jobID},
		})
	}
	return out
}
