/*
sanity.go - Violating-rows report

RunSanityChecks filters an enriched dataset down to the rows that break a
financial rule and labels each with the rules it failed. It is a
reporting convenience over the same predicates enrichment flags, with
the reporting-grade rule names.
*/
package finance

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fieldpulse/finance-engine/dataset"
)

const (
	RuleNegativeProfit      = "NEGATIVE_PROFIT"
	RulePartsExceedTotal    = "PARTS_EXCEED_TOTAL"
	RuleExcessiveCommission = "EXCESSIVE_COMMISSION"
)

// DefaultSanityCommissionRatio is the report-level excessive-commission
// threshold. Stricter surfaces configure their own.
const DefaultSanityCommissionRatio = 0.9

// RunSanityChecks returns only the rows violating one or more rules,
// with a failed_rules column of comma-separated rule names. Requires an
// enriched dataset; missing derived columns yield an empty report.
func RunSanityChecks(ds *dataset.Dataset, ratio float64) *dataset.Dataset {
	out := &dataset.Dataset{Columns: append([]string(nil), ds.Columns...)}
	out.AddColumn(dataset.ColFailedRules)

	if !ds.HasColumn(dataset.ColCompanyNet) || !ds.HasColumn(dataset.ColTechCut) ||
		!ds.HasColumn(dataset.ColTotal) || !ds.HasColumn(dataset.ColParts) {
		return out
	}
	if ratio == 0 {
		ratio = DefaultSanityCommissionRatio
	}
	ratioDec := decimal.NewFromFloat(ratio)

	for _, row := range ds.Rows {
		if row.IsTotals() {
			continue
		}
		total := dataset.SafeDecimalOrZero(row.Get(dataset.ColTotal))
		parts := dataset.SafeDecimalOrZero(row.Get(dataset.ColParts))
		companyNet := dataset.SafeDecimalOrZero(row.Get(dataset.ColCompanyNet))
		techCut := dataset.SafeDecimalOrZero(row.Get(dataset.ColTechCut))

		var failed []string
		if companyNet.IsNegative() {
			failed = append(failed, RuleNegativeProfit)
		}
		if parts.GreaterThan(total) {
			failed = append(failed, RulePartsExceedTotal)
		}
		if total.IsPositive() && techCut.Div(total).GreaterThan(ratioDec) {
			failed = append(failed, RuleExcessiveCommission)
		}
		if len(failed) == 0 {
			continue
		}

		flagged := row.Clone()
		flagged[dataset.ColFailedRules] = strings.Join(failed, ",")
		out.Append(flagged)
	}
	return out
}
