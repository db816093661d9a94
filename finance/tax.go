/*
tax.go - Jurisdiction/year tax-rate lookup

Exact lookup on (jurisdiction, year). An absent key resolves to a zero
rate rather than an error - a deliberate non-failing default. The risk:
an unknown jurisdiction silently contributes 0% tax, so callers that care
should cross-check coverage before trusting aggregates.
*/
package finance

import (
	"time"

	"github.com/shopspring/decimal"
)

// TaxTable maps jurisdiction -> year -> rate (fraction, e.g. 0.17).
type TaxTable map[string]map[int]float64

// DefaultTaxTable returns the built-in table. Deployments override it via
// configuration; this is the floor, not the source of truth.
func DefaultTaxTable() TaxTable {
	return TaxTable{
		"IL": {2023: 0.17, 2025: 0.18},
	}
}

// ResolveYear returns the rate for (jurisdiction, year), zero when absent.
func (t TaxTable) ResolveYear(jurisdiction string, year int) decimal.Decimal {
	years, ok := t[jurisdiction]
	if !ok {
		return decimal.Zero
	}
	rate, ok := years[year]
	if !ok {
		return decimal.Zero
	}
	return decimal.NewFromFloat(rate)
}

// Resolve returns the rate for the jurisdiction in the year of `when`.
func (t TaxTable) Resolve(jurisdiction string, when time.Time) decimal.Decimal {
	return t.ResolveYear(jurisdiction, when.Year())
}
