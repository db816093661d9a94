/*
expand.go - Multi-technician expansion

A job worked by several technicians arrives as one row with a
slash-delimited technician cell ("Avi / Dana") and, optionally, a
parallel slash-delimited share list ("60%/40%"). Expansion produces one
row per technician so per-technician accounting downstream sees clean
records.

RULES:
  - Share count mismatching technician count, absent shares, or any
    unparseable share component: equal 1/N split.
  - Technician names are trimmed.
  - total/parts are duplicated unchanged across expanded rows, NOT
    pro-rated. Aggregate-sum correctness across expanded rows is a
    downstream concern.
*/
package finance

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fieldpulse/finance-engine/dataset"
)

const technicianDelimiter = "/"

// ExpandTechnicians returns a new dataset with shared jobs split into one
// row per technician. The input dataset is not modified.
func ExpandTechnicians(ds *dataset.Dataset) *dataset.Dataset {
	out := &dataset.Dataset{Columns: append([]string(nil), ds.Columns...)}
	out.AddColumn(dataset.ColTechShare)

	for _, row := range ds.Rows {
		techs := strings.Split(row.String(dataset.ColTechnician), technicianDelimiter)
		if len(techs) <= 1 {
			out.Append(row.Clone())
			continue
		}

		shares := splitShares(row, len(techs))
		for i, tech := range techs {
			expanded := row.Clone()
			expanded[dataset.ColTechnician] = strings.TrimSpace(tech)
			expanded[dataset.ColTechShare] = shares[i]
			out.Append(expanded)
		}
	}
	return out
}

// splitShares parses the parallel share list, falling back to an equal
// 1/N split on count mismatch or any unparseable component.
func splitShares(row dataset.Row, n int) []decimal.Decimal {
	raw, ok := row[dataset.ColTechShare]
	if ok && raw != nil {
		parts := strings.Split(row.String(dataset.ColTechShare), technicianDelimiter)
		if len(parts) == n {
			shares := make([]decimal.Decimal, n)
			valid := true
			for i, p := range parts {
				share, parsed := ParseShare(p)
				if !parsed {
					valid = false
					break
				}
				shares[i] = share
			}
			if valid {
				return shares
			}
		}
	}

	equal := decimal.NewFromInt(1).DivRound(decimal.NewFromInt(int64(n)), 6)
	shares := make([]decimal.Decimal, n)
	for i := range shares {
		shares[i] = equal
	}
	return shares
}
