/*
rollup.go - Daily pre-aggregation shared by trend detectors

The engine aggregates the dataset once per run - per calendar date: net
income sum, tax collected sum, job count - so trend detectors need not
re-aggregate. Rows without a parseable date and aggregate "Totals:" rows
are skipped.
*/
package insights

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fieldpulse/finance-engine/dataset"
)

// DailyStat is one calendar date's rollup.
type DailyStat struct {
	Date         time.Time
	NetIncome    decimal.Decimal
	TaxCollected decimal.Decimal
	Jobs         int
}

// Context is the shared state passed to every detector.
type Context struct {
	Daily []DailyStat
}

// BuildDailyRollup aggregates the dataset by calendar date, sorted
// ascending. An absent date column yields an empty rollup.
func BuildDailyRollup(ds *dataset.Dataset) []DailyStat {
	if ds == nil || !ds.HasColumn(dataset.ColDate) {
		return nil
	}

	byDay := make(map[time.Time]*DailyStat)
	for _, row := range ds.Rows {
		if row.IsTotals() {
			continue
		}
		day, ok := dataset.DayOf(row.Get(dataset.ColDate))
		if !ok {
			continue
		}
		stat := byDay[day]
		if stat == nil {
			stat = &DailyStat{Date: day}
			byDay[day] = stat
		}
		stat.NetIncome = stat.NetIncome.Add(dataset.SafeDecimalOrZero(row.Get(dataset.ColNetIncome)))
		stat.TaxCollected = stat.TaxCollected.Add(dataset.SafeDecimalOrZero(row.Get(dataset.ColTaxCollected)))
		stat.Jobs++
	}

	out := make([]DailyStat, 0, len(byDay))
	for _, stat := range byDay {
		out = append(out, *stat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
