package finance_test

import (
	"errors"
	"io"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/fieldpulse/finance-engine/dataset"
	"github.com/fieldpulse/finance-engine/finance"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func cellFixed(t *testing.T, row dataset.Row, col string) string {
	t.Helper()
	d, ok := row[col].(decimal.Decimal)
	if !ok {
		t.Fatalf("column %s is %T, want decimal", col, row[col])
	}
	return d.StringFixed(2)
}

// =============================================================================
// ENRICHMENT - DERIVED FIELD TESTS
// =============================================================================

func TestEnrich_CleanJob(t *testing.T) {
	// GIVEN: A closed job with messy currency text and a 50% share
	//   total ₪1,200.50, parts 200, open 2.5h
	// WHEN: Enriched
	// THEN: net 1000.50, tech_cut 600.25, company_net 400.25,
	//       duration 150.0, no flags

	ds := dataset.FromRecords(dataset.JobRecord{
		JobID:      "J-100",
		Technician: "Avi",
		TechShare:  "50%",
		Total:      "₪1,200.50",
		Parts:      "200",
		Date:       "2025-03-01 09:00",
		Closed:     "2025-03-01 11:30",
	})

	e := &finance.Enricher{Logger: quietLogger()}
	out, err := e.Enrich(ds)
	if err != nil {
		t.Fatalf("enrich failed: %v", err)
	}

	row := out.Rows[0]
	if got := cellFixed(t, row, dataset.ColNetIncome); got != "1000.50" {
		t.Errorf("net_income = %s, want 1000.50", got)
	}
	if got := cellFixed(t, row, dataset.ColTechCut); got != "600.25" {
		t.Errorf("tech_cut = %s, want 600.25", got)
	}
	if got := cellFixed(t, row, dataset.ColCompanyNet); got != "400.25" {
		t.Errorf("company_net = %s, want 400.25", got)
	}
	if got := row[dataset.ColDurationMin]; got != 150.0 {
		t.Errorf("duration_min = %v, want 150.0", got)
	}
	if got := row.String(dataset.ColFlags); got != "" {
		t.Errorf("flags = %q, want empty", got)
	}
}

func TestEnrich_PartsExceedTotal(t *testing.T) {
	// GIVEN: A job whose parts cost more than it billed
	// WHEN: Enriched
	// THEN: PARTS>PRICE and NEGATIVE flags, in that fixed order

	ds := dataset.FromRecords(dataset.JobRecord{
		JobID:      "J-101",
		Technician: "Avi",
		TechShare:  "10%",
		Total:      "100",
		Parts:      "250",
		Date:       "2025-03-02 09:00",
		Closed:     "2025-03-02 10:00",
	})

	e := &finance.Enricher{Logger: quietLogger()}
	out, err := e.Enrich(ds)
	if err != nil {
		t.Fatalf("enrich failed: %v", err)
	}

	if got := out.Rows[0].String(dataset.ColFlags); got != "PARTS>PRICE,NEGATIVE" {
		t.Errorf("flags = %q, want PARTS>PRICE,NEGATIVE", got)
	}
}

func TestEnrich_HighCommissionAndNoEnd(t *testing.T) {
	// GIVEN: A job paying the technician 85% with no closing timestamp
	// WHEN: Enriched with the default 0.8 ratio
	// THEN: HIGH and NO_END flags, duration missing

	ds := dataset.FromRecords(dataset.JobRecord{
		JobID:      "J-102",
		Technician: "Dana",
		TechShare:  "85%",
		Total:      "100",
		Parts:      "0",
		Date:       "2025-03-03 09:00",
	})

	e := &finance.Enricher{Logger: quietLogger()}
	out, err := e.Enrich(ds)
	if err != nil {
		t.Fatalf("enrich failed: %v", err)
	}

	row := out.Rows[0]
	if got := row.String(dataset.ColFlags); got != "HIGH,NO_END" {
		t.Errorf("flags = %q, want HIGH,NO_END", got)
	}
	if row[dataset.ColDurationMin] != nil {
		t.Errorf("duration_min = %v, want nil", row[dataset.ColDurationMin])
	}
}

func TestEnrich_ShareAboveWholeIsFatal(t *testing.T) {
	// GIVEN: A share that normalizes above 100%
	// WHEN: Enriched
	// THEN: The run fails with ErrShareExceedsWhole - never clamped

	ds := dataset.FromRecords(dataset.JobRecord{
		JobID:      "J-103",
		Technician: "Avi",
		TechShare:  "150%",
		Total:      "100",
		Parts:      "0",
	})

	e := &finance.Enricher{Logger: quietLogger()}
	_, err := e.Enrich(ds)
	if !errors.Is(err, finance.ErrShareExceedsWhole) {
		t.Fatalf("expected ErrShareExceedsWhole, got %v", err)
	}

	var shareErr *finance.ShareError
	if !errors.As(err, &shareErr) {
		t.Fatal("expected a *ShareError")
	}
	if shareErr.JobID != "J-103" {
		t.Errorf("ShareError.JobID = %q, want J-103", shareErr.JobID)
	}
}

func TestEnrich_MalformedMoneyDefaultsToZero(t *testing.T) {
	// GIVEN: Garbage total and parts cells
	// WHEN: Enriched
	// THEN: Zero sentinels, row survives

	ds := dataset.FromRecords(dataset.JobRecord{
		JobID:      "J-104",
		Technician: "Avi",
		Total:      "garbage",
		Parts:      "N/A",
	})

	e := &finance.Enricher{Logger: quietLogger()}
	out, err := e.Enrich(ds)
	if err != nil {
		t.Fatalf("enrich failed: %v", err)
	}
	if got := cellFixed(t, out.Rows[0], dataset.ColNetIncome); got != "0.00" {
		t.Errorf("net_income = %s, want 0.00", got)
	}
}

func TestEnrich_MissingMonetaryColumnsDegrades(t *testing.T) {
	// GIVEN: A dataset with no total/parts columns at all
	// WHEN: Enriched
	// THEN: Derived columns exist but hold missing markers; no error

	ds := dataset.New(dataset.ColJobID, dataset.ColTechnician)
	ds.Append(dataset.Row{dataset.ColJobID: "J-105", dataset.ColTechnician: "Avi"})

	e := &finance.Enricher{Logger: quietLogger()}
	out, err := e.Enrich(ds)
	if err != nil {
		t.Fatalf("expected graceful degradation, got %v", err)
	}
	if !out.HasColumn(dataset.ColNetIncome) {
		t.Fatal("derived columns should still be registered")
	}
	if out.Rows[0][dataset.ColNetIncome] != nil {
		t.Errorf("net_income = %v, want nil marker", out.Rows[0][dataset.ColNetIncome])
	}
}

func TestEnrich_TotalsRowsExcluded(t *testing.T) {
	// GIVEN: An aggregate Totals row riding along with a real job
	// WHEN: Enriched
	// THEN: The aggregate row gets missing markers, the job gets values

	ds := dataset.FromRecords(
		dataset.JobRecord{JobID: "J-106", Technician: "Avi", TechShare: "50%", Total: "100", Parts: "10"},
		dataset.JobRecord{JobID: "Totals:3", Total: "100", Parts: "10"},
	)

	e := &finance.Enricher{Logger: quietLogger()}
	out, err := e.Enrich(ds)
	if err != nil {
		t.Fatalf("enrich failed: %v", err)
	}
	if out.Rows[0][dataset.ColNetIncome] == nil {
		t.Error("real job row should be enriched")
	}
	if out.Rows[1][dataset.ColNetIncome] != nil {
		t.Error("totals row should carry a missing marker")
	}
}

func TestEnrich_ParallelMatchesSequential(t *testing.T) {
	// GIVEN: The same dataset enriched sequentially and with 4 workers
	// WHEN: Both runs complete
	// THEN: Identical derived values row for row

	var records []dataset.JobRecord
	for i := 0; i < 40; i++ {
		records = append(records, dataset.JobRecord{
			JobID:      "J",
			Technician: "Avi",
			TechShare:  "40%",
			Total:      "250.50",
			Parts:      "50",
		})
	}
	ds := dataset.FromRecords(records...)

	seq := &finance.Enricher{Logger: quietLogger()}
	par := &finance.Enricher{Workers: 4, Logger: quietLogger()}

	seqOut, err := seq.Enrich(ds)
	if err != nil {
		t.Fatalf("sequential enrich failed: %v", err)
	}
	parOut, err := par.Enrich(ds)
	if err != nil {
		t.Fatalf("parallel enrich failed: %v", err)
	}

	for i := range seqOut.Rows {
		want := cellFixed(t, seqOut.Rows[i], dataset.ColCompanyNet)
		got := cellFixed(t, parOut.Rows[i], dataset.ColCompanyNet)
		if got != want {
			t.Fatalf("row %d company_net mismatch: %s vs %s", i, got, want)
		}
	}
}

func TestEnrich_RulesMode(t *testing.T) {
	// GIVEN: A flat technician override for this client
	// WHEN: Enriched in rule mode
	// THEN: tech_cut is the flat amount, not a share of total

	flat := 120.0
	rules := finance.CommissionRules{
		Clients: map[string]finance.ClientRules{
			"acme": {Techs: map[string]finance.RuleLeaf{"Avi": {Flat: &flat}}},
		},
	}
	ds := dataset.FromRecords(dataset.JobRecord{
		JobID:      "J-107",
		Technician: "Avi",
		ClientID:   "acme",
		Total:      "1000",
		Parts:      "100",
	})

	e := &finance.Enricher{Rules: rules, Mode: finance.ModeRules, Logger: quietLogger()}
	out, err := e.Enrich(ds)
	if err != nil {
		t.Fatalf("enrich failed: %v", err)
	}
	if got := cellFixed(t, out.Rows[0], dataset.ColTechCut); got != "120.00" {
		t.Errorf("tech_cut = %s, want 120.00", got)
	}
	if got := cellFixed(t, out.Rows[0], dataset.ColCompanyNet); got != "780.00" {
		t.Errorf("company_net = %s, want 780.00", got)
	}
}
