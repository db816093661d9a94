package finance_test

import (
	"testing"

	"github.com/fieldpulse/finance-engine/dataset"
	"github.com/fieldpulse/finance-engine/finance"
)

// =============================================================================
// SANITY REPORT TESTS
// =============================================================================

func TestRunSanityChecks_ViolatingRowsOnly(t *testing.T) {
	// GIVEN: An enriched dataset with one clean job, one loss-making job,
	//        and one paying the technician 95%
	// WHEN: The sanity report runs at the default 0.9 ratio
	// THEN: Only the two violators come back, labeled with their rules

	ds := dataset.FromRecords(
		dataset.JobRecord{JobID: "ok", Technician: "Avi", TechShare: "40%", Total: "1000", Parts: "100"},
		dataset.JobRecord{JobID: "loss", Technician: "Avi", TechShare: "10%", Total: "100", Parts: "250"},
		dataset.JobRecord{JobID: "greedy", Technician: "Dana", TechShare: "95%", Total: "100", Parts: "0"},
	)
	e := &finance.Enricher{Logger: quietLogger()}
	enriched, err := e.Enrich(ds)
	if err != nil {
		t.Fatalf("enrich failed: %v", err)
	}

	report := finance.RunSanityChecks(enriched, 0)
	if report.Len() != 2 {
		t.Fatalf("expected 2 violating rows, got %d", report.Len())
	}

	byJob := map[string]string{}
	for _, row := range report.Rows {
		byJob[row.String(dataset.ColJobID)] = row.String(dataset.ColFailedRules)
	}
	if got := byJob["loss"]; got != "NEGATIVE_PROFIT,PARTS_EXCEED_TOTAL" {
		t.Errorf("loss failed_rules = %q", got)
	}
	if got := byJob["greedy"]; got != "EXCESSIVE_COMMISSION" {
		t.Errorf("greedy failed_rules = %q", got)
	}
}

func TestRunSanityChecks_UnenrichedDatasetYieldsEmptyReport(t *testing.T) {
	// GIVEN: A raw dataset that was never enriched
	// WHEN: The sanity report runs
	// THEN: Empty report - no derived columns means nothing to judge

	ds := dataset.FromRecords(dataset.JobRecord{JobID: "J", Total: "100", Parts: "250"})
	report := finance.RunSanityChecks(ds, 0)
	if report.Len() != 0 {
		t.Errorf("expected empty report, got %d rows", report.Len())
	}
}
