package finance_test

import (
	"testing"

	"github.com/fieldpulse/finance-engine/dataset"
	"github.com/fieldpulse/finance-engine/finance"
)

// =============================================================================
// MULTI-TECHNICIAN EXPANSION TESTS
// =============================================================================

func TestExpandTechnicians_SharedJobWithShares(t *testing.T) {
	// GIVEN: One job worked by three technicians with an explicit split
	// WHEN: Expanded
	// THEN: Three rows, trimmed names, parallel shares as fractions

	ds := dataset.FromRecords(dataset.JobRecord{
		JobID:      "J-1",
		Technician: "Avi / Dana / Noa",
		TechShare:  "50%/30%/20%",
		Total:      "1000",
		Parts:      "100",
	})

	out := finance.ExpandTechnicians(ds)
	if out.Len() != 3 {
		t.Fatalf("expected 3 rows, got %d", out.Len())
	}

	wantTechs := []string{"Avi", "Dana", "Noa"}
	wantShares := []string{"0.5", "0.3", "0.2"}
	for i, row := range out.Rows {
		if got := row.String(dataset.ColTechnician); got != wantTechs[i] {
			t.Errorf("row %d technician = %q, want %q", i, got, wantTechs[i])
		}
		if got := row.String(dataset.ColTechShare); got != wantShares[i] {
			t.Errorf("row %d share = %q, want %q", i, got, wantShares[i])
		}
		// total/parts duplicate unchanged, never pro-rated
		if got := row.String(dataset.ColTotal); got != "1000" {
			t.Errorf("row %d total = %q, want unchanged 1000", i, got)
		}
	}
}

func TestExpandTechnicians_NoSharesEqualSplit(t *testing.T) {
	// GIVEN: Two technicians, no share list
	// WHEN: Expanded
	// THEN: Equal 1/N split

	ds := dataset.FromRecords(dataset.JobRecord{
		JobID:      "J-2",
		Technician: "Avi/Dana",
		Total:      "500",
	})

	out := finance.ExpandTechnicians(ds)
	if out.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", out.Len())
	}
	for i, row := range out.Rows {
		if got := row.String(dataset.ColTechShare); got != "0.5" {
			t.Errorf("row %d share = %q, want 0.5", i, got)
		}
	}
}

func TestExpandTechnicians_ShareCountMismatch(t *testing.T) {
	// GIVEN: Three technicians but only two share components
	// WHEN: Expanded
	// THEN: The share list is ignored in favor of an equal split

	ds := dataset.FromRecords(dataset.JobRecord{
		JobID:      "J-3",
		Technician: "Avi/Dana/Noa",
		TechShare:  "60%/40%",
		Total:      "900",
	})

	out := finance.ExpandTechnicians(ds)
	if out.Len() != 3 {
		t.Fatalf("expected 3 rows, got %d", out.Len())
	}
	for i, row := range out.Rows {
		if got := row.String(dataset.ColTechShare); got != "0.333333" {
			t.Errorf("row %d share = %q, want 0.333333", i, got)
		}
	}
}

func TestExpandTechnicians_UnparseableShareComponent(t *testing.T) {
	// GIVEN: A share list with one garbage component
	// WHEN: Expanded
	// THEN: Whole list discarded, equal split used

	ds := dataset.FromRecords(dataset.JobRecord{
		JobID:      "J-4",
		Technician: "Avi/Dana",
		TechShare:  "60%/huh",
		Total:      "400",
	})

	out := finance.ExpandTechnicians(ds)
	for i, row := range out.Rows {
		if got := row.String(dataset.ColTechShare); got != "0.5" {
			t.Errorf("row %d share = %q, want 0.5", i, got)
		}
	}
}

func TestExpandTechnicians_SingleTechnicianPassesThrough(t *testing.T) {
	// GIVEN: A single-technician job
	// WHEN: Expanded
	// THEN: One row, untouched

	ds := dataset.FromRecords(dataset.JobRecord{
		JobID:      "J-5",
		Technician: "Avi",
		Total:      "300",
	})

	out := finance.ExpandTechnicians(ds)
	if out.Len() != 1 {
		t.Fatalf("expected 1 row, got %d", out.Len())
	}
	if got := out.Rows[0].String(dataset.ColTechnician); got != "Avi" {
		t.Errorf("technician = %q, want Avi", got)
	}
}

func TestExpandTechnicians_DoesNotMutateInput(t *testing.T) {
	// GIVEN: A shared job
	// WHEN: Expanded
	// THEN: The input dataset still holds the original combined row

	ds := dataset.FromRecords(dataset.JobRecord{
		JobID:      "J-6",
		Technician: "Avi/Dana",
		Total:      "100",
	})
	_ = finance.ExpandTechnicians(ds)

	if ds.Len() != 1 {
		t.Fatalf("input mutated: %d rows", ds.Len())
	}
	if got := ds.Rows[0].String(dataset.ColTechnician); got != "Avi/Dana" {
		t.Errorf("input technician mutated: %q", got)
	}
}
