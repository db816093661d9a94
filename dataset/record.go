package dataset

// =============================================================================
// JOB RECORD - Typed constructor for one billable service event
// =============================================================================

// JobRecord is a convenience shape for building datasets in code and
// tests. The pipeline itself works on Rows; invariants are deliberately
// not enforced here - violations surface later as flags, not errors.
type JobRecord struct {
	JobID        string
	Technician   string // possibly slash-delimited for shared jobs
	TechShare    string // optional, possibly slash-delimited percentages
	Total        any
	Parts        any
	TaxCollected any
	ServiceType  string
	Date         any
	Closed       any
	ClientID     string
}

// Row converts the record into the loosely-typed pipeline shape.
// Empty optional fields are omitted so column-presence checks stay honest.
func (j JobRecord) Row() Row {
	r := Row{
		ColJobID:      j.JobID,
		ColTechnician: j.Technician,
		ColTotal:      j.Total,
		ColParts:      j.Parts,
		ColDate:       j.Date,
		ColClosed:     j.Closed,
		ColClientID:   j.ClientID,
	}
	if j.TechShare != "" {
		r[ColTechShare] = j.TechShare
	}
	if j.TaxCollected != nil {
		r[ColTaxCollected] = j.TaxCollected
	}
	if j.ServiceType != "" {
		r[ColServiceType] = j.ServiceType
	}
	return r
}

// FromRecords builds a dataset with the standard upstream column set.
func FromRecords(records ...JobRecord) *Dataset {
	ds := New(
		ColJobID, ColTechnician, ColTechShare,
		ColTotal, ColParts, ColTaxCollected,
		ColServiceType, ColDate, ColClosed, ColClientID,
	)
	for _, rec := range records {
		ds.Append(rec.Row())
	}
	return ds
}
