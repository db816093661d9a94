/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication, decoupling the
  internal tabular model from the external contract. Monetary cells are
  serialized as decimal strings - clients that want floats can parse
  them; we will not round-trip money through float64.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data
  carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"strings"
	"time"

	"github.com/fieldpulse/finance-engine/dataset"
	"github.com/fieldpulse/finance-engine/insights"
)

// =============================================================================
// DATASET TRANSPORT
// =============================================================================

// DatasetDTO carries a tabular dataset over the wire.
type DatasetDTO struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

func toDataset(dto DatasetDTO) *dataset.Dataset {
	ds := dataset.New(dto.Columns...)
	for _, row := range dto.Rows {
		ds.Append(dataset.Row(row))
	}
	return ds
}

func fromDataset(ds *dataset.Dataset) DatasetDTO {
	dto := DatasetDTO{Columns: ds.Columns, Rows: make([]map[string]any, len(ds.Rows))}
	for i, row := range ds.Rows {
		dto.Rows[i] = map[string]any(row)
	}
	return dto
}

// =============================================================================
// ENRICHMENT
// =============================================================================

// EnrichRequest runs expansion + enrichment over a raw dataset.
type EnrichRequest struct {
	Dataset DatasetDTO `json:"dataset"`

	// Mode selects tech_cut computation: "share" (default) or "rules".
	Mode string `json:"mode,omitempty"`

	// HighCommissionRatio overrides the configured HIGH-flag threshold.
	HighCommissionRatio float64 `json:"high_commission_ratio,omitempty"`
}

type EnrichResponse struct {
	Dataset DatasetDTO `json:"dataset"`
}

// =============================================================================
// INSIGHTS
// =============================================================================

// InsightsRequest runs the full pipeline and detection over a raw dataset.
type InsightsRequest struct {
	Dataset    DatasetDTO `json:"dataset"`
	SourceFile string     `json:"source_file,omitempty"`
	Limit      int        `json:"limit,omitempty"` // 0 means DefaultInsightLimit
}

// InsightDTO is a served insight: the finding plus its reference id.
type InsightDTO struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Severity  string         `json:"severity"`
	CreatedAt time.Time      `json:"createdAt"`
	Meta      map[string]any `json:"meta,omitempty"`
}

func toInsightDTO(s insights.Served) InsightDTO {
	meta := s.Insight.Meta
	if s.SourceFile != "" {
		if meta == nil {
			meta = map[string]any{}
		} else {
			copied := make(map[string]any, len(meta)+1)
			for k, v := range meta {
				copied[k] = v
			}
			meta = copied
		}
		meta["source_file"] = s.SourceFile
	}
	return InsightDTO{
		ID:        s.ID,
		Title:     titleFromCode(s.Insight.Code),
		Message:   s.Insight.Message,
		Severity:  strings.ToLower(string(s.Insight.Severity)),
		CreatedAt: s.CreatedAt,
		Meta:      meta,
	}
}

// titleFromCode renders "HIGH_COMM" as "High Comm".
func titleFromCode(code string) string {
	words := strings.Split(strings.ToLower(strings.ReplaceAll(code, "_", " ")), " ")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// =============================================================================
// TASKS
// =============================================================================

// CreateTaskRequest promotes a cached insight into an action item.
type CreateTaskRequest struct {
	InsightID  string `json:"insightId"`
	Origin     string `json:"origin,omitempty"` // defaults to "insight"
	SourceFile string `json:"sourceFile,omitempty"`
}

type CreateTaskResponse struct {
	Status string `json:"status"`
	TaskID string `json:"taskId"`
}

// UpdateTaskRequest transitions an action item's status.
type UpdateTaskRequest struct {
	Status string `json:"status"`
}

// =============================================================================
// MISC
// =============================================================================

type TaxRateResponse struct {
	Jurisdiction string `json:"jurisdiction"`
	Year         int    `json:"year"`
	Rate         string `json:"rate"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
