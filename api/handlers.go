/*
handlers.go - HTTP handler implementations

PURPOSE:
  The thin translation layer between the HTTP surface and the pipeline:
  decode, run, serialize, map errors. A pipeline failure is always a
  JSON error with a non-2xx status - never an empty result - so callers
  can tell "nothing wrong" from "could not tell".

ERROR HANDLING:
  - 400: Validation errors, invalid input (bad share, bad status)
  - 404: Unknown insight/action item id
  - 409: Reopen attempt on a resolved item
  - 500: Storage or internal errors

SECURITY NOTE:
  No authentication. Sessions/auth are an external collaborator's
  concern; do not expose this surface publicly as-is.

SEE ALSO:
  - dto.go:    request/response shapes
  - server.go: routing and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fieldpulse/finance-engine/dataset"
	"github.com/fieldpulse/finance-engine/finance"
	"github.com/fieldpulse/finance-engine/insights"
	"github.com/fieldpulse/finance-engine/tasks"
)

// DefaultInsightLimit bounds the served insight list when the caller
// does not ask for more.
const DefaultInsightLimit = 5

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Enricher *finance.Enricher
	Engine   *insights.Engine
	Tracker  *tasks.Tracker
	Cache    *insights.Cache
	Tax      finance.TaxTable
	Metrics  *Metrics
	Logger   *logrus.Logger
}

// NewHandler wires the pipeline dependencies together.
func NewHandler(enricher *finance.Enricher, engine *insights.Engine, tracker *tasks.Tracker, tax finance.TaxTable, metrics *Metrics, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handler{
		Enricher: enricher,
		Engine:   engine,
		Tracker:  tracker,
		Cache:    insights.NewCache(insights.DefaultCacheSize),
		Tax:      tax,
		Metrics:  metrics,
		Logger:   logger,
	}
}

// =============================================================================
// PIPELINE HANDLERS
// =============================================================================

// EnrichDataset expands multi-technician rows and computes derived
// financial fields.
func (h *Handler) EnrichDataset(w http.ResponseWriter, r *http.Request) {
	var req EnrichRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	enriched, err := h.runPipeline(req)
	if err != nil {
		h.pipelineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, EnrichResponse{Dataset: fromDataset(enriched)})
}

// GenerateInsights runs the full pipeline plus detection and serves the
// ranked, cached findings.
func (h *Handler) GenerateInsights(w http.ResponseWriter, r *http.Request) {
	var req InsightsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	enriched, err := h.runPipeline(EnrichRequest{Dataset: req.Dataset})
	if err != nil {
		h.pipelineError(w, err)
		return
	}

	found := h.Engine.Generate(enriched)
	now := time.Now().UTC()

	served := make([]insights.Served, len(found))
	for i, ins := range found {
		served[i] = insights.Served{
			ID:         uuid.NewString(),
			Insight:    ins,
			SourceFile: req.SourceFile,
			CreatedAt:  now,
		}
	}
	h.Cache.AddMany(served)
	h.Metrics.ObserveInsights(found)

	limit := req.Limit
	if limit <= 0 {
		limit = DefaultInsightLimit
	}
	if limit > len(served) {
		limit = len(served)
	}
	dtos := make([]InsightDTO, 0, limit)
	for _, s := range served[:limit] {
		dtos = append(dtos, toInsightDTO(s))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCachedInsight resolves a recently served insight by id.
func (h *Handler) GetCachedInsight(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	served, ok := h.Cache.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "insight not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toInsightDTO(served))
}

// SanityReport returns only the rows violating a financial rule.
func (h *Handler) SanityReport(w http.ResponseWriter, r *http.Request) {
	var req EnrichRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	enriched, err := h.runPipeline(req)
	if err != nil {
		h.pipelineError(w, err)
		return
	}
	flagged := finance.RunSanityChecks(enriched, finance.DefaultSanityCommissionRatio)
	writeJSON(w, http.StatusOK, EnrichResponse{Dataset: fromDataset(flagged)})
}

// runPipeline is the shared expand -> enrich path.
func (h *Handler) runPipeline(req EnrichRequest) (*dataset.Dataset, error) {
	h.Metrics.ObservePipelineRun()

	enricher := *h.Enricher
	if req.Mode == "rules" {
		enricher.Mode = finance.ModeRules
	}
	if req.HighCommissionRatio > 0 {
		enricher.HighCommissionRatio = req.HighCommissionRatio
	}

	expanded := finance.ExpandTechnicians(toDataset(req.Dataset))
	enriched, err := enricher.Enrich(expanded)
	if err != nil {
		h.Metrics.ObservePipelineFailure()
		return nil, err
	}
	return enriched, nil
}

func (h *Handler) pipelineError(w http.ResponseWriter, err error) {
	h.Logger.WithError(err).Error("pipeline run failed")
	status := http.StatusInternalServerError
	if errors.Is(err, finance.ErrShareExceedsWhole) {
		status = http.StatusBadRequest
	}
	writeError(w, status, "pipeline failed", err)
}

// =============================================================================
// TASK HANDLERS
// =============================================================================

// CreateTask promotes a cached insight into a new OPEN action item.
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.InsightID == "" {
		writeError(w, http.StatusBadRequest, "missing required field: insightId", err)
		return
	}

	served, ok := h.Cache.Get(req.InsightID)
	if !ok {
		writeError(w, http.StatusNotFound, "insight not found", nil)
		return
	}

	origin := req.Origin
	if origin == "" {
		origin = "insight"
	}
	sourceFile := req.SourceFile
	if sourceFile == "" {
		sourceFile = served.SourceFile
	}

	item, err := h.Tracker.Create(r.Context(), served.Insight, origin, sourceFile)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create action item", err)
		return
	}
	h.Metrics.ObserveActionItemCreated()
	writeJSON(w, http.StatusOK, CreateTaskResponse{Status: "created", TaskID: item.ID})
}

// ListTasks returns every action item, oldest first.
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	items, err := h.Tracker.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load action items", err)
		return
	}
	if items == nil {
		items = []tasks.ActionItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

// UpdateTask transitions an action item's status.
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Status == "" {
		writeError(w, http.StatusBadRequest, "missing required field: status", err)
		return
	}

	err := h.Tracker.UpdateStatus(r.Context(), id, tasks.Status(req.Status))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"status": "updated", "taskId": id})
	case errors.Is(err, tasks.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, "invalid status, must be OPEN or RESOLVED", err)
	case errors.Is(err, tasks.ErrNotFound):
		writeError(w, http.StatusNotFound, "task not found", err)
	case errors.Is(err, tasks.ErrAlreadyResolved):
		writeError(w, http.StatusConflict, "task already resolved", err)
	default:
		writeError(w, http.StatusInternalServerError, "failed to update task", err)
	}
}

// DeleteTask removes an action item permanently.
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	err := h.Tracker.Delete(r.Context(), id)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "taskId": id})
	case errors.Is(err, tasks.ErrNotFound):
		writeError(w, http.StatusNotFound, "task not found", err)
	default:
		writeError(w, http.StatusInternalServerError, "failed to delete task", err)
	}
}

// =============================================================================
// TAX HANDLER
// =============================================================================

// GetTaxRate resolves (jurisdiction, year). Unknown keys resolve to "0".
func (h *Handler) GetTaxRate(w http.ResponseWriter, r *http.Request) {
	jurisdiction := r.URL.Query().Get("jurisdiction")
	if jurisdiction == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter: jurisdiction", nil)
		return
	}

	year := time.Now().UTC().Year()
	if yearStr := r.URL.Query().Get("year"); yearStr != "" {
		parsed, err := strconv.Atoi(yearStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid year", err)
			return
		}
		year = parsed
	} else if dateStr := r.URL.Query().Get("date"); dateStr != "" {
		when, ok := dataset.ParseFlexible(dateStr)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid date", nil)
			return
		}
		year = when.Year()
	}

	rate := h.Tax.ResolveYear(jurisdiction, year)
	writeJSON(w, http.StatusOK, TaxRateResponse{
		Jurisdiction: jurisdiction,
		Year:         year,
		Rate:         rate.String(),
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string, err error) {
	if err != nil {
		msg = msg + ": " + err.Error()
	}
	writeJSON(w, status, ErrorResponse{Error: msg})
}
