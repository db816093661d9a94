/*
metrics.go - Prometheus instrumentation for the pipeline surface

PURPOSE:
  Counters for the questions operators actually ask: how many pipeline
  runs, how many failed, how many insights fired per severity, how many
  action items were promoted. Exposed on GET /metrics.

SEE ALSO:
  - handlers.go: call sites
  - server.go:   /metrics route
*/
package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/fieldpulse/finance-engine/insights"
)

// Metrics holds the engine's Prometheus collectors. A nil *Metrics is a
// valid no-op receiver, so tests can construct handlers without a
// registry.
type Metrics struct {
	pipelineRuns       prometheus.Counter
	pipelineFailures   prometheus.Counter
	insightsGenerated  *prometheus.CounterVec
	actionItemsCreated prometheus.Counter
}

// NewMetrics registers the collectors on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		pipelineRuns: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "finance_engine",
			Name:      "pipeline_runs_total",
			Help:      "Total expand+enrich pipeline runs.",
		}),
		pipelineFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "finance_engine",
			Name:      "pipeline_failures_total",
			Help:      "Pipeline runs aborted by a fatal error.",
		}),
		insightsGenerated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "finance_engine",
			Name:      "insights_generated_total",
			Help:      "Insights produced by the detection engine.",
		}, []string{"severity"}),
		actionItemsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "finance_engine",
			Name:      "action_items_created_total",
			Help:      "Insights promoted into tracked action items.",
		}),
	}
}

func (m *Metrics) ObservePipelineRun() {
	if m == nil {
		return
	}
	m.pipelineRuns.Inc()
}

func (m *Metrics) ObservePipelineFailure() {
	if m == nil {
		return
	}
	m.pipelineFailures.Inc()
}

func (m *Metrics) ObserveInsights(found []insights.Insight) {
	if m == nil {
		return
	}
	for _, ins := range found {
		m.insightsGenerated.WithLabelValues(string(ins.Severity)).Inc()
	}
}

func (m *Metrics) ObserveActionItemCreated() {
	if m == nil {
		return
	}
	m.actionItemsCreated.Inc()
}
