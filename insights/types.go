/*
Package insights runs rule-based anomaly detection over an enriched
job dataset.

PURPOSE:
  A fixed set of independent detectors inspects the dataset plus a shared
  daily rollup and emits severity-ranked findings. The engine guarantees:
  - Detectors are isolated: one failing detector never aborts its peers.
  - Detectors self-skip when a required column is absent.
  - Output ordering is deterministic: severity descending, ties broken
    by detector-emission order (stable sort).

KEY CONCEPTS IN THIS FILE (types.go):
  - Insight:  one finding (code, message, severity, metadata)
  - Severity: INFO < WARNING < CRITICAL
  - Rules:    declarative per-detector thresholds and windows

SEE ALSO:
  - engine.go:    registry, rollup, ordering, fault isolation
  - detectors.go: the detector catalog
  - cache.go:     bounded LRU of recently served insights
*/
package insights

// =============================================================================
// SEVERITY
// =============================================================================

type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityCritical Severity = "CRITICAL"
)

// rank orders severities for sorting. Unknown severities sink to the end.
func (s Severity) rank() int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityWarning:
		return 2
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}

// =============================================================================
// INSIGHT
// =============================================================================

// Insight is one detector finding. Insights are ephemeral per detection
// run; persistence happens only through promotion to an action item.
type Insight struct {
	Code     string
	Message  string
	Severity Severity
	Meta     map[string]any
}

// =============================================================================
// RULES - Declarative detector configuration
// =============================================================================

// Detector codes double as the keys of the rules document.
const (
	CodeHighCommission = "HIGH_COMM"
	CodeIncomeDrop     = "INC_DROP"
	CodeFlagSpike      = "FLAGS_SPIKE"
	CodeTaxAnomaly     = "TAX_ANOMALY"
)

type HighCommissionRule struct {
	Threshold float64 `koanf:"threshold" yaml:"threshold"`
}

type IncomeDropRule struct {
	Window int     `koanf:"window" yaml:"window"`
	Pct    float64 `koanf:"pct" yaml:"pct"`
}

type FlagSpikeRule struct {
	Threshold int `koanf:"threshold" yaml:"threshold"`
}

type TaxAnomalyRule struct {
	MinRate float64 `koanf:"min_rate" yaml:"min_rate"`
}

// Rules holds every detector's configuration. Loaded once before a run
// and injected at engine construction - no hidden global state.
type Rules struct {
	HighCommission HighCommissionRule `koanf:"high_comm" yaml:"high_comm"`
	IncomeDrop     IncomeDropRule     `koanf:"inc_drop" yaml:"inc_drop"`
	FlagSpike      FlagSpikeRule      `koanf:"flags_spike" yaml:"flags_spike"`
	TaxAnomaly     TaxAnomalyRule     `koanf:"tax_anomaly" yaml:"tax_anomaly"`
}

// DefaultRules returns the thresholds used when no document is loaded.
func DefaultRules() Rules {
	return Rules{
		HighCommission: HighCommissionRule{Threshold: 0.9},
		IncomeDrop:     IncomeDropRule{Window: 3, Pct: 0.3},
		FlagSpike:      FlagSpikeRule{Threshold: 5},
		TaxAnomaly:     TaxAnomalyRule{MinRate: 0.1},
	}
}

// normalized fills zero values with defaults so a partially-specified
// rules document behaves sanely.
func (r Rules) normalized() Rules {
	def := DefaultRules()
	if r.HighCommission.Threshold == 0 {
		r.HighCommission = def.HighCommission
	}
	if r.IncomeDrop.Window == 0 {
		r.IncomeDrop.Window = def.IncomeDrop.Window
	}
	if r.IncomeDrop.Pct == 0 {
		r.IncomeDrop.Pct = def.IncomeDrop.Pct
	}
	if r.FlagSpike.Threshold == 0 {
		r.FlagSpike = def.FlagSpike
	}
	if r.TaxAnomaly.MinRate == 0 {
		r.TaxAnomaly = def.TaxAnomaly
	}
	return r
}
