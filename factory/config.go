/*
Package factory builds the engine's configuration from declarative
documents.

PURPOSE:
  Rules live in YAML so operations staff can tune thresholds without a
  code change. Everything is loaded once, before a pipeline run begins,
  into one explicit Config injected at construction time - no hidden
  global state, no hot reload, easy test injection.

LAYERING (low -> high precedence):
  1. Defaults()
  2. YAML file (FINANCE_CONFIG or an explicit path)
  3. Environment variables with the FINANCE_ prefix

DOCUMENT SHAPE:
  addr: ":8080"
  task_store: "output/tasks/action_items.json"
  high_commission_ratio: 0.8
  detection:
    high_comm: {threshold: 0.9}
    inc_drop: {window: 3, pct: 0.3}
    flags_spike: {threshold: 5}
    tax_anomaly: {min_rate: 0.1}
  commission:
    clients:
      acme:
        techs: {avi: {flat: 120}}
        services: {repair: {rate: 0.4}}
        default: {rate: 0.35}
    default: {rate: 0.3}
  tax:
    IL: {"2023": 0.17, "2025": 0.18}

SEE ALSO:
  - insights/types.go:     detection rule types
  - finance/commission.go: commission rule types
*/
package factory

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/fieldpulse/finance-engine/finance"
	"github.com/fieldpulse/finance-engine/insights"
)

// EnvPrefix scopes the environment overrides: FINANCE_ADDR, ...
const EnvPrefix = "FINANCE_"

// Config is the complete, injected configuration object.
type Config struct {
	Addr                string                  `koanf:"addr"`
	TaskStore           string                  `koanf:"task_store"`
	HighCommissionRatio float64                 `koanf:"high_commission_ratio"`
	Workers             int                     `koanf:"workers"`
	Detection           insights.Rules          `koanf:"detection"`
	Commission          finance.CommissionRules `koanf:"commission"`
	Tax                 map[string]map[string]float64 `koanf:"tax"`
}

// Defaults returns the built-in configuration floor.
func Defaults() *Config {
	return &Config{
		Addr:                ":8080",
		TaskStore:           "output/tasks/action_items.json",
		HighCommissionRatio: finance.DefaultHighCommissionRatio,
		Detection:           insights.DefaultRules(),
	}
}

// Load builds a Config by layering defaults, an optional YAML file, and
// FINANCE_-prefixed environment variables. An empty path falls back to
// the FINANCE_CONFIG env var; no file at all is fine.
func Load(path string) (*Config, error) {
	cfg := *Defaults()

	k := koanf.New(".")

	if path == "" {
		path = os.Getenv(EnvPrefix + "CONFIG")
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	// FINANCE_ADDR -> addr, FINANCE_TASK_STORE -> task_store
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load env overrides: %w", err)
	}

	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Addr == "" {
		return nil, fmt.Errorf("addr must not be empty")
	}
	return &cfg, nil
}

// TaxTable converts the stringly-keyed YAML mapping into the typed
// lookup table. Non-numeric year keys are rejected.
func (c *Config) TaxTable() (finance.TaxTable, error) {
	if len(c.Tax) == 0 {
		return finance.DefaultTaxTable(), nil
	}
	out := make(finance.TaxTable, len(c.Tax))
	for jurisdiction, years := range c.Tax {
		out[jurisdiction] = make(map[int]float64, len(years))
		for yearStr, rate := range years {
			year, err := strconv.Atoi(strings.TrimSpace(yearStr))
			if err != nil {
				return nil, fmt.Errorf("tax table: bad year %q for %s", yearStr, jurisdiction)
			}
			out[jurisdiction][year] = rate
		}
	}
	return out, nil
}

// =============================================================================
// SINGLE-DOCUMENT LOADERS - For library users who need just one piece
// =============================================================================

// LoadDetectionRules reads a rules document keyed by detector code.
func LoadDetectionRules(path string) (insights.Rules, error) {
	rules := insights.DefaultRules()
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return rules, fmt.Errorf("load detection rules %s: %w", path, err)
	}
	if err := k.UnmarshalWithConf("", &rules, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return rules, fmt.Errorf("unmarshal detection rules: %w", err)
	}
	return rules, nil
}

// LoadCommissionRules reads the client-scoped commission document.
func LoadCommissionRules(path string) (finance.CommissionRules, error) {
	var rules finance.CommissionRules
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return rules, fmt.Errorf("load commission rules %s: %w", path, err)
	}
	if err := k.UnmarshalWithConf("", &rules, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return rules, fmt.Errorf("unmarshal commission rules: %w", err)
	}
	return rules, nil
}

// LoadTaxTable reads a (jurisdiction, year) -> rate document.
func LoadTaxTable(path string) (finance.TaxTable, error) {
	var doc struct {
		Tax map[string]map[string]float64 `koanf:"tax"`
	}
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load tax table %s: %w", path, err)
	}
	if err := k.UnmarshalWithConf("", &doc, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("unmarshal tax table: %w", err)
	}
	cfg := Config{Tax: doc.Tax}
	return cfg.TaxTable()
}
