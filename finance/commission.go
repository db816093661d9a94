/*
commission.go - Commission resolution rules

PURPOSE:
  Determines a technician's commission for a single job from a nested,
  client-scoped rule document. The resolution order is a business rule,
  not an implementation detail:

    (a) technician-specific override for this client (flat beats rate)
    (b) service-type override for this client (flat beats rate)
    (c) client default, then global default
    (d) fallback: (total - parts) * share, share defaulting to 0.5

  A flat leaf IS the commission amount. A rate leaf is applied to the
  job's net income (total - parts).

RULE DOCUMENT SHAPE (YAML):
  clients:
    acme:
      techs:
        avi: {flat: 120}
      services:
        repair: {rate: 0.4}
      default: {rate: 0.35}
  default: {rate: 0.3}

PURITY:
  ResolveCommission never mutates its inputs and reads no global state -
  rules are loaded once before a pipeline run and passed in.
*/
package finance

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"

	"github.com/fieldpulse/finance-engine/dataset"
)

// =============================================================================
// RULE DOCUMENT
// =============================================================================

// RuleLeaf is either a flat amount or a rate. When both are set, flat wins.
type RuleLeaf struct {
	Flat *float64 `koanf:"flat" yaml:"flat" json:"flat,omitempty"`
	Rate *float64 `koanf:"rate" yaml:"rate" json:"rate,omitempty"`
}

func (l RuleLeaf) empty() bool { return l.Flat == nil && l.Rate == nil }

// apply turns a leaf into a commission amount for the given net income.
func (l RuleLeaf) apply(net decimal.Decimal) decimal.Decimal {
	if l.Flat != nil {
		return decimal.NewFromFloat(*l.Flat).Round(2)
	}
	if l.Rate != nil {
		return net.Mul(decimal.NewFromFloat(*l.Rate)).Round(2)
	}
	return decimal.Zero
}

// ClientRules scopes overrides to one client.
type ClientRules struct {
	Techs    map[string]RuleLeaf `koanf:"techs" yaml:"techs" json:"techs,omitempty"`
	Services map[string]RuleLeaf `koanf:"services" yaml:"services" json:"services,omitempty"`
	Default  *RuleLeaf           `koanf:"default" yaml:"default" json:"default,omitempty"`
}

// CommissionRules is the full declarative document.
type CommissionRules struct {
	Clients map[string]ClientRules `koanf:"clients" yaml:"clients" json:"clients,omitempty"`
	Default RuleLeaf               `koanf:"default" yaml:"default" json:"default,omitempty"`
}

// =============================================================================
// RESOLUTION
// =============================================================================

// DefaultFallbackShare is the profit share used when no rule matches and
// the row carries no usable technician share.
var DefaultFallbackShare = decimal.NewFromFloat(0.5)

// ResolveCommission determines the commission amount for one row.
// Pure: the row and rules are never mutated.
func ResolveCommission(row dataset.Row, rules CommissionRules) decimal.Decimal {
	client := strings.TrimSpace(row.String(dataset.ColClientID))
	tech := strings.TrimSpace(row.String(dataset.ColTechnician))
	service := strings.TrimSpace(row.String(dataset.ColServiceType))

	total := dataset.SafeDecimalOrZero(row.Get(dataset.ColTotal))
	parts := dataset.SafeDecimalOrZero(row.Get(dataset.ColParts))
	net := total.Sub(parts)

	scope := rules.Clients[client]

	// (a) Technician override wins outright.
	if leaf, ok := scope.Techs[tech]; ok && !leaf.empty() {
		return leaf.apply(net)
	}

	// (b) Service-type override.
	if leaf, ok := scope.Services[service]; ok && !leaf.empty() {
		return leaf.apply(net)
	}

	// (c) Client default, then global default.
	if scope.Default != nil && !scope.Default.empty() {
		return scope.Default.apply(net)
	}
	if !rules.Default.empty() {
		return rules.Default.apply(net)
	}

	// (d) Profit share fallback.
	share := DefaultFallbackShare
	if v, ok := row[dataset.ColTechShare]; ok {
		if parsed, parsedOK := ParseShare(v); parsedOK {
			share = parsed
		}
	}
	return net.Mul(share).Round(2)
}

// =============================================================================
// SHARE PARSING
// =============================================================================

var oneHundred = decimal.NewFromInt(100)

// ParseShare normalizes a technician-share cell to a fraction.
// "50%" -> 0.5, 50 -> 0.5, 0.5 -> 0.5. Values above 1 are read as
// percentages; a result still above 1 (e.g. "150%") is the caller's
// fatal-error case, not ours. Rounded to 3 places.
func ParseShare(v any) (decimal.Decimal, bool) {
	if v == nil {
		return decimal.Zero, false
	}
	var (
		d   decimal.Decimal
		err error
		pct bool
	)
	switch val := v.(type) {
	case decimal.Decimal:
		d = val
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return decimal.Zero, false
		}
		pct = strings.HasSuffix(s, "%")
		d, err = decimal.NewFromString(strings.TrimSpace(strings.TrimSuffix(s, "%")))
		if err != nil {
			return decimal.Zero, false
		}
	default:
		f, castErr := cast.ToFloat64E(v)
		if castErr != nil {
			return decimal.Zero, false
		}
		d = decimal.NewFromFloat(f)
	}
	if pct || d.GreaterThan(decimal.NewFromInt(1)) {
		d = d.Div(oneHundred)
	}
	return d.Round(3), true
}
