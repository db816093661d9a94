/*
decimal.go - Numeric normalization

PURPOSE:
  Raw monetary cells arrive as "₪1,234.56", "-99.9$", " 1 200 ", floats,
  or plain garbage. SafeDecimal turns any of them into an exact two-digit
  decimal, round-half-up, and reports whether the conversion succeeded.

CONTRACT:
  - Strips currency symbols, thousands separators, and whitespace.
  - Keeps digits, at most one leading minus, and one decimal point;
    anything else ("1.2.3", "--5") fails cleanly.
  - Failure never raises: callers get (0.00, false) and decide whether
    the zero sentinel is acceptable (it is, in safe mode).
  - Per-cell: one bad value never aborts a column or the dataset.

DIAGNOSTICS:
  SampleInvalidNumeric collects up to N raw values that failed conversion
  so a data-quality surface can show them without re-running the pipeline.
*/
package dataset

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// moneyPlaces is the fixed fractional precision for monetary values.
const moneyPlaces = 2

// cleanRe keeps digits, decimal points, and minus signs.
var cleanRe = regexp.MustCompile(`[^0-9.\-]`)

// cleanNumericString reduces messy numeric text to something the decimal
// parser can judge. "₪1,234.56" -> "1234.56". Empty results become "0".
func cleanNumericString(raw string) string {
	s := strings.ReplaceAll(raw, ",", "")
	s = cleanRe.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	if s == "" {
		return "0"
	}
	return s
}

// SafeDecimal converts an arbitrary cell value to a decimal rounded to
// two places, round-half-up. The second return value reports whether the
// input was actually parseable; on failure the value is exactly zero.
func SafeDecimal(v any) (decimal.Decimal, bool) {
	switch val := v.(type) {
	case nil:
		return decimal.Zero.Round(moneyPlaces), false
	case decimal.Decimal:
		return val.Round(moneyPlaces), true
	case string:
		d, err := decimal.NewFromString(cleanNumericString(val))
		if err != nil {
			return decimal.Zero.Round(moneyPlaces), false
		}
		return d.Round(moneyPlaces), true
	default:
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return decimal.Zero.Round(moneyPlaces), false
		}
		return decimal.NewFromFloat(f).Round(moneyPlaces), true
	}
}

// SafeDecimalOrZero is the safe-mode form: unparseable input yields the
// zero sentinel with no indication of failure. Use SafeDecimal when the
// caller needs to distinguish "zero" from "could not tell".
func SafeDecimalOrZero(v any) decimal.Decimal {
	d, _ := SafeDecimal(v)
	return d
}

// SampleInvalidNumeric returns up to sampleSize raw values from the given
// column that failed decimal conversion. Values that cleaned down to zero
// without literally being zero count as failures too - that is how most
// garbage ends up looking after cleaning.
func SampleInvalidNumeric(ds *Dataset, column string, sampleSize int) []string {
	if ds == nil || !ds.HasColumn(column) || sampleSize <= 0 {
		return nil
	}

	var bad []string
	seen := make(map[string]bool)
	for _, row := range ds.Rows {
		v, ok := row[column]
		if !ok || v == nil {
			continue
		}
		raw := cast.ToString(v)
		if seen[raw] {
			continue
		}
		seen[raw] = true

		d, parsed := SafeDecimal(v)
		trimmed := strings.TrimSpace(raw)
		if !parsed || (d.IsZero() && trimmed != "0" && trimmed != "0.0" && trimmed != "0.00") {
			bad = append(bad, raw)
			if len(bad) == sampleSize {
				break
			}
		}
	}
	return bad
}
