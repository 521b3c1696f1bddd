// Package normalizer turns free-text statement cells into typed values.
// Numeric and date parsing never fail: malformed input degrades to zero or
// today, and the caller decides whether the resulting record is still usable.
package normalizer

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// Decimal-suffix patterns: a separator followed by 1-2 trailing digits.
	commaDecimalSuffix  = regexp.MustCompile(`,\d{1,2}$`)
	periodDecimalSuffix = regexp.MustCompile(`\.\d{1,2}$`)
)

// ParseAmount parses a free-text numeric token into a signed decimal,
// resolving thousands/decimal separator ambiguity without an explicit locale.
// Currency symbols, spaces and other noise are stripped. The sign is
// determined once, from the original token, so a source minus is never
// applied twice. Returns (0, false) on empty or unparseable input.
func ParseAmount(token string) (decimal.Decimal, bool) {
	negative := strings.HasPrefix(strings.TrimSpace(token), "-")

	cleaned := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' || r == ',' || r == '.' || r == '-' {
			return r
		}
		return -1
	}, token)
	if cleaned == "" {
		return decimal.Zero, false
	}

	switch {
	case commaDecimalSuffix.MatchString(cleaned):
		// European convention: 1.234,56
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	case periodDecimalSuffix.MatchString(cleaned) && strings.Contains(cleaned, ","):
		// US convention: 1,234.56
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	case strings.Contains(cleaned, ",") && !strings.Contains(cleaned, "."):
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}

	// The cleaned string may already carry the minus sign; only apply the
	// source sign when stripping lost it.
	if negative && d.IsPositive() {
		d = d.Neg()
	}
	return d, true
}

// ParseMagnitude parses a numeric token and discards its sign. Quantities,
// prices and dual-column amounts are magnitudes by definition.
func ParseMagnitude(token string) (decimal.Decimal, bool) {
	d, ok := ParseAmount(token)
	return d.Abs(), ok
}
