package parser

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

var (
	currencySymbolRe = regexp.MustCompile(`(?i)R\$\s*`)
	numericPrefixRe  = regexp.MustCompile(`^[+-]?(\d+(\.\d+)?|\.\d+)([eE][+-]?\d+)?`)
	leadingDigitsRe  = regexp.MustCompile(`^\d+`)
)

// NormalizeColumnName trims a header label and removes every whitespace rune
// so "Codigo Revendedor" and "CodigoRevendedor" compare equal.
func NormalizeColumnName(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, strings.TrimSpace(name))
}

// NormalizeIdentifier strips whitespace and periods from a dealer or sector code.
// "123.456 " and "123456" normalize to the same key.
func NormalizeIdentifier(raw string) string {
	return strings.Map(func(r rune) rune {
		if r == '.' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)
}

// ExtractLeadingInteger returns the run of ASCII digits that starts the string.
func ExtractLeadingInteger(raw string) (string, bool) {
	m := leadingDigitsRe.FindString(strings.TrimSpace(raw))
	if m == "" {
		return "", false
	}
	return m, true
}

// ParseCurrencyPTBR converts a pt-BR money value ("R$ 1.234,56") to a number.
// Numbers pass through. Anything that does not yield a finite number is 0.
func ParseCurrencyPTBR(value any) float64 {
	switch v := value.(type) {
	case nil:
		return 0
	case float64:
		return finiteOrZero(v)
	case float32:
		return finiteOrZero(float64(v))
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case int32:
		return float64(v)
	case decimal.Decimal:
		return v.InexactFloat64()
	case string:
		return parseCurrencyString(v)
	default:
		return parseCurrencyString(fmt.Sprint(v))
	}
}

// ParseCurrencyDecimal is ParseCurrencyPTBR for callers that keep summing in decimal.
func ParseCurrencyDecimal(raw string) decimal.Decimal {
	s := cleanCurrency(raw)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil || math.IsInf(d.InexactFloat64(), 0) {
		return decimal.Zero
	}
	return d
}

func parseCurrencyString(raw string) float64 {
	return ParseCurrencyDecimal(raw).InexactFloat64()
}

// cleanCurrency applies the separator rules and keeps the numeric prefix,
// the same way a lenient float parse would read "12,5 reais" as 12.5.
func cleanCurrency(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimSpace(currencySymbolRe.ReplaceAllString(s, ""))

	hasComma := strings.Contains(s, ",")
	switch {
	case hasComma && strings.Contains(s, "."):
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case hasComma:
		s = strings.Replace(s, ",", ".", 1)
	}

	return numericPrefixRe.FindString(s)
}

func finiteOrZero(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
