package service

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

var leadingNumber = regexp.MustCompile(`^(\d+(\.\d+)?|\.\d+)`)

// ParsePrice applies the exchange's loose number format: grouping commas and
// any currency text are dropped, and only a strictly positive value counts.
//
//	"1,234.56 ر.ع" -> 1234.56
//	"0", "-5", ""  -> absent
func ParsePrice(text string) (decimal.Decimal, bool) {
	text = strings.ReplaceAll(text, ",", "")

	start := strings.IndexFunc(text, isNumeric)
	if start < 0 {
		return decimal.Zero, false
	}
	sign := strings.TrimRightFunc(text[:start], unicode.IsSpace)
	if strings.HasSuffix(sign, "-") || strings.HasSuffix(sign, "−") {
		return decimal.Zero, false
	}

	cleaned := strings.Map(func(r rune) rune {
		if isNumeric(r) {
			return r
		}
		return -1
	}, text)
	m := leadingNumber.FindString(cleaned)
	if m == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(m)
	if err != nil || !d.IsPositive() {
		return decimal.Zero, false
	}
	return d, true
}

func isNumeric(r rune) bool {
	return (r >= '0' && r <= '9') || r == '.'
}

var (
	pageFloor   = decimal.RequireFromString("0.01")
	pageCeiling = decimal.NewFromInt(100)
)

// plausible reports whether a price scraped from free text is in the range
// MSX equities actually trade at.
func plausible(d decimal.Decimal) bool {
	return d.GreaterThan(pageFloor) && d.LessThan(pageCeiling)
}
