package services

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Dec converts a persisted numeric field into a decimal. Record fields are
// stored as float64; going through the shortest decimal representation keeps
// 0.1 as 0.1 instead of its binary approximation.
func Dec(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// ApplyPercent returns amount * (percent / 100).
func ApplyPercent(amount, percent decimal.Decimal) decimal.Decimal {
	return amount.Mul(percent).Div(hundred)
}

// PercentOf returns part / whole * 100, or zero when whole is zero.
func PercentOf(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred)
}

// Sum adds all values at full precision.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// Round2 rounds half away from zero to cents. Only call this at presentation.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Money renders a value as a fixed two-decimal string for JSON payloads.
func Money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FormatUSD formats an amount as US currency with thousands separators,
// e.g. $1,234,567.89 or -$1,234.00.
func FormatUSD(d decimal.Decimal) string {
	negative := d.IsNegative()
	raw := d.Abs().StringFixed(2)

	parts := strings.SplitN(raw, ".", 2)
	intPart := parts[0]
	decPart := parts[1]

	result := "$" + applyThousandsGrouping(intPart) + "." + decPart
	if negative && raw != "0.00" {
		result = "-" + result
	}
	return result
}

// FormatPercent formats a percentage with two decimals, e.g. 45.45%.
func FormatPercent(d decimal.Decimal) string {
	return d.StringFixed(2) + "%"
}

// applyThousandsGrouping inserts a comma every three digits from the right.
func applyThousandsGrouping(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	var b strings.Builder
	lead := n % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
