package services

import (
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestApplyPercent(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		percent string
		expect  string
	}{
		{"ten percent", "2000", "10", "200"},
		{"eight percent", "1800", "8", "144"},
		{"zero percent", "1800", "0", "0"},
		{"fractional percent", "1000", "7.25", "72.5"},
		{"negative amount", "-500", "10", "-50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyPercent(d(tt.amount), d(tt.percent))
			if !got.Equal(d(tt.expect)) {
				t.Errorf("ApplyPercent(%s, %s) = %s, want %s", tt.amount, tt.percent, got, tt.expect)
			}
		})
	}
}

func TestPercentOf_ZeroGuard(t *testing.T) {
	got := PercentOf(d("100"), decimal.Zero)
	if !got.IsZero() {
		t.Errorf("PercentOf(100, 0) = %s, want 0", got)
	}

	got = PercentOf(decimal.Zero, decimal.Zero)
	if !got.IsZero() {
		t.Errorf("PercentOf(0, 0) = %s, want 0", got)
	}
}

func TestPercentOf(t *testing.T) {
	got := Round2(PercentOf(d("25000"), d("55000")))
	if !got.Equal(d("45.45")) {
		t.Errorf("PercentOf(25000, 55000) = %s, want 45.45", got)
	}
}

func TestSum(t *testing.T) {
	if got := Sum(); !got.IsZero() {
		t.Errorf("Sum() = %s, want 0", got)
	}
	if got := Sum(d("0.1"), d("0.2"), d("0.3")); !got.Equal(d("0.6")) {
		t.Errorf("Sum(0.1, 0.2, 0.3) = %s, want 0.6", got)
	}
}

func TestRound2_HalfAwayFromZero(t *testing.T) {
	tests := []struct {
		in, expect string
	}{
		{"1.005", "1.01"},
		{"1.004", "1"},
		{"-1.005", "-1.01"},
		{"101666.666666", "101666.67"},
	}
	for _, tt := range tests {
		if got := Round2(d(tt.in)); !got.Equal(d(tt.expect)) {
			t.Errorf("Round2(%s) = %s, want %s", tt.in, got, tt.expect)
		}
	}
}

func TestDec(t *testing.T) {
	if got := Dec(0.1).Add(Dec(0.2)); !got.Equal(d("0.3")) {
		t.Errorf("Dec(0.1)+Dec(0.2) = %s, want 0.3", got)
	}
}

func TestFormatUSD(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		expect string
	}{
		{"zero", "0", "$0.00"},
		{"small", "5", "$5.00"},
		{"hundreds", "999.99", "$999.99"},
		{"thousands", "1234.5", "$1,234.50"},
		{"millions", "1234567.891", "$1,234,567.89"},
		{"negative", "-1234", "-$1,234.00"},
		{"negative rounds to zero", "-0.001", "$0.00"},
		{"exact grouping", "100000", "$100,000.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatUSD(d(tt.in)); got != tt.expect {
				t.Errorf("FormatUSD(%s) = %q, want %q", tt.in, got, tt.expect)
			}
		})
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(PercentOf(d("25000"), d("55000"))); got != "45.45%" {
		t.Errorf("FormatPercent = %q, want %q", got, "45.45%")
	}
}

func TestMoney(t *testing.T) {
	if got := Money(d("1944")); got != "1944.00" {
		t.Errorf("Money(1944) = %q, want %q", got, "1944.00")
	}
}

func TestApplyThousandsGrouping(t *testing.T) {
	tests := map[string]string{
		"1":       "1",
		"123":     "123",
		"1234":    "1,234",
		"123456":  "123,456",
		"1234567": "1,234,567",
	}
	for in, expect := range tests {
		if got := applyThousandsGrouping(in); got != expect {
			t.Errorf("applyThousandsGrouping(%q) = %q, want %q", in, got, expect)
		}
	}
}
