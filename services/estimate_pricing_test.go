package services

import (
	"testing"

	"github.com/shopspring/decimal"
)

func scenarioEstimate() ([]LineItem, []Allowance) {
	items := []LineItem{
		{Description: "Drywall", Quantity: d("2"), UnitPrice: d("500")},
	}
	allowances := []Allowance{
		{Name: "Lighting fixtures", Amount: d("1000"), Status: AllowancePending},
	}
	return items, allowances
}

func assertDec(t *testing.T, field string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(d(want)) {
		t.Errorf("%s = %s, want %s", field, got, want)
	}
}

func TestComputeEstimateTotals_Scenario(t *testing.T) {
	items, allowances := scenarioEstimate()

	got := ComputeEstimateTotals(items, allowances, nil, DiscountPercent, d("10"), d("8"))

	assertDec(t, "RequiredSubtotal", got.RequiredSubtotal, "1000")
	assertDec(t, "OptionalSubtotal", got.OptionalSubtotal, "0")
	assertDec(t, "AllowancesTotal", got.AllowancesTotal, "1000")
	assertDec(t, "Subtotal", got.Subtotal, "2000")
	assertDec(t, "Discount", got.Discount, "200")
	assertDec(t, "AfterDiscount", got.AfterDiscount, "1800")
	assertDec(t, "Tax", got.Tax, "144")
	assertDec(t, "AcceptedAlternatesTotal", got.AcceptedAlternatesTotal, "0")
	assertDec(t, "Total", got.Total, "1944")
}

func TestComputeEstimateTotals_DeductAlternate(t *testing.T) {
	items, allowances := scenarioEstimate()
	alternates := []Alternate{
		DeductAlternate("Vinyl instead of tile", d("100"), AlternateAccepted),
	}

	got := ComputeEstimateTotals(items, allowances, alternates, DiscountPercent, d("10"), d("8"))

	assertDec(t, "AcceptedAlternatesTotal", got.AcceptedAlternatesTotal, "-100")
	assertDec(t, "Total", got.Total, "1844")
}

func TestComputeEstimateTotals_AlternatesUntaxedAndUndiscounted(t *testing.T) {
	items, allowances := scenarioEstimate()
	alternates := []Alternate{
		AddAlternate("Upgrade fixtures", d("500"), AlternateAccepted),
	}

	got := ComputeEstimateTotals(items, allowances, alternates, DiscountPercent, d("10"), d("8"))

	assertDec(t, "Discount", got.Discount, "200")
	assertDec(t, "Tax", got.Tax, "144")
	assertDec(t, "Total", got.Total, "2444")
}

func TestComputeEstimateTotals_OnlyAcceptedAlternatesCount(t *testing.T) {
	items, allowances := scenarioEstimate()
	alternates := []Alternate{
		AddAlternate("Proposed", d("300"), AlternateProposed),
		AddAlternate("Rejected", d("700"), AlternateRejected),
		DeductAlternate("Rejected deduct", d("50"), AlternateRejected),
	}

	got := ComputeEstimateTotals(items, allowances, alternates, DiscountPercent, d("10"), d("8"))

	assertDec(t, "AcceptedAlternatesTotal", got.AcceptedAlternatesTotal, "0")
	assertDec(t, "Total", got.Total, "1944")
}

func TestComputeEstimateTotals_OptionalItemsExcluded(t *testing.T) {
	items, allowances := scenarioEstimate()
	items = append(items, LineItem{Description: "Skylight", Quantity: d("1"), UnitPrice: d("2500"), IsOptional: true})

	got := ComputeEstimateTotals(items, allowances, nil, DiscountPercent, d("10"), d("8"))

	assertDec(t, "OptionalSubtotal", got.OptionalSubtotal, "2500")
	assertDec(t, "RequiredSubtotal", got.RequiredSubtotal, "1000")
	assertDec(t, "Total", got.Total, "1944")
}

func TestComputeEstimateTotals_FixedDiscount(t *testing.T) {
	items, allowances := scenarioEstimate()

	got := ComputeEstimateTotals(items, allowances, nil, DiscountFixed, d("250"), d("10"))

	assertDec(t, "Discount", got.Discount, "250")
	assertDec(t, "AfterDiscount", got.AfterDiscount, "1750")
	assertDec(t, "Tax", got.Tax, "175")
	assertDec(t, "Total", got.Total, "1925")
}

func TestComputeEstimateTotals_UnknownDiscountTypeIsFixed(t *testing.T) {
	items, allowances := scenarioEstimate()

	got := ComputeEstimateTotals(items, allowances, nil, DiscountType(""), d("10"), decimal.Zero)

	assertDec(t, "Discount", got.Discount, "10")
	assertDec(t, "Total", got.Total, "1990")
}

func TestComputeEstimateTotals_DiscountNotClamped(t *testing.T) {
	items, allowances := scenarioEstimate()

	got := ComputeEstimateTotals(items, allowances, nil, DiscountFixed, d("2500"), decimal.Zero)

	assertDec(t, "AfterDiscount", got.AfterDiscount, "-500")
	assertDec(t, "Total", got.Total, "-500")
}

func TestComputeEstimateTotals_AllowanceStatusIgnored(t *testing.T) {
	items := []LineItem{{Description: "Framing", Quantity: d("1"), UnitPrice: d("100")}}
	allowances := []Allowance{
		{Name: "A", Amount: d("10"), Status: AllowancePending},
		{Name: "B", Amount: d("20"), Status: AllowanceSelected},
		{Name: "C", Amount: d("30"), Status: AllowanceFinalized},
	}

	got := ComputeEstimateTotals(items, allowances, nil, DiscountPercent, decimal.Zero, decimal.Zero)

	assertDec(t, "AllowancesTotal", got.AllowancesTotal, "60")
	assertDec(t, "Total", got.Total, "160")
}

func TestComputeEstimateTotals_Empty(t *testing.T) {
	got := ComputeEstimateTotals(nil, nil, nil, DiscountPercent, d("10"), d("8"))
	assertDec(t, "Total", got.Total, "0")
}

func TestAlternateConstructors_SignConvention(t *testing.T) {
	add := AddAlternate("add", d("-40"), AlternateAccepted)
	deduct := DeductAlternate("deduct", d("-40"), AlternateAccepted)

	assertDec(t, "add.SignedAmount", add.SignedAmount(), "40")
	assertDec(t, "deduct.SignedAmount", deduct.SignedAmount(), "-40")
	assertDec(t, "deduct.Amount", deduct.Amount, "40")
}

func TestSectionSubtotals(t *testing.T) {
	items := []LineItem{
		{SectionID: "framing", Quantity: d("2"), UnitPrice: d("100")},
		{SectionID: "electrical", Quantity: d("1"), UnitPrice: d("50")},
		{SectionID: "framing", Quantity: d("1"), UnitPrice: d("30"), IsOptional: true},
		{SectionID: "", Quantity: d("3"), UnitPrice: d("10")},
	}

	got := SectionSubtotals(items)
	if len(got) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(got))
	}

	if got[0].SectionID != "framing" || got[1].SectionID != "electrical" || got[2].SectionID != "" {
		t.Errorf("unexpected section order: %q, %q, %q", got[0].SectionID, got[1].SectionID, got[2].SectionID)
	}
	assertDec(t, "framing.Required", got[0].Required, "200")
	assertDec(t, "framing.Optional", got[0].Optional, "30")
	assertDec(t, "electrical.Required", got[1].Required, "50")
	assertDec(t, "unsectioned.Required", got[2].Required, "30")
}
