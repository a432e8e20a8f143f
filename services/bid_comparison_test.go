package services

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func threeBids() []Bid {
	return []Bid{
		{ID: "a", SubcontractorName: "Acme Drywall", TotalBid: d("100000"), Status: BidSubmitted},
		{ID: "b", SubcontractorName: "Best Walls", TotalBid: d("95000"), Status: BidSubmitted},
		{ID: "c", SubcontractorName: "Coastal Interiors", TotalBid: d("110000"), Status: BidUnderReview},
	}
}

func TestCompareBids_RankingAndStats(t *testing.T) {
	got := CompareBids(threeBids(), decimal.NullDecimal{}, DefaultPolicy())

	if got.Count != 3 {
		t.Fatalf("Count = %d, want 3", got.Count)
	}
	assertDec(t, "Low", got.Low, "95000")
	assertDec(t, "High", got.High, "110000")
	assertDec(t, "Spread", got.Spread, "15000")
	if avg := got.Average.InexactFloat64(); math.Abs(avg-101666.67) > 0.01 {
		t.Errorf("Average = %v, want 101666.67 ±0.01", avg)
	}
	if !got.HasSpread {
		t.Error("HasSpread should be true for three bids")
	}

	wantOrder := []string{"b", "a", "c"}
	for i, id := range wantOrder {
		row := got.Rows[i]
		if row.Bid.ID != id {
			t.Errorf("rank %d = %s, want %s", i+1, row.Bid.ID, id)
		}
		if row.Rank != i+1 {
			t.Errorf("row %d Rank = %d, want %d", i, row.Rank, i+1)
		}
		if row.IsLow != (i == 0) {
			t.Errorf("row %d IsLow = %v", i, row.IsLow)
		}
		if row.VariancePercent.Valid {
			t.Errorf("row %d variance should be null without a budget", i)
		}
		if row.Band != BandNone {
			t.Errorf("row %d Band = %s, want none", i, row.Band)
		}
	}
}

func TestCompareBids_DoesNotSelect(t *testing.T) {
	bids := threeBids()
	got := CompareBids(bids, decimal.NullDecimal{}, DefaultPolicy())
	for _, r := range got.Rows {
		if r.Bid.Status == BidSelected {
			t.Errorf("bid %s was selected by comparison", r.Bid.ID)
		}
	}
	if bids[0].ID != "a" {
		t.Error("input slice was reordered")
	}
}

func TestCompareBids_StableForTies(t *testing.T) {
	bids := []Bid{
		{ID: "first", TotalBid: d("500")},
		{ID: "second", TotalBid: d("500")},
		{ID: "third", TotalBid: d("400")},
	}
	got := CompareBids(bids, decimal.NullDecimal{}, DefaultPolicy())
	if got.Rows[0].Bid.ID != "third" || got.Rows[1].Bid.ID != "first" || got.Rows[2].Bid.ID != "second" {
		t.Errorf("unexpected order: %s, %s, %s", got.Rows[0].Bid.ID, got.Rows[1].Bid.ID, got.Rows[2].Bid.ID)
	}
}

func TestCompareBids_VarianceBands(t *testing.T) {
	budget := decimal.NewNullDecimal(d("100000"))
	bids := []Bid{
		{ID: "under", TotalBid: d("95000")},
		{ID: "even", TotalBid: d("100000")},
		{ID: "caution", TotalBid: d("110000")},
		{ID: "over", TotalBid: d("110001")},
	}

	got := CompareBids(bids, budget, DefaultPolicy())

	want := map[string]struct {
		variance string
		band     VarianceBand
	}{
		"under":   {"-5", BandFavorable},
		"even":    {"0", BandFavorable},
		"caution": {"10", BandCaution},
		"over":    {"10.001", BandUnfavorable},
	}
	for _, r := range got.Rows {
		w := want[r.Bid.ID]
		if !r.VariancePercent.Valid {
			t.Fatalf("%s: variance should be present", r.Bid.ID)
		}
		assertDec(t, r.Bid.ID+".VariancePercent", r.VariancePercent.Decimal, w.variance)
		if r.Band != w.band {
			t.Errorf("%s: Band = %s, want %s", r.Bid.ID, r.Band, w.band)
		}
	}
}

func TestCompareBids_ZeroBudgetIsNull(t *testing.T) {
	got := CompareBids(threeBids(), decimal.NewNullDecimal(decimal.Zero), DefaultPolicy())
	for _, r := range got.Rows {
		if r.VariancePercent.Valid {
			t.Errorf("%s: variance should be null for a zero budget", r.Bid.ID)
		}
	}
}

func TestCompareBids_CustomCautionThreshold(t *testing.T) {
	policy := DefaultPolicy()
	policy.Variance.CautionPercent = 5

	got := CompareBids([]Bid{{ID: "x", TotalBid: d("107000")}}, decimal.NewNullDecimal(d("100000")), policy)
	if got.Rows[0].Band != BandUnfavorable {
		t.Errorf("Band = %s, want unfavorable with a 5%% threshold", got.Rows[0].Band)
	}
}

func TestCompareBids_EmptyAndSingle(t *testing.T) {
	empty := CompareBids(nil, decimal.NullDecimal{}, DefaultPolicy())
	if empty.Count != 0 || empty.HasSpread || !empty.Low.IsZero() || !empty.Average.IsZero() {
		t.Errorf("empty comparison should be zero, got %+v", empty)
	}

	single := CompareBids([]Bid{{ID: "only", TotalBid: d("42000")}}, decimal.NullDecimal{}, DefaultPolicy())
	if single.HasSpread {
		t.Error("HasSpread should be false for one bid")
	}
	assertDec(t, "Low", single.Low, "42000")
	assertDec(t, "High", single.High, "42000")
	assertDec(t, "Spread", single.Spread, "0")
}

func TestBidTotal(t *testing.T) {
	assertDec(t, "no alternates", BidTotal(d("1000"), decimal.NullDecimal{}), "1000")
	assertDec(t, "with alternates", BidTotal(d("1000"), decimal.NewNullDecimal(d("250"))), "1250")
	assertDec(t, "deduct alternates", BidTotal(d("1000"), decimal.NewNullDecimal(d("-250"))), "750")
}

func TestClassifyVariance(t *testing.T) {
	caution := d("10")
	tests := []struct {
		v    string
		band VarianceBand
	}{
		{"-12", BandFavorable},
		{"0", BandFavorable},
		{"0.01", BandCaution},
		{"10", BandCaution},
		{"10.5", BandUnfavorable},
	}
	for _, tt := range tests {
		if got := ClassifyVariance(d(tt.v), caution); got != tt.band {
			t.Errorf("ClassifyVariance(%s) = %s, want %s", tt.v, got, tt.band)
		}
	}
}
