package services

import (
	"slices"

	"github.com/shopspring/decimal"
)

// BidStatus is the evaluation state of a subcontractor bid.
type BidStatus string

const (
	BidSubmitted   BidStatus = "submitted"
	BidUnderReview BidStatus = "under_review"
	BidSelected    BidStatus = "selected"
	BidRejected    BidStatus = "rejected"
)

// VarianceBand classifies a bid's variance to budget for display.
type VarianceBand string

const (
	BandNone        VarianceBand = "none"
	BandFavorable   VarianceBand = "favorable"
	BandCaution     VarianceBand = "caution"
	BandUnfavorable VarianceBand = "unfavorable"
)

// Bid is a subcontractor's priced response to a bid package. Score and
// Notes come from the evaluator and are carried through untouched.
type Bid struct {
	ID                string
	SubcontractorID   string
	SubcontractorName string
	BaseBid           decimal.Decimal
	AlternatesTotal   decimal.NullDecimal
	TotalBid          decimal.Decimal
	Status            BidStatus
	IsCompliant       bool
	Score             decimal.NullDecimal
	Notes             string
}

// BidTotal returns base plus alternates when alternates are present.
func BidTotal(base decimal.Decimal, alternates decimal.NullDecimal) decimal.Decimal {
	if alternates.Valid {
		return base.Add(alternates.Decimal)
	}
	return base
}

// BidComparisonRow is one ranked bid.
type BidComparisonRow struct {
	Bid             Bid
	Rank            int
	IsLow           bool
	VariancePercent decimal.NullDecimal
	Band            VarianceBand
}

// Comparison is the ranked view of a bid package.
type Comparison struct {
	Rows      []BidComparisonRow
	Count     int
	Low       decimal.Decimal
	High      decimal.Decimal
	Average   decimal.Decimal
	Spread    decimal.Decimal
	HasSpread bool // spread and average are only meaningful with two or more bids
}

// CompareBids ranks bids ascending by total and computes statistics and
// variance against the budget estimate. A missing or zero budget yields a
// null variance. Ranking is informational; it never selects an award.
func CompareBids(bids []Bid, budgetEstimate decimal.NullDecimal, policy Policy) Comparison {
	sorted := slices.Clone(bids)
	slices.SortStableFunc(sorted, func(a, b Bid) int {
		return a.TotalBid.Cmp(b.TotalBid)
	})

	hasBudget := budgetEstimate.Valid && !budgetEstimate.Decimal.IsZero()
	caution := policy.CautionThreshold()

	c := Comparison{
		Rows:      make([]BidComparisonRow, 0, len(sorted)),
		Count:     len(sorted),
		HasSpread: len(sorted) >= 2,
	}

	sum := decimal.Zero
	for i, b := range sorted {
		row := BidComparisonRow{
			Bid:   b,
			Rank:  i + 1,
			IsLow: i == 0,
			Band:  BandNone,
		}
		if hasBudget {
			v := PercentOf(b.TotalBid.Sub(budgetEstimate.Decimal), budgetEstimate.Decimal)
			row.VariancePercent = decimal.NewNullDecimal(v)
			row.Band = ClassifyVariance(v, caution)
		}
		c.Rows = append(c.Rows, row)
		sum = sum.Add(b.TotalBid)
	}

	if len(sorted) > 0 {
		c.Low = sorted[0].TotalBid
		c.High = sorted[len(sorted)-1].TotalBid
		c.Average = sum.Div(decimal.NewFromInt(int64(len(sorted))))
		c.Spread = c.High.Sub(c.Low)
	}
	return c
}

// ClassifyVariance maps a variance percentage onto a display band.
func ClassifyVariance(variance, caution decimal.Decimal) VarianceBand {
	switch {
	case variance.LessThanOrEqual(decimal.Zero):
		return BandFavorable
	case variance.LessThanOrEqual(caution):
		return BandCaution
	default:
		return BandUnfavorable
	}
}
