package services

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrBidNotFound    = errors.New("bid not found in package")
	ErrAlreadyAwarded = errors.New("another bid in this package is already selected")
	ErrBidRejected    = errors.New("a rejected bid cannot be awarded")
	ErrBidNotSelected = errors.New("bid is not the selected bid")
)

// AwardBid marks bidID as selected. At most one bid per package may hold
// the selected status, so the award is refused while another bid holds it.
// Awarding the bid that is already selected is a no-op.
func AwardBid(bids []Bid, bidID string) ([]Bid, error) {
	idx := slices.IndexFunc(bids, func(b Bid) bool { return b.ID == bidID })
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrBidNotFound, bidID)
	}

	for i, b := range bids {
		if i != idx && b.Status == BidSelected {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyAwarded, b.ID)
		}
	}
	if bids[idx].Status == BidRejected {
		return nil, fmt.Errorf("%w: %s", ErrBidRejected, bidID)
	}

	out := slices.Clone(bids)
	out[idx].Status = BidSelected
	return out, nil
}

// WithdrawAward returns the selected bid to under review so a different bid
// can be awarded.
func WithdrawAward(bids []Bid, bidID string) ([]Bid, error) {
	idx := slices.IndexFunc(bids, func(b Bid) bool { return b.ID == bidID })
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrBidNotFound, bidID)
	}
	if bids[idx].Status != BidSelected {
		return nil, fmt.Errorf("%w: %s", ErrBidNotSelected, bidID)
	}

	out := slices.Clone(bids)
	out[idx].Status = BidUnderReview
	return out, nil
}

// SelectedBid returns the selected bid of a package, if any.
func SelectedBid(bids []Bid) (Bid, bool) {
	for _, b := range bids {
		if b.Status == BidSelected {
			return b, true
		}
	}
	return Bid{}, false
}
