package services

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// SOVStatus is the lifecycle state of a schedule of values.
type SOVStatus string

const (
	SOVDraft    SOVStatus = "draft"
	SOVPending  SOVStatus = "pending"
	SOVApproved SOVStatus = "approved"
	SOVRevised  SOVStatus = "revised"
)

var (
	ErrInvalidTransition     = errors.New("invalid schedule of values status transition")
	ErrSOVLocked             = errors.New("schedule of values is locked for editing")
	ErrScheduledValuesFrozen = errors.New("scheduled values are frozen once approved")
)

// sovTransitions lists the only forward moves. There is no reject path;
// a pending SOV that needs changes is revised after approval.
var sovTransitions = map[SOVStatus]SOVStatus{
	SOVDraft:    SOVPending,
	SOVPending:  SOVApproved,
	SOVApproved: SOVRevised,
}

// CanTransition reports whether an SOV may move from one status to another.
func CanTransition(from, to SOVStatus) bool {
	next, ok := sovTransitions[from]
	return ok && next == to
}

// Transition validates a status change and returns the new status.
func Transition(from, to SOVStatus) (SOVStatus, error) {
	if !CanTransition(from, to) {
		return from, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return to, nil
}

// EditRules describes which SOV line item fields may change in a status.
type EditRules struct {
	Structure bool // add/remove lines, scheduled value, approved changes, description, retainage
	Billing   bool // previous and current billed
}

// EditRulesFor returns the edit rules for an SOV status.
func EditRulesFor(status SOVStatus) EditRules {
	switch status {
	case SOVDraft:
		return EditRules{Structure: true, Billing: true}
	case SOVApproved:
		return EditRules{Billing: true}
	default:
		return EditRules{}
	}
}

// SOVLineItem is one scope line of a schedule of values.
type SOVLineItem struct {
	ID               string
	ItemNumber       string
	Description      string
	ScheduledValue   decimal.Decimal
	ApprovedChanges  decimal.Decimal // signed
	PreviousBilled   decimal.Decimal
	CurrentBilled    decimal.Decimal
	RetainagePercent decimal.Decimal
}

// SOVDerived holds the computed figures for one SOV line.
type SOVDerived struct {
	RevisedValue    decimal.Decimal
	TotalBilled     decimal.Decimal
	PercentComplete decimal.Decimal
	BalanceToFinish decimal.Decimal
	RetainageHeld   decimal.Decimal
}

// ComputeSOVLineItem derives revised value, billed-to-date, percent complete,
// balance to finish and retainage held for a single line.
func ComputeSOVLineItem(item SOVLineItem) SOVDerived {
	revised := item.ScheduledValue.Add(item.ApprovedChanges)
	billed := item.PreviousBilled.Add(item.CurrentBilled)

	return SOVDerived{
		RevisedValue:    revised,
		TotalBilled:     billed,
		PercentComplete: PercentOf(billed, revised),
		BalanceToFinish: revised.Sub(billed),
		RetainageHeld:   ApplyPercent(billed, item.RetainagePercent),
	}
}

// SOVTotals aggregates derived figures across all lines.
type SOVTotals struct {
	TotalScheduled decimal.Decimal
	TotalRevised   decimal.Decimal
	TotalBilled    decimal.Decimal
	TotalBalance   decimal.Decimal
	TotalRetainage decimal.Decimal
	OverallPercent decimal.Decimal
}

// AggregateSOV sums per-line derived values. Each line is derived first so
// retainage is computed at its own rate before summation.
func AggregateSOV(items []SOVLineItem) SOVTotals {
	var t SOVTotals
	for _, item := range items {
		d := ComputeSOVLineItem(item)
		t.TotalScheduled = t.TotalScheduled.Add(item.ScheduledValue)
		t.TotalRevised = t.TotalRevised.Add(d.RevisedValue)
		t.TotalBilled = t.TotalBilled.Add(d.TotalBilled)
		t.TotalBalance = t.TotalBalance.Add(d.BalanceToFinish)
		t.TotalRetainage = t.TotalRetainage.Add(d.RetainageHeld)
	}
	t.OverallPercent = PercentOf(t.TotalBilled, t.TotalRevised)
	return t
}

// SeedSOVFromEstimate drafts SOV lines from an accepted estimate: one line
// per required line item followed by one per allowance. Optional items are
// not part of the contract and are skipped.
func SeedSOVFromEstimate(lineItems []LineItem, allowances []Allowance, retainagePercent decimal.Decimal) []SOVLineItem {
	var out []SOVLineItem
	n := 0
	next := func() string {
		n++
		return fmt.Sprintf("%d", n)
	}

	for _, li := range lineItems {
		if li.IsOptional {
			continue
		}
		out = append(out, SOVLineItem{
			ItemNumber:       next(),
			Description:      li.Description,
			ScheduledValue:   li.Extended(),
			RetainagePercent: retainagePercent,
		})
	}
	for _, a := range allowances {
		out = append(out, SOVLineItem{
			ItemNumber:       next(),
			Description:      "Allowance: " + a.Name,
			ScheduledValue:   a.Amount,
			RetainagePercent: retainagePercent,
		})
	}
	return out
}

// ClosePeriod rolls each line's current billing into previous billing and
// clears the current column for the next pay application.
func ClosePeriod(items []SOVLineItem) []SOVLineItem {
	out := make([]SOVLineItem, len(items))
	for i, item := range items {
		item.PreviousBilled = item.PreviousBilled.Add(item.CurrentBilled)
		item.CurrentBilled = decimal.Zero
		out[i] = item
	}
	return out
}

// PayApplication is the G702-style summary of a billing period.
type PayApplication struct {
	OriginalContractSum     decimal.Decimal
	NetChangeOrders         decimal.Decimal
	ContractSumToDate       decimal.Decimal
	TotalCompletedToDate    decimal.Decimal
	RetainageToDate         decimal.Decimal
	TotalEarnedLessRetained decimal.Decimal
	PreviousCertificates    decimal.Decimal
	CurrentPaymentDue       decimal.Decimal
	BalanceToFinish         decimal.Decimal // includes retainage
	PercentComplete         decimal.Decimal
}

// ComputePayApplication summarizes the SOV into the figures of a payment
// application. Previous certificates are the previously billed amounts less
// the retainage held on them at each line's rate.
func ComputePayApplication(items []SOVLineItem) PayApplication {
	totals := AggregateSOV(items)

	previousCertified := decimal.Zero
	for _, item := range items {
		held := ApplyPercent(item.PreviousBilled, item.RetainagePercent)
		previousCertified = previousCertified.Add(item.PreviousBilled.Sub(held))
	}

	earned := totals.TotalBilled.Sub(totals.TotalRetainage)

	return PayApplication{
		OriginalContractSum:     totals.TotalScheduled,
		NetChangeOrders:         totals.TotalRevised.Sub(totals.TotalScheduled),
		ContractSumToDate:       totals.TotalRevised,
		TotalCompletedToDate:    totals.TotalBilled,
		RetainageToDate:         totals.TotalRetainage,
		TotalEarnedLessRetained: earned,
		PreviousCertificates:    previousCertified,
		CurrentPaymentDue:       earned.Sub(previousCertified),
		BalanceToFinish:         totals.TotalRevised.Sub(earned),
		PercentComplete:         totals.OverallPercent,
	}
}
