package services

import "github.com/shopspring/decimal"

// DiscountType selects how an estimate discount value is interpreted.
type DiscountType string

const (
	DiscountPercent DiscountType = "percent"
	DiscountFixed   DiscountType = "fixed"
)

// AllowanceStatus is workflow information only; it never gates totals.
type AllowanceStatus string

const (
	AllowancePending   AllowanceStatus = "pending"
	AllowanceSelected  AllowanceStatus = "selected"
	AllowanceFinalized AllowanceStatus = "finalized"
)

// AlternateKind is the sign of an alternate's contribution.
type AlternateKind string

const (
	AlternateAdd    AlternateKind = "add"
	AlternateDeduct AlternateKind = "deduct"
)

// AlternateStatus is the client decision on an alternate.
type AlternateStatus string

const (
	AlternateProposed AlternateStatus = "proposed"
	AlternateAccepted AlternateStatus = "accepted"
	AlternateRejected AlternateStatus = "rejected"
)

// LineItem is a priced estimate row.
type LineItem struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	IsOptional  bool
	SectionID   string
}

// Extended returns quantity * unit price.
func (li LineItem) Extended() decimal.Decimal {
	return li.Quantity.Mul(li.UnitPrice)
}

// Allowance is a placeholder budget for a selection not yet finalized.
type Allowance struct {
	Name   string
	Amount decimal.Decimal
	Status AllowanceStatus
}

// Alternate is an add or deduct to the base scope. Amount is always
// unsigned; Kind carries the sign.
type Alternate struct {
	Name   string
	Kind   AlternateKind
	Amount decimal.Decimal
	Status AlternateStatus
}

// AddAlternate builds an alternate that increases the contract when accepted.
func AddAlternate(name string, amount decimal.Decimal, status AlternateStatus) Alternate {
	return Alternate{Name: name, Kind: AlternateAdd, Amount: amount.Abs(), Status: status}
}

// DeductAlternate builds an alternate that decreases the contract when accepted.
func DeductAlternate(name string, amount decimal.Decimal, status AlternateStatus) Alternate {
	return Alternate{Name: name, Kind: AlternateDeduct, Amount: amount.Abs(), Status: status}
}

// SignedAmount returns +amount for add alternates and -amount for deducts.
func (a Alternate) SignedAmount() decimal.Decimal {
	if a.Kind == AlternateDeduct {
		return a.Amount.Neg()
	}
	return a.Amount
}

// EstimateTotals is the full pricing breakdown of an estimate.
type EstimateTotals struct {
	RequiredSubtotal        decimal.Decimal
	OptionalSubtotal        decimal.Decimal
	AllowancesTotal         decimal.Decimal
	Subtotal                decimal.Decimal
	Discount                decimal.Decimal
	AfterDiscount           decimal.Decimal
	Tax                     decimal.Decimal
	AcceptedAlternatesTotal decimal.Decimal
	Total                   decimal.Decimal
}

// ComputeEstimateTotals rolls an estimate up into its contract total.
//
// The order is fixed: discount applies to required items plus allowances,
// tax applies after discount, and accepted alternates are added last,
// untaxed and undiscounted. Optional items are reported but never counted.
// Nothing is clamped; a discount larger than the subtotal yields a negative
// result for the caller to flag.
func ComputeEstimateTotals(
	lineItems []LineItem,
	allowances []Allowance,
	alternates []Alternate,
	discountType DiscountType,
	discountValue decimal.Decimal,
	taxRate decimal.Decimal,
) EstimateTotals {
	var t EstimateTotals

	for _, li := range lineItems {
		if li.IsOptional {
			t.OptionalSubtotal = t.OptionalSubtotal.Add(li.Extended())
		} else {
			t.RequiredSubtotal = t.RequiredSubtotal.Add(li.Extended())
		}
	}

	for _, a := range allowances {
		t.AllowancesTotal = t.AllowancesTotal.Add(a.Amount)
	}

	t.Subtotal = t.RequiredSubtotal.Add(t.AllowancesTotal)

	if discountType == DiscountPercent {
		t.Discount = ApplyPercent(t.Subtotal, discountValue)
	} else {
		t.Discount = discountValue
	}

	t.AfterDiscount = t.Subtotal.Sub(t.Discount)
	t.Tax = ApplyPercent(t.AfterDiscount, taxRate)

	for _, alt := range alternates {
		if alt.Status == AlternateAccepted {
			t.AcceptedAlternatesTotal = t.AcceptedAlternatesTotal.Add(alt.SignedAmount())
		}
	}

	t.Total = t.AfterDiscount.Add(t.Tax).Add(t.AcceptedAlternatesTotal)
	return t
}

// SectionSubtotal is the extended total of one estimate section.
type SectionSubtotal struct {
	SectionID string
	Required  decimal.Decimal
	Optional  decimal.Decimal
}

// SectionSubtotals groups line items by section in first-seen order.
// Items without a section are grouped under the empty id.
func SectionSubtotals(lineItems []LineItem) []SectionSubtotal {
	index := make(map[string]int)
	var out []SectionSubtotal

	for _, li := range lineItems {
		i, ok := index[li.SectionID]
		if !ok {
			i = len(out)
			index[li.SectionID] = i
			out = append(out, SectionSubtotal{SectionID: li.SectionID})
		}
		if li.IsOptional {
			out[i].Optional = out[i].Optional.Add(li.Extended())
		} else {
			out[i].Required = out[i].Required.Add(li.Extended())
		}
	}
	return out
}
