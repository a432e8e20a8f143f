package services

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"
)

// EstimateInputs is everything ComputeEstimateTotals needs for one estimate.
type EstimateInputs struct {
	Estimate      *core.Record
	LineItems     []LineItem
	Allowances    []Allowance
	Alternates    []Alternate
	DiscountType  DiscountType
	DiscountValue decimal.Decimal
	TaxRate       decimal.Decimal
}

// Totals runs the estimate rollup over the loaded inputs.
func (in *EstimateInputs) Totals() EstimateTotals {
	return ComputeEstimateTotals(in.LineItems, in.Allowances, in.Alternates, in.DiscountType, in.DiscountValue, in.TaxRate)
}

func lineItemFromRecord(r *core.Record) LineItem {
	return LineItem{
		Description: r.GetString("description"),
		Quantity:    Dec(r.GetFloat("quantity")),
		UnitPrice:   Dec(r.GetFloat("unit_price")),
		IsOptional:  r.GetBool("is_optional"),
		SectionID:   r.GetString("section"),
	}
}

func allowanceFromRecord(r *core.Record) Allowance {
	return Allowance{
		Name:   r.GetString("name"),
		Amount: Dec(r.GetFloat("amount")),
		Status: AllowanceStatus(r.GetString("status")),
	}
}

func alternateFromRecord(r *core.Record) Alternate {
	status := AlternateStatus(r.GetString("status"))
	if AlternateKind(r.GetString("kind")) == AlternateDeduct {
		return DeductAlternate(r.GetString("name"), Dec(r.GetFloat("amount")), status)
	}
	return AddAlternate(r.GetString("name"), Dec(r.GetFloat("amount")), status)
}

// SOVLineFromRecord converts an sov_line_items record.
func SOVLineFromRecord(r *core.Record) SOVLineItem {
	return SOVLineItem{
		ID:               r.Id,
		ItemNumber:       r.GetString("item_number"),
		Description:      r.GetString("description"),
		ScheduledValue:   Dec(r.GetFloat("scheduled_value")),
		ApprovedChanges:  Dec(r.GetFloat("approved_changes")),
		PreviousBilled:   Dec(r.GetFloat("previous_billed")),
		CurrentBilled:    Dec(r.GetFloat("current_billed")),
		RetainagePercent: Dec(r.GetFloat("retainage_percent")),
	}
}

// nullDec maps a stored zero to null. Number fields cannot hold null, so
// zero is the absent marker for optional amounts.
func nullDec(f float64) decimal.NullDecimal {
	if f == 0 {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(Dec(f))
}

// scoreOf reads an evaluator score. Records saved before the scored flag
// existed fall back to treating zero as unscored.
func scoreOf(r *core.Record) decimal.NullDecimal {
	if r.GetBool("scored") {
		return decimal.NewNullDecimal(Dec(r.GetFloat("score")))
	}
	return nullDec(r.GetFloat("score"))
}

func bidFromRecord(r *core.Record, subcontractorName string) Bid {
	base := Dec(r.GetFloat("base_bid"))
	alternates := nullDec(r.GetFloat("alternates_total"))

	total := Dec(r.GetFloat("total_bid"))
	if total.IsZero() {
		total = BidTotal(base, alternates)
	}

	return Bid{
		ID:                r.Id,
		SubcontractorID:   r.GetString("subcontractor"),
		SubcontractorName: subcontractorName,
		BaseBid:           base,
		AlternatesTotal:   alternates,
		TotalBid:          total,
		Status:            BidStatus(r.GetString("status")),
		IsCompliant:       r.GetBool("is_compliant"),
		Score:             scoreOf(r),
		Notes:             r.GetString("notes"),
	}
}

func findChildren(app core.App, collection, parentField, parentID string) ([]*core.Record, error) {
	records, err := app.FindRecordsByFilter(
		collection,
		parentField+" = {:parentId}",
		"sort_order",
		0,
		0,
		map[string]any{"parentId": parentID},
	)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", collection, err)
	}
	return records, nil
}

// LoadEstimateInputs reads an estimate and its children from the database.
func LoadEstimateInputs(app core.App, estimateID string) (*EstimateInputs, error) {
	estimate, err := app.FindRecordById("estimates", estimateID)
	if err != nil {
		return nil, fmt.Errorf("estimate not found: %w", err)
	}

	in := &EstimateInputs{
		Estimate:      estimate,
		DiscountType:  DiscountType(estimate.GetString("discount_type")),
		DiscountValue: Dec(estimate.GetFloat("discount_value")),
		TaxRate:       Dec(estimate.GetFloat("tax_rate")),
	}

	items, err := findChildren(app, "estimate_line_items", "estimate", estimateID)
	if err != nil {
		return nil, err
	}
	for _, r := range items {
		in.LineItems = append(in.LineItems, lineItemFromRecord(r))
	}

	allowances, err := findChildren(app, "estimate_allowances", "estimate", estimateID)
	if err != nil {
		return nil, err
	}
	for _, r := range allowances {
		in.Allowances = append(in.Allowances, allowanceFromRecord(r))
	}

	alternates, err := findChildren(app, "estimate_alternates", "estimate", estimateID)
	if err != nil {
		return nil, err
	}
	for _, r := range alternates {
		in.Alternates = append(in.Alternates, alternateFromRecord(r))
	}

	return in, nil
}

// LoadSOVLines reads the lines of a schedule of values in sort order.
func LoadSOVLines(app core.App, sovID string) ([]SOVLineItem, error) {
	records, err := findChildren(app, "sov_line_items", "sov", sovID)
	if err != nil {
		return nil, err
	}
	lines := make([]SOVLineItem, 0, len(records))
	for _, r := range records {
		lines = append(lines, SOVLineFromRecord(r))
	}
	return lines, nil
}

// LoadBids reads every bid of a bid package with its subcontractor name.
func LoadBids(app core.App, packageID string) ([]Bid, error) {
	records, err := app.FindRecordsByFilter(
		"bids",
		"bid_package = {:packageId}",
		"created",
		0,
		0,
		map[string]any{"packageId": packageID},
	)
	if err != nil {
		return nil, fmt.Errorf("load bids: %w", err)
	}

	names := make(map[string]string)
	bids := make([]Bid, 0, len(records))
	for _, r := range records {
		subID := r.GetString("subcontractor")
		name, ok := names[subID]
		if !ok && subID != "" {
			if sub, err := app.FindRecordById("subcontractors", subID); err == nil {
				name = sub.GetString("name")
			} else {
				log.Printf("records: could not find subcontractor %s: %v", subID, err)
			}
			names[subID] = name
		}
		bids = append(bids, bidFromRecord(r, name))
	}
	return bids, nil
}

// BudgetOf returns a bid package's budget estimate, null when unset.
func BudgetOf(pkg *core.Record) decimal.NullDecimal {
	return nullDec(pkg.GetFloat("budget_estimate"))
}

// storeMoney rounds a derived amount to cents for a cached record field.
func storeMoney(d decimal.Decimal) float64 {
	return Round2(d).InexactFloat64()
}
