package handlers

import "buildledger/services"

// Money in JSON responses is a fixed two-decimal string so clients never
// see binary floating point.

type estimateTotalsPayload struct {
	EstimateID              string `json:"estimate_id"`
	RequiredSubtotal        string `json:"required_subtotal"`
	OptionalSubtotal        string `json:"optional_subtotal"`
	AllowancesTotal         string `json:"allowances_total"`
	Subtotal                string `json:"subtotal"`
	Discount                string `json:"discount"`
	AfterDiscount           string `json:"after_discount"`
	Tax                     string `json:"tax"`
	AcceptedAlternatesTotal string `json:"accepted_alternates_total"`
	Total                   string `json:"total"`
}

func newEstimateTotalsPayload(estimateID string, t services.EstimateTotals) estimateTotalsPayload {
	return estimateTotalsPayload{
		EstimateID:              estimateID,
		RequiredSubtotal:        services.Money(t.RequiredSubtotal),
		OptionalSubtotal:        services.Money(t.OptionalSubtotal),
		AllowancesTotal:         services.Money(t.AllowancesTotal),
		Subtotal:                services.Money(t.Subtotal),
		Discount:                services.Money(t.Discount),
		AfterDiscount:           services.Money(t.AfterDiscount),
		Tax:                     services.Money(t.Tax),
		AcceptedAlternatesTotal: services.Money(t.AcceptedAlternatesTotal),
		Total:                   services.Money(t.Total),
	}
}

type sovLinePayload struct {
	ID               string `json:"id"`
	ItemNumber       string `json:"item_number"`
	Description      string `json:"description"`
	ScheduledValue   string `json:"scheduled_value"`
	ApprovedChanges  string `json:"approved_changes"`
	RevisedValue     string `json:"revised_value"`
	PreviousBilled   string `json:"previous_billed"`
	CurrentBilled    string `json:"current_billed"`
	TotalBilled      string `json:"total_billed"`
	PercentComplete  string `json:"percent_complete"`
	BalanceToFinish  string `json:"balance_to_finish"`
	RetainagePercent string `json:"retainage_percent"`
	RetainageHeld    string `json:"retainage_held"`
}

type sovPayload struct {
	ID                string           `json:"id"`
	Title             string           `json:"title"`
	Status            string           `json:"status"`
	Version           int              `json:"version"`
	ApplicationNumber int              `json:"application_number"`
	CanEditStructure  bool             `json:"can_edit_structure"`
	CanEditBilling    bool             `json:"can_edit_billing"`
	Lines             []sovLinePayload `json:"lines"`
	TotalScheduled    string           `json:"total_scheduled"`
	TotalRevised      string           `json:"total_revised"`
	TotalBilled       string           `json:"total_billed"`
	TotalBalance      string           `json:"total_balance"`
	TotalRetainage    string           `json:"total_retainage"`
	OverallPercent    string           `json:"overall_percent"`
	CurrentPaymentDue string           `json:"current_payment_due"`
}

func newSOVPayload(id string, d *services.SOVExportData) sovPayload {
	rules := services.EditRulesFor(d.Status)
	p := sovPayload{
		ID:                id,
		Title:             d.Title,
		Status:            string(d.Status),
		Version:           d.Version,
		ApplicationNumber: d.ApplicationNumber,
		CanEditStructure:  rules.Structure,
		CanEditBilling:    rules.Billing,
		Lines:             make([]sovLinePayload, 0, len(d.Rows)),
		TotalScheduled:    services.Money(d.Totals.TotalScheduled),
		TotalRevised:      services.Money(d.Totals.TotalRevised),
		TotalBilled:       services.Money(d.Totals.TotalBilled),
		TotalBalance:      services.Money(d.Totals.TotalBalance),
		TotalRetainage:    services.Money(d.Totals.TotalRetainage),
		OverallPercent:    services.Money(d.Totals.OverallPercent),
		CurrentPaymentDue: services.Money(d.PayApplication.CurrentPaymentDue),
	}
	for _, r := range d.Rows {
		p.Lines = append(p.Lines, sovLinePayload{
			ID:               r.Line.ID,
			ItemNumber:       r.ItemNumber,
			Description:      r.Description,
			ScheduledValue:   services.Money(r.Line.ScheduledValue),
			ApprovedChanges:  services.Money(r.Line.ApprovedChanges),
			RevisedValue:     services.Money(r.Derived.RevisedValue),
			PreviousBilled:   services.Money(r.Line.PreviousBilled),
			CurrentBilled:    services.Money(r.Line.CurrentBilled),
			TotalBilled:      services.Money(r.Derived.TotalBilled),
			PercentComplete:  services.Money(r.Derived.PercentComplete),
			BalanceToFinish:  services.Money(r.Derived.BalanceToFinish),
			RetainagePercent: services.Money(r.Line.RetainagePercent),
			RetainageHeld:    services.Money(r.Derived.RetainageHeld),
		})
	}
	return p
}

type bidRowPayload struct {
	BidID             string  `json:"bid_id"`
	SubcontractorName string  `json:"subcontractor_name"`
	Rank              int     `json:"rank"`
	IsLow             bool    `json:"is_low"`
	BaseBid           string  `json:"base_bid"`
	AlternatesTotal   *string `json:"alternates_total"`
	TotalBid          string  `json:"total_bid"`
	VariancePercent   *string `json:"variance_percent"`
	Band              string  `json:"band"`
	Status            string  `json:"status"`
	IsCompliant       bool    `json:"is_compliant"`
	Score             *string `json:"score"`
	Notes             string  `json:"notes"`
}

type comparisonPayload struct {
	PackageID      string          `json:"package_id"`
	PackageNumber  string          `json:"package_number"`
	Trade          string          `json:"trade"`
	BudgetEstimate *string         `json:"budget_estimate"`
	Count          int             `json:"count"`
	Low            string          `json:"low"`
	High           string          `json:"high"`
	Average        *string         `json:"average"`
	Spread         *string         `json:"spread"`
	Rows           []bidRowPayload `json:"rows"`
}

func moneyPtr(s string) *string { return &s }

func newComparisonPayload(packageID string, d *services.BidExportData) comparisonPayload {
	c := d.Comparison
	p := comparisonPayload{
		PackageID:     packageID,
		PackageNumber: d.PackageNumber,
		Trade:         d.Trade,
		Count:         c.Count,
		Low:           services.Money(c.Low),
		High:          services.Money(c.High),
		Rows:          make([]bidRowPayload, 0, len(c.Rows)),
	}
	if d.BudgetEstimate.Valid {
		p.BudgetEstimate = moneyPtr(services.Money(d.BudgetEstimate.Decimal))
	}
	if c.HasSpread {
		p.Average = moneyPtr(services.Money(c.Average))
		p.Spread = moneyPtr(services.Money(c.Spread))
	}
	for _, r := range c.Rows {
		row := bidRowPayload{
			BidID:             r.Bid.ID,
			SubcontractorName: r.Bid.SubcontractorName,
			Rank:              r.Rank,
			IsLow:             r.IsLow,
			BaseBid:           services.Money(r.Bid.BaseBid),
			TotalBid:          services.Money(r.Bid.TotalBid),
			Band:              string(r.Band),
			Status:            string(r.Bid.Status),
			IsCompliant:       r.Bid.IsCompliant,
			Notes:             r.Bid.Notes,
		}
		if r.VariancePercent.Valid {
			row.VariancePercent = moneyPtr(services.Money(r.VariancePercent.Decimal))
		}
		if r.Bid.AlternatesTotal.Valid {
			row.AlternatesTotal = moneyPtr(services.Money(r.Bid.AlternatesTotal.Decimal))
		}
		if r.Bid.Score.Valid {
			row.Score = moneyPtr(services.Money(r.Bid.Score.Decimal))
		}
		p.Rows = append(p.Rows, row)
	}
	return p
}
