// Package templates renders the HTMX fragments served by the handlers.
package templates

import (
	"fmt"

	"buildledger/services"
)

// EstimateTotalsData is the view model for the estimate totals card.
type EstimateTotalsData struct {
	EstimateID string
	Title      string
	Totals     services.EstimateTotals
	Sections   []services.SectionSubtotal
}

// SOVViewData is the view model for a schedule of values.
type SOVViewData struct {
	SOVID string
	Data  services.SOVExportData
	Rules services.EditRules
}

type totalsRow struct {
	Label string
	Value string
	Class string
}

func estimateRows(t services.EstimateTotals) []totalsRow {
	return []totalsRow{
		{"Required items", services.FormatUSD(t.RequiredSubtotal), ""},
		{"Allowances", services.FormatUSD(t.AllowancesTotal), ""},
		{"Subtotal", services.FormatUSD(t.Subtotal), "subtotal"},
		{"Discount", "-" + services.FormatUSD(t.Discount), ""},
		{"After discount", services.FormatUSD(t.AfterDiscount), ""},
		{"Tax", services.FormatUSD(t.Tax), ""},
		{"Accepted alternates", services.FormatUSD(t.AcceptedAlternatesTotal), ""},
		{"Total", services.FormatUSD(services.Round2(t.Total)), "grand-total"},
	}
}

func sectionName(id string) string {
	if id == "" {
		return "Unsectioned"
	}
	return id
}

var sovHeaders = []string{"Item", "Description", "Scheduled", "Changes", "Revised", "Previous", "This Period", "Billed to Date", "%", "Balance", "Retainage"}

func sovStatusLine(d services.SOVExportData) string {
	return fmt.Sprintf("Status: %s · Application #%d", d.Status, d.ApplicationNumber)
}

func bidRowClass(r services.BidComparisonRow) string {
	class := "band-" + string(r.Band)
	if r.IsLow {
		class += " low"
	}
	return class
}

func varianceText(r services.BidComparisonRow) string {
	if !r.VariancePercent.Valid {
		return "n/a"
	}
	return services.FormatPercent(r.VariancePercent.Decimal)
}

func scoreText(b services.Bid) string {
	if !b.Score.Valid {
		return "n/a"
	}
	return b.Score.Decimal.String()
}

func budgetText(d services.BidExportData) string {
	if !d.BudgetEstimate.Valid {
		return "Budget: not set"
	}
	return "Budget: " + services.FormatUSD(d.BudgetEstimate.Decimal)
}

func bidActionURL(packageID, bidID, action string) string {
	return "/bid-packages/" + packageID + "/bids/" + bidID + "/" + action
}

func issueText(e services.ValidationError) string {
	return fmt.Sprintf("Row %d, %s: %s", e.Row, e.Field, e.Message)
}
