package services

import "github.com/shopspring/decimal"

// SOVExportRow is one schedule of values line with its derived figures.
type SOVExportRow struct {
	ItemNumber  string
	Description string
	Line        SOVLineItem
	Derived     SOVDerived
}

// SOVExportData holds everything needed to export a schedule of values or
// its pay application.
type SOVExportData struct {
	ProjectName       string
	Title             string
	Version           int
	Status            SOVStatus
	ApplicationNumber int
	PeriodTo          string
	CreatedDate       string
	Rows              []SOVExportRow
	Totals            SOVTotals
	PayApplication    PayApplication
}

// NewSOVExportData derives every row and the aggregates from raw lines.
func NewSOVExportData(items []SOVLineItem) SOVExportData {
	data := SOVExportData{
		Rows:           make([]SOVExportRow, 0, len(items)),
		Totals:         AggregateSOV(items),
		PayApplication: ComputePayApplication(items),
	}
	for _, item := range items {
		data.Rows = append(data.Rows, SOVExportRow{
			ItemNumber:  item.ItemNumber,
			Description: item.Description,
			Line:        item,
			Derived:     ComputeSOVLineItem(item),
		})
	}
	return data
}

// BidExportData holds a bid package comparison for export.
type BidExportData struct {
	PackageNumber  string
	Trade          string
	BudgetEstimate decimal.NullDecimal
	Comparison     Comparison
	GeneratedDate  string
}
