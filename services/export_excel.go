package services

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// sheetStyles are the shared cell styles of the spreadsheet exports.
type sheetStyles struct {
	title, subtitle, header, body, money, percent, summaryLabel, summaryMoney int
}

func newSheetStyles(f *excelize.File) (sheetStyles, error) {
	var s sheetStyles
	var err error

	if s.title, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 16},
	}); err != nil {
		return s, fmt.Errorf("create title style: %w", err)
	}

	if s.subtitle, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Size: 11},
	}); err != nil {
		return s, fmt.Errorf("create subtitle style: %w", err)
	}

	// Column header: bold, white text, charcoal background, centered.
	if s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#333333"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border:    thinBorders(),
	}); err != nil {
		return s, fmt.Errorf("create header style: %w", err)
	}

	if s.body, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Size: 10},
		Border: thinBorders(),
	}); err != nil {
		return s, fmt.Errorf("create body style: %w", err)
	}

	// NumFmt 4 is the built-in "#,##0.00".
	if s.money, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Size: 10},
		Border: thinBorders(),
		NumFmt: 4,
	}); err != nil {
		return s, fmt.Errorf("create money style: %w", err)
	}

	// NumFmt 10 is the built-in "0.00%".
	if s.percent, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Size: 10},
		Border: thinBorders(),
		NumFmt: 10,
	}); err != nil {
		return s, fmt.Errorf("create percent style: %w", err)
	}

	if s.summaryLabel, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "right"},
	}); err != nil {
		return s, fmt.Errorf("create summary label style: %w", err)
	}

	if s.summaryMoney, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Size: 11},
		NumFmt: 4,
	}); err != nil {
		return s, fmt.Errorf("create summary value style: %w", err)
	}

	return s, nil
}

// cellMoney converts an amount to the rounded float written into a cell.
func cellMoney(d decimal.Decimal) float64 {
	return Round2(d).InexactFloat64()
}

// cellPercent converts a 0-100 percentage into the 0-1 fraction Excel's
// percent format expects.
func cellPercent(d decimal.Decimal) float64 {
	return d.Div(hundred).Round(4).InexactFloat64()
}

func sheetTitle(title, fallback string) string {
	title = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return '-'
		}
		return r
	}, title)
	if title == "" {
		return fallback
	}
	// Excel sheet names are limited to 31 characters.
	if r := []rune(title); len(r) > 31 {
		title = string(r[:31])
	}
	return title
}

// GenerateSOVExcel exports a schedule of values (G703 continuation sheet
// layout) to xlsx.
func GenerateSOVExcel(data SOVExportData) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetTitle(data.Title, "SOV")
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	styles, err := newSheetStyles(f)
	if err != nil {
		return nil, err
	}

	columns := []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K"}
	lastCol := columns[len(columns)-1]
	widths := []float64{8, 40, 16, 16, 16, 16, 16, 16, 10, 16, 16}
	for i, c := range columns {
		if err := f.SetColWidth(sheet, c, c, widths[i]); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", c, err)
		}
	}

	// ── Header Rows (1-3) ───────────────────────────────────────────────

	if err := f.MergeCell(sheet, "A1", lastCol+"1"); err != nil {
		return nil, fmt.Errorf("merge title: %w", err)
	}
	f.SetCellValue(sheet, "A1", sanitizeExcelCell(data.Title))
	f.SetCellStyle(sheet, "A1", lastCol+"1", styles.title)

	f.SetCellValue(sheet, "A2", sanitizeExcelCell(fmt.Sprintf("%s · Version %d · %s", data.ProjectName, data.Version, data.Status)))
	f.SetCellStyle(sheet, "A2", "A2", styles.subtitle)
	f.SetCellValue(sheet, "A3", "Date: "+data.CreatedDate)
	f.SetCellStyle(sheet, "A3", "A3", styles.subtitle)

	// ── Row 5: Column Headers ───────────────────────────────────────────

	headers := []string{
		"Item", "Description of Work", "Scheduled Value", "Approved Changes",
		"Revised Value", "Previously Billed", "This Period", "Total Billed",
		"% Complete", "Balance to Finish", "Retainage",
	}
	for i, h := range headers {
		f.SetCellValue(sheet, columns[i]+"5", h)
	}
	f.SetCellStyle(sheet, "A5", lastCol+"5", styles.header)

	// ── Data Rows (starting row 6) ──────────────────────────────────────

	row := 6
	for _, r := range data.Rows {
		rs := fmt.Sprintf("%d", row)
		f.SetCellValue(sheet, "A"+rs, sanitizeExcelCell(r.ItemNumber))
		f.SetCellValue(sheet, "B"+rs, sanitizeExcelCell(r.Description))
		f.SetCellStyle(sheet, "A"+rs, "B"+rs, styles.body)

		amounts := []decimal.Decimal{
			r.Line.ScheduledValue, r.Line.ApprovedChanges, r.Derived.RevisedValue,
			r.Line.PreviousBilled, r.Line.CurrentBilled, r.Derived.TotalBilled,
		}
		for i, a := range amounts {
			f.SetCellValue(sheet, columns[2+i]+rs, cellMoney(a))
		}
		f.SetCellStyle(sheet, "C"+rs, "H"+rs, styles.money)

		f.SetCellValue(sheet, "I"+rs, cellPercent(r.Derived.PercentComplete))
		f.SetCellStyle(sheet, "I"+rs, "I"+rs, styles.percent)

		f.SetCellValue(sheet, "J"+rs, cellMoney(r.Derived.BalanceToFinish))
		f.SetCellValue(sheet, "K"+rs, cellMoney(r.Derived.RetainageHeld))
		f.SetCellStyle(sheet, "J"+rs, "K"+rs, styles.money)
		row++
	}

	// ── Grand Total Row ─────────────────────────────────────────────────

	rs := fmt.Sprintf("%d", row)
	t := data.Totals
	f.SetCellValue(sheet, "B"+rs, "GRAND TOTAL")
	f.SetCellStyle(sheet, "B"+rs, "B"+rs, styles.summaryLabel)
	totals := map[string]decimal.Decimal{
		"C": t.TotalScheduled,
		"E": t.TotalRevised,
		"H": t.TotalBilled,
		"J": t.TotalBalance,
		"K": t.TotalRetainage,
	}
	for c, v := range totals {
		f.SetCellValue(sheet, c+rs, cellMoney(v))
		f.SetCellStyle(sheet, c+rs, c+rs, styles.summaryMoney)
	}
	f.SetCellValue(sheet, "D"+rs, cellMoney(t.TotalRevised.Sub(t.TotalScheduled)))
	f.SetCellStyle(sheet, "D"+rs, "D"+rs, styles.summaryMoney)
	f.SetCellValue(sheet, "I"+rs, cellPercent(t.OverallPercent))
	f.SetCellStyle(sheet, "I"+rs, "I"+rs, styles.percent)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

// GenerateBidComparisonExcel exports a ranked bid comparison to xlsx.
func GenerateBidComparisonExcel(data BidExportData) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetTitle(data.PackageNumber, "Bids")
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	styles, err := newSheetStyles(f)
	if err != nil {
		return nil, err
	}

	columns := []string{"A", "B", "C", "D", "E", "F", "G", "H", "I"}
	lastCol := columns[len(columns)-1]
	widths := []float64{6, 32, 16, 16, 16, 12, 14, 12, 10}
	for i, c := range columns {
		if err := f.SetColWidth(sheet, c, c, widths[i]); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", c, err)
		}
	}

	if err := f.MergeCell(sheet, "A1", lastCol+"1"); err != nil {
		return nil, fmt.Errorf("merge title: %w", err)
	}
	f.SetCellValue(sheet, "A1", sanitizeExcelCell(fmt.Sprintf("Bid Comparison %s - %s", data.PackageNumber, data.Trade)))
	f.SetCellStyle(sheet, "A1", lastCol+"1", styles.title)

	budget := "Budget: not set"
	if data.BudgetEstimate.Valid {
		budget = "Budget: " + FormatUSD(data.BudgetEstimate.Decimal)
	}
	f.SetCellValue(sheet, "A2", budget)
	f.SetCellValue(sheet, "A3", "Date: "+data.GeneratedDate)
	f.SetCellStyle(sheet, "A2", "A3", styles.subtitle)

	headers := []string{"Rank", "Subcontractor", "Base Bid", "Alternates", "Total Bid", "Variance", "Band", "Status", "Score"}
	for i, h := range headers {
		f.SetCellValue(sheet, columns[i]+"5", h)
	}
	f.SetCellStyle(sheet, "A5", lastCol+"5", styles.header)

	row := 6
	for _, r := range data.Comparison.Rows {
		rs := fmt.Sprintf("%d", row)
		name := r.Bid.SubcontractorName
		if r.IsLow {
			name += " (low)"
		}
		f.SetCellValue(sheet, "A"+rs, r.Rank)
		f.SetCellValue(sheet, "B"+rs, sanitizeExcelCell(name))
		f.SetCellStyle(sheet, "A"+rs, "B"+rs, styles.body)

		f.SetCellValue(sheet, "C"+rs, cellMoney(r.Bid.BaseBid))
		if r.Bid.AlternatesTotal.Valid {
			f.SetCellValue(sheet, "D"+rs, cellMoney(r.Bid.AlternatesTotal.Decimal))
		}
		f.SetCellValue(sheet, "E"+rs, cellMoney(r.Bid.TotalBid))
		f.SetCellStyle(sheet, "C"+rs, "E"+rs, styles.money)

		if r.VariancePercent.Valid {
			f.SetCellValue(sheet, "F"+rs, cellPercent(r.VariancePercent.Decimal))
		}
		f.SetCellStyle(sheet, "F"+rs, "F"+rs, styles.percent)

		f.SetCellValue(sheet, "G"+rs, string(r.Band))
		f.SetCellValue(sheet, "H"+rs, string(r.Bid.Status))
		if r.Bid.Score.Valid {
			f.SetCellValue(sheet, "I"+rs, r.Bid.Score.Decimal.InexactFloat64())
		}
		f.SetCellStyle(sheet, "G"+rs, "I"+rs, styles.body)
		row++
	}

	// ── Summary Rows ────────────────────────────────────────────────────

	row++
	c := data.Comparison
	summary := []struct {
		label string
		value decimal.Decimal
		show  bool
	}{
		{"Low:", c.Low, c.Count > 0},
		{"High:", c.High, c.Count > 0},
		{"Average:", c.Average, c.HasSpread},
		{"Spread:", c.Spread, c.HasSpread},
	}
	for _, s := range summary {
		if !s.show {
			continue
		}
		rs := fmt.Sprintf("%d", row)
		f.SetCellValue(sheet, "D"+rs, s.label)
		f.SetCellStyle(sheet, "D"+rs, "D"+rs, styles.summaryLabel)
		f.SetCellValue(sheet, "E"+rs, cellMoney(s.value))
		f.SetCellStyle(sheet, "E"+rs, "E"+rs, styles.summaryMoney)
		row++
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

// sanitizeExcelCell prevents formula injection by prefixing dangerous leading
// characters with a single quote. Excel interprets cells starting with =, +, -,
// @, \t or \r as formulas, which can be abused for code execution or data theft.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

// thinBorders returns a slice of excelize.Border for thin borders on all four sides.
func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{
			Type:  side,
			Color: "#000000",
			Style: 1, // thin
		}
	}
	return borders
}
