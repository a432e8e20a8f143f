package services

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
)

// GeneratePayApplicationPDF renders the application for payment summary
// followed by the continuation sheet of every SOV line.
func GeneratePayApplicationPDF(data SOVExportData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Horizontal).
		WithPageSize(pagesize.Letter).
		WithLeftMargin(10).
		WithTopMargin(10).
		WithRightMargin(10).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()

	m := maroto.New(cfg)

	addPayAppHeader(m, data)
	addPayAppSummary(m, data.PayApplication)

	m.AddRows(row.New(6))
	addContinuationHeader(m)
	for _, r := range data.Rows {
		addContinuationRow(m, r)
	}
	addContinuationTotal(m, data.Totals)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

func addPayAppHeader(m core.Maroto, data SOVExportData) {
	m.AddRows(
		row.New(12).Add(
			col.New(12).Add(
				text.New("APPLICATION AND CERTIFICATE FOR PAYMENT", props.Text{
					Size:  14,
					Style: fontstyle.Bold,
					Align: align.Center,
				}),
			),
		),
	)

	grey := &props.Color{Red: 80, Green: 80, Blue: 80}
	m.AddRows(
		row.New(6).Add(
			col.New(6).Add(
				text.New(fmt.Sprintf("Project: %s", data.ProjectName), props.Text{Size: 9, Align: align.Left, Color: grey}),
			),
			col.New(6).Add(
				text.New(fmt.Sprintf("Application No: %d", data.ApplicationNumber), props.Text{Size: 9, Align: align.Right, Color: grey}),
			),
		),
		row.New(6).Add(
			col.New(6).Add(
				text.New(fmt.Sprintf("Schedule: %s (v%d)", data.Title, data.Version), props.Text{Size: 9, Align: align.Left, Color: grey}),
			),
			col.New(6).Add(
				text.New(fmt.Sprintf("Period To: %s", data.PeriodTo), props.Text{Size: 9, Align: align.Right, Color: grey}),
			),
		),
	)
	m.AddRows(row.New(4))
}

func addPayAppSummary(m core.Maroto, p PayApplication) {
	summaryCell := &props.Cell{BackgroundColor: &props.Color{Red: 240, Green: 240, Blue: 240}}
	labelStyle := props.Text{Size: 9, Align: align.Left, Left: 2}
	valueStyle := props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right, Right: 2}

	lines := []struct {
		label string
		value decimal.Decimal
	}{
		{"1. Original Contract Sum", p.OriginalContractSum},
		{"2. Net Change by Change Orders", p.NetChangeOrders},
		{"3. Contract Sum to Date (Line 1 ± 2)", p.ContractSumToDate},
		{"4. Total Completed to Date", p.TotalCompletedToDate},
		{"5. Retainage", p.RetainageToDate},
		{"6. Total Earned Less Retainage (Line 4 − 5)", p.TotalEarnedLessRetained},
		{"7. Less Previous Certificates for Payment", p.PreviousCertificates},
		{"8. Current Payment Due", p.CurrentPaymentDue},
		{"9. Balance to Finish, Including Retainage", p.BalanceToFinish},
	}

	for i, l := range lines {
		r := row.New(7).Add(
			col.New(8).Add(text.New(l.label, labelStyle)),
			col.New(4).Add(text.New(FormatUSD(l.value), valueStyle)),
		)
		if i%2 == 0 {
			r = r.WithStyle(summaryCell)
		}
		m.AddRows(r)
	}

	m.AddRows(
		row.New(7).Add(
			col.New(12).Add(
				text.New(
					fmt.Sprintf("Amount certified: %s (%s complete)", AmountToWords(p.CurrentPaymentDue), FormatPercent(p.PercentComplete)),
					props.Text{Size: 8, Style: fontstyle.Italic, Align: align.Left, Top: 2},
				),
			),
		),
	)
}

func addContinuationHeader(m core.Maroto) {
	headerBg := &props.Color{Red: 33, Green: 37, Blue: 41}
	headerText := props.Text{
		Size:  7,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: &props.Color{Red: 255, Green: 255, Blue: 255},
	}
	headerCell := props.Cell{BackgroundColor: headerBg}

	titles := []struct {
		label string
		size  int
	}{
		{"Item", 1}, {"Description of Work", 3}, {"Revised Value", 1},
		{"Previous", 1}, {"This Period", 1}, {"Total Billed", 1},
		{"%", 1}, {"Balance", 2}, {"Retainage", 1},
	}

	cols := make([]core.Col, 0, len(titles))
	for _, t := range titles {
		cols = append(cols, col.New(t.size).Add(text.New(t.label, headerText)).WithStyle(&headerCell))
	}
	m.AddRows(row.New(8).Add(cols...))
}

func addContinuationRow(m core.Maroto, r SOVExportRow) {
	base := props.Text{Size: 7, Align: align.Center}
	left := base
	left.Align = align.Left
	right := base
	right.Align = align.Right

	m.AddRows(
		row.New(6).Add(
			col.New(1).Add(text.New(r.ItemNumber, base)),
			col.New(3).Add(text.New(r.Description, left)),
			col.New(1).Add(text.New(FormatUSD(r.Derived.RevisedValue), right)),
			col.New(1).Add(text.New(FormatUSD(r.Line.PreviousBilled), right)),
			col.New(1).Add(text.New(FormatUSD(r.Line.CurrentBilled), right)),
			col.New(1).Add(text.New(FormatUSD(r.Derived.TotalBilled), right)),
			col.New(1).Add(text.New(FormatPercent(r.Derived.PercentComplete), right)),
			col.New(2).Add(text.New(FormatUSD(r.Derived.BalanceToFinish), right)),
			col.New(1).Add(text.New(FormatUSD(r.Derived.RetainageHeld), right)),
		),
	)
}

func addContinuationTotal(m core.Maroto, t SOVTotals) {
	bold := props.Text{Size: 7, Style: fontstyle.Bold, Align: align.Right}
	cell := &props.Cell{BackgroundColor: &props.Color{Red: 240, Green: 240, Blue: 240}}

	m.AddRows(
		row.New(7).Add(
			col.New(4).Add(text.New("GRAND TOTAL", bold)),
			col.New(1).Add(text.New(FormatUSD(t.TotalRevised), bold)),
			col.New(2),
			col.New(1).Add(text.New(FormatUSD(t.TotalBilled), bold)),
			col.New(1).Add(text.New(FormatPercent(t.OverallPercent), bold)),
			col.New(2).Add(text.New(FormatUSD(t.TotalBalance), bold)),
			col.New(1).Add(text.New(FormatUSD(t.TotalRetainage), bold)),
		).WithStyle(cell),
	)
}
