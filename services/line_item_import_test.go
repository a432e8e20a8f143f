package services

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in     string
		expect string
		ok     bool
	}{
		{"", "0", true},
		{"  ", "0", true},
		{"12.5", "12.5", true},
		{"$1,250.00", "1250", true},
		{"-3", "-3", true},
		{"abc", "0", false},
		{"12 units", "0", false},
	}
	for _, tt := range tests {
		got, ok := ParseNumber(tt.in)
		if ok != tt.ok || !got.Equal(d(tt.expect)) {
			t.Errorf("ParseNumber(%q) = %s, %v; want %s, %v", tt.in, got, ok, tt.expect, tt.ok)
		}
	}
}

func TestParseLineItemFile_CSV(t *testing.T) {
	csvData := "Description *,Quantity,Unit Price,Optional,Section\n" +
		"Frame walls,120,$42.50,no,Framing\n" +
		"Skylight,1,900,yes,Roofing\n" +
		",,,,\n" +
		"Paint,,abc,,Finishes\n"

	result, err := ParseLineItemFile(strings.NewReader(csvData), "items.csv")
	if err != nil {
		t.Fatalf("ParseLineItemFile: %v", err)
	}

	if result.TotalRows != 3 {
		t.Errorf("TotalRows = %d, want 3 (blank row skipped)", result.TotalRows)
	}
	if result.ValidRows != 3 || result.ErrorRows != 0 {
		t.Errorf("ValidRows = %d, ErrorRows = %d; want 3, 0", result.ValidRows, result.ErrorRows)
	}
	if len(result.Warnings) != 1 || result.Warnings[0].Row != 5 || result.Warnings[0].Field != "Unit Price" {
		t.Errorf("unexpected warnings: %+v", result.Warnings)
	}

	frame := result.Items[0]
	assertDec(t, "Quantity", frame.Quantity, "120")
	assertDec(t, "UnitPrice", frame.UnitPrice, "42.5")
	if frame.IsOptional || frame.SectionID != "Framing" {
		t.Errorf("unexpected first item: %+v", frame)
	}
	if !result.Items[1].IsOptional {
		t.Error("Skylight should be optional")
	}

	paint := result.Items[2]
	assertDec(t, "paint.Quantity", paint.Quantity, "0")
	assertDec(t, "paint.UnitPrice", paint.UnitPrice, "0")
}

func TestParseLineItemFile_RowErrors(t *testing.T) {
	csvData := "Description,Quantity,Unit Price\n" +
		",2,10\n" +
		"Negative,-1,10\n" +
		"Good,1,10\n"

	result, err := ParseLineItemFile(strings.NewReader(csvData), "items.CSV")
	if err != nil {
		t.Fatalf("ParseLineItemFile: %v", err)
	}
	if result.ErrorRows != 2 || result.ValidRows != 1 {
		t.Errorf("ErrorRows = %d, ValidRows = %d; want 2, 1", result.ErrorRows, result.ValidRows)
	}
	if len(result.Errors) != 2 || result.Errors[0].Row != 2 || result.Errors[1].Row != 3 {
		t.Errorf("unexpected errors: %+v", result.Errors)
	}
}

func TestParseLineItemFile_Excel(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	f.SetSheetRow(sheet, "A1", &[]any{"description", "quantity", "unit_price"})
	f.SetSheetRow(sheet, "A2", &[]any{"Concrete", 3, 150.25})
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatal(err)
	}
	f.Close()

	result, err := ParseLineItemFile(&buf, "upload.xlsx")
	if err != nil {
		t.Fatalf("ParseLineItemFile: %v", err)
	}
	if result.ValidRows != 1 {
		t.Fatalf("ValidRows = %d, want 1", result.ValidRows)
	}
	assertDec(t, "Extended", result.Items[0].Extended(), "450.75")
}

func TestParseLineItemFile_Unsupported(t *testing.T) {
	if _, err := ParseLineItemFile(strings.NewReader("x"), "items.pdf"); err == nil {
		t.Error("expected error for unsupported format")
	}
	if _, err := ParseLineItemFile(strings.NewReader("Description\n"), "items.csv"); err == nil {
		t.Error("expected error for header-only file")
	}
}

func TestMapHeadersToFields(t *testing.T) {
	mapped, unrecognized := mapHeadersToFields(
		[]string{"Description *", " QUANTITY ", "unit_price", "Notes"},
		LineItemImportFields(),
	)
	want := []string{"description", "quantity", "unit_price", ""}
	for i := range want {
		if mapped[i] != want[i] {
			t.Errorf("mapped[%d] = %q, want %q", i, mapped[i], want[i])
		}
	}
	if len(unrecognized) != 1 || unrecognized[0] != "Notes" {
		t.Errorf("unrecognized = %v, want [Notes]", unrecognized)
	}
}

func TestGenerateErrorReport(t *testing.T) {
	data, err := GenerateErrorReport([]ValidationError{
		{Row: 2, Field: "Description", Message: "Description is required"},
		{Row: 3, Field: "Quantity", Message: "=HYPERLINK(\"x\")"},
	})
	if err != nil {
		t.Fatalf("GenerateErrorReport: %v", err)
	}

	f, err := excelize.OpenReader(bytesReader(data))
	if err != nil {
		t.Fatalf("result is not valid Excel: %v", err)
	}
	defer f.Close()

	if v, _ := f.GetCellValue("Errors", "B2"); v != "Description" {
		t.Errorf("B2 = %q, want Description", v)
	}
	if v, _ := f.GetCellValue("Errors", "C3"); !strings.HasPrefix(v, "'") {
		t.Errorf("C3 = %q, expected formula to be neutralised", v)
	}
}

func TestGenerateLineItemTemplate(t *testing.T) {
	data, err := GenerateLineItemTemplate()
	if err != nil {
		t.Fatalf("GenerateLineItemTemplate: %v", err)
	}

	f, err := excelize.OpenReader(bytesReader(data))
	if err != nil {
		t.Fatalf("result is not valid Excel: %v", err)
	}
	defer f.Close()

	if v, _ := f.GetCellValue("Line Items", "A1"); v != "Description *" {
		t.Errorf("A1 = %q, want %q", v, "Description *")
	}
	if v, _ := f.GetCellValue("Line Items", "C1"); v != "Unit Price" {
		t.Errorf("C1 = %q, want %q", v, "Unit Price")
	}
	if visible, _ := f.GetSheetVisible("Instructions"); visible {
		t.Error("Instructions sheet should be hidden")
	}

	// The template's own headers must round-trip through the parser.
	rows, _ := f.GetRows("Line Items")
	mapped, unrecognized := mapHeadersToFields(rows[0], LineItemImportFields())
	if len(unrecognized) != 0 || mapped[0] != "description" {
		t.Errorf("template headers not recognised: %v / %v", mapped, unrecognized)
	}
}
