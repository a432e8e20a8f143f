package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ValidationError represents a single field-level problem on one row.
type ValidationError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ImportField describes one recognised column of a line item upload.
type ImportField struct {
	Key         string
	Label       string
	Required    bool
	Description string
	Example     string
}

// LineItemImportFields lists the columns understood by ParseLineItemFile.
func LineItemImportFields() []ImportField {
	return []ImportField{
		{Key: "description", Label: "Description", Required: true, Description: "Scope of work for the line", Example: "Frame interior walls"},
		{Key: "quantity", Label: "Quantity", Description: "Blank or non-numeric values import as 0", Example: "120"},
		{Key: "unit_price", Label: "Unit Price", Description: "Price per unit; $ and thousands separators are accepted", Example: "$42.50"},
		{Key: "optional", Label: "Optional", Description: "Yes marks an optional item excluded from the total", Example: "No"},
		{Key: "section", Label: "Section", Description: "Groups lines on the estimate view", Example: "Framing"},
	}
}

// LineItemImportResult is returned after parsing an uploaded line item file.
// Rows with errors are left out of Items; warnings do not drop a row.
type LineItemImportResult struct {
	TotalRows int               `json:"total_rows"`
	ValidRows int               `json:"valid_rows"`
	ErrorRows int               `json:"error_rows"`
	Errors    []ValidationError `json:"errors"`
	Warnings  []ValidationError `json:"warnings"`
	Items     []LineItem        `json:"-"`
}

// parseCSV reads a CSV file and returns headers + data rows.
func parseCSV(file io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	allRows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(allRows) < 2 {
		return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
	}

	return allRows[0], allRows[1:], nil
}

// parseExcel reads an xlsx file and returns headers + data rows from the first sheet.
func parseExcel(file io.Reader) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
	}

	return rows[0], rows[1:], nil
}

// mapHeadersToFields maps uploaded column headers to field keys.
// Returns ordered list of field keys (one per column) and any unrecognized columns.
func mapHeadersToFields(headers []string, fields []ImportField) ([]string, []string) {
	labelToKey := make(map[string]string, len(fields)*2)
	for _, f := range fields {
		labelToKey[strings.ToLower(f.Label)] = f.Key
		labelToKey[f.Key] = f.Key
	}

	mapped := make([]string, len(headers))
	var unrecognized []string

	for i, h := range headers {
		norm := strings.ToLower(strings.TrimSpace(h))
		norm = strings.TrimSpace(strings.TrimSuffix(norm, " *"))

		if key, ok := labelToKey[norm]; ok {
			mapped[i] = key
		} else {
			unrecognized = append(unrecognized, h)
		}
	}
	return mapped, unrecognized
}

// ParseNumber converts user input to a decimal. Blank input is zero; input
// that does not parse is also zero and ok is false so the caller can warn.
// Thousands separators and a leading currency symbol are accepted.
func ParseNumber(s string) (d decimal.Decimal, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, true
	}
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return v, true
}

// parseBool accepts the usual spreadsheet spellings of yes/no.
func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "y", "yes", "true", "x", "optional":
		return true
	}
	return false
}

// ParseLineItemFile parses a .csv or .xlsx upload into estimate line items.
func ParseLineItemFile(file io.Reader, fileName string) (*LineItemImportResult, error) {
	var headers []string
	var dataRows [][]string
	var err error

	lowerName := strings.ToLower(fileName)
	switch {
	case strings.HasSuffix(lowerName, ".csv"):
		headers, dataRows, err = parseCSV(file)
	case strings.HasSuffix(lowerName, ".xlsx"):
		headers, dataRows, err = parseExcel(file)
	default:
		return nil, fmt.Errorf("unsupported file format: must be .csv or .xlsx")
	}
	if err != nil {
		return nil, err
	}

	fields := LineItemImportFields()
	columnKeys, _ := mapHeadersToFields(headers, fields)

	keyToLabel := make(map[string]string, len(fields))
	for _, f := range fields {
		keyToLabel[f.Key] = f.Label
	}

	result := &LineItemImportResult{TotalRows: len(dataRows)}

	for rowIdx, row := range dataRows {
		rowNum := rowIdx + 2 // 1-indexed, +1 for header row
		rowData := make(map[string]string)
		for colIdx, key := range columnKeys {
			if key == "" || colIdx >= len(row) {
				continue
			}
			rowData[key] = strings.TrimSpace(row[colIdx])
		}

		if isBlankRow(rowData) {
			result.TotalRows--
			continue
		}

		var rowErrors []ValidationError
		for _, f := range fields {
			if f.Required && rowData[f.Key] == "" {
				rowErrors = append(rowErrors, ValidationError{
					Row:     rowNum,
					Field:   f.Label,
					Message: fmt.Sprintf("%s is required", f.Label),
				})
			}
		}

		qty, ok := ParseNumber(rowData["quantity"])
		if !ok {
			result.Warnings = append(result.Warnings, numberWarning(rowNum, keyToLabel["quantity"], rowData["quantity"]))
		}
		price, ok := ParseNumber(rowData["unit_price"])
		if !ok {
			result.Warnings = append(result.Warnings, numberWarning(rowNum, keyToLabel["unit_price"], rowData["unit_price"]))
		}
		if qty.IsNegative() {
			rowErrors = append(rowErrors, ValidationError{Row: rowNum, Field: "Quantity", Message: "Quantity must not be negative"})
		}

		if len(rowErrors) > 0 {
			result.Errors = append(result.Errors, rowErrors...)
			result.ErrorRows++
			continue
		}

		result.Items = append(result.Items, LineItem{
			Description: rowData["description"],
			Quantity:    qty,
			UnitPrice:   price,
			IsOptional:  parseBool(rowData["optional"]),
			SectionID:   rowData["section"],
		})
	}

	result.ValidRows = len(result.Items)
	return result, nil
}

func numberWarning(rowNum int, label, raw string) ValidationError {
	return ValidationError{
		Row:     rowNum,
		Field:   label,
		Message: fmt.Sprintf("%q is not a number, using 0", raw),
	}
}

func isBlankRow(rowData map[string]string) bool {
	for _, v := range rowData {
		if v != "" {
			return false
		}
	}
	return true
}

// GenerateErrorReport creates a downloadable .xlsx file from validation errors.
func GenerateErrorReport(errors []ValidationError) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Errors"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DC2626"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    thinBorders(),
	})

	f.SetCellValue(sheet, "A1", "Row #")
	f.SetCellValue(sheet, "B1", "Field")
	f.SetCellValue(sheet, "C1", "Error")
	f.SetCellStyle(sheet, "A1", "C1", headerStyle)
	f.SetColWidth(sheet, "A", "A", 8)
	f.SetColWidth(sheet, "B", "B", 22)
	f.SetColWidth(sheet, "C", "C", 55)

	for i, e := range errors {
		row := strconv.Itoa(i + 2)
		f.SetCellValue(sheet, "A"+row, e.Row)
		f.SetCellValue(sheet, "B"+row, e.Field)
		f.SetCellValue(sheet, "C"+row, sanitizeExcelCell(e.Message))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write error report: %w", err)
	}
	return buf.Bytes(), nil
}
