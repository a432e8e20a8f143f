package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"buildledger/services"
	"buildledger/templates"
)

// HandleLineItemTemplate downloads the blank line item upload workbook.
// Route: GET /estimates/{id}/line-items/import/template
func HandleLineItemTemplate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		xlsxBytes, err := services.GenerateLineItemTemplate()
		if err != nil {
			log.Printf("line_item_template: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, "Failed to generate template")
		}
		return sendFile(e, xlsxContentType, "Line_Items_Template.xlsx", xlsxBytes)
	}
}

// HandleLineItemValidate parses an uploaded CSV or XLSX file and reports row
// errors and warnings. Nothing is written until the commit step.
// Route: POST /estimates/{id}/line-items/import
func HandleLineItemValidate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		estimateID := e.Request.PathValue("id")
		if _, err := app.FindRecordById("estimates", estimateID); err != nil {
			return ErrorToast(e, http.StatusNotFound, "Estimate not found")
		}

		// max 10MB
		if err := e.Request.ParseMultipartForm(10 << 20); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "File too large or invalid form data")
		}
		file, header, err := e.Request.FormFile("file")
		if err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Please select a file to upload")
		}
		defer file.Close()

		result, err := services.ParseLineItemFile(file, header.Filename)
		if err != nil {
			log.Printf("line_item_validate: %v", err)
			return ErrorToast(e, http.StatusBadRequest, err.Error())
		}

		var parsedRowsJSON string
		if result.ErrorRows == 0 {
			b, err := json.Marshal(result.Items)
			if err != nil {
				log.Printf("line_item_validate: marshal parsed rows: %v", err)
			} else {
				parsedRowsJSON = string(b)
			}
		}

		payload := map[string]any{
			"result":      result,
			"parsed_rows": json.RawMessage(orNull(parsedRowsJSON)),
		}
		return respond(e, http.StatusOK, payload, templates.LineItemValidationResults(estimateID, result, parsedRowsJSON))
	}
}

func orNull(s string) string {
	if s == "" {
		return "null"
	}
	return s
}

// HandleLineItemErrorReport turns posted validation errors into a workbook.
// Route: POST /estimates/{id}/line-items/import/errors
func HandleLineItemErrorReport(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var errs []services.ValidationError
		if err := json.NewDecoder(e.Request.Body).Decode(&errs); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid error data")
		}

		xlsxBytes, err := services.GenerateErrorReport(errs)
		if err != nil {
			log.Printf("line_item_error_report: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		filename := fmt.Sprintf("Line_Item_Errors_%s.xlsx", time.Now().Format("2006-01-02"))
		return sendFile(e, xlsxContentType, filename, xlsxBytes)
	}
}

// HandleLineItemImportCommit inserts the rows accepted by the validate step
// and refreshes the estimate totals.
// Route: POST /estimates/{id}/line-items/import/commit
func HandleLineItemImportCommit(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		estimateID := e.Request.PathValue("id")
		if _, err := app.FindRecordById("estimates", estimateID); err != nil {
			return ErrorToast(e, http.StatusNotFound, "Estimate not found")
		}
		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid form data")
		}

		parsedJSON := e.Request.FormValue("parsed_rows_json")
		if parsedJSON == "" {
			return ErrorToast(e, http.StatusBadRequest, "File data missing. Please re-upload and try again.")
		}
		var items []services.LineItem
		if err := json.Unmarshal([]byte(parsedJSON), &items); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid parsed data")
		}

		result, err := services.CommitLineItemImport(app, estimateID, items)
		if err != nil {
			log.Printf("line_item_import_commit: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}
		if _, err := services.RecalculateEstimate(app, estimateID); err != nil {
			log.Printf("line_item_import_commit: recalculate %s: %v", estimateID, err)
		}

		if result.Failed > 0 {
			return respond(e, http.StatusUnprocessableEntity, result, templates.LineItemImportFailure(estimateID, result))
		}
		SetToast(e, "success", fmt.Sprintf("%d line items imported successfully", result.Imported))
		return respond(e, http.StatusOK, result, templates.LineItemImportSuccess(estimateID, result.Imported))
	}
}
