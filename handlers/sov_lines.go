package handlers

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"buildledger/services"
)

var (
	sovStructureFields = []string{"item_number", "description", "scheduled_value", "approved_changes", "retainage_percent"}
	sovBillingFields   = []string{"previous_billed", "current_billed"}
)

// guardSOVEdit writes the error response and returns false when the SOV is
// missing or its status does not allow the requested kind of edit.
func guardSOVEdit(e *core.RequestEvent, app *pocketbase.PocketBase, sovID string, structural bool, tag string) (bool, error) {
	sov, err := app.FindRecordById("schedules_of_values", sovID)
	if err != nil {
		return false, ErrorToast(e, http.StatusNotFound, "Schedule of values not found")
	}
	if err := services.CheckSOVEdit(services.SOVStatus(sov.GetString("status")), structural); err != nil {
		return false, failWith(e, tag, err)
	}
	return true, nil
}

// touched reports which of fields were posted.
func touched(e *core.RequestEvent, fields []string) []string {
	var out []string
	for _, f := range fields {
		if _, ok := e.Request.PostForm[f]; ok {
			out = append(out, f)
		}
	}
	return out
}

// setSOVLineFields copies the posted fields onto record.
func setSOVLineFields(e *core.RequestEvent, record *core.Record, fields []string) string {
	for _, f := range fields {
		switch f {
		case "item_number", "description":
			v := strings.TrimSpace(e.Request.PostForm.Get(f))
			if f == "description" && v == "" {
				return "Description is required"
			}
			record.Set(f, v)
		default:
			v, err := formFloat(e, f)
			if err != nil {
				return err.Error()
			}
			if f == "retainage_percent" && (v < 0 || v > 100) {
				return "Retainage must be between 0 and 100"
			}
			record.Set(f, v)
		}
	}
	return ""
}

// afterSOVLineWrite refreshes the cached contract amount and renders the SOV.
func afterSOVLineWrite(e *core.RequestEvent, app *pocketbase.PocketBase, sovID string, status int) error {
	if _, err := services.RecalculateSOV(app, sovID); err != nil {
		log.Printf("sov_lines: recalculate %s: %v", sovID, err)
	}
	return sovResponse(e, app, sovID, status)
}

// HandleSOVLineCreate adds a line to a draft schedule of values.
// Route: POST /sov/{id}/lines
func HandleSOVLineCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		sovID := e.Request.PathValue("id")
		if ok, err := guardSOVEdit(e, app, sovID, true, "sov_line_create"); !ok {
			return err
		}
		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid form data")
		}

		col, err := app.FindCollectionByNameOrId("sov_line_items")
		if err != nil {
			return failWith(e, "sov_line_create", err)
		}
		sortOrder := nextSortOrder(app, "sov_line_items", "sov", sovID)
		record := core.NewRecord(col)
		record.Set("sov", sovID)
		record.Set("sort_order", sortOrder)
		record.Set("item_number", strconv.Itoa(sortOrder))
		if msg := setSOVLineFields(e, record, append(touched(e, sovStructureFields), touched(e, sovBillingFields)...)); msg != "" {
			return ErrorToast(e, http.StatusBadRequest, msg)
		}
		if err := app.Save(record); err != nil {
			log.Printf("sov_line_create: save failed: %v", err)
			return ErrorToast(e, http.StatusBadRequest, "Failed to add line")
		}

		SetToast(e, "success", "Line added")
		return afterSOVLineWrite(e, app, sovID, http.StatusCreated)
	}
}

// HandleSOVLineUpdate edits a line. Structural fields need a draft SOV;
// billing fields are also accepted once approved.
// Route: POST /sov/{id}/lines/{lineId}
func HandleSOVLineUpdate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		sovID := e.Request.PathValue("id")
		line, err := app.FindRecordById("sov_line_items", e.Request.PathValue("lineId"))
		if err != nil || line.GetString("sov") != sovID {
			return ErrorToast(e, http.StatusNotFound, "Line not found")
		}
		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid form data")
		}

		structural := touched(e, sovStructureFields)
		billing := touched(e, sovBillingFields)
		if ok, err := guardSOVEdit(e, app, sovID, len(structural) > 0, "sov_line_update"); !ok {
			return err
		}

		if msg := setSOVLineFields(e, line, append(structural, billing...)); msg != "" {
			return ErrorToast(e, http.StatusBadRequest, msg)
		}
		if err := app.Save(line); err != nil {
			log.Printf("sov_line_update: save failed: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, "Failed to update line")
		}
		return afterSOVLineWrite(e, app, sovID, http.StatusOK)
	}
}

// HandleSOVLineDelete removes a line from a draft schedule of values.
// Route: DELETE /sov/{id}/lines/{lineId}
func HandleSOVLineDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		sovID := e.Request.PathValue("id")
		line, err := app.FindRecordById("sov_line_items", e.Request.PathValue("lineId"))
		if err != nil || line.GetString("sov") != sovID {
			return ErrorToast(e, http.StatusNotFound, "Line not found")
		}
		if ok, err := guardSOVEdit(e, app, sovID, true, "sov_line_delete"); !ok {
			return err
		}

		if err := app.Delete(line); err != nil {
			log.Printf("sov_line_delete: delete failed: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, "Failed to delete line")
		}
		SetToast(e, "success", "Line deleted")
		return afterSOVLineWrite(e, app, sovID, http.StatusOK)
	}
}
