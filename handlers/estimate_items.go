package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// findEstimateChild loads a child record and checks it belongs to the
// estimate in the path.
func findEstimateChild(app *pocketbase.PocketBase, collection, estimateID, childID string) (*core.Record, bool) {
	record, err := app.FindRecordById(collection, childID)
	if err != nil {
		return nil, false
	}
	if record.GetString("estimate") != estimateID {
		log.Printf("estimate_items: %s %s does not belong to estimate %s", collection, childID, estimateID)
		return nil, false
	}
	return record, true
}

// nextSortOrder returns one past the highest sort_order under a parent.
func nextSortOrder(app *pocketbase.PocketBase, collection, parentField, parentID string) int {
	existing, err := app.FindRecordsByFilter(
		collection,
		parentField+" = {:parentId}",
		"-sort_order",
		1,
		0,
		map[string]any{"parentId": parentID},
	)
	if err != nil || len(existing) == 0 {
		return 1
	}
	return existing[0].GetInt("sort_order") + 1
}

// setLineItemFields copies the line item form onto record.
func setLineItemFields(e *core.RequestEvent, record *core.Record) string {
	description := strings.TrimSpace(e.Request.FormValue("description"))
	if description == "" {
		return "Description is required"
	}
	qty, err := formFloat(e, "quantity")
	if err != nil {
		return err.Error()
	}
	if qty < 0 {
		return "Quantity cannot be negative"
	}
	price, err := formFloat(e, "unit_price")
	if err != nil {
		return err.Error()
	}

	record.Set("description", description)
	record.Set("quantity", qty)
	record.Set("unit_price", price)
	record.Set("is_optional", e.Request.FormValue("is_optional") == "true" || e.Request.FormValue("is_optional") == "on")
	record.Set("section", strings.TrimSpace(e.Request.FormValue("section")))
	return ""
}

// HandleLineItemCreate adds a line item to an estimate.
// Route: POST /estimates/{id}/line-items
func HandleLineItemCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		estimateID := e.Request.PathValue("id")
		if _, err := app.FindRecordById("estimates", estimateID); err != nil {
			return ErrorToast(e, http.StatusNotFound, "Estimate not found")
		}
		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid form data")
		}

		col, err := app.FindCollectionByNameOrId("estimate_line_items")
		if err != nil {
			return failWith(e, "line_item_create", err)
		}
		record := core.NewRecord(col)
		record.Set("estimate", estimateID)
		record.Set("sort_order", nextSortOrder(app, "estimate_line_items", "estimate", estimateID))
		if msg := setLineItemFields(e, record); msg != "" {
			return ErrorToast(e, http.StatusBadRequest, msg)
		}
		if err := app.Save(record); err != nil {
			log.Printf("line_item_create: save failed: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, "Failed to add line item")
		}

		SetToast(e, "success", "Line item added")
		return recalculateAndRespond(e, app, estimateID, http.StatusCreated, "line_item_create")
	}
}

// HandleLineItemUpdate replaces the fields of a line item.
// Route: POST /estimates/{id}/line-items/{itemId}
func HandleLineItemUpdate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		estimateID := e.Request.PathValue("id")
		record, ok := findEstimateChild(app, "estimate_line_items", estimateID, e.Request.PathValue("itemId"))
		if !ok {
			return ErrorToast(e, http.StatusNotFound, "Line item not found")
		}
		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid form data")
		}
		if msg := setLineItemFields(e, record); msg != "" {
			return ErrorToast(e, http.StatusBadRequest, msg)
		}
		if err := app.Save(record); err != nil {
			log.Printf("line_item_update: save failed: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, "Failed to update line item")
		}
		return recalculateAndRespond(e, app, estimateID, http.StatusOK, "line_item_update")
	}
}

// HandleLineItemDelete removes a line item.
// Route: DELETE /estimates/{id}/line-items/{itemId}
func HandleLineItemDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return handleEstimateChildDelete(app, "estimate_line_items", "itemId", "Line item")
}

// HandleAllowanceDelete removes an allowance.
// Route: DELETE /estimates/{id}/allowances/{allowanceId}
func HandleAllowanceDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return handleEstimateChildDelete(app, "estimate_allowances", "allowanceId", "Allowance")
}

func handleEstimateChildDelete(app *pocketbase.PocketBase, collection, pathKey, label string) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		estimateID := e.Request.PathValue("id")
		record, ok := findEstimateChild(app, collection, estimateID, e.Request.PathValue(pathKey))
		if !ok {
			return ErrorToast(e, http.StatusNotFound, label+" not found")
		}
		if err := app.Delete(record); err != nil {
			log.Printf("%s: delete failed: %v", collection, err)
			return ErrorToast(e, http.StatusInternalServerError, "Failed to delete "+strings.ToLower(label))
		}
		SetToast(e, "success", label+" deleted")
		return recalculateAndRespond(e, app, estimateID, http.StatusOK, collection+"_delete")
	}
}

// HandleAllowanceCreate adds an allowance. Its status is informational and
// never changes the totals.
// Route: POST /estimates/{id}/allowances
func HandleAllowanceCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		estimateID := e.Request.PathValue("id")
		if _, err := app.FindRecordById("estimates", estimateID); err != nil {
			return ErrorToast(e, http.StatusNotFound, "Estimate not found")
		}
		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid form data")
		}

		name := strings.TrimSpace(e.Request.FormValue("name"))
		if name == "" {
			return ErrorToast(e, http.StatusBadRequest, "Name is required")
		}
		amount, err := formFloat(e, "amount")
		if err != nil {
			return ErrorToast(e, http.StatusBadRequest, err.Error())
		}
		status := e.Request.FormValue("status")
		if status == "" {
			status = "pending"
		}

		col, err := app.FindCollectionByNameOrId("estimate_allowances")
		if err != nil {
			return failWith(e, "allowance_create", err)
		}
		record := core.NewRecord(col)
		record.Set("estimate", estimateID)
		record.Set("name", name)
		record.Set("amount", amount)
		record.Set("status", status)
		record.Set("sort_order", nextSortOrder(app, "estimate_allowances", "estimate", estimateID))
		if err := app.Save(record); err != nil {
			log.Printf("allowance_create: save failed: %v", err)
			return ErrorToast(e, http.StatusBadRequest, "Failed to add allowance")
		}

		SetToast(e, "success", "Allowance added")
		return recalculateAndRespond(e, app, estimateID, http.StatusCreated, "allowance_create")
	}
}

// HandleAlternateCreate adds an alternate. The amount is entered unsigned;
// kind decides whether it adds to or deducts from the contract.
// Route: POST /estimates/{id}/alternates
func HandleAlternateCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		estimateID := e.Request.PathValue("id")
		if _, err := app.FindRecordById("estimates", estimateID); err != nil {
			return ErrorToast(e, http.StatusNotFound, "Estimate not found")
		}
		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid form data")
		}

		name := strings.TrimSpace(e.Request.FormValue("name"))
		if name == "" {
			return ErrorToast(e, http.StatusBadRequest, "Name is required")
		}
		kind := e.Request.FormValue("kind")
		if kind != "add" && kind != "deduct" {
			return ErrorToast(e, http.StatusBadRequest, "Kind must be add or deduct")
		}
		amount, err := formFloat(e, "amount")
		if err != nil {
			return ErrorToast(e, http.StatusBadRequest, err.Error())
		}
		if amount < 0 {
			amount = -amount
		}
		status := e.Request.FormValue("status")
		if status == "" {
			status = "proposed"
		}

		col, err := app.FindCollectionByNameOrId("estimate_alternates")
		if err != nil {
			return failWith(e, "alternate_create", err)
		}
		record := core.NewRecord(col)
		record.Set("estimate", estimateID)
		record.Set("name", name)
		record.Set("kind", kind)
		record.Set("amount", amount)
		record.Set("status", status)
		record.Set("sort_order", nextSortOrder(app, "estimate_alternates", "estimate", estimateID))
		if err := app.Save(record); err != nil {
			log.Printf("alternate_create: save failed: %v", err)
			return ErrorToast(e, http.StatusBadRequest, "Failed to add alternate")
		}

		SetToast(e, "success", "Alternate added")
		return recalculateAndRespond(e, app, estimateID, http.StatusCreated, "alternate_create")
	}
}

// HandleAlternateStatus records the client's decision on an alternate.
// Route: POST /estimates/{id}/alternates/{alternateId}/status
func HandleAlternateStatus(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		estimateID := e.Request.PathValue("id")
		record, ok := findEstimateChild(app, "estimate_alternates", estimateID, e.Request.PathValue("alternateId"))
		if !ok {
			return ErrorToast(e, http.StatusNotFound, "Alternate not found")
		}
		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid form data")
		}

		status := e.Request.FormValue("status")
		switch status {
		case "proposed", "accepted", "rejected":
		default:
			return ErrorToast(e, http.StatusBadRequest, "Status must be proposed, accepted or rejected")
		}
		record.Set("status", status)
		if err := app.Save(record); err != nil {
			log.Printf("alternate_status: save failed: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, "Failed to update alternate")
		}
		return recalculateAndRespond(e, app, estimateID, http.StatusOK, "alternate_status")
	}
}
