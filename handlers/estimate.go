package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"buildledger/services"
	"buildledger/templates"
)

// estimateTotalsResponse renders the stored estimate's totals after inputs
// have been loaded.
func estimateTotalsResponse(e *core.RequestEvent, status int, in *services.EstimateInputs, totals services.EstimateTotals) error {
	data := templates.EstimateTotalsData{
		EstimateID: in.Estimate.Id,
		Title:      in.Estimate.GetString("title"),
		Totals:     totals,
		Sections:   services.SectionSubtotals(in.LineItems),
	}
	return respond(e, status, newEstimateTotalsPayload(in.Estimate.Id, totals), templates.EstimateTotalsCard(data))
}

// recalculateAndRespond recomputes and stores an estimate's cached totals
// after one of its children changed, then renders them.
func recalculateAndRespond(e *core.RequestEvent, app *pocketbase.PocketBase, estimateID string, status int, tag string) error {
	if _, err := services.RecalculateEstimate(app, estimateID); err != nil {
		return failWith(e, tag, err)
	}
	in, err := services.LoadEstimateInputs(app, estimateID)
	if err != nil {
		return failWith(e, tag, err)
	}
	return estimateTotalsResponse(e, status, in, in.Totals())
}

// HandleEstimateCreate creates a draft estimate for a project. The tax rate
// defaults to the policy rate when the form leaves it blank.
// Route: POST /projects/{projectId}/estimates
func HandleEstimateCreate(app *pocketbase.PocketBase, policy services.Policy) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("projectId")
		if _, err := app.FindRecordById("projects", projectID); err != nil {
			return ErrorToast(e, http.StatusNotFound, "Project not found")
		}

		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid form data")
		}

		title := strings.TrimSpace(e.Request.FormValue("title"))
		if title == "" {
			return ErrorToast(e, http.StatusBadRequest, "Title is required")
		}

		discountType := services.DiscountType(e.Request.FormValue("discount_type"))
		if discountType == "" {
			discountType = services.DiscountPercent
		}
		if discountType != services.DiscountPercent && discountType != services.DiscountFixed {
			return ErrorToast(e, http.StatusBadRequest, "Discount type must be percent or fixed")
		}
		discountValue, err := formFloat(e, "discount_value")
		if err != nil {
			return ErrorToast(e, http.StatusBadRequest, err.Error())
		}

		taxRate := policy.Estimate.DefaultTaxRate
		if strings.TrimSpace(e.Request.FormValue("tax_rate")) != "" {
			if taxRate, err = formFloat(e, "tax_rate"); err != nil {
				return ErrorToast(e, http.StatusBadRequest, err.Error())
			}
		}

		col, err := app.FindCollectionByNameOrId("estimates")
		if err != nil {
			return failWith(e, "estimate_create", err)
		}
		record := core.NewRecord(col)
		record.Set("project", projectID)
		record.Set("title", title)
		record.Set("status", "draft")
		record.Set("discount_type", string(discountType))
		record.Set("discount_value", discountValue)
		record.Set("tax_rate", taxRate)
		if err := app.Save(record); err != nil {
			log.Printf("estimate_create: save failed: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, "Failed to create estimate")
		}

		SetToast(e, "success", "Estimate created")
		return recalculateAndRespond(e, app, record.Id, http.StatusCreated, "estimate_create")
	}
}

// HandleEstimateUpdate changes an estimate's status, discount or tax rate. The
// cached totals are recalculated either way.
// Route: POST /estimates/{id}
func HandleEstimateUpdate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		record, err := app.FindRecordById("estimates", id)
		if err != nil {
			return ErrorToast(e, http.StatusNotFound, "Estimate not found")
		}
		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid form data")
		}

		if status := e.Request.FormValue("status"); status != "" {
			switch status {
			case "draft", "sent", "accepted", "declined":
				record.Set("status", status)
			default:
				return ErrorToast(e, http.StatusBadRequest, "Unknown estimate status")
			}
		}
		if dt := e.Request.FormValue("discount_type"); dt != "" {
			if dt != string(services.DiscountPercent) && dt != string(services.DiscountFixed) {
				return ErrorToast(e, http.StatusBadRequest, "Discount type must be percent or fixed")
			}
			record.Set("discount_type", dt)
		}
		for _, field := range []string{"discount_value", "tax_rate"} {
			if strings.TrimSpace(e.Request.FormValue(field)) == "" {
				continue
			}
			v, err := formFloat(e, field)
			if err != nil {
				return ErrorToast(e, http.StatusBadRequest, err.Error())
			}
			record.Set(field, v)
		}

		if err := app.Save(record); err != nil {
			log.Printf("estimate_update: save failed: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, "Failed to update estimate")
		}
		return recalculateAndRespond(e, app, id, http.StatusOK, "estimate_update")
	}
}

// HandleEstimateTotals returns the derived totals of an estimate. Nothing is
// written.
// Route: GET /estimates/{id}/totals
func HandleEstimateTotals(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		in, err := services.LoadEstimateInputs(app, e.Request.PathValue("id"))
		if err != nil {
			return ErrorToast(e, http.StatusNotFound, "Estimate not found")
		}
		return estimateTotalsResponse(e, http.StatusOK, in, in.Totals())
	}
}

// HandleEstimateRecalculate refreshes the cached totals of an estimate.
// Route: POST /estimates/{id}/recalculate
func HandleEstimateRecalculate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		if _, err := app.FindRecordById("estimates", id); err != nil {
			return ErrorToast(e, http.StatusNotFound, "Estimate not found")
		}
		SetToast(e, "success", "Totals recalculated")
		return recalculateAndRespond(e, app, id, http.StatusOK, "estimate_recalculate")
	}
}
