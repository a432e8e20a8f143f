package handlers

import (
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"buildledger/services"
	"buildledger/templates"
)

// sovResponse renders a schedule of values with every derived figure.
func sovResponse(e *core.RequestEvent, app *pocketbase.PocketBase, sovID string, status int) error {
	data, err := services.BuildSOVExportData(app, sovID)
	if err != nil {
		return ErrorToast(e, http.StatusNotFound, "Schedule of values not found")
	}
	view := templates.SOVViewData{
		SOVID: sovID,
		Data:  *data,
		Rules: services.EditRulesFor(data.Status),
	}
	return respond(e, status, newSOVPayload(sovID, data), templates.SOVView(view))
}

// HandleSOVCreate seeds a draft schedule of values from an accepted estimate.
// Route: POST /estimates/{id}/sov
func HandleSOVCreate(app *pocketbase.PocketBase, policy services.Policy) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		estimateID := e.Request.PathValue("id")
		if _, err := app.FindRecordById("estimates", estimateID); err != nil {
			return ErrorToast(e, http.StatusNotFound, "Estimate not found")
		}

		sov, err := services.CreateSOVFromEstimate(app, estimateID, policy)
		if err != nil {
			return failWith(e, "sov_create", err)
		}

		SetToast(e, "success", "Schedule of values created")
		return sovResponse(e, app, sov.Id, http.StatusCreated)
	}
}

// HandleSOVView returns a schedule of values.
// Route: GET /sov/{id}
func HandleSOVView(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		return sovResponse(e, app, e.Request.PathValue("id"), http.StatusOK)
	}
}

// HandleSOVTransition moves a schedule of values forward in its lifecycle.
// Route: POST /sov/{id}/transition
func HandleSOVTransition(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		if _, err := app.FindRecordById("schedules_of_values", id); err != nil {
			return ErrorToast(e, http.StatusNotFound, "Schedule of values not found")
		}
		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid form data")
		}

		to := services.SOVStatus(e.Request.FormValue("to"))
		if to == services.SOVRevised {
			return ErrorToast(e, http.StatusBadRequest, "Use revise to open a new version")
		}
		if _, err := services.TransitionSOV(app, id, to); err != nil {
			return failWith(e, "sov_transition", err)
		}

		SetToast(e, "success", "Schedule of values is now "+string(to))
		return sovResponse(e, app, id, http.StatusOK)
	}
}

// HandleSOVRevise closes an approved schedule of values and opens the next
// draft version. The response is the new draft.
// Route: POST /sov/{id}/revise
func HandleSOVRevise(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		if _, err := app.FindRecordById("schedules_of_values", id); err != nil {
			return ErrorToast(e, http.StatusNotFound, "Schedule of values not found")
		}

		draft, err := services.ReviseSOV(app, id)
		if err != nil {
			return failWith(e, "sov_revise", err)
		}

		SetToast(e, "success", "New revision opened")
		return sovResponse(e, app, draft.Id, http.StatusCreated)
	}
}

// HandleSOVClosePeriod rolls this period's billing into previous billing.
// Route: POST /sov/{id}/close-period
func HandleSOVClosePeriod(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		if _, err := app.FindRecordById("schedules_of_values", id); err != nil {
			return ErrorToast(e, http.StatusNotFound, "Schedule of values not found")
		}

		if _, err := services.ClosePeriodSOV(app, id); err != nil {
			return failWith(e, "sov_close_period", err)
		}
		if _, err := services.RecalculateSOV(app, id); err != nil {
			log.Printf("sov_close_period: recalculate %s: %v", id, err)
		}

		SetToast(e, "success", "Billing period closed")
		return sovResponse(e, app, id, http.StatusOK)
	}
}
