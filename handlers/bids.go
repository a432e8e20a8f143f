package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"buildledger/services"
	"buildledger/templates"
)

// comparisonResponse renders the ranked bids of a package.
func comparisonResponse(e *core.RequestEvent, app *pocketbase.PocketBase, policy services.Policy, packageID string, status int) error {
	data, err := services.BuildBidExportData(app, packageID, policy, time.Now())
	if err != nil {
		return ErrorToast(e, http.StatusNotFound, "Bid package not found")
	}
	return respond(e, status, newComparisonPayload(packageID, data), templates.BidComparisonTable(packageID, *data))
}

// HandleBidPackageCreate opens a numbered bid package for a project.
// Route: POST /projects/{projectId}/bid-packages
func HandleBidPackageCreate(app *pocketbase.PocketBase, policy services.Policy) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("projectId")
		if _, err := app.FindRecordById("projects", projectID); err != nil {
			return ErrorToast(e, http.StatusNotFound, "Project not found")
		}
		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid form data")
		}

		trade := strings.TrimSpace(e.Request.FormValue("trade"))
		if trade == "" {
			return ErrorToast(e, http.StatusBadRequest, "Trade is required")
		}
		budget, err := formFloat(e, "budget_estimate")
		if err != nil {
			return ErrorToast(e, http.StatusBadRequest, err.Error())
		}
		if budget < 0 {
			return ErrorToast(e, http.StatusBadRequest, "Budget cannot be negative")
		}

		pkg, err := services.CreateBidPackage(app, projectID, trade, budget, time.Now())
		if err != nil {
			return failWith(e, "bid_package_create", err)
		}

		SetToast(e, "success", "Bid package "+pkg.GetString("package_number")+" created")
		return comparisonResponse(e, app, policy, pkg.Id, http.StatusCreated)
	}
}

// HandleBidComparison ranks the bids of a package against its budget.
// Route: GET /bid-packages/{id}/comparison
func HandleBidComparison(app *pocketbase.PocketBase, policy services.Policy) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		return comparisonResponse(e, app, policy, e.Request.PathValue("id"), http.StatusOK)
	}
}

// HandleBidAward selects a bid. Only one bid per package may be selected.
// Route: POST /bid-packages/{id}/bids/{bidId}/award
func HandleBidAward(app *pocketbase.PocketBase, policy services.Policy) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		packageID := e.Request.PathValue("id")
		if _, err := app.FindRecordById("bid_packages", packageID); err != nil {
			return ErrorToast(e, http.StatusNotFound, "Bid package not found")
		}

		if err := services.AwardBidRecord(app, packageID, e.Request.PathValue("bidId")); err != nil {
			return failWith(e, "bid_award", err)
		}

		SetToast(e, "success", "Bid awarded")
		return comparisonResponse(e, app, policy, packageID, http.StatusOK)
	}
}

// HandleBidWithdrawAward returns the selected bid to review.
// Route: POST /bid-packages/{id}/bids/{bidId}/withdraw-award
func HandleBidWithdrawAward(app *pocketbase.PocketBase, policy services.Policy) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		packageID := e.Request.PathValue("id")
		if _, err := app.FindRecordById("bid_packages", packageID); err != nil {
			return ErrorToast(e, http.StatusNotFound, "Bid package not found")
		}

		if err := services.WithdrawAwardRecord(app, packageID, e.Request.PathValue("bidId")); err != nil {
			return failWith(e, "bid_withdraw_award", err)
		}

		SetToast(e, "info", "Award withdrawn")
		return comparisonResponse(e, app, policy, packageID, http.StatusOK)
	}
}

// HandleBidExportExcel downloads the comparison as a workbook.
// Route: GET /bid-packages/{id}/export/excel
func HandleBidExportExcel(app *pocketbase.PocketBase, policy services.Policy) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		data, err := services.BuildBidExportData(app, e.Request.PathValue("id"), policy, time.Now())
		if err != nil {
			log.Printf("bid_export: %v", err)
			return e.String(http.StatusNotFound, "Bid package not found")
		}

		xlsxBytes, err := services.GenerateBidComparisonExcel(*data)
		if err != nil {
			log.Printf("bid_export: failed to generate Excel: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to generate Excel file")
		}
		return sendFile(e, xlsxContentType, sanitizeFilename(data.PackageNumber)+"_Comparison.xlsx", xlsxBytes)
	}
}

// HandleBidCreate records a subcontractor's bid on a package. The stored
// total is base plus alternates.
// Route: POST /bid-packages/{id}/bids
func HandleBidCreate(app *pocketbase.PocketBase, policy services.Policy) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		packageID := e.Request.PathValue("id")
		if _, err := app.FindRecordById("bid_packages", packageID); err != nil {
			return ErrorToast(e, http.StatusNotFound, "Bid package not found")
		}
		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid form data")
		}

		subID := e.Request.FormValue("subcontractor")
		if _, err := app.FindRecordById("subcontractors", subID); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Subcontractor not found")
		}
		values := map[string]float64{}
		for _, f := range []string{"base_bid", "alternates_total", "score"} {
			v, err := formFloat(e, f)
			if err != nil {
				return ErrorToast(e, http.StatusBadRequest, err.Error())
			}
			values[f] = v
		}
		if values["base_bid"] <= 0 {
			return ErrorToast(e, http.StatusBadRequest, "Base bid must be greater than zero")
		}
		if values["score"] < 0 || values["score"] > 100 {
			return ErrorToast(e, http.StatusBadRequest, "Score must be between 0 and 100")
		}

		alternates := services.Dec(values["alternates_total"])
		total := services.Dec(values["base_bid"]).Add(alternates)

		col, err := app.FindCollectionByNameOrId("bids")
		if err != nil {
			return failWith(e, "bid_create", err)
		}
		record := core.NewRecord(col)
		record.Set("bid_package", packageID)
		record.Set("subcontractor", subID)
		record.Set("base_bid", values["base_bid"])
		record.Set("alternates_total", values["alternates_total"])
		record.Set("total_bid", total.InexactFloat64())
		record.Set("status", string(services.BidSubmitted))
		record.Set("is_compliant", e.Request.FormValue("is_compliant") == "true" || e.Request.FormValue("is_compliant") == "on")
		record.Set("score", values["score"])
		record.Set("scored", strings.TrimSpace(e.Request.FormValue("score")) != "")
		record.Set("notes", strings.TrimSpace(e.Request.FormValue("notes")))
		if err := app.Save(record); err != nil {
			log.Printf("bid_create: save failed: %v", err)
			return ErrorToast(e, http.StatusBadRequest, "Failed to record bid")
		}

		SetToast(e, "success", "Bid recorded")
		return comparisonResponse(e, app, policy, packageID, http.StatusCreated)
	}
}

// HandleBidStatus moves a bid between submitted, under review and rejected.
// Selection only happens through award.
// Route: POST /bid-packages/{id}/bids/{bidId}/status
func HandleBidStatus(app *pocketbase.PocketBase, policy services.Policy) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		packageID := e.Request.PathValue("id")
		bid, err := app.FindRecordById("bids", e.Request.PathValue("bidId"))
		if err != nil || bid.GetString("bid_package") != packageID {
			return ErrorToast(e, http.StatusNotFound, "Bid not found")
		}
		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid form data")
		}

		status := services.BidStatus(e.Request.FormValue("status"))
		switch status {
		case services.BidSubmitted, services.BidUnderReview, services.BidRejected:
		default:
			return ErrorToast(e, http.StatusBadRequest, "Status must be submitted, under_review or rejected")
		}
		if services.BidStatus(bid.GetString("status")) == services.BidSelected {
			return ErrorToast(e, http.StatusConflict, "Withdraw the award before changing this bid")
		}

		bid.Set("status", string(status))
		if err := app.Save(bid); err != nil {
			log.Printf("bid_status: save failed: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, "Failed to update bid")
		}
		return comparisonResponse(e, app, policy, packageID, http.StatusOK)
	}
}
