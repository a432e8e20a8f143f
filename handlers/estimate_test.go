package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"buildledger/services"
	"buildledger/testhelpers"
)

func TestHandleEstimateTotals_JSON(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	proj := testhelpers.CreateTestProject(t, app, "Totals")
	est := testhelpers.CreateTestEstimate(t, app, proj.Id, "draft", 10, 8)
	testhelpers.CreateTestLineItem(t, app, est.Id, 1, "Drywall", 2, 500, false)
	testhelpers.CreateTestLineItem(t, app, est.Id, 2, "Skylight", 1, 900, true)
	testhelpers.CreateTestAllowance(t, app, est.Id, "Fixtures", 1000)
	testhelpers.CreateTestAlternate(t, app, est.Id, "Vinyl", "deduct", 100, "accepted")

	req := httptest.NewRequest(http.MethodGet, "/estimates/"+est.Id+"/totals", nil)
	req.SetPathValue("id", est.Id)
	rec := runHandler(t, app, HandleEstimateTotals(app), req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got estimateTotalsPayload
	decodeJSON(t, rec, &got)

	want := estimateTotalsPayload{
		EstimateID:              est.Id,
		RequiredSubtotal:        "1000.00",
		OptionalSubtotal:        "900.00",
		AllowancesTotal:         "1000.00",
		Subtotal:                "2000.00",
		Discount:                "200.00",
		AfterDiscount:           "1800.00",
		Tax:                     "144.00",
		AcceptedAlternatesTotal: "-100.00",
		Total:                   "1844.00",
	}
	if got != want {
		t.Errorf("totals = %+v\nwant %+v", got, want)
	}

	// GET never writes the cache.
	stored, _ := app.FindRecordById("estimates", est.Id)
	if stored.GetFloat("total") != 0 {
		t.Errorf("GET totals wrote cache: total = %v", stored.GetFloat("total"))
	}
}

func TestHandleEstimateTotals_HTMX(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	proj := testhelpers.CreateTestProject(t, app, "Totals HTMX")
	est := testhelpers.CreateTestEstimate(t, app, proj.Id, "draft", 0, 0)
	testhelpers.CreateTestLineItem(t, app, est.Id, 1, "Framing", 10, 125.5, false)

	req := httptest.NewRequest(http.MethodGet, "/estimates/"+est.Id+"/totals", nil)
	req.SetPathValue("id", est.Id)
	req.Header.Set("HX-Request", "true")
	rec := runHandler(t, app, HandleEstimateTotals(app), req)

	testhelpers.AssertHTMLContains(t, rec.Body.String(),
		`id="estimate-totals"`,
		"Test Estimate",
		"$1,255.00",
		"grand-total",
	)
}

func TestHandleEstimateTotals_NotFound(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/estimates/missing/totals", nil)
	req.SetPathValue("id", "missing")
	rec := runHandler(t, app, HandleEstimateTotals(app), req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestHandleLineItemCreate_RecalculatesCache(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	proj := testhelpers.CreateTestProject(t, app, "Add Line")
	est := testhelpers.CreateTestEstimate(t, app, proj.Id, "draft", 0, 10)

	form := url.Values{"description": {"Paint"}, "quantity": {"4"}, "unit_price": {"$1,000"}}
	req := newFormRequest("/estimates/"+est.Id+"/line-items", form, map[string]string{"id": est.Id})
	rec := runHandler(t, app, HandleLineItemCreate(app), req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var got estimateTotalsPayload
	decodeJSON(t, rec, &got)
	if got.Total != "4400.00" {
		t.Errorf("total = %s, want 4400.00", got.Total)
	}

	stored, _ := app.FindRecordById("estimates", est.Id)
	if stored.GetFloat("total") != 4400 {
		t.Errorf("cached total = %v, want 4400", stored.GetFloat("total"))
	}
}

func TestHandleLineItemCreate_Validation(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	proj := testhelpers.CreateTestProject(t, app, "Validate Line")
	est := testhelpers.CreateTestEstimate(t, app, proj.Id, "draft", 0, 0)

	tests := []struct {
		name string
		form url.Values
	}{
		{"missing description", url.Values{"quantity": {"1"}, "unit_price": {"1"}}},
		{"negative quantity", url.Values{"description": {"X"}, "quantity": {"-1"}, "unit_price": {"1"}}},
		{"non-numeric price", url.Values{"description": {"X"}, "quantity": {"1"}, "unit_price": {"abc"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := newFormRequest("/estimates/"+est.Id+"/line-items", tt.form, map[string]string{"id": est.Id})
			rec := runHandler(t, app, HandleLineItemCreate(app), req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestHandleLineItemUpdateAndDelete(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	proj := testhelpers.CreateTestProject(t, app, "Edit Line")
	est := testhelpers.CreateTestEstimate(t, app, proj.Id, "draft", 0, 0)
	item := testhelpers.CreateTestLineItem(t, app, est.Id, 1, "Doors", 2, 300, false)
	other := testhelpers.CreateTestEstimate(t, app, proj.Id, "draft", 0, 0)

	form := url.Values{"description": {"Doors"}, "quantity": {"3"}, "unit_price": {"300"}, "is_optional": {"on"}}
	req := newFormRequest("/", form, map[string]string{"id": est.Id, "itemId": item.Id})
	rec := runHandler(t, app, HandleLineItemUpdate(app), req)
	var got estimateTotalsPayload
	decodeJSON(t, rec, &got)
	if got.OptionalSubtotal != "900.00" || got.Total != "0.00" {
		t.Errorf("after update optional=%s total=%s", got.OptionalSubtotal, got.Total)
	}

	// Items are scoped to their estimate.
	req = httptest.NewRequest(http.MethodDelete, "/", nil)
	req.SetPathValue("id", other.Id)
	req.SetPathValue("itemId", item.Id)
	rec = runHandler(t, app, HandleLineItemDelete(app), req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("cross-estimate delete: expected 404, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/", nil)
	req.SetPathValue("id", est.Id)
	req.SetPathValue("itemId", item.Id)
	rec = runHandler(t, app, HandleLineItemDelete(app), req)
	if rec.Code != http.StatusOK {
		t.Errorf("delete: expected 200, got %d", rec.Code)
	}
	if _, err := app.FindRecordById("estimate_line_items", item.Id); err == nil {
		t.Error("line item should be deleted")
	}
}

func TestHandleAlternateCreateAndStatus(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	proj := testhelpers.CreateTestProject(t, app, "Alternates")
	est := testhelpers.CreateTestEstimate(t, app, proj.Id, "draft", 0, 0)
	testhelpers.CreateTestLineItem(t, app, est.Id, 1, "Base", 1, 10000, false)

	form := url.Values{"name": {"Upgrade"}, "kind": {"add"}, "amount": {"-2500"}}
	req := newFormRequest("/", form, map[string]string{"id": est.Id})
	rec := runHandler(t, app, HandleAlternateCreate(app), req)
	var got estimateTotalsPayload
	decodeJSON(t, rec, &got)
	if got.Total != "10000.00" {
		t.Errorf("proposed alternate changed total: %s", got.Total)
	}

	alts, _ := app.FindAllRecords("estimate_alternates")
	if len(alts) != 1 || alts[0].GetFloat("amount") != 2500 {
		t.Fatalf("expected one alternate stored unsigned, got %v", alts)
	}

	req = newFormRequest("/", url.Values{"status": {"accepted"}}, map[string]string{"id": est.Id, "alternateId": alts[0].Id})
	rec = runHandler(t, app, HandleAlternateStatus(app), req)
	decodeJSON(t, rec, &got)
	if got.Total != "12500.00" {
		t.Errorf("accepted alternate total = %s, want 12500.00", got.Total)
	}

	req = newFormRequest("/", url.Values{"status": {"maybe"}}, map[string]string{"id": est.Id, "alternateId": alts[0].Id})
	rec = runHandler(t, app, HandleAlternateStatus(app), req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad status: expected 400, got %d", rec.Code)
	}
}

func TestHandleAllowanceCreate_StatusDoesNotGateTotal(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	proj := testhelpers.CreateTestProject(t, app, "Allowances")
	est := testhelpers.CreateTestEstimate(t, app, proj.Id, "draft", 0, 0)

	for _, status := range []string{"pending", "finalized"} {
		form := url.Values{"name": {"Allowance " + status}, "amount": {"500"}, "status": {status}}
		req := newFormRequest("/", form, map[string]string{"id": est.Id})
		runHandler(t, app, HandleAllowanceCreate(app), req)
	}

	in, err := services.LoadEstimateInputs(app, est.Id)
	if err != nil {
		t.Fatal(err)
	}
	if got := in.Totals().Total.StringFixed(2); got != "1000.00" {
		t.Errorf("total = %s, want 1000.00", got)
	}
}

func TestHandleEstimateCreate_DefaultTaxRate(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	proj := testhelpers.CreateTestProject(t, app, "New Estimate")

	policy := services.DefaultPolicy()
	policy.Estimate.DefaultTaxRate = 7.5

	req := newFormRequest("/", url.Values{"title": {"Phase 2"}}, map[string]string{"projectId": proj.Id})
	rec := runHandler(t, app, HandleEstimateCreate(app, policy), req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var got estimateTotalsPayload
	decodeJSON(t, rec, &got)
	stored, err := app.FindRecordById("estimates", got.EstimateID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.GetFloat("tax_rate") != 7.5 || stored.GetString("status") != "draft" {
		t.Errorf("tax_rate=%v status=%s", stored.GetFloat("tax_rate"), stored.GetString("status"))
	}
}

func TestHandleEstimateUpdate(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	proj := testhelpers.CreateTestProject(t, app, "Update Estimate")
	est := testhelpers.CreateTestEstimate(t, app, proj.Id, "draft", 0, 0)
	testhelpers.CreateTestLineItem(t, app, est.Id, 1, "Base", 1, 2000, false)

	form := url.Values{"status": {"accepted"}, "discount_type": {"fixed"}, "discount_value": {"75"}}
	req := newFormRequest("/", form, map[string]string{"id": est.Id})
	rec := runHandler(t, app, HandleEstimateUpdate(app), req)

	var got estimateTotalsPayload
	decodeJSON(t, rec, &got)
	if got.Total != "1925.00" {
		t.Errorf("total = %s, want 1925.00", got.Total)
	}
	stored, _ := app.FindRecordById("estimates", est.Id)
	if stored.GetString("status") != "accepted" {
		t.Errorf("status = %s", stored.GetString("status"))
	}

	req = newFormRequest("/", url.Values{"status": {"won"}}, map[string]string{"id": est.Id})
	rec = runHandler(t, app, HandleEstimateUpdate(app), req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown status: expected 400, got %d", rec.Code)
	}
}
