package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"buildledger/services"
	"buildledger/testhelpers"
)

func TestHandleBidComparison_JSON(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	proj := testhelpers.CreateTestProject(t, app, "Compare")
	pkg := testhelpers.CreateTestBidPackage(t, app, proj.Id, "BP-C-2026-001", 100000)
	testhelpers.CreateTestBid(t, app, pkg.Id, "Acme Drywall", 100000, "submitted")
	best := testhelpers.CreateTestBid(t, app, pkg.Id, "Best Walls", 95000, "submitted")
	testhelpers.CreateTestBid(t, app, pkg.Id, "Coastal Interiors", 110000, "submitted")

	best.Set("base_bid", 92000)
	best.Set("alternates_total", 3000)
	best.Set("score", 0)
	best.Set("scored", true)
	best.Set("notes", "Excludes patching")
	if err := app.Save(best); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.SetPathValue("id", pkg.Id)
	rec := runHandler(t, app, HandleBidComparison(app, services.DefaultPolicy()), req)

	var got comparisonPayload
	decodeJSON(t, rec, &got)
	if got.Count != 3 || got.Low != "95000.00" || got.High != "110000.00" {
		t.Errorf("stats: %+v", got)
	}
	if got.Average == nil || *got.Average != "101666.67" {
		t.Errorf("average = %v, want 101666.67", got.Average)
	}
	if got.Spread == nil || *got.Spread != "15000.00" {
		t.Errorf("spread = %v, want 15000.00", got.Spread)
	}

	wantOrder := []struct {
		name string
		band string
	}{
		{"Best Walls", "favorable"},
		{"Acme Drywall", "favorable"},
		{"Coastal Interiors", "caution"},
	}
	for i, w := range wantOrder {
		row := got.Rows[i]
		if row.SubcontractorName != w.name || row.Band != w.band || row.Rank != i+1 {
			t.Errorf("row %d = %+v, want %s/%s", i, row, w.name, w.band)
		}
	}
	if !got.Rows[0].IsLow || got.Rows[1].IsLow {
		t.Error("only the first row should be low")
	}

	low := got.Rows[0]
	if low.BaseBid != "92000.00" || low.Notes != "Excludes patching" {
		t.Errorf("low row = %+v", low)
	}
	if low.AlternatesTotal == nil || *low.AlternatesTotal != "3000.00" {
		t.Errorf("alternates_total = %v, want 3000.00", low.AlternatesTotal)
	}
	if low.Score == nil || *low.Score != "0.00" {
		t.Errorf("score = %v, want 0.00", low.Score)
	}
	if got.Rows[1].Score != nil || got.Rows[1].AlternatesTotal != nil {
		t.Errorf("unscored row should carry null score and alternates: %+v", got.Rows[1])
	}
}

func TestHandleBidComparison_ScoreColumn(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	proj := testhelpers.CreateTestProject(t, app, "Scores")
	pkg := testhelpers.CreateTestBidPackage(t, app, proj.Id, "BP-S-2026-001", 0)
	bid := testhelpers.CreateTestBid(t, app, pkg.Id, "Scored Sub", 60000, "submitted")
	bid.Set("score", 87)
	bid.Set("scored", true)
	if err := app.Save(bid); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.SetPathValue("id", pkg.Id)
	req.Header.Set("HX-Request", "true")
	rec := runHandler(t, app, HandleBidComparison(app, services.DefaultPolicy()), req)

	testhelpers.AssertHTMLContains(t, rec.Body.String(), "<th>Score</th>", `<td class="num">87</td>`)
}

func TestHandleBidComparison_NoBudget(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	proj := testhelpers.CreateTestProject(t, app, "No Budget")
	pkg := testhelpers.CreateTestBidPackage(t, app, proj.Id, "BP-N-2026-001", 0)
	testhelpers.CreateTestBid(t, app, pkg.Id, "Solo", 50000, "submitted")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.SetPathValue("id", pkg.Id)
	req.Header.Set("HX-Request", "true")
	rec := runHandler(t, app, HandleBidComparison(app, services.DefaultPolicy()), req)

	body := rec.Body.String()
	testhelpers.AssertHTMLContains(t, body, "Budget: not set", "Solo", "$50,000.00", "n/a", "/award")
	if bytes.Contains(rec.Body.Bytes(), []byte("Spread")) {
		t.Error("spread should be hidden for a single bid")
	}
}

func TestHandleBidAward_Exclusive(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	proj := testhelpers.CreateTestProject(t, app, "Award")
	pkg := testhelpers.CreateTestBidPackage(t, app, proj.Id, "BP-A-2026-001", 100000)
	a := testhelpers.CreateTestBid(t, app, pkg.Id, "Acme", 100000, "submitted")
	b := testhelpers.CreateTestBid(t, app, pkg.Id, "Best", 95000, "under_review")
	r := testhelpers.CreateTestBid(t, app, pkg.Id, "Rejected Co", 90000, "rejected")
	policy := services.DefaultPolicy()

	award := func(bidID string) int {
		req := newFormRequest("/", url.Values{}, map[string]string{"id": pkg.Id, "bidId": bidID})
		return runHandler(t, app, HandleBidAward(app, policy), req).Code
	}

	if code := award(a.Id); code != http.StatusOK {
		t.Fatalf("first award: expected 200, got %d", code)
	}
	if code := award(a.Id); code != http.StatusOK {
		t.Errorf("re-award same bid: expected 200, got %d", code)
	}
	if code := award(b.Id); code != http.StatusConflict {
		t.Errorf("second award: expected 409, got %d", code)
	}
	if code := award(r.Id); code != http.StatusConflict {
		t.Errorf("award rejected: expected 409, got %d", code)
	}
	if code := award("missing"); code != http.StatusNotFound {
		t.Errorf("award unknown bid: expected 404, got %d", code)
	}

	req := newFormRequest("/", url.Values{}, map[string]string{"id": pkg.Id, "bidId": b.Id})
	rec := runHandler(t, app, HandleBidWithdrawAward(app, policy), req)
	if rec.Code != http.StatusConflict {
		t.Errorf("withdraw unselected bid: expected 409, got %d", rec.Code)
	}

	req = newFormRequest("/", url.Values{}, map[string]string{"id": pkg.Id, "bidId": a.Id})
	rec = runHandler(t, app, HandleBidWithdrawAward(app, policy), req)
	if rec.Code != http.StatusOK {
		t.Fatalf("withdraw: expected 200, got %d", rec.Code)
	}
	if code := award(b.Id); code != http.StatusOK {
		t.Errorf("award after withdraw: expected 200, got %d", code)
	}

	bids, _ := services.LoadBids(app, pkg.Id)
	selected := 0
	for _, bid := range bids {
		if bid.Status == services.BidSelected {
			selected++
		}
	}
	if selected != 1 {
		t.Errorf("expected exactly one selected bid, got %d", selected)
	}
}

func TestHandleBidPackageCreate(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	proj := testhelpers.CreateTestProject(t, app, "Packages")
	proj.Set("reference_number", "PKG")
	if err := app.Save(proj); err != nil {
		t.Fatal(err)
	}
	policy := services.DefaultPolicy()

	for i, want := range []string{"001", "002"} {
		form := url.Values{"trade": {"Electrical"}, "budget_estimate": {"250000"}}
		req := newFormRequest("/", form, map[string]string{"projectId": proj.Id})
		rec := runHandler(t, app, HandleBidPackageCreate(app, policy), req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("create %d: expected 201, got %d: %s", i, rec.Code, rec.Body.String())
		}
		var got comparisonPayload
		decodeJSON(t, rec, &got)
		if len(got.PackageNumber) < 3 || got.PackageNumber[len(got.PackageNumber)-3:] != want {
			t.Errorf("package number = %s, want suffix %s", got.PackageNumber, want)
		}
		if got.BudgetEstimate == nil || *got.BudgetEstimate != "250000.00" {
			t.Errorf("budget = %v", got.BudgetEstimate)
		}
	}

	req := newFormRequest("/", url.Values{}, map[string]string{"projectId": proj.Id})
	rec := runHandler(t, app, HandleBidPackageCreate(app, policy), req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing trade: expected 400, got %d", rec.Code)
	}
}

func TestHandleBidCreateAndStatus(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	proj := testhelpers.CreateTestProject(t, app, "Bids")
	pkg := testhelpers.CreateTestBidPackage(t, app, proj.Id, "BP-B-2026-001", 0)
	sub := testhelpers.CreateTestSubcontractor(t, app, "Delta Electric")
	policy := services.DefaultPolicy()

	form := url.Values{"subcontractor": {sub.Id}, "base_bid": {"80000"}, "alternates_total": {"4500"}, "score": {"82"}}
	req := newFormRequest("/", form, map[string]string{"id": pkg.Id})
	rec := runHandler(t, app, HandleBidCreate(app, policy), req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var got comparisonPayload
	decodeJSON(t, rec, &got)
	if len(got.Rows) != 1 || got.Rows[0].TotalBid != "84500.00" || got.Rows[0].SubcontractorName != "Delta Electric" {
		t.Fatalf("unexpected rows: %+v", got.Rows)
	}
	if got.Rows[0].Score == nil || *got.Rows[0].Score != "82.00" {
		t.Errorf("score = %v, want 82.00", got.Rows[0].Score)
	}

	bidID := got.Rows[0].BidID
	req = newFormRequest("/", url.Values{"status": {"rejected"}}, map[string]string{"id": pkg.Id, "bidId": bidID})
	rec = runHandler(t, app, HandleBidStatus(app, policy), req)
	decodeJSON(t, rec, &got)
	if got.Rows[0].Status != "rejected" {
		t.Errorf("status = %s, want rejected", got.Rows[0].Status)
	}

	req = newFormRequest("/", url.Values{"status": {"selected"}}, map[string]string{"id": pkg.Id, "bidId": bidID})
	rec = runHandler(t, app, HandleBidStatus(app, policy), req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("selecting through status: expected 400, got %d", rec.Code)
	}
}

func TestHandleBidCreate_ZeroScore(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	proj := testhelpers.CreateTestProject(t, app, "Zero")
	pkg := testhelpers.CreateTestBidPackage(t, app, proj.Id, "BP-Z-2026-001", 0)
	scored := testhelpers.CreateTestSubcontractor(t, app, "Scored Zero")
	unscored := testhelpers.CreateTestSubcontractor(t, app, "No Score")
	policy := services.DefaultPolicy()

	for _, form := range []url.Values{
		{"subcontractor": {scored.Id}, "base_bid": {"70000"}, "score": {"0"}},
		{"subcontractor": {unscored.Id}, "base_bid": {"75000"}},
	} {
		req := newFormRequest("/", form, map[string]string{"id": pkg.Id})
		if rec := runHandler(t, app, HandleBidCreate(app, policy), req); rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.SetPathValue("id", pkg.Id)
	rec := runHandler(t, app, HandleBidComparison(app, policy), req)
	var got comparisonPayload
	decodeJSON(t, rec, &got)

	if got.Rows[0].SubcontractorName != "Scored Zero" || got.Rows[0].Score == nil || *got.Rows[0].Score != "0.00" {
		t.Errorf("zero score lost: %+v", got.Rows[0])
	}
	if got.Rows[1].Score != nil {
		t.Errorf("blank score should be null, got %v", *got.Rows[1].Score)
	}
}

func TestHandleBidExportExcel(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	proj := testhelpers.CreateTestProject(t, app, "Bid Export")
	pkg := testhelpers.CreateTestBidPackage(t, app, proj.Id, "BP-X-2026-001", 100000)
	testhelpers.CreateTestBid(t, app, pkg.Id, "Acme", 100000, "submitted")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.SetPathValue("id", pkg.Id)
	rec := runHandler(t, app, HandleBidExportExcel(app, services.DefaultPolicy()), req)

	if rec.Header().Get("Content-Type") != xlsxContentType {
		t.Errorf("content-type = %s", rec.Header().Get("Content-Type"))
	}
	if disp := rec.Header().Get("Content-Disposition"); disp != `attachment; filename="BP-X-2026-001_Comparison.xlsx"` {
		t.Errorf("Content-Disposition = %s", disp)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")) {
		t.Error("expected an xlsx (zip) body")
	}
}
