package collections_test

import (
	"math"
	"testing"

	"buildledger/collections"
	"buildledger/services"
	"buildledger/testhelpers"
)

func TestSeed_CreatesData(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	if err := collections.Seed(app); err != nil {
		t.Fatalf("Seed() error: %v", err)
	}

	projects, err := app.FindAllRecords("projects")
	if err != nil {
		t.Fatalf("query projects error: %v", err)
	}
	if len(projects) != 1 {
		t.Fatalf("expected 1 project, got %d", len(projects))
	}
	if projects[0].GetString("name") != "Harbor Street Clinic" {
		t.Errorf("project name = %q, want %q", projects[0].GetString("name"), "Harbor Street Clinic")
	}

	counts := map[string]int{
		"estimates":           1,
		"estimate_line_items": 7,
		"estimate_allowances": 2,
		"estimate_alternates": 3,
		"schedules_of_values": 1,
		"sov_line_items":      7,
		"bid_packages":        1,
		"bids":                3,
		"subcontractors":      3,
	}
	for name, want := range counts {
		records, _ := app.FindAllRecords(name)
		if len(records) != want {
			t.Errorf("%s: expected %d records, got %d", name, want, len(records))
		}
	}

	estimates, _ := app.FindAllRecords("estimates")
	if estimates[0].GetString("project") != projects[0].Id {
		t.Errorf("estimate project = %q, want %q", estimates[0].GetString("project"), projects[0].Id)
	}
}

func TestSeed_Idempotent(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	if err := collections.Seed(app); err != nil {
		t.Fatalf("first Seed() error: %v", err)
	}
	if err := collections.Seed(app); err != nil {
		t.Fatalf("second Seed() error: %v", err)
	}

	estimates, _ := app.FindAllRecords("estimates")
	if len(estimates) != 1 {
		t.Errorf("expected 1 estimate after two seeds, got %d", len(estimates))
	}
}

func TestSeed_TotalsAfterMigration(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	if err := collections.Seed(app); err != nil {
		t.Fatalf("Seed() error: %v", err)
	}
	if err := services.MigrateStaleTotals(app); err != nil {
		t.Fatalf("MigrateStaleTotals() error: %v", err)
	}

	estimates, _ := app.FindAllRecords("estimates")
	// 78790 required + 30500 allowances, 5% off, 8.25% tax, +4200 -3500 alternates.
	if got := estimates[0].GetFloat("total"); math.Abs(got-113091.10) > 0.001 {
		t.Errorf("estimate total = %v, want 113091.10", got)
	}
	if got := estimates[0].GetFloat("subtotal"); math.Abs(got-109290) > 0.001 {
		t.Errorf("estimate subtotal = %v, want 109290", got)
	}

	sovs, _ := app.FindAllRecords("schedules_of_values")
	if got := sovs[0].GetFloat("total_contract_amount"); math.Abs(got-109840) > 0.001 {
		t.Errorf("sov total_contract_amount = %v, want 109840", got)
	}
}
