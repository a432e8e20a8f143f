package collections

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// ── Definition structs ───────────────────────────────────────────────────

type lineItemDef struct {
	section     string
	description string
	quantity    float64
	unitPrice   float64
	optional    bool
}

type allowanceDef struct {
	name   string
	amount float64
	status string
}

type alternateDef struct {
	name   string
	kind   string
	amount float64
	status string
}

type sovLineDef struct {
	itemNumber      string
	description     string
	scheduledValue  float64
	approvedChanges float64
	previousBilled  float64
	currentBilled   float64
}

type bidDef struct {
	subcontractor string
	contact       string
	baseBid       float64
	alternates    float64
	status        string
	compliant     bool
	score         float64
	notes         string
}

// Seed inserts a demo project with an accepted estimate, an approved schedule
// of values in its second billing period and an open drywall bid package.
// Cached totals are left at zero; the caller runs the totals migration after
// seeding.
func Seed(app *pocketbase.PocketBase) error {
	// ── idempotency: skip if projects already exist ──────────────────
	projectsCol, err := app.FindCollectionByNameOrId("projects")
	if err != nil {
		return fmt.Errorf("seed: could not find projects collection: %w", err)
	}
	existing, err := app.FindAllRecords(projectsCol)
	if err != nil {
		return fmt.Errorf("seed: could not query projects: %w", err)
	}
	if len(existing) > 0 {
		return nil // already seeded
	}

	log.Println("seed: projects collection is empty – inserting seed data …")

	cols := make(map[string]*core.Collection)
	for _, name := range []string{
		"estimates", "estimate_line_items", "estimate_allowances", "estimate_alternates",
		"schedules_of_values", "sov_line_items", "subcontractors", "bid_packages", "bids",
	} {
		col, err := app.FindCollectionByNameOrId(name)
		if err != nil {
			return fmt.Errorf("seed: could not find %s collection: %w", name, err)
		}
		cols[name] = col
	}

	save := func(col string, fields map[string]any) (*core.Record, error) {
		r := core.NewRecord(cols[col])
		for k, v := range fields {
			r.Set(k, v)
		}
		if err := app.Save(r); err != nil {
			return nil, fmt.Errorf("seed: save %s: %w", col, err)
		}
		return r, nil
	}

	// ── project ──────────────────────────────────────────────────────
	project := core.NewRecord(projectsCol)
	project.Set("name", "Harbor Street Clinic")
	project.Set("client_name", "Harbor Health Partners")
	project.Set("reference_number", "HSC")
	project.Set("status", "active")
	if err := app.Save(project); err != nil {
		return fmt.Errorf("seed: save project: %w", err)
	}

	// ── estimate ─────────────────────────────────────────────────────
	estimate, err := save("estimates", map[string]any{
		"project":        project.Id,
		"title":          "Clinic Tenant Improvement",
		"status":         "accepted",
		"discount_type":  "percent",
		"discount_value": 5,
		"tax_rate":       8.25,
	})
	if err != nil {
		return err
	}

	lineItems := []lineItemDef{
		{"Demolition", "Remove existing partitions and ceiling", 1, 6800, false},
		{"Framing", "Metal stud partitions", 2400, 9.75, false},
		{"Framing", "Blocking for casework and grab bars", 1, 1850, false},
		{"Drywall", "Hang, tape and finish Level 4", 5200, 3.4, false},
		{"Doors", "Hollow metal frames with solid core doors", 14, 1150, false},
		{"Finishes", "Sheet vinyl in exam rooms", 1800, 7.2, false},
		{"Finishes", "Acoustic ceiling tile upgrade", 3100, 1.85, true},
	}
	for i, li := range lineItems {
		if _, err := save("estimate_line_items", map[string]any{
			"estimate":    estimate.Id,
			"sort_order":  i + 1,
			"section":     li.section,
			"description": li.description,
			"quantity":    li.quantity,
			"unit_price":  li.unitPrice,
			"is_optional": li.optional,
		}); err != nil {
			return err
		}
	}

	allowances := []allowanceDef{
		{"Light fixtures", 12000, "selected"},
		{"Exam room casework", 18500, "pending"},
	}
	for i, a := range allowances {
		if _, err := save("estimate_allowances", map[string]any{
			"estimate":   estimate.Id,
			"sort_order": i + 1,
			"name":       a.name,
			"amount":     a.amount,
			"status":     a.status,
		}); err != nil {
			return err
		}
	}

	alternates := []alternateDef{
		{"Add sound insulation at exam rooms", "add", 4200, "accepted"},
		{"Deduct: owner-furnished reception desk", "deduct", 3500, "accepted"},
		{"Add glass storefront at entry", "add", 9800, "proposed"},
	}
	for i, a := range alternates {
		if _, err := save("estimate_alternates", map[string]any{
			"estimate":   estimate.Id,
			"sort_order": i + 1,
			"name":       a.name,
			"kind":       a.kind,
			"amount":     a.amount,
			"status":     a.status,
		}); err != nil {
			return err
		}
	}

	// ── schedule of values ───────────────────────────────────────────
	sov, err := save("schedules_of_values", map[string]any{
		"project":            project.Id,
		"estimate":           estimate.Id,
		"title":              "Clinic Tenant Improvement",
		"status":             "approved",
		"version":            1,
		"version_group":      uuid.NewString(),
		"application_number": 2,
		"period_to":          "2026-09-30",
	})
	if err != nil {
		return err
	}

	sovLines := []sovLineDef{
		{"1", "Demolition", 6800, 0, 6800, 0},
		{"2", "Framing and blocking", 25250, 1200, 12000, 8500},
		{"3", "Drywall", 17680, 0, 0, 9000},
		{"4", "Doors and frames", 16100, -650, 0, 4000},
		{"5", "Finishes", 12960, 0, 0, 0},
		{"6", "Allowance: Light fixtures", 12000, 0, 0, 3000},
		{"7", "Allowance: Exam room casework", 18500, 0, 0, 0},
	}
	for i, l := range sovLines {
		if _, err := save("sov_line_items", map[string]any{
			"sov":               sov.Id,
			"sort_order":        i + 1,
			"item_number":       l.itemNumber,
			"description":       l.description,
			"scheduled_value":   l.scheduledValue,
			"approved_changes":  l.approvedChanges,
			"previous_billed":   l.previousBilled,
			"current_billed":    l.currentBilled,
			"retainage_percent": 10,
		}); err != nil {
			return err
		}
	}

	// ── bid package ──────────────────────────────────────────────────
	pkg, err := save("bid_packages", map[string]any{
		"project":         project.Id,
		"package_number":  "BP-HSC-2026-001",
		"trade":           "Drywall",
		"budget_estimate": 100000,
		"status":          "open",
	})
	if err != nil {
		return err
	}

	bids := []bidDef{
		{"Acme Drywall", "Dana Ortiz", 100000, 0, "submitted", true, 78, ""},
		{"Best Walls Inc.", "Sam Lee", 92500, 2500, "under_review", true, 85, "Excludes weekend work"},
		{"Coastal Interiors", "Jordan Price", 110000, 0, "submitted", false, 0, "Missing bond"},
	}
	for _, b := range bids {
		sub, err := save("subcontractors", map[string]any{
			"name":         b.subcontractor,
			"trade":        "Drywall",
			"contact_name": b.contact,
		})
		if err != nil {
			return err
		}
		if _, err := save("bids", map[string]any{
			"bid_package":      pkg.Id,
			"subcontractor":    sub.Id,
			"base_bid":         b.baseBid,
			"alternates_total": b.alternates,
			"total_bid":        b.baseBid + b.alternates,
			"status":           b.status,
			"is_compliant":     b.compliant,
			"score":            b.score,
			"scored":           b.score > 0,
			"notes":            b.notes,
		}); err != nil {
			return err
		}
	}

	log.Println("seed: done.")
	return nil
}
