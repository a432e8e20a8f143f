// Package testhelpers provides utilities for testing PocketBase-based applications.
package testhelpers

import (
	"strconv"
	"strings"
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"buildledger/collections"
)

// NewTestApp creates a PocketBase instance backed by a temporary directory.
// It bootstraps the app and runs collections.Setup to create all tables.
// The temporary directory is cleaned up automatically when the test finishes.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	tmpDir := t.TempDir()
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: tmpDir,
	})

	if err := app.Bootstrap(); err != nil {
		t.Fatalf("failed to bootstrap test app: %v", err)
	}

	collections.Setup(app)

	return app
}

// createRecord saves a record with the given fields or fails the test.
func createRecord(t *testing.T, app *pocketbase.PocketBase, collection string, fields map[string]any) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId(collection)
	if err != nil {
		t.Fatalf("failed to find %s collection: %v", collection, err)
	}

	record := core.NewRecord(col)
	for k, v := range fields {
		record.Set(k, v)
	}

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test %s record: %v", collection, err)
	}

	return record
}

// CreateTestProject creates a project record with the given name and returns it.
func CreateTestProject(t *testing.T, app *pocketbase.PocketBase, name string) *core.Record {
	t.Helper()
	return createRecord(t, app, "projects", map[string]any{
		"name":   name,
		"status": "active",
	})
}

// CreateTestEstimate creates an estimate with a percent discount and tax rate.
func CreateTestEstimate(t *testing.T, app *pocketbase.PocketBase, projectID, status string, discountPercent, taxRate float64) *core.Record {
	t.Helper()
	return createRecord(t, app, "estimates", map[string]any{
		"project":        projectID,
		"title":          "Test Estimate",
		"status":         status,
		"discount_type":  "percent",
		"discount_value": discountPercent,
		"tax_rate":       taxRate,
	})
}

// CreateTestLineItem creates an estimate line item.
func CreateTestLineItem(t *testing.T, app *pocketbase.PocketBase, estimateID string, sortOrder int, description string, qty, unitPrice float64, optional bool) *core.Record {
	t.Helper()
	return createRecord(t, app, "estimate_line_items", map[string]any{
		"estimate":    estimateID,
		"sort_order":  sortOrder,
		"description": description,
		"quantity":    qty,
		"unit_price":  unitPrice,
		"is_optional": optional,
	})
}

// CreateTestAllowance creates a pending allowance.
func CreateTestAllowance(t *testing.T, app *pocketbase.PocketBase, estimateID, name string, amount float64) *core.Record {
	t.Helper()
	return createRecord(t, app, "estimate_allowances", map[string]any{
		"estimate": estimateID,
		"name":     name,
		"amount":   amount,
		"status":   "pending",
	})
}

// CreateTestAlternate creates an add or deduct alternate.
func CreateTestAlternate(t *testing.T, app *pocketbase.PocketBase, estimateID, name, kind string, amount float64, status string) *core.Record {
	t.Helper()
	return createRecord(t, app, "estimate_alternates", map[string]any{
		"estimate": estimateID,
		"name":     name,
		"kind":     kind,
		"amount":   amount,
		"status":   status,
	})
}

// CreateTestSOV creates a schedule of values at version 1.
func CreateTestSOV(t *testing.T, app *pocketbase.PocketBase, projectID, status string) *core.Record {
	t.Helper()
	return createRecord(t, app, "schedules_of_values", map[string]any{
		"project":            projectID,
		"title":              "Test SOV",
		"status":             status,
		"version":            1,
		"version_group":      "test-group",
		"application_number": 1,
	})
}

// CreateTestSOVLine creates a schedule of values line.
func CreateTestSOVLine(t *testing.T, app *pocketbase.PocketBase, sovID string, sortOrder int, description string, scheduled, changes, previous, current, retainage float64) *core.Record {
	t.Helper()
	return createRecord(t, app, "sov_line_items", map[string]any{
		"sov":               sovID,
		"sort_order":        sortOrder,
		"item_number":       strconv.Itoa(sortOrder),
		"description":       description,
		"scheduled_value":   scheduled,
		"approved_changes":  changes,
		"previous_billed":   previous,
		"current_billed":    current,
		"retainage_percent": retainage,
	})
}

// CreateTestBidPackage creates an open bid package.
func CreateTestBidPackage(t *testing.T, app *pocketbase.PocketBase, projectID, number string, budget float64) *core.Record {
	t.Helper()
	return createRecord(t, app, "bid_packages", map[string]any{
		"project":         projectID,
		"package_number":  number,
		"trade":           "Drywall",
		"budget_estimate": budget,
		"status":          "open",
	})
}

// CreateTestSubcontractor creates a subcontractor with the given name.
func CreateTestSubcontractor(t *testing.T, app *pocketbase.PocketBase, name string) *core.Record {
	t.Helper()
	return createRecord(t, app, "subcontractors", map[string]any{
		"name": name,
	})
}

// CreateTestBid creates a subcontractor and their bid on a package.
func CreateTestBid(t *testing.T, app *pocketbase.PocketBase, packageID, subcontractor string, totalBid float64, status string) *core.Record {
	t.Helper()
	sub := CreateTestSubcontractor(t, app, subcontractor)
	return createRecord(t, app, "bids", map[string]any{
		"bid_package":   packageID,
		"subcontractor": sub.Id,
		"base_bid":      totalBid,
		"total_bid":     totalBid,
		"status":        status,
		"is_compliant":  true,
	})
}

// AssertHTMLContains checks that body contains all specified fragments.
func AssertHTMLContains(t *testing.T, body string, fragments ...string) {
	t.Helper()

	for _, frag := range fragments {
		if !strings.Contains(body, frag) {
			t.Errorf("expected HTML to contain %q, but it was not found\nbody (first 500 chars): %s",
				frag, truncate(body, 500))
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
