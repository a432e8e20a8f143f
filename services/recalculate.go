package services

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase/core"
)

// RecalculateEstimate derives an estimate's totals and stores the cached
// figures on the estimate record.
func RecalculateEstimate(app core.App, estimateID string) (EstimateTotals, error) {
	in, err := LoadEstimateInputs(app, estimateID)
	if err != nil {
		return EstimateTotals{}, err
	}

	totals := in.Totals()
	applyEstimateCache(in.Estimate, totals)

	if err := app.Save(in.Estimate); err != nil {
		return EstimateTotals{}, fmt.Errorf("save estimate totals: %w", err)
	}
	return totals, nil
}

func applyEstimateCache(r *core.Record, t EstimateTotals) {
	r.Set("required_subtotal", storeMoney(t.RequiredSubtotal))
	r.Set("subtotal", storeMoney(t.Subtotal))
	r.Set("discount_amount", storeMoney(t.Discount))
	r.Set("tax_amount", storeMoney(t.Tax))
	r.Set("alternates_total", storeMoney(t.AcceptedAlternatesTotal))
	r.Set("total", storeMoney(t.Total))
}

// RecalculateSOV derives a schedule of values' totals and stores the cached
// contract amount on the SOV record.
func RecalculateSOV(app core.App, sovID string) (SOVTotals, error) {
	sov, err := app.FindRecordById("schedules_of_values", sovID)
	if err != nil {
		return SOVTotals{}, fmt.Errorf("schedule of values not found: %w", err)
	}

	lines, err := LoadSOVLines(app, sovID)
	if err != nil {
		return SOVTotals{}, err
	}

	totals := AggregateSOV(lines)
	sov.Set("total_contract_amount", storeMoney(totals.TotalRevised))
	if err := app.Save(sov); err != nil {
		return SOVTotals{}, fmt.Errorf("save sov totals: %w", err)
	}
	return totals, nil
}

// RecalcEntry reports one cached total checked by RecalculateAll.
type RecalcEntry struct {
	Kind    string // "estimate" or "sov"
	ID      string
	Label   string
	Before  float64
	After   float64
	Changed bool
}

// RecalculateAll recomputes every estimate and schedule of values cache.
// Records that fail to load are logged and skipped.
func RecalculateAll(app core.App) ([]RecalcEntry, error) {
	var entries []RecalcEntry

	estimates, err := app.FindAllRecords("estimates")
	if err != nil {
		return nil, fmt.Errorf("recalc: could not list estimates: %w", err)
	}
	for _, est := range estimates {
		before := est.GetFloat("total")
		totals, err := RecalculateEstimate(app, est.Id)
		if err != nil {
			log.Printf("recalc: estimate %s: %v", est.Id, err)
			continue
		}
		after := storeMoney(totals.Total)
		entries = append(entries, RecalcEntry{
			Kind:    "estimate",
			ID:      est.Id,
			Label:   est.GetString("title"),
			Before:  before,
			After:   after,
			Changed: before != after,
		})
	}

	sovs, err := app.FindAllRecords("schedules_of_values")
	if err != nil {
		return nil, fmt.Errorf("recalc: could not list schedules of values: %w", err)
	}
	for _, sov := range sovs {
		before := sov.GetFloat("total_contract_amount")
		totals, err := RecalculateSOV(app, sov.Id)
		if err != nil {
			log.Printf("recalc: sov %s: %v", sov.Id, err)
			continue
		}
		after := storeMoney(totals.TotalRevised)
		entries = append(entries, RecalcEntry{
			Kind:    "sov",
			ID:      sov.Id,
			Label:   fmt.Sprintf("%s v%d", sov.GetString("title"), sov.GetInt("version")),
			Before:  before,
			After:   after,
			Changed: before != after,
		})
	}

	return entries, nil
}

// MigrateStaleTotals brings every cached total in line with the engine.
// Safe to call on every startup.
func MigrateStaleTotals(app core.App) error {
	entries, err := RecalculateAll(app)
	if err != nil {
		return err
	}

	changed := 0
	for _, e := range entries {
		if e.Changed {
			changed++
		}
	}
	if changed > 0 {
		log.Printf("migrate: refreshed %d stale cached total(s)\n", changed)
	}
	return nil
}
