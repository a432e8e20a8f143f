package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pocketbase/pocketbase/core"
)

var (
	ErrEstimateNotAccepted = errors.New("only an accepted estimate can seed a schedule of values")
	ErrNotRevisable        = errors.New("only an approved schedule of values can be revised")
)

// CheckSOVEdit returns ErrSOVLocked when nothing may change in status and
// ErrScheduledValuesFrozen when a structural change is attempted on an
// SOV that only accepts billing.
func CheckSOVEdit(status SOVStatus, structural bool) error {
	rules := EditRulesFor(status)
	switch {
	case !rules.Structure && !rules.Billing:
		return fmt.Errorf("%w: status %s", ErrSOVLocked, status)
	case structural && !rules.Structure:
		return fmt.Errorf("%w: status %s", ErrScheduledValuesFrozen, status)
	}
	return nil
}

func setSOVLine(r *core.Record, sovID string, item SOVLineItem, sortOrder int) {
	r.Set("sov", sovID)
	r.Set("item_number", item.ItemNumber)
	r.Set("description", item.Description)
	r.Set("scheduled_value", item.ScheduledValue.InexactFloat64())
	r.Set("approved_changes", item.ApprovedChanges.InexactFloat64())
	r.Set("previous_billed", item.PreviousBilled.InexactFloat64())
	r.Set("current_billed", item.CurrentBilled.InexactFloat64())
	r.Set("retainage_percent", item.RetainagePercent.InexactFloat64())
	r.Set("sort_order", sortOrder)
}

func saveSOVLines(txApp core.App, sovID string, items []SOVLineItem) error {
	col, err := txApp.FindCollectionByNameOrId("sov_line_items")
	if err != nil {
		return fmt.Errorf("sov_line_items collection not found: %w", err)
	}
	for i, item := range items {
		r := core.NewRecord(col)
		setSOVLine(r, sovID, item, i+1)
		if err := txApp.Save(r); err != nil {
			return fmt.Errorf("save sov line %s: %w", item.ItemNumber, err)
		}
	}
	return nil
}

// CreateSOVFromEstimate drafts a schedule of values from an accepted
// estimate. Lines take the policy's default retainage.
func CreateSOVFromEstimate(app core.App, estimateID string, policy Policy) (*core.Record, error) {
	in, err := LoadEstimateInputs(app, estimateID)
	if err != nil {
		return nil, err
	}
	if in.Estimate.GetString("status") != "accepted" {
		return nil, fmt.Errorf("%w: estimate is %s", ErrEstimateNotAccepted, in.Estimate.GetString("status"))
	}

	lines := SeedSOVFromEstimate(in.LineItems, in.Allowances, policy.DefaultRetainage())

	var sov *core.Record
	err = app.RunInTransaction(func(txApp core.App) error {
		col, err := txApp.FindCollectionByNameOrId("schedules_of_values")
		if err != nil {
			return fmt.Errorf("schedules_of_values collection not found: %w", err)
		}

		sov = core.NewRecord(col)
		sov.Set("project", in.Estimate.GetString("project"))
		sov.Set("estimate", estimateID)
		sov.Set("title", in.Estimate.GetString("title"))
		sov.Set("status", string(SOVDraft))
		sov.Set("version", 1)
		sov.Set("version_group", uuid.NewString())
		sov.Set("application_number", 1)
		sov.Set("total_contract_amount", storeMoney(AggregateSOV(lines).TotalRevised))
		if err := txApp.Save(sov); err != nil {
			return fmt.Errorf("save sov: %w", err)
		}
		return saveSOVLines(txApp, sov.Id, lines)
	})
	if err != nil {
		return nil, err
	}
	return sov, nil
}

// TransitionSOV moves a schedule of values to the requested status.
func TransitionSOV(app core.App, sovID string, to SOVStatus) (*core.Record, error) {
	sov, err := app.FindRecordById("schedules_of_values", sovID)
	if err != nil {
		return nil, fmt.Errorf("schedule of values not found: %w", err)
	}

	next, err := Transition(SOVStatus(sov.GetString("status")), to)
	if err != nil {
		return nil, err
	}

	sov.Set("status", string(next))
	if err := app.Save(sov); err != nil {
		return nil, fmt.Errorf("save sov status: %w", err)
	}
	return sov, nil
}

// ReviseSOV marks an approved schedule of values as revised and opens a new
// draft version with a copy of its lines. The approved record keeps its
// figures; only its status changes.
func ReviseSOV(app core.App, sovID string) (*core.Record, error) {
	var draft *core.Record

	err := app.RunInTransaction(func(txApp core.App) error {
		current, err := txApp.FindRecordById("schedules_of_values", sovID)
		if err != nil {
			return fmt.Errorf("schedule of values not found: %w", err)
		}
		if SOVStatus(current.GetString("status")) != SOVApproved {
			return fmt.Errorf("%w: status %s", ErrNotRevisable, current.GetString("status"))
		}

		lines, err := LoadSOVLines(txApp, sovID)
		if err != nil {
			return err
		}

		if _, err := Transition(SOVApproved, SOVRevised); err != nil {
			return err
		}
		current.Set("status", string(SOVRevised))
		if err := txApp.Save(current); err != nil {
			return fmt.Errorf("save revised sov: %w", err)
		}

		group := current.GetString("version_group")
		if group == "" {
			group = uuid.NewString()
		}

		draft = core.NewRecord(current.Collection())
		draft.Set("project", current.GetString("project"))
		draft.Set("estimate", current.GetString("estimate"))
		draft.Set("title", current.GetString("title"))
		draft.Set("status", string(SOVDraft))
		draft.Set("version", current.GetInt("version")+1)
		draft.Set("version_group", group)
		draft.Set("application_number", current.GetInt("application_number"))
		draft.Set("total_contract_amount", current.GetFloat("total_contract_amount"))
		if err := txApp.Save(draft); err != nil {
			return fmt.Errorf("save draft sov: %w", err)
		}
		return saveSOVLines(txApp, draft.Id, lines)
	})
	if err != nil {
		return nil, err
	}
	return draft, nil
}

// ClosePeriodSOV rolls current billing into previous billing for every line
// and advances the application number.
func ClosePeriodSOV(app core.App, sovID string) (*core.Record, error) {
	var sov *core.Record

	err := app.RunInTransaction(func(txApp core.App) error {
		var err error
		sov, err = txApp.FindRecordById("schedules_of_values", sovID)
		if err != nil {
			return fmt.Errorf("schedule of values not found: %w", err)
		}
		if err := CheckSOVEdit(SOVStatus(sov.GetString("status")), false); err != nil {
			return err
		}

		records, err := findChildren(txApp, "sov_line_items", "sov", sovID)
		if err != nil {
			return err
		}
		for _, r := range records {
			closed := ClosePeriod([]SOVLineItem{SOVLineFromRecord(r)})[0]
			r.Set("previous_billed", closed.PreviousBilled.InexactFloat64())
			r.Set("current_billed", 0)
			if err := txApp.Save(r); err != nil {
				return fmt.Errorf("save sov line %s: %w", r.Id, err)
			}
		}

		sov.Set("application_number", sov.GetInt("application_number")+1)
		return txApp.Save(sov)
	})
	if err != nil {
		return nil, err
	}
	return sov, nil
}

// BuildSOVExportData assembles a schedule of values with its project
// details for export.
func BuildSOVExportData(app core.App, sovID string) (*SOVExportData, error) {
	sov, err := app.FindRecordById("schedules_of_values", sovID)
	if err != nil {
		return nil, fmt.Errorf("schedule of values not found: %w", err)
	}

	lines, err := LoadSOVLines(app, sovID)
	if err != nil {
		return nil, err
	}

	data := NewSOVExportData(lines)
	data.Title = sov.GetString("title")
	data.Version = sov.GetInt("version")
	data.Status = SOVStatus(sov.GetString("status"))
	data.ApplicationNumber = sov.GetInt("application_number")
	data.PeriodTo = sov.GetString("period_to")
	data.CreatedDate = sov.GetDateTime("created").Time().Format("02 Jan 2006")

	if projectID := sov.GetString("project"); projectID != "" {
		if project, err := app.FindRecordById("projects", projectID); err == nil {
			data.ProjectName = project.GetString("name")
		}
	}
	return &data, nil
}
