package services

import (
	"fmt"
	"time"

	"github.com/pocketbase/pocketbase/core"
)

// persistBidStatuses saves the status of every bid whose status differs
// from the stored record.
func persistBidStatuses(txApp core.App, bids []Bid) error {
	for _, b := range bids {
		r, err := txApp.FindRecordById("bids", b.ID)
		if err != nil {
			return fmt.Errorf("bid %s: %w", b.ID, err)
		}
		if BidStatus(r.GetString("status")) == b.Status {
			continue
		}
		r.Set("status", string(b.Status))
		if err := txApp.Save(r); err != nil {
			return fmt.Errorf("save bid %s: %w", b.ID, err)
		}
	}
	return nil
}

// AwardBidRecord awards a bid inside a transaction so that two concurrent
// awards on one package cannot both succeed.
func AwardBidRecord(app core.App, packageID, bidID string) error {
	return app.RunInTransaction(func(txApp core.App) error {
		pkg, err := txApp.FindRecordById("bid_packages", packageID)
		if err != nil {
			return fmt.Errorf("bid package not found: %w", err)
		}
		bids, err := LoadBids(txApp, packageID)
		if err != nil {
			return err
		}

		updated, err := AwardBid(bids, bidID)
		if err != nil {
			return err
		}
		if err := persistBidStatuses(txApp, updated); err != nil {
			return err
		}

		pkg.Set("status", "awarded")
		return txApp.Save(pkg)
	})
}

// WithdrawAwardRecord returns the selected bid of a package to review.
func WithdrawAwardRecord(app core.App, packageID, bidID string) error {
	return app.RunInTransaction(func(txApp core.App) error {
		pkg, err := txApp.FindRecordById("bid_packages", packageID)
		if err != nil {
			return fmt.Errorf("bid package not found: %w", err)
		}
		bids, err := LoadBids(txApp, packageID)
		if err != nil {
			return err
		}

		updated, err := WithdrawAward(bids, bidID)
		if err != nil {
			return err
		}
		if err := persistBidStatuses(txApp, updated); err != nil {
			return err
		}

		pkg.Set("status", "open")
		return txApp.Save(pkg)
	})
}

// CreateBidPackage numbers and saves a new open bid package.
func CreateBidPackage(app core.App, projectID, trade string, budget float64, now time.Time) (*core.Record, error) {
	number, err := GenerateBidPackageNumber(app, projectID, now)
	if err != nil {
		return nil, err
	}

	col, err := app.FindCollectionByNameOrId("bid_packages")
	if err != nil {
		return nil, fmt.Errorf("bid_packages collection not found: %w", err)
	}

	pkg := core.NewRecord(col)
	pkg.Set("project", projectID)
	pkg.Set("package_number", number)
	pkg.Set("trade", trade)
	pkg.Set("budget_estimate", budget)
	pkg.Set("status", "open")
	if err := app.Save(pkg); err != nil {
		return nil, fmt.Errorf("save bid package: %w", err)
	}
	return pkg, nil
}

// BuildBidExportData assembles a bid package comparison for export.
func BuildBidExportData(app core.App, packageID string, policy Policy, now time.Time) (*BidExportData, error) {
	pkg, err := app.FindRecordById("bid_packages", packageID)
	if err != nil {
		return nil, fmt.Errorf("bid package not found: %w", err)
	}
	bids, err := LoadBids(app, packageID)
	if err != nil {
		return nil, err
	}

	budget := BudgetOf(pkg)
	return &BidExportData{
		PackageNumber:  pkg.GetString("package_number"),
		Trade:          pkg.GetString("trade"),
		BudgetEstimate: budget,
		Comparison:     CompareBids(bids, budget, policy),
		GeneratedDate:  now.Format("02 Jan 2006"),
	}, nil
}
