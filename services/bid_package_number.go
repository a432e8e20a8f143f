package services

import (
	"fmt"
	"time"

	"github.com/pocketbase/pocketbase/core"
)

// formatBidPackageNumber constructs the package number string from components.
func formatBidPackageNumber(projectRef string, year int, sequence int) string {
	return fmt.Sprintf("BP-%s-%d-%03d", projectRef, year, sequence)
}

// GenerateBidPackageNumber creates the next bid package number for a project.
// Format: BP-{project_ref}-{year}-{sequence}
// - project_ref: project's reference_number (falls back to project ID if empty)
// - year: calendar year of now
// - sequence: 3-digit zero-padded, per project per year
func GenerateBidPackageNumber(app core.App, projectId string, now time.Time) (string, error) {
	project, err := app.FindRecordById("projects", projectId)
	if err != nil {
		return "", fmt.Errorf("project not found: %w", err)
	}

	projectRef := project.GetString("reference_number")
	if projectRef == "" {
		projectRef = projectId
	}

	prefix := fmt.Sprintf("BP-%s-%d-", projectRef, now.Year())

	existing, err := app.FindRecordsByFilter(
		"bid_packages",
		"project = {:projectId} && package_number ~ {:prefix}",
		"",
		0,
		0,
		map[string]any{
			"projectId": projectId,
			"prefix":    prefix + "%",
		},
	)
	if err != nil {
		existing = nil
	}

	return formatBidPackageNumber(projectRef, now.Year(), len(existing)+1), nil
}
