package collections

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/pocketbase/pocketbase"
)

// MigrateSOVVersionGroups gives every schedule of values created without a
// version group its own group id and a starting version of 1, so revisions
// of it can be chained. Safe to call on every startup.
func MigrateSOVVersionGroups(app *pocketbase.PocketBase) error {
	sovCol, err := app.FindCollectionByNameOrId("schedules_of_values")
	if err != nil {
		return fmt.Errorf("migrate: could not find schedules_of_values collection: %w", err)
	}

	orphans, err := app.FindRecordsByFilter(
		sovCol,
		"version_group = ''",
		"",
		0,
		0,
		nil,
	)
	if err != nil {
		return fmt.Errorf("migrate: could not query schedules of values: %w", err)
	}

	if len(orphans) == 0 {
		return nil
	}

	log.Printf("migrate: found %d schedule(s) of values without a version group -- assigning...\n", len(orphans))

	for _, sov := range orphans {
		sov.Set("version_group", uuid.NewString())
		if sov.GetInt("version") < 1 {
			sov.Set("version", 1)
		}
		if err := app.Save(sov); err != nil {
			log.Printf("migrate: failed to assign version group to SOV %s: %v\n", sov.Id, err)
			continue
		}
	}

	log.Println("migrate: SOV version group migration complete.")
	return nil
}
