package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// Setup programmatically creates/ensures the projects, estimating, schedule
// of values and bidding collections exist.
func Setup(app *pocketbase.PocketBase) {
	projects := ensureCollection(app, "projects", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "client_name", Required: false})
		c.Fields.Add(&core.TextField{Name: "reference_number", Required: false})
		c.Fields.Add(&core.SelectField{
			Name:      "status",
			Required:  true,
			Values:    []string{"active", "completed", "on_hold"},
			MaxSelect: 1,
		})
		addTimestamps(c)
	})

	estimates := ensureCollection(app, "estimates", func(c *core.Collection) {
		c.Fields.Add(projectRelation(projects.Id))
		c.Fields.Add(&core.TextField{Name: "title", Required: true})
		c.Fields.Add(&core.SelectField{
			Name:      "status",
			Required:  true,
			Values:    []string{"draft", "sent", "accepted", "declined"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.SelectField{
			Name:      "discount_type",
			Values:    []string{"percent", "fixed"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.NumberField{Name: "discount_value"})
		c.Fields.Add(&core.NumberField{Name: "tax_rate"})
		// Cached rollup, rewritten by the engine after every child change.
		c.Fields.Add(&core.NumberField{Name: "required_subtotal"})
		c.Fields.Add(&core.NumberField{Name: "subtotal"})
		c.Fields.Add(&core.NumberField{Name: "discount_amount"})
		c.Fields.Add(&core.NumberField{Name: "tax_amount"})
		c.Fields.Add(&core.NumberField{Name: "alternates_total"})
		c.Fields.Add(&core.NumberField{Name: "total"})
		addTimestamps(c)
	})

	ensureCollection(app, "estimate_line_items", func(c *core.Collection) {
		c.Fields.Add(parentRelation("estimate", estimates.Id))
		c.Fields.Add(&core.NumberField{Name: "sort_order"})
		c.Fields.Add(&core.TextField{Name: "description", Required: true})
		c.Fields.Add(&core.NumberField{Name: "quantity"})
		c.Fields.Add(&core.NumberField{Name: "unit_price"})
		c.Fields.Add(&core.BoolField{Name: "is_optional"})
		c.Fields.Add(&core.TextField{Name: "section"})
		addTimestamps(c)
	})

	ensureCollection(app, "estimate_allowances", func(c *core.Collection) {
		c.Fields.Add(parentRelation("estimate", estimates.Id))
		c.Fields.Add(&core.NumberField{Name: "sort_order"})
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.NumberField{Name: "amount"})
		c.Fields.Add(&core.SelectField{
			Name:      "status",
			Values:    []string{"pending", "selected", "finalized"},
			MaxSelect: 1,
		})
		addTimestamps(c)
	})

	ensureCollection(app, "estimate_alternates", func(c *core.Collection) {
		c.Fields.Add(parentRelation("estimate", estimates.Id))
		c.Fields.Add(&core.NumberField{Name: "sort_order"})
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.SelectField{
			Name:      "kind",
			Required:  true,
			Values:    []string{"add", "deduct"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.NumberField{Name: "amount", Min: floatPtr(0)})
		c.Fields.Add(&core.SelectField{
			Name:      "status",
			Required:  true,
			Values:    []string{"proposed", "accepted", "rejected"},
			MaxSelect: 1,
		})
		addTimestamps(c)
	})

	sovs := ensureCollection(app, "schedules_of_values", func(c *core.Collection) {
		c.Fields.Add(projectRelation(projects.Id))
		c.Fields.Add(&core.RelationField{
			Name:         "estimate",
			CollectionId: estimates.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.TextField{Name: "title", Required: true})
		c.Fields.Add(&core.SelectField{
			Name:      "status",
			Required:  true,
			Values:    []string{"draft", "pending", "approved", "revised"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.NumberField{Name: "version", Required: true, OnlyInt: true})
		c.Fields.Add(&core.TextField{Name: "version_group"})
		c.Fields.Add(&core.NumberField{Name: "application_number", OnlyInt: true})
		c.Fields.Add(&core.TextField{Name: "period_to"})
		c.Fields.Add(&core.NumberField{Name: "total_contract_amount"})
		addTimestamps(c)
	})

	ensureCollection(app, "sov_line_items", func(c *core.Collection) {
		c.Fields.Add(parentRelation("sov", sovs.Id))
		c.Fields.Add(&core.NumberField{Name: "sort_order"})
		c.Fields.Add(&core.TextField{Name: "item_number"})
		c.Fields.Add(&core.TextField{Name: "description", Required: true})
		c.Fields.Add(&core.NumberField{Name: "scheduled_value"})
		c.Fields.Add(&core.NumberField{Name: "approved_changes"})
		c.Fields.Add(&core.NumberField{Name: "previous_billed"})
		c.Fields.Add(&core.NumberField{Name: "current_billed"})
		c.Fields.Add(&core.NumberField{Name: "retainage_percent", Min: floatPtr(0), Max: floatPtr(100)})
		addTimestamps(c)
	})

	subcontractors := ensureCollection(app, "subcontractors", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "trade"})
		c.Fields.Add(&core.TextField{Name: "contact_name"})
		c.Fields.Add(&core.TextField{Name: "phone"})
		c.Fields.Add(&core.EmailField{Name: "email"})
		addTimestamps(c)
	})

	packages := ensureCollection(app, "bid_packages", func(c *core.Collection) {
		c.Fields.Add(projectRelation(projects.Id))
		c.Fields.Add(&core.TextField{Name: "package_number", Required: true})
		c.Fields.Add(&core.TextField{Name: "trade", Required: true})
		c.Fields.Add(&core.NumberField{Name: "budget_estimate"})
		c.Fields.Add(&core.SelectField{
			Name:      "status",
			Required:  true,
			Values:    []string{"open", "awarded", "closed"},
			MaxSelect: 1,
		})
		addTimestamps(c)
	})

	ensureCollection(app, "bids", func(c *core.Collection) {
		c.Fields.Add(parentRelation("bid_package", packages.Id))
		c.Fields.Add(&core.RelationField{
			Name:         "subcontractor",
			Required:     true,
			CollectionId: subcontractors.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.NumberField{Name: "base_bid"})
		c.Fields.Add(&core.NumberField{Name: "alternates_total"})
		c.Fields.Add(&core.NumberField{Name: "total_bid"})
		c.Fields.Add(&core.SelectField{
			Name:      "status",
			Required:  true,
			Values:    []string{"submitted", "under_review", "selected", "rejected"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.BoolField{Name: "is_compliant"})
		c.Fields.Add(&core.NumberField{Name: "score", Min: floatPtr(0), Max: floatPtr(100)})
		// A score of 0 is a real evaluation; scored tells it apart from no score.
		c.Fields.Add(&core.BoolField{Name: "scored"})
		c.Fields.Add(&core.TextField{Name: "notes"})
		addTimestamps(c)
	})
}

func addTimestamps(c *core.Collection) {
	c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
	c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
}

func projectRelation(projectsID string) *core.RelationField {
	return &core.RelationField{
		Name:          "project",
		Required:      true,
		CollectionId:  projectsID,
		CascadeDelete: true,
		MaxSelect:     1,
	}
}

// parentRelation links a child row to its owning aggregate; deleting the
// parent removes the children.
func parentRelation(name, collectionID string) *core.RelationField {
	return &core.RelationField{
		Name:          name,
		Required:      true,
		CollectionId:  collectionID,
		CascadeDelete: true,
		MaxSelect:     1,
	}
}

func floatPtr(f float64) *float64 {
	return &f
}

// ensureCollection checks if a collection already exists by name. If it does,
// the existing collection is returned. Otherwise a new base collection is
// created, the addFields callback is invoked to populate its fields, and the
// collection is saved.
func ensureCollection(app *pocketbase.PocketBase, name string, addFields func(*core.Collection)) *core.Collection {
	existing, err := app.FindCollectionByNameOrId(name)
	if err == nil && existing != nil {
		log.Printf("Collection %q already exists, skipping creation.\n", name)
		return existing
	}

	collection := core.NewBaseCollection(name)
	addFields(collection)

	if err := app.Save(collection); err != nil {
		log.Fatalf("Failed to create collection %q: %v", name, err)
	}

	fmt.Printf("Created collection %q (id=%s)\n", name, collection.Id)
	return collection
}
