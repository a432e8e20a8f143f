package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"buildledger/collections"
	"buildledger/commands"
	"buildledger/handlers"
	"buildledger/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("config: no .env loaded: %v", err)
	}

	policy, err := services.LoadPolicy()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	app := pocketbase.New()
	app.RootCmd.AddCommand(commands.NewRecalcCommand(app))

	// Create collections, seed data and refresh cached totals on startup
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		collections.Setup(app)
		if err := collections.Seed(app); err != nil {
			log.Printf("Warning: seed data failed: %v", err)
		}
		if err := collections.MigrateSOVVersionGroups(app); err != nil {
			log.Printf("Warning: SOV version group migration failed: %v", err)
		}
		if err := services.MigrateStaleTotals(app); err != nil {
			log.Printf("Warning: cached totals migration failed: %v", err)
		}
		return se.Next()
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		// ── Estimates ────────────────────────────────────────────
		se.Router.POST("/projects/{projectId}/estimates", handlers.HandleEstimateCreate(app, policy))
		se.Router.POST("/estimates/{id}", handlers.HandleEstimateUpdate(app))
		se.Router.GET("/estimates/{id}/totals", handlers.HandleEstimateTotals(app))
		se.Router.POST("/estimates/{id}/recalculate", handlers.HandleEstimateRecalculate(app))

		se.Router.POST("/estimates/{id}/line-items", handlers.HandleLineItemCreate(app))
		se.Router.POST("/estimates/{id}/line-items/{itemId}", handlers.HandleLineItemUpdate(app))
		se.Router.DELETE("/estimates/{id}/line-items/{itemId}", handlers.HandleLineItemDelete(app))

		se.Router.POST("/estimates/{id}/allowances", handlers.HandleAllowanceCreate(app))
		se.Router.DELETE("/estimates/{id}/allowances/{allowanceId}", handlers.HandleAllowanceDelete(app))

		se.Router.POST("/estimates/{id}/alternates", handlers.HandleAlternateCreate(app))
		se.Router.POST("/estimates/{id}/alternates/{alternateId}/status", handlers.HandleAlternateStatus(app))

		// Line item import (upload -> validate -> commit)
		se.Router.GET("/estimates/{id}/line-items/import/template", handlers.HandleLineItemTemplate(app))
		se.Router.POST("/estimates/{id}/line-items/import", handlers.HandleLineItemValidate(app))
		se.Router.POST("/estimates/{id}/line-items/import/errors", handlers.HandleLineItemErrorReport(app))
		se.Router.POST("/estimates/{id}/line-items/import/commit", handlers.HandleLineItemImportCommit(app))

		// ── Schedules of values ──────────────────────────────────
		se.Router.POST("/estimates/{id}/sov", handlers.HandleSOVCreate(app, policy))
		se.Router.GET("/sov/{id}", handlers.HandleSOVView(app))
		se.Router.POST("/sov/{id}/transition", handlers.HandleSOVTransition(app))
		se.Router.POST("/sov/{id}/revise", handlers.HandleSOVRevise(app))
		se.Router.POST("/sov/{id}/close-period", handlers.HandleSOVClosePeriod(app))

		se.Router.POST("/sov/{id}/lines", handlers.HandleSOVLineCreate(app))
		se.Router.POST("/sov/{id}/lines/{lineId}", handlers.HandleSOVLineUpdate(app))
		se.Router.DELETE("/sov/{id}/lines/{lineId}", handlers.HandleSOVLineDelete(app))

		se.Router.GET("/sov/{id}/export/excel", handlers.HandleSOVExportExcel(app))
		se.Router.GET("/sov/{id}/export/pay-application", handlers.HandleSOVExportPayApplication(app))

		// ── Bid packages ─────────────────────────────────────────
		se.Router.POST("/projects/{projectId}/bid-packages", handlers.HandleBidPackageCreate(app, policy))
		se.Router.GET("/bid-packages/{id}/comparison", handlers.HandleBidComparison(app, policy))
		se.Router.POST("/bid-packages/{id}/bids", handlers.HandleBidCreate(app, policy))
		se.Router.POST("/bid-packages/{id}/bids/{bidId}/status", handlers.HandleBidStatus(app, policy))
		se.Router.POST("/bid-packages/{id}/bids/{bidId}/award", handlers.HandleBidAward(app, policy))
		se.Router.POST("/bid-packages/{id}/bids/{bidId}/withdraw-award", handlers.HandleBidWithdrawAward(app, policy))
		se.Router.GET("/bid-packages/{id}/export/excel", handlers.HandleBidExportExcel(app, policy))

		return se.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
