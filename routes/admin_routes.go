package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/kelechi684/home_fix/handlers"
	"github.com/kelechi684/home_fix/middleware"
)

func AdminRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	admin := api.Group("/admin", middleware.Protected(), middleware.AdminRequired())

	admin.Get("/applications/pending", handlers.ListPendingProviders)
	admin.Put("/applications/:providerId", handlers.ManageProviderApplication)

	admin.Get("/balances", handlers.ListOutstandingBalances)
	admin.Get("/invoices", handlers.AdminListInvoices)
	admin.Get("/settlements", handlers.AdminListSettlements)
	admin.Post("/settlements/:paymentId/confirm", handlers.ConfirmManualSettlement)

	providers := admin.Group("/providers")
	providers.Put("/:providerId/tier", handlers.OverrideProviderTier)
	providers.Get("/:providerId/tier-audit", handlers.GetTierAuditLog)
}
