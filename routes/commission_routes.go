package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/kelechi684/home_fix/handlers"
	"github.com/kelechi684/home_fix/middleware"
)

func CommissionRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Post("/payments/webhook", handlers.HandlePaystackWebhook)

	commission := api.Group("/commission", middleware.Protected(), middleware.ProviderRequired())
	commission.Get("/balance", handlers.GetMyOutstandingBalance)
	commission.Get("/settlements", handlers.ListMySettlements)
	commission.Post("/settlements", handlers.InitiateSettlementHandler)
	commission.Get("/settlements/verify/:reference", handlers.VerifySettlementHandler)
}
