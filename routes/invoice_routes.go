package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/kelechi684/home_fix/handlers"
	"github.com/kelechi684/home_fix/middleware"
)

func InvoiceRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	invoices := api.Group("/invoices", middleware.Protected())
	invoices.Post("", middleware.ProviderRequired(), handlers.GenerateInvoiceHandler)
	invoices.Get("", middleware.ProviderRequired(), handlers.ListMyInvoices)
	invoices.Get("/:invoiceId", handlers.GetInvoice)
	invoices.Post("/:invoiceId/pay", handlers.InitiateInvoicePayment)

	api.Get("/payments/verify/:reference", middleware.Protected(), handlers.VerifyInvoicePayment)
}
