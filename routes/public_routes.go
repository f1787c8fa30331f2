package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/kelechi684/home_fix/handlers"
)

func PublicRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Get("/offerings", handlers.ListActiveServiceOfferings)
	api.Get("/commission/preview", handlers.PreviewCommission)
}
