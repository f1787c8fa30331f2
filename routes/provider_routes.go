package routes

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/kelechi684/home_fix/handlers"
	"github.com/kelechi684/home_fix/middleware"
)

func ProviderRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Post("/providers/apply", middleware.Protected(), handlers.ApplyToBeAProvider)

	provider := api.Group("/providers/me", middleware.Protected(), middleware.ProviderRequired())
	provider.Get("", handlers.GetMyProviderProfile)
	provider.Get("/tier-progress", handlers.GetMyTierProgress)

	offerings := provider.Group("/offerings")
	offerings.Post("", handlers.CreateServiceOffering)
	offerings.Get("", handlers.ListMyServiceOfferings)

	api.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return c.Next()
	})
	api.Get("/ws", websocket.New(handlers.ServeWs))
}
