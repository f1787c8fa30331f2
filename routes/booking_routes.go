package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/kelechi684/home_fix/handlers"
	"github.com/kelechi684/home_fix/middleware"
)

func BookingRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	bookings := api.Group("/bookings", middleware.Protected())
	bookings.Post("", handlers.CreateBooking)
	bookings.Get("", handlers.ListMyBookings)
	bookings.Post("/:bookingId/review", handlers.CreateReview)

	bookings.Put("/:bookingId/accept", middleware.ProviderRequired(), handlers.AcceptBooking)
	bookings.Put("/:bookingId/complete", middleware.ProviderRequired(), handlers.CompleteBooking)
}
