package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/kelechi684/home_fix/database"
	"github.com/kelechi684/home_fix/models"
	"github.com/kelechi684/home_fix/notifications"
	"github.com/kelechi684/home_fix/services"
	"gorm.io/gorm"
)

type CreateBookingRequest struct {
	ServiceOfferingID string  `json:"service_offering_id" validate:"required,uuid"`
	ScheduledAt       string  `json:"scheduled_at" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	Address           string  `json:"address" validate:"required"`
	Description       *string `json:"description,omitempty"`
}

func CreateBooking(c *fiber.Ctx) error {
	customerID := currentUserID(c)

	var req CreateBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	offeringID, _ := uuid.Parse(req.ServiceOfferingID)
	scheduledAt, _ := time.Parse(time.RFC3339, req.ScheduledAt)

	var offering models.ServiceOffering
	if err := database.DB.First(&offering, "id = ? AND is_active = ?", offeringID, true).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Service offering not found"})
	}

	booking := models.Booking{
		CustomerID:        customerID,
		ProviderID:        offering.ProviderID,
		ServiceOfferingID: offering.ID,
		Price:             offering.Price,
		Address:           req.Address,
		Description:       req.Description,
		ScheduledAt:       scheduledAt,
	}
	if err := database.DB.Create(&booking).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create booking"})
	}

	var provider models.User
	if err := database.DB.First(&provider, "id = ?", offering.ProviderID).Error; err == nil {
		go notifications.SendEmail(provider.FullName, provider.Email, "You Have a New Booking Request!", "<h1>New Booking</h1><p>A customer has requested your service. Review and accept it from your dashboard.</p>")
	}

	return c.Status(fiber.StatusCreated).JSON(booking)
}

func AcceptBooking(c *fiber.Ctx) error {
	providerID := currentUserID(c)
	bookingID := c.Params("bookingId")

	var booking models.Booking
	if err := database.DB.First(&booking, "id = ? AND provider_id = ?", bookingID, providerID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
	}
	if booking.Status != "pending" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Only pending bookings can be accepted"})
	}

	booking.Status = "confirmed"
	if err := database.DB.Save(&booking).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to accept booking"})
	}
	return c.JSON(booking)
}

type CompleteBookingRequest struct {
	PaymentMethod string `json:"payment_method" validate:"required,oneof=cash gateway"`
}

// CompleteBooking marks a confirmed booking as completed and immediately
// generates its invoice using how the customer actually paid. If invoice
// generation hits a duplicate (retried submit), the completion itself stands.
func CompleteBooking(c *fiber.Ctx) error {
	providerID := currentUserID(c)
	bookingID, err := uuid.Parse(c.Params("bookingId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking ID format"})
	}

	var req CompleteBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var booking models.Booking
	if err := database.DB.First(&booking, "id = ? AND provider_id = ?", bookingID, providerID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
	}

	if booking.Status == "confirmed" {
		now := time.Now()
		booking.Status = "completed"
		booking.CompletedAt = &now
		if err := database.DB.Save(&booking).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to complete booking"})
		}
	} else if booking.Status != "completed" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Only confirmed bookings can be completed"})
	}

	invoice, err := services.GenerateInvoice(booking.ID, req.PaymentMethod)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvoiceAlreadyExists):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "An invoice has already been generated for this booking"})
		case errors.Is(err, services.ErrBookingNotCompleted),
			errors.Is(err, services.ErrInvalidAmount),
			errors.Is(err, services.ErrInvalidPaymentMethod):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate invoice"})
		}
	}

	return c.JSON(fiber.Map{
		"message": "Booking completed and invoice generated",
		"booking": booking,
		"invoice": invoice,
	})
}

func ListMyBookings(c *fiber.Ctx) error {
	userID := currentUserID(c)
	role := currentUserRole(c)

	query := database.DB.Preload("ServiceOffering").Order("created_at desc")
	if role == "provider" {
		query = query.Where("provider_id = ?", userID)
	} else {
		query = query.Where("customer_id = ?", userID)
	}

	var bookings []models.Booking
	if err := query.Find(&bookings).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	return c.JSON(bookings)
}

type ReviewRequest struct {
	Rating  int     `json:"rating" validate:"required,min=1,max=5"`
	Comment *string `json:"comment,omitempty"`
}

func CreateReview(c *fiber.Ctx) error {
	customerID := currentUserID(c)
	bookingID, err := uuid.Parse(c.Params("bookingId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking ID format"})
	}

	var req ReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var booking models.Booking
	if err := database.DB.First(&booking, "id = ? AND customer_id = ?", bookingID, customerID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
	}
	if booking.Status != "completed" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Only completed bookings can be reviewed"})
	}

	review := models.Review{
		BookingID:  booking.ID,
		CustomerID: customerID,
		ProviderID: booking.ProviderID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	}
	if err := database.DB.Create(&review).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "You have already reviewed this booking"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create review"})
	}

	return c.Status(fiber.StatusCreated).JSON(review)
}
