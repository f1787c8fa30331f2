package handlers

import (
	"errors"
	"log"
	"math"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/kelechi684/home_fix/database"
	"github.com/kelechi684/home_fix/models"
	"github.com/kelechi684/home_fix/payments"
	"github.com/kelechi684/home_fix/services"
	"github.com/kelechi684/home_fix/utils"
	"gorm.io/gorm"
)

type GenerateInvoiceRequest struct {
	BookingID     string `json:"booking_id" validate:"required,uuid"`
	PaymentMethod string `json:"payment_method" validate:"required,oneof=cash gateway"`
}

func GenerateInvoiceHandler(c *fiber.Ctx) error {
	var req GenerateInvoiceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	bookingID, _ := uuid.Parse(req.BookingID)

	if currentUserRole(c) == "provider" {
		var booking models.Booking
		if err := database.DB.First(&booking, "id = ? AND provider_id = ?", bookingID, currentUserID(c)).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
		}
	}

	invoice, err := services.GenerateInvoice(bookingID, req.PaymentMethod)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvoiceAlreadyExists):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "An invoice has already been generated for this booking"})
		case errors.Is(err, services.ErrBookingNotCompleted):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Booking has not been completed"})
		case errors.Is(err, services.ErrInvalidAmount), errors.Is(err, services.ErrInvalidPaymentMethod):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, gorm.ErrRecordNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate invoice"})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(invoice)
}

func GetInvoice(c *fiber.Ctx) error {
	invoiceID, err := uuid.Parse(c.Params("invoiceId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid invoice ID format"})
	}

	var invoice models.Invoice
	query := database.DB.Preload("Booking")
	if currentUserRole(c) == "provider" {
		query = query.Where("provider_id = ?", currentUserID(c))
	}
	if err := query.First(&invoice, "id = ?", invoiceID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Invoice not found"})
	}
	return c.JSON(invoice)
}

func ListMyInvoices(c *fiber.Ctx) error {
	providerID := currentUserID(c)

	var invoices []models.Invoice
	if err := database.DB.Where("provider_id = ?", providerID).Order("created_at desc").Find(&invoices).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	return c.JSON(invoices)
}

// PreviewCommission shows a live commission breakdown without touching any
// state, so the UI can render the split before anything is committed.
func PreviewCommission(c *fiber.Ctx) error {
	amount, err := strconv.ParseFloat(c.Query("amount"), 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid amount"})
	}

	tier := models.Tier(c.Query("tier", string(models.TierNew)))
	serviceType := c.Query("service_type", models.ServiceTypeStandard)
	method := c.Query("method", models.PaymentMethodGateway)

	breakdown, err := services.CalculateCommission(amount, tier, serviceType, method)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(breakdown)
}

// InitiateInvoicePayment opens a gateway charge for a pending gateway
// invoice. The INV- reference assigned here is what the webhook and verify
// endpoint later route on.
func InitiateInvoicePayment(c *fiber.Ctx) error {
	invoiceID, err := uuid.Parse(c.Params("invoiceId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid invoice ID format"})
	}

	var txn models.PaymentTransaction
	if err := database.DB.First(&txn, "invoice_id = ? AND payment_method = ? AND payment_status = ?",
		invoiceID, models.PaymentMethodGateway, models.PaymentStatusPending).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Pending gateway payment not found for this invoice"})
	}

	if txn.GatewayReference == nil {
		reference, err := utils.GenerateInvoicePaymentReference(database.DB)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate payment reference"})
		}
		txn.GatewayReference = &reference
		if err := database.DB.Save(&txn).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update payment record"})
		}
	}

	var customer models.User
	if err := database.DB.Joins("JOIN bookings ON bookings.customer_id = users.id").
		Joins("JOIN invoices ON invoices.booking_id = bookings.id").
		Where("invoices.id = ?", invoiceID).
		First(&customer).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	result, err := payments.InitializeTransaction(txn.Amount, customer.Email, *txn.GatewayReference)
	if err != nil {
		log.Printf("🔥 Paystack initialize failed for invoice %s: %v", invoiceID, err)
		if errors.Is(err, payments.ErrGatewayUnavailable) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Payment gateway is unreachable, please retry"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to initialize payment"})
	}

	return c.JSON(fiber.Map{
		"reference":         result.Reference,
		"authorization_url": result.AuthorizationURL,
	})
}

// VerifyInvoicePayment re-queries the gateway for an INV- reference and, on
// success, marks the transaction paid. Re-querying is always safe; the
// marking is guarded by a conditional update.
func VerifyInvoicePayment(c *fiber.Ctx) error {
	reference := c.Params("reference")

	var txn models.PaymentTransaction
	if err := database.DB.First(&txn, "gateway_reference = ?", reference).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Payment record not found for reference " + reference})
	}

	result, err := payments.VerifyTransaction(reference)
	if err != nil {
		if errors.Is(err, payments.ErrGatewayUnavailable) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Payment gateway is unreachable, please retry"})
		}
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}

	if result.Status != "success" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Payment not successful for reference " + reference, "status": result.Status})
	}
	if math.Abs(result.Amount-txn.Amount) > 0.01 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":    "Amount mismatch for reference " + reference,
			"expected": txn.Amount,
			"charged":  result.Amount,
		})
	}

	if err := services.ConfirmInvoicePayment(reference); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to record payment"})
	}

	return c.JSON(fiber.Map{"message": "Payment verified and recorded", "reference": reference})
}
