package handlers

import (
	"errors"
	"log"
	"math"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/kelechi684/home_fix/database"
	"github.com/kelechi684/home_fix/models"
	"github.com/kelechi684/home_fix/payments"
	"github.com/kelechi684/home_fix/services"
	"github.com/kelechi684/home_fix/utils"
	"gorm.io/gorm"
)

type paystackWebhookPayload struct {
	Event string `json:"event"`
	Data  struct {
		ID        int64  `json:"id"`
		Reference string `json:"reference"`
		Status    string `json:"status"`
		Amount    int64  `json:"amount"`
	} `json:"data"`
}

// HandlePaystackWebhook processes gateway callbacks. Paystack redelivers
// events until acknowledged, so everything downstream of here must tolerate
// duplicates. The conditional updates in the services take care of that.
//
// The charged amount must match what we expect for the reference to the
// cent; a mismatch is acknowledged but never confirmed, it gets logged for
// manual reconciliation instead.
func HandlePaystackWebhook(c *fiber.Ctx) error {
	signature := c.Get("x-paystack-signature")
	if !payments.ValidateWebhookSignature(c.Body(), signature) {
		log.Printf("⚠️ Rejected webhook with invalid signature")
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid signature"})
	}

	var payload paystackWebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse webhook payload"})
	}

	if payload.Event != "charge.success" {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Event ignored"})
	}

	reference := payload.Data.Reference
	gatewayTxnID := strconv.FormatInt(payload.Data.ID, 10)
	charged := float64(payload.Data.Amount) / 100
	log.Printf("Received charge.success webhook for reference %s", reference)

	var err error
	switch {
	case strings.HasPrefix(reference, utils.SettlementReferencePrefix):
		var payment models.CommissionPayment
		if err := database.DB.First(&payment, "reference = ?", reference).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				log.Printf("⚠️ Webhook for unknown settlement reference %s, ignoring", reference)
				return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Unknown reference, ignored"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
		}
		if math.Abs(charged-payment.Amount) > 0.01 {
			log.Printf("🔥 CRITICAL: Webhook amount mismatch for %s: expected %.2f, charged %.2f. Not confirming.",
				reference, payment.Amount, charged)
			return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Amount mismatch, not confirmed"})
		}
		err = services.ConfirmSettlementByReference(reference, gatewayTxnID)
	case strings.HasPrefix(reference, utils.InvoiceReferencePrefix):
		var txn models.PaymentTransaction
		if err := database.DB.First(&txn, "gateway_reference = ?", reference).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				log.Printf("⚠️ Webhook for unknown invoice payment reference %s, ignoring", reference)
				return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Unknown reference, ignored"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
		}
		if math.Abs(charged-txn.Amount) > 0.01 {
			log.Printf("🔥 CRITICAL: Webhook amount mismatch for %s: expected %.2f, charged %.2f. Not confirming.",
				reference, txn.Amount, charged)
			return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Amount mismatch, not confirmed"})
		}
		err = services.ConfirmInvoicePayment(reference)
	default:
		log.Printf("⚠️ Webhook reference %s has no known prefix, ignoring", reference)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Unknown reference prefix, ignored"})
	}

	if err != nil {
		log.Printf("🔥 CRITICAL: Error processing webhook for reference %s: %v", reference, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process webhook"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Webhook processed successfully"})
}
