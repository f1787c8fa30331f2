package handlers

import (
	"errors"
	"log"
	"math"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/kelechi684/home_fix/database"
	"github.com/kelechi684/home_fix/models"
	"github.com/kelechi684/home_fix/payments"
	"github.com/kelechi684/home_fix/services"
	"gorm.io/gorm"
)

// GetMyOutstandingBalance reports what the provider currently owes the
// platform from cash jobs, recomputed from the transaction rows on every
// request.
func GetMyOutstandingBalance(c *fiber.Ctx) error {
	providerID := currentUserID(c)

	balance, err := services.GetOutstandingBalance(providerID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	return c.JSON(balance)
}

type InitiateSettlementRequest struct {
	Amount         float64  `json:"amount" validate:"required,gt=0"`
	Method         string   `json:"method" validate:"required,oneof=gateway manual"`
	TransactionIDs []string `json:"transaction_ids" validate:"required,min=1,dive,uuid"`
}

func InitiateSettlementHandler(c *fiber.Ctx) error {
	providerID := currentUserID(c)

	var req InitiateSettlementRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	transactionIDs := make([]uuid.UUID, 0, len(req.TransactionIDs))
	for _, idStr := range req.TransactionIDs {
		id, _ := uuid.Parse(idStr)
		transactionIDs = append(transactionIDs, id)
	}

	payment, err := services.InitiateSettlement(providerID, req.Amount, req.Method, transactionIDs)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAmountMismatch):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Amount does not match the outstanding total for the selected transactions"})
		case errors.Is(err, services.ErrTransactionsUnavailable):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "One or more transactions are not available for settlement"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to initiate settlement"})
		}
	}

	if payment.Method == models.SettlementMethodManual {
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message":   "Settlement recorded. An admin will confirm your payment once received.",
			"reference": payment.Reference,
			"payment":   payment,
		})
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", providerID).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	result, err := payments.InitializeTransaction(payment.Amount, user.Email, payment.Reference)
	if err != nil {
		log.Printf("🔥 Paystack initialize failed for settlement %s: %v", payment.Reference, err)
		// The settlement stays pending; the provider can retry from the
		// dashboard or the expiry job will eventually release the batch.
		if errors.Is(err, payments.ErrGatewayUnavailable) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Payment gateway is unreachable, please retry", "reference": payment.Reference})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to initialize gateway payment", "reference": payment.Reference})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"reference":         payment.Reference,
		"authorization_url": result.AuthorizationURL,
		"payment":           payment,
	})
}

// VerifySettlementHandler re-queries the gateway for a CMP- reference and
// confirms the settlement on success. Safe to call any number of times:
// confirmation is idempotent.
func VerifySettlementHandler(c *fiber.Ctx) error {
	providerID := currentUserID(c)
	reference := c.Params("reference")

	var payment models.CommissionPayment
	if err := database.DB.First(&payment, "reference = ? AND provider_id = ?", reference, providerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Settlement not found for reference " + reference})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	if payment.Status == models.SettlementStatusCompleted {
		return c.JSON(fiber.Map{"message": "Settlement already confirmed", "reference": reference})
	}
	if payment.Method != models.SettlementMethodGateway {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Manual settlements are confirmed by an admin"})
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
	if math.Abs(result.Amount-payment.Amount) > 0.01 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":    "Amount mismatch for reference " + reference,
			"expected": payment.Amount,
			"charged":  result.Amount,
		})
	}

	if err := services.ConfirmSettlement(payment.ID, "gateway", nil, &result.GatewayTxnID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to confirm settlement"})
	}

	return c.JSON(fiber.Map{"message": "Settlement confirmed", "reference": reference})
}

func ListMySettlements(c *fiber.Ctx) error {
	providerID := currentUserID(c)

	var settlements []models.CommissionPayment
	if err := database.DB.Preload("Transactions").
		Where("provider_id = ?", providerID).
		Order("created_at desc").
		Find(&settlements).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	return c.JSON(settlements)
}
