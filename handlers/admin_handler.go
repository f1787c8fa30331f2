package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/kelechi684/home_fix/database"
	"github.com/kelechi684/home_fix/models"
	"github.com/kelechi684/home_fix/notifications"
	"github.com/kelechi684/home_fix/services"
	"gorm.io/gorm"
)

func ListPendingProviders(c *fiber.Ctx) error {
	var providers []models.Provider
	if err := database.DB.Preload("User").Where("status = ?", "pending").Find(&providers).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	return c.JSON(providers)
}

type ManageApplicationRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
}

func ManageProviderApplication(c *fiber.Ctx) error {
	providerID, err := uuid.Parse(c.Params("providerId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid provider ID format"})
	}

	var req ManageApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var provider models.Provider
	if err := database.DB.Preload("User").First(&provider, "user_id = ?", providerID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Provider application not found"})
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		provider.Status = req.Status
		if req.Status == "approved" {
			provider.IsVerified = true
			if err := tx.Model(&models.User{}).Where("id = ?", providerID).Update("role", "provider").Error; err != nil {
				return err
			}
		}
		return tx.Save(&provider).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update application"})
	}

	if req.Status == "approved" {
		go notifications.SendEmail(provider.User.FullName, provider.User.Email, "Your Provider Application Was Approved!", "<h1>Welcome aboard!</h1><p>Your application has been approved. You can now create service offerings and accept bookings.</p>")
	} else {
		go notifications.SendEmail(provider.User.FullName, provider.User.Email, "Update on Your Provider Application", "<p>Unfortunately your application was not approved at this time.</p>")
	}

	return c.JSON(provider)
}

// ListOutstandingBalances gives finance a platform-wide view of cash
// commission owed, grouped per provider.
func ListOutstandingBalances(c *fiber.Ctx) error {
	type providerBalance struct {
		ProviderID       uuid.UUID `json:"provider_id"`
		TotalOwed        float64   `json:"total_owed"`
		TransactionCount int64     `json:"transaction_count"`
	}

	var balances []providerBalance
	err := database.DB.Model(&models.PaymentTransaction{}).
		Select("provider_id, COALESCE(SUM(amount_owed), 0) as total_owed, COUNT(*) as transaction_count").
		Where("commission_status = ? AND amount_owed > 0", models.CommissionStatusPending).
		Group("provider_id").
		Order("total_owed desc").
		Scan(&balances).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	return c.JSON(balances)
}

type ConfirmManualSettlementRequest struct {
	Reason       string  `json:"reason" validate:"required,min=3"`
	GatewayTxnID *string `json:"gateway_txn_id,omitempty"`
}

// ConfirmManualSettlement lets an admin confirm a settlement paid outside the
// gateway (bank transfer, cash drop-off). A reason is mandatory so the audit
// trail records why the row was confirmed by hand.
func ConfirmManualSettlement(c *fiber.Ctx) error {
	adminID := currentUserID(c)
	paymentID, err := uuid.Parse(c.Params("paymentId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payment ID format"})
	}

	var req ConfirmManualSettlementRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := services.ConfirmSettlement(paymentID, adminID.String(), &req.Reason, req.GatewayTxnID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Settlement not found"})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Settlement confirmed"})
}

type OverrideTierRequest struct {
	Tier   string `json:"tier" validate:"required,oneof=NEW VERIFIED PREMIUM ENTERPRISE"`
	Reason string `json:"reason" validate:"required,min=3"`
}

func OverrideProviderTier(c *fiber.Ctx) error {
	adminID := currentUserID(c)
	providerID, err := uuid.Parse(c.Params("providerId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid provider ID format"})
	}

	var req OverrideTierRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	provider, err := services.SetTierManually(providerID, models.Tier(req.Tier), adminID.String(), req.Reason)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Provider not found"})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(provider)
}

func GetTierAuditLog(c *fiber.Ctx) error {
	providerID, err := uuid.Parse(c.Params("providerId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid provider ID format"})
	}

	var entries []models.TierAuditLog
	if err := database.DB.Where("provider_id = ?", providerID).Order("created_at desc").Find(&entries).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	return c.JSON(entries)
}

func AdminListInvoices(c *fiber.Ctx) error {
	query := database.DB.Preload("Booking").Order("created_at desc")
	if providerIDStr := c.Query("provider_id"); providerIDStr != "" {
		providerID, err := uuid.Parse(providerIDStr)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid provider ID format"})
		}
		query = query.Where("provider_id = ?", providerID)
	}

	var invoices []models.Invoice
	if err := query.Find(&invoices).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	return c.JSON(invoices)
}

func AdminListSettlements(c *fiber.Ctx) error {
	query := database.DB.Preload("Transactions").Order("created_at desc")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var settlements []models.CommissionPayment
	if err := query.Find(&settlements).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	return c.JSON(settlements)
}
