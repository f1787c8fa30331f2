package services

import (
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/kelechi684/home_fix/database"
	"github.com/kelechi684/home_fix/models"
	"github.com/kelechi684/home_fix/notifications"
	"github.com/kelechi684/home_fix/utils"
	"github.com/kelechi684/home_fix/websocket"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// amountTolerance is one cent: settlement amounts must match the owed sum to
// the cent, anything past that is rejected rather than silently accepted.
const amountTolerance = 0.01

type OutstandingBalance struct {
	ProviderID     uuid.UUID   `json:"provider_id"`
	TotalOwed      float64     `json:"total_owed"`
	TransactionIDs []uuid.UUID `json:"transaction_ids"`
}

// GetOutstandingBalance recomputes what a provider owes the platform by
// summing the pending cash transactions. The total is never cached or stored
// as a counter; every caller sees the latest committed rows.
func GetOutstandingBalance(providerID uuid.UUID) (*OutstandingBalance, error) {
	var txns []models.PaymentTransaction
	if err := database.DB.
		Where("provider_id = ? AND commission_status = ? AND amount_owed > 0", providerID, models.CommissionStatusPending).
		Order("created_at asc").
		Find(&txns).Error; err != nil {
		return nil, err
	}

	balance := &OutstandingBalance{ProviderID: providerID, TransactionIDs: []uuid.UUID{}}
	for _, txn := range txns {
		balance.TotalOwed += txn.AmountOwed
		balance.TransactionIDs = append(balance.TransactionIDs, txn.ID)
	}
	balance.TotalOwed = round2(balance.TotalOwed)
	return balance, nil
}

// InitiateSettlement opens a commission payment over an explicit batch of
// pending transactions. The requested amount must equal the batch's owed sum
// to the cent. Claiming the transactions (stamping commission_payment_id)
// happens in the same database transaction, so a transaction can never sit in
// two open settlements.
func InitiateSettlement(providerID uuid.UUID, amount float64, method string, transactionIDs []uuid.UUID) (*models.CommissionPayment, error) {
	if method != models.SettlementMethodGateway && method != models.SettlementMethodManual {
		return nil, fmt.Errorf("unknown settlement method %q", method)
	}
	if len(transactionIDs) == 0 {
		return nil, ErrTransactionsUnavailable
	}

	var payment models.CommissionPayment
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		query := tx.Where("id IN ? AND provider_id = ? AND commission_status = ? AND commission_payment_id IS NULL",
			transactionIDs, providerID, models.CommissionStatusPending)
		// sqlite has no row locks; the in-memory test database runs on it.
		if tx.Dialector.Name() != "sqlite" {
			query = query.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var txns []models.PaymentTransaction
		if err := query.Find(&txns).Error; err != nil {
			return err
		}
		if len(txns) != len(transactionIDs) {
			return ErrTransactionsUnavailable
		}

		var total float64
		for _, txn := range txns {
			total += txn.AmountOwed
		}
		total = round2(total)
		if math.Abs(total-amount) > amountTolerance {
			return ErrAmountMismatch
		}

		reference, err := utils.GenerateSettlementReference(tx)
		if err != nil {
			return err
		}

		payment = models.CommissionPayment{
			ProviderID: providerID,
			Amount:     total,
			Method:     method,
			Status:     models.SettlementStatusPending,
			Reference:  reference,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		return tx.Model(&models.PaymentTransaction{}).
			Where("id IN ?", transactionIDs).
			Update("commission_payment_id", payment.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// ConfirmSettlement settles a commission payment: marks it completed and
// flips every claimed transaction to collected in one database transaction.
// Idempotent by construction: the status flip is a conditional update, so a
// redelivered gateway callback (or an admin double-click) finds zero rows to
// update and becomes a no-op.
func ConfirmSettlement(paymentID uuid.UUID, confirmedBy string, reason *string, gatewayTxnID *string) error {
	alreadySettled := false
	var payment models.CommissionPayment

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		updates := map[string]interface{}{
			"status":       models.SettlementStatusCompleted,
			"confirmed_by": confirmedBy,
			"paid_at":      now,
		}
		if reason != nil {
			updates["reason"] = *reason
		}
		if gatewayTxnID != nil {
			updates["gateway_txn_id"] = *gatewayTxnID
		}

		res := tx.Model(&models.CommissionPayment{}).
			Where("id = ? AND status = ?", paymentID, models.SettlementStatusPending).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var existing models.CommissionPayment
			if err := tx.First(&existing, "id = ?", paymentID).Error; err != nil {
				return err
			}
			if existing.Status == models.SettlementStatusCompleted {
				alreadySettled = true
				return nil
			}
			return fmt.Errorf("settlement %s is %s and cannot be confirmed", existing.Reference, existing.Status)
		}

		if err := tx.Model(&models.PaymentTransaction{}).
			Where("commission_payment_id = ?", paymentID).
			Update("commission_status", models.CommissionStatusCollected).Error; err != nil {
			return err
		}

		return tx.Preload("Transactions").First(&payment, "id = ?", paymentID).Error
	})
	if err != nil || alreadySettled {
		return err
	}

	log.Printf("✅ Settlement %s confirmed by %s (%.2f across %d transactions)",
		payment.Reference, confirmedBy, payment.Amount, len(payment.Transactions))

	var provider models.Provider
	if err := database.DB.Preload("User").First(&provider, "user_id = ?", payment.ProviderID).Error; err == nil {
		go notifications.SendEmail(
			provider.User.FullName,
			provider.User.Email,
			"Commission Payment Received",
			fmt.Sprintf("<h1>Payment Confirmed</h1><p>Your commission payment of %.2f (ref %s) has been received. Your outstanding balance has been updated.</p>",
				payment.Amount, payment.Reference),
		)
	}
	websocket.PushEvent(payment.ProviderID, "settlement.completed", payment)
	go GenerateSettlementReceipt(payment)

	return nil
}

// ConfirmSettlementByReference is the gateway-facing entry point used by the
// webhook and the verify endpoint, which only know the CMP- reference.
func ConfirmSettlementByReference(reference string, gatewayTxnID string) error {
	var payment models.CommissionPayment
	if err := database.DB.First(&payment, "reference = ?", reference).Error; err != nil {
		return err
	}
	return ConfirmSettlement(payment.ID, "gateway", nil, &gatewayTxnID)
}

// FailSettlement marks a pending settlement failed and releases its claimed
// transactions so they can be batched into a new attempt. Debt is untouched:
// the transactions simply go back to contributing to the outstanding balance.
func FailSettlement(paymentID uuid.UUID) error {
	return database.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.CommissionPayment{}).
			Where("id = ? AND status = ?", paymentID, models.SettlementStatusPending).
			Update("status", models.SettlementStatusFailed)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var existing models.CommissionPayment
			if err := tx.First(&existing, "id = ?", paymentID).Error; err != nil {
				return err
			}
			if existing.Status == models.SettlementStatusFailed {
				return nil
			}
			return errors.New("only pending settlements can be failed")
		}

		return tx.Model(&models.PaymentTransaction{}).
			Where("commission_payment_id = ? AND commission_status = ?", paymentID, models.CommissionStatusPending).
			Update("commission_payment_id", nil).Error
	})
}
