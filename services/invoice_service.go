package services

import (
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/kelechi684/home_fix/database"
	"github.com/kelechi684/home_fix/models"
	"github.com/kelechi684/home_fix/notifications"
	"github.com/kelechi684/home_fix/websocket"
	"gorm.io/gorm"
)

// GenerateInvoice creates the single invoice for a completed booking along
// with its payment transaction. The at-most-once guarantee rests on the
// conditional flip of bookings.invoice_generated: two concurrent calls race
// on that UPDATE and the loser gets ErrInvoiceAlreadyExists, never a second
// invoice. Invoice and transaction are written in the same database
// transaction, so neither can exist without the other.
//
// The commission rate is snapshotted from the provider row as committed at
// this moment; a tier change that lands afterwards only affects the next
// invoice.
func GenerateInvoice(bookingID uuid.UUID, paymentMethod string) (*models.Invoice, error) {
	if paymentMethod != models.PaymentMethodCash && paymentMethod != models.PaymentMethodGateway {
		return nil, ErrInvalidPaymentMethod
	}

	var invoice models.Invoice
	var booking models.Booking
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("ServiceOffering").Preload("Customer").Preload("Provider").
			First(&booking, "id = ?", bookingID).Error; err != nil {
			return err
		}
		if booking.Status != "completed" {
			return ErrBookingNotCompleted
		}

		res := tx.Model(&models.Booking{}).
			Where("id = ? AND invoice_generated = ?", bookingID, false).
			Update("invoice_generated", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInvoiceAlreadyExists
		}

		var provider models.Provider
		if err := tx.First(&provider, "user_id = ?", booking.ProviderID).Error; err != nil {
			return err
		}

		breakdown, err := CalculateCommission(booking.Price, provider.Tier, booking.ServiceOffering.ServiceType, paymentMethod)
		if err != nil {
			return err
		}

		invoice = models.Invoice{
			BookingID:          booking.ID,
			ProviderID:         booking.ProviderID,
			PaymentMethod:      paymentMethod,
			CommissionRate:     breakdown.Rate,
			Amount:             booking.Price,
			PlatformCommission: breakdown.PlatformCommission,
			ProviderPayout:     breakdown.ProviderPayout,
			AmountOwed:         breakdown.AmountOwed,
		}
		if err := tx.Create(&invoice).Error; err != nil {
			return err
		}

		txn := models.PaymentTransaction{
			InvoiceID:     invoice.ID,
			ProviderID:    booking.ProviderID,
			Amount:        booking.Price,
			AmountOwed:    breakdown.AmountOwed,
			PaymentMethod: paymentMethod,
		}
		if paymentMethod == models.PaymentMethodCash {
			// Customer already paid the provider in hand; the platform's cut
			// is now a debt on the provider.
			txn.PaymentStatus = models.PaymentStatusCompleted
			txn.CommissionStatus = models.CommissionStatusPending
		} else {
			// Gateway payment is still to be verified; commission is
			// deducted at source once it completes.
			txn.PaymentStatus = models.PaymentStatusPending
			txn.CommissionStatus = models.CommissionStatusPending
		}
		return tx.Create(&txn).Error
	})
	if err != nil {
		return nil, err
	}

	go notifications.SendEmail(
		booking.Provider.FullName,
		booking.Provider.Email,
		"Invoice Generated for Your Completed Job",
		fmt.Sprintf("<h1>Invoice Ready</h1><p>An invoice of %.2f has been generated for your completed %s job. Your payout is %.2f.</p>",
			invoice.Amount, booking.ServiceOffering.Name, invoice.ProviderPayout),
	)
	websocket.PushEvent(booking.ProviderID, "invoice.created", invoice)

	go func() {
		if err := RecomputeTier(booking.ProviderID, "system"); err != nil {
			log.Printf("🔥 Failed to re-evaluate tier for provider %s: %v", booking.ProviderID, err)
		}
	}()

	return &invoice, nil
}

// ConfirmInvoicePayment marks a gateway invoice payment as completed. Safe to
// call for every redelivered webhook: the conditional update only fires while
// the transaction is still pending.
func ConfirmInvoicePayment(reference string) error {
	return database.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.PaymentTransaction{}).
			Where("gateway_reference = ? AND payment_status = ?", reference, models.PaymentStatusPending).
			Updates(map[string]interface{}{
				"payment_status":    models.PaymentStatusCompleted,
				"commission_status": models.CommissionStatusCollected,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}

		var txn models.PaymentTransaction
		if err := tx.First(&txn, "gateway_reference = ?", reference).Error; err != nil {
			return err
		}
		if txn.PaymentStatus == models.PaymentStatusCompleted {
			return nil
		}
		return errors.New("payment transaction is not pending")
	})
}
