package services

import (
	"testing"
	"time"

	"github.com/kelechi684/home_fix/database"
	"github.com/kelechi684/home_fix/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateInvoice_Cash(t *testing.T) {
	setupTestDB(t)
	provider := createTestProvider(t, models.TierVerified, true)
	booking := createCompletedBooking(t, provider.UserID, 100, models.ServiceTypeStandard)

	invoice, err := GenerateInvoice(booking.ID, models.PaymentMethodCash)
	require.NoError(t, err)

	assert.Equal(t, 0.18, invoice.CommissionRate)
	assert.Equal(t, 100.0, invoice.Amount)
	assert.Equal(t, 0.0, invoice.PlatformCommission)
	assert.Equal(t, 100.0, invoice.ProviderPayout)
	assert.Equal(t, 18.0, invoice.AmountOwed)

	var txn models.PaymentTransaction
	require.NoError(t, database.DB.First(&txn, "invoice_id = ?", invoice.ID).Error)
	assert.Equal(t, models.PaymentStatusCompleted, txn.PaymentStatus)
	assert.Equal(t, models.CommissionStatusPending, txn.CommissionStatus)
	assert.Equal(t, 18.0, txn.AmountOwed)

	var updated models.Booking
	require.NoError(t, database.DB.First(&updated, "id = ?", booking.ID).Error)
	assert.True(t, updated.InvoiceGenerated)
}

func TestGenerateInvoice_Gateway(t *testing.T) {
	setupTestDB(t)
	provider := createTestProvider(t, models.TierVerified, true)
	booking := createCompletedBooking(t, provider.UserID, 100, models.ServiceTypeStandard)

	invoice, err := GenerateInvoice(booking.ID, models.PaymentMethodGateway)
	require.NoError(t, err)

	assert.Equal(t, 18.0, invoice.PlatformCommission)
	assert.Equal(t, 82.0, invoice.ProviderPayout)
	assert.Equal(t, 0.0, invoice.AmountOwed)

	// Gateway money is still in flight; the transaction waits for the
	// gateway confirmation and never contributes to cash debt.
	var txn models.PaymentTransaction
	require.NoError(t, database.DB.First(&txn, "invoice_id = ?", invoice.ID).Error)
	assert.Equal(t, models.PaymentStatusPending, txn.PaymentStatus)
	assert.Equal(t, models.CommissionStatusPending, txn.CommissionStatus)
	assert.Equal(t, 0.0, txn.AmountOwed)
}

func TestGenerateInvoice_EmergencyCash(t *testing.T) {
	setupTestDB(t)
	provider := createTestProvider(t, models.TierPremium, true)
	booking := createCompletedBooking(t, provider.UserID, 300, models.ServiceTypeEmergency)

	invoice, err := GenerateInvoice(booking.ID, models.PaymentMethodCash)
	require.NoError(t, err)

	assert.InDelta(t, 0.17, invoice.CommissionRate, 1e-9)
	assert.Equal(t, 51.0, invoice.AmountOwed)
}

func TestGenerateInvoice_DuplicateRejected(t *testing.T) {
	setupTestDB(t)
	provider := createTestProvider(t, models.TierVerified, true)
	booking := createCompletedBooking(t, provider.UserID, 100, models.ServiceTypeStandard)

	_, err := GenerateInvoice(booking.ID, models.PaymentMethodCash)
	require.NoError(t, err)

	_, err = GenerateInvoice(booking.ID, models.PaymentMethodGateway)
	assert.ErrorIs(t, err, ErrInvoiceAlreadyExists)

	var count int64
	require.NoError(t, database.DB.Model(&models.Invoice{}).Where("booking_id = ?", booking.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGenerateInvoice_RequiresCompletedBooking(t *testing.T) {
	setupTestDB(t)
	provider := createTestProvider(t, models.TierVerified, true)
	booking := createCompletedBooking(t, provider.UserID, 100, models.ServiceTypeStandard)
	require.NoError(t, database.DB.Model(&models.Booking{}).Where("id = ?", booking.ID).Update("status", "confirmed").Error)

	_, err := GenerateInvoice(booking.ID, models.PaymentMethodCash)
	assert.ErrorIs(t, err, ErrBookingNotCompleted)

	var updated models.Booking
	require.NoError(t, database.DB.First(&updated, "id = ?", booking.ID).Error)
	assert.False(t, updated.InvoiceGenerated)
}

func TestGenerateInvoice_RejectsUnknownMethod(t *testing.T) {
	setupTestDB(t)
	provider := createTestProvider(t, models.TierVerified, true)
	booking := createCompletedBooking(t, provider.UserID, 100, models.ServiceTypeStandard)

	_, err := GenerateInvoice(booking.ID, "crypto")
	assert.ErrorIs(t, err, ErrInvalidPaymentMethod)
}

func TestGenerateInvoice_RateIsSnapshottedAtGeneration(t *testing.T) {
	setupTestDB(t)
	provider := createTestProvider(t, models.TierVerified, true)
	first := createCompletedBooking(t, provider.UserID, 100, models.ServiceTypeStandard)

	invoiceAtVerified, err := GenerateInvoice(first.ID, models.PaymentMethodGateway)
	require.NoError(t, err)

	// Wait for the async tier re-evaluation kicked off by GenerateInvoice to
	// finish before changing the tier, otherwise it could overwrite the
	// manual override. Its metric refresh makes CompletedBookings visible.
	require.Eventually(t, func() bool {
		var p models.Provider
		if err := database.DB.First(&p, "user_id = ?", provider.UserID).Error; err != nil {
			return false
		}
		return p.CompletedBookings == 1
	}, 2*time.Second, 10*time.Millisecond)

	_, err = SetTierManually(provider.UserID, models.TierPremium, "admin-1", "manual upgrade")
	require.NoError(t, err)

	second := createCompletedBooking(t, provider.UserID, 100, models.ServiceTypeStandard)
	invoiceAtPremium, err := GenerateInvoice(second.ID, models.PaymentMethodGateway)
	require.NoError(t, err)
	assert.Equal(t, 0.15, invoiceAtPremium.CommissionRate)

	var stored models.Invoice
	require.NoError(t, database.DB.First(&stored, "id = ?", invoiceAtVerified.ID).Error)
	assert.Equal(t, 0.18, stored.CommissionRate)
}

func TestConfirmInvoicePayment_Idempotent(t *testing.T) {
	setupTestDB(t)
	provider := createTestProvider(t, models.TierVerified, true)
	booking := createCompletedBooking(t, provider.UserID, 100, models.ServiceTypeStandard)

	invoice, err := GenerateInvoice(booking.ID, models.PaymentMethodGateway)
	require.NoError(t, err)

	reference := "INV-TESTREF00001"
	require.NoError(t, database.DB.Model(&models.PaymentTransaction{}).
		Where("invoice_id = ?", invoice.ID).
		Update("gateway_reference", reference).Error)

	require.NoError(t, ConfirmInvoicePayment(reference))
	require.NoError(t, ConfirmInvoicePayment(reference))

	var txn models.PaymentTransaction
	require.NoError(t, database.DB.First(&txn, "invoice_id = ?", invoice.ID).Error)
	assert.Equal(t, models.PaymentStatusCompleted, txn.PaymentStatus)
	assert.Equal(t, models.CommissionStatusCollected, txn.CommissionStatus)
}

func TestConfirmInvoicePayment_UnknownReference(t *testing.T) {
	setupTestDB(t)
	assert.Error(t, ConfirmInvoicePayment("INV-DOESNOTEXIST"))
}
