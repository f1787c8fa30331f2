package handlers

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/kelechi684/home_fix/database"
	"github.com/kelechi684/home_fix/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const webhookTestSecret = "sk_test_webhook_secret"

func webhookTestApp() *fiber.App {
	app := fiber.New()
	app.Post("/api/v1/payments/webhook", HandlePaystackWebhook)
	return app
}

func signWebhookBody(body []byte) string {
	mac := hmac.New(sha512.New, []byte(webhookTestSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func postSignedWebhook(t *testing.T, app *fiber.App, body string) *http.Response {
	t.Helper()

	req := httptest.NewRequest("POST", "/api/v1/payments/webhook", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-paystack-signature", signWebhookBody([]byte(body)))
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func createPendingSettlement(t *testing.T, amount float64, reference string) *models.CommissionPayment {
	t.Helper()

	payment := models.CommissionPayment{
		ProviderID: uuid.New(),
		Amount:     amount,
		Method:     models.SettlementMethodGateway,
		Status:     models.SettlementStatusPending,
		Reference:  reference,
	}
	require.NoError(t, database.DB.Create(&payment).Error)

	txn := models.PaymentTransaction{
		InvoiceID:           uuid.New(),
		ProviderID:          payment.ProviderID,
		Amount:              100,
		AmountOwed:          amount,
		PaymentMethod:       models.PaymentMethodCash,
		PaymentStatus:       models.PaymentStatusCompleted,
		CommissionStatus:    models.CommissionStatusPending,
		CommissionPaymentID: &payment.ID,
	}
	require.NoError(t, database.DB.Create(&txn).Error)
	return &payment
}

func TestHandlePaystackWebhook_SettlementAmountMismatchNotConfirmed(t *testing.T) {
	t.Setenv("PAYSTACK_SECRET_KEY", webhookTestSecret)
	setupHandlerTest(t)
	payment := createPendingSettlement(t, 18.0, "CMP-WHTESTAAAAAA")

	// A correctly signed charge of one kobo must never settle 18.00 of debt.
	body := `{"event":"charge.success","data":{"id":101,"reference":"CMP-WHTESTAAAAAA","status":"success","amount":1}}`
	resp := postSignedWebhook(t, webhookTestApp(), body)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var stored models.CommissionPayment
	require.NoError(t, database.DB.First(&stored, "id = ?", payment.ID).Error)
	assert.Equal(t, models.SettlementStatusPending, stored.Status)
	assert.Nil(t, stored.PaidAt)

	var txn models.PaymentTransaction
	require.NoError(t, database.DB.First(&txn, "commission_payment_id = ?", payment.ID).Error)
	assert.Equal(t, models.CommissionStatusPending, txn.CommissionStatus)
}

func TestHandlePaystackWebhook_SettlementMatchingAmountConfirmed(t *testing.T) {
	t.Setenv("PAYSTACK_SECRET_KEY", webhookTestSecret)
	setupHandlerTest(t)
	payment := createPendingSettlement(t, 18.0, "CMP-WHTESTBBBBBB")

	body := `{"event":"charge.success","data":{"id":202,"reference":"CMP-WHTESTBBBBBB","status":"success","amount":1800}}`
	resp := postSignedWebhook(t, webhookTestApp(), body)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var stored models.CommissionPayment
	require.NoError(t, database.DB.First(&stored, "id = ?", payment.ID).Error)
	assert.Equal(t, models.SettlementStatusCompleted, stored.Status)
	require.NotNil(t, stored.GatewayTxnID)
	assert.Equal(t, "202", *stored.GatewayTxnID)
	assert.NotNil(t, stored.PaidAt)

	var txn models.PaymentTransaction
	require.NoError(t, database.DB.First(&txn, "commission_payment_id = ?", payment.ID).Error)
	assert.Equal(t, models.CommissionStatusCollected, txn.CommissionStatus)
}

func TestHandlePaystackWebhook_InvoiceAmountMismatchNotConfirmed(t *testing.T) {
	t.Setenv("PAYSTACK_SECRET_KEY", webhookTestSecret)
	setupHandlerTest(t)

	reference := "INV-WHTESTCCCCCC"
	txn := models.PaymentTransaction{
		InvoiceID:        uuid.New(),
		ProviderID:       uuid.New(),
		Amount:           100,
		AmountOwed:       0,
		PaymentMethod:    models.PaymentMethodGateway,
		PaymentStatus:    models.PaymentStatusPending,
		CommissionStatus: models.CommissionStatusPending,
		GatewayReference: &reference,
	}
	require.NoError(t, database.DB.Create(&txn).Error)

	// Charged 50.00 against an invoice of 100.00: acknowledge, never confirm.
	body := `{"event":"charge.success","data":{"id":303,"reference":"INV-WHTESTCCCCCC","status":"success","amount":5000}}`
	resp := postSignedWebhook(t, webhookTestApp(), body)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var stored models.PaymentTransaction
	require.NoError(t, database.DB.First(&stored, "id = ?", txn.ID).Error)
	assert.Equal(t, models.PaymentStatusPending, stored.PaymentStatus)
	assert.Equal(t, models.CommissionStatusPending, stored.CommissionStatus)
}

func TestHandlePaystackWebhook_InvalidSignatureRejected(t *testing.T) {
	t.Setenv("PAYSTACK_SECRET_KEY", webhookTestSecret)
	setupHandlerTest(t)

	body := []byte(`{"event":"charge.success","data":{"id":404,"reference":"CMP-WHTESTDDDDDD","status":"success","amount":1800}}`)
	req := httptest.NewRequest("POST", "/api/v1/payments/webhook", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-paystack-signature", "not-a-real-signature")

	resp, err := webhookTestApp().Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
