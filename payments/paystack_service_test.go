package payments

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withTestGateway(t *testing.T, handler http.HandlerFunc) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	original := paystackBaseURL
	paystackBaseURL = server.URL
	t.Cleanup(func() { paystackBaseURL = original })
}

func TestInitializeTransaction(t *testing.T) {
	withTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/initialize", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		// 149.99 in the major unit goes over the wire as 14999 kobo.
		assert.Equal(t, float64(14999), payload["amount"])
		assert.Equal(t, "CMP-ABC123DEF456", payload["reference"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  true,
			"message": "Authorization URL created",
			"data": map[string]interface{}{
				"authorization_url": "https://checkout.paystack.com/abc123",
				"access_code":       "abc123",
				"reference":         "CMP-ABC123DEF456",
			},
		})
	})

	result, err := InitializeTransaction(149.99, "provider@example.com", "CMP-ABC123DEF456")
	require.NoError(t, err)

	assert.Equal(t, "https://checkout.paystack.com/abc123", result.AuthorizationURL)
	assert.Equal(t, "CMP-ABC123DEF456", result.Reference)
}

func TestVerifyTransaction_Success(t *testing.T) {
	withTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/verify/CMP-ABC123DEF456", r.URL.Path)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  true,
			"message": "Verification successful",
			"data": map[string]interface{}{
				"status":  "success",
				"amount":  4500,
				"id":      987654321,
				"paid_at": "2026-08-30T10:15:00Z",
			},
		})
	})

	result, err := VerifyTransaction("CMP-ABC123DEF456")
	require.NoError(t, err)

	assert.Equal(t, "success", result.Status)
	assert.Equal(t, 45.0, result.Amount)
	assert.Equal(t, "987654321", result.GatewayTxnID)
	require.NotNil(t, result.PaidAt)
}

func TestVerifyTransaction_FailedCharge(t *testing.T) {
	withTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  true,
			"message": "Verification successful",
			"data": map[string]interface{}{
				"status": "failed",
				"amount": 4500,
				"id":     987654321,
			},
		})
	})

	// A failed charge is still a successful verification; the caller decides
	// what to do with the status.
	result, err := VerifyTransaction("CMP-ABC123DEF456")
	require.NoError(t, err)
	assert.Equal(t, "failed", result.Status)
}

func TestVerifyTransaction_UnknownReference(t *testing.T) {
	withTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := VerifyTransaction("CMP-MISSING00000")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrVerificationFailed)
	assert.Contains(t, err.Error(), "CMP-MISSING00000")
}

func TestVerifyTransaction_GatewayUnreachable(t *testing.T) {
	original := paystackBaseURL
	paystackBaseURL = "http://127.0.0.1:1"
	t.Cleanup(func() { paystackBaseURL = original })

	_, err := VerifyTransaction("CMP-ABC123DEF456")
	assert.ErrorIs(t, err, ErrGatewayUnavailable)
}

func TestValidateWebhookSignature(t *testing.T) {
	t.Setenv("PAYSTACK_SECRET_KEY", "sk_test_secret")

	body := []byte(`{"event":"charge.success","data":{"reference":"CMP-ABC123DEF456"}}`)
	mac := hmac.New(sha512.New, []byte("sk_test_secret"))
	mac.Write(body)
	signature := hex.EncodeToString(mac.Sum(nil))

	assert.True(t, ValidateWebhookSignature(body, signature))
	assert.False(t, ValidateWebhookSignature(body, "deadbeef"))
	assert.False(t, ValidateWebhookSignature([]byte(`{"tampered":true}`), signature))
}
