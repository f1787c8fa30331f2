package payments

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	config "github.com/kelechi684/home_fix/configs"
)

var paystackBaseURL = "https://api.paystack.co"

// Gateway failure modes. Unreachable is retryable; a failed or unknown
// reference is terminal and always carries the reference so the provider or
// admin can reconcile manually.
var (
	ErrGatewayUnavailable = errors.New("payment gateway is unreachable")
	ErrVerificationFailed = errors.New("payment verification failed")
)

var httpClient = &http.Client{Timeout: 10 * time.Second}

type InitializeResult struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type VerifyResult struct {
	Reference    string     `json:"reference"`
	Status       string     `json:"status"`
	Amount       float64    `json:"amount"`
	GatewayTxnID string     `json:"gateway_txn_id"`
	PaidAt       *time.Time `json:"paid_at"`
}

type initializeRequest struct {
	Email       string `json:"email"`
	Amount      int64  `json:"amount"`
	Reference   string `json:"reference"`
	CallbackURL string `json:"callback_url,omitempty"`
}

type initializeResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

type verifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status string `json:"status"`
		Amount int64  `json:"amount"`
		ID     int64  `json:"id"`
		PaidAt string `json:"paid_at"`
	} `json:"data"`
}

// InitializeTransaction opens a Paystack charge and returns the checkout URL.
// Amounts are in the major unit here and converted to kobo on the wire.
func InitializeTransaction(amount float64, email, reference string) (*InitializeResult, error) {
	payload := initializeRequest{
		Email:       email,
		Amount:      int64(math.Round(amount * 100)),
		Reference:   reference,
		CallbackURL: config.Config("PAYSTACK_CALLBACK_URL"),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal initialize payload: %v", err)
	}

	req, err := http.NewRequest("POST", paystackBaseURL+"/transaction/initialize", bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+config.Config("PAYSTACK_SECRET_KEY"))

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("paystack initialize returned %d: %s", resp.StatusCode, string(respBody))
	}

	var initResp initializeResponse
	if err := json.NewDecoder(resp.Body).Decode(&initResp); err != nil {
		return nil, err
	}
	if !initResp.Status {
		return nil, fmt.Errorf("paystack initialize rejected reference %s: %s", reference, initResp.Message)
	}

	return &InitializeResult{
		AuthorizationURL: initResp.Data.AuthorizationURL,
		AccessCode:       initResp.Data.AccessCode,
		Reference:        initResp.Data.Reference,
	}, nil
}

// VerifyTransaction asks Paystack for the final state of a reference. Safe to
// call repeatedly: it only reads gateway state, it never applies any
// downstream effect itself.
func VerifyTransaction(reference string) (*VerifyResult, error) {
	req, err := http.NewRequest("GET", paystackBaseURL+"/transaction/verify/"+reference, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+config.Config("PAYSTACK_SECRET_KEY"))

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: unknown reference %s", ErrVerificationFailed, reference)
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("paystack verify returned %d for %s: %s", resp.StatusCode, reference, string(respBody))
	}

	var verResp verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&verResp); err != nil {
		return nil, err
	}
	if !verResp.Status {
		return nil, fmt.Errorf("%w: %s (%s)", ErrVerificationFailed, reference, verResp.Message)
	}

	result := &VerifyResult{
		Reference:    reference,
		Status:       verResp.Data.Status,
		Amount:       float64(verResp.Data.Amount) / 100,
		GatewayTxnID: fmt.Sprintf("%d", verResp.Data.ID),
	}
	if verResp.Data.PaidAt != "" {
		if paidAt, err := time.Parse(time.RFC3339, verResp.Data.PaidAt); err == nil {
			result.PaidAt = &paidAt
		}
	}
	return result, nil
}

// ValidateWebhookSignature checks the x-paystack-signature header: an
// HMAC-SHA512 of the raw body keyed with the secret key.
func ValidateWebhookSignature(body []byte, signature string) bool {
	mac := hmac.New(sha512.New, []byte(config.Config("PAYSTACK_SECRET_KEY")))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
