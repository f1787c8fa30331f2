package services

import "errors"

// Sentinel errors for the commission engine. Handlers map these to HTTP
// status codes with errors.Is.
var (
	ErrInvalidAmount           = errors.New("amount must be a positive number")
	ErrInvalidPaymentMethod    = errors.New("payment method must be cash or gateway")
	ErrBookingNotCompleted     = errors.New("booking has not been completed")
	ErrInvoiceAlreadyExists    = errors.New("an invoice has already been generated for this booking")
	ErrAmountMismatch          = errors.New("amount does not match the outstanding total for the selected transactions")
	ErrTransactionsUnavailable = errors.New("one or more transactions are not available for settlement")
	ErrTierDataMissing         = errors.New("tier requirement data is missing")
)
