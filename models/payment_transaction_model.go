package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"

	CommissionStatusPending   = "pending"
	CommissionStatusCollected = "collected"
)

// PaymentTransaction pairs an invoice with its money movement. Payment status
// and commission status are independent: a cash job is payment-complete the
// moment the customer pays the provider, while the platform's commission on it
// is still pending until the provider settles.
type PaymentTransaction struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	InvoiceID  uuid.UUID `gorm:"not null;unique" json:"invoice_id"`
	ProviderID uuid.UUID `gorm:"not null" json:"provider_id"`

	Amount     float64 `gorm:"type:numeric(10,2);not null" json:"amount"`
	AmountOwed float64 `gorm:"type:numeric(10,2);not null;default:0.00" json:"amount_owed"`

	PaymentMethod    string `gorm:"size:20;not null" json:"payment_method"`
	PaymentStatus    string `gorm:"size:20;not null;default:'pending'" json:"payment_status"`
	CommissionStatus string `gorm:"size:20;not null;default:'pending'" json:"commission_status"`

	// Set when a settlement batch claims this transaction; cleared again if
	// that settlement fails.
	CommissionPaymentID *uuid.UUID `json:"commission_payment_id"`

	GatewayReference *string `gorm:"size:255;unique" json:"gateway_reference"`

	Invoice Invoice `gorm:"foreignkey:InvoiceID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *PaymentTransaction) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
