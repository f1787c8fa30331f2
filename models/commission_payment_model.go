package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SettlementMethodGateway = "gateway"
	SettlementMethodManual  = "manual"

	SettlementStatusPending   = "pending"
	SettlementStatusCompleted = "completed"
	SettlementStatusFailed    = "failed"
)

// CommissionPayment is a provider's attempt to pay down commission debt. It
// claims an explicit batch of pending transactions at creation and settles
// all of them atomically when confirmed.
type CommissionPayment struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ProviderID uuid.UUID `gorm:"not null" json:"provider_id"`

	Amount    float64 `gorm:"type:numeric(10,2);not null" json:"amount"`
	Method    string  `gorm:"size:20;not null" json:"method"`
	Status    string  `gorm:"size:20;not null;default:'pending'" json:"status"`
	Reference string  `gorm:"size:255;not null;unique" json:"reference"`

	GatewayTxnID *string `gorm:"size:255;unique" json:"gateway_txn_id"`

	// Populated on confirmation: "gateway" for webhook/verify confirmations,
	// otherwise the admin's user id.
	ConfirmedBy *string    `gorm:"size:255" json:"confirmed_by"`
	Reason      *string    `gorm:"type:text" json:"reason"`
	PaidAt      *time.Time `json:"paid_at"`

	Transactions []PaymentTransaction `gorm:"foreignkey:CommissionPaymentID" json:"transactions,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *CommissionPayment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
