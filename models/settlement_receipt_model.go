package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SettlementReceipt struct {
	ID                  uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	CommissionPaymentID uuid.UUID `gorm:"not null;unique" json:"commission_payment_id"`
	ProviderID          uuid.UUID `gorm:"not null" json:"provider_id"`
	ReceiptURL          string    `gorm:"size:255;not null" json:"receipt_url"`

	CreatedAt time.Time `json:"created_at"`
}

func (s *SettlementReceipt) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
