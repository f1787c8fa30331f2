package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PaymentMethodCash    = "cash"
	PaymentMethodGateway = "gateway"
)

// Invoice records the commission split for one completed booking. Rows are
// immutable once created; the rate is a snapshot of the provider's tier at
// generation time and never changes retroactively.
type Invoice struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	BookingID  uuid.UUID `gorm:"not null;unique" json:"booking_id"`
	ProviderID uuid.UUID `gorm:"not null" json:"provider_id"`

	PaymentMethod string `gorm:"size:20;not null" json:"payment_method"`

	CommissionRate     float64 `gorm:"type:numeric(5,4);not null" json:"commission_rate"`
	Amount             float64 `gorm:"type:numeric(10,2);not null" json:"amount"`
	PlatformCommission float64 `gorm:"type:numeric(10,2);not null" json:"platform_commission"`
	ProviderPayout     float64 `gorm:"type:numeric(10,2);not null" json:"provider_payout"`
	AmountOwed         float64 `gorm:"type:numeric(10,2);not null" json:"amount_owed"`

	Booking Booking `gorm:"foreignkey:BookingID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
