package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Review struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	BookingID  uuid.UUID `gorm:"not null;unique" json:"booking_id"`
	CustomerID uuid.UUID `gorm:"not null" json:"customer_id"`
	ProviderID uuid.UUID `gorm:"not null" json:"provider_id"`
	Rating     int       `gorm:"not null" json:"rating"`
	Comment    *string   `gorm:"type:text" json:"comment"`

	CreatedAt time.Time `json:"created_at"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
