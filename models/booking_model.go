package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Booking struct {
	ID                uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	CustomerID        uuid.UUID `gorm:"not null" json:"customer_id"`
	ProviderID        uuid.UUID `gorm:"not null" json:"provider_id"`
	ServiceOfferingID uuid.UUID `gorm:"not null" json:"service_offering_id"`
	Status            string    `gorm:"size:20;not null;default:'pending'" json:"status"`
	Price             float64   `gorm:"type:numeric(10,2);not null" json:"price"`

	Address     string  `gorm:"size:255;not null" json:"address"`
	Description *string `gorm:"type:text" json:"description"`

	ScheduledAt time.Time  `gorm:"not null" json:"scheduled_at"`
	CompletedAt *time.Time `json:"completed_at"`

	// InvoiceGenerated is flipped by a conditional update so a booking can
	// never produce two invoices, no matter how the request is retried.
	InvoiceGenerated bool `gorm:"not null;default:false" json:"invoice_generated"`

	Customer        User            `gorm:"foreignkey:CustomerID" json:"customer"`
	Provider        User            `gorm:"foreignkey:ProviderID" json:"provider"`
	ServiceOffering ServiceOffering `gorm:"foreignkey:ServiceOfferingID" json:"service_offering"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
