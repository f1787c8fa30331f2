package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ServiceTypeStandard  = "standard"
	ServiceTypeEmergency = "emergency"
	ServiceTypeRecurring = "recurring"
)

type ServiceOffering struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ProviderID  uuid.UUID `gorm:"not null" json:"provider_id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description *string   `gorm:"type:text" json:"description"`
	ServiceType string    `gorm:"size:20;not null;default:'standard'" json:"service_type"`
	Price       float64   `gorm:"type:numeric(10,2);not null" json:"price"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`

	Provider Provider `gorm:"foreignkey:ProviderID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

func (s *ServiceOffering) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
