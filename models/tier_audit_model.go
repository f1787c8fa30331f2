package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TierAuditLog records every tier change, automatic or admin-driven. Silent
// tier changes are not allowed anywhere in the codebase.
type TierAuditLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ProviderID uuid.UUID `gorm:"not null" json:"provider_id"`
	FromTier   Tier      `gorm:"size:20;not null" json:"from_tier"`
	ToTier     Tier      `gorm:"size:20;not null" json:"to_tier"`
	Actor      string    `gorm:"size:255;not null" json:"actor"`
	Reason     string    `gorm:"type:text;not null" json:"reason"`

	CreatedAt time.Time `json:"created_at"`
}

func (t *TierAuditLog) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
