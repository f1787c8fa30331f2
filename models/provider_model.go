package models

import (
	"time"

	"github.com/google/uuid"
)

type Tier string

const (
	TierNew        Tier = "NEW"
	TierVerified   Tier = "VERIFIED"
	TierPremium    Tier = "PREMIUM"
	TierEnterprise Tier = "ENTERPRISE"
)

// OrderedTiers lists tiers from lowest to highest. Promotion walks this
// slice one step at a time; there is no skipping.
var OrderedTiers = []Tier{TierNew, TierVerified, TierPremium, TierEnterprise}

// NextTier returns the tier immediately above t, or "" when t is the top
// tier or unknown.
func NextTier(t Tier) Tier {
	for i, tier := range OrderedTiers {
		if tier == t && i+1 < len(OrderedTiers) {
			return OrderedTiers[i+1]
		}
	}
	return ""
}

type Provider struct {
	UserID       uuid.UUID `gorm:"primary_key" json:"user_id"`
	BusinessName *string   `gorm:"size:255" json:"business_name"`
	Bio          *string   `gorm:"type:text" json:"bio"`
	Status       string    `gorm:"size:20;not null;default:'pending'" json:"status"`

	Tier           Tier    `gorm:"size:20;not null;default:'NEW'" json:"tier"`
	CommissionRate float64 `gorm:"type:numeric(5,4);not null;default:0.20" json:"commission_rate"`

	IsVerified        bool    `gorm:"default:false" json:"is_verified"`
	AvgRating         float64 `gorm:"type:numeric(3,2);default:0" json:"avg_rating"`
	CompletedBookings int64   `gorm:"default:0" json:"completed_bookings"`
	LifetimeRevenue   float64 `gorm:"type:numeric(12,2);default:0.00" json:"lifetime_revenue"`

	User User `gorm:"foreignkey:UserID" json:"user"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
