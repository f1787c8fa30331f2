package models

// TierRequirement holds the thresholds a provider must clear to enter Tier.
// Seeded at boot, read-only at runtime.
type TierRequirement struct {
	ID                   uint    `gorm:"primary_key" json:"-"`
	Tier                 Tier    `gorm:"size:20;not null;unique" json:"tier"`
	MinCompletedBookings int64   `gorm:"not null" json:"min_completed_bookings"`
	MinAvgRating         float64 `gorm:"type:numeric(3,2);not null" json:"min_avg_rating"`
	MinLifetimeRevenue   float64 `gorm:"type:numeric(12,2);not null" json:"min_lifetime_revenue"`
	RequiresVerification bool    `gorm:"not null" json:"requires_verification"`
}
