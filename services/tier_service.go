package services

import (
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/kelechi684/home_fix/database"
	"github.com/kelechi684/home_fix/models"
	"gorm.io/gorm"
)

type RequirementProgress struct {
	Name     string  `json:"name"`
	Current  float64 `json:"current"`
	Required float64 `json:"required"`
	Percent  float64 `json:"percent"`
	Met      bool    `json:"met"`
}

type TierEvaluation struct {
	CurrentTier     models.Tier           `json:"current_tier"`
	NextTier        *models.Tier          `json:"next_tier"`
	Progress        []RequirementProgress `json:"progress"`
	OverallProgress float64               `json:"overall_progress"`
	Changed         bool                  `json:"changed"`
}

// EvaluateProvider reports how far a provider is from the next tier. Changed
// is true only when every defined requirement of the next tier is met; it
// never promotes on its own.
func EvaluateProvider(providerID uuid.UUID) (*TierEvaluation, error) {
	var provider models.Provider
	if err := database.DB.First(&provider, "user_id = ?", providerID).Error; err != nil {
		return nil, err
	}
	return evaluate(database.DB, &provider)
}

func evaluate(tx *gorm.DB, provider *models.Provider) (*TierEvaluation, error) {
	next := models.NextTier(provider.Tier)
	if next == "" {
		// Top of the ladder: nothing left to earn.
		return &TierEvaluation{
			CurrentTier:     provider.Tier,
			Progress:        []RequirementProgress{},
			OverallProgress: 100,
		}, nil
	}

	var req models.TierRequirement
	if err := tx.First(&req, "tier = ?", next).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTierDataMissing
		}
		return nil, err
	}

	progress := []RequirementProgress{}
	if req.MinCompletedBookings > 0 {
		progress = append(progress, numericProgress("completed_bookings",
			float64(provider.CompletedBookings), float64(req.MinCompletedBookings)))
	}
	if req.MinAvgRating > 0 {
		progress = append(progress, numericProgress("avg_rating",
			provider.AvgRating, req.MinAvgRating))
	}
	if req.MinLifetimeRevenue > 0 {
		progress = append(progress, numericProgress("lifetime_revenue",
			provider.LifetimeRevenue, req.MinLifetimeRevenue))
	}
	if req.RequiresVerification {
		item := RequirementProgress{Name: "verified", Required: 1, Met: provider.IsVerified}
		if provider.IsVerified {
			item.Current = 1
			item.Percent = 100
		}
		progress = append(progress, item)
	}

	eval := &TierEvaluation{
		CurrentTier: provider.Tier,
		NextTier:    &next,
		Progress:    progress,
	}

	allMet := len(progress) > 0
	var sum float64
	for _, item := range progress {
		sum += item.Percent
		if !item.Met {
			allMet = false
		}
	}
	if len(progress) > 0 {
		eval.OverallProgress = round2(sum / float64(len(progress)))
	}
	eval.Changed = allMet
	return eval, nil
}

func numericProgress(name string, current, required float64) RequirementProgress {
	percent := 100.0
	if current < required {
		percent = round2(current / required * 100)
	}
	return RequirementProgress{
		Name:     name,
		Current:  current,
		Required: required,
		Percent:  percent,
		Met:      current >= required,
	}
}

// RecomputeTier refreshes a provider's performance snapshot from the
// authoritative rows and promotes them one tier when every requirement of the
// next tier is met. The new tier and the refreshed rate cache commit
// together, so the next invoice always sees them as a unit.
func RecomputeTier(providerID uuid.UUID, actor string) error {
	return database.DB.Transaction(func(tx *gorm.DB) error {
		var provider models.Provider
		if err := tx.First(&provider, "user_id = ?", providerID).Error; err != nil {
			return err
		}

		if err := refreshMetrics(tx, &provider); err != nil {
			return err
		}

		eval, err := evaluate(tx, &provider)
		if err != nil {
			if errors.Is(err, ErrTierDataMissing) {
				log.Printf("⚠️ Tier requirements missing above %s, keeping provider %s at current tier", provider.Tier, providerID)
				return tx.Save(&provider).Error
			}
			return err
		}

		if eval.Changed && eval.NextTier != nil {
			fromTier := provider.Tier
			provider.Tier = *eval.NextTier
			provider.CommissionRate = CommissionRateFor(provider.Tier, models.ServiceTypeStandard)

			audit := models.TierAuditLog{
				ProviderID: providerID,
				FromTier:   fromTier,
				ToTier:     provider.Tier,
				Actor:      actor,
				Reason:     fmt.Sprintf("met all requirements for %s", provider.Tier),
			}
			if err := tx.Create(&audit).Error; err != nil {
				return err
			}
			log.Printf("✅ Provider %s promoted from %s to %s", providerID, fromTier, provider.Tier)
		}

		return tx.Save(&provider).Error
	})
}

// SetTierManually is the admin override path. It skips the requirement check
// entirely (it is also the only way to demote) but always records who did it
// and why.
func SetTierManually(providerID uuid.UUID, tier models.Tier, adminID, reason string) (*models.Provider, error) {
	valid := false
	for _, t := range models.OrderedTiers {
		if t == tier {
			valid = true
			break
		}
	}
	if !valid {
		return nil, fmt.Errorf("unknown tier %q", tier)
	}

	var provider models.Provider
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&provider, "user_id = ?", providerID).Error; err != nil {
			return err
		}
		if provider.Tier == tier {
			return nil
		}

		audit := models.TierAuditLog{
			ProviderID: providerID,
			FromTier:   provider.Tier,
			ToTier:     tier,
			Actor:      adminID,
			Reason:     reason,
		}
		if err := tx.Create(&audit).Error; err != nil {
			return err
		}

		provider.Tier = tier
		provider.CommissionRate = CommissionRateFor(tier, models.ServiceTypeStandard)
		return tx.Save(&provider).Error
	})
	if err != nil {
		return nil, err
	}
	return &provider, nil
}

func refreshMetrics(tx *gorm.DB, provider *models.Provider) error {
	var completed int64
	if err := tx.Model(&models.Booking{}).
		Where("provider_id = ? AND status = ?", provider.UserID, "completed").
		Count(&completed).Error; err != nil {
		return err
	}

	var avgRating float64
	if err := tx.Model(&models.Review{}).
		Where("provider_id = ?", provider.UserID).
		Select("COALESCE(AVG(rating), 0)").
		Scan(&avgRating).Error; err != nil {
		return err
	}

	var revenue float64
	if err := tx.Model(&models.Booking{}).
		Where("provider_id = ? AND status = ?", provider.UserID, "completed").
		Select("COALESCE(SUM(price), 0)").
		Scan(&revenue).Error; err != nil {
		return err
	}

	provider.CompletedBookings = completed
	provider.AvgRating = round2(avgRating)
	provider.LifetimeRevenue = round2(revenue)
	return nil
}
