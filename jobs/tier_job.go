package jobs

import (
	"log"

	"github.com/kelechi684/home_fix/database"
	"github.com/kelechi684/home_fix/models"
	"github.com/kelechi684/home_fix/services"
)

// ReevaluateProviderTiers sweeps every approved provider and promotes those
// who have grown into the next tier since the last sweep. Promotions also
// happen inline after each invoice, so this is a catch-all for providers
// whose metrics changed through reviews or admin edits.
func ReevaluateProviderTiers() {
	log.Println("Running job: ReevaluateProviderTiers...")

	var providers []models.Provider
	if err := database.DB.Where("status = ?", "approved").Find(&providers).Error; err != nil {
		log.Printf("Error loading providers for tier sweep: %v", err)
		return
	}

	for _, provider := range providers {
		if err := services.RecomputeTier(provider.UserID, "system"); err != nil {
			log.Printf("Error re-evaluating tier for provider %s: %v", provider.UserID, err)
		}
	}

	log.Printf("Tier sweep complete: %d provider(s) checked.", len(providers))
}
