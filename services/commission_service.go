package services

import (
	"log"
	"math"

	"github.com/kelechi684/home_fix/models"
)

// DefaultCommissionRate is the fail-closed fallback used whenever the rate
// table has no usable entry for a provider's tier. A missing rate must never
// turn into a zero commission.
const DefaultCommissionRate = 0.18

// emergencySurcharge is added on top of the tier rate for emergency call-outs.
// Recurring jobs are priced like standard ones.
const emergencySurcharge = 0.02

var tierRates = map[models.Tier]float64{
	models.TierNew:        0.20,
	models.TierVerified:   0.18,
	models.TierPremium:    0.15,
	models.TierEnterprise: 0.12,
}

type CommissionBreakdown struct {
	Rate               float64 `json:"rate"`
	PlatformCommission float64 `json:"platform_commission"`
	ProviderPayout     float64 `json:"provider_payout"`
	AmountOwed         float64 `json:"amount_owed"`
}

// CommissionRateFor resolves the rate for a tier and service type. Unknown
// tiers and out-of-range table values fall back to DefaultCommissionRate.
func CommissionRateFor(tier models.Tier, serviceType string) float64 {
	rate, ok := tierRates[tier]
	if !ok {
		log.Printf("⚠️ No commission rate configured for tier %q, using default %.2f", tier, DefaultCommissionRate)
		rate = DefaultCommissionRate
	}
	if serviceType == models.ServiceTypeEmergency {
		rate += emergencySurcharge
	}
	if rate < 0 || rate >= 1 {
		log.Printf("⚠️ Commission rate %.4f for tier %q out of range, using default %.2f", rate, tier, DefaultCommissionRate)
		rate = DefaultCommissionRate
	}
	return rate
}

// CalculateCommission computes the commission split for a single service
// price. Pure: no database access, safe to call any number of times for a
// live preview.
//
// For gateway payments the platform deducts its cut at source, so the
// provider is paid amount minus commission and owes nothing. For cash the
// provider keeps the full amount the customer handed over and owes the
// commission to the platform as a separate liability. The owed amount is
// never subtracted from the payout.
func CalculateCommission(amount float64, tier models.Tier, serviceType, paymentMethod string) (*CommissionBreakdown, error) {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, ErrInvalidAmount
	}

	rate := CommissionRateFor(tier, serviceType)

	switch paymentMethod {
	case models.PaymentMethodGateway:
		commission := round2(amount * rate)
		return &CommissionBreakdown{
			Rate:               rate,
			PlatformCommission: commission,
			ProviderPayout:     round2(amount - commission),
			AmountOwed:         0,
		}, nil
	case models.PaymentMethodCash:
		return &CommissionBreakdown{
			Rate:               rate,
			PlatformCommission: 0,
			ProviderPayout:     amount,
			AmountOwed:         round2(amount * rate),
		}, nil
	default:
		return nil, ErrInvalidPaymentMethod
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
