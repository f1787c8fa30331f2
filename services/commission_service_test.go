package services

import (
	"math"
	"testing"

	"github.com/kelechi684/home_fix/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateCommission_GatewaySplit(t *testing.T) {
	breakdown, err := CalculateCommission(100, models.TierVerified, models.ServiceTypeStandard, models.PaymentMethodGateway)
	require.NoError(t, err)

	assert.Equal(t, 0.18, breakdown.Rate)
	assert.Equal(t, 18.0, breakdown.PlatformCommission)
	assert.Equal(t, 82.0, breakdown.ProviderPayout)
	assert.Equal(t, 0.0, breakdown.AmountOwed)
}

func TestCalculateCommission_CashKeepsFullPayout(t *testing.T) {
	breakdown, err := CalculateCommission(100, models.TierVerified, models.ServiceTypeStandard, models.PaymentMethodCash)
	require.NoError(t, err)

	// The provider already holds the full amount; the commission becomes a
	// separate debt and is never subtracted from the payout.
	assert.Equal(t, 0.0, breakdown.PlatformCommission)
	assert.Equal(t, 100.0, breakdown.ProviderPayout)
	assert.Equal(t, 18.0, breakdown.AmountOwed)
}

func TestCalculateCommission_PremiumRate(t *testing.T) {
	breakdown, err := CalculateCommission(200, models.TierPremium, models.ServiceTypeStandard, models.PaymentMethodGateway)
	require.NoError(t, err)

	assert.Equal(t, 0.15, breakdown.Rate)
	assert.Equal(t, 30.0, breakdown.PlatformCommission)
	assert.Equal(t, 170.0, breakdown.ProviderPayout)
}

func TestCalculateCommission_EmergencySurcharge(t *testing.T) {
	breakdown, err := CalculateCommission(100, models.TierNew, models.ServiceTypeEmergency, models.PaymentMethodGateway)
	require.NoError(t, err)
	assert.InDelta(t, 0.22, breakdown.Rate, 1e-9)

	// Recurring jobs carry no surcharge.
	recurring, err := CalculateCommission(100, models.TierNew, models.ServiceTypeRecurring, models.PaymentMethodGateway)
	require.NoError(t, err)
	assert.Equal(t, 0.20, recurring.Rate)
}

func TestCalculateCommission_UnknownTierFallsBackToDefault(t *testing.T) {
	breakdown, err := CalculateCommission(100, models.Tier("PLATINUM"), models.ServiceTypeStandard, models.PaymentMethodGateway)
	require.NoError(t, err)

	// Fail closed: an unknown tier must still charge commission.
	assert.Equal(t, DefaultCommissionRate, breakdown.Rate)
	assert.Equal(t, 18.0, breakdown.PlatformCommission)
}

func TestCalculateCommission_RejectsInvalidAmounts(t *testing.T) {
	for _, amount := range []float64{0, -50, math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := CalculateCommission(amount, models.TierVerified, models.ServiceTypeStandard, models.PaymentMethodGateway)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	}
}

func TestCalculateCommission_RejectsUnknownMethod(t *testing.T) {
	_, err := CalculateCommission(100, models.TierVerified, models.ServiceTypeStandard, "crypto")
	assert.ErrorIs(t, err, ErrInvalidPaymentMethod)
}

func TestCalculateCommission_GatewaySplitConserved(t *testing.T) {
	amounts := []float64{19.99, 100, 149.95, 3333.33, 0.01}
	for _, tier := range models.OrderedTiers {
		for _, amount := range amounts {
			breakdown, err := CalculateCommission(amount, tier, models.ServiceTypeStandard, models.PaymentMethodGateway)
			require.NoError(t, err)
			assert.InDelta(t, amount, breakdown.PlatformCommission+breakdown.ProviderPayout, 0.001,
				"split of %.2f at tier %s must conserve the amount", amount, tier)
		}
	}
}

func TestCommissionRateFor_OutOfRangeTableValue(t *testing.T) {
	tierRates[models.Tier("BROKEN")] = 1.5
	defer delete(tierRates, models.Tier("BROKEN"))

	assert.Equal(t, DefaultCommissionRate, CommissionRateFor(models.Tier("BROKEN"), models.ServiceTypeStandard))
}
