package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/kelechi684/home_fix/database"
	"github.com/kelechi684/home_fix/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB points the global connection at a fresh in-memory database.
// Each test gets its own named database so state never leaks between tests.
func setupTestDB(t *testing.T) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Provider{},
		&models.ServiceOffering{},
		&models.Booking{},
		&models.Review{},
		&models.Invoice{},
		&models.PaymentTransaction{},
		&models.CommissionPayment{},
		&models.TierRequirement{},
		&models.TierAuditLog{},
		&models.SettlementReceipt{},
	))

	requirements := []models.TierRequirement{
		{Tier: models.TierVerified, MinCompletedBookings: 10, MinAvgRating: 4.0, MinLifetimeRevenue: 1000, RequiresVerification: true},
		{Tier: models.TierPremium, MinCompletedBookings: 50, MinAvgRating: 4.5, MinLifetimeRevenue: 10000, RequiresVerification: true},
		{Tier: models.TierEnterprise, MinCompletedBookings: 200, MinAvgRating: 4.7, MinLifetimeRevenue: 50000, RequiresVerification: true},
	}
	require.NoError(t, db.Create(&requirements).Error)

	database.DB = db
}

func createTestProvider(t *testing.T, tier models.Tier, verified bool) *models.Provider {
	t.Helper()

	user := models.User{
		FullName: "Test Provider",
		Email:    fmt.Sprintf("provider-%s@example.com", uuid.New().String()),
		Password: "hashed",
		Role:     "provider",
	}
	require.NoError(t, database.DB.Create(&user).Error)

	provider := models.Provider{
		UserID:         user.ID,
		Status:         "approved",
		Tier:           tier,
		CommissionRate: CommissionRateFor(tier, models.ServiceTypeStandard),
		IsVerified:     verified,
	}
	require.NoError(t, database.DB.Create(&provider).Error)
	return &provider
}

func createCompletedBooking(t *testing.T, providerID uuid.UUID, price float64, serviceType string) *models.Booking {
	t.Helper()

	customer := models.User{
		FullName: "Test Customer",
		Email:    fmt.Sprintf("customer-%s@example.com", uuid.New().String()),
		Password: "hashed",
	}
	require.NoError(t, database.DB.Create(&customer).Error)

	offering := models.ServiceOffering{
		ProviderID:  providerID,
		Name:        "Pipe Repair",
		ServiceType: serviceType,
		Price:       price,
	}
	require.NoError(t, database.DB.Create(&offering).Error)

	now := time.Now()
	booking := models.Booking{
		CustomerID:        customer.ID,
		ProviderID:        providerID,
		ServiceOfferingID: offering.ID,
		Status:            "completed",
		Price:             price,
		Address:           "12 Test Lane",
		ScheduledAt:       now.Add(-2 * time.Hour),
		CompletedAt:       &now,
	}
	require.NoError(t, database.DB.Create(&booking).Error)
	return &booking
}

// createCashDebt inserts a settled cash transaction that still owes the given
// commission, the raw material for reconciliation tests.
func createCashDebt(t *testing.T, providerID uuid.UUID, amount, owed float64) *models.PaymentTransaction {
	t.Helper()

	txn := models.PaymentTransaction{
		InvoiceID:        uuid.New(),
		ProviderID:       providerID,
		Amount:           amount,
		AmountOwed:       owed,
		PaymentMethod:    models.PaymentMethodCash,
		PaymentStatus:    models.PaymentStatusCompleted,
		CommissionStatus: models.CommissionStatusPending,
	}
	require.NoError(t, database.DB.Create(&txn).Error)
	return &txn
}
