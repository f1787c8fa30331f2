package database

import (
	"fmt"
	"log"

	config "github.com/kelechi684/home_fix/configs"
	"github.com/kelechi684/home_fix/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() {
	var err error
	dsn := config.Config("DATABASE_URL")

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		log.Fatalf("🔥 Failed to connect to database: %v", err)
	}

	fmt.Println("✅ Database connected successfully")
}

func Migrate() {
	err := DB.AutoMigrate(
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
	)
	if err != nil {
		log.Fatalf("🔥 Failed to migrate database: %v", err)
	}
	fmt.Println("✅ Database migration successful")
}

func SeedAdmin() {
	adminEmail := config.Config("ADMIN_EMAIL")
	adminPassword := config.Config("ADMIN_PASSWORD")

	var count int64
	err := DB.Model(&models.User{}).Where("email = ?", adminEmail).Count(&count).Error
	if err != nil {
		log.Fatalf("🔥 Failed to check for admin user: %v", err)
		return
	}

	if count > 0 {
		log.Println("Admin user already exists.")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("🔥 Failed to hash admin password: %v", err)
		return
	}

	adminUser := models.User{
		FullName: config.Config("ADMIN_FULL_NAME"),
		Email:    adminEmail,
		Password: string(hashedPassword),
		Role:     "admin",
	}

	if err := DB.Create(&adminUser).Error; err != nil {
		log.Fatalf("🔥 Failed to seed admin user: %v", err)
		return
	}

	log.Println("✅ Admin user seeded successfully")
}

// SeedTierRequirements loads the static thresholds for entering each tier.
// The rows are configuration, not user data: reseeding is a no-op once they
// exist.
func SeedTierRequirements() {
	requirements := []models.TierRequirement{
		{Tier: models.TierVerified, MinCompletedBookings: 10, MinAvgRating: 4.0, MinLifetimeRevenue: 1000, RequiresVerification: true},
		{Tier: models.TierPremium, MinCompletedBookings: 50, MinAvgRating: 4.5, MinLifetimeRevenue: 10000, RequiresVerification: true},
		{Tier: models.TierEnterprise, MinCompletedBookings: 200, MinAvgRating: 4.7, MinLifetimeRevenue: 50000, RequiresVerification: true},
	}

	for _, req := range requirements {
		var count int64
		if err := DB.Model(&models.TierRequirement{}).Where("tier = ?", req.Tier).Count(&count).Error; err != nil {
			log.Fatalf("🔥 Failed to check tier requirements: %v", err)
			return
		}
		if count > 0 {
			continue
		}
		if err := DB.Create(&req).Error; err != nil {
			log.Fatalf("🔥 Failed to seed tier requirement for %s: %v", req.Tier, err)
			return
		}
	}

	log.Println("✅ Tier requirements seeded successfully")
}
