package handlers

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/kelechi684/home_fix/database"
	"github.com/kelechi684/home_fix/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupHandlerTest points the global connection at a fresh in-memory database,
// the same arrangement the service tests use. Each test gets its own named
// database so state never leaks between tests.
func setupHandlerTest(t *testing.T) {
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

	database.DB = db
}

// asUser wraps a handler with the parsed JWT the auth middleware would
// normally put in the request locals.
func asUser(userID uuid.UUID, role string, handler fiber.Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"user_id": userID.String(),
			"role":    role,
		})
		c.Locals("user", token)
		return handler(c)
	}
}
