package utils

import (
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/kelechi684/home_fix/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestGenerateReferences(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:generator_test?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.CommissionPayment{}, &models.PaymentTransaction{}))

	settlement, err := GenerateSettlementReference(db)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(settlement, SettlementReferencePrefix))
	assert.Len(t, settlement, len(SettlementReferencePrefix)+12)

	invoice, err := GenerateInvoicePaymentReference(db)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(invoice, InvoiceReferencePrefix))

	// The two prefixes route gateway callbacks, so they must stay distinct.
	assert.NotEqual(t, SettlementReferencePrefix, InvoiceReferencePrefix)
}
