package utils

import (
	"math/rand"
	"time"

	"github.com/kelechi684/home_fix/models"
	"gorm.io/gorm"
)

const referenceLength = 12
const letterBytes = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Reference prefixes keep settlement payments and invoice payments apart at
// verification time. A gateway callback is routed by prefix alone, so the two
// must never collide.
const (
	SettlementReferencePrefix = "CMP-"
	InvoiceReferencePrefix    = "INV-"
)

func randomReference(prefix string) string {
	seededRand := rand.New(rand.NewSource(time.Now().UnixNano()))
	b := make([]byte, referenceLength)
	for i := range b {
		b[i] = letterBytes[seededRand.Intn(len(letterBytes))]
	}
	return prefix + string(b)
}

// GenerateSettlementReference returns a CMP- reference that is unused by any
// commission payment.
func GenerateSettlementReference(tx *gorm.DB) (string, error) {
	for {
		reference := randomReference(SettlementReferencePrefix)

		var payment models.CommissionPayment
		err := tx.Where("reference = ?", reference).First(&payment).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return reference, nil
			}
			return "", err
		}
	}
}

// GenerateInvoicePaymentReference returns an INV- reference that is unused by
// any payment transaction.
func GenerateInvoicePaymentReference(tx *gorm.DB) (string, error) {
	for {
		reference := randomReference(InvoiceReferencePrefix)

		var txn models.PaymentTransaction
		err := tx.Where("gateway_reference = ?", reference).First(&txn).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return reference, nil
			}
			return "", err
		}
	}
}
