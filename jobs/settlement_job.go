package jobs

import (
	"log"
	"math"
	"time"

	"github.com/kelechi684/home_fix/database"
	"github.com/kelechi684/home_fix/models"
	"github.com/kelechi684/home_fix/payments"
	"github.com/kelechi684/home_fix/services"
)

// ExpireStaleSettlements sweeps gateway settlements that have been pending
// for over a day. Each one gets a last verification against the gateway in
// case the webhook was missed; anything still unpaid is failed so the
// claimed transactions go back into the provider's outstanding balance.
func ExpireStaleSettlements() {
	log.Println("Running job: ExpireStaleSettlements...")

	cutoff := time.Now().Add(-24 * time.Hour)

	var stale []models.CommissionPayment
	err := database.DB.
		Where("status = ? AND method = ? AND created_at < ?",
			models.SettlementStatusPending, models.SettlementMethodGateway, cutoff).
		Find(&stale).Error
	if err != nil {
		log.Printf("Error loading stale settlements: %v", err)
		return
	}

	if len(stale) == 0 {
		return
	}

	for _, payment := range stale {
		result, err := payments.VerifyTransaction(payment.Reference)
		if err == nil && result.Status == "success" {
			if math.Abs(result.Amount-payment.Amount) > 0.01 {
				log.Printf("🔥 CRITICAL: Amount mismatch for stale settlement %s: expected %.2f, charged %.2f. Leaving pending for manual review.",
					payment.Reference, payment.Amount, result.Amount)
				continue
			}
			log.Printf("⚠️ Missed webhook for settlement %s, confirming from sweep.", payment.Reference)
			if err := services.ConfirmSettlementByReference(payment.Reference, result.GatewayTxnID); err != nil {
				log.Printf("Error confirming settlement %s: %v", payment.Reference, err)
			}
			continue
		}

		if err := services.FailSettlement(payment.ID); err != nil {
			log.Printf("Error failing stale settlement %s: %v", payment.Reference, err)
			continue
		}
		log.Printf("Expired stale settlement %s, transactions released.", payment.Reference)
	}
}
