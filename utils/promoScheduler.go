package utils

import (
	"edupay/database"
	"edupay/models"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// InitializePromoScheduler sets up the promo expiry and payment
// reconciliation jobs.
func InitializePromoScheduler() {
	log.Println("[PROMO-SCHEDULER] Initializing promo scheduler...")

	c := cron.New()

	// Run daily at 3 AM to deactivate expired promo codes
	c.AddFunc("0 3 * * *", func() {
		log.Println("[PROMO-SCHEDULER] Running daily promo expiry sweep...")
		DeactivateExpiredPromoCodes()
	})

	// Every 30 minutes, reconcile stale pending payments with the gateway
	c.AddFunc("*/30 * * * *", func() {
		ReconcilePendingPayments(NewPaymentGateway())
	})

	c.Start()
	log.Println("[PROMO-SCHEDULER] Promo scheduler started")
}

// DeactivateExpiredPromoCodes flips is_active off for codes past their
// validity window. Validation rejects expired codes anyway; the sweep keeps
// the admin list honest.
func DeactivateExpiredPromoCodes() {
	db := database.Database.Db

	result := db.Model(&models.PromoCode{}).
		Where("is_active = true AND is_deleted = false AND valid_until IS NOT NULL AND valid_until < ?", time.Now()).
		UpdateColumn("is_active", false)
	if result.Error != nil {
		log.Printf("[PROMO-SCHEDULER] Error deactivating expired promo codes: %v", result.Error)
		return
	}

	if result.RowsAffected > 0 {
		log.Printf("[PROMO-SCHEDULER] Deactivated %d expired promo codes", result.RowsAffected)
	}
}

// ReconcilePendingPayments polls the gateway for payments stuck in PENDING
// for over an hour (lost webhooks, abandoned checkouts) and finalizes or
// cancels them.
func ReconcilePendingPayments(gateway *PaymentGateway) {
	db := database.Database.Db
	cutoff := time.Now().Add(-1 * time.Hour)

	var stale []models.Payment
	if err := db.
		Where("status = ? AND is_deleted = false AND created_at < ?", models.PaymentStatusPending, cutoff).
		Limit(100).
		Find(&stale).Error; err != nil {
		log.Printf("[PROMO-SCHEDULER] Error fetching pending payments: %v", err)
		return
	}

	for i := range stale {
		payment := &stale[i]
		if payment.GatewayID == "" {
			continue
		}

		gatewayPayment, err := gateway.GetPayment(payment.GatewayID)
		if err != nil {
			log.Printf("[PROMO-SCHEDULER] Error fetching gateway payment %s: %v", payment.GatewayID, err)
			continue
		}

		switch gatewayPayment.Status {
		case GatewayStatusSucceeded:
			if err := FinalizeSuccessfulPayment(db, payment); err != nil {
				log.Printf("[PROMO-SCHEDULER] Error finalizing payment %d: %v", payment.ID, err)
			} else {
				log.Printf("[PROMO-SCHEDULER] Recovered succeeded payment %d (%s)", payment.ID, payment.GatewayID)
			}
		case GatewayStatusCanceled:
			if err := MarkCanceledPayment(db, payment); err != nil {
				log.Printf("[PROMO-SCHEDULER] Error canceling payment %d: %v", payment.ID, err)
			}
		}
	}
}
