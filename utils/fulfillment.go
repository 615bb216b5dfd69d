package utils

import (
	"edupay/models"
	"log"
	"time"

	"gorm.io/gorm"
)

// FinalizeSuccessfulPayment applies everything a settled payment owes the
// rest of the system: status flip, promo activation counter, promotion slot
// counter, enrollment, referral conversion. Idempotent per payment — a
// webhook redelivery or a reconciliation sweep hitting an already-finalized
// payment is a no-op.
func FinalizeSuccessfulPayment(db *gorm.DB, payment *models.Payment) error {
	if payment.Status == models.PaymentStatusSucceeded {
		return nil
	}

	finalized := false
	err := db.Transaction(func(tx *gorm.DB) error {
		// Re-read inside the transaction so two concurrent deliveries
		// cannot both see PENDING.
		var current models.Payment
		if err := tx.Where("id = ?", payment.ID).First(&current).Error; err != nil {
			return err
		}
		if current.Status == models.PaymentStatusSucceeded {
			return nil
		}

		now := time.Now()
		flip := tx.Model(&models.Payment{}).
			Where("id = ? AND status = ?", payment.ID, models.PaymentStatusPending).
			Updates(map[string]interface{}{"status": models.PaymentStatusSucceeded, "paid_at": now})
		if flip.Error != nil {
			return flip.Error
		}
		// Zero rows means another delivery won the flip, or the payment was
		// never PENDING. Either way the counters are not ours to move.
		if flip.RowsAffected == 0 {
			return nil
		}

		// Promo activation counter only moves on confirmed payments.
		if current.PromoCodeID != nil {
			if err := tx.Model(&models.PromoCode{}).
				Where("id = ?", *current.PromoCodeID).
				UpdateColumn("current_activations", gorm.Expr("current_activations + 1")).Error; err != nil {
				return err
			}

			if current.UserID != nil {
				// Granted codes are single-use per user.
				tx.Model(&models.UserPromoCode{}).
					Where("user_id = ? AND promo_code_id = ? AND consumed_at IS NULL", *current.UserID, *current.PromoCodeID).
					UpdateColumn("consumed_at", now)
			}
		}

		// Slot-limited offers burn a slot.
		if current.CheckoutType != models.CheckoutTypeCourse && current.CheckoutType != models.CheckoutTypeTopup {
			if err := tx.Model(&models.Promotion{}).
				Where("key = ? AND is_deleted = false", current.CheckoutType).
				UpdateColumn("used_slots", gorm.Expr("used_slots + 1")).Error; err != nil {
				return err
			}
		}

		// Open course access for authenticated buyers.
		if current.UserID != nil && current.CourseID != nil {
			var existing models.Enrollment
			err := tx.Where("user_id = ? AND course_id = ? AND is_deleted = false", *current.UserID, *current.CourseID).
				First(&existing).Error
			if err == gorm.ErrRecordNotFound {
				paymentID := current.ID
				enrollment := models.Enrollment{
					UserID:    *current.UserID,
					CourseID:  *current.CourseID,
					PaymentID: &paymentID,
					Status:    "ENROLLED",
				}
				if err := tx.Create(&enrollment).Error; err != nil {
					return err
				}
			} else if err != nil {
				return err
			}
		}

		if current.ReferralCode != "" {
			conversion := models.ReferralConversion{
				Code:      current.ReferralCode,
				PaymentID: current.ID,
				Amount:    current.FinalAmount,
			}
			if err := tx.Create(&conversion).Error; err != nil {
				return err
			}
		}

		payment.Status = models.PaymentStatusSucceeded
		payment.PaidAt = &now
		finalized = true
		return nil
	})
	if err != nil {
		return err
	}

	// Receipt goes out after commit; a failed email must not roll back the
	// sale, and only the delivery that won the flip sends one.
	if finalized && payment.Email != "" {
		courseTitle := "Пополнение баланса"
		if payment.CourseID != nil {
			var course models.Course
			if err := db.Where("id = ?", *payment.CourseID).First(&course).Error; err == nil {
				courseTitle = course.Title
			}
		}
		if err := SendReceiptEmail(payment.Email, courseTitle, payment.BaseAmount, payment.FinalAmount, payment.PromoCode); err != nil {
			log.Printf("[FULFILLMENT] Receipt email for payment %d failed: %v", payment.ID, err)
		}
	}

	return nil
}

// MarkCanceledPayment flips a pending payment to CANCELED. Finalized
// payments are left alone.
func MarkCanceledPayment(db *gorm.DB, payment *models.Payment) error {
	if payment.Status != models.PaymentStatusPending {
		return nil
	}
	err := db.Model(&models.Payment{}).
		Where("id = ? AND status = ?", payment.ID, models.PaymentStatusPending).
		UpdateColumn("status", models.PaymentStatusCanceled).Error
	if err == nil {
		payment.Status = models.PaymentStatusCanceled
	}
	return err
}
