package paymentController

import (
	"edupay/database"
	"edupay/models"
	"edupay/utils"
	"log"

	"github.com/gofiber/fiber/v2"
)

// webhookNotification is the gateway's push body. Only the payment id is
// used; the authoritative state is re-fetched from the gateway.
type webhookNotification struct {
	Event  string `json:"event"`
	Object struct {
		ID string `json:"id"`
	} `json:"object"`
}

// HandleWebhook handles POST /api/payments/webhook. Idempotent: redelivered
// notifications for an already-finalized payment are acknowledged and
// ignored.
func HandleWebhook(c *fiber.Ctx) error {
	var notification webhookNotification
	if err := c.BodyParser(&notification); err != nil || notification.Object.ID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid notification body"})
	}

	db := database.Database.Db

	var payment models.Payment
	if err := db.Where("gateway_id = ? AND is_deleted = ?", notification.Object.ID, false).First(&payment).Error; err != nil {
		// Unknown payment: acknowledge so the gateway stops retrying, the
		// reconciliation sweep cannot recover what we never created.
		log.Printf("[WEBHOOK] Notification for unknown payment %s", notification.Object.ID)
		return c.SendStatus(fiber.StatusOK)
	}

	// Never trust the notification body: re-fetch the payment state.
	gateway := utils.NewPaymentGateway()
	gatewayPayment, err := gateway.GetPayment(notification.Object.ID)
	if err != nil {
		log.Printf("[WEBHOOK] Failed to fetch payment %s from gateway: %v", notification.Object.ID, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Gateway unavailable"})
	}

	switch gatewayPayment.Status {
	case utils.GatewayStatusSucceeded:
		if err := utils.FinalizeSuccessfulPayment(db, &payment); err != nil {
			log.Printf("[WEBHOOK] Failed to finalize payment %d: %v", payment.ID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to finalize payment"})
		}
	case utils.GatewayStatusCanceled:
		if err := utils.MarkCanceledPayment(db, &payment); err != nil {
			log.Printf("[WEBHOOK] Failed to cancel payment %d: %v", payment.ID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to cancel payment"})
		}
	}

	return c.SendStatus(fiber.StatusOK)
}
