package paymentController

import (
	"edupay/config"
	promocodeController "edupay/controllers/promocode"
	"edupay/database"
	"edupay/models"
	"edupay/utils"
	paymentValidator "edupay/validators/payment"
	"fmt"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// CreatePayment handles POST /api/payments/create: the checkout sequence of
// promo re-validation, amount reconciliation and gateway payment creation.
// The amount the client computed is never trusted: the server recomputes it
// from the stored course price and the stored promo shape and rejects on
// mismatch.
func CreatePayment(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedPayment").(*paymentValidator.CreatePaymentRequest)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request data"})
	}

	db := database.Database.Db

	var userID *uint
	if v, ok := c.Locals("userId").(uint); ok {
		userID = &v
	}

	// Resolve the server-side base amount for this checkout type.
	var baseAmount int64
	var courseID *uint
	var description string

	switch reqData.Type {
	case models.CheckoutTypeTopup:
		if reqData.Promocode != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Промокод нельзя применить к пополнению баланса"})
		}
		if reqData.Amount <= 0 {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "Сумма пополнения должна быть больше нуля"})
		}
		baseAmount = reqData.Amount
		description = "Пополнение баланса"

	case models.CheckoutTypeCourse:
		if reqData.CourseID == nil {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "Не указан курс"})
		}
		var course models.Course
		if err := db.Where("id = ? AND is_deleted = ? AND status = ?", *reqData.CourseID, false, "ACTIVE").First(&course).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Курс не найден"})
		}
		baseAmount = course.PriceAmount
		courseID = reqData.CourseID
		description = course.Title

	default:
		// Slot-limited or bundle offers are addressed by their promotion key.
		var promotion models.Promotion
		if err := db.Where("key = ? AND is_deleted = ?", reqData.Type, false).First(&promotion).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Акция не найдена"})
		}
		// Re-checked here server-side: a stale "available" snapshot on the
		// client must not oversell the offer.
		if !promotion.Available() {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Все места по акции уже заняты"})
		}
		baseAmount = promotion.PriceAmount
		courseID = promotion.CourseID
		if courseID == nil {
			courseID = reqData.CourseID
		}
		description = promotion.Title
		if description == "" {
			description = "Покупка по акции"
		}
	}

	// Re-validate the applied promo against the store; the client's copy of
	// the discount shape is audit metadata, not an input.
	var promoDiscount *utils.PromoDiscount
	var promoID *uint
	promoCode := ""
	promoPercent := 0.0
	var promoAmount int64

	if reqData.Promocode != nil {
		var promo models.PromoCode
		if err := db.Where("id = ? AND is_deleted = ?", reqData.Promocode.ID, false).First(&promo).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Промокод не найден"})
		}
		if msg := promocodeController.CheckPromoCodeValidity(&promo, courseID); msg != "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
		}

		id := promo.ID
		promoID = &id
		promoCode = promo.Code
		promoPercent = promo.DiscountPercent
		promoAmount = promo.DiscountAmount
		promoDiscount = &utils.PromoDiscount{Percent: promo.DiscountPercent, Amount: promo.DiscountAmount}
	}

	finalAmount := utils.CalculateFinalAmount(baseAmount, promoDiscount)
	if finalAmount != reqData.Amount {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": fmt.Sprintf("Сумма платежа не совпадает с расчётной (%s ₽)", utils.FormatRubles(finalAmount)),
		})
	}

	email := reqData.Receipt.Email
	phone := ""
	if reqData.Receipt.Phone != "" {
		phone = utils.NormalizePhone(reqData.Receipt.Phone)
	}

	// Referral attribution: consume the stored visit, if any (clear-on-use).
	referralCode := ""
	if token := strings.TrimSpace(c.Get("X-Visitor-Token")); token != "" {
		if code, found := utils.ReferralVisits.Take(token); found {
			referralCode = code
		}
	}

	returnURL := reqData.ReturnURL
	if returnURL == "" {
		returnURL = config.AppConfig.PaymentReturnURL
	}

	metadata := map[string]string{"checkout_type": reqData.Type}
	if promoCode != "" {
		metadata["promocode"] = promoCode
	}

	gatewayRequest := utils.CreateGatewayPaymentRequest{
		Amount:  utils.NewGatewayAmount(finalAmount),
		Capture: true,
		Confirmation: utils.GatewayConfirmation{
			Type:      "redirect",
			ReturnURL: returnURL,
		},
		Description: description,
		Receipt: &utils.GatewayReceipt{
			Customer: utils.ReceiptCustomer{Email: email, Phone: phone},
			Items: []utils.ReceiptItem{
				{
					Description: description,
					Quantity:    "1",
					Amount:      utils.NewGatewayAmount(finalAmount),
					VatCode:     1,
				},
			},
		},
		Metadata: metadata,
	}

	idempotenceKey := uuid.NewString()

	gateway := utils.NewPaymentGateway()
	gatewayPayment, rawResponse, err := gateway.CreatePayment(gatewayRequest, idempotenceKey)
	if err != nil {
		if gwErr, ok := err.(*utils.GatewayError); ok {
			// The gateway refused; pass its message through verbatim.
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": gwErr.Error()})
		}
		log.Printf("[PAYMENT] Gateway request failed: %v", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Платёжный сервис временно недоступен, попробуйте ещё раз"})
	}

	payment := models.Payment{
		UserID:          userID,
		CourseID:        courseID,
		CheckoutType:    reqData.Type,
		PaymentMethod:   reqData.PaymentMethod,
		BaseAmount:      baseAmount,
		FinalAmount:     finalAmount,
		PromoCodeID:     promoID,
		PromoCode:       promoCode,
		DiscountPercent: promoPercent,
		DiscountAmount:  promoAmount,
		Email:           email,
		Phone:           phone,
		ReferralCode:    referralCode,
		Status:          models.PaymentStatusPending,
		GatewayID:       gatewayPayment.ID,
		IdempotenceKey:  idempotenceKey,
		GatewayResponse: datatypes.JSON(rawResponse),
	}
	if gatewayPayment.Confirmation != nil {
		payment.ConfirmationURL = gatewayPayment.Confirmation.ConfirmationURL
	}

	if err := db.Create(&payment).Error; err != nil {
		log.Printf("[PAYMENT] Failed to persist payment %s: %v", gatewayPayment.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Не удалось сохранить платёж"})
	}

	return c.JSON(fiber.Map{"confirmationUrl": payment.ConfirmationURL})
}

// GetPaymentStatus handles GET /api/payments/:gatewayId/status. The
// checkout page polls it after returning from the gateway so slot counters
// and promo state refresh without a reload.
func GetPaymentStatus(c *fiber.Ctx) error {
	gatewayID := c.Params("gatewayId")

	var payment models.Payment
	if err := database.Database.Db.Where("gateway_id = ? AND is_deleted = ?", gatewayID, false).First(&payment).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Платёж не найден"})
	}

	return c.JSON(fiber.Map{
		"status":      payment.Status,
		"finalAmount": payment.FinalAmount,
		"paidAt":      payment.PaidAt,
	})
}
