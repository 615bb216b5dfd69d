package promocodeController

import (
	"edupay/database"
	"edupay/models"
	promocodeValidator "edupay/validators/promocode"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// promoCodePayload is the shape the checkout page consumes.
type promoCodePayload struct {
	ID              uint    `json:"id"`
	Code            string  `json:"code"`
	DiscountPercent float64 `json:"discountPercent"`
	DiscountAmount  int64   `json:"discountAmount"`
	Description     string  `json:"description"`
	PromoType       string  `json:"promoType"`
	CourseID        *uint   `json:"courseId"`
}

func toPromoCodePayload(promo *models.PromoCode) promoCodePayload {
	return promoCodePayload{
		ID:              promo.ID,
		Code:            promo.Code,
		DiscountPercent: promo.DiscountPercent,
		DiscountAmount:  promo.DiscountAmount,
		Description:     promo.Description,
		PromoType:       promo.PromoType,
		CourseID:        promo.CourseID,
	}
}

// CheckPromoCodeValidity runs the full validity check for a code against an
// optional course. Returns a user-facing rejection message, empty when the
// code is good.
func CheckPromoCodeValidity(promo *models.PromoCode, courseID *uint) string {
	if !promo.IsActive {
		return "Промокод неактивен"
	}

	now := time.Now()
	if promo.ValidFrom != nil && now.Before(*promo.ValidFrom) {
		return "Промокод ещё не действует"
	}
	if promo.ValidUntil != nil && now.After(*promo.ValidUntil) {
		return "Срок действия промокода истёк"
	}

	if promo.MaxActivations > 0 && promo.CurrentActivations >= promo.MaxActivations {
		return "Промокод больше не действует: лимит активаций исчерпан"
	}

	if promo.CourseID != nil {
		if courseID == nil || *courseID != *promo.CourseID {
			return "Промокод не действует для этого курса"
		}
	}

	return ""
}

// ValidatePromoCode handles POST /api/promocodes/validate for the checkout
// page. Codes match case-insensitively.
func ValidatePromoCode(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedPromoCheck").(*promocodeValidator.PromoCheckRequest)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request data"})
	}

	code := strings.ToUpper(strings.TrimSpace(reqData.Code))

	var promo models.PromoCode
	if err := database.Database.Db.Where("UPPER(code) = ? AND is_deleted = false", code).First(&promo).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Промокод не найден"})
	}

	if msg := CheckPromoCodeValidity(&promo, reqData.CourseID); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"promocode": toPromoCodePayload(&promo),
	})
}

// GetUserPromoCodes handles GET /api/promocodes/user: codes granted to the
// authenticated user that are still unspent. These were validated when
// granted, so checkout lets them through without another validate call.
func GetUserPromoCodes(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var grants []models.UserPromoCode
	if err := database.Database.Db.
		Where("user_id = ? AND consumed_at IS NULL AND is_deleted = false", userID).
		Preload("PromoCode").
		Find(&grants).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Не удалось загрузить промокоды"})
	}

	promocodes := make([]fiber.Map, 0, len(grants))
	for i := range grants {
		promo := grants[i].PromoCode
		if promo.IsDeleted || !promo.IsActive {
			continue
		}
		promocodes = append(promocodes, fiber.Map{
			"promocodeId":     promo.ID,
			"code":            promo.Code,
			"discountPercent": promo.DiscountPercent,
			"discountAmount":  promo.DiscountAmount,
			"description":     promo.Description,
			"courseId":        promo.CourseID,
		})
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"promocodes": promocodes,
	})
}
