package referralController

import (
	"edupay/config"
	"edupay/database"
	"edupay/middleware"
	"edupay/models"
	"edupay/utils"
	"time"

	"github.com/gofiber/fiber/v2"
)

// RecordVisit handles POST /api/referrals/visit: the landing page reports a
// referral code together with the visitor token it keeps in browser
// storage. The observation lives in the TTL store until a checkout consumes
// it; re-visiting refreshes the TTL and the code.
func RecordVisit(c *fiber.Ctx) error {
	code, ok := c.Locals("validatedReferralCode").(string)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request data"})
	}

	token := c.Get("X-Visitor-Token")
	ttl := time.Duration(config.AppConfig.ReferralTTLHours) * time.Hour
	utils.ReferralVisits.Set(token, code, ttl)

	return c.JSON(fiber.Map{"success": true})
}

// AdminReferralStats returns conversion counts and attributed revenue per
// referral code.
func AdminReferralStats(c *fiber.Ctx) error {
	type row struct {
		Code        string `json:"code"`
		Conversions int64  `json:"conversions"`
		Revenue     int64  `json:"revenue"`
	}

	var rows []row
	if err := database.Database.Db.Model(&models.ReferralConversion{}).
		Select("code, COUNT(*) as conversions, COALESCE(SUM(amount), 0) as revenue").
		Where("is_deleted = ?", false).
		Group("code").
		Order("revenue desc").
		Scan(&rows).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch referral stats!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Referral stats fetched!", rows)
}
