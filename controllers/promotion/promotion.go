package promotionController

import (
	"edupay/database"
	"edupay/middleware"
	"edupay/models"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CheckPromotion handles GET /api/promotions/check?id=<key>. The client
// treats anything but an explicit available=true as sold out, so unknown
// keys get a plain 404.
func CheckPromotion(c *fiber.Ctx) error {
	key := strings.TrimSpace(c.Query("id"))
	if key == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "id query parameter is required"})
	}

	var promotion models.Promotion
	if err := database.Database.Db.Where("key = ? AND is_deleted = ?", key, false).First(&promotion).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Акция не найдена"})
	}

	response := fiber.Map{
		"available":  promotion.Available(),
		"usedSlots":  promotion.UsedSlots,
		"totalSlots": promotion.TotalSlots,
	}
	// Uncapped offers have no slot count; reporting 0 next to
	// available=true would read as sold out.
	if promotion.TotalSlots > 0 {
		response["availableSlots"] = promotion.AvailableSlots()
	}

	return c.JSON(response)
}

// AdminListPromotions returns all promotions for the admin dashboard
func AdminListPromotions(c *fiber.Ctx) error {
	var promotions []models.Promotion
	if err := database.Database.Db.Where("is_deleted = ?", false).Order("created_at desc").Find(&promotions).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch promotions!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Promotions fetched successfully!", promotions)
}

// AdminUpsertPromotion creates or updates a promotion by key
func AdminUpsertPromotion(c *fiber.Ctx) error {
	reqData := new(struct {
		Key         string `json:"key"`
		Title       string `json:"title"`
		PriceAmount int64  `json:"price_amount"`
		TotalSlots  int    `json:"total_slots"`
		CourseID    *uint  `json:"course_id"`
		IsActive    *bool  `json:"is_active"`
	})

	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	errors := make(map[string]string)
	if strings.TrimSpace(reqData.Key) == "" {
		errors["key"] = "Key is required!"
	}
	if reqData.PriceAmount < 0 {
		errors["price_amount"] = "Price must not be negative!"
	}
	if reqData.TotalSlots < 0 {
		errors["total_slots"] = "Total slots must not be negative!"
	}
	if len(errors) > 0 {
		return middleware.ValidationErrorResponse(c, errors)
	}

	var promotion models.Promotion
	err := database.Database.Db.Where("key = ? AND is_deleted = ?", reqData.Key, false).First(&promotion).Error
	if err != nil {
		promotion = models.Promotion{Key: reqData.Key}
	}

	promotion.Title = reqData.Title
	promotion.PriceAmount = reqData.PriceAmount
	promotion.TotalSlots = reqData.TotalSlots
	promotion.CourseID = reqData.CourseID
	if reqData.IsActive != nil {
		promotion.IsActive = *reqData.IsActive
	}

	if err := database.Database.Db.Save(&promotion).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save promotion!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Promotion saved successfully!", promotion)
}
