package promocodeController

import (
	"edupay/database"
	"edupay/middleware"
	"edupay/models"
	promocodeValidator "edupay/validators/promocode"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// AdminListPromoCodes returns all promo codes with pagination
func AdminListPromoCodes(c *fiber.Ctx) error {
	page := c.Locals("page").(int)
	limit := c.Locals("limit").(int)
	offset := (page - 1) * limit

	db := database.Database.Db.Model(&models.PromoCode{}).Where("is_deleted = ?", false)

	var total int64
	db.Count(&total)

	var promocodes []models.PromoCode
	if err := db.Offset(offset).Limit(limit).Order("created_at desc").Find(&promocodes).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch promo codes!", nil)
	}

	response := map[string]interface{}{
		"promocodes": promocodes,
		"pagination": map[string]interface{}{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Promo codes fetched successfully!", response)
}

// AdminCreatePromoCode creates a new promo code
func AdminCreatePromoCode(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedPromo").(*promocodeValidator.AdminPromoRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	code := strings.ToUpper(strings.TrimSpace(reqData.Code))

	// Codes are unique case-insensitively
	var existing models.PromoCode
	if err := database.Database.Db.Where("UPPER(code) = ? AND is_deleted = ?", code, false).First(&existing).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Promo code already exists!", nil)
	}

	promo := models.PromoCode{
		Code:            code,
		Description:     reqData.Description,
		DiscountPercent: reqData.DiscountPercent,
		DiscountAmount:  reqData.DiscountAmount,
		MaxActivations:  reqData.MaxActivations,
		IsActive:        true,
		ValidFrom:       reqData.ValidFrom,
		ValidUntil:      reqData.ValidUntil,
		CourseID:        reqData.CourseID,
	}
	if reqData.PromoType != "" {
		promo.PromoType = reqData.PromoType
	}
	if reqData.IsActive != nil {
		promo.IsActive = *reqData.IsActive
	}

	if err := database.Database.Db.Create(&promo).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create promo code!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Promo code created successfully!", promo)
}

// AdminUpdatePromoCode updates an existing promo code
func AdminUpdatePromoCode(c *fiber.Ctx) error {
	promoID, err := strconv.Atoi(c.Params("id"))
	if err != nil || promoID < 1 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid promo code ID!", nil)
	}

	reqData, ok := c.Locals("validatedPromoUpdate").(*promocodeValidator.AdminUpdateRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var promo models.PromoCode
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", promoID, false).First(&promo).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Promo code not found!", nil)
	}

	if reqData.Description != nil {
		promo.Description = *reqData.Description
	}
	if reqData.PromoType != nil {
		promo.PromoType = *reqData.PromoType
	}
	if reqData.DiscountPercent != nil {
		promo.DiscountPercent = *reqData.DiscountPercent
	}
	if reqData.DiscountAmount != nil {
		promo.DiscountAmount = *reqData.DiscountAmount
	}
	if reqData.MaxActivations != nil {
		promo.MaxActivations = *reqData.MaxActivations
	}
	if reqData.IsActive != nil {
		promo.IsActive = *reqData.IsActive
	}
	if reqData.ValidFrom != nil {
		promo.ValidFrom = reqData.ValidFrom
	}
	if reqData.ValidUntil != nil {
		promo.ValidUntil = reqData.ValidUntil
	}
	if reqData.CourseID != nil {
		promo.CourseID = reqData.CourseID
	}

	// Percent wins over fixed at checkout; keep records unambiguous anyway.
	if promo.DiscountPercent > 0 && promo.DiscountAmount > 0 {
		return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Promo code cannot carry both percent and fixed discounts!", nil)
	}

	if err := database.Database.Db.Save(&promo).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update promo code!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Promo code updated successfully!", promo)
}

// AdminDeletePromoCode soft deletes a promo code
func AdminDeletePromoCode(c *fiber.Ctx) error {
	promoID, err := strconv.Atoi(c.Params("id"))
	if err != nil || promoID < 1 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid promo code ID!", nil)
	}

	var promo models.PromoCode
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", promoID, false).First(&promo).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Promo code not found!", nil)
	}

	promo.IsDeleted = true
	promo.IsActive = false
	if err := database.Database.Db.Save(&promo).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete promo code!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Promo code deleted successfully!", nil)
}

// AdminGrantPromoCode attaches an existing promo code to a user
func AdminGrantPromoCode(c *fiber.Ctx) error {
	reqData := new(struct {
		UserID      uint   `json:"user_id"`
		PromoCodeID uint   `json:"promocode_id"`
		Source      string `json:"source"`
	})

	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	if reqData.UserID == 0 || reqData.PromoCodeID == 0 {
		return middleware.ValidationErrorResponse(c, map[string]string{
			"user_id":      "User ID is required!",
			"promocode_id": "Promo code ID is required!",
		})
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", reqData.UserID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	var promo models.PromoCode
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", reqData.PromoCodeID, false).First(&promo).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Promo code not found!", nil)
	}

	var existing models.UserPromoCode
	if err := database.Database.Db.
		Where("user_id = ? AND promo_code_id = ? AND consumed_at IS NULL AND is_deleted = ?", reqData.UserID, reqData.PromoCodeID, false).
		First(&existing).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "User already has this promo code!", nil)
	}

	grant := models.UserPromoCode{
		UserID:      reqData.UserID,
		PromoCodeID: reqData.PromoCodeID,
		Source:      "ADMIN",
	}
	if reqData.Source != "" {
		grant.Source = reqData.Source
	}

	if err := database.Database.Db.Create(&grant).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to grant promo code!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Promo code granted successfully!", grant)
}
