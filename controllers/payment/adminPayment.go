package paymentController

import (
	"edupay/database"
	"edupay/middleware"
	"edupay/models"

	"github.com/gofiber/fiber/v2"
)

// AdminListPayments returns payments with pagination and an optional status
// filter, newest first.
func AdminListPayments(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	query := database.Database.Db.Model(&models.Payment{}).Where("is_deleted = ?", false)

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	query.Count(&total)

	var payments []models.Payment
	if err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&payments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch payments!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payments fetched successfully!", fiber.Map{
		"payments": payments,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// AdminPaymentStats returns revenue and promo usage counters for the
// dashboard.
func AdminPaymentStats(c *fiber.Ctx) error {
	db := database.Database.Db

	var totalPayments, succeededPayments, pendingPayments int64
	db.Model(&models.Payment{}).Where("is_deleted = ?", false).Count(&totalPayments)
	db.Model(&models.Payment{}).Where("is_deleted = ? AND status = ?", false, models.PaymentStatusSucceeded).Count(&succeededPayments)
	db.Model(&models.Payment{}).Where("is_deleted = ? AND status = ?", false, models.PaymentStatusPending).Count(&pendingPayments)

	var revenue int64
	db.Model(&models.Payment{}).
		Where("is_deleted = ? AND status = ?", false, models.PaymentStatusSucceeded).
		Select("COALESCE(SUM(final_amount), 0)").
		Scan(&revenue)

	var discountGiven int64
	db.Model(&models.Payment{}).
		Where("is_deleted = ? AND status = ? AND promo_code_id IS NOT NULL", false, models.PaymentStatusSucceeded).
		Select("COALESCE(SUM(base_amount - final_amount), 0)").
		Scan(&discountGiven)

	var promoPayments int64
	db.Model(&models.Payment{}).
		Where("is_deleted = ? AND status = ? AND promo_code_id IS NOT NULL", false, models.PaymentStatusSucceeded).
		Count(&promoPayments)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment stats fetched!", fiber.Map{
		"totalPayments":     totalPayments,
		"succeededPayments": succeededPayments,
		"pendingPayments":   pendingPayments,
		"revenue":           revenue,
		"promoPayments":     promoPayments,
		"discountGiven":     discountGiven,
	})
}
