package promocodeValidator

import (
	"edupay/middleware"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// PromoCheckRequest is the checkout-side validation payload.
type PromoCheckRequest struct {
	Code     string `json:"code"`
	CourseID *uint  `json:"courseId"`
}

// ValidateCode validates the promo validation request. Errors here are
// local precondition failures; no lookup has happened yet.
func ValidateCode() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(PromoCheckRequest)

		if err := c.BodyParser(reqData); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		reqData.Code = strings.TrimSpace(reqData.Code)
		if reqData.Code == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Promo code is required"})
		}

		c.Locals("validatedPromoCheck", reqData)
		return c.Next()
	}
}

// AdminPromoRequest is the admin create payload.
type AdminPromoRequest struct {
	Code            string     `json:"code" validate:"required,min=3,max=64"`
	Description     string     `json:"description" validate:"max=500"`
	PromoType       string     `json:"promo_type" validate:"omitempty,oneof=GENERAL PERSONAL REFERRAL"`
	DiscountPercent float64    `json:"discount_percent" validate:"gte=0,lte=100"`
	DiscountAmount  int64      `json:"discount_amount" validate:"gte=0"`
	MaxActivations  int        `json:"max_activations" validate:"gte=0"`
	IsActive        *bool      `json:"is_active"`
	ValidFrom       *time.Time `json:"valid_from"`
	ValidUntil      *time.Time `json:"valid_until"`
	CourseID        *uint      `json:"course_id"`
}

// AdminCreate validates promo code creation
func AdminCreate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(AdminPromoRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if err := validate.Struct(reqData); err != nil {
			for _, fieldErr := range err.(validator.ValidationErrors) {
				errors[fieldErr.Field()] = "Invalid value for " + fieldErr.Field() + " (" + fieldErr.Tag() + ")"
			}
		}

		// A code carries a percent discount or a fixed discount, never both.
		if reqData.DiscountPercent > 0 && reqData.DiscountAmount > 0 {
			errors["discount"] = "Set either discount_percent or discount_amount, not both!"
		}

		if reqData.ValidFrom != nil && reqData.ValidUntil != nil && reqData.ValidUntil.Before(*reqData.ValidFrom) {
			errors["valid_until"] = "valid_until must be after valid_from!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedPromo", reqData)
		return c.Next()
	}
}

// AdminUpdateRequest carries partial promo code edits.
type AdminUpdateRequest struct {
	Description     *string    `json:"description" validate:"omitempty,max=500"`
	PromoType       *string    `json:"promo_type" validate:"omitempty,oneof=GENERAL PERSONAL REFERRAL"`
	DiscountPercent *float64   `json:"discount_percent" validate:"omitempty,gte=0,lte=100"`
	DiscountAmount  *int64     `json:"discount_amount" validate:"omitempty,gte=0"`
	MaxActivations  *int       `json:"max_activations" validate:"omitempty,gte=0"`
	IsActive        *bool      `json:"is_active"`
	ValidFrom       *time.Time `json:"valid_from"`
	ValidUntil      *time.Time `json:"valid_until"`
	CourseID        *uint      `json:"course_id"`
}

// AdminUpdate validates promo code edits
func AdminUpdate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(AdminUpdateRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if err := validate.Struct(reqData); err != nil {
			for _, fieldErr := range err.(validator.ValidationErrors) {
				errors[fieldErr.Field()] = "Invalid value for " + fieldErr.Field() + " (" + fieldErr.Tag() + ")"
			}
		}

		if reqData.DiscountPercent != nil && reqData.DiscountAmount != nil &&
			*reqData.DiscountPercent > 0 && *reqData.DiscountAmount > 0 {
			errors["discount"] = "Set either discount_percent or discount_amount, not both!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedPromoUpdate", reqData)
		return c.Next()
	}
}

// AdminList validates pagination for the admin promo code list
func AdminList() fiber.Handler {
	return func(c *fiber.Ctx) error {
		page := c.QueryInt("page", 1)
		limit := c.QueryInt("limit", 20)

		errors := make(map[string]string)
		if page < 1 {
			errors["page"] = "Page must be at least 1!"
		}
		if limit < 1 || limit > 100 {
			errors["limit"] = "Limit must be between 1 and 100!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("page", page)
		c.Locals("limit", limit)
		return c.Next()
	}
}
