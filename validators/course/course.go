package courseValidator

import (
	"edupay/middleware"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// CourseRequest is the admin create payload. Prices are minor currency units.
type CourseRequest struct {
	Title            string `json:"title" validate:"required,min=3,max=200"`
	Description      string `json:"description" validate:"required,min=5"`
	Author           string `json:"author" validate:"max=100"`
	PriceAmount      int64  `json:"price_amount" validate:"gte=0"`
	PromoPriceAmount *int64 `json:"promo_price_amount" validate:"omitempty,gte=0"`
	ThumbnailURL     string `json:"thumbnail_url" validate:"omitempty,url"`
}

// CreateCourse validates course creation
func CreateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CourseRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		reqData.Title = strings.TrimSpace(reqData.Title)
		reqData.Description = strings.TrimSpace(reqData.Description)

		errors := make(map[string]string)
		if err := validate.Struct(reqData); err != nil {
			for _, fieldErr := range err.(validator.ValidationErrors) {
				errors[fieldErr.Field()] = "Invalid value for " + fieldErr.Field() + " (" + fieldErr.Tag() + ")"
			}
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCourse", reqData)
		return c.Next()
	}
}

// CourseUpdateRequest carries partial course edits.
type CourseUpdateRequest struct {
	Title            *string `json:"title" validate:"omitempty,min=3,max=200"`
	Description      *string `json:"description" validate:"omitempty,min=5"`
	Author           *string `json:"author" validate:"omitempty,max=100"`
	PriceAmount      *int64  `json:"price_amount" validate:"omitempty,gte=0"`
	PromoPriceAmount *int64  `json:"promo_price_amount" validate:"omitempty,gte=0"`
	Status           *string `json:"status" validate:"omitempty,oneof=DRAFT ACTIVE INACTIVE"`
	ThumbnailURL     *string `json:"thumbnail_url" validate:"omitempty,url"`
	IsPublished      *bool   `json:"is_published"`
}

// UpdateCourse validates course edits
func UpdateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CourseUpdateRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)
		if err := validate.Struct(reqData); err != nil {
			for _, fieldErr := range err.(validator.ValidationErrors) {
				errors[fieldErr.Field()] = "Invalid value for " + fieldErr.Field() + " (" + fieldErr.Tag() + ")"
			}
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCourseUpdate", reqData)
		return c.Next()
	}
}

// GetCourseDetail validates the :id path parameter
func GetCourseDetail() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, err := strconv.Atoi(c.Params("id"))
		if err != nil || courseID < 1 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course ID!", nil)
		}

		c.Locals("courseID", courseID)
		return c.Next()
	}
}

// CourseList validates pagination for the course list
func CourseList() fiber.Handler {
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
