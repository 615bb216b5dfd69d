package paymentValidator

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// ReceiptContact is the receipt destination; at least one field is required.
type ReceiptContact struct {
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone"`
}

// AppliedPromo is the promo snapshot the client sends for audit. The server
// re-validates against the stored code before trusting any of it.
type AppliedPromo struct {
	ID              uint    `json:"id" validate:"required"`
	Code            string  `json:"code"`
	DiscountPercent float64 `json:"discountPercent" validate:"gte=0,lte=100"`
	DiscountAmount  int64   `json:"discountAmount" validate:"gte=0"`
}

// CreatePaymentRequest mirrors the checkout page's payment-creation call.
type CreatePaymentRequest struct {
	CourseID      *uint          `json:"courseId"`
	PaymentMethod string         `json:"paymentMethod" validate:"required,oneof=bank_card sbp sberbank yoo_money"`
	Amount        int64          `json:"amount" validate:"gte=0"`
	Type          string         `json:"type" validate:"required,min=1,max=64"`
	ReturnURL     string         `json:"returnUrl" validate:"omitempty,url"`
	Receipt       ReceiptContact `json:"receipt"`
	Promocode     *AppliedPromo  `json:"promocode"`
}

// CreatePayment validates the checkout request. The contact rule is checked
// here so a request with no email and no phone never reaches the gateway.
func CreatePayment() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreatePaymentRequest)

		if err := c.BodyParser(reqData); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		reqData.Receipt.Email = strings.TrimSpace(reqData.Receipt.Email)
		reqData.Receipt.Phone = strings.TrimSpace(reqData.Receipt.Phone)

		if err := validate.Struct(reqData); err != nil {
			fieldErr := err.(validator.ValidationErrors)[0]
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error": "Invalid value for " + fieldErr.Field(),
			})
		}

		if reqData.Receipt.Email == "" && reqData.Receipt.Phone == "" {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error": "Укажите email или телефон для чека",
			})
		}

		c.Locals("validatedPayment", reqData)
		return c.Next()
	}
}
