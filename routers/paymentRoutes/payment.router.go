package paymentRoutes

import (
	paymentController "edupay/controllers/payment"
	"edupay/middleware"
	paymentValidator "edupay/validators/payment"

	"github.com/gofiber/fiber/v2"
)

func SetupPaymentRoutes(app *fiber.App) {
	paymentGroup := app.Group("/api/payments")

	// Checkout: guests allowed, authenticated users get promo grants and
	// enrollment on fulfillment
	paymentGroup.Post("/create", paymentValidator.CreatePayment(), middleware.OptionalJWTMiddleware, paymentController.CreatePayment)

	// Gateway notifications
	paymentGroup.Post("/webhook", paymentController.HandleWebhook)

	// Admin surface
	adminGroup := paymentGroup.Group("/admin", middleware.JWTMiddleware, middleware.AdminMiddleware)
	adminGroup.Get("/", paymentController.AdminListPayments)
	adminGroup.Get("/stats", paymentController.AdminPaymentStats)

	// Status polling after redirect
	paymentGroup.Get("/:gatewayId/status", paymentController.GetPaymentStatus)
}
