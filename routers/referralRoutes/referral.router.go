package referralRoutes

import (
	referralController "edupay/controllers/referral"
	"edupay/middleware"
	referralValidator "edupay/validators/referral"

	"github.com/gofiber/fiber/v2"
)

func SetupReferralRoutes(app *fiber.App) {
	referralGroup := app.Group("/api/referrals")

	referralGroup.Post("/visit", referralValidator.Visit(), referralController.RecordVisit)
	referralGroup.Get("/admin/stats", middleware.JWTMiddleware, middleware.AdminMiddleware, referralController.AdminReferralStats)
}
