package promoRoutes

import (
	promocodeController "edupay/controllers/promocode"
	promotionController "edupay/controllers/promotion"
	"edupay/middleware"
	promocodeValidator "edupay/validators/promocode"

	"github.com/gofiber/fiber/v2"
)

func SetupPromoRoutes(app *fiber.App) {
	promoGroup := app.Group("/api/promocodes")

	// Checkout-facing endpoints
	promoGroup.Post("/validate", promocodeValidator.ValidateCode(), promocodeController.ValidatePromoCode)
	promoGroup.Get("/user", middleware.JWTMiddleware, promocodeController.GetUserPromoCodes)

	// Admin lifecycle
	adminGroup := promoGroup.Group("/admin", middleware.JWTMiddleware, middleware.AdminMiddleware)
	adminGroup.Get("/", promocodeValidator.AdminList(), promocodeController.AdminListPromoCodes)
	adminGroup.Post("/", promocodeValidator.AdminCreate(), promocodeController.AdminCreatePromoCode)
	adminGroup.Patch("/:id", promocodeValidator.AdminUpdate(), promocodeController.AdminUpdatePromoCode)
	adminGroup.Delete("/:id", promocodeController.AdminDeletePromoCode)
	adminGroup.Post("/grant", promocodeController.AdminGrantPromoCode)

	// Slot-limited promotions
	promotionGroup := app.Group("/api/promotions")
	promotionGroup.Get("/check", promotionController.CheckPromotion)

	promotionAdmin := promotionGroup.Group("/admin", middleware.JWTMiddleware, middleware.AdminMiddleware)
	promotionAdmin.Get("/", promotionController.AdminListPromotions)
	promotionAdmin.Post("/", promotionController.AdminUpsertPromotion)
}
