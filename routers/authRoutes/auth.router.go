package authRoutes

import (
	authControllers "edupay/controllers/auth"
	authValidators "edupay/validators/auth"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App) {
	authGroup := app.Group("/api/auth")

	authGroup.Post("/signup", authValidators.Signup(), authControllers.Signup)
	authGroup.Post("/login", authValidators.Login(), authControllers.Login)
	authGroup.Post("/login/telegram", authValidators.TelegramLogin(), authControllers.TelegramLogin)
	authGroup.Post("/login/vk", authValidators.VKLogin(), authControllers.VKLogin)
}
