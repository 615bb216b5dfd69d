package main

import (
	"edupay/config"
	"edupay/database"
	authRoutes "edupay/routers/authRoutes"
	courseRoutes "edupay/routers/courseRoutes"
	paymentRoutes "edupay/routers/paymentRoutes"
	promoRoutes "edupay/routers/promoRoutes"
	referralRoutes "edupay/routers/referralRoutes"
	"edupay/utils"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()
	utils.InitializePromoScheduler()

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PATCH,DELETE",       // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization,X-Visitor-Token", // Allowed headers
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	authRoutes.SetupAuthRoutes(app)
	courseRoutes.SetupCourseRoutes(app)
	promoRoutes.SetupPromoRoutes(app)
	paymentRoutes.SetupPaymentRoutes(app)
	referralRoutes.SetupReferralRoutes(app)

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}
