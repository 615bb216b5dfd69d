package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port      string
	DBName    string
	JWTKey    string
	SaltRound int

	GatewayApiURL    string // Payment gateway base URL
	GatewayShopID    string // Payment gateway shop identifier
	GatewaySecret    string // Payment gateway secret key
	PaymentReturnURL string // Default redirect after payment confirmation

	SendGridApiKey string
	EmailSender    string

	TelegramBotToken string // For Telegram login widget hash verification
	VKSecret         string // For VK sign verification

	ReferralTTLHours int // How long a referral visit stays attributable
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	// Initialize AppConfig with values from environment variables
	AppConfig = &Config{
		Port:      getEnv("PORT", "3000"),
		DBName:    getEnv("DB_NAME", "edupay"),
		JWTKey:    getEnv("JWT_SECRET_KEY", "defaultSecret"),
		SaltRound: getEnvInt("SALT_ROUND", 10),

		GatewayApiURL:    getEnv("GATEWAY_API_URL", "https://api.yookassa.ru/v3"),
		GatewayShopID:    getEnv("GATEWAY_SHOP_ID", ""),
		GatewaySecret:    getEnv("GATEWAY_SECRET_KEY", ""),
		PaymentReturnURL: getEnv("PAYMENT_RETURN_URL", "https://edupay.ru/payment/success"),

		SendGridApiKey: getEnv("SENDGRID_API_KEY", ""),
		EmailSender:    getEnv("EMAIL_SENDER", "noreply@edupay.ru"),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		VKSecret:         getEnv("VK_SECRET_KEY", ""),

		ReferralTTLHours: getEnvInt("REFERRAL_TTL_HOURS", 72),
	}

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.GatewayShopID == "" {
		log.Println("Warning: GATEWAY_SHOP_ID is empty. Payment creation will fail.")
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}
