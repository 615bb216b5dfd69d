package referralValidator

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Visit validates a referral visit observation. The visitor token comes in
// a header so the frontend can reuse the value it keeps in browser storage.
func Visit() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Code string `json:"code"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		reqData.Code = strings.TrimSpace(reqData.Code)
		if reqData.Code == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Referral code is required"})
		}

		if strings.TrimSpace(c.Get("X-Visitor-Token")) == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "X-Visitor-Token header is required"})
		}

		c.Locals("validatedReferralCode", reqData.Code)
		return c.Next()
	}
}
