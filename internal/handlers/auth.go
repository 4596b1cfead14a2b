package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"socialhub/internal/services"
)

// StatusTokenExpired is the status the client interceptor watches for: it
// refreshes the access token and replays the request exactly once.
const StatusTokenExpired = 419

// AuthMiddleware validates the bearer token and stores user_id in locals.
// Expired tokens answer 419, everything else invalid answers 401.
func AuthMiddleware(c *fiber.Ctx) error {
	token := c.Query("access_token")
	if token == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			token = authHeader[7:]
		}
	}
	if token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing token"})
	}

	userID, err := services.ValidateAccessToken(token)
	if err != nil {
		if errors.Is(err, services.ErrTokenExpired) {
			return c.Status(StatusTokenExpired).JSON(fiber.Map{"error": "token expired"})
		}
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token"})
	}

	c.Locals("user_id", userID)
	return c.Next()
}

func currentUserID(c *fiber.Ctx) int {
	return c.Locals("user_id").(int)
}
