package httpapi

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
)

const adminTokenHeader = "X-Admin-Token"

// AdminAuth rejects requests without the configured admin token.
func AdminAuth(token string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		got := c.Get(adminTokenHeader)
		if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unauthorized",
			})
		}
		return c.Next()
	}
}
