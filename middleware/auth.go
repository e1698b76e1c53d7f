package middleware

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// PlayerContextMiddleware extracts the player identity set by the Gateway.
// Secured routes live under /s/, so a missing header there is a hard fail.
func PlayerContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		playerID := c.Get("X-Player-ID")

		path := c.Path()
		if strings.HasPrefix(path, "/s/") && playerID == "" {
			log.Printf("❌ [PLAYER_CTX] X-Player-ID required but missing on secured route: %s", path)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing X-Player-ID — request must come through gateway with auth context",
			})
		}

		c.Locals("player_id", playerID)
		return c.Next()
	}
}
