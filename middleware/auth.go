// middleware/auth.go
package middleware

import (
	"log"

	"github.com/gofiber/fiber/v2"
)

// PlayerContextMiddleware extracts the caller's wallet address from the
// X-Player-Address header set by the wallet gateway. Mutating player
// operations cannot be attributed without it, so it is required on every
// route this middleware guards.
func PlayerContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		player := c.Get("X-Player-Address")
		if player == "" {
			log.Printf("❌ [PLAYER_CTX] X-Player-Address missing on %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing X-Player-Address — request must carry the caller's wallet address",
			})
		}

		c.Locals("player_address", player)
		return c.Next()
	}
}
