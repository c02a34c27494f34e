// middleware/auth.go
package middleware

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// UserContextMiddleware extracts the user identity forwarded by the
// dispatcher. The dispatcher maps a chat identity to a stable user id before
// calling in, and reports its channel-subscription check in X-Subscribed.
// The core never contacts the channel API itself.
func UserContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Get("X-User-ID")
		if raw == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing X-User-ID: request must come through the dispatcher with auth context",
			})
		}
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "X-User-ID must be a numeric chat identity",
			})
		}

		c.Locals("user_id", userID)
		c.Locals("subscribed", strings.EqualFold(c.Get("X-Subscribed"), "true"))

		return c.Next()
	}
}
