// middleware/admin.go
package middleware

import (
	"log"

	"github.com/gofiber/fiber/v2"
)

// AdminGuard allows only configured operator ids through. Apply after
// UserContextMiddleware.
func AdminGuard(adminIDs []int64) fiber.Handler {
	allowed := make(map[int64]bool, len(adminIDs))
	for _, id := range adminIDs {
		allowed[id] = true
	}

	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("user_id").(int64)
		if !ok || !allowed[userID] {
			log.Printf("🚫 [ADMIN] user %v denied on %s", c.Locals("user_id"), c.Path())
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "operator access required",
			})
		}
		return c.Next()
	}
}
