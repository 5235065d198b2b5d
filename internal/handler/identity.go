package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const userIDKey = "userID"

// RequireUser rejects requests that do not carry a user id in header.
// The id is stored in the request locals for UserID.
func RequireUser(header string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := strings.TrimSpace(c.Get(header))
		if userID == "" {
			return fail(c, fiber.StatusUnauthorized, errUnauthorized, "authentication required")
		}
		c.Locals(userIDKey, userID)
		return c.Next()
	}
}

// UserID returns the id stored by RequireUser, or "" if none.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(userIDKey).(string)
	return id
}
