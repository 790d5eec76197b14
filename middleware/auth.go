// middleware/auth.go
package middleware

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// PlatformManagerRole is the role the administrative surface requires.
const PlatformManagerRole = "platform_manager"

// UserContextMiddleware extracts the caller's wallet address and roles set
// by the Gateway and attaches them to the request context.
func UserContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		address := c.Get("X-User-Address")
		rolesStr := c.Get("X-User-Roles")

		if address == "" {
			log.Printf("❌ [USER_CTX] X-User-Address required but missing on secured route: %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing X-User-Address — request must come through gateway with auth context",
			})
		}

		var roles []string
		if rolesStr != "" {
			for _, r := range strings.Split(rolesStr, ",") {
				r = strings.TrimSpace(r)
				if r != "" {
					roles = append(roles, r)
				}
			}
		}

		// Attach to ctx for handlers
		c.Locals("user_address", address)
		c.Locals("user_roles", roles)

		return c.Next()
	}
}

// RequireRole rejects requests whose gateway context lacks the given role.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		roles, _ := c.Locals("user_roles").([]string)
		for _, r := range roles {
			if r == role {
				return c.Next()
			}
		}
		log.Printf("🚫 [RBAC] %v lacks role %q for %s", c.Locals("user_address"), role, c.Path())
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "insufficient role",
		})
	}
}
