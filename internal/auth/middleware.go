package auth

import (
	"database/sql"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

const (
	CookieName = "eventreg_token"
	LoginPath  = "/admin/login"
)

// AuthMiddleware admits requests carrying a valid, unrevoked admin token
// cookie and redirects everything else to the login page.
func AuthMiddleware(secret string, db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := c.Cookies(CookieName)
		if tokenStr == "" {
			return c.Redirect(LoginPath)
		}

		claims, err := ValidateToken(tokenStr, secret)
		if err != nil {
			c.ClearCookie(CookieName)
			return c.Redirect(LoginPath)
		}

		revoked, err := IsRevoked(c.UserContext(), db, claims.ID)
		if err != nil {
			return fmt.Errorf("session check: %w", err)
		}
		if revoked {
			c.ClearCookie(CookieName)
			return c.Redirect(LoginPath)
		}

		c.Locals("user_id", claims.UserID)
		c.Locals("username", claims.Username)
		return c.Next()
	}
}
