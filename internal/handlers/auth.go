package handlers

import (
	"database/sql"
	"fmt"
	"math"
	"time"

	"eventreg/internal/auth"
	"eventreg/internal/config"
	"eventreg/internal/models"
	"eventreg/views/pages"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

func LoginPage(c *fiber.Ctx) error {
	return render(c, pages.Login("", csrfToken(c)))
}

func LoginPost(db *sql.DB, cfg *config.Config, lockout *auth.LockoutTracker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ip := c.IP()
		if wait := lockout.RetryAfter(ip); wait > 0 {
			minutes := int(math.Ceil(wait.Minutes()))
			c.Status(fiber.StatusTooManyRequests)
			return render(c, pages.Login(fmt.Sprintf("Too many failed attempts. Try again in %d minute(s).", minutes), csrfToken(c)))
		}

		username := c.FormValue("username")
		password := c.FormValue("password")

		var user *models.User
		var err error
		if validateUsername(username) {
			user, err = models.GetUserByUsername(c.UserContext(), db, username)
		} else {
			err = fmt.Errorf("invalid username")
		}
		if err != nil || !auth.CheckPassword(user.Password, password) {
			lockout.RecordFailure(ip)
			log.Warn().Str("component", "auth").Str("ip", ip).Str("username", sanitizeLogInput(username)).Msg("failed admin login")
			c.Status(fiber.StatusUnauthorized)
			return render(c, pages.Login("Invalid username or password", csrfToken(c)))
		}

		// failures keep counting until the code step passes too
		if user.TOTPEnabled {
			pending, err := auth.GeneratePendingToken(user.ID, cfg.JWTSecret)
			if err != nil {
				return fmt.Errorf("generate pending token: %w", err)
			}
			c.Cookie(&fiber.Cookie{
				Name:     auth.PendingCookieName,
				Value:    pending,
				HTTPOnly: true,
				Secure:   cfg.SecureCookies,
				SameSite: "Strict",
				Expires:  time.Now().Add(auth.PendingTTL),
				Path:     auth.TOTPLoginPath,
			})
			return c.Redirect(auth.TOTPLoginPath)
		}

		lockout.Reset(ip)
		return startSession(c, cfg, user)
	}
}

func TOTPLoginPage(c *fiber.Ctx) error {
	if c.Cookies(auth.PendingCookieName) == "" {
		return c.Redirect(auth.LoginPath)
	}
	return render(c, pages.TOTPLogin("", csrfToken(c)))
}

// TOTPLoginPost completes a login that passed the password step. Wrong codes
// count towards the same per-IP lockout as wrong passwords.
func TOTPLoginPost(db *sql.DB, cfg *config.Config, lockout *auth.LockoutTracker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ip := c.IP()
		if wait := lockout.RetryAfter(ip); wait > 0 {
			minutes := int(math.Ceil(wait.Minutes()))
			c.Status(fiber.StatusTooManyRequests)
			return render(c, pages.TOTPLogin(fmt.Sprintf("Too many failed attempts. Try again in %d minute(s).", minutes), csrfToken(c)))
		}

		userID, err := auth.ValidatePendingToken(c.Cookies(auth.PendingCookieName), cfg.JWTSecret)
		if err != nil {
			return c.Redirect(auth.LoginPath)
		}

		user, err := models.GetUserByID(c.UserContext(), db, userID)
		if err != nil || !user.TOTPEnabled {
			return c.Redirect(auth.LoginPath)
		}

		if !auth.ValidateTOTPCode(c.FormValue("code"), user.TOTPSecret) {
			lockout.RecordFailure(ip)
			log.Warn().Str("component", "auth").Str("ip", ip).Str("username", user.Username).Msg("failed two-factor code")
			c.Status(fiber.StatusUnauthorized)
			return render(c, pages.TOTPLogin("Invalid code. Please try again.", csrfToken(c)))
		}

		lockout.Reset(ip)
		c.Cookie(&fiber.Cookie{
			Name:     auth.PendingCookieName,
			Value:    "",
			HTTPOnly: true,
			Expires:  time.Now().Add(-1 * time.Hour),
			Path:     auth.TOTPLoginPath,
		})
		return startSession(c, cfg, user)
	}
}

func startSession(c *fiber.Ctx, cfg *config.Config, user *models.User) error {
	expiry := time.Duration(cfg.JWTExpiryHours) * time.Hour
	token, err := auth.GenerateToken(user.ID, user.Username, cfg.JWTSecret, expiry)
	if err != nil {
		return fmt.Errorf("generate token: %w", err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		HTTPOnly: true,
		Secure:   cfg.SecureCookies,
		SameSite: "Lax",
		Expires:  time.Now().Add(expiry),
		Path:     "/",
	})

	log.Info().Str("component", "auth").Str("username", user.Username).Msg("admin logged in")
	return c.Redirect("/admin")
}

// Logout revokes the session token and clears the cookie.
func Logout(db *sql.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		if tokenStr := c.Cookies(auth.CookieName); tokenStr != "" {
			if claims, err := auth.ValidateToken(tokenStr, cfg.JWTSecret); err == nil && claims.ExpiresAt != nil {
				if err := auth.RevokeToken(ctx, db, claims.ID, claims.ExpiresAt.Time); err != nil {
					return err
				}
				log.Info().Str("component", "auth").Str("username", claims.Username).Msg("admin logged out")
			}
		}
		if removed, err := auth.CleanupExpiredTokens(ctx, db); err != nil {
			log.Warn().Err(err).Str("component", "auth").Msg("failed to clean revoked tokens")
		} else if removed > 0 {
			log.Debug().Str("component", "auth").Int64("removed", removed).Msg("cleaned revoked tokens")
		}

		c.Cookie(&fiber.Cookie{
			Name:     auth.CookieName,
			Value:    "",
			HTTPOnly: true,
			Expires:  time.Now().Add(-1 * time.Hour),
			Path:     "/",
		})
		return c.Redirect(auth.LoginPath)
	}
}
