package handlers

import (
	"database/sql"
	"fmt"

	"eventreg/internal/auth"
	"eventreg/internal/config"
	"eventreg/internal/models"
	"eventreg/views/pages"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

const totpSetupPath = "/admin/2fa"

func currentUser(c *fiber.Ctx, db *sql.DB) (*models.User, error) {
	userID, ok := c.Locals("user_id").(int)
	if !ok {
		return nil, fmt.Errorf("no user in request context")
	}
	return models.GetUserByID(c.UserContext(), db, userID)
}

// TOTPSetupPage shows a fresh secret until one is confirmed. Reloading the
// page replaces an unconfirmed secret.
func TOTPSetupPage(db *sql.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := currentUser(c, db)
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}

		if user.TOTPEnabled {
			return render(c, pages.TOTPSetup(pages.TOTPSetupData{Enabled: true, CSRFToken: csrfToken(c)}))
		}

		key, qrDataURI, err := auth.GenerateTOTPSecret(user.Username, cfg.TOTPIssuer)
		if err != nil {
			return err
		}
		if err := models.SetTOTPSecret(c.UserContext(), db, user.ID, key.Secret()); err != nil {
			return err
		}

		return render(c, pages.TOTPSetup(pages.TOTPSetupData{
			QRDataURI: qrDataURI,
			Secret:    key.Secret(),
			CSRFToken: csrfToken(c),
		}))
	}
}

func TOTPEnable(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := currentUser(c, db)
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}

		if user.TOTPEnabled || user.TOTPSecret == "" {
			return c.Redirect(totpSetupPath)
		}

		if !auth.ValidateTOTPCode(c.FormValue("code"), user.TOTPSecret) {
			return render(c, pages.TOTPSetup(pages.TOTPSetupData{
				Secret:    user.TOTPSecret,
				Error:     "Invalid code. Please try again.",
				CSRFToken: csrfToken(c),
			}))
		}

		if err := models.EnableTOTP(c.UserContext(), db, user.ID); err != nil {
			return err
		}
		log.Info().Str("component", "auth").Str("username", user.Username).Msg("two-factor login enabled")
		return c.Redirect(totpSetupPath)
	}
}

func TOTPDisable(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := currentUser(c, db)
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}

		if !user.TOTPEnabled {
			return c.Redirect(totpSetupPath)
		}

		if !auth.ValidateTOTPCode(c.FormValue("code"), user.TOTPSecret) {
			return render(c, pages.TOTPSetup(pages.TOTPSetupData{
				Enabled:   true,
				Error:     "Invalid code. Two-factor login is still enabled.",
				CSRFToken: csrfToken(c),
			}))
		}

		if err := models.DisableTOTP(c.UserContext(), db, user.ID); err != nil {
			return err
		}
		log.Info().Str("component", "auth").Str("username", user.Username).Msg("two-factor login disabled")
		return c.Redirect(totpSetupPath)
	}
}
