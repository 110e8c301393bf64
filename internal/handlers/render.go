package handlers

import (
	"errors"

	"eventreg/views/pages"

	"github.com/a-h/templ"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

func render(c *fiber.Ctx, component templ.Component) error {
	c.Set("Content-Type", "text/html; charset=utf-8")
	return component.Render(c.Context(), c.Response().BodyWriter())
}

func csrfToken(c *fiber.Ctx) string {
	token, _ := c.Locals("csrf").(string)
	return token
}

// ErrorHandler renders any error that escaped a handler as the generic error
// page. Details go to the log only.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}

	title := "Something went wrong"
	text := "Please try again later."
	switch {
	case code == fiber.StatusNotFound:
		title, text = "Not found", "The page you asked for does not exist."
	case code == fiber.StatusForbidden:
		title, text = "Forbidden", "The form expired. Go back, reload the page and try again."
	case code == fiber.StatusTooManyRequests:
		title, text = "Slow down", "Too many submissions. Please wait a minute and try again."
	case code >= fiber.StatusInternalServerError:
		log.Error().Err(err).Str("component", "handlers").Str("path", c.Path()).Msg("unhandled error")
	}

	c.Response().ResetBody()
	c.Status(code)
	return render(c, pages.Error(title, text))
}
