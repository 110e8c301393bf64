package handlers

import (
	"context"
	"fmt"

	"eventreg/internal/metrics"
	"eventreg/internal/models"
	"eventreg/internal/signup"
	"eventreg/views/pages"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

type RegistrationStore interface {
	List(ctx context.Context) ([]models.Registration, error)
	Insert(ctx context.Context, r *models.Registration) (bool, error)
}

type Notifier interface {
	NotifyAsync(r models.Registration)
}

const (
	registerFailedTitle = "Could not register!"
	registerFailedText  = "Have you registered before?"
)

// FormHandler serves the public registration form.
type FormHandler struct {
	Store    RegistrationStore
	Title    string
	Metrics  *metrics.Metrics
	Notifier Notifier
}

func (h *FormHandler) Index(c *fiber.Ctx) error {
	registrations, err := h.Store.List(c.UserContext())
	if err != nil {
		return fmt.Errorf("list registrations: %w", err)
	}

	return render(c, pages.Index(pages.IndexData{
		Title:         h.Title,
		Registrations: registrations,
		CSRFToken:     csrfToken(c),
	}))
}

func (h *FormHandler) Register(c *fiber.Ctx) error {
	res := signup.Process(signup.Submission{
		Name:    c.FormValue("name"),
		Phone:   c.FormValue("phone"),
		Comment: c.FormValue("comment"),
	})

	if !res.Valid() {
		h.Metrics.RecordRegistration(metrics.OutcomeInvalid)

		registrations, err := h.Store.List(c.UserContext())
		if err != nil {
			return fmt.Errorf("list registrations: %w", err)
		}
		return render(c, pages.Index(pages.IndexData{
			Title:         h.Title,
			Form:          res.Form,
			Errors:        res.Errors,
			Registrations: registrations,
			CSRFToken:     csrfToken(c),
		}))
	}

	reg := &models.Registration{
		Name:    res.Registration.Name,
		Phone:   res.Registration.Phone,
		Comment: res.Registration.Comment,
	}

	inserted, err := h.Store.Insert(c.UserContext(), reg)
	switch {
	case err != nil:
		log.Error().Err(err).Str("component", "handlers").Str("name", sanitizeLogInput(reg.Name)).Msg("failed to insert registration")
		h.Metrics.RecordRegistration(metrics.OutcomeError)
	case !inserted:
		log.Info().Str("component", "handlers").Str("name", sanitizeLogInput(reg.Name)).Msg("duplicate registration rejected")
		h.Metrics.RecordRegistration(metrics.OutcomeDuplicate)
	default:
		h.Metrics.RecordRegistration(metrics.OutcomeCreated)
		if h.Notifier != nil {
			h.Notifier.NotifyAsync(*reg)
		}
		return c.Redirect("/")
	}

	return render(c, pages.Error(registerFailedTitle, registerFailedText))
}
