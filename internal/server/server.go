package server

import (
	"database/sql"
	"time"

	"eventreg/internal/auth"
	"eventreg/internal/backup"
	"eventreg/internal/config"
	"eventreg/internal/handlers"
	"eventreg/internal/logging"
	"eventreg/internal/metrics"
	"eventreg/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

type Deps struct {
	Config   *config.Config
	DB       *sql.DB
	Store    handlers.RegistrationStore
	Metrics  *metrics.Metrics
	Notifier handlers.Notifier
	Backups  *backup.Manager
}

// New wires middleware and routes. Metrics, the admin area and backups are
// only mounted when their dependencies are present.
func New(d Deps) *fiber.App {
	cfg := d.Config
	if d.Store == nil {
		d.Store = models.NewRegistrationStore(d.DB)
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          handlers.ErrorHandler,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
	})

	app.Use(recover.New())
	app.Use(helmet.New())
	app.Use(logging.Middleware())
	if d.Metrics != nil {
		app.Use(d.Metrics.Middleware())
		app.Get("/metrics", d.Metrics.Handler())
	}

	if cfg.CSRFEnabled {
		app.Use(csrf.New(csrf.Config{
			KeyLookup:      "form:_csrf",
			CookieName:     "eventreg_csrf",
			CookieSameSite: "Lax",
			CookieSecure:   cfg.SecureCookies,
			CookieHTTPOnly: true,
			Expiration:     1 * time.Hour,
			ContextKey:     "csrf",
		}))
	}

	form := &handlers.FormHandler{
		Store:    d.Store,
		Title:    cfg.EventTitle,
		Metrics:  d.Metrics,
		Notifier: d.Notifier,
	}

	submit := []fiber.Handler{}
	if cfg.RateLimitPerMin > 0 {
		submit = append(submit, limiter.New(limiter.Config{
			Max:        cfg.RateLimitPerMin,
			Expiration: 1 * time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return fiber.ErrTooManyRequests
			},
		}))
	}
	submit = append(submit, form.Register)

	app.Get("/", form.Index)
	app.Post("/", submit...)

	if cfg.AdminEnabled {
		mountAdmin(app, d)
	}

	return app
}

func mountAdmin(app *fiber.App, d Deps) {
	cfg := d.Config
	lockout := auth.NewLockoutTracker(cfg.LockoutMaxAttempts, time.Duration(cfg.LockoutDurationMin)*time.Minute)

	// Public admin routes come before the protected group so its
	// middleware never sees them.
	app.Get(auth.LoginPath, handlers.LoginPage)
	app.Post(auth.LoginPath, handlers.LoginPost(d.DB, cfg, lockout))
	app.Get(auth.TOTPLoginPath, handlers.TOTPLoginPage)
	app.Post(auth.TOTPLoginPath, handlers.TOTPLoginPost(d.DB, cfg, lockout))
	app.Get("/admin/logout", handlers.Logout(d.DB, cfg))

	admin := app.Group("/admin", auth.AuthMiddleware(cfg.JWTSecret, d.DB))
	admin.Get("/", handlers.AdminDashboard(d.DB, cfg.EventTitle, d.Backups))
	admin.Get("/export.csv", handlers.ExportCSV(d.DB))
	admin.Get("/2fa", handlers.TOTPSetupPage(d.DB, cfg))
	admin.Post("/2fa/enable", handlers.TOTPEnable(d.DB))
	admin.Post("/2fa/disable", handlers.TOTPDisable(d.DB))
	if d.Backups != nil {
		admin.Post("/backups", handlers.CreateBackup(d.Backups))
	}
}
