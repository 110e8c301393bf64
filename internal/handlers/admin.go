package handlers

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"html"
	"net/url"
	"strconv"

	"eventreg/internal/backup"
	"eventreg/internal/models"
	"eventreg/views/pages"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

const perPage = 25

func AdminDashboard(db *sql.DB, title string, bm *backup.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		page := parsePage(c.Query("page", "1"))

		total, err := models.CountRegistrations(ctx, db)
		if err != nil {
			return fmt.Errorf("count registrations: %w", err)
		}

		registrations, err := models.GetRegistrationsPaginated(ctx, db, perPage, (page-1)*perPage)
		if err != nil {
			return fmt.Errorf("page registrations: %w", err)
		}

		var backups []backup.BackupInfo
		if bm != nil {
			backups, err = bm.ListBackups()
			if err != nil {
				log.Warn().Err(err).Str("component", "handlers").Msg("failed to list backups")
			}
		}

		var flash string
		if name := c.Query("backup"); name != "" && hasBackup(backups, name) {
			flash = "Backup created: " + name
		}

		username, _ := c.Locals("username").(string)
		return render(c, pages.Admin(pages.AdminData{
			Title:         title,
			Username:      username,
			Registrations: registrations,
			Total:         total,
			Page:          page,
			PerPage:       perPage,
			Backups:       backups,
			CSRFToken:     csrfToken(c),
			Flash:         flash,
		}))
	}
}

// hasBackup reports whether name is one of the listed archives.
func hasBackup(backups []backup.BackupInfo, name string) bool {
	for _, b := range backups {
		if b.Name == name {
			return true
		}
	}
	return false
}

// ExportCSV streams every registration. Names are stored HTML-escaped and
// are decoded for the spreadsheet.
func ExportCSV(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		registrations, err := models.ListRegistrations(c.UserContext(), db)
		if err != nil {
			return fmt.Errorf("export registrations: %w", err)
		}

		c.Set("Content-Type", "text/csv; charset=utf-8")
		c.Set("Content-Disposition", "attachment; filename=registrations.csv")

		w := csv.NewWriter(c.Response().BodyWriter())
		if err := w.Write([]string{"ID", "Name", "Phone", "Comment", "Registered"}); err != nil {
			return err
		}
		for _, r := range registrations {
			if err := w.Write([]string{
				strconv.Itoa(r.ID),
				html.UnescapeString(r.Name),
				r.Phone,
				html.UnescapeString(r.Comment),
				r.CreatedAt.Format("2006-01-02 15:04:05"),
			}); err != nil {
				return err
			}
		}
		w.Flush()
		return w.Error()
	}
}

func CreateBackup(bm *backup.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		bi, err := bm.BackupDatabase(c.UserContext())
		if err != nil {
			return fmt.Errorf("database backup: %w", err)
		}

		log.Info().Str("component", "backup").Str("name", bi.Name).Str("size", backup.FormatSize(bi.Size)).Msg("database backup created")
		if removed := bm.CleanOldBackups(); removed > 0 {
			log.Info().Str("component", "backup").Int("removed", removed).Msg("cleaned old backups")
		}

		return c.Redirect("/admin?backup=" + url.QueryEscape(bi.Name))
	}
}
