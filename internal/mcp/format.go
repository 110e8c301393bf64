package mcptools

import (
	"html"
	"time"

	"eventreg/internal/backup"
	"eventreg/internal/models"
)

type RegistrationDTO struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Comment   string `json:"comment,omitempty"`
	CreatedAt string `json:"created_at"`
}

type BackupDTO struct {
	Name      string `json:"name"`
	Size      string `json:"size"`
	CreatedAt string `json:"created_at"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

// RegistrationToDTO decodes the stored HTML entities so callers get the text
// the registrant typed.
func RegistrationToDTO(r models.Registration) RegistrationDTO {
	return RegistrationDTO{
		ID:        r.ID,
		Name:      html.UnescapeString(r.Name),
		Phone:     r.Phone,
		Comment:   html.UnescapeString(r.Comment),
		CreatedAt: formatTime(r.CreatedAt),
	}
}

func BackupToDTO(b backup.BackupInfo) BackupDTO {
	return BackupDTO{
		Name:      b.Name,
		Size:      backup.FormatSize(b.Size),
		CreatedAt: formatTime(b.CreatedAt),
	}
}
