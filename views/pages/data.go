package pages

import (
	"eventreg/internal/backup"
	"eventreg/internal/models"
	"eventreg/internal/signup"
)

type IndexData struct {
	Title         string
	Form          signup.Submission
	Errors        []signup.FieldError
	Registrations []models.Registration
	CSRFToken     string
}

func (d IndexData) invalid(field string) bool {
	for _, e := range d.Errors {
		if e.Field == field {
			return true
		}
	}
	return false
}

type AdminData struct {
	Title         string
	Username      string
	Registrations []models.Registration
	Total         int
	Page          int
	PerPage       int
	Backups       []backup.BackupInfo
	CSRFToken     string
	Flash         string
}

func (d AdminData) lastPage() int {
	if d.PerPage <= 0 || d.Total == 0 {
		return 1
	}
	return (d.Total + d.PerPage - 1) / d.PerPage
}

type TOTPSetupData struct {
	QRDataURI string
	Secret    string
	Enabled   bool
	Error     string
	CSRFToken string
}
