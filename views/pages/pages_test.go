package pages

import (
	"bytes"
	"context"
	"testing"
	"time"

	"eventreg/internal/backup"
	"eventreg/internal/models"
	"eventreg/internal/signup"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func TestIndex_EmptyForm(t *testing.T) {
	out := render(t, Index(IndexData{Title: "Party"}))

	assert.Contains(t, out, "<title>Party</title>")
	assert.Contains(t, out, `name="name"`)
	assert.Contains(t, out, "Nobody has registered yet.")
	assert.NotContains(t, out, `class="errors"`)
	assert.NotContains(t, out, `name="_csrf"`)
}

func TestIndex_ErrorsAndPrefill(t *testing.T) {
	out := render(t, Index(IndexData{
		Title: "Party",
		Form:  signup.Submission{Name: "O&#39;Brien", Phone: "12", Comment: `"quoted"`},
		Errors: []signup.FieldError{
			{Field: signup.FieldPhone, Message: "Phone number must be of the form 000-0000 or 0000000"},
		},
		CSRFToken: "tok",
	}))

	assert.Contains(t, out, "<li>Phone number must be of the form 000-0000 or 0000000</li>")
	assert.Contains(t, out, `value="O&#39;Brien"`, "sanitizer entity decoded then escaped once")
	assert.Contains(t, out, `placeholder="000-0000" class="invalid"`)
	assert.Contains(t, out, `&#34;quoted&#34;</textarea>`)
	assert.Contains(t, out, `name="_csrf" value="tok"`)
}

func TestIndex_ListsRegistrations(t *testing.T) {
	out := render(t, Index(IndexData{
		Title: "Party",
		Registrations: []models.Registration{
			{ID: 1, Name: "&lt;b&gt;Ada", Phone: "5551234", Comment: "<b>hi</b>"},
		},
	}))

	assert.Contains(t, out, "<strong>&lt;b&gt;Ada</strong>")
	assert.Contains(t, out, `<div class="comment"><b>hi</b></div>`)
	assert.NotContains(t, out, "5551234", "phone numbers are not shown publicly")
}

func TestIndex_ListShowsRegistrationTime(t *testing.T) {
	out := render(t, Index(IndexData{
		Title: "Party",
		Registrations: []models.Registration{
			{ID: 1, Name: "Ada", CreatedAt: time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)},
		},
	}))

	assert.Contains(t, out, `<time datetime="2026-05-01T09:30:00Z">2026-05-01 09:30</time>`)
	assert.NotContains(t, out, `class="comment"`, "empty comments are omitted")
}

func TestIndex_StoredNameDecodedOnce(t *testing.T) {
	out := render(t, Index(IndexData{
		Title: "Party",
		Registrations: []models.Registration{
			{ID: 1, Name: "O&#x27;Brien &amp; Sons"},
			{ID: 2, Name: "A&amp;amp;B"},
		},
	}))

	assert.Contains(t, out, "<strong>O&#39;Brien &amp; Sons</strong>")
	assert.Contains(t, out, "<strong>A&amp;amp;B</strong>", "typed entities stay literal text")
}

func TestError_EscapesText(t *testing.T) {
	out := render(t, Error("Could not register!", "<script>"))
	assert.Contains(t, out, "<h1>Could not register!</h1>")
	assert.Contains(t, out, "&lt;script&gt;")
}

func TestLogin_ShowsError(t *testing.T) {
	out := render(t, Login("Invalid username or password", ""))
	assert.Contains(t, out, "Invalid username or password")
	assert.Contains(t, out, `action="/admin/login"`)
}

func TestAdmin_Pagination(t *testing.T) {
	out := render(t, Admin(AdminData{
		Title:    "Party",
		Username: "admin",
		Registrations: []models.Registration{
			{ID: 3, Name: "Ada", Phone: "5551234", CreatedAt: time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)},
		},
		Total:   60,
		Page:    2,
		PerPage: 25,
		Backups: []backup.BackupInfo{{Name: "eventreg-db-1.sqlite.gz", Size: 2048}},
	}))

	assert.Contains(t, out, "Registrations (60)")
	assert.Contains(t, out, "<td>5551234</td>")
	assert.Contains(t, out, "2026-05-01 09:30")
	assert.Contains(t, out, "Page 2 of 3")
	assert.Contains(t, out, `href="/admin?page=1"`)
	assert.Contains(t, out, `href="/admin?page=3"`)
	assert.Contains(t, out, "eventreg-db-1.sqlite.gz (2.0 KB)")
}

func TestTOTPSetup_PendingShowsQRAndSecret(t *testing.T) {
	out := render(t, TOTPSetup(TOTPSetupData{
		QRDataURI: "data:image/png;base64,AAAA",
		Secret:    "JBSWY3DPEHPK3PXP",
		CSRFToken: "tok",
	}))

	assert.Contains(t, out, `src="data:image/png;base64,AAAA"`)
	assert.Contains(t, out, "<code>JBSWY3DPEHPK3PXP</code>")
	assert.Contains(t, out, `action="/admin/2fa/enable"`)
	assert.Contains(t, out, `name="_csrf" value="tok"`)
}

func TestTOTPSetup_Enabled(t *testing.T) {
	out := render(t, TOTPSetup(TOTPSetupData{Enabled: true, Error: "Invalid code"}))

	assert.Contains(t, out, `action="/admin/2fa/disable"`)
	assert.Contains(t, out, "<p>Invalid code</p>")
	assert.NotContains(t, out, "<img")
}

func TestTOTPLogin(t *testing.T) {
	out := render(t, TOTPLogin("Invalid code", ""))

	assert.Contains(t, out, `action="/admin/login/totp"`)
	assert.Contains(t, out, "Invalid code")
	assert.NotContains(t, out, `name="_csrf"`)
}
