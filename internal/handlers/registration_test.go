package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"eventreg/internal/metrics"
	"eventreg/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu        sync.Mutex
	rows      []models.Registration
	listErr   error
	insertErr error
}

func (s *fakeStore) List(ctx context.Context) ([]models.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]models.Registration(nil), s.rows...), nil
}

func (s *fakeStore) Insert(ctx context.Context, r *models.Registration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return false, s.insertErr
	}
	for _, existing := range s.rows {
		if existing.Name == r.Name && existing.Phone == r.Phone {
			return false, nil
		}
	}
	r.ID = len(s.rows) + 1
	s.rows = append(s.rows, *r)
	return true, nil
}

type fakeNotifier struct {
	sent []models.Registration
}

func (n *fakeNotifier) NotifyAsync(r models.Registration) {
	n.sent = append(n.sent, r)
}

func newFormApp(h *FormHandler) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true, ErrorHandler: ErrorHandler})
	app.Get("/", h.Index)
	app.Post("/", h.Register)
	return app
}

func postForm(t *testing.T, app *fiber.App, values url.Values) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func validForm() url.Values {
	return url.Values{
		"name":    {"Ada Lovelace"},
		"phone":   {"555-1234"},
		"comment": {"Looking forward"},
	}
}

func TestIndex_RendersEmptyForm(t *testing.T) {
	store := &fakeStore{rows: []models.Registration{{ID: 1, Name: "Grace", Phone: "5550000"}}}
	app := newFormApp(&FormHandler{Store: store, Title: "Summer party"})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "<h1>Summer party</h1>")
	assert.Contains(t, string(body), "<strong>Grace</strong>")
	assert.NotContains(t, string(body), `class="errors"`)
}

func TestIndex_ListFailureUsesErrorPage(t *testing.T) {
	store := &fakeStore{listErr: errors.New("disk on fire")}
	app := newFormApp(&FormHandler{Store: store})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "Something went wrong")
	assert.NotContains(t, string(body), "disk on fire")
}

func TestRegister_ValidSubmissionRedirects(t *testing.T) {
	store := &fakeStore{}
	notifier := &fakeNotifier{}
	m := metrics.New()
	app := newFormApp(&FormHandler{Store: store, Metrics: m, Notifier: notifier})

	resp, _ := postForm(t, app, validForm())
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	require.Len(t, store.rows, 1)
	assert.Equal(t, "Ada Lovelace", store.rows[0].Name)
	assert.Equal(t, "5551234", store.rows[0].Phone)
	assert.Equal(t, "Looking forward", store.rows[0].Comment)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, 1, notifier.sent[0].ID)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Registrations.WithLabelValues(metrics.OutcomeCreated)))
}

func TestRegister_EmptyNameAndPhoneRerenders(t *testing.T) {
	store := &fakeStore{}
	m := metrics.New()
	app := newFormApp(&FormHandler{Store: store, Metrics: m})

	resp, body := postForm(t, app, url.Values{"name": {""}, "phone": {""}, "comment": {"hi"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Name must not be empty")
	assert.Contains(t, body, "Phone number must not be empty")
	assert.Contains(t, body, ">hi</textarea>", "submitted values are kept")
	assert.Empty(t, store.rows)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Registrations.WithLabelValues(metrics.OutcomeInvalid)))
}

func TestRegister_TooLongFieldsRejected(t *testing.T) {
	store := &fakeStore{}
	app := newFormApp(&FormHandler{Store: store})

	form := validForm()
	form.Set("name", strings.Repeat("n", 129))
	form.Set("comment", strings.Repeat("c", 401))

	resp, body := postForm(t, app, form)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Name may be at most 128 characters")
	assert.Contains(t, body, "Comment may be at most 400 characters")
	assert.Empty(t, store.rows)
}

func TestRegister_BadPhoneRejected(t *testing.T) {
	store := &fakeStore{}
	app := newFormApp(&FormHandler{Store: store})

	form := validForm()
	form.Set("phone", "12-34")

	_, body := postForm(t, app, form)
	assert.Contains(t, body, "Phone number must be of the form 000-0000 or 0000000")
	assert.Empty(t, store.rows)
}

func TestRegister_ScriptNeutralizedOnRerender(t *testing.T) {
	app := newFormApp(&FormHandler{Store: &fakeStore{}})

	_, body := postForm(t, app, url.Values{
		"name":    {`<script>alert(1)</script>`},
		"phone":   {"nope"},
		"comment": {`<script>alert(2)</script>`},
	})
	assert.NotContains(t, body, "<script>alert")
	assert.NotContains(t, body, "alert(1)")
}

func TestRegister_ScriptNeutralizedInStorage(t *testing.T) {
	store := &fakeStore{}
	app := newFormApp(&FormHandler{Store: store})

	form := validForm()
	form.Set("name", `Ada<script>alert(1)</script>`)
	form.Set("comment", `<img src=x onerror="alert(1)">nice`)

	resp, _ := postForm(t, app, form)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Len(t, store.rows, 1)
	assert.Equal(t, "Ada", store.rows[0].Name)
	assert.NotContains(t, store.rows[0].Comment, "onerror")
	assert.Contains(t, store.rows[0].Comment, "nice")
}

func TestRegister_MarkupOnlyNameRerenders(t *testing.T) {
	store := &fakeStore{}
	m := metrics.New()
	notifier := &fakeNotifier{}
	app := newFormApp(&FormHandler{Store: store, Metrics: m, Notifier: notifier})

	form := validForm()
	form.Set("name", `<script>alert(1)</script>`)

	resp, body := postForm(t, app, form)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "<li>Name must not be empty</li>")
	assert.Contains(t, body, `name="name" maxlength="128" class="invalid" aria-invalid="true" value=""`)
	assert.Contains(t, body, `value="555-1234"`, "sanitized values are redisplayed")
	assert.NotContains(t, body, "alert(1)")
	assert.Empty(t, store.rows)
	assert.Empty(t, notifier.sent)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Registrations.WithLabelValues(metrics.OutcomeInvalid)))
}

func TestRegister_DuplicateShowsGenericError(t *testing.T) {
	store := &fakeStore{}
	m := metrics.New()
	app := newFormApp(&FormHandler{Store: store, Metrics: m})

	resp, _ := postForm(t, app, validForm())
	require.Equal(t, http.StatusFound, resp.StatusCode)

	resp, body := postForm(t, app, validForm())
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Could not register!")
	assert.Contains(t, body, "Have you registered before?")
	assert.Len(t, store.rows, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Registrations.WithLabelValues(metrics.OutcomeDuplicate)))
}

func TestRegister_InsertErrorShowsGenericError(t *testing.T) {
	store := &fakeStore{insertErr: errors.New("constraint exploded")}
	notifier := &fakeNotifier{}
	app := newFormApp(&FormHandler{Store: store, Notifier: notifier})

	resp, body := postForm(t, app, validForm())
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Could not register!")
	assert.NotContains(t, body, "constraint exploded")
	assert.Empty(t, notifier.sent)
}

func TestRegister_ListFailureOnInvalidSubmission(t *testing.T) {
	store := &fakeStore{listErr: errors.New("gone")}
	app := newFormApp(&FormHandler{Store: store})

	resp, _ := postForm(t, app, url.Values{"name": {""}})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
