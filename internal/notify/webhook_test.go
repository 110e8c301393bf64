package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"eventreg/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureServer(t *testing.T, status int, got *[]byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		*got = body
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewWebhookSender_EmptyURLIsNil(t *testing.T) {
	ws := NewWebhookSender("", "discord", "Party")
	assert.Nil(t, ws)
	assert.NoError(t, ws.Send(context.Background(), models.Registration{}))
}

func TestSend_SlackPayloadUnescapesName(t *testing.T) {
	var body []byte
	srv := captureServer(t, http.StatusOK, &body)

	ws := NewWebhookSender(srv.URL, "slack", "Party")
	err := ws.Send(context.Background(), models.Registration{Name: "O&#x27;Brien", Phone: "5551234"})
	require.NoError(t, err)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.Equal(t, "*Party*: new registration from *O'Brien* (5551234)", payload["text"])
}

func TestSend_DiscordPayload(t *testing.T) {
	var body []byte
	srv := captureServer(t, http.StatusNoContent, &body)

	ws := NewWebhookSender(srv.URL, "discord", "Party")
	require.NoError(t, ws.Send(context.Background(), models.Registration{Name: "Ada", Phone: "5551234"}))

	var payload struct {
		Embeds []struct {
			Title       string `json:"title"`
			Description string `json:"description"`
		} `json:"embeds"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.Len(t, payload.Embeds, 1)
	assert.Equal(t, "New registration: Party", payload.Embeds[0].Title)
	assert.Equal(t, "Ada (5551234)", payload.Embeds[0].Description)
}

func TestSend_ErrorStatus(t *testing.T) {
	var body []byte
	srv := captureServer(t, http.StatusBadRequest, &body)

	ws := NewWebhookSender(srv.URL, "slack", "Party")
	err := ws.Send(context.Background(), models.Registration{Name: "Ada"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}
