package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"time"

	"eventreg/internal/models"
)

// WebhookSender announces new registrations to a Discord or Slack incoming
// webhook.
type WebhookSender struct {
	URL        string
	Format     string
	EventTitle string
	Client     *http.Client
}

// NewWebhookSender returns nil when url is empty; a nil sender is a no-op.
func NewWebhookSender(url, format, eventTitle string) *WebhookSender {
	if url == "" {
		return nil
	}
	return &WebhookSender{
		URL:        url,
		Format:     format,
		EventTitle: eventTitle,
		Client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (ws *WebhookSender) payload(r models.Registration) ([]byte, error) {
	// stored names are HTML-escaped; chat clients want plain text
	name := html.UnescapeString(r.Name)

	switch ws.Format {
	case "slack":
		return json.Marshal(map[string]string{
			"text": fmt.Sprintf("*%s*: new registration from *%s* (%s)", ws.EventTitle, name, r.Phone),
		})
	default:
		return json.Marshal(map[string]interface{}{
			"embeds": []map[string]interface{}{
				{
					"title":       fmt.Sprintf("New registration: %s", ws.EventTitle),
					"description": fmt.Sprintf("%s (%s)", name, r.Phone),
					"color":       65280,
					"timestamp":   time.Now().UTC().Format(time.RFC3339),
				},
			},
		})
	}
}

func (ws *WebhookSender) Send(ctx context.Context, r models.Registration) error {
	if ws == nil {
		return nil
	}

	body, err := ws.payload(r)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ws.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := ws.Client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
