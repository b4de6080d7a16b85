package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go-appointment-saas/config"
	"go-appointment-saas/internal/domain/gateway"
)

// WebhookClient syncs events to a calendar bridge over HTTP:
// POST /events, PUT /events/{id} and DELETE /events/{id}.
type WebhookClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewWebhookClient(cfg config.CalendarConfig) *WebhookClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &WebhookClient{
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.WebhookURL), "/"),
		token:   strings.TrimSpace(cfg.Token),
		http:    &http.Client{Timeout: timeout},
	}
}

type createEventResponse struct {
	ID string `json:"id"`
}

func (c *WebhookClient) CreateEvent(ctx context.Context, event gateway.CalendarEvent) (string, error) {
	var out createEventResponse
	if err := c.do(ctx, http.MethodPost, "/events", event, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", fmt.Errorf("calendar webhook returned no event id")
	}
	return out.ID, nil
}

func (c *WebhookClient) UpdateEvent(ctx context.Context, id string, event gateway.CalendarEvent) error {
	return c.do(ctx, http.MethodPut, "/events/"+url.PathEscape(id), event, nil)
}

func (c *WebhookClient) DeleteEvent(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/events/"+url.PathEscape(id), nil, nil)
}

func (c *WebhookClient) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("calendar webhook %s %s returned %d", method, path, resp.StatusCode)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
