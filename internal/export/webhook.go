package export

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/glebk/worklog-bot/internal/domain"
)

// WebhookExporter POSTs session summaries to an external reporting service
// and relays back the report URL it answers with.
type WebhookExporter struct {
	client *resty.Client
}

// NewWebhookExporter creates a WebhookExporter targeting baseURL.
func NewWebhookExporter(baseURL string, timeout time.Duration) *WebhookExporter {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)

	return &WebhookExporter{client: c}
}

// summaryRequest / summaryResponse structs for JSON binding

type summaryRequest struct {
	SpaceID string         `json:"spaceId"`
	UserID  string         `json:"userId"`
	Entries []summaryEntry `json:"entries"`
}

type summaryEntry struct {
	Text     string    `json:"text"`
	LoggedAt time.Time `json:"loggedAt"`
}

type summaryResponse struct {
	ReportURL string `json:"reportUrl"`
}

// Export publishes the entries and returns the report URL from the service.
func (e *WebhookExporter) Export(ctx context.Context, user *domain.User, entries []*domain.LoggedResponse) (string, error) {
	reqBody := summaryRequest{
		SpaceID: user.SpaceID,
		UserID:  user.UserID,
		Entries: make([]summaryEntry, 0, len(entries)),
	}
	for _, entry := range entries {
		reqBody.Entries = append(reqBody.Entries, summaryEntry{
			Text:     entry.Text,
			LoggedAt: entry.CreatedAt,
		})
	}

	resp, err := e.client.R().
		SetContext(ctx).
		SetBody(&reqBody).
		Post("/summaries")
	if err != nil {
		return "", fmt.Errorf("summary request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusCreated {
		return "", fmt.Errorf("summary service status %d: %s", resp.StatusCode(), resp.String())
	}

	var sr summaryResponse
	if err := json.Unmarshal(resp.Body(), &sr); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if sr.ReportURL == "" {
		return "", fmt.Errorf("summary service returned no report url")
	}

	return sr.ReportURL, nil
}
