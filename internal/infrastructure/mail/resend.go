package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"solaintel/internal/config"
	"solaintel/internal/domain"
	"solaintel/internal/ports"
)

// ResendClient delivers digests through the Resend transactional email
// API (or any compatible endpoint).
type ResendClient struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

var _ ports.Mailer = (*ResendClient)(nil)

// NewResendClient builds a client from configuration.
func NewResendClient(cfg config.MailConfig) *ResendClient {
	return &ResendClient{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	Text    string   `json:"text"`
}

type sendResponse struct {
	ID string `json:"id"`
}

// Send posts the payload and returns the provider message ID.
func (c *ResendClient) Send(ctx context.Context, payload domain.EmailPayload) (string, error) {
	if c.apiKey == "" || c.endpoint == "" {
		return "", fmt.Errorf("mailer misconfigured: missing api key or endpoint")
	}
	if len(payload.To) == 0 {
		return "", fmt.Errorf("no recipients")
	}

	body, err := json.Marshal(sendRequest{
		From:    payload.From,
		To:      payload.To,
		Subject: payload.Subject,
		HTML:    payload.HTML,
		Text:    payload.Text,
	})
	if err != nil {
		return "", fmt.Errorf("marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("email api error %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	var parsed sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	return parsed.ID, nil
}
