package llm

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

// ChatGPTClient implements ports.DigestWriter backed by OpenAI-compatible
// chat-completion APIs. It is strictly optional: callers fall back to the
// extractive renderer whenever it errors.
type ChatGPTClient struct {
	endpoint     string
	model        string
	apiKey       string
	systemPrompt string
	httpClient   *http.Client
}

var _ ports.DigestWriter = (*ChatGPTClient)(nil)

// NewChatGPTClient builds a client from configuration.
func NewChatGPTClient(cfg config.LLMConfig) *ChatGPTClient {
	return &ChatGPTClient{
		endpoint:     cfg.Endpoint,
		model:        cfg.Model,
		apiKey:       cfg.APIKey,
		systemPrompt: cfg.SystemPrompt,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// WriteDigest asks the model to write the brief from the selected
// articles and returns its prose.
func (c *ChatGPTClient) WriteDigest(ctx context.Context, articles []domain.Article, period domain.Period) (string, error) {
	if c == nil {
		return "", fmt.Errorf("chatgpt client is nil")
	}
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return "", fmt.Errorf("chatgpt client misconfigured")
	}

	payload, err := buildArticlesJSON(articles, period)
	if err != nil {
		return "", fmt.Errorf("build articles payload: %w", err)
	}

	body, err := json.Marshal(map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": safePrompt(c.systemPrompt)},
			{"role": "user", "content": string(payload)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal chatgpt payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request digest: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("chatgpt error %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("chatgpt returned no choices")
	}

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("chatgpt returned empty digest")
	}

	return content, nil
}

func buildArticlesJSON(articles []domain.Article, period domain.Period) ([]byte, error) {
	type item struct {
		URL       string  `json:"url"`
		Title     string  `json:"title"`
		Publisher string  `json:"publisher"`
		Summary   string  `json:"summary"`
		Score     float64 `json:"relevanceScore"`
	}

	payload := struct {
		Period   string `json:"period"`
		Articles []item `json:"articles"`
	}{Period: string(period)}

	for _, article := range articles {
		payload.Articles = append(payload.Articles, item{
			URL:       article.URL,
			Title:     article.Title,
			Publisher: article.Publisher,
			Summary:   article.Summary,
			Score:     article.RelevanceScore,
		})
	}

	return json.Marshal(payload)
}

func safePrompt(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "You write concise, factual intelligence briefs from the provided articles."
	}
	return prompt
}
