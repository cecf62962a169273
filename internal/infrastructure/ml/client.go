package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"NewsCredibility/internal/config"
	"NewsCredibility/internal/domain"
	"NewsCredibility/internal/ports"
)

// Client talks to an external text classifier service.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

var _ ports.Classifier = (*Client)(nil)

// NewClient creates a reusable HTTP client.
func NewClient(cfg config.ClassifierConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		endpoint: strings.TrimRight(cfg.URL, "/"),
		apiKey:   cfg.APIKey,
		http:     &http.Client{Timeout: timeout},
	}
}

// Classify sends the text for real/fake classification.
func (c *Client) Classify(ctx context.Context, text string) (domain.ClassifierResult, error) {
	if c.endpoint == "" {
		return domain.ClassifierResult{}, fmt.Errorf("classifier endpoint is not configured")
	}

	var resp struct {
		Label      string  `json:"label"`
		Confidence float64 `json:"confidence"`
	}
	if err := c.post(ctx, "/classify", map[string]any{"text": text}, &resp); err != nil {
		return domain.ClassifierResult{}, err
	}

	return toResult(resp.Label, resp.Confidence), nil
}

func toResult(label string, confidence float64) domain.ClassifierResult {
	var l domain.ClassifierLabel
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "real", "true":
		l = domain.LabelReal
	case "fake", "false":
		l = domain.LabelFake
	case "uncertain":
		l = domain.LabelUncertain
	default:
		return domain.ClassifierResult{Label: domain.LabelUnknown}
	}
	return domain.ClassifierResult{Label: l, Confidence: min(max(confidence, 0), 1)}
}

func (c *Client) post(ctx context.Context, path string, payload any, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			return fmt.Errorf("unexpected status %s, close body: %v", resp.Status, closeErr)
		}
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		_ = resp.Body.Close()
		return fmt.Errorf("decode response: %w", err)
	}

	if err := resp.Body.Close(); err != nil {
		return fmt.Errorf("close response body: %w", err)
	}

	return nil
}
