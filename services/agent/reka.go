// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// =============================================================================
// Reka Wire Types
// =============================================================================

const (
	defaultRekaBaseURL = "https://api.reka.ai/v1/chat"
	defaultRekaModel   = "reka-flash"
	defaultRekaTimeout = 20 * time.Second

	rekaTemperature = 0.2
	rekaMaxTokens   = 900
)

// Message is a single turn in a Reka chat request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type rekaRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float32   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

// rekaResponse covers the text field variants across API versions: a direct
// text field, an output_text field, or the nested choice/message shape.
type rekaResponse struct {
	Text       string `json:"text"`
	OutputText string `json:"output_text"`
	Choices    []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// extractText pulls the response text from whichever field is present.
func (r *rekaResponse) extractText() string {
	if r.Text != "" {
		return r.Text
	}
	if r.OutputText != "" {
		return r.OutputText
	}
	if len(r.Choices) > 0 {
		return r.Choices[0].Message.Content
	}
	return ""
}

// =============================================================================
// Client Implementation
// =============================================================================

// RekaConfig configures the reasoning client.
type RekaConfig struct {
	APIKey  string        `yaml:"api_key"`
	Model   string        `yaml:"model"`
	BaseURL string        `yaml:"base_url" validate:"omitempty,url"`
	Timeout time.Duration `yaml:"-"`
}

// RekaClient calls the Reka chat completions API using raw net/http.
//
// Outbound requests share a small token-bucket limiter so a burst of
// concurrent pipeline runs does not trip the provider's rate limits.
//
// Thread Safety: RekaClient is safe for concurrent use.
type RekaClient struct {
	httpClient *http.Client
	cfg        RekaConfig
	limiter    *rate.Limiter
}

// NewRekaClientWithConfig creates a RekaClient with explicit configuration.
// Useful for testing with mock servers.
func NewRekaClientWithConfig(cfg RekaConfig) *RekaClient {
	if cfg.Model == "" {
		cfg.Model = defaultRekaModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultRekaBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultRekaTimeout
	}
	return &RekaClient{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		limiter:    rate.NewLimiter(rate.Limit(5), 5),
	}
}

// Configured reports whether an API key is set.
func (r *RekaClient) Configured() bool {
	return r != nil && r.cfg.APIKey != ""
}

// Chat sends the messages and returns the assistant's response text.
//
// Outputs:
//   - string: The response text, extracted from whichever field the API
//     populated.
//   - error: Non-nil on missing API key, transport failure, or non-2xx
//     status. A malformed-but-2xx response body is returned to the caller
//     as text; parse discipline lives with the caller.
func (r *RekaClient) Chat(ctx context.Context, messages []Message) (string, error) {
	if !r.Configured() {
		return "", fmt.Errorf("reka: API key is missing (REKA_API_KEY)")
	}
	if err := r.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("reka: rate limiter wait: %w", err)
	}

	reqBody, err := json.Marshal(rekaRequest{
		Model:       r.cfg.Model,
		Messages:    messages,
		Temperature: rekaTemperature,
		MaxTokens:   rekaMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("reka: marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.BaseURL, bytes.NewBuffer(reqBody))
	if err != nil {
		return "", fmt.Errorf("reka: creating HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Api-Key", r.cfg.APIKey)

	slog.Debug("Chat via Reka", slog.String("model", r.cfg.Model), slog.Int("messages", len(messages)))

	resp, err := r.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("reka: HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reka: reading response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("reka: API returned status %d", resp.StatusCode)
	}

	var apiResp rekaResponse
	if err := json.Unmarshal(bodyBytes, &apiResp); err != nil {
		return "", fmt.Errorf("reka: parsing response JSON: %w", err)
	}

	text := apiResp.extractText()
	slog.Debug("Received Reka chat response", slog.Int("response_len", len(text)))
	return text, nil
}
