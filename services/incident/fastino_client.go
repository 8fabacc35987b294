// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package incident

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// =============================================================================
// Fastino Wire Types
// =============================================================================

const defaultExtractionTimeout = 15 * time.Second

// extractionSystemPrompt instructs the extraction engine to emit exactly one
// incident-shaped JSON object.
const extractionSystemPrompt = `You are an information extraction engine for crisis events.
Extract a SINGLE incident object from the given news text.

Only output valid JSON matching exactly this schema:
{
  "event": "string, short event type e.g. earthquake, flood, cyber_attack",
  "location": "string: place name (e.g. Japan, California) OR 'lat,long' (e.g. 35.67,139.65) if coordinates appear in text",
  "orgs": ["array of organizations mentioned"],
  "severity_cues": ["array of phrases indicating severity"],
  "time_window": "ISO8601-ish text summarizing when (e.g. '2026-02-27T10:00Z' or 'early morning')",
  "summary": "2-3 sentence plain English summary",
  "raw_sources": [
    {
      "title": "source title",
      "url": "https://...",
      "reported_at": "timestamp or null"
    }
  ]
}`

type fastinoRequest struct {
	System string `json:"system"`
	Input  string `json:"input"`
}

// fastinoEnvelope covers the response shapes the service is known to emit:
// the incident object directly, or wrapped under "output" or "result", either
// of which may itself be a JSON-encoded string.
type fastinoEnvelope struct {
	Output json.RawMessage `json:"output"`
	Result json.RawMessage `json:"result"`
}

// ExtractedIncident is the incident-shaped payload returned by the extraction
// service. Location is raw because the service may send a place-name string,
// a "lat,long" string, or a structured object.
type ExtractedIncident struct {
	Event        string          `json:"event"`
	Location     json.RawMessage `json:"location"`
	Orgs         []string        `json:"orgs"`
	SeverityCues []string        `json:"severity_cues"`
	TimeWindow   *string         `json:"time_window"`
	Summary      string          `json:"summary"`
	RawSources   []SourceRef     `json:"raw_sources"`
	Severity     string          `json:"severity"`
	Confidence   *float64        `json:"confidence"`
}

// =============================================================================
// Client Implementation
// =============================================================================

// ExtractionConfig configures the Fastino extraction client. Leaving URL or
// APIKey empty deterministically selects the heuristic fallback path.
type ExtractionConfig struct {
	URL     string        `yaml:"url" validate:"omitempty,url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"-"`
}

// FastinoClient calls the external incident extraction service using raw
// net/http.
//
// Thread Safety: FastinoClient is safe for concurrent use.
type FastinoClient struct {
	httpClient *http.Client
	cfg        ExtractionConfig
}

// NewFastinoClientWithConfig creates a FastinoClient with explicit
// configuration. Useful for testing with mock servers.
func NewFastinoClientWithConfig(cfg ExtractionConfig) *FastinoClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultExtractionTimeout
	}
	return &FastinoClient{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
	}
}

// Configured reports whether both the endpoint URL and API key are set.
func (c *FastinoClient) Configured() bool {
	return c != nil && c.cfg.URL != "" && c.cfg.APIKey != ""
}

// ExtractIncident asks the extraction service for a single incident object
// derived from the given articles.
//
// Outputs:
//   - *ExtractedIncident: The incident-shaped payload.
//   - error: Non-nil on missing configuration, transport failure, non-2xx
//     status, or a response that is not valid incident JSON. Callers treat
//     any error as a signal to fall back to heuristics.
func (c *FastinoClient) ExtractIncident(ctx context.Context, articles []Article, topic string) (*ExtractedIncident, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("fastino: URL or API key is missing")
	}

	userPrompt := fmt.Sprintf("Topic: %s\n\nNews articles:\n%s\nFrom this input, extract a single incident object in the JSON format described in the system prompt.",
		topic, BuildArticlesBlock(articles))

	reqBody, err := json.Marshal(fastinoRequest{System: extractionSystemPrompt, Input: userPrompt})
	if err != nil {
		return nil, fmt.Errorf("fastino: marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("fastino: creating HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	slog.Debug("Sending extraction request to Fastino", slog.Int("articles", len(articles)), slog.String("topic", topic))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("fastino: HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fastino: reading response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fastino: API returned status %d: %s", resp.StatusCode, bodyBytes)
	}

	return decodeExtractionResponse(bodyBytes)
}

// decodeExtractionResponse unwraps the known response envelopes and parses
// the incident payload.
func decodeExtractionResponse(body []byte) (*ExtractedIncident, error) {
	raw := json.RawMessage(body)

	var envelope fastinoEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil {
		if len(envelope.Output) > 0 {
			raw = envelope.Output
		} else if len(envelope.Result) > 0 {
			raw = envelope.Result
		}
	}

	// The payload may arrive as a JSON-encoded string of JSON.
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		raw = json.RawMessage(asString)
	}

	var extracted ExtractedIncident
	if err := json.Unmarshal(raw, &extracted); err != nil {
		return nil, fmt.Errorf("fastino: response was not valid incident JSON: %w", err)
	}
	return &extracted, nil
}
