// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package news retrieves and normalizes articles about a topic from the
// configured providers. Retrieval is best-effort: provider failures are
// logged, and when every provider comes back empty a single simulated
// article keeps the downstream pipeline working.
package news

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/AleutianAI/AleutianSentinel/services/incident"
)

const (
	defaultTavilyURL     = "https://api.tavily.com/search"
	defaultSearchTimeout = 15 * time.Second
)

// =============================================================================
// Tavily Wire Types
// =============================================================================

type tavilyRequest struct {
	Query       string `json:"query"`
	SearchDepth string `json:"search_depth"`
	MaxResults  int    `json:"max_results"`
}

type tavilyResponse struct {
	Results []tavilyResult `json:"results"`
}

type tavilyResult struct {
	Title         string `json:"title"`
	URL           string `json:"url"`
	Content       string `json:"content"`
	Snippet       string `json:"snippet"`
	PublishedDate string `json:"published_date"`
	PublishedTime string `json:"published_time"`
	Date          string `json:"date"`
	Timestamp     string `json:"timestamp"`
}

// =============================================================================
// Client Implementation
// =============================================================================

// TavilyConfig configures the Tavily search client. An empty APIKey selects
// simulated results so the pipeline can run without external access.
type TavilyConfig struct {
	APIKey  string        `yaml:"api_key"`
	BaseURL string        `yaml:"base_url" validate:"omitempty,url"`
	Timeout time.Duration `yaml:"-"`
}

// TavilyClient fetches news search results from Tavily using raw net/http.
//
// Thread Safety: TavilyClient is safe for concurrent use.
type TavilyClient struct {
	httpClient *http.Client
	cfg        TavilyConfig
}

// NewTavilyClientWithConfig creates a TavilyClient with explicit
// configuration. Useful for testing with mock servers.
func NewTavilyClientWithConfig(cfg TavilyConfig) *TavilyClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultTavilyURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultSearchTimeout
	}
	return &TavilyClient{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
	}
}

// Search returns up to maxResults normalized articles for the topic.
//
// Without an API key it returns three simulated articles instead of calling
// out, so an unkeyed deployment still exercises the full pipeline.
func (t *TavilyClient) Search(ctx context.Context, topic string, maxResults int) ([]incident.Article, error) {
	if strings.TrimSpace(t.cfg.APIKey) == "" {
		return simulatedTavilyArticles(topic), nil
	}

	reqBody, err := json.Marshal(tavilyRequest{
		Query:       topic,
		SearchDepth: "advanced",
		MaxResults:  maxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("tavily: marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.cfg.BaseURL, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("tavily: creating HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", t.cfg.APIKey)

	resp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("tavily: HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("tavily: reading response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tavily: API returned status %d: %s", resp.StatusCode, bodyBytes)
	}

	var apiResp tavilyResponse
	if err := json.Unmarshal(bodyBytes, &apiResp); err != nil {
		return nil, fmt.Errorf("tavily: parsing response JSON: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	results := apiResp.Results
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	articles := make([]incident.Article, 0, len(results))
	for _, item := range results {
		published := firstNonEmpty(item.PublishedDate, item.PublishedTime, item.Date, item.Timestamp, now)
		content := item.Content
		if content == "" {
			content = item.Snippet
		}
		articles = append(articles, incident.Article{
			Title:   item.Title,
			Content: content,
			URL:     item.URL,
			Time:    published,
			Source:  "tavily",
		})
	}
	return articles, nil
}

func simulatedTavilyArticles(topic string) []incident.Article {
	now := time.Now().UTC().Format(time.RFC3339)
	articles := make([]incident.Article, 0, 3)
	for i := 0; i < 3; i++ {
		articles = append(articles, incident.Article{
			Title:   fmt.Sprintf("[SIM] Tavily result for %s", topic),
			Content: fmt.Sprintf("Simulated Tavily content for %s", topic),
			URL:     "https://example.com/tavily",
			Time:    now,
			Source:  "tavily",
		})
	}
	return articles
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
