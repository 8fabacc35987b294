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

	"github.com/AleutianAI/AleutianSentinel/services/incident"
)

const defaultImpactTimeout = 15 * time.Second

type sensoRequest struct {
	Topic    string             `json:"topic"`
	Articles []incident.Article `json:"articles"`
}

// SensoConfig configures the impact-analysis client. Leaving BaseURL or
// APIKey empty deterministically selects the placeholder assessment.
type SensoConfig struct {
	BaseURL string        `yaml:"base_url" validate:"omitempty,url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"-"`
}

// SensoClient calls the external impact-analysis service.
//
// Assess never returns an error: an unconfigured client yields a fixed
// placeholder assessment, and a failed call yields a placeholder carrying
// the failure message.
//
// Thread Safety: SensoClient is safe for concurrent use.
type SensoClient struct {
	httpClient *http.Client
	cfg        SensoConfig
	logger     *slog.Logger
}

// NewSensoClientWithConfig creates a SensoClient with explicit configuration.
func NewSensoClientWithConfig(cfg SensoConfig) *SensoClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultImpactTimeout
	}
	return &SensoClient{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		logger:     slog.Default(),
	}
}

// Configured reports whether both the base URL and API key are set.
func (s *SensoClient) Configured() bool {
	return s != nil && s.cfg.BaseURL != "" && s.cfg.APIKey != ""
}

// Assess returns the impact assessment for the topic's articles.
func (s *SensoClient) Assess(ctx context.Context, topic string, articles []incident.Article) ImpactAssessment {
	if !s.Configured() {
		return ImpactAssessment{
			Labels:           []string{"impact_assessment"},
			Impact:           "Unknown impact (service not configured).",
			KeyEntities:      []string{},
			RecommendedFocus: []string{"verify", "monitor", "prepare"},
		}
	}

	assessment, err := s.analyze(ctx, topic, articles)
	if err != nil {
		s.logger.Warn("Senso impact analysis failed, using degraded assessment",
			slog.String("topic", topic),
			slog.String("error", err.Error()))
		stageFallbacksTotal.WithLabelValues("impact", "transport").Inc()
		return ImpactAssessment{
			Labels:           []string{"impact_assessment"},
			Impact:           "Impact analysis failed",
			KeyEntities:      []string{},
			RecommendedFocus: []string{},
			Error:            err.Error(),
		}
	}
	return assessment
}

func (s *SensoClient) analyze(ctx context.Context, topic string, articles []incident.Article) (ImpactAssessment, error) {
	reqBody, err := json.Marshal(sensoRequest{Topic: topic, Articles: articles})
	if err != nil {
		return ImpactAssessment{}, fmt.Errorf("senso: marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+"/analyze", bytes.NewBuffer(reqBody))
	if err != nil {
		return ImpactAssessment{}, fmt.Errorf("senso: creating HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return ImpactAssessment{}, fmt.Errorf("senso: HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return ImpactAssessment{}, fmt.Errorf("senso: reading response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return ImpactAssessment{}, fmt.Errorf("senso: API returned status %d", resp.StatusCode)
	}

	var assessment ImpactAssessment
	if err := json.Unmarshal(bodyBytes, &assessment); err != nil {
		return ImpactAssessment{}, fmt.Errorf("senso: parsing response JSON: %w", err)
	}
	return assessment, nil
}
