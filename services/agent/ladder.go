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
)

const defaultRemoteTimeout = 20 * time.Second

// MockDataDisclaimer marks responses produced by the terminal mock strategy.
// Consumers can use it to detect fully degraded output.
const MockDataDisclaimer = "This is mock data. Do not use for real emergencies."

// decisionStrategy is one rung of the degradation ladder.
type decisionStrategy interface {
	// Name identifies the strategy in logs and metrics.
	Name() string

	// Attempt tries to produce a decision. A nil error means the response is
	// final; an error means the ladder should fall through to the next rung.
	Attempt(ctx context.Context, req DecisionRequest) (*DecisionResponse, error)
}

// =============================================================================
// Level 1: In-Process Pipeline
// =============================================================================

type inProcessStrategy struct {
	orchestrator *Orchestrator
}

func (s *inProcessStrategy) Name() string { return "in_process" }

func (s *inProcessStrategy) Attempt(ctx context.Context, req DecisionRequest) (*DecisionResponse, error) {
	out, err := s.orchestrator.Run(ctx, req.Topic, req.Articles)
	if err != nil {
		return nil, err
	}
	incidentID := ""
	if req.Incident != nil {
		incidentID = req.Incident.ID
	}
	return MapAgentOutput(out, incidentID, req.Incident), nil
}

// =============================================================================
// Level 2: Remote Decision Agent
// =============================================================================

type remoteStrategy struct {
	httpClient *http.Client
	endpoint   string
}

func newRemoteStrategy(endpoint string) *remoteStrategy {
	return &remoteStrategy{
		httpClient: &http.Client{Timeout: defaultRemoteTimeout},
		endpoint:   endpoint,
	}
}

func (s *remoteStrategy) Name() string { return "remote" }

// Attempt posts the request to the externally hosted decision agent, which
// returns the same raw output shape as the in-process orchestrator.
func (s *remoteStrategy) Attempt(ctx context.Context, req DecisionRequest) (*DecisionResponse, error) {
	if s.endpoint == "" {
		return nil, fmt.Errorf("remote agent: endpoint is not configured")
	}

	reqBody, err := json.Marshal(map[string]any{
		"topic":    req.Topic,
		"articles": req.Articles,
		"incident": req.Incident,
	})
	if err != nil {
		return nil, fmt.Errorf("remote agent: marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint+"/run-agent", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("remote agent: creating HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("remote agent: HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("remote agent: reading response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("remote agent: returned status %d", resp.StatusCode)
	}

	var out RawAgentOutput
	if err := json.Unmarshal(bodyBytes, &out); err != nil {
		return nil, fmt.Errorf("remote agent: parsing response JSON: %w", err)
	}

	incidentID := ""
	if req.Incident != nil {
		incidentID = req.Incident.ID
	}
	return MapAgentOutput(out, incidentID, req.Incident), nil
}

// =============================================================================
// Level 3: Deterministic Mock
// =============================================================================

type mockStrategy struct{}

func (s *mockStrategy) Name() string { return "mock" }

// Attempt builds a decision from the incident alone. It never fails, which
// makes it the ladder's terminal rung.
func (s *mockStrategy) Attempt(_ context.Context, req DecisionRequest) (*DecisionResponse, error) {
	topic := req.Topic
	if topic == "" {
		topic = defaultTopic
	}

	incidentID := fmt.Sprintf("event-%d", time.Now().UnixMilli())
	severity := "High"
	confidence := 0.82
	summary := fmt.Sprintf("Mock situation summary for %s. A strong event has been reported with potential infrastructure impact.", topic)
	if req.Incident != nil {
		incidentID = req.Incident.ID
		if req.Incident.Severity != "" {
			severity = req.Incident.Severity
		}
		if req.Incident.Confidence > 0 {
			confidence = req.Incident.Confidence
		}
		if req.Incident.Summary != "" {
			summary = req.Incident.Summary
		}
		if req.Incident.Topic != "" {
			topic = req.Incident.Topic
		}
	}

	return &DecisionResponse{
		IncidentID: incidentID,
		Topic:      topic,
		Severity:   severity,
		Confidence: confidence,
		Summary:    summary,
		Rationale:  "High magnitude reports, mentions of infrastructure disruption, and alerts from multiple sources justify high severity.",
		Actions: []DecisionAction{
			{
				Title:       "Issue emergency alerts",
				Description: "Send alerts through SMS, email, and public broadcast channels to notify people in affected areas.",
				Owner:       "local authorities",
				Priority:    1,
			},
			{
				Title:       "Check critical infrastructure",
				Description: "Assess the status of hospitals, power grids, and transportation hubs.",
				Owner:       "infrastructure teams",
				Priority:    2,
			},
		},
		Validator: DecisionValidator{
			AgreementWithPlan:        0.9,
			SeverityAdjustmentReason: "Mock validator agrees with primary assessment based on limited sample data.",
			CriticalWarnings:         []string{MockDataDisclaimer},
		},
		Incident: req.Incident,
	}, nil
}

// =============================================================================
// Decider
// =============================================================================

// Decider walks the degradation ladder until a strategy succeeds.
//
// The ladder is ordered in-process, remote, mock. The mock rung cannot fail,
// so Decide always returns a response in practice.
//
// Thread Safety: Decider is safe for concurrent use.
type Decider struct {
	strategies []decisionStrategy
	logger     *slog.Logger
}

// NewDecider builds the standard three-rung ladder. remoteEndpoint may be
// empty, in which case the remote rung fails immediately and the ladder
// degrades straight to the mock.
func NewDecider(orchestrator *Orchestrator, remoteEndpoint string) *Decider {
	return &Decider{
		strategies: []decisionStrategy{
			&inProcessStrategy{orchestrator: orchestrator},
			newRemoteStrategy(remoteEndpoint),
			&mockStrategy{},
		},
		logger: slog.Default(),
	}
}

// Decide runs the ladder and returns the first successful response.
func (d *Decider) Decide(ctx context.Context, req DecisionRequest) (*DecisionResponse, error) {
	var lastErr error
	for _, strategy := range d.strategies {
		resp, err := strategy.Attempt(ctx, req)
		if err != nil {
			strategyAttemptsTotal.WithLabelValues(strategy.Name(), "error").Inc()
			d.logger.Warn("Decision strategy failed, degrading to next level",
				slog.String("strategy", strategy.Name()),
				slog.String("topic", req.Topic),
				slog.String("error", err.Error()))
			lastErr = err
			continue
		}
		strategyAttemptsTotal.WithLabelValues(strategy.Name(), "ok").Inc()
		d.logger.Info("Decision produced",
			slog.String("strategy", strategy.Name()),
			slog.String("topic", req.Topic),
			slog.String("severity", resp.Severity))
		return resp, nil
	}
	return nil, fmt.Errorf("agent: all decision strategies failed: %w", lastErr)
}
