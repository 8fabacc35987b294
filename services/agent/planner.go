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
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/AleutianAI/AleutianSentinel/services/incident"
)

const (
	strictJSONDirective = "Return ONLY valid JSON. No extra text."

	// Prompt embeds are capped so one oversized article set cannot blow the
	// model's context window.
	maxImpactEmbed   = 4000
	maxArticlesEmbed = 8000

	fallbackSummaryLength = 300
)

// Planner generates and validates action plans through the Reka client.
//
// Parse discipline: a response that is not valid JSON is always replaced by
// a fixed, documented fallback value, never propagated. Transport failures
// propagate to the orchestrator as stage failures.
//
// Thread Safety: Planner is safe for concurrent use.
type Planner struct {
	reka   *RekaClient
	logger *slog.Logger
}

// NewPlanner creates a Planner over the given Reka client.
func NewPlanner(reka *RekaClient) *Planner {
	return &Planner{reka: reka, logger: slog.Default()}
}

// GeneratePlan asks for a severity, confidence, summary, prioritized action
// list, and checklist, given the impact assessment and articles.
//
// The call is not retried. A transport-level failure is returned as an
// error; a response that fails to parse as JSON yields the fixed fallback
// plan instead.
func (p *Planner) GeneratePlan(ctx context.Context, topic string, impact ImpactAssessment, articles []incident.Article) (Plan, error) {
	impactJSON, err := json.Marshal(impact)
	if err != nil {
		return Plan{}, fmt.Errorf("agent: marshaling impact assessment: %w", err)
	}
	articlesJSON, err := json.Marshal(articles)
	if err != nil {
		return Plan{}, fmt.Errorf("agent: marshaling articles: %w", err)
	}

	prompt := fmt.Sprintf(`Topic: %s

Senso impact assessment (JSON):
%s

Articles (JSON):
%s

Return STRICT JSON:
{
 "severity":"Low|Medium|High",
 "confidence":0-1,
 "summary":string,
 "actions":[{"priority":1,"action":string,"owner":string,"eta":string}],
 "checklist":[string]
}`, topic, truncate(string(impactJSON), maxImpactEmbed), truncate(string(articlesJSON), maxArticlesEmbed))

	text, err := p.reka.Chat(ctx, []Message{
		{Role: "system", Content: strictJSONDirective},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return Plan{}, fmt.Errorf("agent: plan generation: %w", err)
	}

	var plan Plan
	if err := json.Unmarshal([]byte(text), &plan); err != nil {
		p.logger.Warn("Plan response was not valid JSON, using fallback plan",
			slog.String("topic", topic),
			slog.Int("response_len", len(text)))
		stageFallbacksTotal.WithLabelValues("plan", "parse").Inc()
		return fallbackPlan(text), nil
	}
	return plan, nil
}

// ValidatePlan asks for a critique of the generated plan under the same
// strict-JSON discipline.
func (p *Planner) ValidatePlan(ctx context.Context, plan Plan) (Validation, error) {
	planJSON, err := json.Marshal(plan)
	if err != nil {
		return Validation{}, fmt.Errorf("agent: marshaling plan: %w", err)
	}

	prompt := fmt.Sprintf(`You are a risk validator. Review plan JSON and return STRICT JSON:
{
 "reka_verdict":"OK|WARN|FAIL",
 "missing_steps":[string],
 "risks":[string]
}

Plan JSON:
%s`, planJSON)

	text, err := p.reka.Chat(ctx, []Message{
		{Role: "system", Content: strictJSONDirective},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return Validation{}, fmt.Errorf("agent: plan validation: %w", err)
	}

	var validation Validation
	if err := json.Unmarshal([]byte(text), &validation); err != nil {
		p.logger.Warn("Validation response was not valid JSON, using fallback verdict",
			slog.Int("response_len", len(text)))
		stageFallbacksTotal.WithLabelValues("validate", "parse").Inc()
		return Validation{
			RekaVerdict:  VerdictWarn,
			MissingSteps: []string{"Non-JSON validation"},
			Risks:        []string{},
		}, nil
	}
	return validation, nil
}

// fallbackPlan is the fixed substitute when the model's plan response did
// not parse: Medium severity, 0.5 confidence, the raw text's first 300
// characters as summary, and a single corrective action.
func fallbackPlan(raw string) Plan {
	confidence := 0.5
	priority := 1.0
	return Plan{
		Severity:   "Medium",
		Confidence: &confidence,
		Summary:    truncate(raw, fallbackSummaryLength),
		Actions: []Action{{
			Priority: &priority,
			Action:   "Fix JSON prompt/parse",
			Owner:    "Engineer",
			ETA:      "now",
		}},
		Checklist: []string{},
	}
}

func truncate(s string, limit int) string {
	if len(s) > limit {
		return s[:limit]
	}
	return s
}
