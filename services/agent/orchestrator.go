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
	"fmt"
	"log/slog"
	"time"

	"github.com/AleutianAI/AleutianSentinel/services/incident"
)

// Orchestrator runs the three reasoning stages in order: impact assessment,
// plan generation, plan validation.
//
// Stage contracts differ. The impact stage always yields a usable value (the
// Senso client degrades internally). The generation and validation stages
// propagate transport failures, which is what lets the degradation ladder
// move on to the next strategy.
//
// Thread Safety: Orchestrator is safe for concurrent use.
type Orchestrator struct {
	senso   *SensoClient
	planner *Planner
	logger  *slog.Logger
}

// NewOrchestrator creates an Orchestrator over the given stage clients.
func NewOrchestrator(senso *SensoClient, planner *Planner) *Orchestrator {
	return &Orchestrator{
		senso:   senso,
		planner: planner,
		logger:  slog.Default(),
	}
}

// Run executes one full pipeline pass and merges the stage outputs.
//
// An empty article list is replaced by a single placeholder article so every
// downstream prompt still has content to work with.
func (o *Orchestrator) Run(ctx context.Context, topic string, articles []incident.Article) (RawAgentOutput, error) {
	safeArticles := articles
	if len(safeArticles) == 0 {
		safeArticles = []incident.Article{{
			Title:   "No articles",
			Content: "Placeholder for " + topic,
			URL:     "mock://",
			Time:    time.Now().UTC().Format(time.RFC3339),
		}}
	}

	start := time.Now()
	impact := o.senso.Assess(ctx, topic, safeArticles)
	stageDurationSeconds.WithLabelValues("impact").Observe(time.Since(start).Seconds())

	start = time.Now()
	plan, err := o.planner.GeneratePlan(ctx, topic, impact, safeArticles)
	stageDurationSeconds.WithLabelValues("plan").Observe(time.Since(start).Seconds())
	if err != nil {
		return RawAgentOutput{}, fmt.Errorf("agent: pipeline plan stage: %w", err)
	}

	start = time.Now()
	validation, err := o.planner.ValidatePlan(ctx, plan)
	stageDurationSeconds.WithLabelValues("validate").Observe(time.Since(start).Seconds())
	if err != nil {
		return RawAgentOutput{}, fmt.Errorf("agent: pipeline validation stage: %w", err)
	}

	o.logger.Info("Pipeline run complete",
		slog.String("topic", topic),
		slog.String("severity", plan.Severity),
		slog.String("verdict", validation.RekaVerdict))

	return RawAgentOutput{
		Topic:      topic,
		Senso:      impact,
		Plan:       plan,
		Validation: validation,
	}, nil
}
