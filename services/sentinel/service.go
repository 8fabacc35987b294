// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package sentinel wires the news, incident, and agent services into the
// HTTP-facing decision pipeline and exposes its Gin handlers.
package sentinel

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/AleutianAI/AleutianSentinel/services/agent"
	"github.com/AleutianAI/AleutianSentinel/services/incident"
	"github.com/AleutianAI/AleutianSentinel/services/incident/graph"
	"github.com/AleutianAI/AleutianSentinel/services/news"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const (
	defaultTopic      = "earthquake"
	defaultMaxResults = 5
)

// Service runs the full pipeline: fetch news, extract the incident, walk
// the decision ladder.
//
// Thread Safety: Service is safe for concurrent use.
type Service struct {
	aggregator *news.Aggregator
	extractor  *incident.Extractor
	decider    *agent.Decider
	logger     *slog.Logger
}

// NewService wires the pipeline from the given configuration.
//
// Description:
//
//	Each integration is constructed from its config section; unset sections
//	produce clients that degrade internally. The only construction that can
//	fail is the graph sink, and that failure downgrades to extraction
//	without persistence rather than aborting startup.
func NewService(cfg ServiceConfig) *Service {
	logger := slog.Default()

	tavily := news.NewTavilyClientWithConfig(cfg.Tavily)
	yutori := news.NewYutoriClient()
	aggregator := news.NewAggregator(tavily, yutori)

	fastino := incident.NewFastinoClientWithConfig(cfg.Extraction)

	var sink incident.GraphSink
	if cfg.Graph.Host != "" {
		s, err := graph.NewSinkWithConfig(cfg.Graph)
		if err != nil {
			logger.Warn("Weaviate sink unavailable, continuing without graph persistence",
				slog.String("host", cfg.Graph.Host),
				slog.String("error", err.Error()))
		} else {
			sink = s
		}
	}
	extractor := incident.NewExtractor(fastino, sink)

	senso := agent.NewSensoClientWithConfig(cfg.Senso)
	reka := agent.NewRekaClientWithConfig(cfg.Reka)
	planner := agent.NewPlanner(reka)
	orchestrator := agent.NewOrchestrator(senso, planner)
	decider := agent.NewDecider(orchestrator, cfg.DecisionAgentURL)

	return &Service{
		aggregator: aggregator,
		extractor:  extractor,
		decider:    decider,
		logger:     logger,
	}
}

// Decide runs one full pipeline pass for the topic.
//
// Outputs:
//   - *DecisionResponse: Always structurally complete; the decision ladder
//     bottoms out in a deterministic mock.
//   - error: Non-nil only if every ladder rung failed, which the mock rung
//     prevents in practice.
func (s *Service) Decide(ctx context.Context, topic string) (*agent.DecisionResponse, error) {
	if topic == "" {
		topic = defaultTopic
	}

	ctx, span := otel.Tracer("aleutian.sentinel").Start(ctx, "sentinel.Decide")
	defer span.End()
	span.SetAttributes(attribute.String("topic", topic))

	start := time.Now()
	articles := s.aggregator.Fetch(ctx, topic, defaultMaxResults)
	inc := s.extractor.Extract(ctx, articles, topic)

	resp, err := s.decider.Decide(ctx, agent.DecisionRequest{
		Topic:    topic,
		Articles: articles,
		Incident: inc,
	})
	if err != nil {
		return nil, fmt.Errorf("sentinel: decision pipeline: %w", err)
	}

	s.logger.Info("Decision pipeline complete",
		slog.String("topic", topic),
		slog.String("incident_id", resp.IncidentID),
		slog.String("severity", resp.Severity),
		slog.Int("articles", len(articles)),
		slog.Duration("duration", time.Since(start)))
	return resp, nil
}
