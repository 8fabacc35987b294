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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// stageFallbacksTotal counts pipeline stages that substituted a degraded
	// result instead of failing. stage is impact|plan|validate, reason is
	// transport|parse.
	stageFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sentinel",
			Subsystem: "pipeline",
			Name:      "stage_fallbacks_total",
			Help:      "Pipeline stages that degraded to a fallback result, by stage and reason.",
		},
		[]string{"stage", "reason"},
	)

	// stageDurationSeconds records wall time per pipeline stage.
	stageDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sentinel",
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Wall time of each pipeline stage.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	// strategyAttemptsTotal counts degradation-ladder attempts. strategy is
	// in_process|remote|mock, status is ok|error.
	strategyAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sentinel",
			Subsystem: "pipeline",
			Name:      "strategy_attempts_total",
			Help:      "Decision strategy attempts, by strategy and status.",
		},
		[]string{"strategy", "status"},
	)
)
