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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// extractionsTotal counts incident extractions by mode.
	// Labels: mode (external, heuristic)
	extractionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sentinel",
		Subsystem: "incident",
		Name:      "extractions_total",
		Help:      "Total incident extractions by mode",
	}, []string{"mode"})

	// graphWritesTotal counts fire-and-forget graph sink writes by status.
	// Labels: status (ok, error, panic)
	graphWritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sentinel",
		Subsystem: "incident",
		Name:      "graph_writes_total",
		Help:      "Total graph sink writes by status",
	}, []string{"status"})
)
