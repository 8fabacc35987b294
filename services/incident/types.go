// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package incident turns unstructured news text about a developing event into
// a canonical incident record.
//
// The package prefers an external extraction service when one is configured
// and falls back to pure rule-based heuristics (location gazetteer, severity
// cues, organization detection) whenever that service is absent or fails.
// Extraction therefore never fails: every call produces a finished Incident.
package incident

import "context"

// Severity levels for an incident. The heuristic builder only ever assigns
// High or Medium; Critical is reserved for the reasoning pipeline.
const (
	SeverityLow      = "Low"
	SeverityMedium   = "Medium"
	SeverityHigh     = "High"
	SeverityCritical = "Critical"
)

// Article is a single normalized news item as supplied by the retrieval
// layer. Articles are ephemeral and never mutated after creation.
type Article struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	URL     string `json:"url"`
	Time    string `json:"time"`
	Source  string `json:"source,omitempty"`
}

// Location is a place reference extracted from article text or returned by
// the extraction service.
//
// Invariant: once an incident is finalized, at least one of Name or the
// (Lat, Long) pair is non-nil, defaulting to the name "Unknown" otherwise.
// Lat and Long are always paired; one is never set without the other.
type Location struct {
	Name *string  `json:"name"`
	Lat  *float64 `json:"lat"`
	Long *float64 `json:"long"`
}

// IsZero reports whether the location carries neither a name nor coordinates.
func (l Location) IsZero() bool {
	return l.Name == nil && l.Lat == nil && l.Long == nil
}

// SourceRef points back at the article an incident was derived from.
type SourceRef struct {
	Title      string  `json:"title"`
	URL        string  `json:"url"`
	ReportedAt *string `json:"reported_at"`
}

// Incident is the canonical structured record describing one real-world
// event. It is created once per pipeline run and immutable thereafter; the
// asynchronous graph-persistence side channel never mutates it.
type Incident struct {
	ID           string      `json:"id"`
	Event        string      `json:"event"`
	Location     Location    `json:"location"`
	Orgs         []string    `json:"orgs"`
	SeverityCues []string    `json:"severity_cues"`
	TimeWindow   *string     `json:"time_window"`
	Summary      string      `json:"summary"`
	RawSources   []SourceRef `json:"raw_sources"`
	Severity     string      `json:"severity"`
	Confidence   float64     `json:"confidence"`
	Topic        string      `json:"topic"`
}

// GraphSink persists an incident into an external graph store.
//
// Implementations are expected to provide idempotent upsert semantics keyed
// by the incident ID. The extractor calls the sink fire-and-forget: a sink
// failure is logged and swallowed, never surfaced to the caller.
type GraphSink interface {
	SaveIncident(ctx context.Context, inc *Incident) error
}
