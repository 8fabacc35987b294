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
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	heuristicConfidence = 0.7
	extractedConfidence = 0.8
	maxSummaryLength    = 400
	graphSaveTimeout    = 10 * time.Second
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Extractor builds canonical Incident records from articles.
//
// Description:
//
//	Extract first tries the configured extraction service; on any failure
//	(absent configuration, transport error, non-2xx, invalid JSON) it falls
//	back to the rule-based heuristic builder. Either way the finished
//	Incident is handed to the graph sink fire-and-forget.
//
// Thread Safety: Extractor is safe for concurrent use.
type Extractor struct {
	client *FastinoClient
	sink   GraphSink
	logger *slog.Logger
}

// NewExtractor creates an Extractor. Both client and sink may be nil: a nil
// client selects the heuristic path unconditionally, and a nil sink disables
// graph persistence.
func NewExtractor(client *FastinoClient, sink GraphSink) *Extractor {
	return &Extractor{
		client: client,
		sink:   sink,
		logger: slog.Default(),
	}
}

// Extract builds an Incident from the articles for the given topic.
//
// Description:
//
//	Never returns an error: the heuristic builder is a total fallback
//	covering every failure mode of the external call, including an empty
//	article list (a synthetic placeholder article anchors the record). The
//	resulting Incident gets a fresh globally unique ID and is submitted to
//	the graph sink on a detached goroutine whose failure is logged and
//	swallowed.
func (e *Extractor) Extract(ctx context.Context, articles []Article, topic string) *Incident {
	incidentID := "incident-" + uuid.NewString()

	var (
		extracted *ExtractedIncident
		location  Location
	)
	if e.client.Configured() {
		var err error
		extracted, err = e.client.ExtractIncident(ctx, articles, topic)
		if err != nil {
			e.logger.Error("Fastino extraction failed, falling back to heuristic",
				slog.String("topic", topic),
				slog.String("error", err.Error()))
			extracted = nil
		}
	}

	var inc *Incident
	if extracted != nil {
		extractionsTotal.WithLabelValues("external").Inc()
		location = DecodeLocation(extracted.Location)
		inc = &Incident{
			Event:        extracted.Event,
			Orgs:         orEmpty(extracted.Orgs),
			SeverityCues: orEmpty(extracted.SeverityCues),
			TimeWindow:   extracted.TimeWindow,
			Summary:      extracted.Summary,
			RawSources:   extracted.RawSources,
			Severity:     extracted.Severity,
			Confidence:   extractedConfidence,
		}
		if inc.Severity == "" {
			inc.Severity = SeverityHigh
		}
		if extracted.Confidence != nil {
			inc.Confidence = *extracted.Confidence
		}
		if inc.RawSources == nil {
			inc.RawSources = []SourceRef{}
		}
	} else {
		extractionsTotal.WithLabelValues("heuristic").Inc()
		inc, location = buildHeuristicIncident(articles, topic)
	}

	inc.ID = incidentID
	inc.Topic = topic
	inc.Location = FinalizeLocation(SanitizeLocation(location))

	e.saveToGraph(inc)
	return inc
}

// saveToGraph submits the incident to the graph sink as a detached unit of
// work with no result channel back to the caller. The incident already
// returned to the caller is never mutated or invalidated by a sink failure.
func (e *Extractor) saveToGraph(inc *Incident) {
	if e.sink == nil {
		return
	}
	logger := e.logger
	sink := e.sink
	go func() {
		defer func() {
			if r := recover(); r != nil {
				buf := make([]byte, 4096)
				n := runtime.Stack(buf, false)
				logger.Error("Panic in graph persistence goroutine recovered",
					slog.Any("panic", r),
					slog.String("stack", string(buf[:n])))
				graphWritesTotal.WithLabelValues("panic").Inc()
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), graphSaveTimeout)
		defer cancel()

		if err := sink.SaveIncident(ctx, inc); err != nil {
			logger.Error("Failed to save incident to graph (continuing without graph)",
				slog.String("incident_id", inc.ID),
				slog.String("error", err.Error()))
			graphWritesTotal.WithLabelValues("error").Inc()
			return
		}
		graphWritesTotal.WithLabelValues("ok").Inc()
	}()
}

// buildHeuristicIncident derives an incident from the articles alone using
// the pure text heuristics. The first article anchors the record; an empty
// article list gets a synthetic placeholder anchor.
func buildHeuristicIncident(articles []Article, topic string) (*Incident, Location) {
	first := Article{
		Title:   fmt.Sprintf("Mock %s incident", topic),
		Content: fmt.Sprintf("A significant %s event has been reported.", topic),
		URL:     "https://example.com/mock",
		Time:    time.Now().UTC().Format(time.RFC3339),
	}
	if len(articles) > 0 {
		first = articles[0]
	}

	var combined strings.Builder
	for i, a := range articles {
		if i > 0 {
			combined.WriteString(" ")
		}
		combined.WriteString(a.Title)
		combined.WriteString(" ")
		combined.WriteString(a.Content)
	}
	combinedText := combined.String()

	location := Location{}
	if guess := ExtractLocationFromText(combinedText); guess != nil {
		location = *guess
	} else if guess := ExtractLocationFromText(first.Content); guess != nil {
		location = *guess
	}

	cues := ExtractSeverityCues(combinedText)
	orgs := ExtractOrgs(combinedText)

	rawSources := make([]SourceRef, 0, len(articles))
	for _, a := range articles {
		ref := SourceRef{Title: a.Title, URL: a.URL}
		if ref.Title == "" {
			ref.Title = "Untitled"
		}
		if a.Time != "" {
			t := a.Time
			ref.ReportedAt = &t
		}
		rawSources = append(rawSources, ref)
	}

	severity := SeverityMedium
	if len(cues) > 0 {
		severity = SeverityHigh
	}

	timeWindow := first.Time
	inc := &Incident{
		Event:        eventSlug(topic),
		Orgs:         orgs,
		SeverityCues: cues,
		TimeWindow:   &timeWindow,
		Summary:      buildHeuristicSummary(first),
		RawSources:   rawSources,
		Severity:     severity,
		Confidence:   heuristicConfidence,
	}
	return inc, location
}

// buildHeuristicSummary combines the anchor's title with its first sentence.
// Generic definitional openers ("what is ...", "an earthquake is ...") skip
// the title prefix so the summary does not read like a glossary entry.
func buildHeuristicSummary(first Article) string {
	snippet := first.Content
	if len(snippet) > 300 {
		snippet = snippet[:300]
	}
	firstSentence := snippet
	if idx := strings.IndexAny(snippet, ".!?"); idx >= 0 {
		firstSentence = snippet[:idx]
	}
	firstSentence = strings.TrimSpace(firstSentence)
	if firstSentence == "" {
		firstSentence = snippet
	}

	lowerContent := strings.ToLower(first.Content)
	definitional := strings.HasPrefix(lowerContent, "what is") || strings.HasPrefix(lowerContent, "an earthquake is")

	var summary string
	if first.Title != "" && !definitional {
		summary = first.Title + ". " + firstSentence + "."
	} else {
		summary = firstSentence
		if !strings.HasSuffix(summary, ".") {
			summary += "."
		}
	}
	if len(summary) > maxSummaryLength {
		summary = summary[:maxSummaryLength]
	}
	return summary
}

// eventSlug collapses a topic like "airport outage" into "airport_outage".
func eventSlug(topic string) string {
	slug := whitespaceRe.ReplaceAllString(strings.TrimSpace(topic), "_")
	if slug == "" {
		return "unknown_event"
	}
	return slug
}

func orEmpty(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
