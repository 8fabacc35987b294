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
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// recordingSink captures incidents handed to the graph goroutine.
type recordingSink struct {
	mu        sync.Mutex
	incidents []*Incident
	saved     chan struct{}
}

func newRecordingSink() *recordingSink {
	return &recordingSink{saved: make(chan struct{}, 8)}
}

func (s *recordingSink) SaveIncident(_ context.Context, inc *Incident) error {
	s.mu.Lock()
	s.incidents = append(s.incidents, inc)
	s.mu.Unlock()
	s.saved <- struct{}{}
	return nil
}

func japanArticles() []Article {
	return []Article{
		{
			Title:   "Powerful quake shakes northern Japan",
			Content: "A magnitude 7.1 earthquake struck off the coast of Japan. A tsunami warning was issued according to the USGS. Aftershocks are expected.",
			URL:     "https://example.com/japan-quake",
			Time:    "2026-02-27T10:00:00Z",
			Source:  "tavily",
		},
	}
}

func TestExtract_HeuristicJapanScenario(t *testing.T) {
	e := NewExtractor(nil, nil)
	inc := e.Extract(context.Background(), japanArticles(), "earthquake")

	if inc.Location.Name == nil || *inc.Location.Name != "Japan" {
		t.Errorf("location = %+v, want name Japan", inc.Location)
	}
	for _, want := range []string{"magnitude 7.1", "tsunami warning", "aftershocks"} {
		if !containsString(inc.SeverityCues, want) {
			t.Errorf("cues = %v, missing %q", inc.SeverityCues, want)
		}
	}
	if !containsString(inc.Orgs, "Usgs") {
		t.Errorf("orgs = %v, missing Usgs", inc.Orgs)
	}
	if inc.Severity != SeverityHigh {
		t.Errorf("severity = %q, want %q", inc.Severity, SeverityHigh)
	}
	if inc.Confidence != 0.7 {
		t.Errorf("confidence = %v, want 0.7", inc.Confidence)
	}
	if inc.Event != "earthquake" {
		t.Errorf("event = %q, want earthquake", inc.Event)
	}
	if !strings.HasPrefix(inc.ID, "incident-") {
		t.Errorf("id = %q, want incident- prefix", inc.ID)
	}
	if len(inc.RawSources) != 1 || inc.RawSources[0].Title != "Powerful quake shakes northern Japan" {
		t.Errorf("raw sources = %+v", inc.RawSources)
	}
}

func TestExtract_EmptyArticles(t *testing.T) {
	e := NewExtractor(nil, nil)
	inc := e.Extract(context.Background(), nil, "flood")

	if inc == nil {
		t.Fatal("expected an incident")
	}
	if inc.Event != "flood" {
		t.Errorf("event = %q, want flood", inc.Event)
	}
	if inc.Severity != SeverityMedium {
		t.Errorf("severity = %q, want %q", inc.Severity, SeverityMedium)
	}
	if inc.Location.Name == nil || *inc.Location.Name != "Unknown" {
		t.Errorf("location = %+v, want Unknown", inc.Location)
	}
	if inc.Summary == "" {
		t.Error("expected a non-empty summary")
	}
	if len(inc.RawSources) != 0 {
		t.Errorf("raw sources = %+v, want empty", inc.RawSources)
	}
}

func TestExtract_NoCuesMediumSeverity(t *testing.T) {
	articles := []Article{{
		Title:   "Local festival draws crowds",
		Content: "Visitors enjoyed a calm afternoon in the park.",
		URL:     "https://example.com/festival",
		Time:    "2026-01-01T00:00:00Z",
	}}
	e := NewExtractor(nil, nil)
	inc := e.Extract(context.Background(), articles, "storm")

	if inc.Severity != SeverityMedium {
		t.Errorf("severity = %q, want %q", inc.Severity, SeverityMedium)
	}
	if len(inc.SeverityCues) != 0 {
		t.Errorf("cues = %v, want empty", inc.SeverityCues)
	}
}

func TestExtract_ExternalPath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization = %q, want bearer token", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"output": {
			"event": "earthquake",
			"location": "Japan",
			"orgs": ["USGS"],
			"severity_cues": ["magnitude 7.1"],
			"time_window": "2026-02-27T10:00Z",
			"summary": "A strong earthquake hit Japan.",
			"raw_sources": [{"title": "Quake", "url": "https://example.com/q", "reported_at": null}]
		}}`))
	}))
	defer server.Close()

	client := NewFastinoClientWithConfig(ExtractionConfig{URL: server.URL, APIKey: "test-key"})
	e := NewExtractor(client, nil)
	inc := e.Extract(context.Background(), japanArticles(), "earthquake")

	if inc.Event != "earthquake" {
		t.Errorf("event = %q, want earthquake", inc.Event)
	}
	if inc.Location.Name == nil || *inc.Location.Name != "Japan" {
		t.Errorf("location = %+v, want Japan", inc.Location)
	}
	if inc.Confidence != 0.8 {
		t.Errorf("confidence = %v, want 0.8 default", inc.Confidence)
	}
	if inc.Severity != SeverityHigh {
		t.Errorf("severity = %q, want default High", inc.Severity)
	}
	if inc.Summary != "A strong earthquake hit Japan." {
		t.Errorf("summary = %q", inc.Summary)
	}
}

func TestExtract_ExternalFailureFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewFastinoClientWithConfig(ExtractionConfig{URL: server.URL, APIKey: "test-key"})
	e := NewExtractor(client, nil)
	inc := e.Extract(context.Background(), japanArticles(), "earthquake")

	// Heuristic path markers
	if inc.Confidence != 0.7 {
		t.Errorf("confidence = %v, want heuristic 0.7", inc.Confidence)
	}
	if inc.Location.Name == nil || *inc.Location.Name != "Japan" {
		t.Errorf("location = %+v, want Japan", inc.Location)
	}
}

func TestExtract_SavesToGraphSink(t *testing.T) {
	sink := newRecordingSink()
	e := NewExtractor(nil, sink)
	inc := e.Extract(context.Background(), japanArticles(), "earthquake")

	select {
	case <-sink.saved:
	case <-time.After(2 * time.Second):
		t.Fatal("graph sink was never invoked")
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.incidents) != 1 {
		t.Fatalf("sink writes = %d, want 1", len(sink.incidents))
	}
	if sink.incidents[0].ID != inc.ID {
		t.Errorf("sink saw id %q, want %q", sink.incidents[0].ID, inc.ID)
	}
}

func TestDecodeExtractionResponse_StringWrappedJSON(t *testing.T) {
	body := []byte(`{"result": "{\"event\": \"flood\", \"summary\": \"Rivers rising.\"}"}`)
	extracted, err := decodeExtractionResponse(body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if extracted.Event != "flood" {
		t.Errorf("event = %q, want flood", extracted.Event)
	}
}

func TestDecodeExtractionResponse_BareObject(t *testing.T) {
	body := []byte(`{"event": "wildfire", "summary": "Fires spreading."}`)
	extracted, err := decodeExtractionResponse(body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if extracted.Event != "wildfire" {
		t.Errorf("event = %q, want wildfire", extracted.Event)
	}
}

func TestBuildHeuristicSummary_DefinitionalContent(t *testing.T) {
	summary := buildHeuristicSummary(Article{
		Title:   "What is an earthquake?",
		Content: "What is an earthquake? It is a sudden shaking of the ground.",
	})
	if strings.HasPrefix(summary, "What is an earthquake?.") {
		t.Errorf("summary = %q, title prefix should be skipped for definitional content", summary)
	}
}

func TestEventSlug(t *testing.T) {
	if got := eventSlug("airport outage"); got != "airport_outage" {
		t.Errorf("slug = %q, want airport_outage", got)
	}
	if got := eventSlug("  "); got != "unknown_event" {
		t.Errorf("slug = %q, want unknown_event", got)
	}
}
