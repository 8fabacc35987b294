// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package news

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestTavilySearch_SimulatedWithoutKey(t *testing.T) {
	client := NewTavilyClientWithConfig(TavilyConfig{})
	articles, err := client.Search(context.Background(), "earthquake", 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(articles) != 3 {
		t.Fatalf("articles = %d, want 3 simulated", len(articles))
	}
	for _, a := range articles {
		if !strings.HasPrefix(a.Title, "[SIM]") {
			t.Errorf("title = %q, want [SIM] prefix", a.Title)
		}
		if a.Source != "tavily" {
			t.Errorf("source = %q, want tavily", a.Source)
		}
	}
}

func TestTavilySearch_RealResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("x-api-key"); got != "tv-key" {
			t.Errorf("x-api-key = %q, want tv-key", got)
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req["search_depth"] != "advanced" {
			t.Errorf("search_depth = %v, want advanced", req["search_depth"])
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results": [
			{"title": "Quake", "url": "https://example.com/a", "content": "Shaking reported.", "published_date": "2026-02-27"},
			{"title": "Snippet only", "url": "https://example.com/b", "snippet": "Short note."},
			{"title": "Extra", "url": "https://example.com/c", "content": "Dropped by max."}
		]}`))
	}))
	defer server.Close()

	client := NewTavilyClientWithConfig(TavilyConfig{APIKey: "tv-key", BaseURL: server.URL})
	articles, err := client.Search(context.Background(), "earthquake", 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("articles = %d, want 2 (capped)", len(articles))
	}
	if articles[0].Time != "2026-02-27" {
		t.Errorf("time = %q, want published_date", articles[0].Time)
	}
	if articles[1].Content != "Short note." {
		t.Errorf("content = %q, want snippet fallback", articles[1].Content)
	}
}

func TestTavilySearch_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewTavilyClientWithConfig(TavilyConfig{APIKey: "tv-key", BaseURL: server.URL})
	if _, err := client.Search(context.Background(), "earthquake", 5); err == nil {
		t.Fatal("expected an error for non-200 response")
	}
}

func TestYutoriFetch_Simulated(t *testing.T) {
	client := NewYutoriClient()
	articles, err := client.Fetch(context.Background(), "flood", 3)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(articles) != 3 {
		t.Fatalf("articles = %d, want 3", len(articles))
	}
	if articles[0].Source != "yutori" {
		t.Errorf("source = %q, want yutori", articles[0].Source)
	}
}
