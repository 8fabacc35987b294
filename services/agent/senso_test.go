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
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSensoAssess_Unconfigured(t *testing.T) {
	client := NewSensoClientWithConfig(SensoConfig{})
	assessment := client.Assess(context.Background(), "earthquake", testArticles())

	require.Equal(t, []string{"impact_assessment"}, assessment.Labels)
	require.Equal(t, "Unknown impact (service not configured).", assessment.Impact)
	require.Equal(t, []string{"verify", "monitor", "prepare"}, assessment.RecommendedFocus)
	require.Empty(t, assessment.Error)
}

func TestSensoAssess_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer sn-key" {
			t.Errorf("authorization = %q, want bearer token", got)
		}
		if r.URL.Path != "/analyze" {
			t.Errorf("path = %q, want /analyze", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"labels":["impact_assessment"],"impact":"Severe regional impact","key_entities":["Japan"],"recommended_focus":["evacuate"]}`))
	}))
	defer server.Close()

	client := NewSensoClientWithConfig(SensoConfig{BaseURL: server.URL, APIKey: "sn-key"})
	assessment := client.Assess(context.Background(), "earthquake", testArticles())

	require.Equal(t, "Severe regional impact", assessment.Impact)
	require.Equal(t, []string{"Japan"}, assessment.KeyEntities)
	require.Empty(t, assessment.Error)
}

func TestSensoAssess_FailureDegrades(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewSensoClientWithConfig(SensoConfig{BaseURL: server.URL, APIKey: "sn-key"})
	assessment := client.Assess(context.Background(), "earthquake", testArticles())

	require.Equal(t, "Impact analysis failed", assessment.Impact)
	require.NotEmpty(t, assessment.Error)
	require.Empty(t, assessment.RecommendedFocus)
}
