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

	"github.com/AleutianAI/AleutianSentinel/services/incident"
	"github.com/stretchr/testify/require"
)

// newRekaStub returns a Planner whose Reka client talks to a server that
// always responds with the given body.
func newRekaStub(t *testing.T, body string) *Planner {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Api-Key"); got != "rk-key" {
			t.Errorf("X-Api-Key = %q, want rk-key", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return NewPlanner(NewRekaClientWithConfig(RekaConfig{APIKey: "rk-key", BaseURL: server.URL}))
}

func testArticles() []incident.Article {
	return []incident.Article{{Title: "Quake", Content: "Strong shaking.", URL: "https://example.com/q", Time: "now"}}
}

func TestGeneratePlan_ValidJSON(t *testing.T) {
	planner := newRekaStub(t, `{"text": "{\"severity\":\"High\",\"confidence\":0.8,\"summary\":\"Respond now.\",\"actions\":[{\"priority\":1,\"action\":\"Alert\",\"owner\":\"EOC\",\"eta\":\"1h\"}],\"checklist\":[\"check dams\"]}"}`)

	plan, err := planner.GeneratePlan(context.Background(), "earthquake", ImpactAssessment{}, testArticles())
	require.NoError(t, err)
	require.Equal(t, "High", plan.Severity)
	require.NotNil(t, plan.Confidence)
	require.Equal(t, 0.8, *plan.Confidence)
	require.Len(t, plan.Actions, 1)
	require.Equal(t, []string{"check dams"}, plan.Checklist)
}

func TestGeneratePlan_NonJSONFallsBack(t *testing.T) {
	planner := newRekaStub(t, `{"text": "Sure! Here is my plan in prose form."}`)

	plan, err := planner.GeneratePlan(context.Background(), "earthquake", ImpactAssessment{}, testArticles())
	require.NoError(t, err)
	require.Equal(t, "Medium", plan.Severity)
	require.NotNil(t, plan.Confidence)
	require.Equal(t, 0.5, *plan.Confidence)
	require.Equal(t, "Sure! Here is my plan in prose form.", plan.Summary)
	require.Len(t, plan.Actions, 1)
	require.Equal(t, "Fix JSON prompt/parse", plan.Actions[0].Action)
	require.Equal(t, "Engineer", plan.Actions[0].Owner)
	require.Equal(t, "now", plan.Actions[0].ETA)
	require.Empty(t, plan.Checklist)
}

func TestGeneratePlan_MissingKeyErrors(t *testing.T) {
	planner := NewPlanner(NewRekaClientWithConfig(RekaConfig{}))
	_, err := planner.GeneratePlan(context.Background(), "earthquake", ImpactAssessment{}, testArticles())
	require.Error(t, err)
	require.Contains(t, err.Error(), "API key is missing")
}

func TestGeneratePlan_ServerErrorPropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	planner := NewPlanner(NewRekaClientWithConfig(RekaConfig{APIKey: "rk-key", BaseURL: server.URL}))
	_, err := planner.GeneratePlan(context.Background(), "earthquake", ImpactAssessment{}, testArticles())
	require.Error(t, err)
	require.Contains(t, err.Error(), "status 429")
}

func TestValidatePlan_ValidJSON(t *testing.T) {
	planner := newRekaStub(t, `{"output_text": "{\"reka_verdict\":\"OK\",\"missing_steps\":[],\"risks\":[]}"}`)

	validation, err := planner.ValidatePlan(context.Background(), Plan{Severity: "High"})
	require.NoError(t, err)
	require.Equal(t, VerdictOK, validation.RekaVerdict)
}

func TestValidatePlan_NonJSONFallsBack(t *testing.T) {
	planner := newRekaStub(t, `{"choices": [{"message": {"content": "Looks fine to me."}}]}`)

	validation, err := planner.ValidatePlan(context.Background(), Plan{Severity: "High"})
	require.NoError(t, err)
	require.Equal(t, VerdictWarn, validation.RekaVerdict)
	require.Equal(t, []string{"Non-JSON validation"}, validation.MissingSteps)
	require.Empty(t, validation.Risks)
}

func TestRekaResponse_ExtractTextPrecedence(t *testing.T) {
	r := rekaResponse{Text: "a", OutputText: "b"}
	require.Equal(t, "a", r.extractText())

	r = rekaResponse{OutputText: "b"}
	require.Equal(t, "b", r.extractText())

	r = rekaResponse{}
	r.Choices = append(r.Choices, struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}{})
	r.Choices[0].Message.Content = "c"
	require.Equal(t, "c", r.extractText())
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "abc", truncate("abc", 5))
	require.Equal(t, "ab", truncate("abcdef", 2))
}
