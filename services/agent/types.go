// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package agent runs the staged reasoning pipeline over an extracted
// incident: Senso impact assessment, Reka plan generation, Reka plan
// validation, and the normalization of the merged output into the published
// DecisionResponse shape.
//
// The package guarantees total degradation: a Decider always yields a
// structurally valid DecisionResponse by falling through an ordered ladder
// of strategies, ending in a deterministic mock built from the incident
// alone.
package agent

import (
	"encoding/json"

	"github.com/AleutianAI/AleutianSentinel/services/incident"
)

// Verdicts the plan validator may return.
const (
	VerdictOK   = "OK"
	VerdictWarn = "WARN"
	VerdictFail = "FAIL"
)

// ImpactAssessment is the Senso analysis of a topic's articles. Error is set
// only on the degraded path, when a configured call failed.
type ImpactAssessment struct {
	Labels           []string `json:"labels"`
	Impact           string   `json:"impact"`
	KeyEntities      []string `json:"key_entities"`
	RecommendedFocus []string `json:"recommended_focus"`
	Error            string   `json:"error,omitempty"`
}

// Action is a single prioritized step in a generated plan.
type Action struct {
	Priority *float64 `json:"priority"`
	Action   string   `json:"action"`
	Owner    string   `json:"owner"`
	ETA      string   `json:"eta"`
}

// UnmarshalJSON tolerates a non-numeric priority (the model occasionally
// emits "P1" or "high"); such values decode to a nil Priority and the
// response mapper substitutes the default.
func (a *Action) UnmarshalJSON(data []byte) error {
	type alias struct {
		Priority json.RawMessage `json:"priority"`
		Action   string          `json:"action"`
		Owner    string          `json:"owner"`
		ETA      string          `json:"eta"`
	}
	var aux alias
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	a.Action = aux.Action
	a.Owner = aux.Owner
	a.ETA = aux.ETA
	a.Priority = nil
	if len(aux.Priority) > 0 {
		var p float64
		if err := json.Unmarshal(aux.Priority, &p); err == nil {
			a.Priority = &p
		}
	}
	return nil
}

// Plan is the generated action plan. Confidence is a pointer so an absent
// value can be distinguished from an explicit zero when mapping defaults.
type Plan struct {
	Severity   string   `json:"severity"`
	Confidence *float64 `json:"confidence"`
	Summary    string   `json:"summary"`
	Actions    []Action `json:"actions"`
	Checklist  []string `json:"checklist"`
}

// Validation is the critique of a generated plan.
type Validation struct {
	RekaVerdict  string   `json:"reka_verdict"`
	MissingSteps []string `json:"missing_steps"`
	Risks        []string `json:"risks"`
}

// RawAgentOutput is the merged result of one orchestrator run. Plan is
// embedded so its fields flatten into the top level of the JSON document,
// matching the contract of the externally hosted decision agent.
type RawAgentOutput struct {
	Topic string           `json:"topic"`
	Senso ImpactAssessment `json:"senso"`
	Plan
	Validation Validation `json:"validation"`
}

// DecisionAction is an action item in the published response shape.
type DecisionAction struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Owner       string  `json:"owner"`
	Priority    float64 `json:"priority"`
}

// DecisionValidator is the validator block in the published response shape.
type DecisionValidator struct {
	AgreementWithPlan        float64  `json:"agreement_with_plan"`
	SeverityAdjustmentReason string   `json:"severity_adjustment_reason"`
	CriticalWarnings         []string `json:"critical_warnings"`
}

// DecisionResponse is the externally published output of one full pipeline
// run. It is produced once per run and read-only to consumers.
type DecisionResponse struct {
	IncidentID string             `json:"incidentId"`
	Topic      string             `json:"topic"`
	Severity   string             `json:"severity"`
	Confidence float64            `json:"confidence"`
	Summary    string             `json:"summary"`
	Rationale  string             `json:"rationale"`
	Actions    []DecisionAction   `json:"actions"`
	Validator  DecisionValidator  `json:"validator"`
	Incident   *incident.Incident `json:"incident,omitempty"`
	Checklist  []string           `json:"checklist,omitempty"`
}

// DecisionRequest carries one pipeline run's inputs through the degradation
// ladder.
type DecisionRequest struct {
	Topic    string
	Articles []incident.Article
	Incident *incident.Incident
}
