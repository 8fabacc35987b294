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
	"encoding/json"
	"strings"
	"testing"

	"github.com/AleutianAI/AleutianSentinel/services/incident"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func TestMapAgentOutput_FullPlan(t *testing.T) {
	out := RawAgentOutput{
		Topic: "earthquake",
		Plan: Plan{
			Severity:   "High",
			Confidence: floatPtr(0.9),
			Summary:    "Major quake response needed.",
			Actions: []Action{
				{Priority: floatPtr(1), Action: "Alert responders", Owner: "EOC", ETA: "1h"},
			},
			Checklist: []string{"confirm epicenter"},
		},
		Validation: Validation{
			RekaVerdict:  "OK",
			MissingSteps: []string{},
			Risks:        []string{},
		},
	}

	resp := MapAgentOutput(out, "incident-1", nil)

	require.Equal(t, "incident-1", resp.IncidentID)
	require.Equal(t, "High", resp.Severity)
	require.Equal(t, 0.9, resp.Confidence)
	require.Equal(t, 1.0, resp.Validator.AgreementWithPlan)
	require.Equal(t, "Reka verdict: OK.", resp.Validator.SeverityAdjustmentReason)
	require.Equal(t, "Plan generated from Senso + Reka. Reka verdict: OK.", resp.Rationale)

	require.Len(t, resp.Actions, 1)
	require.Equal(t, "Alert responders", resp.Actions[0].Title)
	require.Equal(t, "1h", resp.Actions[0].Description)
	require.Equal(t, "EOC", resp.Actions[0].Owner)
	require.Equal(t, 1.0, resp.Actions[0].Priority)

	require.Equal(t, []string{"confirm epicenter"}, resp.Checklist)
	require.Nil(t, resp.Incident)
}

func TestMapAgentOutput_VerdictTable(t *testing.T) {
	cases := []struct {
		verdict string
		want    float64
	}{
		{"OK", 1},
		{"ok", 1},
		{"WARN", 0.5},
		{"FAIL", 0},
		{"MAYBE", 0.5},
		{"", 0.5},
	}
	for _, tc := range cases {
		out := RawAgentOutput{Validation: Validation{RekaVerdict: tc.verdict}}
		resp := MapAgentOutput(out, "id", nil)
		require.Equalf(t, tc.want, resp.Validator.AgreementWithPlan, "verdict %q", tc.verdict)
	}
}

func TestMapAgentOutput_ActionDefaults(t *testing.T) {
	out := RawAgentOutput{
		Plan: Plan{
			Actions: []Action{{}},
		},
	}
	resp := MapAgentOutput(out, "id", nil)

	require.Len(t, resp.Actions, 1)
	require.Equal(t, "Unspecified action", resp.Actions[0].Title)
	require.Equal(t, "", resp.Actions[0].Description)
	require.Equal(t, "—", resp.Actions[0].Owner)
	require.Equal(t, 1.0, resp.Actions[0].Priority)
}

func TestMapAgentOutput_TopLevelDefaults(t *testing.T) {
	resp := MapAgentOutput(RawAgentOutput{}, "", nil)

	require.True(t, strings.HasPrefix(resp.IncidentID, "event-"))
	require.Equal(t, "earthquake", resp.Topic)
	require.Equal(t, "Medium", resp.Severity)
	require.Equal(t, 0.5, resp.Confidence)
	require.Empty(t, resp.Checklist)
	require.NotNil(t, resp.Actions)
}

// An absent verdict is labeled WARN in the reason, not left blank.
func TestMapAgentOutput_EmptyVerdictLabeledWarn(t *testing.T) {
	resp := MapAgentOutput(RawAgentOutput{}, "id", nil)

	require.Equal(t, "Reka verdict: WARN.", resp.Validator.SeverityAdjustmentReason)
	require.Equal(t, "Plan generated from Senso + Reka. Reka verdict: WARN.", resp.Rationale)
	require.Equal(t, 0.5, resp.Validator.AgreementWithPlan)
}

func TestMapAgentOutput_WarningsBuildReason(t *testing.T) {
	out := RawAgentOutput{
		Validation: Validation{
			RekaVerdict:  "WARN",
			MissingSteps: []string{"Stage supplies"},
			Risks:        []string{"Aftershock risk"},
		},
	}
	resp := MapAgentOutput(out, "id", nil)

	// Risks come before missing steps.
	require.Equal(t, []string{"Aftershock risk", "Stage supplies"}, resp.Validator.CriticalWarnings)
	require.Equal(t, "Aftershock risk. Stage supplies", resp.Validator.SeverityAdjustmentReason)
}

func TestMapAgentOutput_AttachesIncident(t *testing.T) {
	inc := &incident.Incident{ID: "incident-7", Topic: "flood"}
	resp := MapAgentOutput(RawAgentOutput{}, inc.ID, inc)

	require.Equal(t, "incident-7", resp.IncidentID)
	require.Same(t, inc, resp.Incident)
}

func TestActionUnmarshal_NonNumericPriority(t *testing.T) {
	var a Action
	require.NoError(t, json.Unmarshal([]byte(`{"priority": "P1", "action": "Do it", "owner": "Ops", "eta": "now"}`), &a))
	require.Nil(t, a.Priority)
	require.Equal(t, "Do it", a.Action)

	require.NoError(t, json.Unmarshal([]byte(`{"priority": 2, "action": "Next"}`), &a))
	require.NotNil(t, a.Priority)
	require.Equal(t, 2.0, *a.Priority)
}

func TestRawAgentOutput_PlanFieldsFlatten(t *testing.T) {
	out := RawAgentOutput{
		Topic: "flood",
		Plan: Plan{
			Severity: "Low",
			Summary:  "Minor flooding.",
		},
	}
	data, err := json.Marshal(out)
	require.NoError(t, err)

	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &m))
	require.Contains(t, m, "severity")
	require.Contains(t, m, "summary")
	require.NotContains(t, m, "plan")
}
