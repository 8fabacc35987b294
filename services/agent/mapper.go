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
	"fmt"
	"strings"
	"time"

	"github.com/AleutianAI/AleutianSentinel/services/incident"
)

// Defaults applied while normalizing raw pipeline output.
const (
	defaultTopic       = "earthquake"
	defaultSeverity    = "Medium"
	defaultConfidence  = 0.5
	defaultOwner       = "—"
	defaultActionTitle = "Unspecified action"
)

// verdictAgreement maps the validator's verdict onto the numeric agreement
// scale. Unknown verdicts land on the WARN value.
var verdictAgreement = map[string]float64{
	VerdictOK:   1,
	VerdictWarn: 0.5,
	VerdictFail: 0,
}

// MapAgentOutput normalizes raw pipeline output into the published
// DecisionResponse shape.
//
// Description:
//
//	Every field gets a deterministic default so the response is always
//	structurally complete: missing action titles, owners, and priorities are
//	substituted, the validator verdict becomes a numeric agreement score,
//	and risks plus missing steps merge into the warning list. The incident
//	is attached when present, and the checklist only when non-empty.
//
// Inputs:
//   - out: The merged pipeline output to normalize.
//   - incidentID: The canonical incident ID. When empty, a timestamped
//     placeholder ID is minted.
//   - inc: The extracted incident, attached to the response verbatim. May be
//     nil.
func MapAgentOutput(out RawAgentOutput, incidentID string, inc *incident.Incident) *DecisionResponse {
	actions := make([]DecisionAction, 0, len(out.Actions))
	for _, a := range out.Actions {
		title := a.Action
		if title == "" {
			title = defaultActionTitle
		}
		description := a.ETA
		if description == "" {
			description = a.Action
		}
		owner := a.Owner
		if owner == "" {
			owner = defaultOwner
		}
		priority := 1.0
		if a.Priority != nil {
			priority = *a.Priority
		}
		actions = append(actions, DecisionAction{
			Title:       title,
			Description: description,
			Owner:       owner,
			Priority:    priority,
		})
	}

	verdict := strings.ToUpper(out.Validation.RekaVerdict)
	if verdict == "" {
		verdict = VerdictWarn
	}
	agreement, ok := verdictAgreement[verdict]
	if !ok {
		agreement = verdictAgreement[VerdictWarn]
	}

	warnings := make([]string, 0, len(out.Validation.Risks)+len(out.Validation.MissingSteps))
	warnings = append(warnings, out.Validation.Risks...)
	warnings = append(warnings, out.Validation.MissingSteps...)

	reason := strings.Join(warnings, ". ")
	if reason == "" {
		reason = fmt.Sprintf("Reka verdict: %s.", verdict)
	}

	if incidentID == "" {
		incidentID = fmt.Sprintf("event-%d", time.Now().UnixMilli())
	}
	topic := out.Topic
	if topic == "" {
		topic = defaultTopic
	}
	severity := out.Severity
	if severity == "" {
		severity = defaultSeverity
	}
	confidence := defaultConfidence
	if out.Confidence != nil {
		confidence = *out.Confidence
	}

	resp := &DecisionResponse{
		IncidentID: incidentID,
		Topic:      topic,
		Severity:   severity,
		Confidence: confidence,
		Summary:    out.Summary,
		Rationale:  "Plan generated from Senso + Reka. " + reason,
		Actions:    actions,
		Validator: DecisionValidator{
			AgreementWithPlan:        agreement,
			SeverityAdjustmentReason: reason,
			CriticalWarnings:         warnings,
		},
	}
	if inc != nil {
		resp.Incident = inc
	}
	if len(out.Checklist) > 0 {
		resp.Checklist = out.Checklist
	}
	return resp
}
