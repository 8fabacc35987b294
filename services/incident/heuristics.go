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
	"regexp"
	"strings"
)

// =============================================================================
// Severity Cue Detection
// =============================================================================

const (
	maxSeverityCues = 8
	maxOrgs         = 6
)

// magnitudeRe matches "7.1 magnitude" and "magnitude 7.1" mentions.
var magnitudeRe = regexp.MustCompile(`(?i)\d+\.?\d*\s*magnitude|magnitude\s*\d+\.?\d*`)

// accordingToRe captures the attributed phrase after "according to".
var accordingToRe = regexp.MustCompile(`(?i)according to\s+([^,.]+)`)

// knownOrgs is the fixed list of recognized organization names, matched as
// case-insensitive substrings and title-cased on output.
var knownOrgs = []string{
	"usgs", "noaa", "bgs", "jma", "emsc", "gfz", "reuters", "ap", "bbc", "cnn",
	"red cross", "fema", "ndma", "national weather service", "british geological survey",
}

// ExtractSeverityCues returns short phrases from the text that indicate event
// magnitude or urgency.
//
// Description:
//
//	Checks a fixed cue vocabulary in a fixed order: magnitude mentions (at
//	most two regex matches kept), "tsunami warning", "tsunami", injury or
//	casualty terms, damage terms, emergency/evacuation terms, and aftershock
//	mentions. Matching is case-insensitive. The result is de-duplicated,
//	order-preserving, and capped at eight entries; text with no cues yields
//	an empty list.
//
// This is a pure function: same text in, same list out.
func ExtractSeverityCues(text string) []string {
	if text == "" {
		return []string{}
	}
	lower := strings.ToLower(text)
	cues := make([]string, 0, maxSeverityCues)

	matches := magnitudeRe.FindAllString(text, -1)
	if len(matches) > 2 {
		matches = matches[:2]
	}
	for _, m := range matches {
		cues = append(cues, strings.TrimSpace(m))
	}
	if strings.Contains(lower, "tsunami warning") {
		cues = append(cues, "tsunami warning")
	}
	if strings.Contains(lower, "tsunami") {
		cues = append(cues, "tsunami")
	}
	if strings.Contains(lower, "casualt") || strings.Contains(lower, "injuries") {
		cues = append(cues, "injuries reported")
	}
	if strings.Contains(lower, "damage") || strings.Contains(lower, "destruction") {
		cues = append(cues, "damage reported")
	}
	if strings.Contains(lower, "emergency") || strings.Contains(lower, "evacuation") {
		cues = append(cues, "emergency/evacuation")
	}
	if strings.Contains(lower, "aftershock") {
		cues = append(cues, "aftershocks")
	}

	return dedupeCapped(cues, maxSeverityCues, false)
}

// ExtractOrgs returns organization names mentioned in the text.
//
// Description:
//
//	Matches the fixed knownOrgs list as case-insensitive substrings
//	(title-cased on output), then captures up to two "according to <phrase>"
//	attributions with the phrase truncated to 50 characters. The result is
//	de-duplicated case-insensitively and capped at six entries.
//
// This is a pure function: same text in, same list out.
func ExtractOrgs(text string) []string {
	if text == "" {
		return []string{}
	}
	lower := strings.ToLower(text)
	orgs := make([]string, 0, maxOrgs)

	for _, name := range knownOrgs {
		if strings.Contains(lower, name) {
			orgs = append(orgs, titleCaseWords(name))
		}
	}

	attributions := accordingToRe.FindAllStringSubmatch(text, -1)
	if len(attributions) > 2 {
		attributions = attributions[:2]
	}
	for _, m := range attributions {
		name := strings.TrimSpace(m[1])
		if len(name) > 50 {
			name = name[:50]
		}
		if name != "" {
			orgs = append(orgs, name)
		}
	}

	return dedupeCapped(orgs, maxOrgs, true)
}

// dedupeCapped removes duplicates while preserving first-seen order, then
// caps the result at limit. caseInsensitive folds keys before comparison.
func dedupeCapped(items []string, limit int, caseInsensitive bool) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		key := item
		if caseInsensitive {
			key = strings.ToLower(item)
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
		if len(out) == limit {
			break
		}
	}
	return out
}

// titleCaseWords uppercases the first letter of each space-separated word,
// so "red cross" becomes "Red Cross" and "usgs" becomes "Usgs".
func titleCaseWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
