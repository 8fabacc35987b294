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
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// =============================================================================
// Location Parsing
// =============================================================================

var (
	// "35.6762, 139.6503" with nothing else around it.
	coordPairRe = regexp.MustCompile(`^(-?\d+\.?\d*)\s*,\s*(-?\d+\.?\d*)$`)

	// "lat 35.67 long 139.65" or "latitude 35.67 longitude 139.65".
	labeledCoordRe = regexp.MustCompile(`(?i)lat(?:itude)?\s*(-?\d+\.?\d*)\D+lon(?:g(?:itude)?)?\s*(-?\d+\.?\d*)`)

	// "35.6762, 139.6503" or "35.6762° N, 139.6503° E" embedded in text.
	bareCoordRe = regexp.MustCompile(`(-?\d+\.?\d*)\s*[°,]?\s*(?:N|S|E|W)?\s*,\s*(-?\d+\.?\d*)\s*[°,]?\s*(?:N|S|E|W)?`)
)

// locationGazetteer maps lowercase substrings to canonical place labels.
// Scanned in order; the first match wins.
var locationGazetteer = []struct {
	key   string
	label string
}{
	{"japan", "Japan"},
	{"california", "California, USA"},
	{"turkey", "Turkey"},
	{"türkiye", "Turkey"},
	{"india", "India"},
	{"indonesia", "Indonesia"},
	{"philippines", "Philippines"},
	{"chile", "Chile"},
	{"mexico", "Mexico"},
	{"new zealand", "New Zealand"},
}

// NormalizeLocationString parses a free-form location string into a Location.
//
// Description:
//
//	A string that is exactly a "<number>,<number>" pair (optionally signed,
//	decimal) becomes a coordinate-only Location. Any other non-empty string
//	becomes a name-only Location after trimming. Empty or whitespace-only
//	input yields the zero Location. Every news source can therefore send a
//	place name, coordinates, or both.
func NormalizeLocationString(s string) Location {
	s = strings.TrimSpace(s)
	if s == "" {
		return Location{}
	}
	if m := coordPairRe.FindStringSubmatch(s); m != nil {
		lat, errLat := strconv.ParseFloat(m[1], 64)
		long, errLong := strconv.ParseFloat(m[2], 64)
		if errLat == nil && errLong == nil {
			return Location{Lat: &lat, Long: &long}
		}
	}
	return Location{Name: &s}
}

// SanitizeLocation applies field-level validation to a Location that came
// from an external payload: the name is trimmed (empty becomes nil) and NaN
// or infinite coordinates are rejected to nil.
func SanitizeLocation(loc Location) Location {
	out := Location{}
	if loc.Name != nil {
		if name := strings.TrimSpace(*loc.Name); name != "" {
			out.Name = &name
		}
	}
	if loc.Lat != nil && !math.IsNaN(*loc.Lat) && !math.IsInf(*loc.Lat, 0) {
		lat := *loc.Lat
		out.Lat = &lat
	}
	if loc.Long != nil && !math.IsNaN(*loc.Long) && !math.IsInf(*loc.Long, 0) {
		long := *loc.Long
		out.Long = &long
	}
	return out
}

// DecodeLocation interprets a raw JSON location value that may be either a
// string ("Japan", "35.67,139.65") or a partial object ({"name":..., "lat":...,
// "long":...}). Unrecognized shapes decode to the zero Location.
func DecodeLocation(raw json.RawMessage) Location {
	if len(raw) == 0 {
		return Location{}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return NormalizeLocationString(s)
	}
	var obj Location
	if err := json.Unmarshal(raw, &obj); err == nil {
		return SanitizeLocation(obj)
	}
	return Location{}
}

// FinalizeLocation enforces the incident location invariant: Lat and Long are
// always paired, and a location with neither a name nor a full coordinate
// pair defaults to the name "Unknown".
func FinalizeLocation(loc Location) Location {
	if loc.Lat == nil || loc.Long == nil {
		loc.Lat = nil
		loc.Long = nil
	}
	if loc.Name == nil && loc.Lat == nil {
		unknown := "Unknown"
		loc.Name = &unknown
	}
	return loc
}

// ExtractLocationFromText scans combined article text for a known place name
// and/or a coordinate pair.
//
// Description:
//
//	Place names come from a fixed gazetteer of case-insensitive substrings,
//	first match wins in gazetteer order. Coordinates are recognized in two
//	forms: a labeled "lat <n> long <n>" pattern and a bare "<n>, <n>" pair
//	optionally suffixed with compass letters or degree marks. The labeled
//	form takes precedence when both are present.
//
// Outputs:
//   - *Location: nil when neither a name nor a full coordinate pair is found.
func ExtractLocationFromText(text string) *Location {
	if text == "" {
		return nil
	}
	lower := strings.ToLower(text)

	var name *string
	for _, entry := range locationGazetteer {
		if strings.Contains(lower, entry.key) {
			label := entry.label
			name = &label
			break
		}
	}

	var lat, long *float64
	if m := labeledCoordRe.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			lat = &v
		}
		if v, err := strconv.ParseFloat(m[2], 64); err == nil {
			long = &v
		}
	}
	if lat == nil || long == nil {
		if m := bareCoordRe.FindStringSubmatch(text); m != nil {
			a, errA := strconv.ParseFloat(m[1], 64)
			b, errB := strconv.ParseFloat(m[2], 64)
			if errA == nil && errB == nil {
				lat = &a
				long = &b
			}
		}
	}

	if name != nil || (lat != nil && long != nil) {
		loc := Location{Name: name}
		if lat != nil && long != nil {
			loc.Lat = lat
			loc.Long = long
		}
		return &loc
	}
	return nil
}
