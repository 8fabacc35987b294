// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package graph persists finished incidents into Weaviate as a small typed
// graph: an Event object cross-referenced to Location, Org, and Source
// objects. Object IDs are derived deterministically from their natural keys
// so repeated writes upsert rather than duplicate.
package graph

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/AleutianAI/AleutianSentinel/services/incident"
	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/auth"
	"github.com/weaviate/weaviate/entities/models"
)

const (
	classEvent    = "Event"
	classLocation = "Location"
	classOrg      = "Org"
	classSource   = "Source"
)

// Config describes the Weaviate connection. An empty Host disables the sink.
type Config struct {
	Host   string `yaml:"host"`
	Scheme string `yaml:"scheme"`
	APIKey string `yaml:"api_key"`
}

// Sink writes incidents into Weaviate. It implements incident.GraphSink.
//
// Thread Safety: Sink is safe for concurrent use.
type Sink struct {
	client *weaviate.Client
	logger *slog.Logger
}

// NewSinkWithConfig creates a Sink from explicit configuration.
func NewSinkWithConfig(cfg Config) (*Sink, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("graph: host is missing")
	}
	if cfg.Scheme == "" {
		cfg.Scheme = "http"
	}
	wcfg := weaviate.Config{
		Host:   cfg.Host,
		Scheme: cfg.Scheme,
	}
	if cfg.APIKey != "" {
		wcfg.AuthConfig = auth.ApiKey{Value: cfg.APIKey}
	}
	client, err := weaviate.NewClient(wcfg)
	if err != nil {
		return nil, fmt.Errorf("graph: creating weaviate client: %w", err)
	}
	return &Sink{client: client, logger: slog.Default()}, nil
}

// SaveIncident upserts the incident's Event node plus its Location, Org, and
// Source nodes, linked by locatedIn/mentions/reportedBy references.
//
// Failures here are expected to be non-fatal for callers; the extractor
// invokes this fire-and-forget.
func (s *Sink) SaveIncident(ctx context.Context, inc *incident.Incident) error {
	objects := BuildObjects(inc)

	result, err := s.client.Batch().ObjectsBatcher().WithObjects(objects...).Do(ctx)
	if err != nil {
		return fmt.Errorf("graph: batch write failed: %w", err)
	}

	s.logger.Debug("Incident written to graph",
		slog.String("incident_id", inc.ID),
		slog.Int("objects", len(result)))
	return nil
}

// BuildObjects maps an incident onto its Weaviate object set. Exported so
// the mapping stays testable without a live Weaviate.
func BuildObjects(inc *incident.Incident) []*models.Object {
	eventID := deterministicID(classEvent, inc.ID)
	locationID := deterministicID(classLocation, LocationKey(inc.Location))

	objects := make([]*models.Object, 0, 2+len(inc.Orgs)+len(inc.RawSources))

	objects = append(objects, &models.Object{
		Class: classLocation,
		ID:    locationID,
		Properties: map[string]interface{}{
			"name": LocationKey(inc.Location),
		},
	})

	eventProps := map[string]interface{}{
		"incidentId":   inc.ID,
		"type":         inc.Event,
		"summary":      inc.Summary,
		"severityCues": inc.SeverityCues,
		"severity":     inc.Severity,
		"confidence":   inc.Confidence,
		"topic":        inc.Topic,
		"createdAt":    time.Now().UTC().Format(time.RFC3339),
		"locatedIn":    []map[string]interface{}{beacon(classLocation, locationID)},
	}
	if inc.TimeWindow != nil {
		eventProps["timeWindow"] = *inc.TimeWindow
	}

	mentions := make([]map[string]interface{}, 0, len(inc.Orgs))
	for _, org := range inc.Orgs {
		orgID := deterministicID(classOrg, org)
		objects = append(objects, &models.Object{
			Class:      classOrg,
			ID:         orgID,
			Properties: map[string]interface{}{"name": org},
		})
		mentions = append(mentions, beacon(classOrg, orgID))
	}
	if len(mentions) > 0 {
		eventProps["mentions"] = mentions
	}

	reportedBy := make([]map[string]interface{}, 0, len(inc.RawSources))
	for _, src := range inc.RawSources {
		key := src.URL
		if key == "" {
			key = src.Title
		}
		srcID := deterministicID(classSource, key)
		props := map[string]interface{}{
			"title": src.Title,
			"url":   src.URL,
		}
		if src.ReportedAt != nil {
			props["reportedAt"] = *src.ReportedAt
		}
		objects = append(objects, &models.Object{
			Class:      classSource,
			ID:         srcID,
			Properties: props,
		})
		reportedBy = append(reportedBy, beacon(classSource, srcID))
	}
	if len(reportedBy) > 0 {
		eventProps["reportedBy"] = reportedBy
	}

	objects = append(objects, &models.Object{
		Class:      classEvent,
		ID:         eventID,
		Properties: eventProps,
	})
	return objects
}

// LocationKey normalizes a location to the string key its graph node is
// keyed by: the place name when present, otherwise "lat,long".
func LocationKey(loc incident.Location) string {
	if loc.Name != nil {
		return *loc.Name
	}
	if loc.Lat != nil && loc.Long != nil {
		return fmt.Sprintf("%g,%g", *loc.Lat, *loc.Long)
	}
	return "Unknown"
}

// deterministicID derives a stable UUID from a class and natural key so that
// repeated writes of the same entity upsert in place.
func deterministicID(class, key string) strfmt.UUID {
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte("aleutian-sentinel/"+class+"/"+key))
	return strfmt.UUID(id.String())
}

func beacon(class string, id strfmt.UUID) map[string]interface{} {
	return map[string]interface{}{
		"beacon": fmt.Sprintf("weaviate://localhost/%s/%s", class, id),
	}
}
