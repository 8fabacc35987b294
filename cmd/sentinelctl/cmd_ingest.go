// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/AleutianAI/AleutianSentinel/services/incident"
	"github.com/AleutianAI/AleutianSentinel/services/incident/graph"
	"github.com/AleutianAI/AleutianSentinel/services/news"
	"github.com/AleutianAI/AleutianSentinel/services/sentinel"
	"github.com/spf13/cobra"
)

// ingestMaxResults holds the --max-results flag value.
var ingestMaxResults int

func newIngestCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <topic>",
		Short: "Fetch news, extract an incident, and write it to the graph",
		Long: `ingest runs retrieval and extraction in-process using the same
environment variables as the server (TAVILY_API_KEY, FASTINO_API_URL,
WEAVIATE_HOST, ...). Without a Weaviate host the incident is printed but
not persisted.`,
		Args: cobra.ExactArgs(1),
		Run:  runIngestCommand,
	}
	cmd.Flags().IntVar(&ingestMaxResults, "max-results", 5, "Maximum articles to fetch per provider")
	return cmd
}

func runIngestCommand(_ *cobra.Command, args []string) {
	topic := args[0]
	cfg := sentinel.LoadServiceConfigFromEnv()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	aggregator := news.NewAggregator(
		news.NewTavilyClientWithConfig(cfg.Tavily),
		news.NewYutoriClient(),
	)
	articles := aggregator.Fetch(ctx, topic, ingestMaxResults)
	fmt.Printf("Fetched %d article(s) for '%s'\n", len(articles), topic)

	var sink incident.GraphSink
	if cfg.Graph.Host != "" {
		s, err := graph.NewSinkWithConfig(cfg.Graph)
		if err != nil {
			log.Fatalf("Weaviate sink: %v", err)
		}
		sink = s
	} else {
		fmt.Println("WEAVIATE_HOST not set; incident will not be persisted")
	}

	extractor := incident.NewExtractor(incident.NewFastinoClientWithConfig(cfg.Extraction), nil)
	inc := extractor.Extract(ctx, articles, topic)

	fmt.Println("---")
	fmt.Printf("Incident:   %s\n", inc.ID)
	fmt.Printf("Event:      %s\n", inc.Event)
	fmt.Printf("Location:   %s\n", graph.LocationKey(inc.Location))
	fmt.Printf("Severity:   %s (confidence %.2f)\n", inc.Severity, inc.Confidence)
	fmt.Printf("Cues:       %s\n", strings.Join(inc.SeverityCues, ", "))
	fmt.Printf("Orgs:       %s\n", strings.Join(inc.Orgs, ", "))
	fmt.Printf("Summary:    %s\n", inc.Summary)
	fmt.Printf("Sources:    %d\n", len(inc.RawSources))

	// Write synchronously here so the command can report the outcome, unlike
	// the server's fire-and-forget path.
	if sink != nil {
		if err := sink.SaveIncident(ctx, inc); err != nil {
			log.Fatalf("Graph write failed: %v", err)
		}
		fmt.Println("Graph:      written")
	}
}
