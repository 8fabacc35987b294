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
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/AleutianAI/AleutianSentinel/services/incident"
	"golang.org/x/sync/errgroup"
)

const yutoriResults = 3

// Aggregator fans out to the configured news providers and merges their
// results into one normalized, de-duplicated article list.
//
// Thread Safety: Aggregator is safe for concurrent use.
type Aggregator struct {
	tavily *TavilyClient
	yutori *YutoriClient
	logger *slog.Logger
}

// NewAggregator creates an Aggregator over the given providers.
func NewAggregator(tavily *TavilyClient, yutori *YutoriClient) *Aggregator {
	return &Aggregator{
		tavily: tavily,
		yutori: yutori,
		logger: slog.Default(),
	}
}

// Fetch retrieves articles for the topic from every provider.
//
// Description:
//
//	Providers are queried concurrently; a provider failure is logged and its
//	results dropped. Tavily results come first so the extraction anchor
//	article stays stable across runs. Duplicates are removed by URL (title
//	when the URL is empty). When every provider fails or returns nothing, a
//	single simulated article is returned so the pipeline still works.
func (agg *Aggregator) Fetch(ctx context.Context, topic string, maxResults int) []incident.Article {
	var tavilyArticles, yutoriArticles []incident.Article

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		articles, err := agg.tavily.Search(gctx, topic, maxResults)
		if err != nil {
			agg.logger.Error("Tavily fetch failed",
				slog.String("topic", topic),
				slog.String("error", err.Error()))
			return nil
		}
		tavilyArticles = articles
		return nil
	})
	g.Go(func() error {
		articles, err := agg.yutori.Fetch(gctx, topic, yutoriResults)
		if err != nil {
			agg.logger.Error("Yutori fetch failed",
				slog.String("topic", topic),
				slog.String("error", err.Error()))
			return nil
		}
		yutoriArticles = articles
		return nil
	})
	// Workers never return errors; Wait only synchronizes the fan-out.
	_ = g.Wait()

	merged := dedupeByURL(append(tavilyArticles, yutoriArticles...))
	if len(merged) == 0 {
		return []incident.Article{simulatedArticle(topic)}
	}
	return merged
}

// dedupeByURL keeps the first article seen for each URL, falling back to the
// title as the key when the URL is empty. Articles with neither are dropped.
func dedupeByURL(articles []incident.Article) []incident.Article {
	seen := make(map[string]struct{}, len(articles))
	out := make([]incident.Article, 0, len(articles))
	for _, a := range articles {
		key := strings.TrimSpace(a.URL)
		if key == "" {
			key = strings.TrimSpace(a.Title)
		}
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, a)
	}
	return out
}

func simulatedArticle(topic string) incident.Article {
	return incident.Article{
		Title:   fmt.Sprintf("[SIM] No real news for %s", topic),
		Content: fmt.Sprintf("Simulated article because external APIs were not available for topic: %s.", topic),
		URL:     "https://example.com/simulated-news",
		Time:    time.Now().UTC().Format(time.RFC3339),
		Source:  "simulated",
	}
}
