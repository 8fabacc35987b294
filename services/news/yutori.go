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
	"time"

	"github.com/AleutianAI/AleutianSentinel/services/incident"
)

// YutoriClient produces scouting results for a topic.
//
// The real scout endpoint is not wired yet; the client returns simulated
// results so the aggregator can demonstrate multi-source input.
//
// TODO(jinterlante): swap in the real Yutori scout endpoint once the API
// contract is published.
type YutoriClient struct{}

// NewYutoriClient creates a YutoriClient.
func NewYutoriClient() *YutoriClient {
	return &YutoriClient{}
}

// Fetch returns maxResults simulated scout articles for the topic.
func (y *YutoriClient) Fetch(_ context.Context, topic string, maxResults int) ([]incident.Article, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	articles := make([]incident.Article, 0, maxResults)
	for i := 0; i < maxResults; i++ {
		articles = append(articles, incident.Article{
			Title:   fmt.Sprintf("[SIM] Yutori scout #%d for %s", i+1, topic),
			Content: fmt.Sprintf("Simulated Yutori scouting content for %s.", topic),
			URL:     "https://example.com/yutori",
			Time:    now,
			Source:  "yutori",
		})
	}
	return articles, nil
}
