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
	"fmt"
	"strings"
)

// BuildArticlesBlock renders articles as a numbered plain-text block suitable
// for embedding in an extraction prompt:
//
//	[1] Title: ...
//	URL: ...
//	Time: ...
//	Content: ...
func BuildArticlesBlock(articles []Article) string {
	var b strings.Builder
	for i, a := range articles {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "[%d] Title: %s\nURL: %s\nTime: %s\nContent: %s\n",
			i+1, a.Title, a.URL, a.Time, a.Content)
	}
	return b.String()
}
