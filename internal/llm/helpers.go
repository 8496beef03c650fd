// In file: internal/llm/helpers.go
package llm

import (
	"context"
	"regexp"
	"strings"
	"time"
)

// This file contains stateless utility functions shared by the clients and
// the classifier.

var codeFenceRegex = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.*?)\\s*```")

// extractJSON pulls the JSON object out of a model reply. Models often wrap
// JSON in markdown fences or surround it with prose, even in JSON mode.
func extractJSON(content string) string {
	content = strings.TrimSpace(content)
	if m := codeFenceRegex.FindStringSubmatch(content); len(m) > 1 {
		content = strings.TrimSpace(m[1])
	}
	if strings.HasPrefix(content, "{") {
		return content
	}
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		return content[start : end+1]
	}
	return content
}

// sleepCtx waits for d or until ctx is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// truncateForLog shortens s to at most n runes for log fields.
func truncateForLog(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
