package llmclient

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

const expandInstructionTemplate = "Generate %d alternative phrasings of the following search query. " +
	"Preserve any proper nouns exactly and prefer synonyms for common words. " +
	"Reply with exactly %d lines, one phrasing per line, and nothing else.\n\nQuery: %s"

var thinkBlockRE = regexp.MustCompile(`(?s)<think>.*?</think>`)

// ExpandQuery implements Provider.ExpandQuery: the raw LLM call behind
// spec.md §4.6.3's expandQuery, before any caching. Callers own the
// deterministic cache lookup; this always makes the request.
func (c *Client) ExpandQuery(ctx context.Context, query, model string, count int) ([]string, error) {
	prompt := fmt.Sprintf(expandInstructionTemplate, count, count, query)

	resp, err := c.Generate(ctx, prompt, GenerateOptions{Model: model, MaxTokens: 256, Temperature: 0.7})
	if err != nil || resp == nil {
		return []string{query}, nil
	}

	variations := parseExpansions(resp.Text, count)
	return append([]string{query}, variations...), nil
}

// parseExpansions strips <think>...</think> blocks, splits on
// newlines, trims each line, and keeps lines of length 3–99, up to
// count of them.
func parseExpansions(text string, count int) []string {
	cleaned := thinkBlockRE.ReplaceAllString(text, "")

	variations := make([]string, 0, count)
	for _, line := range strings.Split(cleaned, "\n") {
		line = strings.TrimSpace(line)
		if len(line) < 3 || len(line) > 99 {
			continue
		}
		variations = append(variations, line)
		if len(variations) >= count {
			break
		}
	}
	return variations
}
