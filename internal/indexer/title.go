package indexer

import (
	"path/filepath"
	"strings"
)

// extractTitle implements the title-extraction rule: the first Markdown
// heading at level 1 or 2 in body; if that heading's text is literally
// "Notes" or "📝 Notes", the next level-2 heading is taken instead.
// Falls back to the file's stem (basename without extension) when no
// heading is found.
func extractTitle(body, relPath string) string {
	lines := strings.Split(body, "\n")

	first := -1
	firstText := ""
	for i, line := range lines {
		text, ok := headingText(line)
		if !ok {
			continue
		}
		first = i
		firstText = text
		break
	}

	if first == -1 {
		return stem(relPath)
	}

	if !isSkippedHeading(firstText) {
		return firstText
	}

	for i := first + 1; i < len(lines); i++ {
		if text, ok := level2HeadingText(lines[i]); ok {
			return text
		}
	}

	return stem(relPath)
}

func isSkippedHeading(text string) bool {
	return text == "Notes" || text == "📝 Notes"
}

// headingText reports whether line is a level-1 or level-2 ATX heading
// and returns its trimmed text.
func headingText(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	for _, prefix := range []string{"# ", "## "} {
		if strings.HasPrefix(trimmed, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(trimmed, prefix)), true
		}
	}
	return "", false
}

func level2HeadingText(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "## ") {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(trimmed, "## ")), true
}

func stem(relPath string) string {
	base := filepath.Base(relPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
