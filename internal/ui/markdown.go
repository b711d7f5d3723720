package ui

import "github.com/charmbracelet/glamour"

// RenderMarkdown renders markdown content for terminal display,
// grounded on the teacher's internal/cli/search.go renderMarkdown
// helper. Callers fall back to the raw string on error.
func RenderMarkdown(content string) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", err
	}
	return renderer.Render(content)
}
