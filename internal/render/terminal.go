package render

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// Terminal renders markdown as ANSI-styled text using glamour.
// An empty style falls back to "dracula"; width <= 0 disables wrapping.
func Terminal(markdown, style string, width int) (string, error) {
	if style == "" {
		style = "dracula"
	}
	opts := []glamour.TermRendererOption{glamour.WithStandardStyle(style)}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("failed to create renderer: %w", err)
	}
	out, err := r.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}
