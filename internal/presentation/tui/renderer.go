package tui

import (
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a markdown renderer tuned to the terminal background.
// Falls back to passing text through unchanged when the terminal cannot be
// profiled.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
	)
	if err != nil || r == nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}
	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}
