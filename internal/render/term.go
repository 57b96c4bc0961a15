package render

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// Terminal renders Markdown for a terminal using glamour.
type Terminal struct {
	r *glamour.TermRenderer
}

// NewTerminal builds a terminal renderer. style is "auto" or a glamour
// standard style name (dark, light, notty, ascii, ...). wrap <= 0 disables wrapping.
func NewTerminal(style string, wrap int) (*Terminal, error) {
	styleOpt := glamour.WithStandardStyle(style)
	if style == "" || style == "auto" {
		styleOpt = glamour.WithAutoStyle()
	}
	r, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(wrap))
	if err != nil {
		return nil, fmt.Errorf("creating terminal renderer: %w", err)
	}
	return &Terminal{r: r}, nil
}

// Render converts markdown to styled terminal output.
func (t *Terminal) Render(markdown string) (string, error) {
	if markdown == "" {
		return "", nil
	}
	out, err := t.r.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return out, nil
}
