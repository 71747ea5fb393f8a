package render

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

const (
	// DefaultTerminalWidth is the word wrap width for terminal output.
	DefaultTerminalWidth = 100
	// DefaultTerminalStyle is the glamour style for terminal output.
	DefaultTerminalStyle = "dark"
)

// Terminal renders markdown for display in a terminal.
type Terminal struct {
	renderer *glamour.TermRenderer
}

// NewTerminal creates a terminal renderer. An empty style selects DefaultTerminalStyle.
func NewTerminal(width int, style string) (*Terminal, error) {
	if width <= 0 {
		width = DefaultTerminalWidth
	}
	if style == "" {
		style = DefaultTerminalStyle
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, fmt.Errorf("create terminal renderer: %w", err)
	}
	return &Terminal{renderer: renderer}, nil
}

// Render returns source formatted for the terminal.
func (t *Terminal) Render(source string) (string, error) {
	out, err := t.renderer.Render(source)
	if err != nil {
		return "", fmt.Errorf("render for terminal: %w", err)
	}
	return out, nil
}
