// Package output prints assistant replies and diagnostics for chat.
// Replies go to stdout so they can be piped; styling is applied only when the
// terminal supports it.
package output

import (
	"fmt"
	"strings"
)

// Mode selects how replies are rendered.
type Mode int

const (
	// ModeAuto renders markdown when the terminal has a colour profile, plain text otherwise
	ModeAuto Mode = iota

	// ModePlain writes the reply text as-is, minus terminal escape sequences
	ModePlain

	// ModeMarkdown always renders the reply as markdown via glamour
	ModeMarkdown
)

// String returns the flag spelling of the mode.
func (m Mode) String() string {
	switch m {
	case ModePlain:
		return "plain"
	case ModeMarkdown:
		return "markdown"
	default:
		return "auto"
	}
}

// ParseMode converts a --render value to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ModeAuto, nil
	case "plain", "raw":
		return ModePlain, nil
	case "markdown", "md":
		return ModeMarkdown, nil
	default:
		return ModeAuto, fmt.Errorf("unknown render mode %q (expected auto, plain or markdown)", s)
	}
}
