package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
// - Default (white/black): Primary text
// - Accent (soft purple #A78BFA): Highlights, paths, interactive elements
// - Muted (gray): Secondary info, line numbers
// - No colored success/error/warning - use unicode symbols only

const defaultAccentColor = "#A78BFA"

var (
	// Accent style for file paths, citations, highlights
	Accent = lipgloss.NewStyle().Foreground(lipgloss.Color(defaultAccentColor))

	// Muted style for secondary info, hints, line numbers
	Muted = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))

	// Bold style for emphasis
	Bold = lipgloss.NewStyle().Bold(true)

	// AccentBold combines accent color with bold
	AccentBold = lipgloss.NewStyle().Foreground(lipgloss.Color(defaultAccentColor)).Bold(true)

	accentColor = defaultAccentColor

	markdownCodeTheme string
)

// ConfigureTheme applies the configured accent color to the shared
// styles. Values "none", "off", and "default" disable the accent.
func ConfigureTheme(accent string) {
	color, ok := normalizeAccentColor(accent)
	if !ok {
		accentColor = ""
		Accent = lipgloss.NewStyle()
		AccentBold = lipgloss.NewStyle().Bold(true)
		return
	}
	accentColor = color
	Accent = lipgloss.NewStyle().Foreground(lipgloss.Color(color))
	AccentBold = lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true)
}

// ConfigureMarkdownCodeTheme sets the Chroma theme used for rendered
// markdown code blocks.
func ConfigureMarkdownCodeTheme(theme string) {
	markdownCodeTheme = strings.ToLower(strings.TrimSpace(theme))
}

// AccentColor returns the active accent color, if any.
func AccentColor() (string, bool) {
	if accentColor == "" {
		return "", false
	}
	return accentColor, true
}

// normalizeAccentColor validates an accent value: an ANSI 256 code or
// a hex color ("#abc" expands to "#aabbcc").
func normalizeAccentColor(value string) (string, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	switch v {
	case "", "none", "off", "default":
		return "", false
	}

	if n, err := strconv.Atoi(v); err == nil {
		if n < 0 || n > 255 {
			return "", false
		}
		return strconv.Itoa(n), true
	}

	if strings.HasPrefix(v, "#") {
		hex := v[1:]
		valid := func(s string) bool {
			for _, r := range s {
				if !strings.ContainsRune("0123456789abcdef", r) {
					return false
				}
			}
			return len(s) > 0
		}
		switch len(hex) {
		case 3:
			if !valid(hex) {
				return "", false
			}
			return fmt.Sprintf("#%c%c%c%c%c%c", hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]), true
		case 6:
			if !valid(hex) {
				return "", false
			}
			return v, true
		}
	}

	return "", false
}
