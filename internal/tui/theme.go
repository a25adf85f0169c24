package tui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// The TUI must stay readable on light and dark terminals, so colors are adaptive
// and "faint" is only applied on dark backgrounds.

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

var (
	colorMuted     = ac("240", "243")
	colorSurfaceFg = ac("235", "252")
	colorControlBg = ac("252", "235")
	colorAccent    = ac("27", "62")
	colorAccentFg  = ac("255", "235")
	colorSelected  = ac("#e9e9e9", "#262626")
	colorReplyRule = ac("250", "240")
	colorError     = ac("160", "203")
	colorPremium   = ac("130", "214")
)

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
}

var (
	styleTitle      = lipgloss.NewStyle().Bold(true).Foreground(colorSurfaceFg)
	styleAuthor     = lipgloss.NewStyle().Bold(true)
	styleSelected   = lipgloss.NewStyle().Background(colorSelected)
	styleAvatar     = lipgloss.NewStyle().Bold(true).Foreground(colorAccentFg).Background(colorAccent).Padding(0, 1)
	styleReplyLink  = lipgloss.NewStyle().Foreground(colorAccent)
	styleError      = lipgloss.NewStyle().Foreground(colorError)
	stylePremium    = lipgloss.NewStyle().Foreground(colorPremium).Bold(true)
	styleTabActive  = lipgloss.NewStyle().Bold(true).Underline(true).Foreground(colorAccent).Padding(0, 1)
	styleTabPassive = lipgloss.NewStyle().Foreground(colorMuted).Padding(0, 1)
	styleReplies    = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(colorReplyRule).
			PaddingLeft(2).
			MarginLeft(4)
	styleComposer = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorControlBg).
			Padding(0, 1)
	styleComposerFocused = styleComposer.BorderForeground(colorAccent)
)

// applyColorProfilePreference honors NO_COLOR and otherwise follows the terminal.
func applyColorProfilePreference() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	lipgloss.SetColorProfile(termenv.ColorProfile())
}

// applyThemePreference lets FEEDVIEW_TUI_THEME=light|dark override background
// detection, falling back to the COLORFGBG heuristic ("fg;bg").
func applyThemePreference() {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("FEEDVIEW_TUI_THEME"))) {
	case "light":
		lipgloss.SetHasDarkBackground(false)
		return
	case "dark":
		lipgloss.SetHasDarkBackground(true)
		return
	}
	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil {
			lipgloss.SetHasDarkBackground(bg < 7)
		}
	}
}
