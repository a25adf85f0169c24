package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
)

func TestApplyThemePreference(t *testing.T) {
	defer lipgloss.SetHasDarkBackground(lipgloss.HasDarkBackground())

	t.Setenv("COLORFGBG", "")
	t.Setenv("FEEDVIEW_TUI_THEME", "light")
	applyThemePreference()
	if got := markdownStyle(); got != "light" {
		t.Fatalf("expected light; got %q", got)
	}

	t.Setenv("FEEDVIEW_TUI_THEME", "dark")
	applyThemePreference()
	if got := markdownStyle(); got != "dark" {
		t.Fatalf("expected dark; got %q", got)
	}

	t.Setenv("FEEDVIEW_TUI_THEME", "")
	t.Setenv("COLORFGBG", "0;15")
	applyThemePreference()
	if got := markdownStyle(); got != "light" {
		t.Fatalf("expected light from COLORFGBG; got %q", got)
	}
}

func TestMarkdownStyleConfig_LinksUseAccent(t *testing.T) {
	for _, name := range []string{"dark", "light"} {
		t.Run(name, func(t *testing.T) {
			got := markdownStyleConfig(name)
			want := colorAccent.Dark
			if name == "light" {
				want = colorAccent.Light
			}
			if strPtrValue(got.Link.Color) != want || strPtrValue(got.LinkText.Color) != want {
				t.Fatalf("link colors: got %q/%q want %q", strPtrValue(got.Link.Color), strPtrValue(got.LinkText.Color), want)
			}
			base := styles.DarkStyleConfig
			if name == "light" {
				base = styles.LightStyleConfig
			}
			assertSameHeading(t, got.H1, base.H1)
		})
	}
}

func assertSameHeading(t *testing.T, got, want ansi.StyleBlock) {
	t.Helper()
	if strPtrValue(got.Color) != strPtrValue(want.Color) {
		t.Fatalf("heading color: got %q want %q", strPtrValue(got.Color), strPtrValue(want.Color))
	}
}

func strPtrValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func TestRenderMarkdownCompact(t *testing.T) {
	if got := renderMarkdownCompact("   ", 40); got != "" {
		t.Fatalf("expected empty output for blank text, got %q", got)
	}
	out := renderMarkdownCompact("hello **world**", 40)
	if !strings.Contains(out, "hello") || !strings.Contains(out, "world") {
		t.Fatalf("unexpected render %q", out)
	}
	if strings.HasPrefix(out, "\n") || strings.HasSuffix(out, "\n") {
		t.Fatalf("compact render should not carry blank edges: %q", out)
	}
}
