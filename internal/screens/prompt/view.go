package prompt

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"charm.land/lipgloss/v2"
	"github.com/dustin/go-humanize"

	"github.com/piscinadeentropia/mrquizzer/internal/ui/layout"
	"github.com/piscinadeentropia/mrquizzer/internal/ui/theme"
)

const previewChars = 160

func (s *PromptScreen) View(width, height int) string {
	cw := min(width-8, 80)
	var b strings.Builder
	b.WriteString("\n")

	b.WriteString(layout.Centered(s.sourceLine(), width, theme.Body))
	b.WriteString("\n")
	if s.text != "" {
		preview := lipgloss.NewStyle().Width(cw).Foreground(theme.TextDim).Render(previewOf(s.text))
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, preview))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if s.mode != modeBrowse {
		label := "URL: "
		if s.mode == modePDF {
			label = "PDF file: "
		}
		b.WriteString(layout.Centered(label+s.input.View(), width, lipgloss.NewStyle()))
		b.WriteString("\n\n")
	}

	var list strings.Builder
	for i, r := range rows {
		marker := "  "
		style := theme.Unselected
		if i == s.cursor && s.mode == modeBrowse {
			marker = "▸ "
			style = theme.Selected
		}
		list.WriteString(style.Render(fmt.Sprintf("%s%-20s %s", marker, r.label, r.value(s.settings))))
		if i < len(rows)-1 {
			list.WriteString("\n")
		}
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Editor.Width(cw).Render(list.String())))
	b.WriteString("\n")

	switch {
	case s.busy != "":
		b.WriteString(layout.Centered(s.busy, width, lipgloss.NewStyle().Foreground(theme.Accent)))
	case s.flash != "":
		b.WriteString(layout.Centered(s.flash, width, lipgloss.NewStyle().Foreground(theme.Accent)))
	}
	return b.String()
}

func (s *PromptScreen) sourceLine() string {
	if s.text == "" {
		return "No source yet. Paste text, or press u for a web page or f for a PDF."
	}
	origin := s.origin
	if origin == "" {
		origin = "text"
	}
	return fmt.Sprintf("Source: %s characters from %s", humanize.Comma(int64(utf8.RuneCountInString(s.text))), origin)
}

func previewOf(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= previewChars {
		return text
	}
	return string([]rune(text)[:previewChars]) + "…"
}
