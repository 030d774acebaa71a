// Package layout draws the application frame around the active screen.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/piscinadeentropia/mrquizzer/internal/ui/theme"
)

const (
	MinWidth  = 60
	MinHeight = 20

	compactWidth  = 100
	compactHeight = 26
)

// KeyHint is one key binding shown in the footer.
type KeyHint struct {
	Key         string
	Description string
}

// Compact reports whether a content area of width x height should use the
// condensed screen layouts.
func Compact(width, height int) bool {
	return width < compactWidth || height < compactHeight
}

// Frame is the header and footer drawn around a screen.
type Frame struct {
	Title  string
	Status string
	Hints  []KeyHint
}

// Render draws the frame in width x height and fills the middle with body,
// which receives the size left for it. Terminals below MinWidth x MinHeight
// get a resize notice instead.
func (f Frame) Render(width, height int, body func(w, h int) string) string {
	if width < MinWidth || height < MinHeight {
		return tooSmall(width, height)
	}

	header := f.header(width)
	footer := f.footer(width)
	h := max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	content := lipgloss.NewStyle().
		Width(width).
		Height(h).
		MaxHeight(h).
		Render(body(width, h))
	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func tooSmall(width, height int) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.Text).
		Render(fmt.Sprintf("Terminal too small (%d x %d).\n\nMrQuizzer needs at least %d x %d.",
			width, height, MinWidth, MinHeight))
}

func bar(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Width(width).
		Background(theme.BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1)
}

// header puts the app name on the left, the title in the middle and the
// status on the right.
func (f Frame) header(width int) string {
	left := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("MrQuizzer")
	center := lipgloss.NewStyle().Foreground(theme.Text).Render(f.Title)
	right := lipgloss.NewStyle().Foreground(theme.Accent).Render(f.Status)

	// border and padding take four cells
	inner := max(width-4, 0)
	lw, cw, rw := lipgloss.Width(left), lipgloss.Width(center), lipgloss.Width(right)
	gapL := max((inner-cw)/2-lw, 1)
	gapR := max(inner-lw-gapL-cw-rw, 1)
	return bar(width).Render(left + strings.Repeat(" ", gapL) + center + strings.Repeat(" ", gapR) + right)
}

// footer lists as many hints as fit on one line.
func (f Frame) footer(width int) string {
	key := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	desc := lipgloss.NewStyle().Foreground(theme.TextDim)

	const sep = "   "
	inner := max(width-4, 0)
	var line string
	for _, h := range f.Hints {
		part := key.Render(h.Key) + " " + desc.Render(h.Description)
		next := part
		if line != "" {
			next = line + sep + part
		}
		if lipgloss.Width(next) > inner {
			break
		}
		line = next
	}
	return bar(width).Render(line)
}

// Centered renders s centred across width with style.
func Centered(s string, width int, style lipgloss.Style) string {
	return style.Width(width).Align(lipgloss.Center).Render(s)
}
