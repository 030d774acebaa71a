package home

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/piscinadeentropia/mrquizzer/internal/ui/components"
	"github.com/piscinadeentropia/mrquizzer/internal/ui/theme"
)

const (
	buttonWidth = 26
	llmTip      = "Tip: set an LLM API key to generate quizzes here (see mrquizzer llm --help)"
)

// innerWidth is the width of everything inside the cabinet: the frame
// width less the border and padding, capped at the banner width.
func innerWidth(frame int) int {
	return max(min(frame-6, components.BannerWidth), 20)
}

func centered(s string, width int) string {
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(s)
}

func title(cw int, compact bool) string {
	if compact {
		return centered(components.Banner(0), cw)
	}
	return centered(components.Banner(cw), cw)
}

func statsBox(lines []string, cw int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Secondary).
		Width(cw-2).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

// label prefixes an item with its digit shortcut.
func label(i int, item components.MenuItem) string {
	return fmt.Sprintf("%d  %s", i+1, item.Label)
}

// menuButtons draws each item as a bordered button.
func menuButtons(m components.Menu) string {
	base := lipgloss.NewStyle().
		Width(buttonWidth).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1)

	buttons := make([]string, len(m.Items))
	for i, item := range m.Items {
		style := base.Foreground(theme.Text)
		switch {
		case item.Disabled:
			style = base.Foreground(theme.TextDim)
		case i == m.Selected:
			style = base.Bold(true).
				Foreground(theme.BgDark).
				Background(theme.Highlight).
				BorderForeground(theme.Highlight)
		}
		buttons[i] = style.Render(label(i, item))
	}
	return lipgloss.JoinVertical(lipgloss.Center, buttons...)
}

// menuLines is the borderless menu for short terminals.
func menuLines(m components.Menu) string {
	lines := make([]string, len(m.Items))
	for i, item := range m.Items {
		text := " " + label(i, item) + " "
		switch {
		case item.Disabled:
			lines[i] = lipgloss.NewStyle().Foreground(theme.TextDim).Render(text)
		case i == m.Selected:
			lines[i] = lipgloss.NewStyle().Bold(true).
				Foreground(theme.BgDark).
				Background(theme.Highlight).
				Render(text)
		default:
			lines[i] = lipgloss.NewStyle().Foreground(theme.Text).Render(text)
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// cabinet wraps the home screen in a double border filling width x height.
func cabinet(content string, width, height int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Primary).
		Width(width-2).
		Height(height-2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}
