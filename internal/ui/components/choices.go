package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/piscinadeentropia/mrquizzer/internal/ui/theme"
)

// ChoiceList renders the options of a choice question. Before an answer is
// given the cursor is highlighted; afterwards the correct options are shown
// in green and a wrong pick in red.
type ChoiceList struct {
	Options  []string
	Cursor   int
	Answered bool
	Chosen   int // -1 when skipped
	Correct  map[int]bool
}

// NewChoiceList returns an unanswered list.
func NewChoiceList(options []string) ChoiceList {
	return ChoiceList{Options: options, Chosen: -1}
}

// Move shifts the cursor by delta, staying inside the list.
func (c ChoiceList) Move(delta int) ChoiceList {
	if c.Answered || len(c.Options) == 0 {
		return c
	}
	c.Cursor = min(max(c.Cursor+delta, 0), len(c.Options)-1)
	return c
}

// Reveal marks the list as answered.
func (c ChoiceList) Reveal(chosen int, correct []int) ChoiceList {
	c.Answered = true
	c.Chosen = chosen
	c.Correct = make(map[int]bool, len(correct))
	for _, i := range correct {
		c.Correct[i] = true
	}
	return c
}

// View renders the options numbered from 1.
func (c ChoiceList) View() string {
	var b strings.Builder
	for i, opt := range c.Options {
		prefix := "  "
		if !c.Answered && i == c.Cursor {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%d) %s", prefix, i+1, opt)

		var style lipgloss.Style
		switch {
		case c.Answered && c.Correct[i]:
			style = theme.Correct
		case c.Answered && i == c.Chosen:
			style = theme.Incorrect
		case c.Answered:
			style = lipgloss.NewStyle().Foreground(theme.TextDim)
		case i == c.Cursor:
			style = theme.Selected
		default:
			style = theme.Unselected
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}
