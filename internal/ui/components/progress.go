package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/piscinadeentropia/mrquizzer/internal/ui/theme"
)

// QuizProgress is a one-line bar of answered questions with a "done/total"
// counter.
type QuizProgress struct {
	Done  int
	Total int
	Width int
}

// View renders the bar in Width cells, counter included. The bar never
// shrinks below four cells.
func (p QuizProgress) View() string {
	done := min(max(p.Done, 0), p.Total)
	counter := fmt.Sprintf(" %d/%d", done, p.Total)
	cells := max(p.Width-lipgloss.Width(counter), 4)

	filled := 0
	if p.Total > 0 {
		filled = cells * done / p.Total
	}
	return theme.ProgressDone.Render(strings.Repeat("━", filled)) +
		theme.ProgressTodo.Render(strings.Repeat("─", cells-filled)) +
		theme.Hint.Italic(false).Render(counter)
}
