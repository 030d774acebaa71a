package session

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	sess "github.com/piscinadeentropia/mrquizzer/internal/session"
	"github.com/piscinadeentropia/mrquizzer/internal/ui/components"
	"github.com/piscinadeentropia/mrquizzer/internal/ui/layout"
	"github.com/piscinadeentropia/mrquizzer/internal/ui/theme"
)

// renderQuestionView renders the current question, its answer widgets and,
// once answered, the feedback.
func (s *SessionScreen) renderQuestionView(width int) string {
	q := s.sess.Current()
	if q == nil {
		return renderLoading(width)
	}
	p := s.sess.Progress()
	var b strings.Builder

	infoLeft := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render(fmt.Sprintf("  Question %d of %d", p.Index+1, s.sess.Total()))
	infoRight := lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("%s %d   %s %s",
			lipgloss.NewStyle().Foreground(theme.Success).Render("★"),
			p.Score,
			lipgloss.NewStyle().Foreground(theme.Accent).Render("⏱"),
			sess.FormatElapsed(p.ElapsedSeconds),
		))
	infoLine := infoLeft
	if pad := width - lipgloss.Width(infoLeft) - lipgloss.Width(infoRight) - 4; pad > 0 {
		infoLine += strings.Repeat(" ", pad) + infoRight
	}
	b.WriteString(infoLine)
	b.WriteString("\n  ")

	done := p.Index
	if s.sess.IsAnswered() {
		done++
	}
	bar := components.QuizProgress{Done: done, Total: s.sess.Total(), Width: max(width-6, 10)}
	b.WriteString(bar.View())
	b.WriteString("\n\n")

	textWidth := min(width-8, 80)
	question := lipgloss.NewStyle().Width(textWidth).Foreground(theme.Text).Bold(true).Render(q.Text)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, question))
	b.WriteString("\n\n")

	if q.IsChoice() {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.choices.View()))
	} else {
		b.WriteString(layout.Centered("Answer: "+s.input.View(), width, lipgloss.NewStyle()))
	}
	b.WriteString("\n")

	if fb := s.sess.Feedback(); fb != nil {
		b.WriteString("\n")
		b.WriteString(renderFeedback(fb, width))
	}

	if s.flash != "" {
		b.WriteString("\n")
		b.WriteString(layout.Centered(s.flash, width, lipgloss.NewStyle().Foreground(theme.Accent)))
	}

	return b.String()
}

func renderFeedback(fb *sess.Feedback, width int) string {
	var b strings.Builder
	switch {
	case fb.Skipped:
		b.WriteString(layout.Centered("Skipped", width, theme.Skipped))
	case fb.Correct:
		b.WriteString(layout.Centered("Correct!", width, theme.Correct))
	default:
		b.WriteString(layout.Centered("Incorrect", width, theme.Incorrect))
	}
	if !fb.Correct {
		b.WriteString("\n")
		b.WriteString(layout.Centered("Correct answer: "+fb.CorrectAnswer, width,
			lipgloss.NewStyle().Foreground(theme.TextDim)))
	}
	b.WriteString("\n")

	if fb.Explanation != "" {
		exp := lipgloss.NewStyle().
			Width(min(width-8, 70)).
			Foreground(theme.Text).
			Render(fb.Explanation)
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, exp))
		b.WriteString("\n")
	}

	next := "Press Enter for the next question"
	if fb.Last {
		next = "Press Enter to see your results"
	}
	b.WriteString("\n")
	b.WriteString(layout.Centered(next, width, theme.Hint))
	return b.String()
}

// renderQuitConfirm renders the leave confirmation dialog.
func renderQuitConfirm(width int) string {
	var b strings.Builder
	b.WriteString("\n\n\n")
	b.WriteString(layout.Centered("Leave the quiz?", width, theme.Body.Bold(true)))
	b.WriteString("\n")
	b.WriteString(layout.Centered("Your progress is saved and you can continue later.", width,
		lipgloss.NewStyle().Foreground(theme.TextDim)))
	b.WriteString("\n\n")
	b.WriteString(layout.Centered("[Y] Yes, leave", width, lipgloss.NewStyle().Foreground(theme.Success)))
	b.WriteString("\n")
	b.WriteString(layout.Centered("[N] No, keep playing", width, lipgloss.NewStyle().Foreground(theme.Primary)))
	return b.String()
}

// renderLoading renders the loading state.
func renderLoading(width int) string {
	return layout.Centered("\n\n\n  Loading quiz...", width, lipgloss.NewStyle().Foreground(theme.TextDim))
}

// renderError renders an error message.
func renderError(width int, errMsg string) string {
	return layout.Centered(fmt.Sprintf("\n\n\n  %s\n\n  Press any key to go back.", errMsg), width,
		lipgloss.NewStyle().Foreground(theme.Error))
}
