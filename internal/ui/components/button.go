package components

import (
	"strings"

	"github.com/piscinadeentropia/mrquizzer/internal/ui/theme"
)

// Button is a styled label that can be focused.
type Button struct {
	Label  string
	Active bool
}

// View renders the button.
func (b Button) View() string {
	label := " " + b.Label + " "
	if b.Active {
		return theme.ButtonActive.Render(label)
	}
	return theme.ButtonInactive.Render(label)
}

// Confirm is a yes/no prompt with two buttons. Left and right move focus.
type Confirm struct {
	Question string
	Yes, No  string
	yes      bool
}

// NewConfirm returns a prompt with "No" focused.
func NewConfirm(question, yes, no string) Confirm {
	return Confirm{Question: question, Yes: yes, No: no}
}

// Toggle moves focus to the other button.
func (c Confirm) Toggle() Confirm {
	c.yes = !c.yes
	return c
}

// Focused reports whether the "yes" button has focus.
func (c Confirm) Focused() bool { return c.yes }

// View renders the question above the two buttons.
func (c Confirm) View() string {
	buttons := []string{
		Button{Label: c.Yes, Active: c.yes}.View(),
		Button{Label: c.No, Active: !c.yes}.View(),
	}
	return theme.Body.Bold(true).Render(c.Question) + "\n\n" + strings.Join(buttons, "  ")
}
