package components

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/piscinadeentropia/mrquizzer/internal/ui/theme"
)

type inputState int

const (
	inputEditing inputState = iota
	inputCorrect
	inputWrong
)

// TextInput is a single-line answer field. Once graded it stops taking
// input and renders the answer in the result colour.
type TextInput struct {
	field textinput.Model
	state inputState
}

// NewTextInput returns a focused input. charLimit 0 means no limit and
// width 0 lets the field grow with its content.
func NewTextInput(placeholder string, charLimit, width int) TextInput {
	f := textinput.New()
	f.Prompt = "› "
	f.Placeholder = placeholder
	f.CharLimit = charLimit
	if width > 0 {
		f.SetWidth(width)
	}
	f.Focus()
	return TextInput{field: f}
}

// Init starts the cursor blink.
func (t TextInput) Init() tea.Cmd {
	if t.Graded() {
		return nil
	}
	return t.field.Focus()
}

func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	if t.Graded() {
		return t, nil
	}
	var cmd tea.Cmd
	t.field, cmd = t.field.Update(msg)
	return t, cmd
}

func (t TextInput) View() string {
	switch t.state {
	case inputCorrect:
		return theme.Correct.Render(t.field.Value() + " ✓")
	case inputWrong:
		return theme.Incorrect.Render(t.field.Value() + " ✗")
	}
	return t.field.View()
}

func (t TextInput) Value() string {
	return t.field.Value()
}

func (t *TextInput) SetValue(s string) {
	t.field.SetValue(s)
}

// Submit grades the input and locks it.
func (t *TextInput) Submit(correct bool) {
	t.field.Blur()
	t.state = inputWrong
	if correct {
		t.state = inputCorrect
	}
}

// Graded reports whether Submit has been called.
func (t TextInput) Graded() bool {
	return t.state != inputEditing
}
