package screen

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
)

// FlashMsg is a short notice for the active screen, such as the outcome of
// a clipboard copy.
type FlashMsg struct {
	Text string
	Err  error
}

// String returns the notice text.
func (m FlashMsg) String() string {
	if m.Err != nil {
		return m.Err.Error()
	}
	return m.Text
}

// CopyCmd writes text to the clipboard and reports the outcome as a
// FlashMsg naming what was copied.
func CopyCmd(clip Clipboard, text, what string) tea.Cmd {
	return func() tea.Msg {
		if clip == nil {
			return FlashMsg{Err: fmt.Errorf("copy %s: no clipboard available", what)}
		}
		if err := clip.WriteAll(text); err != nil {
			return FlashMsg{Err: fmt.Errorf("copy %s: %w", what, err)}
		}
		return FlashMsg{Text: what + " copied to clipboard"}
	}
}
