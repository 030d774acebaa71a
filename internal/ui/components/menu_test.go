package components

import (
	"testing"

	tea "charm.land/bubbletea/v2"
)

type pickedMsg string

func pick(name string) func() tea.Cmd {
	return func() tea.Cmd {
		return func() tea.Msg { return pickedMsg(name) }
	}
}

func testMenu() Menu {
	return NewMenu([]MenuItem{
		{Label: "Play", Action: pick("play"), Disabled: true},
		{Label: "Import", Action: pick("import")},
		{Label: "Reset", Action: pick("reset"), Disabled: true},
		{Label: "Exit", Action: pick("exit")},
	})
}

func press(m Menu, keys ...tea.KeyPressMsg) (Menu, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		m, cmd = m.Update(k)
	}
	return m, cmd
}

var (
	keyUp    = tea.KeyPressMsg{Code: tea.KeyUp}
	keyDown  = tea.KeyPressMsg{Code: tea.KeyDown}
	keyEnter = tea.KeyPressMsg{Code: tea.KeyEnter}
	keyEnd   = tea.KeyPressMsg{Code: tea.KeyEnd}
)

func digit(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func TestMenuSkipsDisabled(t *testing.T) {
	m := testMenu()
	if m.Selected != 1 {
		t.Fatalf("initial selection = %d, want first enabled item 1", m.Selected)
	}

	m, _ = press(m, keyDown)
	if m.Selected != 3 {
		t.Errorf("down from 1 = %d, want 3", m.Selected)
	}
	m, _ = press(m, keyDown)
	if m.Selected != 1 {
		t.Errorf("down from last = %d, want wrap to 1", m.Selected)
	}
	m, _ = press(m, keyUp)
	if m.Selected != 3 {
		t.Errorf("up from first = %d, want wrap to 3", m.Selected)
	}
}

func TestMenuActivate(t *testing.T) {
	m, cmd := press(testMenu(), keyEnd, keyEnter)
	if cmd == nil {
		t.Fatal("enter on Exit returned no command")
	}
	if got := cmd(); got != pickedMsg("exit") {
		t.Errorf("enter ran %v, want exit", got)
	}
	if m.Selected != 3 {
		t.Errorf("selection = %d, want 3", m.Selected)
	}
}

func TestMenuDigitJump(t *testing.T) {
	m, cmd := press(testMenu(), digit('2'))
	if cmd == nil || cmd() != pickedMsg("import") {
		t.Fatal("2 did not run Import")
	}
	if m.Selected != 1 {
		t.Errorf("selection = %d, want 1", m.Selected)
	}

	// Disabled and out of range positions do nothing.
	for _, r := range []rune{'1', '9'} {
		if _, cmd := press(m, digit(r)); cmd != nil {
			t.Errorf("%c returned a command", r)
		}
	}
}

func TestMenuSetDisabled(t *testing.T) {
	m := testMenu()
	m.SetDisabled(0, false)
	m, _ = press(m, keyUp)
	if m.Selected != 0 {
		t.Fatalf("up after enabling Play = %d, want 0", m.Selected)
	}

	m.SetDisabled(0, true)
	if m.Selected != 1 {
		t.Errorf("disabling the selected item left selection at %d, want 1", m.Selected)
	}

	m.SetDisabled(7, true) // ignored
}

func TestMenuAllDisabled(t *testing.T) {
	m := NewMenu([]MenuItem{{Label: "a", Disabled: true}, {Label: "b", Disabled: true}})
	m, cmd := press(m, keyDown, keyEnter)
	if cmd != nil {
		t.Error("enter on a disabled menu returned a command")
	}
	if m.Selected != 0 {
		t.Errorf("selection = %d, want 0", m.Selected)
	}
}
