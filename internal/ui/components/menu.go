package components

import (
	tea "charm.land/bubbletea/v2"
)

// MenuItem is one entry of a Menu.
type MenuItem struct {
	Label    string
	Action   func() tea.Cmd
	Disabled bool
}

// Menu tracks the selection of a vertical menu. Screens draw it
// themselves. Navigation wraps around and skips disabled items; the digits
// 1-9 run the item at that position directly.
type Menu struct {
	Items    []MenuItem
	Selected int
}

// NewMenu returns a Menu with the first enabled item selected.
func NewMenu(items []MenuItem) Menu {
	m := Menu{Items: items}
	m.Selected = m.step(-1, 1)
	return m
}

// step returns the next enabled index from start in direction dir, or
// Selected when every item is disabled.
func (m Menu) step(start, dir int) int {
	n := len(m.Items)
	for k := 1; k <= n; k++ {
		i := ((start+dir*k)%n + n) % n
		if !m.Items[i].Disabled {
			return i
		}
	}
	return max(m.Selected, 0)
}

// SetDisabled toggles item i and moves the selection off it when needed.
func (m *Menu) SetDisabled(i int, disabled bool) {
	if i < 0 || i >= len(m.Items) {
		return
	}
	m.Items[i].Disabled = disabled
	if disabled && m.Selected == i {
		m.Selected = m.step(i, 1)
	}
}

// Update handles navigation keys and returns the command of an activated
// item.
func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	key, ok := msg.(tea.KeyPressMsg)
	if !ok || len(m.Items) == 0 {
		return m, nil
	}

	switch s := key.String(); s {
	case "up", "k", "shift+tab":
		m.Selected = m.step(m.Selected, -1)
	case "down", "j", "tab":
		m.Selected = m.step(m.Selected, 1)
	case "home", "g":
		m.Selected = m.step(-1, 1)
	case "end", "G":
		m.Selected = m.step(len(m.Items), -1)
	case "enter", "space":
		return m, m.activate(m.Selected)
	default:
		if len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
			if i := int(s[0] - '1'); i < len(m.Items) && !m.Items[i].Disabled {
				m.Selected = i
				return m, m.activate(i)
			}
		}
	}
	return m, nil
}

func (m Menu) activate(i int) tea.Cmd {
	if i < 0 || i >= len(m.Items) {
		return nil
	}
	item := m.Items[i]
	if item.Disabled || item.Action == nil {
		return nil
	}
	return item.Action()
}
