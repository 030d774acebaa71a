// Package router keeps the stack of open screens. Screens navigate by
// returning the commands built by PushCmd, PopCmd and ReplaceCmd.
package router

import (
	"context"
	"errors"

	tea "charm.land/bubbletea/v2"

	"github.com/piscinadeentropia/mrquizzer/internal/screen"
)

// Op is a stack operation.
type Op int

const (
	Push Op = iota
	Pop
	Replace
)

func (o Op) String() string {
	switch o {
	case Push:
		return "push"
	case Pop:
		return "pop"
	case Replace:
		return "replace"
	}
	return "unknown"
}

// NavMsg asks the router to change the stack. Screen is nil for Pop.
type NavMsg struct {
	Op     Op
	Screen screen.Screen
}

// ResumedMsg is sent to a screen when the screen above it is popped.
type ResumedMsg struct{}

// PushCmd opens s over the active screen.
func PushCmd(s screen.Screen) tea.Cmd {
	return func() tea.Msg { return NavMsg{Op: Push, Screen: s} }
}

// PopCmd closes the active screen.
func PopCmd() tea.Msg { return NavMsg{Op: Pop} }

// ReplaceCmd swaps the active screen for s, e.g. play for results.
func ReplaceCmd(s screen.Screen) tea.Cmd {
	return func() tea.Msg { return NavMsg{Op: Replace, Screen: s} }
}

// Router is a stack of screens. The bottom screen is never popped.
type Router struct {
	stack []screen.Screen
}

func New(root screen.Screen) *Router {
	return &Router{stack: []screen.Screen{root}}
}

// Active returns the top screen.
func (r *Router) Active() screen.Screen {
	return r.stack[len(r.stack)-1]
}

func (r *Router) Depth() int {
	return len(r.stack)
}

// Update applies navigation messages and hands everything else to the
// active screen.
func (r *Router) Update(msg tea.Msg) tea.Cmd {
	if nav, ok := msg.(NavMsg); ok {
		return r.navigate(nav)
	}
	next, cmd := r.Active().Update(msg)
	r.stack[len(r.stack)-1] = next
	return cmd
}

func (r *Router) navigate(m NavMsg) tea.Cmd {
	switch m.Op {
	case Push:
		r.stack = append(r.stack, m.Screen)
		return m.Screen.Init()
	case Replace:
		r.stack[len(r.stack)-1] = m.Screen
		return m.Screen.Init()
	case Pop:
		if len(r.stack) == 1 {
			return nil
		}
		r.stack[len(r.stack)-1] = nil
		r.stack = r.stack[:len(r.stack)-1]
		return func() tea.Msg { return ResumedMsg{} }
	}
	return nil
}

// View renders the active screen in width x height.
func (r *Router) View(width, height int) string {
	return r.Active().View(width, height)
}

// Flush saves the state of every open screen that holds any, top first.
func (r *Router) Flush(ctx context.Context) error {
	var errs []error
	for i := len(r.stack) - 1; i >= 0; i-- {
		if f, ok := r.stack[i].(screen.Flusher); ok {
			errs = append(errs, f.Flush(ctx))
		}
	}
	return errors.Join(errs...)
}
