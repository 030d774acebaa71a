package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "charm.land/bubbletea/v2"

	"github.com/piscinadeentropia/mrquizzer/internal/router"
	"github.com/piscinadeentropia/mrquizzer/internal/screen"
	"github.com/piscinadeentropia/mrquizzer/internal/screens/history"
	"github.com/piscinadeentropia/mrquizzer/internal/screens/home"
	"github.com/piscinadeentropia/mrquizzer/internal/screens/importer"
	"github.com/piscinadeentropia/mrquizzer/internal/screens/prompt"
	sessionscreen "github.com/piscinadeentropia/mrquizzer/internal/screens/session"
	"github.com/piscinadeentropia/mrquizzer/internal/screens/summary"
	"github.com/piscinadeentropia/mrquizzer/internal/screens/welcome"
	"github.com/piscinadeentropia/mrquizzer/internal/session"
	"github.com/piscinadeentropia/mrquizzer/internal/ui/layout"
)

// Start screens that can be opened directly over the home screen.
const (
	StartHome    = ""
	StartPlay    = "play"
	StartImport  = "import"
	StartPrompt  = "prompt"
	StartHistory = "history"
)

// Options configures the TUI.
type Options struct {
	// Splash shows the welcome animation before the home screen.
	Splash bool
	// Start opens a screen over the home screen.
	Start string
}

// navigator builds the screens for screen.Navigator.
type navigator struct {
	env *screen.Env
}

func (n navigator) Play(s *session.Session) screen.Screen {
	if s == nil {
		return sessionscreen.New(n.env)
	}
	return sessionscreen.NewWithSession(n.env, s)
}

func (n navigator) Results(s *session.Session) screen.Screen { return summary.New(n.env, s) }
func (n navigator) Import() screen.Screen                    { return importer.New(n.env) }
func (n navigator) Prompt() screen.Screen                    { return prompt.New(n.env) }
func (n navigator) History() screen.Screen                   { return history.New(n.env.Events) }

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	start  tea.Cmd
	width  int
	height int
}

// newAppModel wires env to the screens and builds the root model.
func newAppModel(env *screen.Env, opts Options) AppModel {
	nav := navigator{env: env}
	env.Nav = nav

	var initial screen.Screen = home.New(env)
	if opts.Splash && opts.Start == StartHome {
		initial = welcome.New(func() screen.Screen { return home.New(env) })
	}

	var start tea.Cmd
	switch opts.Start {
	case StartPlay:
		start = router.PushCmd(nav.Play(nil))
	case StartImport:
		start = router.PushCmd(nav.Import())
	case StartPrompt:
		start = router.PushCmd(nav.Prompt())
	case StartHistory:
		start = router.PushCmd(nav.History())
	}

	return AppModel{
		router: router.New(initial),
		start:  start,
	}
}

func (m AppModel) Init() tea.Cmd {
	return tea.Batch(m.router.Active().Init(), m.start)
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c":
			m.flush()
			return m, tea.Quit
		case "esc":
			if h, ok := m.router.Active().(screen.EscHandler); ok && h.HandlesEsc() {
				break
			}
			if m.router.Depth() > 1 {
				return m, router.PopCmd
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

// flush saves the open screens before quitting.
func (m AppModel) flush() {
	if err := m.router.Flush(context.Background()); err != nil {
		slog.Error("saving progress on exit", "err", err)
	}
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.render())
	return v
}

// render draws the active screen inside the app frame.
func (m AppModel) render() string {
	active := m.router.Active()
	f := layout.Frame{Title: active.Title()}
	if sp, ok := active.(screen.StatusProvider); ok {
		f.Status = sp.Status()
	}
	if kp, ok := active.(screen.KeyHintProvider); ok {
		f.Hints = kp.KeyHints()
	} else if m.router.Depth() > 1 {
		f.Hints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return f.Render(m.width, m.height, m.router.View)
}

// Run starts the Bubble Tea program.
func Run(env *screen.Env, opts Options) error {
	p := tea.NewProgram(newAppModel(env, opts))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
