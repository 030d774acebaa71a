// Package prompt implements the prompt builder screen: pick source
// material, tune the generation settings, then copy the prompt for a chat
// assistant or generate the quiz directly.
package prompt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/piscinadeentropia/mrquizzer/internal/quiz"
	"github.com/piscinadeentropia/mrquizzer/internal/quizgen"
	"github.com/piscinadeentropia/mrquizzer/internal/router"
	"github.com/piscinadeentropia/mrquizzer/internal/screen"
	"github.com/piscinadeentropia/mrquizzer/internal/source"
	"github.com/piscinadeentropia/mrquizzer/internal/store"
	"github.com/piscinadeentropia/mrquizzer/internal/ui/components"
	"github.com/piscinadeentropia/mrquizzer/internal/ui/layout"
)

type inputMode int

const (
	modeBrowse inputMode = iota
	modeURL
	modePDF
)

type loadedMsg struct {
	Rec *store.SourceRecord
	Err error
}

type sourceMsg struct {
	Origin string
	Text   string
	Err    error
}

type generatedMsg struct {
	Quiz *quiz.Quiz
	Err  error
}

// PromptScreen builds generation prompts.
type PromptScreen struct {
	env      *screen.Env
	settings quizgen.Settings
	origin   string
	text     string
	cursor   int

	mode  inputMode
	input components.TextInput
	busy  string
	flash string
}

var _ screen.Screen = (*PromptScreen)(nil)
var _ screen.KeyHintProvider = (*PromptScreen)(nil)
var _ screen.EscHandler = (*PromptScreen)(nil)

// New creates a PromptScreen with the configured default settings. The
// cached source and settings are restored on Init.
func New(env *screen.Env) *PromptScreen {
	return &PromptScreen{
		env:      env,
		settings: env.Prompt.Normalize(),
	}
}

func (s *PromptScreen) Init() tea.Cmd {
	repo := s.env.Sources
	if repo == nil {
		return nil
	}
	return func() tea.Msg {
		rec, err := repo.LatestSource(context.Background())
		return loadedMsg{Rec: rec, Err: err}
	}
}

func (s *PromptScreen) Title() string {
	return "Build Prompt"
}

// HandlesEsc is true while a URL or path is being typed, so esc cancels
// the input instead of leaving the screen.
func (s *PromptScreen) HandlesEsc() bool {
	return s.mode != modeBrowse
}

func (s *PromptScreen) KeyHints() []layout.KeyHint {
	if s.mode != modeBrowse {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Fetch"},
			{Key: "Esc", Description: "Cancel"},
		}
	}
	hints := []layout.KeyHint{
		{Key: "↑↓", Description: "Setting"},
		{Key: "←→ Space", Description: "Change"},
		{Key: "Ctrl+O/u/f", Description: "Paste/URL/PDF"},
		{Key: "c", Description: "Copy prompt"},
		{Key: "o/p", Description: "ChatGPT/Perplexity"},
	}
	if s.env.Generator != nil {
		hints = append(hints, layout.KeyHint{Key: "g", Description: "Generate"})
	}
	return hints
}

func (s *PromptScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		s.restore(msg.Rec, msg.Err)
		return s, nil

	case sourceMsg:
		s.busy = ""
		if msg.Err != nil {
			s.flash = "Could not read the source: " + msg.Err.Error()
			return s, nil
		}
		s.setSource(msg.Origin, msg.Text)
		return s, nil

	case generatedMsg:
		s.busy = ""
		if msg.Err != nil {
			s.flash = "Generation failed: " + msg.Err.Error()
			return s, nil
		}
		return s, router.ReplaceCmd(s.env.Nav.Play(nil))

	case screen.FlashMsg:
		s.flash = msg.String()
		return s, nil

	case tea.PasteMsg:
		if s.mode == modeBrowse {
			s.setSource(store.OriginText, msg.Content)
			return s, nil
		}

	case tea.KeyPressMsg:
		if s.mode != modeBrowse {
			return s.handleInputKey(msg)
		}
		return s.handleKey(msg)
	}

	if s.mode != modeBrowse {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *PromptScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	if s.busy != "" {
		return s, nil
	}
	switch msg.String() {
	case "up", "k":
		s.cursor = max(s.cursor-1, 0)
	case "down", "j":
		s.cursor = min(s.cursor+1, len(rows)-1)
	case "left", "h", "-":
		s.adjust(-1)
	case "right", "l", "+", "space", "enter":
		s.adjust(1)
	case "ctrl+o", "v":
		text, err := s.env.Clipboard.ReadAll()
		if err != nil {
			s.flash = "Could not read the clipboard: " + err.Error()
			return s, nil
		}
		s.setSource(store.OriginText, text)
	case "u":
		return s, s.startInput(modeURL, "https://example.com/article")
	case "f":
		return s, s.startInput(modePDF, "/path/to/document.pdf")
	case "x":
		s.setSource("", "")
	case "c":
		if p, ok := s.prompt(); ok {
			return s, screen.CopyCmd(s.env.Clipboard, p, "Prompt")
		}
	case "o":
		return s, s.linkCmd(quizgen.ChatGPT)
	case "p":
		return s, s.linkCmd(quizgen.Perplexity)
	case "g":
		return s, s.generate()
	}
	return s, nil
}

func (s *PromptScreen) handleInputKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		s.mode = modeBrowse
		return s, nil
	case "enter":
		value := strings.TrimSpace(s.input.Value())
		mode := s.mode
		s.mode = modeBrowse
		if value == "" {
			return s, nil
		}
		if mode == modeURL {
			return s, s.fetch(value)
		}
		return s, s.readPDF(value)
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *PromptScreen) startInput(mode inputMode, placeholder string) tea.Cmd {
	s.mode = mode
	s.flash = ""
	s.input = components.NewTextInput(placeholder, 0, 60)
	return s.input.Init()
}

func (s *PromptScreen) fetch(rawURL string) tea.Cmd {
	if s.env.Fetcher == nil {
		s.flash = "Fetching web pages is not available."
		return nil
	}
	s.busy = "Fetching " + rawURL + "..."
	f := s.env.Fetcher
	return func() tea.Msg {
		text, err := f.Fetch(context.Background(), rawURL)
		return sourceMsg{Origin: store.OriginURL, Text: text, Err: err}
	}
}

func (s *PromptScreen) readPDF(path string) tea.Cmd {
	s.busy = "Reading " + path + "..."
	return func() tea.Msg {
		text, err := source.FromPDFFile(path)
		return sourceMsg{Origin: store.OriginPDF, Text: text, Err: err}
	}
}

func (s *PromptScreen) generate() tea.Cmd {
	if s.env.Generator == nil {
		s.flash = "No LLM provider configured. Press c to copy the prompt instead."
		return nil
	}
	if _, ok := s.prompt(); !ok {
		return nil
	}
	s.busy = "Generating quiz..."
	gen, lib := s.env.Generator, s.env.Library
	input := quizgen.GenerateInput{Source: s.text, Settings: s.settings}
	return func() tea.Msg {
		ctx := context.Background()
		q, err := gen.Generate(ctx, input)
		if err != nil {
			return generatedMsg{Err: err}
		}
		q, err = lib.Import(ctx, string(q.Raw))
		return generatedMsg{Quiz: q, Err: err}
	}
}

// linkCmd copies the deep link for target. A prompt too long for a link is
// copied instead, to be pasted on the bare site.
func (s *PromptScreen) linkCmd(target quizgen.Target) tea.Cmd {
	p, ok := s.prompt()
	if !ok {
		return nil
	}
	link, err := quizgen.DeepLink(target, p)
	if err != nil {
		s.flash = err.Error()
		return nil
	}
	if !link.CopyPrompt {
		return screen.CopyCmd(s.env.Clipboard, link.URL, string(target)+" link")
	}
	clip := s.env.Clipboard
	return func() tea.Msg {
		if err := clip.WriteAll(p); err != nil {
			return screen.FlashMsg{Err: fmt.Errorf("copy prompt: %w", err)}
		}
		return screen.FlashMsg{Text: "Prompt too long for a link; copied it. Paste it at " + link.URL}
	}
}

// prompt builds the prompt, flashing the reason when it cannot.
func (s *PromptScreen) prompt() (string, bool) {
	p, err := quizgen.BuildPrompt(s.text, s.settings)
	if err != nil {
		s.flash = err.Error()
		return "", false
	}
	return p, true
}

func (s *PromptScreen) adjust(delta int) {
	s.settings = rows[s.cursor].adjust(s.settings, delta)
	s.save()
}

func (s *PromptScreen) setSource(origin, text string) {
	s.origin, s.text = origin, strings.TrimSpace(text)
	s.flash = ""
	if s.text == "" {
		s.origin = ""
		if s.env.Sources != nil {
			if err := s.env.Sources.ClearSource(context.Background()); err != nil {
				s.flash = "Could not clear the source: " + err.Error()
			}
		}
		return
	}
	s.save()
}

// restore applies the cached source and its settings over the defaults.
func (s *PromptScreen) restore(rec *store.SourceRecord, err error) {
	if err != nil {
		s.flash = "Could not load the cached source: " + err.Error()
		return
	}
	if rec == nil {
		return
	}
	s.origin, s.text = rec.Origin, rec.Text
	if len(rec.Settings) > 0 {
		settings := s.settings
		if err := json.Unmarshal(rec.Settings, &settings); err != nil {
			slog.Warn("ignoring cached prompt settings", "err", err)
			return
		}
		s.settings = settings.Normalize()
	}
}

// save caches the source and settings for the next run.
func (s *PromptScreen) save() {
	if s.env.Sources == nil || s.text == "" {
		return
	}
	settings, err := json.Marshal(s.settings)
	if err != nil {
		s.flash = err.Error()
		return
	}
	rec := &store.SourceRecord{Origin: s.origin, Text: s.text, Settings: settings}
	if err := s.env.Sources.SaveSource(context.Background(), rec); err != nil {
		s.flash = "Could not save the source: " + err.Error()
	}
}
