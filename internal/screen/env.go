package screen

import (
	"github.com/atotto/clipboard"

	"github.com/piscinadeentropia/mrquizzer/internal/library"
	"github.com/piscinadeentropia/mrquizzer/internal/quizgen"
	"github.com/piscinadeentropia/mrquizzer/internal/session"
	"github.com/piscinadeentropia/mrquizzer/internal/source"
	"github.com/piscinadeentropia/mrquizzer/internal/store"
)

// Clipboard reads and writes the system clipboard.
type Clipboard interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

// SystemClipboard is the OS clipboard.
type SystemClipboard struct{}

func (SystemClipboard) ReadAll() (string, error)   { return clipboard.ReadAll() }
func (SystemClipboard) WriteAll(text string) error { return clipboard.WriteAll(text) }

// Navigator builds the screens other screens navigate to.
type Navigator interface {
	// Play returns the play screen for s, or for the current quiz when s is nil.
	Play(s *session.Session) Screen
	Results(s *session.Session) Screen
	Import() Screen
	Prompt() Screen
	History() Screen
}

// Env carries the services screens work with. Generator and Explainer are
// nil when no LLM provider is configured.
type Env struct {
	Library   *library.Library
	Progress  store.ProgressRepo
	Events    store.EventRepo
	Sources   store.SourceRepo
	Fetcher   *source.Fetcher
	Generator *quizgen.Generator
	Explainer *quizgen.Explainer
	Clipboard Clipboard
	Nav       Navigator

	// Prompt is the default prompt builder settings.
	Prompt        quizgen.Settings
	AutosaveEvery int
	ShareSite     string
}
