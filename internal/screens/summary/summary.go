package summary

import (
	"context"
	"fmt"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/piscinadeentropia/mrquizzer/internal/quizgen"
	"github.com/piscinadeentropia/mrquizzer/internal/router"
	"github.com/piscinadeentropia/mrquizzer/internal/screen"
	"github.com/piscinadeentropia/mrquizzer/internal/session"
	"github.com/piscinadeentropia/mrquizzer/internal/share"
	"github.com/piscinadeentropia/mrquizzer/internal/ui/layout"
	"github.com/piscinadeentropia/mrquizzer/internal/ui/theme"
)

// explainedMsg carries an AI explanation for review row Index.
type explainedMsg struct {
	Index int
	Text  string
	Err   error
}

// SummaryScreen shows the results of a quiz session.
type SummaryScreen struct {
	env     *screen.Env
	sess    *session.Session
	results *session.Results

	showReview   bool
	selected     int
	explanations map[int]string
	explaining   int // review row being explained, -1 when idle
	flash        string
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a SummaryScreen for s.
func New(env *screen.Env, s *session.Session) *SummaryScreen {
	return &SummaryScreen{
		env:          env,
		sess:         s,
		results:      s.Results(),
		explanations: make(map[int]string),
		explaining:   -1,
	}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Results"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "r", Description: "Review"},
		{Key: "c/w/t/l", Description: "Share"},
		{Key: "g", Description: "Regenerate"},
		{Key: "R", Description: "Restart"},
		{Key: "n", Description: "New quiz"},
		{Key: "Esc", Description: "Home"},
	}
	if s.showReview {
		hints = append([]layout.KeyHint{{Key: "↑↓", Description: "Select"}, {Key: "e", Description: "Explain"}}, hints...)
	}
	return hints
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screen.FlashMsg:
		s.flash = msg.String()
		return s, nil

	case explainedMsg:
		s.explaining = -1
		if msg.Err != nil {
			s.flash = "Explanation failed: " + msg.Err.Error()
			return s, nil
		}
		s.explanations[msg.Index] = msg.Text
		s.flash = ""
		return s, nil

	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *SummaryScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	clip := s.env.Clipboard
	percent := s.results.Percent

	switch msg.String() {
	case "esc", "enter", "q":
		return s, router.PopCmd
	case "r":
		s.showReview = !s.showReview
	case "up", "k":
		if s.selected > 0 {
			s.selected--
		}
	case "down", "j":
		if s.selected < len(s.results.Review)-1 {
			s.selected++
		}
	case "e":
		return s, s.explain()
	case "c":
		return s, screen.CopyCmd(clip, share.ClipboardText(percent), "Score")
	case "w", "t":
		platform := share.WhatsApp
		if msg.String() == "t" {
			platform = share.Twitter
		}
		link, err := share.PlatformURL(platform, share.ScoreText(percent, s.env.ShareSite))
		if err != nil {
			s.flash = err.Error()
			return s, nil
		}
		return s, screen.CopyCmd(clip, link, string(platform)+" link")
	case "l":
		link := share.TestLink(s.env.ShareSite, s.sess.Quiz().Raw)
		return s, screen.CopyCmd(clip, link, "Test link")
	case "g":
		return s, s.regenerate()
	case "R":
		if err := s.sess.Reset(context.Background()); err != nil {
			s.flash = "Reset failed: " + err.Error()
			return s, nil
		}
		return s, router.ReplaceCmd(s.env.Nav.Play(s.sess))
	case "n":
		return s, router.ReplaceCmd(s.env.Nav.Import())
	}
	return s, nil
}

// explain asks the LLM for an explanation of the selected question, or
// copies the explain prompt when no provider is configured.
func (s *SummaryScreen) explain() tea.Cmd {
	idx := s.selected
	if idx < 0 || idx >= s.sess.Total() {
		return nil
	}
	q := &s.sess.Quiz().Questions[idx]
	if s.env.Explainer == nil {
		return screen.CopyCmd(s.env.Clipboard, quizgen.ExplainPrompt(q), "Explain prompt")
	}
	if s.explaining >= 0 {
		return nil
	}
	s.showReview = true
	s.explaining = idx
	s.flash = fmt.Sprintf("Explaining question %d...", idx+1)
	explainer := s.env.Explainer
	return func() tea.Msg {
		text, err := explainer.Explain(context.Background(), q)
		return explainedMsg{Index: idx, Text: text, Err: err}
	}
}

// regenerate copies a prompt asking for new questions about the same
// source material.
func (s *SummaryScreen) regenerate() tea.Cmd {
	var src string
	if s.env.Sources != nil {
		rec, err := s.env.Sources.LatestSource(context.Background())
		if err != nil {
			s.flash = err.Error()
			return nil
		}
		if rec != nil {
			src = rec.Text
		}
	}
	prompt := quizgen.RegeneratePrompt(src, s.sess.Quiz().Questions)
	return screen.CopyCmd(s.env.Clipboard, prompt, "Regenerate prompt")
}

func (s *SummaryScreen) View(width, height int) string {
	r := s.results
	var b strings.Builder
	b.WriteString("\n")

	big := lipgloss.NewStyle().Foreground(bandColor(r.Band)).Bold(true)
	b.WriteString(layout.Centered(fmt.Sprintf("%d%%", r.Percent), width, big))
	b.WriteString("\n")
	if r.Perfect {
		b.WriteString(layout.Centered("Perfect score!", width, theme.Title.Foreground(theme.Accent)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	stats := fmt.Sprintf("Score: %d / %d        Time: %s", r.Score, r.Total, r.Elapsed)
	b.WriteString(layout.Centered(stats, width, theme.Body))
	b.WriteString("\n")

	if s.showReview {
		b.WriteString("\n")
		b.WriteString(s.renderReview(width))
	}

	if s.flash != "" {
		b.WriteString("\n")
		b.WriteString(layout.Centered(s.flash, width, lipgloss.NewStyle().Foreground(theme.Accent)))
	}
	return b.String()
}

func (s *SummaryScreen) renderReview(width int) string {
	cw := min(width-8, 90)
	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", cw))

	var b strings.Builder
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.TextDim).Render("Review")))
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
	b.WriteString("\n")

	rowStyle := lipgloss.NewStyle().Width(cw)
	for i, item := range s.results.Review {
		marker := "  "
		if i == s.selected {
			marker = "▸ "
		}
		head := fmt.Sprintf("%s%d. %s", marker, item.Number, item.Question)
		style := theme.Unselected
		if i == s.selected {
			style = theme.Selected
		}

		var row strings.Builder
		row.WriteString(style.Render(head))
		row.WriteString("\n    ")
		row.WriteString(statusStyle(item.Status).Render(statusLabel(item.Status)))
		row.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render(
			fmt.Sprintf("  Your answer: %s   Correct: %s", item.UserAnswer, item.CorrectAnswer)))

		if i == s.selected {
			if exp := s.explanations[i]; exp != "" {
				row.WriteString("\n    ")
				row.WriteString(theme.Body.Render(exp))
			} else if item.Explanation != "" {
				row.WriteString("\n    ")
				row.WriteString(theme.Hint.Render(item.Explanation))
			}
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, rowStyle.Render(row.String())))
		b.WriteString("\n")
	}
	return b.String()
}

func statusLabel(st session.ReviewStatus) string {
	switch st {
	case session.StatusCorrect:
		return "✓ Correct"
	case session.StatusWrong:
		return "✗ Wrong"
	default:
		return "- Skipped"
	}
}

func statusStyle(st session.ReviewStatus) lipgloss.Style {
	switch st {
	case session.StatusCorrect:
		return theme.Correct
	case session.StatusWrong:
		return theme.Incorrect
	default:
		return theme.Skipped
	}
}

// bandColor returns the theme color for a result band.
func bandColor(b session.Band) color.Color {
	switch b {
	case session.BandGreat:
		return theme.BandGreat
	case session.BandGood:
		return theme.BandGood
	default:
		return theme.BandPoor
	}
}
