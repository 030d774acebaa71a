package components

import (
	"charm.land/lipgloss/v2"

	"github.com/piscinadeentropia/mrquizzer/internal/ui/theme"
)

// Mood picks the mascot face.
type Mood int

const (
	MoodIdle        Mood = iota // a quiz is waiting
	MoodCelebrating             // the last run scored great
	MoodAlert                   // no quiz loaded
)

var mascots = map[Mood]string{
	MoodIdle: `┌─────┐
│ ◉ ◉ │
│  ▽  │
│ ?✓✗ │
└─────┘`,
	MoodCelebrating: `┌─────┐
│ ★ ★ │
│  ▿  │
│ ✓✓✓ │
└─╥═╥─┘
  ╚═╝`,
	MoodAlert: `┌─────┐
│ ◉ ◉ │ ?
│  ○  │
│ ··· │
└─────┘`,
}

// Mascot draws the quiz robot in the colour of its mood.
func Mascot(m Mood) string {
	fg := theme.Primary
	switch m {
	case MoodCelebrating:
		fg = theme.Highlight
	case MoodAlert:
		fg = theme.Accent
	}
	return lipgloss.NewStyle().Foreground(fg).Render(mascots[m])
}

const banner = `
 ███╗   ███╗██████╗  ██████╗ ██╗   ██╗██╗███████╗███████╗███████╗██████╗
 ████╗ ████║██╔══██╗██╔═══██╗██║   ██║██║╚══███╔╝╚══███╔╝██╔════╝██╔══██╗
 ██╔████╔██║██████╔╝██║   ██║██║   ██║██║  ███╔╝   ███╔╝ █████╗  ██████╔╝
 ██║╚██╔╝██║██╔══██╗██║▄▄ ██║██║   ██║██║ ███╔╝   ███╔╝  ██╔══╝  ██╔══██╗
 ██║ ╚═╝ ██║██║  ██║╚██████╔╝╚██████╔╝██║███████╗███████╗███████╗██║  ██║
 ╚═╝     ╚═╝╚═╝  ╚═╝ ╚══▀▀═╝  ╚═════╝ ╚═╝╚══════╝╚══════╝╚══════╝╚═╝  ╚═╝`

// BannerText is the one-line banner used below BannerWidth.
const BannerText = "M R · Q U I Z Z E R"

// BannerWidth is the width of the block-letter banner.
const BannerWidth = 74

// Banner draws the app name in block letters, or BannerText when width is
// too narrow for them.
func Banner(width int) string {
	s := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	if width < BannerWidth {
		return s.Render(BannerText)
	}
	return s.Render(banner)
}
