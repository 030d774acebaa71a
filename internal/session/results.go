package session

import (
	"fmt"
	"math"

	"github.com/piscinadeentropia/mrquizzer/internal/quiz"
)

// Band is the coarse grade used to colour a result.
type Band string

const (
	BandGreat Band = "great"
	BandGood  Band = "good"
	BandPoor  Band = "poor"
)

// BandFor returns the band for a percentage score.
func BandFor(percent int) Band {
	switch {
	case percent >= 80:
		return BandGreat
	case percent >= 50:
		return BandGood
	default:
		return BandPoor
	}
}

// ReviewStatus is the outcome of one question.
type ReviewStatus string

const (
	StatusCorrect ReviewStatus = "correct"
	StatusWrong   ReviewStatus = "wrong"
	StatusSkipped ReviewStatus = "skipped"
)

// ReviewItem is one row of the answer review.
type ReviewItem struct {
	Number        int          `json:"number"`
	Question      string       `json:"question"`
	UserAnswer    string       `json:"user_answer"`
	CorrectAnswer string       `json:"correct_answer"`
	Status        ReviewStatus `json:"status"`
	Explanation   string       `json:"explanation,omitempty"`
}

// Results summarises a session.
type Results struct {
	Score          int          `json:"score"`
	Total          int          `json:"total"`
	Percent        int          `json:"percent"`
	Band           Band         `json:"band"`
	Perfect        bool         `json:"perfect"`
	ElapsedSeconds int          `json:"elapsed_seconds"`
	Elapsed        string       `json:"elapsed"`
	Review         []ReviewItem `json:"review"`
}

// Percent returns round(score/total*100), or 0 for an empty quiz.
func Percent(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(total) * 100))
}

// FormatElapsed renders seconds as mm:ss. Minutes are not wrapped at an hour.
func FormatElapsed(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// BuildResults computes the summary and review for q at progress p.
func BuildResults(q *quiz.Quiz, p Progress) *Results {
	total := q.Len()
	pct := Percent(p.Score, total)
	r := &Results{
		Score:          p.Score,
		Total:          total,
		Percent:        pct,
		Band:           BandFor(pct),
		Perfect:        total > 0 && p.Score == total,
		ElapsedSeconds: p.ElapsedSeconds,
		Elapsed:        FormatElapsed(p.ElapsedSeconds),
		Review:         make([]ReviewItem, 0, total),
	}

	for i := range q.Questions {
		question := &q.Questions[i]
		var ans *Answer
		if i < len(p.Answers) {
			ans = p.Answers[i]
		}
		r.Review = append(r.Review, reviewItem(i, question, ans))
	}
	return r
}

func reviewItem(i int, q *quiz.Question, ans *Answer) ReviewItem {
	item := ReviewItem{
		Number:      i + 1,
		Question:    q.Text,
		Explanation: q.Explanation,
	}
	if q.IsChoice() {
		item.CorrectAnswer = quiz.CorrectText(q)
	} else {
		item.CorrectAnswer = quiz.FirstCorrectText(q)
	}

	switch {
	case ans == nil || ans.Type == AnswerSkip:
		item.UserAnswer = "Skipped"
		item.Status = StatusSkipped
		return item
	case ans.Type == AnswerChoice:
		item.UserAnswer = "Unknown"
		if ans.Index != nil && *ans.Index >= 0 && *ans.Index < len(q.Options) {
			item.UserAnswer = quiz.OptionText(q, *ans.Index)
		}
	default:
		item.UserAnswer = ans.Text
	}

	if ans.Correct {
		item.Status = StatusCorrect
	} else {
		item.Status = StatusWrong
	}
	return item
}
