package server

import (
	"github.com/piscinadeentropia/mrquizzer/internal/quiz"
	"github.com/piscinadeentropia/mrquizzer/internal/quizgen"
	"github.com/piscinadeentropia/mrquizzer/internal/session"
)

// StateView is the client's view of the session. The correct answer of the
// current question is only included once it has been answered.
type StateView struct {
	Loaded         bool            `json:"loaded"`
	SessionID      string          `json:"session_id,omitempty"`
	Title          string          `json:"title,omitempty"`
	Index          int             `json:"index"`
	Total          int             `json:"total"`
	Score          int             `json:"score"`
	ElapsedSeconds int             `json:"elapsed_seconds"`
	Elapsed        string          `json:"elapsed"`
	Phase          string          `json:"phase,omitempty"`
	Question       *QuestionView   `json:"question,omitempty"`
	Answer         *session.Answer `json:"answer,omitempty"`
	Feedback       *FeedbackView   `json:"feedback,omitempty"`
}

// QuestionView is a question without its answers.
type QuestionView struct {
	Number  int       `json:"number"`
	Type    quiz.Type `json:"type"`
	Text    string    `json:"text"`
	Options []string  `json:"options,omitempty"`
	// Choice is false when the question is answered by typing.
	Choice bool `json:"choice"`
}

// FeedbackView is shown after the current question is answered.
type FeedbackView struct {
	Correct       bool   `json:"correct"`
	Skipped       bool   `json:"skipped"`
	CorrectAnswer string `json:"correct_answer"`
	Explanation   string `json:"explanation,omitempty"`
	Last          bool   `json:"last"`
}

// LinkView is an assistant deep link.
type LinkView struct {
	Target     quizgen.Target `json:"target"`
	URL        string         `json:"url"`
	CopyPrompt bool           `json:"copy_prompt"`
}

func stateView(sess *session.Session) StateView {
	if sess == nil {
		return StateView{Elapsed: session.FormatElapsed(0)}
	}
	p := sess.Progress()
	v := StateView{
		Loaded:         true,
		SessionID:      sess.ID(),
		Title:          sess.Quiz().Title(),
		Index:          p.Index,
		Total:          sess.Total(),
		Score:          p.Score,
		ElapsedSeconds: p.ElapsedSeconds,
		Elapsed:        session.FormatElapsed(p.ElapsedSeconds),
		Phase:          sess.Phase().String(),
	}
	if q := sess.Current(); q != nil {
		v.Question = &QuestionView{
			Number:  p.Index + 1,
			Type:    q.Type,
			Text:    q.Text,
			Options: q.Options,
			Choice:  q.IsChoice(),
		}
	}
	v.Answer = sess.CurrentAnswer()
	if fb := sess.Feedback(); fb != nil {
		v.Feedback = &FeedbackView{
			Correct:       fb.Correct,
			Skipped:       fb.Skipped,
			CorrectAnswer: fb.CorrectAnswer,
			Explanation:   fb.Explanation,
			Last:          fb.Last,
		}
	}
	return v
}
