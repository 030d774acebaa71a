package session

import (
	"errors"
	"fmt"
)

// Phase represents where the session is in the question flow.
type Phase int

const (
	PhaseQuestion Phase = iota // Waiting for an answer to the current question
	PhaseFeedback              // Current question answered, waiting for Advance
	PhaseFinished              // Every question has been passed
)

func (p Phase) String() string {
	switch p {
	case PhaseQuestion:
		return "question"
	case PhaseFeedback:
		return "feedback"
	case PhaseFinished:
		return "finished"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// AnswerType describes how a question was answered.
type AnswerType string

const (
	AnswerChoice AnswerType = "choice"
	AnswerText   AnswerType = "text"
	AnswerSkip   AnswerType = "skip"
)

// Answer is the recorded response to one question. It is written once.
type Answer struct {
	Type    AnswerType `json:"type"`
	Index   *int       `json:"index,omitempty"` // chosen option, for AnswerChoice
	Text    string     `json:"text,omitempty"`  // typed answer, for AnswerText
	Correct bool       `json:"correct"`
}

func (a *Answer) clone() *Answer {
	if a == nil {
		return nil
	}
	c := *a
	if a.Index != nil {
		idx := *a.Index
		c.Index = &idx
	}
	return &c
}

// Progress is the persisted session tuple. Answers has one slot per
// question; nil means the question has not been answered.
type Progress struct {
	Index          int       `json:"index"`
	Score          int       `json:"score"`
	ElapsedSeconds int       `json:"elapsed_seconds"`
	Answers        []*Answer `json:"answers"`
}

func (p Progress) clone() Progress {
	c := p
	c.Answers = make([]*Answer, len(p.Answers))
	for i, a := range p.Answers {
		c.Answers[i] = a.clone()
	}
	return c
}

// Feedback is shown after a question is answered.
type Feedback struct {
	Correct       bool
	Skipped       bool
	CorrectAnswer string
	Explanation   string
	// Last is set when the answered question is the final one.
	Last bool
}

var (
	// ErrFinished is returned for transitions attempted after the last question.
	ErrFinished = errors.New("session: quiz already finished")
	// ErrAlreadyAnswered is returned when the current question was already answered.
	ErrAlreadyAnswered = errors.New("session: question already answered")
	// ErrNotAnswered is returned by Advance before the current question is answered.
	ErrNotAnswered = errors.New("session: question not answered yet")
	// ErrEmptyAnswer is returned for a blank text answer.
	ErrEmptyAnswer = errors.New("session: empty answer")
	// ErrInvalidChoice is returned for an out-of-range option or a choice
	// submitted to a text question.
	ErrInvalidChoice = errors.New("session: invalid choice")
	// ErrWrongKind is returned when text is submitted to a choice question.
	ErrWrongKind = errors.New("session: question expects a choice")
)
