package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/piscinadeentropia/mrquizzer/internal/quiz"
	"github.com/piscinadeentropia/mrquizzer/internal/quizgen"
	"github.com/piscinadeentropia/mrquizzer/internal/session"
)

const maxQuizBytes = 8 << 20

var errNoQuiz = errors.New("no quiz loaded")

type answerRequest struct {
	Choice *int    `json:"choice"`
	Text   *string `json:"text"`
}

type promptRequest struct {
	Text     string            `json:"text"`
	Settings *quizgen.Settings `json:"settings"`
}

type promptResponse struct {
	Prompt string     `json:"prompt"`
	Links  []LinkView `json:"links"`
}

type loadResponse struct {
	State  StateView `json:"state"`
	Issues []string  `json:"issues,omitempty"`
}

type resultsResponse struct {
	Finished bool `json:"finished"`
	*session.Results
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickLocked(r.Context())
	writeJSON(w, http.StatusOK, stateView(s.sess))
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if (req.Choice == nil) == (req.Text == nil) {
		writeError(w, http.StatusBadRequest, `send exactly one of "choice" or "text"`)
		return
	}
	s.mutate(w, r, func(ctx context.Context, sess *session.Session) error {
		var err error
		if req.Choice != nil {
			_, err = sess.SubmitChoice(ctx, *req.Choice)
		} else {
			_, err = sess.SubmitText(ctx, *req.Text)
		}
		return err
	})
}

func (s *Server) handleSkip(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(ctx context.Context, sess *session.Session) error {
		_, err := sess.Skip(ctx)
		return err
	})
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(ctx context.Context, sess *session.Session) error {
		_, err := sess.Advance(ctx)
		return err
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(ctx context.Context, sess *session.Session) error {
		if err := sess.Reset(ctx); err != nil {
			return err
		}
		s.lastTick = s.opts.Now()
		return nil
	})
}

// mutate runs fn against the session, then answers with and broadcasts the
// new state.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, fn func(context.Context, *session.Session) error) {
	ctx := r.Context()
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sess == nil {
		writeError(w, http.StatusNotFound, errNoQuiz.Error())
		return
	}
	s.tickLocked(ctx)
	if err := fn(ctx, s.sess); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	view := stateView(s.sess)
	s.hub.Broadcast(MessageState, view)
	writeJSON(w, http.StatusOK, view)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrAlreadyAnswered),
		errors.Is(err, session.ErrNotAnswered),
		errors.Is(err, session.ErrFinished):
		return http.StatusConflict
	case errors.Is(err, session.ErrEmptyAnswer),
		errors.Is(err, session.ErrInvalidChoice),
		errors.Is(err, session.ErrWrongKind):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sess == nil {
		writeError(w, http.StatusNotFound, errNoQuiz.Error())
		return
	}
	s.tickLocked(r.Context())
	writeJSON(w, http.StatusOK, resultsResponse{Finished: s.sess.Finished(), Results: s.sess.Results()})
}

func (s *Server) handleGetQuiz(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sess == nil {
		writeError(w, http.StatusNotFound, errNoQuiz.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(s.sess.Quiz().Raw)
}

func (s *Server) handlePutQuiz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxQuizBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read body: "+err.Error())
		return
	}
	if len(body) > maxQuizBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "quiz document too large")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sess != nil {
		s.tickLocked(ctx)
		if err := s.sess.Save(ctx); err != nil {
			s.log.Warn("saving previous session", "err", err)
		}
	}

	q, err := s.deps.Library.Import(ctx, string(body))
	if err != nil {
		var syn *quiz.SyntaxError
		if errors.Is(err, quiz.ErrEmpty) || errors.Is(err, quiz.ErrMissingQuestions) ||
			errors.Is(err, quiz.ErrNoQuestions) || errors.As(err, &syn) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	sess, err := session.New(ctx, q, s.sessionOptions())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.sess = sess
	s.lastTick = s.opts.Now()
	s.log.Info("quiz loaded", "quiz", q.Key(), "questions", q.Len())

	resp := loadResponse{State: stateView(sess)}
	for _, is := range quiz.Check(q) {
		resp.Issues = append(resp.Issues, is.String())
	}
	s.hub.Broadcast(MessageLoaded, resp.State)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePrompt(w http.ResponseWriter, r *http.Request) {
	var req promptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	settings := s.opts.Prompt
	if req.Settings != nil {
		settings = *req.Settings
	}
	prompt, err := quizgen.BuildPrompt(req.Text, settings)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := promptResponse{Prompt: prompt}
	for _, target := range []quizgen.Target{quizgen.ChatGPT, quizgen.Perplexity} {
		link, err := quizgen.DeepLink(target, prompt)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		resp.Links = append(resp.Links, LinkView{Target: link.Target, URL: link.URL, CopyPrompt: link.CopyPrompt})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	c, err := s.hub.upgrade(w, r)
	if err != nil {
		s.log.Warn("ws upgrade failed", "err", err)
		return
	}

	s.mu.Lock()
	s.tickLocked(r.Context())
	joined := s.hub.join(c, MessageState, stateView(s.sess))
	s.mu.Unlock()
	if !joined {
		_ = c.conn.Close()
		return
	}
	c.run()
}
