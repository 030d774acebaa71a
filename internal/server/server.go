// Package server exposes the current quiz session over HTTP and a websocket
// feed, so a browser or another terminal can play along with the CLI.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/piscinadeentropia/mrquizzer/internal/library"
	"github.com/piscinadeentropia/mrquizzer/internal/quizgen"
	"github.com/piscinadeentropia/mrquizzer/internal/session"
	"github.com/piscinadeentropia/mrquizzer/internal/store"
)

// DefaultMaxIdle caps how much wall time a single gap between requests can
// add to the quiz timer.
const DefaultMaxIdle = 5 * time.Minute

// Deps are the storage dependencies of a Server.
type Deps struct {
	Library  *library.Library
	Progress store.ProgressRepo
	Events   store.EventRepo
}

// Options configures a Server.
type Options struct {
	CORSOrigins   []string
	AutosaveEvery int
	// Prompt is the default settings for POST /api/prompt.
	Prompt  quizgen.Settings
	MaxIdle time.Duration
	Logger  *slog.Logger
	Now     func() time.Time
}

// Server serves one shared quiz session.
type Server struct {
	deps Deps
	opts Options
	log  *slog.Logger
	hub  *Hub

	mu       sync.Mutex
	sess     *session.Session
	lastTick time.Time
}

// New creates a Server and opens a session for the current quiz, if any.
func New(ctx context.Context, deps Deps, opts Options) (*Server, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.MaxIdle <= 0 {
		opts.MaxIdle = DefaultMaxIdle
	}
	if len(opts.Prompt.QuestionTypes) == 0 {
		opts.Prompt = quizgen.DefaultSettings()
	}

	s := &Server{
		deps: deps,
		opts: opts,
		log:  opts.Logger,
		hub:  NewHub(opts.Logger),
	}

	q, err := deps.Library.Current(ctx)
	if err != nil {
		return nil, err
	}
	if q != nil {
		sess, err := session.New(ctx, q, s.sessionOptions())
		if err != nil {
			return nil, err
		}
		s.sess = sess
		s.lastTick = opts.Now()
	}
	return s, nil
}

func (s *Server) sessionOptions() session.Options {
	return session.Options{
		Progress:      s.deps.Progress,
		Events:        s.deps.Events,
		AutosaveEvery: s.opts.AutosaveEvery,
	}
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", s.handleState)
		r.Post("/answer", s.handleAnswer)
		r.Post("/skip", s.handleSkip)
		r.Post("/next", s.handleNext)
		r.Post("/reset", s.handleReset)
		r.Get("/results", s.handleResults)
		r.Get("/quiz", s.handleGetQuiz)
		r.Put("/quiz", s.handlePutQuiz)
		r.Post("/prompt", s.handlePrompt)
		r.Get("/ws", s.handleWS)
	})
	return r
}

// Shutdown saves the session and disconnects websocket clients.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sess == nil {
		return nil
	}
	s.tickLocked(ctx)
	return s.sess.Save(ctx)
}

// tickLocked adds the whole seconds elapsed since the last tick to the
// session timer. s.mu must be held.
func (s *Server) tickLocked(ctx context.Context) {
	now := s.opts.Now()
	if s.sess == nil || s.sess.Finished() {
		s.lastTick = now
		return
	}
	gap := now.Sub(s.lastTick)
	if gap > s.opts.MaxIdle {
		s.lastTick = now.Add(-s.opts.MaxIdle)
		gap = s.opts.MaxIdle
	}
	secs := int(gap / time.Second)
	if secs <= 0 {
		return
	}
	s.lastTick = s.lastTick.Add(time.Duration(secs) * time.Second)
	if err := s.sess.AddSeconds(ctx, secs); err != nil {
		s.log.Warn("autosave failed", "err", err)
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
