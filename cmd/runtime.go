package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/piscinadeentropia/mrquizzer/internal/app"
	"github.com/piscinadeentropia/mrquizzer/internal/config"
	"github.com/piscinadeentropia/mrquizzer/internal/library"
	"github.com/piscinadeentropia/mrquizzer/internal/llm"
	"github.com/piscinadeentropia/mrquizzer/internal/quiz"
	"github.com/piscinadeentropia/mrquizzer/internal/quizgen"
	"github.com/piscinadeentropia/mrquizzer/internal/screen"
	"github.com/piscinadeentropia/mrquizzer/internal/session"
	"github.com/piscinadeentropia/mrquizzer/internal/share"
	"github.com/piscinadeentropia/mrquizzer/internal/source"
	"github.com/piscinadeentropia/mrquizzer/internal/store"
	"github.com/piscinadeentropia/mrquizzer/internal/store/redisprogress"
)

// errNoQuiz is returned by commands that need a loaded quiz.
var errNoQuiz = errors.New("no quiz loaded; run `mrquizzer load <file>` first")

// runtime holds the configuration and the open stores for one command.
type runtime struct {
	cfg      config.Config
	store    *store.Store
	progress store.ProgressRepo
	lib      *library.Library
	closers  []func() error
}

// openStore loads the config and opens the database only.
func openStore(cmd *cobra.Command) (config.Config, *store.Store, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, nil, fmt.Errorf("load config: %w", err)
	}

	dbPath, err := resolveDBPath(cmd, cfg.DB)
	if err != nil {
		return cfg, nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return cfg, nil, fmt.Errorf("open database: %w", err)
	}
	return cfg, st, nil
}

// openRuntime loads the config and opens the stores. Progress goes to
// redis when progress.redis_url is configured.
func openRuntime(cmd *cobra.Command) (*runtime, error) {
	cfg, st, err := openStore(cmd)
	if err != nil {
		return nil, err
	}
	rt := &runtime{cfg: cfg, store: st, progress: st.ProgressRepo()}
	rt.closers = append(rt.closers, st.Close)

	if url := cfg.Progress.RedisURL; url != "" {
		rp, err := redisprogress.Open(cmd.Context(), url, cfg.Progress.TTL.Std())
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("connect progress store: %w", err)
		}
		rt.progress = rp
		rt.closers = append(rt.closers, rp.Close)
		slog.Debug("progress stored in redis", "url", url)
	}

	rt.lib = library.New(st.QuizRepo(), rt.progress)
	return rt, nil
}

// Close releases the stores in reverse order of opening.
func (rt *runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			slog.Warn("close", "err", err)
		}
	}
	rt.closers = nil
}

func (rt *runtime) sessionOptions() session.Options {
	return session.Options{
		Progress:      rt.progress,
		Events:        rt.store.EventRepo(),
		AutosaveEvery: rt.cfg.Play.AutosaveSeconds,
	}
}

// currentSession opens a session on the current quiz.
func (rt *runtime) currentSession(ctx context.Context) (*session.Session, error) {
	return rt.openSession(ctx, rt.sessionOptions())
}

// viewSession opens the current quiz's session without recording events,
// for commands that only read it.
func (rt *runtime) viewSession(ctx context.Context) (*session.Session, error) {
	return rt.openSession(ctx, session.Options{Progress: rt.progress})
}

func (rt *runtime) openSession(ctx context.Context, opts session.Options) (*session.Session, error) {
	q, err := rt.lib.Current(ctx)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, errNoQuiz
	}
	return session.New(ctx, q, opts)
}

// provider builds the LLM provider from the config and environment.
func (rt *runtime) provider(ctx context.Context) (llm.Provider, error) {
	cfg, err := llm.Resolve(rt.cfg.LLMConfig())
	if err != nil {
		return nil, err
	}
	return llm.NewProvider(ctx, cfg, rt.store.EventRepo())
}

func (rt *runtime) fetcher() *source.Fetcher {
	return &source.Fetcher{
		Client:   &http.Client{Timeout: rt.cfg.Fetch.Timeout.Std()},
		ProxyURL: rt.cfg.Fetch.ProxyURL,
	}
}

// screenEnv wires the services the TUI screens use. AI features are
// disabled when no provider is configured.
func (rt *runtime) screenEnv(ctx context.Context) *screen.Env {
	env := &screen.Env{
		Library:       rt.lib,
		Progress:      rt.progress,
		Events:        rt.store.EventRepo(),
		Sources:       rt.store.SourceRepo(),
		Fetcher:       rt.fetcher(),
		Clipboard:     screen.SystemClipboard{},
		Prompt:        rt.cfg.Prompt,
		AutosaveEvery: rt.cfg.Play.AutosaveSeconds,
		ShareSite:     rt.cfg.Share.SiteURL,
	}
	provider, err := rt.provider(ctx)
	if err != nil {
		slog.Info("AI features unavailable", "err", err)
		return env
	}
	env.Generator = quizgen.NewGenerator(provider, quizgen.DefaultConfig())
	env.Explainer = quizgen.NewExplainer(provider)
	return env
}

// runTUI starts the terminal UI on the configured stores.
func runTUI(cmd *cobra.Command, opts app.Options) error {
	rt, err := openRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	env := rt.screenEnv(cmd.Context())
	quietLogging()
	return app.Run(env, opts)
}

// readInput returns the contents of path, or of stdin for "-". With link
// set the argument is a shared test link instead.
func readInput(cmd *cobra.Command, arg string, link bool) (string, error) {
	if link {
		raw, err := share.DecodeTestLink(arg)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}
	if arg == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		return string(data), err
	}
	data, err := os.ReadFile(arg)
	return string(data), err
}

// printIssues lists contract issues on w, one per line.
func printIssues(w io.Writer, issues []quiz.Issue) {
	for _, issue := range issues {
		fmt.Fprintf(w, "  - %s\n", issue)
	}
}

// warn prints a warning line to stderr.
func warn(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.ErrOrStderr(), "warning: "+format+"\n", args...)
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, strings.TrimSuffix(word, "s"))
}
