package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/piscinadeentropia/mrquizzer/internal/quiz"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"MRQUIZZER_DB", "MRQUIZZER_FETCH_PROXY", "MRQUIZZER_REDIS_URL", "MRQUIZZER_SERVER_ADDR", "MRQUIZZER_LLM_PROVIDER", "MRQUIZZER_OPENAI_MODEL"} {
		t.Setenv(k, "")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Play.AutosaveSeconds != 10 || cfg.Server.Addr != "127.0.0.1:8080" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.LLM.Timeout.Std() != 30*time.Second {
		t.Errorf("LLM timeout = %v", cfg.LLM.Timeout.Std())
	}
	if cfg.Prompt.NumberOfQuestions != 10 {
		t.Errorf("prompt defaults not applied: %+v", cfg.Prompt)
	}
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
db: /tmp/quiz.db
llm:
  provider: openai
  model: gpt-4o
  timeout: 45s
fetch:
  proxy_url: https://api.allorigins.win/get?url=
  timeout: 5
play:
  autosave_seconds: 30
progress:
  redis_url: redis://localhost:6379/0
  ttl: 24h
prompt:
  language: es
  number_of_questions: 15
  question_types: [mcq, true_false]
server:
  addr: 0.0.0.0:9000
  cors_origins: ["https://quiz.example"]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DB != "/tmp/quiz.db" || cfg.Play.AutosaveSeconds != 30 {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.LLM.Timeout.Std() != 45*time.Second || cfg.Fetch.Timeout.Std() != 5*time.Second {
		t.Errorf("durations: llm=%v fetch=%v", cfg.LLM.Timeout.Std(), cfg.Fetch.Timeout.Std())
	}
	if cfg.Progress.TTL.Std() != 24*time.Hour || cfg.Progress.RedisURL == "" {
		t.Errorf("progress = %+v", cfg.Progress)
	}
	if cfg.Prompt.Language != "es" || cfg.Prompt.Difficulty != "medium" || len(cfg.Prompt.QuestionTypes) != 2 {
		t.Errorf("prompt = %+v", cfg.Prompt)
	}
	if !cfg.Prompt.HasType(quiz.TypeTrueFalse) {
		t.Error("expected true_false to be selected")
	}
	if len(cfg.Server.CORSOrigins) != 1 || cfg.Server.CORSOrigins[0] != "https://quiz.example" {
		t.Errorf("cors = %v", cfg.Server.CORSOrigins)
	}

	llmCfg := cfg.LLMConfig()
	if llmCfg.Provider != "openai" || llmCfg.OpenAI.Model != "gpt-4o" || llmCfg.Timeout != 45*time.Second {
		t.Errorf("LLMConfig = %+v", llmCfg)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("MRQUIZZER_DB", "/env/quiz.db")
	t.Setenv("MRQUIZZER_LLM_PROVIDER", "gemini")
	path := writeConfig(t, "db: /file/quiz.db\nllm:\n  provider: openai\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DB != "/env/quiz.db" {
		t.Errorf("DB = %q, want env value", cfg.DB)
	}
	if p := cfg.LLMConfig().Provider; p != "gemini" {
		t.Errorf("provider = %q, want gemini", p)
	}
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)
	if _, err := Load(writeConfig(t, "llm:\n  timeout: soon\n")); err == nil {
		t.Error("expected invalid duration to fail")
	}
	if _, err := Load(writeConfig(t, "prompt:\n  difficulty: brutal\n")); err == nil {
		t.Error("expected invalid prompt difficulty to fail")
	}
	if _, err := Load(writeConfig(t, "play: [")); err == nil {
		t.Error("expected malformed YAML to fail")
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("MRQUIZZER_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	if got := DefaultPath(); got != "/xdg/mrquizzer/config.yaml" {
		t.Errorf("DefaultPath = %q", got)
	}
	t.Setenv("MRQUIZZER_CONFIG", "/etc/mrq.yaml")
	if got := DefaultPath(); got != "/etc/mrq.yaml" {
		t.Errorf("DefaultPath = %q", got)
	}
}
