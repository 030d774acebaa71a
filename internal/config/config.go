// Package config loads the optional YAML configuration file and applies
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/piscinadeentropia/mrquizzer/internal/llm"
	"github.com/piscinadeentropia/mrquizzer/internal/quizgen"
	"github.com/piscinadeentropia/mrquizzer/internal/share"
)

// Config is the file-level configuration. Zero values mean "use the
// default"; see Default.
type Config struct {
	DB string `yaml:"db"`

	LLM struct {
		Provider string   `yaml:"provider"`
		Model    string   `yaml:"model"`
		Timeout  Duration `yaml:"timeout"`
	} `yaml:"llm"`

	Fetch struct {
		ProxyURL string   `yaml:"proxy_url"`
		Timeout  Duration `yaml:"timeout"`
	} `yaml:"fetch"`

	Play struct {
		AutosaveSeconds int `yaml:"autosave_seconds"`
	} `yaml:"play"`

	Progress struct {
		RedisURL string   `yaml:"redis_url"`
		TTL      Duration `yaml:"ttl"`
	} `yaml:"progress"`

	Prompt quizgen.Settings `yaml:"prompt"`

	Share struct {
		SiteURL string `yaml:"site_url"`
	} `yaml:"share"`

	Server struct {
		Addr        string   `yaml:"addr"`
		CORSOrigins []string `yaml:"cors_origins"`
	} `yaml:"server"`
}

// Duration is a time.Duration written as "30s" or "2m" in YAML.
type Duration time.Duration

// UnmarshalYAML accepts a Go duration string or a number of seconds.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		*d = Duration(time.Duration(secs) * time.Second)
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("line %d: invalid duration %q", node.Line, raw)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML writes the duration in Go notation.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Default returns the configuration used when no file exists.
func Default() Config {
	var c Config
	c.LLM.Timeout = Duration(30 * time.Second)
	c.Fetch.Timeout = Duration(20 * time.Second)
	c.Play.AutosaveSeconds = 10
	c.Prompt = quizgen.DefaultSettings()
	c.Share.SiteURL = share.DefaultSiteURL
	c.Server.Addr = "127.0.0.1:8080"
	c.Server.CORSOrigins = []string{"*"}
	return c
}

// DefaultPath returns $MRQUIZZER_CONFIG, or config.yaml under the user
// config directory.
func DefaultPath() string {
	if p := os.Getenv("MRQUIZZER_CONFIG"); p != "" {
		return p
	}
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml"
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "mrquizzer", "config.yaml")
}

// Load reads the YAML file at path over the defaults and then applies
// environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	cfg.Prompt = cfg.Prompt.Normalize()
	if err := cfg.Prompt.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: prompt: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("MRQUIZZER_DB"); v != "" {
		c.DB = v
	}
	if v := os.Getenv("MRQUIZZER_FETCH_PROXY"); v != "" {
		c.Fetch.ProxyURL = v
	}
	if v := os.Getenv("MRQUIZZER_REDIS_URL"); v != "" {
		c.Progress.RedisURL = v
	}
	if v := os.Getenv("MRQUIZZER_SERVER_ADDR"); v != "" {
		c.Server.Addr = v
	}
}

// LLMConfig layers the file settings under the MRQUIZZER_* provider
// variables. Credentials only come from the environment.
func (c Config) LLMConfig() llm.Config {
	cfg := llm.DefaultConfig()
	if c.LLM.Provider != "" {
		cfg.Provider = c.LLM.Provider
	}
	cfg = cfg.WithModel(c.LLM.Model)
	if c.LLM.Timeout > 0 {
		cfg.Timeout = c.LLM.Timeout.Std()
	}
	return llm.ApplyEnv(cfg)
}
