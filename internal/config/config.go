package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultPath = "configs/config.yaml"

type Config struct {
	Adapter AdapterConfig `yaml:"adapter"`
	Run     RunConfig     `yaml:"run"`
	Storage StorageConfig `yaml:"storage"`
	Report  ReportConfig  `yaml:"report"`
}

type AdapterConfig struct {
	Type    string   `yaml:"type,omitempty"` // "hf", "openai", or "claude"
	APIKey  string   `yaml:"api_key,omitempty"`
	BaseURL string   `yaml:"base_url,omitempty"`
	Model   string   `yaml:"model,omitempty"`
	Labels  []string `yaml:"labels,omitempty"` // label set for prompted classifiers
}

type RunConfig struct {
	Concurrency int           `yaml:"concurrency,omitempty"`
	Timeout     time.Duration `yaml:"timeout,omitempty"`
	Verbose     bool          `yaml:"verbose,omitempty"`
}

type StorageConfig struct {
	Type string `yaml:"type,omitempty"` // "sqlite" or "memory"
	Path string `yaml:"path,omitempty"` // SQLite file path
}

type ReportConfig struct {
	OutputDir string `yaml:"output_dir,omitempty"`
}

// Load reads a config file and applies defaults and environment overrides.
// A missing file at the default path is not an error: the harness runs with
// defaults, matching a bare `sichgate run` invocation. An explicitly given
// path must exist.
func Load(path string) (*Config, error) {
	trimmed := strings.TrimSpace(path)
	usingDefault := trimmed == ""
	if usingDefault {
		trimmed = DefaultPath
	}

	var cfg Config
	b, err := os.ReadFile(trimmed)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %q: %w", trimmed, err)
		}
	case errors.Is(err, fs.ErrNotExist) && (usingDefault || trimmed == DefaultPath):
		// Fall through to defaults.
	default:
		return nil, fmt.Errorf("config: read %q: %w", trimmed, err)
	}

	applyDefaults(&cfg)
	applyEnv(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.Adapter.Type) == "" {
		cfg.Adapter.Type = "hf"
	}
	if strings.TrimSpace(cfg.Adapter.Model) == "" {
		cfg.Adapter.Model = "distilbert/distilbert-base-uncased-finetuned-sst-2-english"
	}
	if len(cfg.Adapter.Labels) == 0 {
		cfg.Adapter.Labels = []string{"POSITIVE", "NEGATIVE"}
	}
	if cfg.Run.Concurrency <= 0 {
		cfg.Run.Concurrency = 1
	}
	if strings.TrimSpace(cfg.Storage.Type) == "" {
		cfg.Storage.Type = "sqlite"
	}
	if strings.TrimSpace(cfg.Storage.Path) == "" {
		cfg.Storage.Path = "results/sichgate.db"
	}
	if strings.TrimSpace(cfg.Report.OutputDir) == "" {
		cfg.Report.OutputDir = "results"
	}
}

func applyEnv(cfg *Config) {
	if strings.TrimSpace(cfg.Adapter.APIKey) != "" {
		return
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Adapter.Type)) {
	case "hf", "huggingface":
		if v := strings.TrimSpace(os.Getenv("HF_API_TOKEN")); v != "" {
			cfg.Adapter.APIKey = v
		}
	case "openai":
		if v := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); v != "" {
			cfg.Adapter.APIKey = v
		}
	case "claude", "anthropic":
		if v := strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY")); v != "" {
			cfg.Adapter.APIKey = v
		} else if v := strings.TrimSpace(os.Getenv("ANTHROPIC_AUTH_TOKEN")); v != "" {
			cfg.Adapter.APIKey = v
		}
	}
}
