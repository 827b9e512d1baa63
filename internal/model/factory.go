package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sichgate/sichgate/internal/config"
)

// FromConfig builds the configured adapter. Construction failures are fatal
// at this boundary: the runner never sees a partially initialized adapter.
func FromConfig(cfg *config.Config) (Adapter, error) {
	if cfg == nil {
		return nil, errors.New("model: nil config")
	}

	ac := cfg.Adapter
	switch strings.ToLower(strings.TrimSpace(ac.Type)) {
	case "", "hf", "huggingface":
		opts := make([]HFOption, 0, 2)
		if strings.TrimSpace(ac.BaseURL) != "" {
			opts = append(opts, WithHFBaseURL(ac.BaseURL))
		}
		if strings.TrimSpace(ac.Model) != "" {
			opts = append(opts, WithHFModel(ac.Model))
		}
		return NewHFAdapter(ac.APIKey, opts...), nil
	case "openai":
		if strings.TrimSpace(ac.APIKey) == "" {
			return nil, errors.New("model: openai adapter requires an api key (set OPENAI_API_KEY)")
		}
		return NewOpenAIAdapter(ac.APIKey, ac.BaseURL, ac.Model, ac.Labels), nil
	case "claude", "anthropic":
		if strings.TrimSpace(ac.APIKey) == "" {
			return nil, errors.New("model: claude adapter requires an api key (set ANTHROPIC_API_KEY)")
		}
		return NewClaudeAdapter(ac.APIKey, ac.BaseURL, ac.Model, ac.Labels), nil
	default:
		return nil, fmt.Errorf("model: unknown adapter type %q", ac.Type)
	}
}
