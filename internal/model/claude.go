package model

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// ClaudeAdapter runs zero-shot classification through a Claude model using
// the same JSON-verdict prompt as the OpenAI adapter.
type ClaudeAdapter struct {
	client *anthropic.Client
	model  string
	labels []string

	counters counters
}

// NewClaudeAdapter constructs an adapter for the given API key and label set.
func NewClaudeAdapter(apiKey, baseURL, model string, labels []string) *ClaudeAdapter {
	opts := make([]option.RequestOption, 0, 2)
	if v := strings.TrimSpace(apiKey); v != "" {
		opts = append(opts, option.WithAPIKey(v))
	}
	if v := strings.TrimSpace(baseURL); v != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(v, "/")))
	}

	m := strings.TrimSpace(model)
	if m == "" {
		m = "claude-sonnet-4-5-20250929"
	}

	client := anthropic.NewClient(opts...)
	return &ClaudeAdapter{
		client: &client,
		model:  m,
		labels: labels,
	}
}

// Name returns the adapter identifier.
func (a *ClaudeAdapter) Name() string {
	return "claude"
}

// Stats returns the adapter's cumulative counters.
func (a *ClaudeAdapter) Stats() Stats {
	if a == nil {
		return Stats{}
	}
	return a.counters.stats()
}

// Predict classifies one input.
func (a *ClaudeAdapter) Predict(ctx context.Context, text string) (*Outcome, error) {
	if a == nil || a.client == nil {
		return nil, errors.New("model: claude: nil adapter")
	}
	if ctx == nil {
		return nil, errors.New("model: claude: nil context")
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: 64,
		System: []anthropic.TextBlockParam{{
			Text: classifierSystemPrompt(a.labels),
			Type: "text",
		}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		},
	}

	start := time.Now()
	msg, err := a.client.Messages.New(ctx, params)
	elapsed := time.Since(start)
	a.counters.record(elapsed)
	if err != nil {
		return nil, fmt.Errorf("model: claude: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type != "text" {
			continue
		}
		sb.WriteString(block.AsText().Text)
	}

	content := sb.String()
	label, confidence, err := parseClassification(content, a.labels)
	if err != nil {
		return nil, err
	}

	return &Outcome{
		Label:      label,
		Confidence: confidence,
		Raw:        content,
		LatencyMs:  round(float64(elapsed.Microseconds())/1000, 2),
	}, nil
}
