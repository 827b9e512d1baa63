package model

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIAdapter runs zero-shot classification through an OpenAI chat model.
// The model is prompted for a strict JSON verdict; the full reply text is
// carried through as the raw payload.
type OpenAIAdapter struct {
	client *openai.Client
	model  string
	labels []string

	counters counters
}

// NewOpenAIAdapter constructs an adapter for the given API key and label set.
func NewOpenAIAdapter(apiKey, baseURL, model string, labels []string) *OpenAIAdapter {
	cfg := openai.DefaultConfig(strings.TrimSpace(apiKey))
	if v := strings.TrimSpace(baseURL); v != "" {
		cfg.BaseURL = strings.TrimRight(v, "/")
	}

	m := strings.TrimSpace(model)
	if m == "" {
		m = "gpt-4o-mini"
	}

	return &OpenAIAdapter{
		client: openai.NewClientWithConfig(cfg),
		model:  m,
		labels: labels,
	}
}

// Name returns the adapter identifier.
func (a *OpenAIAdapter) Name() string {
	return "openai"
}

// Stats returns the adapter's cumulative counters.
func (a *OpenAIAdapter) Stats() Stats {
	if a == nil {
		return Stats{}
	}
	return a.counters.stats()
}

// Predict classifies one input.
func (a *OpenAIAdapter) Predict(ctx context.Context, text string) (*Outcome, error) {
	if a == nil || a.client == nil {
		return nil, errors.New("model: openai: nil adapter")
	}
	if ctx == nil {
		return nil, errors.New("model: openai: nil context")
	}

	req := openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: classifierSystemPrompt(a.labels)},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		MaxTokens:   64,
		Temperature: 0,
	}

	start := time.Now()
	resp, err := a.client.CreateChatCompletion(ctx, req)
	elapsed := time.Since(start)
	a.counters.record(elapsed)
	if err != nil {
		return nil, fmt.Errorf("model: openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("model: openai: empty choices")
	}

	content := resp.Choices[0].Message.Content
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
