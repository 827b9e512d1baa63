package model

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	hfDefaultBaseURL = "https://api-inference.huggingface.co"
	hfDefaultModel   = "distilbert/distilbert-base-uncased-finetuned-sst-2-english"
	hfRetryMax       = 2
	hfRetryBaseDelay = time.Second
)

// HFOption configures an HFAdapter.
type HFOption func(*HFAdapter)

// WithHFBaseURL sets the inference API base URL.
func WithHFBaseURL(baseURL string) HFOption {
	return func(a *HFAdapter) {
		if a == nil {
			return
		}
		baseURL = strings.TrimSpace(baseURL)
		if baseURL == "" {
			return
		}
		a.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHFModel sets the hosted model name.
func WithHFModel(model string) HFOption {
	return func(a *HFAdapter) {
		if a == nil {
			return
		}
		model = strings.TrimSpace(model)
		if model == "" {
			return
		}
		a.model = model
	}
}

// WithHFHTTPClient sets the HTTP client used for inference calls.
func WithHFHTTPClient(c *http.Client) HFOption {
	return func(a *HFAdapter) {
		if a == nil || c == nil {
			return
		}
		a.httpClient = c
	}
}

// HFAdapter classifies text with a hosted HuggingFace sequence-classification
// model via the Inference API. The highest-scoring label wins; the decoded
// score list is carried through as the raw payload.
type HFAdapter struct {
	token      string
	baseURL    string
	model      string
	httpClient *http.Client
	retryMax   int
	retryBase  time.Duration

	counters counters
}

// NewHFAdapter constructs an adapter for the given API token. An empty token
// is allowed; public models accept unauthenticated (rate-limited) calls.
func NewHFAdapter(token string, opts ...HFOption) *HFAdapter {
	a := &HFAdapter{
		token:      strings.TrimSpace(token),
		baseURL:    hfDefaultBaseURL,
		model:      hfDefaultModel,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		retryMax:   hfRetryMax,
		retryBase:  hfRetryBaseDelay,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// Name returns the adapter identifier.
func (a *HFAdapter) Name() string {
	return "hf"
}

// Stats returns the adapter's cumulative counters.
func (a *HFAdapter) Stats() Stats {
	if a == nil {
		return Stats{}
	}
	return a.counters.stats()
}

// APIError represents a non-2xx response from the inference API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("model: hf: status %d: %s", e.StatusCode, truncate(e.Body, 200))
}

type hfScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Predict sends one input to the hosted model and returns the argmax label.
func (a *HFAdapter) Predict(ctx context.Context, text string) (*Outcome, error) {
	if a == nil || a.httpClient == nil {
		return nil, errors.New("model: hf: nil adapter")
	}
	if ctx == nil {
		return nil, errors.New("model: hf: nil context")
	}

	body, err := json.Marshal(map[string]any{
		"inputs":  text,
		"options": map[string]any{"wait_for_model": true},
	})
	if err != nil {
		return nil, fmt.Errorf("model: hf: encode request: %w", err)
	}

	start := time.Now()
	raw, err := a.doWithRetry(ctx, body)
	elapsed := time.Since(start)
	a.counters.record(elapsed)
	if err != nil {
		return nil, err
	}

	scores, err := decodeHFScores(raw)
	if err != nil {
		return nil, err
	}

	best := scores[0]
	for _, s := range scores[1:] {
		if s.Score > best.Score {
			best = s
		}
	}

	var rawPayload any
	if err := json.Unmarshal(raw, &rawPayload); err != nil {
		rawPayload = string(raw)
	}

	return &Outcome{
		Label:      best.Label,
		Confidence: best.Score,
		Raw:        rawPayload,
		LatencyMs:  round(float64(elapsed.Microseconds())/1000, 2),
	}, nil
}

func (a *HFAdapter) doWithRetry(ctx context.Context, body []byte) ([]byte, error) {
	retryMax := a.retryMax
	if retryMax < 0 {
		retryMax = 0
	}
	retryBase := a.retryBase
	if retryBase <= 0 {
		retryBase = hfRetryBaseDelay
	}

	url := a.baseURL + "/models/" + a.model
	for attempt := 0; ; attempt++ {
		raw, err := a.doOnce(ctx, url, body)
		if err == nil {
			return raw, nil
		}

		var apiErr *APIError
		retryable := errors.As(err, &apiErr) &&
			(apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500)
		if !retryable || attempt >= retryMax {
			return nil, err
		}

		delay := retryBase << attempt
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (a *HFAdapter) doOnce(ctx context.Context, url string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("model: hf: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("model: hf: request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("model: hf: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return raw, nil
}

// decodeHFScores accepts both response shapes the inference API produces for
// sequence classification: [[{label,score}...]] and [{label,score}...].
func decodeHFScores(raw []byte) ([]hfScore, error) {
	var nested [][]hfScore
	if err := json.Unmarshal(raw, &nested); err == nil && len(nested) > 0 && len(nested[0]) > 0 {
		return nested[0], nil
	}

	var flat []hfScore
	if err := json.Unmarshal(raw, &flat); err == nil && len(flat) > 0 {
		return flat, nil
	}

	return nil, fmt.Errorf("model: hf: unexpected response shape: %s", truncate(string(raw), 200))
}
