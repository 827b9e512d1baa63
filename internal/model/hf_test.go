package model

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestHFAdapter_Predict(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/test-model" {
			http.Error(w, "wrong path", http.StatusNotFound)
			return
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			http.Error(w, "missing auth", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[[{"label":"NEGATIVE","score":0.97},{"label":"POSITIVE","score":0.03}]]`))
	}))
	t.Cleanup(srv.Close)

	a := NewHFAdapter("tok", WithHFBaseURL(srv.URL), WithHFModel("test-model"))

	out, err := a.Predict(context.Background(), "This product is absolutely terrible and broke immediately.")
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if out.Label != "NEGATIVE" {
		t.Fatalf("Label: got %q want NEGATIVE", out.Label)
	}
	if out.Confidence != 0.97 {
		t.Fatalf("Confidence: got %v want 0.97", out.Confidence)
	}
	if out.Raw == nil {
		t.Fatalf("Raw: nil payload")
	}
	if out.LatencyMs < 0 {
		t.Fatalf("LatencyMs: got %v", out.LatencyMs)
	}

	stats := a.Stats()
	if stats.TotalQueries != 1 {
		t.Fatalf("TotalQueries: got %d want 1", stats.TotalQueries)
	}
}

func TestHFAdapter_FlatResponseShape(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"label":"POSITIVE","score":0.88},{"label":"NEGATIVE","score":0.12}]`))
	}))
	t.Cleanup(srv.Close)

	a := NewHFAdapter("", WithHFBaseURL(srv.URL))
	out, err := a.Predict(context.Background(), "great stuff")
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if out.Label != "POSITIVE" || out.Confidence != 0.88 {
		t.Fatalf("got %q/%v", out.Label, out.Confidence)
	}
}

func TestHFAdapter_RetriesOnServerError(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, `{"error":"model loading"}`, http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[[{"label":"NEGATIVE","score":0.9}]]`))
	}))
	t.Cleanup(srv.Close)

	a := NewHFAdapter("", WithHFBaseURL(srv.URL))
	a.retryBase = time.Millisecond

	out, err := a.Predict(context.Background(), "meh")
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if out.Label != "NEGATIVE" {
		t.Fatalf("Label: got %q", out.Label)
	}
	if calls.Load() != 2 {
		t.Fatalf("calls: got %d want 2", calls.Load())
	}
}

func TestHFAdapter_APIError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"bad token"}`, http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	a := NewHFAdapter("bad", WithHFBaseURL(srv.URL))
	if _, err := a.Predict(context.Background(), "x"); err == nil {
		t.Fatalf("Predict: expected error")
	}

	// Failed calls still count toward the adapter's query counters.
	if got := a.Stats().TotalQueries; got != 1 {
		t.Fatalf("TotalQueries: got %d want 1", got)
	}
}

func TestCounters_ConcurrentRecord(t *testing.T) {
	t.Parallel()

	var c counters
	const n = 64

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.record(10 * time.Millisecond)
		}()
	}
	wg.Wait()

	stats := c.stats()
	if stats.TotalQueries != n {
		t.Fatalf("TotalQueries: got %d want %d", stats.TotalQueries, n)
	}
	if stats.TotalLatencySeconds != 0.64 {
		t.Fatalf("TotalLatencySeconds: got %v want 0.64", stats.TotalLatencySeconds)
	}
	if stats.AverageLatencyMs != 10 {
		t.Fatalf("AverageLatencyMs: got %v want 10", stats.AverageLatencyMs)
	}
}
