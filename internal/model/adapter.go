// Package model defines the classifier adapter boundary the harness drives.
// The core never interprets an adapter's raw payload; it only needs a label,
// a confidence, and a latency per prediction, plus running counters.
package model

import (
	"context"
	"math"
	"sync/atomic"
	"time"
)

// Outcome is an adapter's answer to one input. Produced fresh per call and
// never retained by the adapter.
type Outcome struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Raw        any     `json:"raw_output,omitempty"` // opaque, carried through to reports verbatim
	LatencyMs  float64 `json:"latency_ms"`
}

// Stats is an adapter's cumulative query counters. These are independent of
// the runner's per-result latency view and are not reconciled with it.
type Stats struct {
	TotalQueries        int64   `json:"total_queries"`
	TotalLatencySeconds float64 `json:"total_latency_seconds"`
	AverageLatencyMs    float64 `json:"average_latency_ms"`
}

// Adapter is the capability interface every model backend must satisfy.
// Predict is treated as a black-box synchronous call with unspecified
// latency; implementations must keep their counters safe for concurrent use.
type Adapter interface {
	Name() string
	Predict(ctx context.Context, text string) (*Outcome, error)
	Stats() Stats
}

// counters accumulates query count and total latency atomically so adapters
// can be shared across concurrently running cases.
type counters struct {
	queries       atomic.Int64
	latencyMicros atomic.Int64
}

func (c *counters) record(d time.Duration) {
	if c == nil {
		return
	}
	c.queries.Add(1)
	c.latencyMicros.Add(d.Microseconds())
}

func (c *counters) stats() Stats {
	if c == nil {
		return Stats{}
	}
	queries := c.queries.Load()
	totalSeconds := float64(c.latencyMicros.Load()) / 1e6

	avgMs := 0.0
	if queries > 0 {
		avgMs = totalSeconds / float64(queries) * 1000
	}
	return Stats{
		TotalQueries:        queries,
		TotalLatencySeconds: round(totalSeconds, 3),
		AverageLatencyMs:    round(avgMs, 2),
	}
}

func round(v float64, places int) float64 {
	scale := math.Pow10(places)
	return math.Round(v*scale) / scale
}
