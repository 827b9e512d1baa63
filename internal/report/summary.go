// Package report computes read-only summaries from a runner's result log.
// A Summary is a derived view: recomputed on demand, never persisted state.
package report

import (
	"errors"
	"math"

	"github.com/sichgate/sichgate/internal/model"
	"github.com/sichgate/sichgate/internal/runner"
	"github.com/sichgate/sichgate/internal/testcase"
)

// ErrNoResults is returned when a summary is requested over an empty log.
// Callers must not attempt percentage arithmetic on an empty log.
var ErrNoResults = errors.New("report: no results to aggregate")

// CategoryStats summarizes results for one threat category.
type CategoryStats struct {
	Total    int     `json:"total"`
	Passed   int     `json:"passed"`
	Failed   int     `json:"failed"`
	PassRate float64 `json:"pass_rate"`
}

// LatencyStats summarizes per-result latencies in milliseconds. Computed
// from the result log, not from the adapter's counters; the two views can
// diverge when the adapter is queried outside the runner and are reported
// side by side without reconciliation.
type LatencyStats struct {
	AverageMs float64 `json:"average_latency_ms"`
	MinMs     float64 `json:"min_latency_ms"`
	MaxMs     float64 `json:"max_latency_ms"`
}

// Summary is the aggregate view over a result log.
type Summary struct {
	TotalTests int      `json:"total_tests"`
	Passed     int      `json:"passed"`
	Failed     int      `json:"failed"`
	PassRate   float64  `json:"pass_rate"`
	RiskTier   RiskTier `json:"risk_tier"`

	// FailuresBySeverity always carries every severity level, including
	// zero-count ones. ResultsByCategory carries only categories present
	// in the log; the asymmetry is deliberate.
	FailuresBySeverity map[testcase.Severity]int           `json:"failures_by_severity"`
	ResultsByCategory  map[testcase.Category]CategoryStats `json:"results_by_category"`

	Performance LatencyStats `json:"performance"`
	Adapter     model.Stats  `json:"model_stats"`
}

// Summarize computes a Summary over a result log and the adapter's own
// counters. Deterministic: the same log always yields the same summary.
func Summarize(results []runner.Result, adapterStats model.Stats) (*Summary, error) {
	if len(results) == 0 {
		return nil, ErrNoResults
	}

	s := &Summary{
		TotalTests:         len(results),
		FailuresBySeverity: make(map[testcase.Severity]int, len(testcase.Severities())),
		ResultsByCategory:  make(map[testcase.Category]CategoryStats),
		Adapter:            adapterStats,
	}
	for _, sev := range testcase.Severities() {
		s.FailuresBySeverity[sev] = 0
	}

	var latencySum float64
	minLatency := math.Inf(1)
	maxLatency := math.Inf(-1)

	for _, r := range results {
		if r.Passed {
			s.Passed++
		} else {
			s.Failed++
			s.FailuresBySeverity[r.Severity]++
		}

		cs := s.ResultsByCategory[r.Category]
		cs.Total++
		if r.Passed {
			cs.Passed++
		} else {
			cs.Failed++
		}
		s.ResultsByCategory[r.Category] = cs

		latencySum += r.LatencyMs
		minLatency = math.Min(minLatency, r.LatencyMs)
		maxLatency = math.Max(maxLatency, r.LatencyMs)
	}

	s.PassRate = float64(s.Passed) / float64(s.TotalTests)
	s.RiskTier = TierForPassRate(s.PassRate)

	for cat, cs := range s.ResultsByCategory {
		cs.PassRate = float64(cs.Passed) / float64(cs.Total)
		s.ResultsByCategory[cat] = cs
	}

	s.Performance = LatencyStats{
		AverageMs: round(latencySum/float64(s.TotalTests), 2),
		MinMs:     round(minLatency, 2),
		MaxMs:     round(maxLatency, 2),
	}

	return s, nil
}

func round(v float64, places int) float64 {
	scale := math.Pow10(places)
	return math.Round(v*scale) / scale
}
