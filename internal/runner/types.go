package runner

import (
	"io"
	"time"

	"github.com/sichgate/sichgate/internal/model"
	"github.com/sichgate/sichgate/internal/testcase"
)

// Config defines runner behavior.
type Config struct {
	Concurrency int           // max concurrent cases within a scenario; <=1 runs sequentially
	Timeout     time.Duration // per-case prediction timeout; 0 disables
	Verbose     bool          // per-case progress on Progress
	Progress    io.Writer     // side channel for verbose output; nil discards
}

// Result records the verdict and context for one executed case. Results are
// created exactly once per case execution and never mutated afterwards.
type Result struct {
	TestID        string            `json:"test_id"`
	TestName      string            `json:"test_name"`
	Passed        bool              `json:"passed"`
	Category      testcase.Category `json:"category"`
	Severity      testcase.Severity `json:"severity"`
	Input         string            `json:"input_text"`
	Expected      testcase.Expected `json:"expected_behavior"`
	Actual        model.Outcome     `json:"actual_output"`
	LatencyMs     float64           `json:"latency_ms"`
	Timestamp     time.Time         `json:"timestamp"`
	FailureReason string            `json:"failure_reason,omitempty"` // empty iff Passed
	Metadata      map[string]string `json:"metadata,omitempty"`
}
