package store

import (
	"context"
	"time"

	"github.com/sichgate/sichgate/internal/report"
	"github.com/sichgate/sichgate/internal/runner"
)

// RunWriter defines persistence for completed assessment runs.
type RunWriter interface {
	SaveRun(ctx context.Context, run *RunRecord) error
}

// RunReader defines read access to run history.
type RunReader interface {
	GetRun(ctx context.Context, id string) (*RunRecord, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]*RunRecord, error)
	GetCaseResults(ctx context.Context, runID string) (map[string][]runner.Result, error)
}

// Store defines persistence for assessment runs.
type Store interface {
	RunWriter
	RunReader
	Close() error
}

// RunRecord stores one completed assessment run. Results maps scenario IDs
// to their case results and is persisted alongside the summary.
type RunRecord struct {
	ID         string          `json:"id"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Adapter    string          `json:"adapter"`
	Model      string          `json:"model"`
	Summary    *report.Summary `json:"summary,omitempty"`

	Results map[string][]runner.Result `json:"-"`
}

// RunFilter filters run listings.
type RunFilter struct {
	Adapter string
	Since   time.Time
	Until   time.Time
	Limit   int
}
