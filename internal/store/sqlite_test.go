package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/sichgate/sichgate/internal/report"
	"github.com/sichgate/sichgate/internal/runner"
	"github.com/sichgate/sichgate/internal/testcase"
)

func newMemoryStore(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func sampleRun(id string, started time.Time) *RunRecord {
	return &RunRecord{
		ID:         id,
		StartedAt:  started,
		FinishedAt: started.Add(30 * time.Second),
		Adapter:    "hf",
		Model:      "distilbert-base-uncased-finetuned-sst-2-english",
		Summary: &report.Summary{
			TotalTests: 2,
			Passed:     1,
			Failed:     1,
			PassRate:   0.5,
			RiskTier:   report.RiskHigh,
			FailuresBySeverity: map[testcase.Severity]int{
				testcase.SeverityCritical: 1,
				testcase.SeverityHigh:     0,
				testcase.SeverityMedium:   0,
				testcase.SeverityLow:      0,
				testcase.SeverityInfo:     0,
			},
			ResultsByCategory: map[testcase.Category]report.CategoryStats{
				testcase.BehavioralSubversion: {Total: 2, Passed: 1, Failed: 1, PassRate: 0.5},
			},
		},
		Results: map[string][]runner.Result{
			"scenario_a": {
				{TestID: "T1", Passed: true, Category: testcase.BehavioralSubversion, Severity: testcase.SeverityHigh},
				{TestID: "T2", Passed: false, Category: testcase.BehavioralSubversion, Severity: testcase.SeverityCritical,
					FailureReason: "Expected 'NEGATIVE' but got 'POSITIVE'"},
			},
		},
	}
}

func TestSaveAndGetRun(t *testing.T) {
	t.Parallel()
	st := newMemoryStore(t)
	ctx := context.Background()

	started := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	if err := st.SaveRun(ctx, sampleRun("run-1", started)); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	got, err := st.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.ID != "run-1" || got.Adapter != "hf" {
		t.Fatalf("GetRun: got %+v", got)
	}
	if !got.StartedAt.Equal(started) {
		t.Fatalf("StartedAt: got %v want %v", got.StartedAt, started)
	}
	if got.Summary == nil || got.Summary.TotalTests != 2 || got.Summary.RiskTier != report.RiskHigh {
		t.Fatalf("Summary: got %+v", got.Summary)
	}
	if got.Summary.FailuresBySeverity[testcase.SeverityCritical] != 1 {
		t.Fatalf("FailuresBySeverity: got %v", got.Summary.FailuresBySeverity)
	}
}

func TestGetRunNotFound(t *testing.T) {
	t.Parallel()
	st := newMemoryStore(t)

	_, err := st.GetRun(context.Background(), "missing")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("GetRun(missing): got %v want sql.ErrNoRows", err)
	}
}

func TestGetCaseResults(t *testing.T) {
	t.Parallel()
	st := newMemoryStore(t)
	ctx := context.Background()

	started := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	if err := st.SaveRun(ctx, sampleRun("run-1", started)); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	results, err := st.GetCaseResults(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetCaseResults: %v", err)
	}
	cases, ok := results["scenario_a"]
	if !ok {
		t.Fatalf("GetCaseResults: missing scenario_a, got %v", results)
	}
	if len(cases) != 2 {
		t.Fatalf("GetCaseResults: got %d cases want 2", len(cases))
	}
	if cases[1].FailureReason != "Expected 'NEGATIVE' but got 'POSITIVE'" {
		t.Fatalf("FailureReason: got %q", cases[1].FailureReason)
	}
}

func TestListRuns(t *testing.T) {
	t.Parallel()
	st := newMemoryStore(t)
	ctx := context.Background()

	base := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"run-1", "run-2", "run-3"} {
		run := sampleRun(id, base.Add(time.Duration(i)*time.Hour))
		if err := st.SaveRun(ctx, run); err != nil {
			t.Fatalf("SaveRun(%s): %v", id, err)
		}
	}

	runs, err := st.ListRuns(ctx, RunFilter{})
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("ListRuns: got %d runs want 3", len(runs))
	}
	// Newest first.
	if runs[0].ID != "run-3" || runs[2].ID != "run-1" {
		t.Fatalf("ListRuns order: got %s..%s", runs[0].ID, runs[2].ID)
	}

	runs, err = st.ListRuns(ctx, RunFilter{Limit: 1})
	if err != nil {
		t.Fatalf("ListRuns(limit): %v", err)
	}
	if len(runs) != 1 || runs[0].ID != "run-3" {
		t.Fatalf("ListRuns(limit): got %v", runs)
	}

	runs, err = st.ListRuns(ctx, RunFilter{Since: base.Add(90 * time.Minute)})
	if err != nil {
		t.Fatalf("ListRuns(since): %v", err)
	}
	if len(runs) != 1 || runs[0].ID != "run-3" {
		t.Fatalf("ListRuns(since): got %v", runs)
	}

	runs, err = st.ListRuns(ctx, RunFilter{Adapter: "openai"})
	if err != nil {
		t.Fatalf("ListRuns(adapter): %v", err)
	}
	if len(runs) != 0 {
		t.Fatalf("ListRuns(adapter): got %d runs want 0", len(runs))
	}
}

func TestSaveRunValidation(t *testing.T) {
	t.Parallel()
	st := newMemoryStore(t)
	ctx := context.Background()
	started := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)

	if err := st.SaveRun(ctx, nil); err == nil {
		t.Fatal("SaveRun(nil): expected error")
	}

	run := sampleRun("", started)
	if err := st.SaveRun(ctx, run); err == nil {
		t.Fatal("SaveRun(empty id): expected error")
	}

	run = sampleRun("run-x", started)
	run.Summary = nil
	if err := st.SaveRun(ctx, run); err == nil {
		t.Fatal("SaveRun(nil summary): expected error")
	}

	run = sampleRun("run-y", started)
	run.StartedAt = time.Time{}
	if err := st.SaveRun(ctx, run); err == nil {
		t.Fatal("SaveRun(zero timestamp): expected error")
	}
}

func TestSaveRunDuplicateID(t *testing.T) {
	t.Parallel()
	st := newMemoryStore(t)
	ctx := context.Background()
	started := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)

	if err := st.SaveRun(ctx, sampleRun("run-1", started)); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if err := st.SaveRun(ctx, sampleRun("run-1", started)); err == nil {
		t.Fatal("SaveRun(duplicate): expected error")
	}
}

func TestFileBackedStore(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "sichgate.db")

	st, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore(%s): %v", path, err)
	}
	ctx := context.Background()
	started := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	if err := st.SaveRun(ctx, sampleRun("run-1", started)); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Reopen and read back.
	st2, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer st2.Close()
	got, err := st2.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRun after reopen: %v", err)
	}
	if got.Summary == nil || got.Summary.TotalTests != 2 {
		t.Fatalf("GetRun after reopen: got %+v", got.Summary)
	}
}
