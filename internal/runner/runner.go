// Package runner drives execution of test cases against a model adapter,
// evaluates outcomes, and accumulates an append-only result log.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sichgate/sichgate/internal/evaluator"
	"github.com/sichgate/sichgate/internal/model"
	"github.com/sichgate/sichgate/internal/testcase"
)

// lowConfidenceThreshold marks mismatches worth a confidence caveat in the
// failure reason. Advisory text only; never affects the verdict.
const lowConfidenceThreshold = 0.6

// Runner executes cases and scenarios against a single adapter. Every
// executed case yields exactly one Result in the cumulative log, regardless
// of adapter or evaluator failures.
type Runner struct {
	adapter  model.Adapter
	registry *evaluator.Registry
	cfg      Config

	mu      sync.Mutex
	results []Result
}

// New creates a Runner with defaults applied.
func New(adapter model.Adapter, registry *evaluator.Registry, cfg Config) *Runner {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.Progress == nil {
		cfg.Progress = io.Discard
	}
	return &Runner{
		adapter:  adapter,
		registry: registry,
		cfg:      cfg,
	}
}

// Results returns a snapshot of the cumulative result log.
func (r *Runner) Results() []Result {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Result, len(r.results))
	copy(out, r.results)
	return out
}

// RunCase executes one case: predict, evaluate, record. Case-level faults
// (adapter call failure, evaluator failure, label mismatch) are captured as
// field values on the Result; the returned error covers only misuse of the
// runner itself.
func (r *Runner) RunCase(ctx context.Context, tc *testcase.TestCase) (*Result, error) {
	if r == nil {
		return nil, errors.New("runner: nil runner")
	}
	if ctx == nil {
		return nil, errors.New("runner: nil context")
	}
	if r.adapter == nil {
		return nil, errors.New("runner: nil adapter")
	}
	if r.registry == nil {
		return nil, errors.New("runner: nil evaluator registry")
	}
	if tc == nil {
		return nil, errors.New("runner: nil test case")
	}

	res := r.runCase(ctx, tc)

	r.mu.Lock()
	r.results = append(r.results, res)
	r.mu.Unlock()

	return &res, nil
}

func (r *Runner) runCase(ctx context.Context, tc *testcase.TestCase) Result {
	res := Result{
		TestID:    tc.ID,
		TestName:  tc.Name,
		Category:  tc.Category,
		Severity:  tc.Severity,
		Input:     tc.Input,
		Expected:  tc.Expected,
		Timestamp: time.Now(),
		Metadata:  tc.Metadata,
	}

	predictCtx := ctx
	var cancel context.CancelFunc
	if r.cfg.Timeout > 0 {
		predictCtx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	outcome, err := r.adapter.Predict(predictCtx, tc.Input)
	if err != nil {
		res.FailureReason = fmt.Sprintf("prediction error: %v", err)
		return res
	}
	if outcome == nil {
		res.FailureReason = "prediction error: adapter returned no outcome"
		return res
	}
	res.Actual = *outcome
	res.LatencyMs = outcome.LatencyMs

	eval, ok := r.registry.Resolve(tc.Evaluator)
	if !ok {
		// Harness misconfiguration, not a model fault.
		res.FailureReason = fmt.Sprintf("evaluation error: unknown evaluator %q", tc.Evaluator)
		return res
	}

	passed, err := eval.Evaluate(outcome, tc.Expected)
	if err != nil {
		res.FailureReason = fmt.Sprintf("evaluation error: %v", err)
		return res
	}

	res.Passed = passed
	if !passed {
		res.FailureReason = failureReason(outcome, tc.Expected)
	}
	return res
}

// RunScenario executes every case in scenario order, returning results in
// that same order. With Concurrency > 1, cases run in parallel and the
// cumulative log receives entries in completion order; the returned slice
// stays in case order either way. Cancellation between cases leaves a valid
// partial log.
func (r *Runner) RunScenario(ctx context.Context, sc *testcase.TestScenario) ([]Result, error) {
	if r == nil {
		return nil, errors.New("runner: nil runner")
	}
	if ctx == nil {
		return nil, errors.New("runner: nil context")
	}
	if sc == nil {
		return nil, errors.New("runner: nil scenario")
	}

	if r.cfg.Verbose {
		fmt.Fprintf(r.cfg.Progress, "\nRunning scenario: %s (%d cases)\n", sc.Name, len(sc.Cases))
	}

	if r.cfg.Concurrency <= 1 {
		return r.runScenarioSequential(ctx, sc)
	}
	return r.runScenarioConcurrent(ctx, sc)
}

func (r *Runner) runScenarioSequential(ctx context.Context, sc *testcase.TestScenario) ([]Result, error) {
	out := make([]Result, 0, len(sc.Cases))
	for i := range sc.Cases {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		res, err := r.RunCase(ctx, &sc.Cases[i])
		if err != nil {
			return out, err
		}
		out = append(out, *res)
		r.reportProgress(i, len(sc.Cases), res)
	}
	return out, nil
}

func (r *Runner) runScenarioConcurrent(ctx context.Context, sc *testcase.TestScenario) ([]Result, error) {
	out := make([]Result, len(sc.Cases))
	sem := make(chan struct{}, r.cfg.Concurrency)

	var wg sync.WaitGroup
	for i := range sc.Cases {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return out[:i], err
		}

		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			wg.Wait()
			return out[:i], ctx.Err()
		}

		idx := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			res, err := r.RunCase(ctx, &sc.Cases[idx])
			if err != nil {
				// Runner misuse was ruled out before the loop; record
				// anyway so every submitted case yields one entry.
				out[idx] = Result{
					TestID:        sc.Cases[idx].ID,
					TestName:      sc.Cases[idx].Name,
					Category:      sc.Cases[idx].Category,
					Severity:      sc.Cases[idx].Severity,
					Input:         sc.Cases[idx].Input,
					Expected:      sc.Cases[idx].Expected,
					Timestamp:     time.Now(),
					FailureReason: fmt.Sprintf("prediction error: %v", err),
				}
				return
			}
			out[idx] = *res
			r.reportProgress(idx, len(sc.Cases), res)
		}()
	}
	wg.Wait()
	return out, nil
}

// RunScenarios executes scenarios in input order and maps scenario id to its
// ordered results. Case ids are not deduplicated across scenarios; a case
// appearing twice yields two independent results.
func (r *Runner) RunScenarios(ctx context.Context, scenarios []*testcase.TestScenario) (map[string][]Result, error) {
	if r == nil {
		return nil, errors.New("runner: nil runner")
	}
	if ctx == nil {
		return nil, errors.New("runner: nil context")
	}

	out := make(map[string][]Result, len(scenarios))
	for _, sc := range scenarios {
		if sc == nil {
			continue
		}
		results, err := r.RunScenario(ctx, sc)
		if len(results) > 0 {
			out[sc.ID] = results
		}
		if err != nil {
			return out, err
		}
	}
	return out, nil
}

func (r *Runner) reportProgress(i, total int, res *Result) {
	if !r.cfg.Verbose || res == nil {
		return
	}
	status := "PASS"
	if !res.Passed {
		status = "FAIL"
	}
	fmt.Fprintf(r.cfg.Progress, "[%d/%d] %s... %s\n", i+1, total, res.TestName, status)
	if !res.Passed && res.FailureReason != "" {
		fmt.Fprintf(r.cfg.Progress, "    reason: %s\n", res.FailureReason)
	}
}

// failureReason composes the human-readable mismatch explanation, with a
// confidence caveat below the fixed threshold.
func failureReason(outcome *model.Outcome, expected testcase.Expected) string {
	got := outcome.Label
	if got == "" {
		got = "UNKNOWN"
	}
	want := expected.Label
	if want == "" {
		want = "UNKNOWN"
	}

	reason := fmt.Sprintf("Expected '%s' but got '%s'", want, got)
	if outcome.Confidence < lowConfidenceThreshold {
		reason += fmt.Sprintf(" (low confidence: %.2f%%)", outcome.Confidence*100)
	}
	return reason
}
