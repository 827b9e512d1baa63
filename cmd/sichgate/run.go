package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sichgate/sichgate/internal/catalog"
	"github.com/sichgate/sichgate/internal/config"
	"github.com/sichgate/sichgate/internal/evaluator"
	"github.com/sichgate/sichgate/internal/model"
	"github.com/sichgate/sichgate/internal/report"
	"github.com/sichgate/sichgate/internal/runner"
	"github.com/sichgate/sichgate/internal/store"
	"github.com/sichgate/sichgate/internal/testcase"
)

var errCriticalFailures = errors.New("sichgate: critical failures detected")

type runOptions struct {
	scenarios   string
	testsDir    string
	output      string
	concurrency int
	quiet       bool
	noBanner    bool
	noSave      bool
}

func newRunCmd(st *cliState) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run security assessment scenarios against the configured model",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(st.configPath)
			if err != nil {
				return err
			}
			st.cfg = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAssessment(cmd, st, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.scenarios, "scenarios", "all", "scenario group: all|behavioral|capability|disclosure")
	cmd.Flags().StringVar(&opts.testsDir, "tests-dir", "", "directory of YAML scenario files (replaces built-in catalog)")
	cmd.Flags().StringVar(&opts.output, "output", "", "results output directory (overrides config)")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", -1, "concurrent test cases (overrides config)")
	cmd.Flags().BoolVar(&opts.quiet, "quiet", false, "minimal output, only show summary")
	cmd.Flags().BoolVar(&opts.noBanner, "no-banner", false, "skip the banner display")
	cmd.Flags().BoolVar(&opts.noSave, "no-save", false, "skip writing report files and run history")

	return cmd
}

func runAssessment(cmd *cobra.Command, st *cliState, opts *runOptions) error {
	if st == nil {
		return fmt.Errorf("run: nil state")
	}
	if opts == nil {
		return fmt.Errorf("run: nil options")
	}
	if st.cfg == nil {
		return fmt.Errorf("run: missing config (internal error)")
	}

	out := cmd.OutOrStdout()
	if !opts.noBanner && !opts.quiet {
		printBanner(out)
	}

	scenarios, err := loadScenarios(opts)
	if err != nil {
		return err
	}
	if len(scenarios) == 0 {
		return fmt.Errorf("run: no scenarios selected")
	}
	if !opts.quiet {
		fmt.Fprintf(out, "Loaded %d test scenario(s)\n\n", len(scenarios))
	}

	// Adapter construction failure is fatal: no cases run, nothing recorded.
	adapter, err := model.FromConfig(st.cfg)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	concurrency := st.cfg.Run.Concurrency
	if opts.concurrency > 0 {
		concurrency = opts.concurrency
	}

	progress := out
	r := runner.New(adapter, evaluator.NewRegistry(), runner.Config{
		Concurrency: concurrency,
		Timeout:     st.cfg.Run.Timeout,
		Verbose:     !opts.quiet,
		Progress:    progress,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	startedAt := time.Now().UTC()
	byScenario, err := r.RunScenarios(ctx, scenarios)
	if err != nil {
		return err
	}
	finishedAt := time.Now().UTC()

	summary, err := report.Summarize(r.Results(), adapter.Stats())
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	printSummary(out, summary)

	meta := report.Metadata{
		Timestamp: finishedAt,
		Adapter:   adapter.Name(),
		Model:     st.cfg.Adapter.Model,
		Version:   version,
	}

	if !opts.noSave {
		outputDir := strings.TrimSpace(opts.output)
		if outputDir == "" {
			outputDir = st.cfg.Report.OutputDir
		}
		runDir, err := writeArtifacts(outputDir, finishedAt, summary, meta, scenarios, byScenario)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\n%s\nResults saved to: %s\n%s\n", separator, runDir, separator)

		if err := saveRunToStore(ctx, st, summary, byScenario, meta, startedAt, finishedAt); err != nil {
			return err
		}
	}

	if summary.FailuresBySeverity[testcase.SeverityCritical] > 0 {
		return errCriticalFailures
	}
	return nil
}

func loadScenarios(opts *runOptions) ([]*testcase.TestScenario, error) {
	if dir := strings.TrimSpace(opts.testsDir); dir != "" {
		scenarios, err := testcase.LoadFromDir(dir)
		if err != nil {
			return nil, err
		}
		for _, sc := range scenarios {
			if err := testcase.Validate(sc); err != nil {
				return nil, err
			}
		}
		return scenarios, nil
	}
	return catalog.Select(strings.TrimSpace(opts.scenarios))
}

func saveRunToStore(ctx context.Context, st *cliState, summary *report.Summary, byScenario map[string][]runner.Result, meta report.Metadata, startedAt, finishedAt time.Time) error {
	if st == nil || st.cfg == nil {
		return fmt.Errorf("run: missing config (internal error)")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	stor, err := store.Open(st.cfg)
	if err != nil {
		return fmt.Errorf("run: open store: %w", err)
	}
	defer stor.Close()

	runID, err := newRunID(startedAt)
	if err != nil {
		return fmt.Errorf("run: generate run id: %w", err)
	}

	rec := &store.RunRecord{
		ID:         runID,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
		Adapter:    meta.Adapter,
		Model:      meta.Model,
		Summary:    summary,
		Results:    byScenario,
	}
	if err := stor.SaveRun(ctx, rec); err != nil {
		return fmt.Errorf("run: save run: %w", err)
	}
	return nil
}

func newRunID(t time.Time) (string, error) {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}
	return fmt.Sprintf("run_%s_%x", t.Format("20060102_150405"), buf), nil
}
