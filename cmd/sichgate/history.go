package main

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sichgate/sichgate/internal/config"
	"github.com/sichgate/sichgate/internal/store"
)

type historyOptions struct {
	adapter string
	limit   int
	since   string
}

func newHistoryCmd(st *cliState) *cobra.Command {
	var opts historyOptions

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show assessment run history",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(st.configPath)
			if err != nil {
				return err
			}
			st.cfg = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryList(cmd, st, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.adapter, "adapter", "", "adapter name to filter")
	cmd.Flags().IntVar(&opts.limit, "limit", 20, "max runs to list")
	cmd.Flags().StringVar(&opts.since, "since", "", "only runs since date (YYYY-MM-DD or RFC3339)")

	cmd.AddCommand(newHistoryShowCmd(st))
	return cmd
}

func newHistoryShowCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show details for a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryShow(cmd, st, args[0])
		},
	}
}

func runHistoryList(cmd *cobra.Command, st *cliState, opts *historyOptions) error {
	if st == nil || st.cfg == nil {
		return fmt.Errorf("history: missing config (internal error)")
	}
	if opts == nil {
		return fmt.Errorf("history: nil options")
	}

	since, err := parseSince(opts.since)
	if err != nil {
		return err
	}

	stor, err := store.Open(st.cfg)
	if err != nil {
		return err
	}
	defer stor.Close()

	filter := store.RunFilter{
		Adapter: strings.TrimSpace(opts.adapter),
		Since:   since,
		Limit:   opts.limit,
	}
	runs, err := stor.ListRuns(cmd.Context(), filter)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		_, _ = fmt.Fprintln(out, "No runs found.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN_ID\tSTARTED\tADAPTER\tTESTS\tPASSED\tFAILED\tRISK")
	for _, r := range runs {
		total, passed, failed, tier := 0, 0, 0, "-"
		if r.Summary != nil {
			total = r.Summary.TotalTests
			passed = r.Summary.Passed
			failed = r.Summary.Failed
			tier = string(r.Summary.RiskTier)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			r.ID, formatTime(r.StartedAt), r.Adapter, total, passed, failed, tier)
	}
	return tw.Flush()
}

func runHistoryShow(cmd *cobra.Command, st *cliState, runID string) error {
	if st == nil || st.cfg == nil {
		return fmt.Errorf("history: missing config (internal error)")
	}

	runID = strings.TrimSpace(runID)
	if runID == "" {
		return fmt.Errorf("history: missing run id")
	}

	stor, err := store.Open(st.cfg)
	if err != nil {
		return err
	}
	defer stor.Close()

	run, err := stor.GetRun(cmd.Context(), runID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("history: run %q not found", runID)
		}
		return err
	}

	results, err := stor.GetCaseResults(cmd.Context(), runID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Run: %s\n", run.ID)
	_, _ = fmt.Fprintf(out, "Started: %s\n", formatTime(run.StartedAt))
	_, _ = fmt.Fprintf(out, "Finished: %s\n", formatTime(run.FinishedAt))
	_, _ = fmt.Fprintf(out, "Adapter: %s (%s)\n", run.Adapter, run.Model)
	if run.Summary != nil {
		_, _ = fmt.Fprintf(out, "Tests: %d passed=%d failed=%d pass_rate=%.2f risk=%s\n",
			run.Summary.TotalTests, run.Summary.Passed, run.Summary.Failed,
			run.Summary.PassRate, run.Summary.RiskTier)
	}

	if len(results) == 0 {
		return nil
	}

	scenarioIDs := make([]string, 0, len(results))
	for sid := range results {
		scenarioIDs = append(scenarioIDs, sid)
	}
	sort.Strings(scenarioIDs)

	for _, sid := range scenarioIDs {
		_, _ = fmt.Fprintf(out, "\nScenario: %s\n", sid)

		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "CASE\tRESULT\tSEVERITY\tLAT(ms)\tREASON")
		for _, cr := range results[sid] {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%.1f\t%s\n",
				cr.TestID, statusLabel(cr.Passed), cr.Severity, cr.LatencyMs, cr.FailureReason)
		}
		_ = tw.Flush()
	}

	return nil
}

func parseSince(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	layouts := []string{time.RFC3339, "2006-01-02"}
	for _, layout := range layouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("history: invalid --since %q (expected YYYY-MM-DD or RFC3339)", s)
}

func formatTime(ts time.Time) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.UTC().Format(time.RFC3339)
}

func statusLabel(passed bool) string {
	if passed {
		return "PASS"
	}
	return "FAIL"
}
