package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sichgate/sichgate/internal/report"
	"github.com/sichgate/sichgate/internal/runner"
	"github.com/sichgate/sichgate/internal/testcase"
)

const separator = "======================================================================"

const banner = `
+---------------------------------------------------------------+
|                                                               |
|   S I C H G A T E                                             |
|                                                               |
|        AI/ML Security Testing Framework - v` + version + `             |
|                 Open Source Edition                           |
|                                                               |
+---------------------------------------------------------------+

Testing AI/ML systems for behavioral subversion, capability failures,
and information disclosure vulnerabilities.
`

func printBanner(w io.Writer) {
	fmt.Fprint(w, banner+"\n")
}

func printSummary(w io.Writer, s *report.Summary) {
	fmt.Fprintf(w, "\n%s\nTEST SUMMARY\n%s\n\n", separator, separator)

	fmt.Fprintf(w, "Overall Pass Rate: %.1f%%\n", s.PassRate*100)
	fmt.Fprintf(w, "Total Tests: %d\n", s.TotalTests)
	fmt.Fprintf(w, "Passed: %d\n", s.Passed)
	fmt.Fprintf(w, "Failed: %d\n\n", s.Failed)

	fmt.Fprintln(w, "Failures by Severity:")
	for _, sev := range testcase.Severities() {
		if count := s.FailuresBySeverity[sev]; count > 0 {
			fmt.Fprintf(w, "  %s: %d\n", strings.ToUpper(string(sev)), count)
		}
	}

	fmt.Fprintln(w, "\nResults by Category:")
	for _, cat := range testcase.Categories() {
		cs, ok := s.ResultsByCategory[cat]
		if !ok {
			continue
		}
		fmt.Fprintf(w, "  %s: %.1f%% (%d/%d)\n", categoryTitle(cat), cs.PassRate*100, cs.Passed, cs.Total)
	}

	fmt.Fprintf(w, "\nAverage Latency: %.2fms\n", s.Performance.AverageMs)
}

type detailedResults struct {
	Metadata  report.Metadata             `json:"metadata"`
	Scenarios map[string]scenarioDetailed `json:"scenarios"`
}

type scenarioDetailed struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	TotalTests  int             `json:"total_tests"`
	Results     []runner.Result `json:"results"`
}

type summaryReport struct {
	*report.Summary
	Metadata report.Metadata `json:"metadata"`
}

// writeArtifacts writes the three report files for one run under
// <outputDir>/run_<timestamp>/ and returns the run directory.
func writeArtifacts(outputDir string, ts time.Time, summary *report.Summary, meta report.Metadata, scenarios []*testcase.TestScenario, byScenario map[string][]runner.Result) (string, error) {
	runDir := filepath.Join(outputDir, "run_"+ts.Format("20060102_150405"))
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", fmt.Errorf("run: create output dir: %w", err)
	}

	detailed := detailedResults{
		Metadata:  meta,
		Scenarios: make(map[string]scenarioDetailed, len(scenarios)),
	}
	for _, sc := range scenarios {
		detailed.Scenarios[sc.ID] = scenarioDetailed{
			Name:        sc.Name,
			Description: sc.Description,
			Category:    string(sc.Category),
			TotalTests:  len(sc.Cases),
			Results:     byScenario[sc.ID],
		}
	}
	if err := writeJSON(filepath.Join(runDir, "detailed_results.json"), detailed); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, "summary_report.json"), summaryReport{Summary: summary, Metadata: meta}); err != nil {
		return "", err
	}

	text := report.RenderText(summary, meta)
	if err := os.WriteFile(filepath.Join(runDir, "summary_report.txt"), []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("run: write text report: %w", err)
	}

	return runDir, nil
}

func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("run: marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("run: write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func categoryTitle(c testcase.Category) string {
	parts := strings.Split(string(c), "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
