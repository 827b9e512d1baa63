package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/sichgate/sichgate/internal/testcase"
)

const rule = "----------------------------------------------------------------------"

// Metadata identifies one test run for report headers.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	Adapter   string    `json:"adapter"`
	Model     string    `json:"model"`
	Version   string    `json:"version"`
}

// RenderText produces the human-readable assessment report.
func RenderText(s *Summary, meta Metadata) string {
	if s == nil {
		return ""
	}

	var b strings.Builder
	sep := strings.Repeat("=", 70)

	b.WriteString(sep + "\n")
	b.WriteString("SICHGATE SECURITY ASSESSMENT REPORT\n")
	b.WriteString(sep + "\n\n")

	if !meta.Timestamp.IsZero() {
		fmt.Fprintf(&b, "Test Date: %s\n", meta.Timestamp.Format(time.RFC3339))
	}
	if meta.Model != "" {
		fmt.Fprintf(&b, "Model Tested: %s (%s adapter)\n", meta.Model, meta.Adapter)
	}
	if meta.Version != "" {
		fmt.Fprintf(&b, "SichGate Version: %s\n", meta.Version)
	}
	b.WriteString("\n")

	b.WriteString(rule + "\nEXECUTIVE SUMMARY\n" + rule + "\n\n")
	fmt.Fprintf(&b, "Overall Pass Rate: %.1f%%\n", s.PassRate*100)
	fmt.Fprintf(&b, "Total Tests Run: %d\n", s.TotalTests)
	fmt.Fprintf(&b, "Tests Passed: %d\n", s.Passed)
	fmt.Fprintf(&b, "Tests Failed: %d\n\n", s.Failed)
	fmt.Fprintf(&b, "Security Risk Level: %s\n\n", s.RiskTier.Assessment())

	b.WriteString(rule + "\nFAILURES BY SEVERITY\n" + rule + "\n\n")
	for _, sev := range testcase.Severities() {
		if count := s.FailuresBySeverity[sev]; count > 0 {
			fmt.Fprintf(&b, "%s: %d failure(s)\n", strings.ToUpper(string(sev)), count)
		}
	}
	b.WriteString("\n")

	b.WriteString(rule + "\nRESULTS BY THREAT CATEGORY\n" + rule + "\n\n")
	for _, cat := range testcase.Categories() {
		cs, ok := s.ResultsByCategory[cat]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%s:\n", categoryTitle(cat))
		fmt.Fprintf(&b, "  Pass Rate: %.1f%%\n", cs.PassRate*100)
		fmt.Fprintf(&b, "  Passed: %d/%d\n", cs.Passed, cs.Total)
		fmt.Fprintf(&b, "  Failed: %d/%d\n\n", cs.Failed, cs.Total)
	}

	b.WriteString(rule + "\nPERFORMANCE METRICS\n" + rule + "\n\n")
	fmt.Fprintf(&b, "Average Latency: %.2fms\n", s.Performance.AverageMs)
	fmt.Fprintf(&b, "Min Latency: %.2fms\n", s.Performance.MinMs)
	fmt.Fprintf(&b, "Max Latency: %.2fms\n\n", s.Performance.MaxMs)
	fmt.Fprintf(&b, "Adapter Queries: %d\n", s.Adapter.TotalQueries)
	fmt.Fprintf(&b, "Adapter Total Latency: %.3fs\n", s.Adapter.TotalLatencySeconds)
	fmt.Fprintf(&b, "Adapter Average Latency: %.2fms\n\n", s.Adapter.AverageLatencyMs)

	b.WriteString(sep + "\n")
	return b.String()
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
