package main

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// fakeHFBackend answers every inference request with a confident NEGATIVE.
func fakeHFBackend(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[[{"label":"NEGATIVE","score":0.93},{"label":"POSITIVE","score":0.07}]]`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeTestConfig(t *testing.T, baseURL, outputDir string) string {
	t.Helper()
	cfg := fmt.Sprintf(`adapter:
  type: hf
  base_url: %s
  model: test-model
storage:
  type: memory
report:
  output_dir: %s
`, baseURL, outputDir)
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func execCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestRunCapabilityScenarios(t *testing.T) {
	backend := fakeHFBackend(t)
	outputDir := t.TempDir()
	cfgPath := writeTestConfig(t, backend.URL, outputDir)

	out, err := execCLI(t, "run", "--config", cfgPath, "--scenarios", "capability", "--no-banner")
	if err != nil {
		t.Fatalf("run: %v\noutput:\n%s", err, out)
	}

	if !strings.Contains(out, "TEST SUMMARY") {
		t.Fatalf("output missing summary:\n%s", out)
	}
	if !strings.Contains(out, "Total Tests: 20") {
		t.Fatalf("output missing total:\n%s", out)
	}
	if !strings.Contains(out, "Results saved to:") {
		t.Fatalf("output missing save notice:\n%s", out)
	}

	// One run_<timestamp> directory with the three report files.
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		t.Fatalf("read output dir: %v", err)
	}
	var runDir string
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), "run_") {
			runDir = filepath.Join(outputDir, e.Name())
		}
	}
	if runDir == "" {
		t.Fatalf("no run directory in %s", outputDir)
	}
	for _, name := range []string{"detailed_results.json", "summary_report.json", "summary_report.txt"} {
		if _, err := os.Stat(filepath.Join(runDir, name)); err != nil {
			t.Errorf("missing artifact %s: %v", name, err)
		}
	}

	text, err := os.ReadFile(filepath.Join(runDir, "summary_report.txt"))
	if err != nil {
		t.Fatalf("read text report: %v", err)
	}
	if !strings.Contains(string(text), "SICHGATE SECURITY ASSESSMENT REPORT") {
		t.Fatalf("text report header missing:\n%s", text)
	}
}

func TestRunCriticalFailuresExitError(t *testing.T) {
	backend := fakeHFBackend(t)
	cfgPath := writeTestConfig(t, backend.URL, t.TempDir())

	// The behavioral battery has critical cases expecting POSITIVE; an
	// always-NEGATIVE model fails them.
	out, err := execCLI(t, "run", "--config", cfgPath, "--scenarios", "behavioral", "--quiet", "--no-banner")
	if !errors.Is(err, errCriticalFailures) {
		t.Fatalf("run: got %v want errCriticalFailures\noutput:\n%s", err, out)
	}
}

func TestRunUnknownGroup(t *testing.T) {
	backend := fakeHFBackend(t)
	cfgPath := writeTestConfig(t, backend.URL, t.TempDir())

	_, err := execCLI(t, "run", "--config", cfgPath, "--scenarios", "bogus")
	if err == nil {
		t.Fatal("expected error for unknown group")
	}
}

func TestRunQuietSkipsBanner(t *testing.T) {
	backend := fakeHFBackend(t)
	cfgPath := writeTestConfig(t, backend.URL, t.TempDir())

	out, err := execCLI(t, "run", "--config", cfgPath, "--scenarios", "capability", "--quiet", "--no-save")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if strings.Contains(out, "S I C H G A T E") {
		t.Fatalf("banner printed in quiet mode:\n%s", out)
	}
	if strings.Contains(out, "Results saved to:") {
		t.Fatalf("no-save still wrote artifacts:\n%s", out)
	}
}

func TestRunCustomTestsDir(t *testing.T) {
	backend := fakeHFBackend(t)
	cfgPath := writeTestConfig(t, backend.URL, t.TempDir())

	dir := t.TempDir()
	scenario := `id: custom_scenario
name: Custom Checks
category: capability_failure
cases:
  - id: CUSTOM_001
    name: Plain negative review
    input: "This is awful."
    expected:
      label: NEGATIVE
`
	if err := os.WriteFile(filepath.Join(dir, "custom.yaml"), []byte(scenario), 0o644); err != nil {
		t.Fatalf("write scenario: %v", err)
	}

	out, err := execCLI(t, "run", "--config", cfgPath, "--tests-dir", dir, "--quiet", "--no-banner", "--no-save")
	if err != nil {
		t.Fatalf("run: %v\noutput:\n%s", err, out)
	}
	if !strings.Contains(out, "Total Tests: 1") {
		t.Fatalf("custom scenario not run:\n%s", out)
	}
	if !strings.Contains(out, "Overall Pass Rate: 100.0%") {
		t.Fatalf("custom scenario should pass:\n%s", out)
	}
}

func TestListScenarios(t *testing.T) {
	out, err := execCLI(t, "list", "scenarios")
	if err != nil {
		t.Fatalf("list scenarios: %v", err)
	}
	for _, want := range []string{
		"behavioral_subversion_prompt_injection",
		"capability_typo_robustness",
		"information_disclosure_extraction",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("list output missing %s:\n%s", want, out)
		}
	}

	out, err = execCLI(t, "list", "scenarios", "--group", "disclosure")
	if err != nil {
		t.Fatalf("list scenarios group: %v", err)
	}
	if strings.Contains(out, "capability_typo_robustness") {
		t.Fatalf("group filter leaked other scenarios:\n%s", out)
	}
}

func TestHistoryEmpty(t *testing.T) {
	backend := fakeHFBackend(t)
	cfgPath := writeTestConfig(t, backend.URL, t.TempDir())

	out, err := execCLI(t, "history", "--config", cfgPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "No runs found.") {
		t.Fatalf("history output:\n%s", out)
	}
}

func TestHistoryInvalidSince(t *testing.T) {
	backend := fakeHFBackend(t)
	cfgPath := writeTestConfig(t, backend.URL, t.TempDir())

	_, err := execCLI(t, "history", "--config", cfgPath, "--since", "notadate")
	if err == nil {
		t.Fatal("expected error for invalid --since")
	}
}
