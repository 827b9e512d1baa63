package testcase

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFromFile loads and validates a test scenario from a YAML file.
func LoadFromFile(path string) (*TestScenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testcase: read %q: %w", path, err)
	}

	var s TestScenario
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("testcase: parse %q: %w", path, err)
	}
	applyDefaults(&s)
	if err := Validate(&s); err != nil {
		return nil, fmt.Errorf("testcase: validate %q: %w", path, err)
	}

	return &s, nil
}

// LoadFromDir loads and validates all scenario files in a directory, sorted
// by file name so scenario order is stable across runs.
func LoadFromDir(dir string) ([]*TestScenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("testcase: read dir %q: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)

	out := make([]*TestScenario, 0, len(paths))
	for _, path := range paths {
		s, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// applyDefaults fills in case fields that scenario files may omit: cases
// inherit the scenario category unless they cross-tag another one.
func applyDefaults(s *TestScenario) {
	if s == nil {
		return
	}
	for i := range s.Cases {
		if s.Cases[i].Category == "" {
			s.Cases[i].Category = s.Category
		}
		if s.Cases[i].Severity == "" {
			s.Cases[i].Severity = SeverityMedium
		}
	}
}
