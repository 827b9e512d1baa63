package testcase

import "fmt"

// Category classifies the threat a test probes for.
type Category string

const (
	BehavioralSubversion  Category = "behavioral_subversion"
	CapabilityFailure     Category = "capability_failure"
	InformationDisclosure Category = "information_disclosure"
)

// Categories lists every threat category in canonical order.
func Categories() []Category {
	return []Category{BehavioralSubversion, CapabilityFailure, InformationDisclosure}
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case BehavioralSubversion, CapabilityFailure, InformationDisclosure:
		return true
	default:
		return false
	}
}

// Severity is the ordinal risk weight of a test failure.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// Severities lists every severity level, highest risk first.
func Severities() []Severity {
	return []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo}
}

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo:
		return true
	default:
		return false
	}
}

// Rank returns the ordering weight of a severity, 0 being the most severe.
// Unknown severities sort last.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 3
	case SeverityInfo:
		return 4
	default:
		return 5
	}
}

// Expected describes the behavior the adapter must exhibit for a case to pass.
// Label feeds the default evaluator; the remaining fields feed the optional
// built-in evaluators.
type Expected struct {
	Label         string   `yaml:"label" json:"label"`
	AnyOf         []string `yaml:"any_of,omitempty" json:"any_of,omitempty"`
	MinConfidence float64  `yaml:"min_confidence,omitempty" json:"min_confidence,omitempty"`
}

// TestCase is a single adversarial or robustness probe. Cases are constructed
// once at catalog-load time and never mutated by the runner.
type TestCase struct {
	ID          string            `yaml:"id" json:"id"`
	Name        string            `yaml:"name" json:"name"`
	Description string            `yaml:"description,omitempty" json:"description,omitempty"`
	Category    Category          `yaml:"category" json:"category"`
	Severity    Severity          `yaml:"severity" json:"severity"`
	Input       string            `yaml:"input" json:"input"`
	Expected    Expected          `yaml:"expected" json:"expected"`
	Evaluator   string            `yaml:"evaluator,omitempty" json:"evaluator,omitempty"` // registry name; empty = label match
	Metadata    map[string]string `yaml:"metadata,omitempty" json:"metadata,omitempty"`
}

// TestScenario is a named, ordered group of cases targeting one threat.
// Contained cases may cross-tag a different category; aggregation groups by
// case category, not scenario category.
type TestScenario struct {
	ID          string     `yaml:"id" json:"id"`
	Name        string     `yaml:"name" json:"name"`
	Description string     `yaml:"description,omitempty" json:"description,omitempty"`
	Category    Category   `yaml:"category" json:"category"`
	Cases       []TestCase `yaml:"cases" json:"cases"`
	Note        string     `yaml:"note,omitempty" json:"note,omitempty"` // advisory, ignored by the runner
}

// Len returns the number of cases in the scenario.
func (s *TestScenario) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Cases)
}

// SeverityCounts tallies cases per severity level. Every level appears in the
// result, including zero-count ones.
func (s *TestScenario) SeverityCounts() map[Severity]int {
	counts := make(map[Severity]int, len(Severities()))
	for _, sev := range Severities() {
		counts[sev] = 0
	}
	if s == nil {
		return counts
	}
	for _, c := range s.Cases {
		counts[c.Severity]++
	}
	return counts
}

// Validate checks a scenario for structural consistency.
func Validate(s *TestScenario) error {
	if s == nil {
		return fmt.Errorf("nil scenario")
	}
	if s.ID == "" {
		return fmt.Errorf("scenario: missing id")
	}
	if s.Name == "" {
		return fmt.Errorf("scenario (%s): missing name", s.ID)
	}
	if !s.Category.Valid() {
		return fmt.Errorf("scenario (%s): unknown category %q", s.ID, s.Category)
	}
	if len(s.Cases) == 0 {
		return fmt.Errorf("scenario (%s): no cases", s.ID)
	}

	seenIDs := make(map[string]struct{}, len(s.Cases))
	for i, c := range s.Cases {
		if c.ID == "" {
			return fmt.Errorf("scenario (%s): cases[%d]: missing id", s.ID, i)
		}
		if _, ok := seenIDs[c.ID]; ok {
			return fmt.Errorf("scenario (%s): cases[%d] (%s): duplicate id", s.ID, i, c.ID)
		}
		seenIDs[c.ID] = struct{}{}

		if c.Name == "" {
			return fmt.Errorf("scenario (%s): cases[%d] (%s): missing name", s.ID, i, c.ID)
		}
		if !c.Category.Valid() {
			return fmt.Errorf("scenario (%s): cases[%d] (%s): unknown category %q", s.ID, i, c.ID, c.Category)
		}
		if !c.Severity.Valid() {
			return fmt.Errorf("scenario (%s): cases[%d] (%s): unknown severity %q", s.ID, i, c.ID, c.Severity)
		}
		if c.Input == "" {
			return fmt.Errorf("scenario (%s): cases[%d] (%s): missing input", s.ID, i, c.ID)
		}
		if c.Evaluator == "" && c.Expected.Label == "" && len(c.Expected.AnyOf) == 0 {
			return fmt.Errorf("scenario (%s): cases[%d] (%s): missing expected label", s.ID, i, c.ID)
		}
		if c.Expected.MinConfidence < 0 || c.Expected.MinConfidence > 1 {
			return fmt.Errorf("scenario (%s): cases[%d] (%s): min_confidence must be in [0,1]", s.ID, i, c.ID)
		}
	}
	return nil
}
