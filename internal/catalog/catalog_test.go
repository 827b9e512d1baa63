package catalog

import (
	"testing"

	"github.com/sichgate/sichgate/internal/testcase"
)

func TestAllScenariosValid(t *testing.T) {
	t.Parallel()

	scenarios := All()
	if len(scenarios) != 6 {
		t.Fatalf("All: got %d scenarios want 6", len(scenarios))
	}
	for _, sc := range scenarios {
		if err := testcase.Validate(sc); err != nil {
			t.Errorf("scenario %s invalid: %v", sc.ID, err)
		}
	}
}

func TestCaseIDsUniqueAcrossCatalog(t *testing.T) {
	t.Parallel()

	seen := make(map[string]string)
	for _, sc := range All() {
		for _, tc := range sc.Cases {
			if prev, ok := seen[tc.ID]; ok {
				t.Errorf("case ID %s appears in both %s and %s", tc.ID, prev, sc.ID)
			}
			seen[tc.ID] = sc.ID
		}
	}
}

func TestScenarioIDsUnique(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for _, sc := range All() {
		if seen[sc.ID] {
			t.Errorf("duplicate scenario ID %s", sc.ID)
		}
		seen[sc.ID] = true
	}
}

func TestSelect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		group string
		want  int
	}{
		{"", 6},
		{GroupAll, 6},
		{GroupBehavioral, 1},
		{GroupCapability, 3},
		{GroupDisclosure, 2},
	}
	for _, tt := range tests {
		got, err := Select(tt.group)
		if err != nil {
			t.Fatalf("Select(%q): %v", tt.group, err)
		}
		if len(got) != tt.want {
			t.Fatalf("Select(%q): got %d scenarios want %d", tt.group, len(got), tt.want)
		}
	}

	if _, err := Select("bogus"); err == nil {
		t.Fatal("Select(bogus): expected error")
	}
}

func TestSelectGroupCategories(t *testing.T) {
	t.Parallel()

	groups := map[string]testcase.Category{
		GroupBehavioral: testcase.BehavioralSubversion,
		GroupCapability: testcase.CapabilityFailure,
		GroupDisclosure: testcase.InformationDisclosure,
	}
	for group, cat := range groups {
		scenarios, err := Select(group)
		if err != nil {
			t.Fatalf("Select(%q): %v", group, err)
		}
		for _, sc := range scenarios {
			if sc.Category != cat {
				t.Errorf("Select(%q): scenario %s has category %s", group, sc.ID, sc.Category)
			}
			for _, tc := range sc.Cases {
				if tc.Category != cat {
					t.Errorf("case %s has category %s want %s", tc.ID, tc.Category, cat)
				}
			}
		}
	}
}

func TestByID(t *testing.T) {
	t.Parallel()

	sc, err := ByID("behavioral_subversion_prompt_injection")
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	if got := len(sc.Cases); got != 20 {
		t.Fatalf("prompt injection scenario: got %d cases want 20", got)
	}

	if _, err := ByID("nope"); err == nil {
		t.Fatal("ByID(nope): expected error")
	}
}

func TestCaseShape(t *testing.T) {
	t.Parallel()

	for _, sc := range All() {
		for _, tc := range sc.Cases {
			if tc.Expected.Label == "" {
				t.Errorf("case %s has no expected label", tc.ID)
			}
			if tc.Input == "" {
				t.Errorf("case %s has empty input", tc.ID)
			}
			if !tc.Severity.Valid() {
				t.Errorf("case %s has invalid severity %q", tc.ID, tc.Severity)
			}
		}
	}
}
