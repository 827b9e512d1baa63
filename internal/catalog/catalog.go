// Package catalog holds the built-in scenario library: curated adversarial
// test batteries for sentiment-style classifiers, grouped by threat category.
package catalog

import (
	"fmt"
	"sort"

	"github.com/sichgate/sichgate/internal/testcase"
)

// Group names accepted by Select and the CLI's --scenarios flag.
const (
	GroupAll        = "all"
	GroupBehavioral = "behavioral"
	GroupCapability = "capability"
	GroupDisclosure = "disclosure"
)

// All returns every built-in scenario in a stable order.
func All() []*testcase.TestScenario {
	var out []*testcase.TestScenario
	out = append(out, BehavioralScenarios()...)
	out = append(out, CapabilityScenarios()...)
	out = append(out, DisclosureScenarios()...)
	return out
}

// Select returns the scenarios for a named group.
func Select(group string) ([]*testcase.TestScenario, error) {
	switch group {
	case "", GroupAll:
		return All(), nil
	case GroupBehavioral:
		return BehavioralScenarios(), nil
	case GroupCapability:
		return CapabilityScenarios(), nil
	case GroupDisclosure:
		return DisclosureScenarios(), nil
	default:
		return nil, fmt.Errorf("catalog: unknown scenario group %q (want all, behavioral, capability or disclosure)", group)
	}
}

// Groups returns the selectable group names, sorted.
func Groups() []string {
	gs := []string{GroupAll, GroupBehavioral, GroupCapability, GroupDisclosure}
	sort.Strings(gs)
	return gs
}

// ByID returns the built-in scenario with the given ID.
func ByID(id string) (*testcase.TestScenario, error) {
	for _, sc := range All() {
		if sc.ID == id {
			return sc, nil
		}
	}
	return nil, fmt.Errorf("catalog: no scenario %q", id)
}
