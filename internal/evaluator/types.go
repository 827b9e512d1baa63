// Package evaluator defines the per-case pass/fail contract. Evaluators are
// pure functions over an adapter outcome and a case's expectation: no I/O, no
// external state, so a result is reproducible given a fixed outcome.
package evaluator

import (
	"strings"

	"github.com/sichgate/sichgate/internal/model"
	"github.com/sichgate/sichgate/internal/testcase"
)

// Evaluator decides whether an outcome satisfies an expectation.
type Evaluator interface {
	Name() string
	Evaluate(outcome *model.Outcome, expected testcase.Expected) (bool, error)
}

// Registry stores evaluators by name. Cases reference evaluators by name;
// an empty reference resolves to the default label-match evaluator.
type Registry struct {
	evaluators map[string]Evaluator
}

// NewRegistry creates a registry preloaded with the built-in evaluators.
func NewRegistry() *Registry {
	r := &Registry{evaluators: make(map[string]Evaluator)}
	r.Register(LabelMatchEvaluator{})
	r.Register(AnyLabelEvaluator{})
	r.Register(ConfidenceFloorEvaluator{})
	return r
}

// Register adds an evaluator to the registry.
func (r *Registry) Register(e Evaluator) {
	if r == nil {
		panic("evaluator: register on nil registry")
	}
	if e == nil {
		panic("evaluator: register nil evaluator")
	}
	name := strings.TrimSpace(e.Name())
	if name == "" {
		panic("evaluator: evaluator has empty name")
	}
	if r.evaluators == nil {
		r.evaluators = make(map[string]Evaluator)
	}
	r.evaluators[name] = e
}

// Get returns a named evaluator if present.
func (r *Registry) Get(name string) (Evaluator, bool) {
	if r == nil || r.evaluators == nil {
		return nil, false
	}
	e, ok := r.evaluators[name]
	return e, ok
}

// Resolve returns the evaluator a case references, defaulting to label match
// for an empty name.
func (r *Registry) Resolve(name string) (Evaluator, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultName
	}
	return r.Get(name)
}
