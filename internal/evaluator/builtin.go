package evaluator

import (
	"errors"
	"fmt"

	"github.com/sichgate/sichgate/internal/model"
	"github.com/sichgate/sichgate/internal/testcase"
)

// DefaultName is the evaluator used when a case does not name one.
const DefaultName = "label_match"

// LabelMatchEvaluator is the default: exact, case-sensitive equality of the
// outcome label and the expected label. Confidence and raw payload never
// influence the verdict.
type LabelMatchEvaluator struct{}

// Name returns the evaluator identifier.
func (LabelMatchEvaluator) Name() string {
	return DefaultName
}

// Evaluate compares labels.
func (LabelMatchEvaluator) Evaluate(outcome *model.Outcome, expected testcase.Expected) (bool, error) {
	if outcome == nil {
		return false, errors.New("label_match: nil outcome")
	}
	if expected.Label == "" {
		return false, errors.New("label_match: expectation has no label")
	}
	return outcome.Label == expected.Label, nil
}

// AnyLabelEvaluator passes when the outcome label is any of the expected
// labels (exact, case-sensitive). Useful for cases where several answers are
// acceptable, e.g. genuinely ambiguous sarcasm probes.
type AnyLabelEvaluator struct{}

// Name returns the evaluator identifier.
func (AnyLabelEvaluator) Name() string {
	return "label_any_of"
}

// Evaluate checks membership in the expected label set.
func (AnyLabelEvaluator) Evaluate(outcome *model.Outcome, expected testcase.Expected) (bool, error) {
	if outcome == nil {
		return false, errors.New("label_any_of: nil outcome")
	}
	if len(expected.AnyOf) == 0 {
		return false, errors.New("label_any_of: expectation has no any_of labels")
	}
	for _, l := range expected.AnyOf {
		if outcome.Label == l {
			return true, nil
		}
	}
	return false, nil
}

// ConfidenceFloorEvaluator requires both the expected label and a minimum
// confidence: a correct label reported with low confidence still fails.
type ConfidenceFloorEvaluator struct{}

// Name returns the evaluator identifier.
func (ConfidenceFloorEvaluator) Name() string {
	return "confidence_floor"
}

// Evaluate checks label equality and the confidence floor.
func (ConfidenceFloorEvaluator) Evaluate(outcome *model.Outcome, expected testcase.Expected) (bool, error) {
	if outcome == nil {
		return false, errors.New("confidence_floor: nil outcome")
	}
	if expected.Label == "" {
		return false, errors.New("confidence_floor: expectation has no label")
	}
	if expected.MinConfidence <= 0 {
		return false, fmt.Errorf("confidence_floor: min_confidence not set")
	}
	return outcome.Label == expected.Label && outcome.Confidence >= expected.MinConfidence, nil
}
