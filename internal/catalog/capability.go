package catalog

import "github.com/sichgate/sichgate/internal/testcase"

// CapabilityScenarios returns the built-in capability failure batteries:
// typo robustness, semantic edge cases and format variation.
func CapabilityScenarios() []*testcase.TestScenario {
	return []*testcase.TestScenario{
		typoRobustnessScenario(),
		semanticEdgeScenario(),
		formatVariationScenario(),
	}
}

func capCase(id, name, desc string, sev testcase.Severity, input, want string, meta map[string]string) testcase.TestCase {
	return testcase.TestCase{
		ID:          id,
		Name:        name,
		Description: desc,
		Category:    testcase.CapabilityFailure,
		Severity:    sev,
		Input:       input,
		Expected:    testcase.Expected{Label: want},
		Metadata:    meta,
	}
}

func typoRobustnessScenario() *testcase.TestScenario {
	cases := []testcase.TestCase{
		capCase("TYPO_001", "Positive Word Misspelling - 'great' -> 'grate'",
			"Tests handling of common 'great' typo",
			testcase.SeverityHigh,
			"This product is grate and I would buy it again!",
			"POSITIVE",
			map[string]string{"typo_type": "homophone", "correct_spelling": "great"}),
		capCase("TYPO_002", "Negative Word Misspelling - 'terrible' -> 'terribel'",
			"Tests handling of common 'terrible' typo",
			testcase.SeverityHigh,
			"Terribel product, waste of money.",
			"NEGATIVE",
			map[string]string{"typo_type": "transposition", "correct_spelling": "terrible"}),
		capCase("TYPO_003", "Positive Word Misspelling - 'excellent' -> 'excelent'",
			"Tests handling of missing double letter",
			testcase.SeverityMedium,
			"Excelent service, very satisfied!",
			"POSITIVE",
			map[string]string{"typo_type": "missing_letter", "correct_spelling": "excellent"}),
		capCase("TYPO_004", "Negative Word Misspelling - 'disappointed' -> 'dissapointed'",
			"Tests handling of common misspelling pattern",
			testcase.SeverityMedium,
			"I was dissapointed with the quality.",
			"NEGATIVE",
			map[string]string{"typo_type": "wrong_letter", "correct_spelling": "disappointed"}),
		capCase("TYPO_005", "Multiple Typos in Positive Review",
			"Tests robustness to multiple concurrent typos",
			testcase.SeverityHigh,
			"Awsome prodcut! Realy happy with my purchas.",
			"POSITIVE",
			map[string]string{"typo_type": "multiple", "typo_count": "4"}),
	}

	return &testcase.TestScenario{
		ID:   "capability_typo_robustness",
		Name: "Typo & Misspelling Robustness",
		Description: "Tests whether the model correctly classifies sentiment when common " +
			"typos and misspellings are present. Production models must handle " +
			"imperfect input gracefully.",
		Category: testcase.CapabilityFailure,
		Cases:    cases,
	}
}

func semanticEdgeScenario() *testcase.TestScenario {
	cases := []testcase.TestCase{
		capCase("EDGE_001", "Double Negative Creating Positive",
			"Tests understanding of 'not bad' as positive",
			testcase.SeverityHigh,
			"Not bad at all, actually quite good.",
			"POSITIVE",
			map[string]string{"edge_case_type": "double_negative", "linguistic_pattern": "litotes"}),
		capCase("EDGE_002", "Double Negative With Emphasis",
			"Tests 'couldn't be happier' construction",
			testcase.SeverityMedium,
			"I couldn't be happier with this purchase!",
			"POSITIVE",
			map[string]string{"edge_case_type": "double_negative", "linguistic_pattern": "emphatic_negation"}),
		capCase("EDGE_003", "Triple Negative Edge Case",
			"Tests complex negative structure",
			testcase.SeverityMedium,
			"I don't disagree that it's not terrible.",
			"POSITIVE",
			map[string]string{"edge_case_type": "triple_negative", "linguistic_pattern": "complex_negation"}),
		capCase("EDGE_004", "Obvious Sarcasm - Negative Disguised as Positive",
			"Tests detection of sarcastic positive statement",
			testcase.SeverityCritical,
			"Oh great, another broken product. Just what I needed.",
			"NEGATIVE",
			map[string]string{"edge_case_type": "sarcasm", "difficulty": "high"}),
		capCase("EDGE_005", "Ironic Understatement",
			"Tests ironic positive framing of negative experience",
			testcase.SeverityHigh,
			"Fantastic! It broke after one day. Exactly what I expected from this company.",
			"NEGATIVE",
			map[string]string{"edge_case_type": "irony", "difficulty": "high"}),
		capCase("EDGE_006", "Mixed Sentiment - Negative Outweighs Positive",
			"Tests handling of mixed signals where negative dominates",
			testcase.SeverityHigh,
			"Great packaging, but the product inside was completely defective.",
			"NEGATIVE",
			map[string]string{"edge_case_type": "mixed_sentiment", "sentiment_balance": "negative_dominant"}),
		capCase("EDGE_007", "Mixed Sentiment - Positive Outweighs Negative",
			"Tests handling of mixed signals where positive dominates",
			testcase.SeverityMedium,
			"Shipping took forever, but the product itself is amazing and worth the wait.",
			"POSITIVE",
			map[string]string{"edge_case_type": "mixed_sentiment", "sentiment_balance": "positive_dominant"}),
		capCase("EDGE_008", "Contradictory Statements",
			"Tests handling of directly contradictory sentiment expressions",
			testcase.SeverityHigh,
			"I hate to love this product, but I absolutely recommend it.",
			"POSITIVE",
			map[string]string{"edge_case_type": "contradiction"}),
		capCase("EDGE_009", "Minimalist Positive",
			"Tests very understated positive sentiment",
			testcase.SeverityMedium,
			"It's fine. Does what it's supposed to do.",
			"POSITIVE",
			map[string]string{"edge_case_type": "ambiguous_positive", "sentiment_strength": "weak"}),
		capCase("EDGE_010", "Faint Praise vs Genuine Positive",
			"Tests distinction between damning with faint praise and genuine positivity",
			testcase.SeverityMedium,
			"It's not the worst thing I've ever bought.",
			"POSITIVE",
			map[string]string{"edge_case_type": "faint_praise", "sentiment_strength": "weak"}),
	}

	return &testcase.TestScenario{
		ID:   "capability_semantic_edges",
		Name: "Semantic Edge Cases & Linguistic Complexity",
		Description: "Tests whether the model correctly handles linguistically complex " +
			"inputs including double negatives, sarcasm, mixed sentiment, and " +
			"ambiguous phrasing. These cases require deeper semantic understanding.",
		Category: testcase.CapabilityFailure,
		Cases:    cases,
	}
}

func formatVariationScenario() *testcase.TestScenario {
	cases := []testcase.TestCase{
		capCase("FORMAT_001", "ALL CAPS Positive",
			"Tests if all-caps input affects sentiment detection",
			testcase.SeverityMedium,
			"THIS IS THE BEST PRODUCT I'VE EVER USED!",
			"POSITIVE",
			map[string]string{"format_variation": "capitalization"}),
		capCase("FORMAT_002", "Excessive Punctuation",
			"Tests handling of repeated exclamation marks",
			testcase.SeverityLow,
			"This is terrible!!!!!!!",
			"NEGATIVE",
			map[string]string{"format_variation": "punctuation"}),
		capCase("FORMAT_003", "Emoji Addition to Positive Text",
			"Tests if emoji presence affects classification",
			testcase.SeverityLow,
			"Love this product! 😍 ❤️ 🎉",
			"POSITIVE",
			map[string]string{"format_variation": "emoji"}),
		capCase("FORMAT_004", "Extra Whitespace",
			"Tests robustness to unusual spacing",
			testcase.SeverityLow,
			"This    is    really    great    !",
			"POSITIVE",
			map[string]string{"format_variation": "whitespace"}),
		capCase("FORMAT_005", "No Punctuation",
			"Tests handling of text without proper punctuation",
			testcase.SeverityMedium,
			"terrible product waste of money",
			"NEGATIVE",
			map[string]string{"format_variation": "punctuation_missing"}),
	}

	return &testcase.TestScenario{
		ID:   "capability_format_variation",
		Name: "Format Variation Robustness",
		Description: "Tests whether the model produces consistent predictions when inputs " +
			"vary in formatting (capitalization, punctuation, spacing) but have " +
			"the same semantic meaning.",
		Category: testcase.CapabilityFailure,
		Cases:    cases,
	}
}
