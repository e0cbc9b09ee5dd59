package cascade

import "testing"

func TestAnalyzer_Analyze_SimpleVsComplex(t *testing.T) {
	a := NewAnalyzer()

	simple := a.Analyze("Read file")
	complex := a.Analyze("Design recursive state machine with async error handling, security and testing")

	if complex.Confidence <= simple.Confidence {
		t.Fatalf("expected complex task to score higher: simple=%.2f complex=%.2f", simple.Confidence, complex.Confidence)
	}
	if simple.Level != LevelSimple {
		t.Errorf("expected simple task to classify as Simple, got %s", simple.Level)
	}
	// The longer task scores 0.2525 (structural 0.2, action 0.16, code 0.1,
	// concept 0.55), just past the 0.25 Simple/Moderate boundary.
	if complex.Level != LevelModerate {
		t.Errorf("expected complex task to classify as Moderate, got %s", complex.Level)
	}
}

func TestAnalyzer_Analyze_IncrementalComplexity(t *testing.T) {
	a := NewAnalyzer()

	r1 := a.Analyze("Read file")
	r2 := a.Analyze("Read file and validate")
	r3 := a.Analyze("Read file, validate format, handle errors, test coverage")

	if r2.Confidence < r1.Confidence {
		t.Errorf("expected r2 >= r1, got r1=%.2f r2=%.2f", r1.Confidence, r2.Confidence)
	}
	if r3.Confidence < r2.Confidence {
		t.Errorf("expected r3 >= r2, got r2=%.2f r3=%.2f", r2.Confidence, r3.Confidence)
	}
}

func TestAnalyzer_Analyze_ConfidenceInUnitRange(t *testing.T) {
	a := NewAnalyzer()
	result := a.Analyze("Read a file and print its contents")
	if result.Confidence < 0.0 || result.Confidence > 1.0 {
		t.Errorf("confidence out of range: %.2f", result.Confidence)
	}
	if result.Reasoning == "" {
		t.Error("expected non-empty reasoning")
	}
}
