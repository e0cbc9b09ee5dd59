// Package cascade implements the task complexity analyser and model-tier
// router used to escalate a turn from a cheap model to a more capable one
// only when the task actually warrants it.
package cascade

import (
	"fmt"
	"strings"
)

// Level is a coarse classification of how complex a task description
// appears to be.
type Level string

const (
	LevelSimple   Level = "simple"
	LevelModerate Level = "moderate"
	LevelComplex  Level = "complex"
)

// Tier is the model execution tier a task is routed to.
type Tier string

const (
	TierLight  Tier = "light"
	TierMedium Tier = "medium"
	TierHeavy  Tier = "heavy"
)

// Signals holds the four capped [0,1] component scores that feed the
// overall complexity score.
type Signals struct {
	StructuralDepth float64
	ActionDensity   float64
	CodeSignals     float64
	ConceptCount    float64
}

// Complexity is the result of analysing a task description.
type Complexity struct {
	Level      Level
	Tier       Tier
	Confidence float64 // mean of the four signal scores, in [0,1]
	Reasoning  string
	Signals    Signals
}

// Analyzer scores free-text task descriptions into a Complexity verdict.
type Analyzer struct {
	SimpleThreshold   float64
	ModerateThreshold float64
}

// NewAnalyzer returns an Analyzer with the default 0.25/0.50 thresholds.
func NewAnalyzer() *Analyzer {
	return &Analyzer{SimpleThreshold: 0.25, ModerateThreshold: 0.50}
}

// Analyze scores a task description across four independent signal
// dimensions and averages them into an overall confidence score, which is
// then bucketed into a Level/Tier pair.
func (a *Analyzer) Analyze(taskDescription string) Complexity {
	signals := Signals{
		StructuralDepth: structuralDepth(taskDescription),
		ActionDensity:   actionDensity(taskDescription),
		CodeSignals:     codeSignals(taskDescription),
		ConceptCount:    conceptCount(taskDescription),
	}

	overall := (signals.StructuralDepth + signals.ActionDensity + signals.CodeSignals + signals.ConceptCount) / 4.0

	var level Level
	var tier Tier
	switch {
	case overall < a.SimpleThreshold:
		level, tier = LevelSimple, TierLight
	case overall < a.ModerateThreshold:
		level, tier = LevelModerate, TierMedium
	default:
		level, tier = LevelComplex, TierHeavy
	}

	reasoning := fmt.Sprintf("Task classified as %s based on complexity signals (score: %.2f)", level, overall)

	return Complexity{
		Level:      level,
		Tier:       tier,
		Confidence: overall,
		Reasoning:  reasoning,
		Signals:    signals,
	}
}

func clampUnit(v float64) float64 {
	if v > 1.0 {
		return 1.0
	}
	if v < 0.0 {
		return 0.0
	}
	return v
}

func structuralDepth(text string) float64 {
	var depth float64

	lineCount := float64(strings.Count(text, "\n") + 1)
	if lineCount > 5.0 {
		depth += 0.1
	}
	if lineCount > 20.0 {
		depth += 0.15
	}

	braces := float64(strings.Count(text, "{") + strings.Count(text, "["))
	depth += braces * 0.05

	if strings.Contains(text, "if ") || strings.Contains(text, "if(") {
		depth += 0.1
	}
	if strings.Contains(text, "match ") || strings.Contains(text, "switch ") {
		depth += 0.15
	}
	if strings.Contains(text, "loop ") || strings.Contains(text, "for ") || strings.Contains(text, "while ") {
		depth += 0.15
	}
	if strings.Contains(text, "recursive") || strings.Contains(text, "recursion") {
		depth += 0.2
	}

	return clampUnit(depth)
}

var actionVerbs = []string{
	"create", "modify", "delete", "read", "write", "update", "implement", "refactor",
	"add", "remove", "fix", "test", "verify", "validate", "debug", "analyze", "generate",
}

func actionDensity(text string) float64 {
	wordCount := float64(len(strings.Fields(text)))
	density := clampUnit(wordCount / 100.0)

	lower := strings.ToLower(text)
	for _, verb := range actionVerbs {
		if strings.Contains(lower, verb) {
			density += 0.05
		}
	}

	return clampUnit(density)
}

func codeSignals(text string) float64 {
	var signals float64

	if strings.Contains(text, "```") || strings.Contains(text, "code") {
		signals += 0.2
	}
	if strings.Contains(text, "func ") || strings.Contains(text, "function") {
		signals += 0.15
	}
	if strings.Contains(text, "struct ") || strings.Contains(text, "class ") {
		signals += 0.15
	}
	if strings.Contains(text, "interface ") {
		signals += 0.15
	}
	if strings.Contains(text, "test") || strings.Contains(text, "unit test") {
		signals += 0.1
	}

	return clampUnit(signals)
}

func conceptCount(text string) float64 {
	var concepts float64

	if strings.Contains(text, "error") || strings.Contains(text, "exception") {
		concepts += 0.1
	}
	if strings.Contains(text, "state") {
		concepts += 0.1
	}
	if strings.Contains(text, "dependency") || strings.Contains(text, "dependencies") {
		concepts += 0.1
	}
	if strings.Contains(text, "integration") || strings.Contains(text, "interop") {
		concepts += 0.15
	}
	if strings.Contains(text, "security") || strings.Contains(text, "authentication") {
		concepts += 0.15
	}
	if strings.Contains(text, "performance") || strings.Contains(text, "optimization") {
		concepts += 0.1
	}
	if strings.Contains(text, "concurrency") || strings.Contains(text, "async") || strings.Contains(text, "parallel") {
		concepts += 0.2
	}

	return clampUnit(concepts)
}
