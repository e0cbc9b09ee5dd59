// Package budget implements the turn loop's execution budget (a pauseable
// wall-clock duration plus a step counter) and the reminder strategies
// that watch it.
package budget

import (
	"sync"
	"time"
)

// wrapUpPressure is the fraction of budget consumption at which the
// reminder engine starts nudging the model to wrap up.
const wrapUpPressure = 0.70

// ExecutionBudget tracks how much wall-clock time and how many agent
// steps a turn has consumed, and can be paused (e.g. while waiting on a
// permission prompt) so that time spent blocked on the user does not
// count against the task.
type ExecutionBudget struct {
	mu sync.Mutex

	maxDuration time.Duration
	maxSteps    int

	startedAt   time.Time
	elapsed     time.Duration // accumulated elapsed time while not paused
	paused      bool
	pausedAt    time.Time
	step        int
}

// New creates an ExecutionBudget with the given wall-clock limit and step
// limit, started immediately.
func New(maxDuration time.Duration, maxSteps int) *ExecutionBudget {
	return &ExecutionBudget{
		maxDuration: maxDuration,
		maxSteps:    maxSteps,
		startedAt:   time.Now(),
	}
}

// Pause stops the wall-clock counter from advancing. Safe to call
// multiple times; only the first call while running has effect.
func (b *ExecutionBudget) Pause() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.paused {
		return
	}
	b.elapsed += time.Since(b.startedAt)
	b.paused = true
	b.pausedAt = time.Now()
}

// Resume restarts the wall-clock counter after a Pause, folding the
// paused interval out of elapsed time.
func (b *ExecutionBudget) Resume() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.paused {
		return
	}
	b.startedAt = time.Now()
	b.paused = false
}

// StepCompleted increments the agent step counter. Called once per turn
// loop iteration (one backend round-trip plus its tool calls).
func (b *ExecutionBudget) StepCompleted() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.step++
}

// Step returns the current step count.
func (b *ExecutionBudget) Step() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.step
}

// Elapsed returns how much wall-clock time has actually been charged
// against the budget (excluding paused intervals).
func (b *ExecutionBudget) Elapsed() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.paused {
		return b.elapsed
	}
	return b.elapsed + time.Since(b.startedAt)
}

// RemainingSeconds returns whole seconds of wall-clock budget left,
// floored at zero.
func (b *ExecutionBudget) RemainingSeconds() int {
	remaining := b.maxDuration - b.Elapsed()
	if remaining < 0 {
		return 0
	}
	return int(remaining / time.Second)
}

// RemainingSteps returns the number of steps left before MaxSteps,
// floored at zero.
func (b *ExecutionBudget) RemainingSteps() int {
	b.mu.Lock()
	remaining := b.maxSteps - b.step
	b.mu.Unlock()
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Pressure returns max(elapsed/max_duration, step/max_steps), a value in
// [0, +inf) indicating how close the turn is to exhausting either
// dimension of its budget.
func (b *ExecutionBudget) Pressure() float64 {
	b.mu.Lock()
	step := b.step
	maxSteps := b.maxSteps
	b.mu.Unlock()

	timePressure := 0.0
	if b.maxDuration > 0 {
		timePressure = float64(b.Elapsed()) / float64(b.maxDuration)
	}
	stepPressure := 0.0
	if maxSteps > 0 {
		stepPressure = float64(step) / float64(maxSteps)
	}
	if timePressure > stepPressure {
		return timePressure
	}
	return stepPressure
}

// ShouldWrapUp reports whether pressure has reached the wrap-up
// threshold (0.70).
func (b *ExecutionBudget) ShouldWrapUp() bool {
	return b.Pressure() >= wrapUpPressure
}

// Exhausted reports whether either dimension of the budget has been
// fully consumed.
func (b *ExecutionBudget) Exhausted() bool {
	return b.RemainingSeconds() == 0 || b.RemainingSteps() == 0
}
