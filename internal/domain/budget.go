package domain

import "time"

// Budgets tracks monotonically increasing usage counters against a
// scenario's constraints (spec.md §3). Used-counters only ever increase.
type Budgets struct {
	StepsUsed      int
	StepsMax       int
	CostUsed       float64
	CostMax        float64
	StartedAt      time.Time
	MaxWallSeconds *int
}

// NewBudgets builds a Budgets tracker from a ScenarioSpec's constraints.
func NewBudgets(c Constraints, startedAt time.Time) *Budgets {
	return &Budgets{
		StepsMax:       c.MaxSteps,
		CostMax:        c.MaxCostUSD,
		StartedAt:      startedAt,
		MaxWallSeconds: c.MaxWallSeconds,
	}
}

// AddStep increments the used step counter by one.
func (b *Budgets) AddStep() { b.StepsUsed++ }

// AddCost increments the used cost counter. Negative deltas are rejected
// silently (monotonic invariant, spec.md §3).
func (b *Budgets) AddCost(usd float64) {
	if usd <= 0 {
		return
	}
	b.CostUsed += usd
}

// StepsExceeded reports stepsUsed >= stepsMax.
func (b *Budgets) StepsExceeded() bool { return b.StepsUsed >= b.StepsMax }

// CostExceeded reports costUsed > costMax.
func (b *Budgets) CostExceeded() bool { return b.CostUsed > b.CostMax }

// WallExceeded reports whether the configured wall-clock budget, if any,
// has elapsed.
func (b *Budgets) WallExceeded(now time.Time) bool {
	if b.MaxWallSeconds == nil {
		return false
	}
	return now.Sub(b.StartedAt) > time.Duration(*b.MaxWallSeconds)*time.Second
}

// Invariant reports whether stepsUsed <= stepsMax && costUsed <= costMax,
// the safety invariant asserted by Testable Property 1.
func (b *Budgets) Invariant() bool {
	return b.StepsUsed <= b.StepsMax && b.CostUsed <= b.CostMax
}
