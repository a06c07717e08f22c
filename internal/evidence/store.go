// Package evidence implements the Evidence Store (spec.md §4.5): an
// append-only log of ValidationOutcomes that the Critic and Goal Checker
// cite as justification for their decisions.
package evidence

import (
	"sync"

	"github.com/omega-e2e/runner/internal/domain"
)

// staleAfterSteps is the age, in steps, beyond which an outcome is
// considered stale for citation purposes (spec.md §4.5).
const staleAfterSteps = 5

// Store is an append-only, thread-safe collection of ValidationOutcomes.
// Once appended, an outcome is never mutated or removed.
type Store struct {
	mu       sync.RWMutex
	outcomes []domain.ValidationOutcome
	byID     map[string]int // id -> index into outcomes
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{byID: make(map[string]int)}
}

// Append adds a new outcome. Callers must ensure o.ID is unique; a
// duplicate ID overwrites the index lookup but the prior record remains
// at its original slice position (append-only: nothing is removed).
func (s *Store) Append(o domain.ValidationOutcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[o.ID] = len(s.outcomes)
	s.outcomes = append(s.outcomes, o)
}

// Lookup returns the outcome with the given ID, if present.
func (s *Store) Lookup(id string) (domain.ValidationOutcome, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.byID[id]
	if !ok {
		return domain.ValidationOutcome{}, false
	}
	return s.outcomes[idx], true
}

// Recent returns the last n appended outcomes, oldest first.
func (s *Store) Recent(n int) []domain.ValidationOutcome {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n <= 0 || len(s.outcomes) == 0 {
		return nil
	}
	start := len(s.outcomes) - n
	if start < 0 {
		start = 0
	}
	out := make([]domain.ValidationOutcome, len(s.outcomes)-start)
	copy(out, s.outcomes[start:])
	return out
}

// All returns every outcome in append order.
func (s *Store) All() []domain.ValidationOutcome {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ValidationOutcome, len(s.outcomes))
	copy(out, s.outcomes)
	return out
}

// Stale reports whether the outcome with id is absent, or present but more
// than staleAfterSteps steps behind currentStep (spec.md §4.5 "staleness").
func (s *Store) Stale(id string, currentStep int) bool {
	o, ok := s.Lookup(id)
	if !ok {
		return true
	}
	return currentStep-o.Step > staleAfterSteps
}

// Conflicts returns every prior outcome whose Passed verdict disagrees with
// want, restricted to the same Location (spec.md §4.5 "conflict
// detection"). Used by the Critic to detect contradicted claims.
func (s *Store) Conflicts(location string, want bool) []domain.ValidationOutcome {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.ValidationOutcome
	for _, o := range s.outcomes {
		if o.Location == location && o.Passed != want {
			out = append(out, o)
		}
	}
	return out
}

// Len reports the total number of appended outcomes.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.outcomes)
}
