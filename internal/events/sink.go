// Package events implements the runner's JSON Lines event emission
// contract (spec.md §6 "Outputs"): one JSON object per line, one line per
// notable occurrence in a Run, so an external logging service can persist
// and rotate the stream without understanding the runner's internals.
package events

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"
)

// Kind enumerates the record kinds spec.md §6 defines.
type Kind string

const (
	KindRunStart          Kind = "run_start"
	KindScenarioStart     Kind = "scenario_start"
	KindPrecondition      Kind = "precondition"
	KindStep              Kind = "step"
	KindValidationOutcome Kind = "validation_outcome"
	KindGoalCheck         Kind = "goal_check"
	KindCriticDecision    Kind = "critic_decision"
	KindAgentTransition   Kind = "agent_transition"
	KindEvidenceCitation  Kind = "evidence_citation"
	KindScenarioEnd       Kind = "scenario_end"
	KindRunEnd            Kind = "run_end"
)

// Event is one JSONL record.
type Event struct {
	Kind      Kind      `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
	Scenario  string    `json:"scenarioId,omitempty"`
	Step      int       `json:"step,omitempty"`
	Data      any       `json:"data,omitempty"`
}

// Sink is the interface the rest of the runner emits events through. The
// orchestrator depends only on this, not on any concrete writer, so tests
// can supply an in-memory fake.
type Sink interface {
	Emit(e Event) error
}

// JSONLWriter is the concrete Sink that serializes each Event as one line
// of JSON to an io.Writer (spec.md §6: "JSON Lines format").
type JSONLWriter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewJSONLWriter wraps w (typically an append-mode *os.File) as a Sink.
func NewJSONLWriter(w io.Writer) *JSONLWriter {
	return &JSONLWriter{w: w}
}

// Emit writes e as one JSON line. Writes are serialized by a mutex, so
// Emit is safe for concurrent use.
func (j *JSONLWriter) Emit(e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("events: marshal %s record: %w", e.Kind, err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	if _, err := j.w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("events: write %s record: %w", e.Kind, err)
	}
	return nil
}

// NopSink discards every event. Used by callers (and tests) that don't
// want to wire a real writer.
type NopSink struct{}

func (NopSink) Emit(Event) error { return nil }
