package domain

import "strings"

// Record is a structured value stored under a symbolic name in SharedMemory.
// Fields is the arbitrary object payload; Meta optionally describes origin
// and purpose (the "_meta" field from spec.md §3).
type Record struct {
	Fields map[string]any
	Meta   *RecordMeta
}

// RecordMeta describes where a Record came from and why it was stored.
type RecordMeta struct {
	Origin  string // e.g. "precondition:data.user.create"
	Purpose string // free-text, e.g. "store_as hint from the scenario"
}

// SharedMemory is a run-scoped mapping from symbolic name to Record.
// Populated during preconditions; read-only thereafter for planners and
// validators (spec.md §3 "SharedMemory"). Keys beginning with "_" are
// private to the core.
type SharedMemory struct {
	records map[string]Record
}

// NewSharedMemory creates an empty SharedMemory.
func NewSharedMemory() *SharedMemory {
	return &SharedMemory{records: make(map[string]Record)}
}

// Set stores a Record under name. Intended to be called only during the
// preconditions phase.
func (m *SharedMemory) Set(name string, rec Record) {
	m.records[name] = rec
}

// Get retrieves the Record stored under name.
func (m *SharedMemory) Get(name string) (Record, bool) {
	rec, ok := m.records[name]
	return rec, ok
}

// Names returns every stored key, private (_-prefixed) keys included.
func (m *SharedMemory) Names() []string {
	names := make([]string, 0, len(m.records))
	for k := range m.records {
		names = append(names, k)
	}
	return names
}

// Public returns only the non-private (non "_"-prefixed) entries, as
// consumed by the Context Assembler (spec.md §4.3).
func (m *SharedMemory) Public() map[string]Record {
	out := make(map[string]Record, len(m.records))
	for k, v := range m.records {
		if strings.HasPrefix(k, "_") {
			continue
		}
		out[k] = v
	}
	return out
}

// Resolve resolves a dot-separated path like "user.email" against the
// stored records. Used by the Probe Broker to expand "{{variable.path}}"
// templates (spec.md §4.6).
func (m *SharedMemory) Resolve(path string) (any, bool) {
	parts := strings.SplitN(path, ".", 2)
	if len(parts) != 2 {
		return nil, false
	}
	rec, ok := m.records[parts[0]]
	if !ok {
		return nil, false
	}
	v, ok := rec.Fields[parts[1]]
	return v, ok
}
