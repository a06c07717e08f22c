package domain

import (
	"encoding/json"
	"strings"
)

// ToolDescriptor describes one tool advertised by a collaborator service
// (spec.md §3).
type ToolDescriptor struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Schema      json.RawMessage `json:"schema,omitempty"`
	ReadOnly    bool            `json:"readOnly"`
	Service     string          `json:"service"` // "ui" or "data"
}

// readOnlySuffixes are name patterns that imply a tool is read-only
// (spec.md §3 "ToolDescriptor").
var readOnlySuffixes = []string{".get", ".list", ".read"}

// DeriveReadOnly computes the read-only flag from a tool name alone. A
// read-only hint advertised by the service is not consulted: rpc.ToolInfo
// does not carry one.
func DeriveReadOnly(name string) bool {
	for _, suffix := range readOnlySuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// IsUIAction reports whether name is a ui.* tool, which per spec.md §4.1 is
// never read-only regardless of naming.
func IsUIAction(name string) bool {
	return strings.HasPrefix(name, "ui.")
}
