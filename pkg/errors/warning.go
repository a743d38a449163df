package errors

import "fmt"

// WarningKind identifies a soft condition that is reported but does not abort
// the run.
type WarningKind string

const (
	// WarnHierarchySources is raised when a hierarchy subgraph contains more
	// than one of its own sources, which happens with cyclic references.
	WarnHierarchySources WarningKind = "HIERARCHY_MULTIPLE_SOURCES"

	// WarnEmptyGroupName is raised when no descriptive group name could be
	// computed and a generated placeholder was used instead.
	WarnEmptyGroupName WarningKind = "EMPTY_GROUP_NAME"

	// WarnUnrooted is raised for nodes that are reachable from no source node
	// because they sit only inside source-less cycles.
	WarnUnrooted WarningKind = "UNROOTED_NODES"

	// WarnOversizedNode is raised when a single node exceeds the size budget
	// of a split chunk on its own.
	WarnOversizedNode WarningKind = "OVERSIZED_NODE"
)

// Warning is a structured soft warning. Stages return warnings alongside
// their results and also log them.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Subject string      `json:"subject,omitempty"` // Subgraph key, group name or node ID
	Message string      `json:"message"`
}

// Warnf builds a Warning with a formatted message.
func Warnf(kind WarningKind, subject, format string, args ...any) Warning {
	return Warning{Kind: kind, Subject: subject, Message: fmt.Sprintf(format, args...)}
}

// String implements fmt.Stringer.
func (w Warning) String() string {
	if w.Subject == "" {
		return fmt.Sprintf("%s: %s", w.Kind, w.Message)
	}
	return fmt.Sprintf("%s [%s]: %s", w.Kind, w.Subject, w.Message)
}
