// Package agent wraps one trip-planning invocation against a generative
// backend and exposes it as an ordered event stream. The pipeline guarantees
// exactly one terminal event per invocation and clean cancellation; it never
// retries — a failed invocation is reported once and retry policy belongs to
// the caller.
package agent

// EventKind identifies the variant of an Event.
type EventKind string

// Event kind constants.
const (
	KindThinking    EventKind = "thinking"
	KindToolCalling EventKind = "tool_calling"
	KindToolResult  EventKind = "tool_result"
	KindComplete    EventKind = "complete"
	KindError       EventKind = "error"
)

// Event is one entry in an invocation's event stream. Consumers switch on
// the concrete type; Kind exists for display and logging.
//
// Thinking, ToolCalling, and ToolResult are best-effort progress signals: a
// ToolResult always follows its ToolCalling and shares the tool name.
// Exactly one of Complete or Error ends the stream.
type Event interface {
	Kind() EventKind
	// Terminal reports whether this event ends the invocation's stream.
	Terminal() bool
}

// Thinking is a progress signal carrying a model reasoning snippet.
type Thinking struct {
	Message string
}

// Kind implements Event.
func (Thinking) Kind() EventKind { return KindThinking }

// Terminal implements Event.
func (Thinking) Terminal() bool { return false }

// ToolCalling signals that the agent is invoking a tool.
type ToolCalling struct {
	Tool    string
	Summary string
}

// Kind implements Event.
func (ToolCalling) Kind() EventKind { return KindToolCalling }

// Terminal implements Event.
func (ToolCalling) Terminal() bool { return false }

// ToolResult carries the outcome of a matching ToolCalling event.
type ToolResult struct {
	Tool    string
	Summary string
}

// Kind implements Event.
func (ToolResult) Kind() EventKind { return KindToolResult }

// Terminal implements Event.
func (ToolResult) Terminal() bool { return false }

// Complete is the successful terminal event carrying the finished plan.
type Complete struct {
	Result string
}

// Kind implements Event.
func (Complete) Kind() EventKind { return KindComplete }

// Terminal implements Event.
func (Complete) Terminal() bool { return true }

// Error is the failing terminal event.
type Error struct {
	Message string
}

// Kind implements Event.
func (Error) Kind() EventKind { return KindError }

// Terminal implements Event.
func (Error) Terminal() bool { return true }
