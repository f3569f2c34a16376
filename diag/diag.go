// Package diag is the translator's sole user-visible side channel for
// DSL-author-facing problems. Nothing the translator does to reject bad
// input escapes as a Go panic or a bare error string; it is collected here
// as a Diagnostic and attributed to a source Position.
package diag

import (
	"fmt"

	"github.com/fluxforge/aslc/ast"
)

// Kind classifies a diagnostic per spec.md §7's error taxonomy.
type Kind int

const (
	// SyntaxUnsupported is a statement or expression shape the visitor does
	// not recognize.
	SyntaxUnsupported Kind = iota
	// ReferenceError is a name that does not resolve (unknown function,
	// unknown state-machine, unknown task class).
	ReferenceError
	// AttributeError is an unknown or malformed task/decorator attribute.
	AttributeError
	// KeyCollision is two fragments claiming the same explicit key.
	KeyCollision
	// ShapeError is a structurally illegal fragment (retry() wrapping more
	// than one statement, a result_path targeting the reserved trace key).
	ShapeError
	// DecoratorError is an unknown decorator or an illegal decorator
	// argument.
	DecoratorError
)

func (k Kind) String() string {
	switch k {
	case SyntaxUnsupported:
		return "SyntaxUnsupported"
	case ReferenceError:
		return "ReferenceError"
	case AttributeError:
		return "AttributeError"
	case KeyCollision:
		return "KeyCollision"
	case ShapeError:
		return "ShapeError"
	case DecoratorError:
		return "DecoratorError"
	default:
		return "Unknown"
	}
}

// Diagnostic is one reported problem, always attributable to a source
// location.
type Diagnostic struct {
	Kind     Kind
	Position ast.Position
	Message  string
	// StateMachine names the state machine translation was abandoned for,
	// when the diagnostic is a hard error. Empty for a diagnostic
	// (e.g. a warning) that does not abort translation.
	StateMachine string
	// Hard marks a diagnostic that aborts translation of StateMachine.
	// Translation of every other state machine in the project continues.
	Hard bool
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s at %s: %s", d.Kind, d.Position, d.Message)
}

// Sink collects diagnostics emitted while translating a project. It is not
// safe for concurrent use by multiple goroutines translating the same
// project; per spec.md §5 the translator is single-threaded per project.
type Sink struct {
	diagnostics []Diagnostic
	aborted     map[string]bool
}

// NewSink returns an empty Sink.
func NewSink() *Sink {
	return &Sink{aborted: make(map[string]bool)}
}

// Report records a non-aborting diagnostic (a warning).
func (s *Sink) Report(kind Kind, pos ast.Position, format string, args ...interface{}) {
	s.diagnostics = append(s.diagnostics, Diagnostic{
		Kind:     kind,
		Position: pos,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Abort records a hard diagnostic and marks stateMachine as abandoned. The
// caller must stop visiting stateMachine's body once Abort returns; other
// state machines in the same project are unaffected.
func (s *Sink) Abort(kind Kind, pos ast.Position, stateMachine string, format string, args ...interface{}) {
	s.diagnostics = append(s.diagnostics, Diagnostic{
		Kind:         kind,
		Position:     pos,
		StateMachine: stateMachine,
		Hard:         true,
		Message:      fmt.Sprintf(format, args...),
	})
	s.aborted[stateMachine] = true
}

// Aborted reports whether stateMachine was abandoned due to a hard error.
func (s *Sink) Aborted(stateMachine string) bool {
	return s.aborted[stateMachine]
}

// Diagnostics returns every diagnostic recorded so far, in emission order.
func (s *Sink) Diagnostics() []Diagnostic {
	return s.diagnostics
}

// HasErrors reports whether any hard diagnostic was recorded.
func (s *Sink) HasErrors() bool {
	for _, d := range s.diagnostics {
		if d.Hard {
			return true
		}
	}
	return false
}
