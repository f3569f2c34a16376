// Package ir defines the intermediate representation the Statement Visitor
// builds and the Linker finishes: a graph of States connected by Next/End
// edges, plus the non-state helper fragments (ChoiceBranch, ParallelBranch,
// Catch, Retry) that only exist to be folded into a State during linking.
package ir

import "github.com/fluxforge/aslc/ast"

// Position aliases ast.Position so packages downstream of ir do not need to
// import ast solely to spell a position type.
type Position = ast.Position

// Kind tags every Fragment variant.
type Kind string

const (
	KindTask     Kind = "Task"
	KindChoice   Kind = "Choice"
	KindMap      Kind = "Map"
	KindParallel Kind = "Parallel"
	KindPass     Kind = "Pass"
	KindWait     Kind = "Wait"
	KindSucceed  Kind = "Succeed"
	KindFail     Kind = "Fail"

	KindChoiceBranch   Kind = "ChoiceBranch"
	KindParallelBranch Kind = "ParallelBranch"
	KindCatch          Kind = "Catch"
	KindRetry          Kind = "Retry"
)

// StateKinds lists the Fragment kinds that are States (participate in the
// Next/End graph), as opposed to helper fragments folded into a State.
var StateKinds = map[Kind]bool{
	KindTask:     true,
	KindChoice:   true,
	KindMap:      true,
	KindParallel: true,
	KindPass:     true,
	KindWait:     true,
	KindSucceed:  true,
	KindFail:     true,
}

// TerminalKinds lists the Fragment kinds that never take a Next edge:
// Succeed and Fail always end their state machine.
var TerminalKinds = map[Kind]bool{
	KindSucceed: true,
	KindFail:    true,
}

// Fragment is any node the Statement Visitor emits: a State or a non-state
// helper (ChoiceBranch, ParallelBranch, Catch, Retry).
type Fragment interface {
	Pos() ast.Position
	FragmentKind() Kind
}

// State is a Fragment that participates in the linked Next/End graph.
type State interface {
	Fragment
	StateKey() string
	SetKey(string)
	StateComment() string
	// IsTerminal reports whether this state kind can never carry a Next
	// edge (Succeed, Fail).
	IsTerminal() bool
}

// Base carries the fields every State shares: its key (explicit from source
// or synthesized by the Linker), an optional comment, source position, and
// the Next/End edge the Linker assigns.
type Base struct {
	Key      string
	Comment  string
	Position ast.Position
	Next     string
	End      bool
}

func (b *Base) Pos() ast.Position    { return b.Position }
func (b *Base) StateKey() string     { return b.Key }
func (b *Base) SetKey(k string)      { b.Key = k }
func (b *Base) StateComment() string { return b.Comment }
func (b *Base) IsTerminal() bool     { return false }
