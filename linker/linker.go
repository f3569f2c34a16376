// Package linker implements the second translation pass: it walks the
// unlinked Fragment sequences the Statement Visitor produced, synthesizes
// keys for any fragment that did not declare one explicitly, computes every
// Next/End edge, and links the handler body of each Catch block the
// Statement Visitor attached (Retry blocks need no linking).
package linker

import (
	"github.com/fluxforge/aslc/diag"
	"github.com/fluxforge/aslc/invariant"
	"github.com/fluxforge/aslc/ir"
)

// Link finishes sm in place: it fills sm.States and sm.StartKey. If a
// KeyCollision or another linking error was reported to sink it returns
// false with StartKey left empty; States may then be partly filled.
func Link(sm *ir.StateMachine, sink *diag.Sink) bool {
	invariant.NotNil(sm, "sm")
	invariant.NotNil(sink, "sink")

	frags := ensureTerminated(sm.Fragments)
	sm.States = make(map[string]ir.State)
	counter := 0
	head, ok := linkSequence(frags, sm.States, &counter, "", sink, sm.Name)
	if !ok {
		return false
	}
	sm.StartKey = head
	return true
}

// ensureTerminated substitutes an implicit Succeed state for a genuinely
// empty sequence (a function or sub-machine body of nothing but `pass`),
// since there is otherwise no state left to carry End: true. It also
// appends one when the sequence ends in a Choice: a Choice state has no
// Next/End of its own, so ending on one would leave its Default pointing
// at nothing once the surrounding continuation is empty. Every other
// non-terminal ending needs no synthesized terminal: linkSequence marks
// its last state End: true instead (spec.md §4.2).
func ensureTerminated(frags []ir.Fragment) []ir.Fragment {
	if len(frags) == 0 {
		return []ir.Fragment{&ir.SucceedState{}}
	}
	if needsSyntheticTerminal(frags[len(frags)-1]) {
		out := make([]ir.Fragment, len(frags)+1)
		copy(out, frags)
		out[len(frags)] = &ir.SucceedState{}
		return out
	}
	return frags
}

func needsSyntheticTerminal(f ir.Fragment) bool {
	st, ok := f.(ir.State)
	if !ok || st.IsTerminal() {
		return false
	}
	_, isChoice := st.(*ir.ChoiceState)
	return isChoice
}

func linkSubMachine(sub *ir.SubMachine, sink *diag.Sink, machine string) bool {
	invariant.NotNil(sub, "sub")
	frags := ensureTerminated(sub.Fragments)
	sub.States = make(map[string]ir.State)
	counter := 0
	head, ok := linkSequence(frags, sub.States, &counter, "", sink, machine)
	if !ok {
		return false
	}
	sub.StartKey = head
	return true
}
