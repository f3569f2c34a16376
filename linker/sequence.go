package linker

import (
	"fmt"

	"github.com/fluxforge/aslc/diag"
	"github.com/fluxforge/aslc/ir"
)

// linkSequence assigns keys to and inserts every state in frags into states,
// then wires each one's Next edge to its successor (or to continuation for
// the last element). A sequence with no continuation is first passed
// through ensureTerminated, so an empty one or one ending in a Choice still
// ends in a state. It returns the key of the first state in frags, or
// continuation itself when frags is empty.
func linkSequence(frags []ir.Fragment, states map[string]ir.State, counter *int, continuation string, sink *diag.Sink, machine string) (string, bool) {
	if continuation == "" {
		frags = ensureTerminated(frags)
	}
	if len(frags) == 0 {
		return continuation, true
	}

	keys := make([]string, len(frags))
	for i, f := range frags {
		st, ok := f.(ir.State)
		if !ok {
			panic(fmt.Sprintf("linker: non-state fragment %T in a linked sequence", f))
		}
		key := st.StateKey()
		if key == "" {
			*counter++
			key = fmt.Sprintf("%s-%d", st.FragmentKind(), *counter)
			st.SetKey(key)
		} else if _, exists := states[key]; exists {
			sink.Abort(diag.KeyCollision, st.Pos(), machine, "duplicate state key %q", key)
			return "", false
		}
		states[key] = st
		keys[i] = key
	}

	for i, f := range frags {
		st := f.(ir.State)
		nextKey := continuation
		if i+1 < len(frags) {
			nextKey = keys[i+1]
		}
		if !linkChildren(st, states, counter, nextKey, sink, machine) {
			return "", false
		}
		if st.IsTerminal() {
			continue
		}
		if _, isChoice := st.(*ir.ChoiceState); isChoice {
			continue
		}
		setNext(st, nextKey)
	}

	return keys[0], true
}

// setNext assigns nextKey as st's Next edge, or marks st End: true when
// nextKey is empty (spec.md §4.2: "the last non-terminal state's Next is
// set to End: true"). Every non-terminal, non-Choice state kind embeds
// ir.Base by pointer-addressable value, so a type switch reaching into the
// concrete type's Base is sufficient; there is no common "SetNext" on the
// State interface because Choice/Succeed/Fail states do not use Base.Next
// the same way.
func setNext(st ir.State, nextKey string) {
	end := nextKey == ""
	switch s := st.(type) {
	case *ir.TaskState:
		s.Next, s.End = nextKey, end
	case *ir.MapState:
		s.Next, s.End = nextKey, end
	case *ir.ParallelState:
		s.Next, s.End = nextKey, end
	case *ir.PassState:
		s.Next, s.End = nextKey, end
	case *ir.WaitState:
		s.Next, s.End = nextKey, end
	default:
		panic(fmt.Sprintf("linker: setNext on unexpected state %T", st))
	}
}

// linkChildren links whatever nested sequences and sub-machines st owns:
// Choice branches and its default, a Task/Map/Parallel's catch blocks, and a
// Map/Parallel's sub-machine(s).
func linkChildren(st ir.State, states map[string]ir.State, counter *int, nextKey string, sink *diag.Sink, machine string) bool {
	switch s := st.(type) {
	case *ir.ChoiceState:
		for i := range s.Branches {
			if len(s.Branches[i].Body) == 0 {
				sink.Abort(diag.ShapeError, s.Branches[i].Pos(), machine, "a choice branch's body may not be empty")
				return false
			}
			head, ok := linkSequence(s.Branches[i].Body, states, counter, nextKey, sink, machine)
			if !ok {
				return false
			}
			s.Branches[i].Next = head
		}
		if s.DefaultIsContinuation {
			s.Default = nextKey
			return true
		}
		head, ok := linkSequence(s.ElseBody, states, counter, nextKey, sink, machine)
		if !ok {
			return false
		}
		s.Default = head
		return true

	case *ir.TaskState:
		return linkCatches(s.Catches, states, counter, nextKey, sink, machine)

	case *ir.MapState:
		if !linkSubMachine(s.Iterator, sink, machine) {
			return false
		}
		return linkCatches(s.Catches, states, counter, nextKey, sink, machine)

	case *ir.ParallelState:
		for _, branch := range s.Branches {
			if !linkSubMachine(branch, sink, machine) {
				return false
			}
		}
		return linkCatches(s.Catches, states, counter, nextKey, sink, machine)

	default:
		return true
	}
}

func linkCatches(catches []ir.Catch, states map[string]ir.State, counter *int, nextKey string, sink *diag.Sink, machine string) bool {
	for i := range catches {
		head, ok := linkSequence(catches[i].Body, states, counter, nextKey, sink, machine)
		if !ok {
			return false
		}
		catches[i].Next = head
	}
	return true
}
