// Package fingerprint canonicalizes a linked state machine (or an entire
// Project) into a deterministic CBOR encoding and derives a stable digest
// from it, ported from core/planfmt's canonical-encode-then-hash pattern.
package fingerprint

import (
	"fmt"
	"sort"

	"github.com/fluxforge/aslc/ir"
)

// canonicalStateMachine replaces every synthesized or explicit state key
// with a placeholder assigned by a breadth-first walk from StartKey, so the
// encoding is insensitive to incidental key-naming choices and depends only
// on graph shape and state content.
type canonicalStateMachine struct {
	Name         string             `cbor:"name"`
	States       []canonicalState   `cbor:"states"`
	Exported     bool               `cbor:"exported"`
	Schedule     *ir.Schedule       `cbor:"schedule,omitempty"`
	Subscription *ir.Subscription   `cbor:"subscription,omitempty"`
}

type canonicalState struct {
	Placeholder string  `cbor:"id"`
	Kind        ir.Kind `cbor:"kind"`

	Next    string `cbor:"next,omitempty"`
	End     bool    `cbor:"end,omitempty"`
	Default string `cbor:"default,omitempty"`

	Branches []canonicalBranch `cbor:"branches,omitempty"`
	Catches  []canonicalCatch  `cbor:"catches,omitempty"`
	Retries  []ir.Retry        `cbor:"retries,omitempty"`

	Service        string                 `cbor:"service,omitempty"`
	Resource       string                 `cbor:"resource,omitempty"`
	Parameters     map[string]interface{} `cbor:"parameters,omitempty"`
	InputPath      string                 `cbor:"input_path,omitempty"`
	ResultPath     string                 `cbor:"result_path,omitempty"`
	ResultPathNull bool                   `cbor:"result_path_null,omitempty"`

	ItemsPath      string                    `cbor:"items_path,omitempty"`
	MaxConcurrency int                       `cbor:"max_concurrency,omitempty"`
	Iterator       *canonicalStateMachine    `cbor:"iterator,omitempty"`
	Branches2      []*canonicalStateMachine  `cbor:"parallel_branches,omitempty"`

	Result interface{} `cbor:"result,omitempty"`

	Seconds       int    `cbor:"seconds,omitempty"`
	SecondsPath   string `cbor:"seconds_path,omitempty"`
	Timestamp     string `cbor:"timestamp,omitempty"`
	TimestampPath string `cbor:"timestamp_path,omitempty"`

	Error string `cbor:"error,omitempty"`
	Cause string `cbor:"cause,omitempty"`
}

type canonicalBranch struct {
	Rule *ir.ChoiceRule `cbor:"rule"`
	Next string         `cbor:"next"`
}

type canonicalCatch struct {
	ErrorEquals []string `cbor:"error_equals"`
	Next        string   `cbor:"next"`
	ResultPath  string   `cbor:"result_path,omitempty"`
	HasResult   bool     `cbor:"has_result,omitempty"`
}

// canonicalize builds a canonicalStateMachine from a linked machine's
// StartKey/States. It panics (an invariant violation, not a diagnostic) if
// StartKey is unset, since that means the Linker did not actually finish.
func canonicalize(name string, states map[string]ir.State, startKey string, schedule *ir.Schedule, sub *ir.Subscription, exported bool) *canonicalStateMachine {
	if startKey == "" {
		panic(fmt.Sprintf("fingerprint: state machine %q has no start key", name))
	}
	order, index := bfsOrder(states, startKey)
	out := make([]canonicalState, len(order))
	for i, key := range order {
		out[i] = canonicalizeState(states[key], index)
	}
	return &canonicalStateMachine{
		Name:         name,
		States:       out,
		Exported:     exported,
		Schedule:     schedule,
		Subscription: sub,
	}
}

func bfsOrder(states map[string]ir.State, start string) ([]string, map[string]string) {
	visited := make(map[string]bool, len(states))
	var order []string
	queue := []string{start}
	for len(queue) > 0 {
		k := queue[0]
		queue = queue[1:]
		if k == "" || visited[k] {
			continue
		}
		visited[k] = true
		order = append(order, k)
		queue = append(queue, successors(states[k])...)
	}
	var rest []string
	for k := range states {
		if !visited[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	order = append(order, rest...)

	index := make(map[string]string, len(order))
	for i, k := range order {
		index[k] = fmt.Sprintf("s%d", i)
	}
	return order, index
}

func successors(st ir.State) []string {
	switch s := st.(type) {
	case *ir.TaskState:
		return append([]string{s.Next}, catchNexts(s.Catches)...)
	case *ir.MapState:
		return append([]string{s.Next}, catchNexts(s.Catches)...)
	case *ir.ParallelState:
		return append([]string{s.Next}, catchNexts(s.Catches)...)
	case *ir.PassState:
		return []string{s.Next}
	case *ir.WaitState:
		return []string{s.Next}
	case *ir.ChoiceState:
		next := []string{s.Default}
		for _, b := range s.Branches {
			next = append(next, b.Next)
		}
		return next
	default:
		return nil
	}
}

func catchNexts(catches []ir.Catch) []string {
	out := make([]string, len(catches))
	for i, c := range catches {
		out[i] = c.Next
	}
	return out
}

func canonicalizeState(st ir.State, index map[string]string) canonicalState {
	remap := func(k string) string {
		if k == "" {
			return ""
		}
		return index[k]
	}
	base := canonicalState{
		Placeholder: index[st.StateKey()],
		Kind:        st.FragmentKind(),
	}

	switch s := st.(type) {
	case *ir.TaskState:
		base.Next, base.End = remap(s.Next), s.End
		base.Service, base.Resource, base.Parameters = s.Service, s.Resource, s.Parameters
		base.InputPath = s.InputPath
		base.ResultPath, base.ResultPathNull = s.ResultPath, s.ResultPathNull
		base.Catches = canonicalizeCatches(s.Catches, index)
		base.Retries = s.Retries
	case *ir.MapState:
		base.Next, base.End = remap(s.Next), s.End
		base.ItemsPath, base.MaxConcurrency = s.ItemsPath, s.MaxConcurrency
		base.ResultPath = s.ResultPath
		base.Catches = canonicalizeCatches(s.Catches, index)
		base.Retries = s.Retries
		if s.Iterator != nil {
			base.Iterator = canonicalize("", s.Iterator.States, s.Iterator.StartKey, nil, nil, false)
		}
	case *ir.ParallelState:
		base.Next, base.End = remap(s.Next), s.End
		base.ResultPath = s.ResultPath
		base.Catches = canonicalizeCatches(s.Catches, index)
		base.Retries = s.Retries
		for _, br := range s.Branches {
			base.Branches2 = append(base.Branches2, canonicalize("", br.States, br.StartKey, nil, nil, false))
		}
	case *ir.PassState:
		base.Next, base.End = remap(s.Next), s.End
		base.Result, base.ResultPath = s.Result, s.ResultPath
	case *ir.WaitState:
		base.Next, base.End = remap(s.Next), s.End
		base.Seconds, base.SecondsPath = s.Seconds, s.SecondsPath
		base.Timestamp, base.TimestampPath = s.Timestamp, s.TimestampPath
	case *ir.ChoiceState:
		base.Default = remap(s.Default)
		for _, b := range s.Branches {
			base.Branches = append(base.Branches, canonicalBranch{Rule: b.Rule, Next: remap(b.Next)})
		}
	case *ir.FailState:
		base.Error, base.Cause = s.Error, s.Cause
	}
	return base
}

func canonicalizeCatches(catches []ir.Catch, index map[string]string) []canonicalCatch {
	out := make([]canonicalCatch, len(catches))
	for i, c := range catches {
		out[i] = canonicalCatch{
			ErrorEquals: c.ErrorEquals,
			Next:        index[c.Next],
			ResultPath:  c.ResultPath,
			HasResult:   c.HasResult,
		}
	}
	return out
}
