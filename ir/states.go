package ir

// Retry is the ASL Retry block attached to a Task, Map, or Parallel state.
// Explicit `with retry(...)` blocks in source take precedence over a task
// family's DefaultRetries() for any error set they overlap with;
// task.MergeRetries only appends a default retry whose ErrorEquals set is
// disjoint from every explicit retry already present.
type Retry struct {
	ErrorEquals     []string
	IntervalSeconds int
	MaxAttempts     int
	BackoffRate     float64
}

// Catch is the ASL Catch block attached to a Task, Map, or Parallel state.
// Catch entries preserve source order; ASL evaluates them in order and the
// first matching ErrorEquals set wins, so ordering is semantically load
// bearing and must never be reordered by the Linker. Body holds the
// handler's unlinked statement sequence as the Statement Visitor emitted
// it; the Linker links Body and fills Next with its head key.
type Catch struct {
	ErrorEquals []string
	Body        []Fragment
	Next        string
	ResultPath  string
	HasResult   bool
}

// ChoiceBranch is one arm of a Choice state: a compiled condition and the
// unlinked statement sequence to run when it matches. The Linker links
// Body and fills Next with its head key.
type ChoiceBranch struct {
	Position Position
	Rule     *ChoiceRule
	Body     []Fragment
	Next     string
}

func (c *ChoiceBranch) FragmentKind() Kind { return KindChoiceBranch }
func (c *ChoiceBranch) Pos() Position      { return c.Position }

// ParallelBranch is one branch of a Parallel state: an isolated sub-machine
// that runs concurrently with its siblings.
type ParallelBranch struct {
	Position   Position
	SubMachine *SubMachine
}

func (p *ParallelBranch) FragmentKind() Kind { return KindParallelBranch }
func (p *ParallelBranch) Pos() Position      { return p.Position }

// TaskState invokes a task class's run body through the service the task
// class declares. ResultPath is only ever populated for a service in the
// lambda family (spec.md §4.4); every other service leaves it unset and a
// non-nil user-provided result_path produces a warning, not a hard error.
type TaskState struct {
	Base
	Service        string
	Resource       string
	Parameters     map[string]interface{}
	InputPath      string
	HasInputPath   bool
	ResultPath     string
	HasResultPath  bool
	ResultPathNull bool
	Catches        []Catch
	Retries        []Retry
}

func (t *TaskState) FragmentKind() Kind { return KindTask }

// ChoiceState evaluates its Branches in order; the first matching branch's
// Next wins. Default is the key to transition to when no branch matches —
// always populated once linked, since an absent `else` synthesizes an
// implicit default pointing straight at the Choice's own continuation
// (DefaultIsContinuation), and an explicit `else` links ElseBody the same
// way a branch's Body is linked.
type ChoiceState struct {
	Base
	Branches               []ChoiceBranch
	ElseBody               []Fragment
	DefaultIsContinuation  bool
	Default                string
}

func (c *ChoiceState) FragmentKind() Kind { return KindChoice }

// MapState iterates ItemsPath, running Iterator once per item. Parameters
// carries the context_index/context_value passthrough metadata the original
// implementation attaches alongside ItemsPath; no table/partition-key
// bookkeeping is added to it.
type MapState struct {
	Base
	ItemsPath      string
	Iterator       *SubMachine
	Parameters     map[string]string
	MaxConcurrency int
	ResultPath     string
	Catches        []Catch
	Retries        []Retry
}

func (m *MapState) FragmentKind() Kind { return KindMap }

// ParallelState runs each of Branches concurrently and merges their
// results into an array at ResultPath.
type ParallelState struct {
	Base
	Branches   []*SubMachine
	ResultPath string
	Catches    []Catch
	Retries    []Retry
}

func (p *ParallelState) FragmentKind() Kind { return KindParallel }

// PassState injects Result into the execution data without invoking any
// service. The empty-body boundary case (spec.md §8) produces no
// PassState: the Linker substitutes a single Succeed state for it.
type PassState struct {
	Base
	Result        interface{}
	ResultPath    string
	HasResultPath bool
}

func (p *PassState) FragmentKind() Kind { return KindPass }

// WaitState pauses execution. Exactly one of
// Seconds/SecondsPath/Timestamp/TimestampPath is set; timestamp comparisons
// are out of scope (spec.md Non-goals) but a literal wait(timestamp=...)
// call is still representable.
type WaitState struct {
	Base
	Seconds       int
	SecondsPath   string
	Timestamp     string
	TimestampPath string
}

func (w *WaitState) FragmentKind() Kind { return KindWait }

// SucceedState ends the state machine successfully. Always terminal.
type SucceedState struct {
	Base
}

func (s *SucceedState) FragmentKind() Kind { return KindSucceed }
func (s *SucceedState) IsTerminal() bool   { return true }

// FailState ends the state machine with an error. Always terminal.
type FailState struct {
	Base
	Error string
	Cause string
}

func (f *FailState) FragmentKind() Kind { return KindFail }
func (f *FailState) IsTerminal() bool   { return true }
