package ir

// TaskDefinition is a `class Foo(Task):` declaration: the service a task
// invokes and the resource sizing/behavior attributes §3 and §4.4 define.
type TaskDefinition struct {
	Name     string
	Service  string
	Position Position

	Timeout int
	CPU     int
	Memory  int
	RunBody string

	// Spec is required for service "ecs:worker" and unused otherwise.
	Spec string

	Concurrency        int
	HeartbeatInterval  int
	AutoscalingMin     int
	AutoscalingMax     int
	HasAutoscaling     bool
	HasHeartbeat       bool
	HasConcurrency     bool
}

// Subscription is the decoded form of an `@subscribe(...)` decorator.
type Subscription struct {
	Project             string
	StateMachine        string
	Status              string
	TopicArnImportValue string
	HasTopicArnImport   bool
}

// Schedule is the decoded form of an `@schedule(...)` decorator.
type Schedule struct {
	Expression string
}

// StateMachine is one module-level function's compiled workflow: its
// pre-link Fragments (in source order, as the Statement Visitor produced
// them) and, once the Linker runs, its finished States table keyed by
// StartKey.
type StateMachine struct {
	Name     string
	Position Position

	Fragments []Fragment

	States   map[string]State
	StartKey string

	Schedule     *Schedule
	Subscription *Subscription
	Exported     bool
	MinEngine    string
	HasMinEngine bool

	// Embedded is true when this function is referenced only as a Map
	// iterator or Parallel branch body, never invoked as its own top-level
	// state machine (spec.md §4.5 / SPEC_FULL §D.6).
	Embedded bool

	// Fingerprint is the fingerprint package's DisplayHash for this state
	// machine's canonical IR, computed once linking succeeds.
	Fingerprint string
}

// Eligible reports whether this state machine may be invoked directly,
// per spec.md §4.5: eligible iff exported or named "main", and never when
// embedded.
func (sm *StateMachine) Eligible() bool {
	if sm.Embedded {
		return false
	}
	return sm.Exported || sm.Name == "main"
}

// Project is the fully assembled translation unit: every state machine and
// task class defined at module scope.
type Project struct {
	StateMachines map[string]*StateMachine
	TaskClasses   map[string]*TaskDefinition
}

// NewProject returns an empty Project.
func NewProject() *Project {
	return &Project{
		StateMachines: make(map[string]*StateMachine),
		TaskClasses:   make(map[string]*TaskDefinition),
	}
}
