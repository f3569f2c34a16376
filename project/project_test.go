package project

import (
	"testing"

	"github.com/fluxforge/aslc/ir"
	"github.com/fluxforge/aslc/parser"
	"github.com/fluxforge/aslc/types"
)

func assemble(t *testing.T, src string) *ir.Project {
	t.Helper()
	prog, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	proj, sink, err := Assemble(prog, types.DefaultConfig())
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if sink.HasErrors() {
		t.Fatalf("Assemble() reported errors: %v", sink.Diagnostics())
	}
	return proj
}

func TestAssemble_MainIsEligibleAndLinked(t *testing.T) {
	src := "class SendEmail(Task):\n    service = \"lambda\"\n\ndef main():\n    SendEmail()\n"
	proj := assemble(t, src)

	sm, ok := proj.StateMachines["main"]
	if !ok {
		t.Fatal("expected \"main\" in StateMachines")
	}
	if sm.StartKey == "" {
		t.Error("main must be linked (non-empty StartKey)")
	}
	if sm.Fingerprint == "" {
		t.Error("main must carry a computed Fingerprint")
	}
	if !sm.Eligible() {
		t.Error("main must be eligible")
	}
}

func TestAssemble_UnexportedNonMainIsExcludedFromEligibleSetButStillLinked(t *testing.T) {
	src := "def helper():\n    return\n\ndef main():\n    return\n"
	proj := assemble(t, src)

	helper, ok := proj.StateMachines["helper"]
	if !ok {
		t.Fatal("expected \"helper\" to still be linked and present")
	}
	if helper.Eligible() {
		t.Error("an unexported, non-main function must not be eligible")
	}
}

func TestAssemble_EmbeddedMapIteratorIsExcludedFromEligibility(t *testing.T) {
	src := "def perItem():\n    return\n\ndef main():\n    data[\"items\"] = map(data[\"items\"], perItem)\n"
	proj := assemble(t, src)

	iter, ok := proj.StateMachines["perItem"]
	if !ok {
		t.Fatal("expected \"perItem\" to be present")
	}
	if !iter.Embedded {
		t.Error("perItem must be marked Embedded")
	}
	if iter.Eligible() {
		t.Error("an embedded function must never be eligible even if named main-like")
	}
}

func TestAssemble_ScheduleDecoratorMakesFunctionExported(t *testing.T) {
	src := "@schedule(expression=\"rate(1 day)\")\ndef nightly():\n    return\n"
	proj := assemble(t, src)

	sm, ok := proj.StateMachines["nightly"]
	if !ok {
		t.Fatal("expected \"nightly\" to be present")
	}
	if !sm.Exported || sm.Schedule == nil {
		t.Errorf("nightly = %+v, want Exported and a Schedule", sm)
	}
	if !sm.Eligible() {
		t.Error("a scheduled function must be eligible")
	}
}

func TestAssemble_AbortedStateMachineIsAbsentFromProject(t *testing.T) {
	src := "def main():\n    doSomethingUnknown()\n"
	prog, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	proj, sink, err := Assemble(prog, types.DefaultConfig())
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if !sink.HasErrors() {
		t.Fatal("expected Assemble() to report an error for the unknown call")
	}
	if _, ok := proj.StateMachines["main"]; ok {
		t.Error("an aborted state machine must not appear in the assembled Project")
	}
}

func TestAssemble_StateMachineTaskMustNameADefinedFunction(t *testing.T) {
	src := "class RunSub(Task):\n    service = \"state-machine\"\n\ndef main():\n    RunSub()\n"
	prog, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	proj, sink, err := Assemble(prog, types.DefaultConfig())
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if !sink.HasErrors() {
		t.Fatal("expected a ReferenceError for a state-machine task naming an undefined function")
	}
	if _, ok := proj.TaskClasses["RunSub"]; ok {
		t.Error("an unresolvable state-machine task class must not be indexed in TaskClasses")
	}
}

func TestAssemble_StateMachineTaskResolvesToDefinedFunction(t *testing.T) {
	src := "class RunSub(Task):\n    service = \"state-machine\"\n\ndef RunSub():\n    return\n\ndef main():\n    RunSub()\n"
	proj := assemble(t, src)

	if _, ok := proj.TaskClasses["RunSub"]; !ok {
		t.Error("expected RunSub in TaskClasses once it resolves to a defined function")
	}
}

func TestAssemble_TaskClassesAreIndexedByName(t *testing.T) {
	src := "class SendEmail(Task):\n    service = \"lambda\"\n\ndef main():\n    SendEmail()\n"
	proj := assemble(t, src)

	if _, ok := proj.TaskClasses["SendEmail"]; !ok {
		t.Error("expected SendEmail in TaskClasses")
	}
}
