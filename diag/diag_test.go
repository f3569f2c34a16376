package diag

import (
	"testing"

	"github.com/fluxforge/aslc/ast"
)

func TestSinkReportDoesNotAbort(t *testing.T) {
	sink := NewSink()
	sink.Report(AttributeError, ast.Position{Line: 1}, "result_path has no effect on %s", "ecs")

	if sink.Aborted("main") {
		t.Error("Report() must not mark any state machine aborted")
	}
	if sink.HasErrors() {
		t.Error("HasErrors() must be false after only a Report()")
	}
	if len(sink.Diagnostics()) != 1 {
		t.Fatalf("Diagnostics() has %d entries, want 1", len(sink.Diagnostics()))
	}
}

func TestSinkAbortMarksOnlyItsOwnMachine(t *testing.T) {
	sink := NewSink()
	sink.Abort(KeyCollision, ast.Position{Line: 5}, "checkout", "duplicate state key %q", "Task-1")

	if !sink.Aborted("checkout") {
		t.Error("Aborted(\"checkout\") = false, want true")
	}
	if sink.Aborted("billing") {
		t.Error("Aborted(\"billing\") = true, want false: Abort must be scoped to its own state machine")
	}
	if !sink.HasErrors() {
		t.Error("HasErrors() = false after an Abort(), want true")
	}
}

func TestDiagnosticString(t *testing.T) {
	d := Diagnostic{Kind: ShapeError, Position: ast.Position{Line: 3, Column: 4}, Message: "bad shape"}
	want := "ShapeError at 3:4: bad shape"
	if got := d.String(); got != want {
		t.Errorf("Diagnostic.String() = %q, want %q", got, want)
	}
}

func TestKindString(t *testing.T) {
	if SyntaxUnsupported.String() != "SyntaxUnsupported" {
		t.Errorf("SyntaxUnsupported.String() = %q", SyntaxUnsupported.String())
	}
	if Kind(99).String() != "Unknown" {
		t.Errorf("Kind(99).String() = %q, want Unknown", Kind(99).String())
	}
}
