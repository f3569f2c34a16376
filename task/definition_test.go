package task

import (
	"testing"

	"github.com/fluxforge/aslc/ast"
	"github.com/fluxforge/aslc/diag"
	"github.com/fluxforge/aslc/types"
)

func classWith(stmts ...ast.Stmt) *ast.ClassDef {
	return &ast.ClassDef{Name: "SendEmail", Bases: []string{"Task"}, Body: stmts}
}

func assign(name string, value ast.Expression) *ast.Assign {
	return &ast.Assign{Target: &ast.Name{Id: name}, Value: value}
}

func TestParseDefinition_MinimalLambda(t *testing.T) {
	cfg := types.DefaultConfig()
	sink := diag.NewSink()
	class := classWith(assign("service", &ast.StringLit{Value: ServiceLambda}))

	def, ok := ParseDefinition(class, cfg, sink)
	if !ok {
		t.Fatalf("ParseDefinition() failed: %v", sink.Diagnostics())
	}
	if def.Service != ServiceLambda {
		t.Errorf("Service = %q, want %q", def.Service, ServiceLambda)
	}
	if def.Timeout != cfg.DefaultTimeout {
		t.Errorf("Timeout = %d, want the config default %d", def.Timeout, cfg.DefaultTimeout)
	}
	if def.Concurrency != 1 {
		t.Errorf("Concurrency = %d, want default 1", def.Concurrency)
	}
}

func TestParseDefinition_MissingService(t *testing.T) {
	cfg := types.DefaultConfig()
	sink := diag.NewSink()
	class := classWith(assign("timeout", &ast.NumberLit{Value: 30}))

	_, ok := ParseDefinition(class, cfg, sink)
	if ok {
		t.Fatal("ParseDefinition() succeeded without a service attribute")
	}
	if !sink.Aborted("SendEmail") {
		t.Error("expected the missing-service class to abort")
	}
}

func TestParseDefinition_UnknownService(t *testing.T) {
	cfg := types.DefaultConfig()
	sink := diag.NewSink()
	class := classWith(assign("service", &ast.StringLit{Value: "sqs"}))

	_, ok := ParseDefinition(class, cfg, sink)
	if ok {
		t.Fatal("ParseDefinition() accepted an unknown service")
	}
}

func TestParseDefinition_ECSWorkerRequiresSpec(t *testing.T) {
	cfg := types.DefaultConfig()
	sink := diag.NewSink()
	class := classWith(assign("service", &ast.StringLit{Value: ServiceECSWorker}))

	_, ok := ParseDefinition(class, cfg, sink)
	if ok {
		t.Fatal("ParseDefinition() accepted service=ecs:worker without spec=")
	}
}

func TestParseDefinition_HeartbeatMustBeLessThanTimeout(t *testing.T) {
	cfg := types.DefaultConfig()
	sink := diag.NewSink()
	class := classWith(
		assign("service", &ast.StringLit{Value: ServiceECSWorker}),
		assign("spec", &ast.StringLit{Value: "worker.json"}),
		assign("timeout", &ast.NumberLit{Value: 60}),
		assign("heartbeat_interval", &ast.NumberLit{Value: 120}),
	)

	_, ok := ParseDefinition(class, cfg, sink)
	if ok {
		t.Fatal("ParseDefinition() accepted heartbeat_interval >= timeout")
	}
}

func TestParseDefinition_ECSSizingMustBeAValidFargatePair(t *testing.T) {
	cfg := types.DefaultConfig()
	sink := diag.NewSink()
	class := classWith(
		assign("service", &ast.StringLit{Value: ServiceECS}),
		assign("cpu", &ast.NumberLit{Value: 256}),
		assign("memory", &ast.NumberLit{Value: 99999}),
	)

	_, ok := ParseDefinition(class, cfg, sink)
	if ok {
		t.Fatal("ParseDefinition() accepted an invalid cpu/memory pairing for ECS")
	}
}

func TestParseDefinition_LambdaMemoryMustBeInAllowlist(t *testing.T) {
	cfg := types.DefaultConfig()
	sink := diag.NewSink()
	class := classWith(
		assign("service", &ast.StringLit{Value: ServiceLambda}),
		assign("memory", &ast.NumberLit{Value: 777}),
	)

	_, ok := ParseDefinition(class, cfg, sink)
	if ok {
		t.Fatal("ParseDefinition() accepted a lambda memory value outside the allowlist")
	}
}

func TestParseDefinition_LambdaMemoryFromAllowlistSucceeds(t *testing.T) {
	cfg := types.DefaultConfig()
	sink := diag.NewSink()
	class := classWith(
		assign("service", &ast.StringLit{Value: ServiceLambda}),
		assign("memory", &ast.NumberLit{Value: 512}),
	)

	def, ok := ParseDefinition(class, cfg, sink)
	if !ok {
		t.Fatalf("ParseDefinition() failed: %v", sink.Diagnostics())
	}
	if def.Memory != 512 {
		t.Errorf("Memory = %d, want 512", def.Memory)
	}
}

func TestParseDefinition_CarriesRunBodyVerbatim(t *testing.T) {
	cfg := types.DefaultConfig()
	sink := diag.NewSink()
	class := classWith(assign("service", &ast.StringLit{Value: ServiceLambda}))
	class.RunBody = "return {\"ok\": True}"

	def, ok := ParseDefinition(class, cfg, sink)
	if !ok {
		t.Fatalf("ParseDefinition() failed: %v", sink.Diagnostics())
	}
	if def.RunBody != class.RunBody {
		t.Errorf("RunBody = %q, want it copied verbatim from the class", def.RunBody)
	}
}
