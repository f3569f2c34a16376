package task

import "github.com/fluxforge/aslc/ir"

// traceKey names the reserved-key propagation block (built by traceBlock)
// that Factory.Build attaches to every task's Parameters, carrying execution tracing metadata
// through to the invoked service. Constants.py's __trace reservation means
// no DSL author may ever target this key with a result_path.
const traceKey = "__trace"

func traceBlock() map[string]interface{} {
	return map[string]interface{}{
		"sfn_execution_name.$": "$$.Execution.Name",
		"trace_id.$":           "$$.Execution.Id",
	}
}

// resource returns the ASL Resource ARN for a service, and the base
// Parameters template before the caller's extra arguments and __trace
// block are merged in.
func resource(def *ir.TaskDefinition, isMapIterator bool) (string, map[string]interface{}) {
	switch def.Service {
	case ServiceLambda:
		return "arn:aws:states:::lambda:invoke", map[string]interface{}{
			"FunctionName": def.Name,
			"Payload.$":    "$",
		}
	case ServiceLambdaPexpm:
		return "arn:aws:states:::lambda:invoke", map[string]interface{}{
			"FunctionName": def.Name,
			"Payload": map[string]interface{}{
				"pexpm_module": def.Name,
				"input.$":      "$",
			},
		}
	case ServiceECS:
		return "arn:aws:states:::ecs:runTask.sync", map[string]interface{}{
			"LaunchType":     "FARGATE",
			"TaskDefinition": def.Name,
			"Overrides": map[string]interface{}{
				"Cpu":    def.CPU,
				"Memory": def.Memory,
			},
		}
	case ServiceECSWorker:
		params := map[string]interface{}{
			"LaunchType":     "FARGATE",
			"TaskDefinition": def.Name,
			"Overrides": map[string]interface{}{
				"Cpu":    def.CPU,
				"Memory": def.Memory,
			},
			"TaskToken.$": "$$.Task.Token",
		}
		if isMapIterator {
			params["MessageGroupId.$"] = "States.Format('{}-{}', $$.Execution.Name, $$.Map.Item.Index)"
		} else {
			params["MessageGroupId.$"] = "States.Format('{}', $$.Execution.Name)"
		}
		return "arn:aws:states:::ecs:runTask.waitForTaskToken", params
	case ServiceStateMachine:
		return "arn:aws:states:::states:startExecution.sync:2", map[string]interface{}{
			"StateMachineArn": def.Name,
			"Input.$":         "$",
		}
	default:
		return "", nil
	}
}

// ReturnsData reports whether a service's Task state may carry a non-null
// ResultPath (spec.md §4.4): only the lambda family invokes synchronously
// and returns usable data.
func ReturnsData(service string) bool {
	return returnsData[service]
}
