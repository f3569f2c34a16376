package task

import "github.com/fluxforge/aslc/ir"

// DefaultRetries returns the retry policy a service applies even when the
// DSL author writes no `with retry(...)` block. Only the lambda family
// carries one, ported from lambda_function.py/lambda_pexpm_runner.py's
// DEFAULT_RETRIES; ecs.py and state_machine.py declare no such thing in
// the original, so ecs/ecs:worker/state-machine tasks retry only when the
// DSL author writes an explicit `with retry(...)` block. MergeRetries only
// keeps a default retry whose ErrorEquals set does not overlap any explicit
// retry attached to the same task.
func DefaultRetries(service string) []ir.Retry {
	switch service {
	case ServiceLambda, ServiceLambdaPexpm:
		return []ir.Retry{{
			ErrorEquals:     []string{"Lambda.ServiceException", "Lambda.AWSLambdaException", "Lambda.SdkClientException"},
			IntervalSeconds: 2,
			MaxAttempts:     6,
			BackoffRate:     2.0,
		}}
	default:
		return nil
	}
}

// MergeRetries appends defaults whose ErrorEquals set does not overlap any
// explicit retry already present, preserving explicit-first order. A
// default that shares even one error with an explicit retry is dropped
// whole.
func MergeRetries(explicit []ir.Retry, defaults []ir.Retry) []ir.Retry {
	covered := make(map[string]bool)
	for _, r := range explicit {
		for _, e := range r.ErrorEquals {
			covered[e] = true
		}
	}
	merged := append([]ir.Retry(nil), explicit...)
	for _, d := range defaults {
		overlaps := false
		for _, e := range d.ErrorEquals {
			if covered[e] {
				overlaps = true
				break
			}
		}
		if !overlaps {
			merged = append(merged, d)
		}
	}
	return merged
}
