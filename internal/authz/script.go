package authz

import (
	"context"
	"fmt"
)

// ScriptEngine evaluates a policy script body against a set of named
// bindings. Evaluations are stateless, one fresh context per call, safe to
// invoke concurrently.
type ScriptEngine interface {
	Evaluate(ctx context.Context, script string, bindings map[string]any) (any, error)
}

// evaluateBool runs a script that must produce a boolean. A malformed script
// or a non-boolean result is a configuration error, never an implicit deny.
func evaluateBool(ctx context.Context, engine ScriptEngine, script string, bindings map[string]any) (bool, error) {
	value, err := engine.Evaluate(ctx, script, bindings)
	if err != nil {
		return false, fmt.Errorf("failed to evaluate policy script: %w", err)
	}

	result, ok := value.(bool)
	if !ok {
		return false, fmt.Errorf("policy script returned %T, expected bool", value)
	}

	return result, nil
}
