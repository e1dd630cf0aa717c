// Package exprscript evaluates policy scripts with the expr expression
// language. The binding surface (right, userinfo, param, result, state,
// hasRight, hasAnyRight) is the stable contract; the engine behind it is
// swappable.
package exprscript

import (
	"context"
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

func NewEngine() *Engine {
	return &Engine{}
}

// Engine compiles scripts once and caches the programs. Each evaluation runs
// with its own binding environment, so concurrent calls are independent.
type Engine struct {
	programs sync.Map // script body -> *vm.Program
}

func (e *Engine) Evaluate(ctx context.Context, script string, bindings map[string]any) (any, error) {
	program, err := e.compile(script)
	if err != nil {
		return nil, fmt.Errorf("failed to compile policy script: %w", err)
	}

	value, err := expr.Run(program, bindings)
	if err != nil {
		return nil, fmt.Errorf("failed to run policy script: %w", err)
	}

	return value, nil
}

func (e *Engine) compile(script string) (*vm.Program, error) {
	if cached, ok := e.programs.Load(script); ok {
		return cached.(*vm.Program), nil
	}

	program, err := expr.Compile(script, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, err
	}

	e.programs.Store(script, program)

	return program, nil
}
