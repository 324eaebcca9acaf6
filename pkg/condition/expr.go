package condition

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Expr evaluates a boolean expression against a shared variable environment.
// Supports clean syntax: step_count > 3, screen == "settings", done, etc.
// The expression can flip whenever the host mutates Vars, so Expr polls by
// default; pushes via NotifyPossibleChange re-check immediately.
//
// Evaluation never errors out to the caller: a failing expression (missing
// variable, type mismatch) degrades to unsatisfied.
type Expr struct {
	Base
	source  string
	program *vm.Program
	vars    *Vars
}

// NewExpr compiles source and binds it to vars. The only error path is a
// compile failure; once constructed the condition cannot fail.
func NewExpr(id, source string, vars *Vars, opts ...Option) (*Expr, error) {
	program, err := CompileExpr(source)
	if err != nil {
		return nil, err
	}
	opts = append([]Option{WithPoll()}, opts...)
	return &Expr{
		Base:    NewBase(id, opts...),
		source:  source,
		program: program,
		vars:    vars,
	}, nil
}

// CompileExpr compiles a condition expression to a boolean program. Exposed
// so tour validation can check expressions without instantiating conditions.
func CompileExpr(source string) (*vm.Program, error) {
	program, err := expr.Compile(source,
		expr.Env(map[string]any{}),
		expr.AllowUndefinedVariables(),
		expr.AsBool(),
	)
	if err != nil {
		return nil, fmt.Errorf("compile condition %q: %w", source, err)
	}
	return program, nil
}

// Source returns the original expression text.
func (e *Expr) Source() string { return e.source }

func (e *Expr) Satisfied() bool {
	if e.program == nil || e.vars == nil {
		return false
	}
	output, err := expr.Run(e.program, e.vars.Env())
	if err != nil {
		return false
	}
	result, ok := output.(bool)
	return ok && result
}

func (e *Expr) StartListening() { e.BeginListen(e) }
func (e *Expr) StopListening()  { e.EndListen() }
func (e *Expr) CheckState()     { e.Publish(e) }

// NotifyPossibleChange re-checks after a host-side Vars mutation.
func (e *Expr) NotifyPossibleChange() { e.Publish(e) }
