package condition

import "testing"

// TestExprAgainstVars verifies evaluation against the shared variable
// environment and re-evaluation after writes.
func TestExprAgainstVars(t *testing.T) {
	vars := NewVars()
	vars.Set("step_count", 1)

	e, err := NewExpr("enough-steps", "step_count > 3", vars)
	if err != nil {
		t.Fatalf("NewExpr: %v", err)
	}
	if e.Satisfied() {
		t.Fatal("1 > 3 must be unsatisfied")
	}

	vars.Set("step_count", 5)
	if !e.Satisfied() {
		t.Fatal("5 > 3 must be satisfied")
	}
}

// TestExprCompileError verifies the only error path is compilation.
func TestExprCompileError(t *testing.T) {
	if _, err := NewExpr("broken", "step_count >", NewVars()); err == nil {
		t.Fatal("expected compile error for malformed expression")
	}
}

// TestExprRuntimeErrorDegrades verifies a failing evaluation (undefined
// variable in a comparison) degrades to unsatisfied rather than erroring.
func TestExprRuntimeErrorDegrades(t *testing.T) {
	e, err := NewExpr("missing", "missing_var > 3", NewVars())
	if err != nil {
		t.Fatalf("NewExpr: %v", err)
	}
	if e.Satisfied() {
		t.Fatal("evaluation over an undefined variable must degrade to false")
	}
}

// TestExprNotifyPossibleChange verifies the push path publishes on a flip
// caused by a host-side variable write.
func TestExprNotifyPossibleChange(t *testing.T) {
	vars := NewVars()
	vars.Set("screen", "home")
	e, err := NewExpr("on-settings", `screen == "settings"`, vars)
	if err != nil {
		t.Fatalf("NewExpr: %v", err)
	}
	e.StartListening()

	events := 0
	e.OnChanged(func(Condition) { events++ })

	vars.Set("screen", "settings")
	e.NotifyPossibleChange()
	if events != 1 {
		t.Fatalf("events = %d, want 1 after flip", events)
	}
	e.NotifyPossibleChange()
	if events != 1 {
		t.Fatalf("events = %d, want 1 after redundant notify", events)
	}
}

// TestVarsEnvIsCopy verifies Env hands out a snapshot, not the live map.
func TestVarsEnvIsCopy(t *testing.T) {
	vars := NewVars()
	vars.Set("k", 1)
	env := vars.Env()
	env["k"] = 99
	if v, _ := vars.Get("k"); v != 1 {
		t.Fatalf("mutating the Env() copy leaked into Vars: got %v", v)
	}
}
