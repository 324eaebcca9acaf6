package condition

// Vars is the shared variable environment that expression conditions
// evaluate against. Hosts write application state into it (step counters,
// screen names, flags) and expression conditions read it on each check.
type Vars struct {
	values map[string]any
}

// NewVars creates an empty variable environment.
func NewVars() *Vars {
	return &Vars{values: make(map[string]any)}
}

// Set stores a value under name.
func (v *Vars) Set(name string, value any) {
	v.values[name] = value
}

// Get returns the value and whether it is present.
func (v *Vars) Get(name string) (any, bool) {
	val, ok := v.values[name]
	return val, ok
}

// Delete removes a value.
func (v *Vars) Delete(name string) {
	delete(v.values, name)
}

// Env returns a copy of the environment for expression evaluation.
func (v *Vars) Env() map[string]any {
	out := make(map[string]any, len(v.values))
	for k, val := range v.values {
		out[k] = val
	}
	return out
}
