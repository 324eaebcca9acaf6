package condition

// Func wraps an arbitrary predicate whose result can change without any
// external push, so it defaults to periodic checking (polling UI visibility
// is the canonical case). A nil predicate degrades to unsatisfied.
type Func struct {
	Base
	predicate func() bool
}

// NewFunc creates a polled predicate condition.
func NewFunc(id string, predicate func() bool, opts ...Option) *Func {
	opts = append([]Option{WithPoll()}, opts...)
	return &Func{Base: NewBase(id, opts...), predicate: predicate}
}

func (f *Func) Satisfied() bool {
	if f.predicate == nil {
		return false
	}
	return f.predicate()
}

func (f *Func) StartListening() { f.BeginListen(f) }
func (f *Func) StopListening()  { f.EndListen() }
func (f *Func) CheckState()     { f.Publish(f) }
