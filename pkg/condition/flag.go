package condition

// Flag is a condition driven entirely by external pushes: a trigger source
// (UI click, drag completion, event bus) calls Set or NotifyPossibleChange
// whenever satisfaction may have flipped. This is the boundary type for
// collaborators that detect interaction outside the orchestration core.
type Flag struct {
	Base
	value bool
}

// NewFlag creates an unsatisfied flag condition.
func NewFlag(id string, opts ...Option) *Flag {
	return &Flag{Base: NewBase(id, opts...)}
}

func (f *Flag) Satisfied() bool { return f.value }

func (f *Flag) StartListening() { f.BeginListen(f) }
func (f *Flag) StopListening()  { f.EndListen() }

// CheckState republishes on flip. Flags normally do not poll, but honor the
// contract when opted in via WithPoll.
func (f *Flag) CheckState() { f.Publish(f) }

// Set updates the flag value and publishes a change if the value flipped.
func (f *Flag) Set(v bool) {
	f.value = v
	f.Publish(f)
}

// Fire is shorthand for Set(true).
func (f *Flag) Fire() { f.Set(true) }

// NotifyPossibleChange republishes the current value if it flipped since
// last observed. Collaborators that mutate state out of band call this.
func (f *Flag) NotifyPossibleChange() { f.Publish(f) }
