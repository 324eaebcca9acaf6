package guide

// Effect is the opaque presentation unit attached to an item: a highlight,
// a mask, a drag hint. The core only ever plays, pauses, resumes, and stops
// it, and subscribes to its completion signal; rendering internals live
// with the collaborator. Effects are best-effort presentation: a failing
// effect is logged and the item proceeds on condition-driven transitions.
type Effect interface {
	Play() error
	Stop() error
	Pause() error
	Resume() error

	// OnCompleted registers a completion observer and returns its remove
	// func. Implementations fire observers at most once per Play.
	OnCompleted(fn func()) (remove func())
}

// CompletionSignal is an embeddable helper managing an effect's completion
// observers. Custom effects embed it and call SignalCompleted when their
// animation finishes.
type CompletionSignal struct {
	obs signal[struct{}]
}

// OnCompleted registers a completion observer.
func (s *CompletionSignal) OnCompleted(fn func()) func() {
	return s.obs.add(func(struct{}) { fn() })
}

// SignalCompleted notifies all completion observers.
func (s *CompletionSignal) SignalCompleted() {
	s.obs.emit(struct{}{})
}

// NopEffect is the default effect: it does nothing and never completes.
// Items without a visual carry one so the state machine never branches on a
// missing effect.
type NopEffect struct {
	CompletionSignal
}

func (*NopEffect) Play() error   { return nil }
func (*NopEffect) Stop() error   { return nil }
func (*NopEffect) Pause() error  { return nil }
func (*NopEffect) Resume() error { return nil }
