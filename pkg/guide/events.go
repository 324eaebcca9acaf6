package guide

// signal is a minimal observer list. Callbacks run in registration order;
// emit iterates a snapshot so observers may remove themselves (or register
// others) mid-notification.
type signal[T any] struct {
	obs  []sigEntry[T]
	next int
}

type sigEntry[T any] struct {
	key int
	fn  func(T)
}

func (s *signal[T]) add(fn func(T)) func() {
	key := s.next
	s.next++
	s.obs = append(s.obs, sigEntry[T]{key: key, fn: fn})
	return func() {
		for i, e := range s.obs {
			if e.key == key {
				s.obs = append(s.obs[:i], s.obs[i+1:]...)
				return
			}
		}
	}
}

func (s *signal[T]) emit(v T) {
	fns := make([]func(T), 0, len(s.obs))
	for _, e := range s.obs {
		fns = append(fns, e.fn)
	}
	for _, fn := range fns {
		fn(v)
	}
}

// ItemTransition is the payload of an item state-change notification.
type ItemTransition struct {
	Item *Item
	From ItemState
	To   ItemState
}

// GroupTransition is the payload of a group state-change notification.
type GroupTransition struct {
	Group *Group
	From  GroupState
	To    GroupState
}

// CurrentItemChange reports that a group moved its current pointer.
type CurrentItemChange struct {
	Group *Group
	Item  *Item
	Index int
}
