package guide

// ItemState is the lifecycle state of a guide item.
type ItemState int

const (
	ItemInactive ItemState = iota
	ItemWaiting
	ItemActive
	ItemCompleted
	ItemCancelled
	ItemFailed
)

func (s ItemState) String() string {
	switch s {
	case ItemInactive:
		return "inactive"
	case ItemWaiting:
		return "waiting"
	case ItemActive:
		return "active"
	case ItemCompleted:
		return "completed"
	case ItemCancelled:
		return "cancelled"
	case ItemFailed:
		return "failed"
	}
	return "unknown"
}

// Terminal reports whether the state admits no further transitions except
// Reset.
func (s ItemState) Terminal() bool {
	return s == ItemCompleted || s == ItemCancelled || s == ItemFailed
}

// GroupState is the lifecycle state of a guide group.
type GroupState int

const (
	GroupInactive GroupState = iota
	GroupWaiting
	GroupRunning
	GroupPaused
	GroupCompleted
	GroupCancelled
	GroupFailed
)

func (s GroupState) String() string {
	switch s {
	case GroupInactive:
		return "inactive"
	case GroupWaiting:
		return "waiting"
	case GroupRunning:
		return "running"
	case GroupPaused:
		return "paused"
	case GroupCompleted:
		return "completed"
	case GroupCancelled:
		return "cancelled"
	case GroupFailed:
		return "failed"
	}
	return "unknown"
}

// Terminal reports whether the group reached a terminal state.
func (s GroupState) Terminal() bool {
	return s == GroupCompleted || s == GroupCancelled || s == GroupFailed
}
