package guide

// SelectionStrategy picks which items a group should drive next. Select
// returns candidate indexes into items; an empty result means nothing is
// eligible and the group may complete. Sequential and PriorityOrder return
// at most one candidate, preserving the one-active-item invariant; Parallel
// may return several.
type SelectionStrategy interface {
	Name() string
	Select(items []*Item, current int) []int
}

// Sequential is the default strategy: scan forward from current+1 and
// return the first item not yet Completed. Items already finished another
// way (Cancelled, Failed) are still candidates; entering them fails and the
// controller skips past, matching the advance-past-failures behavior.
type Sequential struct{}

func (Sequential) Name() string { return "sequential" }

func (Sequential) Select(items []*Item, current int) []int {
	for i := current + 1; i < len(items); i++ {
		if items[i].State() != ItemCompleted {
			return []int{i}
		}
	}
	return nil
}

// PriorityOrder picks the not-yet-entered item with the highest Priority
// value, breaking ties by list order.
type PriorityOrder struct{}

func (PriorityOrder) Name() string { return "priority" }

func (PriorityOrder) Select(items []*Item, current int) []int {
	best := -1
	for i, it := range items {
		if it.State() != ItemInactive {
			continue
		}
		if best == -1 || it.Priority() > items[best].Priority() {
			best = i
		}
	}
	if best == -1 {
		return nil
	}
	return []int{best}
}

// Parallel drives every not-yet-entered item at once. The one-active-item
// invariant does not hold under this policy.
type Parallel struct{}

func (Parallel) Name() string { return "parallel" }

func (Parallel) Select(items []*Item, current int) []int {
	var out []int
	for i, it := range items {
		if it.State() == ItemInactive {
			out = append(out, i)
		}
	}
	return out
}
