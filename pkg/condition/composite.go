package condition

import "strings"

// Operator is the boolean aggregation applied by a Composite.
type Operator int

const (
	// And is satisfied when every valid child is satisfied. An empty or
	// all-nil child list evaluates to false.
	And Operator = iota
	// Or is satisfied when any valid child is satisfied.
	Or
	// Xor is satisfied when exactly one valid child is satisfied.
	Xor
	// Not is defined only for exactly one child and negates it. Any other
	// cardinality evaluates to false.
	Not
)

func (op Operator) String() string {
	switch op {
	case And:
		return "and"
	case Or:
		return "or"
	case Xor:
		return "xor"
	case Not:
		return "not"
	}
	return "unknown"
}

// ParseOperator parses the textual form used in tour documents.
func ParseOperator(s string) (Operator, bool) {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "and", "all":
		return And, true
	case "or", "any":
		return Or, true
	case "xor", "one":
		return Xor, true
	case "not":
		return Not, true
	}
	return And, false
}

// Composite aggregates child conditions under a boolean operator and
// republishes their change notifications. Satisfaction is recomputed
// whenever any subscribed child fires, and republished only on a flip.
//
// Children are externally owned: the composite holds them by reference in
// insertion order with set membership, and while listening it also owns
// their listening lifecycle.
type Composite struct {
	Base
	op       Operator
	children []Condition
	subs     []func()
}

// NewComposite creates a composite over the given children. Nil children are
// tolerated and pruned at evaluation time.
func NewComposite(id string, op Operator, children []Condition, opts ...Option) *Composite {
	c := &Composite{Base: NewBase(id, opts...), op: op}
	for _, child := range children {
		c.Add(child)
	}
	return c
}

// Op returns the aggregation operator.
func (c *Composite) Op() Operator { return c.op }

// Children returns the child list in insertion order.
func (c *Composite) Children() []Condition { return c.children }

// Add appends a child if not already present. If the composite is currently
// listening, the child starts listening and is subscribed immediately, and
// satisfaction is re-evaluated synchronously.
func (c *Composite) Add(child Condition) {
	if child == nil {
		return
	}
	for _, existing := range c.children {
		if existing == child {
			return
		}
	}
	c.children = append(c.children, child)
	if c.Listening() {
		child.StartListening()
		c.subs = append(c.subs, child.OnChanged(c.childChanged))
		c.Publish(c)
	} else {
		c.subs = append(c.subs, nil)
	}
}

// Remove detaches a child. If listening, the child's subscription and
// listening state are torn down immediately and satisfaction re-evaluated.
func (c *Composite) Remove(child Condition) {
	for i, existing := range c.children {
		if existing != child {
			continue
		}
		if c.subs[i] != nil {
			c.subs[i]()
		}
		c.children = append(c.children[:i], c.children[i+1:]...)
		c.subs = append(c.subs[:i], c.subs[i+1:]...)
		if c.Listening() {
			child.StopListening()
			c.Publish(c)
		}
		return
	}
}

// Satisfied evaluates the operator over the valid (non-nil) children.
func (c *Composite) Satisfied() bool {
	valid := c.children[:0:0]
	for _, child := range c.children {
		if child != nil {
			valid = append(valid, child)
		}
	}
	switch c.op {
	case And:
		if len(valid) == 0 {
			return false
		}
		for _, child := range valid {
			if !child.Satisfied() {
				return false
			}
		}
		return true
	case Or:
		for _, child := range valid {
			if child.Satisfied() {
				return true
			}
		}
		return false
	case Xor:
		count := 0
		for _, child := range valid {
			if child.Satisfied() {
				count++
			}
		}
		return count == 1
	case Not:
		if len(valid) != 1 {
			return false
		}
		return !valid[0].Satisfied()
	}
	return false
}

// StartListening starts the composite and all children, subscribing to each
// child's change notifications.
func (c *Composite) StartListening() {
	if !c.BeginListen(c) {
		return
	}
	for i, child := range c.children {
		if child == nil {
			continue
		}
		child.StartListening()
		c.subs[i] = child.OnChanged(c.childChanged)
	}
}

// StopListening tears down child subscriptions and stops the children.
func (c *Composite) StopListening() {
	if !c.EndListen() {
		return
	}
	for i, child := range c.children {
		if child == nil {
			continue
		}
		if c.subs[i] != nil {
			c.subs[i]()
			c.subs[i] = nil
		}
		child.StopListening()
	}
}

// NeedsPoll reports true when any child needs the periodic check, so the
// registry tick reaches nested polled conditions through the composite.
func (c *Composite) NeedsPoll() bool {
	if c.Base.NeedsPoll() {
		return true
	}
	for _, child := range c.children {
		if child != nil && child.NeedsPoll() {
			return true
		}
	}
	return false
}

// CheckState forwards the periodic check to polled children (whose flips
// publish through childChanged) and then republishes its own value.
func (c *Composite) CheckState() {
	for _, child := range c.children {
		if child != nil && child.NeedsPoll() {
			child.CheckState()
		}
	}
	c.Publish(c)
}

func (c *Composite) childChanged(Condition) {
	c.Publish(c)
}
