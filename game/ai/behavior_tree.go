package ai

// Status is the result of a behavior tree node tick.
type Status int

const (
	StatusSuccess Status = iota
	StatusFailure
	// StatusRunning means "not finished, tick me again next frame". Composites stop
	// visiting siblings as soon as a child reports it.
	StatusRunning
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "Success"
	case StatusFailure:
		return "Failure"
	case StatusRunning:
		return "Running"
	default:
		return "Invalid"
	}
}

// Node is a single node in a behavior tree.
// Nodes hold no per-agent state: everything mutable lives in the Context, so one tree
// may be ticked for any number of agents.
type Node interface {
	Tick(ctx *Context) Status
}

// ---- Composite nodes ----

// Selector succeeds as soon as one child succeeds (logical OR).
type Selector struct {
	Name     string
	Children []Node
}

func (s *Selector) Tick(ctx *Context) Status {
	for _, c := range s.Children {
		switch c.Tick(ctx) {
		case StatusSuccess:
			return StatusSuccess
		case StatusRunning:
			return StatusRunning
		}
	}
	return StatusFailure
}

// Sequence succeeds only when all children succeed (logical AND).
type Sequence struct {
	Name     string
	Children []Node
}

func (s *Sequence) Tick(ctx *Context) Status {
	for _, c := range s.Children {
		switch c.Tick(ctx) {
		case StatusFailure:
			return StatusFailure
		case StatusRunning:
			return StatusRunning
		}
	}
	return StatusSuccess
}

// ---- Leaf nodes ----

// ConditionNode evaluates a boolean predicate. Fn must not mutate the Context.
type ConditionNode struct {
	Name string
	Fn   func(*Context) bool
}

func (cn *ConditionNode) Tick(ctx *Context) Status {
	if cn.Fn == nil {
		return StatusFailure
	}
	if cn.Fn(ctx) {
		return StatusSuccess
	}
	return StatusFailure
}

// ActionNode executes an action and returns its status.
type ActionNode struct {
	Name string
	Fn   func(*Context) Status
}

func (an *ActionNode) Tick(ctx *Context) Status {
	if an.Fn == nil {
		return StatusFailure
	}
	return an.Fn(ctx)
}

// ---- Decorator nodes ----

// Inverter negates the result of its child. Without a child it fails.
type Inverter struct {
	Child Node
}

func (i *Inverter) Tick(ctx *Context) Status {
	if i.Child == nil {
		return StatusFailure
	}
	switch i.Child.Tick(ctx) {
	case StatusSuccess:
		return StatusFailure
	case StatusFailure:
		return StatusSuccess
	default:
		return StatusRunning
	}
}

// ---- BehaviorTree root ----

// BehaviorTree wraps the root node.
type BehaviorTree struct {
	Root Node
}

// Tick runs one frame of the behavior tree.
func (bt *BehaviorTree) Tick(ctx *Context) Status {
	if bt.Root == nil {
		return StatusFailure
	}
	status := bt.Root.Tick(ctx)
	ctx.trace("tree tick", statusField(status))
	return status
}
