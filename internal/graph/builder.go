package graph

import (
	"errors"
	"fmt"

	"github.com/vk/maestro/internal/task"
)

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithStrictFailures makes built nodes treat a logical false result as a
// hard failure instead of the default lenient completion.
func WithStrictFailures() BuilderOption {
	return func(b *Builder) { b.strict = true }
}

// Builder accumulates a task adjacency map and materializes it into an
// executable node set. Every proposed edge is checked for cycles before it
// is committed, so the map it holds is always a valid DAG.
type Builder struct {
	// adjacency maps a task to its direct dependencies, deduplicated by
	// task identity.
	adjacency map[task.Task][]task.Task
	// order remembers first-seen order of tasks so Build output is
	// deterministic.
	order  []task.Task
	strict bool
}

// NewBuilder returns an empty graph builder.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{adjacency: make(map[task.Task][]task.Task)}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Add registers a task and appends the given direct dependencies to its
// dependency list. Repeated calls for the same task accumulate; duplicate
// edges are ignored. An edge that would close a cycle is rejected with a
// *CyclicError. A failed call commits nothing: every registration and edge
// of that call is rolled back, leaving exactly what earlier calls built.
func (b *Builder) Add(t task.Task, deps ...task.Task) error {
	if t == nil {
		return errors.New("cannot add a nil task")
	}
	depsBefore := len(b.adjacency[t])
	orderBefore := len(b.order)
	b.register(t)

	for _, dep := range deps {
		if dep == nil {
			b.rollback(t, depsBefore, orderBefore)
			return fmt.Errorf("task %q: cannot depend on a nil task", t.Name())
		}
		if dep == t {
			b.rollback(t, depsBefore, orderBefore)
			return &CyclicError{Path: []string{t.Name(), t.Name()}}
		}
		if b.hasEdge(t, dep) {
			continue
		}
		// Walk the committed edges from the proposed dependency; if they
		// lead back to the dependent, committing this edge would close a
		// cycle.
		if path := b.findPath(dep, t); path != nil {
			full := append([]string{t.Name()}, path...)
			b.rollback(t, depsBefore, orderBefore)
			return &CyclicError{Path: full}
		}
		b.register(dep)
		b.adjacency[t] = append(b.adjacency[t], dep)
	}
	return nil
}

// rollback undoes every mutation made by one failed Add call: tasks first
// registered during the call are removed and the dependent's dependency
// list is truncated to its pre-call length.
func (b *Builder) rollback(t task.Task, depsBefore, orderBefore int) {
	for _, extra := range b.order[orderBefore:] {
		delete(b.adjacency, extra)
	}
	b.order = b.order[:orderBefore]
	if _, ok := b.adjacency[t]; ok {
		b.adjacency[t] = b.adjacency[t][:depsBefore]
	}
}

// register ensures the task is a key in the adjacency map, preserving
// first-seen order.
func (b *Builder) register(t task.Task) {
	if _, ok := b.adjacency[t]; ok {
		return
	}
	b.adjacency[t] = nil
	b.order = append(b.order, t)
}

func (b *Builder) hasEdge(from, to task.Task) bool {
	for _, dep := range b.adjacency[from] {
		if dep == to {
			return true
		}
	}
	return false
}

// findPath performs an iterative depth-first search over the committed
// dependency edges from start towards target. It returns the full path of
// task names (start..target inclusive) when one exists, nil otherwise. The
// explicit frame stack keeps the search bounded on pathological inputs.
func (b *Builder) findPath(start, target task.Task) []string {
	type frame struct {
		t    task.Task
		path []string
	}
	stack := []frame{{t: start, path: []string{start.Name()}}}
	visited := make(map[task.Task]bool)

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if cur.t == target {
			return cur.path
		}
		if visited[cur.t] {
			continue
		}
		visited[cur.t] = true

		for _, dep := range b.adjacency[cur.t] {
			next := make([]string, len(cur.path), len(cur.path)+1)
			copy(next, cur.path)
			stack = append(stack, frame{t: dep, path: append(next, dep.Name())})
		}
	}
	return nil
}

// Build materializes one node per distinct task (whether registered as a
// key or only referenced as a dependency) and wires the dependency edges
// between them. The builder can keep accepting edges afterwards; the
// returned graph is an independent snapshot.
func (b *Builder) Build() *Graph {
	nodes := make(map[task.Task]*Node, len(b.order))
	ordered := make([]*Node, 0, len(b.order))
	byName := make(map[string]*Node, len(b.order))
	requiresNetwork := false

	// First pass: one node per distinct task, deduplicated by identity.
	for _, t := range b.order {
		n := &Node{task: t, strict: b.strict}
		nodes[t] = n
		ordered = append(ordered, n)
		byName[t.Name()] = n
		if t.Enabled() && t.RequiresNetwork() {
			requiresNetwork = true
		}
	}

	// Second pass: wire dependency edges in declaration order.
	for _, t := range b.order {
		n := nodes[t]
		for _, dep := range b.adjacency[t] {
			n.deps = append(n.deps, nodes[dep])
		}
	}

	return &Graph{
		nodes:           ordered,
		byName:          byName,
		requiresNetwork: requiresNetwork,
	}
}
