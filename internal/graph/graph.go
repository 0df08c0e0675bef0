package graph

// Graph is the immutable node set produced by a Builder for one
// orchestration run. Node state is the only thing that changes after
// construction.
type Graph struct {
	nodes           []*Node
	byName          map[string]*Node
	requiresNetwork bool
}

// Nodes returns all nodes in deterministic build order.
func (g *Graph) Nodes() []*Node { return g.nodes }

// Node looks up a node by its task name.
func (g *Graph) Node(name string) (*Node, bool) {
	n, ok := g.byName[name]
	return n, ok
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int { return len(g.nodes) }

// RequiresNetwork reports whether any enabled task in the graph is gated on
// network connectivity.
func (g *Graph) RequiresNetwork() bool { return g.requiresNetwork }

// AllDone reports whether every enabled node has reached a final state.
// Disabled nodes are excluded from completion accounting.
func (g *Graph) AllDone() bool {
	for _, n := range g.nodes {
		if !n.task.Enabled() {
			continue
		}
		if s := n.State(); s != Completed && s != Failed {
			return false
		}
	}
	return true
}

// Succeeded reports whether every enabled node completed. It is only
// meaningful once the run has stopped making progress.
func (g *Graph) Succeeded() bool {
	for _, n := range g.nodes {
		if !n.task.Enabled() {
			continue
		}
		if n.State() != Completed {
			return false
		}
	}
	return true
}
