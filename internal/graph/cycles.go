package graph

// FindCycles returns every strongly connected component with more than
// one node, or a single node with a self-loop. Members of each cycle are
// listed in insertion order.
func (g *Graph) FindCycles() [][]Symbol {
	var cycles [][]Symbol
	for _, scc := range g.components() {
		if g.isCycle(scc) {
			cycles = append(cycles, scc)
		}
	}
	return cycles
}

// HasCycles reports whether the graph contains any cycles.
func (g *Graph) HasCycles() bool {
	return len(g.FindCycles()) > 0
}
