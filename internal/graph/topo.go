package graph

// TopologicalOrder returns symbols ordered so that every edge source comes
// before its target (Kahn's algorithm). Among symbols that are ready at the
// same time the one inserted first wins. Symbols on or behind a cycle are
// returned separately, in insertion order.
func (g *Graph) TopologicalOrder() (order []Symbol, cyclic []Symbol) {
	inDegree := make(map[Symbol]int, len(g.nodes))
	for _, deps := range g.edges {
		for _, dep := range deps {
			inDegree[dep]++
		}
	}

	done := make(map[Symbol]bool, len(g.nodes))
	for {
		next := -1
		for i, sym := range g.nodes {
			if !done[sym] && inDegree[sym] == 0 {
				next = i
				break
			}
		}
		if next < 0 {
			break
		}
		sym := g.nodes[next]
		done[sym] = true
		order = append(order, sym)
		for _, dep := range g.edges[sym] {
			inDegree[dep]--
		}
	}

	for _, sym := range g.nodes {
		if !done[sym] {
			cyclic = append(cyclic, sym)
		}
	}
	return order, cyclic
}
