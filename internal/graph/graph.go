// Package graph provides the call/use graphs of a legacy program and the
// orderings derived from them.
package graph

import "slices"

// Kind is the category of a graph node.
type Kind string

const (
	KindControl     Kind = "control"
	KindTable       Kind = "table"
	KindAction      Kind = "action"
	KindCounter     Kind = "counter"
	KindMeter       Kind = "meter"
	KindRegister    Kind = "register"
	KindExtern      Kind = "extern"
	KindParserState Kind = "parser_state"
	KindHeader      Kind = "header"
)

// Symbol identifies a legacy object by category and original name.
type Symbol struct {
	Kind Kind
	Name string
}

func (s Symbol) String() string {
	return string(s.Kind) + ":" + s.Name
}

// Graph is a directed graph of symbols. Nodes and edges remember the order
// in which they were added, and every traversal follows that order.
type Graph struct {
	index map[Symbol]int
	nodes []Symbol
	edges map[Symbol][]Symbol
}

// New returns a graph with no nodes or edges. sizeHint preallocates
// room for that many nodes.
func New(sizeHint int) *Graph {
	return &Graph{
		index: make(map[Symbol]int, sizeHint),
		nodes: make([]Symbol, 0, sizeHint),
		edges: make(map[Symbol][]Symbol, sizeHint),
	}
}

// AddNode registers a symbol. Duplicate calls are no-ops.
func (g *Graph) AddNode(sym Symbol) {
	if _, ok := g.index[sym]; ok {
		return
	}
	g.index[sym] = len(g.nodes)
	g.nodes = append(g.nodes, sym)
}

// AddEdge records an edge from "from" to "to". Missing nodes are created
// implicitly, "from" first. Duplicate edges are ignored.
func (g *Graph) AddEdge(from, to Symbol) {
	g.AddNode(from)
	g.AddNode(to)

	if slices.Contains(g.edges[from], to) {
		return
	}
	g.edges[from] = append(g.edges[from], to)
}

// Successors returns the targets of edges leaving sym.
func (g *Graph) Successors(sym Symbol) []Symbol {
	return g.edges[sym]
}

// HasNode reports whether the symbol exists in the graph.
func (g *Graph) HasNode(sym Symbol) bool {
	_, ok := g.index[sym]
	return ok
}

// HasEdge reports whether an edge from "from" to "to" exists.
func (g *Graph) HasEdge(from, to Symbol) bool {
	return slices.Contains(g.edges[from], to)
}

// Nodes returns all symbols in insertion order.
func (g *Graph) Nodes() []Symbol {
	return slices.Clone(g.nodes)
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Reachable returns the set of symbols reachable from roots, roots
// included when present in the graph.
func (g *Graph) Reachable(roots ...Symbol) map[Symbol]bool {
	seen := make(map[Symbol]bool)
	var visit func(Symbol)
	visit = func(sym Symbol) {
		if seen[sym] {
			return
		}
		seen[sym] = true
		for _, next := range g.edges[sym] {
			visit(next)
		}
	}
	for _, r := range roots {
		if g.HasNode(r) {
			visit(r)
		}
	}
	return seen
}

// ResolutionOrder returns symbols ordered so that every edge target comes
// before its source, using Tarjan's algorithm. Strongly connected
// components with more than one node, or a single node with a self-loop,
// are reported as cycles and excluded from the order. Ties follow
// insertion order.
func (g *Graph) ResolutionOrder() (order []Symbol, cycles [][]Symbol) {
	for _, scc := range g.components() {
		if g.isCycle(scc) {
			cycles = append(cycles, scc)
			continue
		}
		order = append(order, scc[0])
	}
	return order, cycles
}

// components returns the strongly connected components in the order
// Tarjan's algorithm completes them: callees before callers.
func (g *Graph) components() [][]Symbol {
	var (
		counter  int
		stack    []Symbol
		onStack  = make(map[Symbol]bool)
		indices  = make(map[Symbol]int)
		lowlinks = make(map[Symbol]int)
		sccs     [][]Symbol
	)

	var strongConnect func(sym Symbol)
	strongConnect = func(sym Symbol) {
		indices[sym] = counter
		lowlinks[sym] = counter
		counter++
		stack = append(stack, sym)
		onStack[sym] = true

		for _, dep := range g.edges[sym] {
			if _, visited := indices[dep]; !visited {
				strongConnect(dep)
				lowlinks[sym] = min(lowlinks[sym], lowlinks[dep])
			} else if onStack[dep] {
				lowlinks[sym] = min(lowlinks[sym], indices[dep])
			}
		}

		if lowlinks[sym] == indices[sym] {
			var scc []Symbol
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == sym {
					break
				}
			}
			slices.SortFunc(scc, func(a, b Symbol) int { return g.index[a] - g.index[b] })
			sccs = append(sccs, scc)
		}
	}

	for _, sym := range g.nodes {
		if _, visited := indices[sym]; !visited {
			strongConnect(sym)
		}
	}
	return sccs
}

func (g *Graph) isCycle(scc []Symbol) bool {
	return len(scc) > 1 || slices.Contains(g.edges[scc[0]], scc[0])
}
