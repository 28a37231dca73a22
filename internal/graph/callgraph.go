package graph

// Relation names one kind of call or use edge between legacy objects.
type Relation int

const (
	// RelControls: control calls control.
	RelControls Relation = iota
	// RelTables: control applies table.
	RelTables
	// RelTableActions: table lists action.
	RelTableActions
	// RelActions: action calls compound action.
	RelActions
	// RelCounters: action or table uses counter.
	RelCounters
	// RelMeters: action or table uses meter.
	RelMeters
	// RelRegisters: action uses register.
	RelRegisters
	// RelExterns: action calls a method of an extern instance.
	RelExterns
	// RelParser: parser state transitions to state.
	RelParser
	numRelations
)

var relationNames = [...]string{
	RelControls:     "controls",
	RelTables:       "tables",
	RelTableActions: "table_actions",
	RelActions:      "actions",
	RelCounters:     "counters",
	RelMeters:       "meters",
	RelRegisters:    "registers",
	RelExterns:      "externs",
	RelParser:       "parser",
}

func (r Relation) String() string {
	if r >= 0 && r < numRelations {
		return relationNames[r]
	}
	return "unknown"
}

// Relations returns all relations in declaration order.
func Relations() []Relation {
	out := make([]Relation, 0, numRelations)
	for r := Relation(0); r < numRelations; r++ {
		out = append(out, r)
	}
	return out
}

// CallGraph holds one graph per relation. Symbols are kind-qualified, so
// reachability may follow several relations at once.
type CallGraph struct {
	graphs [numRelations]*Graph
}

// NewCallGraph returns an empty call graph.
func NewCallGraph() *CallGraph {
	cg := &CallGraph{}
	for i := range cg.graphs {
		cg.graphs[i] = New(0)
	}
	return cg
}

// Graph returns the graph of one relation.
func (cg *CallGraph) Graph(rel Relation) *Graph {
	return cg.graphs[rel]
}

// AddNode registers sym in the graph of rel.
func (cg *CallGraph) AddNode(rel Relation, sym Symbol) {
	cg.graphs[rel].AddNode(sym)
}

// AddEdge records that caller invokes or uses callee under rel.
func (cg *CallGraph) AddEdge(rel Relation, caller, callee Symbol) {
	cg.graphs[rel].AddEdge(caller, callee)
}

// Callees returns the symbols caller reaches under rel in one step.
func (cg *CallGraph) Callees(rel Relation, caller Symbol) []Symbol {
	return cg.graphs[rel].Successors(caller)
}

// Reachable returns every symbol reachable from roots following edges of
// any of rels. With no rels, all relations are followed.
func (cg *CallGraph) Reachable(roots []Symbol, rels ...Relation) map[Symbol]bool {
	if len(rels) == 0 {
		rels = Relations()
	}
	seen := make(map[Symbol]bool)
	work := append([]Symbol(nil), roots...)
	for len(work) > 0 {
		sym := work[len(work)-1]
		work = work[:len(work)-1]
		if seen[sym] {
			continue
		}
		seen[sym] = true
		for _, rel := range rels {
			work = append(work, cg.graphs[rel].Successors(sym)...)
		}
	}
	return seen
}

// EdgeCount returns the number of edges recorded under rel.
func (cg *CallGraph) EdgeCount(rel Relation) int {
	g := cg.graphs[rel]
	n := 0
	for _, sym := range g.nodes {
		n += len(g.edges[sym])
	}
	return n
}
