package graph

import (
	"slices"
	"testing"
)

func ctl(name string) Symbol { return Symbol{Kind: KindControl, Name: name} }
func act(name string) Symbol { return Symbol{Kind: KindAction, Name: name} }

func TestGraphBasic(t *testing.T) {
	g := New(0)

	a := ctl("a")
	b := ctl("b")

	g.AddNode(a)
	g.AddNode(b)
	g.AddEdge(a, b)

	if !g.HasNode(a) || !g.HasNode(b) {
		t.Fatal("graph should have nodes a and b")
	}
	if got := g.Successors(a); len(got) != 1 || got[0] != b {
		t.Errorf("a successors = %v, want [%v]", got, b)
	}
	if !g.HasEdge(a, b) || g.HasEdge(b, a) {
		t.Error("edge direction wrong")
	}
}

func TestAddEdgeCreatesNodesInOrder(t *testing.T) {
	g := New(0)
	g.AddEdge(ctl("x"), ctl("y"))
	g.AddEdge(ctl("w"), ctl("x"))

	want := []Symbol{ctl("x"), ctl("y"), ctl("w")}
	if got := g.Nodes(); !slices.Equal(got, want) {
		t.Errorf("Nodes() = %v, want %v", got, want)
	}
}

func TestKindQualifiedNodes(t *testing.T) {
	g := New(0)
	g.AddNode(ctl("stats"))
	g.AddNode(Symbol{Kind: KindCounter, Name: "stats"})
	if g.Len() != 2 {
		t.Errorf("Len() = %d, want 2 (same name, different kinds)", g.Len())
	}
}

func TestDuplicateEdges(t *testing.T) {
	g := New(0)
	a, b := act("a"), act("b")
	g.AddEdge(a, b)
	g.AddEdge(a, b)
	g.AddEdge(a, b)

	if len(g.Successors(a)) != 1 {
		t.Errorf("successors = %d, want 1 (duplicate edges deduplicated)", len(g.Successors(a)))
	}
}

func TestReachable(t *testing.T) {
	g := New(0)
	g.AddEdge(ctl("ingress"), ctl("l2"))
	g.AddEdge(ctl("l2"), ctl("l3"))
	g.AddEdge(ctl("dead"), ctl("l3"))
	g.AddNode(ctl("island"))

	seen := g.Reachable(ctl("ingress"))
	for _, name := range []string{"ingress", "l2", "l3"} {
		if !seen[ctl(name)] {
			t.Errorf("%s should be reachable", name)
		}
	}
	for _, name := range []string{"dead", "island"} {
		if seen[ctl(name)] {
			t.Errorf("%s should not be reachable", name)
		}
	}
}

func TestReachableMissingRoot(t *testing.T) {
	g := New(0)
	g.AddNode(ctl("a"))
	if got := g.Reachable(ctl("egress")); len(got) != 0 {
		t.Errorf("Reachable(missing) = %v, want empty", got)
	}
}

func TestResolutionOrderEmpty(t *testing.T) {
	order, cycles := New(0).ResolutionOrder()
	if len(order) != 0 || len(cycles) != 0 {
		t.Errorf("empty graph: order=%v cycles=%v", order, cycles)
	}
}

func TestResolutionOrderChain(t *testing.T) {
	g := New(0)
	// a calls b calls c: c must be converted first.
	g.AddEdge(ctl("a"), ctl("b"))
	g.AddEdge(ctl("b"), ctl("c"))

	order, cycles := g.ResolutionOrder()
	if len(cycles) != 0 {
		t.Fatalf("cycles = %v, want none", cycles)
	}
	want := []Symbol{ctl("c"), ctl("b"), ctl("a")}
	if !slices.Equal(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestResolutionOrderDiamond(t *testing.T) {
	g := New(0)
	g.AddEdge(ctl("top"), ctl("left"))
	g.AddEdge(ctl("top"), ctl("right"))
	g.AddEdge(ctl("left"), ctl("bottom"))
	g.AddEdge(ctl("right"), ctl("bottom"))

	order, _ := g.ResolutionOrder()
	pos := make(map[Symbol]int)
	for i, s := range order {
		pos[s] = i
	}
	if pos[ctl("bottom")] > pos[ctl("left")] || pos[ctl("bottom")] > pos[ctl("right")] {
		t.Errorf("bottom must precede left and right: %v", order)
	}
	if pos[ctl("top")] != len(order)-1 {
		t.Errorf("top must come last: %v", order)
	}
}

func TestResolutionOrderDeterministic(t *testing.T) {
	build := func() *Graph {
		g := New(0)
		for _, n := range []string{"m", "b", "z", "a"} {
			g.AddNode(ctl(n))
		}
		g.AddEdge(ctl("z"), ctl("b"))
		return g
	}
	first, _ := build().ResolutionOrder()
	for range 10 {
		again, _ := build().ResolutionOrder()
		if !slices.Equal(first, again) {
			t.Fatalf("order not stable: %v vs %v", first, again)
		}
	}
	want := []Symbol{ctl("m"), ctl("b"), ctl("z"), ctl("a")}
	if !slices.Equal(first, want) {
		t.Errorf("order = %v, want %v", first, want)
	}
}

func TestResolutionOrderSimpleCycle(t *testing.T) {
	g := New(0)
	g.AddEdge(ctl("a"), ctl("b"))
	g.AddEdge(ctl("b"), ctl("a"))
	g.AddEdge(ctl("c"), ctl("a"))

	order, cycles := g.ResolutionOrder()
	if len(cycles) != 1 {
		t.Fatalf("cycles = %d, want 1", len(cycles))
	}
	if !slices.Equal(cycles[0], []Symbol{ctl("a"), ctl("b")}) {
		t.Errorf("cycle = %v, want [a b] in insertion order", cycles[0])
	}
	if !slices.Equal(order, []Symbol{ctl("c")}) {
		t.Errorf("order = %v, want [c]", order)
	}
}

func TestSelfLoop(t *testing.T) {
	g := New(0)
	g.AddEdge(act("loop"), act("loop"))
	if !g.HasCycles() {
		t.Error("self-loop should be a cycle")
	}
	cycles := g.FindCycles()
	if len(cycles) != 1 || len(cycles[0]) != 1 {
		t.Errorf("FindCycles = %v, want one singleton", cycles)
	}
}

func TestNoCycles(t *testing.T) {
	g := New(0)
	g.AddEdge(act("a"), act("b"))
	if g.HasCycles() {
		t.Error("chain should not have cycles")
	}
}

func TestTopologicalOrder(t *testing.T) {
	hdr := func(n string) Symbol { return Symbol{Kind: KindHeader, Name: n} }
	g := New(0)
	// Extraction order: ethernet before vlan before ipv4, ethernet before ipv4.
	g.AddNode(hdr("ipv6"))
	g.AddEdge(hdr("ethernet"), hdr("vlan"))
	g.AddEdge(hdr("vlan"), hdr("ipv4"))
	g.AddEdge(hdr("ethernet"), hdr("ipv4"))

	order, cyclic := g.TopologicalOrder()
	if len(cyclic) != 0 {
		t.Fatalf("cyclic = %v, want none", cyclic)
	}
	want := []Symbol{hdr("ipv6"), hdr("ethernet"), hdr("vlan"), hdr("ipv4")}
	if !slices.Equal(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestTopologicalOrderCycle(t *testing.T) {
	g := New(0)
	g.AddEdge(ctl("a"), ctl("b"))
	g.AddEdge(ctl("b"), ctl("a"))
	g.AddEdge(ctl("b"), ctl("c"))
	g.AddNode(ctl("d"))

	order, cyclic := g.TopologicalOrder()
	if !slices.Equal(order, []Symbol{ctl("d")}) {
		t.Errorf("order = %v, want [d]", order)
	}
	if !slices.Equal(cyclic, []Symbol{ctl("a"), ctl("b"), ctl("c")}) {
		t.Errorf("cyclic = %v, want [a b c]", cyclic)
	}
}

func TestCallGraphReachableAcrossRelations(t *testing.T) {
	cg := NewCallGraph()
	tbl := func(n string) Symbol { return Symbol{Kind: KindTable, Name: n} }
	cnt := func(n string) Symbol { return Symbol{Kind: KindCounter, Name: n} }

	cg.AddEdge(RelControls, ctl("ingress"), ctl("acl"))
	cg.AddEdge(RelTables, ctl("acl"), tbl("acl_tbl"))
	cg.AddEdge(RelTableActions, tbl("acl_tbl"), act("deny"))
	cg.AddEdge(RelActions, act("deny"), act("mark"))
	cg.AddEdge(RelCounters, act("mark"), cnt("drops"))
	cg.AddEdge(RelCounters, act("unused"), cnt("other"))

	seen := cg.Reachable([]Symbol{ctl("ingress")})
	for _, s := range []Symbol{ctl("acl"), tbl("acl_tbl"), act("deny"), act("mark"), cnt("drops")} {
		if !seen[s] {
			t.Errorf("%v should be reachable", s)
		}
	}
	if seen[cnt("other")] || seen[act("unused")] {
		t.Error("unused action and its counter should not be reachable")
	}

	controlsOnly := cg.Reachable([]Symbol{ctl("ingress")}, RelControls)
	if controlsOnly[tbl("acl_tbl")] {
		t.Error("tables should not be reachable through RelControls alone")
	}
	if cg.EdgeCount(RelCounters) != 2 {
		t.Errorf("EdgeCount(counters) = %d, want 2", cg.EdgeCount(RelCounters))
	}
}

func TestRelationString(t *testing.T) {
	if RelParser.String() != "parser" {
		t.Errorf("RelParser = %q", RelParser.String())
	}
	if Relation(99).String() != "unknown" {
		t.Error("out-of-range relation should be unknown")
	}
	if len(Relations()) != int(numRelations) {
		t.Error("Relations() incomplete")
	}
}
