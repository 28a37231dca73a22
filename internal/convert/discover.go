package convert

import (
	"log/slog"

	"github.com/kmateuszssak/p4c/internal/graph"
	"github.com/kmateuszssak/p4c/legacy"
)

func sym(kind graph.Kind, name string) graph.Symbol {
	return graph.Symbol{Kind: kind, Name: name}
}

// buildCallGraphs records every call and use edge of the program.
func (s *Structure) buildCallGraphs() {
	for st := range s.States.All() {
		from := sym(graph.KindParserState, st.Name)
		s.calls.AddNode(graph.RelParser, from)
		for _, target := range st.Targets() {
			if s.States.Contains(target) {
				s.calls.AddEdge(graph.RelParser, from, sym(graph.KindParserState, target))
			}
		}
	}

	for c := range s.Controls.All() {
		from := sym(graph.KindControl, c.Name)
		s.calls.AddNode(graph.RelControls, from)
		s.controlEdges(from, c.Body)
	}

	for t := range s.Tables.All() {
		from := sym(graph.KindTable, t.Name)
		for _, name := range s.tableActionNames(t) {
			s.calls.AddEdge(graph.RelTableActions, from, sym(graph.KindAction, name))
		}
		if c, ok := s.directCounters[t.Name]; ok {
			s.calls.AddEdge(graph.RelCounters, from, sym(graph.KindCounter, c.Name))
		}
		if m, ok := s.directMeters[t.Name]; ok {
			s.calls.AddEdge(graph.RelMeters, from, sym(graph.KindMeter, m.Name))
		}
	}

	for a := range s.Actions.All() {
		from := sym(graph.KindAction, a.Name)
		s.calls.AddNode(graph.RelActions, from)
		for _, p := range a.Body {
			s.primitiveEdges(from, a, p)
		}
	}

	if s.Enabled(slog.LevelDebug) {
		attrs := make([]slog.Attr, 0, len(graph.Relations()))
		for _, rel := range graph.Relations() {
			attrs = append(attrs, slog.Int(rel.String(), s.calls.EdgeCount(rel)))
		}
		s.Log(slog.LevelDebug, "call graph built", attrs...)
	}
}

func (s *Structure) controlEdges(from graph.Symbol, body []legacy.Statement) {
	for _, stmt := range body {
		switch st := stmt.(type) {
		case *legacy.Apply:
			if !s.Tables.Contains(st.Table) {
				bug(st, "apply of unknown table %q", st.Table)
			}
			s.calls.AddEdge(graph.RelTables, from, sym(graph.KindTable, st.Table))
			s.controlEdges(from, st.Hit)
			s.controlEdges(from, st.Miss)
			for _, c := range st.Cases {
				s.controlEdges(from, c.Body)
			}
		case *legacy.If:
			s.controlEdges(from, st.Then)
			s.controlEdges(from, st.Else)
		case *legacy.CallControl:
			if !s.Controls.Contains(st.Control) {
				bug(st, "call of unknown control %q", st.Control)
			}
			s.calls.AddEdge(graph.RelControls, from, sym(graph.KindControl, st.Control))
		default:
			bug(stmt, "unexpected control statement")
		}
	}
}

func (s *Structure) primitiveEdges(from graph.Symbol, a *legacy.Action, p *legacy.Primitive) {
	if p.Receiver != "" {
		if !s.Externs.Contains(p.Receiver) {
			bug(p, "method call on unknown extern %q", p.Receiver)
		}
		s.calls.AddEdge(graph.RelExterns, from, sym(graph.KindExtern, p.Receiver))
		return
	}
	if s.Actions.Contains(p.Name) {
		s.calls.AddEdge(graph.RelActions, from, sym(graph.KindAction, p.Name))
		return
	}
	operand := func(i int) string {
		if i >= len(p.Operands) {
			return ""
		}
		if pe, ok := p.Operands[i].(*legacy.PathExpression); ok {
			if _, isParam := a.Param(pe.Name); !isParam {
				return pe.Name
			}
		}
		return ""
	}
	switch p.Name {
	case "count":
		if name := operand(0); s.Counters.Contains(name) {
			s.calls.AddEdge(graph.RelCounters, from, sym(graph.KindCounter, name))
		}
	case "execute_meter":
		if name := operand(0); s.Meters.Contains(name) {
			s.calls.AddEdge(graph.RelMeters, from, sym(graph.KindMeter, name))
		}
	case "register_read":
		if name := operand(1); s.Registers.Contains(name) {
			s.calls.AddEdge(graph.RelRegisters, from, sym(graph.KindRegister, name))
		}
	case "register_write":
		if name := operand(0); s.Registers.Contains(name) {
			s.calls.AddEdge(graph.RelRegisters, from, sym(graph.KindRegister, name))
		}
	}
}

// tableActionNames returns the legacy names of the actions a table may
// run, from its own list or from its action profile.
func (s *Structure) tableActionNames(t *legacy.Table) []string {
	if t.ActionProfile == "" {
		return t.Actions
	}
	ap, ok := s.ActionProfiles.Lookup(t.ActionProfile)
	if !ok {
		bug(t, "unknown action profile %q", t.ActionProfile)
	}
	return ap.Actions
}

// computeReachability marks what the entry controls and the start state
// reach, and logs what will be dropped.
func (s *Structure) computeReachability() []graph.Symbol {
	var roots []graph.Symbol
	for _, entry := range []string{s.opts.Ingress, s.opts.Egress} {
		if s.Controls.Contains(entry) {
			roots = append(roots, sym(graph.KindControl, entry))
		}
	}
	s.reachable = s.calls.Reachable(roots,
		graph.RelControls, graph.RelTables, graph.RelTableActions, graph.RelActions,
		graph.RelCounters, graph.RelMeters, graph.RelRegisters, graph.RelExterns)
	for st := range s.calls.Reachable([]graph.Symbol{sym(graph.KindParserState, "start")}, graph.RelParser) {
		s.reachable[st] = true
	}

	var unreachable []graph.Symbol
	check := func(kind graph.Kind, name string) {
		sy := sym(kind, name)
		if !s.reachable[sy] {
			unreachable = append(unreachable, sy)
		}
	}
	for st := range s.States.All() {
		check(graph.KindParserState, st.Name)
	}
	for c := range s.Controls.All() {
		check(graph.KindControl, c.Name)
	}
	for t := range s.Tables.All() {
		check(graph.KindTable, t.Name)
	}
	for a := range s.Actions.All() {
		check(graph.KindAction, a.Name)
	}
	for c := range s.Counters.All() {
		check(graph.KindCounter, c.Name)
	}
	for m := range s.Meters.All() {
		check(graph.KindMeter, m.Name)
	}
	for r := range s.Registers.All() {
		check(graph.KindRegister, r.Name)
	}
	for e := range s.Externs.All() {
		check(graph.KindExtern, e.Name)
	}

	if len(unreachable) > 0 {
		level := slog.LevelWarn
		msg := "dropping unreachable objects"
		if s.opts.KeepUnreachable {
			level = slog.LevelInfo
			msg = "keeping unreachable objects"
		}
		s.Log(level, msg, slog.Int("count", len(unreachable)))
		if s.TraceEnabled() {
			for _, sy := range unreachable {
				s.Trace("unreachable", slog.String("kind", string(sy.Kind)), slog.String("name", sy.Name))
			}
		}
	}
	return unreachable
}

// orphans returns, in declaration order, the tables no control applies
// and the actions no applied table or action runs.
func (s *Structure) orphans() ([]*legacy.Table, []*legacy.Action) {
	var roots []graph.Symbol
	for c := range s.Controls.All() {
		roots = append(roots, sym(graph.KindControl, c.Name))
	}
	used := s.calls.Reachable(roots,
		graph.RelControls, graph.RelTables, graph.RelTableActions, graph.RelActions)

	var tables []*legacy.Table
	for t := range s.Tables.All() {
		if !used[sym(graph.KindTable, t.Name)] {
			tables = append(tables, t)
			for _, name := range s.tableActionNames(t) {
				used[sym(graph.KindAction, name)] = true
			}
		}
	}
	var actions []*legacy.Action
	for a := range s.Actions.All() {
		if !used[sym(graph.KindAction, a.Name)] {
			actions = append(actions, a)
		}
	}
	return tables, actions
}

// controlOrder returns the controls callees first. Recursive control
// calls cannot be expressed and abort conversion.
func (s *Structure) controlOrder() []*legacy.Control {
	order, cycles := s.calls.Graph(graph.RelControls).ResolutionOrder()
	if len(cycles) > 0 {
		bug(nil, "recursive control calls: %v", cycles[0])
	}
	out := make([]*legacy.Control, 0, len(order))
	for _, sy := range order {
		c, _ := s.Controls.Lookup(sy.Name)
		out = append(out, c)
	}
	return out
}

// actionCallees returns the compound actions a calls, transitively,
// callees first.
func (s *Structure) actionCallees(a *legacy.Action) []*legacy.Action {
	g := s.calls.Graph(graph.RelActions)
	var out []*legacy.Action
	seen := make(map[graph.Symbol]bool)
	onPath := make(map[graph.Symbol]bool)
	var visit func(graph.Symbol)
	visit = func(from graph.Symbol) {
		onPath[from] = true
		for _, callee := range g.Successors(from) {
			if onPath[callee] {
				bug(nil, "recursive action call %s -> %s", from.Name, callee.Name)
			}
			if seen[callee] {
				continue
			}
			seen[callee] = true
			visit(callee)
			c, _ := s.Actions.Lookup(callee.Name)
			out = append(out, c)
		}
		onPath[from] = false
	}
	visit(sym(graph.KindAction, a.Name))
	return out
}
