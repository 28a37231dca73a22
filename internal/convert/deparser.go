package convert

import (
	"log/slog"

	"github.com/kmateuszssak/p4c/internal/graph"
	"github.com/kmateuszssak/p4c/ir"
)

// orderHeaders adds to headerOrder an edge for every pair of headers the
// parser extracts one after the other, within a state or across a
// transition.
func (s *Structure) orderHeaders() {
	for st := range s.States.All() {
		extracted := s.stateExtracts[st.Name]
		for i := 1; i < len(extracted); i++ {
			s.orderEdge(extracted[i-1], extracted[i])
		}
		if len(extracted) == 0 {
			continue
		}
		last := extracted[len(extracted)-1]
		seen := map[string]bool{st.Name: true}
		for _, target := range st.Targets() {
			for _, next := range s.firstExtracts(target, seen) {
				s.orderEdge(last, next)
			}
		}
	}
	for h := range s.Headers.All() {
		s.headerOrder.AddNode(sym(graph.KindHeader, h.Name))
	}
	for st := range s.Stacks.All() {
		s.headerOrder.AddNode(sym(graph.KindHeader, st.Name))
	}
}

func (s *Structure) orderEdge(from, to string) {
	if from == to {
		return
	}
	s.headerOrder.AddEdge(sym(graph.KindHeader, from), sym(graph.KindHeader, to))
}

// firstExtracts returns the first header extracted on each path out of
// the named state, looking through states that extract nothing.
func (s *Structure) firstExtracts(state string, seen map[string]bool) []string {
	if seen[state] {
		return nil
	}
	seen[state] = true
	st, ok := s.States.Lookup(state)
	if !ok {
		return nil
	}
	if extracted := s.stateExtracts[st.Name]; len(extracted) > 0 {
		return extracted[:1]
	}
	var out []string
	for _, target := range st.Targets() {
		out = append(out, s.firstExtracts(target, seen)...)
	}
	return out
}

// ConvertDeparser emits every header in the order the parser extracts
// them. Headers on a cycle of that order follow the rest in declaration
// order.
func (DefaultConverter) ConvertDeparser(s *Structure) *ir.Control {
	s.orderHeaders()
	order, cyclic := s.headerOrder.TopologicalOrder()
	if len(cyclic) > 0 {
		s.Log(slog.LevelWarn, "header extraction order is cyclic",
			slog.Int("headers", len(cyclic)))
	}

	m := s.model
	ctl := &ir.Control{
		Name: m.Deparser,
		Params: []*ir.Parameter{
			{Name: m.PacketParam, Type: &ir.TypeName{Name: m.PacketOut}},
			{Name: m.HeadersParam, Direction: ir.DirIn, Type: &ir.TypeName{Name: m.HeadersType}},
		},
		Body: ir.NewBlock(),
	}
	for _, h := range append(order, cyclic...) {
		ctl.Body.Components = append(ctl.Body.Components,
			ir.CallStatement(ir.Call(ir.NewPath(m.PacketParam), "emit", s.headers.header(h.Name))))
	}
	return ctl
}

// createDeparser converts the deparser. Its only rewrite argument is the
// headers parameter.
func (s *Structure) createDeparser() {
	s.conversionContext.Clear()
	s.conversionContext.Set(s.headersArg, nil, nil)
	ctl := s.conv.ConvertDeparser(s)
	s.addBlock(ctl)
	s.Log(slog.LevelDebug, "deparser converted", slog.Int("headers", len(ctl.Body.Components)))
}
