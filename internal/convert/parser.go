package convert

import (
	"log/slog"
	"math/big"
	"strings"

	"github.com/kmateuszssak/p4c/internal/graph"
	"github.com/kmateuszssak/p4c/ir"
	"github.com/kmateuszssak/p4c/legacy"
)

const (
	stateStart  = "start"
	stateAccept = "accept"
	stateReject = "reject"
)

func (s *Structure) parserParams() []*ir.Parameter {
	m := s.model
	return []*ir.Parameter{
		{Name: m.PacketParam, Type: &ir.TypeName{Name: m.PacketIn}},
		{Name: m.HeadersParam, Direction: ir.DirOut, Type: &ir.TypeName{Name: m.HeadersType}},
		{Name: m.MetadataParam, Direction: ir.DirInOut, Type: &ir.TypeName{Name: m.MetadataType}},
		{Name: m.StandardMetadata, Direction: ir.DirInOut, Type: &ir.TypeName{Name: m.StandardType}},
	}
}

// setBlockContext installs the block parameters as the rewrite context.
func (s *Structure) setBlockContext() {
	s.conversionContext.Clear()
	s.conversionContext.Set(
		s.headersArg,
		ir.NewPath(s.model.MetadataParam),
		ir.NewPath(s.model.StandardMetadata))
}

// createParser converts the reachable parser states into ParserImpl.
func (s *Structure) createParser() {
	start, ok := s.States.Lookup(stateStart)
	if !ok {
		bug(nil, "program has no start state")
	}

	p := &ir.Parser{Name: s.model.Parser, Params: s.parserParams()}
	for vs := range s.ValueSets.All() {
		width := vs.Width
		if width <= 0 {
			width = 32
		}
		p.Locals = append(p.Locals, &ir.ValueSet{
			Name:        s.ValueSets.Name(vs),
			Annotations: ir.Annotations{ir.GlobalNameAnnotation(vs.Name)},
			Elem:        ir.Bits(width),
			Size:        instances(vs.Size),
		})
	}

	s.inParser = true
	for st := range s.States.All() {
		if !s.IsReachable(graph.KindParserState, st.Name) {
			continue
		}
		s.setBlockContext()
		ps := s.conv.ConvertParserState(s, st)
		if st == start {
			ps.Components = append(s.metadataInitializers(), ps.Components...)
		}
		p.States = append(p.States, ps)
		s.conversionContext.Clear()
		if s.TraceEnabled() {
			s.Trace("converted parser state", slog.String("name", st.Name), slog.String("output", ps.Name))
		}
	}
	s.inParser = false
	s.latest = nil
	s.latestType = nil

	s.addBlock(p)
	s.Log(slog.LevelDebug, "parser converted",
		slog.Int("states", len(p.States)),
		slog.Int("cached_headers", s.headers.size()),
		slog.Int("varbit_extracts", len(s.extractsSynthesized)))
}

// metadataInitializers assigns the initial values of metadata fields.
func (s *Structure) metadataInitializers() []ir.Statement {
	var out []ir.Statement
	for m := range s.Metadata.All() {
		if len(m.Initializer) == 0 {
			continue
		}
		t := s.lookupHeaderType(m.Type, m)
		base := s.instanceRef(m.Name)
		for _, init := range m.Initializer {
			f, ok := t.Field(init.Field)
			if !ok {
				bug(m, "initializer for unknown field %q", init.Field)
			}
			width := 0
			if b, ok := f.Type.(*legacy.TypeBits); ok {
				width = b.Width
			}
			out = append(out, &ir.AssignmentStatement{
				Left:  ir.NewMember(base, init.Field),
				Right: s.sized(init.Value, width),
			})
		}
	}
	return out
}

// ConvertParserState converts one parser function.
func (DefaultConverter) ConvertParserState(s *Structure, st *legacy.ParserState) *ir.ParserState {
	s.latest = nil
	s.latestType = nil
	ps := &ir.ParserState{Name: s.States.Name(st)}
	if ps.Name != st.Name {
		ps.Annotations = ir.Annotations{ir.NameAnnotation(st.Name)}
	}

	for _, p := range st.Stmts {
		switch p.Name {
		case "extract":
			if len(p.Operands) != 1 {
				bug(p, "extract takes one header")
			}
			ps.Components = append(ps.Components, ir.CallStatement(s.extract(st, p.Operands[0])))
		case "set_metadata":
			if len(p.Operands) != 2 {
				bug(p, "set_metadata takes a field and a value")
			}
			ps.Components = append(ps.Components, &ir.AssignmentStatement{
				Left:  s.Expr(p.Operands[0]),
				Right: s.sized(p.Operands[1], s.widthOf(p.Operands[0])),
			})
		default:
			bug(p, "unexpected parser statement")
		}
	}

	if len(st.Select) == 0 {
		if st.Return == "" {
			bug(st, "parser state has no return")
		}
		ps.Select = ir.NewPath(s.stateTarget(st.Return, st))
		return ps
	}
	ps.Select = s.selectExpression(st)
	return ps
}

// extract converts extract(target). The header reference comes from the
// header cache; extracts of varbit headers are recorded for fix-up.
func (s *Structure) extract(st *legacy.ParserState, target legacy.Expression) *ir.MethodCall {
	name := headerName(target)
	t := s.instanceType(name)
	if t == nil || s.Metadata.Contains(name) {
		bug(target, "extract target is not a header")
	}

	ref := s.headers.resolve(target)
	s.latest = ref
	if item, ok := target.(*legacy.HeaderStackItemRef); ok {
		if _, constant := item.Index.(*legacy.Constant); !constant {
			s.latest = ir.NewMember(ref, "last")
			ref = ir.NewMember(ref, "next")
		}
	}
	s.latestType = t

	call := ir.Call(ir.NewPath(s.model.PacketParam), "extract", ref)
	if t.HasVarbit() {
		s.extractsSynthesized[call] = s.headerType(t)
	}

	s.headerOrder.AddNode(sym(graph.KindHeader, name))
	s.stateExtracts[st.Name] = append(s.stateExtracts[st.Name], name)
	return call
}

// stateTarget maps a return target to a state name. Returning to a
// control ends parsing.
func (s *Structure) stateTarget(name string, st *legacy.ParserState) string {
	switch {
	case s.States.Contains(name):
		return s.States.NameOf(name)
	case s.Controls.Contains(name):
		return stateAccept
	case name == "parse_error", strings.HasPrefix(name, "p4_pe_"):
		return stateReject
	default:
		bug(st, "return to unknown target %q", name)
		return ""
	}
}

func (s *Structure) selectExpression(st *legacy.ParserState) *ir.SelectExpression {
	sel := &ir.SelectExpression{Select: &ir.ListExpression{}}
	widths := make([]int, len(st.Select))
	for i, e := range st.Select {
		sel.Select.Components = append(sel.Select.Components, s.Expr(e))
		widths[i] = s.widthOf(e)
	}
	for _, c := range st.Cases {
		sc := &ir.SelectCase{State: ir.NewPath(s.stateTarget(c.Target, st))}
		if c.Default {
			sc.Keyset = &ir.DefaultExpression{}
		} else {
			sc.Keyset = s.selectLabel(st, c.Values, widths)
		}
		sel.Cases = append(sel.Cases, sc)
	}
	return sel
}

// selectLabel converts a case label. A single constant matched against
// several fields is split into one component per field.
func (s *Structure) selectLabel(st *legacy.ParserState, values []legacy.CaseValue, widths []int) ir.Expression {
	var comps []ir.Expression
	switch {
	case len(values) == len(widths):
		for i, v := range values {
			comps = append(comps, s.caseValue(st, v, widths[i]))
		}
	case len(values) == 1 && len(widths) > 1:
		if vs, ok := values[0].Value.(*legacy.PathExpression); ok {
			return s.valueSetRef(st, vs)
		}
		comps = s.explodeLabel(st, values[0], widths)
	default:
		bug(st, "select label has %d values for %d fields", len(values), len(widths))
	}
	if len(comps) == 1 {
		return comps[0]
	}
	return &ir.ListExpression{Components: comps}
}

func (s *Structure) caseValue(st *legacy.ParserState, v legacy.CaseValue, width int) ir.Expression {
	var value ir.Expression
	switch k := v.Value.(type) {
	case *legacy.Constant:
		value = convertConstant(k, width)
	case *legacy.PathExpression:
		return s.valueSetRef(st, k)
	default:
		bug(st, "select label %s is not a constant", v.Value)
	}
	if v.Mask == nil {
		return value
	}
	mask, ok := v.Mask.(*legacy.Constant)
	if !ok {
		bug(st, "select mask %s is not a constant", v.Mask)
	}
	return &ir.Mask{Left: value, Right: convertConstant(mask, width)}
}

func (s *Structure) valueSetRef(st *legacy.ParserState, pe *legacy.PathExpression) ir.Expression {
	if !s.ValueSets.Contains(pe.Name) {
		bug(st, "select label %q is not a value set", pe.Name)
	}
	return ir.NewPath(s.ValueSets.NameOf(pe.Name))
}

// explodeLabel splits a value (and mask) matched against the
// concatenation of several fields; the first field is most significant.
func (s *Structure) explodeLabel(st *legacy.ParserState, v legacy.CaseValue, widths []int) []ir.Expression {
	k, ok := v.Value.(*legacy.Constant)
	if !ok {
		bug(st, "select label %s is not a constant", v.Value)
	}
	for _, w := range widths {
		if w <= 0 {
			bug(st, "cannot split label %s: select field of unknown width", k)
		}
	}
	values := explodeValue(k.Value, widths)

	var masks []*big.Int
	if v.Mask != nil {
		m, ok := v.Mask.(*legacy.Constant)
		if !ok {
			bug(st, "select mask %s is not a constant", v.Mask)
		}
		masks = explodeValue(m.Value, widths)
	}

	comps := make([]ir.Expression, len(widths))
	for i, w := range widths {
		value := &ir.Constant{Value: values[i], Type: ir.Bits(w), Base: k.Base}
		switch {
		case masks == nil || masks[i].Cmp(allOnes(w)) == 0:
			comps[i] = value
		case masks[i].Sign() == 0:
			comps[i] = &ir.DefaultExpression{}
		default:
			comps[i] = &ir.Mask{Left: value, Right: &ir.Constant{Value: masks[i], Type: ir.Bits(w), Base: 16}}
		}
	}
	return comps
}

// explodeValue splits v into len(widths) slices, most significant first.
func explodeValue(v *big.Int, widths []int) []*big.Int {
	out := make([]*big.Int, len(widths))
	rest := new(big.Int).Set(v)
	for i := len(widths) - 1; i >= 0; i-- {
		out[i] = new(big.Int).And(rest, allOnes(widths[i]))
		rest.Rsh(rest, uint(widths[i]))
	}
	return out
}

func allOnes(width int) *big.Int {
	one := big.NewInt(1)
	return new(big.Int).Sub(new(big.Int).Lsh(one, uint(width)), one)
}
