package convert

import (
	"log/slog"

	"github.com/kmateuszssak/p4c/ir"
	"github.com/kmateuszssak/p4c/legacy"
)

// ConvertAction converts an action under the given output name. The extra
// statements are appended after the converted body; tables with direct
// counters or meters use them to update their instances.
func (DefaultConverter) ConvertAction(s *Structure, a *legacy.Action, name string, extra []ir.Statement) *ir.Action {
	prev := s.currentAction
	s.currentAction = a
	defer func() { s.currentAction = prev }()

	act := &ir.Action{
		Name:        name,
		Annotations: ir.Annotations{ir.GlobalNameAnnotation(a.Name)},
		Body:        ir.NewBlock(),
	}
	for _, p := range a.Params {
		act.Params = append(act.Params, &ir.Parameter{
			Name: p.Name,
			Type: s.ConvertType(s.paramType(a, p)),
		})
	}
	for _, p := range a.Body {
		if st := s.conv.ConvertPrimitive(s, p); st != nil {
			act.Body.Components = append(act.Body.Components, st)
		}
	}
	act.Body.Components = append(act.Body.Components, extra...)
	return act
}

// action returns the shared conversion of a.
func (s *Structure) action(a *legacy.Action) *ir.Action {
	if act, ok := s.convertedActions[a]; ok {
		return act
	}
	act := s.conv.ConvertAction(s, a, s.Actions.Name(a), nil)
	s.convertedActions[a] = act
	if s.TraceEnabled() {
		s.Trace("converted action", slog.String("name", act.Name))
	}
	return act
}

// actionCopy converts a private copy of a under a fresh name.
func (s *Structure) actionCopy(a *legacy.Action, extra []ir.Statement) *ir.Action {
	act := s.conv.ConvertAction(s, a, s.MakeUniqueName(s.Actions.Name(a)), extra)
	if s.TraceEnabled() {
		s.Trace("copied action", slog.String("action", a.Name), slog.String("copy", act.Name))
	}
	return act
}

// paramType returns the declared type of an action parameter, or infers
// one from how the body uses it. Parameters with no usable context are
// bit<32>.
func (s *Structure) paramType(a *legacy.Action, p *legacy.Param) legacy.Type {
	if p.Type != nil {
		return p.Type
	}
	if t, ok := s.paramTypes[p]; ok {
		if t == nil {
			// Inference cycle through compound calls.
			return &legacy.TypeBits{Width: 32}
		}
		return t
	}
	s.paramTypes[p] = nil
	t := s.inferParamType(a, p)
	if t == nil {
		t = &legacy.TypeBits{Width: 32}
	}
	s.paramTypes[p] = t
	return t
}

func (s *Structure) paramWidth(a *legacy.Action, p *legacy.Param) int {
	if bits, ok := s.paramType(a, p).(*legacy.TypeBits); ok {
		return bits.Width
	}
	return 32
}

func (s *Structure) inferParamType(a *legacy.Action, p *legacy.Param) legacy.Type {
	isParam := func(e legacy.Expression) bool {
		pe, ok := e.(*legacy.PathExpression)
		return ok && pe.Name == p.Name
	}
	for _, prim := range a.Body {
		for i, op := range prim.Operands {
			if !isParam(op) {
				continue
			}
			if prim.Receiver != "" {
				if t := s.externParamType(prim, i); t != nil {
					return t
				}
				continue
			}
			if callee, ok := s.Actions.Lookup(prim.Name); ok {
				if i < len(callee.Params) {
					return s.paramType(callee, callee.Params[i])
				}
				continue
			}
			if t := s.operandType(a, prim, i); t != nil {
				return t
			}
		}
	}
	return nil
}

// operandType infers the type of operand i of a primitive from its
// position or from the operands it is combined with.
func (s *Structure) operandType(a *legacy.Action, prim *legacy.Primitive, i int) legacy.Type {
	index := &legacy.TypeBits{Width: 32}
	switch prim.Name {
	case "count", "execute_meter":
		if i == 1 {
			return index
		}
	case "register_read":
		if i == 2 {
			return index
		}
	case "register_write":
		if i == 1 {
			return index
		}
		if i == 2 {
			if pe, ok := prim.Operands[0].(*legacy.PathExpression); ok {
				if r, ok := s.Registers.Lookup(pe.Name); ok && r.Layout == "" {
					w := r.Width
					if w <= 0 {
						w = s.opts.RegisterWidth
					}
					return &legacy.TypeBits{Width: w}
				}
			}
		}
	case "truncate", "clone_ingress_pkt_to_egress", "clone_egress_pkt_to_egress",
		"clone_i2e", "clone_e2e", "generate_digest":
		if i == 0 {
			return index
		}
	}
	prev := s.currentAction
	s.currentAction = nil
	defer func() { s.currentAction = prev }()
	for j, other := range prim.Operands {
		if j == i {
			continue
		}
		if pe, ok := other.(*legacy.PathExpression); ok {
			if q, ok := a.Param(pe.Name); ok {
				if q.Type != nil {
					return q.Type
				}
				continue
			}
		}
		if t := s.typeOf(other); t != nil {
			if _, ok := t.(*legacy.TypeBits); ok {
				return t
			}
		}
	}
	return nil
}

func (s *Structure) externParamType(prim *legacy.Primitive, i int) legacy.Type {
	inst, ok := s.Externs.Lookup(prim.Receiver)
	if !ok {
		return nil
	}
	t, ok := s.ExternTypes.Lookup(inst.Type)
	if !ok {
		return nil
	}
	m, ok := t.Method(prim.Name)
	if !ok || i >= len(m.Params) {
		return nil
	}
	return m.Params[i].Type
}
