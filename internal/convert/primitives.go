package convert

import (
	"github.com/kmateuszssak/p4c/internal/v1model"
	"github.com/kmateuszssak/p4c/ir"
	"github.com/kmateuszssak/p4c/legacy"
)

var arithmetic = map[string]string{
	"add":         "+",
	"subtract":    "-",
	"multiply":    "*",
	"bit_and":     "&",
	"bit_or":      "|",
	"bit_xor":     "^",
	"shift_left":  "<<",
	"shift_right": ">>",
}

var negated = map[string]string{
	"bit_nand": "&",
	"bit_nor":  "|",
	"bit_xnor": "^",
}

// ConvertPrimitive converts one statement of an action body. Calls to
// compound actions and extern methods are converted as calls; everything
// else must be a known primitive.
func (DefaultConverter) ConvertPrimitive(s *Structure, p *legacy.Primitive) ir.Statement {
	if p.Receiver != "" {
		return s.externCall(p)
	}
	if callee, ok := s.Actions.Lookup(p.Name); ok {
		return s.actionCall(p, callee)
	}
	prim, ok := v1model.LookupPrimitive(p.Name)
	if !ok {
		if hint := v1model.SuggestPrimitive(p.Name); hint != "" {
			bug(p, "unknown primitive, did you mean %s", hint)
		}
		bug(p, "unknown primitive")
	}
	if !prim.Accepts(len(p.Operands)) {
		bug(p, "%d operands, want %d to %d", len(p.Operands), prim.MinArgs, prim.MaxArgs)
	}
	ops := p.Operands
	assign := func(dst legacy.Expression, value ir.Expression) ir.Statement {
		return &ir.AssignmentStatement{Left: s.Expr(dst), Right: value}
	}
	call := func(fn string, args ...ir.Expression) ir.Statement {
		return ir.CallStatement(&ir.MethodCall{Method: ir.NewPath(fn), Args: args})
	}
	w := func(i int) int { return s.widthOf(ops[i]) }

	switch p.Name {
	case "modify_field":
		if len(ops) == 3 {
			return s.maskedAssign(ops[0], ops[1], ops[2])
		}
		return assign(ops[0], s.sized(ops[1], w(0)))
	case "add_to_field", "subtract_from_field":
		op := "+"
		if p.Name == "subtract_from_field" {
			op = "-"
		}
		return assign(ops[0], &ir.Binary{Op: op, Left: s.Expr(ops[0]), Right: s.sized(ops[1], w(0))})
	case "add", "subtract", "multiply", "bit_and", "bit_or", "bit_xor", "shift_left", "shift_right":
		right := s.sized(ops[2], w(0))
		if p.Name == "shift_left" || p.Name == "shift_right" {
			right = s.Expr(ops[2])
		}
		return assign(ops[0], &ir.Binary{Op: arithmetic[p.Name], Left: s.sized(ops[1], w(0)), Right: right})
	case "bit_nand", "bit_nor", "bit_xnor":
		return assign(ops[0], &ir.Unary{Op: "~", Expr: &ir.Binary{
			Op: negated[p.Name], Left: s.sized(ops[1], w(0)), Right: s.sized(ops[2], w(0)),
		}})
	case "bit_not":
		return assign(ops[0], &ir.Unary{Op: "~", Expr: s.sized(ops[1], w(0))})
	case "min", "max":
		cmp := "<="
		if p.Name == "max" {
			cmp = ">="
		}
		a, b := s.sized(ops[1], w(0)), s.sized(ops[2], w(0))
		return &ir.IfStatement{
			Cond: &ir.Binary{Op: cmp, Left: a, Right: b},
			Then: assign(ops[0], a),
			Else: assign(ops[0], b),
		}
	case "add_header":
		return ir.CallStatement(ir.Call(s.Expr(ops[0]), "setValid"))
	case "remove_header":
		return ir.CallStatement(ir.Call(s.Expr(ops[0]), "setInvalid"))
	case "copy_header":
		return assign(ops[0], s.Expr(ops[1]))
	case "drop", "mark_for_drop":
		return call(v1model.FuncMarkToDrop, s.conversionContext.StandardMetadata())
	case "no_op":
		return nil
	case "exit":
		return &ir.ExitStatement{}
	case "count":
		return ir.CallStatement(ir.Call(s.Expr(ops[0]), "count", s.index32(ops[1])))
	case "execute_meter":
		if len(ops) == 4 {
			bug(p, "meter pre-color operand has no v1model equivalent")
		}
		dst := s.Expr(ops[2])
		mc := &ir.MethodCall{
			Method: ir.NewMember(s.Expr(ops[0]), "execute_meter"),
			Args:   []ir.Expression{s.index32(ops[1]), dst},
		}
		if dw := w(2); dw > 0 {
			mc.TypeArgs = []ir.Type{ir.Bits(dw)}
		}
		return ir.CallStatement(mc)
	case "register_read":
		return ir.CallStatement(ir.Call(s.Expr(ops[1]), "read", s.Expr(ops[0]), s.index32(ops[2])))
	case "register_write":
		return ir.CallStatement(ir.Call(s.Expr(ops[0]), "write", s.index32(ops[1]), s.registerValue(ops[0], ops[2])))
	case "modify_field_with_hash_based_offset":
		return s.hashOffset(p)
	case "modify_field_rng_uniform":
		return call(v1model.FuncRandom, s.Expr(ops[0]), s.sized(ops[1], w(0)), s.sized(ops[2], w(0)))
	case "truncate":
		return call(v1model.FuncTruncate, s.index32(ops[0]))
	case "clone_ingress_pkt_to_egress", "clone_i2e":
		return s.clone(v1model.CloneI2E, ops)
	case "clone_egress_pkt_to_egress", "clone_e2e":
		return s.clone(v1model.CloneE2E, ops)
	case "resubmit", "recirculate":
		fn := v1model.FuncResubmit
		if p.Name == "recirculate" {
			fn = v1model.FuncRecirculate
		}
		data := &ir.ListExpression{}
		if len(ops) == 1 {
			data = s.namedFieldList(ops[0], p)
		}
		return call(fn, data)
	case "generate_digest":
		return call(v1model.FuncDigest, s.index32(ops[0]), s.namedFieldList(ops[1], p))
	case "push", "pop":
		method := "push_front"
		if p.Name == "pop" {
			method = "pop_front"
		}
		var count ir.Expression = ir.NewConstant(1)
		if len(ops) == 2 {
			k, ok := ops[1].(*legacy.Constant)
			if !ok {
				bug(p, "%s count must be a constant", p.Name)
			}
			count = convertConstant(k, 0)
		}
		return ir.CallStatement(ir.Call(s.Expr(ops[0]), method, count))
	default:
		bug(p, "primitive has no conversion")
		return nil
	}
}

// maskedAssign converts modify_field(dst, src, mask) into
// dst = (dst & ~mask) | (src & mask).
func (s *Structure) maskedAssign(dst, src, mask legacy.Expression) ir.Statement {
	w := s.widthOf(dst)
	m := s.sized(mask, w)
	return &ir.AssignmentStatement{
		Left: s.Expr(dst),
		Right: &ir.Binary{
			Op:    "|",
			Left:  &ir.Binary{Op: "&", Left: s.Expr(dst), Right: &ir.Unary{Op: "~", Expr: m}},
			Right: &ir.Binary{Op: "&", Left: s.sized(src, w), Right: s.sized(mask, w)},
		},
	}
}

// registerValue sizes a constant written to a register to its width.
func (s *Structure) registerValue(reg, value legacy.Expression) ir.Expression {
	pe, ok := reg.(*legacy.PathExpression)
	if !ok {
		return s.Expr(value)
	}
	r, ok := s.Registers.Lookup(pe.Name)
	if !ok || r.Layout != "" {
		return s.Expr(value)
	}
	w := r.Width
	if w <= 0 {
		w = s.opts.RegisterWidth
	}
	return s.sized(value, w)
}

// hashOffset converts modify_field_with_hash_based_offset(dst, base,
// calculation, size) into a call of hash.
func (s *Structure) hashOffset(p *legacy.Primitive) ir.Statement {
	ops := p.Operands
	pe, ok := ops[2].(*legacy.PathExpression)
	if !ok {
		bug(p, "hash calculation must be named")
	}
	calc, ok := s.Calculations.Lookup(pe.Name)
	if !ok {
		bug(p, "unknown field list calculation %q", pe.Name)
	}
	if len(calc.Algorithms) == 0 {
		bug(calc, "field list calculation has no algorithm")
	}
	alg, ok := v1model.HashAlgorithm(calc.Algorithms[0])
	if !ok {
		bug(calc, "unsupported algorithm %q", calc.Algorithms[0])
	}
	fields, _ := s.calculationFields(calc)

	w := s.widthOf(ops[0])
	if w == 0 {
		w = calc.OutputWidth
	}
	return ir.CallStatement(&ir.MethodCall{
		Method: ir.NewPath(v1model.FuncHash),
		Args: []ir.Expression{
			s.Expr(ops[0]),
			enumMember(v1model.EnumHashAlgorithm, alg),
			s.sized(ops[1], w),
			s.fieldListExpr(fields),
			s.sized(ops[3], 2*w),
		},
	})
}

// clone converts the clone primitives. With a field list the packet is
// cloned with its metadata (clone3).
func (s *Structure) clone(kind string, ops []legacy.Expression) ir.Statement {
	args := []ir.Expression{enumMember(v1model.EnumCloneType, kind), s.index32(ops[0])}
	fn := v1model.FuncClone
	if len(ops) == 2 {
		fn = v1model.FuncClone3
		args = append(args, s.namedFieldList(ops[1], kind))
	}
	return ir.CallStatement(&ir.MethodCall{Method: ir.NewPath(fn), Args: args})
}

// externCall converts a method call on a blackbox instance.
func (s *Structure) externCall(p *legacy.Primitive) ir.Statement {
	inst, ok := s.Externs.Lookup(p.Receiver)
	if !ok {
		bug(p, "method call on unknown extern %q", p.Receiver)
	}
	t, ok := s.ExternTypes.Lookup(inst.Type)
	if !ok {
		bug(inst, "unknown extern type %q", inst.Type)
	}
	m, ok := t.Method(p.Name)
	if !ok {
		bug(p, "extern type %q has no method %q", t.Name, p.Name)
	}
	if len(m.Params) != len(p.Operands) {
		bug(p, "%d arguments, want %d", len(p.Operands), len(m.Params))
	}
	args := make([]ir.Expression, len(p.Operands))
	for i, op := range p.Operands {
		w := 32
		if bits, ok := m.Params[i].Type.(*legacy.TypeBits); ok {
			w = bits.Width
		}
		args[i] = s.sized(op, w)
	}
	return ir.CallStatement(ir.Call(ir.NewPath(s.Externs.Name(inst)), p.Name, args...))
}

// actionCall converts a call of a compound action.
func (s *Structure) actionCall(p *legacy.Primitive, callee *legacy.Action) ir.Statement {
	if len(p.Operands) != len(callee.Params) {
		bug(p, "%d arguments, want %d", len(p.Operands), len(callee.Params))
	}
	args := make([]ir.Expression, len(p.Operands))
	for i, op := range p.Operands {
		args[i] = s.sized(op, s.paramWidth(callee, callee.Params[i]))
	}
	return ir.CallStatement(&ir.MethodCall{Method: ir.NewPath(s.Actions.Name(callee)), Args: args})
}
