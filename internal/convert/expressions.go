package convert

import (
	"math/big"

	"github.com/kmateuszssak/p4c/internal/v1model"
	"github.com/kmateuszssak/p4c/ir"
	"github.com/kmateuszssak/p4c/legacy"
)

var binaryOps = map[string]string{
	"and": "&&",
	"or":  "||",
}

var unaryOps = map[string]string{
	"not": "!",
}

// Expr converts a legacy expression using the current rewrite context.
func (s *Structure) Expr(e legacy.Expression) ir.Expression {
	switch e := e.(type) {
	case *legacy.ConcreteHeaderRef:
		return s.instanceRef(e.Name)
	case *legacy.HeaderStackItemRef:
		return s.stackRef(e)
	case *legacy.Member:
		return ir.NewMember(s.Expr(e.Expr), e.Name)
	case *legacy.PathExpression:
		return s.pathRef(e)
	case *legacy.Constant:
		return convertConstant(e, e.Width)
	case *legacy.BoolLiteral:
		return &ir.BoolLiteral{Value: e.Value}
	case *legacy.StringLiteral:
		return &ir.StringLiteral{Value: e.Value}
	case *legacy.Binary:
		op := e.Op
		if mapped, ok := binaryOps[op]; ok {
			op = mapped
		}
		left, right := e.Left, e.Right
		w := s.widthOf(left)
		if w == 0 {
			w = s.widthOf(right)
		}
		return &ir.Binary{Op: op, Left: s.sized(left, w), Right: s.sized(right, w)}
	case *legacy.Unary:
		op := e.Op
		if mapped, ok := unaryOps[op]; ok {
			op = mapped
		}
		return &ir.Unary{Op: op, Expr: s.Expr(e.Expr)}
	case *legacy.Valid:
		return ir.Call(s.Expr(e.Expr), "isValid")
	case *legacy.Current:
		return s.lookahead(e)
	case nil:
		bug(nil, "missing expression")
	default:
		bug(e, "unexpected expression %T", e)
	}
	return nil
}

// sized converts e, giving untyped constants the width w.
func (s *Structure) sized(e legacy.Expression, w int) ir.Expression {
	if k, ok := e.(*legacy.Constant); ok && k.Width == 0 && w > 0 {
		return convertConstant(k, w)
	}
	return s.Expr(e)
}

// index32 converts an array index to bit<32>, the index type of the
// model's counters, meters and registers.
func (s *Structure) index32(e legacy.Expression) ir.Expression {
	if k, ok := e.(*legacy.Constant); ok {
		return convertConstant(k, 32)
	}
	if s.widthOf(e) == 32 {
		return s.Expr(e)
	}
	return &ir.Cast{Type: ir.Bits(32), Expr: s.Expr(e)}
}

func convertConstant(k *legacy.Constant, width int) *ir.Constant {
	c := &ir.Constant{Value: new(big.Int).Set(k.Value), Base: k.Base}
	if c.Base == 0 {
		c.Base = 10
	}
	if width > 0 {
		c.Type = ir.Bits(width)
	}
	return c
}

func sizedInt(v, width int) *ir.Constant {
	return ir.NewSizedConstant(int64(v), width)
}

// instanceRef converts a reference to a header, header stack or metadata
// instance.
func (s *Structure) instanceRef(name string) ir.Expression {
	switch {
	case s.Headers.Contains(name), s.Stacks.Contains(name):
		return s.headers.header(name)
	case s.Metadata.Contains(name):
		return ir.NewMember(s.conversionContext.UserMetadata(), s.Metadata.NameOf(name))
	case name == s.model.StandardMetadata:
		return s.conversionContext.StandardMetadata()
	default:
		bug(nil, "reference to unknown instance %q", name)
		return nil
	}
}

func (s *Structure) stackRef(e *legacy.HeaderStackItemRef) ir.Expression {
	ref := s.headers.resolve(e)
	if _, ok := e.Index.(*legacy.Constant); ok {
		return ref
	}
	cursor, ok := e.Index.(*legacy.PathExpression)
	if !ok || (cursor.Name != "next" && cursor.Name != "last") {
		bug(e, "stack index is neither a constant nor next/last")
	}
	return ir.NewMember(ref, cursor.Name)
}

func (s *Structure) pathRef(e *legacy.PathExpression) ir.Expression {
	name := e.Name
	if a := s.currentAction; a != nil {
		if _, ok := a.Param(name); ok {
			return ir.NewPath(name)
		}
	}
	switch {
	case name == "latest":
		return checkNull(s.latest, "header for latest")
	case s.Counters.Contains(name):
		return ir.NewPath(s.Counters.NameOf(name))
	case s.Meters.Contains(name):
		return ir.NewPath(s.Meters.NameOf(name))
	case s.Registers.Contains(name):
		return ir.NewPath(s.Registers.NameOf(name))
	case s.Externs.Contains(name):
		return ir.NewPath(s.Externs.NameOf(name))
	case s.ValueSets.Contains(name):
		return ir.NewPath(s.ValueSets.NameOf(name))
	case s.Actions.Contains(name):
		return ir.NewPath(s.Actions.NameOf(name))
	default:
		bug(e, "unresolved name")
		return nil
	}
}

// lookahead converts current(offset, width).
func (s *Structure) lookahead(e *legacy.Current) ir.Expression {
	if !s.inParser {
		bug(e, "current() outside the parser")
	}
	call := &ir.MethodCall{
		Method:   ir.NewMember(ir.NewPath(s.model.PacketParam), "lookahead"),
		TypeArgs: []ir.Type{ir.Bits(e.Offset + e.Width)},
	}
	if e.Offset == 0 {
		return call
	}
	return &ir.Slice{Expr: call, Hi: e.Width - 1, Lo: 0}
}

// ConvertType converts a field or parameter type.
func (s *Structure) ConvertType(t legacy.Type) ir.Type {
	switch t := t.(type) {
	case *legacy.TypeBits:
		return &ir.TypeBits{Width: t.Width, Signed: t.Signed}
	case *legacy.TypeVarbits:
		return &ir.TypeVarbits{Size: t.MaxWidth}
	case *legacy.TypeBool:
		return &ir.TypeBool{}
	case *legacy.TypeName:
		return &ir.TypeName{Name: s.Types.NameOf(t.Name)}
	default:
		bug(nil, "unexpected type %T", t)
		return nil
	}
}

// instanceType returns the header type of a header, stack or metadata
// instance.
func (s *Structure) instanceType(name string) *legacy.HeaderType {
	var typeName string
	if h, ok := s.Headers.Lookup(name); ok {
		typeName = h.Type
	} else if st, ok := s.Stacks.Lookup(name); ok {
		typeName = st.Type
	} else if m, ok := s.Metadata.Lookup(name); ok {
		typeName = m.Type
	} else {
		return nil
	}
	t, ok := s.Types.Lookup(typeName)
	if !ok {
		bug(nil, "instance %q has unknown type %q", name, typeName)
	}
	return t
}

// typeOf returns the legacy type of e, or nil when it cannot be known
// without type inference.
func (s *Structure) typeOf(e legacy.Expression) legacy.Type {
	switch e := e.(type) {
	case *legacy.Member:
		base := headerName(e.Expr)
		if base == "" {
			if e.Expr.String() == "latest" && s.latestType != nil {
				if f, ok := s.latestType.Field(e.Name); ok {
					return f.Type
				}
			}
			return nil
		}
		if base == s.model.StandardMetadata {
			if w, ok := v1model.StandardMetadataWidth(e.Name); ok {
				return &legacy.TypeBits{Width: w}
			}
			return nil
		}
		t := s.instanceType(base)
		if t == nil {
			return nil
		}
		if f, ok := t.Field(e.Name); ok {
			return f.Type
		}
		return nil
	case *legacy.PathExpression:
		if a := s.currentAction; a != nil {
			if p, ok := a.Param(e.Name); ok {
				return s.paramType(a, p)
			}
		}
		return nil
	case *legacy.Constant:
		if e.Width > 0 {
			return &legacy.TypeBits{Width: e.Width}
		}
		return nil
	case *legacy.Current:
		return &legacy.TypeBits{Width: e.Width}
	case *legacy.Valid:
		return &legacy.TypeBool{}
	default:
		return nil
	}
}

// widthOf returns the bit width of e, zero when unknown.
func (s *Structure) widthOf(e legacy.Expression) int {
	switch t := s.typeOf(e).(type) {
	case *legacy.TypeBits:
		return t.Width
	default:
		return 0
	}
}

// headerName returns the instance named by a header or stack element
// reference, or "".
func headerName(e legacy.Expression) string {
	switch e := e.(type) {
	case *legacy.ConcreteHeaderRef:
		return e.Name
	case *legacy.HeaderStackItemRef:
		return headerName(e.Base)
	default:
		return ""
	}
}
