package convert

import (
	"log/slog"

	"github.com/kmateuszssak/p4c/internal/graph"
	"github.com/kmateuszssak/p4c/ir"
	"github.com/kmateuszssak/p4c/legacy"
)

// ConvertExternType declares a blackbox type as an extern with a
// parameterless constructor.
func (DefaultConverter) ConvertExternType(s *Structure, t *legacy.ExternType) *ir.TypeExtern {
	name := s.ExternTypes.Name(t)
	ext := &ir.TypeExtern{
		Name:        name,
		Annotations: s.renamedAnnotation(t.Name, name),
		Methods:     []*ir.Method{{Name: name}},
	}
	for _, m := range t.Methods {
		method := &ir.Method{Name: m.Name, Return: &ir.TypeVoid{}}
		for _, p := range m.Params {
			var typ ir.Type = ir.Bits(32)
			if p.Type != nil {
				typ = s.ConvertType(p.Type)
			}
			method.Params = append(method.Params, &ir.Parameter{Name: p.Name, Direction: ir.DirIn, Type: typ})
		}
		ext.Methods = append(ext.Methods, method)
	}
	return ext
}

// ConvertExternInstance instantiates a blackbox. Attribute assignments
// are carried as annotations.
func (DefaultConverter) ConvertExternInstance(s *Structure, e *legacy.ExternInstance) *ir.DeclarationInstance {
	t, ok := s.ExternTypes.Lookup(e.Type)
	if !ok {
		bug(e, "instance of unknown extern type %q", e.Type)
	}
	inst := &ir.DeclarationInstance{
		Name:        s.Externs.Name(e),
		Annotations: ir.Annotations{ir.GlobalNameAnnotation(e.Name)},
		Type:        &ir.TypeName{Name: s.ExternTypes.Name(t)},
	}
	for _, p := range e.Properties {
		inst.Annotations = append(inst.Annotations, &ir.Annotation{
			Name: p.Name,
			Args: []ir.Expression{s.attributeValue(p.Value, e)},
		})
	}
	return inst
}

// attributeValue converts a constant attribute value. Attributes are
// evaluated outside any block, so only literals and names are allowed.
func (s *Structure) attributeValue(v legacy.Expression, owner legacy.Declaration) ir.Expression {
	switch v := v.(type) {
	case *legacy.Constant:
		return convertConstant(v, v.Width)
	case *legacy.StringLiteral:
		return &ir.StringLiteral{Value: v.Value}
	case *legacy.BoolLiteral:
		return &ir.BoolLiteral{Value: v.Value}
	case *legacy.PathExpression:
		return &ir.StringLiteral{Value: v.Name}
	default:
		bug(owner, "attribute value %s is not a constant", v)
		return nil
	}
}

// createExterns declares extern types and instances. Types are always
// declared; instances only when an action reaches them.
func (s *Structure) createExterns() {
	for t := range s.ExternTypes.All() {
		s.addExtern(s.conv.ConvertExternType(s, t))
	}
	for e := range s.Externs.All() {
		if !s.IsReachable(graph.KindExtern, e.Name) {
			continue
		}
		s.addInstance(s.conv.ConvertExternInstance(s, e))
		if s.TraceEnabled() {
			s.Trace("converted extern instance", slog.String("name", e.Name))
		}
	}
}
