package convert

import (
	"log/slog"

	"github.com/kmateuszssak/p4c/internal/registry"
	"github.com/kmateuszssak/p4c/ir"
	"github.com/kmateuszssak/p4c/legacy"
)

// ConvertHeaderType declares t as a header.
func (DefaultConverter) ConvertHeaderType(s *Structure, t *legacy.HeaderType, name string) *ir.TypeHeader {
	return &ir.TypeHeader{
		Name:        name,
		Annotations: s.renamedAnnotation(t.Name, name),
		Fields:      s.structFields(t),
	}
}

// ConvertMetadataType declares t as a struct.
func (DefaultConverter) ConvertMetadataType(s *Structure, t *legacy.HeaderType, name string) *ir.TypeStruct {
	return &ir.TypeStruct{
		Name:        name,
		Annotations: s.renamedAnnotation(t.Name, name),
		Fields:      s.structFields(t),
	}
}

func (s *Structure) structFields(t *legacy.HeaderType) []*ir.StructField {
	fields := make([]*ir.StructField, 0, len(t.Fields))
	for _, f := range t.Fields {
		fields = append(fields, &ir.StructField{Name: f.Name, Type: s.ConvertType(f.Type)})
	}
	return fields
}

// renamedAnnotation returns @name(original) when the output name differs.
func (s *Structure) renamedAnnotation(original, name string) ir.Annotations {
	if original == name {
		return nil
	}
	return ir.Annotations{ir.NameAnnotation(original)}
}

// headerType returns the header declaration of t, converting it on first
// use. A type already declared as a struct gets a fresh name.
func (s *Structure) headerType(t *legacy.HeaderType) *ir.TypeHeader {
	if h, ok := s.finalHeaderType[t.Name]; ok {
		return h
	}
	name := s.Types.Name(t)
	if _, isStruct := s.metadataType[t.Name]; isStruct {
		name = s.MakeUniqueName(name)
	}
	h := s.conv.ConvertHeaderType(s, t, name)
	s.finalHeaderType[t.Name] = h
	s.addType(h)
	if s.TraceEnabled() {
		s.Trace("converted header type", slog.String("name", t.Name), slog.String("output", h.Name))
	}
	return h
}

// metadataStruct returns the struct declaration of t, converting it on
// first use. A type that is also a header gets a fresh name.
func (s *Structure) metadataStruct(t *legacy.HeaderType) *ir.TypeStruct {
	if st, ok := s.metadataType[t.Name]; ok {
		return st
	}
	name := s.Types.Name(t)
	if _, isHeader := s.finalHeaderType[t.Name]; isHeader {
		name = s.MakeUniqueName(name)
	}
	st := s.conv.ConvertMetadataType(s, t, name)
	s.metadataType[t.Name] = st
	s.addType(st)
	if s.TraceEnabled() {
		s.Trace("converted metadata type", slog.String("name", t.Name), slog.String("output", st.Name))
	}
	return st
}

// registerLayout returns the struct used as the element of registers laid
// out as header type typeName. The header itself is converted first.
func (s *Structure) registerLayout(typeName string) *ir.TypeStruct {
	if st, ok := s.registerLayoutType[typeName]; ok {
		return st
	}
	t, ok := s.Types.Lookup(typeName)
	if !ok {
		bug(nil, "register layout %q is not a header type", typeName)
	}
	h := s.headerType(t)
	fields := make([]*ir.StructField, len(h.Fields))
	for i, f := range h.Fields {
		if _, varbit := f.Type.(*ir.TypeVarbits); varbit {
			bug(t, "register layout has a varbit field %q", f.Name)
		}
		fields[i] = &ir.StructField{Name: f.Name, Type: f.Type}
	}
	st := &ir.TypeStruct{
		Name:        s.MakeUniqueName(h.Name),
		Annotations: ir.Annotations{ir.NameAnnotation(t.Name)},
		Fields:      fields,
	}
	s.registerLayoutType[typeName] = st
	s.addType(st)
	return st
}

// lookupHeaderType returns the legacy type of an instance.
func (s *Structure) lookupHeaderType(typeName string, owner legacy.Declaration) *legacy.HeaderType {
	t, ok := s.Types.Lookup(typeName)
	if !ok {
		bug(owner, "unknown header type %q", typeName)
	}
	return t
}

// createTypes converts the types of all header, stack and metadata
// instances and synthesizes the headers and metadata aggregates.
func (s *Structure) createTypes() {
	headers := &ir.TypeStruct{Name: s.model.HeadersType}
	for h := range s.Headers.All() {
		t := s.headerType(s.lookupHeaderType(h.Type, h))
		headers.Fields = append(headers.Fields, &ir.StructField{
			Name:        s.Headers.Name(h),
			Annotations: ir.Annotations{ir.GlobalNameAnnotation(h.Name)},
			Type:        &ir.TypeName{Name: t.Name},
		})
	}
	for st := range s.Stacks.All() {
		if st.Size <= 0 {
			bug(st, "header stack has size %d", st.Size)
		}
		t := s.headerType(s.lookupHeaderType(st.Type, st))
		headers.Fields = append(headers.Fields, &ir.StructField{
			Name:        s.Stacks.Name(st),
			Annotations: ir.Annotations{ir.GlobalNameAnnotation(st.Name)},
			Type:        &ir.TypeStack{Elem: &ir.TypeName{Name: t.Name}, Size: st.Size},
		})
	}

	metadata := &ir.TypeStruct{Name: s.model.MetadataType}
	for m := range s.Metadata.All() {
		t := s.metadataStruct(s.lookupHeaderType(m.Type, m))
		metadata.Fields = append(metadata.Fields, &ir.StructField{
			Name:        s.Metadata.Name(m),
			Annotations: ir.Annotations{ir.GlobalNameAnnotation(m.Name)},
			Type:        &ir.TypeName{Name: t.Name},
		})
	}

	s.addType(metadata)
	s.addType(headers)

	for calc := range s.Calculations.All() {
		s.addType(s.conv.ConvertFieldListCalculation(s, calc))
	}

	if s.TraceEnabled() {
		for t := range s.Types.All() {
			_, isHeader := s.finalHeaderType[t.Name]
			_, isStruct := s.metadataType[t.Name]
			if !isHeader && !isStruct {
				s.Trace("header type unused by any instance", slog.String("name", t.Name))
			}
		}
	}
}

// ConvertFieldListCalculation synthesizes a struct whose fields are the
// inputs of the calculation in order.
func (DefaultConverter) ConvertFieldListCalculation(s *Structure, calc *legacy.FieldListCalculation) *ir.TypeStruct {
	fields, _ := s.calculationFields(calc)
	local := registry.NewNameSet()
	st := &ir.TypeStruct{
		Name:        s.ClaimName(s.Calculations.Name(calc) + "_fields"),
		Annotations: ir.Annotations{ir.NameAnnotation(calc.Name)},
	}
	for _, f := range fields {
		t := s.typeOf(f)
		if t == nil {
			if ref := headerName(f); ref != "" {
				if ht := s.instanceType(ref); ht != nil {
					st.Fields = append(st.Fields, &ir.StructField{
						Name: local.Claim(ref),
						Type: &ir.TypeName{Name: s.headerType(ht).Name},
					})
					continue
				}
			}
			bug(calc, "cannot determine the type of field list entry %s", f)
		}
		st.Fields = append(st.Fields, &ir.StructField{
			Name: local.Claim(registry.Identifier(f.String())),
			Type: s.ConvertType(t),
		})
	}
	return st
}

// calculationFields returns the fields a calculation reads, nested field
// lists expanded, and whether the packet payload is included.
func (s *Structure) calculationFields(calc *legacy.FieldListCalculation) ([]legacy.Expression, bool) {
	var (
		out     []legacy.Expression
		payload bool
	)
	for _, in := range calc.Inputs {
		fl, ok := s.FieldLists.Lookup(in)
		if !ok {
			bug(calc, "unknown field list %q", in)
		}
		fields, p := s.fieldListFields(fl, nil)
		out = append(out, fields...)
		payload = payload || p
	}
	return out, payload
}

// fieldListFields expands a field list. Headers stay whole; nested field
// lists are inlined.
func (s *Structure) fieldListFields(fl *legacy.FieldList, visiting map[string]bool) ([]legacy.Expression, bool) {
	if visiting == nil {
		visiting = make(map[string]bool)
	}
	if visiting[fl.Name] {
		bug(fl, "field list includes itself")
	}
	visiting[fl.Name] = true
	defer delete(visiting, fl.Name)

	var out []legacy.Expression
	payload := fl.Payload
	for _, f := range fl.Fields {
		if pe, ok := f.(*legacy.PathExpression); ok {
			nested, ok := s.FieldLists.Lookup(pe.Name)
			if !ok {
				bug(fl, "unknown field list %q", pe.Name)
			}
			fields, p := s.fieldListFields(nested, visiting)
			out = append(out, fields...)
			payload = payload || p
			continue
		}
		out = append(out, f)
	}
	return out, payload
}

// fieldListExpr converts field list entries into a list expression.
func (s *Structure) fieldListExpr(fields []legacy.Expression) *ir.ListExpression {
	list := &ir.ListExpression{}
	for _, f := range fields {
		list.Components = append(list.Components, s.Expr(f))
	}
	return list
}

// namedFieldList converts the field list named by e.
func (s *Structure) namedFieldList(e legacy.Expression, owner any) *ir.ListExpression {
	pe, ok := e.(*legacy.PathExpression)
	if !ok {
		bug(owner, "expected a field list name, got %s", e)
	}
	fl, ok := s.FieldLists.Lookup(pe.Name)
	if !ok {
		bug(owner, "unknown field list %q", pe.Name)
	}
	fields, _ := s.fieldListFields(fl, nil)
	return s.fieldListExpr(fields)
}
