package loader

import (
	"errors"
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/kmateuszssak/p4c/internal/parser"
	"github.com/kmateuszssak/p4c/internal/types"
	"github.com/kmateuszssak/p4c/internal/v1model"
	"github.com/kmateuszssak/p4c/legacy"
)

// builder turns a decoded document into legacy declarations. Errors are
// collected so one load reports every malformed expression.
type builder struct {
	file      string
	doc       *document
	instances map[string]bool
	prog      *legacy.Program
	errs      []error
	types.Logger
}

func newBuilder(file string, doc *document, logger *slog.Logger) *builder {
	b := &builder{
		file:      file,
		doc:       doc,
		instances: map[string]bool{v1model.V1Model.StandardMetadata: true},
		prog:      &legacy.Program{Name: doc.Name},
		Logger:    types.Logger{L: logger},
	}
	for _, h := range doc.Headers {
		b.instances[h.Value.Name] = true
	}
	for _, h := range doc.HeaderStacks {
		b.instances[h.Value.Name] = true
	}
	for _, m := range doc.Metadata {
		b.instances[m.Value.Name] = true
	}
	return b
}

func (b *builder) isInstance(name string) bool {
	return b.instances[name]
}

func (b *builder) span(line, column int) legacy.Span {
	return legacy.Span{File: b.file, Line: line, Column: column}
}

func (b *builder) fail(span legacy.Span, err error) {
	b.errs = append(b.errs, fmt.Errorf("%s: %w", span, err))
}

func (b *builder) failf(span legacy.Span, format string, args ...any) {
	b.fail(span, fmt.Errorf(format, args...))
}

func (b *builder) err() error {
	if len(b.errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(b.errs...))
}

func (b *builder) add(d legacy.Declaration) {
	b.prog.Decls = append(b.prog.Decls, d)
	if b.TraceEnabled() {
		b.Trace("declaration",
			slog.String("kind", fmt.Sprintf("%T", d)),
			slog.String("name", d.DeclName()))
	}
}

// expr parses an optional expression; empty text yields nil.
func (b *builder) expr(text exprText, span legacy.Span) legacy.Expression {
	if text == "" {
		return nil
	}
	e, err := parser.ParseExpr(string(text), b.isInstance)
	if err != nil {
		b.fail(span, err)
		return nil
	}
	return e
}

func (b *builder) exprs(texts []exprText, span legacy.Span) []legacy.Expression {
	out := make([]legacy.Expression, 0, len(texts))
	for _, t := range texts {
		if e := b.expr(t, span); e != nil {
			out = append(out, e)
		}
	}
	return out
}

func (b *builder) primitives(body []located[string]) []*legacy.Primitive {
	out := make([]*legacy.Primitive, 0, len(body))
	for _, l := range body {
		span := b.span(l.Line, l.Column)
		c, err := parser.ParseCall(l.Value, b.isInstance)
		if err != nil {
			b.fail(span, err)
			continue
		}
		out = append(out, &legacy.Primitive{
			Name:     c.Name,
			Receiver: c.Receiver,
			Operands: c.Args,
			Span:     span,
		})
	}
	return out
}

func (b *builder) params(docs []paramDoc) []*legacy.Param {
	out := make([]*legacy.Param, len(docs))
	for i, d := range docs {
		p := &legacy.Param{Name: d.Name}
		if d.Width > 0 {
			p.Type = &legacy.TypeBits{Width: d.Width, Signed: d.Signed}
		}
		out[i] = p
	}
	return out
}

// section builds the declarations of one top-level key.
func (b *builder) section(key string) {
	doc := b.doc
	switch key {
	case "name":
	case "header_types":
		for _, l := range doc.HeaderTypes {
			b.headerType(l)
		}
	case "headers":
		for _, l := range doc.Headers {
			b.add(&legacy.Header{DeclBase: b.base(l.Value.Name, l.Line, l.Column), Type: l.Value.Type})
		}
	case "header_stacks":
		for _, l := range doc.HeaderStacks {
			b.add(&legacy.HeaderStack{
				DeclBase: b.base(l.Value.Name, l.Line, l.Column),
				Type:     l.Value.Type,
				Size:     l.Value.Size,
			})
		}
	case "metadata":
		for _, l := range doc.Metadata {
			b.metadata(l)
		}
	case "parser_states":
		for _, l := range doc.ParserStates {
			b.parserState(l)
		}
	case "value_sets":
		for _, l := range doc.ValueSets {
			b.add(&legacy.ValueSet{
				DeclBase: b.base(l.Value.Name, l.Line, l.Column),
				Width:    l.Value.Width,
				Size:     l.Value.Size,
			})
		}
	case "actions":
		for _, l := range doc.Actions {
			b.add(&legacy.Action{
				DeclBase: b.base(l.Value.Name, l.Line, l.Column),
				Params:   b.params(l.Value.Params),
				Body:     b.primitives(l.Value.Body),
			})
		}
	case "tables":
		for _, l := range doc.Tables {
			b.table(l)
		}
	case "controls":
		for _, l := range doc.Controls {
			b.add(&legacy.Control{
				DeclBase: b.base(l.Value.Name, l.Line, l.Column),
				Body:     b.statements(l.Value.Body),
			})
		}
	case "counters":
		for _, l := range doc.Counters {
			c := l.Value
			b.add(&legacy.Counter{
				DeclBase:   b.base(c.Name, l.Line, l.Column),
				Kind:       legacy.CounterKind(c.Type),
				Direct:     c.Direct,
				Instances:  c.Instances,
				MinWidth:   c.MinWidth,
				Saturating: c.Saturating,
			})
		}
	case "meters":
		for _, l := range doc.Meters {
			m := l.Value
			span := b.span(l.Line, l.Column)
			b.add(&legacy.Meter{
				DeclBase:  legacy.DeclBase{Name: m.Name, Span: span},
				Kind:      legacy.MeterKind(m.Type),
				Direct:    m.Direct,
				Instances: m.Instances,
				Result:    b.expr(m.Result, span),
				PreColor:  b.expr(m.PreColor, span),
			})
		}
	case "registers":
		for _, l := range doc.Registers {
			r := l.Value
			if (r.Width == 0) == (r.Layout == "") {
				b.failf(b.span(l.Line, l.Column), "register %s needs exactly one of width and layout", r.Name)
				continue
			}
			b.add(&legacy.Register{
				DeclBase:  b.base(r.Name, l.Line, l.Column),
				Width:     r.Width,
				Layout:    r.Layout,
				Instances: r.Instances,
				Direct:    r.Direct,
				Signed:    r.Signed,
			})
		}
	case "action_profiles":
		for _, l := range doc.ActionProfiles {
			p := l.Value
			b.add(&legacy.ActionProfile{
				DeclBase: b.base(p.Name, l.Line, l.Column),
				Actions:  p.Actions,
				Size:     p.Size,
				Selector: p.Selector,
			})
		}
	case "action_selectors":
		for _, l := range doc.ActionSelectors {
			s := l.Value
			b.add(&legacy.ActionSelector{
				DeclBase: b.base(s.Name, l.Line, l.Column),
				Key:      s.Key,
				Mode:     s.Mode,
				Type:     s.Type,
			})
		}
	case "field_lists":
		for _, l := range doc.FieldLists {
			b.fieldList(l)
		}
	case "field_list_calculations":
		for _, l := range doc.FieldListCalculations {
			c := l.Value
			b.add(&legacy.FieldListCalculation{
				DeclBase:    b.base(c.Name, l.Line, l.Column),
				Inputs:      c.Inputs,
				Algorithms:  c.Algorithm,
				OutputWidth: c.OutputWidth,
			})
		}
	case "calculated_fields":
		for _, l := range doc.CalculatedFields {
			b.calculatedField(l)
		}
	case "extern_types":
		for _, l := range doc.ExternTypes {
			t := &legacy.ExternType{DeclBase: b.base(l.Value.Name, l.Line, l.Column)}
			for _, m := range l.Value.Methods {
				t.Methods = append(t.Methods, &legacy.ExternMethod{Name: m.Name, Params: b.params(m.Params)})
			}
			b.add(t)
		}
	case "extern_instances":
		for _, l := range doc.ExternInstances {
			span := b.span(l.Line, l.Column)
			inst := &legacy.ExternInstance{
				DeclBase: legacy.DeclBase{Name: l.Value.Name, Span: span},
				Type:     l.Value.Type,
			}
			for _, a := range l.Value.Attributes {
				inst.Properties = append(inst.Properties, legacy.Property{Name: a.Name, Value: b.expr(a.Value, span)})
			}
			b.add(inst)
		}
	default:
		b.failf(b.span(0, 0), "unknown section %q", key)
	}
}

func (b *builder) base(name string, line, column int) legacy.DeclBase {
	return legacy.DeclBase{Name: name, Span: b.span(line, column)}
}

func (b *builder) headerType(l located[headerTypeDoc]) {
	span := b.span(l.Line, l.Column)
	ht := &legacy.HeaderType{
		DeclBase:  legacy.DeclBase{Name: l.Value.Name, Span: span},
		MaxLength: l.Value.MaxLength,
	}
	for _, f := range l.Value.Fields {
		var t legacy.Type
		switch {
		case f.Width > 0 && f.Varbit == 0:
			t = &legacy.TypeBits{Width: f.Width, Signed: f.Signed}
		case f.Varbit > 0 && f.Width == 0:
			t = &legacy.TypeVarbits{MaxWidth: f.Varbit}
		default:
			b.failf(span, "field %s.%s needs exactly one of width and varbit", ht.Name, f.Name)
			continue
		}
		ht.Fields = append(ht.Fields, legacy.Field{Name: f.Name, Type: t})
	}
	b.add(ht)
}

func (b *builder) metadata(l located[metadataDoc]) {
	span := b.span(l.Line, l.Column)
	m := &legacy.Metadata{
		DeclBase: legacy.DeclBase{Name: l.Value.Name, Span: span},
		Type:     l.Value.Type,
	}
	for _, init := range l.Value.Init {
		if v := b.expr(init.Value, span); v != nil {
			m.Initializer = append(m.Initializer, legacy.FieldInit{Field: init.Field, Value: v})
		}
	}
	b.add(m)
}

func (b *builder) parserState(l located[stateDoc]) {
	d := l.Value
	span := b.span(l.Line, l.Column)
	st := &legacy.ParserState{
		DeclBase: legacy.DeclBase{Name: d.Name, Span: span},
		Stmts:    b.primitives(d.Body),
		Select:   b.exprs(d.Select, span),
		Return:   d.Return,
	}
	switch {
	case len(d.Select) > 0 && d.Return != "":
		b.failf(span, "parser state %s has both select and return", d.Name)
	case len(d.Select) == 0 && len(d.Cases) > 0:
		b.failf(span, "parser state %s has cases without select", d.Name)
	}
	for _, c := range d.Cases {
		sc := &legacy.SelectCase{Default: c.Default, Target: c.Next}
		for _, v := range c.Values {
			cv, err := parser.ParseCaseValue(string(v), b.isInstance)
			if err != nil {
				b.fail(span, err)
				continue
			}
			sc.Values = append(sc.Values, cv)
		}
		if !sc.Default && len(sc.Values) == 0 {
			b.failf(span, "parser state %s: case to %s has no values", d.Name, c.Next)
		}
		st.Cases = append(st.Cases, sc)
	}
	b.add(st)
}

func (b *builder) table(l located[tableDoc]) {
	d := l.Value
	span := b.span(l.Line, l.Column)
	t := &legacy.Table{
		DeclBase:       legacy.DeclBase{Name: d.Name, Span: span},
		Actions:        d.Actions,
		ActionProfile:  d.ActionProfile,
		Size:           d.Size,
		MinSize:        d.MinSize,
		MaxSize:        d.MaxSize,
		SupportTimeout: d.SupportTimeout,
	}
	if len(d.Actions) > 0 && d.ActionProfile != "" {
		b.failf(span, "table %s has both actions and an action profile", d.Name)
	}
	for _, r := range d.Reads {
		e := b.expr(r.Field, span)
		if e == nil {
			continue
		}
		t.Reads = append(t.Reads, &legacy.TableKey{
			Expr:  e,
			Match: legacy.MatchKind(r.Match),
			Mask:  b.expr(r.Mask, span),
		})
	}
	if d.DefaultAction != "" {
		c, err := parser.ParseCall(d.DefaultAction, b.isInstance)
		switch {
		case err != nil:
			b.fail(span, err)
		case c.Receiver != "":
			b.failf(span, "table %s: default action %s.%s is a method call", d.Name, c.Receiver, c.Name)
		default:
			t.DefaultAction = c.Name
			t.DefaultArgs = c.Args
		}
	}
	b.add(t)
}

func (b *builder) statements(docs []stmtDoc) []legacy.Statement {
	out := make([]legacy.Statement, 0, len(docs))
	for _, d := range docs {
		if s := b.statement(d); s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (b *builder) statement(d stmtDoc) legacy.Statement {
	span := b.span(d.line, d.column)
	switch {
	case d.Apply != "":
		a := &legacy.Apply{
			Table:   d.Apply,
			HitMiss: d.hitMiss,
			Hit:     b.statements(d.Hit),
			Miss:    b.statements(d.Miss),
			Span:    span,
		}
		if d.hitMiss && len(d.Cases) > 0 {
			b.failf(span, "apply %s mixes hit/miss with action cases", d.Apply)
		}
		for _, c := range d.Cases {
			a.Cases = append(a.Cases, &legacy.ApplyCase{
				Actions: c.Actions,
				Default: c.Default,
				Body:    b.statements(c.Body),
			})
		}
		return a
	case d.If != "":
		return &legacy.If{
			Cond: b.expr(d.If, span),
			Then: b.statements(d.Then),
			Else: b.statements(d.Else),
			Span: span,
		}
	case d.Call != "":
		return &legacy.CallControl{Control: d.Call, Span: span}
	}
	b.failf(span, "statement is neither apply, if nor call")
	return nil
}

func (b *builder) fieldList(l located[fieldListDoc]) {
	span := b.span(l.Line, l.Column)
	fl := &legacy.FieldList{DeclBase: legacy.DeclBase{Name: l.Value.Name, Span: span}}
	for _, f := range l.Value.Fields {
		if f == "payload" {
			fl.Payload = true
			continue
		}
		if e := b.expr(f, span); e != nil {
			fl.Fields = append(fl.Fields, e)
		}
	}
	b.add(fl)
}

func (b *builder) calculatedField(l located[calcFieldDoc]) {
	span := b.span(l.Line, l.Column)
	field := b.expr(l.Value.Field, span)
	if field == nil {
		return
	}
	cf := &legacy.CalculatedField{
		DeclBase: legacy.DeclBase{Name: field.String(), Span: span},
		Field:    field,
	}
	for _, s := range l.Value.Specs {
		cf.Specs = append(cf.Specs, &legacy.CalculatedFieldSpec{
			Update:      s.Kind == "update",
			Calculation: s.Calculation,
			Cond:        b.expr(s.If, span),
		})
	}
	b.add(cf)
}

// sectionOrder returns the top-level keys of the mapping in source order.
func sectionOrder(m *yaml.Node) []string {
	keys := make([]string, 0, len(m.Content)/2)
	for i := 0; i+1 < len(m.Content); i += 2 {
		keys = append(keys, m.Content[i].Value)
	}
	return keys
}
