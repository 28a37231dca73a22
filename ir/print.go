package ir

import (
	"fmt"
	"io"
	"strings"
)

// Print writes the program as P4-16 source text.
func Print(w io.Writer, p *Program) error {
	pr := &printer{}
	for i, d := range p.Declarations {
		if i > 0 {
			if _, inc := d.(*Include); !inc {
				pr.nl()
			}
		}
		pr.decl(d)
	}
	_, err := io.WriteString(w, pr.b.String())
	return err
}

// String renders a program as P4-16 source text.
func (p *Program) String() string {
	var sb strings.Builder
	_ = Print(&sb, p)
	return sb.String()
}

// ExprString renders a single expression.
func ExprString(e Expression) string {
	pr := &printer{}
	pr.expr(e)
	return pr.b.String()
}

// TypeString renders a single type.
func TypeString(t Type) string {
	pr := &printer{}
	pr.typ(t)
	return pr.b.String()
}

// StmtString renders a single statement without indentation.
func StmtString(s Statement) string {
	pr := &printer{}
	pr.stmt(s)
	return strings.TrimSpace(pr.b.String())
}

type printer struct {
	b      strings.Builder
	indent int
}

func (p *printer) printf(format string, args ...any) {
	fmt.Fprintf(&p.b, format, args...)
}

func (p *printer) str(s string) { p.b.WriteString(s) }

func (p *printer) nl() { p.b.WriteByte('\n') }

func (p *printer) line(s string) {
	p.pad()
	p.str(s)
	p.nl()
}

func (p *printer) pad() {
	p.str(strings.Repeat("    ", p.indent))
}

func (p *printer) annotations(as Annotations, inline bool) {
	for _, a := range as {
		if !inline {
			p.pad()
		}
		p.annotation(a)
		if inline {
			p.str(" ")
		} else {
			p.nl()
		}
	}
}

func (p *printer) annotation(a *Annotation) {
	p.str("@" + a.Name)
	if len(a.Args) > 0 {
		p.str("(")
		p.exprList(a.Args)
		p.str(")")
	}
}

func (p *printer) decl(d Declaration) {
	switch d := d.(type) {
	case *Include:
		p.line("#include <" + d.File + ">")
	case *TypeHeader:
		p.annotations(d.Annotations, false)
		p.structLike("header", d.Name, d.Fields)
	case *TypeStruct:
		p.annotations(d.Annotations, false)
		p.structLike("struct", d.Name, d.Fields)
	case *TypeExtern:
		p.annotations(d.Annotations, false)
		p.pad()
		p.str("extern " + d.Name + typeParams(d.TypeParams) + " {")
		p.nl()
		p.indent++
		for _, m := range d.Methods {
			p.pad()
			switch {
			case m.Return != nil:
				p.typ(m.Return)
				p.str(" ")
			case m.Name != d.Name:
				p.str("void ")
			}
			p.str(m.Name + typeParams(m.TypeParams) + "(")
			p.params(m.Params)
			p.str(");")
			p.nl()
		}
		p.indent--
		p.line("}")
	case *DeclarationInstance:
		p.annotations(d.Annotations, false)
		p.pad()
		p.typ(d.Type)
		p.str("(")
		p.exprList(d.Args)
		p.str(") " + d.Name + ";")
		p.nl()
	case *DeclarationVariable:
		p.annotations(d.Annotations, false)
		p.pad()
		p.typ(d.Type)
		p.str(" " + d.Name)
		if d.Init != nil {
			p.str(" = ")
			p.expr(d.Init)
		}
		p.str(";")
		p.nl()
	case *ValueSet:
		p.annotations(d.Annotations, false)
		p.pad()
		p.str("value_set<")
		p.typ(d.Elem)
		p.printf(">(%d) %s;", d.Size, d.Name)
		p.nl()
	case *Parser:
		p.annotations(d.Annotations, false)
		p.pad()
		p.str("parser " + d.Name + "(")
		p.params(d.Params)
		p.str(") {")
		p.nl()
		p.indent++
		for _, l := range d.Locals {
			p.decl(l)
		}
		for _, s := range d.States {
			p.decl(s)
		}
		p.indent--
		p.line("}")
	case *ParserState:
		p.annotations(d.Annotations, false)
		p.line("state " + d.Name + " {")
		p.indent++
		for _, s := range d.Components {
			p.stmt(s)
		}
		switch sel := d.Select.(type) {
		case nil:
		case *PathExpression:
			p.line("transition " + sel.Name + ";")
		case *SelectExpression:
			p.pad()
			p.str("transition select(")
			p.exprList(sel.Select.Components)
			p.str(") {")
			p.nl()
			p.indent++
			for _, c := range sel.Cases {
				p.pad()
				if tuple, ok := c.Keyset.(*ListExpression); ok {
					p.str("(")
					p.exprList(tuple.Components)
					p.str(")")
				} else {
					p.expr(c.Keyset)
				}
				p.str(": " + c.State.Name + ";")
				p.nl()
			}
			p.indent--
			p.line("}")
		default:
			p.pad()
			p.str("transition ")
			p.expr(sel)
			p.str(";")
			p.nl()
		}
		p.indent--
		p.line("}")
	case *Control:
		p.annotations(d.Annotations, false)
		p.pad()
		p.str("control " + d.Name + "(")
		p.params(d.Params)
		p.str(") {")
		p.nl()
		p.indent++
		for _, l := range d.Locals {
			p.decl(l)
		}
		p.pad()
		p.str("apply ")
		p.block(d.Body)
		p.nl()
		p.indent--
		p.line("}")
	case *Action:
		p.annotations(d.Annotations, false)
		p.pad()
		p.str("action " + d.Name + "(")
		p.params(d.Params)
		p.str(") ")
		p.block(d.Body)
		p.nl()
	case *Table:
		p.annotations(d.Annotations, false)
		p.line("table " + d.Name + " {")
		p.indent++
		for _, prop := range d.Properties {
			p.property(prop)
		}
		p.indent--
		p.line("}")
	default:
		p.line(fmt.Sprintf("/* %T */", d))
	}
}

func typeParams(ps []string) string {
	if len(ps) == 0 {
		return ""
	}
	return "<" + strings.Join(ps, ", ") + ">"
}

func (p *printer) structLike(kw, name string, fields []*StructField) {
	p.line(kw + " " + name + " {")
	p.indent++
	for _, f := range fields {
		p.pad()
		p.annotations(f.Annotations, true)
		p.typ(f.Type)
		p.str(" " + f.Name + ";")
		p.nl()
	}
	p.indent--
	p.line("}")
}

func (p *printer) property(prop *Property) {
	p.pad()
	p.annotations(prop.Annotations, true)
	if prop.IsConstant {
		p.str("const ")
	}
	switch v := prop.Value.(type) {
	case *Key:
		p.str(prop.Name + " = {")
		p.nl()
		p.indent++
		for _, k := range v.Elements {
			p.pad()
			p.expr(k.Expr)
			p.str(": " + k.MatchType)
			for _, a := range k.Annotations {
				p.str(" ")
				p.annotation(a)
			}
			p.str(";")
			p.nl()
		}
		p.indent--
		p.line("}")
	case *ActionList:
		p.str(prop.Name + " = {")
		p.nl()
		p.indent++
		for _, a := range v.Elements {
			p.pad()
			p.annotations(a.Annotations, true)
			p.expr(a.Expr)
			p.str(";")
			p.nl()
		}
		p.indent--
		p.line("}")
	case *ExpressionValue:
		p.str(prop.Name + " = ")
		p.expr(v.Expr)
		p.str(";")
		p.nl()
	}
}

func (p *printer) params(ps []*Parameter) {
	for i, prm := range ps {
		if i > 0 {
			p.str(", ")
		}
		p.annotations(prm.Annotations, true)
		if d := prm.Direction.String(); d != "" {
			p.str(d + " ")
		}
		p.typ(prm.Type)
		p.str(" " + prm.Name)
	}
}

func (p *printer) block(b *BlockStatement) {
	p.str("{")
	p.nl()
	p.indent++
	for _, s := range b.Components {
		p.stmt(s)
	}
	p.indent--
	p.pad()
	p.str("}")
}

func (p *printer) stmt(s Statement) {
	switch s := s.(type) {
	case *AssignmentStatement:
		p.pad()
		p.expr(s.Left)
		p.str(" = ")
		p.expr(s.Right)
		p.str(";")
		p.nl()
	case *MethodCallStatement:
		p.pad()
		p.expr(s.Call)
		p.str(";")
		p.nl()
	case *IfStatement:
		p.pad()
		p.ifStmt(s)
		p.nl()
	case *BlockStatement:
		p.pad()
		p.block(s)
		p.nl()
	case *SwitchStatement:
		p.pad()
		p.str("switch (")
		p.expr(s.Expr)
		p.str(") {")
		p.nl()
		p.indent++
		for _, c := range s.Cases {
			p.pad()
			p.expr(c.Label)
			p.str(":")
			if c.Body != nil {
				p.str(" ")
				p.block(c.Body)
			}
			p.nl()
		}
		p.indent--
		p.line("}")
	case *EmptyStatement:
		p.line(";")
	case *ExitStatement:
		p.line("exit;")
	}
}

func (p *printer) ifStmt(s *IfStatement) {
	p.str("if (")
	p.expr(s.Cond)
	p.str(") ")
	p.inlineStmt(s.Then)
	if s.Else == nil {
		return
	}
	p.str(" else ")
	if elif, ok := s.Else.(*IfStatement); ok {
		p.ifStmt(elif)
		return
	}
	p.inlineStmt(s.Else)
}

func (p *printer) inlineStmt(s Statement) {
	if b, ok := s.(*BlockStatement); ok {
		p.block(b)
		return
	}
	p.block(NewBlock(s))
}

func (p *printer) exprList(es []Expression) {
	for i, e := range es {
		if i > 0 {
			p.str(", ")
		}
		p.expr(e)
	}
}

func (p *printer) expr(e Expression) {
	switch e := e.(type) {
	case *PathExpression:
		p.str(e.Name)
	case *Member:
		p.expr(e.Expr)
		p.str("." + e.Member)
	case *ArrayIndex:
		p.expr(e.Left)
		p.str("[")
		p.expr(e.Right)
		p.str("]")
	case *Constant:
		if e.Type != nil {
			if e.Type.Signed {
				p.printf("%ds", e.Type.Width)
			} else {
				p.printf("%dw", e.Type.Width)
			}
		}
		if e.Base == 16 {
			p.str("0x" + e.Value.Text(16))
		} else {
			p.str(e.Value.String())
		}
	case *BoolLiteral:
		p.printf("%t", e.Value)
	case *StringLiteral:
		p.printf("%q", e.Value)
	case *MethodCall:
		p.expr(e.Method)
		if len(e.TypeArgs) > 0 {
			p.str("<")
			p.typeList(e.TypeArgs)
			p.str(">")
		}
		p.str("(")
		p.exprList(e.Args)
		p.str(")")
	case *ConstructorCall:
		p.typ(e.Type)
		p.str("(")
		p.exprList(e.Args)
		p.str(")")
	case *ListExpression:
		p.str("{ ")
		p.exprList(e.Components)
		p.str(" }")
	case *Binary:
		p.str("(")
		p.expr(e.Left)
		p.str(" " + e.Op + " ")
		p.expr(e.Right)
		p.str(")")
	case *Unary:
		p.str(e.Op)
		p.expr(e.Expr)
	case *Cast:
		p.str("(")
		p.typ(e.Type)
		p.str(")")
		p.expr(e.Expr)
	case *Slice:
		p.expr(e.Expr)
		p.printf("[%d:%d]", e.Hi, e.Lo)
	case *Mask:
		p.expr(e.Left)
		p.str(" &&& ")
		p.expr(e.Right)
	case *DefaultExpression:
		p.str("default")
	case *SelectExpression:
		p.str("select(")
		p.exprList(e.Select.Components)
		p.str(")")
	default:
		p.printf("/* %T */", e)
	}
}

func (p *printer) typeList(ts []Type) {
	for i, t := range ts {
		if i > 0 {
			p.str(", ")
		}
		p.typ(t)
	}
}

func (p *printer) typ(t Type) {
	switch t := t.(type) {
	case *TypeBits:
		if t.Signed {
			p.printf("int<%d>", t.Width)
		} else {
			p.printf("bit<%d>", t.Width)
		}
	case *TypeVarbits:
		p.printf("varbit<%d>", t.Size)
	case *TypeBool:
		p.str("bool")
	case *TypeVoid:
		p.str("void")
	case *TypeName:
		p.str(t.Name)
	case *TypeSpecialized:
		p.str(t.Base.Name + "<")
		p.typeList(t.Args)
		p.str(">")
	case *TypeStack:
		p.typ(t.Elem)
		p.printf("[%d]", t.Size)
	case *TypeTuple:
		p.str("tuple<")
		p.typeList(t.Components)
		p.str(">")
	case *TypeHeader:
		p.str(t.Name)
	case *TypeStruct:
		p.str(t.Name)
	case *TypeExtern:
		p.str(t.Name)
	default:
		p.printf("/* %T */", t)
	}
}
