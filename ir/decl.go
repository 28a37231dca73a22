package ir

// DeclarationInstance instantiates an extern: Type(Args) Name.
type DeclarationInstance struct {
	Name        string
	Annotations Annotations
	Type        Type
	Args        []Expression
}

// DeclarationVariable declares a local variable.
type DeclarationVariable struct {
	Name        string
	Annotations Annotations
	Type        Type
	Init        Expression
}

// ValueSet is a parser value set: value_set<Elem>(Size) Name.
type ValueSet struct {
	Name        string
	Annotations Annotations
	Elem        Type
	Size        int
}

// ParserState is a parser state. Select is nil for the built-in
// accept and reject states, a PathExpression for an unconditional
// transition and a SelectExpression otherwise.
type ParserState struct {
	Name        string
	Annotations Annotations
	Components  []Statement
	Select      Expression
}

// Parser is a parser block.
type Parser struct {
	Name        string
	Annotations Annotations
	Params      []*Parameter
	Locals      []Declaration
	States      []*ParserState
}

// State returns the named state.
func (p *Parser) State(name string) *ParserState {
	for _, s := range p.States {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Control is a control block.
type Control struct {
	Name        string
	Annotations Annotations
	Params      []*Parameter
	Locals      []Declaration
	Body        *BlockStatement
}

// Local returns the named local declaration.
func (c *Control) Local(name string) Declaration {
	for _, d := range c.Locals {
		if d.DeclName() == name {
			return d
		}
	}
	return nil
}

// Action is an action declaration.
type Action struct {
	Name        string
	Annotations Annotations
	Params      []*Parameter
	Body        *BlockStatement
}

// KeyElement is an entry of a table key: Expr : MatchType.
type KeyElement struct {
	Annotations Annotations
	Expr        Expression
	MatchType   string
}

// Key is the value of a table "key" property.
type Key struct {
	Elements []*KeyElement
}

// ActionListElement is an entry of a table "actions" property.
type ActionListElement struct {
	Annotations Annotations
	Expr        Expression
}

// ActionList is the value of a table "actions" property.
type ActionList struct {
	Elements []*ActionListElement
}

// ExpressionValue is an expression-valued table property.
type ExpressionValue struct {
	Expr Expression
}

// PropertyValue is the value of a table property.
type PropertyValue interface {
	Node
	propertyValue()
}

// Property is a table property.
type Property struct {
	Name        string
	Annotations Annotations
	Value       PropertyValue
	IsConstant  bool
}

// Table is a table declaration.
type Table struct {
	Name        string
	Annotations Annotations
	Properties  []*Property
}

// Property returns the named property.
func (t *Table) Property(name string) *Property {
	for _, p := range t.Properties {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Actions returns the names referenced by the actions property.
func (t *Table) Actions() []string {
	p := t.Property("actions")
	if p == nil {
		return nil
	}
	list, ok := p.Value.(*ActionList)
	if !ok {
		return nil
	}
	var out []string
	for _, e := range list.Elements {
		switch ex := e.Expr.(type) {
		case *PathExpression:
			out = append(out, ex.Name)
		case *MethodCall:
			if pe, ok := ex.Method.(*PathExpression); ok {
				out = append(out, pe.Name)
			}
		}
	}
	return out
}

func (d *DeclarationInstance) DeclName() string { return d.Name }
func (d *DeclarationVariable) DeclName() string { return d.Name }
func (d *ValueSet) DeclName() string            { return d.Name }
func (d *ParserState) DeclName() string         { return d.Name }
func (d *Parser) DeclName() string              { return d.Name }
func (d *Control) DeclName() string             { return d.Name }
func (d *Action) DeclName() string              { return d.Name }
func (d *Table) DeclName() string               { return d.Name }

func (*DeclarationInstance) node() {}
func (*DeclarationVariable) node() {}
func (*ValueSet) node()            {}
func (*ParserState) node()         {}
func (*Parser) node()              {}
func (*Control) node()             {}
func (*Action) node()              {}
func (*KeyElement) node()          {}
func (*Key) node()                 {}
func (*ActionListElement) node()   {}
func (*ActionList) node()          {}
func (*ExpressionValue) node()     {}
func (*Property) node()            {}
func (*Table) node()               {}

func (*Key) propertyValue()             {}
func (*ActionList) propertyValue()      {}
func (*ExpressionValue) propertyValue() {}
