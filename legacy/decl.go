package legacy

// Declaration is a top-level construct of a P4-14 program.
type Declaration interface {
	DeclName() string
	DeclSpan() Span
	declaration()
}

// DeclBase provides the Name and Span fields common to all declarations.
type DeclBase struct {
	Name string
	Span Span
}

func (d *DeclBase) DeclName() string { return d.Name }
func (d *DeclBase) DeclSpan() Span   { return d.Span }
func (*DeclBase) declaration()       {}

// Field is a field of a header type.
type Field struct {
	Name string
	Type Type
}

// HeaderType is a header_type declaration. The same type may back
// header instances, header stacks and metadata instances.
type HeaderType struct {
	DeclBase
	Fields []Field
	// MaxLength bounds the byte length of headers with a varbit field.
	MaxLength int
}

// Field returns the field with the given name.
func (h *HeaderType) Field(name string) (Field, bool) {
	for _, f := range h.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// HasVarbit reports whether any field has a variable width.
func (h *HeaderType) HasVarbit() bool {
	for _, f := range h.Fields {
		if _, ok := f.Type.(*TypeVarbits); ok {
			return true
		}
	}
	return false
}

// Header is a header instance.
type Header struct {
	DeclBase
	Type string
}

// HeaderStack is an array of header instances.
type HeaderStack struct {
	DeclBase
	Type string
	Size int
}

// FieldInit is a metadata field initializer.
type FieldInit struct {
	Field string
	Value Expression
}

// Metadata is a metadata instance.
type Metadata struct {
	DeclBase
	Type        string
	Initializer []FieldInit
}

// ParserState is a P4-14 parser function. Its body is a sequence of
// extract and set_metadata calls followed by a return.
type ParserState struct {
	DeclBase
	Stmts []*Primitive
	// Select holds the select expressions; when empty the state
	// returns directly to Return.
	Select []Expression
	Cases  []*SelectCase
	Return string
}

// Targets returns the names the state may return to, in source order.
func (p *ParserState) Targets() []string {
	if len(p.Select) == 0 {
		if p.Return == "" {
			return nil
		}
		return []string{p.Return}
	}
	out := make([]string, 0, len(p.Cases))
	for _, c := range p.Cases {
		out = append(out, c.Target)
	}
	return out
}

// SelectCase is one case of a parser select.
type SelectCase struct {
	Values  []CaseValue
	Default bool
	Target  string
}

// CaseValue is a select label: a constant with an optional mask, or a
// PathExpression naming a parser value set.
type CaseValue struct {
	Value Expression
	Mask  Expression
}

// Control is a P4-14 control function.
type Control struct {
	DeclBase
	Body []Statement
}

// MatchKind is the match type of a table read.
type MatchKind string

const (
	MatchExact   MatchKind = "exact"
	MatchTernary MatchKind = "ternary"
	MatchLPM     MatchKind = "lpm"
	MatchRange   MatchKind = "range"
	MatchValid   MatchKind = "valid"
)

// TableKey is an entry of a table's reads clause.
type TableKey struct {
	Expr  Expression
	Match MatchKind
	Mask  Expression
}

// Table is a match-action table.
type Table struct {
	DeclBase
	Reads []*TableKey
	// Actions lists the table's actions; empty when ActionProfile is set.
	Actions        []string
	ActionProfile  string
	DefaultAction  string
	DefaultArgs    []Expression
	Size           int
	MinSize        int
	MaxSize        int
	SupportTimeout bool
}

// Param is an action or extern method parameter. Type may be nil when
// the upstream phase left the width to be inferred from use.
type Param struct {
	Name string
	Type Type
}

// Action is an action function.
type Action struct {
	DeclBase
	Params []*Param
	Body   []*Primitive
}

// Param returns the parameter with the given name.
func (a *Action) Param(name string) (*Param, bool) {
	for _, p := range a.Params {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// Primitive is a call to a primitive action, a compound action or, when
// Receiver is set, a method of an extern instance.
type Primitive struct {
	Name     string
	Receiver string
	Operands []Expression
	Span     Span
}

// CounterKind selects what a counter counts.
type CounterKind string

const (
	CounterPackets         CounterKind = "packets"
	CounterBytes           CounterKind = "bytes"
	CounterPacketsAndBytes CounterKind = "packets_and_bytes"
)

// Counter is a counter array, or a direct counter when Direct names a table.
type Counter struct {
	DeclBase
	Kind       CounterKind
	Direct     string
	Instances  int
	MinWidth   int
	Saturating bool
}

// MeterKind selects what a meter measures.
type MeterKind string

const (
	MeterPackets MeterKind = "packets"
	MeterBytes   MeterKind = "bytes"
)

// Meter is a meter array, or a direct meter when Direct names a table.
// Direct meters write their color to Result.
type Meter struct {
	DeclBase
	Kind      MeterKind
	Direct    string
	Instances int
	Result    Expression
	PreColor  Expression
}

// Register is a register array. Its element is either Width bits wide
// or laid out as the header type named by Layout.
type Register struct {
	DeclBase
	Width     int
	Layout    string
	Instances int
	Direct    string
	Signed    bool
}

// ActionProfile is an action_profile declaration.
type ActionProfile struct {
	DeclBase
	Actions  []string
	Size     int
	Selector string
}

// ActionSelector is an action_selector declaration.
type ActionSelector struct {
	DeclBase
	// Key names the field list calculation used for selection.
	Key  string
	Mode string
	Type string
}

// FieldList is a field_list declaration. Entries are field references,
// header references, or PathExpressions naming other field lists.
type FieldList struct {
	DeclBase
	Fields  []Expression
	Payload bool
}

// FieldListCalculation is a field_list_calculation declaration.
type FieldListCalculation struct {
	DeclBase
	Inputs      []string
	Algorithms  []string
	OutputWidth int
}

// CalculatedFieldSpec is one verify or update clause.
type CalculatedFieldSpec struct {
	Update      bool
	Calculation string
	Cond        Expression
}

// CalculatedField is a calculated_field declaration. Its name is the
// textual form of Field.
type CalculatedField struct {
	DeclBase
	Field Expression
	Specs []*CalculatedFieldSpec
}

// ExternMethod is a method of an extern type.
type ExternMethod struct {
	Name   string
	Params []*Param
}

// ExternType is a blackbox_type declaration.
type ExternType struct {
	DeclBase
	Methods []*ExternMethod
}

// Method returns the method with the given name.
func (e *ExternType) Method(name string) (*ExternMethod, bool) {
	for _, m := range e.Methods {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}

// Property is an attribute assignment of an extern instance.
type Property struct {
	Name  string
	Value Expression
}

// ExternInstance is a blackbox instance.
type ExternInstance struct {
	DeclBase
	Type       string
	Properties []Property
}

// ValueSet is a parser_value_set declaration.
type ValueSet struct {
	DeclBase
	Width int
	Size  int
}
