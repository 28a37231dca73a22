package legacy

import (
	"fmt"
	"math/big"
	"strings"
)

// Expression is a P4-14 expression.
type Expression interface {
	String() string
	expression()
}

// ConcreteHeaderRef references a header, header stack or metadata
// instance by name.
type ConcreteHeaderRef struct {
	Name string
}

// HeaderStackItemRef references an element of a header stack. Index is a
// Constant or a PathExpression naming "next" or "last".
type HeaderStackItemRef struct {
	Base  Expression
	Index Expression
}

// Member is a field access.
type Member struct {
	Expr Expression
	Name string
}

// PathExpression names something that is not a header instance:
// an action parameter, a field list, a value set, "latest", "next".
type PathExpression struct {
	Name string
}

// Constant is an integer literal. Width is zero for untyped literals.
type Constant struct {
	Value *big.Int
	Width int
	Base  int
}

// NewConstant returns an untyped decimal constant.
func NewConstant(v int64) *Constant {
	return &Constant{Value: big.NewInt(v), Base: 10}
}

// Int returns the value as an int. The value must fit.
func (c *Constant) Int() int {
	return int(c.Value.Int64())
}

// BoolLiteral is true or false.
type BoolLiteral struct {
	Value bool
}

// StringLiteral is a quoted string.
type StringLiteral struct {
	Value string
}

// Binary is a binary operation. Op uses C spelling ("+", "&&", "==", ...).
type Binary struct {
	Op    string
	Left  Expression
	Right Expression
}

// Unary is a unary operation: "!", "~" or "-".
type Unary struct {
	Op   string
	Expr Expression
}

// Valid is the P4-14 valid(header) test.
type Valid struct {
	Expr Expression
}

// Current is current(offset, width): bits ahead of the parser cursor.
type Current struct {
	Offset int
	Width  int
}

func (e *ConcreteHeaderRef) String() string { return e.Name }
func (e *HeaderStackItemRef) String() string {
	return fmt.Sprintf("%s[%s]", e.Base, e.Index)
}
func (e *Member) String() string         { return e.Expr.String() + "." + e.Name }
func (e *PathExpression) String() string { return e.Name }
func (e *Constant) String() string {
	var s string
	if e.Base == 16 {
		s = "0x" + e.Value.Text(16)
	} else {
		s = e.Value.String()
	}
	if e.Width > 0 {
		return fmt.Sprintf("%dw%s", e.Width, s)
	}
	return s
}
func (e *BoolLiteral) String() string   { return fmt.Sprint(e.Value) }
func (e *StringLiteral) String() string { return fmt.Sprintf("%q", e.Value) }
func (e *Binary) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Left, e.Op, e.Right)
}
func (e *Unary) String() string   { return e.Op + e.Expr.String() }
func (e *Valid) String() string   { return "valid(" + e.Expr.String() + ")" }
func (e *Current) String() string { return fmt.Sprintf("current(%d, %d)", e.Offset, e.Width) }

func (*ConcreteHeaderRef) expression()  {}
func (*HeaderStackItemRef) expression() {}
func (*Member) expression()             {}
func (*PathExpression) expression()     {}
func (*Constant) expression()           {}
func (*BoolLiteral) expression()        {}
func (*StringLiteral) expression()      {}
func (*Binary) expression()             {}
func (*Unary) expression()              {}
func (*Valid) expression()              {}
func (*Current) expression()            {}

// Type is the type of a header field or action parameter.
type Type interface {
	String() string
	legacyType()
}

// TypeBits is a fixed-width bit string.
type TypeBits struct {
	Width  int
	Signed bool
}

// TypeVarbits is a variable-width field bounded by MaxWidth bits.
type TypeVarbits struct {
	MaxWidth int
}

// TypeBool is the boolean type.
type TypeBool struct{}

// TypeName references a header type by name.
type TypeName struct {
	Name string
}

func (t *TypeBits) String() string {
	if t.Signed {
		return fmt.Sprintf("int<%d>", t.Width)
	}
	return fmt.Sprintf("bit<%d>", t.Width)
}
func (t *TypeVarbits) String() string { return fmt.Sprintf("varbit<%d>", t.MaxWidth) }
func (*TypeBool) String() string      { return "bool" }
func (t *TypeName) String() string    { return t.Name }

func (*TypeBits) legacyType()    {}
func (*TypeVarbits) legacyType() {}
func (*TypeBool) legacyType()    {}
func (*TypeName) legacyType()    {}

// JoinExprs formats expressions separated by ", ".
func JoinExprs(exprs []Expression) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}
