package ir

import "math/big"

// Expression is a P4-16 expression.
type Expression interface {
	Node
	expr()
}

// PathExpression names a declaration, parameter or local.
type PathExpression struct {
	Name string
}

// Member is a field or method access: Expr.Member.
type Member struct {
	Expr   Expression
	Member string
}

// ArrayIndex is Left[Right].
type ArrayIndex struct {
	Left  Expression
	Right Expression
}

// Constant is an integer literal. A nil Type is an arbitrary-precision
// integer; otherwise the literal is printed with its width prefix.
type Constant struct {
	Value *big.Int
	Type  *TypeBits
	Base  int
}

// BoolLiteral is true or false.
type BoolLiteral struct {
	Value bool
}

// StringLiteral is a quoted string.
type StringLiteral struct {
	Value string
}

// MethodCall is Method<TypeArgs>(Args).
type MethodCall struct {
	Method   Expression
	TypeArgs []Type
	Args     []Expression
}

// ConstructorCall instantiates a parser, control or package: Type(Args).
type ConstructorCall struct {
	Type Type
	Args []Expression
}

// ListExpression is { a, b, c }.
type ListExpression struct {
	Components []Expression
}

// Binary is Left Op Right.
type Binary struct {
	Op    string
	Left  Expression
	Right Expression
}

// Unary is Op Expr.
type Unary struct {
	Op   string
	Expr Expression
}

// Cast is (Type)Expr.
type Cast struct {
	Type Type
	Expr Expression
}

// Slice is Expr[Hi:Lo].
type Slice struct {
	Expr Expression
	Hi   int
	Lo   int
}

// Mask is the keyset Left &&& Right.
type Mask struct {
	Left  Expression
	Right Expression
}

// DefaultExpression is the keyset "default".
type DefaultExpression struct{}

// SelectCase is one keyset of a select expression.
type SelectCase struct {
	Keyset Expression
	State  *PathExpression
}

// SelectExpression is select(Select) { Cases }.
type SelectExpression struct {
	Select *ListExpression
	Cases  []*SelectCase
}

// NewConstant returns an arbitrary-precision constant.
func NewConstant(v int64) *Constant {
	return &Constant{Value: big.NewInt(v), Base: 10}
}

// NewSizedConstant returns the constant v of type bit<width>.
func NewSizedConstant(v int64, width int) *Constant {
	return &Constant{Value: big.NewInt(v), Type: Bits(width), Base: 10}
}

// NewMember returns e.m.
func NewMember(e Expression, m string) *Member {
	return &Member{Expr: e, Member: m}
}

// NewPath returns a PathExpression for name.
func NewPath(name string) *PathExpression {
	return &PathExpression{Name: name}
}

// Call returns the call target.method(args...).
func Call(target Expression, method string, args ...Expression) *MethodCall {
	return &MethodCall{Method: NewMember(target, method), Args: args}
}

func (*PathExpression) node()    {}
func (*Member) node()            {}
func (*ArrayIndex) node()        {}
func (*Constant) node()          {}
func (*BoolLiteral) node()       {}
func (*StringLiteral) node()     {}
func (*MethodCall) node()        {}
func (*ConstructorCall) node()   {}
func (*ListExpression) node()    {}
func (*Binary) node()            {}
func (*Unary) node()             {}
func (*Cast) node()              {}
func (*Slice) node()             {}
func (*Mask) node()              {}
func (*DefaultExpression) node() {}
func (*SelectCase) node()        {}
func (*SelectExpression) node()  {}

func (*PathExpression) expr()    {}
func (*Member) expr()            {}
func (*ArrayIndex) expr()        {}
func (*Constant) expr()          {}
func (*BoolLiteral) expr()       {}
func (*StringLiteral) expr()     {}
func (*MethodCall) expr()        {}
func (*ConstructorCall) expr()   {}
func (*ListExpression) expr()    {}
func (*Binary) expr()            {}
func (*Unary) expr()             {}
func (*Cast) expr()              {}
func (*Slice) expr()             {}
func (*Mask) expr()              {}
func (*DefaultExpression) expr() {}
func (*SelectExpression) expr()  {}
