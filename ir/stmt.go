package ir

// Statement is a P4-16 statement.
type Statement interface {
	Node
	stmt()
}

// AssignmentStatement is Left = Right.
type AssignmentStatement struct {
	Left  Expression
	Right Expression
}

// MethodCallStatement is a call used as a statement.
type MethodCallStatement struct {
	Call *MethodCall
}

// IfStatement is if (Cond) Then else Else. Else may be nil.
type IfStatement struct {
	Cond Expression
	Then Statement
	Else Statement
}

// BlockStatement is { Components }.
type BlockStatement struct {
	Components []Statement
}

// SwitchCase is one label of a switch. Label is a PathExpression naming
// an action or a DefaultExpression. A nil Body falls through.
type SwitchCase struct {
	Label Expression
	Body  *BlockStatement
}

// SwitchStatement is switch (Expr) { Cases }.
type SwitchStatement struct {
	Expr  Expression
	Cases []*SwitchCase
}

// EmptyStatement is a lone semicolon.
type EmptyStatement struct{}

// ExitStatement is exit.
type ExitStatement struct{}

// NewBlock returns a block of the given statements.
func NewBlock(stmts ...Statement) *BlockStatement {
	return &BlockStatement{Components: stmts}
}

// CallStatement wraps a method call as a statement.
func CallStatement(call *MethodCall) *MethodCallStatement {
	return &MethodCallStatement{Call: call}
}

func (*AssignmentStatement) node() {}
func (*MethodCallStatement) node() {}
func (*IfStatement) node()         {}
func (*BlockStatement) node()      {}
func (*SwitchCase) node()          {}
func (*SwitchStatement) node()     {}
func (*EmptyStatement) node()      {}
func (*ExitStatement) node()       {}

func (*AssignmentStatement) stmt() {}
func (*MethodCallStatement) stmt() {}
func (*IfStatement) stmt()         {}
func (*BlockStatement) stmt()      {}
func (*SwitchStatement) stmt()     {}
func (*EmptyStatement) stmt()      {}
func (*ExitStatement) stmt()       {}
