package ir

// Inspect traverses the tree rooted at n in depth-first order, calling f
// for each node. If f returns false, the children of that node are
// skipped. Shared nodes are visited once per reference.
func Inspect(n Node, f func(Node) bool) {
	if n == nil || !f(n) {
		return
	}
	switch n := n.(type) {
	case *Program:
		for _, d := range n.Declarations {
			Inspect(d, f)
		}
	case *TypeHeader:
		inspectFields(n.Fields, f)
	case *TypeStruct:
		inspectFields(n.Fields, f)
	case *TypeExtern:
		for _, m := range n.Methods {
			Inspect(m, f)
		}
	case *Method:
		for _, p := range n.Params {
			Inspect(p, f)
		}
	case *Parameter:
		if n.Type != nil {
			Inspect(n.Type, f)
		}
	case *TypeSpecialized:
		Inspect(n.Base, f)
		for _, a := range n.Args {
			Inspect(a, f)
		}
	case *TypeStack:
		Inspect(n.Elem, f)
	case *TypeTuple:
		for _, c := range n.Components {
			Inspect(c, f)
		}
	case *DeclarationInstance:
		Inspect(n.Type, f)
		inspectExprs(n.Args, f)
	case *DeclarationVariable:
		Inspect(n.Type, f)
		if n.Init != nil {
			Inspect(n.Init, f)
		}
	case *ValueSet:
		Inspect(n.Elem, f)
	case *Parser:
		for _, p := range n.Params {
			Inspect(p, f)
		}
		for _, d := range n.Locals {
			Inspect(d, f)
		}
		for _, s := range n.States {
			Inspect(s, f)
		}
	case *ParserState:
		for _, s := range n.Components {
			Inspect(s, f)
		}
		if n.Select != nil {
			Inspect(n.Select, f)
		}
	case *Control:
		for _, p := range n.Params {
			Inspect(p, f)
		}
		for _, d := range n.Locals {
			Inspect(d, f)
		}
		Inspect(n.Body, f)
	case *Action:
		for _, p := range n.Params {
			Inspect(p, f)
		}
		Inspect(n.Body, f)
	case *Table:
		for _, p := range n.Properties {
			Inspect(p, f)
		}
	case *Property:
		Inspect(n.Value, f)
	case *Key:
		for _, e := range n.Elements {
			Inspect(e, f)
		}
	case *KeyElement:
		Inspect(n.Expr, f)
	case *ActionList:
		for _, e := range n.Elements {
			Inspect(e, f)
		}
	case *ActionListElement:
		Inspect(n.Expr, f)
	case *ExpressionValue:
		Inspect(n.Expr, f)

	case *AssignmentStatement:
		Inspect(n.Left, f)
		Inspect(n.Right, f)
	case *MethodCallStatement:
		Inspect(n.Call, f)
	case *IfStatement:
		Inspect(n.Cond, f)
		Inspect(n.Then, f)
		if n.Else != nil {
			Inspect(n.Else, f)
		}
	case *BlockStatement:
		for _, s := range n.Components {
			Inspect(s, f)
		}
	case *SwitchStatement:
		Inspect(n.Expr, f)
		for _, c := range n.Cases {
			Inspect(c, f)
		}
	case *SwitchCase:
		Inspect(n.Label, f)
		if n.Body != nil {
			Inspect(n.Body, f)
		}

	case *Member:
		Inspect(n.Expr, f)
	case *ArrayIndex:
		Inspect(n.Left, f)
		Inspect(n.Right, f)
	case *MethodCall:
		Inspect(n.Method, f)
		for _, t := range n.TypeArgs {
			Inspect(t, f)
		}
		inspectExprs(n.Args, f)
	case *ConstructorCall:
		Inspect(n.Type, f)
		inspectExprs(n.Args, f)
	case *ListExpression:
		inspectExprs(n.Components, f)
	case *Binary:
		Inspect(n.Left, f)
		Inspect(n.Right, f)
	case *Unary:
		Inspect(n.Expr, f)
	case *Cast:
		Inspect(n.Type, f)
		Inspect(n.Expr, f)
	case *Slice:
		Inspect(n.Expr, f)
	case *Mask:
		Inspect(n.Left, f)
		Inspect(n.Right, f)
	case *SelectExpression:
		Inspect(n.Select, f)
		for _, c := range n.Cases {
			Inspect(c, f)
		}
	case *SelectCase:
		Inspect(n.Keyset, f)
		Inspect(n.State, f)
	}
}

func inspectFields(fields []*StructField, f func(Node) bool) {
	for _, fld := range fields {
		Inspect(fld.Type, f)
	}
}

func inspectExprs(exprs []Expression, f func(Node) bool) {
	for _, e := range exprs {
		Inspect(e, f)
	}
}

// Collect returns every node of type T reachable from n, in traversal order.
func Collect[T Node](n Node) []T {
	var out []T
	Inspect(n, func(x Node) bool {
		if t, ok := x.(T); ok {
			out = append(out, t)
		}
		return true
	})
	return out
}

func (*Program) node() {}
