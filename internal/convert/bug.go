package convert

import (
	"errors"
	"fmt"

	"github.com/kmateuszssak/p4c/legacy"
)

// ErrInvariant matches every *BugError.
var ErrInvariant = errors.New("internal invariant violated")

// BugError reports a legacy tree shape the converter cannot interpret.
// The input is expected to have been validated upstream, so these abort
// conversion of the whole program.
type BugError struct {
	// Node describes the offending node.
	Node string
	Span legacy.Span
	Msg  string
}

func (e *BugError) Error() string {
	switch {
	case e.Node == "":
		return "BUG: " + e.Msg
	case e.Span.IsSynthetic():
		return fmt.Sprintf("BUG: %s: %s", e.Node, e.Msg)
	default:
		return fmt.Sprintf("BUG: %s: %s: %s", e.Span, e.Node, e.Msg)
	}
}

// Is reports whether target is ErrInvariant.
func (e *BugError) Is(target error) bool {
	return target == ErrInvariant
}

// bug aborts conversion. node may be a legacy declaration, expression,
// statement or any value with a useful %v form.
func bug(node any, format string, args ...any) {
	e := &BugError{Msg: fmt.Sprintf(format, args...)}
	switch n := node.(type) {
	case nil:
	case legacy.Declaration:
		e.Node = n.DeclName()
		e.Span = n.DeclSpan()
	case legacy.Statement:
		e.Node = fmt.Sprintf("%T", n)
		e.Span = n.StmtSpan()
	case *legacy.Primitive:
		e.Node = n.Name
		e.Span = n.Span
	case fmt.Stringer:
		e.Node = n.String()
	default:
		e.Node = fmt.Sprint(n)
	}
	panic(e)
}

// checkNull aborts conversion when a required reference is missing.
func checkNull[T comparable](v T, what string) T {
	var zero T
	if v == zero {
		bug(nil, "missing %s", what)
	}
	return v
}

// recoverBug converts a BugError panic into *err. Other panics propagate.
func recoverBug(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if b, ok := r.(*BugError); ok {
		*err = b
		return
	}
	panic(r)
}
