// Package legacy defines the tree of a P4-14 program as produced by the
// upstream parsing and validation phases.
//
// The tree is flat: every named object is a top-level Declaration and
// references between objects are by name. Expressions referring to header
// or metadata instances are already resolved into ConcreteHeaderRef nodes.
// The converter only reads this tree; it never mutates it.
package legacy

import (
	"fmt"
	"iter"
)

// Span locates a construct in the program description.
// Line and Column are 1-based; the zero Span marks synthesized constructs.
type Span struct {
	File   string
	Line   int
	Column int
}

// IsSynthetic reports whether the span carries no source location.
func (s Span) IsSynthetic() bool {
	return s.Line == 0
}

// String formats the span as file:line:col, omitting unknown parts.
func (s Span) String() string {
	switch {
	case s.IsSynthetic() && s.File == "":
		return "<synthesized>"
	case s.IsSynthetic():
		return s.File
	case s.Column > 0:
		return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
	default:
		return fmt.Sprintf("%s:%d", s.File, s.Line)
	}
}

// Program is a complete P4-14 program: its declarations in source order.
type Program struct {
	Name  string
	Decls []Declaration
}

// Declarations returns an iterator over the declarations of type T,
// in source order.
func Declarations[T Declaration](p *Program) iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, d := range p.Decls {
			if t, ok := d.(T); ok {
				if !yield(t) {
					return
				}
			}
		}
	}
}

// Find returns the first declaration of type T with the given name.
func Find[T Declaration](p *Program, name string) (T, bool) {
	for d := range Declarations[T](p) {
		if d.DeclName() == name {
			return d, true
		}
	}
	var zero T
	return zero, false
}
