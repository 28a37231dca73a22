// Package ir defines the tree of a P4-16 program produced by the converter.
//
// Nodes are plain structs linked by pointers. Expression nodes may be
// shared: the converter deliberately reuses one expression object for
// every reference to the same header, so consumers may compare header
// references by identity.
package ir

// Node is implemented by every tree node.
type Node interface {
	node()
}

// Declaration is a named program-level or block-level declaration.
type Declaration interface {
	Node
	DeclName() string
}

// Program is a P4-16 program: declarations in emission order.
type Program struct {
	Declarations []Declaration
}

// Lookup returns the first declaration with the given name.
func (p *Program) Lookup(name string) Declaration {
	for _, d := range p.Declarations {
		if d.DeclName() == name {
			return d
		}
	}
	return nil
}

// Index returns the position of the named declaration, or -1.
func (p *Program) Index(name string) int {
	for i, d := range p.Declarations {
		if d.DeclName() == name {
			return i
		}
	}
	return -1
}

// Annotation is an @name(args) annotation.
type Annotation struct {
	Name string
	Args []Expression
}

// Annotations is an ordered annotation list.
type Annotations []*Annotation

// NameAnnotation returns @name("name").
func NameAnnotation(name string) *Annotation {
	return &Annotation{Name: "name", Args: []Expression{&StringLiteral{Value: name}}}
}

// GlobalNameAnnotation returns @name(".name"). Legacy names are flat, so
// control-plane objects are exposed under the global form.
func GlobalNameAnnotation(name string) *Annotation {
	return NameAnnotation("." + name)
}

// Get returns the first annotation with the given name.
func (a Annotations) Get(name string) *Annotation {
	for _, an := range a {
		if an.Name == name {
			return an
		}
	}
	return nil
}

// OriginalName returns the string carried by the @name annotation.
func (a Annotations) OriginalName() (string, bool) {
	an := a.Get("name")
	if an == nil || len(an.Args) != 1 {
		return "", false
	}
	s, ok := an.Args[0].(*StringLiteral)
	if !ok {
		return "", false
	}
	return s.Value, true
}

// Include is a preprocessor include of a library file such as core.p4.
type Include struct {
	File string
}

func (d *Include) DeclName() string { return "#include <" + d.File + ">" }
func (*Include) node()              {}
