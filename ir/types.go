package ir

// Type is a P4-16 type expression.
type Type interface {
	Node
	typ()
}

// TypeBits is bit<W> or int<W>.
type TypeBits struct {
	Width  int
	Signed bool
}

// TypeVarbits is varbit<W>.
type TypeVarbits struct {
	Size int
}

// TypeBool is bool.
type TypeBool struct{}

// TypeVoid is void.
type TypeVoid struct{}

// TypeName references a declared type.
type TypeName struct {
	Name string
}

// TypeSpecialized is a generic type applied to arguments: register<bit<32>>.
type TypeSpecialized struct {
	Base *TypeName
	Args []Type
}

// TypeStack is a header stack type T[Size].
type TypeStack struct {
	Elem Type
	Size int
}

// TypeTuple is tuple<T1, T2, ...>.
type TypeTuple struct {
	Components []Type
}

// Bits returns the unsigned type bit<w>.
func Bits(w int) *TypeBits { return &TypeBits{Width: w} }

func (*TypeBits) node()        {}
func (*TypeVarbits) node()     {}
func (*TypeBool) node()        {}
func (*TypeVoid) node()        {}
func (*TypeName) node()        {}
func (*TypeSpecialized) node() {}
func (*TypeStack) node()       {}
func (*TypeTuple) node()       {}

func (*TypeBits) typ()        {}
func (*TypeVarbits) typ()     {}
func (*TypeBool) typ()        {}
func (*TypeVoid) typ()        {}
func (*TypeName) typ()        {}
func (*TypeSpecialized) typ() {}
func (*TypeStack) typ()       {}
func (*TypeTuple) typ()       {}

// StructField is a field of a header or struct type.
type StructField struct {
	Name        string
	Annotations Annotations
	Type        Type
}

// TypeHeader declares a header type.
type TypeHeader struct {
	Name        string
	Annotations Annotations
	Fields      []*StructField
}

// TypeStruct declares a struct type.
type TypeStruct struct {
	Name        string
	Annotations Annotations
	Fields      []*StructField
}

// Field returns the named field.
func (t *TypeHeader) Field(name string) *StructField { return findField(t.Fields, name) }

// Field returns the named field.
func (t *TypeStruct) Field(name string) *StructField { return findField(t.Fields, name) }

func findField(fields []*StructField, name string) *StructField {
	for _, f := range fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Direction is a parameter direction.
type Direction int

const (
	DirNone Direction = iota
	DirIn
	DirOut
	DirInOut
)

// String returns the P4-16 keyword, empty for DirNone.
func (d Direction) String() string {
	switch d {
	case DirIn:
		return "in"
	case DirOut:
		return "out"
	case DirInOut:
		return "inout"
	default:
		return ""
	}
}

// Parameter is a formal parameter.
type Parameter struct {
	Name        string
	Annotations Annotations
	Direction   Direction
	Type        Type
}

// Method is an extern method prototype.
type Method struct {
	Name       string
	TypeParams []string
	Params     []*Parameter
	Return     Type
}

// TypeExtern declares an extern object type.
type TypeExtern struct {
	Name        string
	Annotations Annotations
	TypeParams  []string
	Methods     []*Method
}

func (t *TypeHeader) DeclName() string { return t.Name }
func (t *TypeStruct) DeclName() string { return t.Name }
func (t *TypeExtern) DeclName() string { return t.Name }

func (*TypeHeader) node() {}
func (*TypeStruct) node() {}
func (*TypeExtern) node() {}
func (*Parameter) node()  {}
func (*Method) node()     {}

func (*TypeHeader) typ() {}
func (*TypeStruct) typ() {}
func (*TypeExtern) typ() {}
