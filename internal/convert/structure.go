// Package convert lowers a legacy (P4-14) program into a P4-16 program
// written against the v1model architecture.
//
// # Conversion phases
//
// Run executes the following phases in order:
//
//  1. Names: reserve every name the output introduces, then register all
//     legacy objects so each receives a unique output name
//  2. Graphs: record call and use edges and compute what the entry
//     controls reach
//  3. Types and externs: header, metadata, layout and field-list types,
//     extern types and global instances
//  4. Parser, controls, checksum controls and deparser
//  5. Assembly: declarations in dependency order plus the main package
//
// Malformed input aborts with an error matching ErrInvariant.
package convert

import (
	"log/slog"

	"github.com/kmateuszssak/p4c/internal/graph"
	"github.com/kmateuszssak/p4c/internal/registry"
	"github.com/kmateuszssak/p4c/internal/types"
	"github.com/kmateuszssak/p4c/internal/v1model"
	"github.com/kmateuszssak/p4c/ir"
	"github.com/kmateuszssak/p4c/legacy"
)

// Options configures one conversion.
type Options struct {
	Logger    *slog.Logger
	Converter Converter

	// Ingress and Egress name the legacy entry controls.
	Ingress string
	Egress  string

	// KeepUnreachable emits objects the entry controls never reach.
	KeepUnreachable bool

	// RegisterWidth is the element width of registers that declare
	// neither a width nor a layout.
	RegisterWidth int
}

// Rename records an object whose output name differs from its legacy name.
type Rename struct {
	Category string
	Original string
	Name     string
}

// Result is a converted program plus the side tables later phases use.
type Result struct {
	Program *ir.Program
	Renames []Rename
	// VarbitExtracts maps each extract of a header with a varbit field
	// to the header type, for the pass that adds the width argument.
	VarbitExtracts map[*ir.MethodCall]*ir.TypeHeader
	Calls          *graph.CallGraph
	Unreachable    []graph.Symbol
}

// Structure holds the state of one conversion: registries for every
// category of legacy object, the call graph, the rewrite context, the
// header cache and the declarations produced so far.
type Structure struct {
	types.Logger

	conv  Converter
	opts  Options
	prog  *legacy.Program
	model v1model.Model

	names *registry.NameSet

	Types            *registry.Registry[*legacy.HeaderType]
	Headers          *registry.Registry[*legacy.Header]
	Stacks           *registry.Registry[*legacy.HeaderStack]
	Metadata         *registry.Registry[*legacy.Metadata]
	ValueSets        *registry.Registry[*legacy.ValueSet]
	States           *registry.Registry[*legacy.ParserState]
	ExternTypes      *registry.Registry[*legacy.ExternType]
	Externs          *registry.Registry[*legacy.ExternInstance]
	FieldLists       *registry.Registry[*legacy.FieldList]
	Calculations     *registry.Registry[*legacy.FieldListCalculation]
	Counters         *registry.Registry[*legacy.Counter]
	Meters           *registry.Registry[*legacy.Meter]
	Registers        *registry.Registry[*legacy.Register]
	Selectors        *registry.Registry[*legacy.ActionSelector]
	ActionProfiles   *registry.Registry[*legacy.ActionProfile]
	Actions          *registry.Registry[*legacy.Action]
	Tables           *registry.Registry[*legacy.Table]
	Controls         *registry.Registry[*legacy.Control]
	CalculatedFields []*legacy.CalculatedField

	calls     *graph.CallGraph
	reachable map[graph.Symbol]bool
	// headerOrder has an edge from every header to the headers the parser
	// may extract after it.
	headerOrder *graph.Graph

	conversionContext ConversionContext
	// headersArg is the headers parameter shared by every block.
	headersArg ir.Expression
	headers    *headerCache

	// directCounters and directMeters map a legacy table name to the
	// instance bound to it.
	directCounters map[string]*legacy.Counter
	directMeters   map[string]*legacy.Meter

	// finalHeaderType maps a legacy header type name to its header
	// declaration; metadataType to its struct declaration.
	finalHeaderType map[string]*ir.TypeHeader
	metadataType    map[string]*ir.TypeStruct
	// registerLayoutType maps a legacy header type name to the struct
	// copy used as a register element.
	registerLayoutType map[string]*ir.TypeStruct
	selectors          map[string]*SelectorInfo

	convertedActions    map[*legacy.Action]*ir.Action
	extractsSynthesized map[*ir.MethodCall]*ir.TypeHeader

	// latest is the last header extracted in the current parser state.
	latest     ir.Expression
	latestType *legacy.HeaderType
	inParser   bool
	// stateExtracts lists, per converted parser state, the headers it
	// extracts in order.
	stateExtracts map[string][]string

	// ingressName and egressName are the output names of the entry
	// controls.
	ingressName string
	egressName  string

	currentAction *legacy.Action
	paramTypes    map[*legacy.Param]legacy.Type
	tableInfos    map[*legacy.Table]*tableInfo

	typeDecls     []ir.Declaration
	externDecls   []ir.Declaration
	instanceDecls []ir.Declaration
	blocks        []ir.Declaration
	emitted       map[string]bool
}

func newStructure(prog *legacy.Program, opts Options) *Structure {
	if opts.Converter == nil {
		opts.Converter = DefaultConverter{}
	}
	if opts.Ingress == "" {
		opts.Ingress = v1model.V1Model.Ingress
	}
	if opts.Egress == "" {
		opts.Egress = v1model.V1Model.Egress
	}
	if opts.RegisterWidth <= 0 {
		opts.RegisterWidth = 32
	}

	names := registry.NewNameSet()
	s := &Structure{
		Logger: types.Logger{L: types.Component(opts.Logger, "convert")},
		conv:   opts.Converter,
		opts:   opts,
		prog:   prog,
		model:  v1model.V1Model,
		names:  names,

		Types:          registry.New[*legacy.HeaderType]("type", names),
		Headers:        registry.New[*legacy.Header]("header", names),
		Stacks:         registry.New[*legacy.HeaderStack]("header_stack", names),
		Metadata:       registry.New[*legacy.Metadata]("metadata", names),
		ValueSets:      registry.New[*legacy.ValueSet]("value_set", names),
		States:         registry.New[*legacy.ParserState]("parser_state", names),
		ExternTypes:    registry.New[*legacy.ExternType]("extern_type", names),
		Externs:        registry.New[*legacy.ExternInstance]("extern", names),
		FieldLists:     registry.New[*legacy.FieldList]("field_list", names),
		Calculations:   registry.New[*legacy.FieldListCalculation]("field_list_calculation", names),
		Counters:       registry.New[*legacy.Counter]("counter", names),
		Meters:         registry.New[*legacy.Meter]("meter", names),
		Registers:      registry.New[*legacy.Register]("register", names),
		Selectors:      registry.New[*legacy.ActionSelector]("action_selector", names),
		ActionProfiles: registry.New[*legacy.ActionProfile]("action_profile", names),
		Actions:        registry.New[*legacy.Action]("action", names),
		Tables:         registry.New[*legacy.Table]("table", names),
		Controls:       registry.New[*legacy.Control]("control", names),

		calls:       graph.NewCallGraph(),
		headerOrder: graph.New(0),

		directCounters:      make(map[string]*legacy.Counter),
		directMeters:        make(map[string]*legacy.Meter),
		finalHeaderType:     make(map[string]*ir.TypeHeader),
		metadataType:        make(map[string]*ir.TypeStruct),
		registerLayoutType:  make(map[string]*ir.TypeStruct),
		selectors:           make(map[string]*SelectorInfo),
		convertedActions:    make(map[*legacy.Action]*ir.Action),
		extractsSynthesized: make(map[*ir.MethodCall]*ir.TypeHeader),
		stateExtracts:       make(map[string][]string),
		paramTypes:          make(map[*legacy.Param]legacy.Type),
		tableInfos:          make(map[*legacy.Table]*tableInfo),
		emitted:             make(map[string]bool),
	}
	s.headersArg = ir.NewPath(s.model.HeadersParam)
	s.headers = newHeaderCache(s.conversionContext.Header, s.headerFieldName)
	return s
}

// Program returns the legacy program being converted.
func (s *Structure) Program() *legacy.Program { return s.prog }

// Model returns the architecture names in use.
func (s *Structure) Model() v1model.Model { return s.model }

// Context returns the rewrite context.
func (s *Structure) Context() *ConversionContext { return &s.conversionContext }

// MakeUniqueName claims and returns a fresh output name derived from base,
// never base itself.
func (s *Structure) MakeUniqueName(base string) string {
	name := s.names.MakeUnique(base)
	s.names.Add(name)
	return name
}

// ClaimName claims base, or a fresh name derived from it when taken.
func (s *Structure) ClaimName(base string) string {
	return s.names.Claim(base)
}

// IsReachable reports whether the entry controls reach the object, or
// unreachable objects are kept anyway.
func (s *Structure) IsReachable(kind graph.Kind, name string) bool {
	return s.opts.KeepUnreachable || s.reachable[graph.Symbol{Kind: kind, Name: name}]
}

// headerFieldName maps a legacy header or stack name to its field in the
// headers struct.
func (s *Structure) headerFieldName(name string) string {
	if s.Stacks.Contains(name) {
		return s.Stacks.NameOf(name)
	}
	return s.Headers.NameOf(name)
}

func (s *Structure) addType(d ir.Declaration) {
	s.emit(&s.typeDecls, d)
}

func (s *Structure) addExtern(d ir.Declaration) {
	s.emit(&s.externDecls, d)
}

func (s *Structure) addInstance(d ir.Declaration) {
	s.emit(&s.instanceDecls, d)
}

func (s *Structure) addBlock(d ir.Declaration) {
	s.emit(&s.blocks, d)
}

// emit appends d to list unless a declaration of that name was emitted.
func (s *Structure) emit(list *[]ir.Declaration, d ir.Declaration) {
	name := d.DeclName()
	if s.emitted[name] {
		bug(nil, "declaration %q emitted twice", name)
	}
	s.emitted[name] = true
	*list = append(*list, d)
	if s.TraceEnabled() {
		s.Trace("emitted declaration", slog.String("name", name))
	}
}
