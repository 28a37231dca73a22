// Package loader reads P4-14 program descriptions into the legacy tree.
//
// A description is a YAML (or JSON) document with one section per kind
// of declaration. It is checked against an embedded CUE schema before any
// declaration is built, so structural mistakes are reported with their
// CUE path and shape errors never reach the converter. Expressions inside
// the description use the legacy syntax and are parsed by
// internal/parser.
package loader

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/kmateuszssak/p4c/internal/types"
	"github.com/kmateuszssak/p4c/legacy"
)

//go:embed schema.cue
var schemaFS embed.FS

var (
	// ErrEmpty is returned for a description with no content.
	ErrEmpty = errors.New("empty program description")
	// ErrInvalid is wrapped by every schema or expression error.
	ErrInvalid = errors.New("invalid program description")
)

// SchemaError lists the schema violations of a description.
type SchemaError struct {
	Violations []string
}

func (e *SchemaError) Error() string {
	return "schema validation failed: " + strings.Join(e.Violations, "; ")
}

func (e *SchemaError) Unwrap() error { return ErrInvalid }

// Loader validates and builds program descriptions. A Loader is not safe
// for concurrent use.
type Loader struct {
	ctx     *cue.Context
	program cue.Value
	types.Logger
}

// New compiles the embedded schema. Pass nil for logger to disable
// logging.
func New(logger *slog.Logger) (*Loader, error) {
	ctx := cuecontext.New()
	schemaBytes, err := schemaFS.ReadFile("schema.cue")
	if err != nil {
		return nil, fmt.Errorf("loading embedded schema: %w", err)
	}
	schema := ctx.CompileBytes(schemaBytes)
	if schema.Err() != nil {
		return nil, fmt.Errorf("compiling schema: %w", schema.Err())
	}
	program := schema.LookupPath(cue.ParsePath("#Program"))
	if program.Err() != nil {
		return nil, fmt.Errorf("looking up #Program: %w", program.Err())
	}
	return &Loader{ctx: ctx, program: program, Logger: types.Logger{L: logger}}, nil
}

// Load builds the program described by data. file is used in spans and,
// when the description has no name, to name the program.
func (l *Loader) Load(data []byte, file string) (*legacy.Program, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", file, err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, ErrEmpty
	}
	m := root.Content[0]
	if m.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: %s: top level must be a mapping", ErrInvalid, file)
	}

	var raw any
	if err := m.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", file, err)
	}
	if err := l.Validate(raw); err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}

	var doc document
	if err := m.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", file, err)
	}
	if doc.Name == "" {
		doc.Name = strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	}

	b := newBuilder(file, &doc, l.L)
	for _, key := range sectionOrder(m) {
		b.section(key)
	}
	if err := b.err(); err != nil {
		return nil, err
	}
	l.Log(slog.LevelDebug, "program loaded",
		slog.String("program", b.prog.Name),
		slog.Int("declarations", len(b.prog.Decls)))
	return b.prog, nil
}

// LoadFile reads and builds the description at path.
func (l *Loader) LoadFile(path string) (*legacy.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return l.Load(data, path)
}

// Validate checks decoded description data against the #Program schema.
func (l *Loader) Validate(data any) error {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling data to JSON: %w", err)
	}
	value := l.ctx.CompileBytes(jsonBytes)
	if value.Err() != nil {
		return fmt.Errorf("compiling data as CUE: %w", value.Err())
	}
	unified := l.program.Unify(value)
	err = unified.Validate(cue.Concrete(true))
	if err == nil {
		return nil
	}
	var violations []string
	for _, e := range cueerrors.Errors(err) {
		violations = append(violations, e.Error())
	}
	l.Log(slog.LevelDebug, "schema validation failed", slog.Int("violations", len(violations)))
	return &SchemaError{Violations: violations}
}

// Load builds the program described by data with a fresh Loader.
func Load(data []byte, file string) (*legacy.Program, error) {
	l, err := New(nil)
	if err != nil {
		return nil, err
	}
	return l.Load(data, file)
}

// LoadFile reads and builds the description at path with a fresh Loader.
func LoadFile(path string) (*legacy.Program, error) {
	l, err := New(nil)
	if err != nil {
		return nil, err
	}
	return l.LoadFile(path)
}
