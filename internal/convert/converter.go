package convert

import (
	"github.com/kmateuszssak/p4c/ir"
	"github.com/kmateuszssak/p4c/legacy"
)

// Converter converts individual legacy objects. Structure calls every
// conversion through the Converter it was given, so an implementation
// can embed DefaultConverter and override selected methods to target a
// variant of the architecture.
type Converter interface {
	ConvertHeaderType(s *Structure, t *legacy.HeaderType, name string) *ir.TypeHeader
	ConvertMetadataType(s *Structure, t *legacy.HeaderType, name string) *ir.TypeStruct
	ConvertFieldListCalculation(s *Structure, calc *legacy.FieldListCalculation) *ir.TypeStruct
	ConvertExternType(s *Structure, t *legacy.ExternType) *ir.TypeExtern
	ConvertExternInstance(s *Structure, e *legacy.ExternInstance) *ir.DeclarationInstance
	ConvertCounter(s *Structure, c *legacy.Counter) *ir.DeclarationInstance
	ConvertMeter(s *Structure, m *legacy.Meter) *ir.DeclarationInstance
	ConvertRegister(s *Structure, r *legacy.Register) *ir.DeclarationInstance
	ConvertActionSelector(s *Structure, sel *legacy.ActionSelector) *SelectorInfo
	ConvertActionProfile(s *Structure, ap *legacy.ActionProfile) *ir.DeclarationInstance
	ConvertParserState(s *Structure, st *legacy.ParserState) *ir.ParserState
	ConvertAction(s *Structure, a *legacy.Action, name string, extra []ir.Statement) *ir.Action
	// ConvertPrimitive may return nil for primitives with no effect.
	ConvertPrimitive(s *Structure, p *legacy.Primitive) ir.Statement
	ConvertTable(s *Structure, t *legacy.Table, actionNames map[string]string) *ir.Table
	ConvertControl(s *Structure, c *legacy.Control) *ir.Control
	ConvertChecksums(s *Structure, update bool) *ir.Control
	ConvertDeparser(s *Structure) *ir.Control
}

// DefaultConverter implements Converter for the v1model architecture.
type DefaultConverter struct{}

var _ Converter = DefaultConverter{}
