package convert

import (
	"log/slog"

	"github.com/kmateuszssak/p4c/internal/v1model"
	"github.com/kmateuszssak/p4c/ir"
	"github.com/kmateuszssak/p4c/legacy"
)

func (s *Structure) checksumParams() []*ir.Parameter {
	m := s.model
	return []*ir.Parameter{
		{Name: m.HeadersParam, Direction: ir.DirInOut, Type: &ir.TypeName{Name: m.HeadersType}},
		{Name: m.MetadataParam, Direction: ir.DirInOut, Type: &ir.TypeName{Name: m.MetadataType}},
	}
}

// ConvertChecksums builds the verify or the compute checksum control from
// the calculated fields. Checksum controls see no standard metadata.
func (DefaultConverter) ConvertChecksums(s *Structure, update bool) *ir.Control {
	s.conversionContext.Clear()
	s.conversionContext.Set(s.headersArg, ir.NewPath(s.model.MetadataParam), nil)

	name := s.model.VerifyChecksum
	if update {
		name = s.model.ComputeChecksum
	}
	ctl := &ir.Control{Name: name, Params: s.checksumParams(), Body: ir.NewBlock()}
	for _, cf := range s.CalculatedFields {
		for _, spec := range cf.Specs {
			if spec.Update != update {
				continue
			}
			ctl.Body.Components = append(ctl.Body.Components, s.checksumCall(cf, spec))
		}
	}
	return ctl
}

// checksumCall converts one verify or update clause into
// verify_checksum(cond, { fields }, field, algorithm) or its update and
// payload variants.
func (s *Structure) checksumCall(cf *legacy.CalculatedField, spec *legacy.CalculatedFieldSpec) ir.Statement {
	calc, ok := s.Calculations.Lookup(spec.Calculation)
	if !ok {
		bug(cf, "unknown field list calculation %q", spec.Calculation)
	}
	if len(calc.Algorithms) == 0 {
		bug(calc, "field list calculation has no algorithm")
	}
	alg, ok := v1model.HashAlgorithm(calc.Algorithms[0])
	if !ok {
		bug(calc, "unsupported algorithm %q", calc.Algorithms[0])
	}
	if w := s.widthOf(cf.Field); w > 0 && calc.OutputWidth > 0 && w != calc.OutputWidth {
		bug(cf, "field is %d bits wide but %q produces %d", w, calc.Name, calc.OutputWidth)
	}
	fields, payload := s.calculationFields(calc)

	fn := v1model.FuncVerifyChecksum
	switch {
	case spec.Update && payload:
		fn = v1model.FuncUpdateWithPayload
	case spec.Update:
		fn = v1model.FuncUpdateChecksum
	case payload:
		fn = v1model.FuncVerifyWithPayload
	}

	var cond ir.Expression = &ir.BoolLiteral{Value: true}
	if spec.Cond != nil {
		cond = s.Expr(spec.Cond)
	}
	return ir.CallStatement(&ir.MethodCall{
		Method: ir.NewPath(fn),
		Args: []ir.Expression{
			cond,
			s.fieldListExpr(fields),
			s.Expr(cf.Field),
			enumMember(v1model.EnumHashAlgorithm, alg),
		},
	})
}

func (s *Structure) createChecksum(update bool) {
	ctl := s.conv.ConvertChecksums(s, update)
	s.addBlock(ctl)
	s.Log(slog.LevelDebug, "checksum control converted",
		slog.String("name", ctl.Name),
		slog.Int("statements", len(ctl.Body.Components)))
}
