package convert

import (
	"log/slog"

	"github.com/kmateuszssak/p4c/internal/graph"
	"github.com/kmateuszssak/p4c/internal/v1model"
	"github.com/kmateuszssak/p4c/ir"
	"github.com/kmateuszssak/p4c/legacy"
)

func enumMember(enum, member string) ir.Expression {
	return ir.NewMember(ir.NewPath(enum), member)
}

func instances(n int) int {
	if n <= 0 {
		return 1
	}
	return n
}

// ConvertCounter declares a counter array, or a direct counter when the
// legacy counter is bound to a table.
func (DefaultConverter) ConvertCounter(s *Structure, c *legacy.Counter) *ir.DeclarationInstance {
	kind, ok := v1model.CounterType(string(c.Kind))
	if !ok {
		bug(c, "unknown counter type %q", c.Kind)
	}
	inst := &ir.DeclarationInstance{
		Name:        s.Counters.Name(c),
		Annotations: ir.Annotations{ir.GlobalNameAnnotation(c.Name)},
	}
	if c.MinWidth > 0 {
		inst.Annotations = append(inst.Annotations, &ir.Annotation{
			Name: "min_width", Args: []ir.Expression{ir.NewConstant(int64(c.MinWidth))},
		})
	}
	if c.Saturating {
		inst.Annotations = append(inst.Annotations, &ir.Annotation{Name: "saturating"})
	}
	if c.Direct != "" {
		inst.Type = &ir.TypeName{Name: v1model.ExternDirectCounter}
		inst.Args = []ir.Expression{enumMember(v1model.EnumCounterType, kind)}
		return inst
	}
	inst.Type = &ir.TypeName{Name: v1model.ExternCounter}
	inst.Args = []ir.Expression{
		sizedInt(instances(c.Instances), 32),
		enumMember(v1model.EnumCounterType, kind),
	}
	return inst
}

// ConvertMeter declares a meter array, or a direct meter whose color
// type is the type of the field it writes.
func (DefaultConverter) ConvertMeter(s *Structure, m *legacy.Meter) *ir.DeclarationInstance {
	kind, ok := v1model.MeterType(string(m.Kind))
	if !ok {
		bug(m, "unknown meter type %q", m.Kind)
	}
	inst := &ir.DeclarationInstance{
		Name:        s.Meters.Name(m),
		Annotations: ir.Annotations{ir.GlobalNameAnnotation(m.Name)},
	}
	if m.Direct != "" {
		result := checkNull(m.Result, "result of direct meter "+m.Name)
		w := s.widthOf(result)
		if w == 0 {
			bug(m, "cannot determine the width of meter result %s", result)
		}
		inst.Type = &ir.TypeSpecialized{
			Base: &ir.TypeName{Name: v1model.ExternDirectMeter},
			Args: []ir.Type{ir.Bits(w)},
		}
		inst.Args = []ir.Expression{enumMember(v1model.EnumMeterType, kind)}
		return inst
	}
	inst.Type = &ir.TypeName{Name: v1model.ExternMeter}
	inst.Args = []ir.Expression{
		sizedInt(instances(m.Instances), 32),
		enumMember(v1model.EnumMeterType, kind),
	}
	return inst
}

// ConvertRegister declares a register array. Registers laid out as a
// header type hold a struct copy of it.
func (DefaultConverter) ConvertRegister(s *Structure, r *legacy.Register) *ir.DeclarationInstance {
	if r.Direct != "" {
		bug(r, "direct registers are not supported by the model")
	}
	var elem ir.Type
	switch {
	case r.Layout != "":
		elem = &ir.TypeName{Name: s.registerLayout(r.Layout).Name}
	case r.Width > 0:
		elem = &ir.TypeBits{Width: r.Width, Signed: r.Signed}
	default:
		elem = &ir.TypeBits{Width: s.opts.RegisterWidth, Signed: r.Signed}
	}
	return &ir.DeclarationInstance{
		Name:        s.Registers.Name(r),
		Annotations: ir.Annotations{ir.GlobalNameAnnotation(r.Name)},
		Type: &ir.TypeSpecialized{
			Base: &ir.TypeName{Name: v1model.ExternRegister},
			Args: []ir.Type{elem},
		},
		Args: []ir.Expression{sizedInt(instances(r.Instances), 32)},
	}
}

// createStatefulInstances declares the counters, meters and registers
// that are not bound to a table. Direct instances are declared inside the
// control applying their table.
func (s *Structure) createStatefulInstances() {
	for c := range s.Counters.All() {
		if c.Direct == "" && s.IsReachable(graph.KindCounter, c.Name) {
			s.addInstance(s.conv.ConvertCounter(s, c))
		}
	}
	for m := range s.Meters.All() {
		if m.Direct == "" && s.IsReachable(graph.KindMeter, m.Name) {
			s.addInstance(s.conv.ConvertMeter(s, m))
		}
	}
	for r := range s.Registers.All() {
		if s.IsReachable(graph.KindRegister, r.Name) {
			s.addInstance(s.conv.ConvertRegister(s, r))
			if s.TraceEnabled() {
				s.Trace("converted register", slog.String("name", r.Name))
			}
		}
	}
}
