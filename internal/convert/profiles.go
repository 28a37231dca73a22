package convert

import (
	"github.com/kmateuszssak/p4c/internal/graph"
	"github.com/kmateuszssak/p4c/internal/v1model"
	"github.com/kmateuszssak/p4c/ir"
	"github.com/kmateuszssak/p4c/legacy"
)

// SelectorInfo is the selection scheme of an action selector: the hash
// algorithm and output width of its key calculation, and the fields that
// become selector keys of every table using it.
type SelectorInfo struct {
	Name        string
	Algorithm   string
	OutputWidth int
	Fields      []legacy.Expression
}

// ConvertActionSelector resolves the calculation behind a selector.
func (DefaultConverter) ConvertActionSelector(s *Structure, sel *legacy.ActionSelector) *SelectorInfo {
	calc, ok := s.Calculations.Lookup(sel.Key)
	if !ok {
		bug(sel, "selection key %q is not a field list calculation", sel.Key)
	}
	if len(calc.Algorithms) == 0 {
		bug(calc, "field list calculation has no algorithm")
	}
	alg, ok := v1model.HashAlgorithm(calc.Algorithms[0])
	if !ok {
		bug(calc, "unsupported algorithm %q", calc.Algorithms[0])
	}
	fields, _ := s.calculationFields(calc)
	return &SelectorInfo{
		Name:        s.Selectors.Name(sel),
		Algorithm:   alg,
		OutputWidth: calc.OutputWidth,
		Fields:      fields,
	}
}

// selector returns the converted selector, converting it on first use.
func (s *Structure) selector(name string, owner legacy.Declaration) *SelectorInfo {
	if info, ok := s.selectors[name]; ok {
		return info
	}
	sel, ok := s.Selectors.Lookup(name)
	if !ok {
		bug(owner, "unknown action selector %q", name)
	}
	info := s.conv.ConvertActionSelector(s, sel)
	s.selectors[name] = info
	return info
}

// ConvertActionProfile declares an action profile, or an action selector
// when the profile has one. The selector is converted first.
func (DefaultConverter) ConvertActionProfile(s *Structure, ap *legacy.ActionProfile) *ir.DeclarationInstance {
	inst := &ir.DeclarationInstance{
		Name:        s.ActionProfiles.Name(ap),
		Annotations: ir.Annotations{ir.GlobalNameAnnotation(ap.Name)},
	}
	size := sizedInt(instances(ap.Size), 32)
	if ap.Selector == "" {
		inst.Type = &ir.TypeName{Name: v1model.ExternActionProfile}
		inst.Args = []ir.Expression{size}
		return inst
	}
	info := s.selector(ap.Selector, ap)
	inst.Type = &ir.TypeName{Name: v1model.ExternActionSelector}
	inst.Args = []ir.Expression{
		enumMember(v1model.EnumHashAlgorithm, info.Algorithm),
		size,
		sizedInt(info.OutputWidth, 32),
	}
	return inst
}

// createActionProfiles declares the profiles used by reachable tables.
func (s *Structure) createActionProfiles() {
	used := make(map[string]bool)
	for t := range s.Tables.All() {
		if t.ActionProfile != "" && s.IsReachable(graph.KindTable, t.Name) {
			used[t.ActionProfile] = true
		}
	}
	for ap := range s.ActionProfiles.All() {
		if used[ap.Name] || s.opts.KeepUnreachable {
			s.addInstance(s.conv.ConvertActionProfile(s, ap))
		}
	}
}
