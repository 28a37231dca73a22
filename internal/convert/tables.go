package convert

import (
	"log/slog"

	"github.com/kmateuszssak/p4c/ir"
	"github.com/kmateuszssak/p4c/legacy"
)

const noAction = "NoAction"

// tableInfo is everything a control needs to declare and apply a table.
type tableInfo struct {
	table *ir.Table
	// locals are the direct counter and meter bound to the table.
	locals []ir.Declaration
	// actions are the table's private action copies, empty when the table
	// shares the common conversions.
	actions    []*ir.Action
	copiedFrom []*legacy.Action
	// shared are the legacy actions the table uses unchanged.
	shared []*legacy.Action
	// actionNames maps each legacy action to the name the table lists.
	actionNames map[string]string
}

// table returns the converted table, converting it on first use.
func (s *Structure) table(t *legacy.Table) *tableInfo {
	if info, ok := s.tableInfos[t]; ok {
		return info
	}
	info := &tableInfo{actionNames: make(map[string]string)}
	counter, hasCounter := s.directCounters[t.Name]
	meter, hasMeter := s.directMeters[t.Name]
	if hasCounter {
		info.locals = append(info.locals, s.conv.ConvertCounter(s, counter))
	}
	if hasMeter {
		info.locals = append(info.locals, s.conv.ConvertMeter(s, meter))
	}

	for _, name := range s.tableActionNames(t) {
		a, ok := s.Actions.Lookup(name)
		if !ok {
			bug(t, "unknown action %q", name)
		}
		if _, dup := info.actionNames[name]; dup {
			continue
		}
		if !hasCounter && !hasMeter {
			info.shared = append(info.shared, a)
			info.actionNames[name] = s.action(a).Name
			continue
		}
		act := s.actionCopy(a, s.directUpdates(counter, meter))
		info.actions = append(info.actions, act)
		info.copiedFrom = append(info.copiedFrom, a)
		info.actionNames[name] = act.Name
	}

	info.table = s.conv.ConvertTable(s, t, info.actionNames)
	s.tableInfos[t] = info
	if s.TraceEnabled() {
		s.Trace("converted table", slog.String("name", info.table.Name),
			slog.Int("actions", len(info.actionNames)),
			slog.Bool("copies", len(info.actions) > 0))
	}
	return info
}

// directUpdates returns the statements appended to every action of a
// table with direct instances: the counter update first, then the meter
// read into its result field.
func (s *Structure) directUpdates(counter *legacy.Counter, meter *legacy.Meter) []ir.Statement {
	var out []ir.Statement
	if counter != nil {
		out = append(out, ir.CallStatement(ir.Call(ir.NewPath(s.Counters.Name(counter)), "count")))
	}
	if meter != nil {
		result := checkNull(meter.Result, "result of direct meter "+meter.Name)
		out = append(out, ir.CallStatement(ir.Call(ir.NewPath(s.Meters.Name(meter)), "read", s.Expr(result))))
	}
	return out
}

// ConvertTable converts a table. actionNames maps the legacy actions the
// table may run to their output names.
func (DefaultConverter) ConvertTable(s *Structure, t *legacy.Table, actionNames map[string]string) *ir.Table {
	tbl := &ir.Table{
		Name:        s.Tables.Name(t),
		Annotations: ir.Annotations{ir.GlobalNameAnnotation(t.Name)},
	}
	prop := func(name string, v ir.PropertyValue) {
		tbl.Properties = append(tbl.Properties, &ir.Property{Name: name, Value: v})
	}

	if key := s.tableKey(t); len(key.Elements) > 0 {
		prop("key", key)
	}

	list := &ir.ActionList{}
	for _, name := range s.tableActionNames(t) {
		out := actionNames[name]
		if listed(list, out) {
			continue
		}
		list.Elements = append(list.Elements, &ir.ActionListElement{Expr: ir.NewPath(out)})
	}
	if t.DefaultAction == "" {
		list.Elements = append(list.Elements, &ir.ActionListElement{
			Annotations: ir.Annotations{{Name: "defaultonly"}},
			Expr:        ir.NewPath(noAction),
		})
	}
	prop("actions", list)

	if t.DefaultAction != "" {
		prop("default_action", &ir.ExpressionValue{Expr: s.defaultAction(t, actionNames)})
	} else {
		prop("default_action", &ir.ExpressionValue{Expr: &ir.MethodCall{Method: ir.NewPath(noAction)}})
	}

	if size := tableSize(t); size > 0 {
		prop("size", &ir.ExpressionValue{Expr: ir.NewConstant(int64(size))})
	}
	if t.SupportTimeout {
		prop("support_timeout", &ir.ExpressionValue{Expr: &ir.BoolLiteral{Value: true}})
	}
	if t.ActionProfile != "" {
		ap, _ := s.ActionProfiles.Lookup(t.ActionProfile)
		prop("implementation", &ir.ExpressionValue{Expr: ir.NewPath(s.ActionProfiles.Name(ap))})
	}
	if c, ok := s.directCounters[t.Name]; ok {
		prop("counters", &ir.ExpressionValue{Expr: ir.NewPath(s.Counters.Name(c))})
	}
	if m, ok := s.directMeters[t.Name]; ok {
		prop("meters", &ir.ExpressionValue{Expr: ir.NewPath(s.Meters.Name(m))})
	}
	return tbl
}

func listed(list *ir.ActionList, name string) bool {
	for _, e := range list.Elements {
		if pe, ok := e.Expr.(*ir.PathExpression); ok && pe.Name == name {
			return true
		}
	}
	return false
}

func tableSize(t *legacy.Table) int {
	if t.Size > 0 {
		return t.Size
	}
	return t.MaxSize
}

// tableKey converts the reads clause and, for tables behind an action
// selector, appends the selection fields.
func (s *Structure) tableKey(t *legacy.Table) *ir.Key {
	key := &ir.Key{}
	for _, r := range t.Reads {
		el := &ir.KeyElement{
			Annotations: ir.Annotations{ir.NameAnnotation(r.Expr.String())},
			MatchType:   string(r.Match),
		}
		switch {
		case r.Match == legacy.MatchValid:
			el.Expr = ir.Call(s.Expr(r.Expr), "isValid")
			el.MatchType = string(legacy.MatchExact)
		case r.Mask != nil:
			el.Expr = &ir.Binary{Op: "&", Left: s.Expr(r.Expr), Right: s.sized(r.Mask, s.widthOf(r.Expr))}
		default:
			el.Expr = s.Expr(r.Expr)
		}
		key.Elements = append(key.Elements, el)
	}

	if t.ActionProfile == "" {
		return key
	}
	ap, ok := s.ActionProfiles.Lookup(t.ActionProfile)
	if !ok {
		bug(t, "unknown action profile %q", t.ActionProfile)
	}
	if ap.Selector == "" {
		return key
	}
	for _, f := range s.selector(ap.Selector, ap).Fields {
		key.Elements = append(key.Elements, &ir.KeyElement{
			Annotations: ir.Annotations{ir.NameAnnotation(f.String())},
			Expr:        s.Expr(f),
			MatchType:   "selector",
		})
	}
	return key
}

// defaultAction converts the default action call, sizing constant
// arguments to the action's parameter widths.
func (s *Structure) defaultAction(t *legacy.Table, actionNames map[string]string) ir.Expression {
	a, ok := s.Actions.Lookup(t.DefaultAction)
	if !ok {
		bug(t, "unknown default action %q", t.DefaultAction)
	}
	name, ok := actionNames[t.DefaultAction]
	if !ok {
		bug(t, "default action %q is not one of the table's actions", t.DefaultAction)
	}
	if len(t.DefaultArgs) != len(a.Params) {
		bug(t, "default action %q takes %d arguments, got %d", a.Name, len(a.Params), len(t.DefaultArgs))
	}
	call := &ir.MethodCall{Method: ir.NewPath(name)}
	for i, arg := range t.DefaultArgs {
		call.Args = append(call.Args, s.sized(arg, s.paramWidth(a, a.Params[i])))
	}
	return call
}
