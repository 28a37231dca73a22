package convert

import (
	"log/slog"

	"github.com/kmateuszssak/p4c/internal/graph"
	"github.com/kmateuszssak/p4c/ir"
	"github.com/kmateuszssak/p4c/legacy"
)

// controlLocals accumulates the declarations of one control in the order
// they must appear: direct instances, actions, tables, then instances of
// called controls.
type controlLocals struct {
	instances []ir.Declaration
	actions   []ir.Declaration
	tables    []ir.Declaration
	controls  []ir.Declaration
	seen      map[string]bool
	// calls maps a called legacy control to its local instance.
	calls map[string]string
}

func newControlLocals() *controlLocals {
	return &controlLocals{seen: make(map[string]bool), calls: make(map[string]string)}
}

func (l *controlLocals) add(list *[]ir.Declaration, d ir.Declaration) {
	if l.seen[d.DeclName()] {
		return
	}
	l.seen[d.DeclName()] = true
	*list = append(*list, d)
}

func (l *controlLocals) all() []ir.Declaration {
	out := make([]ir.Declaration, 0, len(l.instances)+len(l.actions)+len(l.tables)+len(l.controls))
	out = append(out, l.instances...)
	out = append(out, l.actions...)
	out = append(out, l.tables...)
	return append(out, l.controls...)
}

func (s *Structure) controlParams() []*ir.Parameter {
	m := s.model
	return []*ir.Parameter{
		{Name: m.HeadersParam, Direction: ir.DirInOut, Type: &ir.TypeName{Name: m.HeadersType}},
		{Name: m.MetadataParam, Direction: ir.DirInOut, Type: &ir.TypeName{Name: m.MetadataType}},
		{Name: m.StandardMetadata, Direction: ir.DirInOut, Type: &ir.TypeName{Name: m.StandardType}},
	}
}

// ConvertControl converts a control function into a control block whose
// locals are the actions, tables and instances its body uses.
func (DefaultConverter) ConvertControl(s *Structure, c *legacy.Control) *ir.Control {
	s.setBlockContext()
	locals := newControlLocals()
	ctl := &ir.Control{
		Name:        s.Controls.Name(c),
		Annotations: ir.Annotations{ir.GlobalNameAnnotation(c.Name)},
		Params:      s.controlParams(),
		Body:        ir.NewBlock(s.controlBody(locals, c.Body)...),
	}
	if s.opts.KeepUnreachable && c.Name == s.opts.Ingress {
		s.declareOrphans(locals)
	}
	ctl.Locals = locals.all()
	return ctl
}

func (s *Structure) controlBody(locals *controlLocals, body []legacy.Statement) []ir.Statement {
	out := make([]ir.Statement, 0, len(body))
	for _, stmt := range body {
		out = append(out, s.controlStatement(locals, stmt))
	}
	return out
}

func (s *Structure) controlStatement(locals *controlLocals, stmt legacy.Statement) ir.Statement {
	switch st := stmt.(type) {
	case *legacy.Apply:
		return s.applyTable(locals, st)
	case *legacy.If:
		out := &ir.IfStatement{
			Cond: s.Expr(st.Cond),
			Then: ir.NewBlock(s.controlBody(locals, st.Then)...),
		}
		if len(st.Else) > 0 {
			out.Else = ir.NewBlock(s.controlBody(locals, st.Else)...)
		}
		return out
	case *legacy.CallControl:
		callee, ok := s.Controls.Lookup(st.Control)
		if !ok {
			bug(st, "call of unknown control %q", st.Control)
		}
		inst, ok := locals.calls[callee.Name]
		if !ok {
			inst = s.MakeUniqueName(s.Controls.Name(callee))
			locals.calls[callee.Name] = inst
			locals.add(&locals.controls, &ir.DeclarationInstance{
				Name: inst,
				Type: &ir.TypeName{Name: s.Controls.Name(callee)},
			})
		}
		m := s.model
		return ir.CallStatement(ir.Call(ir.NewPath(inst), "apply",
			ir.NewPath(m.HeadersParam), ir.NewPath(m.MetadataParam), ir.NewPath(m.StandardMetadata)))
	default:
		bug(stmt, "unexpected control statement")
		return nil
	}
}

// applyTable declares the table and its actions in the control and
// converts the apply in its plain, hit/miss or action-switch form.
func (s *Structure) applyTable(locals *controlLocals, st *legacy.Apply) ir.Statement {
	t, ok := s.Tables.Lookup(st.Table)
	if !ok {
		bug(st, "apply of unknown table %q", st.Table)
	}
	info := s.declareTable(locals, t)

	apply := ir.Call(ir.NewPath(info.table.Name), "apply")
	switch {
	case st.HitMiss:
		hit := ir.NewMember(apply, "hit")
		if len(st.Hit) == 0 {
			return &ir.IfStatement{
				Cond: &ir.Unary{Op: "!", Expr: hit},
				Then: ir.NewBlock(s.controlBody(locals, st.Miss)...),
			}
		}
		out := &ir.IfStatement{Cond: hit, Then: ir.NewBlock(s.controlBody(locals, st.Hit)...)}
		if len(st.Miss) > 0 {
			out.Else = ir.NewBlock(s.controlBody(locals, st.Miss)...)
		}
		return out
	case len(st.Cases) > 0:
		sw := &ir.SwitchStatement{Expr: ir.NewMember(apply, "action_run")}
		for _, c := range st.Cases {
			body := ir.NewBlock(s.controlBody(locals, c.Body)...)
			if c.Default {
				sw.Cases = append(sw.Cases, &ir.SwitchCase{Label: &ir.DefaultExpression{}, Body: body})
				continue
			}
			for i, name := range c.Actions {
				out, ok := info.actionNames[name]
				if !ok {
					bug(st, "case %q is not an action of table %q", name, t.Name)
				}
				sc := &ir.SwitchCase{Label: ir.NewPath(out)}
				if i == len(c.Actions)-1 {
					sc.Body = body
				}
				sw.Cases = append(sw.Cases, sc)
			}
		}
		return sw
	default:
		return ir.CallStatement(apply)
	}
}

// declareTable adds the table, its direct instances and its actions to
// the control locals.
func (s *Structure) declareTable(locals *controlLocals, t *legacy.Table) *tableInfo {
	info := s.table(t)
	for _, d := range info.locals {
		locals.add(&locals.instances, d)
	}
	for _, a := range info.shared {
		s.addActionWithCallees(locals, a)
	}
	for i, act := range info.actions {
		for _, callee := range s.actionCallees(info.copiedFrom[i]) {
			locals.add(&locals.actions, s.action(callee))
		}
		locals.add(&locals.actions, act)
	}
	locals.add(&locals.tables, info.table)
	return info
}

// declareOrphans adds the tables no control applies and the actions
// nothing runs to the control locals, so unreachable objects survive
// when they are kept.
func (s *Structure) declareOrphans(locals *controlLocals) {
	tables, actions := s.orphans()
	for _, t := range tables {
		s.declareTable(locals, t)
	}
	for _, a := range actions {
		s.addActionWithCallees(locals, a)
	}
	if len(tables)+len(actions) > 0 {
		s.Log(slog.LevelDebug, "declared orphans in ingress",
			slog.Int("tables", len(tables)),
			slog.Int("actions", len(actions)))
	}
}

func (s *Structure) addActionWithCallees(locals *controlLocals, a *legacy.Action) {
	for _, callee := range s.actionCallees(a) {
		locals.add(&locals.actions, s.action(callee))
	}
	locals.add(&locals.actions, s.action(a))
}

// createControls converts the controls the entry controls reach, callees
// before callers. An absent egress control is replaced by an empty one.
func (s *Structure) createControls() {
	ingress, ok := s.Controls.Lookup(s.opts.Ingress)
	if !ok {
		bug(nil, "program has no %q control", s.opts.Ingress)
	}
	s.ingressName = s.Controls.Name(ingress)

	for _, c := range s.controlOrder() {
		if !s.IsReachable(graph.KindControl, c.Name) {
			continue
		}
		ctl := s.conv.ConvertControl(s, c)
		s.addBlock(ctl)
		s.Log(slog.LevelDebug, "control converted",
			slog.String("name", ctl.Name),
			slog.Int("locals", len(ctl.Locals)))
	}

	if egress, ok := s.Controls.Lookup(s.opts.Egress); ok {
		s.egressName = s.Controls.Name(egress)
		return
	}
	s.egressName = s.ClaimName(s.model.Egress)
	s.addBlock(&ir.Control{
		Name:   s.egressName,
		Params: s.controlParams(),
		Body:   ir.NewBlock(),
	})
	s.Log(slog.LevelDebug, "synthesized empty egress", slog.String("name", s.egressName))
}
