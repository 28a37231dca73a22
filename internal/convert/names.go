package convert

import (
	"iter"
	"log/slog"

	"github.com/kmateuszssak/p4c/internal/registry"
	"github.com/kmateuszssak/p4c/internal/v1model"
	"github.com/kmateuszssak/p4c/legacy"
)

// populateOutputNames reserves every name the output program introduces
// on its own, so no legacy object is given one of them.
func (s *Structure) populateOutputNames() {
	reserved := v1model.Reserved()
	s.names.Add(reserved...)
	if s.TraceEnabled() {
		s.Trace("reserved output names", slog.Int("count", len(reserved)))
	}
}

// registerObjects assigns an output name to every legacy object. The
// visitation order is fixed: parser states first so "start" keeps its
// name, then the entry controls, then the remaining categories.
func (s *Structure) registerObjects() {
	p := s.prog

	registerAll(s, s.States, legacy.Declarations[*legacy.ParserState](p))
	for _, entry := range []string{s.opts.Ingress, s.opts.Egress} {
		if c, ok := legacy.Find[*legacy.Control](p, entry); ok {
			register(s, s.Controls, c)
		}
	}
	registerAll(s, s.Types, legacy.Declarations[*legacy.HeaderType](p))
	registerAll(s, s.Headers, legacy.Declarations[*legacy.Header](p))
	registerAll(s, s.Stacks, legacy.Declarations[*legacy.HeaderStack](p))
	registerAll(s, s.Metadata, legacy.Declarations[*legacy.Metadata](p))
	registerAll(s, s.ValueSets, legacy.Declarations[*legacy.ValueSet](p))
	registerAll(s, s.ExternTypes, legacy.Declarations[*legacy.ExternType](p))
	registerAll(s, s.Externs, legacy.Declarations[*legacy.ExternInstance](p))
	registerAll(s, s.FieldLists, legacy.Declarations[*legacy.FieldList](p))
	registerAll(s, s.Calculations, legacy.Declarations[*legacy.FieldListCalculation](p))
	registerAll(s, s.Counters, legacy.Declarations[*legacy.Counter](p))
	registerAll(s, s.Meters, legacy.Declarations[*legacy.Meter](p))
	registerAll(s, s.Registers, legacy.Declarations[*legacy.Register](p))
	registerAll(s, s.Selectors, legacy.Declarations[*legacy.ActionSelector](p))
	registerAll(s, s.ActionProfiles, legacy.Declarations[*legacy.ActionProfile](p))
	registerAll(s, s.Actions, legacy.Declarations[*legacy.Action](p))
	registerAll(s, s.Tables, legacy.Declarations[*legacy.Table](p))
	registerAll(s, s.Controls, legacy.Declarations[*legacy.Control](p))

	for cf := range legacy.Declarations[*legacy.CalculatedField](p) {
		s.CalculatedFields = append(s.CalculatedFields, cf)
	}

	s.bindDirectInstances()
}

func registerAll[T registry.Named](s *Structure, r *registry.Registry[T], objs iter.Seq[T]) {
	for obj := range objs {
		register(s, r, obj)
	}
}

func register[T registry.Named](s *Structure, r *registry.Registry[T], obj T) {
	name := r.Register(obj)
	if s.TraceEnabled() {
		s.Trace("registered",
			slog.String("category", r.Category()),
			slog.String("name", obj.DeclName()),
			slog.String("output", name))
	}
}

// bindDirectInstances records which table each direct counter and meter
// belongs to.
func (s *Structure) bindDirectInstances() {
	for c := range s.Counters.All() {
		if c.Direct == "" {
			continue
		}
		if !s.Tables.Contains(c.Direct) {
			bug(c, "direct counter bound to unknown table %q", c.Direct)
		}
		if prev, dup := s.directCounters[c.Direct]; dup {
			bug(c, "table %q already has direct counter %q", c.Direct, prev.Name)
		}
		s.directCounters[c.Direct] = c
	}
	for m := range s.Meters.All() {
		if m.Direct == "" {
			continue
		}
		if !s.Tables.Contains(m.Direct) {
			bug(m, "direct meter bound to unknown table %q", m.Direct)
		}
		if prev, dup := s.directMeters[m.Direct]; dup {
			bug(m, "table %q already has direct meter %q", m.Direct, prev.Name)
		}
		s.directMeters[m.Direct] = m
	}
}

// renames lists every object whose output name differs from its legacy
// name, category by category in registration order.
func (s *Structure) renames() []Rename {
	var out []Rename
	out = appendRenames(out, s.States)
	out = appendRenames(out, s.Types)
	out = appendRenames(out, s.Headers)
	out = appendRenames(out, s.Stacks)
	out = appendRenames(out, s.Metadata)
	out = appendRenames(out, s.ValueSets)
	out = appendRenames(out, s.ExternTypes)
	out = appendRenames(out, s.Externs)
	out = appendRenames(out, s.FieldLists)
	out = appendRenames(out, s.Calculations)
	out = appendRenames(out, s.Counters)
	out = appendRenames(out, s.Meters)
	out = appendRenames(out, s.Registers)
	out = appendRenames(out, s.Selectors)
	out = appendRenames(out, s.ActionProfiles)
	out = appendRenames(out, s.Actions)
	out = appendRenames(out, s.Tables)
	out = appendRenames(out, s.Controls)
	return out
}

func appendRenames[T registry.Named](out []Rename, r *registry.Registry[T]) []Rename {
	for obj, name := range r.All() {
		if name != obj.DeclName() {
			out = append(out, Rename{Category: r.Category(), Original: obj.DeclName(), Name: name})
		}
	}
	return out
}
