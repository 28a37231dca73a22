package convert

import (
	"log/slog"

	"github.com/kmateuszssak/p4c/internal/v1model"
	"github.com/kmateuszssak/p4c/ir"
	"github.com/kmateuszssak/p4c/legacy"
)

// Run converts prog. Malformed input aborts the whole conversion with an
// error matching ErrInvariant; no partial program is returned.
func Run(prog *legacy.Program, opts Options) (res *Result, err error) {
	defer recoverBug(&err)
	checkNull(prog, "program")

	s := newStructure(prog, opts)
	return s.run(), nil
}

func (s *Structure) run() *Result {
	s.Log(slog.LevelDebug, "starting phase", slog.String("phase", "names"))
	s.populateOutputNames()
	s.registerObjects()
	s.Log(slog.LevelDebug, "phase complete", slog.String("phase", "names"),
		slog.Int("names", s.names.Len()))

	s.Log(slog.LevelDebug, "starting phase", slog.String("phase", "graphs"))
	s.buildCallGraphs()
	unreachable := s.computeReachability()

	s.Log(slog.LevelDebug, "starting phase", slog.String("phase", "types"))
	s.createTypes()
	s.createExterns()
	s.Log(slog.LevelDebug, "phase complete", slog.String("phase", "types"),
		slog.Int("types", len(s.typeDecls)),
		slog.Int("extern_types", len(s.externDecls)))

	s.Log(slog.LevelDebug, "starting phase", slog.String("phase", "instances"))
	s.createStatefulInstances()
	s.createActionProfiles()
	s.Log(slog.LevelDebug, "phase complete", slog.String("phase", "instances"),
		slog.Int("instances", len(s.instanceDecls)))

	s.Log(slog.LevelDebug, "starting phase", slog.String("phase", "blocks"))
	s.createParser()
	s.createChecksum(false)
	s.createControls()
	s.createChecksum(true)
	s.createDeparser()
	s.createMain()
	s.conversionContext.Clear()
	s.Log(slog.LevelDebug, "phase complete", slog.String("phase", "blocks"),
		slog.Int("blocks", len(s.blocks)))

	prog := s.assemble()
	res := &Result{
		Program:        prog,
		Renames:        s.renames(),
		VarbitExtracts: s.extractsSynthesized,
		Calls:          s.calls,
		Unreachable:    unreachable,
	}
	s.Log(slog.LevelInfo, "conversion complete",
		slog.Int("declarations", len(prog.Declarations)),
		slog.Int("renamed", len(res.Renames)),
		slog.Int("unreachable", len(unreachable)))
	return res
}

// createMain instantiates the V1Switch package with the converted blocks.
func (s *Structure) createMain() {
	m := s.model
	block := func(name string) ir.Expression {
		return &ir.ConstructorCall{Type: &ir.TypeName{Name: name}}
	}
	s.addBlock(&ir.DeclarationInstance{
		Name: m.Main,
		Type: &ir.TypeName{Name: m.Package},
		Args: []ir.Expression{
			block(m.Parser),
			block(m.VerifyChecksum),
			block(s.ingressName),
			block(s.egressName),
			block(m.ComputeChecksum),
			block(m.Deparser),
		},
	})
}

// assemble lays out the program: includes, types, extern types, global
// instances, then the blocks in creation order.
func (s *Structure) assemble() *ir.Program {
	libs := v1model.Libraries()
	prog := &ir.Program{Declarations: make([]ir.Declaration, 0,
		len(libs)+len(s.typeDecls)+len(s.externDecls)+len(s.instanceDecls)+len(s.blocks))}
	for _, lib := range libs {
		prog.Declarations = append(prog.Declarations, &ir.Include{File: lib.File()})
	}
	prog.Declarations = append(prog.Declarations, s.typeDecls...)
	prog.Declarations = append(prog.Declarations, s.externDecls...)
	prog.Declarations = append(prog.Declarations, s.instanceDecls...)
	prog.Declarations = append(prog.Declarations, s.blocks...)
	return prog
}
