package loader

import (
	"errors"
	"testing"

	"github.com/kmateuszssak/p4c/internal/testutil"
	"github.com/kmateuszssak/p4c/legacy"
)

func loadFixture(t *testing.T) *legacy.Program {
	t.Helper()
	prog, err := Load(testutil.ReadFixture(t, "router.yaml"), "router.yaml")
	testutil.NoError(t, err, "load router.yaml")
	return prog
}

func find[T legacy.Declaration](t *testing.T, p *legacy.Program, name string) T {
	t.Helper()
	d, ok := legacy.Find[T](p, name)
	testutil.True(t, ok, "declaration %s", name)
	return d
}

func TestLoadOrderAndSpans(t *testing.T) {
	prog := loadFixture(t)
	testutil.Equal(t, "router", prog.Name)
	testutil.Len(t, prog.Decls, 25, "declarations")

	first, ok := prog.Decls[0].(*legacy.HeaderType)
	testutil.True(t, ok, "first declaration is a header type")
	testutil.Equal(t, "ethernet_t", first.Name)
	testutil.Equal(t, legacy.Span{File: "router.yaml", Line: 4, Column: 5}, first.Span)

	_, ok = prog.Decls[len(prog.Decls)-1].(*legacy.CalculatedField)
	testutil.True(t, ok, "sections keep document order")
}

func TestLoadHeaderTypes(t *testing.T) {
	prog := loadFixture(t)
	ipv4 := find[*legacy.HeaderType](t, prog, "ipv4_t")
	testutil.Equal(t, 60, ipv4.MaxLength)
	testutil.True(t, ipv4.HasVarbit(), "options is varbit")
	f, _ := ipv4.Field("options")
	testutil.Equal(t, "varbit<320>", f.Type.String())

	stack := find[*legacy.HeaderStack](t, prog, "vlan")
	testutil.Equal(t, 2, stack.Size)

	meta := find[*legacy.Metadata](t, prog, "m")
	testutil.Len(t, meta.Initializer, 1)
	testutil.Equal(t, "color", meta.Initializer[0].Field)
	testutil.Equal(t, "0", meta.Initializer[0].Value.String())
}

func TestLoadParserStates(t *testing.T) {
	prog := loadFixture(t)
	start := find[*legacy.ParserState](t, prog, "start")

	testutil.Len(t, start.Stmts, 1)
	testutil.Equal(t, "extract", start.Stmts[0].Name)
	_, ok := start.Stmts[0].Operands[0].(*legacy.ConcreteHeaderRef)
	testutil.True(t, ok, "extract operand is a header reference")

	testutil.Equal(t, "latest.etherType", start.Select[0].String())
	testutil.Len(t, start.Cases, 3)
	testutil.Equal(t, "0x8100", start.Cases[0].Values[0].Value.String())
	testutil.Equal(t, "0xffff", start.Cases[1].Values[0].Mask.String())
	testutil.True(t, start.Cases[2].Default, "default case")
	testutil.SliceEqual(t, []string{"parse_vlan", "parse_ipv4", "ingress"}, start.Targets())

	vlan := find[*legacy.ParserState](t, prog, "parse_vlan")
	testutil.Equal(t, "vlan[next]", vlan.Stmts[0].Operands[0].String())

	ipv4 := find[*legacy.ParserState](t, prog, "parse_ipv4")
	testutil.Equal(t, "ingress", ipv4.Return)
	testutil.Equal(t, "set_metadata", ipv4.Stmts[1].Name)
	testutil.Equal(t, 57, ipv4.Stmts[1].Span.Line)
}

func TestLoadActionsAndTables(t *testing.T) {
	prog := loadFixture(t)

	setNhop := find[*legacy.Action](t, prog, "set_nhop")
	testutil.Equal(t, "bit<16>", setNhop.Params[0].Type.String())
	testutil.Len(t, setNhop.Body, 2)
	testutil.Equal(t, "subtract_from_field", setNhop.Body[1].Name)

	countIt := find[*legacy.Action](t, prog, "count_it")
	testutil.True(t, countIt.Params[0].Type == nil, "untyped param left for inference")
	_, ok := countIt.Body[0].Operands[0].(*legacy.PathExpression)
	testutil.True(t, ok, "counter operand is a path")

	fwd := find[*legacy.Table](t, prog, "fwd")
	testutil.Len(t, fwd.Reads, 2)
	testutil.Equal(t, legacy.MatchLPM, fwd.Reads[0].Match)
	_, ok = fwd.Reads[1].Expr.(*legacy.HeaderStackItemRef)
	testutil.True(t, ok, "valid key on a stack element")
	testutil.Equal(t, "set_nhop", fwd.DefaultAction)
	testutil.Equal(t, "16w1", fwd.DefaultArgs[0].String())
	testutil.Equal(t, 1024, fwd.Size)

	acl := find[*legacy.Table](t, prog, "acl")
	testutil.Equal(t, "0xff", acl.Reads[0].Mask.String())
}

func TestLoadControls(t *testing.T) {
	prog := loadFixture(t)
	ingress := find[*legacy.Control](t, prog, "ingress")
	testutil.Len(t, ingress.Body, 1)

	cond, ok := ingress.Body[0].(*legacy.If)
	testutil.True(t, ok, "if statement")
	testutil.Equal(t, "(valid(ipv4) && (ipv4.ttl > 1))", cond.Cond.String())

	hit, ok := cond.Then[0].(*legacy.Apply)
	testutil.True(t, ok, "apply in then branch")
	testutil.True(t, hit.HitMiss, "hit/miss form")
	testutil.Len(t, hit.Hit, 1)
	testutil.Len(t, hit.Miss, 0)

	call, ok := cond.Then[1].(*legacy.CallControl)
	testutil.True(t, ok, "call statement")
	testutil.Equal(t, "stats", call.Control)

	sw, ok := cond.Else[0].(*legacy.Apply)
	testutil.True(t, ok, "apply in else branch")
	testutil.False(t, sw.HitMiss, "action-case form")
	testutil.Len(t, sw.Cases, 2)
	testutil.SliceEqual(t, []string{"do_drop"}, sw.Cases[0].Actions)
	testutil.True(t, sw.Cases[1].Default, "default case")
}

func TestLoadStatefulAndChecksums(t *testing.T) {
	prog := loadFixture(t)

	hits := find[*legacy.Counter](t, prog, "hits")
	testutil.Equal(t, legacy.CounterPacketsAndBytes, hits.Kind)
	testutil.Equal(t, "fwd", hits.Direct)

	policer := find[*legacy.Meter](t, prog, "policer")
	testutil.Equal(t, "m.color", policer.Result.String())

	seen := find[*legacy.Register](t, prog, "seen")
	testutil.Equal(t, 32, seen.Width)
	testutil.Equal(t, 128, seen.Instances)

	list := find[*legacy.FieldList](t, prog, "ipv4_checksum_list")
	testutil.True(t, list.Payload, "payload flag")
	testutil.Len(t, list.Fields, 2)

	calc := find[*legacy.FieldListCalculation](t, prog, "ipv4_checksum")
	testutil.SliceEqual(t, []string{"csum16"}, calc.Algorithms)

	cf := find[*legacy.CalculatedField](t, prog, "ipv4.hdrChecksum")
	testutil.Len(t, cf.Specs, 2)
	testutil.False(t, cf.Specs[0].Update, "verify first")
	testutil.Equal(t, "valid(ipv4)", cf.Specs[0].Cond.String())
	testutil.True(t, cf.Specs[1].Update, "update second")
	testutil.True(t, cf.Specs[1].Cond == nil, "unconditional update")
}

func TestLoadJSON(t *testing.T) {
	prog, err := LoadFile(testutil.FixturePath(t, "router.json"))
	testutil.NoError(t, err)
	testutil.Equal(t, "router", prog.Name, "name taken from the file")
	testutil.Len(t, prog.Decls, 6)

	nop := find[*legacy.Action](t, prog, "nop")
	testutil.Equal(t, "no_op", nop.Body[0].Name)
	testutil.Len(t, nop.Body[0].Operands, 0)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"unknown section", "routes: []\n", "schema validation failed"},
		{"bad match kind", "tables:\n  - {name: t, reads: [{field: a, match: fuzzy}]}\n", "schema validation failed"},
		{"missing name", "headers:\n  - {type: eth_t}\n", "schema validation failed"},
		{"bad identifier", "actions:\n  - {name: 1abc}\n", "schema validation failed"},
		{"bad expression", "actions:\n  - name: a\n    body: [\"modify_field(x,\"]\n", "bad.yaml:3:12"},
		{"width and layout", "registers:\n  - {name: r, width: 8, layout: h_t}\n", "exactly one of width and layout"},
		{"field without width", "header_types:\n  - name: h_t\n    fields: [{name: f}]\n", "exactly one of width and varbit"},
		{"select and return", "parser_states:\n  - {name: s, select: [a], cases: [{default: true, next: x}], return: y}\n", "both select and return"},
		{"not a mapping", "- a\n- b\n", "top level must be a mapping"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.src), "bad.yaml")
			testutil.ErrorContains(t, err, tt.want)
			testutil.True(t, errors.Is(err, ErrInvalid), "wraps ErrInvalid: %v", err)
		})
	}
}

func TestLoadSchemaErrorDetails(t *testing.T) {
	_, err := Load([]byte("counters:\n  - {name: c, type: octets}\n"), "bad.yaml")
	var se *SchemaError
	testutil.True(t, errors.As(err, &se), "schema error")
	testutil.True(t, len(se.Violations) > 0, "violations listed")
}

func TestLoadEmpty(t *testing.T) {
	_, err := Load(nil, "empty.yaml")
	testutil.True(t, errors.Is(err, ErrEmpty), "empty description")
}

func TestLoadSyntaxError(t *testing.T) {
	_, err := Load([]byte("headers: [\n"), "broken.yaml")
	testutil.ErrorContains(t, err, "decoding broken.yaml")
}
