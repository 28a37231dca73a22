package convert

import (
	"bytes"
	"log/slog"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmateuszssak/p4c/internal/graph"
	"github.com/kmateuszssak/p4c/ir"
	"github.com/kmateuszssak/p4c/legacy"
)

func convert(t *testing.T, p *legacy.Program, opts Options) (*Result, string) {
	t.Helper()
	res, err := Run(p, opts)
	require.NoError(t, err)
	require.NotNil(t, res)
	return res, res.Program.String()
}

func assertOrdered(t *testing.T, out string, parts ...string) {
	t.Helper()
	last := -1
	for _, part := range parts {
		i := strings.Index(out, part)
		require.GreaterOrEqual(t, i, 0, "missing %q", part)
		assert.Greater(t, i, last, "%q out of order", part)
		last = i
	}
}

func TestRunRouter(t *testing.T) {
	res, out := convert(t, router(), Options{})

	for _, want := range []string{
		"#include <core.p4>\n#include <v1model.p4>\n",
		"header ethernet_t {\n    bit<48> dstAddr;",
		"struct metadata {\n    @name(\".m\") meta_t m;\n}",
		"struct headers {\n    @name(\".ethernet\") ethernet_t ethernet;\n    @name(\".ipv4\") ipv4_t ipv4;\n}",
		"parser ParserImpl(packet_in packet, out headers hdr, inout metadata meta, inout standard_metadata_t standard_metadata) {",
		"        packet.extract(hdr.ethernet);",
		"        transition select(hdr.ethernet.etherType) {",
		"            16w0x800: parse_ipv4;",
		"            default: accept;",
		"control ingress(inout headers hdr, inout metadata meta, inout standard_metadata_t standard_metadata) {",
		"    action set_nhop(bit<16> nhop) {\n        meta.m.nexthop = nhop;\n    }",
		"        mark_to_drop(standard_metadata);",
		"    table fwd {",
		"            hdr.ipv4.dstAddr: lpm @name(\"ipv4.dstAddr\");",
		"            set_nhop;\n            do_drop;\n            @defaultonly NoAction;",
		"        default_action = NoAction();",
		"        size = 1024;",
		"    apply {\n        fwd.apply();\n    }",
		"control egress(inout headers hdr, inout metadata meta, inout standard_metadata_t standard_metadata) {",
		"control verifyChecksum(inout headers hdr, inout metadata meta) {",
		"control DeparserImpl(packet_out packet, in headers hdr) {",
		"        packet.emit(hdr.ethernet);\n        packet.emit(hdr.ipv4);",
		"V1Switch(ParserImpl(), verifyChecksum(), ingress(), egress(), computeChecksum(), DeparserImpl()) main;",
	} {
		assert.Contains(t, out, want)
	}

	assertOrdered(t, out,
		"header ethernet_t", "struct meta_t", "struct metadata", "struct headers",
		"parser ParserImpl", "control verifyChecksum", "control ingress", "control egress",
		"control computeChecksum", "control DeparserImpl", ") main;")

	assert.Empty(t, res.Renames)
	assert.Empty(t, res.Unreachable)
	assert.Empty(t, res.VarbitExtracts)
}

// withStats adds a counter and a table that share the name "stats".
func withStats(p *legacy.Program) *legacy.Program {
	p.Decls = append(p.Decls,
		&legacy.Counter{DeclBase: base("stats"), Kind: legacy.CounterPackets, Instances: 16},
		&legacy.Action{DeclBase: base("count_it"), Body: []*legacy.Primitive{prim("count", path("stats"), num(0))}},
		&legacy.Table{DeclBase: base("stats"), Actions: []string{"count_it"}},
	)
	ingress := find[*legacy.Control](p, "ingress")
	ingress.Body = append(ingress.Body, &legacy.Apply{Table: "stats"})
	return p
}

func TestRunNameCollision(t *testing.T) {
	res, out := convert(t, withStats(router()), Options{})

	assert.Equal(t, []Rename{{Category: "table", Original: "stats", Name: "stats_0"}}, res.Renames)
	assert.Contains(t, out, "counter(32w16, CounterType.packets) stats;")
	assert.Contains(t, out, "    @name(\".stats\")\n    table stats_0 {")
	assert.Contains(t, out, "        stats.count(32w0);")
	assert.Contains(t, out, "        stats_0.apply();")
}

func TestRunDeterministic(t *testing.T) {
	_, first := convert(t, withStats(router()), Options{})
	_, second := convert(t, withStats(router()), Options{})
	assert.Equal(t, first, second)
}

func TestRunHeaderCacheIdentity(t *testing.T) {
	p := router()
	kept := p.Decls[:0]
	for _, d := range p.Decls {
		if _, ok := d.(*legacy.ParserState); !ok {
			kept = append(kept, d)
		}
	}
	p.Decls = append(kept,
		&legacy.ParserState{
			DeclBase: base("start"),
			Select:   []legacy.Expression{&legacy.Current{Offset: 96, Width: 16}},
			Cases: []*legacy.SelectCase{
				{Values: []legacy.CaseValue{{Value: hex(0x800)}}, Target: "parse_a"},
				{Default: true, Target: "parse_b"},
			},
		},
		&legacy.ParserState{
			DeclBase: base("parse_a"),
			Stmts:    []*legacy.Primitive{prim("extract", ref("ethernet"))},
			Return:   "ingress",
		},
		&legacy.ParserState{
			DeclBase: base("parse_b"),
			Stmts:    []*legacy.Primitive{prim("extract", ref("ethernet"))},
			Return:   "ingress",
		},
	)

	res, out := convert(t, p, Options{})
	assert.Contains(t, out, "transition select(packet.lookahead<bit<112>>()[15:0]) {")

	parser, ok := res.Program.Lookup("ParserImpl").(*ir.Parser)
	require.True(t, ok)
	var extracts []*ir.MethodCall
	for _, call := range ir.Collect[*ir.MethodCall](parser) {
		if m, ok := call.Method.(*ir.Member); ok && m.Member == "extract" {
			extracts = append(extracts, call)
		}
	}
	require.Len(t, extracts, 2)
	assert.Same(t, extracts[0].Args[0], extracts[1].Args[0])

	deparser, ok := res.Program.Lookup("DeparserImpl").(*ir.Control)
	require.True(t, ok)
	emits := ir.Collect[*ir.MethodCall](deparser)
	require.NotEmpty(t, emits)
	assert.Same(t, extracts[0].Args[0], emits[0].Args[0])
}

func TestRunHeaderStackCache(t *testing.T) {
	p := router()
	p.Decls = append(p.Decls,
		headerType("vlan_t", field("vid", 12), field("etherType", 16)),
		&legacy.HeaderStack{DeclBase: base("vlan"), Type: "vlan_t", Size: 2},
		&legacy.ParserState{
			DeclBase: base("parse_vlan"),
			Stmts:    []*legacy.Primitive{prim("extract", item("vlan", path("next")))},
			Return:   "parse_inner",
		},
		&legacy.ParserState{
			DeclBase: base("parse_inner"),
			Stmts:    []*legacy.Primitive{prim("extract", item("vlan", num(1)))},
			Return:   "parse_again",
		},
		&legacy.ParserState{
			DeclBase: base("parse_again"),
			Stmts:    []*legacy.Primitive{prim("extract", item("vlan", num(1)))},
			Return:   "ingress",
		},
	)
	start := find[*legacy.ParserState](p, "start")
	start.Cases = append([]*legacy.SelectCase{
		{Values: []legacy.CaseValue{{Value: hex(0x8100)}}, Target: "parse_vlan"},
	}, start.Cases...)

	res, out := convert(t, p, Options{})
	assert.Contains(t, out, "        packet.extract(hdr.vlan.next);")
	assert.Contains(t, out, "        packet.extract(hdr.vlan[1]);")
	assert.Contains(t, out, "    @name(\".vlan\") vlan_t[2] vlan;")

	parser, ok := res.Program.Lookup("ParserImpl").(*ir.Parser)
	require.True(t, ok)
	var elems []*ir.ArrayIndex
	var cursor *ir.Member
	for _, call := range ir.Collect[*ir.MethodCall](parser) {
		m, ok := call.Method.(*ir.Member)
		if !ok || m.Member != "extract" {
			continue
		}
		switch arg := call.Args[0].(type) {
		case *ir.ArrayIndex:
			elems = append(elems, arg)
		case *ir.Member:
			if arg.Member == "next" {
				cursor = arg
			}
		}
	}
	require.Len(t, elems, 2)
	assert.Same(t, elems[0], elems[1])
	require.NotNil(t, cursor)
	assert.Same(t, elems[0].Left, cursor.Expr)

	deparser, ok := res.Program.Lookup("DeparserImpl").(*ir.Control)
	require.True(t, ok)
	var emitted ir.Expression
	for _, call := range ir.Collect[*ir.MethodCall](deparser) {
		if ir.ExprString(call.Args[0]) == "hdr.vlan" {
			emitted = call.Args[0]
		}
	}
	require.NotNil(t, emitted)
	assert.Same(t, elems[0].Left, emitted)
}

func TestRunExtractNonHeader(t *testing.T) {
	p := router()
	find[*legacy.ParserState](p, "parse_ipv4").Stmts = []*legacy.Primitive{prim("extract", ref("m"))}

	_, err := Run(p, Options{})
	require.ErrorIs(t, err, ErrInvariant)
	assert.Contains(t, err.Error(), "extract target is not a header")
}

func TestHeaderReferenceNeedsContext(t *testing.T) {
	s := newStructure(router(), Options{})
	s.populateOutputNames()
	s.registerObjects()

	convertRef := func(e legacy.Expression) (out string, err error) {
		defer recoverBug(&err)
		return ir.ExprString(s.Expr(e)), nil
	}

	_, err := convertRef(fld("ipv4", "ttl"))
	assert.ErrorIs(t, err, ErrInvariant)

	s.setBlockContext()
	got, err := convertRef(fld("ipv4", "ttl"))
	require.NoError(t, err)
	assert.Equal(t, "hdr.ipv4.ttl", got)

	// The reference is cached now; a lookup outside a block still fails.
	s.conversionContext.Clear()
	_, err = convertRef(fld("ipv4", "ttl"))
	assert.ErrorIs(t, err, ErrInvariant)
}

// deparserContext records the rewrite context the deparser sees.
type deparserContext struct {
	DefaultConverter
	header string
	meta   error
	std    error
}

func (c *deparserContext) ConvertDeparser(s *Structure) *ir.Control {
	c.header = ir.ExprString(s.Context().Header())
	c.meta = func() (err error) {
		defer recoverBug(&err)
		s.Context().UserMetadata()
		return nil
	}()
	c.std = func() (err error) {
		defer recoverBug(&err)
		s.Context().StandardMetadata()
		return nil
	}()
	return c.DefaultConverter.ConvertDeparser(s)
}

func TestRunDeparserContext(t *testing.T) {
	p := router()
	ipv4 := find[*legacy.HeaderType](p, "ipv4_t")
	ipv4.Fields = append(ipv4.Fields, field("csum", 16))
	p.Decls = append(p.Decls,
		&legacy.FieldList{DeclBase: base("ipv4_fields"), Fields: []legacy.Expression{fld("ipv4", "ttl")}},
		&legacy.FieldListCalculation{DeclBase: base("ipv4_csum"), Inputs: []string{"ipv4_fields"}, Algorithms: []string{"csum16"}, OutputWidth: 16},
		&legacy.CalculatedField{
			DeclBase: base("ipv4.csum"),
			Field:    fld("ipv4", "csum"),
			Specs:    []*legacy.CalculatedFieldSpec{{Update: true, Calculation: "ipv4_csum"}},
		},
	)

	conv := &deparserContext{}
	_, out := convert(t, p, Options{Converter: conv})

	assert.Contains(t, out, "update_checksum(")
	assert.Equal(t, "hdr", conv.header)
	assert.ErrorIs(t, conv.meta, ErrInvariant)
	assert.ErrorIs(t, conv.std, ErrInvariant)
}

func TestRunSharedActionDirectCounters(t *testing.T) {
	p := router()
	p.Decls = append(p.Decls,
		&legacy.Table{DeclBase: base("fwd2"), Actions: []string{"set_nhop"}},
		&legacy.Counter{DeclBase: base("c1"), Kind: legacy.CounterPackets, Direct: "fwd"},
		&legacy.Counter{DeclBase: base("c2"), Kind: legacy.CounterBytes, Direct: "fwd2"},
	)
	ingress := find[*legacy.Control](p, "ingress")
	ingress.Body = append(ingress.Body, &legacy.Apply{Table: "fwd2"})

	res, out := convert(t, p, Options{})

	assertOrdered(t, out,
		"    direct_counter(CounterType.packets) c1;",
		"    direct_counter(CounterType.bytes) c2;",
		"    action set_nhop_0(bit<16> nhop) {\n        meta.m.nexthop = nhop;\n        c1.count();\n    }",
		"    action do_drop_0() {\n        mark_to_drop(standard_metadata);\n        c1.count();\n    }",
		"    action set_nhop_1(bit<16> nhop) {\n        meta.m.nexthop = nhop;\n        c2.count();\n    }",
		"    table fwd {",
		"            set_nhop_0;\n            do_drop_0;",
		"        counters = c1;",
		"    table fwd2 {",
		"            set_nhop_1;",
		"        counters = c2;",
	)
	assert.NotContains(t, out, "action set_nhop(")

	ctl, ok := res.Program.Lookup("ingress").(*ir.Control)
	require.True(t, ok)
	for name, counter := range map[string]string{"set_nhop_0": "c1", "do_drop_0": "c1", "set_nhop_1": "c2"} {
		act, ok := ctl.Local(name).(*ir.Action)
		require.True(t, ok, name)
		var counted []string
		for _, call := range ir.Collect[*ir.MethodCall](act) {
			if m, ok := call.Method.(*ir.Member); ok && m.Member == "count" {
				counted = append(counted, ir.ExprString(m.Expr))
			}
		}
		assert.Equal(t, []string{counter}, counted, name)
	}
}

func withOrphans(p *legacy.Program) *legacy.Program {
	p.Decls = append(p.Decls,
		&legacy.Counter{DeclBase: base("orphan_cnt"), Kind: legacy.CounterPackets},
		&legacy.Action{DeclBase: base("unused"), Body: []*legacy.Primitive{prim("count", path("orphan_cnt"), num(1))}},
		&legacy.Table{DeclBase: base("orphan"), Actions: []string{"unused"}},
	)
	return p
}

func TestRunDropsUnreachable(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	res, out := convert(t, withOrphans(router()), Options{Logger: logger})

	assert.ElementsMatch(t, []graph.Symbol{
		{Kind: graph.KindTable, Name: "orphan"},
		{Kind: graph.KindAction, Name: "unused"},
		{Kind: graph.KindCounter, Name: "orphan_cnt"},
	}, res.Unreachable)
	assert.NotContains(t, out, "orphan")
	assert.NotContains(t, out, "unused")
	assert.Contains(t, buf.String(), "dropping unreachable objects")
}

func TestRunKeepUnreachable(t *testing.T) {
	res, out := convert(t, withOrphans(router()), Options{KeepUnreachable: true})

	assert.Len(t, res.Unreachable, 3)
	assert.Contains(t, out, "counter(32w1, CounterType.packets) orphan_cnt;")
	assertOrdered(t, out,
		"control ingress(",
		"    action unused() {\n        orphan_cnt.count(32w1);\n    }",
		"    @name(\".orphan\")\n    table orphan {",
		"    apply {\n        fwd.apply();\n    }",
		"control egress(",
	)

	ingress, ok := res.Program.Lookup("ingress").(*ir.Control)
	require.True(t, ok)
	assert.NotNil(t, ingress.Local("orphan"))
	assert.NotNil(t, ingress.Local("unused"))
}

func TestRunKeepUnreachableControl(t *testing.T) {
	p := withOrphans(router())
	p.Decls = append(p.Decls, &legacy.Control{
		DeclBase: base("spare"),
		Body:     []legacy.Statement{&legacy.Apply{Table: "orphan"}},
	})
	res, out := convert(t, p, Options{KeepUnreachable: true})

	spare, ok := res.Program.Lookup("spare").(*ir.Control)
	require.True(t, ok)
	assert.NotNil(t, spare.Local("orphan"))

	ingress, ok := res.Program.Lookup("ingress").(*ir.Control)
	require.True(t, ok)
	assert.Nil(t, ingress.Local("orphan"))
	assert.Equal(t, 1, strings.Count(out, "table orphan {"))
}

func TestRunRegisterLayout(t *testing.T) {
	p := router()
	p.Decls = append(p.Decls,
		headerType("flow_t", field("packets", 32), field("last_seen", 48)),
		&legacy.Register{DeclBase: base("flows"), Layout: "flow_t", Instances: 4},
		&legacy.Register{DeclBase: base("plain"), Instances: 8},
	)
	_, out := convert(t, p, Options{KeepUnreachable: true, RegisterWidth: 64})

	assertOrdered(t, out,
		"header flow_t {\n    bit<32> packets;\n    bit<48> last_seen;\n}",
		"@name(\"flow_t\")\nstruct flow_t_0 {\n    bit<32> packets;\n    bit<48> last_seen;\n}",
		"register<flow_t_0>(32w4) flows;",
	)
	assert.Contains(t, out, "register<bit<64>>(32w8) plain;")
}

func TestRunDirectCounterAndMeter(t *testing.T) {
	p := router()
	p.Decls = append(p.Decls,
		&legacy.Counter{DeclBase: base("c"), Kind: legacy.CounterPackets, Direct: "fwd"},
		&legacy.Meter{DeclBase: base("mtr"), Kind: legacy.MeterBytes, Direct: "fwd", Result: fld("m", "color")},
	)
	_, out := convert(t, p, Options{})

	assertOrdered(t, out,
		"    direct_counter(CounterType.packets) c;",
		"    direct_meter<bit<8>>(MeterType.bytes) mtr;",
		"    action set_nhop_0(bit<16> nhop) {\n        meta.m.nexthop = nhop;\n        c.count();\n        mtr.read(meta.m.color);\n    }",
		"    action do_drop_0() {\n        mark_to_drop(standard_metadata);\n        c.count();\n        mtr.read(meta.m.color);\n    }",
		"    table fwd {",
		"            set_nhop_0;\n            do_drop_0;",
		"        counters = c;",
		"        meters = mtr;",
	)
	assert.NotContains(t, out, "action set_nhop(")
}

func TestRunApplyForms(t *testing.T) {
	p := router()
	p.Decls = append(p.Decls, &legacy.Table{DeclBase: base("t2"), Actions: []string{"do_drop"}})

	find[*legacy.Control](p, "ingress").Body = []legacy.Statement{
		&legacy.Apply{Table: "fwd", Cases: []*legacy.ApplyCase{
			{Actions: []string{"set_nhop"}, Body: []legacy.Statement{&legacy.Apply{Table: "t2"}}},
			{Default: true},
		}},
		&legacy.Apply{Table: "t2", HitMiss: true, Miss: []legacy.Statement{&legacy.Apply{Table: "fwd"}}},
		&legacy.If{
			Cond: &legacy.Valid{Expr: ref("ipv4")},
			Then: []legacy.Statement{&legacy.Apply{Table: "t2"}},
		},
	}
	_, out := convert(t, p, Options{})

	assert.Contains(t, out, "        switch (fwd.apply().action_run) {\n            set_nhop: {\n                t2.apply();\n            }\n            default: {\n            }\n        }")
	assert.Contains(t, out, "        if (!t2.apply().hit) {\n            fwd.apply();\n        }")
	assert.Contains(t, out, "        if (hdr.ipv4.isValid()) {\n            t2.apply();\n        }")
	assert.Equal(t, 1, strings.Count(out, "action do_drop("))
	assert.Equal(t, 1, strings.Count(out, "table t2 {"))
}

func TestRunSelectTuple(t *testing.T) {
	p := router()
	start := find[*legacy.ParserState](p, "start")
	start.Select = []legacy.Expression{fld("ethernet", "etherType"), &legacy.Current{Width: 8}}
	start.Cases = []*legacy.SelectCase{
		{Values: []legacy.CaseValue{{Value: hex(0x080045), Mask: hex(0xffff00)}}, Target: "parse_ipv4"},
		{Default: true, Target: "ingress"},
	}
	_, out := convert(t, p, Options{})

	assert.Contains(t, out, "transition select(hdr.ethernet.etherType, packet.lookahead<bit<8>>()) {")
	assert.Contains(t, out, "            (16w0x800, default): parse_ipv4;")
}

func TestRunUnknownPrimitive(t *testing.T) {
	p := router()
	find[*legacy.Action](p, "do_drop").Body = []*legacy.Primitive{prim("frobnicate")}

	res, err := Run(p, Options{})
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrInvariant)
	assert.Contains(t, err.Error(), "frobnicate: unknown primitive")
}

func TestRunMisspelledPrimitive(t *testing.T) {
	p := router()
	find[*legacy.Action](p, "do_drop").Body = []*legacy.Primitive{prim("drp")}

	_, err := Run(p, Options{})
	assert.ErrorIs(t, err, ErrInvariant)
	assert.Contains(t, err.Error(), "drp: unknown primitive, did you mean drop")
}

func TestRunMissingStart(t *testing.T) {
	p := router()
	find[*legacy.ParserState](p, "start").Name = "begin"

	_, err := Run(p, Options{})
	assert.ErrorIs(t, err, ErrInvariant)
}

type taggingConverter struct {
	DefaultConverter
}

func (c taggingConverter) ConvertTable(s *Structure, t *legacy.Table, actionNames map[string]string) *ir.Table {
	tbl := c.DefaultConverter.ConvertTable(s, t, actionNames)
	tbl.Annotations = append(tbl.Annotations, &ir.Annotation{Name: "tagged"})
	return tbl
}

func TestRunCustomConverter(t *testing.T) {
	_, out := convert(t, router(), Options{Converter: taggingConverter{}})
	assert.Contains(t, out, "    @name(\".fwd\")\n    @tagged\n    table fwd {")
}

func TestConvertPrimitive(t *testing.T) {
	s := newStructure(router(), Options{})
	s.populateOutputNames()
	s.registerObjects()
	s.setBlockContext()

	tests := []struct {
		prim *legacy.Primitive
		want string
	}{
		{prim("add_to_field", fld("m", "nexthop"), num(1)), "meta.m.nexthop = (meta.m.nexthop + 16w1);"},
		{prim("modify_field", fld("m", "nexthop"), num(5), hex(0xff)),
			"meta.m.nexthop = ((meta.m.nexthop & ~16w0xff) | (16w5 & 16w0xff));"},
		{prim("add_header", ref("ipv4")), "hdr.ipv4.setValid();"},
		{prim("remove_header", ref("ipv4")), "hdr.ipv4.setInvalid();"},
		{prim("truncate", num(64)), "truncate(32w64);"},
		{prim("exit"), "exit;"},
		{prim("bit_not", fld("m", "color"), fld("m", "color")), "meta.m.color = ~meta.m.color;"},
	}
	for _, tt := range tests {
		t.Run(tt.prim.Name, func(t *testing.T) {
			st := s.conv.ConvertPrimitive(s, tt.prim)
			require.NotNil(t, st)
			assert.Equal(t, tt.want, ir.StmtString(st))
		})
	}

	assert.Nil(t, s.conv.ConvertPrimitive(s, prim("no_op")))
}

func TestConvertPrimitiveArity(t *testing.T) {
	s := newStructure(router(), Options{})
	s.populateOutputNames()
	s.registerObjects()
	s.setBlockContext()

	err := func() (err error) {
		defer recoverBug(&err)
		s.conv.ConvertPrimitive(s, prim("drop", num(1)))
		return nil
	}()
	assert.ErrorIs(t, err, ErrInvariant)
}

func TestConvertMeterPreColor(t *testing.T) {
	p := router()
	p.Decls = append(p.Decls, &legacy.Meter{DeclBase: base("mtr"), Kind: legacy.MeterPackets, Instances: 4})
	s := newStructure(p, Options{})
	s.populateOutputNames()
	s.registerObjects()
	s.setBlockContext()

	st := s.conv.ConvertPrimitive(s, prim("execute_meter", path("mtr"), num(1), fld("m", "color")))
	require.NotNil(t, st)
	assert.Equal(t, "mtr.execute_meter<bit<8>>(32w1, meta.m.color);", ir.StmtString(st))

	err := func() (err error) {
		defer recoverBug(&err)
		s.conv.ConvertPrimitive(s, prim("execute_meter", path("mtr"), num(1), fld("m", "color"), num(0)))
		return nil
	}()
	require.ErrorIs(t, err, ErrInvariant)
	assert.Contains(t, err.Error(), "pre-color")
}

func TestExplodeValue(t *testing.T) {
	got := explodeValue(big.NewInt(0x080011), []int{16, 8})
	require.Len(t, got, 2)
	assert.Equal(t, int64(0x800), got[0].Int64())
	assert.Equal(t, int64(0x11), got[1].Int64())
	assert.Equal(t, int64(255), allOnes(8).Int64())
}

func TestConversionContext(t *testing.T) {
	var c ConversionContext
	assert.False(t, c.IsSet())

	err := func() (err error) {
		defer recoverBug(&err)
		c.StandardMetadata()
		return nil
	}()
	assert.ErrorIs(t, err, ErrInvariant)

	c.Set(ir.NewPath("hdr"), ir.NewPath("meta"), nil)
	assert.True(t, c.IsSet())
	assert.Equal(t, "meta", ir.ExprString(c.UserMetadata()))

	c.Clear()
	assert.False(t, c.IsSet())
}

func TestRunChecksums(t *testing.T) {
	p := router()
	ipv4 := find[*legacy.HeaderType](p, "ipv4_t")
	ipv4.Fields = append(ipv4.Fields, field("hdrChecksum", 16))
	p.Decls = append(p.Decls,
		&legacy.FieldList{DeclBase: base("ipv4_fields"), Fields: []legacy.Expression{fld("ipv4", "ttl"), fld("ipv4", "dstAddr")}},
		&legacy.FieldListCalculation{DeclBase: base("ipv4_csum"), Inputs: []string{"ipv4_fields"}, Algorithms: []string{"csum16"}, OutputWidth: 16},
		&legacy.CalculatedField{
			DeclBase: base("ipv4.hdrChecksum"),
			Field:    fld("ipv4", "hdrChecksum"),
			Specs: []*legacy.CalculatedFieldSpec{
				{Calculation: "ipv4_csum"},
				{Update: true, Calculation: "ipv4_csum"},
			},
		},
	)

	_, out := convert(t, p, Options{})
	assertOrdered(t, out,
		"control verifyChecksum",
		"        verify_checksum(true, { hdr.ipv4.ttl, hdr.ipv4.dstAddr }, hdr.ipv4.hdrChecksum, HashAlgorithm.csum16);",
		"control ingress",
		"control computeChecksum",
		"        update_checksum(true, { hdr.ipv4.ttl, hdr.ipv4.dstAddr }, hdr.ipv4.hdrChecksum, HashAlgorithm.csum16);",
		"control DeparserImpl")
}

func TestRunChecksumWidthMismatch(t *testing.T) {
	p := router()
	p.Decls = append(p.Decls,
		&legacy.FieldList{DeclBase: base("fl"), Fields: []legacy.Expression{fld("ipv4", "dstAddr")}},
		&legacy.FieldListCalculation{DeclBase: base("c32"), Inputs: []string{"fl"}, Algorithms: []string{"crc32"}, OutputWidth: 32},
		&legacy.CalculatedField{
			DeclBase: base("ipv4.ttl"),
			Field:    fld("ipv4", "ttl"),
			Specs:    []*legacy.CalculatedFieldSpec{{Calculation: "c32"}},
		},
	)
	_, err := Run(p, Options{})
	assert.ErrorIs(t, err, ErrInvariant)
	assert.Contains(t, err.Error(), "field is 8 bits wide")
}

func TestRunActionSelector(t *testing.T) {
	p := router()
	p.Decls = append(p.Decls,
		&legacy.FieldList{DeclBase: base("hash_fields"), Fields: []legacy.Expression{fld("ipv4", "dstAddr")}},
		&legacy.FieldListCalculation{DeclBase: base("ecmp_hash"), Inputs: []string{"hash_fields"}, Algorithms: []string{"crc16"}, OutputWidth: 14},
		&legacy.ActionSelector{DeclBase: base("ecmp_sel"), Key: "ecmp_hash"},
		&legacy.ActionProfile{DeclBase: base("ecmp_prof"), Actions: []string{"set_nhop"}, Size: 64, Selector: "ecmp_sel"},
		&legacy.Table{DeclBase: base("ecmp"), ActionProfile: "ecmp_prof"},
	)
	ingress := find[*legacy.Control](p, "ingress")
	ingress.Body = append(ingress.Body, &legacy.Apply{Table: "ecmp"})

	_, out := convert(t, p, Options{})
	assert.Contains(t, out, "@name(\".ecmp_prof\")\naction_selector(HashAlgorithm.crc16, 32w64, 32w14) ecmp_prof;")
	assert.Contains(t, out, "            hdr.ipv4.dstAddr: selector @name(\"ipv4.dstAddr\");")
	assert.Contains(t, out, "        implementation = ecmp_prof;")
	assertOrdered(t, out, ") ecmp_prof;", "control ingress")
}

func TestRunExterns(t *testing.T) {
	p := router()
	p.Decls = append(p.Decls,
		&legacy.ExternType{DeclBase: base("sampler_t"), Methods: []*legacy.ExternMethod{
			{Name: "sample", Params: []*legacy.Param{{Name: "rate", Type: bits(8)}}},
		}},
		&legacy.ExternInstance{DeclBase: base("smp"), Type: "sampler_t", Properties: []legacy.Property{
			{Name: "rate_hint", Value: num(4)},
		}},
	)
	find[*legacy.Action](p, "do_drop").Body = []*legacy.Primitive{
		prim("drop"),
		{Receiver: "smp", Name: "sample", Operands: []legacy.Expression{num(3)}},
	}

	res, out := convert(t, p, Options{})
	assert.Contains(t, out, "extern sampler_t {\n    sampler_t();\n    void sample(in bit<8> rate);\n}")
	assert.Contains(t, out, "@name(\".smp\")\n@rate_hint(4)\nsampler_t() smp;")
	assert.Contains(t, out, "        smp.sample(8w3);")
	assert.Equal(t, 1, res.Calls.EdgeCount(graph.RelExterns))
}

func TestRunVarbitExtract(t *testing.T) {
	p := router()
	ipv4 := find[*legacy.HeaderType](p, "ipv4_t")
	ipv4.Fields = append(ipv4.Fields, legacy.Field{Name: "options", Type: &legacy.TypeVarbits{MaxWidth: 320}})

	res, out := convert(t, p, Options{})
	assert.Contains(t, out, "    varbit<320> options;")
	require.Len(t, res.VarbitExtracts, 1)
	for call, hdr := range res.VarbitExtracts {
		assert.Equal(t, "packet.extract(hdr.ipv4)", ir.ExprString(call))
		assert.Equal(t, "ipv4_t", hdr.Name)
	}
}
