package convert

import (
	"math/big"

	"github.com/kmateuszssak/p4c/legacy"
)

func bits(w int) legacy.Type { return &legacy.TypeBits{Width: w} }

func base(name string) legacy.DeclBase { return legacy.DeclBase{Name: name} }

func ref(name string) *legacy.ConcreteHeaderRef { return &legacy.ConcreteHeaderRef{Name: name} }

func item(stack string, index legacy.Expression) *legacy.HeaderStackItemRef {
	return &legacy.HeaderStackItemRef{Base: ref(stack), Index: index}
}

func fld(instance, field string) *legacy.Member {
	return &legacy.Member{Expr: ref(instance), Name: field}
}

func path(name string) *legacy.PathExpression { return &legacy.PathExpression{Name: name} }

func num(v int64) *legacy.Constant { return legacy.NewConstant(v) }

func hex(v int64) *legacy.Constant { return &legacy.Constant{Value: big.NewInt(v), Base: 16} }

func prim(name string, ops ...legacy.Expression) *legacy.Primitive {
	return &legacy.Primitive{Name: name, Operands: ops}
}

func headerType(name string, fields ...legacy.Field) *legacy.HeaderType {
	return &legacy.HeaderType{DeclBase: base(name), Fields: fields}
}

func field(name string, w int) legacy.Field { return legacy.Field{Name: name, Type: bits(w)} }

// router is a small IPv4 forwarding program: ethernet and ipv4 parsing,
// one LPM table setting a metadata next hop, and an empty egress.
func router() *legacy.Program {
	return &legacy.Program{Name: "router", Decls: []legacy.Declaration{
		headerType("ethernet_t", field("dstAddr", 48), field("srcAddr", 48), field("etherType", 16)),
		headerType("ipv4_t", field("ttl", 8), field("dstAddr", 32)),
		headerType("meta_t", field("nexthop", 16), field("color", 8)),
		&legacy.Header{DeclBase: base("ethernet"), Type: "ethernet_t"},
		&legacy.Header{DeclBase: base("ipv4"), Type: "ipv4_t"},
		&legacy.Metadata{DeclBase: base("m"), Type: "meta_t"},
		&legacy.ParserState{
			DeclBase: base("start"),
			Stmts:    []*legacy.Primitive{prim("extract", ref("ethernet"))},
			Select:   []legacy.Expression{fld("ethernet", "etherType")},
			Cases: []*legacy.SelectCase{
				{Values: []legacy.CaseValue{{Value: hex(0x800)}}, Target: "parse_ipv4"},
				{Default: true, Target: "ingress"},
			},
		},
		&legacy.ParserState{
			DeclBase: base("parse_ipv4"),
			Stmts:    []*legacy.Primitive{prim("extract", ref("ipv4"))},
			Return:   "ingress",
		},
		&legacy.Action{
			DeclBase: base("set_nhop"),
			Params:   []*legacy.Param{{Name: "nhop"}},
			Body:     []*legacy.Primitive{prim("modify_field", fld("m", "nexthop"), path("nhop"))},
		},
		&legacy.Action{
			DeclBase: base("do_drop"),
			Body:     []*legacy.Primitive{prim("drop")},
		},
		&legacy.Table{
			DeclBase: base("fwd"),
			Reads:    []*legacy.TableKey{{Expr: fld("ipv4", "dstAddr"), Match: legacy.MatchLPM}},
			Actions:  []string{"set_nhop", "do_drop"},
			Size:     1024,
		},
		&legacy.Control{
			DeclBase: base("ingress"),
			Body:     []legacy.Statement{&legacy.Apply{Table: "fwd"}},
		},
	}}
}

func find[T legacy.Declaration](p *legacy.Program, name string) T {
	d, ok := legacy.Find[T](p, name)
	if !ok {
		panic("fixture has no " + name)
	}
	return d
}
