package v1model

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Primitive describes a legacy primitive action by operand count.
type Primitive struct {
	Name    string
	MinArgs int
	MaxArgs int
}

var primitives = []Primitive{
	{"modify_field", 2, 3},
	{"add_to_field", 2, 2},
	{"subtract_from_field", 2, 2},
	{"add", 3, 3},
	{"subtract", 3, 3},
	{"multiply", 3, 3},
	{"bit_and", 3, 3},
	{"bit_or", 3, 3},
	{"bit_xor", 3, 3},
	{"bit_nand", 3, 3},
	{"bit_nor", 3, 3},
	{"bit_xnor", 3, 3},
	{"bit_not", 2, 2},
	{"shift_left", 3, 3},
	{"shift_right", 3, 3},
	{"min", 3, 3},
	{"max", 3, 3},
	{"add_header", 1, 1},
	{"remove_header", 1, 1},
	{"copy_header", 2, 2},
	{"drop", 0, 0},
	{"mark_for_drop", 0, 0},
	{"no_op", 0, 0},
	{"exit", 0, 0},
	{"count", 2, 2},
	{"execute_meter", 3, 4},
	{"register_read", 3, 3},
	{"register_write", 3, 3},
	{"modify_field_with_hash_based_offset", 4, 4},
	{"modify_field_rng_uniform", 3, 3},
	{"truncate", 1, 1},
	{"clone_ingress_pkt_to_egress", 1, 2},
	{"clone_egress_pkt_to_egress", 1, 2},
	{"clone_i2e", 1, 2},
	{"clone_e2e", 1, 2},
	{"resubmit", 0, 1},
	{"recirculate", 0, 1},
	{"generate_digest", 2, 2},
	{"push", 1, 2},
	{"pop", 1, 2},
}

var primitiveByName = func() map[string]Primitive {
	m := make(map[string]Primitive, len(primitives))
	for _, p := range primitives {
		m[p.Name] = p
	}
	return m
}()

// LookupPrimitive returns the primitive with the given name.
func LookupPrimitive(name string) (Primitive, bool) {
	p, ok := primitiveByName[name]
	return p, ok
}

// Accepts reports whether n operands are valid for the primitive.
func (p Primitive) Accepts(n int) bool {
	return n >= p.MinArgs && n <= p.MaxArgs
}

// Primitives returns all known primitives in table order.
func Primitives() []Primitive {
	out := make([]Primitive, len(primitives))
	copy(out, primitives)
	return out
}

// SuggestPrimitive returns the known primitive closest to name, or "" if
// none contains its letters in order.
func SuggestPrimitive(name string) string {
	names := make([]string, len(primitives))
	for i, p := range primitives {
		names[i] = p.Name
	}
	ranks := fuzzy.RankFindFold(name, names)
	if len(ranks) == 0 {
		return ""
	}
	sort.Sort(ranks)
	return ranks[0].Target
}
