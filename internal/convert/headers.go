package convert

import (
	"github.com/kmateuszssak/p4c/ir"
	"github.com/kmateuszssak/p4c/legacy"
)

// headerCache hands out one expression per logical header and per
// constant-indexed stack element, so every reference to the same header
// in the converted program is the same object.
type headerCache struct {
	// root yields the header argument of the block being converted.
	root func() ir.Expression
	// outputName maps a legacy header or stack name to its field name in
	// the headers struct.
	outputName func(string) string

	headers map[string]ir.Expression
	items   map[stackSlot]ir.Expression
}

type stackSlot struct {
	stack string
	index int64
}

func newHeaderCache(root func() ir.Expression, outputName func(string) string) *headerCache {
	return &headerCache{
		root:       root,
		outputName: outputName,
		headers:    make(map[string]ir.Expression),
		items:      make(map[stackSlot]ir.Expression),
	}
}

// header returns root.<name> for a header or a whole stack. The root is
// read on every lookup, so a reference made outside any block fails even
// when the header is cached.
func (c *headerCache) header(name string) ir.Expression {
	root := c.root()
	if e, ok := c.headers[name]; ok {
		return e
	}
	e := ir.NewMember(root, c.outputName(name))
	c.headers[name] = e
	return e
}

// stackItem returns root.<stack>[index] for a constant index. Any other
// index addresses the stack cursor; the stack itself is returned and the
// caller selects next or last on it.
func (c *headerCache) stackItem(stack string, index legacy.Expression) ir.Expression {
	k, ok := index.(*legacy.Constant)
	if !ok {
		return c.header(stack)
	}
	slot := stackSlot{stack: stack, index: k.Value.Int64()}
	if e, ok := c.items[slot]; ok {
		return e
	}
	e := &ir.ArrayIndex{Left: c.header(stack), Right: ir.NewConstant(slot.index)}
	c.items[slot] = e
	return e
}

// resolve returns the canonical reference for an extraction target.
func (c *headerCache) resolve(e legacy.Expression) ir.Expression {
	switch e := e.(type) {
	case *legacy.ConcreteHeaderRef:
		return c.header(e.Name)
	case *legacy.HeaderStackItemRef:
		base, ok := e.Base.(*legacy.ConcreteHeaderRef)
		if !ok {
			bug(e, "stack element base is not a header stack")
		}
		return c.stackItem(base.Name, e.Index)
	default:
		bug(e, "unexpected header expression %T", e)
		return nil
	}
}

// size returns the number of cached expressions.
func (c *headerCache) size() int {
	return len(c.headers) + len(c.items)
}
