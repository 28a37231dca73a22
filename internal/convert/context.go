package convert

import "github.com/kmateuszssak/p4c/ir"

// ConversionContext holds the expressions that stand for the header,
// user metadata and standard metadata arguments of the block whose body
// is being converted. Fields are valid only between Set and Clear.
type ConversionContext struct {
	header           ir.Expression
	userMetadata     ir.Expression
	standardMetadata ir.Expression
}

// Clear forgets every argument.
func (c *ConversionContext) Clear() {
	*c = ConversionContext{}
}

// Set installs the arguments of the block about to be converted.
// Blocks that lack one of them pass nil.
func (c *ConversionContext) Set(header, userMetadata, standardMetadata ir.Expression) {
	c.header = header
	c.userMetadata = userMetadata
	c.standardMetadata = standardMetadata
}

// Header returns the header argument.
func (c *ConversionContext) Header() ir.Expression {
	return checkNull(c.header, "header argument in conversion context")
}

// UserMetadata returns the user metadata argument.
func (c *ConversionContext) UserMetadata() ir.Expression {
	return checkNull(c.userMetadata, "user metadata argument in conversion context")
}

// StandardMetadata returns the standard metadata argument.
func (c *ConversionContext) StandardMetadata() ir.Expression {
	return checkNull(c.standardMetadata, "standard metadata argument in conversion context")
}

// IsSet reports whether any argument is installed.
func (c *ConversionContext) IsSet() bool {
	return c.header != nil || c.userMetadata != nil || c.standardMetadata != nil
}
