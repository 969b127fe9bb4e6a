package mathx

import "golang.org/x/exp/constraints"

// Scale remaps x from the range [x0,x1] to [y0,y1] proportionally.
// No clamping is applied; x0 != x1 is a caller precondition. Every call
// site in this firmware uses a fixed, non-degenerate source range.
func Scale[T constraints.Float](x, x0, x1, y0, y1 T) T {
	return y0 + (x-x0)*((y1-y0)/(x1-x0))
}
