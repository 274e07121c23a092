package scheduler

import "venom/internal/ir"

// Linearize returns fn's blocks in final emission order. CFGNormalization
// (internal/passes) is the pipeline's last structural pass and already
// leaves fn.Blocks() in DFT order with a predecessor-free entry, so there is
// nothing left for the scheduler to reorder -- it only needs a stable,
// named entry point into that order.
func Linearize(fn *ir.Function) []*ir.BasicBlock {
	return fn.Blocks()
}
