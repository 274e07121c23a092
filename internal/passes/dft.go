package passes

import (
	"venom/internal/analysis"
	"venom/internal/ir"
)

// DFT ("depth-first traversal") reorders a function's blocks into the
// preorder of a depth-first walk from the entry block, rather than
// whatever order the grammar's lowering or earlier surgery happened to
// leave them in (spec §4.7). A branch's fallthrough arm landing physically
// adjacent lets the assembler skip an explicit jump more often.
type DFT struct{}

func (DFT) Name() string { return "dft" }

func (DFT) Run(cache *analysis.Cache, fn *ir.Function) bool {
	cache.Force(analysis.KindCFG)
	order := depthFirstOrder(fn)
	if len(order) != len(fn.Blocks()) {
		return false // unreachable blocks present; SimplifyCFG should run first
	}
	if sameOrder(order, fn.Blocks()) {
		return false
	}
	fn.SetBlockOrder(order)
	return true
}

func depthFirstOrder(fn *ir.Function) []*ir.BasicBlock {
	entry := fn.Entry()
	if entry == nil {
		return nil
	}
	visited := make(map[*ir.BasicBlock]bool)
	var order []*ir.BasicBlock
	var visit func(b *ir.BasicBlock)
	visit = func(b *ir.BasicBlock) {
		if visited[b] {
			return
		}
		visited[b] = true
		order = append(order, b)
		for _, succ := range b.Successors {
			visit(succ)
		}
	}
	visit(entry)
	return order
}

func sameOrder(a, b []*ir.BasicBlock) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
