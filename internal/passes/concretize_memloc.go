package passes

import (
	"venom/internal/analysis"
	"venom/internal/ir"
)

// ConcretizeMemLoc resolves every remaining symbolic memory reference to a
// literal offset via the context's bump allocator (spec §3.3): each
// `alloca` gets a fresh 32-byte slot and its output variable is replaced
// everywhere by that literal, and any AbstractMemLoc operand surviving
// from earlier lowering is allocated and substituted the same way. This is
// meant to run once, late, after every pass that still wants to reason
// about allocas as opaque addresses.
type ConcretizeMemLoc struct{}

func (ConcretizeMemLoc) Name() string { return "concretize_memloc" }

func (ConcretizeMemLoc) Run(cache *analysis.Cache, fn *ir.Function) bool {
	ctx := cache.Context()
	ir.Invariant(ctx != nil, "concretize_memloc: requires a context for memory allocation")
	alloc := ctx.MemAllocator

	changed := false
	for _, b := range fn.Blocks() {
		for _, inst := range b.Instructions {
			if inst.Opcode == ir.OpAlloca && inst.Output != nil && !inst.IsNop() {
				loc := alloc.NewMemLoc(ir.MemLocScratch, 32)
				offset := alloc.Allocate(loc)
				replaceAllUses(fn, inst.Output, ir.NewLiteral(uint64(offset)))
				inst.MakeNop()
				changed = true
			}
			for i, op := range inst.Operands {
				if ml, ok := op.(*ir.AbstractMemLoc); ok {
					offset := alloc.Allocate(ml)
					inst.Operands[i] = ir.NewLiteral(uint64(offset))
					changed = true
				}
			}
			for i, in := range inst.PhiInputs {
				if ml, ok := in.Value.(*ir.AbstractMemLoc); ok {
					offset := alloc.Allocate(ml)
					inst.PhiInputs[i].Value = ir.NewLiteral(uint64(offset))
					changed = true
				}
			}
		}
	}
	if changed {
		removeNops(fn)
		cache.InvalidateAll()
	}
	return changed
}
