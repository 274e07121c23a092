package passes

import (
	"venom/internal/analysis"
	"venom/internal/ir"
)

// LowerDLoad expands the abstract data-section reads (dload, dloadbytes)
// into the concrete codecopy sequence the EVM actually executes: a fresh
// scratch alloca, a codecopy from the data label's code offset, and (for
// dload) a single mload out of that slot (spec §4.7, "data section reads
// lower to codecopy once the section's code-relative placement is fixed by
// the assembler"). The scratch alloca is concretized to a literal offset
// later, by ConcretizeMemLoc; this pass only needs to exist as an
// ordinary alloca to be picked up there. Runs late in the pipeline, after
// every other pass that might want to reason about dload as an opaque
// pure read.
type LowerDLoad struct{}

func (LowerDLoad) Name() string { return "lower_dload" }

func (LowerDLoad) Run(cache *analysis.Cache, fn *ir.Function) bool {
	changed := false
	for _, b := range fn.Blocks() {
		insts := append([]*ir.Instruction(nil), b.Instructions...)
		for _, inst := range insts {
			switch inst.Opcode {
			case ir.OpDLoad:
				lowerDLoad(fn, b, inst)
				changed = true
			case ir.OpDLoadBytes:
				lowerDLoadBytes(fn, b, inst)
				changed = true
			}
		}
	}
	if changed {
		removeNops(fn)
		cache.InvalidateAll()
	}
	return changed
}

func lowerDLoad(fn *ir.Function, b *ir.BasicBlock, inst *ir.Instruction) {
	alloca := fn.NewInstruction(ir.OpAlloca)
	alloca.Output = fn.FreshVariable("dload_scratch", ir.U256)
	insertBefore(b, inst, alloca)

	codecopy := fn.NewInstruction(ir.OpCodeCopy, alloca.Output, inst.Operands[0], ir.NewLiteral(32))
	insertBefore(b, inst, codecopy)

	mload := fn.NewInstruction(ir.OpMLoad, alloca.Output)
	mload.Output = inst.Output
	insertBefore(b, inst, mload)

	inst.MakeNop()
}

func lowerDLoadBytes(fn *ir.Function, b *ir.BasicBlock, inst *ir.Instruction) {
	codecopy := fn.NewInstruction(ir.OpCodeCopy, inst.Operands[0], inst.Operands[1], inst.Operands[2])
	insertBefore(b, inst, codecopy)
	inst.MakeNop()
}
