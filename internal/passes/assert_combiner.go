package passes

import (
	"venom/internal/analysis"
	"venom/internal/ir"
)

// AssertCombiner merges a run of consecutive `assert` instructions into a
// single `assert (c1 and c2 and ...)`: each assert traps on a zero operand,
// so the combined form traps exactly when any one of the originals would
// have (spec §4.6).
type AssertCombiner struct{}

func (AssertCombiner) Name() string { return "assert_combiner" }

func (AssertCombiner) Run(cache *analysis.Cache, fn *ir.Function) bool {
	changed := false
	for _, b := range fn.Blocks() {
		insts := b.Instructions
		for i := 0; i < len(insts); i++ {
			if insts[i].Opcode != ir.OpAssert || insts[i].IsNop() {
				continue
			}
			combined := insts[i].Operands[0]
			j := i + 1
			for j < len(insts) && insts[j].Opcode == ir.OpAssert {
				and := fn.NewInstruction(ir.OpAnd, combined, insts[j].Operands[0])
				and.Output = fn.FreshVariable("assert_and", ir.Bool)
				insertBefore(b, insts[i], and)
				combined = and.Output
				insts[j].MakeNop()
				changed = true
				j++
			}
			insts[i].Operands[0] = combined
			i = j - 1
		}
	}
	if changed {
		removeNops(fn)
		cache.InvalidateAll()
	}
	return changed
}

// insertBefore splices inst directly before target within b.
func insertBefore(b *ir.BasicBlock, target, inst *ir.Instruction) {
	for idx, cur := range b.Instructions {
		if cur == target {
			inst.Block = b
			b.Instructions = append(b.Instructions, nil)
			copy(b.Instructions[idx+1:], b.Instructions[idx:])
			b.Instructions[idx] = inst
			return
		}
	}
}
