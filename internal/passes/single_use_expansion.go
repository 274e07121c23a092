package passes

import (
	"venom/internal/analysis"
	"venom/internal/ir"
)

// SingleUseExpansion slides a pure instruction with exactly one use down to
// sit immediately before that use, within the same block (spec §4.4). The
// scheduler's stack model has an easier time if a value's definition and
// its one consumer are adjacent: nothing else needs to hold it live on the
// stack in between. Moving is sound because a pure instruction's only
// dependency is its operands, which are already available at the earlier
// position.
type SingleUseExpansion struct{}

func (SingleUseExpansion) Name() string { return "single_use_expansion" }

func (SingleUseExpansion) Run(cache *analysis.Cache, fn *ir.Function) bool {
	changed := false
	for _, b := range fn.Blocks() {
		uses := countUsesInBlock(b)
		insts := append([]*ir.Instruction(nil), b.Instructions...)
		for _, inst := range insts {
			if inst.IsNop() || !inst.Opcode.IsPure() || inst.Output == nil || len(inst.ExtraOutputs) > 0 {
				continue
			}
			if uses[inst.Output.Name()] != 1 {
				continue
			}
			useSite := findSingleUseSite(b, inst.Output)
			if useSite == nil || useSite == inst {
				continue
			}
			b.RemoveInstruction(inst)
			insertBefore(b, useSite, inst)
			changed = true
		}
	}
	if changed {
		cache.InvalidateAll()
	}
	return changed
}

func countUsesInBlock(b *ir.BasicBlock) map[string]int {
	counts := make(map[string]int)
	for _, inst := range b.Instructions {
		for _, use := range inst.Uses() {
			if v, ok := use.(*ir.Variable); ok {
				counts[v.Name()]++
			}
		}
	}
	return counts
}

func findSingleUseSite(b *ir.BasicBlock, v *ir.Variable) *ir.Instruction {
	for _, inst := range b.Instructions {
		for _, use := range inst.Uses() {
			if uv, ok := use.(*ir.Variable); ok && uv.Equal(v) {
				return inst
			}
		}
	}
	return nil
}
