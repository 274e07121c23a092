package passes

import (
	"venom/internal/analysis"
	"venom/internal/ir"
)

// RemoveUnusedVariables is dead code elimination: any instruction with no
// side effects whose outputs are read nowhere is removed, iterated to a
// fixed point since removing one dead instruction can make the ones that
// fed it dead too (spec §4.2).
type RemoveUnusedVariables struct{}

func (RemoveUnusedVariables) Name() string { return "remove_unused_variables" }

func (RemoveUnusedVariables) Run(cache *analysis.Cache, fn *ir.Function) bool {
	changed := false
	for {
		uses := countAllUses(fn)
		removedThisPass := false
		for _, b := range fn.Blocks() {
			for _, inst := range b.Instructions {
				if inst.IsNop() || inst.IsTerminator() || inst.Opcode == ir.OpSink {
					continue
				}
				reads, writes := inst.Effects()
				if writes != 0 || reads.Has(ir.EffectExternalCall) {
					continue
				}
				outs := inst.Outputs()
				if len(outs) == 0 {
					continue
				}
				live := false
				for _, v := range outs {
					if uses[v.Name()] > 0 {
						live = true
						break
					}
				}
				if !live {
					inst.MakeNop()
					removedThisPass = true
					changed = true
				}
			}
		}
		if !removedThisPass {
			break
		}
	}
	if changed {
		removeNops(fn)
		cache.InvalidateAll()
	}
	return changed
}

func countAllUses(fn *ir.Function) map[string]int {
	counts := make(map[string]int)
	for _, b := range fn.Blocks() {
		for _, inst := range b.Instructions {
			if inst.IsNop() {
				continue
			}
			for _, use := range inst.Uses() {
				if v, ok := use.(*ir.Variable); ok {
					counts[v.Name()]++
				}
			}
		}
	}
	return counts
}
