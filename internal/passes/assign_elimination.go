package passes

import (
	"venom/internal/analysis"
	"venom/internal/ir"
)

// AssignElimination is copy propagation over `assign` instructions: each
// one rewrites to a plain rename, so its output is replaced everywhere by
// its one operand and the assign itself is dropped (spec §4.2).
type AssignElimination struct{}

func (AssignElimination) Name() string { return "assign_elimination" }

func (AssignElimination) Run(cache *analysis.Cache, fn *ir.Function) bool {
	changed := false
	for _, b := range fn.Blocks() {
		for _, inst := range b.Instructions {
			if inst.Opcode != ir.OpAssign || inst.IsNop() {
				continue
			}
			replaceAllUses(fn, inst.Output, inst.Operands[0])
			inst.MakeNop()
			changed = true
		}
	}
	if changed {
		removeNops(fn)
		cache.InvalidateAll()
	}
	return changed
}
