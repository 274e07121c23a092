package passes

import (
	"venom/internal/analysis"
	"venom/internal/ir"
)

// CFGNormalization is the pipeline's final structural pass: it re-applies
// DFT's layout one last time (earlier passes can reorder blocks or create
// new ones after DFT last ran) and restores invariant I7 -- the entry
// block has no predecessors -- by splitting off a fresh, predecessor-free
// entry if something jumps back into the original one (spec §3.1, §4.7).
type CFGNormalization struct{}

func (CFGNormalization) Name() string { return "cfg_normalization" }

func (CFGNormalization) Run(cache *analysis.Cache, fn *ir.Function) bool {
	cache.Force(analysis.KindCFG)
	changed := ensureEntryHasNoPredecessors(fn)
	if changed {
		cache.Force(analysis.KindCFG)
	}
	changed = (DFT{}).Run(cache, fn) || changed
	if changed {
		cache.InvalidateAll()
	}
	return changed
}

func ensureEntryHasNoPredecessors(fn *ir.Function) bool {
	entry := fn.Entry()
	if entry == nil || len(entry.Predecessors) == 0 {
		return false
	}
	newEntry := ir.NewBasicBlock(fn.FreshBlockLabel("entry"))
	jmp := fn.NewInstruction(ir.OpJmp, &ir.Label{Name: entry.Label})
	newEntry.Append(jmp)

	rest := append([]*ir.BasicBlock{newEntry}, fn.Blocks()...)
	fn.AddBlock(newEntry)
	fn.SetBlockOrder(rest)
	return true
}
