package passes

import (
	"venom/internal/analysis"
	"venom/internal/ir"
)

// SimplifyCFG folds the common block-level redundancies: unreachable
// blocks, a jnz whose two targets coincide, and a block ending in an
// unconditional jmp to a successor that has no other predecessor, which
// it absorbs (spec §4.2, "CFG simplification").
type SimplifyCFG struct{}

func (SimplifyCFG) Name() string { return "simplify_cfg" }

func (SimplifyCFG) Run(cache *analysis.Cache, fn *ir.Function) bool {
	changed := false
	changed = foldSameTargetBranch(cache, fn) || changed
	changed = mergeStraightLineBlocks(cache, fn) || changed
	changed = removeUnreachableBlocks(cache, fn) || changed
	if changed {
		cache.InvalidateAll()
	}
	return changed
}

// foldSameTargetBranch turns `jnz %c, @a, @a` into `jmp @a`: the condition
// is dead since both outcomes transfer to the same block.
func foldSameTargetBranch(cache *analysis.Cache, fn *ir.Function) bool {
	changed := false
	for _, b := range fn.Blocks() {
		term := b.Terminator()
		if term == nil || term.Opcode != ir.OpJnz {
			continue
		}
		thenLbl, ok1 := term.Operands[1].(*ir.Label)
		elseLbl, ok2 := term.Operands[2].(*ir.Label)
		if ok1 && ok2 && thenLbl.Name == elseLbl.Name {
			b.SetTerminator(fn.NewInstruction(ir.OpJmp, thenLbl))
			changed = true
		}
	}
	if changed {
		cache.Force(analysis.KindCFG)
	}
	return changed
}

// mergeStraightLineBlocks absorbs a successor into its sole predecessor
// when the edge between them is the only one on both ends: the jmp
// terminator is dropped and the successor's instructions appended in
// place.
func mergeStraightLineBlocks(cache *analysis.Cache, fn *ir.Function) bool {
	changed := false
	for {
		cache.Force(analysis.KindCFG)
		merged := false
		for _, b := range fn.Blocks() {
			term := b.Terminator()
			if term == nil || term.Opcode != ir.OpJmp {
				continue
			}
			if len(b.Successors) != 1 {
				continue
			}
			succ := b.Successors[0]
			if succ == b || len(succ.Predecessors) != 1 || len(succ.Phis()) > 0 {
				continue
			}
			b.RemoveInstruction(term)
			b.Instructions = append(b.Instructions, succ.Instructions...)
			for _, inst := range succ.Instructions {
				inst.Block = b
			}
			fn.RemoveBlock(succ)
			merged = true
			changed = true
			break
		}
		if !merged {
			break
		}
	}
	return changed
}

// removeUnreachableBlocks drops every block the CFG traversal from entry
// never visits.
func removeUnreachableBlocks(cache *analysis.Cache, fn *ir.Function) bool {
	cache.Force(analysis.KindCFG)
	rpo := analysis.RequestCFG(cache).RPO
	reachable := make(map[*ir.BasicBlock]bool, len(rpo))
	for _, b := range rpo {
		reachable[b] = true
	}
	changed := false
	for _, b := range append([]*ir.BasicBlock(nil), fn.Blocks()...) {
		if !reachable[b] {
			fn.RemoveBlock(b)
			changed = true
		}
	}
	return changed
}
