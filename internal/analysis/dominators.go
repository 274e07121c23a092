package analysis

import "venom/internal/ir"

// DominatorTreeResult holds the immediate-dominator mapping and the
// dominance frontiers derived from it (spec §4.3, used by MakeSSA to place
// phis and by LoopInvariantCodeMotion to find loop headers/preheaders).
type DominatorTreeResult struct {
	idom     map[*ir.BasicBlock]*ir.BasicBlock
	frontier map[*ir.BasicBlock]map[*ir.BasicBlock]bool
	rpoIndex map[*ir.BasicBlock]int
}

// DominatorTreeAnalysis computes the dominator tree with the Cooper-Harvey-
// Kennedy iterative fixed-point algorithm (simpler to verify by inspection
// than Lengauer-Tarjan and plenty fast for the block counts a single
// function has).
type DominatorTreeAnalysis struct{}

func (*DominatorTreeAnalysis) Dependencies() []Kind { return []Kind{KindCFG} }

func (*DominatorTreeAnalysis) Analyze(cache *Cache, fn *ir.Function) Result {
	cfg := RequestCFG(cache)
	rpo := cfg.RPO
	if len(rpo) == 0 {
		return &DominatorTreeResult{idom: map[*ir.BasicBlock]*ir.BasicBlock{}, frontier: map[*ir.BasicBlock]map[*ir.BasicBlock]bool{}}
	}

	rpoIndex := make(map[*ir.BasicBlock]int, len(rpo))
	for i, b := range rpo {
		rpoIndex[b] = i
	}

	entry := rpo[0]
	idom := make(map[*ir.BasicBlock]*ir.BasicBlock, len(rpo))
	idom[entry] = entry

	changed := true
	for changed {
		changed = false
		for _, b := range rpo[1:] {
			var newIdom *ir.BasicBlock
			for _, pred := range b.Predecessors {
				if idom[pred] == nil {
					continue
				}
				if newIdom == nil {
					newIdom = pred
					continue
				}
				newIdom = intersect(newIdom, pred, idom, rpoIndex)
			}
			if newIdom != nil && idom[b] != newIdom {
				idom[b] = newIdom
				changed = true
			}
		}
	}
	idom[entry] = nil // entry has no dominator

	frontier := make(map[*ir.BasicBlock]map[*ir.BasicBlock]bool)
	for _, b := range rpo {
		if len(b.Predecessors) < 2 {
			continue
		}
		for _, pred := range b.Predecessors {
			runner := pred
			for runner != nil && runner != idom[b] {
				if frontier[runner] == nil {
					frontier[runner] = make(map[*ir.BasicBlock]bool)
				}
				frontier[runner][b] = true
				runner = idom[runner]
			}
		}
	}

	return &DominatorTreeResult{idom: idom, frontier: frontier, rpoIndex: rpoIndex}
}

func intersect(a, b *ir.BasicBlock, idom map[*ir.BasicBlock]*ir.BasicBlock, rpoIndex map[*ir.BasicBlock]int) *ir.BasicBlock {
	for a != b {
		for rpoIndex[a] > rpoIndex[b] {
			a = idom[a]
		}
		for rpoIndex[b] > rpoIndex[a] {
			b = idom[b]
		}
	}
	return a
}

// IDom returns b's immediate dominator, or nil for the entry block.
func (r *DominatorTreeResult) IDom(b *ir.BasicBlock) *ir.BasicBlock { return r.idom[b] }

// Dominates reports whether a dominates b (reflexively: a dominates a).
func (r *DominatorTreeResult) Dominates(a, b *ir.BasicBlock) bool {
	for cur := b; cur != nil; cur = r.idom[cur] {
		if cur == a {
			return true
		}
	}
	return a == b
}

// Frontier returns b's dominance frontier: every block b dominates a
// predecessor of but does not strictly dominate itself.
func (r *DominatorTreeResult) Frontier(b *ir.BasicBlock) []*ir.BasicBlock {
	set := r.frontier[b]
	out := make([]*ir.BasicBlock, 0, len(set))
	for f := range set {
		out = append(out, f)
	}
	return out
}

func RequestDominatorTree(cache *Cache) *DominatorTreeResult {
	return cache.Request(KindDominatorTree).(*DominatorTreeResult)
}
