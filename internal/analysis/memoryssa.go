package analysis

import "venom/internal/ir"

// MemorySSAResult gives each memory-effecting instruction a per-address-
// space version number: two instructions see the same version for a space
// iff no write to that space occurs between them in program order within
// the same block (spec §4.3, "per-address-space versioning"). No pass in
// this module requests it: LoadElimination, RedundantLoadElimination and
// MemMerging track addresses themselves.
//
// Versions are scoped per block. A query spanning two different blocks
// always reports "may be clobbered" rather than attempting a cross-block
// memory-SSA join.
type MemorySSAResult struct {
	versionAfter map[*ir.Instruction]map[ir.AddressSpace]int
	versionBefore map[*ir.Instruction]map[ir.AddressSpace]int
}

type MemorySSAAnalysis struct{}

func (*MemorySSAAnalysis) Dependencies() []Kind { return []Kind{KindCFG} }

func (*MemorySSAAnalysis) Analyze(cache *Cache, fn *ir.Function) Result {
	spaces := []ir.AddressSpace{ir.SpaceMemory, ir.SpaceStorage, ir.SpaceTransient, ir.SpaceCalldata, ir.SpaceCode, ir.SpaceData}

	versionBefore := make(map[*ir.Instruction]map[ir.AddressSpace]int)
	versionAfter := make(map[*ir.Instruction]map[ir.AddressSpace]int)

	for _, b := range fn.Blocks() {
		cur := make(map[ir.AddressSpace]int, len(spaces))
		for _, inst := range b.Instructions {
			before := make(map[ir.AddressSpace]int, len(spaces))
			for k, v := range cur {
				before[k] = v
			}
			versionBefore[inst] = before

			_, writes := inst.Effects()
			for _, sp := range spaces {
				if writes.Intersects(sp.Effect()) {
					cur[sp] = cur[sp] + 1
				}
			}
			after := make(map[ir.AddressSpace]int, len(spaces))
			for k, v := range cur {
				after[k] = v
			}
			versionAfter[inst] = after
		}
	}

	return &MemorySSAResult{versionAfter: versionAfter, versionBefore: versionBefore}
}

// SameVersion reports whether space has not been written between a and b
// (both instructions must be in the same block; cross-block pairs always
// report false).
func (r *MemorySSAResult) SameVersion(a, b *ir.Instruction, space ir.AddressSpace) bool {
	if a.Block != b.Block || a.Block == nil {
		return false
	}
	after, okA := r.versionAfter[a]
	before, okB := r.versionBefore[b]
	if !okA || !okB {
		return false
	}
	return after[space] == before[space]
}

func RequestMemorySSA(cache *Cache) *MemorySSAResult {
	return cache.Request(KindMemorySSA).(*MemorySSAResult)
}
