package passes

import (
	"venom/internal/analysis"
	"venom/internal/ir"
)

// MemoryCopyElision removes an mcopy that provably does nothing: a
// zero-length copy, or a copy whose source and destination are the exact
// same literal address (spec §4.4). This runs after MemMerging so it also
// cleans up a same-address mcopy MemMerging produces from a run of
// load/store pairs that was already a self-copy.
type MemoryCopyElision struct{}

func (MemoryCopyElision) Name() string { return "memory_copy_elision" }

func (MemoryCopyElision) Run(cache *analysis.Cache, fn *ir.Function) bool {
	changed := false
	for _, b := range fn.Blocks() {
		for _, inst := range b.Instructions {
			if inst.Opcode != ir.OpMCopy || inst.IsNop() {
				continue
			}
			dst, srcOk := inst.Operands[0].(*ir.Literal)
			src, dstOk := inst.Operands[1].(*ir.Literal)
			length, lenOk := inst.Operands[2].(*ir.Literal)
			if lenOk && length.IsZero() {
				inst.MakeNop()
				changed = true
				continue
			}
			if srcOk && dstOk && dst.Equal(src) {
				inst.MakeNop()
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
