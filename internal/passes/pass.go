// Package passes implements Venom's function-local transformation passes
// (spec §5). Each pass is a single mechanical transformation; the pipeline
// package decides ordering and iterates passes to a fixed point.
package passes

import (
	"venom/internal/analysis"
	"venom/internal/ir"
)

// Pass is the uniform shape every transformation pass implements (spec
// §4.1, grounded on the teacher's OptimizationPass interface): Run reports
// whether it changed the function, so the pipeline can re-run a pass list
// to a fixed point without guessing.
type Pass interface {
	Name() string
	Run(cache *analysis.Cache, fn *ir.Function) bool
}

// removeNops splices out every tombstoned instruction from every block of
// fn, returning whether anything was removed. Several passes leave nops
// behind (MakeNop) rather than mutating slices inline; this is the common
// cleanup they share.
func removeNops(fn *ir.Function) bool {
	changed := false
	for _, b := range fn.Blocks() {
		kept := b.Instructions[:0]
		for _, inst := range b.Instructions {
			if inst.IsNop() {
				changed = true
				continue
			}
			kept = append(kept, inst)
		}
		b.Instructions = kept
	}
	return changed
}
