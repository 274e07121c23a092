package passes

import (
	"strings"
	"venom/internal/analysis"
	"venom/internal/ir"
)

// CommonSubexpressionElimination replaces a pure instruction with an
// earlier one in the same block that computes the identical (opcode,
// operands) tuple, reusing its output instead of recomputing it (spec
// §4.4). Scoped to a single block: a cross-block version would need the
// dominator tree to know which earlier computation actually reaches this
// point, which LoopInvariantCodeMotion and MakeSSA already use elsewhere,
// but is not needed for the common case of redundant address arithmetic
// recomputed within one block.
type CommonSubexpressionElimination struct{}

func (CommonSubexpressionElimination) Name() string { return "common_subexpression_elimination" }

func (CommonSubexpressionElimination) Run(cache *analysis.Cache, fn *ir.Function) bool {
	changed := false
	for _, b := range fn.Blocks() {
		seen := make(map[string]*ir.Instruction)
		for _, inst := range b.Instructions {
			if inst.IsNop() || !inst.Opcode.IsPure() || inst.Output == nil || len(inst.ExtraOutputs) > 0 {
				continue
			}
			key := cseKey(inst)
			if prior, ok := seen[key]; ok {
				replaceAllUses(fn, inst.Output, prior.Output)
				inst.MakeNop()
				changed = true
				continue
			}
			seen[key] = inst
		}
	}
	if changed {
		removeNops(fn)
		cache.InvalidateAll()
	}
	return changed
}

func cseKey(inst *ir.Instruction) string {
	var b strings.Builder
	b.WriteString(string(inst.Opcode))
	for _, op := range inst.Operands {
		b.WriteByte('|')
		b.WriteString(op.String())
	}
	return b.String()
}
