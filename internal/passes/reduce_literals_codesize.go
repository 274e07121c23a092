package passes

import (
	"venom/internal/analysis"
	"venom/internal/ir"

	"github.com/holiman/uint256"
)

// ReduceLiteralsCodesize replaces every all-ones literal operand (the
// constant the EVM otherwise encodes as a full 32-byte PUSH) in a block,
// even a single one, with one materialized `not 0` inserted before its
// first use in that block, which assembles far smaller than a 32-byte push
// (spec §4.7, assembled-size reduction). Only the all-ones pattern is handled:
// it's the one constant every ABI decoder and bitmask idiom reaches for
// repeatedly, and it's cheap to recognize without a general "smallest push
// encoding" cost model.
type ReduceLiteralsCodesize struct{}

func (ReduceLiteralsCodesize) Name() string { return "reduce_literals_codesize" }

func (ReduceLiteralsCodesize) Run(cache *analysis.Cache, fn *ir.Function) bool {
	allOnes := new(uint256.Int).Not(uint256.NewInt(0))
	changed := false
	for _, b := range fn.Blocks() {
		var materialized *ir.Variable
		for _, inst := range b.Instructions {
			if inst.IsNop() {
				continue
			}
			for i, op := range inst.Operands {
				l, ok := op.(*ir.Literal)
				if !ok || !l.Value.Eq(allOnes) {
					continue
				}
				if materialized == nil {
					not := fn.NewInstruction(ir.OpNot, ir.NewLiteral(0))
					not.Output = fn.FreshVariable("all_ones", ir.U256)
					insertBefore(b, inst, not)
					materialized = not.Output
				}
				inst.Operands[i] = materialized
				changed = true
			}
		}
	}
	if changed {
		cache.InvalidateAll()
	}
	return changed
}
