package passes

import (
	"venom/internal/analysis"
	"venom/internal/ir"
)

// AssertElimination drops an `assert` whose condition is a literal known
// nonzero -- it can never fire. OverflowElimination folds a checked
// arithmetic op's "ok" bit to a known-true literal when the operands make
// overflow statically impossible (adding/subtracting zero, multiplying by
// zero or one), so a later AssertElimination run removes the now-trivial
// guard (spec §4.6).
type AssertElimination struct{}

func (AssertElimination) Name() string { return "assert_elimination" }

func (AssertElimination) Run(cache *analysis.Cache, fn *ir.Function) bool {
	changed := false
	for _, b := range fn.Blocks() {
		for _, inst := range b.Instructions {
			if inst.Opcode != ir.OpAssert || inst.IsNop() {
				continue
			}
			if l, ok := inst.Operands[0].(*ir.Literal); ok && !l.IsZero() {
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

type OverflowElimination struct{}

func (OverflowElimination) Name() string { return "overflow_elimination" }

func (OverflowElimination) Run(cache *analysis.Cache, fn *ir.Function) bool {
	changed := false
	for _, b := range fn.Blocks() {
		for _, inst := range b.Instructions {
			if inst.IsNop() || len(inst.ExtraOutputs) != 1 {
				continue
			}
			if !provablyOverflowFree(inst) {
				continue
			}
			replaceAllUses(fn, inst.ExtraOutputs[0], ir.NewLiteral(1))
			inst.ExtraOutputs = nil
			changed = true
		}
	}
	if changed {
		removeNops(fn)
		cache.InvalidateAll()
	}
	return changed
}

func provablyOverflowFree(inst *ir.Instruction) bool {
	a, aOk := inst.Operands[0].(*ir.Literal)
	b, bOk := inst.Operands[1].(*ir.Literal)
	switch inst.Opcode {
	case ir.OpAddChk:
		return (aOk && a.IsZero()) || (bOk && b.IsZero())
	case ir.OpSubChk:
		return bOk && b.IsZero()
	case ir.OpMulChk:
		if aOk && (a.IsZero() || a.IsOne()) {
			return true
		}
		return bOk && (b.IsZero() || b.IsOne())
	default:
		return false
	}
}
