package passes

import (
	"venom/internal/analysis"
	"venom/internal/ir"
)

// RevertToAssert rewrites a branch where one arm is nothing but an
// argument-less `revert 0, 0` into an `assert` guarding the surviving arm,
// collapsing two blocks and a conditional branch into one straight-line
// check (spec §4.6). Only the no-data revert shape is recognized: a revert
// with a non-trivial memory range may be reporting a specific error and
// loses that payload if folded into a plain assert.
type RevertToAssert struct{}

func (RevertToAssert) Name() string { return "revert_to_assert" }

func (RevertToAssert) Run(cache *analysis.Cache, fn *ir.Function) bool {
	changed := false
	for _, b := range fn.Blocks() {
		term := b.Terminator()
		if term == nil || term.Opcode != ir.OpJnz {
			continue
		}
		thenLbl, ok := term.Operands[1].(*ir.Label)
		if !ok {
			continue
		}
		elseLbl, ok := term.Operands[2].(*ir.Label)
		if !ok {
			continue
		}
		thenBlk := fn.GetBlock(thenLbl.Name)
		elseBlk := fn.GetBlock(elseLbl.Name)

		var survivor *ir.Label
		var cond ir.Operand
		switch {
		case isBareRevert(thenBlk) && len(thenBlk.Predecessors) == 1:
			survivor = elseLbl
			notCond := fn.NewInstruction(ir.OpIsZero, term.Operands[0])
			notCond.Output = fn.FreshVariable("revert_guard", ir.Bool)
			b.InsertBeforeTerminator(notCond)
			cond = notCond.Output
		case isBareRevert(elseBlk) && len(elseBlk.Predecessors) == 1:
			survivor = thenLbl
			cond = term.Operands[0]
		default:
			continue
		}

		assert := fn.NewInstruction(ir.OpAssert, cond)
		b.InsertBeforeTerminator(assert)
		b.SetTerminator(fn.NewInstruction(ir.OpJmp, survivor))
		changed = true
	}
	if changed {
		cache.InvalidateAll()
	}
	return changed
}

func isBareRevert(b *ir.BasicBlock) bool {
	if b == nil || len(b.Instructions) != 1 {
		return false
	}
	inst := b.Instructions[0]
	if inst.Opcode != ir.OpRevert {
		return false
	}
	off, ok0 := inst.Operands[0].(*ir.Literal)
	length, ok1 := inst.Operands[1].(*ir.Literal)
	return ok0 && ok1 && off.IsZero() && length.IsZero()
}
