package passes

import (
	"testing"

	"venom/internal/ir"
)

func TestAssertEliminationDropsKnownTrueAssert(t *testing.T) {
	fn := ir.NewFunction("f")
	entry := fn.AddBlock(ir.NewBasicBlock("entry"))
	assert := fn.NewInstruction(ir.OpAssert, ir.NewLiteral(1))
	entry.Append(assert)
	entry.SetTerminator(fn.NewInstruction(ir.OpStop))

	changed := (AssertElimination{}).Run(newCache(fn), fn)
	if !changed {
		t.Fatalf("expected the always-true assert to be removed")
	}
	if len(entry.Instructions) != 1 {
		t.Fatalf("expected only the terminator to remain, got %d instructions", len(entry.Instructions))
	}
}

func TestAssertEliminationLeavesVariableConditionAlone(t *testing.T) {
	fn := ir.NewFunction("f")
	entry := fn.AddBlock(ir.NewBasicBlock("entry"))
	c := &ir.Variable{Base: "c"}
	assert := fn.NewInstruction(ir.OpAssert, c)
	entry.Append(assert)
	entry.SetTerminator(fn.NewInstruction(ir.OpStop))

	changed := (AssertElimination{}).Run(newCache(fn), fn)
	if changed {
		t.Fatalf("expected no change: the condition isn't a known constant")
	}
}

func TestOverflowEliminationFoldsAddByZero(t *testing.T) {
	fn := ir.NewFunction("f")
	entry := fn.AddBlock(ir.NewBasicBlock("entry"))
	x := &ir.Variable{Base: "x"}
	addChk := fn.NewInstruction(ir.OpAddChk, x, ir.NewLiteral(0))
	addChk.Output = fn.FreshVariable("sum", ir.U256)
	ok := fn.FreshVariable("ok", ir.Bool)
	addChk.ExtraOutputs = []*ir.Variable{ok}
	entry.Append(addChk)
	assert := fn.NewInstruction(ir.OpAssert, ok)
	entry.Append(assert)
	entry.SetTerminator(fn.NewInstruction(ir.OpRet, addChk.Output))

	changed := (OverflowElimination{}).Run(newCache(fn), fn)
	if !changed {
		t.Fatalf("expected add_chk's overflow bit to fold: adding zero never overflows")
	}
	if len(addChk.ExtraOutputs) != 0 {
		t.Errorf("expected add_chk's extra output to be cleared, got %v", addChk.ExtraOutputs)
	}
	lit, ok2 := assert.Operands[0].(*ir.Literal)
	if !ok2 || lit.Uint64() != 1 {
		t.Errorf("expected assert's condition to be folded to literal 1, got %v", assert.Operands[0])
	}
}

func TestOverflowEliminationLeavesUnprovenMulAlone(t *testing.T) {
	fn := ir.NewFunction("f")
	entry := fn.AddBlock(ir.NewBasicBlock("entry"))
	x := &ir.Variable{Base: "x"}
	y := &ir.Variable{Base: "y"}
	mulChk := fn.NewInstruction(ir.OpMulChk, x, y)
	mulChk.Output = fn.FreshVariable("prod", ir.U256)
	ok := fn.FreshVariable("ok", ir.Bool)
	mulChk.ExtraOutputs = []*ir.Variable{ok}
	entry.Append(mulChk)
	entry.SetTerminator(fn.NewInstruction(ir.OpRet, mulChk.Output, ok))

	changed := (OverflowElimination{}).Run(newCache(fn), fn)
	if changed {
		t.Fatalf("expected no change: neither operand is a provably-safe literal")
	}
	if len(mulChk.ExtraOutputs) != 1 {
		t.Errorf("expected the overflow bit to remain")
	}
}
