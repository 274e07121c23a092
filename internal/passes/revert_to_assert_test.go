package passes

import (
	"testing"

	"venom/internal/analysis"
	"venom/internal/ir"
)

func TestRevertToAssertFoldsBareRevertArm(t *testing.T) {
	fn := ir.NewFunction("f")
	entry := fn.AddBlock(ir.NewBasicBlock("entry"))
	revertBlk := fn.AddBlock(ir.NewBasicBlock("revert"))
	ok := fn.AddBlock(ir.NewBasicBlock("ok"))

	cond := &ir.Variable{Base: "cond"}
	entry.SetTerminator(fn.NewInstruction(ir.OpJnz, cond, &ir.Label{Name: "ok"}, &ir.Label{Name: "revert"}))

	revertBlk.SetTerminator(fn.NewInstruction(ir.OpRevert, ir.NewLiteral(0), ir.NewLiteral(0)))
	ok.SetTerminator(fn.NewInstruction(ir.OpStop))

	cache := newCache(fn)
	analysis.RequestCFG(cache)
	changed := (RevertToAssert{}).Run(cache, fn)
	if !changed {
		t.Fatalf("expected the bare-revert arm to fold into an assert")
	}
	term := entry.Terminator()
	if term.Opcode != ir.OpJmp {
		t.Fatalf("expected entry to end in an unconditional jmp to ok, got %s", term.Opcode)
	}
	target := term.Operands[0].(*ir.Label)
	if target.Name != "ok" {
		t.Errorf("expected jmp to target ok, got %s", target.Name)
	}
	var assert *ir.Instruction
	for _, inst := range entry.Instructions {
		if inst.Opcode == ir.OpAssert {
			assert = inst
		}
	}
	if assert == nil {
		t.Fatalf("expected an assert to have been inserted into entry")
	}
}

func TestRevertToAssertLeavesNonTrivialRevertAlone(t *testing.T) {
	fn := ir.NewFunction("f")
	entry := fn.AddBlock(ir.NewBasicBlock("entry"))
	revertBlk := fn.AddBlock(ir.NewBasicBlock("revert"))
	ok := fn.AddBlock(ir.NewBasicBlock("ok"))

	cond := &ir.Variable{Base: "cond"}
	entry.SetTerminator(fn.NewInstruction(ir.OpJnz, cond, &ir.Label{Name: "ok"}, &ir.Label{Name: "revert"}))

	revertBlk.SetTerminator(fn.NewInstruction(ir.OpRevert, ir.NewLiteral(0), ir.NewLiteral(32)))
	ok.SetTerminator(fn.NewInstruction(ir.OpStop))

	cache := newCache(fn)
	analysis.RequestCFG(cache)
	changed := (RevertToAssert{}).Run(cache, fn)
	if changed {
		t.Fatalf("expected no change: the revert carries a non-trivial payload")
	}
}
