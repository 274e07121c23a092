package passes

import (
	"testing"

	"venom/internal/ir"
)

func TestReduceLiteralsCodesizeMaterializesRepeatedAllOnes(t *testing.T) {
	fn := ir.NewFunction("f")
	entry := fn.AddBlock(ir.NewBasicBlock("entry"))
	allOnes := ir.LiteralFromBig(maxUint())
	and1 := fn.NewInstruction(ir.OpAnd, &ir.Variable{Base: "x"}, allOnes)
	and1.Output = fn.FreshVariable("r1", ir.U256)
	entry.Append(and1)
	and2 := fn.NewInstruction(ir.OpAnd, &ir.Variable{Base: "y"}, ir.LiteralFromBig(maxUint()))
	and2.Output = fn.FreshVariable("r2", ir.U256)
	entry.Append(and2)
	entry.Append(fn.NewInstruction(ir.OpSink, and1.Output, and2.Output))
	entry.SetTerminator(fn.NewInstruction(ir.OpStop))

	changed := (ReduceLiteralsCodesize{}).Run(newCache(fn), fn)
	if !changed {
		t.Fatalf("expected the repeated all-ones literal to be materialized")
	}
	var notInst *ir.Instruction
	for _, inst := range entry.Instructions {
		if inst.Opcode == ir.OpNot {
			notInst = inst
		}
	}
	if notInst == nil {
		t.Fatalf("expected a single `not 0` materialization")
	}
	v1, ok1 := and1.Operands[1].(*ir.Variable)
	v2, ok2 := and2.Operands[1].(*ir.Variable)
	if !ok1 || !ok2 || !v1.Equal(notInst.Output) || !v2.Equal(notInst.Output) {
		t.Errorf("expected both uses to reference the materialized not, got %v and %v", and1.Operands[1], and2.Operands[1])
	}
}

func TestReduceLiteralsCodesizeLeavesOtherLiteralsAlone(t *testing.T) {
	fn := ir.NewFunction("f")
	entry := fn.AddBlock(ir.NewBasicBlock("entry"))
	and := fn.NewInstruction(ir.OpAnd, &ir.Variable{Base: "x"}, ir.NewLiteral(255))
	and.Output = fn.FreshVariable("r", ir.U256)
	entry.Append(and)
	entry.SetTerminator(fn.NewInstruction(ir.OpRet, and.Output))

	changed := (ReduceLiteralsCodesize{}).Run(newCache(fn), fn)
	if changed {
		t.Fatalf("expected no change: 255 isn't the all-ones pattern")
	}
}
