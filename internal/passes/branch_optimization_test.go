package passes

import (
	"testing"

	"venom/internal/ir"
)

func TestBranchOptimizationUnwrapsNegatedCondition(t *testing.T) {
	fn := ir.NewFunction("f")
	entry := fn.AddBlock(ir.NewBasicBlock("entry"))
	fn.AddBlock(ir.NewBasicBlock("t"))
	fn.AddBlock(ir.NewBasicBlock("f"))
	fn.GetBlock("t").SetTerminator(fn.NewInstruction(ir.OpStop))
	fn.GetBlock("f").SetTerminator(fn.NewInstruction(ir.OpStop))

	c := &ir.Variable{Base: "c"}
	not := fn.NewInstruction(ir.OpIsZero, c)
	not.Output = fn.FreshVariable("notc", ir.Bool)
	entry.Append(not)
	entry.SetTerminator(fn.NewInstruction(ir.OpJnz, not.Output, &ir.Label{Name: "t"}, &ir.Label{Name: "f"}))

	changed := (BranchOptimization{}).Run(newCache(fn), fn)
	if !changed {
		t.Fatalf("expected the negated condition to unwrap")
	}
	term := entry.Terminator()
	cv, ok := term.Operands[0].(*ir.Variable)
	if !ok || !cv.Equal(c) {
		t.Fatalf("expected jnz's condition to become %%c directly, got %v", term.Operands[0])
	}
	thenLbl := term.Operands[1].(*ir.Label)
	elseLbl := term.Operands[2].(*ir.Label)
	if thenLbl.Name != "f" || elseLbl.Name != "t" {
		t.Errorf("expected the true/false arms to swap, got then=%s else=%s", thenLbl.Name, elseLbl.Name)
	}
}

func TestBranchOptimizationThreadsTrampoline(t *testing.T) {
	fn := ir.NewFunction("f")
	entry := fn.AddBlock(ir.NewBasicBlock("entry"))
	trampoline := fn.AddBlock(ir.NewBasicBlock("trampoline"))
	final := fn.AddBlock(ir.NewBasicBlock("final"))

	entry.SetTerminator(fn.NewInstruction(ir.OpJmp, &ir.Label{Name: "trampoline"}))
	trampoline.SetTerminator(fn.NewInstruction(ir.OpJmp, &ir.Label{Name: "final"}))
	final.SetTerminator(fn.NewInstruction(ir.OpStop))

	changed := (BranchOptimization{}).Run(newCache(fn), fn)
	if !changed {
		t.Fatalf("expected entry's jmp to thread through the trampoline")
	}
	target := entry.Terminator().Operands[0].(*ir.Label)
	if target.Name != "final" {
		t.Errorf("expected entry to jump straight to final, got %s", target.Name)
	}
}
