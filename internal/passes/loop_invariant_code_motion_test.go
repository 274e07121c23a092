package passes

import (
	"testing"

	"venom/internal/analysis"
	"venom/internal/ir"
)

// TestLoopInvariantCodeMotionHoistsPureInstruction builds a loop with a
// distinct header and body (the back edge runs body->header, so the natural
// loop is {header, body} and pre is the single outside predecessor of
// header). A pure add in the body over two loop-external variables has no
// loop-carried operand, so it should be hoisted into the preheader.
func TestLoopInvariantCodeMotionHoistsPureInstruction(t *testing.T) {
	fn := ir.NewFunction("f")
	pre := fn.AddBlock(ir.NewBasicBlock("pre"))
	header := fn.AddBlock(ir.NewBasicBlock("header"))
	body := fn.AddBlock(ir.NewBasicBlock("body"))
	exit := fn.AddBlock(ir.NewBasicBlock("exit"))

	pre.SetTerminator(fn.NewInstruction(ir.OpJmp, &ir.Label{Name: "header"}))
	header.SetTerminator(fn.NewInstruction(ir.OpJnz, ir.NewLiteral(1), &ir.Label{Name: "body"}, &ir.Label{Name: "exit"}))

	a := &ir.Variable{Base: "a"}
	b := &ir.Variable{Base: "b"}
	invariant := fn.NewInstruction(ir.OpAdd, a, b)
	invariant.Output = fn.FreshVariable("inv", ir.U256)
	body.Append(invariant)
	body.SetTerminator(fn.NewInstruction(ir.OpJmp, &ir.Label{Name: "header"}))

	exit.SetTerminator(fn.NewInstruction(ir.OpRet, invariant.Output))

	cache := newCache(fn)
	analysis.RequestCFG(cache)
	analysis.RequestDominatorTree(cache)
	changed := (LoopInvariantCodeMotion{}).Run(cache, fn)
	if !changed {
		t.Fatalf("expected the invariant add to be hoisted")
	}
	found := false
	for _, inst := range pre.Instructions {
		if inst == invariant {
			found = true
		}
	}
	if !found {
		t.Errorf("expected the add to have moved into the preheader")
	}
	for _, inst := range body.Instructions {
		if inst == invariant {
			t.Errorf("expected the add to no longer be in the loop body")
		}
	}
}

func TestLoopInvariantCodeMotionLeavesLoopVaryingAlone(t *testing.T) {
	fn := ir.NewFunction("f")
	pre := fn.AddBlock(ir.NewBasicBlock("pre"))
	header := fn.AddBlock(ir.NewBasicBlock("header"))
	body := fn.AddBlock(ir.NewBasicBlock("body"))
	exit := fn.AddBlock(ir.NewBasicBlock("exit"))

	pre.SetTerminator(fn.NewInstruction(ir.OpJmp, &ir.Label{Name: "header"}))

	phi := fn.NewInstruction(ir.OpPhi)
	phi.Output = &ir.Variable{Base: "i"}
	header.PrependPhi(phi)
	header.SetTerminator(fn.NewInstruction(ir.OpJnz, ir.NewLiteral(1), &ir.Label{Name: "body"}, &ir.Label{Name: "exit"}))

	next := fn.NewInstruction(ir.OpAdd, phi.Output, ir.NewLiteral(1))
	next.Output = fn.FreshVariable("next", ir.U256)
	body.Append(next)
	body.SetTerminator(fn.NewInstruction(ir.OpJmp, &ir.Label{Name: "header"}))

	phi.PhiInputs = []ir.PhiInput{
		{Pred: pre, Value: ir.NewLiteral(0)},
		{Pred: body, Value: next.Output},
	}
	exit.SetTerminator(fn.NewInstruction(ir.OpRet, next.Output))

	cache := newCache(fn)
	analysis.RequestCFG(cache)
	analysis.RequestDominatorTree(cache)
	changed := (LoopInvariantCodeMotion{}).Run(cache, fn)
	if changed {
		t.Fatalf("expected no change: the add depends on the loop-carried phi")
	}
}
