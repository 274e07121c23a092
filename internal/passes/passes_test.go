package passes

import (
	"testing"

	"venom/internal/analysis"
	"venom/internal/ir"
)

func newCache(fn *ir.Function) *analysis.Cache {
	return analysis.NewCache(fn, nil)
}

func TestAlgebraicOptimizationFoldsConstants(t *testing.T) {
	fn := ir.NewFunction("f")
	entry := fn.AddBlock(ir.NewBasicBlock("entry"))
	add := fn.NewInstruction(ir.OpAdd, ir.NewLiteral(2), ir.NewLiteral(3))
	add.Output = fn.FreshVariable("sum", ir.U256)
	entry.Append(add)
	sink := fn.NewInstruction(ir.OpSink, add.Output)
	entry.Append(sink)
	entry.SetTerminator(fn.NewInstruction(ir.OpStop))

	changed := (AlgebraicOptimization{}).Run(newCache(fn), fn)
	if !changed {
		t.Fatalf("expected a change")
	}
	if _, ok := sink.Operands[0].(*ir.Literal); !ok {
		t.Fatalf("expected sink's operand to be folded to a literal, got %T", sink.Operands[0])
	}
	if sink.Operands[0].(*ir.Literal).Uint64() != 5 {
		t.Errorf("expected folded value 5, got %s", sink.Operands[0])
	}
}

func TestAlgebraicOptimizationIdentityAddZero(t *testing.T) {
	fn := ir.NewFunction("f")
	entry := fn.AddBlock(ir.NewBasicBlock("entry"))
	x := &ir.Variable{Base: "x"}
	add := fn.NewInstruction(ir.OpAdd, x, ir.NewLiteral(0))
	add.Output = fn.FreshVariable("y", ir.U256)
	entry.Append(add)
	entry.SetTerminator(fn.NewInstruction(ir.OpRet, add.Output))

	changed := (AlgebraicOptimization{}).Run(newCache(fn), fn)
	if !changed {
		t.Fatalf("expected x+0 to fold away")
	}
	term := entry.Terminator()
	v, ok := term.Operands[0].(*ir.Variable)
	if !ok || v.Base != "x" {
		t.Errorf("expected ret to reference %%x directly, got %v", term.Operands[0])
	}
}

func TestSimplifyCFGRemovesUnreachableBlock(t *testing.T) {
	fn := ir.NewFunction("f")
	entry := fn.AddBlock(ir.NewBasicBlock("entry"))
	dead := fn.AddBlock(ir.NewBasicBlock("dead"))
	entry.SetTerminator(fn.NewInstruction(ir.OpStop))
	dead.SetTerminator(fn.NewInstruction(ir.OpStop))

	cache := newCache(fn)
	analysis.RequestCFG(cache)
	changed := (SimplifyCFG{}).Run(cache, fn)
	if !changed {
		t.Fatalf("expected dead block to be removed")
	}
	if fn.GetBlock("dead") != nil {
		t.Errorf("expected dead block to be gone")
	}
}

func TestSimplifyCFGMergesStraightLine(t *testing.T) {
	fn := ir.NewFunction("f")
	entry := fn.AddBlock(ir.NewBasicBlock("entry"))
	next := fn.AddBlock(ir.NewBasicBlock("next"))
	entry.SetTerminator(fn.NewInstruction(ir.OpJmp, &ir.Label{Name: "next"}))
	next.SetTerminator(fn.NewInstruction(ir.OpStop))

	cache := newCache(fn)
	analysis.RequestCFG(cache)
	changed := (SimplifyCFG{}).Run(cache, fn)
	if !changed {
		t.Fatalf("expected merge")
	}
	if len(fn.Blocks()) != 1 {
		t.Errorf("expected blocks to merge into one, got %d", len(fn.Blocks()))
	}
	if entry.Terminator().Opcode != ir.OpStop {
		t.Errorf("expected merged block to end in stop, got %s", entry.Terminator().Opcode)
	}
}

func TestAssignEliminationPropagatesCopy(t *testing.T) {
	fn := ir.NewFunction("f")
	entry := fn.AddBlock(ir.NewBasicBlock("entry"))
	assign := fn.NewInstruction(ir.OpAssign, ir.NewLiteral(7))
	assign.Output = fn.FreshVariable("y", ir.U256)
	entry.Append(assign)
	entry.SetTerminator(fn.NewInstruction(ir.OpRet, assign.Output))

	changed := (AssignElimination{}).Run(newCache(fn), fn)
	if !changed {
		t.Fatalf("expected assign to be eliminated")
	}
	term := entry.Terminator()
	lit, ok := term.Operands[0].(*ir.Literal)
	if !ok || lit.Uint64() != 7 {
		t.Errorf("expected ret to reference literal 7 directly, got %v", term.Operands[0])
	}
}

func TestPhiEliminationDropsTrivialPhi(t *testing.T) {
	fn := ir.NewFunction("f")
	entry := fn.AddBlock(ir.NewBasicBlock("entry"))
	left := fn.AddBlock(ir.NewBasicBlock("left"))
	right := fn.AddBlock(ir.NewBasicBlock("right"))
	join := fn.AddBlock(ir.NewBasicBlock("join"))
	entry.SetTerminator(fn.NewInstruction(ir.OpJnz, ir.NewLiteral(1), &ir.Label{Name: "left"}, &ir.Label{Name: "right"}))
	left.SetTerminator(fn.NewInstruction(ir.OpJmp, &ir.Label{Name: "join"}))
	right.SetTerminator(fn.NewInstruction(ir.OpJmp, &ir.Label{Name: "join"}))

	phi := fn.NewInstruction(ir.OpPhi)
	phi.Output = &ir.Variable{Base: "x", Version: 3}
	phi.PhiInputs = []ir.PhiInput{
		{Pred: left, Value: ir.NewLiteral(9)},
		{Pred: right, Value: ir.NewLiteral(9)},
	}
	join.PrependPhi(phi)
	join.SetTerminator(fn.NewInstruction(ir.OpRet, phi.Output))

	cache := newCache(fn)
	analysis.RequestCFG(cache)
	changed := (PhiElimination{}).Run(cache, fn)
	if !changed {
		t.Fatalf("expected trivial phi to be eliminated")
	}
	term := join.Terminator()
	lit, ok := term.Operands[0].(*ir.Literal)
	if !ok || lit.Uint64() != 9 {
		t.Errorf("expected ret to reference literal 9 directly, got %v", term.Operands[0])
	}
}

func TestRemoveUnusedVariablesDropsDeadPureOp(t *testing.T) {
	fn := ir.NewFunction("f")
	entry := fn.AddBlock(ir.NewBasicBlock("entry"))
	dead := fn.NewInstruction(ir.OpAdd, ir.NewLiteral(1), ir.NewLiteral(2))
	dead.Output = fn.FreshVariable("dead", ir.U256)
	entry.Append(dead)
	entry.SetTerminator(fn.NewInstruction(ir.OpStop))

	changed := (RemoveUnusedVariables{}).Run(newCache(fn), fn)
	if !changed {
		t.Fatalf("expected dead instruction to be removed")
	}
	if len(entry.Instructions) != 1 {
		t.Errorf("expected only the terminator to remain, got %d instructions", len(entry.Instructions))
	}
}

func TestMem2VarPromotesStraightLineAlloca(t *testing.T) {
	fn := ir.NewFunction("f")
	entry := fn.AddBlock(ir.NewBasicBlock("entry"))
	alloca := fn.NewInstruction(ir.OpAlloca)
	alloca.Output = fn.FreshVariable("slot", ir.U256)
	entry.Append(alloca)
	store := fn.NewInstruction(ir.OpMStore, alloca.Output, ir.NewLiteral(42))
	entry.Append(store)
	load := fn.NewInstruction(ir.OpMLoad, alloca.Output)
	load.Output = fn.FreshVariable("v", ir.U256)
	entry.Append(load)
	entry.SetTerminator(fn.NewInstruction(ir.OpRet, load.Output))

	changed := (Mem2Var{}).Run(newCache(fn), fn)
	if !changed {
		t.Fatalf("expected promotion")
	}
	term := entry.Terminator()
	lit, ok := term.Operands[0].(*ir.Literal)
	if !ok || lit.Uint64() != 42 {
		t.Errorf("expected ret to reference literal 42 directly, got %v", term.Operands[0])
	}
	for _, inst := range entry.Instructions {
		if inst.Opcode == ir.OpMLoad || inst.Opcode == ir.OpMStore {
			t.Errorf("expected mload/mstore to be eliminated, found %s", inst.Opcode)
		}
	}
}

func TestMakeSSAInsertsPhiAtJoin(t *testing.T) {
	fn := ir.NewFunction("f")
	entry := fn.AddBlock(ir.NewBasicBlock("entry"))
	left := fn.AddBlock(ir.NewBasicBlock("left"))
	right := fn.AddBlock(ir.NewBasicBlock("right"))
	join := fn.AddBlock(ir.NewBasicBlock("join"))
	entry.SetTerminator(fn.NewInstruction(ir.OpJnz, ir.NewLiteral(1), &ir.Label{Name: "left"}, &ir.Label{Name: "right"}))

	defLeft := fn.NewInstruction(ir.OpAssign, ir.NewLiteral(1))
	defLeft.Output = &ir.Variable{Base: "x"}
	left.Append(defLeft)
	left.SetTerminator(fn.NewInstruction(ir.OpJmp, &ir.Label{Name: "join"}))

	defRight := fn.NewInstruction(ir.OpAssign, ir.NewLiteral(2))
	defRight.Output = &ir.Variable{Base: "x"}
	right.Append(defRight)
	right.SetTerminator(fn.NewInstruction(ir.OpJmp, &ir.Label{Name: "join"}))

	use := fn.NewInstruction(ir.OpRet, &ir.Variable{Base: "x"})
	join.SetTerminator(use)

	cache := newCache(fn)
	changed := (MakeSSA{}).Run(cache, fn)
	if !changed {
		t.Fatalf("expected MakeSSA to insert a phi")
	}
	phis := join.Phis()
	if len(phis) != 1 {
		t.Fatalf("expected exactly one phi at join, got %d", len(phis))
	}
	if len(phis[0].PhiInputs) != 2 {
		t.Fatalf("expected phi to have 2 inputs, got %d", len(phis[0].PhiInputs))
	}
	for _, in := range phis[0].PhiInputs {
		if in.Value == nil {
			t.Errorf("expected every phi input to be filled in by renaming")
		}
	}
	retVar, ok := use.Operands[0].(*ir.Variable)
	if !ok || retVar.Version == 0 {
		t.Errorf("expected ret's use to be renamed to a versioned variable, got %v", use.Operands[0])
	}
}
