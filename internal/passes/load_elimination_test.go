package passes

import (
	"testing"

	"venom/internal/ir"
)

func TestLoadEliminationForwardsStoredValue(t *testing.T) {
	fn := ir.NewFunction("f")
	entry := fn.AddBlock(ir.NewBasicBlock("entry"))
	store := fn.NewInstruction(ir.OpMStore, ir.NewLiteral(0), ir.NewLiteral(42))
	entry.Append(store)
	load := fn.NewInstruction(ir.OpMLoad, ir.NewLiteral(0))
	load.Output = fn.FreshVariable("v", ir.U256)
	entry.Append(load)
	entry.SetTerminator(fn.NewInstruction(ir.OpRet, load.Output))

	changed := (LoadElimination{Space: ir.SpaceMemory}).Run(newCache(fn), fn)
	if !changed {
		t.Fatalf("expected the load to be forwarded from the preceding store")
	}
	term := entry.Terminator()
	lit, ok := term.Operands[0].(*ir.Literal)
	if !ok || lit.Uint64() != 42 {
		t.Errorf("expected ret to reference literal 42 directly, got %v", term.Operands[0])
	}
}

// TestLoadEliminationAcrossEquivalentVariables covers S3: once
// AssignElimination has already unified %2 = %1's copy into a single
// variable, two loads of that one address collapse to a single mload, the
// second load's uses forwarded to the first's output.
func TestLoadEliminationAcrossEquivalentVariables(t *testing.T) {
	fn := ir.NewFunction("f")
	entry := fn.AddBlock(ir.NewBasicBlock("entry"))

	v1 := fn.FreshVariable("v1", ir.U256)
	assignOne := fn.NewInstruction(ir.OpAssign, ir.NewLiteral(11))
	assignOne.Output = v1
	entry.Append(assignOne)

	load1 := fn.NewInstruction(ir.OpMLoad, v1)
	load1.Output = fn.FreshVariable("a", ir.U256)
	entry.Append(load1)

	load2 := fn.NewInstruction(ir.OpMLoad, v1)
	load2.Output = fn.FreshVariable("b", ir.U256)
	entry.Append(load2)

	sink := fn.NewInstruction(ir.OpSink, load1.Output, load2.Output)
	entry.Append(sink)
	entry.SetTerminator(fn.NewInstruction(ir.OpStop))

	changed := (LoadElimination{Space: ir.SpaceMemory}).Run(newCache(fn), fn)
	if !changed {
		t.Fatalf("expected the second mload to be eliminated in favor of the first")
	}
	if sink.Operands[1].(*ir.Variable).Name() != load1.Output.Name() {
		t.Errorf("expected sink's second operand to reference the first load's output, got %v", sink.Operands[1])
	}
}

func TestLoadEliminationParameterizedByStorageSpace(t *testing.T) {
	fn := ir.NewFunction("f")
	entry := fn.AddBlock(ir.NewBasicBlock("entry"))
	store := fn.NewInstruction(ir.OpSStore, ir.NewLiteral(3), ir.NewLiteral(99))
	entry.Append(store)
	load := fn.NewInstruction(ir.OpSLoad, ir.NewLiteral(3))
	load.Output = fn.FreshVariable("v", ir.U256)
	entry.Append(load)
	entry.SetTerminator(fn.NewInstruction(ir.OpRet, load.Output))

	changed := (LoadElimination{Space: ir.SpaceStorage}).Run(newCache(fn), fn)
	if !changed {
		t.Fatalf("expected the sload to be forwarded from the preceding sstore")
	}
	lit, ok := entry.Terminator().Operands[0].(*ir.Literal)
	if !ok || lit.Uint64() != 99 {
		t.Errorf("expected ret to reference literal 99 directly, got %v", entry.Terminator().Operands[0])
	}
}

func TestLoadEliminationBlockedByMSize(t *testing.T) {
	fn := ir.NewFunction("f")
	entry := fn.AddBlock(ir.NewBasicBlock("entry"))
	store := fn.NewInstruction(ir.OpMStore, ir.NewLiteral(0), ir.NewLiteral(42))
	entry.Append(store)
	msize := fn.NewInstruction(ir.OpMSize)
	msize.Output = fn.FreshVariable("sz", ir.U256)
	entry.Append(msize)
	load := fn.NewInstruction(ir.OpMLoad, ir.NewLiteral(0))
	load.Output = fn.FreshVariable("v", ir.U256)
	entry.Append(load)
	sink := fn.NewInstruction(ir.OpSink, load.Output, msize.Output)
	entry.Append(sink)
	entry.SetTerminator(fn.NewInstruction(ir.OpStop))

	changed := (LoadElimination{Space: ir.SpaceMemory}).Run(newCache(fn), fn)
	if changed {
		t.Fatalf("expected no change: msize bars forwarding across it")
	}
	if _, ok := sink.Operands[0].(*ir.Variable); !ok {
		t.Errorf("expected the load to remain unforwarded")
	}
}
