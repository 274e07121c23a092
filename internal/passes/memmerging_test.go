package passes

import (
	"testing"

	"venom/internal/ir"
)

// TestMemMergingFoldsContiguousRun covers S5: three contiguous
// mload-then-mstore word copies fold into a single mcopy.
func TestMemMergingFoldsContiguousRun(t *testing.T) {
	fn := ir.NewFunction("f")
	entry := fn.AddBlock(ir.NewBasicBlock("entry"))

	srcs := []uint64{0, 32, 64}
	dsts := []uint64{1024, 1056, 1088}
	for i := range srcs {
		load := fn.NewInstruction(ir.OpMLoad, ir.NewLiteral(srcs[i]))
		load.Output = fn.FreshVariable("w", ir.U256)
		entry.Append(load)
		store := fn.NewInstruction(ir.OpMStore, ir.NewLiteral(dsts[i]), load.Output)
		entry.Append(store)
	}
	entry.SetTerminator(fn.NewInstruction(ir.OpStop))

	changed := (MemMerging{}).Run(newCache(fn), fn)
	if !changed {
		t.Fatalf("expected the contiguous run to merge into an mcopy")
	}
	if len(entry.Instructions) != 2 {
		t.Fatalf("expected a single mcopy plus the terminator, got %d instructions", len(entry.Instructions))
	}
	mcopy := entry.Instructions[0]
	if mcopy.Opcode != ir.OpMCopy {
		t.Fatalf("expected opcode mcopy, got %s", mcopy.Opcode)
	}
	dst := mcopy.Operands[0].(*ir.Literal).Uint64()
	src := mcopy.Operands[1].(*ir.Literal).Uint64()
	length := mcopy.Operands[2].(*ir.Literal).Uint64()
	if dst != 1024 || src != 0 || length != 96 {
		t.Errorf("expected mcopy 1024, 0, 96, got %d, %d, %d", dst, src, length)
	}
}

func TestMemMergingLeavesNonContiguousCopiesAlone(t *testing.T) {
	fn := ir.NewFunction("f")
	entry := fn.AddBlock(ir.NewBasicBlock("entry"))
	load := fn.NewInstruction(ir.OpMLoad, ir.NewLiteral(0))
	load.Output = fn.FreshVariable("w", ir.U256)
	entry.Append(load)
	store := fn.NewInstruction(ir.OpMStore, ir.NewLiteral(1024), load.Output)
	entry.Append(store)
	entry.SetTerminator(fn.NewInstruction(ir.OpStop))

	changed := (MemMerging{}).Run(newCache(fn), fn)
	if changed {
		t.Fatalf("expected no change: a single load/store pair has no run to merge")
	}
}
