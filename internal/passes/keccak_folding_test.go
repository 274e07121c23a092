package passes

import (
	"testing"

	"venom/internal/ir"
)

func TestKeccakFoldingFoldsLiteralRegion(t *testing.T) {
	fn := ir.NewFunction("f")
	entry := fn.AddBlock(ir.NewBasicBlock("entry"))

	store := fn.NewInstruction(ir.OpMStore, ir.NewLiteral(0), ir.NewLiteral(42))
	entry.Append(store)

	hash := fn.NewInstruction(ir.OpSha3, ir.NewLiteral(0), ir.NewLiteral(32))
	hash.Output = fn.FreshVariable("h", ir.U256)
	entry.Append(hash)

	sink := fn.NewInstruction(ir.OpSink, hash.Output)
	entry.Append(sink)
	entry.SetTerminator(fn.NewInstruction(ir.OpStop))

	changed := (KeccakFolding{}).Run(newCache(fn), fn)
	if !changed {
		t.Fatalf("expected sha3 over a known literal word to fold")
	}
	lit, ok := sink.Operands[0].(*ir.Literal)
	if !ok {
		t.Fatalf("expected sink's operand to be folded to a literal, got %T", sink.Operands[0])
	}
	if lit.Value.IsZero() {
		t.Errorf("expected a nonzero keccak256 digest")
	}
}

func TestKeccakFoldingLeavesUnknownRegionAlone(t *testing.T) {
	fn := ir.NewFunction("f")
	entry := fn.AddBlock(ir.NewBasicBlock("entry"))

	// The word at offset 0 is never stored, so the region is unknown.
	hash := fn.NewInstruction(ir.OpSha3, ir.NewLiteral(0), ir.NewLiteral(32))
	hash.Output = fn.FreshVariable("h", ir.U256)
	entry.Append(hash)
	entry.SetTerminator(fn.NewInstruction(ir.OpRet, hash.Output))

	changed := (KeccakFolding{}).Run(newCache(fn), fn)
	if changed {
		t.Fatalf("expected no fold when the hashed region isn't known to be literal")
	}
}

func TestKeccakFoldingClearsOnInterveningWrite(t *testing.T) {
	fn := ir.NewFunction("f")
	entry := fn.AddBlock(ir.NewBasicBlock("entry"))

	store := fn.NewInstruction(ir.OpMStore, ir.NewLiteral(0), ir.NewLiteral(42))
	entry.Append(store)

	// A non-literal store anywhere in memory invalidates every tracked word.
	clobber := fn.NewInstruction(ir.OpMStore, &ir.Variable{Base: "dyn"}, ir.NewLiteral(7))
	entry.Append(clobber)

	hash := fn.NewInstruction(ir.OpSha3, ir.NewLiteral(0), ir.NewLiteral(32))
	hash.Output = fn.FreshVariable("h", ir.U256)
	entry.Append(hash)
	entry.SetTerminator(fn.NewInstruction(ir.OpRet, hash.Output))

	changed := (KeccakFolding{}).Run(newCache(fn), fn)
	if changed {
		t.Fatalf("expected an intervening non-literal store to block folding")
	}
}
