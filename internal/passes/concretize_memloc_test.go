package passes

import (
	"testing"

	"venom/internal/analysis"
	"venom/internal/ir"
)

func TestConcretizeMemLocAssignsLiteralOffsetToAlloca(t *testing.T) {
	fn := ir.NewFunction("f")
	entry := fn.AddBlock(ir.NewBasicBlock("entry"))
	alloca := fn.NewInstruction(ir.OpAlloca)
	alloca.Output = fn.FreshVariable("slot", ir.U256)
	entry.Append(alloca)
	store := fn.NewInstruction(ir.OpMStore, alloca.Output, ir.NewLiteral(1))
	entry.Append(store)
	entry.SetTerminator(fn.NewInstruction(ir.OpStop))

	ctx := ir.NewContext("test")
	cache := analysis.NewCache(fn, ctx)
	changed := (ConcretizeMemLoc{}).Run(cache, fn)
	if !changed {
		t.Fatalf("expected the alloca to be concretized")
	}
	if _, ok := store.Operands[0].(*ir.Literal); !ok {
		t.Fatalf("expected the store's address operand to become a literal, got %v", store.Operands[0])
	}
	for _, inst := range entry.Instructions {
		if inst.Opcode == ir.OpAlloca {
			t.Errorf("expected the alloca to be removed once concretized")
		}
	}
}

func TestConcretizeMemLocSubstitutesAbstractMemLoc(t *testing.T) {
	fn := ir.NewFunction("f")
	entry := fn.AddBlock(ir.NewBasicBlock("entry"))
	ml := &ir.AbstractMemLoc{ID: 1, Kind: ir.MemLocScratch, Size: 32}
	load := fn.NewInstruction(ir.OpMLoad, ml)
	load.Output = fn.FreshVariable("v", ir.U256)
	entry.Append(load)
	entry.SetTerminator(fn.NewInstruction(ir.OpRet, load.Output))

	ctx := ir.NewContext("test")
	cache := analysis.NewCache(fn, ctx)
	changed := (ConcretizeMemLoc{}).Run(cache, fn)
	if !changed {
		t.Fatalf("expected the abstract memloc operand to be concretized")
	}
	if _, ok := load.Operands[0].(*ir.Literal); !ok {
		t.Errorf("expected the memloc operand to become a literal offset, got %v", load.Operands[0])
	}
}
