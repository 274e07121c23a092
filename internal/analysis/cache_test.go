package analysis

import (
	"testing"

	"venom/internal/ir"
)

func diamondFunction() *ir.Function {
	fn := ir.NewFunction("f")
	entry := fn.AddBlock(ir.NewBasicBlock("entry"))
	left := fn.AddBlock(ir.NewBasicBlock("left"))
	right := fn.AddBlock(ir.NewBasicBlock("right"))
	join := fn.AddBlock(ir.NewBasicBlock("join"))

	entry.SetTerminator(fn.NewInstruction(ir.OpJnz, ir.NewLiteral(1), &ir.Label{Name: "left"}, &ir.Label{Name: "right"}))
	left.SetTerminator(fn.NewInstruction(ir.OpJmp, &ir.Label{Name: "join"}))
	right.SetTerminator(fn.NewInstruction(ir.OpJmp, &ir.Label{Name: "join"}))
	join.SetTerminator(fn.NewInstruction(ir.OpStop))
	return fn
}

func TestCFGAnalysisBuildsEdges(t *testing.T) {
	fn := diamondFunction()
	cache := NewCache(fn, nil)
	cfg := RequestCFG(cache)

	if len(cfg.RPO) != 4 {
		t.Fatalf("expected 4 blocks in RPO, got %d", len(cfg.RPO))
	}
	join := fn.GetBlock("join")
	if len(join.Predecessors) != 2 {
		t.Fatalf("expected join to have 2 predecessors, got %d", len(join.Predecessors))
	}
}

func TestDominatorTreeDiamond(t *testing.T) {
	fn := diamondFunction()
	cache := NewCache(fn, nil)
	RequestCFG(cache)
	dt := RequestDominatorTree(cache)

	entry := fn.GetBlock("entry")
	left := fn.GetBlock("left")
	join := fn.GetBlock("join")

	if dt.IDom(left) != entry {
		t.Errorf("expected entry to idom left")
	}
	if dt.IDom(join) != entry {
		t.Errorf("expected entry to idom join (left/right don't dominate join)")
	}
	if !dt.Dominates(entry, join) {
		t.Errorf("expected entry to dominate join")
	}
	if dt.Dominates(left, join) {
		t.Errorf("did not expect left to dominate join")
	}
}

func TestCacheInvalidationRecomputes(t *testing.T) {
	fn := diamondFunction()
	cache := NewCache(fn, nil)
	first := RequestCFG(cache)
	second := cache.Request(KindCFG)
	if first != second {
		t.Errorf("expected memoized result to be returned without invalidation")
	}
	cache.Invalidate(KindCFG)
	third := cache.Request(KindCFG)
	if first == third {
		t.Errorf("expected a fresh result after invalidation")
	}
}
