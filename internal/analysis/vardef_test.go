package analysis

import (
	"testing"

	"venom/internal/ir"
)

func TestVarDefinitionPhiJoinsRequireBothPredecessors(t *testing.T) {
	fn := diamondFunction()
	entry := fn.GetBlock("entry")
	left := fn.GetBlock("left")
	right := fn.GetBlock("right")
	join := fn.GetBlock("join")

	onlyLeft := fn.FreshVariable("v", ir.U256)
	defInst := fn.NewInstruction(ir.OpAssign, ir.NewLiteral(1))
	defInst.Output = onlyLeft
	left.InsertBeforeTerminator(defInst)

	_ = entry
	_ = right

	cache := NewCache(fn, nil)
	vd := RequestVarDefinition(cache)

	if vd.DefinedAtExit(left)[onlyLeft.Name()] != true {
		t.Errorf("expected %s defined at exit of left", onlyLeft.Name())
	}
	if vd.DefinedAtExit(join)[onlyLeft.Name()] {
		t.Errorf("did not expect %s defined at join (only one predecessor defines it)", onlyLeft.Name())
	}
}
