package passes

import (
	"testing"

	"venom/internal/ir"
)

func TestLowerDLoadExpandsToCodecopyAndMLoad(t *testing.T) {
	fn := ir.NewFunction("f")
	entry := fn.AddBlock(ir.NewBasicBlock("entry"))
	dload := fn.NewInstruction(ir.OpDLoad, &ir.Label{Name: "data0"})
	dload.Output = fn.FreshVariable("v", ir.U256)
	entry.Append(dload)
	entry.SetTerminator(fn.NewInstruction(ir.OpRet, dload.Output))

	changed := (LowerDLoad{}).Run(newCache(fn), fn)
	if !changed {
		t.Fatalf("expected dload to lower")
	}
	var sawAlloca, sawCodeCopy, sawMLoad bool
	for _, inst := range entry.Instructions {
		switch inst.Opcode {
		case ir.OpAlloca:
			sawAlloca = true
		case ir.OpCodeCopy:
			sawCodeCopy = true
		case ir.OpMLoad:
			sawMLoad = true
			if inst.Output != dload.Output {
				t.Errorf("expected the lowered mload to reuse dload's original output variable")
			}
		case ir.OpDLoad:
			t.Errorf("expected no dload to remain")
		}
	}
	if !sawAlloca || !sawCodeCopy || !sawMLoad {
		t.Errorf("expected alloca+codecopy+mload, got alloca=%v codecopy=%v mload=%v", sawAlloca, sawCodeCopy, sawMLoad)
	}
}

func TestLowerDLoadBytesExpandsToCodecopy(t *testing.T) {
	fn := ir.NewFunction("f")
	entry := fn.AddBlock(ir.NewBasicBlock("entry"))
	dst := ir.NewLiteral(0)
	dloadBytes := fn.NewInstruction(ir.OpDLoadBytes, dst, &ir.Label{Name: "data0"}, ir.NewLiteral(64))
	entry.Append(dloadBytes)
	entry.SetTerminator(fn.NewInstruction(ir.OpStop))

	changed := (LowerDLoad{}).Run(newCache(fn), fn)
	if !changed {
		t.Fatalf("expected dloadbytes to lower")
	}
	found := false
	for _, inst := range entry.Instructions {
		if inst.Opcode == ir.OpCodeCopy {
			found = true
		}
		if inst.Opcode == ir.OpDLoadBytes {
			t.Errorf("expected no dloadbytes to remain")
		}
	}
	if !found {
		t.Errorf("expected a codecopy to replace dloadbytes")
	}
}
