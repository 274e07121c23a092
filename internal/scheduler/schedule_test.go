package scheduler

import (
	"strings"
	"testing"

	"venom/internal/ir"
)

func tokensToString(toks []Token) string {
	var sb strings.Builder
	for _, t := range toks {
		sb.WriteString(t.String())
		sb.WriteString(" ")
	}
	return sb.String()
}

func countMnemonic(toks []Token, name string) int {
	n := 0
	for _, t := range toks {
		if t.Kind == TokenMnemonic && t.Text == name {
			n++
		}
	}
	return n
}

// buildAddFunction returns `function add(x, y): z = x + y; stop`.
func buildAddFunction() *ir.Function {
	ctx := ir.NewContext("c")
	fn := ir.NewFunction("add")
	fn.Params = []*ir.Parameter{{Name: "x", Type: ir.U256}, {Name: "y", Type: ir.U256}}
	ctx.AddFunction(fn)

	entry := fn.AddBlock(ir.NewBasicBlock("entry"))
	add := fn.NewInstruction(ir.OpAdd, &ir.Variable{Base: "x", Version: 1}, &ir.Variable{Base: "y", Version: 1})
	add.Output = fn.FreshVariable("z", ir.U256)
	entry.Append(add)
	entry.SetTerminator(fn.NewInstruction(ir.OpStop))
	return fn
}

func TestScheduleStraightLineFunction(t *testing.T) {
	fn := buildAddFunction()
	toks := Schedule(fn)

	if countMnemonic(toks, "ADD") != 1 {
		t.Fatalf("expected exactly one ADD, got stream: %s", tokensToString(toks))
	}
	if countMnemonic(toks, "JUMPDEST") == 0 {
		t.Fatalf("expected a block-entry JUMPDEST, got stream: %s", tokensToString(toks))
	}
	if countMnemonic(toks, "STOP") != 1 {
		t.Fatalf("expected exactly one STOP, got stream: %s", tokensToString(toks))
	}
}

// buildDiamondFunction builds:
//
//	entry(x):       jnz x, @then, @else
//	then:           v1 = 1; jmp @join
//	else:           v2 = 2; jmp @join
//	join:           r = phi [then: v1, else: v2]; sink r; stop
func buildDiamondFunction() *ir.Function {
	ctx := ir.NewContext("c")
	fn := ir.NewFunction("branchy")
	fn.Params = []*ir.Parameter{{Name: "x", Type: ir.U256}}
	ctx.AddFunction(fn)

	entry := fn.AddBlock(ir.NewBasicBlock("entry"))
	thenB := fn.AddBlock(ir.NewBasicBlock("then"))
	elseB := fn.AddBlock(ir.NewBasicBlock("else"))
	join := fn.AddBlock(ir.NewBasicBlock("join"))

	entry.SetTerminator(fn.NewInstruction(ir.OpJnz, &ir.Variable{Base: "x", Version: 1},
		&ir.Label{Name: "then"}, &ir.Label{Name: "else"}))

	v1 := fn.NewInstruction(ir.OpAssign, ir.NewLiteral(1))
	v1.Output = fn.FreshVariable("v1", ir.U256)
	thenB.Append(v1)
	thenB.SetTerminator(fn.NewInstruction(ir.OpJmp, &ir.Label{Name: "join"}))

	v2 := fn.NewInstruction(ir.OpAssign, ir.NewLiteral(2))
	v2.Output = fn.FreshVariable("v2", ir.U256)
	elseB.Append(v2)
	elseB.SetTerminator(fn.NewInstruction(ir.OpJmp, &ir.Label{Name: "join"}))

	phi := &ir.Instruction{Opcode: ir.OpPhi}
	phi.Output = fn.FreshVariable("r", ir.U256)
	phi.PhiInputs = []ir.PhiInput{
		{Pred: thenB, Value: v1.Output},
		{Pred: elseB, Value: v2.Output},
	}
	join.Append(phi)
	sink := fn.NewInstruction(ir.OpSink, phi.Output)
	join.Append(sink)
	join.SetTerminator(fn.NewInstruction(ir.OpStop))

	// CFG must reflect the terminators before liveness/layout analysis runs.
	rebuildCFGForTest(fn)
	return fn
}

// rebuildCFGForTest mirrors the CFG-rebuild every structural pass performs
// after mutating terminators, so a hand-built test function has accurate
// Predecessors/Successors before analysis runs.
func rebuildCFGForTest(fn *ir.Function) {
	for _, b := range fn.Blocks() {
		b.Predecessors = nil
		b.Successors = nil
	}
	for _, b := range fn.Blocks() {
		term := b.Terminator()
		if term == nil {
			continue
		}
		for _, succ := range term.Successors() {
			b.Successors = append(b.Successors, succ)
			succ.Predecessors = append(succ.Predecessors, b)
		}
	}
}

func TestScheduleDiamondMaterializesPhiOnBothEdges(t *testing.T) {
	fn := buildDiamondFunction()
	toks := Schedule(fn)
	s := tokensToString(toks)

	if countMnemonic(toks, "JUMPI") != 1 {
		t.Fatalf("expected exactly one JUMPI for the jnz, got stream: %s", s)
	}
	if countMnemonic(toks, "JUMP") < 2 {
		t.Fatalf("expected at least two unconditional JUMPs (one per branch arm), got stream: %s", s)
	}
	if !strings.Contains(s, "@then") || !strings.Contains(s, "@else") || !strings.Contains(s, "@join") {
		t.Fatalf("expected references to every block label, got stream: %s", s)
	}
}

// buildCheckedAddFunction builds a function computing a checked add, then
// asserting the result didn't overflow before returning it.
func buildCheckedAddFunction() *ir.Function {
	ctx := ir.NewContext("c")
	fn := ir.NewFunction("safe_add")
	fn.Params = []*ir.Parameter{{Name: "a", Type: ir.U256}, {Name: "b", Type: ir.U256}}
	ctx.AddFunction(fn)

	entry := fn.AddBlock(ir.NewBasicBlock("entry"))
	chk := fn.NewInstruction(ir.OpAddChk, &ir.Variable{Base: "a", Version: 1}, &ir.Variable{Base: "b", Version: 1})
	chk.Output = fn.FreshVariable("res", ir.U256)
	chk.ExtraOutputs = []*ir.Variable{fn.FreshVariable("ok", ir.Bool)}
	entry.Append(chk)

	assert := fn.NewInstruction(ir.OpAssert, chk.ExtraOutputs[0])
	entry.Append(assert)

	entry.SetTerminator(fn.NewInstruction(ir.OpReturn, ir.NewLiteral(0), ir.NewLiteral(0)))
	return fn
}

func TestScheduleCheckedArithmeticAndAssert(t *testing.T) {
	fn := buildCheckedAddFunction()
	toks := Schedule(fn)
	s := tokensToString(toks)

	for _, want := range []string{"ADD", "LT", "ISZERO", "JUMPI", "REVERT", "RETURN"} {
		if countMnemonic(toks, want) == 0 {
			t.Errorf("expected %s in checked-arithmetic/assert lowering, got stream: %s", want, s)
		}
	}
}

func TestScheduleRejectsUnresolvedInvoke(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected Schedule to panic on a surviving invoke instruction")
		}
	}()

	ctx := ir.NewContext("c")
	fn := ir.NewFunction("has_invoke")
	ctx.AddFunction(fn)
	entry := fn.AddBlock(ir.NewBasicBlock("entry"))
	invoke := fn.NewInstruction(ir.OpInvoke, ir.NewLiteral(1))
	invoke.Callee = &ir.Label{Name: "other"}
	entry.Append(invoke)
	entry.SetTerminator(fn.NewInstruction(ir.OpStop))

	Schedule(fn)
}
