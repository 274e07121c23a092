package passes

import (
	"venom/internal/analysis"
	"venom/internal/ir"
)

// LoopInvariantCodeMotion hoists a pure instruction out of a natural loop
// into its preheader once every operand it reads is defined outside the
// loop body (spec §4.5). Loops whose header has more than one predecessor
// outside the loop are skipped rather than given a synthesized preheader:
// CFGNormalization runs later in the pipeline and would have to re-learn
// about a block this pass invented, so this keeps loop discovery and block
// creation in one place instead of two.
type LoopInvariantCodeMotion struct{}

func (LoopInvariantCodeMotion) Name() string { return "loop_invariant_code_motion" }

func (LoopInvariantCodeMotion) Run(cache *analysis.Cache, fn *ir.Function) bool {
	rpo := analysis.RequestCFG(cache).RPO
	dom := analysis.RequestDominatorTree(cache)

	changed := false
	for _, header := range rpo {
		for _, pred := range header.Predecessors {
			if !dom.Dominates(header, pred) {
				continue
			}
			loop := naturalLoop(header, pred)
			if hoistLoop(fn, header, loop) {
				changed = true
			}
		}
	}
	if changed {
		cache.InvalidateAll()
	}
	return changed
}

// naturalLoop computes the set of blocks in the natural loop of the back
// edge latch->header: header, plus every block that can reach latch
// without passing through header.
func naturalLoop(header, latch *ir.BasicBlock) map[*ir.BasicBlock]bool {
	loop := map[*ir.BasicBlock]bool{header: true, latch: true}
	stack := []*ir.BasicBlock{latch}
	for len(stack) > 0 {
		b := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, pred := range b.Predecessors {
			if loop[pred] {
				continue
			}
			loop[pred] = true
			stack = append(stack, pred)
		}
	}
	return loop
}

// hoistLoop finds a single outside-the-loop predecessor of header to use
// as a preheader and moves every qualifying pure instruction there.
func hoistLoop(fn *ir.Function, header *ir.BasicBlock, loop map[*ir.BasicBlock]bool) bool {
	var preheader *ir.BasicBlock
	for _, pred := range header.Predecessors {
		if loop[pred] {
			continue
		}
		if preheader != nil {
			return false // more than one outside predecessor, skip
		}
		preheader = pred
	}
	if preheader == nil || preheader.Terminator() == nil || preheader.Terminator().Opcode != ir.OpJmp {
		return false
	}

	definedInLoop := make(map[string]bool)
	for b := range loop {
		for _, inst := range b.Instructions {
			for _, v := range inst.Outputs() {
				definedInLoop[v.Name()] = true
			}
		}
	}

	changed := false
	for changedThisPass := true; changedThisPass; {
		changedThisPass = false
		for b := range loop {
			if b == header {
				continue
			}
			for _, inst := range append([]*ir.Instruction(nil), b.Instructions...) {
				if inst.IsNop() || inst.Opcode == ir.OpPhi || inst.IsTerminator() {
					continue
				}
				if !inst.Opcode.IsPure() || inst.Output == nil {
					continue
				}
				if invariantOperands(inst, definedInLoop) {
					b.RemoveInstruction(inst)
					preheader.InsertBeforeTerminator(inst)
					delete(definedInLoop, inst.Output.Name())
					changed = true
					changedThisPass = true
				}
			}
		}
	}
	return changed
}

func invariantOperands(inst *ir.Instruction, definedInLoop map[string]bool) bool {
	for _, op := range inst.Uses() {
		if v, ok := op.(*ir.Variable); ok && definedInLoop[v.Name()] {
			return false
		}
	}
	return true
}
