// Package inline implements Venom's call-graph-driven function inliner
// (spec §4.8, §7). It runs once, globally, before the per-function pass
// pipeline: callees are visited before their callers (FCGAnalysis's
// reverse-post-order), so a function that itself had calls inlined into it
// is already in its final, expanded form by the time something calls it.
package inline

import (
	"venom/internal/analysis"
	"venom/internal/ir"
)

// Budget bounds how large a callee may be before FunctionInlinerPass
// refuses to duplicate its body into a call site, tuned by optimization
// level the same way the teacher's pipeline tunes pass aggressiveness by
// build profile.
type Budget struct {
	// MaxInstructions caps a callee's total instruction count under
	// OptimizeCodesize; 0 disables the cap (any size is eligible).
	MaxInstructions int
	// LeavesOnly restricts inlining to callees with a single block and no
	// calls of their own, matching OptimizeGas's narrower budget.
	LeavesOnly bool
}

// BudgetFor derives the inliner's budget from the compilation's optimize
// level (spec §7): Codesize inlines anything reasonably small since
// duplicating a tiny callee's body is cheaper than the call overhead;
// Gas only inlines single-block leaves, where the saved CALL-equivalent
// bookkeeping is pure upside; None disables inlining outright.
func BudgetFor(level ir.OptimizeLevel) (Budget, bool) {
	switch level {
	case ir.OptimizeCodesize:
		return Budget{MaxInstructions: 20}, true
	case ir.OptimizeGas:
		return Budget{LeavesOnly: true}, true
	default:
		return Budget{}, false
	}
}

// FunctionInlinerPass is the C8 global pass: it walks every function's
// direct invoke instructions in call-graph reverse-post-order, substituting
// eligible callees' bodies in place. Unlike internal/passes.Pass, this runs
// once over the whole Context rather than being iterated per function by
// internal/pipeline, since inlining changes which functions even have call
// sites left to examine.
type FunctionInlinerPass struct {
	Budget Budget
}

// Run inlines eligible call sites across ctx, returning whether anything
// changed.
func (p FunctionInlinerPass) Run(ctx *ir.Context) bool {
	fcg := analysis.BuildFCG(ctx)
	changed := false
	for _, fn := range fcg.Order() {
		for {
			site := findInlinableCallSite(ctx, fn, fcg, p.Budget)
			if site == nil {
				break
			}
			inlineCallSite(ctx, fn, site)
			changed = true
			fcg = analysis.BuildFCG(ctx)
		}
	}
	return changed
}

// findInlinableCallSite returns the first invoke instruction in fn whose
// callee satisfies the budget, or nil.
func findInlinableCallSite(ctx *ir.Context, fn *ir.Function, fcg *analysis.FCGResult, budget Budget) *ir.Instruction {
	for _, b := range fn.Blocks() {
		for _, inst := range b.Instructions {
			if inst.Opcode != ir.OpInvoke || inst.IsNop() || inst.Callee == nil {
				continue
			}
			callee := ctx.GetFunction(inst.Callee.Name)
			if callee == nil || callee == fn || callee.External {
				continue
			}
			if eligible(callee, budget) {
				return inst
			}
		}
	}
	return nil
}

func eligible(callee *ir.Function, budget Budget) bool {
	if budget.LeavesOnly {
		if len(callee.Blocks()) != 1 {
			return false
		}
		return !hasCall(callee)
	}
	if budget.MaxInstructions == 0 {
		return true
	}
	return countInstructions(callee) <= budget.MaxInstructions
}

func hasCall(fn *ir.Function) bool {
	for _, b := range fn.Blocks() {
		for _, inst := range b.Instructions {
			if inst.Opcode == ir.OpInvoke && !inst.IsNop() {
				return true
			}
		}
	}
	return false
}

func countInstructions(fn *ir.Function) int {
	n := 0
	for _, b := range fn.Blocks() {
		for _, inst := range b.Instructions {
			if !inst.IsNop() {
				n++
			}
		}
	}
	return n
}

// inlineCallSite splices callee's body into caller at the invoke
// instruction's position (spec §7): the invoke's block is split in two at
// the call site, callee's blocks are cloned in with fresh labels and
// parameters bound via an assign-from-argument prologue, every `ret` in the
// cloned copy becomes a jump to the continuation block with a phi
// materializing the returned value(s), and the original invoke is removed.
func inlineCallSite(ctx *ir.Context, caller *ir.Function, site *ir.Instruction) {
	callee := ctx.GetFunction(site.Callee.Name)
	block := site.Block
	args := site.Operands
	results := site.Outputs()

	continuation := splitBlockAfter(caller, block, site)

	_, entryOfClone, returns := cloneFunctionBody(caller, callee, args)

	block.SetTerminator(caller.NewInstruction(ir.OpJmp, &ir.Label{Name: entryOfClone.Label}))

	if len(results) > 0 && len(returns) > 0 {
		for idx, out := range results {
			phi := caller.NewInstruction(ir.OpPhi)
			phi.Output = out
			for _, ret := range returns {
				var val ir.Operand = ir.NewLiteral(0)
				if idx < len(ret.Operands) {
					val = ret.Operands[idx]
				}
				phi.PhiInputs = append(phi.PhiInputs, ir.PhiInput{Pred: ret.Block, Value: val})
			}
			continuation.PrependPhi(phi)
		}
	}

	for _, ret := range returns {
		ret.Block.SetTerminator(caller.NewInstruction(ir.OpJmp, &ir.Label{Name: continuation.Label}))
	}

	rebuildCFG(caller)
}

// splitBlockAfter removes site from block (along with every instruction
// following it, including block's terminator) and moves that tail into a
// fresh continuation block, leaving block ready for a new terminator.
func splitBlockAfter(fn *ir.Function, block *ir.BasicBlock, site *ir.Instruction) *ir.BasicBlock {
	idx := -1
	for i, inst := range block.Instructions {
		if inst == site {
			idx = i
			break
		}
	}
	ir.Invariant(idx >= 0, "inline: call site not found in its own block")

	tail := append([]*ir.Instruction(nil), block.Instructions[idx+1:]...)
	block.Instructions = block.Instructions[:idx]

	cont := ir.NewBasicBlock(fn.FreshBlockLabel("inline_cont"))
	fn.AddBlock(cont)
	for _, inst := range tail {
		inst.Block = cont
	}
	cont.Instructions = tail
	return cont
}

// cloneFunctionBody deep-clones every block/instruction of callee into fn
// under fresh labels, rewrites every cloned operand/label reference to the
// cloned block and a fresh SSA variable namespace (so callee's internal
// names never collide with caller's), prepends an argument-binding
// prologue to the cloned entry block using that same namespace, and
// returns the clone's entry block plus every cloned `ret` instruction (to
// be rewritten by the caller into jumps to the continuation, see
// inlineCallSite).
func cloneFunctionBody(fn *ir.Function, callee *ir.Function, args []ir.Operand) ([]*ir.BasicBlock, *ir.BasicBlock, []*ir.Instruction) {
	blockMap := make(map[*ir.BasicBlock]*ir.BasicBlock)
	varMap := make(map[string]string)
	rename := func(base string) string {
		if renamed, ok := varMap[base]; ok {
			return renamed
		}
		renamed := fn.FreshVariable(base, nil).Base
		varMap[base] = renamed
		return renamed
	}

	var cloned []*ir.BasicBlock
	for _, b := range callee.Blocks() {
		nb := ir.NewBasicBlock(fn.FreshBlockLabel("inline_" + callee.Name + "_" + b.Label))
		fn.AddBlock(nb)
		blockMap[b] = nb
		cloned = append(cloned, nb)
	}

	var returns []*ir.Instruction
	for _, b := range callee.Blocks() {
		nb := blockMap[b]
		for _, inst := range b.Instructions {
			if inst.IsNop() {
				continue
			}
			c := inst.Clone()
			c.Operands = cloneOperands(c.Operands, varMap, rename)
			if c.Output != nil {
				c.Output.Base = rename(c.Output.Base)
			}
			for _, extra := range c.ExtraOutputs {
				extra.Base = rename(extra.Base)
			}
			for i, op := range c.Operands {
				if lbl, ok := op.(*ir.Label); ok {
					if target := callee.GetBlock(lbl.Name); target != nil {
						c.Operands[i] = &ir.Label{Name: blockMap[target].Label}
					}
				}
			}
			for i := range c.PhiInputs {
				if c.PhiInputs[i].Pred != nil {
					c.PhiInputs[i].Pred = blockMap[c.PhiInputs[i].Pred]
				}
				c.PhiInputs[i].Value = cloneOperand(c.PhiInputs[i].Value, varMap, rename)
			}
			if c.Opcode == ir.OpRet {
				c.Block = nb
				returns = append(returns, c)
				continue
			}
			nb.Append(c)
		}
	}

	entryClone := blockMap[callee.Entry()]
	var prologue []*ir.Instruction
	for i, param := range callee.Params {
		if i >= len(args) {
			break
		}
		bind := fn.NewInstruction(ir.OpAssign, args[i])
		bind.Output = &ir.Variable{Base: rename(param.Name)}
		bind.Block = entryClone
		prologue = append(prologue, bind)
	}
	if len(prologue) > 0 {
		entryClone.Instructions = append(append([]*ir.Instruction(nil), prologue...), entryClone.Instructions...)
	}

	return cloned, entryClone, returns
}

func cloneOperands(ops []ir.Operand, varMap map[string]string, rename func(string) string) []ir.Operand {
	out := make([]ir.Operand, len(ops))
	for i, op := range ops {
		out[i] = cloneOperand(op, varMap, rename)
	}
	return out
}

func cloneOperand(op ir.Operand, varMap map[string]string, rename func(string) string) ir.Operand {
	if v, ok := op.(*ir.Variable); ok {
		return &ir.Variable{Base: rename(v.Base), Version: v.Version}
	}
	return op
}

// rebuildCFG recomputes every block's Predecessors/Successors mirror from
// its current terminator, matching the convention every CFG-mutating pass
// in internal/passes already follows (SimplifyCFG, CFGNormalization).
func rebuildCFG(fn *ir.Function) {
	for _, b := range fn.Blocks() {
		b.Successors = nil
	}
	preds := make(map[*ir.BasicBlock][]*ir.BasicBlock)
	for _, b := range fn.Blocks() {
		term := b.Terminator()
		if term == nil {
			continue
		}
		for _, s := range term.Successors() {
			if s == nil {
				continue
			}
			b.Successors = append(b.Successors, s)
			preds[s] = append(preds[s], b)
		}
	}
	for _, b := range fn.Blocks() {
		b.Predecessors = preds[b]
	}
}
