package passes

import (
	"venom/internal/analysis"
	"venom/internal/ir"
)

// MakeSSA converts a function whose variables may be defined more than
// once (the lowering grammar emits plain re-assignment, not phi) into
// strict SSA form: phis inserted at the iterated dominance frontier of
// each variable's definition sites, then every definition and use
// renamed to a fresh (base, version) pair (spec §3.1, Cytron et al.'s
// classic construction -- grounded on check_venom.py's assumption that
// by the time the checker runs, the IR is already SSA).
type MakeSSA struct{}

func (MakeSSA) Name() string { return "make_ssa" }

func (MakeSSA) Run(cache *analysis.Cache, fn *ir.Function) bool {
	rpo := analysis.RequestCFG(cache).RPO
	if len(rpo) == 0 {
		return false
	}
	dom := analysis.RequestDominatorTree(cache)

	defsites := make(map[string]map[*ir.BasicBlock]bool)
	recordDef := func(base string, b *ir.BasicBlock) {
		if defsites[base] == nil {
			defsites[base] = make(map[*ir.BasicBlock]bool)
		}
		defsites[base][b] = true
	}
	for _, b := range rpo {
		for _, inst := range b.Instructions {
			for _, v := range inst.Outputs() {
				recordDef(v.Base, b)
			}
		}
	}

	changed := false
	for base, sites := range defsites {
		hasPhi := make(map[*ir.BasicBlock]bool)
		worklist := make([]*ir.BasicBlock, 0, len(sites))
		for b := range sites {
			worklist = append(worklist, b)
		}
		for len(worklist) > 0 {
			b := worklist[len(worklist)-1]
			worklist = worklist[:len(worklist)-1]
			for _, f := range dom.Frontier(b) {
				if hasPhi[f] {
					continue
				}
				hasPhi[f] = true
				changed = true
				phi := f.Parent.NewInstruction(ir.OpPhi)
				phi.Output = &ir.Variable{Base: base}
				phi.PhiInputs = make([]ir.PhiInput, len(f.Predecessors))
				for i, pred := range f.Predecessors {
					phi.PhiInputs[i] = ir.PhiInput{Pred: pred}
				}
				f.PrependPhi(phi)
				if !sites[f] {
					sites[f] = true
					worklist = append(worklist, f)
				}
			}
		}
	}

	children := make(map[*ir.BasicBlock][]*ir.BasicBlock)
	entry := rpo[0]
	for _, b := range rpo {
		if b == entry {
			continue
		}
		children[dom.IDom(b)] = append(children[dom.IDom(b)], b)
	}

	stacks := make(map[string][]int)
	counters := make(map[string]int)
	push := func(base string) int {
		counters[base]++
		v := counters[base]
		stacks[base] = append(stacks[base], v)
		return v
	}
	top := func(base string) (int, bool) {
		s := stacks[base]
		if len(s) == 0 {
			return 0, false
		}
		return s[len(s)-1], true
	}
	pop := func(base string) {
		s := stacks[base]
		stacks[base] = s[:len(s)-1]
	}

	for _, p := range fn.Params {
		counters[p.Name] = 1
		stacks[p.Name] = []int{1}
	}

	var rename func(b *ir.BasicBlock)
	rename = func(b *ir.BasicBlock) {
		var pushed []string
		for _, inst := range b.Instructions {
			if inst.Opcode != ir.OpPhi {
				for i, op := range inst.Operands {
					v, ok := op.(*ir.Variable)
					if !ok {
						continue
					}
					if ver, ok := top(v.Base); ok {
						inst.Operands[i] = &ir.Variable{Base: v.Base, Version: ver}
					}
				}
			}
			if inst.Output != nil {
				inst.Output.Version = push(inst.Output.Base)
				pushed = append(pushed, inst.Output.Base)
				changed = true
			}
			for _, eo := range inst.ExtraOutputs {
				eo.Version = push(eo.Base)
				pushed = append(pushed, eo.Base)
			}
		}
		for _, succ := range b.Successors {
			for _, phi := range succ.Phis() {
				for i := range phi.PhiInputs {
					if phi.PhiInputs[i].Pred != b {
						continue
					}
					if ver, ok := top(phi.Output.Base); ok {
						phi.PhiInputs[i].Value = &ir.Variable{Base: phi.Output.Base, Version: ver}
					}
				}
			}
		}
		for _, child := range children[b] {
			rename(child)
		}
		for _, base := range pushed {
			pop(base)
		}
	}
	rename(entry)

	if changed {
		cache.InvalidateAll()
	}
	return changed
}
