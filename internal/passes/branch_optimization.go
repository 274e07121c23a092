package passes

import (
	"venom/internal/analysis"
	"venom/internal/ir"
)

// BranchOptimization canonicalizes branch conditions and threads jumps
// through trampoline blocks (spec §4.5): `jnz (iszero %c), @t, @f` becomes
// `jnz %c, @f, @t` when the iszero has no other use, and any jmp/jnz target
// that is itself nothing but an unconditional jmp is redirected straight to
// the final destination.
type BranchOptimization struct{}

func (BranchOptimization) Name() string { return "branch_optimization" }

func (BranchOptimization) Run(cache *analysis.Cache, fn *ir.Function) bool {
	changed := false
	changed = unwrapNegatedConditions(fn) || changed
	changed = threadTrampolines(fn) || changed
	if changed {
		cache.Invalidate(analysis.KindCFG)
	}
	return changed
}

func unwrapNegatedConditions(fn *ir.Function) bool {
	changed := false
	for _, b := range fn.Blocks() {
		term := b.Terminator()
		if term == nil || term.Opcode != ir.OpJnz {
			continue
		}
		cv, ok := term.Operands[0].(*ir.Variable)
		if !ok {
			continue
		}
		def := findDef(b, cv)
		if def == nil || def.Opcode != ir.OpIsZero || countUses(fn, def.Output) != 1 {
			continue
		}
		term.Operands[0] = def.Operands[0]
		term.Operands[1], term.Operands[2] = term.Operands[2], term.Operands[1]
		def.MakeNop()
		changed = true
	}
	if changed {
		removeNops(fn)
	}
	return changed
}

func findDef(b *ir.BasicBlock, v *ir.Variable) *ir.Instruction {
	for _, inst := range b.Instructions {
		if inst.Output != nil && inst.Output.Equal(v) {
			return inst
		}
	}
	return nil
}

func countUses(fn *ir.Function, v *ir.Variable) int {
	n := 0
	for _, b := range fn.Blocks() {
		for _, inst := range b.Instructions {
			for _, use := range inst.Uses() {
				if uv, ok := use.(*ir.Variable); ok && uv.Equal(v) {
					n++
				}
			}
		}
	}
	return n
}

// threadTrampolines redirects any label operand that names a block
// containing nothing but `jmp @real` to @real directly.
func threadTrampolines(fn *ir.Function) bool {
	changed := false
	finalTarget := func(label *ir.Label) *ir.Label {
		seen := make(map[string]bool)
		cur := label
		for {
			blk := fn.GetBlock(cur.Name)
			if blk == nil || seen[cur.Name] || len(blk.Instructions) != 1 {
				return cur
			}
			seen[cur.Name] = true
			only := blk.Instructions[0]
			if only.Opcode != ir.OpJmp {
				return cur
			}
			next, ok := only.Operands[0].(*ir.Label)
			if !ok || next.Name == cur.Name {
				return cur
			}
			// A final target with phis needs a new predecessor-keyed input
			// added for every block threaded through to it; skip rather
			// than thread into a dangling phi.
			if target := fn.GetBlock(next.Name); target != nil && len(target.Phis()) > 0 {
				return cur
			}
			cur = next
		}
	}
	for _, b := range fn.Blocks() {
		term := b.Terminator()
		if term == nil {
			continue
		}
		switch term.Opcode {
		case ir.OpJmp:
			if lbl, ok := term.Operands[0].(*ir.Label); ok {
				if t := finalTarget(lbl); t.Name != lbl.Name {
					term.Operands[0] = t
					changed = true
				}
			}
		case ir.OpJnz:
			for _, idx := range []int{1, 2} {
				if lbl, ok := term.Operands[idx].(*ir.Label); ok {
					if t := finalTarget(lbl); t.Name != lbl.Name {
						term.Operands[idx] = t
						changed = true
					}
				}
			}
		}
	}
	return changed
}
