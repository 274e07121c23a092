package analysis

import "venom/internal/ir"

// LivenessResult gives, for each block, the set of variables live-in and
// live-out (spec §4.3). A phi's use is attributed to the corresponding
// predecessor's live-out set rather than the phi's own block, matching the
// usual SSA convention that a phi "happens" on the incoming edge.
type LivenessResult struct {
	liveIn  map[*ir.BasicBlock]map[string]bool
	liveOut map[*ir.BasicBlock]map[string]bool
}

type LivenessAnalysis struct{}

func (*LivenessAnalysis) Dependencies() []Kind { return []Kind{KindCFG} }

func (*LivenessAnalysis) Analyze(cache *Cache, fn *ir.Function) Result {
	blocks := fn.Blocks()
	liveIn := make(map[*ir.BasicBlock]map[string]bool, len(blocks))
	liveOut := make(map[*ir.BasicBlock]map[string]bool, len(blocks))
	for _, b := range blocks {
		liveIn[b] = map[string]bool{}
		liveOut[b] = map[string]bool{}
	}

	changed := true
	for changed {
		changed = false
		for _, b := range blocks {
			out := map[string]bool{}
			for _, succ := range b.Successors {
				for v := range liveIn[succ] {
					out[v] = true
				}
				// Phi uses are live-out of the predecessor that supplies
				// them, not live-in of the phi's own block.
				for _, phi := range succ.Phis() {
					for _, in := range phi.PhiInputs {
						if in.Pred == b {
							if v, ok := in.Value.(*ir.Variable); ok {
								out[v.Name()] = true
							}
						}
					}
				}
			}

			in := map[string]bool{}
			for v := range out {
				in[v] = true
			}
			// Walk instructions backward: kill defs, gen uses. Phis are
			// skipped here since their uses were already attributed above
			// and their defs still kill like any other instruction.
			for i := len(b.Instructions) - 1; i >= 0; i-- {
				inst := b.Instructions[i]
				for _, def := range inst.Outputs() {
					delete(in, def.Name())
				}
				if inst.Opcode == ir.OpPhi {
					continue
				}
				for _, use := range inst.Uses() {
					if v, ok := use.(*ir.Variable); ok {
						in[v.Name()] = true
					}
				}
			}

			if !setEqual(in, liveIn[b]) || !setEqual(out, liveOut[b]) {
				changed = true
			}
			liveIn[b] = in
			liveOut[b] = out
		}
	}

	return &LivenessResult{liveIn: liveIn, liveOut: liveOut}
}

func setEqual(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

// LiveIn returns the set of variable names live at block b's entry.
func (r *LivenessResult) LiveIn(b *ir.BasicBlock) map[string]bool { return r.liveIn[b] }

// LiveOut returns the set of variable names live at block b's exit.
func (r *LivenessResult) LiveOut(b *ir.BasicBlock) map[string]bool { return r.liveOut[b] }

func RequestLiveness(cache *Cache) *LivenessResult {
	return cache.Request(KindLiveness).(*LivenessResult)
}
