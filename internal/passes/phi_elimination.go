package passes

import (
	"venom/internal/analysis"
	"venom/internal/ir"
)

// PhiElimination drops phis that carry no information: every input is the
// same operand (ignoring inputs that trivially refer back to the phi's own
// output, which can arise after other passes fold a loop down to a single
// live path). The phi's output is replaced everywhere by that one operand
// (spec §4.2).
type PhiElimination struct{}

func (PhiElimination) Name() string { return "phi_elimination" }

func (PhiElimination) Run(cache *analysis.Cache, fn *ir.Function) bool {
	changed := false
	for _, b := range fn.Blocks() {
		for _, inst := range b.Phis() {
			if inst.IsNop() {
				continue
			}
			unique, ok := trivialValue(inst)
			if !ok {
				continue
			}
			replaceAllUses(fn, inst.Output, unique)
			inst.MakeNop()
			changed = true
		}
	}
	if changed {
		removeNops(fn)
		cache.InvalidateAll()
	}
	return changed
}

// trivialValue reports the single distinct non-self value among a phi's
// inputs, or ok=false if the phi has more than one distinct input.
func trivialValue(phi *ir.Instruction) (ir.Operand, bool) {
	var unique ir.Operand
	for _, in := range phi.PhiInputs {
		if in.Value == nil {
			return nil, false
		}
		if v, ok := in.Value.(*ir.Variable); ok && phi.Output != nil && v.Equal(phi.Output) {
			continue
		}
		if unique == nil {
			unique = in.Value
			continue
		}
		if !unique.Equal(in.Value) {
			return nil, false
		}
	}
	return unique, unique != nil
}
