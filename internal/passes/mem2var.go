package passes

import "venom/internal/ir"
import "venom/internal/analysis"

// Mem2Var promotes scratch `alloca` slots into plain SSA values, eliminating
// the mload/mstore pair entirely when a slot's address never escapes
// anything but a load or store of that exact address (spec §4.4,
// "mem2var: alloca promotion").
//
// Promotion is scoped to stores and loads reachable from a preceding store
// within the same block: a cross-block promotion would need its own
// dominance-frontier phi insertion (as MakeSSA does for variables), which
// this pass does not attempt -- the same conservative-cross-block scoping
// MemorySSA documents. A load with no preceding in-block store is left
// alone and falls through as an ordinary mload.
type Mem2Var struct{}

func (Mem2Var) Name() string { return "mem2var" }

func (Mem2Var) Run(cache *analysis.Cache, fn *ir.Function) bool {
	promotable := promotableAllocas(fn)
	if len(promotable) == 0 {
		return false
	}

	changed := false
	stores := make(map[string][]*ir.Instruction)
	unforwarded := make(map[string]bool)
	for _, b := range fn.Blocks() {
		current := make(map[string]ir.Operand)
		for _, inst := range b.Instructions {
			switch inst.Opcode {
			case ir.OpMStore:
				addr, ok := inst.Operands[0].(*ir.Variable)
				if !ok || !promotable[addr.Name()] {
					continue
				}
				current[addr.Name()] = inst.Operands[1]
				stores[addr.Name()] = append(stores[addr.Name()], inst)
			case ir.OpMLoad:
				addr, ok := inst.Operands[0].(*ir.Variable)
				if !ok || !promotable[addr.Name()] {
					continue
				}
				val, ok := current[addr.Name()]
				if !ok {
					unforwarded[addr.Name()] = true
					continue
				}
				replaceAllUses(fn, inst.Output, val)
				inst.MakeNop()
				changed = true
			}
		}
	}
	// A slot's stores are dropped only when every load of it was forwarded;
	// a remaining mload still reads them from memory.
	for name, sts := range stores {
		if unforwarded[name] {
			continue
		}
		for _, st := range sts {
			st.MakeNop()
			changed = true
		}
	}

	if changed {
		removeNops(fn)
		cache.InvalidateAll()
	}
	return changed
}

// promotableAllocas returns the set of alloca-defined addresses (by SSA
// name) that are never used for anything but the address operand of an
// mload or mstore.
func promotableAllocas(fn *ir.Function) map[string]bool {
	candidates := make(map[string]bool)
	for _, b := range fn.Blocks() {
		for _, inst := range b.Instructions {
			if inst.Opcode == ir.OpAlloca && inst.Output != nil {
				candidates[inst.Output.Name()] = true
			}
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	escapes := func(op ir.Operand, name string) bool {
		v, ok := op.(*ir.Variable)
		return ok && v.Name() == name
	}

	for _, b := range fn.Blocks() {
		for _, inst := range b.Instructions {
			for name := range candidates {
				if !candidates[name] {
					continue
				}
				switch inst.Opcode {
				case ir.OpAlloca:
					continue
				case ir.OpMStore:
					if escapes(inst.Operands[0], name) {
						if escapes(inst.Operands[1], name) {
							candidates[name] = false
						}
						continue
					}
				case ir.OpMLoad:
					if escapes(inst.Operands[0], name) {
						continue
					}
				}
				for _, use := range inst.Uses() {
					if escapes(use, name) {
						candidates[name] = false
					}
				}
			}
		}
	}
	return candidates
}

// replaceAllUses rewrites every occurrence of old (an instruction's
// primary output) to replacement across the whole function -- safe because
// SSA names are unique, so a use anywhere in the function can only refer to
// this one definition.
func replaceAllUses(fn *ir.Function, old *ir.Variable, replacement ir.Operand) {
	if old == nil {
		return
	}
	for _, b := range fn.Blocks() {
		for _, inst := range b.Instructions {
			inst.ReplaceUses(old, replacement)
		}
	}
}
