package passes

import (
	"venom/internal/analysis"
	"venom/internal/ir"
)

// RedundantLoadElimination globalises LoadElimination across the whole CFG
// (spec §4.7): a load is redundant not just when a store or an earlier load
// at the same address dominates it within one block, but when every path
// reaching its block agrees on the address's last-written value.
//
// analysis.MemorySSAResult is deliberately per-block only (see its doc
// comment: a cross-block query always answers "may be clobbered"), so this
// pass doesn't build on it. Instead it runs its own forward available-value
// dataflow: availOut(b) is the map of address -> value known to hold at
// every store/load of that address on exit from b, and availIn(b) is the
// intersection (by value equality) of predecessors' availOut, empty at the
// entry block and at any block with no predecessors. The transfer function
// per block is exactly LoadElimination's per-block logic, seeded from
// availIn instead of starting empty.
type RedundantLoadElimination struct {
	Space ir.AddressSpace
}

func (RedundantLoadElimination) Name() string { return "redundant_load_elimination" }

func (r RedundantLoadElimination) Run(cache *analysis.Cache, fn *ir.Function) bool {
	store, load := storeOpcode[r.Space], loadOpcode[r.Space]
	effect := r.Space.Effect()

	cfg := analysis.RequestCFG(cache)
	blocks := cfg.RPO
	if len(blocks) == 0 {
		return false
	}

	availIn := make(map[*ir.BasicBlock]map[string]ir.Operand, len(blocks))
	availOut := make(map[*ir.BasicBlock]map[string]ir.Operand, len(blocks))
	for _, b := range blocks {
		availOut[b] = make(map[string]ir.Operand)
	}

	for changed := true; changed; {
		changed = false
		for _, b := range blocks {
			in := meetAvail(availOut, b.Predecessors)
			out := runAvailBlock(in, b, store, load, effect)
			if !availEqual(availIn[b], in) {
				availIn[b] = in
			}
			if !availEqual(availOut[b], out) {
				availOut[b] = out
				changed = true
			}
		}
	}

	rewrote := false
	for _, b := range blocks {
		in := availIn[b]
		if in == nil {
			in = make(map[string]ir.Operand)
		}
		known := copyAvail(in)
		for _, inst := range b.Instructions {
			if inst.IsNop() {
				continue
			}
			if inst.Opcode == store {
				addr := inst.Operands[0].String()
				known = map[string]ir.Operand{addr: inst.Operands[1]}
				continue
			}
			if inst.Opcode == load {
				addr := inst.Operands[0].String()
				if val, ok := known[addr]; ok {
					replaceAllUses(fn, inst.Output, val)
					inst.MakeNop()
					rewrote = true
					continue
				}
				known[addr] = inst.Output
				continue
			}
			reads, writes := inst.Effects()
			if reads.Has(effect) || writes.Has(effect) || writes.Has(ir.EffectExternalCall) {
				known = make(map[string]ir.Operand)
			}
		}
	}

	if rewrote {
		removeNops(fn)
		cache.InvalidateAll()
	}
	return rewrote
}

// meetAvail intersects every predecessor's availOut by (address, value)
// pair; an address missing or disagreeing in any predecessor is dropped.
// A block with no predecessors (the entry block, or a not-yet-reached
// block mid-fixed-point) meets to empty.
func meetAvail(availOut map[*ir.BasicBlock]map[string]ir.Operand, preds []*ir.BasicBlock) map[string]ir.Operand {
	if len(preds) == 0 {
		return make(map[string]ir.Operand)
	}
	result := copyAvail(availOut[preds[0]])
	for _, p := range preds[1:] {
		other := availOut[p]
		for addr, val := range result {
			ov, ok := other[addr]
			if !ok || !ov.Equal(val) {
				delete(result, addr)
			}
		}
	}
	return result
}

// runAvailBlock simulates one block's effect on an incoming available-value
// map, mirroring LoadElimination's per-block transfer function, and returns
// the map holding on exit from the block.
func runAvailBlock(in map[string]ir.Operand, b *ir.BasicBlock, store, load ir.Opcode, effect ir.Effect) map[string]ir.Operand {
	known := copyAvail(in)
	for _, inst := range b.Instructions {
		if inst.IsNop() {
			continue
		}
		if inst.Opcode == store {
			addr := inst.Operands[0].String()
			known = map[string]ir.Operand{addr: inst.Operands[1]}
			continue
		}
		if inst.Opcode == load {
			addr := inst.Operands[0].String()
			if _, ok := known[addr]; !ok {
				known[addr] = inst.Output
			}
			continue
		}
		reads, writes := inst.Effects()
		if reads.Has(effect) || writes.Has(effect) || writes.Has(ir.EffectExternalCall) {
			known = make(map[string]ir.Operand)
		}
	}
	return known
}

func copyAvail(m map[string]ir.Operand) map[string]ir.Operand {
	out := make(map[string]ir.Operand, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func availEqual(a, b map[string]ir.Operand) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		ov, ok := b[k]
		if !ok || !ov.Equal(v) {
			return false
		}
	}
	return true
}
