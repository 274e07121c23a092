package passes

import (
	"venom/internal/analysis"
	"venom/internal/ir"
)

// LoadElimination forwards a store's value to a later load of the exact
// same address, and forwards one load's result to a later load of the same
// address, within a single block, for a single address space at a time
// (spec §4.7: "per-address-space using the address-space's load/store
// opcode pair"). The pipeline runs one instance per address space so
// storage and transient redundant loads are eliminated exactly like
// memory's, each against its own store/load opcode pair.
//
// A store to any other address clears every other cached address: two
// distinct literal offsets can still overlap (addresses are
// word-granularity, not byte-disjoint by construction), so the only store
// that can be proven not to alias a cached address is a store to that same
// address. Any other opaque read of the space -- msize chief among them,
// since it observes the space's write history rather than its contents --
// also clears the cache, matching DeadStoreElimination's barrier.
type LoadElimination struct {
	Space ir.AddressSpace
}

func (LoadElimination) Name() string { return "load_elimination" }

func (l LoadElimination) Run(cache *analysis.Cache, fn *ir.Function) bool {
	store, load := storeOpcode[l.Space], loadOpcode[l.Space]
	effect := l.Space.Effect()
	changed := false
	for _, b := range fn.Blocks() {
		known := make(map[string]ir.Operand)
		for _, inst := range b.Instructions {
			if inst.Opcode == store {
				addr := inst.Operands[0].String()
				val := inst.Operands[1]
				known = map[string]ir.Operand{addr: val}
				continue
			}
			if inst.Opcode == load {
				addr := inst.Operands[0].String()
				if val, ok := known[addr]; ok {
					replaceAllUses(fn, inst.Output, val)
					inst.MakeNop()
					changed = true
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
	if changed {
		removeNops(fn)
		cache.InvalidateAll()
	}
	return changed
}
