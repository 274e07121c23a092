package passes

import (
	"venom/internal/analysis"
	"venom/internal/ir"
)

// storeOpcode and loadOpcode name the single store/load instruction for
// each address space DeadStoreElimination is instantiated over. Calldata,
// code and data spaces have no store instruction and never appear here.
var storeOpcode = map[ir.AddressSpace]ir.Opcode{
	ir.SpaceMemory:    ir.OpMStore,
	ir.SpaceStorage:   ir.OpSStore,
	ir.SpaceTransient: ir.OpTStore,
}

var loadOpcode = map[ir.AddressSpace]ir.Opcode{
	ir.SpaceMemory:    ir.OpMLoad,
	ir.SpaceStorage:   ir.OpSLoad,
	ir.SpaceTransient: ir.OpTLoad,
}

// DeadStoreElimination removes a store immediately shadowed by a later
// store to the exact same address in the same space, with no intervening
// read of that space (spec §4.4). The pipeline runs one instance per
// address space (memory, storage, transient) since each space has its own
// independent store/load pair and its own aliasing barriers.
//
// Any read at all of the space -- not just one provably at the same
// address -- clears the tracked stores, for the same reason
// LoadElimination clears on any other-address store: distinct literal
// offsets can still overlap. A store marked Volatile is never shadowed:
// it is never nopped, and it also blocks a later store at the same
// address from shadowing it (spec §4.6).
type DeadStoreElimination struct {
	Space ir.AddressSpace
}

func (DeadStoreElimination) Name() string { return "dead_store_elimination" }

func (d DeadStoreElimination) Run(cache *analysis.Cache, fn *ir.Function) bool {
	store := storeOpcode[d.Space]
	effect := d.Space.Effect()
	changed := false
	for _, b := range fn.Blocks() {
		lastStore := make(map[string]*ir.Instruction)
		for _, inst := range b.Instructions {
			reads, writes := inst.Effects()
			if inst.Opcode == store {
				addr := inst.Operands[0].String()
				if prev, ok := lastStore[addr]; ok && !prev.IsNop() && !prev.Volatile {
					prev.MakeNop()
					changed = true
				}
				lastStore[addr] = inst
				continue
			}
			if reads.Has(effect) {
				lastStore = make(map[string]*ir.Instruction)
				continue
			}
			if writes.Has(effect) || writes.Has(ir.EffectExternalCall) {
				lastStore = make(map[string]*ir.Instruction)
			}
		}
	}
	if changed {
		removeNops(fn)
		cache.InvalidateAll()
	}
	return changed
}
