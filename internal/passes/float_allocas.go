package passes

import (
	"venom/internal/analysis"
	"venom/internal/ir"
)

// FloatAllocas moves every `alloca` in the function to the entry block,
// ahead of everything else (spec §4.1). Mem2Var and ConcretizeMemLoc both
// assume a function's stack slots are established once, up front, rather
// than conditionally inside whatever block first needed one -- an alloca
// inside a loop would otherwise get a fresh address on every iteration,
// which is never what the EVM stack-machine model of "memory slot" means
// here.
type FloatAllocas struct{}

func (FloatAllocas) Name() string { return "float_allocas" }

func (FloatAllocas) Run(cache *analysis.Cache, fn *ir.Function) bool {
	entry := fn.Entry()
	if entry == nil {
		return false
	}

	var floated []*ir.Instruction
	changed := false
	for _, b := range fn.Blocks() {
		if b == entry {
			continue
		}
		for _, inst := range b.Instructions {
			if inst.Opcode == ir.OpAlloca {
				floated = append(floated, inst)
			}
		}
	}
	for _, inst := range floated {
		inst.Block.RemoveInstruction(inst)
		changed = true
	}

	// Entry's own allocas stay where they are; newly floated ones are
	// inserted ahead of entry's first non-alloca, non-phi instruction.
	insertAt := 0
	for insertAt < len(entry.Instructions) {
		op := entry.Instructions[insertAt].Opcode
		if op != ir.OpAlloca && op != ir.OpPhi {
			break
		}
		insertAt++
	}
	if len(floated) > 0 {
		rest := append([]*ir.Instruction(nil), entry.Instructions[insertAt:]...)
		entry.Instructions = append(entry.Instructions[:insertAt:insertAt], floated...)
		entry.Instructions = append(entry.Instructions, rest...)
		for _, inst := range floated {
			inst.Block = entry
		}
	}

	if changed {
		cache.Invalidate(analysis.KindCFG)
	}
	return changed
}
