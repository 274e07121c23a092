package passes

import (
	"venom/internal/analysis"
	"venom/internal/ir"
)

// MemMerging folds a run of single-word `mload src; mstore dst, %v` copies
// at literal, consecutive 32-byte-stride offsets into one mcopy (spec
// §4.4). It only recognizes literal addresses: abstract memlocs have not
// been concretized yet at the point this pass runs in the pipeline, so
// their strides aren't comparable.
type MemMerging struct{}

func (MemMerging) Name() string { return "memmerging" }

func (MemMerging) Run(cache *analysis.Cache, fn *ir.Function) bool {
	changed := false
	for _, b := range fn.Blocks() {
		changed = mergeRun(fn, b) || changed
	}
	if changed {
		removeNops(fn)
		cache.InvalidateAll()
	}
	return changed
}

type copyWord struct {
	load, store *ir.Instruction
	src, dst    uint64
}

func mergeRun(fn *ir.Function, b *ir.BasicBlock) bool {
	changed := false
	insts := b.Instructions
	uses := countAllUses(fn)
	for i := 0; i < len(insts); i++ {
		words := collectRun(insts, i)
		for n, w := range words {
			if uses[w.load.Output.Name()] != 1 {
				words = words[:n]
				break
			}
		}
		if len(words) < 2 {
			continue
		}
		first := words[0]
		srcAddr := ir.NewLiteral(first.src)
		dstAddr := ir.NewLiteral(first.dst)
		length := ir.NewLiteral(uint64(len(words)) * 32)
		mcopy := fn.NewInstruction(ir.OpMCopy, dstAddr, srcAddr, length)
		mcopy.Block = b
		// Replace the run's first slot in place so the copy lands exactly
		// where the loads/stores it replaces were, instead of reordering
		// relative to whatever follows in the block.
		insts[i] = mcopy
		for _, w := range words {
			if w.load != first.load {
				w.load.MakeNop()
			}
			w.store.MakeNop()
		}
		changed = true
	}
	return changed
}

// collectRun scans forward from index i for a maximal sequence of
// (mload, mstore-of-that-load) pairs at literal addresses increasing by
// 32 each step, with the loaded value used only by its paired store.
func collectRun(insts []*ir.Instruction, i int) []copyWord {
	var run []copyWord
	idx := i
	for idx+1 < len(insts) {
		load := insts[idx]
		store := insts[idx+1]
		if load.Opcode != ir.OpMLoad || store.Opcode != ir.OpMStore {
			break
		}
		srcLit, ok := load.Operands[0].(*ir.Literal)
		if !ok {
			break
		}
		storedVal, ok := store.Operands[1].(*ir.Variable)
		if !ok || load.Output == nil || !storedVal.Equal(load.Output) {
			break
		}
		dstLit, ok := store.Operands[0].(*ir.Literal)
		if !ok {
			break
		}
		if len(run) > 0 {
			last := run[len(run)-1]
			if srcLit.Uint64() != last.src+32 || dstLit.Uint64() != last.dst+32 {
				break
			}
		}
		run = append(run, copyWord{load: load, store: store, src: srcLit.Uint64(), dst: dstLit.Uint64()})
		idx += 2
	}
	return run
}
