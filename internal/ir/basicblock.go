package ir

// BasicBlock is a maximal straight-line instruction sequence ending in
// exactly one terminator (spec invariant I1). A function exclusively owns
// its blocks (spec §3.3).
type BasicBlock struct {
	Label        string
	Instructions []*Instruction
	Parent       *Function

	// Predecessors/Successors are cached CFG edges (spec §3.1, "cached
	// predecessor and successor sets"). internal/analysis.CFGAnalysis is
	// the source of truth and recomputes them from the terminators; the
	// mutation API below does not update them, so a pass that changes a
	// terminator recomputes them itself before relying on them.
	Predecessors []*BasicBlock
	Successors   []*BasicBlock
}

// NewBasicBlock creates an empty, unterminated block. Use Function.AddBlock
// to attach it.
func NewBasicBlock(label string) *BasicBlock {
	return &BasicBlock{Label: label}
}

// Terminator returns the block's last instruction if it is a terminator,
// else nil.
func (b *BasicBlock) Terminator() *Instruction {
	if len(b.Instructions) == 0 {
		return nil
	}
	last := b.Instructions[len(b.Instructions)-1]
	if last.IsTerminator() {
		return last
	}
	return nil
}

// IsTerminated reports whether the block currently satisfies invariant I1.
func (b *BasicBlock) IsTerminated() bool { return b.Terminator() != nil }

// Phis returns the contiguous run of phi instructions at the block's head
// (spec invariant I3).
func (b *BasicBlock) Phis() []*Instruction {
	var out []*Instruction
	for _, inst := range b.Instructions {
		if inst.Opcode != OpPhi {
			break
		}
		out = append(out, inst)
	}
	return out
}

// Append adds inst to the end of the block. It is an error (reported via
// panic, a build-time misuse rather than a user-facing condition) to append
// after a terminator has already been placed; use InsertBeforeTerminator
// for that case (spec §4.1).
func (b *BasicBlock) Append(inst *Instruction) {
	if b.IsTerminated() {
		panic("ir: append to already-terminated block " + b.Label)
	}
	inst.Block = b
	b.Instructions = append(b.Instructions, inst)
}

// InsertBeforeTerminator inserts inst immediately before the block's
// terminator (or at the end, if the block is not yet terminated).
func (b *BasicBlock) InsertBeforeTerminator(inst *Instruction) {
	inst.Block = b
	if term := b.Terminator(); term != nil {
		idx := len(b.Instructions) - 1
		b.Instructions = append(b.Instructions, nil)
		copy(b.Instructions[idx+1:], b.Instructions[idx:])
		b.Instructions[idx] = inst
		return
	}
	b.Instructions = append(b.Instructions, inst)
}

// PrependPhi inserts a phi instruction at the head of the phi run, keeping
// invariant I3 (phis contiguous at the block's head).
func (b *BasicBlock) PrependPhi(inst *Instruction) {
	inst.Block = b
	phiCount := len(b.Phis())
	b.Instructions = append(b.Instructions, nil)
	copy(b.Instructions[phiCount+1:], b.Instructions[phiCount:])
	b.Instructions[phiCount] = inst
}

// SetTerminator replaces the block's terminator, or appends inst if the
// block has none. It does not touch the cached Successors/Predecessors:
// callers restore invariant I5 by recomputing them (CFGAnalysis, or a
// pass's own CFG rebuild) before relying on them.
func (b *BasicBlock) SetTerminator(inst *Instruction) {
	if !inst.IsTerminator() {
		panic("ir: SetTerminator given non-terminator opcode " + string(inst.Opcode))
	}
	inst.Block = b
	if term := b.Terminator(); term != nil {
		b.Instructions[len(b.Instructions)-1] = inst
	} else {
		b.Instructions = append(b.Instructions, inst)
	}
}

// RemoveInstruction deletes inst from the block. Removing a terminator
// leaves the block unterminated until a new one is set.
func (b *BasicBlock) RemoveInstruction(inst *Instruction) {
	for idx, cur := range b.Instructions {
		if cur == inst {
			b.Instructions = append(b.Instructions[:idx], b.Instructions[idx+1:]...)
			return
		}
	}
}

// Rename changes the block's label. Callers must fix up every label
// operand referencing the old name (jmp/jnz/djmp targets, phi predecessor
// keys) -- SimplifyCFG-family passes do this as part of their block
// surgery.
func (b *BasicBlock) Rename(newLabel string) { b.Label = newLabel }

func (b *BasicBlock) String() string { return "block:" + b.Label }
