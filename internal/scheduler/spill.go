package scheduler

import "venom/internal/ir"

// spillTracker hands out memory slots for values the scheduler evicts from
// the stack to stay within the EVM's 16-deep DUP/SWAP reach, and remembers
// where each spilled name landed so a later use reloads from the same slot
// (spec §4.9's memory-spill fallback). It reuses the function's own memory
// allocator rather than inventing a second address space, so spilled
// scratch words account for nothing already sharing the deploy/runtime
// memory layout of spec §6.4.
type spillTracker struct {
	alloc *ir.MemoryAllocator
	slots map[string]int
	// fallbackNext backs slot allocation when fn has no owning Context (unit
	// tests building a bare *ir.Function); real pipeline use always goes
	// through alloc.
	fallbackNext int
}

func newSpillTracker(fn *ir.Function) *spillTracker {
	t := &spillTracker{slots: make(map[string]int)}
	if fn.Parent != nil {
		t.alloc = fn.Parent.MemAllocator
	}
	return t
}

// slotOf returns the memory offset previously assigned to name, if any.
func (t *spillTracker) slotOf(name string) (int, bool) {
	off, ok := t.slots[name]
	return off, ok
}

// spill assigns name a fresh memory slot (or returns its existing one, if it
// was already spilled once before and is being spilled again after a
// reload).
func (t *spillTracker) spill(name string) int {
	if off, ok := t.slots[name]; ok {
		return off
	}
	var off int
	if t.alloc != nil {
		loc := t.alloc.NewMemLoc(ir.MemLocScratch, 32)
		off = t.alloc.Allocate(loc)
	} else {
		off = t.fallbackNext
		t.fallbackNext += 32
	}
	t.slots[name] = off
	return off
}
