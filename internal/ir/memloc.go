package ir

import "fmt"

// MemoryAllocator is a bump allocator over the memory address space, used
// to concretize AbstractMemLocs to literal offsets (spec §3.3,
// ConcretizeMemLoc). It also supports the deploy-region carve-out of spec
// §6.4: a fixed placement at offset 0 followed by restoring the prior
// watermark, so the deploy region doesn't inflate scratch allocations.
type MemoryAllocator struct {
	// eom ("end of memory") is the next free offset.
	eom int
	// allocated maps a memloc ID to (offset, size).
	allocated map[int]allocation
	nextID    int
}

type allocation struct {
	offset int
	size   int
}

func NewMemoryAllocator() *MemoryAllocator {
	return &MemoryAllocator{allocated: make(map[int]allocation)}
}

// NewMemLoc allocates a fresh AbstractMemLoc identity (not yet concretized).
func (a *MemoryAllocator) NewMemLoc(kind MemLocKind, size int) *AbstractMemLoc {
	a.nextID++
	return &AbstractMemLoc{ID: a.nextID, Kind: kind, Size: size}
}

// Allocate bumps eom by loc.Size and records the resulting offset.
func (a *MemoryAllocator) Allocate(loc *AbstractMemLoc) int {
	if existing, ok := a.allocated[loc.ID]; ok {
		return existing.offset
	}
	offset := a.eom
	a.allocated[loc.ID] = allocation{offset: offset, size: loc.Size}
	a.eom += loc.Size
	return offset
}

// AllocateFixedAt places loc at a specific offset without touching eom,
// used for the deploy region: it is pre-seeded at offset 0 because
// codecopy/iload/istore in the runtime code use absolute offsets, and the
// prior eom is restored by the caller afterward (spec §6.4).
func (a *MemoryAllocator) AllocateFixedAt(loc *AbstractMemLoc, offset int) {
	a.allocated[loc.ID] = allocation{offset: offset, size: loc.Size}
}

// Offset returns the concretized offset for loc, panicking if it has not
// been allocated yet -- ConcretizeMemLoc must run to a fixed point before
// any pass reads concrete offsets.
func (a *MemoryAllocator) Offset(loc *AbstractMemLoc) int {
	alloc, ok := a.allocated[loc.ID]
	if !ok {
		panic(fmt.Sprintf("ir: memloc #%d read before allocation", loc.ID))
	}
	return alloc.offset
}

// EOM returns the current watermark.
func (a *MemoryAllocator) EOM() int { return a.eom }

// SetEOM restores a previously saved watermark -- used by the deploy-region
// carve-out to undo the bump caused by AllocateFixedAt's caller seeding the
// region (spec §6.4: "the baseline eom is restored after reserving
// deploy-mem so scratch allocations are not inflated").
func (a *MemoryAllocator) SetEOM(eom int) { a.eom = eom }

// Disjoint reports whether every pair of currently-allocated locations has
// non-overlapping [offset, offset+size) ranges -- the invariant
// ConcretizeMemLoc must guarantee (spec §3.3).
func (a *MemoryAllocator) Disjoint() bool {
	type iv struct{ lo, hi int }
	var ivs []iv
	for _, alloc := range a.allocated {
		ivs = append(ivs, iv{alloc.offset, alloc.offset + alloc.size})
	}
	for i := 0; i < len(ivs); i++ {
		for j := i + 1; j < len(ivs); j++ {
			if ivs[i].lo < ivs[j].hi && ivs[j].lo < ivs[i].hi {
				return false
			}
		}
	}
	return true
}
