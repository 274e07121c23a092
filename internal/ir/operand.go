package ir

import (
	"fmt"

	"github.com/holiman/uint256"
)

// Operand is the sum type over the four kinds of value an instruction can
// consume or produce: Variable, Literal, Label and AbstractMemLoc (spec
// §3.1). Opcodes are a closed enum; only operand *kinds* are polymorphic.
type Operand interface {
	isOperand()
	String() string
	// Equal reports structural equality: variables compare by name, labels
	// by string, literals by integer value, mem-locs by identity.
	Equal(Operand) bool
}

// Variable is an SSA name. Base is the front-end-assigned name; Version is
// bumped by MakeSSA ("%x" -> "%x:1", "%x:2", ...). Version 0 prints without
// a suffix.
type Variable struct {
	Base    string
	Version int
}

func (*Variable) isOperand() {}

func (v *Variable) String() string {
	if v.Version == 0 {
		return "%" + v.Base
	}
	return fmt.Sprintf("%%%s:%d", v.Base, v.Version)
}

func (v *Variable) Equal(o Operand) bool {
	ov, ok := o.(*Variable)
	return ok && ov.Base == v.Base && ov.Version == v.Version
}

// Name is the full SSA name including any version suffix, used as a map key
// throughout the analysis framework.
func (v *Variable) Name() string { return v.String() }

// Literal is a 256-bit integer operand. Arithmetic wraps at 2^256, matching
// EVM semantics; Value is always stored as the unsigned representative and
// reinterpreted as two's-complement by opcodes that care about sign
// (SDIV/SMOD/SLT/SGT/SAR).
type Literal struct {
	Value *uint256.Int
}

func NewLiteral(v uint64) *Literal {
	return &Literal{Value: uint256.NewInt(v)}
}

func LiteralFromBig(v *uint256.Int) *Literal {
	return &Literal{Value: v.Clone()}
}

func (*Literal) isOperand() {}

func (l *Literal) String() string { return l.Value.Dec() }

func (l *Literal) Equal(o Operand) bool {
	ol, ok := o.(*Literal)
	return ok && ol.Value.Eq(l.Value)
}

// IsZero reports whether the literal is the zero word.
func (l *Literal) IsZero() bool { return l.Value.IsZero() }

// Uint64 reports the low 64 bits, panicking-free truncation for cases
// (shift amounts, small offsets) where the full width is not needed.
func (l *Literal) Uint64() uint64 { return l.Value.Uint64() }

// Label names a basic block within a function, or a function within a
// context, depending on where the operand appears.
type Label struct {
	Name string
}

func (*Label) isOperand() {}

func (l *Label) String() string { return "@" + l.Name }

func (l *Label) Equal(o Operand) bool {
	ol, ok := o.(*Label)
	return ok && ol.Name == l.Name
}

// MemLocKind classifies why an AbstractMemLoc exists, which in turn decides
// which region of the memory allocator's address space it is placed in.
type MemLocKind int

const (
	MemLocScratch MemLocKind = iota
	MemLocABIData
	MemLocCalldataBuf
	MemLocReturnData
	MemLocFreeVar1
	MemLocFreeVar2
	MemLocDeployRegion
)

func (k MemLocKind) String() string {
	switch k {
	case MemLocScratch:
		return "scratch"
	case MemLocABIData:
		return "abi_data"
	case MemLocCalldataBuf:
		return "calldata_buf"
	case MemLocReturnData:
		return "returndata"
	case MemLocFreeVar1:
		return "free_var1"
	case MemLocFreeVar2:
		return "free_var2"
	case MemLocDeployRegion:
		return "deploy_region"
	default:
		return "mem_loc"
	}
}

// AbstractMemLoc is a symbolic memory location with a declared size. It is
// created during lowering with a fresh identity and resolved to a literal
// offset by ConcretizeMemLoc (spec §3.3); after concretization it no longer
// appears in operands.
type AbstractMemLoc struct {
	ID   int
	Kind MemLocKind
	Size int
}

func (*AbstractMemLoc) isOperand() {}

func (m *AbstractMemLoc) String() string {
	return fmt.Sprintf("<memloc#%d:%s,%d>", m.ID, m.Kind, m.Size)
}

func (m *AbstractMemLoc) Equal(o Operand) bool {
	om, ok := o.(*AbstractMemLoc)
	return ok && om.ID == m.ID
}

// Well-known fixed identities shared by every context, matching spec §6.4's
// two reserved scratch words.
const (
	FreeVar1ID = -1
	FreeVar2ID = -2
)

var (
	FreeVar1 = &AbstractMemLoc{ID: FreeVar1ID, Kind: MemLocFreeVar1, Size: 32}
	FreeVar2 = &AbstractMemLoc{ID: FreeVar2ID, Kind: MemLocFreeVar2, Size: 32}
)
