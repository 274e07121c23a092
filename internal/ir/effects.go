package ir

// Effect is one element of the side-effect/address-space universe an opcode
// can read or write (spec §3.1, GLOSSARY "Effect set"). Represented as a
// bitmask so read/write sets can be intersected cheaply when looking for
// aliasing barriers (spec §4.6).
type Effect uint32

const (
	EffectMemory Effect = 1 << iota
	EffectStorage
	EffectTransient
	EffectCalldata
	EffectData
	EffectCode
	EffectBalance
	EffectGas
	EffectExternalCall
	EffectMSize
	EffectReturnData
	EffectLog
	EffectImmutables
)

var effectNames = map[Effect]string{
	EffectMemory:       "memory",
	EffectStorage:      "storage",
	EffectTransient:    "transient",
	EffectCalldata:     "calldata",
	EffectData:         "data",
	EffectCode:         "code",
	EffectBalance:      "balance",
	EffectGas:          "gas",
	EffectExternalCall: "external_call",
	EffectMSize:        "msize",
	EffectReturnData:   "returndata",
	EffectLog:          "log",
	EffectImmutables:   "immutables",
}

// Has reports whether e contains every bit set in sub.
func (e Effect) Has(sub Effect) bool { return e&sub == sub }

// Intersects reports whether e and other share any bit.
func (e Effect) Intersects(other Effect) bool { return e&other != 0 }

func (e Effect) String() string {
	if e == 0 {
		return "pure"
	}
	out := ""
	for bit, name := range effectNames {
		if e.Has(bit) {
			if out != "" {
				out += ","
			}
			out += name
		}
	}
	return out
}

// AddressSpace enumerates the load/store domains effects can alias within
// (GLOSSARY "Address space"). Not every Effect corresponds to an address
// space (e.g. Gas, Balance are pure side channels).
type AddressSpace int

const (
	SpaceMemory AddressSpace = iota
	SpaceStorage
	SpaceTransient
	SpaceCalldata
	SpaceCode
	SpaceData
)

func (a AddressSpace) String() string {
	switch a {
	case SpaceMemory:
		return "memory"
	case SpaceStorage:
		return "storage"
	case SpaceTransient:
		return "transient"
	case SpaceCalldata:
		return "calldata"
	case SpaceCode:
		return "code"
	case SpaceData:
		return "data"
	default:
		return "unknown"
	}
}

// Effect returns the Effect bit corresponding to this address space.
func (a AddressSpace) Effect() Effect {
	switch a {
	case SpaceMemory:
		return EffectMemory
	case SpaceStorage:
		return EffectStorage
	case SpaceTransient:
		return EffectTransient
	case SpaceCalldata:
		return EffectCalldata
	case SpaceCode:
		return EffectCode
	case SpaceData:
		return EffectData
	default:
		return 0
	}
}
