package ir

// Opcode identifies the operation an Instruction performs. It is a closed
// enum (spec §9 "Opcodes are an enum, not strings, at runtime"); the
// underlying string is only ever used by the textual printer/parser.
type Opcode string

const (
	// SSA plumbing.
	OpPhi    Opcode = "phi"
	OpAssign Opcode = "assign" // materialised phi-copy, or a plain rename
	OpParam  Opcode = "param"  // consumes one value from the call-site stack
	OpSink   Opcode = "sink"   // test-only: forces a variable live at exit
	OpNop    Opcode = "nop"    // dead-store-elimination tombstone

	// Calls.
	OpInvoke Opcode = "invoke" // internal call, may bind multiple outputs

	// Terminators.
	OpJmp      Opcode = "jmp"
	OpJnz      Opcode = "jnz"
	OpDjmp     Opcode = "djmp" // indirect jump; successors enumerated explicitly
	OpRet      Opcode = "ret"
	OpStop     Opcode = "stop"
	OpRevert   Opcode = "revert"
	OpReturn   Opcode = "return"
	OpInvalid  Opcode = "invalid"
	OpDeploy   Opcode = "deploy"
	OpUnreach  Opcode = "assert_unreachable"

	// Memory address space.
	OpMLoad  Opcode = "mload"
	OpMStore Opcode = "mstore"
	OpMCopy  Opcode = "mcopy"
	OpMSize  Opcode = "msize"

	// Storage address space.
	OpSLoad  Opcode = "sload"
	OpSStore Opcode = "sstore"

	// Transient storage (EIP-1153).
	OpTLoad  Opcode = "tload"
	OpTStore Opcode = "tstore"

	// Calldata address space.
	OpCalldataLoad Opcode = "calldataload"
	OpCalldataCopy Opcode = "calldatacopy"
	OpCalldataSize Opcode = "calldatasize"

	// Code / data address space.
	OpCodeCopy    Opcode = "codecopy"
	OpCodeSize    Opcode = "codesize"
	OpDLoad       Opcode = "dload"      // abstract data-section load
	OpDLoadBytes  Opcode = "dloadbytes" // abstract data-section bulk load
	OpExtCodeCopy Opcode = "extcodecopy"
	OpExtCodeSize Opcode = "extcodesize"
	OpExtCodeHash Opcode = "extcodehash"

	// Return-data address space.
	OpReturnDataSize Opcode = "returndatasize"
	OpReturnDataCopy Opcode = "returndatacopy"

	// Stack allocation (pre-Mem2Var).
	OpAlloca  Opcode = "alloca"
	OpPAlloca Opcode = "palloca" // parameter-backed alloca, never promoted

	// Arithmetic / bitwise / comparison.
	OpAdd        Opcode = "add"
	OpSub        Opcode = "sub"
	OpMul        Opcode = "mul"
	OpDiv        Opcode = "div"
	OpSDiv       Opcode = "sdiv"
	OpMod        Opcode = "mod"
	OpSMod       Opcode = "smod"
	OpAddMod     Opcode = "addmod"
	OpMulMod     Opcode = "mulmod"
	OpExp        Opcode = "exp"
	OpNot        Opcode = "not"
	OpLt         Opcode = "lt"
	OpGt         Opcode = "gt"
	OpSLt        Opcode = "slt"
	OpSGt        Opcode = "sgt"
	OpEq         Opcode = "eq"
	OpIsZero     Opcode = "iszero"
	OpAnd        Opcode = "and"
	OpOr         Opcode = "or"
	OpXor        Opcode = "xor"
	OpByte       Opcode = "byte"
	OpShl        Opcode = "shl"
	OpShr        Opcode = "shr"
	OpSar        Opcode = "sar"
	OpSignExtend Opcode = "signextend"
	OpSha3       Opcode = "sha3"

	// Transaction / block context (pure w.r.t. storage/memory).
	OpAddress       Opcode = "address"
	OpBalance       Opcode = "balance"
	OpSelfBalance   Opcode = "selfbalance"
	OpCaller        Opcode = "caller"
	OpCallValue     Opcode = "callvalue"
	OpGasPrice      Opcode = "gasprice"
	OpBlockHash     Opcode = "blockhash"
	OpCoinbase      Opcode = "coinbase"
	OpTimestamp     Opcode = "timestamp"
	OpNumber        Opcode = "number"
	OpPrevRandao    Opcode = "prevrandao"
	OpGasLimit      Opcode = "gaslimit"
	OpChainID       Opcode = "chainid"
	OpBaseFee       Opcode = "basefee"
	OpGas           Opcode = "gas"
	OpPC            Opcode = "pc"

	// External calls / creation / logging.
	OpCall           Opcode = "call"
	OpCallCode       Opcode = "callcode"
	OpDelegateCall   Opcode = "delegatecall"
	OpStaticCall     Opcode = "staticcall"
	OpCreate         Opcode = "create"
	OpCreate2        Opcode = "create2"
	OpSelfDestruct   Opcode = "selfdestruct"
	OpLog0           Opcode = "log0"
	OpLog1           Opcode = "log1"
	OpLog2           Opcode = "log2"
	OpLog3           Opcode = "log3"
	OpLog4           Opcode = "log4"

	// Venom-specific checked arithmetic and path assumptions (spec §4.6/4.7).
	OpAssert    Opcode = "assert"
	OpAddChk    Opcode = "add_chk" // (res, ok)
	OpSubChk    Opcode = "sub_chk"
	OpMulChk    Opcode = "mul_chk"
	OpDivChk    Opcode = "div_chk"
	OpAssume    Opcode = "assume"
)

// OpInfo is the single static table of opcode metadata: stack arity plus
// read/write effect sets. This answers spec §9's open question about the
// effect table's source of truth -- every pass and analysis consults this
// table instead of re-deriving effects ad hoc.
type OpInfo struct {
	Pops  int // -1 means variable arity (phi, invoke, ret, sink)
	Push  int
	Reads  Effect
	Writes Effect
	// Terminator is true for instructions that may only appear as a block's
	// last instruction (spec invariant I1).
	Terminator bool
	// Pure instructions may be freely reordered/CSE'd/hoisted subject only
	// to their operand dependencies.
	Pure bool
}

var opTable = map[Opcode]OpInfo{
	OpPhi:    {Pops: -1, Push: 1, Pure: true},
	OpAssign: {Pops: 1, Push: 1, Pure: true},
	OpParam:  {Pops: 0, Push: 1, Pure: true},
	OpSink:   {Pops: -1, Push: 0, Pure: true},
	OpNop:    {Pops: 0, Push: 0, Pure: true},

	OpInvoke: {Pops: -1, Push: -1, Reads: EffectStorage | EffectMemory, Writes: EffectStorage | EffectMemory | EffectExternalCall},

	OpJmp:     {Pops: 0, Push: 0, Terminator: true, Pure: true},
	OpJnz:     {Pops: 1, Push: 0, Terminator: true, Pure: true},
	OpDjmp:    {Pops: 1, Push: 0, Terminator: true, Pure: true},
	OpRet:     {Pops: -1, Push: 0, Terminator: true, Pure: true},
	OpStop:    {Pops: 0, Push: 0, Terminator: true, Pure: true},
	OpRevert:  {Pops: 2, Push: 0, Terminator: true, Reads: EffectMemory},
	OpReturn:  {Pops: 2, Push: 0, Terminator: true, Reads: EffectMemory},
	OpInvalid: {Pops: 0, Push: 0, Terminator: true, Pure: true},
	OpDeploy:  {Pops: 0, Push: 0, Terminator: true},
	OpUnreach: {Pops: 1, Push: 0, Terminator: true, Reads: EffectMemory},

	OpMLoad:  {Pops: 1, Push: 1, Reads: EffectMemory},
	OpMStore: {Pops: 2, Push: 0, Writes: EffectMemory},
	OpMCopy:  {Pops: 3, Push: 0, Reads: EffectMemory, Writes: EffectMemory},
	// msize observes the current memory extent, so any memory write must
	// stay ordered before it; it reads EffectMemory as well as EffectMSize
	// so DeadStoreElimination/LoadElimination treat it as a memory barrier.
	OpMSize: {Pops: 0, Push: 1, Reads: EffectMSize | EffectMemory},

	OpSLoad:  {Pops: 1, Push: 1, Reads: EffectStorage},
	OpSStore: {Pops: 2, Push: 0, Writes: EffectStorage},

	OpTLoad:  {Pops: 1, Push: 1, Reads: EffectTransient},
	OpTStore: {Pops: 2, Push: 0, Writes: EffectTransient},

	OpCalldataLoad: {Pops: 1, Push: 1, Reads: EffectCalldata, Pure: true},
	OpCalldataCopy: {Pops: 3, Push: 0, Reads: EffectCalldata, Writes: EffectMemory},
	OpCalldataSize: {Pops: 0, Push: 1, Reads: EffectCalldata, Pure: true},

	OpCodeCopy:    {Pops: 3, Push: 0, Reads: EffectCode, Writes: EffectMemory},
	OpCodeSize:    {Pops: 0, Push: 1, Reads: EffectCode, Pure: true},
	OpDLoad:       {Pops: 1, Push: 1, Reads: EffectData, Pure: true},
	OpDLoadBytes:  {Pops: 3, Push: 0, Reads: EffectData, Writes: EffectMemory},
	OpExtCodeCopy: {Pops: 4, Push: 0, Reads: EffectCode, Writes: EffectMemory},
	OpExtCodeSize: {Pops: 1, Push: 1, Reads: EffectCode},
	OpExtCodeHash: {Pops: 1, Push: 1, Reads: EffectCode},

	OpReturnDataSize: {Pops: 0, Push: 1, Reads: EffectReturnData},
	OpReturnDataCopy: {Pops: 3, Push: 0, Reads: EffectReturnData, Writes: EffectMemory},

	OpAlloca:  {Pops: 0, Push: 1, Pure: true},
	OpPAlloca: {Pops: 0, Push: 1, Pure: true},

	OpAdd: {Pops: 2, Push: 1, Pure: true}, OpSub: {Pops: 2, Push: 1, Pure: true},
	OpMul: {Pops: 2, Push: 1, Pure: true}, OpDiv: {Pops: 2, Push: 1, Pure: true},
	OpSDiv: {Pops: 2, Push: 1, Pure: true}, OpMod: {Pops: 2, Push: 1, Pure: true},
	OpSMod: {Pops: 2, Push: 1, Pure: true}, OpAddMod: {Pops: 3, Push: 1, Pure: true},
	OpMulMod: {Pops: 3, Push: 1, Pure: true}, OpExp: {Pops: 2, Push: 1, Pure: true},
	OpNot: {Pops: 1, Push: 1, Pure: true}, OpLt: {Pops: 2, Push: 1, Pure: true},
	OpGt: {Pops: 2, Push: 1, Pure: true}, OpSLt: {Pops: 2, Push: 1, Pure: true},
	OpSGt: {Pops: 2, Push: 1, Pure: true}, OpEq: {Pops: 2, Push: 1, Pure: true},
	OpIsZero: {Pops: 1, Push: 1, Pure: true}, OpAnd: {Pops: 2, Push: 1, Pure: true},
	OpOr: {Pops: 2, Push: 1, Pure: true}, OpXor: {Pops: 2, Push: 1, Pure: true},
	OpByte: {Pops: 2, Push: 1, Pure: true}, OpShl: {Pops: 2, Push: 1, Pure: true},
	OpShr: {Pops: 2, Push: 1, Pure: true}, OpSar: {Pops: 2, Push: 1, Pure: true},
	OpSignExtend: {Pops: 2, Push: 1, Pure: true},
	OpSha3:       {Pops: 2, Push: 1, Reads: EffectMemory},

	OpAddress: {Pops: 0, Push: 1, Pure: true}, OpBalance: {Pops: 1, Push: 1, Reads: EffectBalance},
	OpSelfBalance: {Pops: 0, Push: 1, Reads: EffectBalance}, OpCaller: {Pops: 0, Push: 1, Pure: true},
	OpCallValue: {Pops: 0, Push: 1, Pure: true}, OpGasPrice: {Pops: 0, Push: 1, Pure: true},
	OpBlockHash: {Pops: 1, Push: 1, Pure: true}, OpCoinbase: {Pops: 0, Push: 1, Pure: true},
	OpTimestamp: {Pops: 0, Push: 1, Pure: true}, OpNumber: {Pops: 0, Push: 1, Pure: true},
	OpPrevRandao: {Pops: 0, Push: 1, Pure: true}, OpGasLimit: {Pops: 0, Push: 1, Pure: true},
	OpChainID: {Pops: 0, Push: 1, Pure: true}, OpBaseFee: {Pops: 0, Push: 1, Pure: true},
	OpGas: {Pops: 0, Push: 1, Reads: EffectGas}, OpPC: {Pops: 0, Push: 1, Pure: true},

	OpCall:         {Pops: 7, Push: 1, Reads: EffectMemory | EffectBalance, Writes: EffectMemory | EffectStorage | EffectExternalCall | EffectReturnData},
	OpCallCode:     {Pops: 7, Push: 1, Reads: EffectMemory | EffectBalance, Writes: EffectMemory | EffectExternalCall | EffectReturnData},
	OpDelegateCall: {Pops: 6, Push: 1, Reads: EffectMemory, Writes: EffectMemory | EffectStorage | EffectExternalCall | EffectReturnData},
	OpStaticCall:   {Pops: 6, Push: 1, Reads: EffectMemory, Writes: EffectMemory | EffectExternalCall | EffectReturnData},
	OpCreate:       {Pops: 3, Push: 1, Reads: EffectMemory, Writes: EffectStorage | EffectExternalCall | EffectBalance},
	OpCreate2:      {Pops: 4, Push: 1, Reads: EffectMemory, Writes: EffectStorage | EffectExternalCall | EffectBalance},
	OpSelfDestruct: {Pops: 1, Push: 0, Terminator: true, Writes: EffectStorage | EffectBalance},
	OpLog0:         {Pops: 2, Push: 0, Reads: EffectMemory, Writes: EffectLog},
	OpLog1:         {Pops: 3, Push: 0, Reads: EffectMemory, Writes: EffectLog},
	OpLog2:         {Pops: 4, Push: 0, Reads: EffectMemory, Writes: EffectLog},
	OpLog3:         {Pops: 5, Push: 0, Reads: EffectMemory, Writes: EffectLog},
	OpLog4:         {Pops: 6, Push: 0, Reads: EffectMemory, Writes: EffectLog},

	OpAssert: {Pops: 1, Push: 0},
	OpAddChk: {Pops: 2, Push: 2, Pure: true}, OpSubChk: {Pops: 2, Push: 2, Pure: true},
	OpMulChk: {Pops: 2, Push: 2, Pure: true}, OpDivChk: {Pops: 2, Push: 2, Pure: true},
	OpAssume: {Pops: 1, Push: 0, Pure: true},
}

// Info looks up an opcode's static metadata. It panics for an unknown
// opcode: an instruction with no table entry is a compiler bug, never a
// user-facing error (spec §7, "compiler-panic").
func (op Opcode) Info() OpInfo {
	info, ok := opTable[op]
	if !ok {
		panic("ir: unknown opcode " + string(op))
	}
	return info
}

// IsTerminator reports whether op may only appear as a block's last
// instruction.
func (op Opcode) IsTerminator() bool { return op.Info().Terminator }

// IsPure reports op's Pure flag: whether it may be freely reordered,
// CSE'd or hoisted subject only to its operand dependencies. Some pure
// opcodes (calldataload, codesize, dload, ...) still read an address space.
func (op Opcode) IsPure() bool { return op.Info().Pure }

// ReadEffects returns the set of address spaces/channels op reads.
func (op Opcode) ReadEffects() Effect { return op.Info().Reads }

// WriteEffects returns the set of address spaces/channels op writes.
func (op Opcode) WriteEffects() Effect { return op.Info().Writes }

// twoOutputOps is the set of opcodes whose Instruction carries two results
// instead of (at most) one -- the checked-arithmetic family.
var twoOutputOps = map[Opcode]bool{
	OpAddChk: true, OpSubChk: true, OpMulChk: true, OpDivChk: true,
}

func (op Opcode) HasTwoOutputs() bool { return twoOutputOps[op] }
