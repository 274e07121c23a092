package passes

import (
	"venom/internal/analysis"
	"venom/internal/ir"

	"github.com/holiman/uint256"
)

// AlgebraicOptimization folds constant-operand arithmetic and applies the
// identity simplifications every backend carries: x+0, x*1, x*0, x^x,
// x&0, x|0 and friends collapse to a cheaper equivalent without needing a
// full constant-propagation fixed point (spec §4.2), plus the strength
// reductions and comparison simplifications of spec §4.7's canonical
// rewrite list (x*2^n -> x<<n, x^-1 -> not x, self/boundary comparisons).
type AlgebraicOptimization struct{}

func (AlgebraicOptimization) Name() string { return "algebraic_optimization" }

func (AlgebraicOptimization) Run(cache *analysis.Cache, fn *ir.Function) bool {
	changed := false
	for _, b := range fn.Blocks() {
		for _, inst := range b.Instructions {
			if inst.IsNop() || inst.Output == nil {
				continue
			}
			if replacement, ok := simplify(inst); ok {
				replaceAllUses(fn, inst.Output, replacement)
				inst.MakeNop()
				changed = true
				continue
			}
			if rewriteShape(fn, b, inst) {
				changed = true
			}
		}
	}
	if changed {
		removeNops(fn)
		cache.InvalidateAll()
	}
	return changed
}

func lit(op ir.Operand) (*uint256.Int, bool) {
	l, ok := op.(*ir.Literal)
	if !ok {
		return nil, false
	}
	return l.Value, true
}

func maxUint() *uint256.Int { return new(uint256.Int).Not(uint256.NewInt(0)) }
func maxInt() *uint256.Int  { return new(uint256.Int).Rsh(maxUint(), 1) }
func minInt() *uint256.Int  { return new(uint256.Int).Lsh(uint256.NewInt(1), 255) }

func isMaxUint(v *uint256.Int) bool { return v.Eq(maxUint()) }

// powerOfTwo reports n such that v == 2^n, for nonzero v.
func powerOfTwo(v *uint256.Int) (uint, bool) {
	if v == nil || v.IsZero() {
		return 0, false
	}
	vMinus1 := new(uint256.Int).Sub(v, uint256.NewInt(1))
	var and uint256.Int
	and.And(v, vMinus1)
	if !and.IsZero() {
		return 0, false
	}
	return uint(v.BitLen() - 1), true
}

// simplify returns a replacement operand for inst if it folds to a
// constant or to one of its own operands, else ok=false.
func simplify(inst *ir.Instruction) (ir.Operand, bool) {
	if len(inst.Operands) != 2 {
		return foldUnary(inst)
	}
	a, aOk := lit(inst.Operands[0])
	b, bOk := lit(inst.Operands[1])
	same := inst.Operands[0].Equal(inst.Operands[1])

	switch inst.Opcode {
	case ir.OpAdd:
		if bOk && b.IsZero() {
			return inst.Operands[0], true
		}
		if aOk && a.IsZero() {
			return inst.Operands[1], true
		}
	case ir.OpSub:
		if bOk && b.IsZero() {
			return inst.Operands[0], true
		}
		if same {
			return ir.NewLiteral(0), true
		}
	case ir.OpMul:
		if (aOk && a.IsZero()) || (bOk && b.IsZero()) {
			return ir.NewLiteral(0), true
		}
		if bOk && b.IsOne() {
			return inst.Operands[0], true
		}
		if aOk && a.IsOne() {
			return inst.Operands[1], true
		}
	case ir.OpDiv, ir.OpSDiv:
		if bOk && b.IsOne() {
			return inst.Operands[0], true
		}
	case ir.OpMod, ir.OpSMod:
		if bOk && b.IsOne() {
			return ir.NewLiteral(0), true
		}
	case ir.OpAnd:
		if (aOk && a.IsZero()) || (bOk && b.IsZero()) {
			return ir.NewLiteral(0), true
		}
		if bOk && isMaxUint(b) {
			return inst.Operands[0], true
		}
		if aOk && isMaxUint(a) {
			return inst.Operands[1], true
		}
	case ir.OpOr:
		if bOk && b.IsZero() {
			return inst.Operands[0], true
		}
		if aOk && a.IsZero() {
			return inst.Operands[1], true
		}
		if bOk && isMaxUint(b) {
			return inst.Operands[1], true
		}
		if aOk && isMaxUint(a) {
			return inst.Operands[0], true
		}
	case ir.OpXor:
		if bOk && b.IsZero() {
			return inst.Operands[0], true
		}
		if aOk && a.IsZero() {
			return inst.Operands[1], true
		}
		if same {
			return ir.NewLiteral(0), true
		}
	case ir.OpShl, ir.OpShr, ir.OpSar:
		if aOk && a.IsZero() {
			return inst.Operands[1], true
		}
	case ir.OpLt:
		if same {
			return ir.NewLiteral(0), true
		}
		if bOk && b.IsZero() {
			return ir.NewLiteral(0), true
		}
	case ir.OpGt:
		if same {
			return ir.NewLiteral(0), true
		}
		if bOk && isMaxUint(b) {
			return ir.NewLiteral(0), true
		}
	case ir.OpSLt:
		if same {
			return ir.NewLiteral(0), true
		}
		if bOk && b.Eq(minInt()) {
			return ir.NewLiteral(0), true
		}
	case ir.OpSGt:
		if same {
			return ir.NewLiteral(0), true
		}
		if bOk && b.Eq(maxInt()) {
			return ir.NewLiteral(0), true
		}
	case ir.OpEq:
		if same {
			return ir.NewLiteral(1), true
		}
	}

	if !aOk || !bOk {
		return nil, false
	}
	return foldConstantBinary(inst.Opcode, a, b)
}

// rewriteShape mutates inst's opcode and operands in place for
// simplifications that replace it with a *different* instruction over the
// same output, rather than folding to an existing operand (spec §4.7):
// strength reduction by a power of two, x^-1/-1-x -> not x, and the
// x<1/x>MAX-1 comparison-to-iszero rewrites. Reports whether it changed
// anything.
func rewriteShape(fn *ir.Function, blk *ir.BasicBlock, inst *ir.Instruction) bool {
	if len(inst.Operands) != 2 {
		return false
	}
	a, aOk := lit(inst.Operands[0])
	b, bOk := lit(inst.Operands[1])

	switch inst.Opcode {
	case ir.OpXor:
		if bOk && isMaxUint(b) {
			inst.Opcode = ir.OpNot
			inst.Operands = []ir.Operand{inst.Operands[0]}
			return true
		}
		if aOk && isMaxUint(a) {
			inst.Opcode = ir.OpNot
			inst.Operands = []ir.Operand{inst.Operands[1]}
			return true
		}
	case ir.OpSub:
		if aOk && isMaxUint(a) {
			inst.Opcode = ir.OpNot
			inst.Operands = []ir.Operand{inst.Operands[1]}
			return true
		}
	case ir.OpMul:
		if bOk {
			if n, ok := powerOfTwo(b); ok {
				inst.Opcode = ir.OpShl
				inst.Operands = []ir.Operand{ir.NewLiteral(uint64(n)), inst.Operands[0]}
				return true
			}
		}
		if aOk {
			if n, ok := powerOfTwo(a); ok {
				inst.Opcode = ir.OpShl
				inst.Operands = []ir.Operand{ir.NewLiteral(uint64(n)), inst.Operands[1]}
				return true
			}
		}
	case ir.OpDiv:
		if bOk {
			if n, ok := powerOfTwo(b); ok {
				inst.Opcode = ir.OpShr
				inst.Operands = []ir.Operand{ir.NewLiteral(uint64(n)), inst.Operands[0]}
				return true
			}
		}
	case ir.OpMod:
		if bOk {
			if _, ok := powerOfTwo(b); ok {
				mask := new(uint256.Int).Sub(b, uint256.NewInt(1))
				inst.Opcode = ir.OpAnd
				inst.Operands = []ir.Operand{ir.LiteralFromBig(mask), inst.Operands[0]}
				return true
			}
		}
	case ir.OpLt:
		if bOk && b.Eq(uint256.NewInt(1)) {
			// x < 1 -> iszero x
			inst.Opcode = ir.OpIsZero
			inst.Operands = []ir.Operand{inst.Operands[0]}
			return true
		}
		if aOk && maxUintMinusOne(a) {
			// (MAX-1) < x -> x > MAX-1 -> iszero(not x)
			return insertNotIszero(fn, blk, inst, inst.Operands[1])
		}
	case ir.OpGt:
		if aOk && a.Eq(uint256.NewInt(1)) {
			// 1 > x -> x < 1 -> iszero x
			inst.Opcode = ir.OpIsZero
			inst.Operands = []ir.Operand{inst.Operands[1]}
			return true
		}
		if bOk && maxUintMinusOne(b) {
			// x > MAX-1 -> iszero(not x)
			return insertNotIszero(fn, blk, inst, inst.Operands[0])
		}
	}
	return false
}

func maxUintMinusOne(v *uint256.Int) bool {
	want := new(uint256.Int).Sub(maxUint(), uint256.NewInt(1))
	return v.Eq(want)
}

// insertNotIszero rewrites inst in place to `iszero %t`, inserting a fresh
// `%t = not x` immediately before it.
func insertNotIszero(fn *ir.Function, blk *ir.BasicBlock, inst *ir.Instruction, x ir.Operand) bool {
	notVar := fn.FreshVariable("not", ir.U256)
	notInst := fn.NewInstruction(ir.OpNot, x)
	notInst.Output = notVar
	insertBefore(blk, inst, notInst)
	inst.Opcode = ir.OpIsZero
	inst.Operands = []ir.Operand{notVar}
	return true
}

func foldUnary(inst *ir.Instruction) (ir.Operand, bool) {
	if len(inst.Operands) != 1 {
		return nil, false
	}
	a, ok := lit(inst.Operands[0])
	if !ok {
		return nil, false
	}
	switch inst.Opcode {
	case ir.OpIsZero:
		if a.IsZero() {
			return ir.NewLiteral(1), true
		}
		return ir.NewLiteral(0), true
	case ir.OpNot:
		r := new(uint256.Int).Not(a)
		return ir.LiteralFromBig(r), true
	}
	return nil, false
}

// foldConstantBinary evaluates a pure binary opcode over two known
// literals. 256-bit wraparound is uint256's native behaviour.
func foldConstantBinary(op ir.Opcode, a, b *uint256.Int) (ir.Operand, bool) {
	r := new(uint256.Int)
	switch op {
	case ir.OpAdd:
		r.Add(a, b)
	case ir.OpSub:
		r.Sub(a, b)
	case ir.OpMul:
		r.Mul(a, b)
	case ir.OpDiv:
		r.Div(a, b)
	case ir.OpMod:
		r.Mod(a, b)
	case ir.OpAnd:
		r.And(a, b)
	case ir.OpOr:
		r.Or(a, b)
	case ir.OpXor:
		r.Xor(a, b)
	case ir.OpLt:
		if a.Lt(b) {
			return ir.NewLiteral(1), true
		}
		return ir.NewLiteral(0), true
	case ir.OpGt:
		if a.Gt(b) {
			return ir.NewLiteral(1), true
		}
		return ir.NewLiteral(0), true
	case ir.OpEq:
		if a.Eq(b) {
			return ir.NewLiteral(1), true
		}
		return ir.NewLiteral(0), true
	case ir.OpShl:
		r.Lsh(b, uint(a.Uint64()))
	case ir.OpShr:
		r.Rsh(b, uint(a.Uint64()))
	default:
		return nil, false
	}
	return ir.LiteralFromBig(r), true
}
