package passes

import (
	"venom/internal/analysis"
	"venom/internal/ir"

	"github.com/holiman/uint256"
)

// latKind is SCCP's three-point lattice over a variable's value (spec
// §4.7): latBottom means "not yet resolved" (the optimistic starting
// point every variable is seeded at), latConst carries a single proven
// value, and latTop means "provably not a single constant". Lattice
// height is 3, so a chaotic-iteration fixed point over the whole
// function terminates quickly -- each variable can rise at most twice.
type latKind int

const (
	latBottom latKind = iota
	latConst
	latTop
)

type latticeValue struct {
	kind latKind
	val  *uint256.Int
}

// SCCP discovers, simultaneously, which blocks are reachable and which
// SSA variables hold a single compile-time-known value (spec §4.7):
// unreachable edges keep a jnz's untaken arm's inputs from polluting a
// phi's lattice value, and a resolved constant narrows every pure
// instruction that consumes it. Folded constants are written back by
// replacing every use of a constant-valued output and nopping its
// defining instruction; a jnz whose condition resolves to a constant is
// rewritten to an unconditional jmp so SimplifyCFG can prune the
// now-unreachable arm.
type SCCP struct{}

func (SCCP) Name() string { return "sccp" }

func (SCCP) Run(cache *analysis.Cache, fn *ir.Function) bool {
	blocks := fn.Blocks()
	if len(blocks) == 0 {
		return false
	}

	reachable := make(map[*ir.BasicBlock]bool, len(blocks))
	reachable[fn.Entry()] = true
	values := make(map[string]latticeValue)

	for iterate := true; iterate; {
		iterate = false
		for _, b := range blocks {
			if !reachable[b] {
				continue
			}
			for _, inst := range b.Instructions {
				if inst.IsNop() {
					continue
				}
				switch {
				case inst.IsTerminator():
					if markSuccessors(inst, values, reachable) {
						iterate = true
					}
				case inst.Opcode == ir.OpPhi:
					if evalPhi(inst, reachable, values) {
						iterate = true
					}
				case inst.Output != nil:
					if evalInstruction(inst, values) {
						iterate = true
					}
				}
			}
		}
	}

	changed := false
	for _, b := range blocks {
		for _, inst := range b.Instructions {
			if inst.IsNop() || inst.Output == nil || len(inst.ExtraOutputs) > 0 {
				continue
			}
			lv, ok := values[inst.Output.Name()]
			if !ok || lv.kind != latConst {
				continue
			}
			replaceAllUses(fn, inst.Output, ir.LiteralFromBig(lv.val))
			inst.MakeNop()
			changed = true
		}
	}
	if changed {
		removeNops(fn)
	}

	for _, b := range blocks {
		term := b.Terminator()
		if term == nil || term.Opcode != ir.OpJnz {
			continue
		}
		cond, ok := term.Operands[0].(*ir.Literal)
		if !ok {
			continue
		}
		target := term.Operands[2] // false branch
		if !cond.IsZero() {
			target = term.Operands[1] // true branch
		}
		b.SetTerminator(fn.NewInstruction(ir.OpJmp, target))
		changed = true
	}

	if changed {
		cache.InvalidateAll()
	}
	return changed
}

// markSuccessors marks the blocks a terminator can reach as reachable, a
// jnz with a constant condition marking only the taken arm. Reports
// whether any new block became reachable.
func markSuccessors(inst *ir.Instruction, values map[string]latticeValue, reachable map[*ir.BasicBlock]bool) bool {
	changed := false
	mark := func(b *ir.BasicBlock) {
		if b != nil && !reachable[b] {
			reachable[b] = true
			changed = true
		}
	}
	succs := inst.Successors()
	if inst.Opcode == ir.OpJnz && len(succs) == 2 {
		cond := get(inst.Operands[0], values)
		if cond.kind == latConst {
			if cond.val.IsZero() {
				mark(succs[1])
			} else {
				mark(succs[0])
			}
			return changed
		}
	}
	for _, s := range succs {
		mark(s)
	}
	return changed
}

// evalPhi joins the lattice values flowing in from every predecessor edge
// proven reachable so far, ignoring the rest -- an unreachable predecessor
// never pollutes the join with a value that can't actually arrive.
func evalPhi(inst *ir.Instruction, reachable map[*ir.BasicBlock]bool, values map[string]latticeValue) bool {
	result := latticeValue{kind: latBottom}
	for _, p := range inst.PhiInputs {
		if !reachable[p.Pred] {
			continue
		}
		result = combine(result, get(p.Value, values))
	}
	return setValue(inst.Output, result, values)
}

// evalInstruction computes a non-phi, non-terminator instruction's output
// lattice value from its operands' current values.
func evalInstruction(inst *ir.Instruction, values map[string]latticeValue) bool {
	if !inst.Opcode.IsPure() {
		return setValue(inst.Output, latticeValue{kind: latTop}, values)
	}
	var result latticeValue
	switch len(inst.Operands) {
	case 1:
		result = evalUnary(inst.Opcode, get(inst.Operands[0], values))
	case 2:
		result = evalBinary(inst.Opcode, get(inst.Operands[0], values), get(inst.Operands[1], values))
	default:
		result = latticeValue{kind: latTop}
	}
	return setValue(inst.Output, result, values)
}

func evalUnary(op ir.Opcode, a latticeValue) latticeValue {
	if op == ir.OpAssign {
		return a
	}
	switch a.kind {
	case latBottom:
		return latticeValue{kind: latBottom}
	case latTop:
		return latticeValue{kind: latTop}
	}
	v, ok := evalConstUnary(op, a.val)
	if !ok {
		return latticeValue{kind: latTop}
	}
	return latticeValue{kind: latConst, val: v}
}

func evalBinary(op ir.Opcode, a, b latticeValue) latticeValue {
	if a.kind == latTop || b.kind == latTop {
		return latticeValue{kind: latTop}
	}
	if a.kind == latBottom || b.kind == latBottom {
		return latticeValue{kind: latBottom}
	}
	v, ok := evalConstBinary(op, a.val, b.val)
	if !ok {
		return latticeValue{kind: latTop}
	}
	return latticeValue{kind: latConst, val: v}
}

// evalConstUnary evaluates a pure unary opcode over a known literal, the
// same opcode coverage foldUnary exposes to AlgebraicOptimization.
func evalConstUnary(op ir.Opcode, a *uint256.Int) (*uint256.Int, bool) {
	switch op {
	case ir.OpIsZero:
		if a.IsZero() {
			return uint256.NewInt(1), true
		}
		return uint256.NewInt(0), true
	case ir.OpNot:
		return new(uint256.Int).Not(a), true
	}
	return nil, false
}

// evalConstBinary wraps foldConstantBinary for two known literals; its
// opcode coverage (Add/Sub/Mul/Div/Mod/And/Or/Xor/Lt/Gt/Eq/Shl/Shr) is a
// deliberate scope limit shared with AlgebraicOptimization -- SDiv, SMod,
// SLt, SGt, Sar, AddMod, MulMod, Exp, Byte, SignExtend and the
// checked-arithmetic family fall through to latTop instead of being
// folded.
func evalConstBinary(op ir.Opcode, a, b *uint256.Int) (*uint256.Int, bool) {
	res, ok := foldConstantBinary(op, a, b)
	if !ok {
		return nil, false
	}
	return res.(*ir.Literal).Value, true
}

// get reads operand's current lattice value: a literal is always a known
// constant, a variable looks up its current entry (latBottom if absent --
// not yet computed, not yet proven anything), anything else (a label, an
// abstract memory location) is conservatively latTop.
func get(op ir.Operand, values map[string]latticeValue) latticeValue {
	switch o := op.(type) {
	case *ir.Literal:
		return latticeValue{kind: latConst, val: o.Value}
	case *ir.Variable:
		if lv, ok := values[o.Name()]; ok {
			return lv
		}
		return latticeValue{kind: latBottom}
	default:
		return latticeValue{kind: latTop}
	}
}

// combine joins two lattice values over the same quantity (two phi
// operands, or the same variable's previous and newly computed value):
// bottom yields to whatever the other side knows, two disagreeing
// constants collapse to top, top absorbs everything.
func combine(a, b latticeValue) latticeValue {
	if a.kind == latBottom {
		return b
	}
	if b.kind == latBottom {
		return a
	}
	if a.kind == latTop || b.kind == latTop {
		return latticeValue{kind: latTop}
	}
	if a.val.Eq(b.val) {
		return a
	}
	return latticeValue{kind: latTop}
}

func setValue(v *ir.Variable, newVal latticeValue, values map[string]latticeValue) bool {
	if v == nil {
		return false
	}
	key := v.Name()
	old, exists := values[key]
	if exists && latEqual(old, newVal) {
		return false
	}
	values[key] = newVal
	return true
}

func latEqual(a, b latticeValue) bool {
	if a.kind != b.kind {
		return false
	}
	if a.kind == latConst {
		return a.val.Eq(b.val)
	}
	return true
}
