// Package checker implements Venom's semantic checker (spec §7), grounded
// on vyper's check_venom.py: structural errors are collected rather than
// raised on first sight, and reported together as one aggregate.
package checker

import (
	"fmt"

	"venom/internal/ir"
)

// VenomError is the common interface every structural/semantic finding
// satisfies. Unlike ir.CompilerBug (an invariant violation, a compiler
// bug), a VenomError describes a malformed *input* context and is always
// safe to collect and report rather than panic on.
type VenomError interface {
	error
	venomError()
}

// BasicBlockNotTerminated reports a block with no terminating instruction
// (invariant I1).
type BasicBlockNotTerminated struct {
	Block *ir.BasicBlock
}

func (*BasicBlockNotTerminated) venomError() {}

func (e *BasicBlockNotTerminated) Error() string {
	return fmt.Sprintf("basic block %q is not terminated", e.Block.Label)
}

// VarNotDefined reports a use of a variable that is not guaranteed defined
// on every path reaching the using instruction.
type VarNotDefined struct {
	Var  *ir.Variable
	Inst *ir.Instruction
}

func (*VarNotDefined) venomError() {}

func (e *VarNotDefined) Error() string {
	return fmt.Sprintf("variable %s used before definition in %q", e.Var.String(), e.Inst.Opcode)
}

// InvokeArityMismatch reports an invoke instruction whose operand/output
// count disagrees with the callee's declared parameter/return arity
// (supplemental to the recovered checker; not present in the distilled
// spec's source but implied by spec invariant I4 "arity is uniform").
type InvokeArityMismatch struct {
	Inst     *ir.Instruction
	Callee   *ir.Function
	Expected int
	Got      int
	Kind     string // "params" or "returns"
}

func (*InvokeArityMismatch) venomError() {}

func (e *InvokeArityMismatch) Error() string {
	return fmt.Sprintf("invoke of %s: %s arity mismatch, expected %d got %d", e.Callee.Name, e.Kind, e.Expected, e.Got)
}

// InconsistentReturnArity reports two `ret` instructions in the same
// function returning a different number of values (spec invariant I4).
type InconsistentReturnArity struct {
	Function *ir.Function
	First    *ir.Instruction
	Second   *ir.Instruction
}

func (*InconsistentReturnArity) venomError() {}

func (e *InconsistentReturnArity) Error() string {
	return fmt.Sprintf("function %s: inconsistent ret arity (%d vs %d)",
		e.Function.Name, len(e.First.Operands), len(e.Second.Operands))
}

// DanglingLabel reports a jmp/jnz/djmp target referencing a block label
// that does not exist in the function (spec invariant I6).
type DanglingLabel struct {
	Inst  *ir.Instruction
	Label string
}

func (*DanglingLabel) venomError() {}

func (e *DanglingLabel) Error() string {
	return fmt.Sprintf("reference to undefined label %q in %q", e.Label, e.Inst.Opcode)
}

// ErrorGroup aggregates every VenomError found across a context, rather
// than surfacing only the first (spec §7, "collected into an aggregate
// rather than failing fast").
type ErrorGroup struct {
	Errors []VenomError
}

func (g *ErrorGroup) Error() string {
	if len(g.Errors) == 1 {
		return g.Errors[0].Error()
	}
	return fmt.Sprintf("%d venom semantic errors (first: %s)", len(g.Errors), g.Errors[0].Error())
}

// Empty reports whether the group carries no findings.
func (g *ErrorGroup) Empty() bool { return g == nil || len(g.Errors) == 0 }
