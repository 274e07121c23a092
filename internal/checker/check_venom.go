package checker

import (
	"venom/internal/analysis"
	"venom/internal/ir"
)

// CheckFunction runs the structural and def-use checks on a single
// function, grounded on find_semantic_errors_fn: first every block must be
// terminated (an unterminated function makes variable-definition analysis
// meaningless, so termination is checked and returned before anything
// else), then every use is checked against VarDefinition, then the
// supplemental arity/label checks run.
func CheckFunction(fn *ir.Function) []VenomError {
	var errs []VenomError
	for _, b := range fn.Blocks() {
		if !b.IsTerminated() {
			errs = append(errs, &BasicBlockNotTerminated{Block: b})
		}
	}
	if len(errs) > 0 {
		return errs
	}

	cache := analysis.NewCache(fn, nil)
	varDef := analysis.RequestVarDefinition(cache)

	for _, b := range fn.Blocks() {
		errs = append(errs, checkVarDefinitionBlock(fn, b, varDef)...)
	}
	errs = append(errs, checkReturnArity(fn)...)
	errs = append(errs, checkDanglingLabels(fn)...)

	return errs
}

func checkVarDefinitionBlock(fn *ir.Function, b *ir.BasicBlock, varDef *analysis.VarDefinitionResult) []VenomError {
	var errs []VenomError
	for _, inst := range b.Instructions {
		if inst.Opcode == ir.OpPhi {
			for _, in := range inst.PhiInputs {
				v, ok := in.Value.(*ir.Variable)
				if !ok {
					continue
				}
				pred := in.Pred
				if pred == nil {
					continue
				}
				defined := varDef.DefinedAtExit(pred)
				if !defined[v.Name()] {
					errs = append(errs, &VarNotDefined{Var: v, Inst: inst})
				}
			}
			continue
		}
		defined := varDef.DefinedAt(inst)
		for _, use := range inst.Uses() {
			v, ok := use.(*ir.Variable)
			if !ok {
				continue
			}
			if !defined[v.Name()] {
				errs = append(errs, &VarNotDefined{Var: v, Inst: inst})
			}
		}
	}
	return errs
}

// checkReturnArity validates spec invariant I4 within a single function:
// every `ret` must return the same number of values.
func checkReturnArity(fn *ir.Function) []VenomError {
	var errs []VenomError
	var first *ir.Instruction
	for _, b := range fn.Blocks() {
		term := b.Terminator()
		if term == nil || term.Opcode != ir.OpRet {
			continue
		}
		if first == nil {
			first = term
			continue
		}
		if len(term.Operands) != len(first.Operands) {
			errs = append(errs, &InconsistentReturnArity{Function: fn, First: first, Second: term})
		}
	}
	return errs
}

// checkDanglingLabels validates spec invariant I6 for terminators: every
// jmp/jnz/djmp target label must name a block that exists in fn. Phi
// inputs hold their predecessor as a *BasicBlock and are not checked here.
func checkDanglingLabels(fn *ir.Function) []VenomError {
	var errs []VenomError
	check := func(inst *ir.Instruction, name string) {
		if fn.GetBlock(name) == nil {
			errs = append(errs, &DanglingLabel{Inst: inst, Label: name})
		}
	}
	for _, b := range fn.Blocks() {
		for _, inst := range b.Instructions {
			switch inst.Opcode {
			case ir.OpJmp:
				if lbl, ok := inst.Operands[0].(*ir.Label); ok {
					check(inst, lbl.Name)
				}
			case ir.OpJnz:
				for _, idx := range []int{1, 2} {
					if idx < len(inst.Operands) {
						if lbl, ok := inst.Operands[idx].(*ir.Label); ok {
							check(inst, lbl.Name)
						}
					}
				}
			case ir.OpDjmp:
				for _, op := range inst.Operands[1:] {
					if lbl, ok := op.(*ir.Label); ok {
						check(inst, lbl.Name)
					}
				}
			}
		}
	}
	return errs
}

// CheckContext runs CheckFunction over every function in ctx, plus
// CheckInvokeArity on every instruction, and aggregates the findings,
// grounded on check_venom_ctx/find_semantic_errors.
func CheckContext(ctx *ir.Context) *ErrorGroup {
	var all []VenomError
	for _, fn := range ctx.Functions() {
		all = append(all, CheckFunction(fn)...)
		for _, b := range fn.Blocks() {
			for _, inst := range b.Instructions {
				all = append(all, CheckInvokeArity(ctx, inst)...)
			}
		}
	}
	if len(all) == 0 {
		return nil
	}
	return &ErrorGroup{Errors: all}
}

// CheckInvokeArity validates a single invoke instruction's operand/output
// count against its resolved callee, a check the original checker leaves
// to Python's own call-time TypeError but Venom makes explicit since Go
// gives no such thing for free.
func CheckInvokeArity(ctx *ir.Context, inst *ir.Instruction) []VenomError {
	if inst.Opcode != ir.OpInvoke || inst.Callee == nil {
		return nil
	}
	callee := ctx.GetFunction(inst.Callee.Name)
	if callee == nil {
		return nil
	}
	var errs []VenomError
	gotParams := len(inst.Operands)
	if gotParams != len(callee.Params) {
		errs = append(errs, &InvokeArityMismatch{Inst: inst, Callee: callee, Expected: len(callee.Params), Got: gotParams, Kind: "params"})
	}
	gotReturns := len(inst.Outputs())
	if gotReturns != callee.NumReturns {
		errs = append(errs, &InvokeArityMismatch{Inst: inst, Callee: callee, Expected: callee.NumReturns, Got: gotReturns, Kind: "returns"})
	}
	return errs
}
