package grammar

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"venom/internal/ir"
)

// Lower converts a parsed Program into an *ir.Context. Blocks are created
// in a first pass so that forward references (a jmp to a block appearing
// later in the file, a phi naming a not-yet-built predecessor) resolve
// correctly in the second pass that fills in instructions.
func Lower(prog *Program) (*ir.Context, error) {
	contract := "contract"
	if prog.Contract != nil {
		contract = *prog.Contract
	}
	ctx := ir.NewContext(contract)

	for _, el := range prog.Elements {
		switch {
		case el.Const != nil:
			val, err := parseIntegerLiteral(el.Const.Value)
			if err != nil {
				return nil, fmt.Errorf("const %s: %w", el.Const.Name, err)
			}
			ctx.AddConstant(el.Const.Name, ir.LiteralFromBig(val))
		case el.Data != nil:
			data, err := parseDataBytes(el.Data.Bytes)
			if err != nil {
				return nil, fmt.Errorf("data %s: %w", el.Data.Label, err)
			}
			ctx.AppendDataSection(strings.TrimPrefix(el.Data.Label, "@"), data)
		case el.Func != nil:
			fn, err := lowerFunction(el.Func)
			if err != nil {
				return nil, err
			}
			ctx.AddFunction(fn)
		}
	}
	return ctx, nil
}

func lowerFunction(decl *FuncDecl) (*ir.Function, error) {
	fn := ir.NewFunction(strings.TrimPrefix(decl.Name, "@"))
	fn.External = decl.External
	fn.Create = decl.Create
	fn.NumReturns = decl.Returns
	for _, p := range decl.Params {
		fn.Params = append(fn.Params, &ir.Parameter{Name: p.Name, Type: lowerType(p.Type)})
	}

	for _, b := range decl.Blocks {
		fn.AddBlock(ir.NewBasicBlock(strings.TrimPrefix(b.Label, "@")))
	}

	for _, b := range decl.Blocks {
		block := fn.GetBlock(strings.TrimPrefix(b.Label, "@"))
		for _, instDecl := range b.Instructions {
			inst, err := lowerInstruction(fn, block, instDecl)
			if err != nil {
				return nil, fmt.Errorf("function %s: %w", fn.Name, err)
			}
			if inst.IsTerminator() {
				block.SetTerminator(inst)
			} else {
				block.Append(inst)
			}
		}
	}
	return fn, nil
}

func lowerType(name string) ir.Type {
	lower := strings.ToLower(name)
	switch lower {
	case "bool":
		return ir.Bool
	case "address":
		return ir.Address
	default:
		signed := strings.HasPrefix(lower, "i")
		if signed || strings.HasPrefix(lower, "u") {
			if bits, err := strconv.Atoi(lower[1:]); err == nil {
				return &ir.IntType{Width: bits, Signed: signed}
			}
		}
		return ir.U256
	}
}

func lowerInstruction(fn *ir.Function, block *ir.BasicBlock, decl *InstDecl) (*ir.Instruction, error) {
	var outputs []*ir.Variable
	for _, o := range decl.Outputs {
		base, version, err := parseVarName(o.Name)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, &ir.Variable{Base: base, Version: version})
	}

	var inst *ir.Instruction
	switch {
	case decl.Phi != nil:
		inst = fn.NewInstruction(ir.OpPhi)
		for _, arg := range decl.Phi.Args {
			pred := fn.GetBlock(strings.TrimPrefix(arg.Pred, "@"))
			if pred == nil {
				return nil, fmt.Errorf("phi predecessor %s not found", arg.Pred)
			}
			val, err := lowerOperand(arg.Value)
			if err != nil {
				return nil, err
			}
			inst.PhiInputs = append(inst.PhiInputs, ir.PhiInput{Pred: pred, Value: val})
		}
	case decl.Plain != nil:
		op := ir.Opcode(decl.Plain.Opcode)
		var operands []ir.Operand
		for _, a := range decl.Plain.Args {
			val, err := lowerOperand(a)
			if err != nil {
				return nil, err
			}
			operands = append(operands, val)
		}
		inst = fn.NewInstruction(op, operands...)
		inst.Volatile = decl.Plain.Volatile
		if decl.Plain.Callee != nil {
			inst.Callee = &ir.Label{Name: strings.TrimPrefix(*decl.Plain.Callee, "@")}
		}
	default:
		return nil, fmt.Errorf("malformed instruction")
	}

	if len(outputs) > 0 {
		inst.Output = outputs[0]
		inst.ExtraOutputs = outputs[1:]
	}
	return inst, nil
}

var memLocPattern = regexp.MustCompile(`^<memloc#(-?\d+):([a-z_0-9]+),(\d+)>$`)

func lowerOperand(op *Operand) (ir.Operand, error) {
	switch {
	case op.Var != nil:
		base, version, err := parseVarName(*op.Var)
		if err != nil {
			return nil, err
		}
		return &ir.Variable{Base: base, Version: version}, nil
	case op.Label != nil:
		return &ir.Label{Name: strings.TrimPrefix(*op.Label, "@")}, nil
	case op.MemLoc != nil:
		m := memLocPattern.FindStringSubmatch(*op.MemLoc)
		if m == nil {
			return nil, fmt.Errorf("malformed memloc %q", *op.MemLoc)
		}
		id, _ := strconv.Atoi(m[1])
		size, _ := strconv.Atoi(m[3])
		return &ir.AbstractMemLoc{ID: id, Kind: memLocKindFromString(m[2]), Size: size}, nil
	case op.Number != nil:
		v, err := parseIntegerLiteral(*op.Number)
		if err != nil {
			return nil, err
		}
		return ir.LiteralFromBig(v), nil
	default:
		return nil, fmt.Errorf("malformed operand")
	}
}

func memLocKindFromString(s string) ir.MemLocKind {
	switch s {
	case "scratch":
		return ir.MemLocScratch
	case "abi_data":
		return ir.MemLocABIData
	case "calldata_buf":
		return ir.MemLocCalldataBuf
	case "returndata":
		return ir.MemLocReturnData
	case "free_var1":
		return ir.MemLocFreeVar1
	case "free_var2":
		return ir.MemLocFreeVar2
	case "deploy_region":
		return ir.MemLocDeployRegion
	default:
		return ir.MemLocScratch
	}
}
