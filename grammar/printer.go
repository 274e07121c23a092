package grammar

import (
	"fmt"
	"strings"

	"venom/internal/ir"
)

// Printer renders an *ir.Context back to the textual IR format ParseFile
// accepts. Print(Lower(Parse(src))) must be textually stable on a second
// round trip even if it differs from the original source's whitespace
// (spec §C2, "round-trip").
type Printer struct {
	b strings.Builder
}

func NewPrinter() *Printer { return &Printer{} }

// Print renders ctx as a complete Venom IR source file.
func Print(ctx *ir.Context) string {
	p := &Printer{}
	p.printContext(ctx)
	return p.b.String()
}

func (p *Printer) printContext(ctx *ir.Context) {
	fmt.Fprintf(&p.b, "contract %s\n\n", ctx.Contract)
	for _, c := range ctx.Constants {
		fmt.Fprintf(&p.b, "const %s = %s\n", c.Name, c.Value.Value.Hex())
	}
	if len(ctx.Constants) > 0 {
		p.b.WriteString("\n")
	}
	for _, d := range ctx.DataSections {
		fmt.Fprintf(&p.b, "data @%s { %s }\n", d.Label, formatDataBytes(d.Data))
	}
	if len(ctx.DataSections) > 0 {
		p.b.WriteString("\n")
	}
	for i, fn := range ctx.Functions() {
		if i > 0 {
			p.b.WriteString("\n")
		}
		p.printFunction(fn)
	}
}

func (p *Printer) printFunction(fn *ir.Function) {
	if fn.External {
		p.b.WriteString("external ")
	}
	if fn.Create {
		p.b.WriteString("create ")
	}
	fmt.Fprintf(&p.b, "function @%s(", fn.Name)
	for i, param := range fn.Params {
		if i > 0 {
			p.b.WriteString(", ")
		}
		fmt.Fprintf(&p.b, "%s: %s", param.Name, param.Type.String())
	}
	fmt.Fprintf(&p.b, ") -> %d {\n", fn.NumReturns)
	for _, blk := range fn.Blocks() {
		p.printBlock(blk)
	}
	p.b.WriteString("}\n")
}

func (p *Printer) printBlock(b *ir.BasicBlock) {
	fmt.Fprintf(&p.b, "@%s:\n", b.Label)
	for _, inst := range b.Instructions {
		if inst.IsNop() {
			continue
		}
		p.printInstruction(inst)
	}
}

func (p *Printer) printInstruction(inst *ir.Instruction) {
	p.b.WriteString("  ")
	outs := inst.Outputs()
	if len(outs) > 0 {
		names := make([]string, len(outs))
		for i, v := range outs {
			names[i] = v.String()
		}
		p.b.WriteString(strings.Join(names, ", ") + " = ")
	}
	if inst.Opcode == ir.OpPhi {
		p.b.WriteString("phi ")
		parts := make([]string, len(inst.PhiInputs))
		for i, in := range inst.PhiInputs {
			parts[i] = fmt.Sprintf("@%s %s", in.Pred.Label, in.Value.String())
		}
		p.b.WriteString(strings.Join(parts, ", "))
		p.b.WriteString("\n")
		return
	}
	if inst.Volatile {
		p.b.WriteString("volatile ")
	}
	p.b.WriteString(string(inst.Opcode))
	if len(inst.Operands) > 0 {
		parts := make([]string, len(inst.Operands))
		for i, op := range inst.Operands {
			parts[i] = op.String()
		}
		p.b.WriteString(" " + strings.Join(parts, ", "))
	}
	if inst.Callee != nil {
		fmt.Fprintf(&p.b, " [%s]", inst.Callee.String())
	}
	p.b.WriteString("\n")
}
