package ir

import (
	"fmt"
	"strings"
)

// Printer renders a Context as a debug dump: not the round-trippable
// textual IR (that lives in the grammar package), but a denser form meant
// for -print-ir style diagnostics, annotated with block predecessor sets
// and per-instruction effect masks.
type Printer struct {
	b strings.Builder
}

func NewPrinter() *Printer { return &Printer{} }

func (p *Printer) String() string { return p.b.String() }

func (p *Printer) PrintContext(ctx *Context) string {
	p.b.Reset()
	fmt.Fprintf(&p.b, "; contract %s\n", ctx.Contract)
	for _, c := range ctx.Constants {
		fmt.Fprintf(&p.b, "; const %s = %s\n", c.Name, c.Value.String())
	}
	for _, fn := range ctx.Functions() {
		p.printFunction(fn)
	}
	return p.b.String()
}

func (p *Printer) printFunction(fn *Function) {
	fmt.Fprintf(&p.b, "\nfunction %s(", fn.Name)
	for i, param := range fn.Params {
		if i > 0 {
			p.b.WriteString(", ")
		}
		fmt.Fprintf(&p.b, "%s: %s", param.Name, param.Type.String())
	}
	fmt.Fprintf(&p.b, ") -> %d external=%v create=%v {\n", fn.NumReturns, fn.External, fn.Create)
	for _, blk := range fn.Blocks() {
		p.printBlock(blk)
	}
	p.b.WriteString("}\n")
}

func (p *Printer) printBlock(b *BasicBlock) {
	preds := make([]string, len(b.Predecessors))
	for i, pr := range b.Predecessors {
		preds[i] = pr.Label
	}
	fmt.Fprintf(&p.b, "%s:  ; preds = [%s]\n", b.Label, strings.Join(preds, ", "))
	for _, inst := range b.Instructions {
		p.printInstruction(inst)
	}
}

func (p *Printer) printInstruction(inst *Instruction) {
	p.b.WriteString("    ")
	if inst.Output != nil {
		fmt.Fprintf(&p.b, "%s = ", inst.Output.String())
	}
	if len(inst.ExtraOutputs) > 0 {
		extras := make([]string, len(inst.ExtraOutputs))
		for i, v := range inst.ExtraOutputs {
			extras[i] = v.String()
		}
		fmt.Fprintf(&p.b, "(%s) = ", strings.Join(extras, ", "))
	}
	p.b.WriteString(string(inst.Opcode))
	if inst.Opcode == OpPhi {
		parts := make([]string, len(inst.PhiInputs))
		for i, in := range inst.PhiInputs {
			parts[i] = fmt.Sprintf("@%s %s", in.Pred.Label, in.Value.String())
		}
		p.b.WriteString(" " + strings.Join(parts, ", "))
	} else if len(inst.Operands) > 0 {
		parts := make([]string, len(inst.Operands))
		for i, op := range inst.Operands {
			parts[i] = op.String()
		}
		p.b.WriteString(" " + strings.Join(parts, ", "))
	}
	if inst.Callee != nil {
		fmt.Fprintf(&p.b, " [%s]", inst.Callee.String())
	}
	reads, writes := inst.Effects()
	fmt.Fprintf(&p.b, "  ; id=%d reads=%s writes=%s\n", inst.ID, reads.String(), writes.String())
}
