// SPDX-License-Identifier: Apache-2.0
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"

	"venom/grammar"
	"venom/internal/checker"
	"venom/internal/ir"
	"venom/internal/pipeline"
	"venom/internal/scheduler"
)

func main() {
	optimize := flag.String("O", "gas", "optimization level: none, gas, codesize")
	emitIR := flag.Bool("emit-ir", false, "print the optimized IR instead of assembling")
	verbose := flag.Bool("v", false, "log each pass that changes a function")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Println("usage: venomc [-O none|gas|codesize] [-emit-ir] [-v] <file.venom>")
		os.Exit(1)
	}
	path := flag.Arg(0)

	level, err := parseOptimizeLevel(*optimize)
	if err != nil {
		color.Red("%s", err)
		os.Exit(1)
	}

	program, err := grammar.ParseFile(path)
	if err != nil {
		// grammar.ParseFile has already printed a diagnostic (caret-style
		// for a syntax error).
		os.Exit(1)
	}

	ctx, err := grammar.Lower(program)
	if err != nil {
		color.Red("failed to lower %s: %s", path, err)
		os.Exit(1)
	}

	if errs := checker.CheckContext(ctx); !errs.Empty() {
		color.Red("%s: %d semantic error(s):", path, len(errs.Errors))
		for _, e := range errs.Errors {
			fmt.Println("  " + e.Error())
		}
		os.Exit(1)
	}

	settings := &ir.Settings{Optimize: level, Constants: map[string]*ir.Literal{}, Verbose: *verbose}
	if !run(ctx, settings, *emitIR) {
		os.Exit(1)
	}
}

// run drives the pipeline and, unless emitIR is set, the scheduler over
// every function in ctx. A panicked *ir.CompilerBug (an invariant
// violation, never a user-facing error) is reported and turned into a
// nonzero exit rather than an unhandled crash.
func run(ctx *ir.Context, settings *ir.Settings, emitIR bool) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			if bug, isBug := r.(*ir.CompilerBug); isBug {
				color.Red("internal compiler error: %s", bug.Message)
				ok = false
				return
			}
			panic(r)
		}
	}()

	pipeline.New(settings).Run(ctx)

	if emitIR {
		fmt.Println(grammar.Print(ctx))
		color.Green("✓ optimized %d function(s)", len(ctx.Functions()))
		return true
	}

	for _, fn := range ctx.Functions() {
		toks := scheduler.Schedule(fn)
		fmt.Printf("; %s\n", fn.Name)
		for _, t := range toks {
			fmt.Println(t.String())
		}
	}
	color.Green("✓ scheduled %d function(s)", len(ctx.Functions()))
	return true
}

func parseOptimizeLevel(s string) (ir.OptimizeLevel, error) {
	switch s {
	case "none":
		return ir.OptimizeNone, nil
	case "gas":
		return ir.OptimizeGas, nil
	case "codesize":
		return ir.OptimizeCodesize, nil
	default:
		return ir.OptimizeNone, fmt.Errorf("unknown optimization level %q (want none, gas, or codesize)", s)
	}
}
