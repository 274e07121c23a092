// Package pipeline implements Venom's C7 orchestration: the fixed
// sequence of analysis-cache-backed passes that turns a function fresh out
// of IR construction into one the C9 scheduler can lower directly, plus
// the single global inlining step that runs ahead of it.
package pipeline

import (
	"fmt"

	"github.com/fatih/color"

	"venom/internal/analysis"
	"venom/internal/inline"
	"venom/internal/ir"
	"venom/internal/passes"
)

// Pipeline runs Venom's optimization sequence over a Context. The default
// sequence below is recovered verbatim from vyper's venom/__init__.py
// _run_passes/_run_global_passes; this implementation supplements it with
// LoopInvariantCodeMotion, AssertCombiner, AssertElimination and
// OverflowElimination (present in spec but absent from the three
// surviving original-source files), wired in after SCCP and
// AssignElimination and before RevertToAssert, since all four depend on
// SCCP's constant/range facts. RedundantLoadElimination
// runs immediately after LoadElimination, once per address space, to
// globalise LoadElimination's per-block reuse across the whole CFG.
type Pipeline struct {
	Settings *ir.Settings
}

// New returns a Pipeline configured by settings.
func New(settings *ir.Settings) *Pipeline {
	return &Pipeline{Settings: settings}
}

// Run executes the global passes once, then the per-function sequence over
// every function in the context, in call-graph reverse-post-order
// (callees before callers, so a caller sees its callees already in their
// final, optimized form -- matters most for the inliner, but keeping the
// same order for the rest of the pipeline costs nothing and matches the
// teacher's single traversal).
func (p *Pipeline) Run(ctx *ir.Context) {
	p.runGlobalPasses(ctx)

	fcg := analysis.BuildFCG(ctx)
	for _, fn := range fcg.Order() {
		p.runFunctionPasses(fn, ctx)
	}
}

// runGlobalPasses floats every function's allocas to its entry block ahead
// of inlining -- so a callee's stack slots are already in their final
// position before FunctionInlinerPass duplicates its body into a caller --
// then runs the inliner itself once to a fixed point.
func (p *Pipeline) runGlobalPasses(ctx *ir.Context) {
	for _, fn := range ctx.Functions() {
		p.runOne(passes.FloatAllocas{}, analysis.NewCache(fn, ctx), fn)
	}

	budget, enabled := inline.BudgetFor(p.Settings.Optimize)
	if !enabled {
		return
	}
	inliner := inline.FunctionInlinerPass{Budget: budget}
	changed := inliner.Run(ctx)
	p.logGlobal("function_inliner", changed)
}

// runFunctionPasses runs the C7 default sequence once over fn, sharing one
// analysis cache across every pass so invalidation stays precise.
func (p *Pipeline) runFunctionPasses(fn *ir.Function, ctx *ir.Context) {
	cache := analysis.NewCache(fn, ctx)
	run := func(pass passes.Pass) { p.runOne(pass, cache, fn) }

	run(passes.FloatAllocas{})
	run(passes.SimplifyCFG{})

	run(passes.MakeSSA{})
	run(passes.PhiElimination{})

	// Constant folding before Mem2Var reduces pointer arithmetic it would
	// otherwise have to see through.
	run(passes.AlgebraicOptimization{})
	run(passes.SCCP{})
	run(passes.SimplifyCFG{})

	run(passes.AssignElimination{})
	run(passes.Mem2Var{})
	run(passes.MakeSSA{})
	run(passes.PhiElimination{})
	run(passes.SCCP{})

	run(passes.SimplifyCFG{})
	run(passes.AssignElimination{})
	run(passes.AlgebraicOptimization{})

	run(passes.LoadElimination{Space: ir.SpaceMemory})
	run(passes.LoadElimination{Space: ir.SpaceStorage})
	run(passes.LoadElimination{Space: ir.SpaceTransient})
	run(passes.RedundantLoadElimination{Space: ir.SpaceMemory})
	run(passes.RedundantLoadElimination{Space: ir.SpaceStorage})
	run(passes.RedundantLoadElimination{Space: ir.SpaceTransient})
	run(passes.PhiElimination{})
	run(passes.AssignElimination{})

	run(passes.SCCP{})
	run(passes.AssignElimination{})
	run(passes.LoopInvariantCodeMotion{})
	run(passes.AssertCombiner{})
	run(passes.OverflowElimination{})
	run(passes.AssertElimination{})
	run(passes.RevertToAssert{})

	run(passes.SimplifyCFG{})
	run(passes.RemoveUnusedVariables{})

	run(passes.DeadStoreElimination{Space: ir.SpaceMemory})
	run(passes.DeadStoreElimination{Space: ir.SpaceStorage})
	run(passes.DeadStoreElimination{Space: ir.SpaceTransient})

	run(passes.AssignElimination{})
	run(passes.RemoveUnusedVariables{})
	run(passes.ConcretizeMemLoc{})
	run(passes.SCCP{})
	run(passes.SimplifyCFG{})

	// MemMerging first, since LowerDLoad's codecopy/mload expansion would
	// otherwise break up the literal-stride runs MemMerging looks for.
	// MemoryCopyElision follows immediately: MemMerging can fold a run of
	// self-copying load/store pairs into a same-address mcopy, which this
	// call cleans up before anything downstream has to reason about a no-op
	// copy.
	run(passes.MemMerging{})
	run(passes.MemoryCopyElision{})
	run(passes.LowerDLoad{})
	run(passes.RemoveUnusedVariables{})
	run(passes.BranchOptimization{})

	run(passes.AlgebraicOptimization{})
	run(passes.RemoveUnusedVariables{})

	// By this point SCCP has propagated every statically-known constant
	// into the mstore sequences a fixed-size abi-encode-then-hash pattern
	// lowers to, maximizing how often a keccak256 over a literal region
	// folds away entirely.
	run(passes.KeccakFolding{})
	run(passes.RemoveUnusedVariables{})

	run(passes.PhiElimination{})
	run(passes.AssignElimination{})
	run(passes.CommonSubexpressionElimination{})

	run(passes.AssignElimination{})
	run(passes.RemoveUnusedVariables{})
	run(passes.SingleUseExpansion{})

	if p.Settings.Optimize == ir.OptimizeCodesize {
		run(passes.ReduceLiteralsCodesize{})
	}

	run(passes.DFT{})
	run(passes.CFGNormalization{})
}

func (p *Pipeline) runOne(pass passes.Pass, cache *analysis.Cache, fn *ir.Function) {
	changed := pass.Run(cache, fn)
	if !p.Settings.Verbose {
		return
	}
	if changed {
		fmt.Printf("  %s %s.%s\n", color.GreenString("+"), fn.Name, pass.Name())
	} else {
		fmt.Printf("  %s %s.%s\n", color.HiBlackString("-"), fn.Name, pass.Name())
	}
}

func (p *Pipeline) logGlobal(name string, changed bool) {
	if !p.Settings.Verbose {
		return
	}
	if changed {
		fmt.Printf("%s %s\n", color.GreenString("+"), name)
	} else {
		fmt.Printf("%s %s\n", color.HiBlackString("-"), name)
	}
}
