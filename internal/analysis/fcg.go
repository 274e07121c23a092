package analysis

import "venom/internal/ir"

// FCGResult is the whole-context call graph: every function's direct
// callees and callers, plus a reverse-post-order visitation order over the
// call graph used by the inliner so that callees are processed (and
// therefore fully inlined themselves) before their callers (spec §7).
type FCGResult struct {
	callees map[*ir.Function][]*ir.Function
	callers map[*ir.Function][]*ir.Function
	rpo     []*ir.Function
}

// FCGAnalysis is context-scoped rather than function-scoped: callers build
// it once per Context via BuildFCG. It is also registered in the
// per-function Cache under KindFCG, where Analyze requires the cache to
// have been built with a Context.
type FCGAnalysis struct{}

func (*FCGAnalysis) Dependencies() []Kind { return nil }

func (*FCGAnalysis) Analyze(cache *Cache, fn *ir.Function) Result {
	ir.Invariant(cache.Context() != nil, "fcg: analysis requested without a context")
	return BuildFCG(cache.Context())
}

// BuildFCG scans every function's invoke instructions to build the direct
// call graph for ctx.
func BuildFCG(ctx *ir.Context) *FCGResult {
	callees := make(map[*ir.Function][]*ir.Function)
	callers := make(map[*ir.Function][]*ir.Function)

	for _, fn := range ctx.Functions() {
		seen := map[*ir.Function]bool{}
		for _, b := range fn.Blocks() {
			for _, inst := range b.Instructions {
				if inst.Opcode != ir.OpInvoke || inst.Callee == nil {
					continue
				}
				callee := ctx.GetFunction(inst.Callee.Name)
				if callee == nil || callee == fn || seen[callee] {
					continue
				}
				seen[callee] = true
				callees[fn] = append(callees[fn], callee)
				callers[callee] = append(callers[callee], fn)
			}
		}
	}

	return &FCGResult{callees: callees, callers: callers, rpo: callGraphRPO(ctx, callees)}
}

// callGraphRPO returns functions in reverse-post-order of the call graph:
// a function appears after every function it (transitively) calls, so the
// inliner can process leaves first. Recursive cycles are broken
// arbitrarily at the first repeated visit; this ordering does not bound
// recursive inlining (the inliner only refuses to inline a function into
// itself).
func callGraphRPO(ctx *ir.Context, callees map[*ir.Function][]*ir.Function) []*ir.Function {
	visited := map[*ir.Function]bool{}
	var post []*ir.Function
	var visit func(fn *ir.Function)
	visit = func(fn *ir.Function) {
		if visited[fn] {
			return
		}
		visited[fn] = true
		for _, callee := range callees[fn] {
			visit(callee)
		}
		post = append(post, fn)
	}
	for _, fn := range ctx.Functions() {
		visit(fn)
	}
	return post
}

// Callees returns fn's direct call targets.
func (r *FCGResult) Callees(fn *ir.Function) []*ir.Function { return r.callees[fn] }

// Callers returns fn's direct call sites' functions.
func (r *FCGResult) Callers(fn *ir.Function) []*ir.Function { return r.callers[fn] }

// Order returns every function with callees appearing before their
// callers.
func (r *FCGResult) Order() []*ir.Function { return r.rpo }
