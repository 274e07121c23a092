package analysis

import "venom/internal/ir"

// VarDefinitionResult reports, per instruction, the set of variable names
// defined by the time that instruction executes -- the set a checker
// compares each use against (spec §7, grounded directly on the recovered
// semantic checker's VarDefinition analysis). DefinedVarsBB gives the same
// view at a block's exit, used to validate phi operands against the
// predecessor they claim to come from.
type VarDefinitionResult struct {
	definedVars   map[*ir.Instruction]map[string]bool
	definedVarsBB map[*ir.BasicBlock]map[string]bool
}

type VarDefinitionAnalysis struct{}

func (*VarDefinitionAnalysis) Dependencies() []Kind { return []Kind{KindCFG} }

// Analyze runs a forward fixed-point over "variables defined so far",
// merging by intersection at join points: a variable is only definitely
// defined if every predecessor defines it. Phis are treated specially since
// they are defined unconditionally by virtue of appearing in the block, not
// because every predecessor supplies them through straight-line flow.
func (*VarDefinitionAnalysis) Analyze(cache *Cache, fn *ir.Function) Result {
	cfg := RequestCFG(cache)
	rpo := cfg.RPO

	paramNames := map[string]bool{}
	for _, p := range fn.Params {
		paramNames[p.Name] = true
	}

	definedVars := make(map[*ir.Instruction]map[string]bool)
	definedVarsBB := make(map[*ir.BasicBlock]map[string]bool)

	changed := true
	for changed {
		changed = false
		for _, b := range rpo {
			var in map[string]bool
			if len(b.Predecessors) == 0 {
				in = cloneSet(paramNames)
			} else {
				for i, pred := range b.Predecessors {
					predOut := definedVarsBB[pred]
					if predOut == nil {
						predOut = map[string]bool{}
					}
					if i == 0 {
						in = cloneSet(predOut)
					} else {
						in = intersectSets(in, predOut)
					}
				}
			}

			cur := in
			for _, inst := range b.Instructions {
				definedVars[inst] = cloneSet(cur)
				for _, def := range inst.Outputs() {
					if !cur[def.Name()] {
						cur = cloneSet(cur)
						cur[def.Name()] = true
					}
				}
			}

			if !setEqual(cur, definedVarsBB[b]) {
				changed = true
			}
			definedVarsBB[b] = cur
		}
	}

	return &VarDefinitionResult{definedVars: definedVars, definedVarsBB: definedVarsBB}
}

func cloneSet(s map[string]bool) map[string]bool {
	out := make(map[string]bool, len(s))
	for k := range s {
		out[k] = true
	}
	return out
}

func intersectSets(a, b map[string]bool) map[string]bool {
	out := map[string]bool{}
	for k := range a {
		if b[k] {
			out[k] = true
		}
	}
	return out
}

// DefinedAt returns the set of variable names defined strictly before inst
// executes within its block (not counting inst's own output).
func (r *VarDefinitionResult) DefinedAt(inst *ir.Instruction) map[string]bool {
	return r.definedVars[inst]
}

// DefinedAtExit returns the set of variable names defined by the end of b,
// used to validate a phi's claim about what a given predecessor supplies.
func (r *VarDefinitionResult) DefinedAtExit(b *ir.BasicBlock) map[string]bool {
	return r.definedVarsBB[b]
}

func RequestVarDefinition(cache *Cache) *VarDefinitionResult {
	return cache.Request(KindVarDefinition).(*VarDefinitionResult)
}
