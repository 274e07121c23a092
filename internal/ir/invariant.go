package ir

import "fmt"

// CompilerBug panics with a message tagged as an internal-invariant
// violation, as opposed to a user-facing semantic error (spec §7: "a
// violated invariant is a compiler bug, not a checked error, and halts
// the pipeline immediately").
type CompilerBug struct {
	Message string
}

func (e *CompilerBug) Error() string { return "internal compiler error: " + e.Message }

// Invariant panics with a CompilerBug if cond is false. Passes and analyses
// use this for conditions the checker should already have ruled out by the
// time they run (e.g. reading an operand that should have been defined).
func Invariant(cond bool, format string, args ...any) {
	if !cond {
		panic(&CompilerBug{Message: fmt.Sprintf(format, args...)})
	}
}
