package errors

// Error codes for the Venom pipeline.
//
// Error code ranges:
// E0100-E0199: Textual IR parse errors
// E0200-E0299: Semantic/structural checker errors (spec §7)
// E0300-E0399: Inliner errors
// E0400-E0499: Scheduler errors ("stack too deep" and friends)
// E0900-E0999: Internal invariant violations (compiler bugs, not user errors)

const (
	ErrorParseSyntax       = "E0100"
	ErrorParseUnknownOpcode = "E0101"

	ErrorBlockNotTerminated     = "E0200"
	ErrorVarNotDefined          = "E0201"
	ErrorInvokeArityMismatch    = "E0202"
	ErrorInconsistentReturnArity = "E0203"
	ErrorDanglingLabel          = "E0204"

	ErrorRecursiveInlineBudget = "E0300"

	ErrorStackTooDeep = "E0400"

	ErrorInternalInvariant = "E0900"
)

// GetErrorDescription returns a human-readable description of the error code.
func GetErrorDescription(code string) string {
	switch code {
	case ErrorParseSyntax:
		return "Textual IR source does not match the grammar"
	case ErrorParseUnknownOpcode:
		return "Instruction names an opcode outside the closed opcode enum"
	case ErrorBlockNotTerminated:
		return "Basic block has no terminating instruction"
	case ErrorVarNotDefined:
		return "Variable is used on a path where it is not guaranteed defined"
	case ErrorInvokeArityMismatch:
		return "Invoke instruction's operand or output count disagrees with the callee's signature"
	case ErrorInconsistentReturnArity:
		return "Function returns a different number of values on different paths"
	case ErrorDanglingLabel:
		return "Jump, branch or phi references a block label that does not exist"
	case ErrorRecursiveInlineBudget:
		return "Inliner exceeded its recursion/size budget"
	case ErrorStackTooDeep:
		return "Scheduled code requires a stack depth the EVM cannot address"
	case ErrorInternalInvariant:
		return "Internal compiler invariant violated"
	default:
		return "Unknown error code"
	}
}

// GetErrorCategory returns the category of the error based on its code.
func GetErrorCategory(code string) string {
	switch {
	case code >= "E0100" && code < "E0200":
		return "Parser"
	case code >= "E0200" && code < "E0300":
		return "Semantic"
	case code >= "E0300" && code < "E0400":
		return "Inliner"
	case code >= "E0400" && code < "E0500":
		return "Scheduler"
	case code >= "E0900" && code < "E1000":
		return "Internal"
	default:
		return "Unknown"
	}
}
