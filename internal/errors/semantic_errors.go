package errors

import "fmt"

// SemanticErrorBuilder provides a fluent interface for creating semantic
// errors with suggestions, kept from the teacher's error-reporting style
// and retargeted at Venom's own error taxonomy (codes.go).
type SemanticErrorBuilder struct {
	err CompilerError
}

// NewSemanticError creates a new semantic error builder.
func NewSemanticError(code, message string, pos Position) *SemanticErrorBuilder {
	return &SemanticErrorBuilder{
		err: CompilerError{Level: Error, Code: code, Message: message, Position: pos, Length: 1},
	}
}

// WithLength sets the length of the error span.
func (b *SemanticErrorBuilder) WithLength(length int) *SemanticErrorBuilder {
	b.err.Length = length
	return b
}

// WithSuggestion adds a suggestion to the error.
func (b *SemanticErrorBuilder) WithSuggestion(message string) *SemanticErrorBuilder {
	b.err.Suggestions = append(b.err.Suggestions, Suggestion{Message: message})
	return b
}

// WithNote adds a note to the error.
func (b *SemanticErrorBuilder) WithNote(note string) *SemanticErrorBuilder {
	b.err.Notes = append(b.err.Notes, note)
	return b
}

// WithHelp adds help text to the error.
func (b *SemanticErrorBuilder) WithHelp(help string) *SemanticErrorBuilder {
	b.err.HelpText = help
	return b
}

// Build returns the completed compiler error.
func (b *SemanticErrorBuilder) Build() CompilerError {
	return b.err
}

// BlockNotTerminated reports an unterminated basic block.
func BlockNotTerminated(blockLabel string, pos Position) CompilerError {
	return NewSemanticError(ErrorBlockNotTerminated, fmt.Sprintf("block %q does not end in a terminator", blockLabel), pos).
		WithSuggestion("add a jmp, jnz, ret, stop or revert as the block's last instruction").
		Build()
}

// VarNotDefinedError reports a use of a variable that is not guaranteed
// defined on every path reaching it.
func VarNotDefinedError(varName string, instOpcode string, pos Position) CompilerError {
	return NewSemanticError(ErrorVarNotDefined, fmt.Sprintf("variable %s used before definition in %q", varName, instOpcode), pos).
		WithLength(len(varName)).
		WithNote("every predecessor reaching this point must define the variable, or it must arrive via phi").
		Build()
}

// InvokeArityMismatchError reports an invoke whose operand or output count
// disagrees with the callee's declared signature.
func InvokeArityMismatchError(calleeName, kind string, expected, got int, pos Position) CompilerError {
	return NewSemanticError(ErrorInvokeArityMismatch,
		fmt.Sprintf("invoke of %s: %s arity mismatch, expected %d got %d", calleeName, kind, expected, got), pos).
		WithHelp("invoke's operand count must match the callee's parameter count, and its output count the callee's NumReturns").
		Build()
}

// InconsistentReturnArityError reports two `ret`s in one function returning
// different numbers of values.
func InconsistentReturnArityError(functionName string, first, second int, pos Position) CompilerError {
	return NewSemanticError(ErrorInconsistentReturnArity,
		fmt.Sprintf("function %s: inconsistent ret arity (%d vs %d)", functionName, first, second), pos).
		WithNote("every `ret` in a function must return the same number of values").
		Build()
}

// DanglingLabelError reports a reference to a block label that does not
// exist in the function.
func DanglingLabelError(label, instOpcode string, pos Position) CompilerError {
	return NewSemanticError(ErrorDanglingLabel, fmt.Sprintf("reference to undefined label %q in %q", label, instOpcode), pos).
		Build()
}

// ParseSyntaxError wraps a raw grammar parse failure with Venom's error code.
func ParseSyntaxError(message string, pos Position) CompilerError {
	return NewSemanticError(ErrorParseSyntax, message, pos).Build()
}

// StackTooDeepError reports a scheduling failure: no DUP/SWAP/spill plan
// keeps the required value within reach of the EVM's 16-deep stack window.
func StackTooDeepError(functionName string, pos Position) CompilerError {
	return NewSemanticError(ErrorStackTooDeep, fmt.Sprintf("function %s: stack too deep", functionName), pos).
		WithSuggestion("reduce live ranges, or let the scheduler's memory-spill fallback handle this value").
		Build()
}
