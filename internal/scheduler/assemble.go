package scheduler

import "fmt"

// TokenKind classifies one element of the flat assembly list Schedule
// produces (spec §6.2's output contract).
type TokenKind int

const (
	// TokenMnemonic is a bare EVM opcode mnemonic ("ADD", "DUP3", "JUMPDEST").
	TokenMnemonic TokenKind = iota
	// TokenImmediate is a push's literal operand, rendered as a decimal
	// string since the final byte-width encoding is the assembler's job,
	// not this package's (spec §1's non-goal: "final byte-assembler").
	TokenImmediate
	// TokenLabel references a block's position, resolved to a PC offset by
	// the byte-assembler.
	TokenLabel
	// TokenLabelDef marks a JUMPDEST's target label.
	TokenLabelDef
	// TokenSublist nests a fully independent token stream for CREATE-family
	// init code (spec §6.2: "nested sub-list for CREATE init-code").
	TokenSublist
)

// Token is one element of the assembled instruction stream.
type Token struct {
	Kind  TokenKind
	Text  string  // mnemonic name, immediate's decimal text, or label name
	Nested []Token // populated only when Kind == TokenSublist
}

func (t Token) String() string {
	switch t.Kind {
	case TokenMnemonic:
		return t.Text
	case TokenImmediate:
		return t.Text
	case TokenLabel:
		return "@" + t.Text
	case TokenLabelDef:
		return t.Text + ":"
	case TokenSublist:
		return fmt.Sprintf("<sublist:%d tokens>", len(t.Nested))
	default:
		return "?"
	}
}

func mnemonic(name string) Token       { return Token{Kind: TokenMnemonic, Text: name} }
func immediate(value string) Token     { return Token{Kind: TokenImmediate, Text: value} }
func labelRef(name string) Token       { return Token{Kind: TokenLabel, Text: name} }
func labelDef(name string) Token       { return Token{Kind: TokenLabelDef, Text: name} }
func sublist(toks []Token) Token       { return Token{Kind: TokenSublist, Nested: toks} }

// dupToken returns the mnemonic for DUP(d+1), d being a 0-based depth (0 =
// top of stack, matching SymbolicStack.Dup's argument).
func dupToken(d int) Token {
	return mnemonic(fmt.Sprintf("DUP%d", d+1))
}

// swapToken returns the mnemonic for SWAP(d), d being a 1-based depth
// (matching SymbolicStack.Swap's argument).
func swapToken(d int) Token {
	return mnemonic(fmt.Sprintf("SWAP%d", d))
}

func popToken() Token { return mnemonic("POP") }

func pushToken(decimal string) []Token {
	return []Token{mnemonic("PUSH"), immediate(decimal)}
}
