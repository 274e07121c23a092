package grammar

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// VenomLexer tokenizes the round-trippable textual IR (spec §C2): SSA
// names prefixed with '%', block/function labels prefixed with '@',
// abstract memory locations written "<memloc#N:kind,size>", hex/decimal
// integer literals, and the usual block of punctuation a flat
// instruction-list syntax needs.
var VenomLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Comment", `;[^\n]*`, nil},
		{"MemLoc", `<memloc#-?[0-9]+:[a-z_0-9]+,[0-9]+>`, nil},
		{"Var", `%[a-zA-Z_][a-zA-Z0-9_.]*(:[0-9]+)?`, nil},
		{"Label", `@[a-zA-Z_][a-zA-Z0-9_.]*`, nil},
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_]*`, nil},
		{"Integer", `0x[0-9a-fA-F]+|[0-9]+`, nil},
		{"Punctuation", `[{}()\[\]:,=\->]+`, nil},
		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})
