package grammar

// Package-level grammar for Venom's textual IR (spec §C2). A Program is a
// flat sequence of top-level declarations; round-tripping a lowered
// context through Print and ParseString must reproduce an equivalent tree,
// which is exercised in grammar_test.go.

type Program struct {
	Contract *string      `[ "contract" @Ident ]`
	Elements []*TopLevel  `@@*`
}

type TopLevel struct {
	Const   *ConstDecl   `  @@`
	Data    *DataSection `| @@`
	Func    *FuncDecl    `| @@`
}

type ConstDecl struct {
	Name  string `"const" @Ident "="`
	Value string `@Integer`
}

type DataSection struct {
	Label string `"data" @Label "{"`
	Bytes string `[ @Integer ] "}"`
}

type FuncDecl struct {
	External bool          `[ @"external" ]`
	Create   bool          `[ @"create" ]`
	Name     string        `"function" @Label "("`
	Params   []*ParamDecl  `[ @@ { "," @@ } ] ")"`
	Returns  int           `[ "->" @Integer ]`
	Blocks   []*BlockDecl  `"{" @@+ "}"`
}

type ParamDecl struct {
	Name string `@Ident ":"`
	Type string `@Ident`
}

type BlockDecl struct {
	Label        string   `@Label ":"`
	Instructions []*InstDecl `@@+`
}

type InstDecl struct {
	Outputs []*OutputDecl `[ @@ { "," @@ } "=" ]`
	Phi     *PhiInst      `  @@`
	Plain   *PlainInst    `| @@`
}

type OutputDecl struct {
	Name string `@Var`
}

type PhiInst struct {
	Opcode string    `"phi"`
	Args   []*PhiArg `@@ { "," @@ }`
}

type PhiArg struct {
	Pred  string   `@Label`
	Value *Operand `@@`
}

type PlainInst struct {
	Volatile bool       `[ @"volatile" ]`
	Opcode   string     `@Ident`
	Args     []*Operand `[ @@ { "," @@ } ]`
	Callee   *string    `[ "[" @Label "]" ]`
}

type Operand struct {
	Var    *string `  @Var`
	Label  *string `| @Label`
	MemLoc *string `| @MemLoc`
	Number *string `| @Integer`
}
