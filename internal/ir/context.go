package ir

// DataSection is a named blob of raw bytes appended to the assembled
// program (spec §3.1, "ordered list of data sections").
type DataSection struct {
	Label string
	Data  []byte
}

// Constant is a compile-time named integer, pre-seeded into the context
// from Settings (spec §6.1).
type Constant struct {
	Name  string
	Value *Literal
}

// DeployInfo carries constructor-time metadata: named data sections and a
// hint for where the two-pass deploy-memory sizing should place the deploy
// region (spec §6.1, §6.4).
type DeployInfo struct {
	DataSections map[string][]byte
	// CtorMemOverride holds a previously-measured deploy-region peak. No
	// package in this module reads or sets it; the pipeline performs no
	// two-pass deploy-memory sizing.
	CtorMemOverride *int
}

// Context is the top-level IR container: a mapping label -> function, the
// data sections, the constants table, the memory allocator, and the entry
// function (spec §3.1).
type Context struct {
	Contract string

	functions     []*Function
	functionByName map[string]*Function

	DataSections []*DataSection
	Constants    []*Constant

	MemAllocator *MemoryAllocator

	EntryFunction *Function

	Deploy    *DeployInfo
	DeployMem *AbstractMemLoc
}

// NewContext creates an empty context for the given contract name.
func NewContext(contract string) *Context {
	return &Context{
		Contract:       contract,
		functionByName: make(map[string]*Function),
		MemAllocator:   NewMemoryAllocator(),
	}
}

// Functions returns every function in insertion order.
func (c *Context) Functions() []*Function { return c.functions }

// GetFunction looks up a function by name.
func (c *Context) GetFunction(name string) *Function { return c.functionByName[name] }

// AddFunction registers fn with the context. The first function added
// becomes the entry function unless one is set explicitly.
func (c *Context) AddFunction(fn *Function) *Function {
	if _, exists := c.functionByName[fn.Name]; exists {
		panic("ir: duplicate function " + fn.Name)
	}
	fn.Parent = c
	c.functions = append(c.functions, fn)
	c.functionByName[fn.Name] = fn
	if c.EntryFunction == nil {
		c.EntryFunction = fn
	}
	return fn
}

// AddConstant registers a named compile-time constant.
func (c *Context) AddConstant(name string, value *Literal) {
	c.Constants = append(c.Constants, &Constant{Name: name, Value: value})
}

// AppendDataSection appends a named raw-byte data section.
func (c *Context) AppendDataSection(label string, data []byte) {
	c.DataSections = append(c.DataSections, &DataSection{Label: label, Data: data})
}
