// Package ctx carries the mutable traversal state threaded through
// semantic analysis and TAC lowering: the scope stack, the loop-label
// stack that resolves Break/Continue, the label and temporary counters, the
// intern table for string literals, the label counter for double literals,
// and the diagnostic sink.
package ctx

import (
	"fmt"

	"dcc/internal/diag"
	"dcc/internal/symtab"
)

// LoopKind distinguishes the three loop statements for Continue's stricter
// validity rule (valid only inside a For, unlike Break).
type LoopKind int

const (
	ForLoop LoopKind = iota
	WhileLoop
	DoWhileLoop
)

// LoopLabels is the pair of labels a Break/Continue resolves against. It is
// cloned by value onto the Break/Continue node during analysis rather than
// keeping a back-pointer to the enclosing loop.
type LoopLabels struct {
	Kind          LoopKind
	EndLabel      string
	ContinueLabel string
}

// Context is passed by pointer through every analysis and lowering pass.
type Context struct {
	Scopes *symtab.Stack
	Sink   *diag.Sink

	loopStack []LoopLabels

	labelCounter  int
	tempCounter   int
	doubleCounter int
	stringLiteral map[string]string // literal value -> .LC<n> name
	stringOrder   []string

	// SourceFile names the current compilation unit; EnsureStandardStrings
	// interns it, and the emitter writes it under the ".DCFFILE" label.
	SourceFile string
}

// New returns a fresh Context for one compilation unit.
func New(sourceFile string) *Context {
	return &Context{
		Scopes:        symtab.NewStack(),
		Sink:          diag.NewSink(),
		stringLiteral: make(map[string]string),
		SourceFile:    sourceFile,
	}
}

// PushLoop enters a loop, recording the labels Break/Continue inside it
// must target.
func (c *Context) PushLoop(labels LoopLabels) { c.loopStack = append(c.loopStack, labels) }

// PopLoop leaves the innermost loop.
func (c *Context) PopLoop() {
	if len(c.loopStack) == 0 {
		return
	}
	c.loopStack = c.loopStack[:len(c.loopStack)-1]
}

// CurrentLoop returns the labels of the innermost enclosing loop, the
// second value false if Break/Continue appears outside any loop (a
// Structural diagnostic the caller should report).
func (c *Context) CurrentLoop() (LoopLabels, bool) {
	if len(c.loopStack) == 0 {
		return LoopLabels{}, false
	}
	return c.loopStack[len(c.loopStack)-1], true
}

// NewLabel returns the next ".L<n>" control-flow label.
func (c *Context) NewLabel() string {
	c.labelCounter++
	return fmt.Sprintf(".L%d", c.labelCounter)
}

// NewTemp returns the next "_tmp<n>" compiler temporary name, used as a TAC
// destination when no surface identifier exists.
func (c *Context) NewTemp() string {
	c.tempCounter++
	return fmt.Sprintf("_tmp%d", c.tempCounter)
}

// InternString returns the ".LC<n>" label for value, allocating a fresh one
// the first time value is seen so repeated literals share storage.
func (c *Context) InternString(value string) string {
	if name, ok := c.stringLiteral[value]; ok {
		return name
	}
	name := fmt.Sprintf(".LC%d", len(c.stringOrder))
	c.stringLiteral[value] = name
	c.stringOrder = append(c.stringOrder, value)
	return name
}

// NewDoubleLabel returns the next ".LCD<n>" double-constant label. Doubles
// get their own keyspace, separate from InternString's ".LC<n>" string
// table, so a double's dedup key never ends up emitted as a .string.
func (c *Context) NewDoubleLabel() string {
	name := fmt.Sprintf(".LCD%d", c.doubleCounter)
	c.doubleCounter++
	return name
}

// StringLiteral is one interned string constant in declaration order.
type StringLiteral struct {
	Label string
	Value string
}

// StringLiterals returns every interned string in allocation order, used by
// the emitter to produce .string directives. The two standing literals, the
// array bounds-check message and the source file name (SourceFile), are
// interned by
// EnsureStandardStrings so they always appear even when no user code
// triggers them directly.
func (c *Context) StringLiterals() []StringLiteral {
	out := make([]StringLiteral, 0, len(c.stringOrder))
	for _, value := range c.stringOrder {
		out = append(out, StringLiteral{Label: c.stringLiteral[value], Value: value})
	}
	return out
}

// BoundsCheckMessage is the text printed by a failed array-bounds check.
const BoundsCheckMessage = "Decaf runtime error: array subscript out of bounds\n"

// EnsureStandardStrings interns the two strings every generated program
// needs regardless of whether user code references them: the bounds-check
// message and the source file name.
func (c *Context) EnsureStandardStrings() (boundsMsgLabel, fileLabel string) {
	return c.InternString(BoundsCheckMessage), c.InternString(c.SourceFile)
}
