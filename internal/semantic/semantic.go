// Package semantic implements the three analysis passes that turn a bare
// AST into one ready for lowering: type propagation, validation, and
// address allocation. Dispatch over node kind uses type switches rather
// than virtual methods, per the tagged-union redesign the AST package
// follows.
package semantic

import (
	"dcc/internal/ast"
	"dcc/internal/ctx"
	"dcc/internal/diag"
	"dcc/internal/symtab"
	"dcc/internal/types"
)

// Run executes all three passes in order and reports whether the program is
// clean enough for lowering (no diagnostics recorded).
func Run(c *ctx.Context, prog *ast.Program) bool {
	PropagateTypes(c, prog)
	Analyze(c, prog)
	if c.Sink.HadErrors() {
		return false
	}
	Allocate(prog)
	return true
}

func pos(h ast.Header) (string, int, int) { return h.File, h.Line, h.Column }

// ---- Pass 1: declare scopes + propagate types ------------------------------

// PropagateTypes builds every scope's symbol table as it descends (a
// location can only inherit its type from a symbol that is already
// registered) and fills each expression's Type bottom-up in the same walk.
func PropagateTypes(c *ctx.Context, prog *ast.Program) {
	if prog.Scope == nil {
		prog.Scope = symtab.NewTable()
	}
	for _, f := range prog.Fields {
		count := f.ArraySize
		if count < 1 {
			count = 1
		}
		if err := prog.Scope.AddVariable(f.Name, f.Type, types.Global, count, posStr(f.Header)); err != nil {
			c.Sink.Errorf(diag.Resolution, f.File, f.Line, f.Column, "%v", err)
		}
	}
	for _, m := range prog.Methods {
		if err := prog.Scope.AddMethod(m.Name, m.ReturnType, argSymbols(m.Args), posStr(m.Header)); err != nil {
			c.Sink.Errorf(diag.Resolution, m.File, m.Line, m.Column, "%v", err)
		}
	}
	for _, cls := range prog.Classes {
		declareClass(c, prog, cls)
	}
	for _, iface := range prog.Interfaces {
		declareInterface(c, prog, iface)
	}

	c.Scopes.Push(prog.Scope)
	for _, cls := range prog.Classes {
		for _, m := range cls.Methods {
			propagateMethod(c, m)
		}
	}
	for _, m := range prog.Methods {
		propagateMethod(c, m)
	}
	c.Scopes.Pop()
}

func posStr(h ast.Header) string {
	f, l, col := pos(h)
	return f + ":" + itoa(l) + ":" + itoa(col)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

func argSymbols(args []*ast.VariableDecl) []symtab.VariableSymbol {
	var out []symtab.VariableSymbol
	for _, a := range args {
		for _, name := range a.Names {
			out = append(out, symtab.VariableSymbol{Name: name, Type: a.Type, Where: types.Local, Count: 1})
		}
	}
	return out
}

func declareClass(c *ctx.Context, prog *ast.Program, cls *ast.Class) {
	if cls.Scope == nil {
		cls.Scope = symtab.NewTable()
	}
	if err := prog.Scope.AddClass(&symtab.ClassSymbol{Name: cls.Name, Extends: cls.Extends, Implements: cls.Implements}); err != nil {
		c.Sink.Errorf(diag.Resolution, cls.File, cls.Line, cls.Column, "%v", err)
	}
	for _, f := range cls.Fields {
		count := f.ArraySize
		if count < 1 {
			count = 1
		}
		if err := cls.Scope.AddVariable(f.Name, f.Type, types.Global, count, posStr(f.Header)); err != nil {
			c.Sink.Errorf(diag.Resolution, f.File, f.Line, f.Column, "%v", err)
		}
	}
	for _, m := range cls.Methods {
		if err := cls.Scope.AddMethod(m.Name, m.ReturnType, argSymbols(m.Args), posStr(m.Header)); err != nil {
			c.Sink.Errorf(diag.Resolution, m.File, m.Line, m.Column, "%v", err)
		}
		// Methods are also visible in the flat, unqualified call namespace
		// the AST's receiver-less MethodCall implies; cross-class name
		// collisions are resolved first-registration-wins and are not
		// separately diagnosed here (the class-scoped AddMethod above
		// already caught same-class duplicates).
		_ = prog.Scope.AddMethod(m.Name, m.ReturnType, argSymbols(m.Args), posStr(m.Header))
	}
}

func declareInterface(c *ctx.Context, prog *ast.Program, iface *ast.Interface) {
	if iface.Scope == nil {
		iface.Scope = symtab.NewTable()
	}
	if err := prog.Scope.AddInterface(&symtab.InterfaceSymbol{Name: iface.Name}); err != nil {
		c.Sink.Errorf(diag.Resolution, iface.File, iface.Line, iface.Column, "%v", err)
	}
	for _, m := range iface.Methods {
		if err := iface.Scope.AddMethod(m.Name, m.ReturnType, argSymbols(m.Args), posStr(m.Header)); err != nil {
			c.Sink.Errorf(diag.Resolution, m.File, m.Line, m.Column, "%v", err)
		}
	}
}

func propagateMethod(c *ctx.Context, m *ast.MethodDecl) {
	if m.Scope == nil {
		m.Scope = symtab.NewTable()
	}
	for _, a := range m.Args {
		for _, name := range a.Names {
			if err := m.Scope.AddVariable(name, a.Type, types.Local, 1, posStr(a.Header)); err != nil {
				c.Sink.Errorf(diag.Resolution, a.File, a.Line, a.Column, "%v", err)
			}
		}
	}
	c.Scopes.Push(m.Scope)
	if m.Body != nil {
		propagateBlock(c, m.Body)
	}
	c.Scopes.Pop()
}

func propagateBlock(c *ctx.Context, b *ast.Block) {
	if b.Scope == nil {
		b.Scope = symtab.NewTable()
	}
	for _, d := range b.Decls {
		for _, name := range d.Names {
			if err := b.Scope.AddVariable(name, d.Type, types.Local, 1, posStr(d.Header)); err != nil {
				c.Sink.Errorf(diag.Resolution, d.File, d.Line, d.Column, "%v", err)
			}
		}
	}
	c.Scopes.Push(b.Scope)
	for _, s := range b.Stmts {
		propagateStmt(c, s)
	}
	c.Scopes.Pop()
}

func propagateStmt(c *ctx.Context, s ast.Stmt) {
	switch n := s.(type) {
	case *ast.If:
		propagateExpr(c, n.Cond)
		propagateBlock(c, n.Then)
		if n.Else != nil {
			propagateBlock(c, n.Else)
		}
	case *ast.For:
		propagateExpr(c, n.Init)
		propagateExpr(c, n.End)
		if n.Body.Scope == nil {
			n.Body.Scope = symtab.NewTable()
		}
		if _, exists := n.Body.Scope.Get(n.LoopVar); !exists {
			_ = n.Body.Scope.AddVariable(n.LoopVar, types.Integer, types.Local, 1, posStr(n.Header))
		}
		propagateBlock(c, n.Body)
	case *ast.While:
		propagateExpr(c, n.Cond)
		propagateBlock(c, n.Body)
	case *ast.DoWhile:
		propagateBlock(c, n.Body)
		propagateExpr(c, n.Cond)
	case *ast.Return:
		if n.Value != nil {
			propagateExpr(c, n.Value)
		}
	case *ast.ExprStmt:
		propagateExpr(c, n.X)
	case *ast.Block:
		propagateBlock(c, n)
	case *ast.Break, *ast.Continue, *ast.Goto, *ast.LabelStmt:
		// no expressions, no scope of their own
	}
}

func propagateExpr(c *ctx.Context, e ast.Expr) {
	switch n := e.(type) {
	case *ast.IntLit:
		n.Type = types.Integer
	case *ast.DoubleLit:
		n.Type = types.Double
	case *ast.BoolLit:
		n.Type = types.Boolean
	case *ast.CharLit:
		n.Type = types.Character
	case *ast.StringLit:
		n.Type = types.String
	case *ast.Identifier:
		if sym, ok := c.Scopes.Lookup(n.Name); ok {
			n.Type = sym.Type
		} else {
			n.Type = types.Unknown
		}
	case *ast.Location:
		if n.Index != nil {
			propagateExpr(c, n.Index)
		}
		sym, ok := c.Scopes.Lookup(n.Name)
		if !ok {
			n.Type = types.Unknown
			return
		}
		n.Type = sym.Type
		n.IsArray = n.Index == nil && sym.Count > 1
	case *ast.BinaryExpr:
		propagateExpr(c, n.LHS)
		propagateExpr(c, n.RHS)
		lt, rt := n.LHS.GetType(), n.RHS.GetType()
		if lt == rt {
			n.Type = lt
		} else {
			n.Type = types.Unknown
		}
	case *ast.BooleanExpr:
		if n.LHS != nil {
			propagateExpr(c, n.LHS)
		}
		propagateExpr(c, n.RHS)
		n.Type = types.Boolean
	case *ast.AssignExpr:
		propagateExpr(c, n.LHS)
		propagateExpr(c, n.RHS)
		n.Type = n.LHS.GetType()
	case *ast.MethodCall:
		for _, a := range n.Args {
			propagateExpr(c, a)
		}
		if n.External {
			n.Type = types.Void
			return
		}
		if sym, ok := c.Scopes.LookupMethod(n.Callee); ok {
			n.Type = sym.ReturnType
		} else {
			n.Type = types.Unknown
		}
	}
}
