package semantic

import (
	"dcc/internal/ast"
	"dcc/internal/ctx"
	"dcc/internal/diag"
	"dcc/internal/types"
)

// methodCtx threads the information a Return needs that isn't reachable
// through the scope stack alone; Break/Continue resolve through the
// context's loop stack instead.
type methodCtx struct {
	returnType types.Type
	sawReturn  bool
}

// Analyze is the validation pass: it re-walks the already-scoped tree,
// enforcing every invariant in §4.2, and allocates a result identifier on
// every expression whose value a parent will consume. It returns whether
// the program is free of diagnostics.
func Analyze(c *ctx.Context, prog *ast.Program) bool {
	c.Scopes.Push(prog.Scope)

	mainFound := false
	for _, m := range prog.Methods {
		if isMainSignature(m) {
			mainFound = true
		}
		analyzeMethod(c, m)
	}
	for _, cls := range prog.Classes {
		c.Scopes.Push(cls.Scope)
		for _, m := range cls.Methods {
			if cls.Name == "Program" && isMainSignature(m) {
				mainFound = true
			}
			analyzeMethod(c, m)
		}
		c.Scopes.Pop()
	}

	if !mainFound {
		c.Sink.Errorf(diag.Structural, prog.File, prog.Line, prog.Column,
			"program must contain a method 'main'")
	}

	c.Scopes.Pop()
	return !c.Sink.HadErrors()
}

func isMainSignature(m *ast.MethodDecl) bool {
	return m.Name == "main" && len(m.Args) == 0 && m.ReturnType == types.Void
}

func analyzeMethod(c *ctx.Context, m *ast.MethodDecl) {
	c.Scopes.Push(m.Scope)
	mc := &methodCtx{returnType: m.ReturnType}
	if m.Body != nil {
		analyzeBlock(c, m.Body, mc)
		if m.ReturnType == types.Void && !mc.sawReturn {
			m.Body.Stmts = append(m.Body.Stmts, &ast.Return{Header: m.Body.Header})
		}
	}
	c.Scopes.Pop()
}

func analyzeBlock(c *ctx.Context, b *ast.Block, mc *methodCtx) {
	c.Scopes.Push(b.Scope)
	for _, s := range b.Stmts {
		analyzeStmt(c, s, mc)
	}
	c.Scopes.Pop()
}

func analyzeStmt(c *ctx.Context, s ast.Stmt, mc *methodCtx) {
	switch n := s.(type) {
	case *ast.If:
		analyzeExpr(c, n.Cond)
		requireType(c, n.Cond, types.Boolean, "if condition must be boolean")
		analyzeBlock(c, n.Then, mc)
		if n.Else != nil {
			analyzeBlock(c, n.Else, mc)
		}
	case *ast.For:
		analyzeExpr(c, n.Init)
		requireType(c, n.Init, types.Integer, "for initial expression must be integer")
		analyzeExpr(c, n.End)
		requireType(c, n.End, types.Integer, "for terminal expression must be integer")
		n.EndLabel = c.NewLabel()
		n.ContinueLabel = c.NewLabel()
		c.PushLoop(ctx.LoopLabels{Kind: ctx.ForLoop, EndLabel: n.EndLabel, ContinueLabel: n.ContinueLabel})
		analyzeBlock(c, n.Body, mc)
		c.PopLoop()
	case *ast.While:
		analyzeExpr(c, n.Cond)
		requireType(c, n.Cond, types.Boolean, "while condition must be boolean")
		n.EndLabel = c.NewLabel()
		n.ContinueLabel = c.NewLabel()
		c.PushLoop(ctx.LoopLabels{Kind: ctx.WhileLoop, EndLabel: n.EndLabel, ContinueLabel: n.ContinueLabel})
		analyzeBlock(c, n.Body, mc)
		c.PopLoop()
	case *ast.DoWhile:
		n.EndLabel = c.NewLabel()
		n.ContinueLabel = c.NewLabel()
		c.PushLoop(ctx.LoopLabels{Kind: ctx.DoWhileLoop, EndLabel: n.EndLabel, ContinueLabel: n.ContinueLabel})
		analyzeBlock(c, n.Body, mc)
		c.PopLoop()
		analyzeExpr(c, n.Cond)
		requireType(c, n.Cond, types.Boolean, "do-while condition must be boolean")
	case *ast.Break:
		if loop, ok := c.CurrentLoop(); ok {
			n.Label = loop.EndLabel
		} else {
			c.Sink.Errorf(diag.Structural, n.File, n.Line, n.Column, "break outside of a loop")
		}
	case *ast.Continue:
		loop, ok := c.CurrentLoop()
		switch {
		case !ok:
			c.Sink.Errorf(diag.Structural, n.File, n.Line, n.Column, "continue outside of a loop")
		case loop.Kind != ctx.ForLoop:
			c.Sink.Errorf(diag.Structural, n.File, n.Line, n.Column, "continue is only valid inside a for loop")
		default:
			n.Label = loop.ContinueLabel
		}
	case *ast.Return:
		if n.Value != nil {
			analyzeExpr(c, n.Value)
			if mc.returnType == types.Void {
				c.Sink.Errorf(diag.TypeMismatch, n.File, n.Line, n.Column, "void method must not return a value")
			} else {
				requireType(c, n.Value, mc.returnType, "return value type does not match declared return type")
			}
		} else if mc.returnType != types.Void {
			c.Sink.Errorf(diag.TypeMismatch, n.File, n.Line, n.Column, "missing return value")
		}
		mc.sawReturn = true
	case *ast.ExprStmt:
		analyzeExpr(c, n.X)
	case *ast.Block:
		analyzeBlock(c, n, mc)
	case *ast.Goto, *ast.LabelStmt:
		// resolved at the TAC level; nothing to validate here
	}
}

func requireType(c *ctx.Context, e ast.Expr, want types.Type, msg string) {
	got := e.GetType()
	if got == types.Unknown || got == want {
		return
	}
	h := e.Pos()
	c.Sink.Errorf(diag.TypeMismatch, h.File, h.Line, h.Column, "%s (got %s)", msg, got)
}

func isArrayName(e ast.Expr) bool {
	loc, ok := e.(*ast.Location)
	return ok && loc.Index == nil && loc.IsArray
}

func analyzeExpr(c *ctx.Context, e ast.Expr) {
	switch n := e.(type) {
	case *ast.IntLit:
		n.ResultID = c.NewTemp()
	case *ast.DoubleLit:
		n.ResultID = c.NewTemp()
	case *ast.BoolLit:
		n.ResultID = c.NewTemp()
	case *ast.CharLit:
		n.ResultID = c.NewTemp()
	case *ast.StringLit:
		n.ResultID = c.NewTemp()
	case *ast.Identifier:
		if _, ok := c.Scopes.Lookup(n.Name); !ok {
			c.Sink.Errorf(diag.Resolution, n.File, n.Line, n.Column, "undeclared identifier %q", n.Name)
		}
		n.ResultID = c.NewTemp()
	case *ast.Location:
		if n.Index != nil {
			analyzeExpr(c, n.Index)
			requireType(c, n.Index, types.Integer, "array index must be integer")
			sym, ok := c.Scopes.Lookup(n.Name)
			if lit, litOK := n.Index.(*ast.IntLit); litOK && ok {
				if lit.Value < 0 || lit.Value >= sym.Count {
					c.Sink.Errorf(diag.ArrayMisuse, n.File, n.Line, n.Column,
						"array '%s' index out of range. Max value: %d but given %d", n.Name, sym.Count, lit.Value)
				}
			}
		}
		if _, ok := c.Scopes.Lookup(n.Name); !ok {
			c.Sink.Errorf(diag.Resolution, n.File, n.Line, n.Column, "undeclared identifier %q", n.Name)
		}
		n.ResultID = c.NewTemp()
	case *ast.BinaryExpr:
		analyzeExpr(c, n.LHS)
		analyzeExpr(c, n.RHS)
		if isArrayName(n.LHS) || isArrayName(n.RHS) {
			c.Sink.Errorf(diag.ArrayMisuse, n.File, n.Line, n.Column, "array name used in arithmetic expression")
		} else {
			lt, rt := n.LHS.GetType(), n.RHS.GetType()
			if lt != types.Unknown && rt != types.Unknown && (lt != rt || !lt.IsNumeric()) {
				c.Sink.Errorf(diag.TypeMismatch, n.File, n.Line, n.Column,
					"operands of %q must be matching numeric types (got %s, %s)", n.Op, lt, rt)
			}
		}
		n.ResultID = c.NewTemp()
	case *ast.BooleanExpr:
		if n.LHS != nil {
			analyzeExpr(c, n.LHS)
		}
		analyzeExpr(c, n.RHS)
		switch n.Op {
		case types.And, types.Or:
			requireType(c, n.RHS, types.Boolean, "operand must be boolean")
			if n.LHS != nil {
				requireType(c, n.LHS, types.Boolean, "operand must be boolean")
			}
		case types.Not:
			requireType(c, n.RHS, types.Boolean, "operand of '!' must be boolean")
		default: // relational
			if n.LHS != nil {
				lt, rt := n.LHS.GetType(), n.RHS.GetType()
				if lt != types.Unknown && rt != types.Unknown && lt != rt {
					c.Sink.Errorf(diag.TypeMismatch, n.File, n.Line, n.Column,
						"operands of %q must have the same type (got %s, %s)", n.Op, lt, rt)
				}
			}
		}
		n.ResultID = c.NewTemp()
	case *ast.AssignExpr:
		n.LHS.UsedAsWrite = true
		analyzeExpr(c, n.LHS)
		analyzeExpr(c, n.RHS)
		if isArrayName(n.LHS) {
			c.Sink.Errorf(diag.ArrayMisuse, n.File, n.Line, n.Column, "assignment target must not be an array name")
		} else {
			lt, rt := n.LHS.GetType(), n.RHS.GetType()
			if lt != types.Unknown && rt != types.Unknown && lt != rt {
				c.Sink.Errorf(diag.TypeMismatch, n.File, n.Line, n.Column,
					"assignment type mismatch (lhs %s, rhs %s)", lt, rt)
			}
		}
		n.ResultID = c.NewTemp()
	case *ast.MethodCall:
		for _, a := range n.Args {
			analyzeExpr(c, a)
		}
		if n.External {
			if n.Callee == "" {
				c.Sink.Errorf(diag.Structural, n.File, n.Line, n.Column, "external method call must name a callee")
			}
		} else if sym, ok := c.Scopes.LookupMethod(n.Callee); !ok {
			c.Sink.Errorf(diag.Resolution, n.File, n.Line, n.Column, "call to undeclared method %q", n.Callee)
		} else if len(sym.Args) != len(n.Args) {
			c.Sink.Errorf(diag.TypeMismatch, n.File, n.Line, n.Column,
				"method %q expects %d argument(s), got %d", n.Callee, len(sym.Args), len(n.Args))
		} else {
			for i, a := range n.Args {
				got := a.GetType()
				if got != types.Unknown && got != sym.Args[i].Type {
					c.Sink.Errorf(diag.TypeMismatch, n.File, n.Line, n.Column,
						"argument %d of %q: expected %s, got %s", i+1, n.Callee, sym.Args[i].Type, got)
				}
			}
		}
		n.ResultID = c.NewTemp()
	}
}
