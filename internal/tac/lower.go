package tac

import (
	"dcc/internal/ast"
	"dcc/internal/ctx"
	"dcc/internal/types"
)

// Lower runs the single lowering visitor over an analyzed, allocated
// program and returns the flat TAC statement sequence plus the interned
// string/double constants gathered along the way.
func Lower(c *ctx.Context, prog *ast.Program) *Program {
	l := &lowerer{c: c}
	for _, f := range prog.Fields {
		l.emit(Stmt{Op: types.GlobalOp, Dst: Ident(f.Name, true), Info: fieldBytes(f)})
	}
	for _, cls := range prog.Classes {
		for _, f := range cls.Fields {
			l.emit(Stmt{Op: types.GlobalOp, Dst: Ident(f.Name, true), Info: fieldBytes(f)})
		}
		for _, m := range cls.Methods {
			l.lowerMethod(m)
		}
	}
	for _, m := range prog.Methods {
		l.lowerMethod(m)
	}

	boundsLabel, fileLabel := c.EnsureStandardStrings()
	_ = boundsLabel
	_ = fileLabel
	for _, sc := range c.StringLiterals() {
		l.strings = append(l.strings, StringConst{Label: sc.Label, Value: sc.Value})
	}
	return &Program{Stmts: l.stmts, Strings: l.strings, Doubles: l.doubles}
}

func fieldBytes(f *ast.FieldDecl) int64 {
	count := f.ArraySize
	if count < 1 {
		count = 1
	}
	return 8 * count
}

type lowerer struct {
	c       *ctx.Context
	stmts   []Stmt
	strings []StringConst
	doubles []DoubleConst

	doubleLabel map[float64]string
}

func (l *lowerer) emit(s Stmt) { l.stmts = append(l.stmts, s) }

// internDouble returns v's label, minting a fresh one from the context's
// own double keyspace the first time v is seen so repeated literals share
// storage (P7). Dedup is keyed on the value itself, not on a string routed
// through ctx.InternString, so a double never collides with or is emitted
// alongside the .string block.
func (l *lowerer) internDouble(v float64) string {
	if l.doubleLabel == nil {
		l.doubleLabel = make(map[float64]string)
	}
	if lbl, ok := l.doubleLabel[v]; ok {
		return lbl
	}
	lbl := l.c.NewDoubleLabel()
	l.doubleLabel[v] = lbl
	l.doubles = append(l.doubles, DoubleConst{Label: lbl, Value: v})
	return lbl
}

func (l *lowerer) memClassOf(name string) bool {
	if sym, ok := l.c.Scopes.Lookup(name); ok {
		return sym.Where == types.Global
	}
	return false
}

func (l *lowerer) ident(name string) Arg { return Ident(name, l.memClassOf(name)) }

func (l *lowerer) lowerMethod(m *ast.MethodDecl) {
	l.c.Scopes.Push(m.Scope)
	l.emit(Stmt{Op: types.FBegin, Src0: Label(m.Name), Info: m.FrameSize})
	for i, a := range m.Args {
		for _, name := range a.Names {
			l.emit(Stmt{Op: types.GetParam, Dst: l.ident(name), Info: int64(i)})
		}
	}
	if m.Body != nil {
		l.lowerBlock(m.Body)
	}
	l.emit(Stmt{Op: types.FEnd, Src0: Label(m.Name)})
	l.c.Scopes.Pop()
}

func (l *lowerer) lowerBlock(b *ast.Block) {
	l.c.Scopes.Push(b.Scope)
	for _, s := range b.Stmts {
		l.lowerStmt(s)
	}
	l.c.Scopes.Pop()
}

func (l *lowerer) lowerStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.If:
		l.lowerIf(n)
	case *ast.For:
		l.lowerFor(n)
	case *ast.While:
		l.lowerWhile(n)
	case *ast.DoWhile:
		l.lowerDoWhile(n)
	case *ast.Break:
		l.emit(Stmt{Op: types.Jump, Dst: Label(n.Label)})
	case *ast.Continue:
		l.emit(Stmt{Op: types.Jump, Dst: Label(n.Label)})
	case *ast.Return:
		if n.Value != nil {
			v := l.lowerExpr(n.Value)
			l.emit(Stmt{Op: types.Return, Src0: v})
		} else {
			l.emit(Stmt{Op: types.Return})
		}
	case *ast.Goto:
		l.emit(Stmt{Op: types.Jump, Dst: Label(n.Label)})
	case *ast.LabelStmt:
		l.emit(Stmt{Op: types.Label, Dst: Label(n.Name)})
	case *ast.ExprStmt:
		l.lowerExpr(n.X)
	case *ast.Block:
		l.lowerBlock(n)
	}
}

// lowerCond lowers a boolean expression used in `if`/`while` position,
// short-circuiting And/Or per the contract in §4.3: And branches IfZ
// against falseLabel as soon as a false operand is known; Or branches IfNZ
// against trueLabel as soon as a true operand is known, falling through to
// a final IfZ of the right operand. Plain (non-short-circuit) conditions
// lower to one evaluation and a single IfZ against falseLabel.
func (l *lowerer) lowerCond(e ast.Expr, falseLabel string) {
	if be, ok := e.(*ast.BooleanExpr); ok {
		switch be.Op {
		case types.And:
			trueLabel := l.c.NewLabel()
			left := l.lowerExpr(be.LHS)
			l.emit(Stmt{Op: types.IfZ, Src0: left, Dst: Label(falseLabel)})
			right := l.lowerExpr(be.RHS)
			l.emit(Stmt{Op: types.IfZ, Src0: right, Dst: Label(falseLabel)})
			l.emit(Stmt{Op: types.Label, Dst: Label(trueLabel)})
			return
		case types.Or:
			trueLabel := l.c.NewLabel()
			left := l.lowerExpr(be.LHS)
			l.emit(Stmt{Op: types.IfNZ, Src0: left, Dst: Label(trueLabel)})
			right := l.lowerExpr(be.RHS)
			l.emit(Stmt{Op: types.IfZ, Src0: right, Dst: Label(falseLabel)})
			l.emit(Stmt{Op: types.Label, Dst: Label(trueLabel)})
			return
		}
	}
	v := l.lowerExpr(e)
	l.emit(Stmt{Op: types.IfZ, Src0: v, Dst: Label(falseLabel)})
}

func (l *lowerer) lowerIf(n *ast.If) {
	falseLabel := l.c.NewLabel()
	endLabel := l.c.NewLabel()
	l.lowerCond(n.Cond, falseLabel)
	l.lowerBlock(n.Then)
	l.emit(Stmt{Op: types.Jump, Dst: Label(endLabel)})
	l.emit(Stmt{Op: types.Label, Dst: Label(falseLabel)})
	if n.Else != nil {
		l.lowerBlock(n.Else)
	}
	l.emit(Stmt{Op: types.Jump, Dst: Label(endLabel)})
	l.emit(Stmt{Op: types.Label, Dst: Label(endLabel)})
}

func (l *lowerer) lowerWhile(n *ast.While) {
	topLabel := l.c.NewLabel()
	l.emit(Stmt{Op: types.Label, Dst: Label(topLabel)})
	l.lowerCond(n.Cond, n.EndLabel)
	l.lowerBlock(n.Body)
	l.emit(Stmt{Op: types.Label, Dst: Label(n.ContinueLabel)})
	l.emit(Stmt{Op: types.Jump, Dst: Label(topLabel)})
	l.emit(Stmt{Op: types.Label, Dst: Label(n.EndLabel)})
}

func (l *lowerer) lowerDoWhile(n *ast.DoWhile) {
	topLabel := l.c.NewLabel()
	l.emit(Stmt{Op: types.Label, Dst: Label(topLabel)})
	l.lowerBlock(n.Body)
	l.emit(Stmt{Op: types.Label, Dst: Label(n.ContinueLabel)})
	cond := l.lowerExpr(n.Cond)
	l.emit(Stmt{Op: types.IfNZ, Src0: cond, Dst: Label(topLabel)})
	l.emit(Stmt{Op: types.Label, Dst: Label(n.EndLabel)})
}

func (l *lowerer) lowerFor(n *ast.For) {
	// The loop variable lives in the body's scope (declared there during
	// analysis), so that scope is pushed for the statement's whole lifetime
	// — harmless for Init/End, which don't reference it, and necessary for
	// the increment and every body reference to resolve it.
	l.c.Scopes.Push(n.Body.Scope)
	loopVar := l.ident(n.LoopVar)
	init := l.lowerExpr(n.Init)
	l.emit(Stmt{Op: types.Mov, Src0: init, Dst: loopVar})
	end := l.lowerExpr(n.End)
	endTmp := Ident(l.c.NewTemp(), false)
	l.emit(Stmt{Op: types.Mov, Src0: end, Dst: endTmp})

	topLabel := l.c.NewLabel()
	l.emit(Stmt{Op: types.Label, Dst: Label(topLabel)})
	diff := Ident(l.c.NewTemp(), false)
	l.emit(Stmt{Op: types.OpSub, Src0: endTmp, Src1: loopVar, Dst: diff})
	l.emit(Stmt{Op: types.IfZ, Src0: diff, Dst: Label(n.EndLabel)})
	for _, s := range n.Body.Stmts {
		l.lowerStmt(s)
	}
	l.emit(Stmt{Op: types.Label, Dst: Label(n.ContinueLabel)})
	l.emit(Stmt{Op: types.OpAdd, Src0: loopVar, Src1: IntLiteral(1), Dst: loopVar})
	l.emit(Stmt{Op: types.Jump, Dst: Label(topLabel)})
	l.emit(Stmt{Op: types.Label, Dst: Label(n.EndLabel)})
	l.c.Scopes.Pop()
}

// lowerExpr lowers e and returns the Arg a consuming parent should read the
// value from: the expression's result temp for anything that computed a
// new value, or a direct reference for bare literals/identifiers.
func (l *lowerer) lowerExpr(e ast.Expr) Arg {
	switch n := e.(type) {
	case *ast.IntLit:
		return IntLiteral(n.Value)
	case *ast.DoubleLit:
		lbl := l.internDouble(n.Value)
		return Ident(lbl, true)
	case *ast.BoolLit:
		return BoolLiteral(n.Value)
	case *ast.CharLit:
		return CharLiteral(n.Value)
	case *ast.StringLit:
		lbl := l.c.InternString(n.Value)
		return Ident(lbl, true)
	case *ast.Identifier:
		return l.ident(n.Name)
	case *ast.Location:
		return l.lowerLocation(n)
	case *ast.BinaryExpr:
		lhs := l.lowerExpr(n.LHS)
		rhs := l.lowerExpr(n.RHS)
		dst := Ident(n.ResultID, false)
		l.emit(Stmt{Op: types.BinaryOpToOpcode(n.Op), Src0: lhs, Src1: rhs, Dst: dst})
		return dst
	case *ast.BooleanExpr:
		return l.lowerBoolean(n)
	case *ast.AssignExpr:
		return l.lowerAssign(n)
	case *ast.MethodCall:
		return l.lowerCall(n)
	}
	return UnusedArg()
}

func (l *lowerer) lowerBoolean(n *ast.BooleanExpr) Arg {
	dst := Ident(n.ResultID, false)
	if n.Op == types.Not {
		rhs := l.lowerExpr(n.RHS)
		l.emit(Stmt{Op: types.OpNot, Src0: rhs, Dst: dst})
		return dst
	}
	if n.Op == types.And || n.Op == types.Or {
		// Used as a value (not directly as an `if`/`while` condition): fall
		// back to eager evaluation of both sides, matching §4.3's contract
		// that only condition *position* gets the short-circuit branch
		// shape; as a value, And/Or still compute a Boolean result.
		lhs := l.lowerExpr(n.LHS)
		rhs := l.lowerExpr(n.RHS)
		l.emit(Stmt{Op: types.BoolOpToOpcode(n.Op), Src0: lhs, Src1: rhs, Dst: dst})
		return dst
	}
	lhs := l.lowerExpr(n.LHS)
	rhs := l.lowerExpr(n.RHS)
	l.emit(Stmt{Op: types.BoolOpToOpcode(n.Op), Src0: lhs, Src1: rhs, Dst: dst})
	return dst
}

// lowerLocation handles a Location read out by value (used_as_write sites
// go through lowerAssign instead, which writes the location rather than
// loading from it).
func (l *lowerer) lowerLocation(n *ast.Location) Arg {
	if n.Index == nil {
		return l.ident(n.Name)
	}
	idx := l.lowerExpr(n.Index)
	count := l.arrayCount(n.Name)
	dst := Ident(n.ResultID, false)
	l.emit(Stmt{Op: types.Load, Src0: l.ident(n.Name), Src1: idx, Dst: dst, Info: count})
	return dst
}

func (l *lowerer) arrayCount(name string) int64 {
	if sym, ok := l.c.Scopes.Lookup(name); ok {
		return sym.Count
	}
	return 0
}

func (l *lowerer) lowerAssign(n *ast.AssignExpr) Arg {
	loc := n.LHS
	rhsVal := l.lowerExpr(n.RHS)

	var composed Arg
	switch n.Op {
	case types.IncAssign, types.DecAssign:
		cur := l.readLocationValue(loc)
		op := types.OpAdd
		if n.Op == types.DecAssign {
			op = types.OpSub
		}
		tmp := Ident(l.c.NewTemp(), false)
		l.emit(Stmt{Op: op, Src0: cur, Src1: rhsVal, Dst: tmp})
		composed = tmp
	default:
		composed = rhsVal
	}

	if loc.Index != nil {
		idx := l.lowerExpr(loc.Index)
		count := l.arrayCount(loc.Name)
		l.emit(Stmt{Op: types.Store, Src0: composed, Src1: idx, Dst: l.ident(loc.Name), Info: count})
	} else {
		l.emit(Stmt{Op: types.Mov, Src0: composed, Dst: l.ident(loc.Name)})
	}
	return composed
}

// readLocationValue re-reads a Location's current value for the `+=`/`-=`
// compound-assignment left operand, without consuming its ResultID (which
// belongs to the AssignExpr's own read-before-write evaluation, distinct
// from any plain read elsewhere of the same Location node).
func (l *lowerer) readLocationValue(loc *ast.Location) Arg {
	if loc.Index == nil {
		return l.ident(loc.Name)
	}
	idx := l.lowerExpr(loc.Index)
	count := l.arrayCount(loc.Name)
	dst := Ident(l.c.NewTemp(), false)
	l.emit(Stmt{Op: types.Load, Src0: l.ident(loc.Name), Src1: idx, Dst: dst, Info: count})
	return dst
}

func (l *lowerer) lowerCall(n *ast.MethodCall) Arg {
	for i, a := range n.Args {
		v := l.lowerExpr(a)
		l.emit(Stmt{Op: types.Param, Src0: v, Info: int64(i)})
	}
	if n.Type == types.Void {
		l.emit(Stmt{Op: types.Call, Src0: Label(n.Callee)})
		return UnusedArg()
	}
	dst := Ident(n.ResultID, false)
	l.emit(Stmt{Op: types.Call, Src0: Label(n.Callee), Dst: dst})
	return dst
}
