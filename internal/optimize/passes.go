package optimize

import (
	"dcc/internal/tac"
	"dcc/internal/types"
)

// Mask selects which intra-block passes Optimize applies and in what mix.
// CopyProp's and DeadCodeElim's names are deliberately distinct bits from
// the constant-folding bit even though the original source's single
// constantPropagation method performs folding and propagation together —
// see DESIGN.md for how the two-named, one-method source maps onto this
// one-bit ConstantFolding.
type Mask uint8

const (
	ConstantFolding Mask = 1 << iota
	AlgebraicSimp
	CSE
	CopyProp
	DeadCodeElim
	GlobalCSE
)

// All is every intra-block pass, applied in the fixed order below.
const All = ConstantFolding | AlgebraicSimp | CSE | CopyProp | DeadCodeElim

// Optimize applies the requested passes to every block, in the order the
// spec's pass table lists them, once each (passes are idempotent; callers
// wanting a fixpoint re-invoke Optimize).
func Optimize(blocks []*Block, mask Mask) {
	for _, b := range blocks {
		if mask&ConstantFolding != 0 {
			constantPropagation(b.Stmts)
		}
		if mask&AlgebraicSimp != 0 {
			algebraicSimplification(b.Stmts)
		}
		if mask&CSE != 0 {
			localCSE(b.Stmts)
		}
		if mask&CopyProp != 0 {
			copyPropagation(b.Stmts)
		}
		if mask&DeadCodeElim != 0 {
			deadCodeElimination(b.Stmts)
		}
	}
}

func movOf(src, dst tac.Arg) tac.Stmt { return tac.Stmt{Op: types.Mov, Src0: src, Dst: dst} }

func resolveIntConst(a tac.Arg, consts map[string]int64) (int64, bool) {
	if a.Kind == tac.Literal && a.Type == types.Integer {
		return a.IntVal, true
	}
	if a.Kind == tac.Identifier {
		v, ok := consts[a.Name]
		return v, ok
	}
	return 0, false
}

func evalArith(op types.Opcode, a, b int64) int64 {
	switch op {
	case types.OpAdd:
		return a + b
	case types.OpSub:
		return a - b
	case types.OpMul:
		return a * b
	case types.OpDiv:
		if b == 0 {
			return 0
		}
		return a / b
	case types.OpMod:
		if b == 0 {
			return 0
		}
		return a % b
	}
	return 0
}

// constantPropagation folds and propagates integer constants together, the
// single pass the original source's constantPropagation method performs
// (see DESIGN.md for why this maps onto one mask bit, not two).
func constantPropagation(stmts []tac.Stmt) {
	consts := make(map[string]int64)
	for i := range stmts {
		s := &stmts[i]
		switch {
		case s.Op == types.Mov:
			// Tracks the destination's known value for later folds without
			// rewriting this Mov itself — a plain copy is left as a copy
			// (copyPropagation's job to chase), so `Mov t2→x` stays `Mov
			// t2→x` even once t2 is known to hold a constant.
			if v, ok := resolveIntConst(s.Src0, consts); ok {
				if s.Dst.Kind == tac.Identifier {
					consts[s.Dst.Name] = v
				}
			} else if s.Dst.Kind == tac.Identifier {
				delete(consts, s.Dst.Name)
			}
		case s.Op.IsBinaryArith():
			a, aok := resolveIntConst(s.Src0, consts)
			b, bok := resolveIntConst(s.Src1, consts)
			if aok && bok {
				v := evalArith(s.Op, a, b)
				*s = movOf(tac.IntLiteral(v), s.Dst)
				if s.Dst.Kind == tac.Identifier {
					consts[s.Dst.Name] = v
				}
			} else if s.Dst.Kind == tac.Identifier {
				delete(consts, s.Dst.Name)
			}
		default:
			if s.Dst.Kind == tac.Identifier {
				delete(consts, s.Dst.Name)
			}
		}
	}
}

// algebraicSimplification rewrites operations against a neutral or
// absorbing element into a plain Mov. There is deliberately no `0 - a`
// rule: the original never implements one (a TODO left as-is), and this
// mirrors that.
func algebraicSimplification(stmts []tac.Stmt) {
	for i := range stmts {
		s := &stmts[i]
		switch s.Op {
		case types.OpAdd:
			if s.Src1.IsIntLiteral(0) {
				*s = movOf(s.Src0, s.Dst)
			} else if s.Src0.IsIntLiteral(0) {
				*s = movOf(s.Src1, s.Dst)
			}
		case types.OpSub:
			if s.Src1.IsIntLiteral(0) {
				*s = movOf(s.Src0, s.Dst)
			}
		case types.OpMul:
			if s.Src1.IsIntLiteral(1) {
				*s = movOf(s.Src0, s.Dst)
			} else if s.Src0.IsIntLiteral(1) {
				*s = movOf(s.Src1, s.Dst)
			} else if s.Src1.IsIntLiteral(0) || s.Src0.IsIntLiteral(0) {
				*s = movOf(tac.IntLiteral(0), s.Dst)
			}
		case types.OpOr:
			if s.Src1.IsBoolLiteral(true) || s.Src0.IsBoolLiteral(true) {
				*s = movOf(tac.BoolLiteral(true), s.Dst)
			}
		case types.OpAnd:
			if s.Src1.IsBoolLiteral(false) || s.Src0.IsBoolLiteral(false) {
				*s = movOf(tac.BoolLiteral(false), s.Dst)
			}
		}
	}
}

// valueNumbers assigns a monotonically increasing number to each distinct
// value seen, generation-tracked per identifier name so that a later
// redefinition of the same name gets a fresh number instead of reusing the
// stale one.
type valueNumbers struct {
	next  int
	gen   map[string]int
	table map[string]int
}

func newValueNumbers() *valueNumbers {
	return &valueNumbers{gen: make(map[string]int), table: make(map[string]int)}
}

func (v *valueNumbers) of(a tac.Arg) int {
	var key string
	switch a.Kind {
	case tac.Identifier:
		key = "id:" + a.Name + "#" + itoa(v.gen[a.Name])
	case tac.Literal:
		key = "lit:" + a.String()
	default:
		return -1
	}
	if vn, ok := v.table[key]; ok {
		return vn
	}
	v.next++
	v.table[key] = v.next
	return v.next
}

func (v *valueNumbers) invalidate(name string) { v.gen[name]++ }

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	neg := n < 0
	if neg {
		n = -n
	}
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

type exprKey struct {
	lvn, rvn int
	op       types.Opcode
}

// localCSE value-numbers operands within the block and, when an identical
// (vn_lhs, opcode, vn_rhs) key recurs and the prior destination was a
// compiler temporary, rewrites the repeat into a Mov of that temporary.
func localCSE(stmts []tac.Stmt) {
	vn := newValueNumbers()
	seen := make(map[exprKey]string)
	for i := range stmts {
		s := &stmts[i]
		isExpr := s.Op.IsBinaryArith() || s.Op.IsLogic() || s.Op.IsComparison()
		if isExpr {
			key := exprKey{lvn: vn.of(s.Src0), rvn: vn.of(s.Src1), op: s.Op}
			if prior, ok := seen[key]; ok {
				*s = movOf(tac.Ident(prior, false), s.Dst)
			} else if s.Dst.Kind == tac.Identifier && s.Dst.IsTemp() {
				seen[key] = s.Dst.Name
			}
		}
		if s.Dst.Kind == tac.Identifier {
			vn.invalidate(s.Dst.Name)
		}
	}
}

// copyPropagation substitutes a temporary's mapped source variable at every
// later use, invalidating the mapping when that source variable is itself
// overwritten.
func copyPropagation(stmts []tac.Stmt) {
	tempToVar := make(map[string]string)
	for i := range stmts {
		s := &stmts[i]
		if s.Src0.Kind == tac.Identifier {
			if v, ok := tempToVar[s.Src0.Name]; ok {
				s.Src0 = tac.Ident(v, s.Src0.Global)
			}
		}
		if s.Src1.Kind == tac.Identifier {
			if v, ok := tempToVar[s.Src1.Name]; ok {
				s.Src1 = tac.Ident(v, s.Src1.Global)
			}
		}
		if s.Op == types.Mov && s.Dst.Kind == tac.Identifier && s.Dst.IsTemp() && s.Src0.Kind == tac.Identifier {
			tempToVar[s.Dst.Name] = s.Src0.Name
			continue
		}
		if s.Dst.Kind == tac.Identifier && !s.Dst.IsTemp() {
			for t, v := range tempToVar {
				if v == s.Dst.Name {
					delete(tempToVar, t)
				}
			}
		}
	}
}

// deadCodeElimination reverse-scans the block and neutralizes a Mov into a
// temporary whose source identifier is read again later in the block. It
// does not check whether the temporary itself is read later, and a Mov whose
// source is a literal is never neutralized.
func deadCodeElimination(stmts []tac.Stmt) {
	needed := make(map[string]bool)
	for i := len(stmts) - 1; i >= 0; i-- {
		s := &stmts[i]
		if s.Op == types.Mov && s.Dst.Kind == tac.Identifier && s.Dst.IsTemp() &&
			s.Src0.Kind == tac.Identifier && needed[s.Src0.Name] {
			*s = tac.Stmt{Op: types.Noop}
			continue
		}
		if s.Src0.Kind == tac.Identifier {
			needed[s.Src0.Name] = true
		}
		if s.Src1.Kind == tac.Identifier {
			needed[s.Src1.Name] = true
		}
	}
}

// Definitions returns the set of identifier names assigned within a block.
type Definitions map[string]bool

// GlobalCSEDefinitions is the global-CSE hook: it computes each block's
// definition set across a function's CFG root but performs no rewrite,
// exactly the source's current contract (a future pass would consume
// these to rewrite cross-block redundant expressions).
func GlobalCSEDefinitions(blocks []*Block) []Definitions {
	out := make([]Definitions, len(blocks))
	for i, b := range blocks {
		defs := make(Definitions)
		for _, s := range b.Stmts {
			if s.Dst.Kind == tac.Identifier {
				defs[s.Dst.Name] = true
			}
		}
		out[i] = defs
	}
	return out
}
