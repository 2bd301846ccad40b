// Package llvmdump renders a lowered TAC program as an LLVM IR module,
// purely for human inspection (`dccc compile` prints it to stderr when both
// --opt-global-cse and --verbose are set): every compiler
// temporary becomes a stack slot, every TAC opcode becomes the LLVM
// instruction closest to it, and basic blocks line up one-to-one with the
// optimizer's own partition. None of this is fed back into codegen; it
// exists so a reader can see what the optimizer did to a function in a
// format more tools understand than the TAC printer's own text.
package llvmdump

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"dcc/internal/optimize"
	"dcc/internal/tac"
	dcctypes "dcc/internal/types"
)

// Dump renders blocks grouped by function into an LLVM module's textual
// form.
func Dump(funcBlocks map[string][]*optimize.Block) string {
	m := ir.NewModule()
	for name, blocks := range funcBlocks {
		translateFunction(m, name, blocks)
	}
	return m.String()
}

type translator struct {
	f       *ir.Func
	slots   map[string]*ir.InstAlloca
	blocks  map[string]*ir.Block
	entry   *ir.Block
	current *ir.Block
}

func translateFunction(m *ir.Module, name string, blocks []*optimize.Block) {
	f := m.NewFunc(name, types.Void)
	t := &translator{f: f, slots: make(map[string]*ir.InstAlloca), blocks: make(map[string]*ir.Block)}

	t.entry = f.NewBlock(name + ".entry")
	for _, b := range blocks {
		t.blocks[blockName(b)] = f.NewBlock(blockName(b))
	}

	for i, b := range blocks {
		bb := t.blocks[blockName(b)]
		t.current = bb
		for _, s := range b.Stmts {
			t.translateStmt(s)
		}
		if bb.Term == nil {
			if i+1 < len(blocks) {
				bb.NewBr(t.blocks[blockName(blocks[i+1])])
			} else {
				bb.NewRet(nil)
			}
		}
	}
	if len(blocks) > 0 {
		t.entry.NewBr(t.blocks[blockName(blocks[0])])
	} else {
		t.entry.NewRet(nil)
	}
}

func blockName(b *optimize.Block) string {
	if len(b.Stmts) > 0 && b.Stmts[0].Op == dcctypes.Label {
		return b.Stmts[0].Dst.Name
	}
	return fmt.Sprintf("bb%p", b)
}

func (t *translator) slot(name string) *ir.InstAlloca {
	if s, ok := t.slots[name]; ok {
		return s
	}
	s := t.entry.NewAlloca(types.I64)
	s.SetName(name)
	t.slots[name] = s
	return s
}

func (t *translator) operand(a tac.Arg) value.Value {
	switch a.Kind {
	case tac.Literal:
		switch a.Type {
		case dcctypes.Boolean:
			if a.BoolVal {
				return constant.NewInt(types.I64, 1)
			}
			return constant.NewInt(types.I64, 0)
		case dcctypes.Character:
			return constant.NewInt(types.I64, int64(a.CharVal))
		default:
			return constant.NewInt(types.I64, a.IntVal)
		}
	case tac.Identifier:
		return t.current.NewLoad(types.I64, t.slot(a.Name))
	default:
		return constant.NewInt(types.I64, 0)
	}
}

func (t *translator) store(dst tac.Arg, v value.Value) {
	if dst.Kind != tac.Identifier {
		return
	}
	t.current.NewStore(v, t.slot(dst.Name))
}

func (t *translator) translateStmt(s tac.Stmt) {
	switch s.Op {
	case dcctypes.Label, dcctypes.FBegin, dcctypes.FEnd, dcctypes.Noop:
		return
	case dcctypes.Mov:
		t.store(s.Dst, t.operand(s.Src0))
	case dcctypes.OpAdd:
		t.store(s.Dst, t.current.NewAdd(t.operand(s.Src0), t.operand(s.Src1)))
	case dcctypes.OpSub:
		t.store(s.Dst, t.current.NewSub(t.operand(s.Src0), t.operand(s.Src1)))
	case dcctypes.OpMul:
		t.store(s.Dst, t.current.NewMul(t.operand(s.Src0), t.operand(s.Src1)))
	case dcctypes.OpDiv:
		t.store(s.Dst, t.current.NewSDiv(t.operand(s.Src0), t.operand(s.Src1)))
	case dcctypes.OpMod:
		t.store(s.Dst, t.current.NewSRem(t.operand(s.Src0), t.operand(s.Src1)))
	case dcctypes.OpAnd:
		t.store(s.Dst, t.current.NewAnd(t.operand(s.Src0), t.operand(s.Src1)))
	case dcctypes.OpOr:
		t.store(s.Dst, t.current.NewOr(t.operand(s.Src0), t.operand(s.Src1)))
	case dcctypes.OpNot:
		one := constant.NewInt(types.I64, 1)
		t.store(s.Dst, t.current.NewXor(t.operand(s.Src0), one))
	case dcctypes.OpEq, dcctypes.OpNe, dcctypes.OpLt, dcctypes.OpLe, dcctypes.OpGt, dcctypes.OpGe:
		cmp := t.current.NewICmp(predFor(s.Op), t.operand(s.Src0), t.operand(s.Src1))
		t.store(s.Dst, t.current.NewZExt(cmp, types.I64))
	case dcctypes.Return:
		if s.Src0.Kind != tac.Unused {
			t.current.NewRet(t.operand(s.Src0))
		} else {
			t.current.NewRet(nil)
		}
	case dcctypes.Jump:
		if target, ok := t.blocks[s.Dst.Name]; ok {
			t.current.NewBr(target)
		}
	case dcctypes.IfZ, dcctypes.IfNZ:
		cond := t.current.NewICmp(ir.IntNE, t.operand(s.Src0), constant.NewInt(types.I64, 0))
		target, ok := t.blocks[s.Dst.Name]
		if !ok {
			return
		}
		fallthroughBlock := t.f.NewBlock("")
		if s.Op == dcctypes.IfZ {
			t.current.NewCondBr(cond, fallthroughBlock, target)
		} else {
			t.current.NewCondBr(cond, target, fallthroughBlock)
		}
		t.current = fallthroughBlock
	case dcctypes.Call:
		// Calls are not rendered: nothing is emitted for them; this dump
		// is for reading block shape and data flow, not for a faithful
		// call graph.
	}
}

func predFor(op dcctypes.Opcode) ir.IntPred {
	switch op {
	case dcctypes.OpEq:
		return ir.IntEQ
	case dcctypes.OpNe:
		return ir.IntNE
	case dcctypes.OpLt:
		return ir.IntSLT
	case dcctypes.OpLe:
		return ir.IntSLE
	case dcctypes.OpGt:
		return ir.IntSGT
	case dcctypes.OpGe:
		return ir.IntSGE
	}
	return ir.IntEQ
}
