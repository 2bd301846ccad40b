package semantic

import (
	"dcc/internal/ast"
)

const slotSize = 8 // bytes per stack/global slot; codegen derives its own 8- or 4-byte slots and does not read these offsets

// Allocate assigns byte offsets to every declared variable and records each
// method's frame size. In the pipeline it runs after Analyze succeeds, so
// the scopes Analyze validated (and the implicit-Void-return synthesis it
// performs) are final; where a method or block has no scope attached, the
// declarations still get their offsets and no symbol is updated.
func Allocate(prog *ast.Program) {
	addr := int64(0)
	for _, f := range prog.Fields {
		f.Addr = addr
		count := f.ArraySize
		if count < 1 {
			count = 1
		}
		addr += slotSize * count
	}
	for _, m := range prog.Methods {
		allocateMethod(m)
	}
	for _, cls := range prog.Classes {
		caddr := int64(0)
		for _, f := range cls.Fields {
			f.Addr = caddr
			count := f.ArraySize
			if count < 1 {
				count = 1
			}
			caddr += slotSize * count
		}
		for _, m := range cls.Methods {
			allocateMethod(m)
		}
	}
}

func allocateMethod(m *ast.MethodDecl) {
	addr := int64(0)
	for _, a := range m.Args {
		a.Addrs = make(map[string]int64, len(a.Names))
		for _, name := range a.Names {
			a.Addrs[name] = addr
			if sym, ok := m.Scope.Get(name); ok {
				sym.Addr = addr
			}
			addr += slotSize
		}
	}
	if m.Body != nil {
		addr = allocateBlock(m.Body, addr)
	}
	m.FrameSize = addr
}

func allocateBlock(b *ast.Block, addr int64) int64 {
	for _, d := range b.Decls {
		d.Addrs = make(map[string]int64, len(d.Names))
		for _, name := range d.Names {
			d.Addrs[name] = addr
			if sym, ok := b.Scope.Get(name); ok {
				sym.Addr = addr
			}
			addr += slotSize
		}
	}
	for _, s := range b.Stmts {
		addr = allocateStmt(s, addr)
	}
	return addr
}

func allocateStmt(s ast.Stmt, addr int64) int64 {
	switch n := s.(type) {
	case *ast.If:
		addr = allocateBlock(n.Then, addr)
		if n.Else != nil {
			addr = allocateBlock(n.Else, addr)
		}
	case *ast.For:
		addr = allocateBlock(n.Body, addr)
	case *ast.While:
		addr = allocateBlock(n.Body, addr)
	case *ast.DoWhile:
		addr = allocateBlock(n.Body, addr)
	case *ast.Block:
		addr = allocateBlock(n, addr)
	}
	return addr
}
