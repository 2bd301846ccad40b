package ast

import (
	"encoding/json"
	"fmt"

	"dcc/internal/types"
)

// DecodeProgram parses the JSON fixture format cmd/dccc reads: a tagged-
// union encoding of the tree above, where every expression and statement
// node carries a "kind" discriminator naming one of the concrete Go types
// in this package. There is no lexer/parser in this pipeline — fixtures are
// the only input format — so this decoder is the program's sole front door.
func DecodeProgram(data []byte) (*Program, error) {
	var raw struct {
		File       string            `json:"file"`
		Fields     []json.RawMessage `json:"fields"`
		Methods    []json.RawMessage `json:"methods"`
		Classes    []json.RawMessage `json:"classes"`
		Interfaces []json.RawMessage `json:"interfaces"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("ast: decode program: %w", err)
	}

	p := &Program{Header: Header{File: raw.File}}
	for _, m := range raw.Fields {
		f, err := decodeField(m)
		if err != nil {
			return nil, err
		}
		p.Fields = append(p.Fields, f)
	}
	for _, m := range raw.Methods {
		md, err := decodeMethod(m)
		if err != nil {
			return nil, err
		}
		p.Methods = append(p.Methods, md)
	}
	for _, m := range raw.Classes {
		c, err := decodeClass(m)
		if err != nil {
			return nil, err
		}
		p.Classes = append(p.Classes, c)
	}
	for _, m := range raw.Interfaces {
		iface, err := decodeInterface(m)
		if err != nil {
			return nil, err
		}
		p.Interfaces = append(p.Interfaces, iface)
	}
	return p, nil
}

func parseType(s string) types.Type {
	switch s {
	case "void":
		return types.Void
	case "int":
		return types.Integer
	case "bool":
		return types.Boolean
	case "char":
		return types.Character
	case "string":
		return types.String
	case "double":
		return types.Double
	case "array":
		return types.Array
	case "class":
		return types.Class
	case "interface":
		return types.Interface
	default:
		return types.Unknown
	}
}

func decodeField(data json.RawMessage) (*FieldDecl, error) {
	var f struct {
		Header
		Name      string `json:"name"`
		Type      string `json:"type"`
		ArraySize int64  `json:"arraySize"`
	}
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("ast: decode field: %w", err)
	}
	return &FieldDecl{Header: f.Header, Name: f.Name, Type: parseType(f.Type), ArraySize: f.ArraySize}, nil
}

func decodeVarDecl(data json.RawMessage) (*VariableDecl, error) {
	var v struct {
		Header
		Names []string `json:"names"`
		Type  string   `json:"type"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("ast: decode variable decl: %w", err)
	}
	return &VariableDecl{Header: v.Header, Names: v.Names, Type: parseType(v.Type), Addrs: make(map[string]int64)}, nil
}

func decodeMethod(data json.RawMessage) (*MethodDecl, error) {
	var m struct {
		Header
		Name       string            `json:"name"`
		ReturnType string            `json:"returnType"`
		Args       []json.RawMessage `json:"args"`
		Body       json.RawMessage   `json:"body"`
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("ast: decode method %q: %w", m.Name, err)
	}
	md := &MethodDecl{Header: m.Header, Name: m.Name, ReturnType: parseType(m.ReturnType)}
	for _, a := range m.Args {
		vd, err := decodeVarDecl(a)
		if err != nil {
			return nil, err
		}
		md.Args = append(md.Args, vd)
	}
	if len(m.Body) > 0 {
		body, err := decodeBlock(m.Body)
		if err != nil {
			return nil, err
		}
		md.Body = body
	}
	return md, nil
}

func decodeClass(data json.RawMessage) (*Class, error) {
	var c struct {
		Header
		Name       string            `json:"name"`
		Extends    string            `json:"extends"`
		Implements []string          `json:"implements"`
		Fields     []json.RawMessage `json:"fields"`
		Methods    []json.RawMessage `json:"methods"`
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("ast: decode class: %w", err)
	}
	cls := &Class{Header: c.Header, Name: c.Name, Extends: c.Extends, Implements: c.Implements}
	for _, m := range c.Fields {
		f, err := decodeField(m)
		if err != nil {
			return nil, err
		}
		cls.Fields = append(cls.Fields, f)
	}
	for _, m := range c.Methods {
		md, err := decodeMethod(m)
		if err != nil {
			return nil, err
		}
		cls.Methods = append(cls.Methods, md)
	}
	return cls, nil
}

func decodeInterface(data json.RawMessage) (*Interface, error) {
	var i struct {
		Header
		Name    string            `json:"name"`
		Methods []json.RawMessage `json:"methods"`
	}
	if err := json.Unmarshal(data, &i); err != nil {
		return nil, fmt.Errorf("ast: decode interface: %w", err)
	}
	iface := &Interface{Header: i.Header, Name: i.Name}
	for _, m := range i.Methods {
		md, err := decodeMethod(m)
		if err != nil {
			return nil, err
		}
		iface.Methods = append(iface.Methods, md)
	}
	return iface, nil
}

func decodeBlock(data json.RawMessage) (*Block, error) {
	var b struct {
		Header
		Decls []json.RawMessage `json:"decls"`
		Stmts []json.RawMessage `json:"stmts"`
	}
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("ast: decode block: %w", err)
	}
	blk := &Block{Header: b.Header}
	for _, d := range b.Decls {
		vd, err := decodeVarDecl(d)
		if err != nil {
			return nil, err
		}
		blk.Decls = append(blk.Decls, vd)
	}
	for _, s := range b.Stmts {
		st, err := decodeStmt(s)
		if err != nil {
			return nil, err
		}
		blk.Stmts = append(blk.Stmts, st)
	}
	return blk, nil
}

func kindOf(data json.RawMessage) (string, error) {
	var k struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(data, &k); err != nil {
		return "", fmt.Errorf("ast: decode node kind: %w", err)
	}
	if k.Kind == "" {
		return "", fmt.Errorf("ast: node missing \"kind\" field")
	}
	return k.Kind, nil
}

func decodeStmt(data json.RawMessage) (Stmt, error) {
	kind, err := kindOf(data)
	if err != nil {
		return nil, err
	}
	switch kind {
	case "If":
		var n struct {
			Header
			Cond json.RawMessage `json:"cond"`
			Then json.RawMessage `json:"then"`
			Else json.RawMessage `json:"else"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		cond, err := decodeExpr(n.Cond)
		if err != nil {
			return nil, err
		}
		then, err := decodeBlock(n.Then)
		if err != nil {
			return nil, err
		}
		out := &If{Header: n.Header, Cond: cond, Then: then}
		if len(n.Else) > 0 {
			els, err := decodeBlock(n.Else)
			if err != nil {
				return nil, err
			}
			out.Else = els
		}
		return out, nil
	case "For":
		var n struct {
			Header
			LoopVar string          `json:"loopVar"`
			Init    json.RawMessage `json:"init"`
			End     json.RawMessage `json:"end"`
			Body    json.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		init, err := decodeExpr(n.Init)
		if err != nil {
			return nil, err
		}
		end, err := decodeExpr(n.End)
		if err != nil {
			return nil, err
		}
		body, err := decodeBlock(n.Body)
		if err != nil {
			return nil, err
		}
		return &For{Header: n.Header, LoopVar: n.LoopVar, Init: init, End: end, Body: body}, nil
	case "While":
		var n struct {
			Header
			Cond json.RawMessage `json:"cond"`
			Body json.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		cond, err := decodeExpr(n.Cond)
		if err != nil {
			return nil, err
		}
		body, err := decodeBlock(n.Body)
		if err != nil {
			return nil, err
		}
		return &While{Header: n.Header, Cond: cond, Body: body}, nil
	case "DoWhile":
		var n struct {
			Header
			Cond json.RawMessage `json:"cond"`
			Body json.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		cond, err := decodeExpr(n.Cond)
		if err != nil {
			return nil, err
		}
		body, err := decodeBlock(n.Body)
		if err != nil {
			return nil, err
		}
		return &DoWhile{Header: n.Header, Cond: cond, Body: body}, nil
	case "Break":
		var n struct{ Header }
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		return &Break{Header: n.Header}, nil
	case "Continue":
		var n struct{ Header }
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		return &Continue{Header: n.Header}, nil
	case "Return":
		var n struct {
			Header
			Value json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		ret := &Return{Header: n.Header}
		if len(n.Value) > 0 {
			v, err := decodeExpr(n.Value)
			if err != nil {
				return nil, err
			}
			ret.Value = v
		}
		return ret, nil
	case "ExprStmt":
		var n struct {
			Header
			X json.RawMessage `json:"x"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		x, err := decodeExpr(n.X)
		if err != nil {
			return nil, err
		}
		return &ExprStmt{Header: n.Header, X: x}, nil
	case "Block":
		return decodeBlock(data)
	case "Goto":
		var n struct {
			Header
			Label string `json:"label"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		return &Goto{Header: n.Header, Label: n.Label}, nil
	case "LabelStmt":
		var n struct {
			Header
			Name string `json:"name"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		return &LabelStmt{Header: n.Header, Name: n.Name}, nil
	default:
		return nil, fmt.Errorf("ast: unknown statement kind %q", kind)
	}
}

func decodeExpr(data json.RawMessage) (Expr, error) {
	if len(data) == 0 {
		return nil, nil
	}
	kind, err := kindOf(data)
	if err != nil {
		return nil, err
	}
	switch kind {
	case "IntLit":
		var n struct {
			ExprMeta
			Value int64 `json:"value"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		return &IntLit{ExprMeta: n.ExprMeta, Value: n.Value}, nil
	case "DoubleLit":
		var n struct {
			ExprMeta
			Value float64 `json:"value"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		return &DoubleLit{ExprMeta: n.ExprMeta, Value: n.Value}, nil
	case "BoolLit":
		var n struct {
			ExprMeta
			Value bool `json:"value"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		return &BoolLit{ExprMeta: n.ExprMeta, Value: n.Value}, nil
	case "CharLit":
		var n struct {
			ExprMeta
			Value string `json:"value"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		var r rune
		for _, c := range n.Value {
			r = c
			break
		}
		return &CharLit{ExprMeta: n.ExprMeta, Value: r}, nil
	case "StringLit":
		var n struct {
			ExprMeta
			Value string `json:"value"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		return &StringLit{ExprMeta: n.ExprMeta, Value: n.Value}, nil
	case "Identifier":
		var n struct {
			ExprMeta
			Name string `json:"name"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		return &Identifier{ExprMeta: n.ExprMeta, Name: n.Name}, nil
	case "Location":
		var n struct {
			ExprMeta
			Name  string          `json:"name"`
			Index json.RawMessage `json:"index"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		loc := &Location{ExprMeta: n.ExprMeta, Name: n.Name}
		if len(n.Index) > 0 {
			idx, err := decodeExpr(n.Index)
			if err != nil {
				return nil, err
			}
			loc.Index = idx
		}
		return loc, nil
	case "BinaryExpr":
		var n struct {
			ExprMeta
			LHS json.RawMessage `json:"lhs"`
			RHS json.RawMessage `json:"rhs"`
			Op  string          `json:"op"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		lhs, err := decodeExpr(n.LHS)
		if err != nil {
			return nil, err
		}
		rhs, err := decodeExpr(n.RHS)
		if err != nil {
			return nil, err
		}
		return &BinaryExpr{ExprMeta: n.ExprMeta, LHS: lhs, RHS: rhs, Op: parseBinaryOp(n.Op)}, nil
	case "BooleanExpr":
		var n struct {
			ExprMeta
			LHS json.RawMessage `json:"lhs"`
			RHS json.RawMessage `json:"rhs"`
			Op  string          `json:"op"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		var lhs Expr
		if len(n.LHS) > 0 {
			lhs, err = decodeExpr(n.LHS)
			if err != nil {
				return nil, err
			}
		}
		rhs, err := decodeExpr(n.RHS)
		if err != nil {
			return nil, err
		}
		return &BooleanExpr{ExprMeta: n.ExprMeta, LHS: lhs, RHS: rhs, Op: parseBoolOp(n.Op)}, nil
	case "AssignExpr":
		var n struct {
			ExprMeta
			LHS json.RawMessage `json:"lhs"`
			RHS json.RawMessage `json:"rhs"`
			Op  string          `json:"op"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		lhsExpr, err := decodeExpr(n.LHS)
		if err != nil {
			return nil, err
		}
		lhs, ok := lhsExpr.(*Location)
		if !ok {
			return nil, fmt.Errorf("ast: AssignExpr.lhs must decode to a Location, got %T", lhsExpr)
		}
		rhs, err := decodeExpr(n.RHS)
		if err != nil {
			return nil, err
		}
		return &AssignExpr{ExprMeta: n.ExprMeta, LHS: lhs, Op: parseAssignOp(n.Op), RHS: rhs}, nil
	case "MethodCall":
		var n struct {
			ExprMeta
			Callee   string            `json:"callee"`
			Args     []json.RawMessage `json:"args"`
			External bool              `json:"external"`
		}
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		call := &MethodCall{ExprMeta: n.ExprMeta, Callee: n.Callee, External: n.External}
		for _, a := range n.Args {
			arg, err := decodeExpr(a)
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, arg)
		}
		return call, nil
	default:
		return nil, fmt.Errorf("ast: unknown expression kind %q", kind)
	}
}

func parseBinaryOp(s string) types.BinaryOp {
	switch s {
	case "+":
		return types.Add
	case "-":
		return types.Sub
	case "*":
		return types.Mul
	case "/":
		return types.Div
	case "%":
		return types.Mod
	}
	return types.Add
}

func parseBoolOp(s string) types.BoolOp {
	switch s {
	case "==":
		return types.Eq
	case "!=":
		return types.Ne
	case "<":
		return types.Lt
	case "<=":
		return types.Le
	case ">":
		return types.Gt
	case ">=":
		return types.Ge
	case "&&":
		return types.And
	case "||":
		return types.Or
	case "!":
		return types.Not
	}
	return types.Eq
}

func parseAssignOp(s string) types.AssignOp {
	switch s {
	case "+=":
		return types.IncAssign
	case "-=":
		return types.DecAssign
	default:
		return types.Assign
	}
}
