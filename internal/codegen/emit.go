package codegen

import (
	"fmt"
	"math"

	"github.com/stephentu/venom-lang-sub001/internal/ast"
	"github.com/stephentu/venom-lang-sub001/internal/symbols"
	"github.com/stephentu/venom-lang-sub001/internal/typesystem"
)

// fnEmit is the per-function emission context: local slot assignment and a
// handle back to the shared gen/chunk so expression emission can resolve
// call targets and class descriptors as it goes.
type fnEmit struct {
	g       *gen
	target  *symbols.FuncSymbol // the lifted body being emitted
	slots   map[*symbols.VariableSymbol]int
	next    int
}

// emitFunc emits one queued function's body, recording its FuncDesc.
func (g *gen) emitFunc(name string, target *symbols.FuncSymbol) error {
	fe := &fnEmit{g: g, target: target, slots: map[*symbols.VariableSymbol]int{}}
	for _, p := range target.Params {
		fe.slots[p] = fe.next
		fe.next++
	}

	desc := &FuncDesc{Name: name, Entry: len(g.chunk.Code), NumParams: len(target.Params)}
	for i, p := range target.Params {
		if isRefType(p.DeclaredType) {
			desc.RefParamMask |= 1 << uint(i)
		}
	}
	g.funcs[name] = desc

	if target.Body != nil {
		for _, s := range target.Body.Stmts {
			if err := fe.stmt(s); err != nil {
				return err
			}
		}
	}
	// Implicit Void return for a function whose body falls off the end:
	// RET always pops a return value, so a synthesized Nil is pushed first.
	g.chunk.writeOp(OpPushNil, 0)
	g.chunk.writeOp(OpRet, 0)

	desc.NumLocals = fe.next
	return nil
}

func isRefType(it *typesystem.InstantiatedType) bool {
	if it == nil {
		return false
	}
	switch it.Type.Kind {
	case typesystem.KindClass:
		return true
	}
	switch it.Type.Name {
	case typesystem.StringName, typesystem.ListName, typesystem.MapName, typesystem.ObjectName:
		return true
	}
	return false
}

// slotFor returns v's local slot, assigning the next free one the first
// time v is stored to or loaded (spec §4.3: slots are assigned lazily by
// the code generator, not the checker).
func (fe *fnEmit) slotFor(v *symbols.VariableSymbol) int {
	if s, ok := fe.slots[v]; ok {
		return s
	}
	s := fe.next
	fe.next++
	fe.slots[v] = s
	return s
}

// selfParam finds the current function's "self" parameter by name: a
// lifted function that captured self holds it as one of its leading
// captured parameters, not necessarily at slot 0 (internal/lift's Open
// Question decision).
func (fe *fnEmit) selfParam() *symbols.VariableSymbol {
	for _, p := range fe.target.Params {
		if p.Name == "self" {
			return p
		}
	}
	return nil
}

func (fe *fnEmit) stmt(s ast.Stmt) error {
	switch n := s.(type) {
	case *ast.ExprStmt:
		t, err := fe.expr(n.X)
		if err != nil {
			return err
		}
		if isRefType(t) {
			fe.g.chunk.writeOp(OpPopRef, 0)
		} else {
			fe.g.chunk.writeOp(OpPop, 0)
		}
		return nil
	case *ast.AssignStmt:
		return fe.assign(n)
	case *ast.WhileStmt:
		return fe.whileStmt(n)
	case *ast.ReturnStmt:
		return fe.returnStmt(n)
	case *ast.FuncDecl:
		// Nested function declarations carry no runtime effect of their
		// own; their lifted bodies are queued separately by the call
		// sites that reference them.
		return nil
	case *ast.ClassDecl:
		// A class declaration emits no code in $main; its methods are
		// queued through classDescFor.
		return nil
	default:
		return fmt.Errorf("codegen: unhandled statement %T", s)
	}
}

func (fe *fnEmit) assign(n *ast.AssignStmt) error {
	switch target := n.Target.(type) {
	case *ast.Ident:
		v, ok := target.ResolvedSymbol.(*symbols.VariableSymbol)
		if !ok {
			return fmt.Errorf("codegen: assignment target %q has no resolved variable", target.Name)
		}
		if v.Storage == symbols.StorageAttribute {
			// A bare attribute name stores through self, the same as an
			// explicit self.name target.
			self := &ast.Ident{Name: "self", ResolvedSymbol: fe.selfParam()}
			return fe.assign(&ast.AssignStmt{Target: &ast.AttrAccess{Receiver: self, Name: target.Name}, Value: n.Value})
		}
		if _, err := fe.expr(n.Value); err != nil {
			return err
		}
		slot := fe.slotFor(v)
		fe.g.chunk.writeOp(OpStoreLocal, 0)
		fe.g.chunk.writeUint16(uint16(slot), 0)
		return nil
	case *ast.AttrAccess:
		self := fe.selfParam()
		if self == nil {
			return fmt.Errorf("codegen: attribute assignment outside a method")
		}
		cls := classOfSelf(fe, self)
		_, attr := cls.ResolveAttr(target.Name)
		if attr == nil {
			return fmt.Errorf("codegen: unknown attribute %q", target.Name)
		}
		fe.g.chunk.writeOp(OpLoadLocal, 0)
		fe.g.chunk.writeUint16(uint16(fe.slotFor(self)), 0)
		if _, err := fe.expr(n.Value); err != nil {
			return err
		}
		idx := attrIndex(cls, attr)
		fe.g.chunk.writeOp(OpStoreAttr, 0)
		fe.g.chunk.writeUint16(uint16(idx), 0)
		return nil
	default:
		return fmt.Errorf("codegen: unsupported assignment target %T", n.Target)
	}
}

func classOfSelf(fe *fnEmit, self *symbols.VariableSymbol) *symbols.ClassSymbol {
	if self.DeclaredType == nil {
		return nil
	}
	return fe.g.classSymbolFor(self.DeclaredType.Type)
}

func (fe *fnEmit) whileStmt(n *ast.WhileStmt) error {
	condPos := len(fe.g.chunk.Code)
	if _, err := fe.expr(n.Cond); err != nil {
		return err
	}
	fe.g.chunk.writeOp(OpBranchFalse, 0)
	branchOperand := len(fe.g.chunk.Code)
	fe.g.chunk.writeUint16(0, 0)

	for _, s := range n.Body.Stmts {
		if err := fe.stmt(s); err != nil {
			return err
		}
	}
	fe.g.chunk.writeOp(OpJump, 0)
	fe.g.chunk.writeUint16(uint16(condPos), 0)

	end := len(fe.g.chunk.Code)
	fe.g.chunk.patchUint16(branchOperand, uint16(end))
	return nil
}

func (fe *fnEmit) returnStmt(n *ast.ReturnStmt) error {
	if n.Value == nil {
		fe.g.chunk.writeOp(OpPushNil, 0)
		fe.g.chunk.writeOp(OpRet, 0)
		return nil
	}
	t, err := fe.expr(n.Value)
	if err != nil {
		return err
	}
	if isRefType(t) {
		fe.g.chunk.writeOp(OpRetRef, 0)
	} else {
		fe.g.chunk.writeOp(OpRet, 0)
	}
	return nil
}

// expr emits n and returns its static type (so callers can decide
// Ref-vs-value handling without re-walking the tree).
func (fe *fnEmit) expr(e ast.Expr) (*typesystem.InstantiatedType, error) {
	switch n := e.(type) {
	case *ast.IntLiteral:
		fe.g.chunk.writeOp(OpPushInt, 0)
		fe.g.chunk.writeInt64(n.Value, 0)
	case *ast.FloatLiteral:
		fe.g.chunk.writeOp(OpPushFloat, 0)
		fe.g.chunk.writeFloat64Bits(math.Float64bits(n.Value), 0)
	case *ast.BoolLiteral:
		fe.g.chunk.writeOp(OpPushBool, 0)
		b := byte(0)
		if n.Value {
			b = 1
		}
		fe.g.chunk.writeByte(b, 0)
	case *ast.NilLiteral:
		fe.g.chunk.writeOp(OpPushNil, 0)
	case *ast.StringLiteral:
		idx := fe.g.chunk.addString(n.Value)
		fe.g.chunk.writeOp(OpPushString, 0)
		fe.g.chunk.writeUint16(uint16(idx), 0)
	case *ast.Ident:
		return fe.identExpr(n)
	case *ast.BinaryExpr:
		return fe.binaryExpr(n)
	case *ast.UnaryExpr:
		return fe.unaryExpr(n)
	case *ast.AttrAccess:
		return fe.attrExpr(n)
	case *ast.CallExpr:
		return fe.callExpr(n)
	case *ast.NewExpr:
		return fe.newExpr(n)
	default:
		return nil, fmt.Errorf("codegen: unhandled expression %T", e)
	}
	return e.StaticType(), nil
}

func (fe *fnEmit) identExpr(n *ast.Ident) (*typesystem.InstantiatedType, error) {
	v, ok := n.ResolvedSymbol.(*symbols.VariableSymbol)
	if !ok {
		return nil, fmt.Errorf("codegen: identifier %q has no resolved variable", n.Name)
	}
	if v.Storage == symbols.StorageAttribute {
		self := fe.selfParam()
		if self == nil {
			return nil, fmt.Errorf("codegen: bare attribute %q outside a method", n.Name)
		}
		cls := classOfSelf(fe, self)
		_, attr := cls.ResolveAttr(n.Name)
		if attr == nil {
			return nil, fmt.Errorf("codegen: unknown attribute %q", n.Name)
		}
		idx := attrIndex(cls, attr)
		fe.g.chunk.writeOp(OpLoadLocal, 0)
		fe.g.chunk.writeUint16(uint16(fe.slotFor(self)), 0)
		fe.g.chunk.writeOp(OpLoadAttr, 0)
		fe.g.chunk.writeUint16(uint16(idx), 0)
		return v.DeclaredType, nil
	}
	fe.g.chunk.writeOp(OpLoadLocal, 0)
	fe.g.chunk.writeUint16(uint16(fe.slotFor(v)), 0)
	return v.DeclaredType, nil
}

func (fe *fnEmit) attrExpr(n *ast.AttrAccess) (*typesystem.InstantiatedType, error) {
	if _, err := fe.expr(n.Receiver); err != nil {
		return nil, err
	}
	cls := fe.g.classSymbolFor(n.Receiver.StaticType().Type)
	_, attr := cls.ResolveAttr(n.Name)
	if attr == nil {
		return nil, fmt.Errorf("codegen: unknown attribute %q", n.Name)
	}
	idx := attrIndex(cls, attr)
	fe.g.chunk.writeOp(OpLoadAttr, 0)
	fe.g.chunk.writeUint16(uint16(idx), 0)
	return attr.DeclaredType, nil
}

var binOps = map[string]Opcode{
	"+": OpAdd, "-": OpSub, "*": OpMul, "/": OpDiv, "%": OpMod,
	"==": OpEq, "!=": OpNeq, "<": OpLt, "<=": OpLe, ">": OpGt, ">=": OpGe,
	"and": OpAnd, "or": OpOr,
}

func (fe *fnEmit) binaryExpr(n *ast.BinaryExpr) (*typesystem.InstantiatedType, error) {
	if _, err := fe.expr(n.Left); err != nil {
		return nil, err
	}
	if _, err := fe.expr(n.Right); err != nil {
		return nil, err
	}
	op, ok := binOps[n.Op]
	if !ok {
		return nil, fmt.Errorf("codegen: unknown binary operator %q", n.Op)
	}
	fe.g.chunk.writeOp(op, 0)
	return n.StaticType(), nil
}

func (fe *fnEmit) unaryExpr(n *ast.UnaryExpr) (*typesystem.InstantiatedType, error) {
	if _, err := fe.expr(n.Operand); err != nil {
		return nil, err
	}
	switch n.Op {
	case "-":
		fe.g.chunk.writeOp(OpNeg, 0)
	case "not":
		fe.g.chunk.writeOp(OpNot, 0)
	default:
		return nil, fmt.Errorf("codegen: unknown unary operator %q", n.Op)
	}
	return n.StaticType(), nil
}

func (fe *fnEmit) callExpr(n *ast.CallExpr) (*typesystem.InstantiatedType, error) {
	if attr, ok := n.Callee.(*ast.AttrAccess); ok {
		// Method call: push the receiver first, then its arguments, then
		// dispatch virtually through the receiver's class vtable.
		recvType, err := fe.expr(attr.Receiver)
		if err != nil {
			return nil, err
		}
		for _, a := range n.Args {
			if _, err := fe.expr(a); err != nil {
				return nil, err
			}
		}
		cls := fe.g.classSymbolFor(recvType.Type)
		cd, err := fe.g.classDescFor(cls, recvType.Args)
		if err != nil {
			return nil, err
		}
		slot := cd.SlotOf(attr.Name)
		if slot < 0 {
			return nil, fmt.Errorf("codegen: %q has no vtable slot on %s", attr.Name, cd.Name)
		}
		fe.g.chunk.writeOp(OpCallVirtual, 0)
		fe.g.chunk.writeUint16(uint16(slot), 0)
		fe.g.chunk.writeByte(byte(1+len(n.Args)), 0)
		return n.StaticType(), nil
	}

	name, err := fe.g.resolveBound(n.Bound)
	if err != nil {
		return nil, err
	}
	// A lifted callee takes its captured variables as leading arguments,
	// in capture-set order; a variable this function itself captured is
	// read from the parameter that now carries it.
	callee, err := symbols.Materialize(fe.g.reg, n.Bound.Func.(*symbols.FuncSymbol), n.Bound.Args)
	if err != nil {
		return nil, err
	}
	for _, c := range callee.Captures {
		local := c
		for i, own := range fe.target.Captures {
			if own == c {
				local = fe.target.Params[i]
			}
		}
		fe.g.chunk.writeOp(OpLoadLocal, 0)
		fe.g.chunk.writeUint16(uint16(fe.slotFor(local)), 0)
	}
	for _, a := range n.Args {
		if _, err := fe.expr(a); err != nil {
			return nil, err
		}
	}
	idx := fe.g.chunk.addFuncName(name)
	fe.g.chunk.writeOp(OpCall, 0)
	fe.g.chunk.writeUint16(uint16(idx), 0)
	fe.g.chunk.writeByte(byte(len(callee.Captures)+len(n.Args)), 0)
	return n.StaticType(), nil
}

func (fe *fnEmit) newExpr(n *ast.NewExpr) (*typesystem.InstantiatedType, error) {
	resolved := n.Class.Resolved
	cls := fe.g.classSymbolFor(resolved.Type)
	cd, err := fe.g.classDescFor(cls, resolved.Args)
	if err != nil {
		return nil, err
	}
	classIdx := fe.g.chunk.addClassName(cd.Name)
	fe.g.chunk.writeOp(OpAllocObj, 0)
	fe.g.chunk.writeUint16(uint16(classIdx), 0)

	if cd.CtorName == "" {
		return n.StaticType(), nil
	}
	// Keep one reference for the expression's value; lend the other to
	// the constructor call, which consumes it as `self`.
	fe.g.chunk.writeOp(OpDupRef, 0)
	for _, a := range n.Args {
		if _, err := fe.expr(a); err != nil {
			return nil, err
		}
	}
	fnIdx := fe.g.chunk.addFuncName(cd.CtorName)
	fe.g.chunk.writeOp(OpCall, 0)
	fe.g.chunk.writeUint16(uint16(fnIdx), 0)
	fe.g.chunk.writeByte(byte(1+len(n.Args)), 0)
	// init always returns Void; discard the synthesized Nil.
	fe.g.chunk.writeOp(OpPop, 0)
	return n.StaticType(), nil
}
