package ast


// IntLiteral is an integer literal, e.g. 42.
type IntLiteral struct {
	exprBase
	Value int64
}

func (n *IntLiteral) ChildCount() int        { return 0 }
func (n *IntLiteral) Child(int) Node         { return nil }
func (n *IntLiteral) NeedsNewScope(int) bool { return false }

// FloatLiteral is a floating point literal, e.g. 3.14.
type FloatLiteral struct {
	exprBase
	Value float64
}

func (n *FloatLiteral) ChildCount() int        { return 0 }
func (n *FloatLiteral) Child(int) Node         { return nil }
func (n *FloatLiteral) NeedsNewScope(int) bool { return false }

// BoolLiteral is a boolean literal.
type BoolLiteral struct {
	exprBase
	Value bool
}

func (n *BoolLiteral) ChildCount() int        { return 0 }
func (n *BoolLiteral) Child(int) Node         { return nil }
func (n *BoolLiteral) NeedsNewScope(int) bool { return false }

// StringLiteral is a string literal.
type StringLiteral struct {
	exprBase
	Value string
}

func (n *StringLiteral) ChildCount() int        { return 0 }
func (n *StringLiteral) Child(int) Node         { return nil }
func (n *StringLiteral) NeedsNewScope(int) bool { return false }

// NilLiteral is the literal `nil`. The type pass always binds its static
// type to Object, whatever reference type its use site expects; since
// Object is a subtype of no class, nil is accepted only where Object
// itself is expected.
type NilLiteral struct {
	exprBase
}

func (n *NilLiteral) ChildCount() int        { return 0 }
func (n *NilLiteral) Child(int) Node         { return nil }
func (n *NilLiteral) NeedsNewScope(int) bool { return false }

// Ident is a variable reference. ResolvedSymbol is filled by the name
// pass; it is nil until then.
type Ident struct {
	exprBase
	Name           string
	ResolvedSymbol Symbol
}

func (n *Ident) ChildCount() int        { return 0 }
func (n *Ident) Child(int) Node         { return nil }
func (n *Ident) NeedsNewScope(int) bool { return false }

// BinaryExpr is a binary operator application. Op is one of the lexical
// spellings the parser produced: "+","-","*","/","%","==","!=","<","<=",
// ">",">=","and","or".
type BinaryExpr struct {
	exprBase
	Op    string
	Left  Expr
	Right Expr
}

func (n *BinaryExpr) ChildCount() int { return 2 }
func (n *BinaryExpr) Child(i int) Node {
	switch i {
	case 0:
		return n.Left
	case 1:
		return n.Right
	}
	return nil
}
func (n *BinaryExpr) NeedsNewScope(int) bool { return false }

// UnaryExpr is a unary operator application: "-" or "not".
type UnaryExpr struct {
	exprBase
	Op      string
	Operand Expr
}

func (n *UnaryExpr) ChildCount() int { return 1 }
func (n *UnaryExpr) Child(i int) Node {
	if i == 0 {
		return n.Operand
	}
	return nil
}
func (n *UnaryExpr) NeedsNewScope(int) bool { return false }

// AttrAccess reads an attribute off a receiver (or, as the Callee of a
// CallExpr, names the method to dispatch).
type AttrAccess struct {
	exprBase
	Receiver       Expr
	Name           string
	ResolvedSymbol Symbol
}

func (n *AttrAccess) ChildCount() int { return 1 }
func (n *AttrAccess) Child(i int) Node {
	if i == 0 {
		return n.Receiver
	}
	return nil
}
func (n *AttrAccess) NeedsNewScope(int) bool { return false }

// CallExpr applies Callee (an Ident naming a free function, or an
// AttrAccess naming a method) to Args. TypeArgs are explicit generic
// arguments written at the call site (e.g. `f{Int}(x)`). The checker does
// not infer them from Args: a call to a generic free function without
// them fails the type-argument count check.
type CallExpr struct {
	exprBase
	Callee   Expr
	TypeArgs []*TypeRef
	Args     []Expr
	Bound    *BoundCall
}

func (n *CallExpr) ChildCount() int { return 1 + len(n.Args) }
func (n *CallExpr) Child(i int) Node {
	if i == 0 {
		return n.Callee
	}
	if i-1 < len(n.Args) {
		return n.Args[i-1]
	}
	return nil
}
func (n *CallExpr) NeedsNewScope(int) bool { return false }

// NewExpr is a generic class construction: `ClassName{TypeArgs}.new(Args)`.
type NewExpr struct {
	exprBase
	Class *TypeRef
	Args  []Expr
	Bound *BoundCall
}

func (n *NewExpr) ChildCount() int { return 1 + len(n.Args) }
func (n *NewExpr) Child(i int) Node {
	if i == 0 {
		return n.Class
	}
	if i-1 < len(n.Args) {
		return n.Args[i-1]
	}
	return nil
}
func (n *NewExpr) NeedsNewScope(int) bool { return false }
