package ast

import "github.com/tindzk/oops/compiler/internal/source"

// Expression is a closed sum type. Every variant embeds exprBase, so analysis
// and synthesis switch over the concrete pointer types exhaustively.
type Expression interface {
	Pos() source.Position
	// Type is nil until the reference pass has analyzed the node.
	Type() *ClassSymbol
	LValue() bool
	SetType(tp *ClassSymbol, lValue bool)
	exprNode()
}

type exprBase struct {
	Position source.Position
	tp       *ClassSymbol
	lValue   bool
}

func (e *exprBase) Pos() source.Position { return e.Position }
func (e *exprBase) Type() *ClassSymbol   { return e.tp }
func (e *exprBase) LValue() bool         { return e.lValue }
func (e *exprBase) exprNode()            {}

func (e *exprBase) SetType(tp *ClassSymbol, lValue bool) {
	e.tp, e.lValue = tp, lValue
}

type LiteralKind int

const (
	IntLiteral LiteralKind = iota
	BoolLiteral
	NullLiteral
)

type Literal struct {
	exprBase
	Kind  LiteralKind
	Value int
}

func NewLiteral(kind LiteralKind, value int, pos source.Position) *Literal {
	return &Literal{exprBase: exprBase{Position: pos}, Kind: kind, Value: value}
}

// IsAlwaysTrue holds only for the literals TRUE and 1.
func (l *Literal) IsAlwaysTrue() bool {
	return l.Value == 1 && (l.Kind == IntLiteral || l.Kind == BoolLiteral)
}

type BinaryOp int

const (
	EqOp BinaryOp = iota
	NeqOp
	GtOp
	GtEqOp
	LtOp
	LtEqOp
	PlusOp
	MinusOp
	MulOp
	DivOp
	ModOp
	AndOp
	OrOp
)

var binaryOpNames = [...]string{"EQ", "NEQ", "GT", "GTEQ", "LT", "LTEQ", "PLUS", "MINUS", "MUL", "DIV", "MOD", "AND", "OR"}

func (op BinaryOp) String() string {
	return binaryOpNames[op]
}

type Binary struct {
	exprBase
	Op    BinaryOp
	Left  Expression
	Right Expression
}

func NewBinary(left Expression, op BinaryOp, right Expression) *Binary {
	return &Binary{exprBase: exprBase{Position: left.Pos()}, Op: op, Left: left, Right: right}
}

type UnaryOp int

const (
	NegateOp UnaryOp = iota
	NotOp
)

func (op UnaryOp) String() string {
	if op == NotOp {
		return "NOT"
	}
	return "MINUS"
}

type Unary struct {
	exprBase
	Op      UnaryOp
	Operand Expression
}

func NewUnary(op UnaryOp, operand Expression, pos source.Position) *Unary {
	return &Unary{exprBase: exprBase{Position: pos}, Op: op, Operand: operand}
}

// VarOrCall names a variable, an attribute or a method. Static is set when the
// call targets a base class explicitly and must bypass the VMT.
type VarOrCall struct {
	exprBase
	Ref    *Ref
	Args   []Expression
	Static *ClassSymbol
}

func NewVarOrCall(ref *Ref, args []Expression) *VarOrCall {
	return &VarOrCall{exprBase: exprBase{Position: ref.Ident.Pos}, Ref: ref, Args: args}
}

// Access is the member access Left.Right.
type Access struct {
	exprBase
	Left  Expression
	Right *VarOrCall
}

func NewAccess(left Expression, right *VarOrCall) *Access {
	return &Access{exprBase: exprBase{Position: left.Pos()}, Left: left, Right: right}
}

type New struct {
	exprBase
	Class *ClassRef
}

func NewNew(class *ClassRef, pos source.Position) *New {
	return &New{exprBase: exprBase{Position: pos}, Class: class}
}

// Box wraps a primitive value in a freshly allocated Integer or Boolean.
type Box struct {
	exprBase
	Operand Expression
}

func NewBox(operand Expression, wrapper *ClassSymbol) *Box {
	b := &Box{exprBase: exprBase{Position: operand.Pos()}, Operand: operand}
	b.SetType(wrapper, false)
	return b
}

// Unbox reads the value slot of an Integer or Boolean.
type Unbox struct {
	exprBase
	Operand Expression
}

func NewUnbox(operand Expression, primitive *ClassSymbol) *Unbox {
	u := &Unbox{exprBase: exprBase{Position: operand.Pos()}, Operand: operand}
	u.SetType(primitive, false)
	return u
}

// Deref loads the value stored at the address an l-value evaluates to.
type Deref struct {
	exprBase
	Operand Expression
}

func NewDeref(operand Expression) *Deref {
	d := &Deref{exprBase: exprBase{Position: operand.Pos()}, Operand: operand}
	d.SetType(operand.Type(), false)
	return d
}
