package ast

import "github.com/tindzk/oops/compiler/internal/source"

// Statement is a closed sum type like Expression.
type Statement interface {
	Pos() source.Position
	stmtNode()
}

type stmtBase struct {
	Position source.Position
}

func (s *stmtBase) Pos() source.Position { return s.Position }
func (s *stmtBase) stmtNode()            {}

type Assignment struct {
	stmtBase
	Left  Expression
	Right Expression
}

func NewAssignment(left, right Expression) *Assignment {
	return &Assignment{stmtBase: stmtBase{Position: left.Pos()}, Left: left, Right: right}
}

type ElseIf struct {
	Cond Expression
	Body []Statement
}

// If always has an else block; it is empty when the source has none.
type If struct {
	stmtBase
	Cond    Expression
	Then    []Statement
	ElseIfs []*ElseIf
	Else    []Statement
}

func NewIf(cond Expression, then []Statement, pos source.Position) *If {
	return &If{stmtBase: stmtBase{Position: pos}, Cond: cond, Then: then}
}

type While struct {
	stmtBase
	Cond Expression
	Body []Statement
}

func NewWhile(cond Expression, body []Statement, pos source.Position) *While {
	return &While{stmtBase: stmtBase{Position: pos}, Cond: cond, Body: body}
}

type Catch struct {
	Code *Literal
	Body []Statement
}

type Try struct {
	stmtBase
	Body    []Statement
	Catches []*Catch
}

func NewTry(body []Statement, pos source.Position) *Try {
	return &Try{stmtBase: stmtBase{Position: pos}, Body: body}
}

type Throw struct {
	stmtBase
	Value Expression
}

func NewThrow(value Expression, pos source.Position) *Throw {
	return &Throw{stmtBase: stmtBase{Position: pos}, Value: value}
}

// Return carries the enclosing method once analyzed, so synthesis can emit
// that method's epilogue.
type Return struct {
	stmtBase
	Value  Expression
	Method *MethodSymbol
}

func NewReturn(value Expression, pos source.Position) *Return {
	return &Return{stmtBase: stmtBase{Position: pos}, Value: value}
}

// Read stores one input character, boxed, into Operand.
type Read struct {
	stmtBase
	Operand Expression
	// Alloc is the Integer allocation analyzed alongside the operand.
	Alloc *New
}

func NewRead(operand Expression, pos source.Position) *Read {
	return &Read{stmtBase: stmtBase{Position: pos}, Operand: operand}
}

type Write struct {
	stmtBase
	Operand Expression
}

func NewWrite(operand Expression, pos source.Position) *Write {
	return &Write{stmtBase: stmtBase{Position: pos}, Operand: operand}
}

// Call is a method call used as a statement.
type Call struct {
	stmtBase
	Call Expression
}

func NewCall(call Expression) *Call {
	return &Call{stmtBase: stmtBase{Position: call.Pos()}, Call: call}
}
