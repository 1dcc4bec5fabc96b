// Package rewrite inserts the implicit conversions between primitive values,
// wrapper objects and storage locations.
//
// Both functions take an analyzed expression and return either the same node or
// a new node wrapping it. They never modify their argument; the caller stores the
// result in place of the original.
package rewrite

import "github.com/tindzk/oops/compiler/internal/ast"

// Box turns e into an object reference: primitives are wrapped in a fresh
// Integer or Boolean and l-values are loaded first.
func Box(types *ast.Types, e ast.Expression) ast.Expression {
	if wrapper := types.WrapperOf(e.Type()); wrapper != nil {
		if e.LValue() {
			e = ast.NewDeref(e)
		}
		return ast.NewBox(e, wrapper)
	}
	if e.LValue() {
		return ast.NewDeref(e)
	}
	return e
}

// Unbox turns e into a plain value: l-values are loaded and Integer or Boolean
// objects are replaced by their value slot.
func Unbox(types *ast.Types, e ast.Expression) ast.Expression {
	if box, ok := e.(*ast.Box); ok {
		return box.Operand
	}
	if e.LValue() {
		return Unbox(types, ast.NewDeref(e))
	}
	if primitive := types.PrimitiveOf(e.Type()); primitive != nil {
		return ast.NewUnbox(e, primitive)
	}
	return e
}
