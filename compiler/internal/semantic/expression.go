package semantic

import (
	"github.com/tindzk/oops/compiler/internal/ast"
	"github.com/tindzk/oops/compiler/internal/rewrite"
	"github.com/tindzk/oops/compiler/internal/scope"
	"github.com/tindzk/oops/compiler/internal/source"
)

// expression analyzes e bottom-up and returns the node that replaces it.
func (a *analyzer) expression(e ast.Expression) (ast.Expression, error) {
	switch n := e.(type) {
	case *ast.Literal:
		n.SetType(a.types.LiteralType(n.Kind), false)
		return n, nil
	case *ast.New:
		if err := a.resolveClass(a.scope, n.Class); err != nil {
			return nil, err
		}
		if n.Class.Class.Pseudo != ast.NotPseudo {
			return nil, source.Errorf(source.NotAType, n.Class.Ident.Pos, "%s is not a type.", n.Class.Name())
		}
		n.SetType(n.Class.Class, false)
		return n, nil
	case *ast.Unary:
		return a.unary(n)
	case *ast.Binary:
		return a.binary(n)
	case *ast.VarOrCall:
		return a.varOrCall(n)
	case *ast.Access:
		return a.access(n)
	case *ast.Box, *ast.Unbox, *ast.Deref:
		return n, nil
	default:
		panic("semantic: unknown expression")
	}
}

func (a *analyzer) unary(n *ast.Unary) (ast.Expression, error) {
	expected := a.types.Int
	if n.Op == ast.NotOp {
		expected = a.types.Bool
	}
	operand, err := a.primitive(n.Operand, expected)
	if err != nil {
		return nil, err
	}
	n.Operand = operand
	n.SetType(operand.Type(), false)
	return n, nil
}

func (a *analyzer) binary(n *ast.Binary) (ast.Expression, error) {
	left, err := a.expression(n.Left)
	if err != nil {
		return nil, err
	}
	right, err := a.expression(n.Right)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case ast.AndOp, ast.OrOp:
		err = a.operands(n, left, right, a.types.Bool, a.types.Bool)
	case ast.PlusOp, ast.MinusOp, ast.MulOp, ast.DivOp, ast.ModOp:
		err = a.operands(n, left, right, a.types.Int, a.types.Int)
	case ast.GtOp, ast.GtEqOp, ast.LtOp, ast.LtEqOp:
		err = a.operands(n, left, right, a.types.Int, a.types.Bool)
	case ast.EqOp, ast.NeqOp:
		err = a.equality(n, left, right)
	default:
		panic("semantic: unknown binary operator")
	}
	if err != nil {
		return nil, err
	}
	return n, nil
}

// operands unboxes both sides, checks them against operand and types n as result.
func (a *analyzer) operands(n *ast.Binary, left, right ast.Expression, operand, result *ast.ClassSymbol) error {
	left = rewrite.Unbox(a.types, left)
	right = rewrite.Unbox(a.types, right)
	if err := left.Type().Check(operand, left.Pos()); err != nil {
		return err
	}
	if err := right.Type().Check(operand, right.Pos()); err != nil {
		return err
	}
	n.Left, n.Right = left, right
	n.SetType(result, false)
	return nil
}

// equality compares plain values, or object references when either side is NULL.
func (a *analyzer) equality(n *ast.Binary, left, right ast.Expression) error {
	switch {
	case left.Type() == a.types.Null:
		right = rewrite.Box(a.types, right)
	case right.Type() == a.types.Null:
		left = rewrite.Box(a.types, left)
	default:
		left = rewrite.Unbox(a.types, left)
		right = rewrite.Unbox(a.types, right)
	}
	if !left.Type().IsA(right.Type()) && !right.Type().IsA(left.Type()) {
		return ast.TypeError(left.Type(), right.Type(), right.Pos())
	}
	n.Left, n.Right = left, right
	n.SetType(a.types.Bool, false)
	return nil
}

// varOrCall analyzes a name used without a receiver. Attributes and methods
// are turned into an explicit access on SELF.
func (a *analyzer) varOrCall(n *ast.VarOrCall) (ast.Expression, error) {
	sym, err := a.scope.Resolve(n.Ref.Ident)
	if err != nil {
		return nil, err
	}
	switch decl := sym.(type) {
	case *ast.MethodSymbol:
		return a.access(ast.NewAccess(a.self(n.Pos()), n))
	case *ast.VariableSymbol:
		if decl.Kind == ast.Attribute {
			return a.access(ast.NewAccess(a.self(n.Pos()), n))
		}
	}
	if err := a.member(n, a.scope); err != nil {
		return nil, err
	}
	if err := a.arguments(n); err != nil {
		return nil, err
	}
	return n, nil
}

func (a *analyzer) self(pos source.Position) ast.Expression {
	return ast.NewVarOrCall(ast.NewRef(ast.SelfName, pos), nil)
}

// access analyzes Left.Right. The right side is looked up among the members of
// the left side's class, its arguments in the scope of the access itself.
func (a *analyzer) access(n *ast.Access) (ast.Expression, error) {
	left, err := a.expression(n.Left)
	if err != nil {
		return nil, err
	}
	left = rewrite.Box(a.types, left)
	n.Left = left

	members := left.Type().Declarations
	if members == nil {
		id := n.Right.Ref.Ident
		return nil, source.Errorf(source.UndeclaredName, id.Pos, "Undeclared identifier %s.", id.Name)
	}
	if err := a.member(n.Right, members); err != nil {
		return nil, err
	}
	if err := a.arguments(n.Right); err != nil {
		return nil, err
	}
	n.SetType(n.Right.Type(), n.Right.LValue())

	if deref, ok := left.(*ast.Deref); ok {
		if receiver, ok := deref.Operand.(*ast.VarOrCall); ok && receiver.Ref.Ident.Name == ast.BaseName {
			n.Right.Static = receiver.Type()
		}
	}
	return n, nil
}

// member binds n to a variable or method declared in sc and types it.
func (a *analyzer) member(n *ast.VarOrCall, sc *scope.Scope) error {
	sym, err := sc.Resolve(n.Ref.Ident)
	if err != nil {
		return err
	}
	switch decl := sym.(type) {
	case *ast.VariableSymbol:
		n.Ref.Bind(decl)
		n.SetType(decl.Type(), true)
		a.record(n.Ref.Ident, decl.Kind.String(), decl.Name)
	case *ast.MethodSymbol:
		n.Ref.Bind(decl)
		n.SetType(decl.ReturnType(), false)
		a.record(n.Ref.Ident, "method", decl.Name)
	default:
		return source.Errorf(source.NotAVariableOrMethod, n.Ref.Ident.Pos, "Variable or method expected.")
	}
	return nil
}

// arguments checks the call arguments of n left to right, boxing each one.
func (a *analyzer) arguments(n *ast.VarOrCall) error {
	m, ok := n.Ref.Decl.(*ast.MethodSymbol)
	if !ok {
		if len(n.Args) != 0 {
			return source.Errorf(source.NotAVariableOrMethod, n.Ref.Ident.Pos, "Arguments cannot be passed to a variable.")
		}
		return nil
	}
	if len(n.Args) != len(m.Parameters) {
		return source.Errorf(source.ArgumentCountMismatch, n.Ref.Ident.Pos,
			"Parameter count mismatch: %d expected, %d given.", len(m.Parameters), len(n.Args))
	}
	for i, arg := range n.Args {
		arg, err := a.expression(arg)
		if err != nil {
			return err
		}
		arg = rewrite.Box(a.types, arg)
		param := m.Parameters[i].Type()
		if !arg.Type().IsA(param) {
			return source.Errorf(source.ArgumentTypeMismatch, n.Ref.Ident.Pos,
				"Argument %d mismatches: %s expected, %s given.", i+1, param.Name.Name, arg.Type().Name.Name)
		}
		n.Args[i] = arg
	}
	return nil
}
