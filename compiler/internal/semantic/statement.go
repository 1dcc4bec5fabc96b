package semantic

import (
	"github.com/tindzk/oops/compiler/internal/ast"
	"github.com/tindzk/oops/compiler/internal/rewrite"
	"github.com/tindzk/oops/compiler/internal/source"
)

func (a *analyzer) statements(stmts []ast.Statement) ([]ast.Statement, error) {
	for i, stmt := range stmts {
		checked, err := a.statement(stmt)
		if err != nil {
			return nil, err
		}
		stmts[i] = checked
	}
	return stmts, nil
}

func (a *analyzer) statement(stmt ast.Statement) (ast.Statement, error) {
	var err error
	switch s := stmt.(type) {
	case *ast.Assignment:
		err = a.assignment(s)
	case *ast.If:
		err = a.ifStatement(s)
	case *ast.While:
		if s.Cond, err = a.condition(s.Cond); err != nil {
			return nil, err
		}
		s.Body, err = a.statements(s.Body)
	case *ast.Try:
		err = a.tryStatement(s)
	case *ast.Throw:
		s.Value, err = a.primitive(s.Value, a.types.Int)
	case *ast.Return:
		err = a.returnStatement(s)
	case *ast.Read:
		err = a.readStatement(s)
	case *ast.Write:
		s.Operand, err = a.primitive(s.Operand, a.types.Int)
	case *ast.Call:
		if s.Call, err = a.expression(s.Call); err != nil {
			return nil, err
		}
		err = s.Call.Type().Check(a.types.Void, s.Call.Pos())
	default:
		panic("semantic: unknown statement")
	}
	if err != nil {
		return nil, err
	}
	return stmt, nil
}

func lValueExpected(e ast.Expression) error {
	return source.Errorf(source.LValueExpected, e.Pos(), "L-value expected.")
}

// primitive analyzes e as an operand that must be a plain value of type tp.
func (a *analyzer) primitive(e ast.Expression, tp *ast.ClassSymbol) (ast.Expression, error) {
	e, err := a.expression(e)
	if err != nil {
		return nil, err
	}
	e = rewrite.Unbox(a.types, e)
	if err := e.Type().Check(tp, e.Pos()); err != nil {
		return nil, err
	}
	return e, nil
}

func (a *analyzer) condition(e ast.Expression) (ast.Expression, error) {
	return a.primitive(e, a.types.Bool)
}

func (a *analyzer) assignment(s *ast.Assignment) error {
	left, err := a.expression(s.Left)
	if err != nil {
		return err
	}
	right, err := a.expression(s.Right)
	if err != nil {
		return err
	}
	if !left.LValue() {
		return lValueExpected(left)
	}
	right = rewrite.Box(a.types, right)
	if err := right.Type().Check(left.Type(), right.Pos()); err != nil {
		return err
	}
	s.Left, s.Right = left, right
	return nil
}

func (a *analyzer) ifStatement(s *ast.If) error {
	var err error
	if s.Cond, err = a.condition(s.Cond); err != nil {
		return err
	}
	if s.Then, err = a.statements(s.Then); err != nil {
		return err
	}
	for _, elseIf := range s.ElseIfs {
		if elseIf.Cond, err = a.condition(elseIf.Cond); err != nil {
			return err
		}
		if elseIf.Body, err = a.statements(elseIf.Body); err != nil {
			return err
		}
	}
	s.Else, err = a.statements(s.Else)
	return err
}

func (a *analyzer) tryStatement(s *ast.Try) error {
	var err error
	if s.Body, err = a.statements(s.Body); err != nil {
		return err
	}
	for _, c := range s.Catches {
		c.Code.SetType(a.types.LiteralType(c.Code.Kind), false)
		if err := c.Code.Type().Check(a.types.Int, c.Code.Pos()); err != nil {
			return err
		}
		if c.Body, err = a.statements(c.Body); err != nil {
			return err
		}
	}
	if len(s.Catches) == 0 {
		return source.Errorf(source.MissingCatchBlock, s.Pos(), "At least one catch block is required in a TRY statement.")
	}
	return nil
}

func (a *analyzer) returnStatement(s *ast.Return) error {
	s.Method = a.method
	expected := a.types.Void
	if a.method != nil {
		expected = a.method.ReturnType()
	}
	if s.Value == nil {
		if expected != a.types.Void {
			return source.Errorf(source.MissingReturnValue, s.Pos(), "Return value of type %s expected.", expected.Name.Name)
		}
		return nil
	}
	value, err := a.expression(s.Value)
	if err != nil {
		return err
	}
	if expected == a.types.Void {
		return source.Errorf(source.UnexpectedReturnValue, value.Pos(), "No return value expected.")
	}
	value = rewrite.Box(a.types, value)
	if err := value.Type().Check(expected, value.Pos()); err != nil {
		return err
	}
	s.Value = value
	return nil
}

// readStatement also analyzes the Integer allocated for the character read.
func (a *analyzer) readStatement(s *ast.Read) error {
	operand, err := a.expression(s.Operand)
	if err != nil {
		return err
	}
	if !operand.LValue() {
		return lValueExpected(operand)
	}
	if err := operand.Type().Check(a.types.Integer, operand.Pos()); err != nil {
		return err
	}
	alloc := ast.NewNew(ast.NewClassRef(ast.IntegerName, s.Pos()), s.Pos())
	alloc.Class.Bind(a.types.Integer)
	alloc.SetType(a.types.Integer, false)
	s.Operand, s.Alloc = operand, alloc
	return nil
}
