package parser

import (
	"github.com/tindzk/oops/compiler/internal/ast"
)

// OpAst is a binary operator with its binding priority. Higher binds tighter.
type OpAst struct {
	Op       ast.BinaryOp
	priority int
}

var binaryOpTokenMap = map[TokenType]OpAst{
	OrTP:           {ast.OrOp, 1},
	AndTP:          {ast.AndOp, 2},
	EqualTP:        {ast.EqOp, 3},
	NotEqualTP:     {ast.NeqOp, 3},
	LessTP:         {ast.LtOp, 4},
	LessEqualTP:    {ast.LtEqOp, 4},
	GreaterTP:      {ast.GtOp, 4},
	GreaterEqualTP: {ast.GtEqOp, 4},
	AddTP:          {ast.PlusOp, 5},
	MinusTP:        {ast.MinusOp, 5},
	MultiplyTP:     {ast.MulOp, 6},
	DivideTP:       {ast.DivOp, 6},
	ModTP:          {ast.ModOp, 6},
}

func buildExpressionsTree(ops []OpAst, exprTerms []ast.Expression) ast.Expression {
	if len(ops) == 0 {
		return exprTerms[0]
	}
	ret, _ := buildExpressionsTree0(ops, exprTerms, 0, 0)
	return ret
}

// buildExpressionsTree0 is precedence climbing over the flat operand and operator
// lists. Operators of equal priority associate to the left.
func buildExpressionsTree0(ops []OpAst, exprTerms []ast.Expression, loc int, minPriority int) (ast.Expression, int) {
	lhs := exprTerms[loc]
	i := loc
	for i < len(ops) && ops[i].priority >= minPriority {
		op := ops[i]
		rhs := exprTerms[i+1]
		j := i + 1
		for j < len(ops) && ops[j].priority > op.priority {
			rhs, j = buildExpressionsTree0(ops, exprTerms, j, ops[j].priority)
		}
		lhs = ast.NewBinary(lhs, op.Op, rhs)
		exprTerms[j] = lhs
		i = j
	}
	return lhs, i
}

func (parser *Parser) parseExpression() (ast.Expression, error) {
	leftExprTerm, err := parser.parseExpressionTerm()
	if err != nil {
		return nil, err
	}
	var ops []OpAst
	exprTerms := []ast.Expression{leftExprTerm}
	for {
		op, match := parser.matchOp()
		if !match {
			break
		}
		parser.stepForward()
		exprTerm, err := parser.parseExpressionTerm()
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
		exprTerms = append(exprTerms, exprTerm)
	}
	return buildExpressionsTree(ops, exprTerms), nil
}

func (parser *Parser) matchOp() (OpAst, bool) {
	if !parser.hasRemainTokens() {
		return OpAst{}, false
	}
	token, _ := parser.getCurrentToken()
	op, match := binaryOpTokenMap[token.tp]
	return op, match
}

// parseExpressionTerm parses an operand of a binary operator: a member access
// chain, optionally negated. Negation binds looser than member access, so
// -a.b negates a.b.
func (parser *Parser) parseExpressionTerm() (ast.Expression, error) {
	token, err := parser.getCurrentToken()
	if err != nil {
		return nil, err
	}
	switch token.tp {
	case MinusTP, NotTP:
		parser.stepForward()
		operand, err := parser.parseExpressionTerm()
		if err != nil {
			return nil, err
		}
		op := ast.NegateOp
		if token.tp == NotTP {
			op = ast.NotOp
		}
		return ast.NewUnary(op, operand, token.Position()), nil
	}
	expr, err := parser.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		if _, match := parser.expectToken(DotTP, true); !match {
			return expr, nil
		}
		member, err := parser.parseVarOrCall()
		if err != nil {
			return nil, err
		}
		expr = ast.NewAccess(expr, member)
	}
}

func (parser *Parser) parsePrimary() (ast.Expression, error) {
	token, err := parser.getCurrentToken()
	if err != nil {
		return nil, err
	}
	pos := token.Position()
	switch token.tp {
	case IntegerTP:
		parser.stepForward()
		return ast.NewLiteral(ast.IntLiteral, token.number, pos), nil
	case TrueTP:
		parser.stepForward()
		return ast.NewLiteral(ast.BoolLiteral, 1, pos), nil
	case FalseTP:
		parser.stepForward()
		return ast.NewLiteral(ast.BoolLiteral, 0, pos), nil
	case NullTP:
		parser.stepForward()
		return ast.NewLiteral(ast.NullLiteral, 0, pos), nil
	case SelfTP:
		parser.stepForward()
		return ast.NewVarOrCall(ast.NewRef(ast.SelfName, pos), nil), nil
	case BaseTP:
		parser.stepForward()
		return ast.NewVarOrCall(ast.NewRef(ast.BaseName, pos), nil), nil
	case NewTP:
		parser.stepForward()
		class, err := parser.parseIdentifier()
		if err != nil {
			return nil, err
		}
		return ast.NewNew(ast.NewClassRef(class.Name, class.Pos), pos), nil
	case LeftParentThesesTP:
		return parser.parseSubExpression()
	case IdentifierTP:
		return parser.parseVarOrCall()
	default:
		return nil, parser.makeError(true)
	}
}

func (parser *Parser) parseSubExpression() (ast.Expression, error) {
	parser.stepForward()
	expr, err := parser.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, match := parser.expectToken(RightParentThesesTP, true); !match {
		return nil, parser.makeError(true)
	}
	return expr, nil
}

// ident ['(' [expr {',' expr}] ')']
func (parser *Parser) parseVarOrCall() (*ast.VarOrCall, error) {
	name, err := parser.parseIdentifier()
	if err != nil {
		return nil, err
	}
	var args []ast.Expression
	if _, match := parser.expectToken(LeftParentThesesTP, true); match {
		if args, err = parser.parseArguments(); err != nil {
			return nil, err
		}
	}
	return ast.NewVarOrCall(ast.NewRef(name.Name, name.Pos), args), nil
}

// The opening parenthesis is already consumed.
func (parser *Parser) parseArguments() (args []ast.Expression, err error) {
	if _, match := parser.expectToken(RightParentThesesTP, true); match {
		return nil, nil
	}
	for {
		arg, err := parser.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if _, match := parser.expectToken(CommaTP, true); !match {
			break
		}
	}
	if _, match := parser.expectToken(RightParentThesesTP, true); !match {
		return nil, parser.makeError(true)
	}
	return args, nil
}
