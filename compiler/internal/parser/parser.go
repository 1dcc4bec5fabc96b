// Package parser turns OOPS source text into the syntax tree of package ast.
//
// The grammar, keywords upper case:
//
//	program    = { class }
//	class      = CLASS ident [EXTENDS ident] IS { member } END CLASS
//	member     = varDecl ';' | METHOD ident ['(' [varDecl {';' varDecl}] ')'] [':' ident] IS body
//	varDecl    = ident {',' ident} ':' ident
//	body       = { varDecl ';' } BEGIN statements END METHOD
//	statement  = IF expr THEN statements {ELSEIF expr THEN statements} [ELSE statements] END IF
//	           | WHILE expr DO statements END WHILE
//	           | TRY statements {CATCH number DO statements} END TRY
//	           | READ expr ';' | WRITE expr ';' | RETURN [expr] ';' | THROW expr ';'
//	           | expr [':=' expr] ';'
package parser

import (
	"io"

	"github.com/tindzk/oops/compiler/internal/ast"
	"github.com/tindzk/oops/compiler/internal/source"
)

type Parser struct {
	currentTokenPos int
	currentTokens   []*Token
}

func NewParser() *Parser {
	return &Parser{}
}

// Parse tokenizes rd and parses every class declared in it.
func (parser *Parser) Parse(rd io.Reader) (*ast.Program, error) {
	tokenizer := &Tokenizer{}
	tokens, err := tokenizer.Tokenize(rd)
	if err != nil {
		return nil, err
	}
	return parser.ParseTokens(tokens)
}

func (parser *Parser) ParseTokens(tokens []*Token) (*ast.Program, error) {
	parser.reset()
	parser.currentTokens = tokens
	program := &ast.Program{}
	for parser.hasRemainTokens() {
		class, err := parser.parseClassDeclaration()
		if err != nil {
			return nil, err
		}
		program.Classes = append(program.Classes, class)
	}
	return program, nil
}

func (parser *Parser) reset() {
	parser.currentTokenPos = 0
	parser.currentTokens = nil
}

// CLASS ident [EXTENDS ident] IS { member } END CLASS
func (parser *Parser) parseClassDeclaration() (*ast.ClassSymbol, error) {
	if _, match := parser.expectToken(ClassTP, true); !match {
		return nil, parser.makeError(true)
	}
	name, err := parser.parseIdentifier()
	if err != nil {
		return nil, err
	}
	var base *ast.ClassRef
	if _, match := parser.expectToken(ExtendsTP, true); match {
		baseName, err := parser.parseIdentifier()
		if err != nil {
			return nil, err
		}
		base = ast.NewClassRef(baseName.Name, baseName.Pos)
	}
	class := ast.NewClass(name, base)
	if _, match := parser.expectToken(IsTP, true); !match {
		return nil, parser.makeError(true)
	}
	for {
		if _, match := parser.expectToken(EndTP, false); match || !parser.hasRemainTokens() {
			break
		}
		if err := parser.parseMember(class); err != nil {
			return nil, err
		}
	}
	if !parser.expectTokens(EndTP, ClassTP) {
		return nil, parser.makeError(true)
	}
	return class, nil
}

func (parser *Parser) parseMember(class *ast.ClassSymbol) error {
	if _, match := parser.expectToken(MethodTP, false); match {
		method, err := parser.parseMethodDeclaration()
		if err != nil {
			return err
		}
		class.Methods = append(class.Methods, method)
		return nil
	}
	attributes, err := parser.parseVariableDeclaration(ast.Attribute)
	if err != nil {
		return err
	}
	if _, match := parser.expectToken(SemiColonTP, true); !match {
		return parser.makeError(true)
	}
	class.Attributes = append(class.Attributes, attributes...)
	return nil
}

// ident {',' ident} ':' ident
func (parser *Parser) parseVariableDeclaration(kind ast.VariableKind) ([]*ast.VariableSymbol, error) {
	var names []source.Ident
	for {
		name, err := parser.parseIdentifier()
		if err != nil {
			return nil, err
		}
		names = append(names, name)
		if _, match := parser.expectToken(CommaTP, true); !match {
			break
		}
	}
	if _, match := parser.expectToken(ColonTP, true); !match {
		return nil, parser.makeError(true)
	}
	typeName, err := parser.parseIdentifier()
	if err != nil {
		return nil, err
	}
	vars := make([]*ast.VariableSymbol, 0, len(names))
	for _, name := range names {
		vars = append(vars, ast.NewVariable(name, typeName, kind))
	}
	return vars, nil
}

// METHOD ident ['(' [varDecl {';' varDecl}] ')'] [':' ident] IS body
func (parser *Parser) parseMethodDeclaration() (*ast.MethodSymbol, error) {
	parser.stepForward()
	name, err := parser.parseIdentifier()
	if err != nil {
		return nil, err
	}
	method := ast.NewMethod(name)
	if _, match := parser.expectToken(LeftParentThesesTP, true); match {
		if method.Parameters, err = parser.parseParamList(); err != nil {
			return nil, err
		}
	}
	if _, match := parser.expectToken(ColonTP, true); match {
		returnType, err := parser.parseIdentifier()
		if err != nil {
			return nil, err
		}
		method.ReturnRef = ast.NewClassRef(returnType.Name, returnType.Pos)
	}
	if _, match := parser.expectToken(IsTP, true); !match {
		return nil, parser.makeError(true)
	}
	for {
		if _, match := parser.expectToken(IdentifierTP, false); !match {
			break
		}
		locals, err := parser.parseVariableDeclaration(ast.Local)
		if err != nil {
			return nil, err
		}
		if _, match := parser.expectToken(SemiColonTP, true); !match {
			return nil, parser.makeError(true)
		}
		method.Locals = append(method.Locals, locals...)
	}
	if _, match := parser.expectToken(BeginTP, true); !match {
		return nil, parser.makeError(true)
	}
	if method.Statements, err = parser.parseStatements(EndTP); err != nil {
		return nil, err
	}
	if !parser.expectTokens(EndTP, MethodTP) {
		return nil, parser.makeError(true)
	}
	return method, nil
}

// The opening parenthesis is already consumed.
func (parser *Parser) parseParamList() (params []*ast.VariableSymbol, err error) {
	if _, match := parser.expectToken(RightParentThesesTP, true); match {
		return nil, nil
	}
	for {
		vars, err := parser.parseVariableDeclaration(ast.Parameter)
		if err != nil {
			return nil, err
		}
		params = append(params, vars...)
		if _, match := parser.expectToken(SemiColonTP, true); !match {
			break
		}
	}
	if _, match := parser.expectToken(RightParentThesesTP, true); !match {
		return nil, parser.makeError(true)
	}
	return params, nil
}

func (parser *Parser) parseIdentifier() (source.Ident, error) {
	token, match := parser.expectToken(IdentifierTP, true)
	if !match {
		return source.Ident{}, parser.makeError(true)
	}
	return source.NewIdent(token.content, token.Position()), nil
}

func (parser *Parser) getCurrentToken() (*Token, error) {
	if !parser.hasRemainTokens() {
		return nil, parser.makeError(true)
	}
	return parser.currentTokens[parser.currentTokenPos], nil
}

func (parser *Parser) stepForward() {
	parser.currentTokenPos++
}

func (parser *Parser) hasRemainTokens() bool {
	return parser.currentTokenPos < len(parser.currentTokens)
}

// parseStatements parses statements until one of terminators is the current token.
// The terminator itself is left for the caller.
func (parser *Parser) parseStatements(terminators ...TokenType) (stmts []ast.Statement, err error) {
	for {
		token, err := parser.getCurrentToken()
		if err != nil {
			return nil, err
		}
		for _, tp := range terminators {
			if token.tp == tp {
				return stmts, nil
			}
		}
		stmt, err := parser.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
}

func (parser *Parser) parseStatement() (ast.Statement, error) {
	token, err := parser.getCurrentToken()
	if err != nil {
		return nil, err
	}
	switch token.tp {
	case IfTP:
		return parser.parseIfStatement()
	case WhileTP:
		return parser.parseWhileStatement()
	case TryTP:
		return parser.parseTryStatement()
	case ReadTP, WriteTP, ThrowTP:
		return parser.parseOperandStatement()
	case ReturnTP:
		return parser.parseReturnStatement()
	default:
		return parser.parseAssignmentOrCallStatement()
	}
}

// IF expr THEN statements {ELSEIF expr THEN statements} [ELSE statements] END IF
func (parser *Parser) parseIfStatement() (ast.Statement, error) {
	token, _ := parser.getCurrentToken()
	parser.stepForward()
	cond, then, err := parser.parseConditionalBlock(ThenTP, ElseIfTP, ElseTP, EndTP)
	if err != nil {
		return nil, err
	}
	stmt := ast.NewIf(cond, then, token.Position())
	for {
		if _, match := parser.expectToken(ElseIfTP, true); !match {
			break
		}
		cond, body, err := parser.parseConditionalBlock(ThenTP, ElseIfTP, ElseTP, EndTP)
		if err != nil {
			return nil, err
		}
		stmt.ElseIfs = append(stmt.ElseIfs, &ast.ElseIf{Cond: cond, Body: body})
	}
	if _, match := parser.expectToken(ElseTP, true); match {
		if stmt.Else, err = parser.parseStatements(EndTP); err != nil {
			return nil, err
		}
	}
	if !parser.expectTokens(EndTP, IfTP) {
		return nil, parser.makeError(true)
	}
	return stmt, nil
}

// parseConditionalBlock parses expr <keyword> statements, stopping at terminators.
func (parser *Parser) parseConditionalBlock(keyword TokenType, terminators ...TokenType) (ast.Expression, []ast.Statement, error) {
	cond, err := parser.parseExpression()
	if err != nil {
		return nil, nil, err
	}
	if _, match := parser.expectToken(keyword, true); !match {
		return nil, nil, parser.makeError(true)
	}
	body, err := parser.parseStatements(terminators...)
	if err != nil {
		return nil, nil, err
	}
	return cond, body, nil
}

// WHILE expr DO statements END WHILE
func (parser *Parser) parseWhileStatement() (ast.Statement, error) {
	token, _ := parser.getCurrentToken()
	parser.stepForward()
	cond, body, err := parser.parseConditionalBlock(DoTP, EndTP)
	if err != nil {
		return nil, err
	}
	if !parser.expectTokens(EndTP, WhileTP) {
		return nil, parser.makeError(true)
	}
	return ast.NewWhile(cond, body, token.Position()), nil
}

// TRY statements {CATCH number DO statements} END TRY
//
// A TRY without catch blocks is accepted here and rejected by the analyzer.
func (parser *Parser) parseTryStatement() (ast.Statement, error) {
	token, _ := parser.getCurrentToken()
	parser.stepForward()
	body, err := parser.parseStatements(CatchTP, EndTP)
	if err != nil {
		return nil, err
	}
	stmt := ast.NewTry(body, token.Position())
	for {
		if _, match := parser.expectToken(CatchTP, true); !match {
			break
		}
		code, match := parser.expectToken(IntegerTP, true)
		if !match {
			return nil, parser.makeError(true)
		}
		if _, match := parser.expectToken(DoTP, true); !match {
			return nil, parser.makeError(true)
		}
		catchBody, err := parser.parseStatements(CatchTP, EndTP)
		if err != nil {
			return nil, err
		}
		stmt.Catches = append(stmt.Catches, &ast.Catch{
			Code: ast.NewLiteral(ast.IntLiteral, code.number, code.Position()),
			Body: catchBody,
		})
	}
	if !parser.expectTokens(EndTP, TryTP) {
		return nil, parser.makeError(true)
	}
	return stmt, nil
}

// READ expr ';' | WRITE expr ';' | THROW expr ';'
func (parser *Parser) parseOperandStatement() (ast.Statement, error) {
	token, _ := parser.getCurrentToken()
	parser.stepForward()
	operand, err := parser.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, match := parser.expectToken(SemiColonTP, true); !match {
		return nil, parser.makeError(true)
	}
	switch token.tp {
	case ReadTP:
		return ast.NewRead(operand, token.Position()), nil
	case WriteTP:
		return ast.NewWrite(operand, token.Position()), nil
	default:
		return ast.NewThrow(operand, token.Position()), nil
	}
}

// RETURN [expr] ';'
func (parser *Parser) parseReturnStatement() (ast.Statement, error) {
	token, _ := parser.getCurrentToken()
	parser.stepForward()
	if _, match := parser.expectToken(SemiColonTP, true); match {
		return ast.NewReturn(nil, token.Position()), nil
	}
	value, err := parser.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, match := parser.expectToken(SemiColonTP, true); !match {
		return nil, parser.makeError(true)
	}
	return ast.NewReturn(value, token.Position()), nil
}

// expr [':=' expr] ';'
func (parser *Parser) parseAssignmentOrCallStatement() (ast.Statement, error) {
	left, err := parser.parseExpression()
	if err != nil {
		return nil, err
	}
	var stmt ast.Statement
	if _, match := parser.expectToken(BecomesTP, true); match {
		right, err := parser.parseExpression()
		if err != nil {
			return nil, err
		}
		stmt = ast.NewAssignment(left, right)
	} else {
		stmt = ast.NewCall(left)
	}
	if _, match := parser.expectToken(SemiColonTP, true); !match {
		return nil, parser.makeError(true)
	}
	return stmt, nil
}

// expectTokens consumes the given token sequence and reports whether it matched.
func (parser *Parser) expectTokens(tps ...TokenType) bool {
	for _, tp := range tps {
		if _, match := parser.expectToken(tp, true); !match {
			return false
		}
	}
	return true
}

func (parser *Parser) expectToken(expectedTokenTp TokenType, walk bool) (*Token, bool) {
	if parser.currentTokenPos >= len(parser.currentTokens) || parser.currentTokens[parser.currentTokenPos].tp !=
		expectedTokenTp {
		return nil, false
	}
	token := parser.currentTokens[parser.currentTokenPos]
	if walk {
		parser.currentTokenPos++
	}
	return token, true
}

// makeError reports a syntax error at the current token, or at the previous one
// when useCurrentPos is false.
func (parser *Parser) makeError(useCurrentPos bool) error {
	currentPos := parser.currentTokenPos
	if !useCurrentPos {
		currentPos--
	}
	if currentPos < 0 || currentPos >= len(parser.currentTokens) {
		var pos source.Position
		if n := len(parser.currentTokens); n > 0 {
			pos = parser.currentTokens[n-1].Position()
		}
		return source.Errorf(source.SyntaxError, pos, "Unexpected end of file.")
	}
	currentToken := parser.currentTokens[currentPos]
	return source.Errorf(source.SyntaxError, currentToken.Position(), "Syntax error near %s.", currentToken.content)
}
