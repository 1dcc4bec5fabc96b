package parser

import (
	"bufio"
	"io"
	"strconv"

	"github.com/tindzk/oops/compiler/internal/source"
	"github.com/tindzk/oops/util"
)

// A simple Tokenizer for OOPS.

// OOPS has those elements:
// * KeyWord: upper case words like CLASS, METHOD, BEGIN, END, IF, WHILE, TRY.
// * Symbol: :=, :, ;, ,, ., (, ), =, #, <, <=, >, >=, +, -, *, /.
// * Constant: integer, character ('c', '\n', '\\').
// * Identifier: a letter followed by letters and digits.
// * Comment: { ... } spanning lines, | up to the end of the line.

type TokenType int

const (
	ClassTP             TokenType = iota // CLASS
	IsTP                                 // IS
	ExtendsTP                            // EXTENDS
	MethodTP                             // METHOD
	BeginTP                              // BEGIN
	EndTP                                // END
	ReadTP                               // READ
	WriteTP                              // WRITE
	IfTP                                 // IF
	ThenTP                               // THEN
	ElseTP                               // ELSE
	ElseIfTP                             // ELSEIF
	WhileTP                              // WHILE
	DoTP                                 // DO
	ModTP                                // MOD
	NewTP                                // NEW
	SelfTP                               // SELF
	BaseTP                               // BASE
	NullTP                               // NULL
	TrueTP                               // TRUE
	FalseTP                              // FALSE
	NotTP                                // NOT
	AndTP                                // AND
	OrTP                                 // OR
	ReturnTP                             // RETURN
	ThrowTP                              // THROW
	TryTP                                // TRY
	CatchTP                              // CATCH
	BecomesTP                            // :=
	ColonTP                              // :
	SemiColonTP                          // ;
	CommaTP                              // ,
	DotTP                                // .
	LeftParentThesesTP                   // (
	RightParentThesesTP                  // )
	EqualTP                              // =
	NotEqualTP                           // #
	LessTP                               // <
	LessEqualTP                          // <=
	GreaterTP                            // >
	GreaterEqualTP                       // >=
	AddTP                                // +
	MinusTP                              // -
	MultiplyTP                           // *
	DivideTP                             // /
	IntegerTP                            // 42 or 'a'
	IdentifierTP                         // varA
)

// keyWordTokenTPMap is the mapping from identifier to the corresponding TokenTP.
var keyWordTokenTPMap = map[string]TokenType{
	"CLASS":   ClassTP,
	"IS":      IsTP,
	"EXTENDS": ExtendsTP,
	"METHOD":  MethodTP,
	"BEGIN":   BeginTP,
	"END":     EndTP,
	"READ":    ReadTP,
	"WRITE":   WriteTP,
	"IF":      IfTP,
	"THEN":    ThenTP,
	"ELSE":    ElseTP,
	"ELSEIF":  ElseIfTP,
	"WHILE":   WhileTP,
	"DO":      DoTP,
	"MOD":     ModTP,
	"NEW":     NewTP,
	"SELF":    SelfTP,
	"BASE":    BaseTP,
	"NULL":    NullTP,
	"TRUE":    TrueTP,
	"FALSE":   FalseTP,
	"NOT":     NotTP,
	"AND":     AndTP,
	"OR":      OrTP,
	"RETURN":  ReturnTP,
	"THROW":   ThrowTP,
	"TRY":     TryTP,
	"CATCH":   CatchTP,
}

// simpleSymbolTokenTPMap holds the symbols that are never the prefix of a longer one.
var simpleSymbolTokenTPMap = map[string]TokenType{
	";": SemiColonTP,
	",": CommaTP,
	".": DotTP,
	"(": LeftParentThesesTP,
	")": RightParentThesesTP,
	"=": EqualTP,
	"#": NotEqualTP,
	"+": AddTP,
	"-": MinusTP,
	"*": MultiplyTP,
	"/": DivideTP,
}

// twoCharSymbolTokenTPMap maps a symbol followed by '=' to its combined token.
var twoCharSymbolTokenTPMap = map[byte][2]TokenType{
	':': {ColonTP, BecomesTP},
	'<': {LessTP, LessEqualTP},
	'>': {GreaterTP, GreaterEqualTP},
}

type Token struct {
	content  string
	line     int
	startPos int
	endPos   int
	tp       TokenType
	// number is the value of an IntegerTP token.
	number int
}

func (t *Token) Position() source.Position {
	return source.Position{Line: t.line, Column: t.startPos + 1}
}

func (t *Token) Content() string {
	return t.content
}

func (t *Token) Type() TokenType {
	return t.tp
}

type Tokenizer struct {
	currentPos  int
	currentLine int
	// inComment is set while a { comment spans lines.
	inComment bool
	tokens    []*Token
}

func (tokenizer *Tokenizer) Reset() {
	tokenizer.currentPos = 0
	tokenizer.currentLine = 0
	tokenizer.inComment = false
	tokenizer.tokens = nil
}

// getNextToken returns the next token from line, or nil once the line is consumed.
func (tokenizer *Tokenizer) getNextToken(line []byte) (*Token, error) {
	tokenizer.trimSpace(line)
	for tokenizer.hasRemainCharacters(line) && line[tokenizer.currentPos] == '{' {
		tokenizer.inComment = true
		tokenizer.skipComment(line)
		tokenizer.trimSpace(line)
	}
	if !tokenizer.hasRemainCharacters(line) {
		return nil, nil
	}
	switch b := line[tokenizer.currentPos]; {
	case b == '|':
		tokenizer.currentPos = len(line)
		return nil, nil
	case b == ':' || b == '<' || b == '>':
		return tokenizer.tokenTwoCharSymbol(line)
	case b == '\'':
		return tokenizer.tokenCharacter(line)
	case util.IsNumber(b):
		return tokenizer.tokenNumber(line)
	case util.IsLetter(b):
		return tokenizer.toKeywordOrIdentifier(line)
	default:
		if _, ok := simpleSymbolTokenTPMap[string(b)]; ok {
			return tokenizer.tokenSimpleSymbol(line)
		}
		return nil, tokenizer.makeError("Unexpected character: %c (code %d).", b, b)
	}
}

// trimSpace steps forward through line past all continuous space.
func (tokenizer *Tokenizer) trimSpace(line []byte) {
	for tokenizer.currentPos < len(line) && util.IsSpace(line[tokenizer.currentPos]) {
		tokenizer.currentPos++
	}
}

func (tokenizer *Tokenizer) hasRemainCharacters(line []byte) bool {
	return tokenizer.currentPos < len(line)
}

// skipComment consumes line up to and including the closing brace, if any.
func (tokenizer *Tokenizer) skipComment(line []byte) {
	for tokenizer.currentPos < len(line) {
		b := line[tokenizer.currentPos]
		tokenizer.currentPos++
		if b == '}' {
			tokenizer.inComment = false
			return
		}
	}
}

func (tokenizer *Tokenizer) newToken(line []byte, startPos int, tp TokenType) *Token {
	return &Token{
		content:  string(line[startPos:tokenizer.currentPos]),
		line:     tokenizer.currentLine,
		startPos: startPos,
		endPos:   tokenizer.currentPos,
		tp:       tp,
	}
}

func (tokenizer *Tokenizer) tokenSimpleSymbol(line []byte) (*Token, error) {
	startPos := tokenizer.currentPos
	tokenizer.currentPos++
	return tokenizer.newToken(line, startPos, simpleSymbolTokenTPMap[string(line[startPos])]), nil
}

func (tokenizer *Tokenizer) tokenTwoCharSymbol(line []byte) (*Token, error) {
	startPos := tokenizer.currentPos
	tps := twoCharSymbolTokenTPMap[line[startPos]]
	tokenizer.currentPos++
	if tokenizer.hasRemainCharacters(line) && line[tokenizer.currentPos] == '=' {
		tokenizer.currentPos++
		return tokenizer.newToken(line, startPos, tps[1]), nil
	}
	return tokenizer.newToken(line, startPos, tps[0]), nil
}

// tokenCharacter turns a character literal into an integer token holding its code.
func (tokenizer *Tokenizer) tokenCharacter(line []byte) (*Token, error) {
	startPos := tokenizer.currentPos
	tokenizer.currentPos++
	if !tokenizer.hasRemainCharacters(line) {
		return nil, tokenizer.makeError("Character literal not terminated.")
	}
	ch := line[tokenizer.currentPos]
	if ch == '\\' {
		tokenizer.currentPos++
		if !tokenizer.hasRemainCharacters(line) {
			return nil, tokenizer.makeError("Character literal not terminated.")
		}
		switch escaped := line[tokenizer.currentPos]; escaped {
		case 'n':
			ch = '\n'
		case '\\':
			ch = '\\'
		default:
			return nil, tokenizer.makeError("Character literal not allowed: '\\%c (code %d).", escaped, escaped)
		}
	} else if !util.IsPrintable(ch) {
		return nil, tokenizer.makeError("Unknown character in character literal (code %d).", ch)
	}
	tokenizer.currentPos++
	if !tokenizer.hasRemainCharacters(line) || line[tokenizer.currentPos] != '\'' {
		return nil, tokenizer.makeError("Character literal not terminated.")
	}
	tokenizer.currentPos++
	token := tokenizer.newToken(line, startPos, IntegerTP)
	token.number = int(ch)
	return token, nil
}

func (tokenizer *Tokenizer) tokenNumber(line []byte) (*Token, error) {
	// Look forward to find a continuous number.
	startPos := tokenizer.currentPos
	for tokenizer.hasRemainCharacters(line) && util.IsNumber(line[tokenizer.currentPos]) {
		tokenizer.currentPos++
	}
	token := tokenizer.newToken(line, startPos, IntegerTP)
	number, err := strconv.ParseInt(token.content, 10, 32)
	if err != nil {
		tokenizer.currentPos = startPos
		return nil, tokenizer.makeError("Number %s is out of range.", token.content)
	}
	token.number = int(number)
	return token, nil
}

func (tokenizer *Tokenizer) toKeywordOrIdentifier(line []byte) (*Token, error) {
	// Look forward to find continuous letters and digits.
	startPos := tokenizer.currentPos
	for tokenizer.hasRemainCharacters(line) && util.IsLetterOrNumber(line[tokenizer.currentPos]) {
		tokenizer.currentPos++
	}
	token := tokenizer.newToken(line, startPos, IdentifierTP)
	if keyWordTP, isKeyWord := keyWordTokenTPMap[token.content]; isKeyWord {
		token.tp = keyWordTP
	}
	return token, nil
}

func (tokenizer *Tokenizer) makeError(format string, args ...interface{}) error {
	pos := source.Position{Line: tokenizer.currentLine, Column: tokenizer.currentPos + 1}
	return source.Errorf(source.SyntaxError, pos, format, args...)
}

// Tokenize accepts a source rd and tokenizes its content according to the OOPS
// lexical rules. This method is the main method of this tokenizer.
func (tokenizer *Tokenizer) Tokenize(rd io.Reader) ([]*Token, error) {
	bfReader := bufio.NewReader(rd)
	tokenizer.Reset()
	for {
		tokenizer.currentLine++
		tokenizer.currentPos = 0
		line, readErr := bfReader.ReadBytes('\n')
		if readErr != nil && readErr != io.EOF {
			return nil, readErr
		}
		if err := tokenizer.parseLine(line); err != nil {
			return nil, err
		}
		if readErr == io.EOF {
			break
		}
	}
	if tokenizer.inComment {
		return nil, tokenizer.makeError("Unexpected end of file in comment.")
	}
	return tokenizer.tokens, nil
}

func (tokenizer *Tokenizer) parseLine(line []byte) error {
	if tokenizer.inComment {
		tokenizer.skipComment(line)
	}
	for {
		token, err := tokenizer.getNextToken(line)
		if err != nil {
			return err
		}
		if token == nil {
			return nil
		}
		tokenizer.tokens = append(tokenizer.tokens, token)
	}
}
