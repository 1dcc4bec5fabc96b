// Package source holds source positions, identifiers and the compile error type
// shared by every phase of the compiler.
package source

import "fmt"

// Position is a 1-based line/column pair. The zero value means "no position".
type Position struct {
	Line   int
	Column int
}

func (pos Position) IsValid() bool {
	return pos.Line > 0
}

func (pos Position) String() string {
	return fmt.Sprintf("line %d, column %d", pos.Line, pos.Column)
}

type Ident struct {
	Name string
	Pos  Position
}

func NewIdent(name string, pos Position) Ident {
	return Ident{Name: name, Pos: pos}
}

type ErrorKind int

const (
	SyntaxError ErrorKind = iota
	DuplicateDeclaration
	UndeclaredName
	NotAType
	NotAVariableOrMethod
	CyclicHierarchy
	OverrideSignatureMismatch
	AttributeShadowsMethod
	TypeMismatch
	ArgumentCountMismatch
	ArgumentTypeMismatch
	LValueExpected
	MissingReturn
	UnexpectedReturnValue
	MissingReturnValue
	MissingCatchBlock
	InvalidEntryPoint
)

var errorKindNames = map[ErrorKind]string{
	SyntaxError:               "SyntaxError",
	DuplicateDeclaration:      "DuplicateDeclaration",
	UndeclaredName:            "UndeclaredName",
	NotAType:                  "NotAType",
	NotAVariableOrMethod:      "NotAVariableOrMethod",
	CyclicHierarchy:           "CyclicHierarchy",
	OverrideSignatureMismatch: "OverrideSignatureMismatch",
	AttributeShadowsMethod:    "AttributeShadowsMethod",
	TypeMismatch:              "TypeMismatch",
	ArgumentCountMismatch:     "ArgumentCountMismatch",
	ArgumentTypeMismatch:      "ArgumentTypeMismatch",
	LValueExpected:            "LValueExpected",
	MissingReturn:             "MissingReturn",
	UnexpectedReturnValue:     "UnexpectedReturnValue",
	MissingReturnValue:        "MissingReturnValue",
	MissingCatchBlock:         "MissingCatchBlock",
	InvalidEntryPoint:         "InvalidEntryPoint",
}

func (kind ErrorKind) String() string {
	name, ok := errorKindNames[kind]
	if !ok {
		return fmt.Sprintf("ErrorKind(%d)", int(kind))
	}
	return name
}

// CompileError is the single error type raised by the front end and the analyzer.
// The first one raised aborts the compilation.
type CompileError struct {
	Kind     ErrorKind
	Message  string
	Position Position
}

func (err *CompileError) Error() string {
	if !err.Position.IsValid() {
		return err.Message
	}
	return fmt.Sprintf("%s: %s", err.Position, err.Message)
}

// Errorf builds a CompileError. Pass the zero Position when no location is known.
func Errorf(kind ErrorKind, pos Position, format string, args ...interface{}) error {
	return &CompileError{Kind: kind, Message: fmt.Sprintf(format, args...), Position: pos}
}

// KindOf returns the kind of err if it is a CompileError.
func KindOf(err error) (ErrorKind, bool) {
	compileErr, ok := err.(*CompileError)
	if !ok {
		return 0, false
	}
	return compileErr.Kind, true
}
