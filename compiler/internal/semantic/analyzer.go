// Package semantic type-checks a parsed program in two passes.
//
// The definition pass resolves every signature: attribute, parameter, local and
// return types, plus the stack offsets of a method's frame. It completes for all
// classes before the reference pass starts, so method bodies may refer to any
// class. The reference pass resolves every identifier in the method bodies,
// checks the types and replaces nodes wherever a conversion between primitive
// values and objects is needed. The first error aborts the analysis.
package semantic

import (
	"github.com/tindzk/oops/compiler/internal/ast"
	"github.com/tindzk/oops/compiler/internal/hierarchy"
	"github.com/tindzk/oops/compiler/internal/scope"
	"github.com/tindzk/oops/compiler/internal/source"
	"github.com/tindzk/oops/compiler/internal/termination"
)

type Options struct {
	EntryClass  string
	EntryMethod string
}

func DefaultOptions() Options {
	return Options{EntryClass: "Main", EntryMethod: "main"}
}

// Resolution records one identifier and the declaration it was bound to.
type Resolution struct {
	Name     string
	Position source.Position
	Kind     string
	Declared source.Position
}

type Result struct {
	Types *ast.Types
	// Classes holds the predeclared and user classes, every base before its
	// subclasses.
	Classes []*ast.ClassSymbol
	// Init instantiates the entry class and calls its entry method.
	Init        []ast.Statement
	Resolutions []Resolution
}

type analyzer struct {
	types       *ast.Types
	global      *scope.Scope
	scope       *scope.Scope
	method      *ast.MethodSymbol
	resolutions []Resolution
}

// Analyze checks program and returns the analyzed classes. The parsed tree is
// modified in place: references are bound and expressions replaced by their
// converted forms.
func Analyze(program *ast.Program, opts Options) (*Result, error) {
	a := &analyzer{types: ast.NewTypes(), global: scope.New()}
	return a.analyze(program, opts)
}

// analyze leaves the global scope as empty as it found it on every return.
func (a *analyzer) analyze(program *ast.Program, opts Options) (*Result, error) {
	classes := append(a.types.Predeclared(), program.Classes...)

	a.global.Enter()
	defer a.global.Leave()
	for _, c := range classes {
		if err := a.global.Add(c); err != nil {
			return nil, err
		}
	}
	ordered, err := hierarchy.Resolve(a.global, classes)
	if err != nil {
		return nil, err
	}

	for _, c := range ordered {
		if err := a.defineClass(c); err != nil {
			return nil, err
		}
	}
	init, err := a.entryPoint(opts)
	if err != nil {
		return nil, err
	}
	for _, c := range ordered {
		if err := a.checkClass(c); err != nil {
			return nil, err
		}
	}
	a.scope = a.global.Clone()
	for i, stmt := range init {
		if init[i], err = a.statement(stmt); err != nil {
			return nil, err
		}
	}
	a.scope = nil

	return &Result{Types: a.types, Classes: ordered, Init: init, Resolutions: a.resolutions}, nil
}

func (a *analyzer) record(id source.Ident, kind string, decl source.Ident) {
	a.resolutions = append(a.resolutions, Resolution{Name: id.Name, Position: id.Pos, Kind: kind, Declared: decl.Pos})
}

// resolveClass binds ref to a class visible from sc. _Void is never declared in
// a scope and only reaches here as the implicit return type.
func (a *analyzer) resolveClass(sc *scope.Scope, ref *ast.ClassRef) error {
	if ref.Class != nil {
		return nil
	}
	if ref.Name() == ast.VoidName {
		ref.Bind(a.types.Void)
		return nil
	}
	tp, err := sc.ResolveType(ref.Ident)
	if err != nil {
		return err
	}
	class, ok := tp.(*ast.ClassSymbol)
	if !ok {
		return source.Errorf(source.NotAType, ref.Ident.Pos, "%s is not a type.", ref.Name())
	}
	ref.Bind(class)
	a.record(ref.Ident, "class", class.Name)
	return nil
}

// defineClass is the definition pass for one class.
func (a *analyzer) defineClass(c *ast.ClassSymbol) error {
	for _, attr := range c.Attributes {
		if err := a.resolveClass(c.Declarations, attr.TypeRef); err != nil {
			return err
		}
	}
	for _, m := range c.Methods {
		if err := a.defineMethod(c, m); err != nil {
			return err
		}
	}
	return nil
}

// defineMethod assigns the frame layout: parameter i of P sits at -(2+P-1-i),
// below the return address, SELF at -(2+P) and locals at 1..L.
func (a *analyzer) defineMethod(c *ast.ClassSymbol, m *ast.MethodSymbol) error {
	if err := a.resolveClass(c.Declarations, m.ReturnRef); err != nil {
		return err
	}
	p := len(m.Parameters)
	for i, param := range m.Parameters {
		if err := a.resolveClass(c.Declarations, param.TypeRef); err != nil {
			return err
		}
		param.Kind = ast.Parameter
		param.Offset = -(2 + p - 1 - i)
	}
	for i, local := range m.Locals {
		if err := a.resolveClass(c.Declarations, local.TypeRef); err != nil {
			return err
		}
		local.Kind = ast.Local
		local.Offset = i + 1
	}

	m.Self = ast.NewVariable(source.NewIdent(ast.SelfName, m.Name.Pos), c.Name, ast.Parameter)
	m.Self.TypeRef.Bind(c)
	m.Self.Offset = -(2 + p)
	if base := c.Base(); base != nil {
		m.Base = ast.NewVariable(source.NewIdent(ast.BaseName, m.Name.Pos), base.Name, ast.Parameter)
		m.Base.TypeRef.Bind(base)
		m.Base.Offset = m.Self.Offset
	}
	return nil
}

// entryPoint builds the startup statement NEW <class>.<method>, once the entry
// method has been checked to take no parameters and return nothing.
func (a *analyzer) entryPoint(opts Options) ([]ast.Statement, error) {
	tp, err := a.global.ResolveType(source.NewIdent(opts.EntryClass, source.Position{}))
	if err != nil {
		return nil, err
	}
	class, ok := tp.(*ast.ClassSymbol)
	if !ok {
		return nil, source.Errorf(source.NotAType, source.Position{}, "%s is not a type.", opts.EntryClass)
	}
	m := class.LookupMethod(opts.EntryMethod)
	if m == nil {
		return nil, source.Errorf(source.UndeclaredName, class.Name.Pos, "Undeclared identifier %s.", opts.EntryMethod)
	}
	if len(m.Parameters) != 0 || m.ReturnType() != a.types.Void {
		return nil, source.Errorf(source.InvalidEntryPoint, m.Name.Pos,
			"Method %s.%s must neither take parameters nor return a value.", opts.EntryClass, opts.EntryMethod)
	}
	call := ast.NewAccess(
		ast.NewNew(ast.NewClassRef(opts.EntryClass, source.Position{}), source.Position{}),
		ast.NewVarOrCall(ast.NewRef(opts.EntryMethod, source.Position{}), nil),
	)
	return []ast.Statement{ast.NewCall(call)}, nil
}

// checkClass is the reference pass for one class.
func (a *analyzer) checkClass(c *ast.ClassSymbol) error {
	for _, m := range c.Methods {
		if err := a.checkMethod(m); err != nil {
			return err
		}
	}
	return nil
}

func (a *analyzer) checkMethod(m *ast.MethodSymbol) error {
	if m.ReturnType() != a.types.Void && !termination.Terminates(m.Statements) {
		return source.Errorf(source.MissingReturn, m.ReturnRef.Ident.Pos,
			"Method needs a return statement that is always reachable.")
	}

	a.method = m
	a.scope = m.Owner.Declarations.Clone()
	a.scope.Enter()
	defer func() {
		a.scope.Leave()
		a.scope, a.method = nil, nil
	}()

	if err := a.scope.Add(m.Self); err != nil {
		return err
	}
	if m.Base != nil {
		if err := a.scope.Add(m.Base); err != nil {
			return err
		}
	}
	for _, param := range m.Parameters {
		if err := a.scope.Add(param); err != nil {
			return err
		}
	}
	for _, local := range m.Locals {
		if err := a.scope.Add(local); err != nil {
			return err
		}
	}
	stmts, err := a.statements(m.Statements)
	if err != nil {
		return err
	}
	m.Statements = stmts
	return nil
}
