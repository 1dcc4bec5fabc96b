package hierarchy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tindzk/oops/compiler/internal/ast"
	"github.com/tindzk/oops/compiler/internal/scope"
	"github.com/tindzk/oops/compiler/internal/source"
)

var line = 0

func nextPos() source.Position {
	line++
	return source.Position{Line: line, Column: 1}
}

func class(name, base string, attributes []string, methods ...*ast.MethodSymbol) *ast.ClassSymbol {
	var ref *ast.ClassRef
	if base != "" {
		ref = ast.NewClassRef(base, nextPos())
	}
	c := ast.NewClass(source.NewIdent(name, nextPos()), ref)
	for _, a := range attributes {
		c.Attributes = append(c.Attributes, ast.NewVariable(source.NewIdent(a, nextPos()),
			source.NewIdent(ast.IntegerName, source.Position{}), ast.Attribute))
	}
	c.Methods = methods
	return c
}

func method(name string, ret string, params ...string) *ast.MethodSymbol {
	m := ast.NewMethod(source.NewIdent(name, nextPos()))
	if ret != "" {
		m.ReturnRef = ast.NewClassRef(ret, m.Name.Pos)
	}
	for i, p := range params {
		m.Parameters = append(m.Parameters, ast.NewVariable(source.NewIdent(string(rune('a'+i)), m.Name.Pos),
			source.NewIdent(p, m.Name.Pos), ast.Parameter))
	}
	return m
}

func resolve(classes ...*ast.ClassSymbol) ([]*ast.ClassSymbol, error) {
	types := ast.NewTypes()
	all := append(types.Predeclared(), classes...)
	global := scope.New()
	global.Enter()
	for _, c := range all {
		if err := global.Add(c); err != nil {
			return nil, err
		}
	}
	return Resolve(global, all)
}

func kindOf(t *testing.T, err error) source.ErrorKind {
	require.NotNil(t, err)
	kind, ok := source.KindOf(err)
	require.True(t, ok, err.Error())
	return kind
}

func TestResolve_Layout(t *testing.T) {
	a := class("A", "", []string{"x", "y"})
	b := class("B", "A", []string{"z"})
	c := class("C", "B", nil)
	ordered, err := resolve(c, b, a)
	require.Nil(t, err)

	names := make([]string, 0, len(ordered))
	for _, cls := range ordered {
		names = append(names, cls.Name.Name)
	}
	assert.Equal(t, []string{ast.ObjectName, ast.IntegerName, ast.BooleanName, "A", "B", "C"}, names)

	assert.Equal(t, 1, ordered[0].ObjectSize)
	assert.Equal(t, 2, ordered[1].ObjectSize)
	assert.Equal(t, 1, ordered[1].Attributes[0].Offset)
	assert.Equal(t, ast.ObjectName, a.BaseRef.Name())
	assert.Equal(t, ordered[0], a.Base())

	testData := []struct {
		attribute *ast.VariableSymbol
		offset    int
	}{
		{a.Attributes[0], 1},
		{a.Attributes[1], 2},
		{b.Attributes[0], 3},
	}
	for _, data := range testData {
		assert.Equal(t, data.offset, data.attribute.Offset, data.attribute.Name.Name)
	}
	assert.Equal(t, 3, a.ObjectSize)
	assert.Equal(t, 4, b.ObjectSize)
	assert.Equal(t, 4, c.ObjectSize)
}

func TestResolve_VMT(t *testing.T) {
	af := method("f", "")
	ag := method("g", ast.IntegerName, ast.IntegerName)
	a := class("A", "", nil, af, ag)
	bg := method("g", ast.IntegerName, ast.IntegerName)
	bh := method("h", "")
	b := class("B", "A", nil, bh, bg)
	_, err := resolve(a, b)
	require.Nil(t, err)

	assert.Equal(t, []*ast.MethodSymbol{af, ag}, a.VMT)
	assert.Equal(t, []*ast.MethodSymbol{af, bg, bh}, b.VMT)
	assert.Equal(t, 0, af.VMTIndex)
	assert.Equal(t, 1, ag.VMTIndex)
	assert.Equal(t, ag.VMTIndex, bg.VMTIndex)
	assert.Greater(t, bh.VMTIndex, ag.VMTIndex)
	assert.Equal(t, b, bg.Owner)
	assert.Equal(t, "B_g", b.ResolveAsmMethodName("g"))
	assert.Equal(t, "A_f", b.ResolveAsmMethodName("f"))
}

func TestResolve_Declarations(t *testing.T) {
	a := class("A", "", []string{"x"}, method("f", ""))
	b := class("B", "A", []string{"z"})
	_, err := resolve(a, b)
	require.Nil(t, err)

	for _, name := range []string{"x", "z", "f", "A", ast.ObjectName} {
		_, ok := b.Declarations.Lookup(name)
		assert.True(t, ok, name)
	}
	_, ok := a.Declarations.Lookup("z")
	assert.False(t, ok)
	sym, ok := a.Declarations.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, a.Attributes[0], sym)
}

func TestResolve_Errors(t *testing.T) {
	testData := []struct {
		name    string
		classes func() []*ast.ClassSymbol
		kind    source.ErrorKind
	}{
		{"self cycle", func() []*ast.ClassSymbol {
			return []*ast.ClassSymbol{class("A", "A", nil)}
		}, source.CyclicHierarchy},
		{"two cycle", func() []*ast.ClassSymbol {
			return []*ast.ClassSymbol{class("A", "B", nil), class("B", "A", nil)}
		}, source.CyclicHierarchy},
		{"cycle behind a chain", func() []*ast.ClassSymbol {
			return []*ast.ClassSymbol{class("D", "C", nil), class("C", "B", nil), class("B", "C", nil)}
		}, source.CyclicHierarchy},
		{"undeclared base", func() []*ast.ClassSymbol {
			return []*ast.ClassSymbol{class("A", "Missing", nil)}
		}, source.UndeclaredName},
		{"override mismatch", func() []*ast.ClassSymbol {
			return []*ast.ClassSymbol{
				class("A", "", nil, method("f", ast.IntegerName)),
				class("B", "A", nil, method("f", ast.BooleanName)),
			}
		}, source.OverrideSignatureMismatch},
		{"override parameter mismatch", func() []*ast.ClassSymbol {
			return []*ast.ClassSymbol{
				class("A", "", nil, method("f", "", ast.IntegerName)),
				class("B", "A", nil, method("f", "")),
			}
		}, source.OverrideSignatureMismatch},
		{"attribute shadows method", func() []*ast.ClassSymbol {
			return []*ast.ClassSymbol{
				class("A", "", nil, method("f", "")),
				class("B", "A", []string{"f"}),
			}
		}, source.AttributeShadowsMethod},
		{"method shadows attribute", func() []*ast.ClassSymbol {
			return []*ast.ClassSymbol{
				class("A", "", []string{"f"}),
				class("B", "A", nil, method("f", "")),
			}
		}, source.AttributeShadowsMethod},
		{"duplicate member", func() []*ast.ClassSymbol {
			return []*ast.ClassSymbol{class("A", "", []string{"f"}, method("f", ""))}
		}, source.DuplicateDeclaration},
		{"duplicate class", func() []*ast.ClassSymbol {
			return []*ast.ClassSymbol{class("A", "", nil), class("A", "", nil)}
		}, source.DuplicateDeclaration},
	}
	for _, data := range testData {
		_, err := resolve(data.classes()...)
		assert.Equal(t, data.kind, kindOf(t, err), data.name)
	}
}

func TestResolve_CyclePosition(t *testing.T) {
	a := class("A", "B", nil)
	b := class("B", "A", nil)
	_, err := resolve(a, b)
	require.NotNil(t, err)
	assert.Equal(t, a.Name.Pos.String()+": Class hierarchy is not devoid of cycles.", err.Error())
}

func TestResolve_SubclassKeepsBaseAttributeShadowing(t *testing.T) {
	a := class("A", "", []string{"x"})
	b := class("B", "A", []string{"x"})
	_, err := resolve(a, b)
	require.Nil(t, err)
	assert.Equal(t, 2, b.Attributes[0].Offset)
	sym, ok := b.Declarations.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, b.Attributes[0], sym)
}
