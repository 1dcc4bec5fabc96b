// Package hierarchy links classes to their base classes and lays them out.
//
// Resolve runs once per program, after every class has been registered in the
// global scope and before any signature is resolved. It binds base references,
// rejects cyclic hierarchies, orders the classes base first and, in that order,
// assigns attribute offsets, VMT slots and each class's member scope snapshot.
package hierarchy

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/tindzk/oops/compiler/internal/ast"
	"github.com/tindzk/oops/compiler/internal/scope"
	"github.com/tindzk/oops/compiler/internal/source"
)

const cycleMessage = "Class hierarchy is not devoid of cycles."

type graph struct {
	classes []*ast.ClassSymbol
	index   map[*ast.ClassSymbol]uint
	// children[i] lists the classes extending classes[i] in declaration order.
	children [][]uint
	roots    []uint
}

// Resolve returns the classes ordered so that every base precedes its
// subclasses. Classes without EXTENDS implicitly extend Object.
func Resolve(global *scope.Scope, classes []*ast.ClassSymbol) ([]*ast.ClassSymbol, error) {
	if err := bindBases(global, classes); err != nil {
		return nil, err
	}
	g := newGraph(classes)
	if err := g.checkCycles(); err != nil {
		return nil, err
	}
	ordered := g.baseFirst()
	for _, c := range ordered {
		if err := layout(global, c); err != nil {
			return nil, err
		}
	}
	return ordered, nil
}

func bindBases(global *scope.Scope, classes []*ast.ClassSymbol) error {
	for _, c := range classes {
		if c.BaseRef == nil {
			if c.Name.Name == ast.ObjectName {
				continue
			}
			c.BaseRef = ast.NewClassRef(ast.ObjectName, c.Name.Pos)
		}
		if c.BaseRef.Class != nil {
			continue
		}
		tp, err := global.ResolveType(c.BaseRef.Ident)
		if err != nil {
			return err
		}
		base, ok := tp.(*ast.ClassSymbol)
		if !ok || base.Pseudo != ast.NotPseudo {
			return source.Errorf(source.NotAType, c.BaseRef.Ident.Pos, "%s is not a type.", c.BaseRef.Name())
		}
		c.BaseRef.Bind(base)
	}
	return nil
}

func newGraph(classes []*ast.ClassSymbol) *graph {
	g := &graph{
		classes:  classes,
		index:    make(map[*ast.ClassSymbol]uint, len(classes)),
		children: make([][]uint, len(classes)),
	}
	for i, c := range classes {
		g.index[c] = uint(i)
	}
	for i, c := range classes {
		base, ok := g.index[c.Base()]
		if !ok {
			g.roots = append(g.roots, uint(i))
			continue
		}
		g.children[base] = append(g.children[base], uint(i))
	}
	return g
}

// checkCycles follows every class's base chain. A chain that runs into a class
// already on the current path closes a cycle, which is reported at that class.
func (g *graph) checkCycles() error {
	n := uint(len(g.classes))
	onPath := bitset.New(n)
	done := bitset.New(n)
	for i := range g.classes {
		cur, ok := uint(i), true
		for ok && !done.Test(cur) {
			if onPath.Test(cur) {
				c := g.classes[cur]
				return source.Errorf(source.CyclicHierarchy, c.Name.Pos, cycleMessage)
			}
			onPath.Set(cur)
			cur, ok = g.index[g.classes[cur].Base()]
		}
		done.InPlaceUnion(onPath)
		onPath.ClearAll()
	}
	return nil
}

// baseFirst walks the inheritance tree from the roots in pre-order.
func (g *graph) baseFirst() []*ast.ClassSymbol {
	ordered := make([]*ast.ClassSymbol, 0, len(g.classes))
	var visit func(i uint)
	visit = func(i uint) {
		ordered = append(ordered, g.classes[i])
		for _, child := range g.children[i] {
			visit(child)
		}
	}
	for _, root := range g.roots {
		visit(root)
	}
	return ordered
}

// layout requires the base class to be laid out already.
func layout(global *scope.Scope, c *ast.ClassSymbol) error {
	base := c.Base()
	size := ast.HeaderSize
	var vmt []*ast.MethodSymbol
	var declarations *scope.Scope
	if base != nil {
		size = base.ObjectSize
		vmt = make([]*ast.MethodSymbol, len(base.VMT), len(base.VMT)+len(c.Methods))
		copy(vmt, base.VMT)
		declarations = base.Declarations.Clone()
	} else {
		declarations = global.Clone()
	}

	declarations.Enter()
	for _, a := range c.Attributes {
		if base != nil && base.LookupMethod(a.Name.Name) != nil {
			return source.Errorf(source.AttributeShadowsMethod, a.Name.Pos,
				"Attribute %s shadows a method of the base class.", a.Name.Name)
		}
		if err := declarations.Add(a); err != nil {
			return err
		}
		a.Offset = size
		size++
	}
	for _, m := range c.Methods {
		m.Owner = c
		if err := declarations.Add(m); err != nil {
			return err
		}
		if base == nil {
			m.VMTIndex = len(vmt)
			vmt = append(vmt, m)
			continue
		}
		if base.LookupAttribute(m.Name.Name) != nil {
			return source.Errorf(source.AttributeShadowsMethod, m.Name.Pos,
				"Method %s shadows an attribute of the base class.", m.Name.Name)
		}
		overridden := base.LookupMethod(m.Name.Name)
		if overridden == nil {
			m.VMTIndex = len(vmt)
			vmt = append(vmt, m)
			continue
		}
		if !m.SignatureEquals(overridden) {
			return source.Errorf(source.OverrideSignatureMismatch, m.Name.Pos,
				"Signature of %s does not match the overridden method in %s.",
				m.Name.Name, overridden.Owner.Name.Name)
		}
		m.VMTIndex = overridden.VMTIndex
		vmt[m.VMTIndex] = m
	}

	c.ObjectSize = size
	c.VMT = vmt
	c.Declarations = declarations.Clone()
	return nil
}
