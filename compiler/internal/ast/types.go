package ast

import "github.com/tindzk/oops/compiler/internal/source"

const (
	VoidName    = "_Void"
	NullName    = "_Null"
	IntName     = "_Integer"
	BoolName    = "_Boolean"
	ObjectName  = "Object"
	IntegerName = "Integer"
	BooleanName = "Boolean"
	ValueName   = "_value"
	SelfName    = "_self"
	BaseName    = "_base"
)

// Types holds the predeclared classes of one compilation. The pseudo types are
// never registered in a scope; the three real classes are.
type Types struct {
	Void    *ClassSymbol
	Null    *ClassSymbol
	Int     *ClassSymbol
	Bool    *ClassSymbol
	Object  *ClassSymbol
	Integer *ClassSymbol
	Boolean *ClassSymbol
}

func NewTypes() *Types {
	pseudo := func(name string, kind PseudoKind) *ClassSymbol {
		c := NewClass(source.NewIdent(name, source.Position{}), nil)
		c.Pseudo = kind
		return c
	}
	types := &Types{
		Void:   pseudo(VoidName, VoidPseudo),
		Null:   pseudo(NullName, NullPseudo),
		Int:    pseudo(IntName, IntPseudo),
		Bool:   pseudo(BoolName, BoolPseudo),
		Object: NewClass(source.NewIdent(ObjectName, source.Position{}), nil),
	}
	types.Integer = types.wrapper(IntegerName, types.Int)
	types.Boolean = types.wrapper(BooleanName, types.Bool)
	return types
}

func (types *Types) wrapper(name string, primitive *ClassSymbol) *ClassSymbol {
	c := NewClass(source.NewIdent(name, source.Position{}), NewClassRef(ObjectName, source.Position{}))
	value := NewVariable(source.NewIdent(ValueName, source.Position{}), primitive.Name, Attribute)
	value.TypeRef.Bind(primitive)
	c.Attributes = append(c.Attributes, value)
	return c
}

// Predeclared returns the real classes every program starts with.
func (types *Types) Predeclared() []*ClassSymbol {
	return []*ClassSymbol{types.Object, types.Integer, types.Boolean}
}

// WrapperOf maps a primitive pseudo type to its boxing class.
func (types *Types) WrapperOf(c *ClassSymbol) *ClassSymbol {
	switch c.Pseudo {
	case IntPseudo:
		return types.Integer
	case BoolPseudo:
		return types.Boolean
	}
	return nil
}

// PrimitiveOf maps a boxing class back to its primitive pseudo type.
func (types *Types) PrimitiveOf(c *ClassSymbol) *ClassSymbol {
	switch c {
	case types.Integer:
		return types.Int
	case types.Boolean:
		return types.Bool
	}
	return nil
}

// LiteralType returns the pseudo type of a literal kind.
func (types *Types) LiteralType(kind LiteralKind) *ClassSymbol {
	switch kind {
	case BoolLiteral:
		return types.Bool
	case NullLiteral:
		return types.Null
	default:
		return types.Int
	}
}
