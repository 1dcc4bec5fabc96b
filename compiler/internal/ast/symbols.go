package ast

import (
	"github.com/tindzk/oops/compiler/internal/scope"
	"github.com/tindzk/oops/compiler/internal/source"
)

// HeaderSize is the number of words in front of an object's attributes. The
// header holds the address of the class's VMT.
const HeaderSize = 1

// Symbol is one of *ClassSymbol, *MethodSymbol or *VariableSymbol.
type Symbol interface {
	scope.Symbol
	symbolNode()
}

// Ref is an identifier whose declaration is filled in once by name resolution.
type Ref struct {
	Ident source.Ident
	Decl  Symbol
}

func NewRef(name string, pos source.Position) *Ref {
	return &Ref{Ident: source.NewIdent(name, pos)}
}

// Bind records the declaration. A reference is bound exactly once.
func (ref *Ref) Bind(decl Symbol) {
	if ref.Decl != nil && ref.Decl != decl {
		panic("ast: reference " + ref.Ident.Name + " is already bound")
	}
	ref.Decl = decl
}

// ClassRef is a reference that must resolve to a class.
type ClassRef struct {
	Ident source.Ident
	Class *ClassSymbol
}

func NewClassRef(name string, pos source.Position) *ClassRef {
	return &ClassRef{Ident: source.NewIdent(name, pos)}
}

func (ref *ClassRef) Bind(class *ClassSymbol) {
	if ref.Class != nil && ref.Class != class {
		panic("ast: class reference " + ref.Ident.Name + " is already bound")
	}
	ref.Class = class
}

func (ref *ClassRef) Name() string {
	return ref.Ident.Name
}

type VariableKind int

const (
	Attribute VariableKind = iota
	Parameter
	Local
)

func (kind VariableKind) String() string {
	switch kind {
	case Attribute:
		return "attribute"
	case Parameter:
		return "parameter"
	default:
		return "local"
	}
}

type VariableSymbol struct {
	Name    source.Ident
	TypeRef *ClassRef
	Kind    VariableKind
	// Offset is relative to the object start for attributes and to the frame
	// pointer for parameters and locals.
	Offset int
}

func NewVariable(name source.Ident, typeName source.Ident, kind VariableKind) *VariableSymbol {
	return &VariableSymbol{Name: name, TypeRef: &ClassRef{Ident: typeName}, Kind: kind}
}

func (v *VariableSymbol) Identifier() source.Ident { return v.Name }
func (v *VariableSymbol) symbolNode()              {}

// Type is the resolved type, nil before the definition pass.
func (v *VariableSymbol) Type() *ClassSymbol {
	return v.TypeRef.Class
}

type MethodSymbol struct {
	Name       source.Ident
	Owner      *ClassSymbol
	Parameters []*VariableSymbol
	Locals     []*VariableSymbol
	Statements []Statement
	ReturnRef  *ClassRef
	VMTIndex   int
	// Self and Base share the stack slot below the parameters; Base is typed as
	// the owner's base class and is nil for classes without one.
	Self *VariableSymbol
	Base *VariableSymbol
}

// NewMethod creates a method returning _Void until a return type is set.
func NewMethod(name source.Ident) *MethodSymbol {
	return &MethodSymbol{
		Name:      name,
		ReturnRef: NewClassRef(VoidName, name.Pos),
		VMTIndex:  -1,
	}
}

func (m *MethodSymbol) Identifier() source.Ident { return m.Name }
func (m *MethodSymbol) symbolNode()              {}

func (m *MethodSymbol) ReturnType() *ClassSymbol {
	return m.ReturnRef.Class
}

// FrameSize is the number of stack words the epilogue releases: locals, the saved
// frame pointer, the return address and the parameters.
func (m *MethodSymbol) FrameSize() int {
	return len(m.Locals) + 1 + 1 + len(m.Parameters)
}

// SignatureEquals compares return type and parameter types by name.
func (m *MethodSymbol) SignatureEquals(other *MethodSymbol) bool {
	if m.ReturnRef.Name() != other.ReturnRef.Name() {
		return false
	}
	if len(m.Parameters) != len(other.Parameters) {
		return false
	}
	for i, param := range m.Parameters {
		if param.TypeRef.Name() != other.Parameters[i].TypeRef.Name() {
			return false
		}
	}
	return true
}

// AsmName is the label of the method's code.
func (m *MethodSymbol) AsmName() string {
	return m.Owner.Name.Name + "_" + m.Name.Name
}

type PseudoKind int

const (
	NotPseudo PseudoKind = iota
	VoidPseudo
	NullPseudo
	IntPseudo
	BoolPseudo
)

type ClassSymbol struct {
	Name       source.Ident
	BaseRef    *ClassRef
	Attributes []*VariableSymbol
	Methods    []*MethodSymbol
	ObjectSize int
	// Declarations is the member scope snapshot taken once the class's own
	// members are registered. It is shared and never modified afterwards.
	Declarations *scope.Scope
	Pseudo       PseudoKind
	// VMT is filled by the hierarchy resolver: one entry per slot, overriding
	// methods replacing their base's entry.
	VMT []*MethodSymbol
}

func NewClass(name source.Ident, base *ClassRef) *ClassSymbol {
	return &ClassSymbol{Name: name, BaseRef: base}
}

func (c *ClassSymbol) Identifier() source.Ident { return c.Name }
func (c *ClassSymbol) TypeName() string         { return c.Name.Name }
func (c *ClassSymbol) symbolNode()              {}

// Base is the resolved base class, nil for roots and before resolution.
func (c *ClassSymbol) Base() *ClassSymbol {
	if c.BaseRef == nil {
		return nil
	}
	return c.BaseRef.Class
}

func (c *ClassSymbol) IsPrimitive() bool {
	return c.Pseudo == IntPseudo || c.Pseudo == BoolPseudo
}

// IsA reports whether a value of type c may be used where expected is required.
// The null type fits every class but none of the pseudo types.
func (c *ClassSymbol) IsA(expected *ClassSymbol) bool {
	if c.Pseudo == NullPseudo && expected.Pseudo == NotPseudo {
		return true
	}
	for cmp := c; cmp != nil; cmp = cmp.Base() {
		if cmp == expected {
			return true
		}
	}
	return false
}

// Check returns a TypeMismatch error unless c IsA expected.
func (c *ClassSymbol) Check(expected *ClassSymbol, pos source.Position) error {
	if c.IsA(expected) {
		return nil
	}
	return TypeError(expected, c, pos)
}

func TypeError(expected, given *ClassSymbol, pos source.Position) error {
	return source.Errorf(source.TypeMismatch, pos, "Type mismatch: %s expected, %s given.",
		expected.Name.Name, given.Name.Name)
}

// OwnMethod looks only at methods declared by c itself.
func (c *ClassSymbol) OwnMethod(name string) *MethodSymbol {
	for _, m := range c.Methods {
		if m.Name.Name == name {
			return m
		}
	}
	return nil
}

func (c *ClassSymbol) OwnAttribute(name string) *VariableSymbol {
	for _, a := range c.Attributes {
		if a.Name.Name == name {
			return a
		}
	}
	return nil
}

// LookupMethod walks up the base chain.
func (c *ClassSymbol) LookupMethod(name string) *MethodSymbol {
	for cmp := c; cmp != nil; cmp = cmp.Base() {
		if m := cmp.OwnMethod(name); m != nil {
			return m
		}
	}
	return nil
}

func (c *ClassSymbol) LookupAttribute(name string) *VariableSymbol {
	for cmp := c; cmp != nil; cmp = cmp.Base() {
		if a := cmp.OwnAttribute(name); a != nil {
			return a
		}
	}
	return nil
}

// ResolveAsmMethodName returns the label of the implementation of name that an
// object of class c runs.
func (c *ClassSymbol) ResolveAsmMethodName(name string) string {
	if m := c.LookupMethod(name); m != nil {
		return m.AsmName()
	}
	return ""
}

// Program is the parser's output: the user classes in source order.
type Program struct {
	Classes []*ClassSymbol
}
