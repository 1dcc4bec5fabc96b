// Package scope implements the nested, shadowing symbol table used by every
// analysis phase.
//
// A Scope is a stack of levels. Clone shares the existing levels with the copy
// and marks them read-only on both sides, so a class's member snapshot can be
// handed out and later extended without ever changing what the snapshot sees.
package scope

import (
	"github.com/tindzk/oops/compiler/internal/source"
)

// Symbol is anything that can be declared under a name.
type Symbol interface {
	Identifier() source.Ident
}

// Type is a Symbol that names a type. ResolveType only accepts these.
type Type interface {
	Symbol
	TypeName() string
}

type level struct {
	symbols map[string]Symbol
}

func newLevel() *level {
	return &level{symbols: map[string]Symbol{}}
}

func (l *level) copy() *level {
	ret := &level{symbols: make(map[string]Symbol, len(l.symbols))}
	for name, sym := range l.symbols {
		ret.symbols[name] = sym
	}
	return ret
}

type Scope struct {
	levels []*level
	// levels[owned:] belong to this scope alone and may be written in place.
	owned int
}

func New() *Scope {
	return &Scope{}
}

// Depth returns the number of entered levels.
func (scope *Scope) Depth() int {
	return len(scope.levels)
}

func (scope *Scope) Enter() {
	scope.levels = append(scope.levels, newLevel())
}

// Leave pops the innermost level. Leaving an empty scope panics: every Leave must
// be paired with the Enter that pushed the level.
func (scope *Scope) Leave() {
	if len(scope.levels) == 0 {
		panic("scope: leave without matching enter")
	}
	scope.levels[len(scope.levels)-1] = nil
	scope.levels = scope.levels[:len(scope.levels)-1]
	if scope.owned > len(scope.levels) {
		scope.owned = len(scope.levels)
	}
}

// Add declares sym in the innermost level. Only that level is checked for an
// existing declaration, outer ones are shadowed.
func (scope *Scope) Add(sym Symbol) error {
	if len(scope.levels) == 0 {
		panic("scope: add outside of any level")
	}
	id := sym.Identifier()
	top := len(scope.levels) - 1
	if _, exist := scope.levels[top].symbols[id.Name]; exist {
		return source.Errorf(source.DuplicateDeclaration, id.Pos, "%s is already declared.", id.Name)
	}
	if top < scope.owned {
		scope.levels[top] = scope.levels[top].copy()
		scope.owned = top
	}
	scope.levels[top].symbols[id.Name] = sym
	return nil
}

// Lookup searches innermost-first without raising an error.
func (scope *Scope) Lookup(name string) (Symbol, bool) {
	for i := len(scope.levels) - 1; i >= 0; i-- {
		if sym, ok := scope.levels[i].symbols[name]; ok {
			return sym, true
		}
	}
	return nil, false
}

func (scope *Scope) Resolve(id source.Ident) (Symbol, error) {
	sym, ok := scope.Lookup(id.Name)
	if !ok {
		return nil, source.Errorf(source.UndeclaredName, id.Pos, "Undeclared identifier %s.", id.Name)
	}
	return sym, nil
}

func (scope *Scope) ResolveType(id source.Ident) (Type, error) {
	sym, err := scope.Resolve(id)
	if err != nil {
		return nil, err
	}
	tp, ok := sym.(Type)
	if !ok {
		return nil, source.Errorf(source.NotAType, id.Pos, "%s is not a type.", id.Name)
	}
	return tp, nil
}

// Clone returns a scope sharing every current level with the receiver. Neither
// side can modify a shared level afterwards; writes copy the level first.
func (scope *Scope) Clone() *Scope {
	scope.owned = len(scope.levels)
	levels := make([]*level, len(scope.levels))
	copy(levels, scope.levels)
	return &Scope{levels: levels, owned: len(levels)}
}
