// Package termination decides whether a statement list always ends in a
// RETURN or THROW.
//
// The analysis builds a branch tree mirroring the statements. A branch
// terminates when it contains a RETURN or THROW itself, or when it has at least
// one sub-branch and every sub-branch terminates. Only literal conditions are
// evaluated: an IF contributes one sub-branch per arm (plus one for the possibly
// empty ELSE), and a WHILE contributes its body only when its condition is
// always true.
package termination

import "github.com/tindzk/oops/compiler/internal/ast"

type branch struct {
	terminates bool
	sub        []*branch
}

// Terminates reports whether executing stmts can never run past their end.
func Terminates(stmts []ast.Statement) bool {
	root := &branch{}
	root.build(stmts)
	return root.terminates
}

func (b *branch) child(stmts []ast.Statement) *branch {
	c := &branch{}
	b.sub = append(b.sub, c)
	c.build(stmts)
	return c
}

func (b *branch) build(stmts []ast.Statement) {
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.Return, *ast.Throw:
			b.terminates = true
		case *ast.If:
			then := b.child(s.Then)
			if then.terminates && alwaysTrue(s.Cond) {
				b.terminates = true
			}
			// An arm is only reached once every earlier condition failed, so a
			// constant ELSEIF decides the IF only if all earlier arms terminate.
			earlier := then.terminates
			for _, elseIf := range s.ElseIfs {
				arm := b.child(elseIf.Body)
				if earlier && arm.terminates && alwaysTrue(elseIf.Cond) {
					b.terminates = true
				}
				earlier = earlier && arm.terminates
			}
			b.child(s.Else)
		case *ast.While:
			if alwaysTrue(s.Cond) {
				b.child(s.Body)
			}
		case *ast.Try:
			if tryTerminates(s) {
				b.terminates = true
			}
		case *ast.Assignment, *ast.Read, *ast.Write, *ast.Call:
		default:
			panic("termination: unknown statement")
		}
	}
	if b.terminates || len(b.sub) == 0 {
		return
	}
	for _, s := range b.sub {
		if !s.terminates {
			return
		}
	}
	b.terminates = true
}

// tryTerminates holds when neither the body nor any handler can complete
// normally.
func tryTerminates(s *ast.Try) bool {
	if !Terminates(s.Body) {
		return false
	}
	for _, c := range s.Catches {
		if !Terminates(c.Body) {
			return false
		}
	}
	return true
}

// alwaysTrue looks through the conversion nodes the analyzer may have wrapped
// around a literal condition.
func alwaysTrue(e ast.Expression) bool {
	for {
		switch n := e.(type) {
		case *ast.Literal:
			return n.IsAlwaysTrue()
		case *ast.Unbox:
			e = n.Operand
		case *ast.Box:
			e = n.Operand
		default:
			return false
		}
	}
}
