package codegen

import (
	"github.com/tindzk/oops/compiler/internal/ast"
)

func (g *generator) generateExpressionCode(expr ast.Expression) {
	code := g.code
	switch e := expr.(type) {
	case *ast.Literal:
		code.Emit("MRI R5, %d", e.Value)
		g.generatePushCode("R5")
	case *ast.New:
		g.generateNewCode(e.Class.Class)
	case *ast.Box:
		g.generateNewCode(e.Type())
		g.generateExpressionCode(e.Operand)
		code.Comment("BOX")
		g.generatePopValueCode("R5")
		code.Emit("MRM R6, (R2)")
		code.Emit("MRI R7, %d", ast.HeaderSize)
		code.Emit("ADD R6, R7")
		code.Emit("MMR (R6), R5")
	case *ast.Unbox:
		g.generateExpressionCode(e.Operand)
		code.Comment("UNBOX")
		code.Emit("MRM R5, (R2)")
		code.Emit("MRI R6, %d", ast.HeaderSize)
		code.Emit("ADD R5, R6")
		code.Emit("MRM R5, (R5)")
		code.Emit("MMR (R2), R5")
	case *ast.Deref:
		g.generateExpressionCode(e.Operand)
		code.Comment("DEREF")
		code.Emit("MRM R5, (R2)")
		code.Emit("MRM R5, (R5)")
		code.Emit("MMR (R2), R5")
	case *ast.Unary:
		g.generateUnaryCode(e)
	case *ast.Binary:
		g.generateBinaryCode(e)
	case *ast.Access:
		g.generateExpressionCode(e.Left)
		g.generateVarOrCallCode(e.Right)
	case *ast.VarOrCall:
		g.generateVarOrCallCode(e)
	default:
		panic("codegen: unknown expression")
	}
}

// generateNewCode pushes a reference to a fresh object whose header points to
// the VMT of class.
func (g *generator) generateNewCode(class *ast.ClassSymbol) {
	code := g.code
	code.Comment("NEW %s", class.Name.Name)
	g.generatePushCode("R4")
	code.Emit("MRI R5, %d", class.ObjectSize)
	code.Emit("MRI R6, %s", class.Name.Name)
	code.Emit("MMR (R4), R6")
	code.Emit("ADD R4, R5")
}

func (g *generator) generateUnaryCode(e *ast.Unary) {
	code := g.code
	g.generateExpressionCode(e.Operand)
	code.Comment("%s", e.Op)
	code.Emit("MRM R5, (R2)")
	if e.Op == ast.NotOp {
		code.Emit("MRI R6, 1")
		code.Emit("SUB R6, R5")
		code.Emit("MMR (R2), R6")
		if !g.opts.FallthroughLogic {
			return
		}
	}
	code.Emit("MRI R6, 0")
	code.Emit("SUB R6, R5")
	code.Emit("MMR (R2), R6")
}

// comparisons lower a comparison of R6 against R5 to a test of R6 - R5.
var comparisons = map[ast.BinaryOp][]string{
	ast.GtOp:   {"SUB R6, R5", "ISP R6, R6"},
	ast.GtEqOp: {"SUB R6, R5", "ISN R6, R6", "XOR R6, R1"},
	ast.LtOp:   {"SUB R6, R5", "ISN R6, R6"},
	ast.LtEqOp: {"SUB R6, R5", "ISP R6, R6", "XOR R6, R1"},
	ast.EqOp:   {"SUB R6, R5", "ISZ R6, R6"},
	ast.NeqOp:  {"SUB R6, R5", "ISZ R6, R6", "XOR R6, R1"},
}

var arithmetic = map[ast.BinaryOp]string{
	ast.AndOp:   "AND R6, R5",
	ast.OrOp:    "OR R6, R5",
	ast.PlusOp:  "ADD R6, R5",
	ast.MinusOp: "SUB R6, R5",
	ast.MulOp:   "MUL R6, R5",
	ast.DivOp:   "DIV R6, R5",
	ast.ModOp:   "MOD R6, R5",
}

func (g *generator) generateBinaryCode(e *ast.Binary) {
	code := g.code
	g.generateExpressionCode(e.Left)
	g.generateExpressionCode(e.Right)
	code.Comment("%s", e.Op)
	g.generatePopValueCode("R5")
	code.Emit("MRM R6, (R2)")

	switch e.Op {
	case ast.AndOp, ast.OrOp:
		ops := []ast.BinaryOp{e.Op}
		if g.opts.FallthroughLogic {
			if e.Op == ast.AndOp {
				ops = append(ops, ast.OrOp)
			}
			ops = append(ops, ast.PlusOp)
		}
		for _, op := range ops {
			code.Emit("%s", arithmetic[op])
		}
	case ast.PlusOp, ast.MinusOp, ast.MulOp, ast.DivOp, ast.ModOp:
		code.Emit("%s", arithmetic[e.Op])
	default:
		lines, ok := comparisons[e.Op]
		if !ok {
			panic("codegen: unknown binary operator")
		}
		for _, line := range lines {
			code.Emit("%s", line)
		}
	}
	code.Emit("MMR (R2), R6")
}

func (g *generator) generateVarOrCallCode(e *ast.VarOrCall) {
	code := g.code
	switch decl := e.Ref.Decl.(type) {
	case *ast.VariableSymbol:
		if decl.Kind == ast.Attribute {
			// The object reference on top becomes the attribute's address.
			code.Comment("Referencing attribute %s", decl.Name.Name)
			code.Emit("MRM R5, (R2)")
			code.Emit("MRI R6, %d", decl.Offset)
			code.Emit("ADD R5, R6")
			code.Emit("MMR (R2), R5")
			return
		}
		code.Comment("Referencing %s %s", decl.Kind, decl.Name.Name)
		code.Emit("MRI R5, %d", decl.Offset)
		code.Emit("ADD R5, R3")
		g.generatePushCode("R5")
	case *ast.MethodSymbol:
		g.generateCallCode(e, decl)
	default:
		panic("codegen: unbound reference " + e.Ref.Ident.Name)
	}
}

// generateCallCode expects the receiver on top of the stack. Arguments and the
// return address are pushed above it; the callee removes all of them.
func (g *generator) generateCallCode(e *ast.VarOrCall, m *ast.MethodSymbol) {
	code := g.code
	returnLabel := code.NextLabel()
	if e.Static != nil {
		code.Comment("Static method call: %s", m.Name.Name)
	} else {
		code.Comment("Dynamic method call: %s, VMT index %d", m.Name.Name, m.VMTIndex)
	}
	for i, arg := range e.Args {
		code.Comment("Argument %d", i+1)
		g.generateExpressionCode(arg)
	}
	code.Emit("MRI R5, %s", returnLabel)
	g.generatePushCode("R5")

	if e.Static != nil {
		code.Emit("MRI R0, %s", e.Static.ResolveAsmMethodName(m.Name.Name))
	} else {
		code.Emit("MRR R5, R2")
		code.Emit("MRI R6, %d", 1+len(e.Args))
		code.Emit("SUB R5, R6")
		code.Emit("MRM R6, (R5)")
		code.Emit("MRM R6, (R6)")
		code.Emit("MRI R5, %d", m.VMTIndex)
		code.Emit("ADD R6, R5")
		code.Emit("MRM R0, (R6)")
	}
	code.Label(returnLabel)
}
