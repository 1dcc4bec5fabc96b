package codegen

import (
	"github.com/tindzk/oops/compiler/internal/ast"
)

func (g *generator) generateStatementsCode(stmts []ast.Statement) {
	for _, stmt := range stmts {
		g.generateStatementCode(stmt)
	}
}

func (g *generator) generateStatementCode(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.Assignment:
		g.generateAssignmentCode(s)
	case *ast.If:
		g.generateIfCode(s)
	case *ast.While:
		g.generateWhileCode(s)
	case *ast.Try:
		g.generateTryCode(s)
	case *ast.Throw:
		g.code.Comment("THROW")
		g.generateExpressionCode(s.Value)
		g.generatePopValueCode("R7")
		g.generateThrowCode()
	case *ast.Return:
		g.generateReturnCode(s)
	case *ast.Read:
		g.generateReadCode(s)
	case *ast.Write:
		g.code.Comment("WRITE")
		g.generateExpressionCode(s.Operand)
		g.generatePopValueCode("R5")
		g.code.Emit("SYS 1, 5")
	case *ast.Call:
		g.code.Comment("CALL")
		g.generateExpressionCode(s.Call)
	default:
		panic("codegen: unknown statement")
	}
}

// The address is pushed before the value.
func (g *generator) generateAssignmentCode(s *ast.Assignment) {
	code := g.code
	code.Comment("ASSIGNMENT")
	g.generateExpressionCode(s.Left)
	g.generateExpressionCode(s.Right)
	g.generatePopValueCode("R5")
	g.generatePopValueCode("R6")
	code.Emit("MMR (R6), R5")
}

// generateBranchCode pops a condition and jumps to label when it is false.
func (g *generator) generateBranchCode(cond ast.Expression, label string) {
	g.generateExpressionCode(cond)
	g.generatePopValueCode("R5")
	g.code.Emit("ISZ R5, R5")
	g.code.Emit("JPC R5, %s", label)
}

func (g *generator) generateIfCode(s *ast.If) {
	code := g.code
	code.Comment("IF")
	endLabel := code.NextLabel()
	nextLabel := code.NextLabel()

	g.generateBranchCode(s.Cond, nextLabel)
	g.generateStatementsCode(s.Then)
	code.Emit("MRI R0, %s", endLabel)

	for _, elseIf := range s.ElseIfs {
		code.Comment("ELSEIF")
		code.Label(nextLabel)
		nextLabel = code.NextLabel()
		g.generateBranchCode(elseIf.Cond, nextLabel)
		g.generateStatementsCode(elseIf.Body)
		code.Emit("MRI R0, %s", endLabel)
	}

	code.Comment("ELSE")
	code.Label(nextLabel)
	g.generateStatementsCode(s.Else)
	code.Label(endLabel)
}

func (g *generator) generateWhileCode(s *ast.While) {
	code := g.code
	code.Comment("WHILE")
	whileLabel := code.NextLabel()
	endLabel := code.NextLabel()
	code.Label(whileLabel)
	g.generateBranchCode(s.Cond, endLabel)
	g.generateStatementsCode(s.Body)
	code.Emit("MRI R0, %s", whileLabel)
	code.Label(endLabel)
}

// generateReadCode stores the character read into a fresh Integer and assigns
// that object to the operand.
func (g *generator) generateReadCode(s *ast.Read) {
	code := g.code
	code.Comment("READ")
	g.generateExpressionCode(s.Operand)
	g.generateNewCode(s.Alloc.Class.Class)
	code.Emit("MRM R5, (R2)")
	code.Emit("MRI R6, %d", ast.HeaderSize)
	code.Emit("ADD R5, R6")
	code.Emit("SYS 0, 6")
	code.Emit("MMR (R5), R6")
	g.generatePopValueCode("R5")
	g.generatePopValueCode("R6")
	code.Emit("MMR (R6), R5")
}

// generateReturnCode leaves the method early. Exception frames installed by the
// enclosing TRY statements are removed first. A value is returned in the stack
// slot that held SELF.
func (g *generator) generateReturnCode(s *ast.Return) {
	code := g.code
	code.Comment("RETURN")
	if s.Value == nil {
		for i := 0; i < g.tries; i++ {
			g.generatePopExceptionCode(false)
		}
		g.generateEpilogueCode(s.Method, "")
		return
	}

	g.generateExpressionCode(s.Value)
	code.Emit("MRM R7, (R2)")
	for i := 0; i < g.tries; i++ {
		g.generatePopExceptionCode(false)
	}
	if g.tries != 0 {
		// Popping a frame drops the value's slot as well.
		code.Emit("ADD R2, R1")
	}
	g.generateEpilogueCode(s.Method, "MMR (R2), R7")
}

// generateTryCode installs an exception frame of three words: the frame
// pointer to restore, the address of the first handler and the enclosing
// frame. _currentExceptionFrame points to the handler word.
func (g *generator) generateTryCode(s *ast.Try) {
	code := g.code
	code.Comment("TRY")
	g.generatePushCode("R3")

	catchLabel := code.NextLabel()
	code.Emit("MRI R5, %s", catchLabel)
	g.generatePushCode("R5")

	code.Emit("MRI R5, %s", exceptionFrameLabel)
	code.Emit("MRM R5, (R5)")
	g.generatePushCode("R5")

	code.Emit("MRR R6, R2")
	code.Emit("SUB R6, R1")
	code.Emit("MRI R5, %s", exceptionFrameLabel)
	code.Emit("MMR (R5), R6")

	endLabel := code.NextLabel()

	g.tries++
	g.generateStatementsCode(s.Body)
	g.tries--
	g.generatePopExceptionCode(false)
	code.Emit("MRI R0, %s", endLabel)

	for _, c := range s.Catches {
		code.Comment("CATCH %d", c.Code.Value)
		code.Label(catchLabel)
		catchLabel = code.NextLabel()
		code.Emit("MRI R5, %d", c.Code.Value)
		code.Emit("SUB R5, R7")
		code.Emit("ISZ R5, R5")
		code.Emit("XOR R5, R1")
		code.Emit("JPC R5, %s", catchLabel)
		g.generatePopExceptionCode(true)
		g.generateStatementsCode(c.Body)
		code.Emit("MRI R0, %s", endLabel)
	}

	// No handler matched: propagate to the enclosing frame.
	code.Label(catchLabel)
	g.generatePopExceptionCode(true)
	g.generateThrowCode()
	code.Label(endLabel)
}

// generatePopExceptionCode removes the current exception frame and resets the
// stack pointer to below it. With restore the frame pointer saved by the TRY is
// reloaded, which is needed when a handler runs inside a method called from the
// TRY body.
func (g *generator) generatePopExceptionCode(restore bool) {
	code := g.code
	code.Emit("MRI R6, %s", exceptionFrameLabel)
	code.Emit("MRM R6, (R6)")
	code.Emit("MRR R2, R6")
	code.Emit("SUB R2, R1")
	if restore {
		code.Emit("MRM R3, (R2)")
	}
	code.Emit("SUB R2, R1")
	code.Emit("ADD R6, R1")
	code.Emit("MRM R6, (R6)")
	code.Emit("MRI R5, %s", exceptionFrameLabel)
	code.Emit("MMR (R5), R6")
}

// generateThrowCode jumps to the handler of the current exception frame with
// the exception code in R7.
func (g *generator) generateThrowCode() {
	code := g.code
	code.Emit("MRI R5, %s", exceptionFrameLabel)
	code.Emit("MRM R5, (R5)")
	code.Emit("MRM R0, (R5)")
}
