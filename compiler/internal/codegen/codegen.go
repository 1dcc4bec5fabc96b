// Package codegen synthesizes assembly for the eight-register OOPS machine.
//
// Register usage:
//
//	R0  program counter
//	R1  constant 1
//	R2  stack pointer, addresses the topmost used word
//	R3  frame pointer of the running method
//	R4  next free heap word
//	R5  R6  scratch
//	R7  scratch, carries thrown exception codes and return values
//
// Every expression leaves exactly one word on the stack: a value, an object
// reference or, for l-values, the address of the variable.
package codegen

import (
	"io"

	"github.com/tindzk/oops/compiler/internal/ast"
	"github.com/tindzk/oops/compiler/internal/semantic"
	"github.com/tindzk/oops/compiler/internal/termination"
)

const (
	exceptionFrameLabel     = "_currentExceptionFrame"
	uncaughtExceptionLabel  = "_uncaughtException"
	uncaughtExceptionPrefix = "ABORT "
)

type Options struct {
	StackSize int
	HeapSize  int
	// FallthroughLogic emits the historical AND, OR and NOT lowering in which
	// each operator runs into the code of the next one.
	FallthroughLogic bool
	Comments         bool
}

func DefaultOptions() Options {
	return Options{StackSize: 100, HeapSize: 100, Comments: true}
}

type generator struct {
	code   *CodeStream
	opts   Options
	result *semantic.Result
	method *ast.MethodSymbol
	// tries counts the TRY statements enclosing the current statement within
	// the current method.
	tries int
}

// Generate writes the program for an analyzed result to out.
func Generate(out io.Writer, result *semantic.Result, opts Options) error {
	g := &generator{code: NewCodeStream(out, opts.Comments), opts: opts, result: result}
	g.generateProgramCode()
	return g.code.Err()
}

func (g *generator) generateProgramCode() {
	code := g.code
	code.SetNamespace("_init")
	code.Comment("Generated by oopsc.")
	code.Emit("MRI R1, 1")
	code.Emit("MRI R2, _stack")
	code.Emit("MRI R4, _heap")

	// The initial exception frame points to the word after it, which holds the
	// handler for uncaught exceptions.
	code.Emit("MRI R5, %s", exceptionFrameLabel)
	code.Emit("MRI R6, %s", exceptionFrameLabel)
	code.Emit("ADD R6, R1")
	code.Emit("MMR (R5), R6")
	code.Emit("ADD R5, R1")
	code.Emit("MRI R6, %s", uncaughtExceptionLabel)
	code.Emit("MMR (R5), R6")

	g.generateStatementsCode(g.result.Init)
	code.Emit("MRI R0, _end")

	for _, class := range g.result.Classes {
		for _, m := range class.Methods {
			g.generateMethodCode(m)
		}
	}

	code.Label(exceptionFrameLabel)
	code.Emit("DAT 2, 0")

	for _, class := range g.result.Classes {
		code.Label(class.Name.Name)
		for _, m := range class.VMT {
			code.Emit("DAT 1, %s", class.ResolveAsmMethodName(m.Name.Name))
		}
	}

	code.Label("_stack")
	code.Emit("DAT %d, 0", g.opts.StackSize)
	code.Label("_heap")
	code.Emit("DAT %d, 0", g.opts.HeapSize)

	code.Label(uncaughtExceptionLabel)
	for _, b := range []byte(uncaughtExceptionPrefix) {
		code.Emit("MRI R5, %d", b)
		code.Emit("SYS 1, 5")
	}
	code.Emit("MRR R5, R7")
	code.Emit("SYS 1, 5")
	code.Label("_end")
}

func (g *generator) generateMethodCode(m *ast.MethodSymbol) {
	code := g.code
	g.method = m
	defer func() { g.method = nil }()

	code.SetNamespace(m.AsmName())
	code.Comment("METHOD %s", m.Name.Name)
	code.Label(m.AsmName())
	code.Emit("ADD R2, R1")
	code.Emit("MMR (R2), R3")
	code.Emit("MRR R3, R2")
	if len(m.Locals) != 0 {
		code.Emit("MRI R5, %d", len(m.Locals))
		code.Emit("ADD R2, R5")
	}

	g.generateStatementsCode(m.Statements)
	code.Comment("END METHOD %s", m.Name.Name)

	// The epilogue at the end would be unreachable.
	if termination.Terminates(m.Statements) {
		return
	}
	g.generateEpilogueCode(m, "")
}

// generateEpilogueCode releases the frame and jumps to the return address.
// custom runs once the stack pointer is back at the caller's side.
func (g *generator) generateEpilogueCode(m *ast.MethodSymbol, custom string) {
	code := g.code
	code.Emit("MRI R5, %d", m.FrameSize()+1)
	code.Emit("SUB R2, R5")
	if custom != "" {
		code.Emit("%s", custom)
	}
	code.Emit("SUB R3, R1")
	code.Emit("MRM R5, (R3)")
	code.Emit("ADD R3, R1")
	code.Emit("MRM R3, (R3)")
	code.Emit("MRR R0, R5")
}

// generatePopValueCode pops the topmost word into register.
func (g *generator) generatePopValueCode(register string) {
	g.code.Emit("MRM %s, (R2)", register)
	g.code.Emit("SUB R2, R1")
}

// generatePushCode pushes register.
func (g *generator) generatePushCode(register string) {
	g.code.Emit("ADD R2, R1")
	g.code.Emit("MMR (R2), %s", register)
}
