// Package compiler drives the OOPS compiler: it parses a source file, analyzes
// it and writes assembly for the OOPS virtual machine.
package compiler

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/tindzk/oops/compiler/internal/ast"
	"github.com/tindzk/oops/compiler/internal/codegen"
	"github.com/tindzk/oops/compiler/internal/parser"
	"github.com/tindzk/oops/compiler/internal/semantic"
	"github.com/tindzk/oops/compiler/internal/source"
)

// CompileError reports a lexical, syntactic or semantic error at a source
// position.
type CompileError = source.CompileError

// IsCompileError reports whether err is caused by the compiled program rather
// than by I/O.
func IsCompileError(err error) bool {
	var compileErr *CompileError
	return errors.As(err, &compileErr)
}

// Program is an analyzed OOPS program ready for code generation.
type Program struct {
	result *semantic.Result
}

// Analyze parses and checks the program read from rd.
func Analyze(rd io.Reader, config Config) (*Program, error) {
	logger := config.Logger

	start := time.Now()
	logger.Debug().Str("phase", "parse").Msg("start")
	tree, err := parser.NewParser().Parse(rd)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("phase", "parse").Int("classes", len(tree.Classes)).Dur("took", time.Since(start)).Msg("done")

	start = time.Now()
	logger.Debug().Str("phase", "analyze").Msg("start")
	result, err := semantic.Analyze(tree, semantic.Options{
		EntryClass:  config.Entry.Class,
		EntryMethod: config.Entry.Method,
	})
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("phase", "analyze").Int("classes", len(result.Classes)).
		Int("resolutions", len(result.Resolutions)).Dur("took", time.Since(start)).Msg("done")
	return &Program{result: result}, nil
}

// Generate writes the assembly of the program to out.
func (p *Program) Generate(out io.Writer, config Config) error {
	start := time.Now()
	config.Logger.Debug().Str("phase", "codegen").Msg("start")
	err := codegen.Generate(out, p.result, codegen.Options{
		StackSize:        config.Memory.StackSize,
		HeapSize:         config.Memory.HeapSize,
		FallthroughLogic: config.Compat.FallthroughLogic,
		Comments:         config.Output.Comments,
	})
	if err != nil {
		return fmt.Errorf("writing assembly: %w", err)
	}
	config.Logger.Debug().Str("phase", "codegen").Dur("took", time.Since(start)).Msg("done")
	return nil
}

// Print writes the analyzed classes and the startup statements as an indented
// tree.
func (p *Program) Print(out io.Writer) error {
	printer := ast.NewPrinter(out, 2)
	if err := printer.PrintClasses(p.result.Classes); err != nil {
		return err
	}
	printer.PrintStatements(p.result.Init)
	return printer.Err()
}

// Compile analyzes the program read from rd and writes its assembly to out.
func Compile(rd io.Reader, out io.Writer, config Config) (*Program, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	program, err := Analyze(rd, config)
	if err != nil {
		return nil, err
	}
	if err := program.Generate(out, config); err != nil {
		return nil, err
	}
	return program, nil
}
