package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/tindzk/oops/assembler"
	"github.com/tindzk/oops/vm"
)

// oopsvm assembles an OOPS assembly file and runs it. The program reads from
// standard input and writes to standard output.

var (
	inputPath = flag.String("i", "", "the assembly file, standard input if empty")
	maxSteps  = flag.Int64("steps", 0, "stop after this many instructions, 0 for no limit")
	trace     = flag.Bool("t", false, "trace every executed instruction to standard error")
	labels    = flag.Bool("l", false, "list the labels and their addresses to standard error")
	verbose   = flag.Bool("v", false, "print the assembled program to standard error")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stderr
		w.PartsExclude = []string{zerolog.TimestampFieldName}
	})).Level(zerolog.InfoLevel)
	if *trace {
		logger = logger.Level(zerolog.DebugLevel)
	}

	var in io.Reader = os.Stdin
	if *inputPath != "" {
		f, err := os.Open(*inputPath)
		if err != nil {
			return fmt.Errorf("failed to open file %s: %w", *inputPath, err)
		}
		defer f.Close()
		in = f
	}

	asm := assembler.CreateAssembler()
	image, err := asm.Assemble(in)
	if err != nil {
		return err
	}
	if *verbose {
		for _, command := range asm.Commands() {
			fmt.Fprintln(os.Stderr, command)
		}
	}
	if *labels {
		for _, label := range asm.Labels() {
			fmt.Fprintf(os.Stderr, "%08x  %s\n", label.Addr, label.Name)
		}
	}

	// With -i the program may still read standard input.
	var programIn io.Reader = os.Stdin
	if *inputPath == "" {
		programIn = eofReader{}
	}
	machine := vm.New(image, programIn, os.Stdout, vm.Config{MaxSteps: *maxSteps, Logger: logger})
	if err := machine.Run(); err != nil {
		return err
	}
	logger.Debug().Int64("steps", machine.Steps()).Msg("halted")
	return nil
}

// eofReader serves programs whose source was piped through standard input.
type eofReader struct{}

func (eofReader) Read([]byte) (int, error) {
	return 0, io.EOF
}
