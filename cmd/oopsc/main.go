package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/tindzk/oops/compiler"
)

// oopsc compiles an OOPS source file into assembly for oopsvm.

var (
	configPath = flag.String("c", "", "the oopsc.toml configuration file")
	inputPath  = flag.String("i", "", "the OOPS source file, standard input if empty")
	outputPath = flag.String("o", "", "the assembly output file, standard output if empty")
	heapSize   = flag.Int("hs", 0, "the heap size in words, overrides the configuration")
	stackSize  = flag.Int("ss", 0, "the stack size in words, overrides the configuration")
	printTree  = flag.Bool("p", false, "print the analyzed tree to standard error")
	dumpRes    = flag.Bool("r", false, "dump the identifier resolutions as YAML to standard error")
	verbose    = flag.Bool("v", false, "log the compiler phases")
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
	if *verbose {
		logger = logger.Level(zerolog.DebugLevel)
	}

	config := compiler.DefaultConfig()
	if *configPath != "" {
		var err error
		if config, err = compiler.LoadConfig(*configPath); err != nil {
			return err
		}
	}
	if *heapSize != 0 {
		config.Memory.HeapSize = *heapSize
	}
	if *stackSize != 0 {
		config.Memory.StackSize = *stackSize
	}
	config.Logger = logger

	var in io.Reader = os.Stdin
	if *inputPath != "" {
		f, err := os.Open(*inputPath)
		if err != nil {
			return fmt.Errorf("failed to open file %s: %w", *inputPath, err)
		}
		defer f.Close()
		in = f
	}

	// The output file is only written once the whole program compiled.
	asm := &bytes.Buffer{}
	program, err := compiler.Compile(in, asm, config)
	if err != nil {
		return err
	}
	if *printTree {
		if err := program.Print(os.Stderr); err != nil {
			return err
		}
	}
	if *dumpRes {
		if err := program.DumpResolutions(os.Stderr); err != nil {
			return err
		}
	}

	if *outputPath == "" {
		_, err = os.Stdout.Write(asm.Bytes())
		return err
	}
	if err := os.WriteFile(*outputPath, asm.Bytes(), 0666); err != nil {
		return fmt.Errorf("failed to save to path %s: %w", *outputPath, err)
	}
	logger.Debug().Str("path", *outputPath).Int("bytes", asm.Len()).Msg("written")
	return nil
}
