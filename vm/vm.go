// Package vm runs memory images produced by the assembler.
//
// The machine has eight registers. R0 is the instruction pointer and always
// addresses the next instruction. Execution ends as soon as R0 leaves the
// memory.
package vm

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/tindzk/oops/assembler"
)

const RegisterCount = 8

const (
	SysRead  = 0
	SysWrite = 1
)

var ErrStepLimit = errors.New("step limit exceeded")

type Config struct {
	// MaxSteps stops runaway programs. Zero means no limit.
	MaxSteps int64
	// Logger receives one debug event per executed instruction.
	Logger zerolog.Logger
}

type Machine struct {
	memory    []int32
	registers [RegisterCount]int32
	in        *bufio.Reader
	out       *bufio.Writer
	config    Config
	steps     int64
}

// New creates a machine that owns memory. SYS 0 reads from in, SYS 1 writes
// to out.
func New(memory []int32, in io.Reader, out io.Writer, config Config) *Machine {
	return &Machine{
		memory: memory,
		in:     bufio.NewReader(in),
		out:    bufio.NewWriter(out),
		config: config,
	}
}

func (m *Machine) Register(i int) int32 {
	return m.registers[i]
}

func (m *Machine) Memory() []int32 {
	return m.memory
}

// Steps returns the number of instructions executed so far.
func (m *Machine) Steps() int64 {
	return m.steps
}

// Run executes until R0 leaves the memory or an error occurs. Output written so
// far is flushed in both cases.
func (m *Machine) Run() (err error) {
	defer func() {
		if flushErr := m.out.Flush(); err == nil && flushErr != nil {
			err = fmt.Errorf("writing output: %w", flushErr)
		}
	}()
	for m.inMemory(m.registers[0]) {
		if m.config.MaxSteps != 0 && m.steps >= m.config.MaxSteps {
			return ErrStepLimit
		}
		if err := m.step(); err != nil {
			return err
		}
		m.steps++
	}
	return nil
}

func (m *Machine) inMemory(addr int32) bool {
	return addr >= 0 && int(addr) < len(m.memory)
}

func (m *Machine) fetch(pc int32) (int32, error) {
	if !m.inMemory(m.registers[0]) {
		return 0, fmt.Errorf("incomplete instruction at address %d", pc)
	}
	word := m.memory[m.registers[0]]
	m.registers[0]++
	return word, nil
}

func (m *Machine) register(i, pc int32) (*int32, error) {
	if i < 0 || i >= RegisterCount {
		return nil, fmt.Errorf("access to nonexistent register %d at address %d", i, pc)
	}
	return &m.registers[i], nil
}

func (m *Machine) address(addr, pc int32) (*int32, error) {
	if !m.inMemory(addr) {
		return nil, fmt.Errorf("access to nonexistent memory address %d at address %d", addr, pc)
	}
	return &m.memory[addr], nil
}

func (m *Machine) step() error {
	pc := m.registers[0]
	var words [assembler.InstructionSize]int32
	for i := range words {
		word, err := m.fetch(pc)
		if err != nil {
			return err
		}
		words[i] = word
	}
	op, p1, p2 := assembler.Opcode(words[0]), words[1], words[2]
	if !op.Valid() {
		return fmt.Errorf("illegal instruction %d at address %d", words[0], pc)
	}
	m.config.Logger.Debug().Int32("addr", pc).Str("instr", assembler.Format(op, p1, p2)).
		Ints32("regs", m.registers[:]).Msg("step")

	switch op {
	case assembler.MRI:
		r, err := m.register(p1, pc)
		if err != nil {
			return err
		}
		*r = p2
		return nil
	case assembler.JPC:
		r, err := m.register(p1, pc)
		if err != nil {
			return err
		}
		if *r != 0 {
			m.registers[0] = p2
		}
		return nil
	case assembler.SYS:
		return m.syscall(p1, p2, pc)
	}

	r1, err := m.register(p1, pc)
	if err != nil {
		return err
	}
	r2, err := m.register(p2, pc)
	if err != nil {
		return err
	}
	switch op {
	case assembler.MRR:
		*r1 = *r2
	case assembler.MRM:
		cell, err := m.address(*r2, pc)
		if err != nil {
			return err
		}
		*r1 = *cell
	case assembler.MMR:
		cell, err := m.address(*r1, pc)
		if err != nil {
			return err
		}
		*cell = *r2
	case assembler.ADD:
		*r1 += *r2
	case assembler.SUB:
		*r1 -= *r2
	case assembler.MUL:
		*r1 *= *r2
	case assembler.DIV, assembler.MOD:
		if *r2 == 0 {
			return fmt.Errorf("division by zero at address %d", pc)
		}
		if op == assembler.DIV {
			*r1 /= *r2
		} else {
			*r1 %= *r2
		}
	case assembler.AND:
		*r1 &= *r2
	case assembler.OR:
		*r1 |= *r2
	case assembler.XOR:
		*r1 ^= *r2
	case assembler.ISZ:
		*r1 = boolWord(*r2 == 0)
	case assembler.ISP:
		*r1 = boolWord(*r2 > 0)
	case assembler.ISN:
		*r1 = boolWord(*r2 < 0)
	}
	return nil
}

func (m *Machine) syscall(num, reg, pc int32) error {
	r, err := m.register(reg, pc)
	if err != nil {
		return err
	}
	switch num {
	case SysRead:
		if err := m.out.Flush(); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
		b, err := m.in.ReadByte()
		if err == io.EOF {
			*r = -1
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}
		*r = int32(b)
	case SysWrite:
		if err := m.out.WriteByte(byte(*r)); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
	default:
		return fmt.Errorf("illegal system call %d at address %d", num, pc)
	}
	return nil
}

func boolWord(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
