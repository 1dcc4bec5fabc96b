package vm

import (
	"bytes"
	"strconv"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tindzk/oops/assembler"
)

func load(t *testing.T, content string) []int32 {
	image, err := assembler.CreateAssembler().Assemble(strings.NewReader(content))
	require.Nil(t, err)
	return image
}

func run(t *testing.T, content, input string) (*Machine, string, error) {
	out := &bytes.Buffer{}
	m := New(load(t, content), strings.NewReader(input), out, Config{MaxSteps: 10000, Logger: zerolog.Nop()})
	err := m.Run()
	return m, out.String(), err
}

func TestRun_Write(t *testing.T) {
	m, out, err := run(t, `
MRI R5, 104
SYS 1, 5
MRI R5, 105
SYS 1, 5
`, "")
	assert.Nil(t, err)
	assert.Equal(t, "hi", out)
	assert.Equal(t, int64(4), m.Steps())
	assert.Equal(t, int32(12), m.Register(0))
}

func TestRun_Echo(t *testing.T) {
	content := `
loop:
    SYS 0, 5
    MRR R6, R5
    ISN R6, R6
    JPC R6, end
    SYS 1, 5
    MRI R0, loop
end:
`
	testData := []string{"", "a", "hello\nworld"}
	for _, input := range testData {
		m, out, err := run(t, content, input)
		assert.Nil(t, err, input)
		assert.Equal(t, input, out, input)
		assert.Equal(t, int32(-1), m.Register(5), input)
	}
}

func TestRun_Arithmetic(t *testing.T) {
	testData := []struct {
		op       string
		a, b     int32
		expected int32
	}{
		{"ADD", 7, 5, 12},
		{"SUB", 7, 5, 2},
		{"MUL", 7, -5, -35},
		{"DIV", -7, 2, -3},
		{"MOD", -7, 2, -1},
		{"AND", 6, 3, 2},
		{"OR", 6, 3, 7},
		{"XOR", 6, 3, 5},
		{"ISZ", 0, 0, 1},
		{"ISZ", 0, 3, 0},
		{"ISP", 0, 3, 1},
		{"ISP", 0, 0, 0},
		{"ISN", 0, -3, 1},
		{"ISN", 0, 3, 0},
		{"MRR", 0, 9, 9},
	}
	for _, data := range testData {
		content := "MRI R5, " + strconv.Itoa(int(data.a)) + "\nMRI R6, " + strconv.Itoa(int(data.b)) + "\n" + data.op + " R5, R6\n"
		m, _, err := run(t, content, "")
		assert.Nil(t, err, data.op)
		assert.Equal(t, data.expected, m.Register(5), "%s %d %d", data.op, data.a, data.b)
	}
}

func TestRun_Memory(t *testing.T) {
	m, _, err := run(t, `
    MRI R5, cell
    MRI R6, 42
    MMR (R5), R6
    MRM R7, (R5)
    MRI R0, end
cell:
    DAT 1, 0
end:
`, "")
	require.Nil(t, err)
	assert.Equal(t, int32(42), m.Register(7))
	assert.Equal(t, int32(42), m.Memory()[15])
}

func TestRun_Errors(t *testing.T) {
	testData := []struct {
		memory []int32
		msg    string
	}{
		{[]int32{0, 5, 100, 2, 6, 5}, "access to nonexistent memory address 100 at address 3"},
		{[]int32{0, 5, -1, 3, 5, 6}, "access to nonexistent memory address -1 at address 3"},
		{[]int32{1, 9, 1}, "access to nonexistent register 9 at address 0"},
		{[]int32{0, 8, 1}, "access to nonexistent register 8 at address 0"},
		{[]int32{42, 0, 0}, "illegal instruction 42 at address 0"},
		{[]int32{16, 2, 5}, "illegal system call 2 at address 0"},
		{[]int32{7, 1, 2}, "division by zero at address 0"},
		{[]int32{8, 1, 2}, "division by zero at address 0"},
		{[]int32{0, 1}, "incomplete instruction at address 0"},
	}
	for _, data := range testData {
		m := New(data.memory, strings.NewReader(""), &bytes.Buffer{}, Config{Logger: zerolog.Nop()})
		assert.EqualError(t, m.Run(), data.msg)
	}
}

func TestRun_StepLimit(t *testing.T) {
	out := &bytes.Buffer{}
	m := New(load(t, "MRI R5, 33\nSYS 1, 5\nloop: MRI R0, loop"), strings.NewReader(""), out,
		Config{MaxSteps: 10, Logger: zerolog.Nop()})
	assert.ErrorIs(t, m.Run(), ErrStepLimit)
	assert.Equal(t, int64(10), m.Steps())
	// Output is flushed even when the run fails.
	assert.Equal(t, "!", out.String())
}

func TestRun_Trace(t *testing.T) {
	trace := &bytes.Buffer{}
	logger := zerolog.New(trace).Level(zerolog.DebugLevel)
	m := New(load(t, "MRI R5, 65\nMRM R6, (R1)"), strings.NewReader(""), &bytes.Buffer{}, Config{Logger: logger})
	require.Nil(t, m.Run())
	lines := strings.Split(strings.TrimSpace(trace.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"addr":0`)
	assert.Contains(t, lines[0], `"instr":"MRI R5, 65"`)
	assert.Contains(t, lines[1], `"instr":"MRM R6, (R1)"`)
	assert.Contains(t, lines[1], `"regs":[6,0,0,0,0,65,0,0]`)
}
