package assembler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assemble(content string) ([]int32, error) {
	return CreateAssembler().Assemble(strings.NewReader(content))
}

func TestTokenizeLine(t *testing.T) {
	asm := CreateAssembler()
	testData := []struct {
		line   string
		tokens []string
	}{
		{"", nil},
		{"   ; only a comment", nil},
		{"MRI R1, 1", []string{"MRI", "R1", ",", "1"}},
		{"MRM R5, (R2) ; load", []string{"MRM", "R5", ",", "(", "R2", ")"}},
		{"MMR (R2),R3", []string{"MMR", "(", "R2", ")", ",", "R3"}},
		{"Main_main:", []string{"Main_main", ":"}},
		{"MRI R5, -12", []string{"MRI", "R5", ",", "-12"}},
		{"\tDAT 2, 0\r\n", []string{"DAT", "2", ",", "0"}},
	}
	for _, data := range testData {
		tokens, err := asm.tokenizeLine([]byte(data.line))
		assert.Nil(t, err, data.line)
		assert.Equal(t, data.tokens, tokens, data.line)
	}

	_, err := asm.tokenizeLine([]byte("MRI R1, #"))
	assert.EqualError(t, err, "syntax err at line 1: unexpected character: # (35)")
	_, err = asm.tokenizeLine([]byte("MRI R1, -"))
	assert.EqualError(t, err, "syntax err at line 1: number must have at least one digit: -")
}

func TestAssemble_Instructions(t *testing.T) {
	testData := []struct {
		line  string
		words []int32
	}{
		{"MRI R1, 1", []int32{0, 1, 1}},
		{"MRI R5, -3", []int32{0, 5, -3}},
		{"MRR R0, R5", []int32{1, 0, 5}},
		{"MRM R5, (R2)", []int32{2, 5, 2}},
		{"MMR (R2), R3", []int32{3, 2, 3}},
		{"ADD R2, R1", []int32{4, 2, 1}},
		{"SUB R2, R1", []int32{5, 2, 1}},
		{"MUL R6, R5", []int32{6, 6, 5}},
		{"DIV R6, R5", []int32{7, 6, 5}},
		{"MOD R6, R5", []int32{8, 6, 5}},
		{"AND R6, R5", []int32{9, 6, 5}},
		{"OR R6, R5", []int32{10, 6, 5}},
		{"XOR R6, R1", []int32{11, 6, 1}},
		{"ISZ R5, R5", []int32{12, 5, 5}},
		{"ISP R6, R6", []int32{13, 6, 6}},
		{"ISN R6, R6", []int32{14, 6, 6}},
		{"JPC R5, 9", []int32{15, 5, 9}},
		{"SYS 1, 5", []int32{16, 1, 5}},
		{"DAT 1, 7", []int32{7}},
		{"DAT 3, 0", []int32{0, 0, 0}},
		{"DAT 2, -1", []int32{-1, -1}},
	}
	for _, data := range testData {
		image, err := assemble(data.line)
		assert.Nil(t, err, data.line)
		assert.Equal(t, data.words, image, data.line)
	}
}

func TestAssemble_Labels(t *testing.T) {
	content := `
start:
    MRI R0, end   ; forward reference
table: DAT 2, start
loop: end:
    JPC R1, loop
`
	asm := CreateAssembler()
	image, err := asm.Assemble(strings.NewReader(content))
	require.Nil(t, err)
	assert.Equal(t, []int32{0, 0, 5, 0, 0, 15, 1, 5}, image)
	assert.Equal(t, []Label{{"end", 5}, {"loop", 5}, {"start", 0}, {"table", 3}}, asm.Labels())

	commands := asm.Commands()
	require.Len(t, commands, 3)
	assert.Equal(t, Command{Tp: InstructionCommand, Addr: 0, Op: MRI, Params: [2]int32{0, 5}, Line: 3,
		OriginalContent: "MRI R0, end   ; forward reference"}, commands[0])
	assert.Equal(t, DataCommand, commands[1].Tp)
	assert.Equal(t, 3, commands[1].Addr)
	assert.Equal(t, "00000005  0000000f 00000001 00000005  JPC R1, loop", commands[2].String())
	assert.Equal(t, "00000003  00000000 ..."+strings.Repeat(" ", 16)+"table: DAT 2, start", commands[1].String())
}

func TestAssemble_Reassemble(t *testing.T) {
	asm := CreateAssembler()
	_, err := asm.Assemble(strings.NewReader("a: DAT 1, a"))
	require.Nil(t, err)
	image, err := asm.Assemble(strings.NewReader("DAT 1, 0\na: DAT 1, a"))
	require.Nil(t, err)
	assert.Equal(t, []int32{0, 1}, image)
	assert.Equal(t, []Label{{"a", 1}}, asm.Labels())
}

func TestAssemble_Errors(t *testing.T) {
	testData := []struct {
		content string
		msg     string
	}{
		{"x:\nx:", "syntax err at line 2: found duplicate label x"},
		{"MRI R0, nowhere", "syntax err at line 1: label nowhere not found"},
		{"JMP R1, 2", "syntax err at line 1: unknown instruction JMP"},
		{"MRI 1, 2", "syntax err at line 1: register expected: 1"},
		{"MRR R1, R01", "syntax err at line 1: wrong register: R01"},
		{"MRR R1 R2", "syntax err at line 1: comma expected"},
		{"MRR R1,", "syntax err at line 1: missing parameter"},
		{"MRM R1, R2", "syntax err at line 1: second parameter of MRM must be parenthesized"},
		{"MMR R1, R2", "syntax err at line 1: first parameter of MMR must be parenthesized"},
		{"MMR (R1, R2", "syntax err at line 1: first parameter of MMR must be parenthesized"},
		{"DAT x, 1", "syntax err at line 1: first parameter of DAT cannot be a label"},
		{"DAT 0, 1", "syntax err at line 1: first parameter of DAT must be greater than 0"},
		{"MRI R1, 99999999999", "syntax err at line 1: wrong decimal value format: 99999999999"},
		{"\n\n1:", "syntax err at line 3: label does not start with a letter: 1:"},
	}
	for _, data := range testData {
		_, err := assemble(data.content)
		assert.EqualError(t, err, data.msg, data.content)
	}
}

func TestFormat(t *testing.T) {
	testData := []struct {
		op       Opcode
		p1, p2   int32
		expected string
	}{
		{MRI, 1, -4, "MRI R1, -4"},
		{JPC, 5, 30, "JPC R5, 30"},
		{MRM, 5, 2, "MRM R5, (R2)"},
		{MMR, 2, 3, "MMR (R2), R3"},
		{SYS, 0, 6, "SYS 0, 6"},
		{XOR, 6, 1, "XOR R6, R1"},
	}
	for _, data := range testData {
		assert.Equal(t, data.expected, Format(data.op, data.p1, data.p2))
	}
	assert.Equal(t, "Opcode(17)", Opcode(17).String())
	op, ok := LookupOpcode("ISN")
	assert.True(t, ok)
	assert.Equal(t, ISN, op)
}
