package assembler

import "fmt"

// Opcode is the first word of every instruction. Each instruction occupies
// three words: the opcode and two parameters.
type Opcode int32

const (
	MRI Opcode = iota
	MRR
	MRM
	MMR
	ADD
	SUB
	MUL
	DIV
	MOD
	AND
	OR
	XOR
	ISZ
	ISP
	ISN
	JPC
	SYS
)

const InstructionSize = 3

var opcodeNames = [...]string{
	"MRI", "MRR", "MRM", "MMR", "ADD", "SUB", "MUL", "DIV", "MOD", "AND",
	"OR", "XOR", "ISZ", "ISP", "ISN", "JPC", "SYS",
}

var opcodeMap = func() map[string]Opcode {
	m := make(map[string]Opcode, len(opcodeNames))
	for i, name := range opcodeNames {
		m[name] = Opcode(i)
	}
	return m
}()

func LookupOpcode(name string) (Opcode, bool) {
	op, ok := opcodeMap[name]
	return op, ok
}

func (op Opcode) Valid() bool {
	return op >= MRI && op <= SYS
}

func (op Opcode) String() string {
	if !op.Valid() {
		return fmt.Sprintf("Opcode(%d)", int32(op))
	}
	return opcodeNames[op]
}

// firstIsRegister and secondIsRegister tell how the parameters are encoded.
func (op Opcode) firstIsRegister() bool {
	return op != SYS
}

func (op Opcode) secondIsRegister() bool {
	return op != MRI && op != JPC && op != SYS
}

// Format renders an instruction in assembler syntax.
func Format(op Opcode, p1, p2 int32) string {
	switch op {
	case MRI, JPC:
		return fmt.Sprintf("%s R%d, %d", op, p1, p2)
	case MRM:
		return fmt.Sprintf("%s R%d, (R%d)", op, p1, p2)
	case MMR:
		return fmt.Sprintf("%s (R%d), R%d", op, p1, p2)
	case SYS:
		return fmt.Sprintf("%s %d, %d", op, p1, p2)
	default:
		return fmt.Sprintf("%s R%d, R%d", op, p1, p2)
	}
}
