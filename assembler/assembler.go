// Package assembler turns OOPS assembly text into a memory image.
//
// Every line holds labels and at most one statement, optionally followed by a
// comment starting with ';':
//
//	label:
//	MRI Ra, number|label
//	MRR Ra, Rb            (ADD SUB MUL DIV MOD AND OR XOR ISZ ISP ISN alike)
//	MRM Ra, (Rb)
//	MMR (Ra), Rb
//	JPC Ra, number|label
//	SYS number, number
//	DAT count, number|label
//
// Labels may be used before they are declared. The first pass only computes
// label addresses, the second one writes the image.
package assembler

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tidwall/btree"

	"github.com/tindzk/oops/util"
)

type CommandType int

const (
	InstructionCommand CommandType = iota
	DataCommand
)

// Command is one assembled statement, kept for listings. For DAT the
// parameters are the count and the value.
type Command struct {
	Tp              CommandType
	Addr            int
	Op              Opcode
	Params          [2]int32
	Line            int
	OriginalContent string
}

func (command Command) String() string {
	if command.Tp == DataCommand {
		more := ""
		if command.Params[0] != 1 {
			more = "..."
		}
		return fmt.Sprintf("%08x  %08x %3s                %s", command.Addr, command.Params[1], more,
			command.OriginalContent)
	}
	return fmt.Sprintf("%08x  %08x %08x %08x  %s", command.Addr, int32(command.Op), command.Params[0],
		command.Params[1], command.OriginalContent)
}

// Label is a declared label and the address it stands for.
type Label struct {
	Name string
	Addr int
}

type Assembler struct {
	line     int
	writePos int
	// output is nil during the first pass.
	output   []int32
	labels   btree.Map[string, int]
	commands []Command
}

func CreateAssembler() *Assembler {
	return &Assembler{line: 1}
}

// Assemble reads the whole program from rd and returns the memory image.
func (asm *Assembler) Assemble(rd io.Reader) ([]int32, error) {
	content, err := io.ReadAll(rd)
	if err != nil {
		return nil, fmt.Errorf("reading assembly: %w", err)
	}
	asm.labels = btree.Map[string, int]{}
	asm.commands = nil
	asm.output = nil
	if err := asm.pass(content); err != nil {
		return nil, err
	}
	asm.output = make([]int32, asm.writePos)
	if err := asm.pass(content); err != nil {
		return nil, err
	}
	return asm.output, nil
}

// Labels returns the declared labels ordered by name.
func (asm *Assembler) Labels() []Label {
	labels := make([]Label, 0, asm.labels.Len())
	asm.labels.Scan(func(name string, addr int) bool {
		labels = append(labels, Label{Name: name, Addr: addr})
		return true
	})
	return labels
}

// Commands returns the statements of the last successful run.
func (asm *Assembler) Commands() []Command {
	return asm.commands
}

func (asm *Assembler) isFirstPass() bool {
	return asm.output == nil
}

func (asm *Assembler) pass(content []byte) error {
	asm.line = 1
	asm.writePos = 0
	bfReader := bufio.NewReader(bytes.NewReader(content))
	for {
		line, err := bfReader.ReadBytes('\n')
		if err != nil && err != io.EOF {
			return err
		}
		if len(line) != 0 {
			if err := asm.transformLine(line); err != nil {
				return err
			}
		}
		if err == io.EOF {
			return nil
		}
		asm.line++
	}
}

func (asm *Assembler) transformLine(line []byte) error {
	tokens, err := asm.tokenizeLine(line)
	if err != nil {
		return err
	}
	content := string(bytes.TrimSpace(line))
	for len(tokens) != 0 {
		if tokens, err = asm.transformStatement(tokens, content); err != nil {
			return err
		}
	}
	return nil
}

// tokenizeLine splits a line into the punctuation , : ( ) plus numbers and
// identifiers. Everything after ';' is dropped.
func (asm *Assembler) tokenizeLine(line []byte) ([]string, error) {
	var tokens []string
	for pos := 0; pos < len(line); {
		b := line[pos]
		switch {
		case util.IsSpace(b):
			pos++
		case b == ';':
			return tokens, nil
		case b == ',' || b == ':' || b == '(' || b == ')':
			tokens = append(tokens, string(b))
			pos++
		case b == '-' || util.IsNumber(b):
			start := pos
			pos++
			for pos < len(line) && util.IsNumber(line[pos]) {
				pos++
			}
			if pos-start == 1 && b == '-' {
				return nil, asm.makeSyntaxErr("number must have at least one digit: -")
			}
			tokens = append(tokens, string(line[start:pos]))
		case util.IsLetterOrUnderscore(b):
			start := pos
			for pos < len(line) && util.IsLetterOrUnderscoreOrNumber(line[pos]) {
				pos++
			}
			tokens = append(tokens, string(line[start:pos]))
		default:
			return nil, asm.makeSyntaxErr(fmt.Sprintf("unexpected character: %c (%d)", b, b))
		}
	}
	return tokens, nil
}

// transformStatement consumes one label or statement and returns the tokens
// after it.
func (asm *Assembler) transformStatement(tokens []string, content string) ([]string, error) {
	word := tokens[0]
	if len(tokens) > 1 && tokens[1] == ":" {
		return tokens[2:], asm.transformLabel(word)
	}
	if word == "DAT" {
		return asm.transformData(tokens[1:], content)
	}
	op, ok := LookupOpcode(word)
	if !ok {
		return nil, asm.makeSyntaxErr(fmt.Sprintf("unknown instruction %s", word))
	}
	return asm.transformInstruction(op, tokens[1:], content)
}

func (asm *Assembler) transformLabel(label string) error {
	if !util.IsLetterOrUnderscore(label[0]) {
		return asm.makeSyntaxErr(fmt.Sprintf("label does not start with a letter: %s:", label))
	}
	if !asm.isFirstPass() {
		return nil
	}
	if _, exist := asm.labels.Get(label); exist {
		return asm.makeSyntaxErr(fmt.Sprintf("found duplicate label %s", label))
	}
	asm.labels.Set(label, asm.writePos)
	return nil
}

func (asm *Assembler) transformInstruction(op Opcode, tokens []string, content string) ([]string, error) {
	var word1, word2 string
	var err error
	if op == MMR {
		if word1, tokens, err = asm.parenthesized(tokens, "first parameter of MMR must be parenthesized"); err != nil {
			return nil, err
		}
	} else if word1, tokens, err = asm.nextWord(tokens); err != nil {
		return nil, err
	}
	if tokens, err = asm.expect(tokens, ",", "comma expected"); err != nil {
		return nil, err
	}
	if op == MRM {
		if word2, tokens, err = asm.parenthesized(tokens, "second parameter of MRM must be parenthesized"); err != nil {
			return nil, err
		}
	} else if word2, tokens, err = asm.nextWord(tokens); err != nil {
		return nil, err
	}

	param1, err := asm.parseParam(word1, op.firstIsRegister())
	if err != nil {
		return nil, err
	}
	param2, err := asm.parseParam(word2, op.secondIsRegister())
	if err != nil {
		return nil, err
	}
	asm.record(Command{Tp: InstructionCommand, Op: op, Params: [2]int32{param1, param2}}, content)
	asm.writeCode(int32(op))
	asm.writeCode(param1)
	asm.writeCode(param2)
	return tokens, nil
}

// transformData handles DAT count, value. A zero value only reserves the
// words since the image starts out zeroed.
func (asm *Assembler) transformData(tokens []string, content string) ([]string, error) {
	word1, tokens, err := asm.nextWord(tokens)
	if err != nil {
		return nil, err
	}
	if tokens, err = asm.expect(tokens, ",", "comma expected"); err != nil {
		return nil, err
	}
	word2, tokens, err := asm.nextWord(tokens)
	if err != nil {
		return nil, err
	}
	if util.IsLetterOrUnderscore(word1[0]) {
		return nil, asm.makeSyntaxErr("first parameter of DAT cannot be a label")
	}
	count, err := asm.parseParam(word1, false)
	if err != nil {
		return nil, err
	}
	if count <= 0 {
		return nil, asm.makeSyntaxErr("first parameter of DAT must be greater than 0")
	}
	value, err := asm.parseParam(word2, false)
	if err != nil {
		return nil, err
	}
	asm.record(Command{Tp: DataCommand, Params: [2]int32{count, value}}, content)
	if value == 0 {
		asm.writePos += int(count)
		return tokens, nil
	}
	for i := int32(0); i < count; i++ {
		asm.writeCode(value)
	}
	return tokens, nil
}

func (asm *Assembler) record(command Command, content string) {
	if asm.isFirstPass() {
		return
	}
	command.Addr = asm.writePos
	command.Line = asm.line
	command.OriginalContent = content
	asm.commands = append(asm.commands, command)
}

func (asm *Assembler) nextWord(tokens []string) (string, []string, error) {
	if len(tokens) == 0 || isPunctuation(tokens[0]) {
		return "", nil, asm.makeSyntaxErr("missing parameter")
	}
	return tokens[0], tokens[1:], nil
}

func (asm *Assembler) expect(tokens []string, token, msg string) ([]string, error) {
	if len(tokens) == 0 || tokens[0] != token {
		return nil, asm.makeSyntaxErr(msg)
	}
	return tokens[1:], nil
}

func (asm *Assembler) parenthesized(tokens []string, msg string) (string, []string, error) {
	tokens, err := asm.expect(tokens, "(", msg)
	if err != nil {
		return "", nil, err
	}
	word, tokens, err := asm.nextWord(tokens)
	if err != nil {
		return "", nil, err
	}
	if tokens, err = asm.expect(tokens, ")", msg); err != nil {
		return "", nil, err
	}
	return word, tokens, nil
}

func isPunctuation(token string) bool {
	return token == "," || token == ":" || token == "(" || token == ")"
}

// parseParam decodes a register, a number or a label. Labels resolve to 0
// during the first pass.
func (asm *Assembler) parseParam(word string, register bool) (int32, error) {
	if register {
		if !strings.HasPrefix(word, "R") {
			return 0, asm.makeSyntaxErr(fmt.Sprintf("register expected: %s", word))
		}
		num, err := strconv.ParseInt(word[1:], 10, 32)
		if err != nil || word != "R"+strconv.FormatInt(num, 10) || num < 0 {
			return 0, asm.makeSyntaxErr(fmt.Sprintf("wrong register: %s", word))
		}
		return int32(num), nil
	}
	if util.IsLetterOrUnderscore(word[0]) {
		if asm.isFirstPass() {
			return 0, nil
		}
		addr, exist := asm.labels.Get(word)
		if !exist {
			return 0, asm.makeSyntaxErr(fmt.Sprintf("label %s not found", word))
		}
		return int32(addr), nil
	}
	num, err := strconv.ParseInt(word, 10, 32)
	if err != nil {
		return 0, asm.makeSyntaxErr(fmt.Sprintf("wrong decimal value format: %s", word))
	}
	return int32(num), nil
}

func (asm *Assembler) writeCode(code int32) {
	if !asm.isFirstPass() {
		asm.output[asm.writePos] = code
	}
	asm.writePos++
}

func (asm *Assembler) makeSyntaxErr(msg string) error {
	return fmt.Errorf("syntax err at line %d: %s", asm.line, msg)
}
