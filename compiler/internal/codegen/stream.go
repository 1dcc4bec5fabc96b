package codegen

import (
	"fmt"
	"io"
	"strconv"
)

// CodeStream writes assembly lines and hands out labels that are unique within
// the current namespace.
type CodeStream struct {
	out       io.Writer
	comments  bool
	namespace string
	counter   int
	err       error
}

func NewCodeStream(out io.Writer, comments bool) *CodeStream {
	return &CodeStream{out: out, comments: comments}
}

// SetNamespace starts a new namespace. Each namespace is set at most once per
// program, so labels never collide across namespaces.
func (code *CodeStream) SetNamespace(namespace string) {
	code.namespace = namespace
	code.counter = 1
}

func (code *CodeStream) NextLabel() string {
	label := code.namespace + "_" + strconv.Itoa(code.counter)
	code.counter++
	return label
}

func (code *CodeStream) println(line string) {
	if code.err != nil {
		return
	}
	_, code.err = io.WriteString(code.out, line+"\n")
}

// Emit writes one instruction.
func (code *CodeStream) Emit(format string, args ...interface{}) {
	code.println(fmt.Sprintf(format, args...))
}

func (code *CodeStream) Label(label string) {
	code.println(label + ":")
}

// Comment writes a comment line unless comments are disabled.
func (code *CodeStream) Comment(format string, args ...interface{}) {
	if !code.comments {
		return
	}
	code.println("; " + fmt.Sprintf(format, args...))
}

// Err returns the first write error.
func (code *CodeStream) Err() error {
	return code.err
}
