package ast

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Printer writes an indented dump of the analyzed tree, one node per line.
type Printer struct {
	out    io.Writer
	indent int
	width  int
	err    error
}

func NewPrinter(out io.Writer, width int) *Printer {
	return &Printer{out: out, width: width}
}

func (printer *Printer) println(s string) {
	if printer.err != nil {
		return
	}
	_, printer.err = fmt.Fprintf(printer.out, "%s%s\n", strings.Repeat(" ", printer.indent*printer.width), s)
}

// Err returns the first write error.
func (printer *Printer) Err() error {
	return printer.err
}

func (printer *Printer) enter() { printer.indent++ }
func (printer *Printer) leave() { printer.indent-- }

// PrintClasses dumps every class and returns the first write error.
func (printer *Printer) PrintClasses(classes []*ClassSymbol) error {
	for _, c := range classes {
		printer.printClass(c)
	}
	return printer.err
}

func (printer *Printer) printClass(c *ClassSymbol) {
	header := "CLASS " + c.Name.Name
	if c.BaseRef != nil {
		header += " EXTENDS " + c.BaseRef.Name()
	}
	printer.println(header)
	printer.enter()
	if len(c.Attributes) != 0 {
		printer.println("ATTRIBUTES")
		printer.enter()
		for _, a := range c.Attributes {
			printer.printVariable(a)
		}
		printer.leave()
	}
	if len(c.Methods) != 0 {
		printer.println("METHODS")
		printer.enter()
		for _, m := range c.Methods {
			printer.printMethod(m)
		}
		printer.leave()
	}
	printer.leave()
}

func (printer *Printer) printVariable(v *VariableSymbol) {
	printer.println(fmt.Sprintf("%s (%s %d) : %s", v.Name.Name, v.Kind, v.Offset, v.TypeRef.Name()))
}

func (printer *Printer) printMethod(m *MethodSymbol) {
	printer.println(fmt.Sprintf("METHOD %s : %s (VMT %d)", m.Name.Name, m.ReturnRef.Name(), m.VMTIndex))
	printer.enter()
	if len(m.Parameters) != 0 {
		printer.println("PARAMETERS")
		printer.enter()
		for _, p := range m.Parameters {
			printer.printVariable(p)
		}
		printer.leave()
	}
	if len(m.Locals) != 0 {
		printer.println("VARIABLES")
		printer.enter()
		for _, v := range m.Locals {
			printer.printVariable(v)
		}
		printer.leave()
	}
	if len(m.Statements) != 0 {
		printer.println("BEGIN")
		printer.enter()
		printer.PrintStatements(m.Statements)
		printer.leave()
	}
	printer.leave()
}

func (printer *Printer) PrintStatements(stmts []Statement) {
	for _, s := range stmts {
		printer.PrintStatement(s)
	}
}

func (printer *Printer) block(label string, stmts []Statement) {
	if len(stmts) == 0 {
		return
	}
	printer.println(label)
	printer.enter()
	printer.PrintStatements(stmts)
	printer.leave()
}

func (printer *Printer) PrintStatement(stmt Statement) {
	switch s := stmt.(type) {
	case *Assignment:
		printer.println("ASSIGNMENT")
		printer.enter()
		printer.PrintExpression(s.Left)
		printer.PrintExpression(s.Right)
		printer.leave()
	case *If:
		printer.println("IF")
		printer.enter()
		printer.PrintExpression(s.Cond)
		printer.leave()
		printer.block("THEN", s.Then)
		for _, elseIf := range s.ElseIfs {
			printer.println("ELSEIF")
			printer.enter()
			printer.PrintExpression(elseIf.Cond)
			printer.leave()
			printer.block("THEN", elseIf.Body)
		}
		printer.block("ELSE", s.Else)
	case *While:
		printer.println("WHILE")
		printer.enter()
		printer.PrintExpression(s.Cond)
		printer.leave()
		printer.block("DO", s.Body)
	case *Try:
		printer.println("TRY")
		printer.enter()
		printer.PrintStatements(s.Body)
		printer.leave()
		for _, c := range s.Catches {
			printer.println("CATCH")
			printer.enter()
			printer.PrintExpression(c.Code)
			printer.PrintStatements(c.Body)
			printer.leave()
		}
	case *Throw:
		printer.println("THROW")
		printer.enter()
		printer.PrintExpression(s.Value)
		printer.leave()
	case *Return:
		printer.println("RETURN")
		if s.Value != nil {
			printer.enter()
			printer.PrintExpression(s.Value)
			printer.leave()
		}
	case *Read:
		printer.println("READ")
		printer.enter()
		printer.PrintExpression(s.Operand)
		printer.leave()
	case *Write:
		printer.println("WRITE")
		printer.enter()
		printer.PrintExpression(s.Operand)
		printer.leave()
	case *Call:
		printer.println("CALL")
		printer.enter()
		printer.PrintExpression(s.Call)
		printer.leave()
	default:
		panic(fmt.Sprintf("ast: unknown statement %T", stmt))
	}
}

// typeSuffix renders " : [REF ]Type" once the node has been analyzed.
func typeSuffix(e Expression) string {
	if e.Type() == nil {
		return ""
	}
	ref := ""
	if e.LValue() {
		ref = "REF "
	}
	return " : " + ref + e.Type().Name.Name
}

func (printer *Printer) unaryNode(label string, e Expression, operand Expression) {
	printer.println(label + typeSuffix(e))
	printer.enter()
	printer.PrintExpression(operand)
	printer.leave()
}

func (printer *Printer) PrintExpression(expr Expression) {
	switch e := expr.(type) {
	case *Literal:
		value := strconv.Itoa(e.Value)
		switch e.Kind {
		case BoolLiteral:
			value = "FALSE"
			if e.Value != 0 {
				value = "TRUE"
			}
		case NullLiteral:
			value = "NULL"
		}
		printer.println(value + typeSuffix(e))
	case *Binary:
		printer.println(e.Op.String() + typeSuffix(e))
		printer.enter()
		printer.PrintExpression(e.Left)
		printer.PrintExpression(e.Right)
		printer.leave()
	case *Unary:
		printer.unaryNode(e.Op.String(), e, e.Operand)
	case *VarOrCall:
		printer.println(e.Ref.Ident.Name + typeSuffix(e))
		if len(e.Args) != 0 {
			printer.enter()
			for _, arg := range e.Args {
				printer.PrintExpression(arg)
			}
			printer.leave()
		}
	case *Access:
		printer.println("PERIOD" + typeSuffix(e))
		printer.enter()
		printer.PrintExpression(e.Left)
		printer.PrintExpression(e.Right)
		printer.leave()
	case *New:
		printer.println("NEW " + e.Class.Name() + typeSuffix(e))
	case *Box:
		printer.unaryNode("BOX", e, e.Operand)
	case *Unbox:
		printer.unaryNode("UNBOX", e, e.Operand)
	case *Deref:
		printer.unaryNode("DEREF", e, e.Operand)
	default:
		panic(fmt.Sprintf("ast: unknown expression %T", expr))
	}
}
