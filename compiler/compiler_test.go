package compiler

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tindzk/oops/assembler"
	"github.com/tindzk/oops/compiler/internal/source"
	"github.com/tindzk/oops/vm"
)

// execute compiles content, runs it on the virtual machine and returns what
// the program wrote.
func execute(t *testing.T, content, input string, config Config) string {
	asm := &bytes.Buffer{}
	_, err := Compile(strings.NewReader(content), asm, config)
	require.Nil(t, err)
	image, err := assembler.CreateAssembler().Assemble(asm)
	require.Nil(t, err)
	out := &bytes.Buffer{}
	machine := vm.New(image, strings.NewReader(input), out, vm.Config{MaxSteps: 1000000, Logger: zerolog.Nop()})
	require.Nil(t, machine.Run())
	return out.String()
}

func mainWith(locals, body string, classes ...string) string {
	return "CLASS Main IS\n  METHOD main IS " + locals + "\n  BEGIN\n" + body + "\n  END METHOD\nEND CLASS\n" +
		strings.Join(classes, "\n")
}

func TestCompile_Programs(t *testing.T) {
	testData := []struct {
		name     string
		content  string
		input    string
		expected string
	}{
		{"write", mainWith("", "WRITE 'H'; WRITE 'i';"), "", "Hi"},
		{"write sum", mainWith("", "WRITE 1 + 2;"), "", "\x03"},
		{"catch matching code", mainWith("", `
    TRY
      THROW 7;
    CATCH 6 DO
      WRITE 'x';
    CATCH 7 DO
      WRITE 'c';
    CATCH 8 DO
      WRITE 'y';
    END TRY
    WRITE 'e';`), "", "ce"},
		{"loop", mainWith("i : Integer;", `
    i := 0;
    WHILE i < 5 DO
      WRITE '0' + i;
      i := i + 1;
    END WHILE`), "", "01234"},
		{"if chain", mainWith("i : Integer;", `
    i := 0;
    WHILE i < 4 DO
      IF i = 0 THEN WRITE 'a';
      ELSEIF i = 1 THEN WRITE 'b';
      ELSEIF i # 3 THEN WRITE 'c';
      ELSE WRITE 'd';
      END IF
      i := i + 1;
    END WHILE`), "", "abcd"},
		{"arithmetic", mainWith("", `
    WRITE '0' + 7 MOD 4;
    WRITE '0' + 9 / 2;
    WRITE '0' + (2 + 3) * 1 - 1;
    WRITE '0' - -1;`), "", "3441"},
		{"logic", mainWith("", `
    IF TRUE AND NOT FALSE THEN WRITE 'y'; ELSE WRITE 'n'; END IF
    IF FALSE AND TRUE THEN WRITE 'y'; ELSE WRITE 'n'; END IF
    IF FALSE OR 1 > 0 THEN WRITE 'y'; ELSE WRITE 'n'; END IF`), "", "yny"},
		{"read", mainWith("c : Integer;", `
    READ c;
    WHILE c # -1 DO
      WRITE c;
      READ c;
    END WHILE`), "echo", "echo"},
		{"parameters and return values", mainWith("c : Calc;", `
    c := NEW Calc;
    WRITE '0' + c.add(3, 4);
    WRITE '0' + c.fact(3);`, `
CLASS Calc IS
  METHOD add(x, y : Integer) : Integer IS
  BEGIN
    RETURN x + y;
  END METHOD
  METHOD fact(n : Integer) : Integer IS
  BEGIN
    IF n <= 1 THEN
      RETURN 1;
    END IF
    RETURN n * fact(n - 1);
  END METHOD
END CLASS`), "", "76"},
		{"dynamic dispatch", mainWith("a : A;", `
    a := NEW A;
    a.run;
    a := NEW B;
    a.run;`, `
CLASS A IS
  METHOD name IS
  BEGIN
    WRITE 'A';
  END METHOD
  METHOD run IS
  BEGIN
    name;
  END METHOD
END CLASS
CLASS B EXTENDS A IS
  METHOD name IS
  BEGIN
    WRITE 'B';
    BASE.name;
  END METHOD
END CLASS`), "", "ABA"},
		{"attributes and null", mainWith("n : Node;", `
    n := NEW Node;
    n.value := 4;
    IF n.next = NULL THEN WRITE 'n'; END IF
    n.next := n;
    IF NULL # n.next THEN WRITE '0' + n.next.value; END IF
    n.flag := TRUE;
    IF n.flag THEN WRITE 't'; END IF`, `
CLASS Node IS
  next : Node;
  value : Integer;
  flag : Boolean;
END CLASS`), "", "n4t"},
		{"try", mainWith("i : Integer;", `
    i := 1;
    TRY
      WRITE 'a';
      THROW 2;
      WRITE 'b';
    CATCH 1 DO
      WRITE '1';
    CATCH 2 DO
      WRITE '2';
    END TRY
    WRITE '0' + i;`), "", "a21"},
		{"throw across methods", mainWith("t : Thrower; i : Integer;", `
    i := 3;
    t := NEW Thrower;
    TRY
      t.deep(2);
    CATCH 5 DO
      WRITE 'c';
    END TRY
    WRITE '0' + i;
    TRY
      t.deep(0);
    CATCH 1 DO
      WRITE 'x';
    END TRY
    WRITE 'e';`, `
CLASS Thrower IS
  METHOD deep(n : Integer) IS
  BEGIN
    IF n > 0 THEN
      deep(n - 1);
    ELSE
      THROW 5;
    END IF
  END METHOD
END CLASS`), "", "c3ABORT \x05"},
		{"nested try", mainWith("", `
    TRY
      TRY
        THROW 7;
      CATCH 1 DO
        WRITE 'x';
      END TRY
    CATCH 7 DO
      WRITE 'o';
    END TRY
    TRY
      WRITE 'p';
    CATCH 1 DO
      WRITE 'x';
    END TRY
    WRITE 'q';`), "", "opq"},
		{"return inside try", mainWith("r : R;", `
    r := NEW R;
    WRITE '0' + r.f;
    WRITE '0' + r.f;
    THROW 'e';`, `
CLASS R IS
  METHOD f : Integer IS
  BEGIN
    TRY
      RETURN 1;
    CATCH 1 DO
      RETURN 2;
    END TRY
  END METHOD
END CLASS`), "", "11ABORT e"},
		{"uncaught", mainWith("", "WRITE 'a'; THROW 'x'; WRITE 'b';"), "", "aABORT x"},
		{"constant elseif after falling then", mainWith("g : G;", `
    g := NEW G;
    g.f(TRUE);
    WRITE 'z';`, `
CLASS G IS
  METHOD f(c : Boolean) IS
  BEGIN
    IF c THEN
      WRITE 'a';
    ELSEIF TRUE THEN
      RETURN;
    END IF
  END METHOD
  METHOD h IS
  BEGIN
    WRITE 'H';
  END METHOD
END CLASS`), "", "az"},
	}
	for _, data := range testData {
		t.Run(data.name, func(t *testing.T) {
			assert.Equal(t, data.expected, execute(t, data.content, data.input, DefaultConfig()))
		})
	}
}

func TestCompile_FallthroughLogic(t *testing.T) {
	content := mainWith("", "IF FALSE AND TRUE THEN WRITE 'y'; ELSE WRITE 'n'; END IF")
	config := DefaultConfig()
	assert.Equal(t, "n", execute(t, content, "", config))
	config.Compat.FallthroughLogic = true
	assert.Equal(t, "y", execute(t, content, "", config))
}

func TestCompile_EntryPoint(t *testing.T) {
	content := "CLASS App IS METHOD start IS BEGIN WRITE 's'; END METHOD END CLASS"
	config := DefaultConfig()
	config.Entry = EntryConfig{Class: "App", Method: "start"}
	assert.Equal(t, "s", execute(t, content, "", config))

	_, err := Compile(strings.NewReader(content), &bytes.Buffer{}, DefaultConfig())
	assert.EqualError(t, err, "Undeclared identifier Main.")
}

func TestCompile_Errors(t *testing.T) {
	testData := []struct {
		content string
		msg     string
	}{
		{"CLASS Main IS METHOD main IS BEGIN WRITE x; END METHOD END CLASS",
			"line 1, column 42: Undeclared identifier x."},
		{"CLASS Main IS METHOD main IS BEGIN WRITE 1 END METHOD END CLASS",
			"line 1, column 44: Syntax error near END."},
		{"CLASS Main IS $", "line 1, column 15: Unexpected character: $ (code 36)."},
	}
	for _, data := range testData {
		_, err := Compile(strings.NewReader(data.content), &bytes.Buffer{}, DefaultConfig())
		assert.EqualError(t, err, data.msg, data.content)
		assert.True(t, IsCompileError(err), data.content)
	}

	config := DefaultConfig()
	config.Memory.HeapSize = 0
	_, err := Compile(strings.NewReader(mainWith("", "")), &bytes.Buffer{}, config)
	assert.EqualError(t, err, "heap_size must be greater than 0")
	assert.False(t, IsCompileError(err))
}

func TestCompile_Logging(t *testing.T) {
	logs := &bytes.Buffer{}
	config := DefaultConfig()
	config.Logger = zerolog.New(logs).Level(zerolog.DebugLevel)
	_, err := Compile(strings.NewReader(mainWith("", "")), &bytes.Buffer{}, config)
	require.Nil(t, err)
	for _, phase := range []string{"parse", "analyze", "codegen"} {
		assert.Contains(t, logs.String(), `"phase":"`+phase+`"`)
	}
	assert.Contains(t, logs.String(), `"classes":4`)
}

func TestProgram_Print(t *testing.T) {
	program, err := Analyze(strings.NewReader(mainWith("", "WRITE 1;")), DefaultConfig())
	require.Nil(t, err)
	out := &bytes.Buffer{}
	require.Nil(t, program.Print(out))
	assert.Contains(t, out.String(), "CLASS Main")
	assert.Contains(t, out.String(), "WRITE")
}

func TestProgram_DumpResolutions(t *testing.T) {
	content := "CLASS Main IS METHOD main IS i : Integer; BEGIN i := 1; END METHOD END CLASS"
	program, err := Analyze(strings.NewReader(content), DefaultConfig())
	require.Nil(t, err)
	out := &bytes.Buffer{}
	require.Nil(t, program.DumpResolutions(out))

	var entries []resolution
	require.Nil(t, yaml.Unmarshal(out.Bytes(), &entries))
	assert.Equal(t, []resolution{
		{Name: "Integer", Kind: "class", At: location{1, 34}},
		{Name: "i", Kind: "local", At: location{1, 49}, Declared: &location{1, 30}},
		{Name: "Main", Kind: "class", Declared: &location{1, 7}},
		{Name: "main", Kind: "method", Declared: &location{1, 22}},
	}, entries)
	assert.NotContains(t, out.String(), "declared:\n    line: 0")
}

func TestParseConfig(t *testing.T) {
	config, err := ParseConfig([]byte(`
[memory]
stack_size = 200

[entry]
class = "App"

[compat]
fallthrough_logic = true

[output]
comments = false
`))
	require.Nil(t, err)
	assert.Equal(t, MemoryConfig{StackSize: 200, HeapSize: 100}, config.Memory)
	assert.Equal(t, EntryConfig{Class: "App", Method: "main"}, config.Entry)
	assert.True(t, config.Compat.FallthroughLogic)
	assert.False(t, config.Output.Comments)

	testData := []struct {
		content string
		msg     string
	}{
		{"[memory]\nstack_size = 0", "stack_size must be greater than 0"},
		{"[memory]\nheap_size = -1", "heap_size must be greater than 0"},
		{"[entry]\nmethod = \"\"", "entry class and method must be set"},
		{"[memory]\nstacksize = 10", "unknown key memory.stacksize"},
	}
	for _, data := range testData {
		_, err := ParseConfig([]byte(data.content))
		assert.EqualError(t, err, data.msg, data.content)
	}
	_, err = ParseConfig([]byte("[memory"))
	assert.NotNil(t, err)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "oopsc.toml")
	require.Nil(t, os.WriteFile(path, []byte("[memory]\nheap_size = 300\n"), 0644))
	config, err := LoadConfig(path)
	require.Nil(t, err)
	assert.Equal(t, 300, config.Memory.HeapSize)
	assert.Equal(t, 100, config.Memory.StackSize)

	_, err = LoadConfig(filepath.Join(dir, "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestIsCompileError(t *testing.T) {
	assert.True(t, IsCompileError(source.Errorf(source.SyntaxError, source.Position{Line: 1, Column: 1}, "x")))
	assert.False(t, IsCompileError(os.ErrNotExist))
}
