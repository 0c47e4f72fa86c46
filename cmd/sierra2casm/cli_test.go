package main

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/fatih/color"

	"sierra2casm/internal/compiler"
	"sierra2casm/internal/invocations"
	"sierra2casm/internal/lowering"
	"sierra2casm/internal/program"
)

const withdrawProgram = `
[[functions]]
name = "withdraw"
entry = 0
params = [{ var = "g", type = "GasBuiltin" }]
returns = ["GasBuiltin"]

[[statements]]
libfunc = "get_gas"
args = ["5"]
inputs = ["g"]
branches = [
  { target = "2", results = ["g1"] },
  { target = "fallthrough", results = ["g2"] },
]

[[statements]]
return = ["g2"]

[[statements]]
libfunc = "store_temp"
args = ["GasBuiltin"]
inputs = ["g1"]
branches = [{ results = ["g3"] }]

[[statements]]
return = ["g3"]
`

func compileSource(t *testing.T, src string) (*compiler.Program, *compiler.Result) {
	t.Helper()
	var file program.File
	if err := program.Decode(strings.NewReader(src), program.FormatTOML, &file); err != nil {
		t.Fatalf("decode: %v", err)
	}
	p, err := file.Program()
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	res, err := compiler.Compile(context.Background(), p, compiler.Options{CheckGas: true})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return p, res
}

func TestWriteCASMAnnotated(t *testing.T) {
	p, res := compileSource(t, withdrawProgram)
	var buf bytes.Buffer
	if err := writeCASM(&buf, p, res, true); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "// fn withdraw (gas 1)\n// 0: get_gas<5>(g)") {
		t.Fatalf("missing function header:\n%s", out)
	}
	for i := range p.Statements {
		if !strings.Contains(out, fmt.Sprintf("// %d: %s\n", i, p.Statements[i])) {
			t.Fatalf("statement %d missing:\n%s", i, out)
		}
	}
	if !strings.HasSuffix(out, "ret;\n") {
		t.Fatalf("output should end with the return:\n%s", out)
	}
}

func TestWriteJSON(t *testing.T) {
	_, res := compileSource(t, withdrawProgram)
	var buf bytes.Buffer
	if err := writeJSON(&buf, res); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"function_pc"`) || !strings.Contains(buf.String(), `"withdraw": 0`) {
		t.Fatalf("unexpected json:\n%s", buf.String())
	}
}

func TestAddFallthroughsRecoversPanic(t *testing.T) {
	f := &lowering.FlatLowered{
		Blocks: []lowering.FlatBlock{
			{End: lowering.Goto(2, nil)},
			{End: lowering.Unreachable()},
			{End: lowering.Return()},
		},
	}
	if err := addFallthroughs(f); err == nil {
		t.Fatalf("jump over a block should fail")
	}
}

func TestDescribeLibfunc(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	if err := describeLibfunc(&buf, invocations.DefaultContext(), "get_gas", []string{"5"}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "get_gas<5>") || !strings.Contains(out, "gas -4") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if err := describeLibfunc(&buf, invocations.DefaultContext(), "felt_add", nil); err == nil {
		t.Fatalf("unknown libfunc accepted")
	}
}
