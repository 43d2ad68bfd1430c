package asm_test

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/mna/embervm/asm"
	"github.com/mna/embervm/internal/filetest"
	"github.com/mna/embervm/vm"
	"github.com/stretchr/testify/require"
)

var updateDisasm = flag.Bool("test.update-disasm-tests", false, "If set, replace expected disassembly golden files with actual output.")
var updateRun = flag.Bool("test.update-run-tests", false, "If set, replace expected run golden files with actual output.")

// TestGoldenDisassemble discovers every testdata/*.vasm program, assembles
// it, disassembles the result, and diffs the text against the matching
// testdata/*.vasm.dis.want golden file.
func TestGoldenDisassemble(t *testing.T) {
	dir := "testdata"
	for _, fi := range filetest.SourceFiles(t, dir, ".vasm") {
		fi := fi
		t.Run(fi.Name(), func(t *testing.T) {
			src, err := os.ReadFile(filepath.Join(dir, fi.Name()))
			require.NoError(t, err)

			target := vm.NewVM(vm.Config{})
			_, err = asm.Assemble(target, string(src))
			require.NoError(t, err)

			got := asm.Disassemble(target.Block())
			filetest.DiffCustom(t, fi, "disassembly", ".dis.want", got, dir, updateDisasm)
		})
	}
}

// TestGoldenRun assembles and interprets testdata/arithmetic.vasm to
// completion and diffs a textual summary of the interpreter's outcome
// against testdata/arithmetic.vasm.run.want. Only programs whose final
// value-stack contents are pointer-free (doubles, bools) are exercised
// this way, since object String() forms (e.g. ObjListCons's "cons(%p)")
// are not stable across runs.
func TestGoldenRun(t *testing.T) {
	dir := "testdata"
	name := "arithmetic.vasm"
	fi := lookupSourceFile(t, dir, name)

	src, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)

	target := vm.NewVM(vm.Config{})
	labels, err := asm.Assemble(target, string(src))
	require.NoError(t, err)

	fiber := target.NewFiber(labels["main"], nil)
	res, code, err := target.Interpret(fiber)
	require.NoError(t, err)

	got := fmt.Sprintf("result=%s code=%d stack=%s\n", res, code, renderStack(fiber))
	filetest.DiffCustom(t, fi, "run", ".run.want", got, dir, updateRun)
}

func renderStack(fiber *vm.ObjFiber) string {
	vals := fiber.Values
	s := "["
	for i, v := range vals {
		if i > 0 {
			s += " "
		}
		s += v.String()
	}
	return s + "]"
}

func lookupSourceFile(t *testing.T, dir, name string) os.FileInfo {
	t.Helper()
	for _, fi := range filetest.SourceFiles(t, dir, ".vasm") {
		if fi.Name() == name {
			return fi
		}
	}
	t.Fatalf("fixture %q not found in %s", name, dir)
	return nil
}
