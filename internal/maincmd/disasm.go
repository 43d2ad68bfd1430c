package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/embervm/asm"
	"github.com/mna/embervm/vm"
	"github.com/mna/mainer"
)

// Disasm implements the "disasm" command: assemble every given file onto a
// scratch VM and print the resulting CodeBlock's disassembly.
func (c *Cmd) Disasm(ctx context.Context, stdio mainer.Stdio, args []string) error {
	target := vm.NewVM(vm.Config{})

	for _, path := range args {
		src, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			return err
		}
		if _, err := asm.Assemble(target, string(src)); err != nil {
			fmt.Fprintf(stdio.Stderr, "%s: %s\n", path, err)
			return err
		}
	}

	fmt.Fprint(stdio.Stdout, asm.Disassemble(target.Block()))
	return nil
}
