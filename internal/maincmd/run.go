package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/embervm/asm"
	"github.com/mna/embervm/internal/battery"
	"github.com/mna/embervm/vm"
	"github.com/mna/mainer"
)

// Run implements the "run" command: assemble every given file onto one VM,
// register the battery foreign functions, and interpret starting at the
// --entry label (defaulting to "main").
func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	entry := c.Entry
	if entry == "" {
		entry = "main"
	}

	cfg, err := vmConfig(c.StressGC)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}
	target := vm.NewVM(cfg)
	if _, err := battery.Register(target); err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	var labels map[string]int
	for _, path := range args {
		src, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			return err
		}
		labels, err = asm.Assemble(target, string(src))
		if err != nil {
			fmt.Fprintf(stdio.Stderr, "%s: %s\n", path, err)
			return err
		}
	}

	start, ok := labels[entry]
	if !ok {
		err := fmt.Errorf("entry label %q not found", entry)
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	fiber := target.NewFiber(start, nil)
	res, code, err := target.Interpret(fiber)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}
	switch res {
	case vm.ResultSuccess:
		fmt.Fprintln(stdio.Stdout, "success")
	case vm.ResultAbort:
		fmt.Fprintf(stdio.Stdout, "abort: code %d\n", code)
		return fmt.Errorf("program aborted with code %d", code)
	case vm.ResultSuspended:
		fmt.Fprintln(stdio.Stdout, "suspended (no outstanding resume callback; exiting)")
	}
	return nil
}
