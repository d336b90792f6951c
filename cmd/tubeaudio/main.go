package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

// run executes the CLI and maps the outcome to a process exit code. Per-URL
// failures and interrupts were already reported by the batch, so only other
// errors are printed.
func run(args []string, stderr io.Writer) int {
	root := newRootCommand()
	root.SetArgs(args)
	err := root.Execute()
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled), errors.Is(err, errRunFailed):
		return 1
	default:
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
}
