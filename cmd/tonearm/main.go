package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// Exit codes: 1 for command failures, 130 when a run was interrupted
// (the shell convention for SIGINT).
func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "tonearm: run interrupted")
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
