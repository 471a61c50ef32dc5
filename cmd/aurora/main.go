// Command aurora is the aurora CLI: a local replica of a causally ordered
// message log. Envelopes are stamped with vector clocks, reconciled
// pairwise against each conversation's head, and stored in SQLite.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

const version = "1.0.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root, a := newRootCommand()
	err := root.ExecuteContext(ctx)
	a.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "aurora: %v\n", err)
		stop()
		os.Exit(exitCode(err))
	}
}
