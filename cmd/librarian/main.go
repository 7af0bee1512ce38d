// Package main is the librarian command line.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jsamuelsen/library-circulation/internal/adapters/cli"
)

// Version is injected via ldflags.
var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := cli.NewRootCommand(Version).ExecuteContext(ctx)
	if err == nil {
		return
	}

	fmt.Fprintf(os.Stderr, "error: %v\n", err)

	// 2 means the command ran and a circulation rule refused it.
	code := 1

	var cmdErr *cli.CommandError
	if errors.As(err, &cmdErr) {
		code = 2
	}

	stop()
	os.Exit(code)
}
