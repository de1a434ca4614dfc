// Package appshell runs a command under a signal-aware context and exits
// with its status.
package appshell

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"fusionsite/internal/app"
)

// Main cancels the context on SIGINT or SIGTERM. With no arguments it
// prints help.
func Main(run func(context.Context, []string, io.Writer, io.Writer) int) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	argv := os.Args[1:]
	if len(argv) == 0 {
		argv = []string{"--help"}
	}

	code := run(ctx, argv, os.Stdout, os.Stderr)
	// A server stopped by a signal returns cleanly.
	if ctx.Err() != nil && code == app.ExitOK {
		code = app.ExitCancelled
	}

	stop()
	os.Exit(code)
}
