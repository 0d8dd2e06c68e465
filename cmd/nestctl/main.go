package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	nestctlcmd "github.com/telekom/nestctl/pkg/nestctl/cmd"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return execute(ctx, nestctlcmd.DefaultConfig(), args, os.Stderr)
}

func execute(ctx context.Context, cfg nestctlcmd.Config, args []string, stderr io.Writer) int {
	if err := nestctlcmd.Execute(ctx, cfg, args); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
