// Package main is the tsvdb command.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/nao1215/tsvdb/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
