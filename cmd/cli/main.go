/*
Package main is the entry point for the phonebook command line client.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"phonebook/internal/cli"
	"phonebook/internal/pkg/logx"
)

func main() {
	// Only warnings reach the terminal; prompts own stdout.
	logx.Setup(zerolog.ConsoleWriter{Out: os.Stderr}, zerolog.WarnLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCommand(&cli.App{})
	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, cli.ErrAborted) {
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
