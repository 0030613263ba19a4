package main

import (
	"context"
	"fmt"
	"os"

	"github.com/linapoint/resortagents/internal/cli"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	rt := &cli.Runtime{
		IsInteractive: func() bool {
			return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
		},
	}
	defer rt.Close()

	return cli.NewRootCmd(rt).ExecuteContext(context.Background())
}
