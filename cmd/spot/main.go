package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/alexanderramin/spotsurfer/internal/app"
	"github.com/alexanderramin/spotsurfer/internal/cli"
	"github.com/alexanderramin/spotsurfer/internal/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	config.LoadEnv(nil)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, cancel := config.SignalContext(context.Background(), nil)
	defer cancel()

	rt, err := app.Build(ctx, cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer rt.Close()

	cliApp := &cli.App{
		Assistant: rt.Assistant,
		Serve:     rt.Serve,
	}
	// Assigning a nil *push.Service would make the interface non-nil.
	if rt.Push != nil {
		cliApp.Push = rt.Push
	}

	// Detect interactive terminal for spinners and chat.
	cliApp.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	return cli.NewRootCmd(cliApp).ExecuteContext(ctx)
}
