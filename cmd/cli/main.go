package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vk/actionhub/internal/action"
	"github.com/vk/actionhub/internal/app"
	"github.com/vk/actionhub/internal/cli"
	"github.com/vk/actionhub/internal/request"
)

// main is the entrypoint for the actionhub binary.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	if err := run(os.Stdout, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and
// error handling.
func run(outW io.Writer, args []string) error {
	appConfig, uri, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	key, fields, err := request.Parse(uri)
	if err != nil {
		return err
	}

	ctx := context.Background()
	hub := app.New(outW, appConfig)
	if err := hub.Setup(ctx); err != nil {
		return err
	}
	defer hub.Teardown()

	result, err := hub.Dispatch(ctx, key, fields)
	if err != nil {
		return err
	}

	// In nonblocking mode the dispatcher hands back the pending handle;
	// the CLI has nothing else to do, so resolve it here.
	if handle, ok := result.(*action.Handle); ok {
		result, err = handle.Await(ctx)
		if err != nil {
			return err
		}
	}

	fmt.Fprintf(outW, "%v\n", result)
	return nil
}
