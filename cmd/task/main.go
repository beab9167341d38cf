package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/task-sh/task-sh/internal/domain"
	"github.com/task-sh/task-sh/internal/infrastructure/cli"
)

func main() {
	ctx := context.Background()
	opts := cli.Options{Verbose: isDebug()}

	root, err := cli.NewRootCmd(ctx, opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, "task:", err)
		os.Exit(cli.ExitUsage)
	}

	if err := root.ExecuteContext(ctx); err != nil {
		// A blocked verdict was already explained by the presenter.
		var blocked *domain.BlockedError
		if !errors.As(err, &blocked) {
			fmt.Fprintln(os.Stderr, "task:", err)
		}
		os.Exit(cli.ExitCode(err))
	}
}

func isDebug() bool {
	value := os.Getenv("TASK_SH_DEBUG")
	return strings.EqualFold(value, "1") || strings.EqualFold(value, "true")
}
