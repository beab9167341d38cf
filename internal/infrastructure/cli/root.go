package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/task-sh/task-sh/internal/app"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
}

// NewRootCmd wires the cobra command tree. The bare root doubles as the gen
// command so `task list files over 100mb` works without a subcommand.
func NewRootCmd(ctx context.Context, opts Options) (*cobra.Command, error) {
	container, err := app.BuildContainer(ctx, opts.Verbose)
	if err != nil {
		return nil, err
	}

	var rootOpts genOptions
	root := &cobra.Command{
		Use:   "task [description]",
		Short: "task - natural language to shell commands",
		Long: "task converts a natural-language description into one vetted shell\n" +
			"command for bash or zsh. The command is printed, never executed.\n" +
			"Put -- before a description that contains dashes.",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && terminalStdin() {
				return cmd.Help()
			}
			return runGen(cmd, args, container, &rootOpts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	registerGenFlags(root, &rootOpts, container.Config)
	root.CompletionOptions.DisableDefaultCmd = true

	root.AddCommand(newGenCommand(container))
	root.AddCommand(newHistoryCommand(container))
	root.AddCommand(newConfigCommand(container))
	root.AddCommand(newDoctorCommand(container))
	root.AddCommand(newVersionCommand())
	root.AddCommand(newCompletionsCommand(root))
	return root, nil
}
