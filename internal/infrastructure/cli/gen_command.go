package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	xterm "golang.org/x/term"

	"github.com/task-sh/task-sh/internal/app"
	"github.com/task-sh/task-sh/internal/domain"
	"github.com/task-sh/task-sh/internal/infrastructure/term"
)

// maxStdinBytes caps how much of a piped description is read.
const maxStdinBytes = 1 << 20

type genOptions struct {
	shell        string
	model        string
	systemPrompt string
	timeout      time.Duration
	verbose      bool
	spinner      bool
	noSpinner    bool
	noMachine    bool
}

func registerGenFlags(cmd *cobra.Command, opts *genOptions, cfg domain.Config) {
	cmd.Flags().StringVarP(&opts.shell, "shell", "s", "", "Target shell (bash|zsh, default from config or $SHELL)")
	cmd.Flags().StringVarP(&opts.model, "model", "m", "", "Override model name (default from config)")
	cmd.Flags().StringVar(&opts.systemPrompt, "system-prompt", "", "Replace the built-in system prompt")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "Override request timeout (e.g. 10s)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Show the raw reply and diagnostics")
	cmd.Flags().BoolVar(&opts.spinner, "spinner", cfg.Preferences.Spinner, "Show a spinner while waiting for the backend")
	cmd.Flags().BoolVar(&opts.noSpinner, "no-spinner", false, "Disable the spinner")
	cmd.Flags().BoolVar(&opts.noMachine, "no-machine-context", false, "Omit host details from the prompt")
}

func newGenCommand(container *app.Container) *cobra.Command {
	var opts genOptions
	cmd := &cobra.Command{
		Use:   "gen [description...]",
		Short: "Generate a command from a task description",
		Long: "Generate one shell command for the described task. The description\n" +
			"is taken from the arguments, or from stdin when piped.",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGen(cmd, args, container, &opts)
		},
	}
	registerGenFlags(cmd, &opts, container.Config)
	return cmd
}

func runGen(cmd *cobra.Command, args []string, container *app.Container, opts *genOptions) error {
	description := strings.Join(args, " ")
	if strings.TrimSpace(description) == "" {
		description = pipedDescription()
	}

	ctx := cmd.Context()
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	verbose := opts.verbose || container.Config.Preferences.Verbose
	container.Spinner.SetEnabled(opts.spinner && !opts.noSpinner && container.Config.Backend.FakeResponse == "")

	outcome, err := container.Generate.Run(domain.GenerateRequest{
		Context:               ctx,
		Description:           description,
		Shell:                 opts.shell,
		ModelOverride:         opts.model,
		SystemPromptOverride:  opts.systemPrompt,
		Verbose:               opts.verbose,
		DisableMachineContext: opts.noMachine || envTrue("TASK_SH_DISABLE_MACHINE_CONTEXT"),
	})

	presenter := term.NewPresenter(verbose)
	var blocked *domain.BlockedError
	if err == nil || errors.As(err, &blocked) {
		presenter.Present(outcome)
		return err
	}
	var parseErr *domain.ParseError
	if verbose && errors.As(err, &parseErr) {
		presenter.ShowRaw(parseErr.Raw)
	}
	return err
}

// pipedDescription reads the task description from stdin when it is piped
// in. An interactive stdin is never read.
func pipedDescription() string {
	if terminalStdin() {
		return ""
	}
	data, err := io.ReadAll(io.LimitReader(os.Stdin, maxStdinBytes))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func terminalStdin() bool {
	return xterm.IsTerminal(int(os.Stdin.Fd()))
}

func envTrue(name string) bool {
	value := os.Getenv(name)
	return strings.EqualFold(value, "1") || strings.EqualFold(value, "true")
}
