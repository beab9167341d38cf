package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCompletionsCommand(root *cobra.Command) *cobra.Command {
	return &cobra.Command{
		Use:   "completions {bash|zsh}",
		Short: "Generate a shell completion script",
		Long: "Generate a completion script for the named shell.\n\n" +
			"  task completions bash > /etc/bash_completion.d/task\n" +
			"  task completions zsh > \"${fpath[1]}/_task\"",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"bash", "zsh"},
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(cmd.OutOrStdout(), true)
			case "zsh":
				return root.GenZshCompletion(cmd.OutOrStdout())
			default:
				return fmt.Errorf("unsupported shell %q (supported: bash, zsh)", args[0])
			}
		},
	}
}
