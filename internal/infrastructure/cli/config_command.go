package cli

import (
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/task-sh/task-sh/internal/app"
	"github.com/task-sh/task-sh/internal/infrastructure/config"
)

func newConfigCommand(container *app.Container) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the task configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd.OutOrStdout(), container)
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := container.Loader.WriteDefault(force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", container.Loader.Path())
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), container.Loader.Path())
			return nil
		},
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd.OutOrStdout(), container)
		},
	}

	diffCmd := &cobra.Command{
		Use:   "diff",
		Short: "Show differences from the built-in defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigDiff(cmd.OutOrStdout(), container)
		},
	}

	editCmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit the config file in $EDITOR",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigEdit(container)
		},
	}

	configCmd.AddCommand(initCmd, pathCmd, showCmd, diffCmd, editCmd)
	return configCmd
}

// runConfigShow prints the loaded configuration as YAML. The credential and
// the fake-response override are env-resolved fields and never serialized.
func runConfigShow(out io.Writer, container *app.Container) error {
	data, err := yaml.Marshal(container.Config)
	if err != nil {
		return err
	}
	fmt.Fprint(out, string(data))
	return nil
}

func runConfigDiff(out io.Writer, container *app.Container) error {
	current := container.Config
	current.Backend.APIKey = ""
	current.Backend.FakeResponse = ""

	diff := cmp.Diff(config.DefaultConfig(), current)
	if diff == "" {
		fmt.Fprintln(out, "Matches the built-in defaults.")
		return nil
	}
	fmt.Fprintln(out, diff)
	return nil
}

func runConfigEdit(container *app.Container) error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}
	cmd := exec.Command(editor, container.Loader.Path())
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
