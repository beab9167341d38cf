package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/task-sh/task-sh/internal/app"
	"github.com/task-sh/task-sh/internal/domain"
)

func newHistoryCommand(container *app.Container) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the local generation record",
	}

	var limit int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recent generations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listHistory(cmd.OutOrStdout(), container, limit, "")
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", 20, "Max entries to show")

	searchCmd := &cobra.Command{
		Use:   "search <keyword>",
		Short: "Search generations by description or command",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return listHistory(cmd.OutOrStdout(), container, 0, args[0])
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded generations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.History == nil {
				return fmt.Errorf("history store unavailable")
			}
			if err := container.History.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
			return nil
		},
	}

	exportCmd := &cobra.Command{
		Use:   "export <path>",
		Short: "Export history as JSON lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.History == nil {
				return fmt.Errorf("history store unavailable")
			}
			if err := container.History.ExportJSON(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", args[0])
			return nil
		},
	}

	historyCmd.AddCommand(listCmd, searchCmd, clearCmd, exportCmd)
	return historyCmd
}

func listHistory(out io.Writer, container *app.Container, limit int, search string) error {
	if container.History == nil {
		return fmt.Errorf("history store unavailable")
	}
	records, err := container.History.Records(limit, search)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(out, "No recorded generations.")
		return nil
	}
	for _, rec := range records {
		command := rec.Command
		if command == "" && rec.Verdict == domain.VerdictBlocked {
			command = "(blocked by rule " + rec.MatchedRule + ")"
		}
		fmt.Fprintf(out, "%s | %-7s | %s | %s\n",
			rec.Timestamp.Format(time.RFC3339),
			rec.Verdict,
			rec.Description,
			command)
	}
	return nil
}
