package cli

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/gantt/internal/chart"
	gerrors "github.com/randalmurphal/gantt/internal/errors"
	"github.com/randalmurphal/gantt/internal/history"
)

// newHistoryCmd creates the history command group
func newHistoryCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List or restore saved snapshots",
		Long: `Every change saves a snapshot of all tasks. Snapshots older than the
configured retention (30 days by default) are removed on the next save.`,
	}
	cmd.AddCommand(newHistoryListCmd(s))
	cmd.AddCommand(newHistoryRestoreCmd(s))
	return cmd
}

func newHistoryListCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List snapshots, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := s.open(cmd)
			if err != nil {
				return err
			}
			entries, err := ch.History(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if s.jsonOut {
				return printJSON(out, entries)
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "No snapshots saved yet.")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "#\tSAVED\tKEY")
			for i, e := range entries {
				fmt.Fprintf(w, "%d\t%s\t%s\n", i+1, e.Label(), e.Key)
			}
			return w.Flush()
		},
	}
}

func newHistoryRestoreCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "restore [number]",
		Short: "Replace the tasks with a snapshot",
		Long: `Replace every task with a saved snapshot. The number is the position shown
by 'gantt history list'; without it you are asked to pick one.

Restoring is itself a change, so it saves a new snapshot.

Example:
  gantt history restore
  gantt history restore 2 --yes`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := s.open(cmd)
			if err != nil {
				return err
			}
			p := newPrompter(cmd, s.yes)

			var chooser chart.Chooser = p.chooser()
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 1 {
					return gerrors.ErrValidation("snapshot", fmt.Sprintf("%q is not a positive number", args[0]))
				}
				chooser = pickNth(n)
			}

			e, err := ch.Restore(cmd.Context(), chooser, p)
			if err != nil {
				return err
			}
			if s.jsonOut {
				return printJSON(cmd.OutOrStdout(), map[string]any{"restored": e, "tasks": len(ch.Tasks())})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored %d task(s) saved at %s\n", len(ch.Tasks()), e.Label())
			return nil
		},
	}
}

// pickNth chooses the n-th newest entry.
func pickNth(n int) chart.Chooser {
	return chart.ChooseFunc(func(_ context.Context, entries []history.Entry) (history.Entry, bool, error) {
		if n > len(entries) {
			return history.Entry{}, false, gerrors.ErrValidation("snapshot", fmt.Sprintf("only %d snapshot(s) exist", len(entries)))
		}
		return entries[n-1], true, nil
	})
}
