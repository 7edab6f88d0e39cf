package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	gerrors "github.com/randalmurphal/gantt/internal/errors"
)

// newDeleteCmd creates the delete command
func newDeleteCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <task-id>",
		Aliases: []string{"rm"},
		Short:   "Delete a task",
		Long: `Delete a task and its cell overrides.

The previous state stays in history, see 'gantt history restore'.

Example:
  gantt delete task-0190...`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := s.open(cmd)
			if err != nil {
				return err
			}
			t, ok := ch.Get(args[0])
			if !ok {
				return gerrors.ErrTaskNotFound(args[0])
			}
			if err := ch.Delete(cmd.Context(), t.ID); err != nil {
				return err
			}
			if s.jsonOut {
				return printJSON(cmd.OutOrStdout(), map[string]string{"deleted": t.ID})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s (%s)\n", t.ID, t.Name)
			return nil
		},
	}
}
