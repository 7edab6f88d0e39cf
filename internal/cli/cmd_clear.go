package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	gerrors "github.com/randalmurphal/gantt/internal/errors"
)

// newClearCmd creates the clear command
func newClearCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every task",
		Long: `Remove every task. History is kept, so 'gantt history restore' brings
the tasks back. The next start after a clear begins from the last snapshot.

Example:
  gantt clear
  gantt clear --yes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := s.open(cmd)
			if err != nil {
				return err
			}
			n := len(ch.Tasks())
			ok, err := newPrompter(cmd, s.yes).ask("clear", fmt.Sprintf("Remove all %d task(s)?", n))
			if err != nil {
				return err
			}
			if !ok {
				return gerrors.ErrImportCancelled("clear declined")
			}
			if err := ch.Clear(cmd.Context()); err != nil {
				return err
			}
			if s.jsonOut {
				return printJSON(cmd.OutOrStdout(), map[string]int{"cleared": n})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d task(s)\n", n)
			return nil
		},
	}
}
