package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/gantt/internal/task"
)

// newListCmd creates the list command
func newListCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		Long: `List every task in chart order.

Example:
  gantt list
  gantt list --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := s.open(cmd)
			if err != nil {
				return err
			}
			tasks := ch.Tasks()
			out := cmd.OutOrStdout()

			if s.jsonOut {
				return printJSON(out, tasks)
			}
			if len(tasks) == 0 {
				fmt.Fprintln(out, "No tasks. Create one with: gantt add \"Task name\" --start YYYY-MM-DD --end YYYY-MM-DD")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tSTART\tEND\tFIRST PROOF\tFINAL PROOF\tCOLOR\tCELLS")
			for _, t := range tasks {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
					t.ID, truncate(t.Name, 40), t.StartDate, t.EndDate,
					dash(t.FirstProofDate), dash(t.FinalProofDate), t.Color, len(t.Cells))
			}
			return w.Flush()
		},
	}
}

// truncate shortens s to max runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// printTask writes one task for humans, or as JSON.
func printTask(s *session, cmd *cobra.Command, verb string, t task.Task) error {
	out := cmd.OutOrStdout()
	if s.jsonOut {
		return printJSON(out, t)
	}
	fmt.Fprintf(out, "%s task %s: %s (%s to %s)\n", verb, t.ID, t.Name, t.StartDate, t.EndDate)
	return nil
}
