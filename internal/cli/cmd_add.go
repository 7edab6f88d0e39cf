package cli

import (
	"github.com/spf13/cobra"

	"github.com/randalmurphal/gantt/internal/task"
)

// newAddCmd creates the add command
func newAddCmd(s *session) *cobra.Command {
	var t task.Task
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a task",
		Long: `Add a task to the end of the chart.

Dates are YYYY-MM-DD and the start must not be after the end. The color
defaults to ` + task.DefaultColor + `.

Example:
  gantt add "企画書作成" --start 2025-07-01 --end 2025-07-05
  gantt add "Layout" --start 2025-07-06 --end 2025-07-15 --first-proof 2025-07-10 --color "#33FF57"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := s.open(cmd)
			if err != nil {
				return err
			}
			t.Name = args[0]
			added, err := ch.Add(cmd.Context(), t)
			if err != nil {
				return err
			}
			return printTask(s, cmd, "Added", added)
		},
	}
	cmd.Flags().StringVar(&t.StartDate, "start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&t.EndDate, "end", "", "end date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&t.FirstProofDate, "first-proof", "", "first proof milestone (YYYY-MM-DD)")
	cmd.Flags().StringVar(&t.FinalProofDate, "final-proof", "", "final proof milestone (YYYY-MM-DD)")
	cmd.Flags().StringVar(&t.Color, "color", "", "bar color as #RRGGBB")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}
