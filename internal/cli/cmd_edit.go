package cli

import (
	"github.com/spf13/cobra"

	"github.com/randalmurphal/gantt/internal/task"
)

// newEditCmd creates the edit command
func newEditCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <task-id>",
		Short: "Change fields of a task",
		Long: `Change one or more fields of a task. Fields without a flag keep their
value; pass an empty string to clear a milestone.

Cell overrides are kept when the range shrinks, so widening it again shows
them once more.

Example:
  gantt edit task-0190... --end 2025-07-12
  gantt edit task-0190... --name "Final layout" --final-proof ""`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := s.open(cmd)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			var p task.TaskPatch
			for name, field := range map[string]**string{
				"name":        &p.Name,
				"start":       &p.StartDate,
				"end":         &p.EndDate,
				"first-proof": &p.FirstProofDate,
				"final-proof": &p.FinalProofDate,
				"color":       &p.Color,
			} {
				if flags.Changed(name) {
					v, _ := flags.GetString(name)
					*field = &v
				}
			}

			updated, err := ch.Patch(cmd.Context(), args[0], p)
			if err != nil {
				return err
			}
			return printTask(s, cmd, "Updated", updated)
		},
	}
	cmd.Flags().String("name", "", "task name")
	cmd.Flags().String("start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().String("end", "", "end date (YYYY-MM-DD)")
	cmd.Flags().String("first-proof", "", "first proof milestone (YYYY-MM-DD)")
	cmd.Flags().String("final-proof", "", "final proof milestone (YYYY-MM-DD)")
	cmd.Flags().String("color", "", "bar color as #RRGGBB")
	return cmd
}
