package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/gantt/internal/task"
)

// newCellCmd creates the cell command
func newCellCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cell <task-id> <date>",
		Short: "Set the text or color of one day cell",
		Long: `Set the text or color shown in one day of a task. Clearing both removes
the override. Dates outside the task's range are accepted and shown once
the range covers them.

Example:
  gantt cell task-0190... 2025-07-02 --text 作成
  gantt cell task-0190... 2025-07-02 --color "#FF0000"
  gantt cell task-0190... 2025-07-02 --text "" --color ""`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := s.open(cmd)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			var p task.OverridePatch
			if flags.Changed("text") {
				v, _ := flags.GetString("text")
				p.Text = &v
			}
			if flags.Changed("color") {
				v, _ := flags.GetString("color")
				p.Color = &v
			}

			taskID, date := args[0], args[1]
			if err := ch.SetCellOverride(cmd.Context(), taskID, date, p); err != nil {
				return err
			}
			t, _ := ch.Get(taskID)
			o, ok := t.Cell(date)
			if s.jsonOut {
				return printJSON(cmd.OutOrStdout(), map[string]any{"taskId": taskID, "date": date, "cell": o, "set": ok})
			}
			if !ok {
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s on %s\n", taskID, date)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s on %s: text=%q color=%q\n", taskID, date, o.Text, o.Color)
			return nil
		},
	}
	cmd.Flags().String("text", "", "cell text")
	cmd.Flags().String("color", "", "cell color as #RRGGBB")
	return cmd
}
