package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/gantt/internal/util"
)

// newExportCmd creates the export command
func newExportCmd(s *session) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the chart to an Excel workbook",
		Long: `Write every task to an .xlsx workbook with a task sheet and a metadata
sheet holding a full backup. Headers follow the configured language.

Without --output the file is named after the current time, e.g.
ガントチャート_2025-07-20_09-15-30.xlsx or gantt_2025-07-20_09-15-30.xlsx.

Example:
  gantt export
  gantt export --output plan.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := s.open(cmd)
			if err != nil {
				return err
			}
			path := output
			if path == "" {
				path = ch.ExportFileName()
			}
			err = util.AtomicWrite(path, 0644, func(w io.Writer) error {
				return ch.Export(cmd.Context(), w)
			})
			if err != nil {
				return fmt.Errorf("export to %s: %w", path, err)
			}

			n := len(ch.Tasks())
			if s.jsonOut {
				return printJSON(cmd.OutOrStdout(), map[string]any{"path": path, "tasks": n})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d task(s) to %s\n", n, path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default is a timestamped name)")
	return cmd
}
