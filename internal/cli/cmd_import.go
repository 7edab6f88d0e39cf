package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	gerrors "github.com/randalmurphal/gantt/internal/errors"
)

// newImportCmd creates the import command
func newImportCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the chart from a spreadsheet",
		Long: `Read an .xlsx or .csv file and replace every task with its contents.

Rows are matched against three formats in turn:
  1. full-fidelity  rows with a complete task data column
  2. backup         the metadata sheet's allTasksBackup
  3. legacy         name and date columns plus cell data blocks

You are asked before continuing with a partial import, before restoring
from the backup and before the current tasks are replaced. When stdin is
not a terminal pass --yes to accept every question.

Example:
  gantt import ガントチャート_2025-07-20_09-15-30.xlsx
  gantt import schedule.csv --yes`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := s.open(cmd)
			if err != nil {
				return err
			}
			path := args[0]
			f, err := os.Open(path)
			if err != nil {
				return gerrors.ErrParse("open "+path, err)
			}
			defer func() { _ = f.Close() }()

			report, err := ch.Import(cmd.Context(), f, filepath.Base(path), newPrompter(cmd, s.yes))
			if err != nil {
				return err
			}

			if s.jsonOut {
				rejected := make([]string, len(report.Rejections))
				for i, r := range report.Rejections {
					rejected[i] = r.String()
				}
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"tier":     report.Tier,
					"imported": report.Imported,
					"replaced": report.Replaced,
					"rejected": rejected,
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Imported %d task(s) from %s data, replacing %d\n", report.Imported, report.Tier, report.Replaced)
			if len(report.Rejections) > 0 {
				fmt.Fprintf(out, "Skipped %d row(s):\n", len(report.Rejections))
				for _, r := range report.Rejections {
					fmt.Fprintf(out, "  %s\n", r)
				}
			}
			return nil
		},
	}
}
