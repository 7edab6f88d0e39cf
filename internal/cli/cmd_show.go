package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/randalmurphal/gantt/internal/interchange"
	"github.com/randalmurphal/gantt/internal/layout"
	"github.com/randalmurphal/gantt/internal/task"
)

const (
	nameWidth      = 24
	glyphBar       = "█"
	glyphNote      = "▓"
	glyphFirst     = "◆"
	glyphFinal     = "★"
	glyphIdle      = "·"
	glyphToday     = "│"
	glyphTodayHead = "▼"
)

var (
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	todayStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	headerStyle = lipgloss.NewStyle().Bold(true)
)

// newShowCmd creates the show command
func newShowCmd(s *session) *cobra.Command {
	var notes bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Draw the timeline",
		Long: `Draw the chart with one column per day from the earliest to the latest
task date. With no dated tasks the current month is shown.

  █  active day in the task's color (▓ when the cell has text)
  ◆  first proof     ★  final proof
  ▼  today

Example:
  gantt show
  gantt show --notes      # also list cell texts
  gantt show --json       # geometry for other renderers`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := s.open(cmd)
			if err != nil {
				return err
			}
			tl := ch.Timeline(s.now())
			if s.jsonOut {
				return printJSON(cmd.OutOrStdout(), tl)
			}
			renderTimeline(cmd.OutOrStdout(), tl, ch.Language())
			if notes {
				renderNotes(cmd.OutOrStdout(), tl)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&notes, "notes", false, "list cell texts below the chart")
	return cmd
}

// renderTimeline draws the header rows and one line per task.
func renderTimeline(w io.Writer, tl layout.Timeline, lang string) {
	pad := lipgloss.NewStyle().Width(nameWidth)

	monthLine := []rune(strings.Repeat(" ", len(tl.Days)))
	var tens, ones strings.Builder
	for i, d := range tl.Days {
		if i == 0 || d.Day() == 1 {
			copy(monthLine[i:], []rune(d.Format("2006-01")))
		}
		tens.WriteString(fmt.Sprint(d.Day() / 10))
		ones.WriteString(fmt.Sprint(d.Day() % 10))
	}

	fmt.Fprintln(w, pad.Render("")+dimStyle.Render(string(monthLine)))
	if tl.Today >= 0 {
		fmt.Fprintln(w, pad.Render("")+strings.Repeat(" ", tl.Today)+todayStyle.Render(glyphTodayHead))
	}
	fmt.Fprintln(w, pad.Render(headerStyle.Render(interchange.Header(lang, interchange.FieldName)))+dimStyle.Render(tens.String()))
	fmt.Fprintln(w, pad.Render("")+dimStyle.Render(ones.String()))

	for _, row := range tl.Rows {
		fmt.Fprintln(w, pad.Render(truncate(row.Task.Name, nameWidth-2))+renderRow(row, tl.Today))
	}
}

// renderRow draws the day cells of one task.
func renderRow(row layout.Row, today int) string {
	var b strings.Builder
	for i, c := range row.Cells {
		var glyph string
		switch {
		case row.FirstProof != nil && row.FirstProof.Index == i:
			glyph = glyphFirst
		case row.FinalProof != nil && row.FinalProof.Index == i:
			glyph = glyphFinal
		case c.Active && c.Text != "":
			glyph = glyphNote
		case c.Active:
			glyph = glyphBar
		case i == today:
			b.WriteString(todayStyle.Render(glyphToday))
			continue
		default:
			b.WriteString(dimStyle.Render(glyphIdle))
			continue
		}
		color := c.Color
		if color == "" {
			color = row.Task.Color
		}
		if color == "" {
			color = task.DefaultColor
		}
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(glyph))
	}
	return b.String()
}

// renderNotes lists the visible cell texts per task.
func renderNotes(w io.Writer, tl layout.Timeline) {
	for _, row := range tl.Rows {
		for _, c := range row.Cells {
			if c.Text == "" {
				continue
			}
			fmt.Fprintf(w, "%s  %s  %s\n", task.FormatDate(c.Date), truncate(row.Task.Name, nameWidth), c.Text)
		}
	}
}
