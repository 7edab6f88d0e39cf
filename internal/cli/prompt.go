package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/randalmurphal/gantt/internal/chart"
	gerrors "github.com/randalmurphal/gantt/internal/errors"
	"github.com/randalmurphal/gantt/internal/history"
	"github.com/randalmurphal/gantt/internal/interchange"
)

// prompter asks yes/no and pick-one questions on the command's streams.
type prompter struct {
	in        *bufio.Reader
	out       io.Writer
	assumeYes bool
	// interactive is false when stdin is a file or pipe rather than a
	// terminal; questions then fail instead of blocking.
	interactive bool
}

func newPrompter(cmd *cobra.Command, assumeYes bool) *prompter {
	in := cmd.InOrStdin()
	interactive := true
	if f, ok := in.(*os.File); ok {
		interactive = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &prompter{
		in:          bufio.NewReader(in),
		out:         cmd.ErrOrStderr(),
		assumeYes:   assumeYes,
		interactive: interactive,
	}
}

// errNeedsTerminal is returned when a question cannot be asked.
func errNeedsTerminal(what string) error {
	e := gerrors.ErrImportCancelled(what + " needs confirmation")
	e.Why = "stdin is not a terminal"
	e.Fix = "Rerun with --yes to accept every confirmation"
	return e
}

// readLine returns the next trimmed line. EOF with no input reads as "".
func (p *prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// ask poses a yes/no question. Anything but y or yes is a no.
func (p *prompter) ask(what, question string) (bool, error) {
	if p.assumeYes {
		return true, nil
	}
	if !p.interactive {
		return false, errNeedsTerminal(what)
	}
	fmt.Fprintf(p.out, "%s [y/N]: ", question)
	answer, err := p.readLine()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// Confirm implements interchange.Confirmer.
func (p *prompter) Confirm(_ context.Context, pr interchange.Prompt) (bool, error) {
	what := "import"
	if pr.Kind == interchange.PromptRestore {
		what = "restore"
	}
	return p.ask(what, pr.Message())
}

// chooser offers the history entries newest first and reads a 1-based
// number. A blank answer backs out.
func (p *prompter) chooser() chart.Chooser {
	return chart.ChooseFunc(func(_ context.Context, entries []history.Entry) (history.Entry, bool, error) {
		if !p.interactive {
			return history.Entry{}, false, errNeedsTerminal("restore")
		}
		for i, e := range entries {
			fmt.Fprintf(p.out, "%3d  %s\n", i+1, e.Label())
		}
		fmt.Fprintf(p.out, "Restore which snapshot? [1-%d, blank to cancel]: ", len(entries))
		answer, err := p.readLine()
		if err != nil || answer == "" {
			return history.Entry{}, false, err
		}
		n, err := strconv.Atoi(answer)
		if err != nil || n < 1 || n > len(entries) {
			return history.Entry{}, false, gerrors.ErrValidation("snapshot", fmt.Sprintf("%q is not a number between 1 and %d", answer, len(entries)))
		}
		return entries[n-1], true, nil
	})
}
