package chart

import (
	"context"
	"io"

	gerrors "github.com/randalmurphal/gantt/internal/errors"
	"github.com/randalmurphal/gantt/internal/history"
	"github.com/randalmurphal/gantt/internal/interchange"
)

// ImportReport summarizes an applied import.
type ImportReport struct {
	Tier       interchange.TierName
	Imported   int
	Replaced   int
	Rejections []interchange.Rejection
}

// Import reads a spreadsheet, decodes it and, once confirm agrees, replaces
// every task with the result. Failures before the replacement leave the tasks
// unchanged. An error with CodeStorage means the replacement happened but its
// snapshot could not be saved: Tasks already returns the imported list, and
// the next successful change persists it.
func (c *Chart) Import(ctx context.Context, r io.Reader, name string, confirm interchange.Confirmer) (*ImportReport, error) {
	var report *ImportReport
	err := c.exclusive("import", func() error {
		var err error
		report, err = c.importLocked(ctx, r, name, confirm)
		return err
	})
	if err != nil {
		c.observer.RecordImport("", 0, err)
		return nil, err
	}
	c.observer.RecordImport(string(report.Tier), report.Imported, nil)
	return report, nil
}

func (c *Chart) importLocked(ctx context.Context, r io.Reader, name string, confirm interchange.Confirmer) (*ImportReport, error) {
	wb, err := interchange.Read(r, name)
	if err != nil {
		return nil, gerrors.ErrParse("read spreadsheet "+name, err)
	}

	res, err := c.decoder.Decode(ctx, wb, confirm)
	if err != nil {
		return nil, err
	}

	ok, err := confirm.Confirm(ctx, interchange.Prompt{
		Kind:  interchange.PromptReplace,
		Tier:  res.Tier,
		Count: len(res.Tasks),
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, gerrors.ErrImportCancelled("import declined")
	}

	replaced := c.store.Len()
	if err := c.store.ReplaceAll(ctx, res.Tasks); err != nil {
		return nil, err
	}
	c.logger.Info("imported tasks", "file", name, "tier", res.Tier, "tasks", len(res.Tasks), "rejected", len(res.Rejections))
	return &ImportReport{
		Tier:       res.Tier,
		Imported:   len(res.Tasks),
		Replaced:   replaced,
		Rejections: res.Rejections,
	}, nil
}

// History lists saved snapshots, newest first.
func (c *Chart) History(ctx context.Context) ([]history.Entry, error) {
	return c.history.List(ctx)
}

// Chooser picks one history entry to restore. ok is false when the caller
// backs out.
type Chooser interface {
	Choose(ctx context.Context, entries []history.Entry) (e history.Entry, ok bool, err error)
}

// ChooseFunc adapts a function to Chooser.
type ChooseFunc func(ctx context.Context, entries []history.Entry) (history.Entry, bool, error)

func (f ChooseFunc) Choose(ctx context.Context, entries []history.Entry) (history.Entry, bool, error) {
	return f(ctx, entries)
}

// Restore lets choose pick a snapshot and, once confirm agrees, replaces
// every task with it. As with Import, an error with CodeStorage means the
// restored tasks are in place but were not saved as a new snapshot.
func (c *Chart) Restore(ctx context.Context, choose Chooser, confirm interchange.Confirmer) (history.Entry, error) {
	var restored history.Entry
	err := c.exclusive("restore history", func() error {
		entries, err := c.history.List(ctx)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return gerrors.ErrHistoryMissing(history.IndexKey)
		}

		e, ok, err := choose.Choose(ctx, entries)
		if err != nil {
			return err
		}
		if !ok {
			return gerrors.ErrImportCancelled("history restore cancelled")
		}

		tasks, err := c.history.Snapshot(ctx, e)
		if err != nil {
			return err
		}
		ok, err = confirm.Confirm(ctx, interchange.Prompt{
			Kind:  interchange.PromptRestore,
			Count: len(tasks),
			Label: e.Label(),
		})
		if err != nil {
			return err
		}
		if !ok {
			return gerrors.ErrImportCancelled("history restore declined")
		}

		if err := c.store.ReplaceAll(ctx, tasks); err != nil {
			return err
		}
		c.logger.Info("restored history", "key", e.Key, "tasks", len(tasks))
		restored = e
		return nil
	})
	return restored, err
}
