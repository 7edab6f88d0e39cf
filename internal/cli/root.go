// Package cli implements the gantt command-line interface.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/randalmurphal/gantt/internal/chart"
	"github.com/randalmurphal/gantt/internal/config"
	gerrors "github.com/randalmurphal/gantt/internal/errors"
	"github.com/randalmurphal/gantt/internal/metrics"
	"github.com/randalmurphal/gantt/internal/storage"
)

// session carries the global flags and the resources opened for one
// command invocation.
type session struct {
	cfgFile string
	verbose bool
	jsonOut bool
	yes     bool

	now    func() time.Time
	logger *slog.Logger

	cfg      *config.Config
	kv       storage.KV
	chart    *chart.Chart
	registry *prometheus.Registry
}

// Execute builds the command tree, runs it and reports any error on stderr.
func Execute() error {
	root, s := newRootCmd()
	err := root.ExecuteContext(context.Background())
	if cerr := s.close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		s.reportError(root.ErrOrStderr(), err)
	}
	return err
}

// ExitCode maps an error returned by Execute to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if e := gerrors.AsError(err); e != nil {
		return e.Category().ExitCode()
	}
	return 1
}

func newRootCmd() (*cobra.Command, *session) {
	s := &session{now: time.Now, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	root := &cobra.Command{
		Use:   "gantt",
		Short: "Gantt chart task manager",
		Long: `gantt keeps a list of dated tasks, saves a timestamped snapshot after
every change and exchanges the chart with Excel and CSV spreadsheets.

Quick start:
  gantt config init                                   Write .gantt/gantt.yaml
  gantt add "Draft" --start 2025-07-01 --end 2025-07-05
  gantt show                                          Draw the timeline
  gantt export                                        Save an .xlsx workbook
  gantt import chart.xlsx                             Replace tasks from a file
  gantt history restore                               Roll back to a snapshot`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if s.verbose {
				level = slog.LevelDebug
			}
			s.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
		},
	}

	root.PersistentFlags().StringVar(&s.cfgFile, "config", "", "config file (default is .gantt/gantt.yaml)")
	root.PersistentFlags().BoolVarP(&s.verbose, "verbose", "v", false, "verbose output")
	root.PersistentFlags().BoolVar(&s.jsonOut, "json", false, "output as JSON")
	root.PersistentFlags().BoolVarP(&s.yes, "yes", "y", false, "answer yes to every confirmation")

	root.AddCommand(newListCmd(s))
	root.AddCommand(newAddCmd(s))
	root.AddCommand(newEditCmd(s))
	root.AddCommand(newDeleteCmd(s))
	root.AddCommand(newCellCmd(s))
	root.AddCommand(newShowCmd(s))
	root.AddCommand(newExportCmd(s))
	root.AddCommand(newImportCmd(s))
	root.AddCommand(newHistoryCmd(s))
	root.AddCommand(newClearCmd(s))
	root.AddCommand(newConfigCmd(s))

	return root, s
}

// loadConfig reads the configuration once per invocation.
func (s *session) loadConfig() (*config.Config, error) {
	if s.cfg != nil {
		return s.cfg, nil
	}
	cfg, err := config.Load(s.cfgFile)
	if err != nil {
		return nil, err
	}
	s.cfg = cfg
	return cfg, nil
}

// open loads the configuration, connects the storage backend and opens the
// chart. Later calls return the same chart.
func (s *session) open(cmd *cobra.Command) (*chart.Chart, error) {
	if s.chart != nil {
		return s.chart, nil
	}
	cfg, err := s.loadConfig()
	if err != nil {
		return nil, err
	}

	ctx := cmd.Context()
	kv, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, gerrors.ErrStorage("open "+cfg.Storage.Backend+" storage", err)
	}
	s.kv = kv

	observer := metrics.Nop()
	if cfg.Metrics.Enabled {
		s.registry = prometheus.NewRegistry()
		obs, err := metrics.NewPrometheusObserver(cfg.Metrics.Namespace, s.registry)
		if err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
		observer = obs
	}

	ch, err := chart.Open(ctx, kv,
		chart.WithLanguage(cfg.Language),
		chart.WithRetention(cfg.Retention),
		chart.WithClock(s.now),
		chart.WithLogger(s.logger),
		chart.WithObserver(observer),
	)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("chart ready", "backend", cfg.Storage.Backend, "source", ch.Source(), "tasks", len(ch.Tasks()))
	s.chart = ch
	return ch, nil
}

// close flushes metrics and releases the storage backend.
func (s *session) close() error {
	var firstErr error
	if s.registry != nil && s.cfg != nil {
		path := s.cfg.Metrics.Textfile
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			firstErr = fmt.Errorf("create metrics directory: %w", err)
		} else if err := prometheus.WriteToTextfile(path, s.registry); err != nil {
			firstErr = fmt.Errorf("write metrics: %w", err)
		}
	}
	if s.kv != nil {
		if err := s.kv.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close storage: %w", err)
		}
		s.kv = nil
	}
	s.chart = nil
	return firstErr
}

// reportError prints err for a human, or as JSON with --json.
func (s *session) reportError(w io.Writer, err error) {
	e := gerrors.AsError(err)
	if s.jsonOut {
		var payload any = map[string]string{"error": err.Error()}
		if e != nil {
			payload = map[string]any{"error": e}
		}
		_ = json.NewEncoder(w).Encode(payload)
		return
	}
	if e != nil {
		fmt.Fprintln(w, e.UserMessage())
		return
	}
	fmt.Fprintln(w, "Error:", err)
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
