package services

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/quick-calculator/calcdir/internal/app"
	"github.com/quick-calculator/calcdir/internal/config"
	"github.com/quick-calculator/calcdir/internal/errors"
	"github.com/quick-calculator/calcdir/internal/logging"
	"github.com/quick-calculator/calcdir/internal/validation"
	"github.com/quick-calculator/calcdir/internal/watcher"
)

// ValidateService runs the content validators.
type ValidateService struct {
	config *config.Config
	load   Loader
	logger logging.Logger
}

// NewValidateService creates a new validate service
func NewValidateService(cfg *config.Config, load Loader, logger logging.Logger) *ValidateService {
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	return &ValidateService{config: cfg, load: load, logger: logger}
}

// ValidateOptions selects what to check and where the report goes.
type ValidateOptions struct {
	Scope  app.Scope
	Format string
	Out    io.Writer
	// ReportFile also writes the report there; .yml and .yaml files get
	// YAML, anything else JSON.
	ReportFile string
}

// Validate loads a snapshot, runs the validators and writes the report.
func (s *ValidateService) Validate(ctx context.Context, opts ValidateOptions) (*validation.Report, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	report := snap.Validate(opts.Scope)
	if err := s.emit(snap, report, opts); err != nil {
		return nil, err
	}

	s.logger.Debug(ctx, "Validation finished",
		"critical", report.Stats.Critical,
		"warnings", report.Stats.Warnings)

	return report, nil
}

func (s *ValidateService) emit(snap *app.Snapshot, report *validation.Report, opts ValidateOptions) error {
	if opts.Out != nil {
		if err := validation.Render(opts.Out, report, opts.Format, snap.TextOptions()); err != nil {
			return err
		}
	}
	if opts.ReportFile == "" {
		return nil
	}

	format := "json"
	switch strings.ToLower(filepath.Ext(opts.ReportFile)) {
	case ".yml", ".yaml":
		format = "yaml"
	}

	var buf bytes.Buffer
	if err := validation.Render(&buf, report, format, snap.TextOptions()); err != nil {
		return err
	}
	if dir := filepath.Dir(opts.ReportFile); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.NewIOError(errors.ErrCodeWriteFailed, "failed to create report directory", err).WithSubject(dir)
		}
	}
	if err := os.WriteFile(opts.ReportFile, buf.Bytes(), 0o644); err != nil {
		return errors.NewIOError(errors.ErrCodeWriteFailed, "failed to write report", err).WithSubject(opts.ReportFile)
	}

	return nil
}

// Watch validates once, then again after every content change, until ctx
// is cancelled. onReport is called after each run; load failures are
// reported through onError and do not stop the loop.
func (s *ValidateService) Watch(ctx context.Context, opts ValidateOptions, onReport func(*validation.Report), onError func(error)) error {
	var mu sync.Mutex
	run := func(ctx context.Context) {
		mu.Lock()
		defer mu.Unlock()

		report, err := s.Validate(ctx, opts)
		if err != nil {
			if onError != nil {
				onError(err)
			}

			return
		}
		if onReport != nil {
			onReport(report)
		}
	}

	fw, err := watcher.NewFileWatcher(watcher.DefaultDelay, s.logger)
	if err != nil {
		return err
	}
	fw.AddFilter(watcher.ContentFilter)
	fw.AddFilter(watcher.NoHiddenFilter)
	fw.AddFilter(watcher.NoTempFilter)
	for _, dir := range app.InputDirs(s.config) {
		if err := fw.AddRecursive(dir); err != nil {
			_ = fw.Stop()

			return err
		}
	}
	fw.AddHandler(func(ctx context.Context, _ []watcher.ChangeEvent) error {
		run(ctx)

		return nil
	})

	run(ctx)
	if err := fw.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()

	return fw.Stop()
}
