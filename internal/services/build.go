// Package services holds the command-level workflows: each service loads a
// snapshot and drives one of validate, build, serve or init.
package services

import (
	"context"
	"os"
	"time"

	"github.com/quick-calculator/calcdir/internal/app"
	"github.com/quick-calculator/calcdir/internal/build"
	"github.com/quick-calculator/calcdir/internal/config"
	"github.com/quick-calculator/calcdir/internal/errors"
	"github.com/quick-calculator/calcdir/internal/logging"
)

// Loader builds a snapshot from the current configuration.
type Loader func(ctx context.Context) (*app.Snapshot, error)

// DefaultLoader loads snapshots with the built-in calculator catalog.
func DefaultLoader(cfg *config.Config, logger logging.Logger) Loader {
	return func(ctx context.Context) (*app.Snapshot, error) {
		return app.Load(ctx, cfg, logger)
	}
}

// BuildService handles static site generation.
type BuildService struct {
	config *config.Config
	load   Loader
	logger logging.Logger
}

// NewBuildService creates a new build service
func NewBuildService(cfg *config.Config, load Loader, logger logging.Logger) *BuildService {
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	return &BuildService{config: cfg, load: load, logger: logger}
}

// BuildOptions overrides the build section of the configuration. Zero
// values keep the configured setting.
type BuildOptions struct {
	Output  string
	Workers int
	// Clean removes the output directory before writing.
	Clean      bool
	NoSitemaps bool
}

// BuildResult contains the result of a build operation
type BuildResult struct {
	*build.Result
	OutputDir string
	Success   bool
}

// Build loads a snapshot and writes the static site.
func (s *BuildService) Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	output := opts.Output
	if output == "" {
		output = s.config.Build.OutputDir
	}
	workers := opts.Workers
	if workers == 0 {
		workers = s.config.Build.Workers
	}

	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	if opts.Clean {
		if err := cleanOutput(output); err != nil {
			return nil, err
		}
	}

	gen := build.NewGenerator(snap.Renderer, snap.Store.Slugs(), s.logger)
	res, err := gen.Generate(ctx, build.Options{
		OutputDir:    output,
		Workers:      workers,
		Sitemaps:     s.config.Build.Sitemaps && !opts.NoSitemaps,
		LastModified: time.Now(),
	})
	if err != nil {
		return nil, err
	}

	return &BuildResult{
		Result:    res,
		OutputDir: output,
		Success:   len(res.Failures) == 0,
	}, nil
}

// cleanOutput removes build artifacts from a previous run.
func cleanOutput(dir string) error {
	if dir == "" || dir == "/" || dir == "." {
		return errors.NewConfigError(errors.ErrCodeConfigInvalid, "refusing to clean output directory").WithSubject(dir)
	}
	if err := os.RemoveAll(dir); err != nil {
		return errors.NewIOError(errors.ErrCodeWriteFailed, "failed to clean output directory", err).WithSubject(dir)
	}

	return nil
}
