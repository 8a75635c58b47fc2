package server

import (
	"context"
	"time"

	"github.com/quick-calculator/calcdir/internal/app"
	"github.com/quick-calculator/calcdir/internal/watcher"
)

// Watch reloads the snapshot whenever a content document, label bundle or
// the allowlist changes. It blocks until ctx is cancelled.
func (s *Server) Watch(ctx context.Context) error {
	fw, err := s.newWatcher()
	if err != nil {
		return err
	}

	fw.AddHandler(func(ctx context.Context, events []watcher.ChangeEvent) error {
		for _, e := range events {
			s.logger.Debug(ctx, "Content changed", "path", e.Path, "type", e.Type.String())
		}
		// A failed reload is already logged and pushed to browsers.
		_ = s.Reload(ctx)

		return nil
	})

	if err := fw.Start(ctx); err != nil {
		return err
	}
	s.logger.Info(ctx, "Watching for changes", "dirs", s.watchDirs())

	<-ctx.Done()

	return fw.Stop()
}

func (s *Server) newWatcher() (*watcher.FileWatcher, error) {
	fw, err := watcher.NewFileWatcher(s.watchDelay(), s.logger)
	if err != nil {
		return nil, err
	}
	fw.AddFilter(watcher.ContentFilter)
	fw.AddFilter(watcher.NoHiddenFilter)
	fw.AddFilter(watcher.NoTempFilter)

	for _, dir := range s.watchDirs() {
		if err := fw.AddRecursive(dir); err != nil {
			_ = fw.Stop()

			return nil, err
		}
	}

	return fw, nil
}

func (s *Server) watchDirs() []string { return app.InputDirs(s.config) }

func (s *Server) watchDelay() time.Duration {
	if s.config.Server.WatchDelay > 0 {
		return s.config.Server.WatchDelay
	}

	return watcher.DefaultDelay
}
