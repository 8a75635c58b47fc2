package services

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/quick-calculator/calcdir/internal/config"
	"github.com/quick-calculator/calcdir/internal/errors"
	"github.com/quick-calculator/calcdir/internal/logging"
	"github.com/quick-calculator/calcdir/internal/server"
)

// ServeService runs the development server.
type ServeService struct {
	config *config.Config
	load   Loader
	logger logging.Logger
}

// NewServeService creates a new serve service
func NewServeService(cfg *config.Config, load Loader, logger logging.Logger) *ServeService {
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	return &ServeService{config: cfg, load: load, logger: logger}
}

// ServeOptions contains options for the serve process
type ServeOptions struct {
	// Watch reloads the snapshot when content changes.
	Watch bool
	// Ready, if set, receives the server URL once the port is bound.
	Ready func(url string)
}

// Serve runs the server until ctx is cancelled.
func (s *ServeService) Serve(ctx context.Context, opts ServeOptions) error {
	srv, err := server.New(ctx, s.config, server.Loader(s.load), s.logger)
	if err != nil {
		return err
	}

	addr, err := srv.Listen()
	if err != nil {
		if strings.Contains(err.Error(), "address already in use") {
			return errors.NewConfigError(errors.ErrCodeConfigInvalid,
				fmt.Sprintf("port %d is already in use; set server.port or --port", s.config.Server.Port))
		}

		return err
	}
	if opts.Ready != nil {
		opts.Ready(ServerURL(addr))
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	watchErr := make(chan error, 1)
	if opts.Watch {
		go func() { watchErr <- srv.Watch(ctx) }()
	} else {
		close(watchErr)
	}

	err = srv.Serve(ctx)
	cancel()
	if werr := <-watchErr; werr != nil {
		s.logger.Warn(ctx, werr, "Watcher stopped with error")
	}

	return err
}

// ServerURL returns the browsable URL of a bound address.
func ServerURL(addr net.Addr) string {
	return "http://" + addr.String()
}
