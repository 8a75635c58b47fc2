// Package server is the development server: it renders calculator pages on
// request from the current snapshot, exposes the path list and validation
// report as JSON, and pushes reload messages to connected browsers when the
// content changes.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/quick-calculator/calcdir/internal/app"
	"github.com/quick-calculator/calcdir/internal/config"
	"github.com/quick-calculator/calcdir/internal/logging"
	"github.com/quick-calculator/calcdir/internal/middleware"
)

// Loader builds a fresh snapshot.
type Loader func(ctx context.Context) (*app.Snapshot, error)

// UpdateMessage represents a message sent to the browser
type UpdateMessage struct {
	Type      string    `json:"type"`
	Content   string    `json:"content,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Message types pushed over the websocket.
const (
	MessageReload = "reload"
	MessageError  = "error"
)

// Server serves calculator pages with live reload.
type Server struct {
	config   *config.Config
	load     Loader
	snapshot atomic.Pointer[app.Snapshot]
	hub      *Hub
	logger   logging.Logger

	httpServer  *http.Server
	listener    net.Listener
	serverMutex sync.RWMutex

	reloadMutex sync.Mutex
	lastErr     atomic.Pointer[string]
	reloads     atomic.Int64

	shutdownOnce sync.Once
}

// New loads the initial snapshot and creates the server. A failing initial
// load is returned as is.
func New(ctx context.Context, cfg *config.Config, load Loader, logger logging.Logger) (*Server, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	logger = logger.WithComponent("server")

	snap, err := load(ctx)
	if err != nil {
		return nil, err
	}

	s := &Server{
		config: cfg,
		load:   load,
		hub:    NewHub(logger),
		logger: logger,
	}
	s.snapshot.Store(snap)

	return s, nil
}

// Snapshot returns the snapshot currently being served.
func (s *Server) Snapshot() *app.Snapshot {
	return s.snapshot.Load()
}

// Hub returns the websocket hub.
func (s *Server) Hub() *Hub { return s.hub }

// Reload builds a new snapshot and swaps it in. On failure the previous
// snapshot stays live and browsers receive an error message.
func (s *Server) Reload(ctx context.Context) error {
	s.reloadMutex.Lock()
	defer s.reloadMutex.Unlock()

	start := time.Now()
	snap, err := s.load(ctx)
	if err != nil {
		msg := err.Error()
		s.lastErr.Store(&msg)
		s.logger.Error(ctx, err, "Reload failed, keeping previous snapshot")
		s.broadcast(UpdateMessage{Type: MessageError, Content: msg, Timestamp: time.Now()})

		return err
	}

	s.snapshot.Store(snap)
	s.lastErr.Store(nil)
	s.reloads.Add(1)
	s.logger.Info(ctx, "Snapshot reloaded", "calculators", snap.Store.Len(), "duration", time.Since(start))
	s.broadcast(UpdateMessage{Type: MessageReload, Timestamp: time.Now()})

	return nil
}

// LastError returns the message of the last failed reload, or "".
func (s *Server) LastError() string {
	if p := s.lastErr.Load(); p != nil {
		return *p
	}

	return ""
}

func (s *Server) broadcast(msg UpdateMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		data = []byte(`{"type":"reload"}`)
	}
	s.hub.Broadcast(data)
}

// Handler returns the routed handler wrapped in the middleware stack.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/paths", s.handlePaths)
	mux.HandleFunc("GET /api/validate", s.handleValidate)
	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("GET /{slug}", s.handleRootPage)
	mux.HandleFunc("GET /{locale}/{$}", s.handleLocaleHome)
	mux.HandleFunc("GET /{locale}/{slug}", s.handlePage)
	mux.HandleFunc("GET /categories/{category}", s.handleRootCategory)
	mux.HandleFunc("GET /{locale}/categories/{category}", s.handleCategory)

	return middleware.Default(s.logger, s.allowedOrigins()).Apply(mux)
}

func (s *Server) addr() string {
	return net.JoinHostPort(s.config.Server.Host, strconv.Itoa(s.config.Server.Port))
}

// allowedOrigins lists the browser origins of the server itself.
func (s *Server) allowedOrigins() []string {
	port := strconv.Itoa(s.config.Server.Port)

	return []string{
		"http://" + net.JoinHostPort(s.config.Server.Host, port),
		"http://" + net.JoinHostPort("localhost", port),
		"http://" + net.JoinHostPort("127.0.0.1", port),
	}
}

// Listen binds the configured address. It is separate from Serve so callers
// can learn the bound port when the configured port is 0.
func (s *Server) Listen() (net.Addr, error) {
	ln, err := net.Listen("tcp", s.addr())
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", s.addr(), err)
	}

	s.serverMutex.Lock()
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.serverMutex.Unlock()

	return ln.Addr(), nil
}

// Serve runs the server until ctx is cancelled, then shuts down gracefully.
// Listen is called first if it has not been.
func (s *Server) Serve(ctx context.Context) error {
	s.serverMutex.RLock()
	ready := s.listener != nil
	s.serverMutex.RUnlock()
	if !ready {
		if _, err := s.Listen(); err != nil {
			return err
		}
	}

	s.serverMutex.RLock()
	srv, ln := s.httpServer, s.listener
	s.serverMutex.RUnlock()

	hubCtx, cancelHub := context.WithCancel(ctx)
	defer cancelHub()
	go s.hub.Run(hubCtx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Serving", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		return s.Shutdown(shutdownCtx)
	}
}

// Shutdown closes websocket clients and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.logger.Info(ctx, "Shutting down server")
		s.hub.CloseAll()

		s.serverMutex.RLock()
		srv := s.httpServer
		s.serverMutex.RUnlock()
		if srv != nil {
			err = srv.Shutdown(ctx)
		}
	})

	return err
}
