package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ajitpratap0/hudu-mcp/pkg/logging"
)

// DefaultShutdownTimeout bounds graceful shutdown of the HTTP listener
const DefaultShutdownTimeout = 10 * time.Second

// HTTPTransport serves an http.Handler until its context is cancelled, then
// shuts down gracefully
type HTTPTransport struct {
	addr            string
	server          *http.Server
	shutdownTimeout time.Duration
	logger          logging.Logger

	mu       sync.Mutex
	listener net.Listener
	ready    chan struct{}
}

// HTTPOption configures an HTTPTransport
type HTTPOption func(*HTTPTransport)

// WithShutdownTimeout sets how long in-flight requests get to finish
func WithShutdownTimeout(timeout time.Duration) HTTPOption {
	return func(t *HTTPTransport) {
		if timeout > 0 {
			t.shutdownTimeout = timeout
		}
	}
}

// WithHTTPLogger sets the transport logger
func WithHTTPLogger(logger logging.Logger) HTTPOption {
	return func(t *HTTPTransport) {
		t.logger = logger
	}
}

// WithOnShutdown registers f to run when shutdown starts. Long-lived
// handlers such as event streams use it to end their responses.
func WithOnShutdown(f func()) HTTPOption {
	return func(t *HTTPTransport) {
		t.server.RegisterOnShutdown(f)
	}
}

// NewHTTPTransport creates a transport listening on addr
func NewHTTPTransport(addr string, handler http.Handler, opts ...HTTPOption) *HTTPTransport {
	t := &HTTPTransport{
		addr: addr,
		server: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
		shutdownTimeout: DefaultShutdownTimeout,
		logger:          logging.NewNop(),
		ready:           make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = t.logger.WithFields(logging.String("component", "http"))
	return t
}

// Ready is closed once the listener accepts connections
func (t *HTTPTransport) Ready() <-chan struct{} {
	return t.ready
}

// Addr returns the bound address, or nil before Ready
func (t *HTTPTransport) Addr() net.Addr {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.listener == nil {
		return nil
	}
	return t.listener.Addr()
}

// Run listens and serves until ctx is cancelled. A graceful shutdown returns nil.
func (t *HTTPTransport) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", t.addr)
	if err != nil {
		return fmt.Errorf("http: listen on %s: %w", t.addr, err)
	}

	t.mu.Lock()
	t.listener = ln
	t.mu.Unlock()
	close(t.ready)

	t.logger.Info("HTTP server listening", logging.String("addr", ln.Addr().String()))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := t.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http: serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), t.shutdownTimeout)
		defer cancel()

		t.logger.Info("Shutting down HTTP server")
		if err := t.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http: shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
