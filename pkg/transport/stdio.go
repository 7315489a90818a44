package transport

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ajitpratap0/hudu-mcp/pkg/logging"
)

// StdioTransport reads one JSON-RPC message per line from reader and writes
// one reply line per answered message to writer. Messages are handled
// sequentially, so replies leave in the order requests arrived.
type StdioTransport struct {
	reader  io.Reader
	writer  *bufio.Writer
	handler MessageHandler
	logger  logging.Logger

	mu sync.Mutex // guards writer
}

// StdioOption configures a StdioTransport
type StdioOption func(*StdioTransport)

// WithStdioLogger sets the transport logger
func WithStdioLogger(logger logging.Logger) StdioOption {
	return func(t *StdioTransport) {
		t.logger = logger
	}
}

// NewStdioTransport creates a transport over reader and writer. Nil streams
// default to os.Stdin and os.Stdout.
func NewStdioTransport(reader io.Reader, writer io.Writer, handler MessageHandler, opts ...StdioOption) *StdioTransport {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}

	t := &StdioTransport{
		reader:  reader,
		writer:  bufio.NewWriter(writer),
		handler: handler,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = t.logger.WithFields(logging.String("component", "stdio"))
	return t
}

// Run blocks until the reader reaches EOF, which is a clean return, or ctx
// is cancelled, which returns ctx.Err(). Blank lines are skipped.
func (t *StdioTransport) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	lines := make(chan []byte)
	processed := make(chan struct{})

	// Reader
	g.Go(func() error {
		defer close(lines)

		scanner := bufio.NewScanner(t.reader)
		scanner.Buffer(make([]byte, 0, 64*1024), MaxMessageBytes)

		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}

			select {
			case lines <- bytes.Clone(line):
			case <-gctx.Done():
				return gctx.Err()
			}
		}

		if err := scanner.Err(); err != nil {
			if errors.Is(err, bufio.ErrTooLong) {
				return ErrMessageTooLarge
			}
			return fmt.Errorf("stdio: read input: %w", err)
		}
		return nil
	})

	// Processor. processed is closed only on a clean finish.
	g.Go(func() error {
		for data := range lines {
			reply := t.handler.HandleMessage(gctx, data)
			if reply == nil {
				continue
			}
			if err := t.send(reply); err != nil {
				return err
			}
		}
		close(processed)
		return nil
	})

	// Unblocks a reader stuck in Scan once the context ends
	g.Go(func() error {
		select {
		case <-gctx.Done():
			if closer, ok := t.reader.(io.Closer); ok {
				_ = closer.Close()
			}
		case <-processed:
		}
		return nil
	})

	err := g.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err != nil {
		t.logger.WithError(err).Error("stdio transport stopped")
	}
	return err
}

// send writes data followed by a newline and flushes
func (t *StdioTransport) send(data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := t.writer.Write(data); err != nil {
		return fmt.Errorf("stdio: write message: %w", err)
	}
	if err := t.writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("stdio: write newline: %w", err)
	}
	if err := t.writer.Flush(); err != nil {
		return fmt.Errorf("stdio: flush output: %w", err)
	}
	return nil
}
