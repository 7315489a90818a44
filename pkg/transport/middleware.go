package transport

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/ajitpratap0/hudu-mcp/pkg/logging"
)

// Middleware wraps a MessageHandler with additional behavior
type Middleware interface {
	// Wrap wraps the given handler with middleware functionality
	Wrap(next MessageHandler) MessageHandler
}

// MiddlewareFunc is an adapter to allow the use of ordinary functions as middleware
type MiddlewareFunc func(MessageHandler) MessageHandler

// Wrap implements the Middleware interface
func (f MiddlewareFunc) Wrap(next MessageHandler) MessageHandler {
	return f(next)
}

// ChainMiddleware chains multiple middleware together. The first middleware
// is the outermost.
func ChainMiddleware(middleware ...Middleware) Middleware {
	return MiddlewareFunc(func(handler MessageHandler) MessageHandler {
		for i := len(middleware) - 1; i >= 0; i-- {
			handler = middleware[i].Wrap(handler)
		}
		return handler
	})
}

// internalErrorReply is written when the handler panics. The id is unknown
// at this layer, so it is null.
var internalErrorReply = []byte(`{"jsonrpc":"2.0","id":null,"error":{"code":-32603,"message":"Internal error"}}`)

// RecoveryMiddleware converts a panicking handler into an internal error reply
func RecoveryMiddleware(logger logging.Logger) Middleware {
	return MiddlewareFunc(func(next MessageHandler) MessageHandler {
		return MessageHandlerFunc(func(ctx context.Context, data []byte) (reply []byte) {
			defer func() {
				if r := recover(); r != nil {
					logger.WithContext(ctx).Error("Panic in message handler",
						logging.Any("panic", r),
						logging.String("stack", string(debug.Stack())),
					)
					reply = internalErrorReply
				}
			}()
			return next.HandleMessage(ctx, data)
		})
	})
}

// LoggingMiddleware logs the size and duration of every message at debug level
func LoggingMiddleware(logger logging.Logger) Middleware {
	return MiddlewareFunc(func(next MessageHandler) MessageHandler {
		return MessageHandlerFunc(func(ctx context.Context, data []byte) []byte {
			start := time.Now()
			reply := next.HandleMessage(ctx, data)

			logger.WithContext(ctx).Debug("Message handled",
				logging.Int("request_bytes", len(data)),
				logging.Int("reply_bytes", len(reply)),
				logging.Bool("answered", reply != nil),
				logging.Duration("duration", time.Since(start)),
			)
			return reply
		})
	})
}
