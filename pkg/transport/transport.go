// Package transport moves newline-delimited JSON-RPC messages between a peer
// and a MessageHandler, and runs the HTTP listener for the HTTP mode.
package transport

import (
	"context"
	"errors"
)

// MaxMessageBytes caps a single inbound message on every transport
const MaxMessageBytes = 10 << 20

// ErrMessageTooLarge is returned when a stdio line exceeds MaxMessageBytes
var ErrMessageTooLarge = errors.New("transport: message exceeds maximum size")

// MessageHandler processes one inbound message and returns the encoded reply,
// or nil when nothing must be written back
type MessageHandler interface {
	HandleMessage(ctx context.Context, data []byte) []byte
}

// MessageHandlerFunc is an adapter to allow the use of ordinary functions as handlers
type MessageHandlerFunc func(ctx context.Context, data []byte) []byte

// HandleMessage implements MessageHandler
func (f MessageHandlerFunc) HandleMessage(ctx context.Context, data []byte) []byte {
	return f(ctx, data)
}

// Transport runs until its peer goes away or ctx is cancelled
type Transport interface {
	Run(ctx context.Context) error
}
