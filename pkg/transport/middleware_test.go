package transport

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ajitpratap0/hudu-mcp/pkg/logging"
)

func tagging(tag string) Middleware {
	return MiddlewareFunc(func(next MessageHandler) MessageHandler {
		return MessageHandlerFunc(func(ctx context.Context, data []byte) []byte {
			return next.HandleMessage(ctx, append(append([]byte(nil), data...), tag...))
		})
	})
}

func TestChainMiddlewareOrder(t *testing.T) {
	base := MessageHandlerFunc(func(_ context.Context, data []byte) []byte { return data })

	handler := ChainMiddleware(tagging("1"), tagging("2"), tagging("3")).Wrap(base)
	assert.Equal(t, "msg123", string(handler.HandleMessage(context.Background(), []byte("msg"))))
}

func TestRecoveryMiddleware(t *testing.T) {
	var logs bytes.Buffer
	logger := logging.New(&logs, &logging.TextFormatter{DisableColors: true, DisableTimestamp: true})

	panicking := MessageHandlerFunc(func(context.Context, []byte) []byte { panic("boom") })
	reply := RecoveryMiddleware(logger).Wrap(panicking).HandleMessage(context.Background(), []byte("{}"))

	assert.JSONEq(t, `{"jsonrpc":"2.0","id":null,"error":{"code":-32603,"message":"Internal error"}}`, string(reply))
	assert.True(t, strings.Contains(logs.String(), "Panic in message handler"))
}

func TestLoggingMiddlewarePassesThrough(t *testing.T) {
	var logs bytes.Buffer
	logger := logging.New(&logs, &logging.TextFormatter{DisableColors: true, DisableTimestamp: true})
	logger.SetLevel(logging.DebugLevel)

	silent := MessageHandlerFunc(func(context.Context, []byte) []byte { return nil })
	reply := LoggingMiddleware(logger).Wrap(silent).HandleMessage(context.Background(), []byte("abc"))

	assert.Nil(t, reply)
	assert.Contains(t, logs.String(), "Message handled")
	assert.Contains(t, logs.String(), "request_bytes=3")
	assert.Contains(t, logs.String(), "answered=false")
}
