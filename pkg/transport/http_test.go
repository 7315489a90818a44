package transport

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPTransportServesAndShutsDown(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ok")
	})

	shutdownHooks := make(chan struct{}, 1)
	tr := NewHTTPTransport("127.0.0.1:0", handler,
		WithShutdownTimeout(time.Second),
		WithOnShutdown(func() { shutdownHooks <- struct{}{} }),
	)
	assert.Nil(t, tr.Addr())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- tr.Run(ctx) }()

	select {
	case <-tr.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("listener never became ready")
	}

	resp, err := http.Get("http://" + tr.Addr().String() + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "ok", string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}

	select {
	case <-shutdownHooks:
	case <-time.After(time.Second):
		t.Fatal("shutdown hook not called")
	}
}

func TestHTTPTransportListenError(t *testing.T) {
	err := NewHTTPTransport("256.0.0.1:bad", http.NotFoundHandler()).Run(context.Background())
	assert.Error(t, err)
}
