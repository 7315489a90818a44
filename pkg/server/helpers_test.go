package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/hudu-mcp/pkg/hudu"
	"github.com/ajitpratap0/hudu-mcp/pkg/logging"
	"github.com/ajitpratap0/hudu-mcp/pkg/protocol"
	"github.com/ajitpratap0/hudu-mcp/pkg/tools"
)

// huduRequest is one request seen by the fake Hudu API
type huduRequest struct {
	Method string
	Path   string
	Body   string
}

// fakeHudu answers Hudu API requests from canned bodies keyed by
// "METHOD /path" and records everything it receives.
type fakeHudu struct {
	mu        sync.Mutex
	requests  []huduRequest
	responses map[string]cannedResponse
}

type cannedResponse struct {
	status int
	body   string
}

func newFakeHudu(t *testing.T) (*fakeHudu, *hudu.Client) {
	t.Helper()

	f := &fakeHudu{responses: map[string]cannedResponse{}}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	client, err := hudu.NewClient(hudu.Config{BaseURL: srv.URL, APIKey: "test-key"})
	require.NoError(t, err)
	return f, client
}

func (f *fakeHudu) on(method, path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[method+" "+path] = cannedResponse{status: status, body: body}
}

func (f *fakeHudu) Requests() []huduRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]huduRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

func (f *fakeHudu) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.requests = append(f.requests, huduRequest{Method: r.Method, Path: r.URL.Path, Body: string(body)})
	resp, ok := f.responses[r.Method+" "+r.URL.Path]
	f.mu.Unlock()

	if !ok {
		resp = cannedResponse{status: http.StatusNotFound, body: `{"error":"Not Found"}`}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.status)
	_, _ = w.Write([]byte(resp.body))
}

// newTestStack wires the real registry and resource provider onto a fake
// Hudu API
func newTestStack(t *testing.T, opts ...ServerOption) (*Server, *fakeHudu) {
	t.Helper()

	f, client := newFakeHudu(t)
	registry, err := tools.NewRegistry(client)
	require.NoError(t, err)

	options := append([]ServerOption{
		WithToolsProvider(registry),
		WithResourcesProvider(NewResourceProvider(client, logging.NewNop())),
	}, opts...)
	return New(options...), f
}

func handle(t *testing.T, s *Server, message string) *protocol.Response {
	t.Helper()
	return s.Handle(context.Background(), []byte(message))
}

// decodeResult unmarshals a successful response's result into v
func decodeResult(t *testing.T, resp *protocol.Response, v interface{}) {
	t.Helper()
	require.NotNil(t, resp)
	require.Nil(t, resp.Error, "unexpected error: %+v", resp.Error)
	require.NoError(t, json.Unmarshal(resp.Result, v))
}

// toolPayload extracts the ToolResult carried in a tools/call text block
func toolPayload(t *testing.T, resp *protocol.Response) map[string]interface{} {
	t.Helper()

	var result protocol.CallToolResult
	decodeResult(t, resp, &result)
	require.Len(t, result.Content, 1)
	require.Equal(t, "text", result.Content[0].Type)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(result.Content[0].Text), &payload))
	return payload
}
