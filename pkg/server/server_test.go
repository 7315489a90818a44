package server

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/hudu-mcp/pkg/observability"
	"github.com/ajitpratap0/hudu-mcp/pkg/protocol"
)

func TestIDIsEchoed(t *testing.T) {
	s, _ := newTestStack(t)

	for _, id := range []string{`1`, `"abc"`, `null`, `-7`, `2.5`} {
		t.Run(id, func(t *testing.T) {
			resp := handle(t, s, `{"jsonrpc":"2.0","id":`+id+`,"method":"ping"}`)
			require.NotNil(t, resp)
			assert.JSONEq(t, id, string(resp.ID))
			assert.JSONEq(t, `{}`, string(resp.Result))
			assert.Nil(t, resp.Error)
		})
	}
}

func TestNotificationsAreNeverAnswered(t *testing.T) {
	s, fake := newTestStack(t)

	messages := []string{
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","method":"ping"}`,
		`{"jsonrpc":"2.0","method":"does/not/exist"}`,
		`{"jsonrpc":"2.0","method":"tools/call","params":{"name":"nope"}}`,
		`{"jsonrpc":"2.0","method":"tools/call","params":{"name":"articles","arguments":{"action":"create"}}}`,
	}
	for _, msg := range messages {
		assert.Nil(t, handle(t, s, msg), msg)
	}
	assert.Empty(t, fake.Requests())
}

func TestInitializedWithIDIsAnswered(t *testing.T) {
	s, _ := newTestStack(t)

	resp := handle(t, s, `{"jsonrpc":"2.0","id":3,"method":"notifications/initialized"}`)
	require.NotNil(t, resp)
	assert.JSONEq(t, `{}`, string(resp.Result))
}

func TestMalformedEnvelopes(t *testing.T) {
	s, fake := newTestStack(t)

	tests := []struct {
		name    string
		message string
	}{
		{"not json", `{"jsonrpc":"2.0",`},
		{"array", `[1,2]`},
		{"wrong version", `{"jsonrpc":"1.0","id":1,"method":"ping"}`},
		{"missing version", `{"id":1,"method":"ping"}`},
		{"missing method", `{"jsonrpc":"2.0","id":1}`},
		{"numeric method", `{"jsonrpc":"2.0","id":1,"method":5}`},
		{"object id", `{"jsonrpc":"2.0","id":{},"method":"ping"}`},
		{"boolean id", `{"jsonrpc":"2.0","id":true,"method":"tools/call","params":{"name":"articles"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := handle(t, s, tt.message)
			require.NotNil(t, resp)
			require.NotNil(t, resp.Error)
			assert.Equal(t, protocol.InvalidRequest, resp.Error.Code)
			assert.Equal(t, "Invalid Request", resp.Error.Message)
			assert.Equal(t, "null", string(resp.ID))
			assert.Nil(t, resp.Result)
		})
	}
	assert.Empty(t, fake.Requests())
}

func TestInitialize(t *testing.T) {
	s, _ := newTestStack(t, WithVersion("2.3.4"))

	t.Run("echoes requested protocol version", func(t *testing.T) {
		var result protocol.InitializeResult
		decodeResult(t, handle(t, s, `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","clientInfo":{"name":"inspector"}}}`), &result)

		assert.Equal(t, "2024-11-05", result.ProtocolVersion)
		assert.Equal(t, protocol.ServerInfo{Name: "hudu-mcp-server", Version: "2.3.4"}, result.ServerInfo)
	})

	t.Run("defaults protocol version", func(t *testing.T) {
		resp := handle(t, s, `{"jsonrpc":"2.0","id":2,"method":"initialize"}`)

		var result protocol.InitializeResult
		decodeResult(t, resp, &result)
		assert.Equal(t, protocol.DefaultProtocolVersion, result.ProtocolVersion)

		var raw map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(resp.Result, &raw))
		assert.JSONEq(t, `{"resources":{},"tools":{}}`, string(raw["capabilities"]))
	})

	t.Run("params must be an object", func(t *testing.T) {
		resp := handle(t, s, `{"jsonrpc":"2.0","id":3,"method":"initialize","params":"2024-11-05"}`)
		require.NotNil(t, resp.Error)
		assert.Equal(t, protocol.InvalidRequest, resp.Error.Code)
	})
}

func TestToolsListIsStable(t *testing.T) {
	s, fake := newTestStack(t)

	var first, second protocol.ListToolsResult
	decodeResult(t, handle(t, s, `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`), &first)
	decodeResult(t, handle(t, s, `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`), &second)

	require.NotEmpty(t, first.Tools)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("tools/list changed between calls (-first +second):\n%s", diff)
	}
	for _, tool := range first.Tools {
		assert.True(t, json.Valid(tool.InputSchema), tool.Name)
	}
	assert.Empty(t, fake.Requests())
}

func TestToolsCallProtocolErrors(t *testing.T) {
	s, fake := newTestStack(t)

	tests := []struct {
		name    string
		params  string
		code    protocol.ErrorCode
		message string
	}{
		{"missing name", `{"arguments":{}}`, protocol.MethodNotFound, "Tool name is required"},
		{"missing params", ``, protocol.MethodNotFound, "Tool name is required"},
		{"unknown tool", `{"name":"tickets"}`, protocol.InternalError, "Unknown tool: tickets"},
		{"tool failure", `{"name":"articles","arguments":{"action":"create","fields":{"name":"Runbook"}}}`, protocol.InternalError, "Name and content are required for creating articles"},
		{"unknown action", `{"name":"articles","arguments":{"action":"explode"}}`, protocol.InternalError, "Unknown action: explode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := `{"jsonrpc":"2.0","id":9,"method":"tools/call"}`
			if tt.params != "" {
				msg = `{"jsonrpc":"2.0","id":9,"method":"tools/call","params":` + tt.params + `}`
			}

			resp := handle(t, s, msg)
			require.NotNil(t, resp)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.Equal(t, tt.message, resp.Error.Message)
			assert.JSONEq(t, `9`, string(resp.ID))
		})
	}
	assert.Empty(t, fake.Requests())
}

func TestToolsCallSuccess(t *testing.T) {
	s, fake := newTestStack(t)
	fake.on(http.MethodGet, "/api/v1/articles/42", http.StatusOK, `{"article":{"id":42,"name":"Runbook"}}`)

	payload := toolPayload(t, handle(t, s, `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"articles","arguments":{"action":"get","id":42}}}`))

	assert.Equal(t, true, payload["success"])
	assert.Equal(t, map[string]interface{}{"id": float64(42), "name": "Runbook"}, payload["data"])
	assert.NotContains(t, payload, "error")

	requests := fake.Requests()
	require.Len(t, requests, 1)
	assert.Equal(t, huduRequest{Method: http.MethodGet, Path: "/api/v1/articles/42"}, requests[0])
}

func TestToolsCallCreateThenGet(t *testing.T) {
	s, fake := newTestStack(t)
	fake.on(http.MethodPost, "/api/v1/articles", http.StatusOK, `{"article":{"id":7,"name":"Runbook","content":"Steps"}}`)
	fake.on(http.MethodGet, "/api/v1/articles/7", http.StatusOK, `{"article":{"id":7,"name":"Runbook","content":"Steps"}}`)

	created := toolPayload(t, handle(t, s, `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"articles","arguments":{"action":"create","fields":{"name":"Runbook","content":"Steps"}}}}`))
	assert.Equal(t, "Article created successfully", created["message"])

	data, ok := created["data"].(map[string]interface{})
	require.True(t, ok)

	fetched := toolPayload(t, handle(t, s, `{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"articles","arguments":{"action":"get","id":7}}}`))
	assert.Equal(t, data, fetched["data"])

	requests := fake.Requests()
	require.Len(t, requests, 2)
	assert.JSONEq(t, `{"article":{"name":"Runbook","content":"Steps"}}`, requests[0].Body)
}

func TestToolsCallUpstreamFailure(t *testing.T) {
	s, _ := newTestStack(t)

	resp := handle(t, s, `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"articles","arguments":{"action":"get","id":404}}}`)
	require.NotNil(t, resp.Error)
	assert.Equal(t, protocol.InternalError, resp.Error.Code)
	assert.Equal(t, "Articles operation failed: Not Found (status 404)", resp.Error.Message)
}

func TestResourcesList(t *testing.T) {
	s, fake := newTestStack(t)

	var result protocol.ListResourcesResult
	decodeResult(t, handle(t, s, `{"jsonrpc":"2.0","id":1,"method":"resources/list"}`), &result)

	require.Len(t, result.Resources, len(resourceKinds))
	assert.Equal(t, protocol.Resource{
		URI:         "hudu://article/list",
		Name:        "Hudu Articles",
		Description: "List of all knowledge base articles",
		MimeType:    "application/json",
	}, result.Resources[0])
	assert.Empty(t, fake.Requests())
}

func TestResourcesReadAlias(t *testing.T) {
	s, fake := newTestStack(t)
	fake.on(http.MethodGet, "/api/v1/articles/42", http.StatusOK, `{"article":{"id":42}}`)

	var result protocol.ReadResourceResult
	decodeResult(t, handle(t, s, `{"jsonrpc":"2.0","id":1,"method":"resources/read","params":{"uri":"res://article/42"}}`), &result)

	require.Len(t, result.Contents, 1)
	assert.Equal(t, "res://article/42", result.Contents[0].URI)
	assert.Equal(t, "application/json", result.Contents[0].MimeType)
	assert.Equal(t, "{\n  \"id\": 42\n}", result.Contents[0].Text)

	requests := fake.Requests()
	require.Len(t, requests, 1)
	assert.Equal(t, "/api/v1/articles/42", requests[0].Path)
}

func TestResourcesReadErrors(t *testing.T) {
	s, fake := newTestStack(t)

	tests := []struct {
		name    string
		params  string
		code    protocol.ErrorCode
		message string
	}{
		{"missing uri", `{}`, protocol.InvalidRequest, "Resource URI is required"},
		{"unknown kind", `{"uri":"hudu://ticket/list"}`, protocol.InvalidRequest, "Unknown resource: hudu://ticket/list"},
		{"unknown scheme", `{"uri":"https://docs.example.com/article/1"}`, protocol.InvalidRequest, "Unknown resource: https://docs.example.com/article/1"},
		{"gateway failure", `{"uri":"hudu://article/9"}`, protocol.InternalError, "Not Found (status 404)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := handle(t, s, `{"jsonrpc":"2.0","id":1,"method":"resources/read","params":`+tt.params+`}`)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.Equal(t, tt.message, resp.Error.Message)
		})
	}

	// only the gateway failure reached the API
	assert.Len(t, fake.Requests(), 1)
}

func TestMethodNotFound(t *testing.T) {
	s, _ := newTestStack(t)

	resp := handle(t, s, `{"jsonrpc":"2.0","id":"x","method":"prompts/list"}`)
	require.NotNil(t, resp.Error)
	assert.Equal(t, protocol.MethodNotFound, resp.Error.Code)
	assert.Equal(t, "Method not found: prompts/list", resp.Error.Message)
}

type panickingTools struct{}

func (panickingTools) List() []protocol.Tool { panic("list exploded") }

func (panickingTools) Call(context.Context, string, json.RawMessage) (protocol.ToolResult, error) {
	panic("call exploded")
}

func TestPanicsBecomeInternalErrors(t *testing.T) {
	s := New(WithToolsProvider(panickingTools{}))

	for _, msg := range []string{
		`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"x"}}`,
	} {
		resp := handle(t, s, msg)
		require.NotNil(t, resp)
		require.NotNil(t, resp.Error)
		assert.Equal(t, protocol.InternalError, resp.Error.Code)
	}

	assert.Nil(t, handle(t, s, `{"jsonrpc":"2.0","method":"tools/list"}`))
}

func TestHandleBatchPreservesOrder(t *testing.T) {
	s, _ := newTestStack(t, WithBatchConcurrency(2))

	entries := []json.RawMessage{
		json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"ping"}`),
		json.RawMessage(`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"nope"}}`),
		json.RawMessage(`{"jsonrpc":"2.0","method":"notifications/initialized"}`),
		json.RawMessage(`{"jsonrpc":"2.0","id":3,"method":"tools/list"}`),
		json.RawMessage(`{"jsonrpc":"2.0","id":4}`),
	}

	responses := s.HandleBatch(context.Background(), entries)
	require.Len(t, responses, 4)

	var ids []string
	for _, resp := range responses {
		ids = append(ids, string(resp.ID))
	}
	assert.Equal(t, []string{"1", "2", "3", "null"}, ids)

	assert.Nil(t, responses[0].Error)
	require.NotNil(t, responses[1].Error)
	assert.Equal(t, "Unknown tool: nope", responses[1].Error.Message)
	assert.Nil(t, responses[2].Error)
	require.NotNil(t, responses[3].Error)
	assert.Equal(t, protocol.InvalidRequest, responses[3].Error.Code)
}

func TestHandleMessage(t *testing.T) {
	s, _ := newTestStack(t)
	ctx := context.Background()

	t.Run("single", func(t *testing.T) {
		out := s.HandleMessage(ctx, []byte(`{"jsonrpc":"2.0","id":1,"method":"ping"}`))
		assert.JSONEq(t, `{"jsonrpc":"2.0","id":1,"result":{}}`, string(out))
	})

	t.Run("notification", func(t *testing.T) {
		assert.Nil(t, s.HandleMessage(ctx, []byte(`{"jsonrpc":"2.0","method":"ping"}`)))
	})

	t.Run("batch", func(t *testing.T) {
		out := s.HandleMessage(ctx, []byte(`[{"jsonrpc":"2.0","id":1,"method":"ping"},{"jsonrpc":"2.0","method":"ping"},{"jsonrpc":"2.0","id":2,"method":"ping"}]`))
		assert.JSONEq(t, `[{"jsonrpc":"2.0","id":1,"result":{}},{"jsonrpc":"2.0","id":2,"result":{}}]`, string(out))
	})

	t.Run("batch of notifications", func(t *testing.T) {
		assert.Nil(t, s.HandleMessage(ctx, []byte(`[{"jsonrpc":"2.0","method":"ping"}]`)))
	})

	t.Run("empty batch", func(t *testing.T) {
		out := s.HandleMessage(ctx, []byte(`[]`))
		assert.JSONEq(t, `{"jsonrpc":"2.0","id":null,"error":{"code":-32600,"message":"Invalid Request"}}`, string(out))
	})
}

func TestDispatchMetrics(t *testing.T) {
	metrics, err := observability.NewMetricsProvider(observability.MetricsConfig{Namespace: "test"})
	require.NoError(t, err)

	s, _ := newTestStack(t, WithMetrics(metrics))
	handle(t, s, `{"jsonrpc":"2.0","id":1,"method":"ping"}`)
	handle(t, s, `{"jsonrpc":"2.0","id":2,"method":"made/up"}`)
	handle(t, s, `{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"search","arguments":{}}}`)

	requests, err := testutil.GatherAndCount(metrics.Registry(), "test_request_total")
	require.NoError(t, err)
	// ping/success, unknown/error, tools/call/error
	assert.Equal(t, 3, requests)

	toolCalls, err := testutil.GatherAndCount(metrics.Registry(), "test_tool_call_total")
	require.NoError(t, err)
	assert.Equal(t, 1, toolCalls)
}
