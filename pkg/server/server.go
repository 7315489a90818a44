package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	mcperrors "github.com/ajitpratap0/hudu-mcp/pkg/errors"
	"github.com/ajitpratap0/hudu-mcp/pkg/logging"
	"github.com/ajitpratap0/hudu-mcp/pkg/observability"
	"github.com/ajitpratap0/hudu-mcp/pkg/protocol"
	"github.com/ajitpratap0/hudu-mcp/pkg/tools"
)

const (
	// DefaultName is reported in serverInfo
	DefaultName = "hudu-mcp-server"
	// DefaultVersion is reported in serverInfo
	DefaultVersion = "1.0.0"
	// DefaultBatchConcurrency bounds the entries of one batch processed at once
	DefaultBatchConcurrency = 8
)

// Server is the protocol dispatcher. It validates envelopes, routes methods
// to the tools and resources providers and builds response envelopes. A
// Server holds no per-client state and is safe for concurrent use.
type Server struct {
	name             string
	version          string
	protocolVersion  string
	batchConcurrency int

	toolsProvider     ToolsProvider
	resourcesProvider ResourcesProvider

	logger  logging.Logger
	metrics observability.MetricsProvider
	tracer  *observability.TracingProvider
}

// ServerOption defines options for creating a server
type ServerOption func(*Server)

// WithName sets the server name
func WithName(name string) ServerOption {
	return func(s *Server) {
		s.name = name
	}
}

// WithVersion sets the server version
func WithVersion(version string) ServerOption {
	return func(s *Server) {
		s.version = version
	}
}

// WithProtocolVersion sets the version answered when the client sends none
func WithProtocolVersion(version string) ServerOption {
	return func(s *Server) {
		s.protocolVersion = version
	}
}

// WithToolsProvider sets the tools provider
func WithToolsProvider(provider ToolsProvider) ServerOption {
	return func(s *Server) {
		s.toolsProvider = provider
	}
}

// WithResourcesProvider sets the resources provider
func WithResourcesProvider(provider ResourcesProvider) ServerOption {
	return func(s *Server) {
		s.resourcesProvider = provider
	}
}

// WithLogger sets the structured logger
func WithLogger(logger logging.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics sets the metrics provider
func WithMetrics(metrics observability.MetricsProvider) ServerOption {
	return func(s *Server) {
		s.metrics = metrics
	}
}

// WithTracer opens a server span for every dispatched method
func WithTracer(tracer *observability.TracingProvider) ServerOption {
	return func(s *Server) {
		s.tracer = tracer
	}
}

// WithBatchConcurrency bounds how many batch entries are processed at once
func WithBatchConcurrency(n int) ServerOption {
	return func(s *Server) {
		if n > 0 {
			s.batchConcurrency = n
		}
	}
}

// New creates a new server
func New(options ...ServerOption) *Server {
	s := &Server{
		name:             DefaultName,
		version:          DefaultVersion,
		protocolVersion:  protocol.DefaultProtocolVersion,
		batchConcurrency: DefaultBatchConcurrency,
		logger:           logging.NewNop(),
		metrics:          observability.NopMetrics{},
	}

	for _, option := range options {
		option(s)
	}

	s.logger = s.logger.WithFields(logging.String("component", "dispatcher"))
	return s
}

// Name returns the server name
func (s *Server) Name() string { return s.name }

// Version returns the server version
func (s *Server) Version() string { return s.version }

// ProtocolVersion returns the default protocol version
func (s *Server) ProtocolVersion() string { return s.protocolVersion }

// HandleMessage processes one transport message, either a single envelope or
// a batch array, and returns the encoded reply. It returns nil when nothing
// must be written back.
func (s *Server) HandleMessage(ctx context.Context, data []byte) []byte {
	if protocol.IsBatch(data) {
		entries, err := protocol.ParseBatch(data)
		if err != nil || len(entries) == 0 {
			return encode(s.invalidRequest(ctx, err))
		}
		responses := s.HandleBatch(ctx, entries)
		if len(responses) == 0 {
			return nil
		}
		return encode(responses)
	}

	resp := s.Handle(ctx, data)
	if resp == nil {
		return nil
	}
	return encode(resp)
}

// Handle decodes and dispatches a single envelope. Malformed envelopes are
// answered with -32600 and a null id. Notifications return nil.
func (s *Server) Handle(ctx context.Context, data []byte) *protocol.Response {
	req, err := protocol.ParseRequest(data)
	if err != nil {
		return s.invalidRequest(ctx, err)
	}
	return s.HandleRequest(ctx, req)
}

// HandleBatch dispatches every entry independently and returns the responses
// in input order. Notifications contribute no response.
func (s *Server) HandleBatch(ctx context.Context, entries []json.RawMessage) []*protocol.Response {
	start := time.Now()
	results := make([]*protocol.Response, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.batchConcurrency)
	for i, entry := range entries {
		g.Go(func() error {
			results[i] = s.Handle(gctx, entry)
			return nil
		})
	}
	_ = g.Wait()

	s.metrics.RecordBatch(ctx, len(entries), time.Since(start))

	return slices.DeleteFunc(results, func(r *protocol.Response) bool { return r == nil })
}

// HandleRequest dispatches a decoded envelope
func (s *Server) HandleRequest(ctx context.Context, req *protocol.Request) (resp *protocol.Response) {
	if logging.RequestIDFromContext(ctx) == "" {
		ctx = logging.ContextWithRequestID(ctx, uuid.New().String())
	}

	if s.tracer != nil {
		var span trace.Span
		ctx, span = s.tracer.StartMethodSpan(ctx, req.Method)
		defer span.End()
	}

	start := time.Now()
	var (
		result interface{}
		err    error
	)

	defer func() {
		status := "success"
		if err != nil {
			status = "error"
		}
		s.metrics.RecordRequest(ctx, methodLabel(req.Method), status, time.Since(start))
	}()

	func() {
		defer func() {
			if rec := recover(); rec != nil {
				err = mcperrors.Panic(req.Method, rec)
			}
		}()
		result, err = s.dispatch(ctx, req)
	}()

	if err != nil {
		err = s.annotate(err, req)
		if s.tracer != nil {
			s.tracer.RecordError(ctx, err)
		}
		s.logFailure(ctx, req, err)
	}

	if req.IsNotification() {
		return nil
	}

	if err != nil {
		rpcErr := mcperrors.ToJSONRPCError(err)
		return protocol.NewErrorResponse(req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
	}

	resp, err = protocol.NewResponse(req.ID, result)
	if err != nil {
		rpcErr := mcperrors.ToJSONRPCError(mcperrors.InternalError("marshal_result", err))
		return protocol.NewErrorResponse(req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
	}
	return resp
}

func (s *Server) dispatch(ctx context.Context, req *protocol.Request) (interface{}, error) {
	switch req.Method {
	case protocol.MethodInitialize:
		return s.handleInitialize(ctx, req.Params)
	case protocol.MethodInitialized, protocol.MethodPing:
		return protocol.EmptyResult{}, nil
	case protocol.MethodListTools:
		return s.handleListTools(ctx)
	case protocol.MethodCallTool:
		return s.handleCallTool(ctx, req.Params)
	case protocol.MethodListResources:
		return s.handleListResources(ctx)
	case protocol.MethodReadResource:
		return s.handleReadResource(ctx, req.Params)
	default:
		return nil, mcperrors.MethodNotFound(req.Method)
	}
}

// Request handlers

func (s *Server) handleInitialize(_ context.Context, params json.RawMessage) (interface{}, error) {
	var initParams protocol.InitializeParams
	if err := parseParams(params, &initParams); err != nil {
		return nil, err
	}

	version := initParams.ProtocolVersion
	if version == "" {
		version = s.protocolVersion
	}

	if initParams.ClientInfo != nil {
		s.logger.Info("Client initialized",
			logging.String("client", initParams.ClientInfo.Name),
			logging.String("client_version", initParams.ClientInfo.Version),
			logging.String("protocol_version", version),
		)
	}

	return &protocol.InitializeResult{
		ProtocolVersion: version,
		Capabilities:    protocol.DefaultCapabilities(),
		ServerInfo:      protocol.ServerInfo{Name: s.name, Version: s.version},
	}, nil
}

func (s *Server) handleListTools(_ context.Context) (interface{}, error) {
	list := []protocol.Tool{}
	if s.toolsProvider != nil {
		list = append(list, s.toolsProvider.List()...)
	}
	return &protocol.ListToolsResult{Tools: list}, nil
}

func (s *Server) handleCallTool(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var callParams protocol.CallToolParams
	if err := parseParams(params, &callParams); err != nil {
		return nil, err
	}
	if callParams.Name == "" {
		return nil, mcperrors.MissingParameter(mcperrors.CodeMethodNotFound, "name", "Tool name is required")
	}
	if s.toolsProvider == nil {
		return nil, mcperrors.UnknownTool(callParams.Name)
	}

	start := time.Now()
	result, err := s.toolsProvider.Call(ctx, callParams.Name, callParams.Arguments)
	if errors.Is(err, tools.ErrUnknownTool) {
		return nil, mcperrors.UnknownTool(callParams.Name)
	}

	status := "success"
	if err != nil || !result.Success {
		status = "error"
	}
	s.metrics.RecordToolCall(ctx, callParams.Name, status, time.Since(start))

	if err != nil {
		return nil, mcperrors.InternalError("call_tool", err)
	}
	if !result.Success {
		return nil, mcperrors.ToolFailed(callParams.Name, result.Error)
	}
	return result.TextResult()
}

func (s *Server) handleListResources(ctx context.Context) (interface{}, error) {
	list := []protocol.Resource{}
	if s.resourcesProvider != nil {
		list = append(list, s.resourcesProvider.ListResources(ctx)...)
	}
	return &protocol.ListResourcesResult{Resources: list}, nil
}

func (s *Server) handleReadResource(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var readParams protocol.ReadResourceParams
	if err := parseParams(params, &readParams); err != nil {
		return nil, err
	}
	if readParams.URI == "" {
		return nil, mcperrors.MissingParameter(mcperrors.CodeInvalidRequest, "uri", "Resource URI is required")
	}
	if s.resourcesProvider == nil {
		return nil, mcperrors.UnknownResource(readParams.URI)
	}

	return s.resourcesProvider.ReadResource(ctx, readParams.URI)
}

// Helper functions for error handling

func (s *Server) invalidRequest(ctx context.Context, cause error) *protocol.Response {
	detail := ""
	if cause != nil {
		detail = cause.Error()
	}
	err := mcperrors.InvalidRequest(detail)
	s.logger.WithContext(ctx).WithError(err).Warn("Rejected malformed message")

	rpcErr := mcperrors.ToJSONRPCError(err)
	return protocol.NewErrorResponse(nil, rpcErr.Code, rpcErr.Message, rpcErr.Data)
}

// annotate attaches request context to MCP errors for logging
func (s *Server) annotate(err error, req *protocol.Request) error {
	mcpErr, ok := mcperrors.AsMCPError(err)
	if !ok || mcpErr.Context() != nil {
		return err
	}
	return mcpErr.WithContext(&mcperrors.Context{
		RequestID: string(req.ID),
		Method:    req.Method,
		Component: "dispatcher",
		Operation: req.Method,
		Timestamp: time.Now(),
	})
}

func (s *Server) logFailure(ctx context.Context, req *protocol.Request, err error) {
	logger := s.logger.WithContext(ctx).WithError(err)
	if req.IsNotification() {
		logger.Warn("Notification failed", logging.String("method", req.Method))
		return
	}

	fields := []logging.Field{logging.String("method", req.Method)}
	if mcpErr, ok := mcperrors.AsMCPError(err); ok && mcpErr.Severity() == mcperrors.SeverityCritical {
		logger.Error("Request failed", fields...)
		return
	}
	logger.Debug("Request failed", fields...)
}

// parseParams decodes optional params. Absent or null params leave target
// untouched; anything that is not an object is an invalid request.
func parseParams(params json.RawMessage, target interface{}) error {
	if len(params) == 0 || string(params) == "null" {
		return nil
	}
	if err := json.Unmarshal(params, target); err != nil {
		return mcperrors.InvalidRequest(fmt.Sprintf("invalid params: %v", err))
	}
	return nil
}

func methodLabel(method string) string {
	if method == protocol.MethodInitialized || slices.Contains(protocol.SupportedMethods, method) {
		return method
	}
	return "unknown"
}

func encode(v interface{}) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		return []byte(`{"jsonrpc":"2.0","id":null,"error":{"code":-32603,"message":"Internal error"}}`)
	}
	return data
}
