package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	mcperrors "github.com/ajitpratap0/hudu-mcp/pkg/errors"
	"github.com/ajitpratap0/hudu-mcp/pkg/logging"
	"github.com/ajitpratap0/hudu-mcp/pkg/observability"
	"github.com/ajitpratap0/hudu-mcp/pkg/protocol"
)

const (
	// MaxBodyBytes caps every request body
	MaxBodyBytes = 10 << 20
	// DefaultSSEInterval is the keep-alive ping period of /sse streams
	DefaultSSEInterval = 30 * time.Second

	sseConnectionFrame = "data: {\"type\":\"connection\",\"status\":\"ready\"}\n\n"
	ssePingFrame       = "data: {\"type\":\"ping\"}\n\n"

	timestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

// HTTPHandler serves the dispatcher over plain HTTP. It is stateless apart
// from the open SSE streams, which end when the client disconnects or Close
// is called.
type HTTPHandler struct {
	server  *Server
	mux     *http.ServeMux
	handler http.Handler

	logger         logging.Logger
	metrics        observability.MetricsProvider
	metricsHandler http.Handler
	sseInterval    time.Duration
	started        time.Time
	now            func() time.Time

	done      chan struct{}
	closeOnce sync.Once
}

// HTTPOption configures an HTTPHandler
type HTTPOption func(*HTTPHandler)

// WithSSEInterval sets the /sse ping period
func WithSSEInterval(interval time.Duration) HTTPOption {
	return func(h *HTTPHandler) {
		if interval > 0 {
			h.sseInterval = interval
		}
	}
}

// WithHTTPLogger sets the logger used for request logging
func WithHTTPLogger(logger logging.Logger) HTTPOption {
	return func(h *HTTPHandler) {
		h.logger = logger
	}
}

// WithHTTPMetrics records SSE connections and serves /metrics from metrics
func WithHTTPMetrics(metrics observability.MetricsProvider) HTTPOption {
	return func(h *HTTPHandler) {
		h.metrics = metrics
		h.metricsHandler = metrics.Handler()
	}
}

// NewHTTPHandler creates a new HTTP handler for s
func NewHTTPHandler(s *Server, opts ...HTTPOption) *HTTPHandler {
	h := &HTTPHandler{
		server:      s,
		mux:         http.NewServeMux(),
		logger:      logging.NewNop(),
		metrics:     observability.NopMetrics{},
		sseInterval: DefaultSSEInterval,
		now:         time.Now,
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}

	h.logger = h.logger.WithFields(logging.String("component", "http"))
	h.started = h.now()

	h.mux.HandleFunc("POST /mcp", h.handlePostRequest)
	h.mux.HandleFunc("POST /{$}", h.handlePostRequest)
	h.mux.HandleFunc("POST /mcp/batch", h.handleBatchRequest)
	h.mux.HandleFunc("POST /initialize", h.handleInitializeRequest)
	h.mux.HandleFunc("GET /mcp", h.handleDiscovery)
	h.mux.HandleFunc("GET /{$}", h.handleServerInfo)
	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /keepalive", h.handleKeepalive)
	h.mux.HandleFunc("GET /sse", h.handleSSE)
	if h.metricsHandler != nil {
		h.mux.Handle("GET /metrics", h.metricsHandler)
	}

	h.handler = logging.HTTPMiddleware(h.logger)(withCORS(h.mux))
	return h
}

// ServeHTTP implements http.Handler
func (h *HTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.handler.ServeHTTP(w, r)
}

// Close ends every open SSE stream. It is safe to call more than once.
func (h *HTTPHandler) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := w.Header()
		header.Set("Access-Control-Allow-Origin", "*")
		header.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With, Accept")
		header.Set("Access-Control-Allow-Credentials", "true")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// handlePostRequest serves a single envelope
func (h *HTTPHandler) handlePostRequest(w http.ResponseWriter, r *http.Request) {
	body, status, err := readBody(w, r)
	if err != nil {
		h.writeJSON(w, status, h.server.invalidRequest(r.Context(), err))
		return
	}

	req, err := protocol.ParseRequest(body)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, h.server.invalidRequest(r.Context(), err))
		return
	}

	resp := h.server.HandleRequest(r.Context(), req)
	if resp == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// handleBatchRequest serves a JSON array of envelopes
func (h *HTTPHandler) handleBatchRequest(w http.ResponseWriter, r *http.Request) {
	body, status, err := readBody(w, r)
	if err != nil {
		h.writeJSON(w, status, h.server.invalidRequest(r.Context(), err))
		return
	}

	entries, err := protocol.ParseBatch(body)
	if err == nil && len(entries) == 0 {
		err = fmt.Errorf("%w: empty batch", protocol.ErrInvalidRequest)
	}
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, h.server.invalidRequest(r.Context(), err))
		return
	}

	responses := h.server.HandleBatch(r.Context(), entries)
	if len(responses) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.writeJSON(w, http.StatusOK, responses)
}

// handleInitializeRequest answers initialize for clients that post the
// handshake to a dedicated path. The body's id and params are honored when
// present; a body that is not an envelope is treated as an empty one.
func (h *HTTPHandler) handleInitializeRequest(w http.ResponseWriter, r *http.Request) {
	body, status, err := readBody(w, r)
	if err != nil {
		h.writeJSON(w, status, h.server.invalidRequest(r.Context(), err))
		return
	}

	var envelope struct {
		ID     json.RawMessage `json:"id"`
		Params json.RawMessage `json:"params"`
	}
	_ = json.Unmarshal(body, &envelope)
	if len(envelope.ID) > 0 && !protocol.IsValidID(envelope.ID) {
		err := fmt.Errorf("%w: id must be null, a string or a number", protocol.ErrInvalidRequest)
		h.writeJSON(w, http.StatusBadRequest, h.server.invalidRequest(r.Context(), err))
		return
	}

	req, err := protocol.NewRequest(envelope.ID, protocol.MethodInitialize, envelope.Params)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, h.server.invalidRequest(r.Context(), err))
		return
	}
	h.writeJSON(w, http.StatusOK, h.server.HandleRequest(r.Context(), req))
}

type transportInfo struct {
	Type     string `json:"type"`
	Endpoint string `json:"endpoint"`
}

type discoveryDocument struct {
	Name             string                      `json:"name"`
	Version          string                      `json:"version"`
	ProtocolVersion  string                      `json:"protocolVersion"`
	Transport        transportInfo               `json:"transport"`
	Capabilities     protocol.ServerCapabilities `json:"capabilities"`
	Methods          []string                    `json:"methods"`
	SupportedMethods []string                    `json:"supportedMethods"`
}

func (h *HTTPHandler) handleDiscovery(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, discoveryDocument{
		Name:             h.server.Name(),
		Version:          h.server.Version(),
		ProtocolVersion:  h.server.ProtocolVersion(),
		Transport:        transportInfo{Type: "http", Endpoint: "/mcp"},
		Capabilities:     protocol.DefaultCapabilities(),
		Methods:          []string{http.MethodPost},
		SupportedMethods: protocol.SupportedMethods,
	})
}

type serverInfoDocument struct {
	Name            string                      `json:"name"`
	Version         string                      `json:"version"`
	ProtocolVersion string                      `json:"protocolVersion"`
	ServerInfo      protocol.ServerInfo         `json:"serverInfo"`
	Capabilities    protocol.ServerCapabilities `json:"capabilities"`
}

func (h *HTTPHandler) handleServerInfo(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, serverInfoDocument{
		Name:            h.server.Name(),
		Version:         h.server.Version(),
		ProtocolVersion: h.server.ProtocolVersion(),
		ServerInfo:      protocol.ServerInfo{Name: h.server.Name(), Version: h.server.Version()},
		Capabilities:    protocol.DefaultCapabilities(),
	})
}

func (h *HTTPHandler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": h.now().UTC().Format(timestampLayout),
	})
}

func (h *HTTPHandler) handleKeepalive(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"alive":  true,
		"uptime": h.now().Sub(h.started).Seconds(),
	})
}

// handleSSE streams a connection frame followed by periodic pings. No
// protocol messages are sent on this stream.
func (h *HTTPHandler) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	connID := uuid.New().String()
	logger := h.logger.WithContext(r.Context()).WithFields(logging.String("connection_id", connID))

	header := w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if _, err := io.WriteString(w, sseConnectionFrame); err != nil {
		return
	}
	flusher.Flush()

	h.metrics.RecordSSEConnection(1)
	defer h.metrics.RecordSSEConnection(-1)
	logger.Debug("SSE stream opened")

	ticker := time.NewTicker(h.sseInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			logger.Debug("SSE client disconnected")
			return
		case <-h.done:
			logger.Debug("SSE stream closed by server")
			return
		case <-ticker.C:
			if _, err := io.WriteString(w, ssePingFrame); err != nil {
				logger.Debug("SSE write failed", logging.ErrorField(err))
				return
			}
			flusher.Flush()
		}
	}
}

// readBody reads at most MaxBodyBytes. The returned status is meaningful only
// when err is non-nil.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, int, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, http.StatusRequestEntityTooLarge, fmt.Errorf("%w: request body exceeds %d bytes", protocol.ErrInvalidRequest, tooLarge.Limit)
		}
		return nil, http.StatusBadRequest, fmt.Errorf("%w: %v", protocol.ErrInvalidRequest, err)
	}
	return body, http.StatusOK, nil
}

func (h *HTTPHandler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		h.logger.WithError(mcperrors.InternalError("encode_response", err)).Error("Failed to encode response")
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
