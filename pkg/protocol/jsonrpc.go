package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// JSONRPCVersion is the only envelope version accepted by the dispatcher
const JSONRPCVersion = "2.0"

// ErrorCode is a JSON-RPC error code
type ErrorCode int

// The complete error taxonomy exposed on the wire
const (
	// InvalidRequest indicates a malformed envelope
	InvalidRequest ErrorCode = -32600
	// MethodNotFound indicates an unknown protocol method
	MethodNotFound ErrorCode = -32601
	// InternalError covers handler failures and tool-level failures
	InternalError ErrorCode = -32603
)

// ErrInvalidRequest is returned when an envelope fails structural validation
var ErrInvalidRequest = errors.New("invalid request")

// JSONRPCMessage is the base for all envelopes
type JSONRPCMessage struct {
	JSONRPC string `json:"jsonrpc"`
}

// Request is a decoded request envelope.
//
// An id key that is absent makes the request a notification. An id that is
// present but null is still a call and must be answered.
type Request struct {
	JSONRPCMessage
	ID     json.RawMessage `json:"id,omitempty"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`

	hasID bool
}

// NewRequest creates a call envelope. A nil id produces an explicit null id.
func NewRequest(id interface{}, method string, params interface{}) (*Request, error) {
	rawID, err := json.Marshal(id)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal id: %w", err)
	}

	req := &Request{
		JSONRPCMessage: JSONRPCMessage{JSONRPC: JSONRPCVersion},
		ID:             rawID,
		Method:         method,
		hasID:          true,
	}

	if params != nil {
		if req.Params, err = json.Marshal(params); err != nil {
			return nil, fmt.Errorf("failed to marshal params: %w", err)
		}
	}

	return req, nil
}

// NewNotification creates an envelope without an id
func NewNotification(method string, params interface{}) (*Request, error) {
	req := &Request{
		JSONRPCMessage: JSONRPCMessage{JSONRPC: JSONRPCVersion},
		Method:         method,
	}

	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal params: %w", err)
		}
		req.Params = data
	}

	return req, nil
}

// IsNotification reports whether the request carried no id key at all
func (r *Request) IsNotification() bool {
	return !r.hasID
}

// UnmarshalJSON decodes and validates an envelope. Violations wrap ErrInvalidRequest.
func (r *Request) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return fmt.Errorf("%w: envelope must be a JSON object", ErrInvalidRequest)
	}

	version, ok := fields["jsonrpc"]
	if !ok {
		return fmt.Errorf("%w: missing jsonrpc", ErrInvalidRequest)
	}
	var v string
	if err := json.Unmarshal(version, &v); err != nil || v != JSONRPCVersion {
		return fmt.Errorf("%w: jsonrpc must be %q", ErrInvalidRequest, JSONRPCVersion)
	}

	method, ok := fields["method"]
	if !ok {
		return fmt.Errorf("%w: missing method", ErrInvalidRequest)
	}
	var m string
	if !isJSONString(method) || json.Unmarshal(method, &m) != nil {
		return fmt.Errorf("%w: method must be a string", ErrInvalidRequest)
	}

	id, hasID := fields["id"]
	if hasID && !IsValidID(id) {
		return fmt.Errorf("%w: id must be null, a string or a number", ErrInvalidRequest)
	}

	*r = Request{
		JSONRPCMessage: JSONRPCMessage{JSONRPC: v},
		ID:             id,
		Method:         m,
		Params:         fields["params"],
		hasID:          hasID,
	}
	return nil
}

// MarshalJSON encodes the request, keeping an explicit null id for calls
func (r Request) MarshalJSON() ([]byte, error) {
	type envelope struct {
		JSONRPC string          `json:"jsonrpc"`
		ID      json.RawMessage `json:"id,omitempty"`
		Method  string          `json:"method"`
		Params  json.RawMessage `json:"params,omitempty"`
	}

	out := envelope{JSONRPC: r.JSONRPC, Method: r.Method, Params: r.Params}
	if r.hasID {
		out.ID = r.ID
		if len(out.ID) == 0 {
			out.ID = json.RawMessage("null")
		}
	}
	return json.Marshal(out)
}

// ParseRequest decodes a single request envelope
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		if errors.Is(err, ErrInvalidRequest) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return &req, nil
}

// ParseBatch splits a batch body into its raw entries without validating them
func ParseBatch(data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: batch must be a JSON array", ErrInvalidRequest)
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return entries, nil
}

// IsBatch reports whether data looks like a JSON array
func IsBatch(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == '['
}

// Response is a response envelope. Exactly one of Result and Error is set.
type Response struct {
	JSONRPCMessage
	ID     json.RawMessage `json:"id"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *Error          `json:"error,omitempty"`
}

// NewResponse creates a success response echoing id
func NewResponse(id json.RawMessage, result interface{}) (*Response, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &Response{
		JSONRPCMessage: JSONRPCMessage{JSONRPC: JSONRPCVersion},
		ID:             normalizeID(id),
		Result:         data,
	}, nil
}

// NewErrorResponse creates an error response echoing id
func NewErrorResponse(id json.RawMessage, code ErrorCode, message string, data interface{}) *Response {
	return &Response{
		JSONRPCMessage: JSONRPCMessage{JSONRPC: JSONRPCVersion},
		ID:             normalizeID(id),
		Error: &Error{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// Error is the error member of a response
type Error struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("jsonrpc error %d: %s", e.Code, e.Message)
}

func normalizeID(id json.RawMessage) json.RawMessage {
	if len(id) == 0 {
		return json.RawMessage("null")
	}
	return id
}

func isJSONString(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '"'
}

// IsValidID reports whether raw is an allowed request id: null, a string or
// a number
func IsValidID(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return false
	}

	switch c := trimmed[0]; {
	case c == '"':
		return true
	case c == 'n':
		return bytes.Equal(trimmed, []byte("null"))
	case c == '-' || (c >= '0' && c <= '9'):
		var n json.Number
		return json.Unmarshal(trimmed, &n) == nil
	default:
		return false
	}
}
