package errors

import (
	"fmt"
	"net/http"
)

// UpstreamErrorData is attached to every gateway failure
type UpstreamErrorData struct {
	Method     string `json:"method"`
	Path       string `json:"path"`
	StatusCode int    `json:"status_code,omitempty"`
}

func upstreamMessage(status int, backendMessage string) string {
	if backendMessage == "" {
		backendMessage = http.StatusText(status)
	}
	return fmt.Sprintf("%s (status %d)", backendMessage, status)
}

// UpstreamNotFound reports a 404 from the backend
func UpstreamNotFound(method, path, backendMessage string) MCPError {
	return NewError(
		CodeInternalError,
		upstreamMessage(http.StatusNotFound, backendMessage),
		CategoryNotFound,
		SeverityWarning,
	).WithData(&UpstreamErrorData{Method: method, Path: path, StatusCode: http.StatusNotFound})
}

// UpstreamUnauthorized reports a 401 or 403 from the backend
func UpstreamUnauthorized(method, path string, status int, backendMessage string) MCPError {
	return NewError(
		CodeInternalError,
		upstreamMessage(status, backendMessage),
		CategoryAuth,
		SeverityError,
	).WithData(&UpstreamErrorData{Method: method, Path: path, StatusCode: status})
}

// UpstreamAPIError reports any other non-2xx response
func UpstreamAPIError(method, path string, status int, backendMessage string) MCPError {
	severity := SeverityError
	if status >= http.StatusInternalServerError {
		severity = SeverityCritical
	}
	return NewError(
		CodeInternalError,
		upstreamMessage(status, backendMessage),
		CategoryUpstream,
		severity,
	).WithData(&UpstreamErrorData{Method: method, Path: path, StatusCode: status})
}

// UpstreamNetworkError reports a failure before any HTTP response was received
func UpstreamNetworkError(method, path string, cause error) MCPError {
	return WrapError(
		cause,
		CodeInternalError,
		fmt.Sprintf("network error calling %s %s: %v", method, path, cause),
		CategoryNetwork,
		SeverityError,
	).WithData(&UpstreamErrorData{Method: method, Path: path})
}

// UpstreamStatus returns the backend status code carried by err, or 0
func UpstreamStatus(err error) int {
	mcpErr, ok := AsMCPError(err)
	if !ok {
		return 0
	}
	if data, ok := mcpErr.Data().(*UpstreamErrorData); ok {
		return data.StatusCode
	}
	return 0
}
