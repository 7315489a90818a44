package errors

import (
	"fmt"
	"time"

	"github.com/ajitpratap0/hudu-mcp/pkg/protocol"
)

// InvalidRequest reports a malformed envelope or missing required params
func InvalidRequest(detail string) MCPError {
	err := NewError(CodeInvalidRequest, "Invalid Request", CategoryProtocol, SeverityError)
	if detail != "" {
		err = err.WithDetail(detail)
	}
	return err
}

// MethodNotFound reports an unknown protocol method
func MethodNotFound(method string) MCPError {
	return NewError(
		CodeMethodNotFound,
		fmt.Sprintf("Method not found: %s", method),
		CategoryProtocol,
		SeverityWarning,
	).WithData(map[string]interface{}{"method": method})
}

// MissingParameter reports a required params member that is absent.
// code selects how the dispatcher classifies the omission.
func MissingParameter(code int, name, message string) MCPError {
	return NewError(code, message, CategoryValidation, SeverityError).
		WithData(map[string]interface{}{"parameter": name})
}

// UnknownTool reports a tools/call naming an unregistered tool
func UnknownTool(name string) MCPError {
	return NewError(
		CodeInternalError,
		fmt.Sprintf("Unknown tool: %s", name),
		CategoryNotFound,
		SeverityError,
	).WithData(map[string]interface{}{"tool": name})
}

// UnknownResource reports a resources/read URI that matches no resource kind
func UnknownResource(uri string) MCPError {
	return NewError(
		CodeInvalidRequest,
		fmt.Sprintf("Unknown resource: %s", uri),
		CategoryNotFound,
		SeverityWarning,
	).WithData(map[string]interface{}{"uri": uri})
}

// ToolFailed carries a tool's error string to the wire as an internal error
func ToolFailed(tool, message string) MCPError {
	return NewError(CodeInternalError, message, CategoryInternal, SeverityError).
		WithData(map[string]interface{}{"tool": tool})
}

// InternalError wraps an unexpected handler failure
func InternalError(operation string, cause error) MCPError {
	msg := "Internal error"
	if cause != nil {
		msg = cause.Error()
	}
	return WrapError(cause, CodeInternalError, msg, CategoryInternal, SeverityError).
		WithContext(&Context{Operation: operation, Timestamp: time.Now()})
}

// Panic converts a recovered panic value into an internal error
func Panic(method string, recovered interface{}) MCPError {
	return NewError(
		CodeInternalError,
		"Internal error",
		CategoryInternal,
		SeverityCritical,
	).WithDetail(fmt.Sprintf("panic in %s: %v", method, recovered))
}

// ToJSONRPCError converts any error into the wire error object.
// Errors outside the taxonomy become internal errors.
func ToJSONRPCError(err error) *protocol.Error {
	if err == nil {
		return nil
	}

	if mcpErr, ok := AsMCPError(err); ok {
		code := mcpErr.Code()
		if _, known := errorCodeRegistry[code]; !known {
			code = CodeInternalError
		}
		return &protocol.Error{
			Code:    protocol.ErrorCode(code),
			Message: mcpErr.Message(),
			Data:    mcpErr.Data(),
		}
	}

	return &protocol.Error{
		Code:    protocol.InternalError,
		Message: err.Error(),
	}
}
