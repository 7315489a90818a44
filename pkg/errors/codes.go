package errors

import "github.com/ajitpratap0/hudu-mcp/pkg/protocol"

// The only codes placed on the wire. There are no resource-specific codes.
const (
	CodeInvalidRequest = int(protocol.InvalidRequest)
	CodeMethodNotFound = int(protocol.MethodNotFound)
	CodeInternalError  = int(protocol.InternalError)
)

// ErrorCodeInfo describes a registered code
type ErrorCodeInfo struct {
	Code        int
	Name        string
	Description string
	Category    Category
	Severity    Severity
}

var errorCodeRegistry = map[int]ErrorCodeInfo{
	CodeInvalidRequest: {CodeInvalidRequest, "InvalidRequest", "Malformed request envelope", CategoryProtocol, SeverityError},
	CodeMethodNotFound: {CodeMethodNotFound, "MethodNotFound", "Method does not exist", CategoryProtocol, SeverityError},
	CodeInternalError:  {CodeInternalError, "InternalError", "Handler or tool failure", CategoryInternal, SeverityError},
}

// GetErrorCodeInfo returns information about a code
func GetErrorCodeInfo(code int) (ErrorCodeInfo, bool) {
	info, exists := errorCodeRegistry[code]
	return info, exists
}

// GetErrorCodeName returns the name of a code, or "UnknownError"
func GetErrorCodeName(code int) string {
	if info, exists := errorCodeRegistry[code]; exists {
		return info.Name
	}
	return "UnknownError"
}
