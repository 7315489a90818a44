package hudu

import (
	"errors"
	"net/http"

	mcperrors "github.com/ajitpratap0/hudu-mcp/pkg/errors"
)

var errInvalidJSON = errors.New("invalid JSON in Hudu response")

// StatusCode returns the HTTP status carried by a gateway error, or 0
func StatusCode(err error) int {
	return mcperrors.UpstreamStatus(err)
}

// IsNotFound reports whether err is a 404 from Hudu
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsUnauthorized reports whether Hudu rejected the API key (401 or 403)
func IsUnauthorized(err error) bool {
	status := StatusCode(err)
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}

// IsNetworkError reports whether the request failed before any response was received
func IsNetworkError(err error) bool {
	return mcperrors.IsCategory(err, mcperrors.CategoryNetwork)
}
