package httpclient

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError represents a non-2xx response
type HTTPError struct {
	StatusCode int
	Message    string
	URL        string
}

// Error returns the error message
func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d for URL %s: %s", e.StatusCode, e.URL, e.Message)
}

// NewHTTPError creates a new HTTP error
func NewHTTPError(statusCode int, url, message string) error {
	return &HTTPError{
		StatusCode: statusCode,
		URL:        url,
		Message:    message,
	}
}

// StatusCode returns the status carried by err, or 0 if err is not an HTTPError
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}

// IsNotFound reports whether err is a 404 response
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// Request describes a JSON request. Body is marshalled when non-nil.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   any
}

// Response is a fully read 2xx response
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}
