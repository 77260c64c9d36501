package panel

import (
	"fmt"
	"net/http"
)

// TransportError is a network, TLS or connection failure
type TransportError struct {
	Op  string
	URL string
	Err error
}

func (e *TransportError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: request to %s failed: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError means the response body did not have the expected JSON shape
type DecodeError struct {
	Op          string
	ContentType string
	Snippet     string // leading bytes of the body, for diagnostics
	Err         error
}

func (e *DecodeError) Error() string {
	msg := fmt.Sprintf("%s: unexpected response body", e.Op)
	if e.ContentType != "" {
		msg += fmt.Sprintf(" (content-type %s)", e.ContentType)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Snippet != "" {
		msg += fmt.Sprintf(": %q", e.Snippet)
	}
	return msg
}

func (e *DecodeError) Unwrap() error { return e.Err }

// APIError is a non-2xx response from the panel
type APIError struct {
	Op     string
	Status int
	Code   string // panel error code, e.g. "AuthenticationException"
	Detail string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s: panel returned %d %s", e.Op, e.Status, http.StatusText(e.Status))
	if e.Code != "" {
		msg += " [" + e.Code + "]"
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// RejectedError means a download link served an error page instead of the archive
type RejectedError struct {
	Status  int
	Message string
}

func (e *RejectedError) Error() string {
	return "download rejected: " + e.Message
}

// IOError is a local file creation or write failure
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("writing %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
